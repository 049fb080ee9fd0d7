package workouts

import (
	"time"

	"github.com/2beens/fittrack/internal/apperr"
)

const (
	StatusActive   = "active"
	StatusInactive = "inactive"

	DifficultyBeginner     = "beginner"
	DifficultyIntermediate = "intermediate"
	DifficultyAdvanced     = "advanced"

	ModeRepetition = "repetition"
	ModeDuration   = "duration"
)

var (
	ErrWorkoutNotFound  = apperr.NotFound("workout not found")
	ErrExerciseNotFound = apperr.NotFound("exercise not found")
	ErrOwnerNotFound    = apperr.NotFound("user not found")
)

type Workout struct {
	ID          int        `json:"id"`
	UserID      int        `json:"user_id"`
	Name        string     `json:"nome_treino"`
	Category    *string    `json:"tipo_treino"`
	Description *string    `json:"descricao"`
	Difficulty  *string    `json:"dificuldade"`
	Status      string     `json:"status"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	Exercises   []Exercise `json:"exercicios,omitempty"`
}

type Exercise struct {
	ID            int       `json:"id"`
	WorkoutID     int       `json:"treino_id"`
	Name          string    `json:"nome_exercicio"`
	Description   *string   `json:"descricao"`
	MuscleGroup   *string   `json:"grupo_muscular"`
	ExecutionMode string    `json:"tipo_execucao"`
	Sets          int       `json:"series"`
	Reps          *int      `json:"repeticoes"`
	DurationSecs  *int      `json:"tempo_execucao"`
	RestSecs      *int      `json:"tempo_descanso"`
	Weight        *float64  `json:"peso"`
	WeightUnit    string    `json:"unidade_peso"`
	Notes         *string   `json:"observacoes"`
	Order         int       `json:"ordem"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

// Validate checks the rules that span fields; single field rules live in the request tags.
func (e *Exercise) Validate() error {
	fe := apperr.FieldErrors{}
	switch e.ExecutionMode {
	case ModeRepetition:
		fe.Check(e.Reps != nil && *e.Reps > 0, "repeticoes", "is required and must be greater than 0 for repetition exercises")
	case ModeDuration:
		fe.Check(e.DurationSecs != nil && *e.DurationSecs > 0, "tempo_execucao", "is required and must be greater than 0 for duration exercises")
	default:
		fe.Add("tipo_execucao", "must be one of: repetition duration")
	}
	fe.Check(e.Sets >= 0, "series", "must be greater than or equal to 0")
	fe.Check(e.RestSecs == nil || *e.RestSecs >= 0, "tempo_descanso", "must be greater than or equal to 0")
	fe.Check(e.Weight == nil || *e.Weight >= 0, "peso", "must be greater than or equal to 0")
	fe.Check(e.WeightUnit == "kg" || e.WeightUnit == "lb", "unidade_peso", "must be one of: kg lb")
	return fe.Err()
}

type WorkoutRequest struct {
	Name        *string `json:"nome_treino" validate:"omitempty,min=1,max=255"`
	Category    *string `json:"tipo_treino" validate:"omitempty,max=100"`
	Description *string `json:"descricao" validate:"omitempty,max=1000"`
	Difficulty  *string `json:"dificuldade" validate:"omitempty,oneof=beginner intermediate advanced"`
	Status      *string `json:"status" validate:"omitempty,oneof=active inactive"`
}

// Apply copies the set fields onto w.
func (req WorkoutRequest) Apply(w *Workout) {
	if req.Name != nil {
		w.Name = *req.Name
	}
	if req.Category != nil {
		w.Category = req.Category
	}
	if req.Description != nil {
		w.Description = req.Description
	}
	if req.Difficulty != nil {
		w.Difficulty = req.Difficulty
	}
	if req.Status != nil {
		w.Status = *req.Status
	}
}

type ExerciseRequest struct {
	Name          *string  `json:"nome_exercicio" validate:"omitempty,min=1,max=255"`
	Description   *string  `json:"descricao" validate:"omitempty,max=1000"`
	MuscleGroup   *string  `json:"grupo_muscular" validate:"omitempty,max=100"`
	ExecutionMode *string  `json:"tipo_execucao" validate:"omitempty,oneof=repetition duration"`
	Sets          *int     `json:"series" validate:"omitempty,gte=0,lte=100"`
	Reps          *int     `json:"repeticoes" validate:"omitempty,gte=0,lte=1000"`
	DurationSecs  *int     `json:"tempo_execucao" validate:"omitempty,gte=0,lte=86400"`
	RestSecs      *int     `json:"tempo_descanso" validate:"omitempty,gte=0,lte=86400"`
	Weight        *float64 `json:"peso" validate:"omitempty,gte=0,lte=9999.99"`
	WeightUnit    *string  `json:"unidade_peso" validate:"omitempty,oneof=kg lb"`
	Notes         *string  `json:"observacoes" validate:"omitempty,max=1000"`
	Status        *string  `json:"status" validate:"omitempty,oneof=active inactive"`
}

func (req ExerciseRequest) Apply(e *Exercise) {
	if req.Name != nil {
		e.Name = *req.Name
	}
	if req.Description != nil {
		e.Description = req.Description
	}
	if req.MuscleGroup != nil {
		e.MuscleGroup = req.MuscleGroup
	}
	if req.ExecutionMode != nil {
		e.ExecutionMode = *req.ExecutionMode
	}
	if req.Sets != nil {
		e.Sets = *req.Sets
	}
	if req.Reps != nil {
		e.Reps = req.Reps
	}
	if req.DurationSecs != nil {
		e.DurationSecs = req.DurationSecs
	}
	if req.RestSecs != nil {
		e.RestSecs = req.RestSecs
	}
	if req.Weight != nil {
		e.Weight = req.Weight
	}
	if req.WeightUnit != nil {
		e.WeightUnit = *req.WeightUnit
	}
	if req.Notes != nil {
		e.Notes = req.Notes
	}
	if req.Status != nil {
		e.Status = *req.Status
	}
}

type ReorderRequest struct {
	ExerciseIDs []int `json:"exercicios" validate:"required,min=1,dive,gt=0"`
}

// ExerciseFilter narrows an exercise listing; empty fields match everything.
type ExerciseFilter struct {
	Status      string
	MuscleGroup string
}

type ListParams struct {
	UserID     int
	Status     string
	Difficulty string
	Search     string
	Page       int
	Size       int
}
