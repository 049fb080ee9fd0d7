package execution

import (
	"time"
)

type SessionView struct {
	ID              int                     `json:"id"`
	Status          string                  `json:"status"`
	Workout         WorkoutView             `json:"treino"`
	Progress        ProgressView            `json:"progresso"`
	Times           TimesView               `json:"tempos"`
	CurrentExercise *CurrentExerciseView    `json:"exercicio_atual"`
	Exercises       []ExerciseExecutionView `json:"exercicios"`
	Notes           *string                 `json:"observacoes"`
}

type WorkoutView struct {
	ID         int     `json:"id"`
	Name       string  `json:"nome"`
	Category   *string `json:"tipo"`
	Difficulty *string `json:"dificuldade,omitempty"`
}

type ProgressView struct {
	CurrentOrder       *int    `json:"exercicio_atual_ordem"`
	TotalExercises     int     `json:"total_exercicios"`
	CompletedExercises int     `json:"exercicios_completados"`
	Percent            float64 `json:"percentual"`
}

type TimesView struct {
	StartedAt        time.Time  `json:"data_inicio"`
	EndedAt          *time.Time `json:"data_fim"`
	TotalSeconds     int        `json:"tempo_total_segundos"`
	TotalSecondsText string     `json:"tempo_total_formatado"`
}

type CurrentExerciseView struct {
	ID            int      `json:"id"`
	Name          string   `json:"nome"`
	MuscleGroup   *string  `json:"grupo_muscular"`
	ExecutionMode string   `json:"tipo_execucao"`
	Sets          int      `json:"series"`
	Reps          *int     `json:"repeticoes"`
	DurationSecs  *int     `json:"tempo_execucao"`
	RestSecs      *int     `json:"tempo_descanso"`
	Weight        *float64 `json:"peso"`
	WeightUnit    string   `json:"unidade_peso"`
	Description   *string  `json:"descricao"`
	Notes         *string  `json:"observacoes"`
}

type PlannedView struct {
	Sets         *int     `json:"series"`
	Reps         *int     `json:"repeticoes"`
	Weight       *float64 `json:"peso"`
	DurationSecs *int     `json:"tempo_execucao"`
	RestSecs     *int     `json:"tempo_descanso"`
}

type RealizedView struct {
	Sets         *int     `json:"series"`
	Reps         *int     `json:"repeticoes"`
	Weight       *float64 `json:"peso"`
	DurationSecs int      `json:"tempo_executado"`
	RestSecs     *int     `json:"tempo_descanso"`
}

type ExerciseTimesView struct {
	StartedAt *time.Time `json:"data_inicio"`
	EndedAt   *time.Time `json:"data_fim"`
	Formatted string     `json:"tempo_formatado"`
}

type ExerciseExecutionView struct {
	ID            int               `json:"id"`
	ExerciseID    int               `json:"exercicio_id"`
	Name          *string           `json:"nome"`
	MuscleGroup   *string           `json:"grupo_muscular"`
	Status        string            `json:"status"`
	Order         int               `json:"ordem_execucao"`
	ExecutionMode string            `json:"tipo_execucao"`
	WeightUnit    string            `json:"unidade_peso"`
	Planned       PlannedView       `json:"planejado"`
	Realized      RealizedView      `json:"realizado"`
	Times         ExerciseTimesView `json:"tempos"`
	Performance   string            `json:"performance"`
	Notes         *string           `json:"observacoes"`
	Extras        Extras            `json:"extras"`
}

// NewSessionView renders the snapshot returned by every execution endpoint.
func NewSessionView(s *Session, now time.Time) SessionView {
	elapsed := s.ElapsedSeconds(now)
	view := SessionView{
		ID:     s.ID,
		Status: s.Status,
		Workout: WorkoutView{
			ID:         s.Workout.ID,
			Name:       s.Workout.Name,
			Category:   s.Workout.Category,
			Difficulty: s.Workout.Difficulty,
		},
		Progress: ProgressView{
			CurrentOrder:       s.CurrentExerciseOrder,
			TotalExercises:     s.TotalExercises,
			CompletedExercises: s.CompletedExercises,
			Percent:            s.PercentComplete(),
		},
		Times: TimesView{
			StartedAt:        s.StartedAt,
			EndedAt:          s.EndedAt,
			TotalSeconds:     elapsed,
			TotalSecondsText: FormatElapsed(elapsed),
		},
		Exercises: make([]ExerciseExecutionView, 0, len(s.Exercises)),
		Notes:     s.Notes,
	}

	if def := s.CurrentDefinition(); def != nil {
		view.CurrentExercise = &CurrentExerciseView{
			ID:            def.ID,
			Name:          def.Name,
			MuscleGroup:   def.MuscleGroup,
			ExecutionMode: def.ExecutionMode,
			Sets:          def.Sets,
			Reps:          def.Reps,
			DurationSecs:  def.DurationSecs,
			RestSecs:      def.RestSecs,
			Weight:        def.Weight,
			WeightUnit:    def.WeightUnit,
			Description:   def.Description,
			Notes:         def.Notes,
		}
	}

	for _, ee := range s.Exercises {
		view.Exercises = append(view.Exercises, newExerciseView(s, ee))
	}
	return view
}

func newExerciseView(s *Session, ee *ExerciseExecution) ExerciseExecutionView {
	v := ExerciseExecutionView{
		ID:            ee.ID,
		ExerciseID:    ee.ExerciseID,
		Status:        ee.Status,
		Order:         ee.Order,
		ExecutionMode: ee.Mode,
		WeightUnit:    ee.WeightUnit,
		Planned: PlannedView{
			Sets:         ee.PlannedSets,
			Reps:         ee.PlannedReps,
			Weight:       ee.PlannedWeight,
			DurationSecs: ee.PlannedDuration,
			RestSecs:     ee.PlannedRest,
		},
		Realized: RealizedView{
			Sets:         ee.DoneSets,
			Reps:         ee.DoneReps,
			Weight:       ee.DoneWeight,
			DurationSecs: ee.DoneDuration,
			RestSecs:     ee.DoneRest,
		},
		Times: ExerciseTimesView{
			StartedAt: ee.StartedAt,
			EndedAt:   ee.EndedAt,
			Formatted: formatMinutes(ee.DoneDuration),
		},
		Performance: ee.Performance(),
		Notes:       ee.Notes,
		Extras:      ee.Extras,
	}
	// the definition may be gone, history keeps the row without display data
	if def, ok := s.Definitions[ee.ExerciseID]; ok {
		name := def.Name
		v.Name = &name
		v.MuscleGroup = def.MuscleGroup
	}
	if v.Extras == nil {
		v.Extras = Extras{}
	}
	return v
}

type HistoryItem struct {
	ID                 int        `json:"id"`
	Workout            WorkoutRef `json:"treino"`
	Status             string     `json:"status"`
	StartedAt          time.Time  `json:"data_inicio"`
	EndedAt            *time.Time `json:"data_fim"`
	DurationText       string     `json:"duracao_formatada"`
	Percent            float64    `json:"progresso_percentual"`
	CompletedExercises int        `json:"exercicios_completados"`
	TotalExercises     int        `json:"total_exercicios"`
}

type WorkoutRef struct {
	ID       int     `json:"id"`
	Name     string  `json:"nome"`
	Category *string `json:"tipo"`
}

func NewHistoryItem(s *Session, now time.Time) HistoryItem {
	return HistoryItem{
		ID: s.ID,
		Workout: WorkoutRef{
			ID:       s.Workout.ID,
			Name:     s.Workout.Name,
			Category: s.Workout.Category,
		},
		Status:             s.Status,
		StartedAt:          s.StartedAt,
		EndedAt:            s.EndedAt,
		DurationText:       FormatElapsed(s.ElapsedSeconds(now)),
		Percent:            s.PercentComplete(),
		CompletedExercises: s.CompletedExercises,
		TotalExercises:     s.TotalExercises,
	}
}

// ActiveSessionRef identifies the open session a Start collided with.
type ActiveSessionRef struct {
	ID          int    `json:"id"`
	WorkoutName string `json:"treino_nome"`
	Status      string `json:"status"`
}
