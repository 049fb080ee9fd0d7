package execution

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/2beens/fittrack/internal/apperr"
	"github.com/2beens/fittrack/internal/workouts"
)

const (
	StatusStarted   = "started"
	StatusPaused    = "paused"
	StatusFinished  = "finished"
	StatusCancelled = "cancelled"

	ExerciseNotStarted = "not_started"
	ExerciseInProgress = "in_progress"
	ExerciseCompleted  = "completed"
	ExerciseSkipped    = "skipped"

	// ExtraSkipReason is the extras key holding why an exercise was skipped.
	ExtraSkipReason = "skip_reason"
)

var (
	ErrSessionNotFound         = apperr.NotFound("workout execution not found")
	ErrNoActiveSession         = apperr.NotFound("no workout in progress")
	ErrCurrentExerciseNotFound = apperr.NotFound("current exercise not found")
	ErrNoActiveExercises       = apperr.NotFound("workout has no active exercises")
)

// Extras is the free-form data attached to an exercise execution. Known keys: ExtraSkipReason.
type Extras map[string]string

type WorkoutInfo struct {
	ID         int
	Name       string
	Category   *string
	Difficulty *string
}

// Session is a workout execution together with its exercise executions and the
// workout's exercise definitions, loaded as one unit so transitions can be
// decided in memory and written back at once.
type Session struct {
	ID                   int
	UserID               int
	WorkoutID            int
	Status               string
	StartedAt            time.Time
	EndedAt              *time.Time
	TotalSeconds         int
	TotalExercises       int
	CompletedExercises   int
	CurrentExerciseID    *int
	CurrentExerciseOrder *int
	Notes                *string

	Workout   WorkoutInfo
	Exercises []*ExerciseExecution
	// every definition of the workout, active or not, by id
	Definitions map[int]workouts.Exercise
}

type ExerciseExecution struct {
	ID         int
	SessionID  int
	ExerciseID int
	Status     string
	Order      int
	Mode       string
	StartedAt  *time.Time
	EndedAt    *time.Time

	PlannedSets     *int
	PlannedReps     *int
	PlannedWeight   *float64
	PlannedDuration *int
	PlannedRest     *int

	DoneSets     *int
	DoneReps     *int
	DoneWeight   *float64
	DoneDuration int
	DoneRest     *int

	WeightUnit string
	Notes      *string
	Extras     Extras

	dirty bool
}

// ExerciseUpdate holds the realized values a caller reports; nil fields are left alone.
type ExerciseUpdate struct {
	Sets     *int     `json:"series_realizadas" validate:"omitempty,gte=0,lte=100"`
	Reps     *int     `json:"repeticoes_realizadas" validate:"omitempty,gte=0,lte=1000"`
	Weight   *float64 `json:"peso_utilizado" validate:"omitempty,gte=0,lte=9999.99"`
	Duration *int     `json:"tempo_executado_segundos" validate:"omitempty,gte=0,lte=86400"`
	Rest     *int     `json:"tempo_descanso_realizado" validate:"omitempty,gte=0,lte=86400"`
	Notes    *string  `json:"observacoes" validate:"omitempty,max=1000"`
}

type FinishRequest struct {
	TotalSeconds *int    `json:"tempo_total_segundos" validate:"omitempty,gte=0,lte=86400"`
	Notes        *string `json:"observacoes" validate:"omitempty,max=1000"`
}

type SkipRequest struct {
	Reason *string `json:"motivo" validate:"omitempty,max=255"`
}

func (s *Session) IsOpen() bool {
	return s.Status == StatusStarted || s.Status == StatusPaused
}

func (s *Session) Pause() error {
	if s.Status != StatusStarted {
		return apperr.InvalidTransition("cannot pause this workout")
	}
	s.Status = StatusPaused
	return nil
}

func (s *Session) Resume() error {
	if s.Status != StatusPaused {
		return apperr.InvalidTransition("cannot resume this workout")
	}
	s.Status = StatusStarted
	return nil
}

// Advance completes the current exercise and moves to the next active one.
// Past the last exercise the session finishes.
func (s *Session) Advance(now time.Time) error {
	if s.Status != StatusStarted {
		return apperr.InvalidTransition("workout is not in progress")
	}

	if cur := s.CurrentExecution(); cur != nil && cur.Status == ExerciseInProgress {
		cur.Status = ExerciseCompleted
		cur.EndedAt = timePtr(now)
		cur.dirty = true
		s.CompletedExercises++
	}

	s.moveForward(now)
	return nil
}

// Retreat moves the pointer back to the previous active exercise. Realized values and
// start times are kept; an exercise left while in progress goes back to not started.
// Landing on a completed or skipped exercise leaves no execution in progress until
// the pointer moves forward again.
func (s *Session) Retreat(now time.Time) error {
	if s.Status != StatusStarted {
		return apperr.InvalidTransition("workout is not in progress")
	}

	prev, ok := s.neighbour(-1)
	if !ok {
		return apperr.InvalidTransition("cannot go back, already at the first exercise")
	}

	if cur := s.CurrentExecution(); cur != nil && cur.Status == ExerciseInProgress {
		cur.Status = ExerciseNotStarted
		cur.dirty = true
	}

	s.pointTo(prev, now)
	return nil
}

// Skip marks the current exercise skipped and moves on like Advance, without
// counting it as completed.
func (s *Session) Skip(now time.Time, reason string) error {
	if s.Status != StatusStarted {
		return apperr.InvalidTransition("workout is not in progress")
	}

	cur := s.CurrentExecution()
	if cur == nil {
		return ErrCurrentExerciseNotFound
	}
	if cur.Status == ExerciseCompleted {
		return apperr.InvalidTransition("cannot skip a completed exercise")
	}

	cur.Status = ExerciseSkipped
	cur.EndedAt = timePtr(now)
	if reason != "" {
		if cur.Extras == nil {
			cur.Extras = Extras{}
		}
		cur.Extras[ExtraSkipReason] = reason
	}
	cur.dirty = true

	s.moveForward(now)
	return nil
}

// UpdateCurrent records realized values on the current exercise.
func (s *Session) UpdateCurrent(upd ExerciseUpdate) (*ExerciseExecution, error) {
	if !s.IsOpen() {
		return nil, apperr.InvalidTransition("workout is already closed")
	}

	cur := s.CurrentExecution()
	if cur == nil {
		return nil, ErrCurrentExerciseNotFound
	}

	if upd.Sets != nil {
		cur.DoneSets = upd.Sets
	}
	if upd.Reps != nil {
		cur.DoneReps = upd.Reps
	}
	if upd.Weight != nil {
		cur.DoneWeight = upd.Weight
	}
	if upd.Duration != nil {
		cur.DoneDuration = *upd.Duration
	}
	if upd.Rest != nil {
		cur.DoneRest = upd.Rest
	}
	if upd.Notes != nil {
		cur.Notes = upd.Notes
	}
	cur.dirty = true

	return cur, nil
}

// Finish closes the session. Caller supplied total time and notes win over the measured ones.
func (s *Session) Finish(now time.Time, req FinishRequest) error {
	if !s.IsOpen() {
		return apperr.InvalidTransition("cannot finish this workout")
	}

	s.close(StatusFinished, now)
	if req.TotalSeconds != nil {
		s.TotalSeconds = *req.TotalSeconds
	}
	if req.Notes != nil {
		s.Notes = req.Notes
	}
	return nil
}

func (s *Session) Cancel(now time.Time) error {
	if !s.IsOpen() {
		return apperr.InvalidTransition("cannot cancel this workout")
	}
	s.close(StatusCancelled, now)
	return nil
}

func (s *Session) close(status string, now time.Time) {
	s.Status = status
	s.EndedAt = timePtr(now)
	s.TotalSeconds = elapsedSeconds(s.StartedAt, now)
}

func (s *Session) moveForward(now time.Time) {
	next, ok := s.neighbour(+1)
	if !ok {
		s.close(StatusFinished, now)
		return
	}
	s.pointTo(next, now)
}

func (s *Session) pointTo(def workouts.Exercise, now time.Time) {
	id, order := def.ID, def.Order
	s.CurrentExerciseID = &id
	s.CurrentExerciseOrder = &order

	if target := s.CurrentExecution(); target != nil && target.Status == ExerciseNotStarted {
		target.Status = ExerciseInProgress
		if target.StartedAt == nil {
			target.StartedAt = timePtr(now)
		}
		target.dirty = true
	}
}

// Plan returns the workout's active exercise definitions by display order.
func (s *Session) Plan() []workouts.Exercise {
	plan := make([]workouts.Exercise, 0, len(s.Definitions))
	for _, def := range s.Definitions {
		if def.Status == workouts.StatusActive {
			plan = append(plan, def)
		}
	}
	sort.Slice(plan, func(i, j int) bool {
		if plan[i].Order != plan[j].Order {
			return plan[i].Order < plan[j].Order
		}
		return plan[i].ID < plan[j].ID
	})
	return plan
}

// neighbour finds the nearest active definition after (dir > 0) or before the
// current order.
func (s *Session) neighbour(dir int) (workouts.Exercise, bool) {
	current := 0
	if s.CurrentExerciseOrder != nil {
		current = *s.CurrentExerciseOrder
	}

	plan := s.Plan()
	if dir > 0 {
		for _, def := range plan {
			if def.Order > current {
				return def, true
			}
		}
		return workouts.Exercise{}, false
	}
	for i := len(plan) - 1; i >= 0; i-- {
		if plan[i].Order < current {
			return plan[i], true
		}
	}
	return workouts.Exercise{}, false
}

// CurrentExecution is the exercise execution the pointer refers to, if any.
func (s *Session) CurrentExecution() *ExerciseExecution {
	if s.CurrentExerciseID == nil {
		return nil
	}
	for _, ee := range s.Exercises {
		if ee.ExerciseID == *s.CurrentExerciseID {
			return ee
		}
	}
	return nil
}

// CurrentDefinition is the definition the pointer refers to, if it still exists.
func (s *Session) CurrentDefinition() *workouts.Exercise {
	if s.CurrentExerciseID == nil {
		return nil
	}
	def, ok := s.Definitions[*s.CurrentExerciseID]
	if !ok {
		return nil
	}
	return &def
}

// DirtyExercises are the executions changed since the session was loaded.
func (s *Session) DirtyExercises() []*ExerciseExecution {
	var dirty []*ExerciseExecution
	for _, ee := range s.Exercises {
		if ee.dirty {
			dirty = append(dirty, ee)
		}
	}
	return dirty
}

// PercentComplete is completed/total in percent, two decimals, within [0, 100].
func (s *Session) PercentComplete() float64 {
	if s.TotalExercises <= 0 {
		return 0
	}
	pct := round(float64(s.CompletedExercises)/float64(s.TotalExercises)*100, 2)
	return math.Max(0, math.Min(100, pct))
}

// ElapsedSeconds is the stored total for closed sessions and the running time for open ones.
func (s *Session) ElapsedSeconds(now time.Time) int {
	if s.IsOpen() {
		return elapsedSeconds(s.StartedAt, now)
	}
	return s.TotalSeconds
}

const (
	PerformanceExcellent   = "excellent"
	PerformanceGood        = "good"
	PerformanceFair        = "fair"
	PerformanceUnderTarget = "under_target"
	PerformanceNA          = "n/a"
)

// Performance grades realized against planned reps (repetition mode) or duration.
// Ratios are compared in integer percent space to keep the bounds exact.
func (ee *ExerciseExecution) Performance() string {
	switch ee.Mode {
	case workouts.ModeRepetition:
		if ee.PlannedReps == nil || *ee.PlannedReps <= 0 || ee.DoneReps == nil || *ee.DoneReps <= 0 {
			return PerformanceNA
		}
		done, planned := *ee.DoneReps*100, *ee.PlannedReps
		switch {
		case done >= 100*planned:
			return PerformanceExcellent
		case done >= 80*planned:
			return PerformanceGood
		case done >= 60*planned:
			return PerformanceFair
		default:
			return PerformanceUnderTarget
		}
	case workouts.ModeDuration:
		if ee.PlannedDuration == nil || *ee.PlannedDuration <= 0 || ee.DoneDuration <= 0 {
			return PerformanceNA
		}
		done, planned := ee.DoneDuration*100, *ee.PlannedDuration
		switch {
		case done >= 90*planned && done <= 110*planned:
			return PerformanceExcellent
		case done >= 80*planned && done <= 120*planned:
			return PerformanceGood
		default:
			return PerformanceFair
		}
	}
	return PerformanceNA
}

// FormatElapsed renders seconds as HH:MM:SS, or MM:SS under an hour.
func FormatElapsed(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	h, m, s := seconds/3600, (seconds%3600)/60, seconds%60
	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

// formatMinutes renders seconds as MM:SS, minutes unbounded.
func formatMinutes(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d", seconds/60, seconds%60)
}

func elapsedSeconds(from, to time.Time) int {
	d := to.Sub(from)
	if d < 0 {
		return 0
	}
	return int(d.Seconds())
}

func round(v float64, decimals int) float64 {
	p := math.Pow(10, float64(decimals))
	return math.Round(v*p) / p
}

func timePtr(t time.Time) *time.Time {
	return &t
}
