// Package stats computes read-only aggregates over a user's execution history.
//
// Records are loaded per request and folded in memory by the functions in
// engine.go; payloads are cached per user until the user's recorded work changes.
package stats

import (
	"time"
)

const (
	sessionFinished = "finished"
	sessionPaused   = "paused"
)

// SessionRecord is one execution session with the workout it ran.
type SessionRecord struct {
	ID                int
	WorkoutID         int
	WorkoutName       string
	WorkoutCategory   *string
	WorkoutDifficulty *string
	Status            string
	StartedAt         time.Time
	TotalSeconds      int
}

// ExerciseRecord is one completed exercise execution. Definition fields are nil
// when the exercise no longer exists.
type ExerciseRecord struct {
	ID            int
	SessionID     int
	SessionDate   time.Time
	ExerciseID    int
	ExerciseName  *string
	MuscleGroup   *string
	ExecutionMode *string
	DoneSets      *int
	DoneReps      *int
	DoneWeight    *float64
	DoneDuration  int
	Notes         *string
}

// ExerciseInfo identifies the exercise an evolution payload is about.
type ExerciseInfo struct {
	ID            int     `json:"id"`
	Name          string  `json:"nome"`
	MuscleGroup   *string `json:"grupo_muscular"`
	ExecutionMode string  `json:"tipo_execucao"`
}

// Dataset is everything one payload is computed from.
type Dataset struct {
	Sessions  []SessionRecord
	Exercises []ExerciseRecord
	Now       time.Time
	Loc       *time.Location
}

func (d *Dataset) finished() []SessionRecord {
	var out []SessionRecord
	for _, s := range d.Sessions {
		if s.Status == sessionFinished {
			out = append(out, s)
		}
	}
	return out
}
