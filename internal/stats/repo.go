package stats

import (
	"context"
	"errors"
	"fmt"

	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/internal/workouts"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

// Sessions returns every session of the user, oldest first.
func (r *Repo) Sessions(ctx context.Context, userID int) (_ []SessionRecord, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.stats.sessions")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user_id", userID))

	rows, err := r.db.Query(
		ctx,
		`SELECT s.id, s.workout_id, w.name, w.category, w.difficulty, s.status, s.started_at, s.total_seconds
		FROM execution_sessions s
		JOIN workouts w ON w.id = s.workout_id
		WHERE s.user_id = $1
		ORDER BY s.started_at, s.id;`,
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query sessions: %w", err)
	}

	sessions, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (SessionRecord, error) {
		var s SessionRecord
		err := row.Scan(
			&s.ID, &s.WorkoutID, &s.WorkoutName, &s.WorkoutCategory, &s.WorkoutDifficulty,
			&s.Status, &s.StartedAt, &s.TotalSeconds,
		)
		return s, err
	})
	if err != nil {
		return nil, fmt.Errorf("collect sessions: %w", err)
	}
	return sessions, nil
}

// CompletedExercises returns the user's completed exercise executions, of one
// exercise when exerciseID is positive.
func (r *Repo) CompletedExercises(ctx context.Context, userID, exerciseID int) (_ []ExerciseRecord, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.stats.exercises")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user_id", userID), attribute.Int("exercise_id", exerciseID))

	rows, err := r.db.Query(
		ctx,
		`SELECT ee.id, ee.session_id, s.started_at, ee.exercise_id, e.name, e.muscle_group, e.execution_mode,
			ee.done_sets, ee.done_reps, ee.done_weight::float8, ee.done_duration, ee.notes
		FROM execution_exercises ee
		JOIN execution_sessions s ON s.id = ee.session_id
		LEFT JOIN exercises e ON e.id = ee.exercise_id
		WHERE s.user_id = $1 AND ee.status = 'completed' AND ($2::int = 0 OR ee.exercise_id = $2)
		ORDER BY s.started_at, ee.id;`,
		userID, exerciseID,
	)
	if err != nil {
		return nil, fmt.Errorf("query exercise executions: %w", err)
	}

	records, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (ExerciseRecord, error) {
		var e ExerciseRecord
		err := row.Scan(
			&e.ID, &e.SessionID, &e.SessionDate, &e.ExerciseID, &e.ExerciseName, &e.MuscleGroup, &e.ExecutionMode,
			&e.DoneSets, &e.DoneReps, &e.DoneWeight, &e.DoneDuration, &e.Notes,
		)
		return e, err
	})
	if err != nil {
		return nil, fmt.Errorf("collect exercise executions: %w", err)
	}
	return records, nil
}

// Exercise returns an exercise of one of the user's workouts.
func (r *Repo) Exercise(ctx context.Context, userID, exerciseID int) (_ *ExerciseInfo, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.stats.exercise")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("exercise_id", exerciseID))

	var info ExerciseInfo
	err = r.db.QueryRow(
		ctx,
		`SELECT e.id, e.name, e.muscle_group, e.execution_mode
		FROM exercises e
		JOIN workouts w ON w.id = e.workout_id
		WHERE e.id = $1 AND w.user_id = $2;`,
		exerciseID, userID,
	).Scan(&info.ID, &info.Name, &info.MuscleGroup, &info.ExecutionMode)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, workouts.ErrExerciseNotFound
		}
		return nil, fmt.Errorf("get exercise: %w", err)
	}
	return &info, nil
}
