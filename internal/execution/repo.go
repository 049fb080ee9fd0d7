package execution

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/2beens/fittrack/internal/apperr"
	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/internal/workouts"
	"github.com/2beens/fittrack/pkg"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

const oneActivePerUserIndex = "execution_sessions_one_active_per_user"

const sessionColumns = `s.id, s.user_id, s.workout_id, s.status, s.started_at, s.ended_at, s.total_seconds,
	s.total_exercises, s.completed_exercises, s.current_exercise_id, s.current_exercise_order, s.notes,
	w.name, w.category, w.difficulty`

const exerciseExecutionColumns = `id, session_id, exercise_id, status, execution_order, execution_mode,
	started_at, ended_at, planned_sets, planned_reps, planned_weight::float8, planned_duration, planned_rest,
	done_sets, done_reps, done_weight::float8, done_duration, done_rest, weight_unit, notes, extras`

type HistoryParams struct {
	UserID    int
	Status    string
	WorkoutID int
	From      *time.Time
	Page      int
	Size      int
}

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

// Start opens a session on the workout, copying the planned values of its active
// exercises. A user with an open session gets a Conflict naming that session.
func (r *Repo) Start(ctx context.Context, userID, workoutID int, now time.Time) (_ *Session, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.execution.start")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user_id", userID), attribute.Int("workout_id", workoutID))

	s, err := r.start(ctx, userID, workoutID, now)
	if err == nil {
		return s, nil
	}
	// lost the race against a concurrent start; the index is the last word
	if pkg.IsUniqueViolationError(err) && pkg.ConstraintName(err) == oneActivePerUserIndex {
		return nil, r.activeConflict(ctx, userID)
	}
	return nil, err
}

func (r *Repo) start(ctx context.Context, userID, workoutID int, now time.Time) (_ *Session, err error) {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	var exists bool
	err = tx.QueryRow(
		ctx,
		`SELECT EXISTS (SELECT 1 FROM workouts WHERE id = $1 AND user_id = $2);`,
		workoutID, userID,
	).Scan(&exists)
	if err != nil {
		return nil, fmt.Errorf("check workout: %w", err)
	}
	if !exists {
		return nil, workouts.ErrWorkoutNotFound
	}

	rows, err := tx.Query(
		ctx,
		`SELECT `+workouts.ExerciseColumns+` FROM exercises
		WHERE workout_id = $1 AND status = $2
		ORDER BY display_order, id;`,
		workoutID, workouts.StatusActive,
	)
	if err != nil {
		return nil, fmt.Errorf("query exercises: %w", err)
	}
	plan, err := pgx.CollectRows(rows, workouts.ScanExercise)
	if err != nil {
		return nil, fmt.Errorf("collect exercises: %w", err)
	}
	if len(plan) == 0 {
		return nil, ErrNoActiveExercises
	}

	if active, err := findActive(ctx, tx, userID); err != nil {
		return nil, err
	} else if active != nil {
		return nil, startConflict(active)
	}

	first := plan[0]
	var sessionID int
	err = tx.QueryRow(
		ctx,
		`INSERT INTO execution_sessions
			(user_id, workout_id, status, started_at, total_exercises, completed_exercises,
			 current_exercise_id, current_exercise_order)
		VALUES ($1, $2, $3, $4, $5, 0, $6, $7)
		RETURNING id;`,
		userID, workoutID, StatusStarted, now, len(plan), first.ID, first.Order,
	).Scan(&sessionID)
	if err != nil {
		return nil, fmt.Errorf("insert session: %w", err)
	}

	batch := &pgx.Batch{}
	for i, def := range plan {
		status, startedAt := ExerciseNotStarted, (*time.Time)(nil)
		if i == 0 {
			status, startedAt = ExerciseInProgress, &now
		}
		planned := plannedFrom(def)
		batch.Queue(
			`INSERT INTO execution_exercises
				(session_id, exercise_id, status, execution_order, execution_mode, started_at,
				 planned_sets, planned_reps, planned_weight, planned_duration, planned_rest, weight_unit, extras)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, '{}'::jsonb);`,
			sessionID, def.ID, status, i+1, def.ExecutionMode, startedAt,
			planned.Sets, planned.Reps, planned.Weight, planned.DurationSecs, planned.RestSecs, def.WeightUnit,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return nil, fmt.Errorf("insert exercise executions: %w", err)
	}

	return loadSession(ctx, tx, sessionID, userID, false)
}

func plannedFrom(def workouts.Exercise) PlannedView {
	sets := def.Sets
	return PlannedView{
		Sets:         &sets,
		Reps:         def.Reps,
		Weight:       def.Weight,
		DurationSecs: def.DurationSecs,
		RestSecs:     def.RestSecs,
	}
}

func (r *Repo) activeConflict(ctx context.Context, userID int) error {
	active, err := findActive(ctx, r.db, userID)
	if err != nil {
		return err
	}
	if active == nil {
		// closed between the failed insert and this lookup
		return apperr.Conflict("a workout is already in progress", nil)
	}
	return startConflict(active)
}

func startConflict(active *ActiveSessionRef) error {
	return apperr.Conflict(
		"a workout is already in progress",
		map[string]any{"execucao_atual": active},
	)
}

func findActive(ctx context.Context, q querier, userID int) (*ActiveSessionRef, error) {
	var ref ActiveSessionRef
	err := q.QueryRow(
		ctx,
		`SELECT s.id, w.name, s.status FROM execution_sessions s
		JOIN workouts w ON w.id = s.workout_id
		WHERE s.user_id = $1 AND s.status IN ($2, $3)
		LIMIT 1;`,
		userID, StatusStarted, StatusPaused,
	).Scan(&ref.ID, &ref.WorkoutName, &ref.Status)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find active session: %w", err)
	}
	return &ref, nil
}

func (r *Repo) Get(ctx context.Context, userID, id int) (_ *Session, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.execution.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("session_id", id))

	return loadSession(ctx, r.db, id, userID, false)
}

// Current returns the user's started or paused session.
func (r *Repo) Current(ctx context.Context, userID int) (_ *Session, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.execution.current")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	active, err := findActive(ctx, r.db, userID)
	if err != nil {
		return nil, err
	}
	if active == nil {
		return nil, ErrNoActiveSession
	}
	return loadSession(ctx, r.db, active.ID, userID, false)
}

// History lists the user's sessions, newest first. Exercises are not loaded.
func (r *Repo) History(ctx context.Context, params HistoryParams) (_ []*Session, total int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.execution.history")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("page", params.Page))

	const filter = `WHERE s.user_id = $1
		AND ($2::text = '' OR s.status = $2)
		AND ($3::int = 0 OR s.workout_id = $3)
		AND ($4::timestamptz IS NULL OR s.started_at >= $4)`

	if err := r.db.QueryRow(
		ctx,
		`SELECT COUNT(*) FROM execution_sessions s `+filter+`;`,
		params.UserID, params.Status, params.WorkoutID, params.From,
	).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count sessions: %w", err)
	}

	rows, err := r.db.Query(
		ctx,
		`SELECT `+sessionColumns+` FROM execution_sessions s
		JOIN workouts w ON w.id = s.workout_id `+filter+`
		ORDER BY s.started_at DESC, s.id DESC
		LIMIT $5 OFFSET $6;`,
		params.UserID, params.Status, params.WorkoutID, params.From,
		params.Size, (params.Page-1)*params.Size,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("query sessions: %w", err)
	}
	sessions, err := pgx.CollectRows(rows, scanSession)
	if err != nil {
		return nil, 0, fmt.Errorf("collect sessions: %w", err)
	}
	return sessions, total, nil
}

// Mutate loads the session under a row lock, lets fn apply a transition and writes
// the result back. The write is conditional on the status read, so a session
// changed underneath is reported as a conflict instead of being overwritten.
func (r *Repo) Mutate(ctx context.Context, userID, id int, fn func(*Session) error) (_ *Session, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.execution.mutate")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("session_id", id))

	tx, err := r.db.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
		} else {
			err = tx.Commit(ctx)
		}
	}()

	s, err := loadSession(ctx, tx, id, userID, true)
	if err != nil {
		return nil, err
	}

	expected := s.Status
	if err := fn(s); err != nil {
		return nil, err
	}

	tag, err := tx.Exec(
		ctx,
		`UPDATE execution_sessions
		SET status = $4, ended_at = $5, total_seconds = $6, completed_exercises = $7,
			current_exercise_id = $8, current_exercise_order = $9, notes = $10
		WHERE id = $1 AND user_id = $2 AND status = $3;`,
		s.ID, s.UserID, expected,
		s.Status, s.EndedAt, s.TotalSeconds, s.CompletedExercises,
		s.CurrentExerciseID, s.CurrentExerciseOrder, s.Notes,
	)
	if err != nil {
		return nil, fmt.Errorf("update session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return nil, apperr.Conflict("workout execution was modified concurrently", nil)
	}

	dirty := s.DirtyExercises()
	if len(dirty) == 0 {
		return s, nil
	}

	batch := &pgx.Batch{}
	for _, ee := range dirty {
		extras := ee.Extras
		if extras == nil {
			extras = Extras{}
		}
		batch.Queue(
			`UPDATE execution_exercises
			SET status = $2, started_at = $3, ended_at = $4, done_sets = $5, done_reps = $6,
				done_weight = $7, done_duration = $8, done_rest = $9, notes = $10, extras = $11
			WHERE id = $1;`,
			ee.ID, ee.Status, ee.StartedAt, ee.EndedAt, ee.DoneSets, ee.DoneReps,
			ee.DoneWeight, ee.DoneDuration, ee.DoneRest, ee.Notes, extras,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return nil, fmt.Errorf("update exercise executions: %w", err)
	}
	for _, ee := range dirty {
		ee.dirty = false
	}

	return s, nil
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// loadSession reads the session, its exercise executions and the workout's exercise
// definitions. Sessions of other users are not found.
func loadSession(ctx context.Context, q querier, id, userID int, lock bool) (*Session, error) {
	query := `SELECT ` + sessionColumns + ` FROM execution_sessions s
		JOIN workouts w ON w.id = s.workout_id
		WHERE s.id = $1 AND s.user_id = $2`
	if lock {
		query += ` FOR UPDATE OF s`
	}

	rows, err := q.Query(ctx, query+`;`, id, userID)
	if err != nil {
		return nil, fmt.Errorf("query session: %w", err)
	}
	s, err := pgx.CollectExactlyOneRow(rows, scanSession)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("collect session: %w", err)
	}

	rows, err = q.Query(
		ctx,
		`SELECT `+exerciseExecutionColumns+` FROM execution_exercises
		WHERE session_id = $1
		ORDER BY execution_order, id;`,
		s.ID,
	)
	if err != nil {
		return nil, fmt.Errorf("query exercise executions: %w", err)
	}
	s.Exercises, err = pgx.CollectRows(rows, scanExerciseExecution)
	if err != nil {
		return nil, fmt.Errorf("collect exercise executions: %w", err)
	}

	rows, err = q.Query(
		ctx,
		`SELECT `+workouts.ExerciseColumns+` FROM exercises WHERE workout_id = $1;`,
		s.WorkoutID,
	)
	if err != nil {
		return nil, fmt.Errorf("query exercises: %w", err)
	}
	defs, err := pgx.CollectRows(rows, workouts.ScanExercise)
	if err != nil {
		return nil, fmt.Errorf("collect exercises: %w", err)
	}
	s.Definitions = make(map[int]workouts.Exercise, len(defs))
	for _, def := range defs {
		s.Definitions[def.ID] = def
	}

	return s, nil
}

func scanSession(row pgx.CollectableRow) (*Session, error) {
	var s Session
	err := row.Scan(
		&s.ID, &s.UserID, &s.WorkoutID, &s.Status, &s.StartedAt, &s.EndedAt, &s.TotalSeconds,
		&s.TotalExercises, &s.CompletedExercises, &s.CurrentExerciseID, &s.CurrentExerciseOrder, &s.Notes,
		&s.Workout.Name, &s.Workout.Category, &s.Workout.Difficulty,
	)
	s.Workout.ID = s.WorkoutID
	return &s, err
}

func scanExerciseExecution(row pgx.CollectableRow) (*ExerciseExecution, error) {
	var ee ExerciseExecution
	err := row.Scan(
		&ee.ID, &ee.SessionID, &ee.ExerciseID, &ee.Status, &ee.Order, &ee.Mode,
		&ee.StartedAt, &ee.EndedAt, &ee.PlannedSets, &ee.PlannedReps, &ee.PlannedWeight, &ee.PlannedDuration, &ee.PlannedRest,
		&ee.DoneSets, &ee.DoneReps, &ee.DoneWeight, &ee.DoneDuration, &ee.DoneRest, &ee.WeightUnit, &ee.Notes, &ee.Extras,
	)
	return &ee, err
}
