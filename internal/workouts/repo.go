package workouts

import (
	"context"
	"errors"
	"fmt"

	"github.com/2beens/fittrack/internal/apperr"
	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/pkg"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.opentelemetry.io/otel/attribute"
)

const workoutColumns = `id, user_id, name, category, description, difficulty, status, created_at, updated_at`

// ExerciseColumns is the select list ScanExercise reads.
const ExerciseColumns = `id, workout_id, name, description, muscle_group, execution_mode, sets, reps,
	duration_secs, rest_secs, weight::float8, weight_unit, notes, display_order, status, created_at, updated_at`

type Repo struct {
	db *pgxpool.Pool
}

func NewRepo(db *pgxpool.Pool) *Repo {
	return &Repo{
		db: db,
	}
}

func (r *Repo) Create(ctx context.Context, w Workout) (_ *Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.create")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	if w.Status == "" {
		w.Status = StatusActive
	}
	err = r.db.QueryRow(
		ctx,
		`INSERT INTO workouts (user_id, name, category, description, difficulty, status)
			VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at;`,
		w.UserID, w.Name, w.Category, w.Description, w.Difficulty, w.Status,
	).Scan(&w.ID, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		// the owner was deleted while its session was still valid
		if pkg.IsForeignKeyViolationError(err) {
			return nil, ErrOwnerNotFound
		}
		return nil, fmt.Errorf("insert workout: %w", err)
	}

	span.SetAttributes(attribute.Int("workout.id", w.ID))
	return &w, nil
}

func (r *Repo) List(ctx context.Context, params ListParams) (_ []Workout, total int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(
		attribute.Int("user_id", params.UserID),
		attribute.Int("page", params.Page),
		attribute.Int("size", params.Size),
	)

	if params.Page < 1 || params.Size < 1 {
		return nil, -1, errors.New("page and size must be greater than 0")
	}

	const filter = `
		WHERE user_id = $1
			AND ($2::text = '' OR status = $2)
			AND ($3::text = '' OR difficulty = $3)
			AND ($4::text = '' OR name ILIKE '%' || $4 || '%')`

	if err := r.db.QueryRow(
		ctx,
		`SELECT COUNT(*) FROM workouts`+filter,
		params.UserID, params.Status, params.Difficulty, params.Search,
	).Scan(&total); err != nil {
		return nil, -1, fmt.Errorf("count workouts: %w", err)
	}

	rows, err := r.db.Query(
		ctx,
		`SELECT `+workoutColumns+` FROM workouts`+filter+`
		ORDER BY created_at DESC, id DESC
		LIMIT $5 OFFSET $6;`,
		params.UserID, params.Status, params.Difficulty, params.Search,
		params.Size, (params.Page-1)*params.Size,
	)
	if err != nil {
		return nil, -1, fmt.Errorf("query workouts: %w", err)
	}
	defer rows.Close()

	workouts, err := pgx.CollectRows(rows, scanWorkout)
	if err != nil {
		return nil, -1, fmt.Errorf("collect workouts: %w", err)
	}
	return workouts, total, nil
}

// Get returns the user's workout with its active exercises ordered by display order.
func (r *Repo) Get(ctx context.Context, userID, id int) (_ *Workout, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	rows, err := r.db.Query(
		ctx,
		`SELECT `+workoutColumns+` FROM workouts WHERE id = $1 AND user_id = $2;`,
		id, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query workout: %w", err)
	}
	w, err := pgx.CollectExactlyOneRow(rows, scanWorkout)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrWorkoutNotFound
		}
		return nil, fmt.Errorf("collect workout: %w", err)
	}

	exercises, err := r.listExercises(ctx, r.db, id, ExerciseFilter{Status: StatusActive})
	if err != nil {
		return nil, err
	}
	w.Exercises = exercises

	return &w, nil
}

func (r *Repo) Update(ctx context.Context, w *Workout) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", w.ID))

	err = r.db.QueryRow(
		ctx,
		`UPDATE workouts
			SET name = $1, category = $2, description = $3, difficulty = $4, status = $5, updated_at = now()
		WHERE id = $6 AND user_id = $7
		RETURNING updated_at;`,
		w.Name, w.Category, w.Description, w.Difficulty, w.Status, w.ID, w.UserID,
	).Scan(&w.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrWorkoutNotFound
		}
		return fmt.Errorf("update workout: %w", err)
	}
	return nil
}

// Deactivate is the only delete: history keeps referencing the workout.
func (r *Repo) Deactivate(ctx context.Context, userID, id int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.deactivate")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	tag, err := r.db.Exec(
		ctx,
		`UPDATE workouts SET status = 'inactive', updated_at = now() WHERE id = $1 AND user_id = $2;`,
		id, userID,
	)
	if err != nil {
		return fmt.Errorf("deactivate workout: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrWorkoutNotFound
	}
	return nil
}

// AddExercise appends the exercise to the workout, after the current last one.
func (r *Repo) AddExercise(ctx context.Context, userID int, e Exercise) (_ *Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.exercises.add")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("workout_id", e.WorkoutID))

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

	// the row lock serializes concurrent inserts, so orders stay unique
	if err := lockOwnedWorkout(ctx, tx, userID, e.WorkoutID); err != nil {
		return nil, err
	}

	if e.Status == "" {
		e.Status = StatusActive
	}
	if e.WeightUnit == "" {
		e.WeightUnit = "kg"
	}
	err = tx.QueryRow(
		ctx,
		`INSERT INTO exercises
			(workout_id, name, description, muscle_group, execution_mode, sets, reps, duration_secs,
			 rest_secs, weight, weight_unit, notes, status, display_order)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13,
			(SELECT COALESCE(MAX(display_order), 0) + 1 FROM exercises WHERE workout_id = $1))
		RETURNING id, display_order, created_at, updated_at;`,
		e.WorkoutID, e.Name, e.Description, e.MuscleGroup, e.ExecutionMode, e.Sets, e.Reps, e.DurationSecs,
		e.RestSecs, e.Weight, e.WeightUnit, e.Notes, e.Status,
	).Scan(&e.ID, &e.Order, &e.CreatedAt, &e.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert exercise: %w", err)
	}

	return &e, nil
}

// ListExercises returns the workout's exercises matching the filter. Muscle groups
// compare case-insensitively.
func (r *Repo) ListExercises(ctx context.Context, userID, workoutID int, filter ExerciseFilter) (_ []Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.exercises.list")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("workout_id", workoutID))

	if err := r.checkOwnedWorkout(ctx, userID, workoutID); err != nil {
		return nil, err
	}
	return r.listExercises(ctx, r.db, workoutID, filter)
}

type querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

func (r *Repo) listExercises(ctx context.Context, q querier, workoutID int, filter ExerciseFilter) ([]Exercise, error) {
	rows, err := q.Query(
		ctx,
		`SELECT `+ExerciseColumns+` FROM exercises
		WHERE workout_id = $1
			AND ($2::text = '' OR status = $2)
			AND ($3::text = '' OR lower(muscle_group) = lower($3))
		ORDER BY display_order, id;`,
		workoutID, filter.Status, filter.MuscleGroup,
	)
	if err != nil {
		return nil, fmt.Errorf("query exercises: %w", err)
	}
	exercises, err := pgx.CollectRows(rows, ScanExercise)
	if err != nil {
		return nil, fmt.Errorf("collect exercises: %w", err)
	}
	return exercises, nil
}

func (r *Repo) GetExercise(ctx context.Context, userID, workoutID, id int) (_ *Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.exercises.get")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	rows, err := r.db.Query(
		ctx,
		`SELECT `+ExerciseColumns+` FROM exercises
		WHERE id = $1 AND workout_id = $2
			AND workout_id IN (SELECT id FROM workouts WHERE user_id = $3);`,
		id, workoutID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("query exercise: %w", err)
	}
	e, err := pgx.CollectExactlyOneRow(rows, ScanExercise)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrExerciseNotFound
		}
		return nil, fmt.Errorf("collect exercise: %w", err)
	}
	return &e, nil
}

func (r *Repo) UpdateExercise(ctx context.Context, userID int, e *Exercise) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.exercises.update")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", e.ID))

	err = r.db.QueryRow(
		ctx,
		`UPDATE exercises e
			SET name = $1, description = $2, muscle_group = $3, execution_mode = $4, sets = $5, reps = $6,
				duration_secs = $7, rest_secs = $8, weight = $9, weight_unit = $10, notes = $11, status = $12,
				updated_at = now()
		FROM workouts w
		WHERE e.id = $13 AND e.workout_id = $14 AND w.id = e.workout_id AND w.user_id = $15
		RETURNING e.updated_at;`,
		e.Name, e.Description, e.MuscleGroup, e.ExecutionMode, e.Sets, e.Reps,
		e.DurationSecs, e.RestSecs, e.Weight, e.WeightUnit, e.Notes, e.Status,
		e.ID, e.WorkoutID, userID,
	).Scan(&e.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrExerciseNotFound
		}
		return fmt.Errorf("update exercise: %w", err)
	}
	return nil
}

func (r *Repo) DeactivateExercise(ctx context.Context, userID, workoutID, id int) (err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.exercises.deactivate")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("id", id))

	tag, err := r.db.Exec(
		ctx,
		`UPDATE exercises e SET status = 'inactive', updated_at = now()
		FROM workouts w
		WHERE e.id = $1 AND e.workout_id = $2 AND w.id = e.workout_id AND w.user_id = $3;`,
		id, workoutID, userID,
	)
	if err != nil {
		return fmt.Errorf("deactivate exercise: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrExerciseNotFound
	}
	return nil
}

// ReorderExercises rewrites display orders 1..N following ids. ids must name
// every active exercise of the workout exactly once.
func (r *Repo) ReorderExercises(ctx context.Context, userID, workoutID int, ids []int) (_ []Exercise, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "repo.workouts.exercises.reorder")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("workout_id", workoutID), attribute.Int("count", len(ids)))

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

	if err := lockOwnedWorkout(ctx, tx, userID, workoutID); err != nil {
		return nil, err
	}

	current, err := r.listExercises(ctx, tx, workoutID, ExerciseFilter{Status: StatusActive})
	if err != nil {
		return nil, err
	}
	if err := validateReorder(current, ids); err != nil {
		return nil, err
	}

	batch := &pgx.Batch{}
	for i, id := range ids {
		batch.Queue(
			`UPDATE exercises SET display_order = $1, updated_at = now() WHERE id = $2 AND workout_id = $3;`,
			i+1, id, workoutID,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return nil, fmt.Errorf("reorder exercises: %w", err)
	}

	return r.listExercises(ctx, tx, workoutID, ExerciseFilter{Status: StatusActive})
}

func validateReorder(current []Exercise, ids []int) error {
	active := make(map[int]bool, len(current))
	for _, e := range current {
		active[e.ID] = true
	}

	fe := apperr.FieldErrors{}
	seen := make(map[int]bool, len(ids))
	for _, id := range ids {
		if !active[id] {
			fe.Add("exercicios", fmt.Sprintf("exercise %d is not an active exercise of this workout", id))
			continue
		}
		if seen[id] {
			fe.Add("exercicios", fmt.Sprintf("exercise %d is listed more than once", id))
		}
		seen[id] = true
	}
	if len(fe) == 0 && len(seen) != len(active) {
		fe.Add("exercicios", "must list every active exercise of the workout")
	}
	return fe.Err()
}

func lockOwnedWorkout(ctx context.Context, tx pgx.Tx, userID, workoutID int) error {
	var id int
	err := tx.QueryRow(
		ctx,
		`SELECT id FROM workouts WHERE id = $1 AND user_id = $2 FOR UPDATE;`,
		workoutID, userID,
	).Scan(&id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return ErrWorkoutNotFound
		}
		return fmt.Errorf("lock workout: %w", err)
	}
	return nil
}

func (r *Repo) checkOwnedWorkout(ctx context.Context, userID, workoutID int) error {
	var exists bool
	err := r.db.QueryRow(
		ctx,
		`SELECT EXISTS (SELECT 1 FROM workouts WHERE id = $1 AND user_id = $2);`,
		workoutID, userID,
	).Scan(&exists)
	if err != nil {
		return fmt.Errorf("check workout: %w", err)
	}
	if !exists {
		return ErrWorkoutNotFound
	}
	return nil
}

func scanWorkout(row pgx.CollectableRow) (Workout, error) {
	var w Workout
	err := row.Scan(
		&w.ID, &w.UserID, &w.Name, &w.Category, &w.Description, &w.Difficulty, &w.Status,
		&w.CreatedAt, &w.UpdatedAt,
	)
	return w, err
}

// ScanExercise scans a row selected with ExerciseColumns.
func ScanExercise(row pgx.CollectableRow) (Exercise, error) {
	var e Exercise
	err := row.Scan(
		&e.ID, &e.WorkoutID, &e.Name, &e.Description, &e.MuscleGroup, &e.ExecutionMode, &e.Sets, &e.Reps,
		&e.DurationSecs, &e.RestSecs, &e.Weight, &e.WeightUnit, &e.Notes, &e.Order, &e.Status,
		&e.CreatedAt, &e.UpdatedAt,
	)
	return e, err
}
