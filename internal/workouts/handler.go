package workouts

import (
	"context"
	"net/http"

	"github.com/2beens/fittrack/internal/api"
	"github.com/2beens/fittrack/internal/apperr"
	"github.com/2beens/fittrack/internal/auth"
	"github.com/2beens/fittrack/internal/telemetry/tracing"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=workouts_test

type workoutsRepo interface {
	Create(ctx context.Context, w Workout) (*Workout, error)
	List(ctx context.Context, params ListParams) (_ []Workout, total int, err error)
	Get(ctx context.Context, userID, id int) (*Workout, error)
	Update(ctx context.Context, w *Workout) error
	Deactivate(ctx context.Context, userID, id int) error
	AddExercise(ctx context.Context, userID int, e Exercise) (*Exercise, error)
	ListExercises(ctx context.Context, userID, workoutID int, filter ExerciseFilter) ([]Exercise, error)
	GetExercise(ctx context.Context, userID, workoutID, id int) (*Exercise, error)
	UpdateExercise(ctx context.Context, userID int, e *Exercise) error
	DeactivateExercise(ctx context.Context, userID, workoutID, id int) error
	ReorderExercises(ctx context.Context, userID, workoutID int, ids []int) ([]Exercise, error)
}

type Handler struct {
	repo      workoutsRepo
	responder *api.Responder
}

func NewHandler(repo workoutsRepo, responder *api.Responder) *Handler {
	return &Handler{
		repo:      repo,
		responder: responder,
	}
}

func (handler *Handler) userID(w http.ResponseWriter, r *http.Request) (int, bool) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		handler.responder.Err(w, apperr.Unauthenticated("unauthenticated"))
	}
	return userID, ok
}

func (handler *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.list")
	defer span.End()

	userID, ok := handler.userID(w, r)
	if !ok {
		return
	}

	page, perPage, err := api.Pagination(r)
	if err != nil {
		handler.responder.Err(w, err)
		return
	}

	q := r.URL.Query()
	params := ListParams{
		UserID:     userID,
		Status:     q.Get("status"),
		Difficulty: q.Get("dificuldade"),
		Search:     q.Get("busca"),
		Page:       page,
		Size:       perPage,
	}
	fe := apperr.FieldErrors{}
	fe.Check(params.Status == "" || params.Status == StatusActive || params.Status == StatusInactive,
		"status", "must be one of: active inactive")
	fe.Check(params.Difficulty == "" || isDifficulty(params.Difficulty),
		"dificuldade", "must be one of: beginner intermediate advanced")
	if err := fe.Err(); err != nil {
		handler.responder.Err(w, err)
		return
	}

	workouts, total, err := handler.repo.List(ctx, params)
	if err != nil {
		handler.responder.Err(w, err)
		return
	}
	if workouts == nil {
		workouts = []Workout{}
	}

	handler.responder.OK(w, api.NewPage(workouts, page, perPage, total), "")
}

func (handler *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.create")
	defer span.End()

	userID, ok := handler.userID(w, r)
	if !ok {
		return
	}

	var req WorkoutRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		handler.responder.Err(w, err)
		return
	}
	if req.Name == nil {
		handler.responder.Err(w, apperr.Validation(map[string][]string{"nome_treino": {"is required"}}))
		return
	}

	workout := Workout{UserID: userID, Status: StatusActive}
	req.Apply(&workout)

	created, err := handler.repo.Create(ctx, workout)
	if err != nil {
		handler.responder.Err(w, err)
		return
	}

	log.Debugf("workout %d created for user %d", created.ID, userID)
	handler.responder.Created(w, created, "workout created")
}

func (handler *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.get")
	defer span.End()

	userID, ok := handler.userID(w, r)
	if !ok {
		return
	}
	id, err := api.PathInt(r, "id")
	if err != nil {
		handler.responder.Err(w, err)
		return
	}

	workout, err := handler.repo.Get(ctx, userID, id)
	if err != nil {
		handler.responder.Err(w, err)
		return
	}
	if workout.Exercises == nil {
		workout.Exercises = []Exercise{}
	}

	handler.responder.OK(w, workout, "")
}

func (handler *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.update")
	defer span.End()

	userID, ok := handler.userID(w, r)
	if !ok {
		return
	}
	id, err := api.PathInt(r, "id")
	if err != nil {
		handler.responder.Err(w, err)
		return
	}

	var req WorkoutRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		handler.responder.Err(w, err)
		return
	}

	workout, err := handler.repo.Get(ctx, userID, id)
	if err != nil {
		handler.responder.Err(w, err)
		return
	}
	req.Apply(workout)

	if err := handler.repo.Update(ctx, workout); err != nil {
		handler.responder.Err(w, err)
		return
	}

	handler.responder.OK(w, workout, "workout updated")
}

func (handler *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.delete")
	defer span.End()

	userID, ok := handler.userID(w, r)
	if !ok {
		return
	}
	id, err := api.PathInt(r, "id")
	if err != nil {
		handler.responder.Err(w, err)
		return
	}

	if err := handler.repo.Deactivate(ctx, userID, id); err != nil {
		handler.responder.Err(w, err)
		return
	}

	handler.responder.OK(w, nil, "workout deactivated")
}

func (handler *Handler) HandleListExercises(w http.ResponseWriter, r *http.Request) {
	status := r.URL.Query().Get("status")
	if status != "" && status != StatusActive && status != StatusInactive {
		handler.responder.Err(w, apperr.Validation(map[string][]string{"status": {"must be one of: active inactive"}}))
		return
	}
	handler.listExercises(w, r, "handler.workouts.exercises.list", ExerciseFilter{
		Status:      status,
		MuscleGroup: r.URL.Query().Get("grupo_muscular"),
	})
}

// HandleExercisesByMuscleGroup lists the active exercises of one muscle group.
func (handler *Handler) HandleExercisesByMuscleGroup(w http.ResponseWriter, r *http.Request) {
	group := mux.Vars(r)["grupo"]
	if group == "" {
		handler.responder.Err(w, apperr.Validation(map[string][]string{"grupo_muscular": {"is required"}}))
		return
	}
	handler.listExercises(w, r, "handler.workouts.exercises.by_group", ExerciseFilter{
		Status:      StatusActive,
		MuscleGroup: group,
	})
}

func (handler *Handler) listExercises(w http.ResponseWriter, r *http.Request, spanName string, filter ExerciseFilter) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), spanName)
	defer span.End()

	userID, ok := handler.userID(w, r)
	if !ok {
		return
	}
	workoutID, err := api.PathInt(r, "treinoId")
	if err != nil {
		handler.responder.Err(w, err)
		return
	}

	exercises, err := handler.repo.ListExercises(ctx, userID, workoutID, filter)
	if err != nil {
		handler.responder.Err(w, err)
		return
	}
	if exercises == nil {
		exercises = []Exercise{}
	}

	handler.responder.OK(w, exercises, "")
}

func (handler *Handler) HandleCreateExercise(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.exercises.create")
	defer span.End()

	userID, ok := handler.userID(w, r)
	if !ok {
		return
	}
	workoutID, err := api.PathInt(r, "treinoId")
	if err != nil {
		handler.responder.Err(w, err)
		return
	}

	var req ExerciseRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		handler.responder.Err(w, err)
		return
	}
	fe := apperr.FieldErrors{}
	fe.Check(req.Name != nil, "nome_exercicio", "is required")
	fe.Check(req.ExecutionMode != nil, "tipo_execucao", "is required")
	if err := fe.Err(); err != nil {
		handler.responder.Err(w, err)
		return
	}

	exercise := Exercise{
		WorkoutID:  workoutID,
		Sets:       1,
		WeightUnit: "kg",
		Status:     StatusActive,
	}
	req.Apply(&exercise)
	if err := exercise.Validate(); err != nil {
		handler.responder.Err(w, err)
		return
	}

	created, err := handler.repo.AddExercise(ctx, userID, exercise)
	if err != nil {
		handler.responder.Err(w, err)
		return
	}

	handler.responder.Created(w, created, "exercise created")
}

func (handler *Handler) HandleGetExercise(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.exercises.get")
	defer span.End()

	userID, workoutID, id, ok := handler.exercisePath(w, r)
	if !ok {
		return
	}

	exercise, err := handler.repo.GetExercise(ctx, userID, workoutID, id)
	if err != nil {
		handler.responder.Err(w, err)
		return
	}

	handler.responder.OK(w, exercise, "")
}

func (handler *Handler) HandleUpdateExercise(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.exercises.update")
	defer span.End()

	userID, workoutID, id, ok := handler.exercisePath(w, r)
	if !ok {
		return
	}

	var req ExerciseRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		handler.responder.Err(w, err)
		return
	}

	exercise, err := handler.repo.GetExercise(ctx, userID, workoutID, id)
	if err != nil {
		handler.responder.Err(w, err)
		return
	}
	req.Apply(exercise)
	if err := exercise.Validate(); err != nil {
		handler.responder.Err(w, err)
		return
	}

	if err := handler.repo.UpdateExercise(ctx, userID, exercise); err != nil {
		handler.responder.Err(w, err)
		return
	}

	handler.responder.OK(w, exercise, "exercise updated")
}

func (handler *Handler) HandleDeleteExercise(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.exercises.delete")
	defer span.End()

	userID, workoutID, id, ok := handler.exercisePath(w, r)
	if !ok {
		return
	}

	if err := handler.repo.DeactivateExercise(ctx, userID, workoutID, id); err != nil {
		handler.responder.Err(w, err)
		return
	}

	handler.responder.OK(w, nil, "exercise deactivated")
}

func (handler *Handler) HandleReorderExercises(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.workouts.exercises.reorder")
	defer span.End()

	userID, ok := handler.userID(w, r)
	if !ok {
		return
	}
	workoutID, err := api.PathInt(r, "treinoId")
	if err != nil {
		handler.responder.Err(w, err)
		return
	}

	var req ReorderRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		handler.responder.Err(w, err)
		return
	}

	exercises, err := handler.repo.ReorderExercises(ctx, userID, workoutID, req.ExerciseIDs)
	if err != nil {
		handler.responder.Err(w, err)
		return
	}

	handler.responder.OK(w, exercises, "exercises reordered")
}

func (handler *Handler) exercisePath(w http.ResponseWriter, r *http.Request) (userID, workoutID, id int, ok bool) {
	userID, ok = handler.userID(w, r)
	if !ok {
		return 0, 0, 0, false
	}
	workoutID, err := api.PathInt(r, "treinoId")
	if err != nil {
		handler.responder.Err(w, err)
		return 0, 0, 0, false
	}
	id, err = api.PathInt(r, "id")
	if err != nil {
		handler.responder.Err(w, err)
		return 0, 0, 0, false
	}
	return userID, workoutID, id, true
}

func isDifficulty(s string) bool {
	switch s {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return true
	}
	return false
}
