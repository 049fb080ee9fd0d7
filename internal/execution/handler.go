package execution

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/2beens/fittrack/internal/api"
	"github.com/2beens/fittrack/internal/apperr"
	"github.com/2beens/fittrack/internal/auth"
	"github.com/2beens/fittrack/internal/telemetry/tracing"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=execution_test

type executionService interface {
	Start(ctx context.Context, userID, workoutID int) (*Session, error)
	Get(ctx context.Context, userID, id int) (*Session, error)
	Current(ctx context.Context, userID int) (*Session, error)
	History(ctx context.Context, params HistoryParams) ([]*Session, int, error)
	Pause(ctx context.Context, userID, id int) (*Session, error)
	Resume(ctx context.Context, userID, id int) (*Session, error)
	Advance(ctx context.Context, userID, id int) (*Session, error)
	Retreat(ctx context.Context, userID, id int) (*Session, error)
	Skip(ctx context.Context, userID, id int, req SkipRequest) (*Session, error)
	UpdateCurrent(ctx context.Context, userID, id int, upd ExerciseUpdate) (*Session, error)
	Finish(ctx context.Context, userID, id int, req FinishRequest) (*Session, error)
	Cancel(ctx context.Context, userID, id int) (*Session, error)
}

type Handler struct {
	service   executionService
	responder *api.Responder

	// Now is used for live elapsed times of open sessions.
	Now func() time.Time
}

func NewHandler(service executionService, responder *api.Responder) *Handler {
	return &Handler{
		service:   service,
		responder: responder,
		Now:       time.Now,
	}
}

func (handler *Handler) userID(w http.ResponseWriter, r *http.Request) (int, bool) {
	userID, ok := auth.UserIDFromContext(r.Context())
	if !ok {
		handler.responder.Err(w, apperr.Unauthenticated("unauthenticated"))
	}
	return userID, ok
}

func (handler *Handler) HandleStart(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.execution.start")
	defer span.End()

	userID, ok := handler.userID(w, r)
	if !ok {
		return
	}
	workoutID, err := api.PathInt(r, "workoutId")
	if err != nil {
		handler.responder.Err(w, err)
		return
	}

	session, err := handler.service.Start(ctx, userID, workoutID)
	if err != nil {
		handler.responder.Err(w, err)
		return
	}

	handler.responder.Created(w, NewSessionView(session, handler.Now()), "workout started")
}

func (handler *Handler) HandleCurrent(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.execution.current")
	defer span.End()

	userID, ok := handler.userID(w, r)
	if !ok {
		return
	}

	session, err := handler.service.Current(ctx, userID)
	if err != nil {
		handler.responder.Err(w, err)
		return
	}

	handler.responder.OK(w, NewSessionView(session, handler.Now()), "")
}

// HandleInProgress lists the user's open sessions, an empty list when none is open.
func (handler *Handler) HandleInProgress(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.execution.in_progress")
	defer span.End()

	userID, ok := handler.userID(w, r)
	if !ok {
		return
	}

	items := []HistoryItem{}
	session, err := handler.service.Current(ctx, userID)
	switch {
	case errors.Is(err, ErrNoActiveSession):
	case err != nil:
		handler.responder.Err(w, err)
		return
	default:
		items = append(items, NewHistoryItem(session, handler.Now()))
	}

	handler.responder.OK(w, items, "")
}

func (handler *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.execution.get")
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

	session, err := handler.service.Get(ctx, userID, id)
	if err != nil {
		handler.responder.Err(w, err)
		return
	}

	handler.responder.OK(w, NewSessionView(session, handler.Now()), "")
}

func (handler *Handler) HandleHistory(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.execution.history")
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
	workoutID, err := api.QueryInt(r, "treino_id", 0, 1, 1<<31-1)
	if err != nil {
		handler.responder.Err(w, err)
		return
	}

	q := r.URL.Query()
	params := HistoryParams{
		UserID:    userID,
		Status:    q.Get("status"),
		WorkoutID: workoutID,
		Page:      page,
		Size:      perPage,
	}

	fe := apperr.FieldErrors{}
	fe.Check(params.Status == "" || isStatus(params.Status),
		"status", "must be one of: started paused finished cancelled")
	if raw := q.Get("data_inicio"); raw != "" {
		from, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			fe.Add("data_inicio", "must be a date formatted as YYYY-MM-DD")
		} else {
			params.From = &from
		}
	}
	if err := fe.Err(); err != nil {
		handler.responder.Err(w, err)
		return
	}

	sessions, total, err := handler.service.History(ctx, params)
	if err != nil {
		handler.responder.Err(w, err)
		return
	}

	now := handler.Now()
	items := make([]HistoryItem, 0, len(sessions))
	for _, s := range sessions {
		items = append(items, NewHistoryItem(s, now))
	}

	handler.responder.OK(w, api.NewPage(items, page, perPage, total), "")
}

func (handler *Handler) HandlePause(w http.ResponseWriter, r *http.Request) {
	handler.handleTransition(w, r, "pause", "workout paused", handler.service.Pause)
}

func (handler *Handler) HandleResume(w http.ResponseWriter, r *http.Request) {
	handler.handleTransition(w, r, "resume", "workout resumed", handler.service.Resume)
}

func (handler *Handler) HandleAdvance(w http.ResponseWriter, r *http.Request) {
	handler.handleTransition(w, r, "advance", "moved to the next exercise", handler.service.Advance)
}

func (handler *Handler) HandleRetreat(w http.ResponseWriter, r *http.Request) {
	handler.handleTransition(w, r, "retreat", "moved to the previous exercise", handler.service.Retreat)
}

func (handler *Handler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	handler.handleTransition(w, r, "cancel", "workout cancelled", handler.service.Cancel)
}

func (handler *Handler) HandleSkip(w http.ResponseWriter, r *http.Request) {
	var req SkipRequest
	handler.handleTransition(w, r, "skip", "exercise skipped", func(ctx context.Context, userID, id int) (*Session, error) {
		if err := api.DecodeJSON(r, &req); err != nil {
			return nil, err
		}
		return handler.service.Skip(ctx, userID, id, req)
	})
}

func (handler *Handler) HandleUpdateExercise(w http.ResponseWriter, r *http.Request) {
	var upd ExerciseUpdate
	handler.handleTransition(w, r, "update", "exercise updated", func(ctx context.Context, userID, id int) (*Session, error) {
		if err := api.DecodeJSON(r, &upd); err != nil {
			return nil, err
		}
		return handler.service.UpdateCurrent(ctx, userID, id, upd)
	})
}

func (handler *Handler) HandleFinish(w http.ResponseWriter, r *http.Request) {
	var req FinishRequest
	handler.handleTransition(w, r, "finish", "workout finished", func(ctx context.Context, userID, id int) (*Session, error) {
		if err := api.DecodeJSON(r, &req); err != nil {
			return nil, err
		}
		return handler.service.Finish(ctx, userID, id, req)
	})
}

func (handler *Handler) handleTransition(
	w http.ResponseWriter,
	r *http.Request,
	name, message string,
	apply func(ctx context.Context, userID, id int) (*Session, error),
) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.execution."+name)
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

	session, err := apply(ctx, userID, id)
	if err != nil {
		handler.responder.Err(w, err)
		return
	}

	handler.responder.OK(w, NewSessionView(session, handler.Now()), message)
}

func isStatus(status string) bool {
	switch status {
	case StatusStarted, StatusPaused, StatusFinished, StatusCancelled:
		return true
	}
	return false
}
