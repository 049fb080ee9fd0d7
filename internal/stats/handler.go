package stats

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/2beens/fittrack/internal/api"
	"github.com/2beens/fittrack/internal/apperr"
	"github.com/2beens/fittrack/internal/auth"
	"github.com/2beens/fittrack/internal/telemetry/tracing"

	"github.com/gorilla/mux"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=stats_test

type statsService interface {
	Dashboard(ctx context.Context, userID int) (json.RawMessage, error)
	Progress(ctx context.Context, userID, days int) (json.RawMessage, error)
	Rankings(ctx context.Context, userID int) (json.RawMessage, error)
	MuscleGroups(ctx context.Context, userID int) (json.RawMessage, error)
	Consistency(ctx context.Context, userID int) (json.RawMessage, error)
	Compare(ctx context.Context, userID, recentDays, longerDays int) (json.RawMessage, error)
	Goals(ctx context.Context, userID int) (json.RawMessage, error)
	Summary(ctx context.Context, userID, days int) (json.RawMessage, error)
	WeeklyFrequency(ctx context.Context, userID int) (json.RawMessage, error)
	AverageDuration(ctx context.Context, userID int) (json.RawMessage, error)
	Volume(ctx context.Context, userID int) (json.RawMessage, error)
	PreferredHours(ctx context.Context, userID int) (json.RawMessage, error)
	Export(ctx context.Context, userID int) (json.RawMessage, error)
	Report(ctx context.Context, userID int, kind string) (json.RawMessage, error)
	Evolution(ctx context.Context, userID, exerciseID int) (json.RawMessage, error)
	WeightEvolution(ctx context.Context, userID, exerciseID int) (json.RawMessage, error)
}

const (
	defaultPeriodDays = 30
	maxPeriodDays     = 365
)

type Handler struct {
	service   statsService
	responder *api.Responder
}

func NewHandler(service statsService, responder *api.Responder) *Handler {
	return &Handler{
		service:   service,
		responder: responder,
	}
}

// serve runs a report for the authenticated user and writes it as the envelope's data.
func (handler *Handler) serve(
	w http.ResponseWriter,
	r *http.Request,
	name string,
	report func(ctx context.Context, userID int) (json.RawMessage, error),
) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.stats."+name)
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		handler.responder.Err(w, apperr.Unauthenticated("unauthenticated"))
		return
	}

	payload, err := report(ctx, userID)
	if err != nil {
		handler.responder.Err(w, err)
		return
	}

	handler.responder.OK(w, payload, "")
}

func (handler *Handler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	handler.serve(w, r, "dashboard", handler.service.Dashboard)
}

func (handler *Handler) HandleProgress(w http.ResponseWriter, r *http.Request) {
	handler.serve(w, r, "progress", func(ctx context.Context, userID int) (json.RawMessage, error) {
		days, err := api.QueryInt(r, "periodo", defaultPeriodDays, 1, maxPeriodDays)
		if err != nil {
			return nil, err
		}
		return handler.service.Progress(ctx, userID, days)
	})
}

func (handler *Handler) HandleRankings(w http.ResponseWriter, r *http.Request) {
	handler.serve(w, r, "rankings", handler.service.Rankings)
}

func (handler *Handler) HandleMuscleGroups(w http.ResponseWriter, r *http.Request) {
	handler.serve(w, r, "muscle_groups", handler.service.MuscleGroups)
}

func (handler *Handler) HandleConsistency(w http.ResponseWriter, r *http.Request) {
	handler.serve(w, r, "consistency", handler.service.Consistency)
}

func (handler *Handler) HandleCompare(w http.ResponseWriter, r *http.Request) {
	handler.serve(w, r, "compare", func(ctx context.Context, userID int) (json.RawMessage, error) {
		recent, err := api.QueryInt(r, "periodo1", 30, 1, maxPeriodDays)
		if err != nil {
			return nil, err
		}
		longer, err := api.QueryInt(r, "periodo2", 60, 1, maxPeriodDays)
		if err != nil {
			return nil, err
		}
		return handler.service.Compare(ctx, userID, recent, longer)
	})
}

func (handler *Handler) HandleGoals(w http.ResponseWriter, r *http.Request) {
	handler.serve(w, r, "goals", handler.service.Goals)
}

func (handler *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	handler.serve(w, r, "summary", func(ctx context.Context, userID int) (json.RawMessage, error) {
		days, err := api.QueryInt(r, "periodo", defaultPeriodDays, 1, maxPeriodDays)
		if err != nil {
			return nil, err
		}
		return handler.service.Summary(ctx, userID, days)
	})
}

func (handler *Handler) HandleWeeklyFrequency(w http.ResponseWriter, r *http.Request) {
	handler.serve(w, r, "weekly_frequency", handler.service.WeeklyFrequency)
}

func (handler *Handler) HandleAverageDuration(w http.ResponseWriter, r *http.Request) {
	handler.serve(w, r, "average_duration", handler.service.AverageDuration)
}

func (handler *Handler) HandleVolume(w http.ResponseWriter, r *http.Request) {
	handler.serve(w, r, "volume", handler.service.Volume)
}

func (handler *Handler) HandlePreferredHours(w http.ResponseWriter, r *http.Request) {
	handler.serve(w, r, "preferred_hours", handler.service.PreferredHours)
}

func (handler *Handler) HandleExport(w http.ResponseWriter, r *http.Request) {
	handler.serve(w, r, "export", func(ctx context.Context, userID int) (json.RawMessage, error) {
		if format := r.URL.Query().Get("formato"); format != "" && format != "json" {
			return nil, apperr.Validation(map[string][]string{
				"formato": {"only json is supported"},
			})
		}
		return handler.service.Export(ctx, userID)
	})
}

func (handler *Handler) HandleReport(w http.ResponseWriter, r *http.Request) {
	handler.serve(w, r, "report", func(ctx context.Context, userID int) (json.RawMessage, error) {
		return handler.service.Report(ctx, userID, mux.Vars(r)["tipo"])
	})
}

func (handler *Handler) HandleEvolution(w http.ResponseWriter, r *http.Request) {
	handler.serve(w, r, "evolution", func(ctx context.Context, userID int) (json.RawMessage, error) {
		exerciseID, err := api.PathInt(r, "id")
		if err != nil {
			return nil, err
		}
		return handler.service.Evolution(ctx, userID, exerciseID)
	})
}

func (handler *Handler) HandleWeightEvolution(w http.ResponseWriter, r *http.Request) {
	handler.serve(w, r, "weight_evolution", func(ctx context.Context, userID int) (json.RawMessage, error) {
		exerciseID, err := api.PathInt(r, "id")
		if err != nil {
			return nil, err
		}
		return handler.service.WeightEvolution(ctx, userID, exerciseID)
	})
}
