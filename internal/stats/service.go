package stats

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/2beens/fittrack/internal/apperr"
	"github.com/2beens/fittrack/internal/config"
	"github.com/2beens/fittrack/internal/telemetry/metrics"
	"github.com/2beens/fittrack/internal/telemetry/tracing"

	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/errgroup"
)

//go:generate mockgen -source=$GOFILE -destination=service_mocks_test.go -package=stats_test

type statsRepo interface {
	Sessions(ctx context.Context, userID int) ([]SessionRecord, error)
	CompletedExercises(ctx context.Context, userID, exerciseID int) ([]ExerciseRecord, error)
	Exercise(ctx context.Context, userID, exerciseID int) (*ExerciseInfo, error)
}

const (
	reportDashboard       = "dashboard"
	reportProgress        = "progresso"
	reportRankings        = "rankings"
	reportMuscleGroups    = "grupos-musculares"
	reportEvolution       = "evolucao"
	reportWeightEvolution = "evolucao-peso"
	reportConsistency     = "consistencia"
	reportComparison      = "comparativos"
	reportGoals           = "metas"
	reportSummary         = "resumo"
	reportWeeklyFrequency = "frequencia-semanal"
	reportAverageDuration = "duracao-media"
	reportExport          = "exportar"
	reportVolume          = "volume-treino"
	reportPreferredHours  = "horarios-preferidos"
	reportPeriodic        = "relatorio"

	ReportWeekly  = "semanal"
	ReportMonthly = "mensal"
	ReportYearly  = "anual"
)

type Service struct {
	repo           statsRepo
	cache          *Cache
	goals          config.Goals
	loc            *time.Location
	metricsManager *metrics.Manager

	Now func() time.Time
}

// NewService builds the statistics service; a nil cache disables caching.
func NewService(
	repo statsRepo,
	cache *Cache,
	goals config.Goals,
	loc *time.Location,
	metricsManager *metrics.Manager,
) *Service {
	if loc == nil {
		loc = time.UTC
	}
	return &Service{
		repo:           repo,
		cache:          cache,
		goals:          goals,
		loc:            loc,
		metricsManager: metricsManager,
		Now:            time.Now,
	}
}

// Invalidate drops the cached payloads of the user.
func (s *Service) Invalidate(userID int) {
	if s.cache != nil {
		s.cache.Invalidate(userID)
	}
}

type Period struct {
	Days int    `json:"dias"`
	From string `json:"data_inicio"`
	To   string `json:"data_fim"`
}

func (s *Service) Dashboard(ctx context.Context, userID int) (json.RawMessage, error) {
	return s.render(ctx, userID, reportDashboard, "", func(d *Dataset) (any, error) {
		return map[string]any{
			"geral":           d.General(),
			"ultimos_30_dias": d.Window(30),
			"favoritos":       d.Favorites(),
			"sequencias":      d.Streaks(),
		}, nil
	})
}

func (s *Service) Progress(ctx context.Context, userID, days int) (json.RawMessage, error) {
	return s.render(ctx, userID, reportProgress, strconv.Itoa(days), func(d *Dataset) (any, error) {
		return map[string]any{
			"periodo": Period{
				Days: days,
				From: d.Now.AddDate(0, 0, -days).In(d.Loc).Format(time.DateOnly),
				To:   d.Now.In(d.Loc).Format(time.DateOnly),
			},
			"progresso_diario":           d.Daily(days),
			"exercicios_mais_executados": d.TopExercises(10),
			"grupos_musculares":          d.MuscleGroups(),
		}, nil
	})
}

func (s *Service) Rankings(ctx context.Context, userID int) (json.RawMessage, error) {
	return s.render(ctx, userID, reportRankings, "", func(d *Dataset) (any, error) {
		return map[string]any{
			"top_exercicios": d.TopExercises(10),
			"top_treinos":    d.TopWorkouts(10),
			"recordes_peso":  d.Records(10),
			"sequencias":     d.Streaks(),
		}, nil
	})
}

func (s *Service) MuscleGroups(ctx context.Context, userID int) (json.RawMessage, error) {
	return s.render(ctx, userID, reportMuscleGroups, "", func(d *Dataset) (any, error) {
		return d.MuscleGroups(), nil
	})
}

func (s *Service) Consistency(ctx context.Context, userID int) (json.RawMessage, error) {
	return s.render(ctx, userID, reportConsistency, "", func(d *Dataset) (any, error) {
		return map[string]any{
			"consistencia": d.Consistency(),
			"sequencias":   d.Streaks(),
		}, nil
	})
}

func (s *Service) Compare(ctx context.Context, userID, recentDays, longerDays int) (json.RawMessage, error) {
	params := fmt.Sprintf("%d:%d", recentDays, longerDays)
	return s.render(ctx, userID, reportComparison, params, func(d *Dataset) (any, error) {
		return d.Compare(recentDays, longerDays), nil
	})
}

type GoalsView struct {
	WeeklySessions     int `json:"treinos_semanais"`
	MonthlySessions    int `json:"treinos_mensais"`
	StreakDays         int `json:"sequencia_dias"`
	WeeklyMinutes      int `json:"tempo_semanal_minutos"`
	MonthlyMinutes     int `json:"tempo_mensal_minutos"`
	WeeklyExercises    int `json:"exercicios_semanais"`
	WeeklyMuscleGroups int `json:"grupos_semanais"`
}

func (s *Service) Goals(ctx context.Context, userID int) (json.RawMessage, error) {
	return s.render(ctx, userID, reportGoals, "", func(d *Dataset) (any, error) {
		return map[string]any{
			"metas": GoalsView{
				WeeklySessions:     s.goals.WeeklySessions,
				MonthlySessions:    s.goals.MonthlySessions,
				StreakDays:         s.goals.StreakDays,
				WeeklyMinutes:      s.goals.WeeklyMinutes,
				MonthlyMinutes:     s.goals.MonthlyMinutes,
				WeeklyExercises:    s.goals.WeeklyExercises,
				WeeklyMuscleGroups: s.goals.WeeklyMuscleGroup,
			},
			"progresso":  d.Consistency(),
			"sequencias": d.Streaks(),
		}, nil
	})
}

func (s *Service) Summary(ctx context.Context, userID, days int) (json.RawMessage, error) {
	return s.render(ctx, userID, reportSummary, strconv.Itoa(days), func(d *Dataset) (any, error) {
		return map[string]any{
			"periodo":          d.Window(days),
			"progresso_diario": d.Daily(days),
		}, nil
	})
}

func (s *Service) WeeklyFrequency(ctx context.Context, userID int) (json.RawMessage, error) {
	return s.render(ctx, userID, reportWeeklyFrequency, "", func(d *Dataset) (any, error) {
		return d.WeeklyFrequency(), nil
	})
}

func (s *Service) AverageDuration(ctx context.Context, userID int) (json.RawMessage, error) {
	return s.render(ctx, userID, reportAverageDuration, "", func(d *Dataset) (any, error) {
		general := d.General()
		return map[string]any{
			"duracao_media_geral": general.AverageSecondsText,
			"tempo_total":         general.TotalSecondsText,
		}, nil
	})
}

func (s *Service) Volume(ctx context.Context, userID int) (json.RawMessage, error) {
	return s.render(ctx, userID, reportVolume, "", func(d *Dataset) (any, error) {
		return d.Volume(), nil
	})
}

func (s *Service) PreferredHours(ctx context.Context, userID int) (json.RawMessage, error) {
	return s.render(ctx, userID, reportPreferredHours, "", func(d *Dataset) (any, error) {
		return d.PreferredHours(), nil
	})
}

func (s *Service) Export(ctx context.Context, userID int) (json.RawMessage, error) {
	return s.render(ctx, userID, reportExport, "", func(d *Dataset) (any, error) {
		return map[string]any{
			"formato":           "json",
			"gerado_em":         d.Now,
			"geral":             d.General(),
			"top_exercicios":    d.TopExercises(20),
			"top_treinos":       d.TopWorkouts(20),
			"grupos_musculares": d.MuscleGroups(),
			"progresso_90_dias": d.Daily(90),
		}, nil
	})
}

// Report renders the periodic report of the given kind: semanal, mensal or anual.
func (s *Service) Report(ctx context.Context, userID int, kind string) (json.RawMessage, error) {
	if kind != ReportWeekly && kind != ReportMonthly && kind != ReportYearly {
		return nil, apperr.Validation(map[string][]string{
			"tipo": {"must be one of: semanal mensal anual"},
		})
	}

	return s.render(ctx, userID, reportPeriodic, kind, func(d *Dataset) (any, error) {
		payload := map[string]any{
			"tipo":      kind,
			"gerado_em": d.Now,
		}
		switch kind {
		case ReportWeekly:
			payload["periodo"] = d.Window(7)
			payload["progresso"] = d.Daily(7)
		case ReportMonthly:
			payload["periodo"] = d.Window(30)
			payload["progresso"] = d.Daily(30)
			payload["top_exercicios"] = d.TopExercises(10)
		case ReportYearly:
			payload["periodo"] = d.Window(365)
			payload["geral"] = d.General()
			payload["rankings"] = map[string]any{
				"exercicios": d.TopExercises(15),
				"treinos":    d.TopWorkouts(15),
				"recordes":   d.Records(15),
			}
		}
		return payload, nil
	})
}

// Evolution is the history of one exercise with its identity.
func (s *Service) Evolution(ctx context.Context, userID, exerciseID int) (json.RawMessage, error) {
	return s.renderExercise(ctx, userID, exerciseID, reportEvolution, func(info *ExerciseInfo, d *Dataset) any {
		return map[string]any{
			"exercicio": info,
			"evolucao":  d.Evolution(),
		}
	})
}

func (s *Service) WeightEvolution(ctx context.Context, userID, exerciseID int) (json.RawMessage, error) {
	return s.renderExercise(ctx, userID, exerciseID, reportWeightEvolution, func(_ *ExerciseInfo, d *Dataset) any {
		return d.Evolution()
	})
}

// render serves a payload computed from the user's full history, from cache when possible.
func (s *Service) render(
	ctx context.Context,
	userID int,
	report, params string,
	build func(d *Dataset) (any, error),
) (_ json.RawMessage, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.stats."+report)
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user_id", userID))

	key := s.cacheKey(userID, report, params)
	if cached, ok := s.cached(key); ok {
		return cached, nil
	}

	d := s.dataset()
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		sessions, err := s.repo.Sessions(gCtx, userID)
		if err != nil {
			return fmt.Errorf("load sessions: %w", err)
		}
		d.Sessions = sessions
		return nil
	})
	g.Go(func() error {
		exercises, err := s.repo.CompletedExercises(gCtx, userID, 0)
		if err != nil {
			return fmt.Errorf("load exercises: %w", err)
		}
		d.Exercises = exercises
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return s.store(key, report, func() (any, error) {
		return build(d)
	})
}

func (s *Service) renderExercise(
	ctx context.Context,
	userID, exerciseID int,
	report string,
	build func(info *ExerciseInfo, d *Dataset) any,
) (_ json.RawMessage, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.stats."+report)
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("user_id", userID), attribute.Int("exercise_id", exerciseID))

	params := strconv.Itoa(exerciseID)
	key := s.cacheKey(userID, report, params)
	if cached, ok := s.cached(key); ok {
		return cached, nil
	}

	d := s.dataset()
	var info *ExerciseInfo
	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		info, err = s.repo.Exercise(gCtx, userID, exerciseID)
		return err
	})
	g.Go(func() error {
		exercises, err := s.repo.CompletedExercises(gCtx, userID, exerciseID)
		if err != nil {
			return fmt.Errorf("load exercise history: %w", err)
		}
		d.Exercises = exercises
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return s.store(key, report, func() (any, error) {
		return build(info, d), nil
	})
}

func (s *Service) dataset() *Dataset {
	return &Dataset{
		Now: s.Now(),
		Loc: s.loc,
	}
}

func (s *Service) cacheKey(userID int, report, params string) *Key {
	if s.cache == nil {
		return nil
	}
	key := s.cache.Key(userID, report, params)
	return &key
}

func (s *Service) cached(key *Key) (json.RawMessage, bool) {
	if key == nil {
		return nil, false
	}
	payload, ok := s.cache.Get(*key)
	return payload, ok
}

// store builds and marshals a payload and caches it under key, which was taken
// before the rows were loaded.
func (s *Service) store(key *Key, report string, build func() (any, error)) (json.RawMessage, error) {
	start := time.Now()
	payload, err := build()
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("marshal %s: %w", report, err)
	}
	s.metricsManager.HistogramStatsDuration.WithLabelValues(report).Observe(time.Since(start).Seconds())

	if key != nil {
		s.cache.Set(*key, raw)
	}
	return raw, nil
}
