package execution

import (
	"context"
	"errors"
	"time"

	"github.com/2beens/fittrack/internal/apperr"
	"github.com/2beens/fittrack/internal/telemetry/metrics"
	"github.com/2beens/fittrack/internal/telemetry/tracing"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/attribute"
)

//go:generate mockgen -source=$GOFILE -destination=service_mocks_test.go -package=execution_test

type sessionsRepo interface {
	Start(ctx context.Context, userID, workoutID int, now time.Time) (*Session, error)
	Get(ctx context.Context, userID, id int) (*Session, error)
	Current(ctx context.Context, userID int) (*Session, error)
	History(ctx context.Context, params HistoryParams) (_ []*Session, total int, err error)
	Mutate(ctx context.Context, userID, id int, fn func(*Session) error) (*Session, error)
}

// statsInvalidator drops cached statistics of a user.
type statsInvalidator interface {
	Invalidate(userID int)
}

const (
	transitionStart   = "start"
	transitionPause   = "pause"
	transitionResume  = "resume"
	transitionAdvance = "advance"
	transitionRetreat = "retreat"
	transitionSkip    = "skip"
	transitionUpdate  = "update"
	transitionFinish  = "finish"
	transitionCancel  = "cancel"
)

type Service struct {
	repo           sessionsRepo
	stats          statsInvalidator
	metricsManager *metrics.Manager

	// Now is the clock every transition is stamped with.
	Now func() time.Time
}

func NewService(repo sessionsRepo, stats statsInvalidator, metricsManager *metrics.Manager) *Service {
	return &Service{
		repo:           repo,
		stats:          stats,
		metricsManager: metricsManager,
		Now:            time.Now,
	}
}

func (s *Service) Start(ctx context.Context, userID, workoutID int) (_ *Session, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.execution.start")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("workout_id", workoutID))

	session, err := s.repo.Start(ctx, userID, workoutID, s.Now())
	if err != nil {
		if apperr.KindOf(err) == apperr.KindConflict {
			s.metricsManager.CounterStartConflicts.Inc()
		}
		return nil, err
	}

	s.metricsManager.CounterSessionTransitions.WithLabelValues(transitionStart).Inc()
	log.Debugf("user %d started workout %d, session %d", userID, workoutID, session.ID)
	return session, nil
}

func (s *Service) Get(ctx context.Context, userID, id int) (*Session, error) {
	return s.repo.Get(ctx, userID, id)
}

func (s *Service) Current(ctx context.Context, userID int) (*Session, error) {
	return s.repo.Current(ctx, userID)
}

func (s *Service) History(ctx context.Context, params HistoryParams) ([]*Session, int, error) {
	return s.repo.History(ctx, params)
}

func (s *Service) Pause(ctx context.Context, userID, id int) (*Session, error) {
	return s.transition(ctx, transitionPause, userID, id, func(session *Session) error {
		return session.Pause()
	})
}

func (s *Service) Resume(ctx context.Context, userID, id int) (*Session, error) {
	return s.transition(ctx, transitionResume, userID, id, func(session *Session) error {
		return session.Resume()
	})
}

func (s *Service) Advance(ctx context.Context, userID, id int) (*Session, error) {
	return s.transition(ctx, transitionAdvance, userID, id, func(session *Session) error {
		return session.Advance(s.Now())
	})
}

func (s *Service) Retreat(ctx context.Context, userID, id int) (*Session, error) {
	return s.transition(ctx, transitionRetreat, userID, id, func(session *Session) error {
		return session.Retreat(s.Now())
	})
}

func (s *Service) Skip(ctx context.Context, userID, id int, req SkipRequest) (*Session, error) {
	reason := ""
	if req.Reason != nil {
		reason = *req.Reason
	}
	return s.transition(ctx, transitionSkip, userID, id, func(session *Session) error {
		return session.Skip(s.Now(), reason)
	})
}

func (s *Service) UpdateCurrent(ctx context.Context, userID, id int, upd ExerciseUpdate) (*Session, error) {
	return s.transition(ctx, transitionUpdate, userID, id, func(session *Session) error {
		_, err := session.UpdateCurrent(upd)
		return err
	})
}

func (s *Service) Finish(ctx context.Context, userID, id int, req FinishRequest) (*Session, error) {
	return s.transition(ctx, transitionFinish, userID, id, func(session *Session) error {
		return session.Finish(s.Now(), req)
	})
}

func (s *Service) Cancel(ctx context.Context, userID, id int) (*Session, error) {
	return s.transition(ctx, transitionCancel, userID, id, func(session *Session) error {
		return session.Cancel(s.Now())
	})
}

func (s *Service) transition(
	ctx context.Context,
	name string,
	userID, id int,
	apply func(*Session) error,
) (_ *Session, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "service.execution."+name)
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()
	span.SetAttributes(attribute.Int("session_id", id))

	wasOpen := false
	session, err := s.repo.Mutate(ctx, userID, id, func(session *Session) error {
		wasOpen = session.IsOpen()
		return apply(session)
	})
	if err != nil {
		var appErr *apperr.Error
		if !errors.As(err, &appErr) {
			log.Errorf("session %d %s: %s", id, name, err)
		}
		return nil, err
	}

	s.metricsManager.CounterSessionTransitions.WithLabelValues(name).Inc()
	closed := wasOpen && !session.IsOpen()
	if closed || touchesRecordedWork(name) {
		s.stats.Invalidate(userID)
	}
	if closed {
		log.Debugf("session %d closed as %s", id, session.Status)
	}
	return session, nil
}

// touchesRecordedWork reports whether a transition can change completed exercise
// executions, which statistics read from open sessions as well.
func touchesRecordedWork(name string) bool {
	switch name {
	case transitionAdvance, transitionSkip, transitionUpdate:
		return true
	default:
		return false
	}
}
