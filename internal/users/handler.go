package users

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/2beens/fittrack/internal/api"
	"github.com/2beens/fittrack/internal/apperr"
	"github.com/2beens/fittrack/internal/auth"
	"github.com/2beens/fittrack/internal/telemetry/metrics"
	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/pkg"

	log "github.com/sirupsen/logrus"
)

//go:generate mockgen -source=$GOFILE -destination=handler_mocks_test.go -package=users_test

type usersRepo interface {
	Add(ctx context.Context, user User) (*User, error)
	Get(ctx context.Context, id int) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	Update(ctx context.Context, user User) (*User, error)
	UpdatePassword(ctx context.Context, id int, passwordHash string) error
}

type sessionService interface {
	Login(ctx context.Context, userID int, createdAt time.Time) (string, error)
	Logout(ctx context.Context, token string) (bool, error)
	LogoutAll(ctx context.Context, userID int) (int, error)
	TokenInfo(ctx context.Context, token string) (*auth.TokenInfo, error)
}

var (
	errBadCredentials  = apperr.Unauthenticated("invalid credentials")
	errUnauthenticated = apperr.Unauthenticated("unauthenticated")
)

type Handler struct {
	repo           usersRepo
	sessions       sessionService
	responder      *api.Responder
	metricsManager *metrics.Manager
}

func NewHandler(
	repo usersRepo,
	sessions sessionService,
	responder *api.Responder,
	metricsManager *metrics.Manager,
) *Handler {
	return &Handler{
		repo:           repo,
		sessions:       sessions,
		responder:      responder,
		metricsManager: metricsManager,
	}
}

func (handler *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.register")
	defer span.End()

	var req RegisterRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		handler.responder.Err(w, err)
		return
	}

	hash, err := pkg.HashPassword(req.Password)
	if err != nil {
		handler.responder.Err(w, err)
		return
	}

	user, err := handler.repo.Add(ctx, User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
	})
	if err != nil {
		if errors.Is(err, ErrEmailTaken) {
			handler.responder.Err(w, apperr.Validation(map[string][]string{
				"email": {"has already been taken"},
			}))
			return
		}
		handler.responder.Err(w, err)
		return
	}

	token, err := handler.sessions.Login(ctx, user.ID, time.Now())
	if err != nil {
		handler.responder.Err(w, err)
		return
	}

	if handler.metricsManager != nil {
		handler.metricsManager.CounterUsersRegistered.Inc()
	}
	log.Debugf("new user registered: %d", user.ID)
	handler.responder.Created(w, AuthResponse{User: user, Token: token}, "user registered")
}

func (handler *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.login")
	defer span.End()

	var req LoginRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		handler.responder.Err(w, err)
		return
	}

	user, err := handler.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			handler.responder.Err(w, errBadCredentials)
			return
		}
		handler.responder.Err(w, err)
		return
	}

	if !pkg.CheckPasswordHash(req.Password, user.PasswordHash) {
		log.Tracef("wrong password for user %d", user.ID)
		handler.responder.Err(w, errBadCredentials)
		return
	}

	token, err := handler.sessions.Login(ctx, user.ID, time.Now())
	if err != nil {
		handler.responder.Err(w, err)
		return
	}

	handler.responder.OK(w, AuthResponse{User: user, Token: token}, "logged in")
}

func (handler *Handler) HandleLogout(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.logout")
	defer span.End()

	token := auth.BearerToken(r)
	if token == "" {
		handler.responder.Err(w, errUnauthenticated)
		return
	}

	if _, err := handler.sessions.Logout(ctx, token); err != nil {
		handler.responder.Err(w, err)
		return
	}

	handler.responder.OK(w, nil, "logged out")
}

func (handler *Handler) HandleLogoutAll(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.logoutall")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		handler.responder.Err(w, errUnauthenticated)
		return
	}

	revoked, err := handler.sessions.LogoutAll(ctx, userID)
	if err != nil {
		handler.responder.Err(w, err)
		return
	}

	handler.responder.OK(w, LogoutAllResponse{RevokedSessions: revoked}, "logged out from all devices")
}

func (handler *Handler) HandleVerifyToken(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.verifytoken")
	defer span.End()

	token := auth.BearerToken(r)
	if token == "" {
		handler.responder.Err(w, errUnauthenticated)
		return
	}

	info, err := handler.sessions.TokenInfo(ctx, token)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidToken) {
			handler.responder.Err(w, apperr.Unauthenticated(auth.ErrInvalidToken.Error()))
			return
		}
		handler.responder.Err(w, err)
		return
	}

	handler.responder.OK(w, info, "token is valid")
}

func (handler *Handler) HandleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.updateprofile")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		handler.responder.Err(w, errUnauthenticated)
		return
	}

	var req UpdateProfileRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		handler.responder.Err(w, err)
		return
	}

	user, err := handler.repo.Update(ctx, User{ID: userID, Name: req.Name, Email: req.Email})
	if err != nil {
		switch {
		case errors.Is(err, ErrEmailTaken):
			handler.responder.Err(w, apperr.Validation(map[string][]string{
				"email": {"has already been taken"},
			}))
		case errors.Is(err, ErrUserNotFound):
			handler.responder.Err(w, errUnauthenticated)
		default:
			handler.responder.Err(w, err)
		}
		return
	}

	handler.responder.OK(w, user, "profile updated")
}

// HandleChangePassword replaces the password and revokes every token of the user,
// the one used for this request included.
func (handler *Handler) HandleChangePassword(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.changepassword")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		handler.responder.Err(w, errUnauthenticated)
		return
	}

	var req ChangePasswordRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		handler.responder.Err(w, err)
		return
	}

	user, err := handler.repo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			handler.responder.Err(w, errUnauthenticated)
			return
		}
		handler.responder.Err(w, err)
		return
	}

	if !pkg.CheckPasswordHash(req.CurrentPassword, user.PasswordHash) {
		handler.responder.Err(w, apperr.Validation(map[string][]string{
			"current_password": {"is incorrect"},
		}))
		return
	}

	hash, err := pkg.HashPassword(req.Password)
	if err != nil {
		handler.responder.Err(w, err)
		return
	}
	if err := handler.repo.UpdatePassword(ctx, userID, hash); err != nil {
		handler.responder.Err(w, err)
		return
	}

	revoked, err := handler.sessions.LogoutAll(ctx, userID)
	if err != nil {
		handler.responder.Err(w, err)
		return
	}

	log.Debugf("user %d changed password, %d sessions revoked", userID, revoked)
	handler.responder.OK(w, nil, "password changed, log in again")
}

func (handler *Handler) HandleMe(w http.ResponseWriter, r *http.Request) {
	ctx, span := tracing.GlobalTracer.Start(r.Context(), "handler.users.me")
	defer span.End()

	userID, ok := auth.UserIDFromContext(ctx)
	if !ok {
		handler.responder.Err(w, errUnauthenticated)
		return
	}

	user, err := handler.repo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			handler.responder.Err(w, errUnauthenticated)
			return
		}
		handler.responder.Err(w, err)
		return
	}

	handler.responder.OK(w, user, "")
}
