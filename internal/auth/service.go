package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/2beens/fittrack/internal/telemetry/tracing"
	"github.com/2beens/fittrack/pkg"

	"github.com/go-redis/redis/v8"
	log "github.com/sirupsen/logrus"
)

const (
	DefaultTTL       = 24 * 7 * time.Hour
	CleanupInterval  = 8 * time.Hour
	tokenLength      = 35
	sessionKeyPrefix = "fittrack-session||"
	tokensSetKey     = "fittrack-sessions"
	userTokensPrefix = "fittrack-user-sessions||"

	fieldUserID    = "user_id"
	fieldCreatedAt = "created_at"
)

var ErrInvalidToken = errors.New("invalid or expired token")

type Service struct {
	redisClient *redis.Client
	ttl         time.Duration
	// ability to inject random string generator func for tokens (for unit and dev testing)
	RandStringFunc func(s int) (string, error)
}

func NewAuthService(ttl time.Duration, redisClient *redis.Client) *Service {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Service{
		ttl:            ttl,
		redisClient:    redisClient,
		RandStringFunc: pkg.GenerateRandomString,
	}
}

func sessionKey(token string) string {
	return sessionKeyPrefix + token
}

func userTokensKey(userID int) string {
	return userTokensPrefix + strconv.Itoa(userID)
}

type TokenInfo struct {
	UserID    int       `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Login issues a new token for the given user.
func (as *Service) Login(ctx context.Context, userID int, createdAt time.Time) (_ string, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "authService.login")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	token, err := as.RandStringFunc(tokenLength)
	if err != nil {
		return "", fmt.Errorf("generate token: %w", err)
	}

	key := sessionKey(token)
	if err := as.redisClient.HSet(ctx, key, fieldUserID, userID, fieldCreatedAt, createdAt.Unix()).Err(); err != nil {
		return "", fmt.Errorf("store session: %w", err)
	}
	if err := as.redisClient.Expire(ctx, key, as.ttl).Err(); err != nil {
		return "", fmt.Errorf("set session ttl: %w", err)
	}

	// add token to the set of sessions, so the cleanup can find it
	if err := as.redisClient.SAdd(ctx, tokensSetKey, token).Err(); err != nil {
		return "", fmt.Errorf("register session: %w", err)
	}

	// and to the user's own set, so all of them can be revoked at once
	userKey := userTokensKey(userID)
	if err := as.redisClient.SAdd(ctx, userKey, token).Err(); err != nil {
		return "", fmt.Errorf("register user session: %w", err)
	}
	if err := as.redisClient.Expire(ctx, userKey, as.ttl).Err(); err != nil {
		return "", fmt.Errorf("set user sessions ttl: %w", err)
	}

	return token, nil
}

// Logout removes the session. Returns false if the token was unknown.
func (as *Service) Logout(ctx context.Context, token string) (_ bool, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "authService.logout")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	deleted, err := as.redisClient.Del(ctx, sessionKey(token)).Result()
	if err != nil {
		return false, fmt.Errorf("delete session: %w", err)
	}

	if err := as.redisClient.SRem(ctx, tokensSetKey, token).Err(); err != nil {
		return false, fmt.Errorf("unregister session: %w", err)
	}

	return deleted > 0, nil
}

// LogoutAll revokes every token issued to the user and returns how many were still live.
func (as *Service) LogoutAll(ctx context.Context, userID int) (_ int, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "authService.logoutAll")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	userKey := userTokensKey(userID)
	tokens, err := as.redisClient.SMembers(ctx, userKey).Result()
	if err != nil {
		return 0, fmt.Errorf("get user sessions: %w", err)
	}

	revoked := 0
	for _, token := range tokens {
		deleted, err := as.redisClient.Del(ctx, sessionKey(token)).Result()
		if err != nil {
			return revoked, fmt.Errorf("delete session: %w", err)
		}
		if err := as.redisClient.SRem(ctx, tokensSetKey, token).Err(); err != nil {
			return revoked, fmt.Errorf("unregister session: %w", err)
		}
		revoked += int(deleted)
	}

	if err := as.redisClient.Del(ctx, userKey).Err(); err != nil {
		return revoked, fmt.Errorf("delete user sessions: %w", err)
	}

	log.Debugf("auth service, user %d logged out from %d sessions", userID, revoked)
	return revoked, nil
}

// TokenInfo describes a live token. Returns ErrInvalidToken for unknown or expired ones.
func (as *Service) TokenInfo(ctx context.Context, token string) (_ *TokenInfo, err error) {
	ctx, span := tracing.GlobalTracer.Start(ctx, "authService.tokenInfo")
	defer func() {
		tracing.EndSpanWithErrCheck(span, err)
	}()

	fields, err := as.redisClient.HGetAll(ctx, sessionKey(token)).Result()
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	userID, err := strconv.Atoi(fields[fieldUserID])
	if err != nil {
		return nil, ErrInvalidToken
	}
	createdAtUnix, err := strconv.ParseInt(fields[fieldCreatedAt], 10, 64)
	if err != nil {
		return nil, ErrInvalidToken
	}

	createdAt := time.Unix(createdAtUnix, 0)
	expiresAt := createdAt.Add(as.ttl)
	if !time.Now().Before(expiresAt) {
		return nil, ErrInvalidToken
	}

	return &TokenInfo{
		UserID:    userID,
		CreatedAt: createdAt,
		ExpiresAt: expiresAt,
	}, nil
}

// ScanAndClean will run through all sessions, check the TTL, and clean them if old.
// Sessions whose key already expired in redis are only removed from the tokens set.
func (as *Service) ScanAndClean(ctx context.Context) {
	sessionTokens, err := as.redisClient.SMembers(ctx, tokensSetKey).Result()
	if err != nil {
		log.Errorf("auth service, scan and clean, get sessions: %s", err)
		return
	}

	if len(sessionTokens) == 0 {
		log.Debugln("auth service, scan and clean abort, no sessions")
		return
	}

	log.Debugf("auth service, scan and clean [%d sessions] start", len(sessionTokens))
	var toRemove []string
	for _, token := range sessionTokens {
		createdAtStr, err := as.redisClient.HGet(ctx, sessionKey(token), fieldCreatedAt).Result()
		if errors.Is(err, redis.Nil) {
			toRemove = append(toRemove, token)
			continue
		}
		if err != nil {
			log.Errorf("auth service, scan and clean token: %s", err)
			continue
		}

		createdAtUnix, err := strconv.ParseInt(createdAtStr, 10, 64)
		if err != nil {
			log.Errorf("auth service, scan and clean, bad created_at [%s]: %s", createdAtStr, err)
			toRemove = append(toRemove, token)
			continue
		}

		if time.Since(time.Unix(createdAtUnix, 0)) > as.ttl {
			toRemove = append(toRemove, token)
		}
	}

	for _, token := range toRemove {
		if err := as.redisClient.Del(ctx, sessionKey(token)).Err(); err != nil {
			log.Errorf("auth service, clean session: %s", err)
			continue
		}
		if err := as.redisClient.SRem(ctx, tokensSetKey, token).Err(); err != nil {
			log.Errorf("auth service, clean session from set: %s", err)
			continue
		}
	}
	log.Debugf("auth service, scan and clean done, removed %d sessions", len(toRemove))
}

// RunCleanup calls ScanAndClean every interval until ctx is done.
func (as *Service) RunCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			as.ScanAndClean(ctx)
		}
	}
}
