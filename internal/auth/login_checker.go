package auth

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/go-redis/redis/v8"
)

type LoginChecker struct {
	ttl         time.Duration
	redisClient *redis.Client
}

func NewLoginChecker(ttl time.Duration, redisClient *redis.Client) *LoginChecker {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &LoginChecker{
		ttl:         ttl,
		redisClient: redisClient,
	}
}

// UserFromToken resolves a session token to the id of its user.
// Unknown and expired tokens give ErrInvalidToken.
func (c *LoginChecker) UserFromToken(ctx context.Context, token string) (int, error) {
	if token == "" {
		return 0, ErrInvalidToken
	}

	fields, err := c.redisClient.HGetAll(ctx, sessionKey(token)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, ErrInvalidToken
		}
		return 0, fmt.Errorf("get session: %w", err)
	}
	if len(fields) == 0 {
		return 0, ErrInvalidToken
	}

	userID, err := strconv.Atoi(fields[fieldUserID])
	if err != nil || userID <= 0 {
		return 0, ErrInvalidToken
	}

	createdAtUnix, err := strconv.ParseInt(fields[fieldCreatedAt], 10, 64)
	if err != nil {
		return 0, ErrInvalidToken
	}
	if time.Since(time.Unix(createdAtUnix, 0)) > c.ttl {
		return 0, ErrInvalidToken
	}

	return userID, nil
}
