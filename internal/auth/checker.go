package auth

import "context"

var _ Checker = (*LoginChecker)(nil)
var _ Checker = (*LoginTestChecker)(nil)

type Checker interface {
	UserFromToken(ctx context.Context, token string) (int, error)
}

// LoginTestChecker maps tokens to user ids in memory.
type LoginTestChecker struct {
	Sessions map[string]int
}

func NewLoginTestChecker() *LoginTestChecker {
	return &LoginTestChecker{
		Sessions: map[string]int{},
	}
}

func (c *LoginTestChecker) UserFromToken(_ context.Context, token string) (int, error) {
	userID, ok := c.Sessions[token]
	if !ok {
		return 0, ErrInvalidToken
	}
	return userID, nil
}
