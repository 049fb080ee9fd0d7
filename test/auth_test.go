//go:build integration_test || all_tests

package test

import (
	"context"
	"net/http"
	"strconv"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *IntegrationTestSuite) TestAuth() {
	t := s.T()
	email := gofakeit.Email()
	password := "test-password-1"

	anon := s.client(t)
	anon.must(http.StatusCreated, http.MethodPost, "/auth/register", map[string]string{
		"name": "Ana Souza", "email": email, "password": password,
	}, nil)

	status, env := anon.do(http.MethodPost, "/auth/register", map[string]string{
		"name": "Ana Souza", "email": email, "password": password,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Contains(t, env.Errors, "email")

	status, env = anon.do(http.MethodPost, "/auth/register", map[string]string{"email": "not-an-email"})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Contains(t, env.Errors, "name")
	assert.Contains(t, env.Errors, "password")

	status, _ = anon.do(http.MethodPost, "/auth/login", map[string]string{"email": email, "password": "wrong-password"})
	assert.Equal(t, http.StatusUnauthorized, status)

	var login struct {
		Token string `json:"token"`
	}
	anon.must(http.StatusOK, http.MethodPost, "/auth/login", map[string]string{"email": email, "password": password}, &login)
	require.NotEmpty(t, login.Token)

	user := s.client(t)
	user.token = login.Token
	var me struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	user.must(http.StatusOK, http.MethodGet, "/auth/me", nil, &me)
	assert.Equal(t, email, me.Email)
	assert.Equal(t, "Ana Souza", me.Name)

	user.must(http.StatusOK, http.MethodPost, "/auth/logout", nil, nil)
	status, _ = user.do(http.MethodGet, "/auth/me", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = anon.do(http.MethodGet, "/treinos", nil)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func (s *IntegrationTestSuite) TestAuth_LoginRateLimit() {
	t := s.T()
	ctx := context.Background()
	require.NoError(t, s.redisDataCleanup(ctx))
	defer func() {
		require.NoError(t, s.redisDataCleanup(ctx))
	}()

	// the suite config allows 10 attempts per minute
	c := s.client(t)
	for i := 1; i <= 13; i++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, serverEndpoint+"/auth/login", nil)
		require.NoError(t, err)
		resp, err := s.httpClient.Do(req)
		require.NoError(t, err)

		if i <= 10 {
			assert.NotEqual(t, http.StatusTooManyRequests, resp.StatusCode, "iteration: %d", i)
			assert.Empty(t, resp.Header.Get("Retry-After"), "iteration: %d", i)
		} else {
			require.Equal(t, http.StatusTooManyRequests, resp.StatusCode, "iteration: %d", i)
			retryAfter, err := strconv.Atoi(resp.Header.Get("Retry-After"))
			require.NoError(t, err, "iteration: %d", i)
			assert.Positive(t, retryAfter, "iteration: %d", i)
		}
		require.NoError(t, resp.Body.Close())
	}

	// other routes are not limited
	status, _ := c.do(http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, status)
}

func (s *IntegrationTestSuite) TestAuth_AccountManagement() {
	t := s.T()
	email := gofakeit.Email()
	password := "test-password-1"

	anon := s.client(t)
	anon.must(http.StatusCreated, http.MethodPost, "/auth/register", map[string]string{
		"name": "Bia Lima", "email": email, "password": password,
	}, nil)

	login := func(password string) *apiClient {
		var resp struct {
			Token string `json:"token"`
		}
		anon.must(http.StatusOK, http.MethodPost, "/auth/login", map[string]string{"email": email, "password": password}, &resp)
		c := s.client(t)
		c.token = resp.Token
		return c
	}
	phone, laptop := login(password), login(password)

	var info struct {
		UserID    int    `json:"user_id"`
		ExpiresAt string `json:"expires_at"`
	}
	phone.must(http.StatusOK, http.MethodGet, "/auth/verify-token", nil, &info)
	assert.Positive(t, info.UserID)
	assert.NotEmpty(t, info.ExpiresAt)

	newEmail := gofakeit.Email()
	var me struct {
		Email string `json:"email"`
		Name  string `json:"name"`
	}
	phone.must(http.StatusOK, http.MethodPut, "/auth/profile", map[string]string{"name": "Bia Lima Souza", "email": newEmail}, &me)
	assert.Equal(t, "Bia Lima Souza", me.Name)
	email = newEmail

	var revoked struct {
		RevokedSessions int `json:"revoked_sessions"`
	}
	phone.must(http.StatusOK, http.MethodPost, "/auth/logout-all", nil, &revoked)
	// the token issued on register counts too
	assert.Equal(t, 3, revoked.RevokedSessions)
	for _, c := range []*apiClient{phone, laptop} {
		status, _ := c.do(http.MethodGet, "/auth/me", nil)
		assert.Equal(t, http.StatusUnauthorized, status)
	}

	current := login(password)
	status, env := current.do(http.MethodPut, "/auth/password", map[string]string{
		"current_password": "wrong-password", "password": "test-password-2", "password_confirmation": "test-password-2",
	})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Contains(t, env.Errors, "current_password")

	current.must(http.StatusOK, http.MethodPut, "/auth/password", map[string]string{
		"current_password": password, "password": "test-password-2", "password_confirmation": "test-password-2",
	}, nil)
	status, _ = current.do(http.MethodGet, "/auth/me", nil)
	assert.Equal(t, http.StatusUnauthorized, status)

	status, _ = anon.do(http.MethodPost, "/auth/login", map[string]string{"email": email, "password": password})
	assert.Equal(t, http.StatusUnauthorized, status)
	login("test-password-2")
}
