//go:build integration_test || all_tests

package test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/require"
)

type envelope struct {
	Success bool                `json:"success"`
	Data    json.RawMessage     `json:"data"`
	Message string              `json:"message"`
	Errors  map[string][]string `json:"errors"`
}

// apiClient talks to the running server as one user.
type apiClient struct {
	t      *testing.T
	http   *http.Client
	token  string
	userID int
}

func (s *IntegrationTestSuite) client(t *testing.T) *apiClient {
	return &apiClient{t: t, http: s.httpClient}
}

// registered returns a client logged in as a freshly registered user.
func (s *IntegrationTestSuite) registered(t *testing.T) *apiClient {
	c := s.client(t)
	status, env := c.do(http.MethodPost, "/auth/register", map[string]string{
		"name":     gofakeit.Name(),
		"email":    gofakeit.Email(),
		"password": "test-password-1",
	})
	require.Equal(t, http.StatusCreated, status, env.Message)

	var auth struct {
		User  struct{ ID int } `json:"user"`
		Token string           `json:"token"`
	}
	c.decode(env, &auth)
	require.NotEmpty(t, auth.Token)
	c.token, c.userID = auth.Token, auth.User.ID
	return c
}

func (c *apiClient) do(method, path string, body any) (int, envelope) {
	c.t.Helper()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(c.t, err)
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(context.Background(), method, serverEndpoint+path, reader)
	require.NoError(c.t, err)
	req.Header.Set("User-Agent", "test-agent")
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	require.NoError(c.t, err)
	defer resp.Body.Close()

	var env envelope
	require.NoError(c.t, json.NewDecoder(resp.Body).Decode(&env), "%s %s", method, path)
	return resp.StatusCode, env
}

// must performs the request and fails the test unless it answers with status.
func (c *apiClient) must(status int, method, path string, body, out any) {
	c.t.Helper()
	got, env := c.do(method, path, body)
	require.Equal(c.t, status, got, "%s %s: %s %v", method, path, env.Message, env.Errors)
	if out != nil {
		c.decode(env, out)
	}
}

func (c *apiClient) decode(env envelope, out any) {
	c.t.Helper()
	require.NoError(c.t, json.Unmarshal(env.Data, out))
}

type workoutResp struct {
	ID        int    `json:"id"`
	Name      string `json:"nome_treino"`
	Status    string `json:"status"`
	Exercises []struct {
		ID    int    `json:"id"`
		Name  string `json:"nome_exercicio"`
		Order int    `json:"ordem"`
	} `json:"exercicios"`
}

type exerciseResp struct {
	ID     int    `json:"id"`
	Name   string `json:"nome_exercicio"`
	Order  int    `json:"ordem"`
	Status string `json:"status"`
}

type sessionResp struct {
	ID       int    `json:"id"`
	Status   string `json:"status"`
	Progress struct {
		CurrentOrder *int    `json:"exercicio_atual_ordem"`
		Total        int     `json:"total_exercicios"`
		Completed    int     `json:"exercicios_completados"`
		Percent      float64 `json:"percentual"`
	} `json:"progresso"`
	Times struct {
		EndedAt      *string `json:"data_fim"`
		TotalSeconds int     `json:"tempo_total_segundos"`
	} `json:"tempos"`
	Exercises []struct {
		ID     int    `json:"id"`
		Status string `json:"status"`
	} `json:"exercicios"`
	Notes *string `json:"observacoes"`
}

// createWorkout sets up a workout with a lift, a second lift and a timed exercise.
func (c *apiClient) createWorkout(name string) workoutResp {
	c.t.Helper()

	var w workoutResp
	c.must(http.StatusCreated, http.MethodPost, "/treinos", map[string]any{
		"nome_treino": name,
		"tipo_treino": "forca",
		"dificuldade": "intermediate",
	}, &w)

	exercises := []map[string]any{
		{"nome_exercicio": "Supino reto", "grupo_muscular": "peito", "tipo_execucao": "repetition", "series": 4, "repeticoes": 10, "peso": 60},
		{"nome_exercicio": "Remada curvada", "grupo_muscular": "costas", "tipo_execucao": "repetition", "series": 3, "repeticoes": 12, "peso": 50},
		{"nome_exercicio": "Prancha", "grupo_muscular": "core", "tipo_execucao": "duration", "series": 3, "tempo_execucao": 45},
	}
	for _, e := range exercises {
		c.must(http.StatusCreated, http.MethodPost, fmt.Sprintf("/treinos/%d/exercicios", w.ID), e, nil)
	}

	c.must(http.StatusOK, http.MethodGet, fmt.Sprintf("/treinos/%d", w.ID), nil, &w)
	require.Len(c.t, w.Exercises, len(exercises))
	return w
}
