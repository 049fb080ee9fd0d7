//go:build integration_test || all_tests

package test

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *IntegrationTestSuite) TestExecution_FullWorkout() {
	t := s.T()
	c := s.registered(t)
	w := c.createWorkout("Treino Completo")

	status, _ := c.do(http.MethodGet, "/execucao/atual", nil)
	assert.Equal(t, http.StatusNotFound, status)

	var session sessionResp
	c.must(http.StatusCreated, http.MethodPost, fmt.Sprintf("/execucao/treinos/%d/iniciar", w.ID), nil, &session)
	assert.Equal(t, "started", session.Status)
	assert.Equal(t, 3, session.Progress.Total)
	require.NotNil(t, session.Progress.CurrentOrder)
	assert.Equal(t, 1, *session.Progress.CurrentOrder)
	base := fmt.Sprintf("/execucao/%d", session.ID)

	status, env := c.do(http.MethodPost, fmt.Sprintf("/execucao/treinos/%d/iniciar", w.ID), nil)
	assert.Equal(t, http.StatusConflict, status)
	var active struct {
		Current struct {
			ID int `json:"id"`
		} `json:"execucao_atual"`
	}
	require.NoError(t, json.Unmarshal(env.Data, &active))
	assert.Equal(t, session.ID, active.Current.ID)

	var current sessionResp
	c.must(http.StatusOK, http.MethodGet, "/execucao/atual", nil, &current)
	assert.Equal(t, session.ID, current.ID)

	c.must(http.StatusOK, http.MethodPut, base+"/atualizar-exercicio", map[string]any{
		"series_realizadas":     4,
		"repeticoes_realizadas": 10,
		"peso_utilizado":        62.5,
	}, nil)

	c.must(http.StatusOK, http.MethodPut, base+"/pausar", nil, &session)
	assert.Equal(t, "paused", session.Status)
	status, _ = c.do(http.MethodPut, base+"/proximo-exercicio", nil)
	assert.Equal(t, http.StatusBadRequest, status, "cannot move while paused")
	c.must(http.StatusOK, http.MethodPut, base+"/retomar", nil, &session)
	assert.Equal(t, "started", session.Status)

	c.must(http.StatusOK, http.MethodPut, base+"/proximo-exercicio", nil, &session)
	assert.Equal(t, 1, session.Progress.Completed)
	assert.Equal(t, 2, *session.Progress.CurrentOrder)

	c.must(http.StatusOK, http.MethodPut, base+"/pular-exercicio", map[string]any{"motivo": "aparelho ocupado"}, &session)
	assert.Equal(t, 1, session.Progress.Completed)
	assert.Equal(t, 3, *session.Progress.CurrentOrder)

	var skipReason string
	require.NoError(t, s.db.QueryRow(
		`SELECT extras->>'skip_reason' FROM execution_exercises WHERE session_id = $1 AND exercise_id = $2`,
		session.ID, w.Exercises[1].ID,
	).Scan(&skipReason))
	assert.Equal(t, "aparelho ocupado", skipReason)

	c.must(http.StatusOK, http.MethodPut, base+"/exercicio-anterior", nil, &session)
	assert.Equal(t, 2, *session.Progress.CurrentOrder)
	c.must(http.StatusOK, http.MethodPut, base+"/proximo-exercicio", nil, &session)
	assert.Equal(t, 3, *session.Progress.CurrentOrder)
	assert.Equal(t, 1, session.Progress.Completed, "a skipped exercise does not count")

	c.must(http.StatusOK, http.MethodPut, base+"/finalizar", map[string]any{"observacoes": "bom treino"}, &session)
	assert.Equal(t, "finished", session.Status)
	assert.NotNil(t, session.Times.EndedAt)
	require.NotNil(t, session.Notes)
	assert.Equal(t, "bom treino", *session.Notes)

	status, _ = c.do(http.MethodPut, base+"/pausar", nil)
	assert.Equal(t, http.StatusBadRequest, status)
	status, _ = c.do(http.MethodDelete, base+"/cancelar", nil)
	assert.Equal(t, http.StatusBadRequest, status)

	var history struct {
		Data []struct {
			ID     int    `json:"id"`
			Status string `json:"status"`
		} `json:"data"`
		Total int `json:"total"`
	}
	c.must(http.StatusOK, http.MethodGet, "/execucao/historico", nil, &history)
	require.Equal(t, 1, history.Total)
	assert.Equal(t, "finished", history.Data[0].Status)

	other := s.registered(t)
	status, _ = other.do(http.MethodGet, base, nil)
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = other.do(http.MethodPost, fmt.Sprintf("/execucao/treinos/%d/iniciar", w.ID), nil)
	assert.Equal(t, http.StatusNotFound, status)
}

func (s *IntegrationTestSuite) TestExecution_CancelThenStartAgain() {
	t := s.T()
	c := s.registered(t)
	w := c.createWorkout("Treino Cancelado")

	var first sessionResp
	c.must(http.StatusCreated, http.MethodPost, fmt.Sprintf("/execucao/treinos/%d/iniciar", w.ID), nil, &first)
	c.must(http.StatusOK, http.MethodDelete, fmt.Sprintf("/execucao/%d/cancelar", first.ID), nil, &first)
	assert.Equal(t, "cancelled", first.Status)

	status, _ := c.do(http.MethodGet, "/execucao/atual", nil)
	assert.Equal(t, http.StatusNotFound, status)

	var second sessionResp
	c.must(http.StatusCreated, http.MethodPost, fmt.Sprintf("/execucao/treinos/%d/iniciar", w.ID), nil, &second)
	assert.NotEqual(t, first.ID, second.ID)

	status, _ = c.do(http.MethodPut, fmt.Sprintf("/execucao/%d/exercicio-anterior", second.ID), nil)
	assert.Equal(t, http.StatusBadRequest, status, "already at the first exercise")

	for i := 0; i < 3; i++ {
		c.must(http.StatusOK, http.MethodPut, fmt.Sprintf("/execucao/%d/proximo-exercicio", second.ID), nil, &second)
	}
	assert.Equal(t, "finished", second.Status, "advancing past the last exercise finishes")
	assert.Equal(t, 3, second.Progress.Completed)
	assert.InDelta(t, 100.0, second.Progress.Percent, 0.001)
}
