//go:build integration_test || all_tests

package test

import (
	"fmt"
	"net/http"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *IntegrationTestSuite) TestWorkouts() {
	t := s.T()
	c := s.registered(t)

	w := c.createWorkout("Treino A")
	assert.Equal(t, "Treino A", w.Name)
	assert.Equal(t, "active", w.Status)
	for i, e := range w.Exercises {
		assert.Equal(t, i+1, e.Order)
	}

	var page struct {
		Data  []workoutResp `json:"data"`
		Total int           `json:"total"`
	}
	c.must(http.StatusOK, http.MethodGet, "/treinos?busca=treino", nil, &page)
	require.Equal(t, 1, page.Total)
	assert.Equal(t, w.ID, page.Data[0].ID)

	var updated workoutResp
	c.must(http.StatusOK, http.MethodPut, fmt.Sprintf("/treinos/%d", w.ID), map[string]any{
		"nome_treino": "Treino A2",
	}, &updated)
	assert.Equal(t, "Treino A2", updated.Name)

	status, env := c.do(http.MethodPut, fmt.Sprintf("/treinos/%d", w.ID), map[string]any{"dificuldade": "extreme"})
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Contains(t, env.Errors, "dificuldade")

	reversed := []int{w.Exercises[2].ID, w.Exercises[1].ID, w.Exercises[0].ID}
	var reordered []exerciseResp
	c.must(http.StatusOK, http.MethodPut, fmt.Sprintf("/treinos/%d/exercicios/reordenar", w.ID), map[string]any{
		"exercicios": reversed,
	}, &reordered)
	require.Len(t, reordered, 3)
	for i, e := range reordered {
		assert.Equal(t, reversed[i], e.ID)
		assert.Equal(t, i+1, e.Order)
	}

	status, _ = c.do(http.MethodPost, fmt.Sprintf("/treinos/%d/exercicios", w.ID), map[string]any{
		"nome_exercicio": "Corrida", "tipo_execucao": "duration", "series": 1,
	})
	assert.Equal(t, http.StatusUnprocessableEntity, status, "duration exercises need a time")

	c.must(http.StatusOK, http.MethodDelete, fmt.Sprintf("/treinos/%d/exercicios/%d", w.ID, w.Exercises[1].ID), nil, nil)
	var removed exerciseResp
	c.must(http.StatusOK, http.MethodGet, fmt.Sprintf("/treinos/%d/exercicios/%d", w.ID, w.Exercises[1].ID), nil, &removed)
	assert.Equal(t, "inactive", removed.Status)

	other := s.registered(t)
	status, _ = other.do(http.MethodGet, fmt.Sprintf("/treinos/%d", w.ID), nil)
	assert.Equal(t, http.StatusNotFound, status)
	status, _ = other.do(http.MethodDelete, fmt.Sprintf("/treinos/%d", w.ID), nil)
	assert.Equal(t, http.StatusNotFound, status)

	c.must(http.StatusOK, http.MethodDelete, fmt.Sprintf("/treinos/%d", w.ID), nil, nil)
	c.must(http.StatusOK, http.MethodGet, fmt.Sprintf("/treinos/%d", w.ID), nil, &updated)
	assert.Equal(t, "inactive", updated.Status)
}
