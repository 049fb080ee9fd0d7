//go:build integration_test || all_tests

package test

import (
	"fmt"
	"net/http"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func (s *IntegrationTestSuite) TestStats() {
	t := s.T()
	c := s.registered(t)

	type general struct {
		Sessions  int `json:"total_treinos_executados"`
		Exercises int `json:"total_exercicios_realizados"`
	}
	var dashboard struct {
		General general `json:"geral"`
	}
	c.must(http.StatusOK, http.MethodGet, "/estatisticas/dashboard", nil, &dashboard)
	assert.Zero(t, dashboard.General.Sessions)

	w := c.createWorkout("Treino Stats")
	var session sessionResp
	c.must(http.StatusCreated, http.MethodPost, fmt.Sprintf("/execucao/treinos/%d/iniciar", w.ID), nil, &session)
	c.must(http.StatusOK, http.MethodPut, fmt.Sprintf("/execucao/%d/atualizar-exercicio", session.ID), map[string]any{
		"series_realizadas": 4, "repeticoes_realizadas": 10, "peso_utilizado": 60,
	}, nil)
	c.must(http.StatusOK, http.MethodPut, fmt.Sprintf("/execucao/%d/proximo-exercicio", session.ID), nil, nil)
	c.must(http.StatusOK, http.MethodPut, fmt.Sprintf("/execucao/%d/proximo-exercicio", session.ID), nil, nil)
	c.must(http.StatusOK, http.MethodPut, fmt.Sprintf("/execucao/%d/finalizar", session.ID), nil, nil)

	// the cached dashboard is dropped when the session finishes
	c.must(http.StatusOK, http.MethodGet, "/estatisticas/dashboard", nil, &dashboard)
	assert.Equal(t, 1, dashboard.General.Sessions)
	assert.Equal(t, 2, dashboard.General.Exercises)

	var rankings struct {
		TopExercises []struct {
			Name  string `json:"exercicio"`
			Count int    `json:"total_execucoes"`
		} `json:"top_exercicios"`
	}
	c.must(http.StatusOK, http.MethodGet, "/estatisticas/rankings", nil, &rankings)
	require.Len(t, rankings.TopExercises, 2)
	assert.Equal(t, "Supino reto", rankings.TopExercises[0].Name)

	var evolution struct {
		History []map[string]any `json:"historico"`
	}
	c.must(http.StatusOK, http.MethodGet, fmt.Sprintf("/estatisticas/exercicio/%d/evolucao-peso", w.Exercises[0].ID), nil, &evolution)
	assert.Len(t, evolution.History, 1)

	for _, path := range []string{
		"/estatisticas/progresso?periodo=7",
		"/estatisticas/grupos-musculares",
		"/estatisticas/consistencia",
		"/estatisticas/comparativos?periodo1=7&periodo2=30",
		"/estatisticas/metas",
		"/estatisticas/resumo",
		"/estatisticas/frequencia-semanal",
		"/estatisticas/duracao-media",
		"/estatisticas/exportar",
		"/estatisticas/relatorio/semanal",
		"/estatisticas/relatorio/mensal",
		"/estatisticas/relatorio/anual",
	} {
		status, env := c.do(http.MethodGet, path, nil)
		assert.Equal(t, http.StatusOK, status, path)
		assert.True(t, env.Success, path)
	}

	status, _ := c.do(http.MethodGet, "/estatisticas/progresso?periodo=0", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, status)
	status, _ = c.do(http.MethodGet, "/estatisticas/exportar?formato=csv", nil)
	assert.Equal(t, http.StatusUnprocessableEntity, status)

	other := s.registered(t)
	status, _ = other.do(http.MethodGet, fmt.Sprintf("/estatisticas/exercicio/%d/evolucao", w.Exercises[0].ID), nil)
	assert.Equal(t, http.StatusNotFound, status)
	var empty struct {
		General general `json:"geral"`
	}
	other.must(http.StatusOK, http.MethodGet, "/estatisticas/dashboard", nil, &empty)
	assert.Zero(t, empty.General.Sessions)
}
