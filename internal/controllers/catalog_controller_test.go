package controllers

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/franciscosanchezn/gin-foodgram-api/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTagEndpoints(t *testing.T) {
	env := setupTestEnv(t)
	cat := env.seedCatalog(t)

	w := env.do(t, http.MethodGet, "/api/tags", 0, nil)
	require.Equal(t, http.StatusOK, w.Code)
	tags := decode[[]models.Tag](t, w)
	require.Len(t, tags, 2)
	assert.Equal(t, "Breakfast", tags[0].Name)

	w = env.do(t, http.MethodGet, fmt.Sprintf("/api/tags/%d", cat.Dinner.ID), 0, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "dinner", decode[models.Tag](t, w).Slug)

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/tags/9999", 0, nil).Code)

	t.Run("create", func(t *testing.T) {
		w := env.do(t, http.MethodPost, "/api/tags", 0, gin.H{"name": "Lunch", "color": "#aabbcc", "slug": "lunch"})
		require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
		assert.Equal(t, "#AABBCC", decode[models.Tag](t, w).Color)

		w = env.do(t, http.MethodPost, "/api/tags", 0, gin.H{"name": "Brunch", "color": "red", "slug": "brunch"})
		require.Equal(t, http.StatusBadRequest, w.Code)
		assert.Contains(t, decode[models.APIError](t, w).Details, "color")
	})
}

func TestIngredientEndpoints(t *testing.T) {
	env := setupTestEnv(t)
	cat := env.seedCatalog(t)
	require.NoError(t, env.db.Create(&models.Ingredient{Name: "Eggplant", MeasurementUnit: "g"}).Error)

	tests := []struct {
		query string
		want  []string
	}{
		{"", []string{"Eggplant", "egg", "flour"}},
		{"?name=eg", []string{"Eggplant", "egg"}},
		{"?name=FL", []string{"flour"}},
		{"?name=z", []string{}},
	}
	for _, tt := range tests {
		t.Run("list"+tt.query, func(t *testing.T) {
			w := env.do(t, http.MethodGet, "/api/ingredients"+tt.query, 0, nil)
			require.Equal(t, http.StatusOK, w.Code)

			names := []string{}
			for _, ingredient := range decode[[]models.Ingredient](t, w) {
				names = append(names, ingredient.Name)
			}
			assert.ElementsMatch(t, tt.want, names)
		})
	}

	w := env.do(t, http.MethodGet, fmt.Sprintf("/api/ingredients/%d", cat.Flour.ID), 0, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "g", decode[models.Ingredient](t, w).MeasurementUnit)

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, "/api/ingredients/9999", 0, nil).Code)
}
