package controllers

import (
	"net/http"

	"github.com/franciscosanchezn/gin-foodgram-api/internal/services"
	"github.com/gin-gonic/gin"
)

type IngredientController struct {
	ingredients services.IngredientService
}

func NewIngredientController(ingredients services.IngredientService) *IngredientController {
	return &IngredientController{ingredients: ingredients}
}

// ListIngredients godoc
// @Summary List ingredients
// @Description Optional case-insensitive name prefix filter
// @Tags ingredients
// @Produce json
// @Param name query string false "Name prefix"
// @Success 200 {array} models.Ingredient
// @Router /api/ingredients [get]
func (ic *IngredientController) ListIngredients(c *gin.Context) {
	ingredients, err := ic.ingredients.ListIngredients(c.Request.Context(), c.Query("name"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ingredients)
}

// GetIngredient godoc
// @Summary Get an ingredient
// @Tags ingredients
// @Produce json
// @Param id path int true "Ingredient ID"
// @Success 200 {object} models.Ingredient
// @Failure 404 {object} models.APIError
// @Router /api/ingredients/{id} [get]
func (ic *IngredientController) GetIngredient(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	ingredient, err := ic.ingredients.GetIngredient(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, ingredient)
}
