package controllers

import (
	"net/http"
	"strconv"

	"github.com/franciscosanchezn/gin-foodgram-api/internal/services"
	"github.com/franciscosanchezn/gin-foodgram-api/internal/shopping"
	"github.com/gin-gonic/gin"
)

type RecipeController struct {
	recipes   services.RecipeService
	favorites services.RelationService
	cart      services.RelationService
	shopping  services.ShoppingListService
	presenter *presenter
	pageSize  int
}

func NewRecipeController(recipes services.RecipeService, favorites, cart, subscriptions services.RelationService, shoppingLists services.ShoppingListService, pageSize int) *RecipeController {
	return &RecipeController{
		recipes:   recipes,
		favorites: favorites,
		cart:      cart,
		shopping:  shoppingLists,
		presenter: &presenter{favorites: favorites, cart: cart, subscriptions: subscriptions},
		pageSize:  pageSize,
	}
}

type ingredientAmountRequest struct {
	ID     uint `json:"id" binding:"required"`
	Amount int  `json:"amount"`
}

// recipeRequest is shared by create and update; absent scalar fields keep
// their stored value on update
type recipeRequest struct {
	Name        *string                   `json:"name"`
	Text        *string                   `json:"text"`
	Image       *string                   `json:"image"`
	CookingTime *int                      `json:"cooking_time"`
	Tags        []uint                    `json:"tags"`
	Ingredients []ingredientAmountRequest `json:"ingredients" binding:"dive"`
}

func (r recipeRequest) input() services.RecipeInput {
	input := services.RecipeInput{
		Name:        r.Name,
		Text:        r.Text,
		Image:       r.Image,
		CookingTime: r.CookingTime,
		TagIDs:      r.Tags,
		Ingredients: make([]services.IngredientAmount, 0, len(r.Ingredients)),
	}
	for _, line := range r.Ingredients {
		input.Ingredients = append(input.Ingredients, services.IngredientAmount{
			IngredientID: line.ID,
			Amount:       line.Amount,
		})
	}
	return input
}

// boolFlag reads a 1/0 query flag
func boolFlag(c *gin.Context, name string) bool {
	switch c.Query(name) {
	case "1", "true":
		return true
	default:
		return false
	}
}

// ListRecipes godoc
// @Summary List recipes
// @Description Filters combine with AND. The favorited and cart flags only apply to authenticated users.
// @Tags recipes
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Param author query int false "Author ID"
// @Param tags query []string false "Tag slugs" collectionFormat(multi)
// @Param is_favorited query int false "1 to show favorites only"
// @Param is_in_shopping_cart query int false "1 to show the cart only"
// @Success 200 {object} Paginated[RecipeResponse]
// @Router /api/recipes [get]
func (rc *RecipeController) ListRecipes(c *gin.Context) {
	p, err := parsePage(c, rc.pageSize)
	if err != nil {
		respondBadRequest(c, err)
		return
	}

	viewer := viewerID(c)
	filter := services.RecipeFilter{
		TagSlugs: c.QueryArray("tags"),
		ViewerID: viewer,
	}
	if raw := c.Query("author"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			respondBadRequest(c, err)
			return
		}
		author := uint(id)
		filter.AuthorID = &author
	}
	if viewer != 0 {
		filter.Favorited = boolFlag(c, "is_favorited")
		filter.InCart = boolFlag(c, "is_in_shopping_cart")
	}

	ctx := c.Request.Context()
	recipes, total, err := rc.recipes.ListRecipes(ctx, filter, p.Page())
	if err != nil {
		respondError(c, err)
		return
	}
	results, err := rc.presenter.recipes(ctx, viewer, recipes)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, paginate(c, p, total, results))
}

// GetRecipe godoc
// @Summary Get a recipe
// @Tags recipes
// @Produce json
// @Param id path int true "Recipe ID"
// @Success 200 {object} RecipeResponse
// @Failure 404 {object} models.APIError
// @Router /api/recipes/{id} [get]
func (rc *RecipeController) GetRecipe(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	rc.render(c, http.StatusOK, id)
}

// render reloads a recipe and writes it with the viewer's flags
func (rc *RecipeController) render(c *gin.Context, status int, id uint) {
	ctx := c.Request.Context()
	recipe, err := rc.recipes.GetRecipe(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	resp, err := rc.presenter.recipe(ctx, viewerID(c), recipe)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(status, resp)
}

// CreateRecipe godoc
// @Summary Publish a recipe
// @Tags recipes
// @Accept json
// @Produce json
// @Param recipe body recipeRequest true "Recipe"
// @Success 201 {object} RecipeResponse
// @Failure 400 {object} models.APIError
// @Security BearerAuth
// @Router /api/recipes [post]
func (rc *RecipeController) CreateRecipe(c *gin.Context) {
	var req recipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	recipe, err := rc.recipes.CreateRecipe(c.Request.Context(), viewerID(c), req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	rc.render(c, http.StatusCreated, recipe.ID)
}

// UpdateRecipe godoc
// @Summary Update a recipe
// @Description Only the author may update. Tags and ingredients are replaced wholesale.
// @Tags recipes
// @Accept json
// @Produce json
// @Param id path int true "Recipe ID"
// @Param recipe body recipeRequest true "Recipe"
// @Success 200 {object} RecipeResponse
// @Failure 400 {object} models.APIError
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/recipes/{id} [patch]
func (rc *RecipeController) UpdateRecipe(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	var req recipeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	recipe, err := rc.recipes.UpdateRecipe(c.Request.Context(), id, viewerID(c), req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	rc.render(c, http.StatusOK, recipe.ID)
}

// DeleteRecipe godoc
// @Summary Delete a recipe
// @Tags recipes
// @Param id path int true "Recipe ID"
// @Success 204
// @Failure 403 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/recipes/{id} [delete]
func (rc *RecipeController) DeleteRecipe(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := rc.recipes.DeleteRecipe(c.Request.Context(), id, viewerID(c)); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (rc *RecipeController) addRelation(c *gin.Context, relation services.RelationService) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if err := relation.Add(ctx, viewerID(c), id); err != nil {
		respondError(c, err)
		return
	}
	recipe, err := rc.recipes.GetRecipe(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, shortRecipe(recipe))
}

func (rc *RecipeController) removeRelation(c *gin.Context, relation services.RelationService) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := relation.Remove(c.Request.Context(), viewerID(c), id); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// AddFavorite godoc
// @Summary Add a recipe to favorites
// @Tags recipes
// @Produce json
// @Param id path int true "Recipe ID"
// @Success 201 {object} RecipeShortResponse
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/recipes/{id}/favorite [post]
func (rc *RecipeController) AddFavorite(c *gin.Context) {
	rc.addRelation(c, rc.favorites)
}

// RemoveFavorite godoc
// @Summary Remove a recipe from favorites
// @Tags recipes
// @Param id path int true "Recipe ID"
// @Success 204
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/recipes/{id}/favorite [delete]
func (rc *RecipeController) RemoveFavorite(c *gin.Context) {
	rc.removeRelation(c, rc.favorites)
}

// AddToCart godoc
// @Summary Add a recipe to the shopping cart
// @Tags recipes
// @Produce json
// @Param id path int true "Recipe ID"
// @Success 201 {object} RecipeShortResponse
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/recipes/{id}/shopping_cart [post]
func (rc *RecipeController) AddToCart(c *gin.Context) {
	rc.addRelation(c, rc.cart)
}

// RemoveFromCart godoc
// @Summary Remove a recipe from the shopping cart
// @Tags recipes
// @Param id path int true "Recipe ID"
// @Success 204
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/recipes/{id}/shopping_cart [delete]
func (rc *RecipeController) RemoveFromCart(c *gin.Context) {
	rc.removeRelation(c, rc.cart)
}

// DownloadShoppingList godoc
// @Summary Download the shopping list
// @Description Sums the ingredients of every recipe in the cart into a plain text file
// @Tags recipes
// @Produce plain
// @Success 200 {string} string "Shopping list"
// @Failure 401 {object} map[string]string
// @Security BearerAuth
// @Router /api/recipes/download_shopping_cart [get]
func (rc *RecipeController) DownloadShoppingList(c *gin.Context) {
	list, err := rc.shopping.BuildShoppingList(c.Request.Context(), viewerID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+shopping.FileName+`"`)
	c.Data(http.StatusOK, shopping.ContentType, []byte(list.Render()))
}
