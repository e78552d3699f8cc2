package controllers

import (
	"net/http"
	"strconv"

	"github.com/franciscosanchezn/gin-foodgram-api/internal/models"
	"github.com/franciscosanchezn/gin-foodgram-api/internal/services"
	"github.com/gin-gonic/gin"
)

type UserController struct {
	users         services.UserService
	recipes       services.RecipeService
	subscriptions services.RelationService
	presenter     *presenter
	pageSize      int
}

func NewUserController(users services.UserService, recipes services.RecipeService, favorites, cart, subscriptions services.RelationService, pageSize int) *UserController {
	return &UserController{
		users:         users,
		recipes:       recipes,
		subscriptions: subscriptions,
		presenter:     &presenter{favorites: favorites, cart: cart, subscriptions: subscriptions},
		pageSize:      pageSize,
	}
}

type registerRequest struct {
	Email     string `json:"email" binding:"required,email,max=254"`
	Username  string `json:"username" binding:"required,max=150"`
	FirstName string `json:"first_name" binding:"required,max=150"`
	LastName  string `json:"last_name" binding:"required,max=150"`
	Password  string `json:"password" binding:"required"`
}

type setPasswordRequest struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required"`
}

// Register godoc
// @Summary Register a user
// @Tags users
// @Accept json
// @Produce json
// @Param user body registerRequest true "New account"
// @Success 201 {object} UserResponse
// @Failure 400 {object} models.APIError
// @Router /api/users [post]
func (uc *UserController) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	user := &models.User{
		Email:     req.Email,
		Username:  req.Username,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Password:  req.Password,
	}
	if err := uc.users.CreateUser(c.Request.Context(), user); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, userResponse(user, false))
}

// ListUsers godoc
// @Summary List users
// @Tags users
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Success 200 {object} Paginated[UserResponse]
// @Router /api/users [get]
func (uc *UserController) ListUsers(c *gin.Context) {
	p, err := parsePage(c, uc.pageSize)
	if err != nil {
		respondBadRequest(c, err)
		return
	}

	ctx := c.Request.Context()
	users, total, err := uc.users.ListUsers(ctx, p.Page())
	if err != nil {
		respondError(c, err)
		return
	}
	results, err := uc.presenter.users(ctx, viewerID(c), users)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, paginate(c, p, total, results))
}

// GetUser godoc
// @Summary Get a user profile
// @Tags users
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} UserResponse
// @Failure 404 {object} models.APIError
// @Router /api/users/{id} [get]
func (uc *UserController) GetUser(c *gin.Context) {
	id, ok := idParam(c, "id")
	if !ok {
		return
	}
	uc.renderUser(c, id)
}

// Me godoc
// @Summary Current user profile
// @Tags users
// @Produce json
// @Success 200 {object} UserResponse
// @Failure 401 {object} map[string]string
// @Security BearerAuth
// @Router /api/users/me [get]
func (uc *UserController) Me(c *gin.Context) {
	uc.renderUser(c, viewerID(c))
}

func (uc *UserController) renderUser(c *gin.Context, id uint) {
	ctx := c.Request.Context()
	user, err := uc.users.GetUserByID(ctx, id)
	if err != nil {
		respondError(c, err)
		return
	}
	resp, err := uc.presenter.user(ctx, viewerID(c), user)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

// SetPassword godoc
// @Summary Change the current user's password
// @Tags users
// @Accept json
// @Param passwords body setPasswordRequest true "Current and new password"
// @Success 204
// @Failure 400 {object} models.APIError
// @Security BearerAuth
// @Router /api/users/set_password [post]
func (uc *UserController) SetPassword(c *gin.Context) {
	var req setPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	if err := uc.users.SetPassword(c.Request.Context(), viewerID(c), req.CurrentPassword, req.NewPassword); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// recipesLimit reads ?recipes_limit; 0 means no limit
func recipesLimit(c *gin.Context) (int, bool) {
	raw := c.Query("recipes_limit")
	if raw == "" {
		return 0, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		c.AbortWithStatusJSON(http.StatusBadRequest, models.NewAPIError(models.ErrBadRequest, "recipes_limit must be a non-negative integer"))
		return 0, false
	}
	return n, true
}

func (uc *UserController) subscription(c *gin.Context, author UserResponse, limit int, count int64) (SubscriptionResponse, error) {
	recipes, err := uc.recipes.ListByAuthor(c.Request.Context(), author.ID, limit)
	if err != nil {
		return SubscriptionResponse{}, err
	}

	resp := SubscriptionResponse{
		UserResponse: author,
		Recipes:      make([]RecipeShortResponse, 0, len(recipes)),
		RecipesCount: count,
	}
	for i := range recipes {
		resp.Recipes = append(resp.Recipes, shortRecipe(&recipes[i]))
	}
	return resp, nil
}

// Subscriptions godoc
// @Summary Authors the current user follows
// @Tags users
// @Produce json
// @Param page query int false "Page number"
// @Param limit query int false "Page size"
// @Param recipes_limit query int false "Recipes shown per author"
// @Success 200 {object} Paginated[SubscriptionResponse]
// @Security BearerAuth
// @Router /api/users/subscriptions [get]
func (uc *UserController) Subscriptions(c *gin.Context) {
	p, err := parsePage(c, uc.pageSize)
	if err != nil {
		respondBadRequest(c, err)
		return
	}
	limit, ok := recipesLimit(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	authors, total, err := uc.users.ListSubscriptions(ctx, viewerID(c), p.Page())
	if err != nil {
		respondError(c, err)
		return
	}

	ids := make([]uint, 0, len(authors))
	for _, a := range authors {
		ids = append(ids, a.ID)
	}
	counts, err := uc.recipes.CountByAuthor(ctx, ids)
	if err != nil {
		respondError(c, err)
		return
	}

	results := make([]SubscriptionResponse, 0, len(authors))
	for i := range authors {
		resp, err := uc.subscription(c, userResponse(&authors[i], true), limit, counts[authors[i].ID])
		if err != nil {
			respondError(c, err)
			return
		}
		results = append(results, resp)
	}

	c.JSON(http.StatusOK, paginate(c, p, total, results))
}

// Subscribe godoc
// @Summary Follow an author
// @Tags users
// @Produce json
// @Param id path int true "Author ID"
// @Param recipes_limit query int false "Recipes shown"
// @Success 201 {object} SubscriptionResponse
// @Failure 400 {object} models.APIError
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/users/{id}/subscribe [post]
func (uc *UserController) Subscribe(c *gin.Context) {
	authorID, ok := idParam(c, "id")
	if !ok {
		return
	}
	limit, ok := recipesLimit(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()
	if err := uc.subscriptions.Add(ctx, viewerID(c), authorID); err != nil {
		respondError(c, err)
		return
	}

	author, err := uc.users.GetUserByID(ctx, authorID)
	if err != nil {
		respondError(c, err)
		return
	}
	counts, err := uc.recipes.CountByAuthor(ctx, []uint{authorID})
	if err != nil {
		respondError(c, err)
		return
	}
	resp, err := uc.subscription(c, userResponse(author, true), limit, counts[authorID])
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, resp)
}

// Unsubscribe godoc
// @Summary Stop following an author
// @Tags users
// @Param id path int true "Author ID"
// @Success 204
// @Failure 404 {object} models.APIError
// @Security BearerAuth
// @Router /api/users/{id}/subscribe [delete]
func (uc *UserController) Unsubscribe(c *gin.Context) {
	authorID, ok := idParam(c, "id")
	if !ok {
		return
	}
	if err := uc.subscriptions.Remove(c.Request.Context(), viewerID(c), authorID); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
