package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/franciscosanchezn/gin-foodgram-api/internal/database"
	"github.com/franciscosanchezn/gin-foodgram-api/internal/models"
	"github.com/franciscosanchezn/gin-foodgram-api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testUserHeader = "X-Test-User"

type testEnv struct {
	db     *gorm.DB
	router *gin.Engine
}

// stubIssuer hands out predictable tokens
type stubIssuer struct{}

func (stubIssuer) IssueUserToken(user *models.User) (string, time.Time, error) {
	return "token-" + strconv.FormatUint(uint64(user.ID), 10), time.Now().Add(time.Hour), nil
}

// asUser trusts the test header in place of a signed token
func asUser(required bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if raw := c.GetHeader(testUserHeader); raw != "" {
			id, _ := strconv.ParseUint(raw, 10, 32)
			c.Set("userID", uint(id))
			c.Next()
			return
		}
		if required {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
			return
		}
		c.Next()
	}
}

func setupTestEnv(t *testing.T) *testEnv {
	gin.SetMode(gin.TestMode)

	db, err := database.InitDatabase(database.DatabaseConfig{Driver: "sqlite", Path: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	users := services.NewUserService(db)
	recipes := services.NewRecipeService(db)
	favorites := services.NewFavoriteService(db)
	cart := services.NewCartService(db)
	subscriptions := services.NewSubscriptionService(db)

	authController := NewAuthController(users, stubIssuer{})
	userController := NewUserController(users, recipes, favorites, cart, subscriptions, 6)
	recipeController := NewRecipeController(recipes, favorites, cart, subscriptions, services.NewShoppingListService(db), 6)
	tagController := NewTagController(services.NewTagService(db))
	ingredientController := NewIngredientController(services.NewIngredientService(db))
	clientController := NewClientController(services.NewClientService(db))

	router := gin.New()
	api := router.Group("/api")
	api.POST("/auth/token/login", authController.Login)
	api.POST("/users", userController.Register)
	api.GET("/tags", tagController.ListTags)
	api.GET("/tags/:id", tagController.GetTag)
	api.POST("/tags", tagController.CreateTag)
	api.GET("/ingredients", ingredientController.ListIngredients)
	api.GET("/ingredients/:id", ingredientController.GetIngredient)

	public := api.Group("", asUser(false))
	public.GET("/users", userController.ListUsers)
	public.GET("/users/:id", userController.GetUser)
	public.GET("/recipes", recipeController.ListRecipes)
	public.GET("/recipes/:id", recipeController.GetRecipe)

	private := api.Group("", asUser(true))
	private.GET("/me", userController.Me)
	private.POST("/set_password", userController.SetPassword)
	private.GET("/subscriptions", userController.Subscriptions)
	private.POST("/users/:id/subscribe", userController.Subscribe)
	private.DELETE("/users/:id/subscribe", userController.Unsubscribe)
	private.POST("/recipes", recipeController.CreateRecipe)
	private.PATCH("/recipes/:id", recipeController.UpdateRecipe)
	private.DELETE("/recipes/:id", recipeController.DeleteRecipe)
	private.POST("/recipes/:id/favorite", recipeController.AddFavorite)
	private.DELETE("/recipes/:id/favorite", recipeController.RemoveFavorite)
	private.POST("/recipes/:id/shopping_cart", recipeController.AddToCart)
	private.DELETE("/recipes/:id/shopping_cart", recipeController.RemoveFromCart)
	private.GET("/cart/download", recipeController.DownloadShoppingList)
	private.POST("/clients", clientController.CreateClient)
	private.GET("/clients", clientController.ListClients)
	private.DELETE("/clients/:id", clientController.DeleteClient)

	return &testEnv{db: db, router: router}
}

// do sends body as JSON, acting as user when non-zero
func (e *testEnv) do(t *testing.T, method, path string, user uint, body any) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if user != 0 {
		req.Header.Set(testUserHeader, strconv.FormatUint(uint64(user), 10))
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	var out T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func (e *testEnv) createUser(t *testing.T, username string) *models.User {
	user := &models.User{
		Email:     username + "@example.com",
		Username:  username,
		FirstName: "Test",
		LastName:  "Cook",
		Password:  "password123",
	}
	require.NoError(t, services.NewUserService(e.db).CreateUser(context.Background(), user))
	return user
}

type catalog struct {
	Breakfast models.Tag
	Dinner    models.Tag
	Flour     models.Ingredient
	Egg       models.Ingredient
}

func (e *testEnv) seedCatalog(t *testing.T) catalog {
	c := catalog{
		Breakfast: models.Tag{Name: "Breakfast", Color: "#E26C2D", Slug: "breakfast"},
		Dinner:    models.Tag{Name: "Dinner", Color: "#49B64E", Slug: "dinner"},
		Flour:     models.Ingredient{Name: "flour", MeasurementUnit: "g"},
		Egg:       models.Ingredient{Name: "egg", MeasurementUnit: "pcs"},
	}
	require.NoError(t, e.db.Create(&c.Breakfast).Error)
	require.NoError(t, e.db.Create(&c.Dinner).Error)
	require.NoError(t, e.db.Create(&c.Flour).Error)
	require.NoError(t, e.db.Create(&c.Egg).Error)
	return c
}

func recipeBody(name string, tags []uint, ingredients ...gin.H) gin.H {
	return gin.H{
		"name":         name,
		"text":         "Mix and cook.",
		"cooking_time": 15,
		"tags":         tags,
		"ingredients":  ingredients,
	}
}

func (e *testEnv) createRecipe(t *testing.T, author uint, body gin.H) RecipeResponse {
	w := e.do(t, http.MethodPost, "/api/recipes", author, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[RecipeResponse](t, w)
}
