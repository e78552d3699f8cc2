// Package server assembles the HTTP surface: middleware, controllers and the
// OAuth2 token endpoint.
package server

import (
	"net/http"
	"time"

	"github.com/franciscosanchezn/gin-foodgram-api/internal/auth"
	"github.com/franciscosanchezn/gin-foodgram-api/internal/config"
	"github.com/franciscosanchezn/gin-foodgram-api/internal/controllers"
	"github.com/franciscosanchezn/gin-foodgram-api/internal/middleware"
	"github.com/franciscosanchezn/gin-foodgram-api/internal/models"
	"github.com/franciscosanchezn/gin-foodgram-api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"golang.org/x/time/rate"
	"gorm.io/gorm"
)

const serviceName = "gin-foodgram-api"

// NewRouter wires services, controllers and middleware over db
func NewRouter(db *gorm.DB, conf *config.Config, log *logrus.Logger) *gin.Engine {
	users := services.NewUserService(db)
	recipes := services.NewRecipeService(db)
	favorites := services.NewFavoriteService(db)
	cart := services.NewCartService(db)
	subscriptions := services.NewSubscriptionService(db)
	oauthService := auth.NewOAuthService(db, users, conf.JWTSecret, conf.TokenTTL)

	authController := controllers.NewAuthController(users, oauthService)
	userController := controllers.NewUserController(users, recipes, favorites, cart, subscriptions, conf.PageSize)
	recipeController := controllers.NewRecipeController(recipes, favorites, cart, subscriptions,
		services.NewShoppingListService(db), conf.PageSize)
	tagController := controllers.NewTagController(services.NewTagService(db))
	ingredientController := controllers.NewIngredientController(services.NewIngredientService(db))
	clientController := controllers.NewClientController(services.NewClientService(db))

	router := gin.New()
	router.Use(
		middleware.Recovery(log),
		middleware.RequestID(),
		middleware.RequestLogger(log),
		middleware.Metrics(),
		middleware.RateLimit(rate.NewLimiter(rate.Limit(conf.RateLimit), conf.RateLimitBurst)),
	)

	router.GET("/health", healthCheckHandler(db))
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.POST("/oauth/token", oauthService.HandleToken)

	secret := []byte(conf.JWTSecret)
	api := router.Group("/api")
	{
		api.POST("/auth/token/login", authController.Login)
		api.POST("/users", userController.Register)

		api.GET("/tags", tagController.ListTags)
		api.GET("/tags/:id", tagController.GetTag)
		api.GET("/ingredients", ingredientController.ListIngredients)
		api.GET("/ingredients/:id", ingredientController.GetIngredient)

		// Public reads that render per-viewer flags when a token is present
		public := api.Group("")
		public.Use(middleware.OptionalAuth(secret))
		{
			public.GET("/users", userController.ListUsers)
			public.GET("/users/:id", userController.GetUser)
			public.GET("/recipes", recipeController.ListRecipes)
			public.GET("/recipes/:id", recipeController.GetRecipe)
		}

		protected := api.Group("")
		protected.Use(middleware.OAuth2Auth(secret))
		{
			protected.GET("/users/me", userController.Me)
			protected.POST("/users/set_password", userController.SetPassword)
			protected.GET("/users/subscriptions", userController.Subscriptions)
			protected.POST("/users/:id/subscribe", userController.Subscribe)
			protected.DELETE("/users/:id/subscribe", userController.Unsubscribe)

			protected.POST("/recipes", recipeController.CreateRecipe)
			protected.PATCH("/recipes/:id", recipeController.UpdateRecipe)
			protected.DELETE("/recipes/:id", recipeController.DeleteRecipe)
			protected.POST("/recipes/:id/favorite", recipeController.AddFavorite)
			protected.DELETE("/recipes/:id/favorite", recipeController.RemoveFavorite)
			protected.POST("/recipes/:id/shopping_cart", recipeController.AddToCart)
			protected.DELETE("/recipes/:id/shopping_cart", recipeController.RemoveFromCart)
			protected.GET("/recipes/download_shopping_cart", recipeController.DownloadShoppingList)

			protected.POST("/clients", clientController.CreateClient)
			protected.GET("/clients", clientController.ListClients)
			protected.DELETE("/clients/:id", clientController.DeleteClient)

			admin := protected.Group("/admin")
			admin.Use(middleware.RequireRole(models.RoleAdmin))
			{
				admin.POST("/tags", tagController.CreateTag)
			}
		}
	}

	return router
}

// healthCheckHandler handles the health check endpoint
// @Summary Health check
// @Description Check if the service is running and the database answers
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /health [get]
func healthCheckHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		status, code := "healthy", http.StatusOK
		if sqlDB, err := db.DB(); err != nil || sqlDB.PingContext(c.Request.Context()) != nil {
			status, code = "unhealthy", http.StatusServiceUnavailable
		}

		c.JSON(code, gin.H{
			"status":    status,
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"service":   serviceName,
		})
	}
}
