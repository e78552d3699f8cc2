package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/franciscosanchezn/gin-foodgram-api/docs" // Import generated docs
	"github.com/franciscosanchezn/gin-foodgram-api/internal/config"
	"github.com/franciscosanchezn/gin-foodgram-api/internal/controllers"
	"github.com/franciscosanchezn/gin-foodgram-api/internal/database"
	"github.com/franciscosanchezn/gin-foodgram-api/internal/loader"
	"github.com/franciscosanchezn/gin-foodgram-api/internal/models"
	"github.com/franciscosanchezn/gin-foodgram-api/internal/server"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
	"gorm.io/gorm"
)

const shutdownTimeout = 10 * time.Second

// defaultTags are seeded into an empty database
var defaultTags = []models.Tag{
	{Name: "Breakfast", Color: "#E26C2D", Slug: "breakfast"},
	{Name: "Lunch", Color: "#49B64E", Slug: "lunch"},
	{Name: "Dinner", Color: "#8775D2", Slug: "dinner"},
}

// @title Foodgram API
// @version 1.0
// @description Recipe sharing API with favorites, subscriptions and a downloadable shopping list
// @host localhost:8080
// @BasePath /
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	// Load environment variables
	loadDotenvFile()

	// Load configuration
	configuration := loadConfig()

	// Initialize logger
	setUpLogger(configuration)

	// Initialize database connection
	db := setupDatabase(configuration)

	if configuration.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := server.NewRouter(db, configuration, log.StandardLogger())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, configuration, router); err != nil {
		log.WithError(err).Fatal("Server stopped with error")
	}
	log.Info("Server stopped")
}

// checkPanicErr checks if an error occurred and panics if it did
func checkPanicErr(err error) {
	if err != nil {
		panic(err)
	}
}

// loadDotenvFile loads environment variables from a .env file
// If the file is not found, it will log a warning and use system environment variables
func loadDotenvFile() {
	if err := godotenv.Load(); err != nil {
		log.Warn("No .env file found, using system environment variables")
	}
}

// setUpLogger initializes the logger with a JSON formatter and the configured level
func setUpLogger(conf *config.Config) {
	log.SetFormatter(&log.JSONFormatter{})
	level, err := log.ParseLevel(conf.LogLevel)
	checkPanicErr(err)
	log.SetLevel(level)
	controllers.SetLogLevel(level)
}

// loadConfig loads the application configuration from environment variables
// It returns a Config struct or panics if there is an error
func loadConfig() *config.Config {
	conf, err := config.LoadConfig()
	checkPanicErr(err)
	return conf
}

// setupDatabase opens the configured database, migrates the schema and
// seeds default tags when the database is empty
func setupDatabase(conf *config.Config) *gorm.DB {
	dbConf := conf.Database()
	log.Infof("Connecting to database: %s", dbConf.String())
	db, err := database.InitDatabase(dbConf)
	checkPanicErr(err)
	checkPanicErr(database.AutoMigrate(db))

	if !conf.SeedData {
		return db
	}

	// Create only if is empty
	var count int64
	checkPanicErr(db.Model(&models.Tag{}).Count(&count).Error)
	if count == 0 {
		log.Info("Database is empty, seeding initial data")
		seedDatabase(db)
	} else {
		log.Info("Database already seeded with initial data")
	}
	return db
}

// seedDatabase seeds the database with the default tags
func seedDatabase(db *gorm.DB) {
	result, err := loader.New(db, 0).Tags(context.Background(), defaultTags)
	checkPanicErr(err)
	log.WithField("inserted", result.Inserted).Info("Database seeded successfully")
}

// run serves until ctx is cancelled, then drains in-flight requests
func run(ctx context.Context, conf *config.Config, handler http.Handler) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", conf.Host, conf.Port),
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Infof("Starting server on %s", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
