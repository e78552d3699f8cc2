package database

import (
	"fmt"

	"github.com/franciscosanchezn/gin-foodgram-api/internal/models"
	"gorm.io/gorm"
)

// AutoMigrate creates or updates every table the API needs
func AutoMigrate(db *gorm.DB) error {
	if db == nil {
		return fmt.Errorf("database handle is nil")
	}

	log.Info("Migrating database schema")
	return db.AutoMigrate(
		&models.User{},
		&models.Tag{},
		&models.Ingredient{},
		&models.Recipe{},
		&models.RecipeIngredient{},
		&models.Favorite{},
		&models.CartEntry{},
		&models.Subscription{},
		&models.OAuthClient{},
		&models.OAuthToken{},
	)
}
