package services

import (
	"context"
	"testing"

	"github.com/franciscosanchezn/gin-foodgram-api/internal/database"
	"github.com/franciscosanchezn/gin-foodgram-api/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := database.InitDatabase(database.DatabaseConfig{Driver: "sqlite", Path: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))

	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return db
}

func createUser(t *testing.T, db *gorm.DB, username string) *models.User {
	user := &models.User{
		Email:     username + "@example.com",
		Username:  username,
		FirstName: "Test",
		LastName:  "Cook",
		Password:  "password123",
	}
	require.NoError(t, NewUserService(db).CreateUser(context.Background(), user))
	return user
}

type fixtures struct {
	Breakfast models.Tag
	Dinner    models.Tag
	Flour     models.Ingredient
	Egg       models.Ingredient
	Milk      models.Ingredient
}

func seedFixtures(t *testing.T, db *gorm.DB) fixtures {
	f := fixtures{
		Breakfast: models.Tag{Name: "Breakfast", Color: "#E26C2D", Slug: "breakfast"},
		Dinner:    models.Tag{Name: "Dinner", Color: "#49B64E", Slug: "dinner"},
		Flour:     models.Ingredient{Name: "flour", MeasurementUnit: "g"},
		Egg:       models.Ingredient{Name: "egg", MeasurementUnit: "pcs"},
		Milk:      models.Ingredient{Name: "milk", MeasurementUnit: "ml"},
	}
	for _, tag := range []*models.Tag{&f.Breakfast, &f.Dinner} {
		require.NoError(t, db.Create(tag).Error)
	}
	for _, ingredient := range []*models.Ingredient{&f.Flour, &f.Egg, &f.Milk} {
		require.NoError(t, db.Create(ingredient).Error)
	}
	return f
}

func recipeInput(name string, tags []uint, lines ...IngredientAmount) RecipeInput {
	text := "Mix and cook."
	cookingTime := 20
	return RecipeInput{
		Name:        &name,
		Text:        &text,
		CookingTime: &cookingTime,
		TagIDs:      tags,
		Ingredients: lines,
	}
}
