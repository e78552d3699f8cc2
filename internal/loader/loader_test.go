package loader

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/franciscosanchezn/gin-foodgram-api/internal/database"
	"github.com/franciscosanchezn/gin-foodgram-api/internal/models"
	"github.com/franciscosanchezn/gin-foodgram-api/internal/services"
	"github.com/stretchr/testify/assert"
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

func writeFile(t *testing.T, name, content string) string {
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestFormatFromPath(t *testing.T) {
	tests := []struct {
		path    string
		want    Format
		wantErr bool
	}{
		{"data/ingredients.json", FormatJSON, false},
		{"data/INGREDIENTS.JSON", FormatJSON, false},
		{"tags.yaml", FormatYAML, false},
		{"tags.yml", FormatYAML, false},
		{"ingredients.csv", 0, true},
		{"noext", 0, true},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			got, err := FormatFromPath(tt.path)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrUnsupportedFormat)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDecode(t *testing.T) {
	items, err := Decode[models.Ingredient](strings.NewReader(`[{"name":"salt","measurement_unit":"g"}]`), FormatJSON)
	require.NoError(t, err)
	assert.Equal(t, []models.Ingredient{{Name: "salt", MeasurementUnit: "g"}}, items)

	items, err = Decode[models.Ingredient](strings.NewReader("- name: salt\n  measurement_unit: g\n"), FormatYAML)
	require.NoError(t, err)
	assert.Equal(t, []models.Ingredient{{Name: "salt", MeasurementUnit: "g"}}, items)

	items, err = Decode[models.Ingredient](strings.NewReader(""), FormatYAML)
	require.NoError(t, err)
	assert.Empty(t, items)

	_, err = Decode[models.Ingredient](strings.NewReader(`{"name":`), FormatJSON)
	assert.Error(t, err)
}

func TestLoadIngredients(t *testing.T) {
	db := setupTestDB(t)
	l := New(db, 2)
	ctx := context.Background()

	path := writeFile(t, "ingredients.json", `[
		{"name": "абрикосовое варенье", "measurement_unit": "г"},
		{"name": "flour", "measurement_unit": "g"},
		{"name": " egg ", "measurement_unit": "pcs"},
		{"name": "flour", "measurement_unit": "kg"},
		{"name": "milk", "measurement_unit": "ml"}
	]`)
	items, err := ReadFile[models.Ingredient](path)
	require.NoError(t, err)

	result, err := l.Ingredients(ctx, items)
	require.NoError(t, err)
	assert.Equal(t, Result{Inserted: 4, Skipped: 1}, result)

	var egg models.Ingredient
	require.NoError(t, db.Where("name = ?", "egg").First(&egg).Error)
	assert.Equal(t, "pcs", egg.MeasurementUnit)

	t.Run("reload skips existing rows", func(t *testing.T) {
		result, err := l.Ingredients(ctx, items)
		require.NoError(t, err)
		assert.Equal(t, Result{Inserted: 0, Skipped: 5}, result)

		var count int64
		require.NoError(t, db.Model(&models.Ingredient{}).Count(&count).Error)
		assert.EqualValues(t, 4, count)
	})

	t.Run("invalid rows abort the import", func(t *testing.T) {
		_, err := l.Ingredients(ctx, []models.Ingredient{{Name: "salt", MeasurementUnit: "g"}, {Name: "pepper"}})
		var validation *services.ValidationError
		require.ErrorAs(t, err, &validation)
		assert.Contains(t, validation.Fields, "[1]")

		var count int64
		require.NoError(t, db.Model(&models.Ingredient{}).Where("name = ?", "salt").Count(&count).Error)
		assert.Zero(t, count)
	})

	t.Run("empty input", func(t *testing.T) {
		result, err := l.Ingredients(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, Result{}, result)
	})
}

func TestLoadTags(t *testing.T) {
	db := setupTestDB(t)
	l := New(db, 0)
	ctx := context.Background()

	require.NoError(t, db.Create(&models.Tag{Name: "Breakfast", Color: "#E26C2D", Slug: "breakfast"}).Error)

	path := writeFile(t, "tags.yaml", `
- name: Breakfast
  color: "#E26C2D"
  slug: breakfast
- name: Lunch
  color: "#49b64e"
  slug: lunch
- name: Dinner
  color: "#8775D2"
  slug: dinner
`)
	tags, err := ReadFile[models.Tag](path)
	require.NoError(t, err)

	result, err := l.Tags(ctx, tags)
	require.NoError(t, err)
	assert.Equal(t, Result{Inserted: 2, Skipped: 1}, result)

	var lunch models.Tag
	require.NoError(t, db.Where("slug = ?", "lunch").First(&lunch).Error)
	assert.Equal(t, "#49B64E", lunch.Color)

	_, err = l.Tags(ctx, []models.Tag{{Name: "Bad", Color: "blue", Slug: "bad slug"}})
	var validation *services.ValidationError
	require.ErrorAs(t, err, &validation)
}

func TestReadFileErrors(t *testing.T) {
	_, err := ReadFile[models.Ingredient](filepath.Join(t.TempDir(), "missing.json"))
	assert.ErrorIs(t, err, os.ErrNotExist)

	_, err = ReadFile[models.Ingredient](writeFile(t, "ingredients.txt", "salt"))
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
}
