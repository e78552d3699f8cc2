package main

import (
	"path/filepath"
	"testing"

	"github.com/franciscosanchezn/gin-foodgram-api/internal/config"
	"github.com/franciscosanchezn/gin-foodgram-api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(t *testing.T, seed bool) *config.Config {
	return &config.Config{
		DBDriver: "sqlite",
		DBPath:   filepath.Join(t.TempDir(), "foodgram.sqlite"),
		SeedData: seed,
	}
}

func countTags(t *testing.T, conf *config.Config) int64 {
	db := setupDatabase(conf)
	t.Cleanup(func() {
		if sqlDB, err := db.DB(); err == nil {
			sqlDB.Close()
		}
	})

	var count int64
	require.NoError(t, db.Model(&models.Tag{}).Count(&count).Error)
	return count
}

func TestSetupDatabaseSeedsTags(t *testing.T) {
	conf := testConfig(t, true)
	assert.EqualValues(t, len(defaultTags), countTags(t, conf))

	// seeding is skipped once tags exist
	assert.EqualValues(t, len(defaultTags), countTags(t, conf))
}

func TestSetupDatabaseWithoutSeed(t *testing.T) {
	assert.Zero(t, countTags(t, testConfig(t, false)))
}
