package auth

import (
	"context"
	"testing"
	"time"

	"github.com/franciscosanchezn/gin-foodgram-api/internal/database"
	"github.com/franciscosanchezn/gin-foodgram-api/internal/models"
	"github.com/franciscosanchezn/gin-foodgram-api/internal/services"
	"github.com/go-oauth2/oauth2/v4"
	oauthmodels "github.com/go-oauth2/oauth2/v4/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testJWTSecret = "test-jwt-secret-key-32-characters"

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := database.InitDatabase(database.DatabaseConfig{Driver: "sqlite", Path: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, database.AutoMigrate(db))
	return db
}

func newTestOAuthService(db *gorm.DB) *OAuthService {
	return NewOAuthService(db, services.NewUserService(db), testJWTSecret, time.Hour)
}

func createTestUser(t *testing.T, db *gorm.DB, email, role string) *models.User {
	user := &models.User{Email: email, Username: role + "_cook", Password: "password123", Role: role}
	require.NoError(t, services.NewUserService(db).CreateUser(context.Background(), user))
	return user
}

func createTestClient(t *testing.T, db *gorm.DB, id, secret string, owner uint, grants string) {
	client := &models.OAuthClient{ID: id, Name: id, Domain: "http://localhost", UserID: owner, GrantTypes: grants}
	require.NoError(t, services.NewClientService(db).CreateClient(context.Background(), client, secret))
}

func parseClaims(t *testing.T, token string) jwt.MapClaims {
	claims := jwt.MapClaims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (interface{}, error) {
		return []byte(testJWTSecret), nil
	})
	require.NoError(t, err)
	return claims
}

func TestOAuthServerInitialization(t *testing.T) {
	db := setupTestDB(t)

	oauthService := newTestOAuthService(db)
	assert.NotNil(t, oauthService)
	assert.NotNil(t, oauthService.GetServer())
	assert.NotNil(t, oauthService.TokenStore())
}

func TestJWTTokenGeneration(t *testing.T) {
	db := setupTestDB(t)
	oauthService := newTestOAuthService(db)

	owner := createTestUser(t, db, "admin@example.com", models.RoleAdmin)
	createTestClient(t, db, "test_client", "test_secret", owner.ID, "")

	tokenInfo, err := oauthService.GetServer().Manager.GenerateAccessToken(context.Background(), oauth2.ClientCredentials, &oauth2.TokenGenerateRequest{
		ClientID:     "test_client",
		ClientSecret: "test_secret",
		Scope:        "read",
	})
	require.NoError(t, err)
	require.NotNil(t, tokenInfo)

	claims := parseClaims(t, tokenInfo.GetAccess())
	assert.Equal(t, "1", claims["uid"])
	assert.Equal(t, models.RoleAdmin, claims["role"])
	assert.Equal(t, "test_client", claims["aud"])
	assert.Equal(t, "read", claims["scope"])
}

func TestJWTTokenGenerationRequiresOwner(t *testing.T) {
	db := setupTestDB(t)
	oauthService := newTestOAuthService(db)
	createTestClient(t, db, "orphan_client", "orphan_secret", 0, "")

	_, err := oauthService.GetServer().Manager.GenerateAccessToken(context.Background(), oauth2.ClientCredentials, &oauth2.TokenGenerateRequest{
		ClientID:     "orphan_client",
		ClientSecret: "orphan_secret",
	})
	assert.Error(t, err)
}

func TestSignUserToken(t *testing.T) {
	user := &models.User{ID: 7}

	token, expiresAt, err := SignUserToken([]byte(testJWTSecret), user, time.Hour)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expiresAt, time.Minute)

	claims := parseClaims(t, token)
	assert.Equal(t, "7", claims["uid"])
	assert.Equal(t, models.RoleUser, claims["role"])
	assert.Contains(t, claims, "jti")
}

func TestClientStoreIntegration(t *testing.T) {
	db := setupTestDB(t)
	createTestClient(t, db, "integration_test_client", "integration_test_secret", 0, "")

	clientStore := NewGormClientStore(db)
	ctx := context.Background()

	retrievedClient, err := clientStore.GetByID(ctx, "integration_test_client")
	require.NoError(t, err)
	assert.Equal(t, "integration_test_client", retrievedClient.GetID())

	_, err = clientStore.GetByID(ctx, "missing")
	assert.Error(t, err)
}

func TestTokenStoreRoundTrip(t *testing.T) {
	db := setupTestDB(t)
	store := NewGormTokenStore(db)
	ctx := context.Background()

	created := time.Now().UTC().Truncate(time.Second)
	info := &oauthmodels.Token{
		ClientID:         "client",
		UserID:           "3",
		Scope:            "read",
		Access:           "access-token",
		AccessCreateAt:   created,
		AccessExpiresIn:  time.Hour,
		Refresh:          "refresh-token",
		RefreshCreateAt:  created,
		RefreshExpiresIn: 7 * time.Hour,
	}
	require.NoError(t, store.Create(ctx, info))

	byRefresh, err := store.GetByRefresh(ctx, "refresh-token")
	require.NoError(t, err)
	require.NotNil(t, byRefresh)
	assert.Equal(t, "3", byRefresh.GetUserID())
	assert.Equal(t, "access-token", byRefresh.GetAccess())
	assert.Equal(t, 7*time.Hour, byRefresh.GetRefreshExpiresIn())

	require.NoError(t, store.RemoveByAccess(ctx, "access-token"))
	missing, err := store.GetByAccess(ctx, "access-token")
	require.NoError(t, err)
	assert.Nil(t, missing)

	// client credential tokens have neither user nor refresh token
	require.NoError(t, store.Create(ctx, &oauthmodels.Token{
		ClientID:        "client",
		Access:          "client-token",
		AccessCreateAt:  created,
		AccessExpiresIn: time.Hour,
	}))
	byAccess, err := store.GetByAccess(ctx, "client-token")
	require.NoError(t, err)
	assert.Empty(t, byAccess.GetUserID())
	assert.Empty(t, byAccess.GetRefresh())

	_, err = store.GetByCode(ctx, "code")
	assert.Error(t, err)
}

func TestTokenStorePurgeExpired(t *testing.T) {
	db := setupTestDB(t)
	store := NewGormTokenStore(db)
	ctx := context.Background()

	old := time.Now().Add(-48 * time.Hour)
	require.NoError(t, store.Create(ctx, &oauthmodels.Token{
		ClientID: "client", Access: "expired", AccessCreateAt: old, AccessExpiresIn: time.Hour,
	}))
	require.NoError(t, store.Create(ctx, &oauthmodels.Token{
		ClientID: "client", Access: "refreshable", AccessCreateAt: old, AccessExpiresIn: time.Hour,
		Refresh: "still-valid", RefreshCreateAt: old, RefreshExpiresIn: 7 * 24 * time.Hour,
	}))
	require.NoError(t, store.Create(ctx, &oauthmodels.Token{
		ClientID: "client", Access: "fresh", AccessCreateAt: time.Now(), AccessExpiresIn: time.Hour,
	}))

	purged, err := store.PurgeExpired(ctx, time.Now())
	require.NoError(t, err)
	assert.Equal(t, int64(1), purged)

	var remaining int64
	require.NoError(t, db.Model(&models.OAuthToken{}).Count(&remaining).Error)
	assert.Equal(t, int64(2), remaining)
}
