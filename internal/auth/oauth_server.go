package auth

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/franciscosanchezn/gin-foodgram-api/internal/models"
	"github.com/franciscosanchezn/gin-foodgram-api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/go-oauth2/oauth2/v4"
	oauthErrors "github.com/go-oauth2/oauth2/v4/errors"
	"github.com/go-oauth2/oauth2/v4/manage"
	"github.com/go-oauth2/oauth2/v4/server"
	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.InfoLevel)
}

// refreshLifetimeFactor is how many access lifetimes a refresh token lives
const refreshLifetimeFactor = 7

type OAuthService struct {
	server     *server.Server
	db         *gorm.DB
	users      services.UserService
	tokenStore *GormTokenStore
	jwtSecret  []byte
	tokenTTL   time.Duration
}

func NewOAuthService(db *gorm.DB, users services.UserService, jwtSecret string, tokenTTL time.Duration) *OAuthService {
	manager := manage.NewDefaultManager()

	manager.SetClientTokenCfg(&manage.Config{AccessTokenExp: tokenTTL})
	manager.SetPasswordTokenCfg(&manage.Config{
		AccessTokenExp:    tokenTTL,
		RefreshTokenExp:   tokenTTL * refreshLifetimeFactor,
		IsGenerateRefresh: true,
	})
	manager.SetRefreshTokenCfg(&manage.RefreshingConfig{
		AccessTokenExp:     tokenTTL,
		RefreshTokenExp:    tokenTTL * refreshLifetimeFactor,
		IsGenerateRefresh:  true,
		IsRemoveAccess:     true,
		IsRemoveRefreshing: true,
	})

	// Use JWT for access tokens
	manager.MapAccessGenerate(NewCustomJWTAccessGenerate([]byte(jwtSecret), jwt.SigningMethodHS512, db))

	tokenStore := NewGormTokenStore(db)
	manager.MustTokenStorage(tokenStore, nil)
	manager.MapClientStorage(NewGormClientStore(db))

	o := &OAuthService{
		db:         db,
		users:      users,
		tokenStore: tokenStore,
		jwtSecret:  []byte(jwtSecret),
		tokenTTL:   tokenTTL,
	}

	srv := server.NewDefaultServer(manager)
	srv.SetAllowedGrantType(oauth2.ClientCredentials, oauth2.PasswordCredentials, oauth2.Refreshing)
	srv.SetClientInfoHandler(server.ClientFormHandler)
	srv.SetClientAuthorizedHandler(o.clientAllowsGrant)
	srv.SetPasswordAuthorizationHandler(o.authorizePassword)
	srv.SetInternalErrorHandler(func(err error) *oauthErrors.Response {
		log.WithError(err).Error("OAuth2 internal error")
		return nil
	})
	srv.SetResponseErrorHandler(func(re *oauthErrors.Response) {
		log.WithField("error", re.Error.Error()).Debug("OAuth2 token request rejected")
	})

	o.server = srv
	return o
}

// authorizePassword resolves the resource owner of a password grant; the
// username is the account email. An empty id makes the server answer invalid_grant.
func (o *OAuthService) authorizePassword(ctx context.Context, clientID, username, password string) (string, error) {
	user, err := o.users.Authenticate(ctx, username, password)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) || errors.Is(err, services.ErrInvalidPassword) {
			log.WithField("client_id", clientID).Info("Password grant rejected")
			return "", nil
		}
		return "", err
	}
	return strconv.FormatUint(uint64(user.ID), 10), nil
}

// clientAllowsGrant checks the grant against the client's space separated
// GrantTypes; an empty list allows every enabled grant
func (o *OAuthService) clientAllowsGrant(clientID string, grant oauth2.GrantType) (bool, error) {
	var client models.OAuthClient
	if err := o.db.Select("grant_types").Where("id = ?", clientID).First(&client).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, err
	}
	if client.GrantTypes == "" {
		return true, nil
	}
	for _, allowed := range strings.Fields(client.GrantTypes) {
		if allowed == grant.String() {
			return true, nil
		}
	}
	return false, nil
}

func (o *OAuthService) GetServer() *server.Server {
	return o.server
}

func (o *OAuthService) TokenStore() *GormTokenStore {
	return o.tokenStore
}

// IssueUserToken signs an access token for a user authenticated by email and password
func (o *OAuthService) IssueUserToken(user *models.User) (string, time.Time, error) {
	return SignUserToken(o.jwtSecret, user, o.tokenTTL)
}

// HandleToken handles the OAuth2 token endpoint
// @Summary Token Endpoint
// @Description Obtain an access token with the client_credentials, password or refresh_token grant
// @Tags OAuth2
// @Accept application/x-www-form-urlencoded
// @Produce json
// @Param grant_type formData string true "Grant type: client_credentials, password or refresh_token"
// @Param client_id formData string true "Client ID"
// @Param client_secret formData string true "Client Secret"
// @Param username formData string false "Account email (password grant)"
// @Param password formData string false "Account password (password grant)"
// @Param refresh_token formData string false "Refresh token (refresh_token grant)"
// @Param scope formData string false "Requested scope"
// @Success 200 {object} map[string]interface{}
// @Failure 400 {object} models.OAuth2Error
// @Failure 401 {object} models.OAuth2Error
// @Router /oauth/token [post]
func (o *OAuthService) HandleToken(c *gin.Context) {
	if err := o.server.HandleTokenRequest(c.Writer, c.Request); err != nil {
		log.WithError(err).Error("Failed to write token response")
	}
}
