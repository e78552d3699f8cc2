package controllers

import (
	"errors"
	"net/http"
	"time"

	"github.com/franciscosanchezn/gin-foodgram-api/internal/models"
	"github.com/franciscosanchezn/gin-foodgram-api/internal/services"
	"github.com/gin-gonic/gin"
)

// TokenIssuer signs access tokens for users authenticated by password
type TokenIssuer interface {
	IssueUserToken(user *models.User) (string, time.Time, error)
}

type AuthController struct {
	userService services.UserService
	tokens      TokenIssuer
}

func NewAuthController(userService services.UserService, tokens TokenIssuer) *AuthController {
	return &AuthController{
		userService: userService,
		tokens:      tokens,
	}
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Login godoc
// @Summary Obtain an auth token
// @Description Exchange email and password for an access token
// @Tags auth
// @Accept json
// @Produce json
// @Param credentials body loginRequest true "Email and password"
// @Success 200 {object} map[string]string "auth_token"
// @Failure 400 {object} models.APIError
// @Router /api/auth/token/login [post]
func (ac *AuthController) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBadRequest(c, err)
		return
	}

	user, err := ac.userService.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrUserNotFound) || errors.Is(err, services.ErrInvalidPassword) {
			c.JSON(http.StatusBadRequest, models.NewAPIError(models.ErrInvalidCredentials,
				"Unable to log in with provided credentials"))
			return
		}
		respondError(c, err)
		return
	}

	token, expiresAt, err := ac.tokens.IssueUserToken(user)
	if err != nil {
		respondError(c, err)
		return
	}

	log.WithField("user_id", user.ID).Info("User logged in")
	c.JSON(http.StatusOK, gin.H{
		"auth_token": token,
		"token_type": "Bearer",
		"expires_at": expiresAt.UTC().Format(time.RFC3339),
	})
}
