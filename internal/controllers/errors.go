package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/franciscosanchezn/gin-foodgram-api/internal/models"
	"github.com/franciscosanchezn/gin-foodgram-api/internal/services"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

var log = logrus.New()

func init() {
	log.SetFormatter(&logrus.JSONFormatter{})
	log.SetLevel(logrus.InfoLevel)
}

// SetLogLevel aligns the controller logger with the configured level
func SetLogLevel(level logrus.Level) {
	log.SetLevel(level)
}

// statusFor maps service errors to an HTTP status and API error code
func statusFor(err error) (int, string) {
	var validation *services.ValidationError
	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest, models.ErrValidationFailed
	case errors.Is(err, services.ErrRecipeNotFound):
		return http.StatusNotFound, models.ErrRecipeNotFound
	case errors.Is(err, services.ErrUserNotFound):
		return http.StatusNotFound, models.ErrUserNotFound
	case errors.Is(err, services.ErrTagNotFound):
		return http.StatusNotFound, models.ErrTagNotFound
	case errors.Is(err, services.ErrIngredientNotFound):
		return http.StatusNotFound, models.ErrIngredientNotFound
	case errors.Is(err, services.ErrClientNotFound):
		return http.StatusNotFound, models.ErrNotFound
	case errors.Is(err, services.ErrRelationNotFound):
		return http.StatusNotFound, models.ErrRelationNotFound
	case errors.Is(err, services.ErrAlreadyExists):
		return http.StatusBadRequest, models.ErrAlreadyExists
	case errors.Is(err, services.ErrSelfSubscription):
		return http.StatusBadRequest, models.ErrSelfSubscription
	case errors.Is(err, services.ErrForbidden):
		return http.StatusForbidden, models.ErrForbidden
	case errors.Is(err, services.ErrInvalidPassword):
		return http.StatusBadRequest, models.ErrInvalidCredentials
	default:
		return http.StatusInternalServerError, models.ErrInternalServer
	}
}

var errorMessages = map[string]string{
	models.ErrValidationFailed:   "The request is invalid",
	models.ErrRecipeNotFound:     "Recipe not found",
	models.ErrUserNotFound:       "User not found",
	models.ErrTagNotFound:        "Tag not found",
	models.ErrIngredientNotFound: "Ingredient not found",
	models.ErrNotFound:           "Resource not found",
	models.ErrRelationNotFound:   "Nothing to remove",
	models.ErrAlreadyExists:      "Already added",
	models.ErrSelfSubscription:   "You cannot subscribe to yourself",
	models.ErrForbidden:          "You do not have permission to perform this action",
	models.ErrInvalidCredentials: "Invalid credentials",
	models.ErrInternalServer:     "Internal server error",
}

// respondError writes err as an APIError and aborts the request
func respondError(c *gin.Context, err error) {
	status, code := statusFor(err)

	apiErr := models.NewAPIError(code, errorMessages[code])
	var validation *services.ValidationError
	if errors.As(err, &validation) {
		details := make(map[string]interface{}, len(validation.Fields))
		for field, messages := range validation.Fields {
			if field == "" {
				field = "non_field_errors"
			}
			details[field] = messages
		}
		apiErr.Details = details
	}

	if status >= http.StatusInternalServerError {
		log.WithError(err).WithFields(logrus.Fields{
			"path":       c.Request.URL.Path,
			"request_id": c.GetString("requestID"),
		}).Error("Request failed")
	}

	c.AbortWithStatusJSON(status, apiErr)
}

// respondBadRequest reports a malformed request body or query
func respondBadRequest(c *gin.Context, err error) {
	c.AbortWithStatusJSON(http.StatusBadRequest, models.NewAPIError(models.ErrBadRequest, err.Error()))
}

// idParam parses a positive numeric path parameter, answering 404 otherwise
func idParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil || id == 0 {
		c.AbortWithStatusJSON(http.StatusNotFound, models.NewAPIError(models.ErrNotFound, "Resource not found"))
		return 0, false
	}
	return uint(id), true
}

// viewerID is the authenticated user, 0 for anonymous requests
func viewerID(c *gin.Context) uint {
	return c.GetUint("userID")
}
