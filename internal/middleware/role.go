package middleware

import (
	"net/http"
	"slices"

	"github.com/franciscosanchezn/gin-foodgram-api/internal/models"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

// RequireRole lets the request through when the authenticated caller holds
// one of roles. It must run after OAuth2Auth.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetUint("userID")
		if userID == 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized,
				models.NewAPIError(models.ErrUnauthorized, "Authentication credentials were not provided"))
			return
		}

		role := c.GetString("userRole")
		if !slices.Contains(roles, role) {
			log.WithFields(logrus.Fields{
				"user_id":   userID,
				"user_role": role,
				"path":      c.Request.URL.Path,
			}).Warn("Role check failed")
			c.AbortWithStatusJSON(http.StatusForbidden,
				models.NewAPIError(models.ErrForbidden, "You do not have permission to perform this action"))
			return
		}

		c.Next()
	}
}
