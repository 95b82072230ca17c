package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/credilocker/credilocker-api/internal/access"
	appErrors "github.com/credilocker/credilocker-api/pkg/errors"
	"github.com/credilocker/credilocker-api/pkg/response"
)

// RequirePage gates a route group behind the page-access policy. Teachers
// pass every check; students pass only when their class and semester grant
// the page.
func RequirePage(page access.Page) gin.HandlerFunc {
	return func(c *gin.Context) {
		claims := CurrentUser(c)
		if claims == nil {
			response.Error(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		if !access.CanAccess(claims.Role, claims.Class, claims.Semester, page) {
			response.Error(c, appErrors.ErrPageAccess)
			c.Abort()
			return
		}
		c.Next()
	}
}
