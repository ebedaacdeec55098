package middleware

import (
	domainUser "cargo-tracker/internal/domain/user"
	"cargo-tracker/pkg/utils"
	"net/http"

	"github.com/gin-gonic/gin"
)

// RoleMiddleware allows the request through only when the authenticated role
// matches one of allowedRoles. AuthMiddleware must run first.
func RoleMiddleware(allowedRoles ...domainUser.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		value, exists := c.Get("role")
		if !exists {
			utils.ErrorResponse(c, http.StatusForbidden, "Role not found in context")
			c.Abort()
			return
		}

		role, ok := value.(string)
		if !ok {
			utils.ErrorResponse(c, http.StatusForbidden, "Role not found in context")
			c.Abort()
			return
		}

		for _, allowed := range allowedRoles {
			if domainUser.Role(role) == allowed {
				c.Next()
				return
			}
		}

		utils.ErrorResponse(c, http.StatusForbidden, "Insufficient permissions")
		c.Abort()
	}
}

func AdminOnly() gin.HandlerFunc {
	return RoleMiddleware(domainUser.RoleAdmin)
}

func ShipperOnly() gin.HandlerFunc {
	return RoleMiddleware(domainUser.RoleShipper)
}

func ProviderOnly() gin.HandlerFunc {
	return RoleMiddleware(domainUser.RoleProvider)
}

func CustomerOnly() gin.HandlerFunc {
	return RoleMiddleware(domainUser.RoleCustomer)
}
