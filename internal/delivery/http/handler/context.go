package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"cargo-tracker/internal/access"
	domainUser "cargo-tracker/internal/domain/user"
	"cargo-tracker/pkg/utils"
)

// currentUserID reads the authenticated user id placed in the context by the
// auth middleware. Returns false after writing the error response.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	v, exists := c.Get("userID")
	if !exists {
		utils.ErrorResponse(c, http.StatusUnauthorized, "User ID not found in context")
		return uuid.Nil, false
	}
	id, ok := v.(uuid.UUID)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "Invalid user ID format")
		return uuid.Nil, false
	}
	return id, true
}

func currentActor(c *gin.Context) (access.Actor, bool) {
	id, ok := currentUserID(c)
	if !ok {
		return access.Actor{}, false
	}
	role, exists := c.Get("role")
	if !exists {
		utils.ErrorResponse(c, http.StatusUnauthorized, "Role not found in context")
		return access.Actor{}, false
	}
	roleStr, ok := role.(string)
	if !ok {
		utils.ErrorResponse(c, http.StatusUnauthorized, "Invalid role format")
		return access.Actor{}, false
	}
	return access.Actor{ID: id, Role: domainUser.Role(roleStr)}, true
}

func pathID(c *gin.Context, name string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid "+name)
		return uuid.Nil, false
	}
	return id, true
}
