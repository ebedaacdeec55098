package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"cargo-tracker/internal/usecase/user"
	"cargo-tracker/pkg/utils"
)

// UserHandler exposes the admin-only user directory.
type UserHandler struct {
	service *user.Service
}

func NewUserHandler(service *user.Service) *UserHandler {
	return &UserHandler{service: service}
}

func (h *UserHandler) RegisterAdminRoutes(router *gin.RouterGroup) {
	users := router.Group("/users")
	{
		users.GET("", h.ListUsers)
		users.POST("/:id/activate", h.ActivateUser)
		users.POST("/:id/deactivate", h.DeactivateUser)
	}
}

func (h *UserHandler) ListUsers(c *gin.Context) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	var filter user.UserFilterRequest
	if err := c.ShouldBindQuery(&filter); err != nil {
		utils.ErrorResponse(c, http.StatusBadRequest, "Invalid query parameters")
		return
	}

	result, err := h.service.ListUsers(c.Request.Context(), actor.ID, actor.Role, &filter)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, "Users retrieved successfully", result)
}

func (h *UserHandler) ActivateUser(c *gin.Context) {
	h.setActive(c, true, "User activated successfully")
}

func (h *UserHandler) DeactivateUser(c *gin.Context) {
	h.setActive(c, false, "User deactivated successfully")
}

func (h *UserHandler) setActive(c *gin.Context, active bool, message string) {
	actor, ok := currentActor(c)
	if !ok {
		return
	}

	userID, ok := pathID(c, "id")
	if !ok {
		return
	}

	result, err := h.service.SetUserActive(c.Request.Context(), actor.ID, actor.Role, userID, active)
	if err != nil {
		utils.HandleError(c, err)
		return
	}

	utils.SuccessResponse(c, http.StatusOK, message, result)
}
