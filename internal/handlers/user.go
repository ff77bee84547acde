package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clubware/taskhub/internal/directory"
	"github.com/clubware/taskhub/internal/dto"
	apierrors "github.com/clubware/taskhub/internal/errors"
	"github.com/clubware/taskhub/internal/middleware"
	"github.com/clubware/taskhub/internal/policy"
)

type UserHandler struct {
	dir *directory.Directory
}

func NewUserHandler(dir *directory.Directory) *UserHandler {
	return &UserHandler{
		dir: dir,
	}
}

// ListUsers returns the club roster
func (h *UserHandler) ListUsers(c *gin.Context) {
	users, err := h.dir.Snapshot()
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch users")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users": dto.ToUserDTOs(users),
	})
}

// ListAssignableUsers returns the members the current user may assign
// tasks to. The list is empty for regular members.
func (h *UserHandler) ListAssignableUsers(c *gin.Context) {
	actor, exists := middleware.GetActor(c)
	if !exists {
		apierrors.Unauthorized(c, "Not authenticated")
		return
	}

	users, err := h.dir.Snapshot()
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch users")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"users": dto.ToUserDTOs(policy.AssignableTargets(actor, users)),
	})
}
