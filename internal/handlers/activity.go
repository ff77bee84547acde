package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/clubware/taskhub/internal/dto"
	apierrors "github.com/clubware/taskhub/internal/errors"
	"github.com/clubware/taskhub/internal/services"
	"github.com/clubware/taskhub/internal/utils"
)

type ActivityHandler struct {
	activityService *services.ActivityService
}

func NewActivityHandler(activityService *services.ActivityService) *ActivityHandler {
	return &ActivityHandler{
		activityService: activityService,
	}
}

// ListActivity returns the club-wide activity feed, newest first.
// Access is restricted to the presidium by RequirePresidium.
func (h *ActivityHandler) ListActivity(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	entries, total, err := h.activityService.List(params.Page, params.Limit)
	if err != nil {
		apierrors.InternalError(c, "Failed to fetch activity")
		return
	}

	c.JSON(http.StatusOK, dto.ToActivityListResponse(entries, params.Page, params.Limit, total))
}
