package dashboard

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/voicedrop/voicedrop-api/internal/handler"
	"github.com/voicedrop/voicedrop-api/internal/service/dashboard"
	apperrors "github.com/voicedrop/voicedrop-api/pkg/errors"
)

type Handler struct {
	svc *dashboard.Service
}

func NewHandler(svc *dashboard.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/dashboard/stats", h.GetStats)
}

func (h *Handler) GetStats(c *gin.Context) {
	orgID, ok := handler.OrganizationID(c)
	if !ok {
		handler.Fail(c, apperrors.Unauthenticated("authentication required"))
		return
	}

	stats, err := h.svc.GetStats(c.Request.Context(), orgID)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}
