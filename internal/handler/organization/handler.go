package organization

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/voicedrop/voicedrop-api/internal/handler"
	"github.com/voicedrop/voicedrop-api/internal/model"
	"github.com/voicedrop/voicedrop-api/internal/service/account"
	apperrors "github.com/voicedrop/voicedrop-api/pkg/errors"
)

// Handler exposes the authenticated tenant's own organization. There is no
// cross-tenant organization listing.
type Handler struct {
	svc *account.Service
}

func NewHandler(svc *account.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	org := r.Group("/organization")
	{
		org.GET("", h.Get)
		org.PUT("", h.Update)
	}
}

func (h *Handler) Get(c *gin.Context) {
	orgID, ok := handler.OrganizationID(c)
	if !ok {
		handler.Fail(c, apperrors.Unauthenticated("authentication required"))
		return
	}

	org, err := h.svc.GetOrganization(c.Request.Context(), orgID)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, org)
}

func (h *Handler) Update(c *gin.Context) {
	orgID, ok := handler.OrganizationID(c)
	if !ok {
		handler.Fail(c, apperrors.Unauthenticated("authentication required"))
		return
	}

	var req model.UpdateOrganizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.Fail(c, apperrors.Validation("invalid request body", err))
		return
	}

	if err := h.svc.UpdateOrganization(c.Request.Context(), orgID, &req); err != nil {
		handler.Fail(c, err)
		return
	}

	org, err := h.svc.GetOrganization(c.Request.Context(), orgID)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, org)
}
