package campaign

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/voicedrop/voicedrop-api/internal/handler"
	"github.com/voicedrop/voicedrop-api/internal/model"
	"github.com/voicedrop/voicedrop-api/internal/service/campaign"
	apperrors "github.com/voicedrop/voicedrop-api/pkg/errors"
)

type Handler struct {
	svc *campaign.Service
}

func NewHandler(svc *campaign.Service) *Handler {
	return &Handler{svc: svc}
}

// RegisterRoutes wires the campaign endpoints. sendGuards are applied to the
// process endpoint only: the calling-hours gate and the send rate limit.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup, sendGuards ...gin.HandlerFunc) {
	campaigns := r.Group("/campaigns")
	{
		campaigns.POST("", h.Create)
		campaigns.GET("", h.List)
		campaigns.GET("/:id", h.Get)
		campaigns.DELETE("/:id", h.Delete)

		process := append(sendGuards, h.Process)
		campaigns.POST("/:id/process", process...)
	}
}

func (h *Handler) Create(c *gin.Context) {
	orgID, ok := handler.OrganizationID(c)
	if !ok {
		handler.Fail(c, apperrors.Unauthenticated("authentication required"))
		return
	}

	var req model.CreateCampaignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.Fail(c, apperrors.Validation("invalid request body", err))
		return
	}

	created, err := h.svc.Create(c.Request.Context(), orgID, &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, created)
}

func (h *Handler) List(c *gin.Context) {
	orgID, ok := handler.OrganizationID(c)
	if !ok {
		handler.Fail(c, apperrors.Unauthenticated("authentication required"))
		return
	}

	campaigns, err := h.svc.List(c.Request.Context(), orgID)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"campaigns": campaigns})
}

func (h *Handler) Get(c *gin.Context) {
	orgID, ok := handler.OrganizationID(c)
	if !ok {
		handler.Fail(c, apperrors.Unauthenticated("authentication required"))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		handler.Fail(c, apperrors.Validation("invalid campaign id", err))
		return
	}

	found, err := h.svc.Get(c.Request.Context(), id, orgID)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, found)
}

func (h *Handler) Delete(c *gin.Context) {
	orgID, ok := handler.OrganizationID(c)
	if !ok {
		handler.Fail(c, apperrors.Unauthenticated("authentication required"))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		handler.Fail(c, apperrors.Validation("invalid campaign id", err))
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id, orgID); err != nil {
		handler.Fail(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Process runs the campaign synchronously and returns the per-recipient
// outcomes. The run can take a while for large lists; the request timeout
// bounds it and partial outcomes are persisted on cancellation.
func (h *Handler) Process(c *gin.Context) {
	orgID, ok := handler.OrganizationID(c)
	if !ok {
		handler.Fail(c, apperrors.Unauthenticated("authentication required"))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		handler.Fail(c, apperrors.Validation("invalid campaign id", err))
		return
	}

	result, err := h.svc.Process(c.Request.Context(), id, orgID)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
