package webhook

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/voicedrop/voicedrop-api/internal/handler"
	"github.com/voicedrop/voicedrop-api/internal/model"
	"github.com/voicedrop/voicedrop-api/internal/service/billing"
	"github.com/voicedrop/voicedrop-api/internal/service/campaign"
	apperrors "github.com/voicedrop/voicedrop-api/pkg/errors"
)

// Stripe caps webhook payloads at 64KB; anything larger is not ours.
const maxWebhookBody = 64 * 1024

type Handler struct {
	billingSvc  *billing.Service
	campaignSvc *campaign.Service
}

func NewHandler(billingSvc *billing.Service, campaignSvc *campaign.Service) *Handler {
	return &Handler{billingSvc: billingSvc, campaignSvc: campaignSvc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	webhooks := r.Group("/webhooks")
	{
		webhooks.POST("/stripe", h.StripeEvent)
		webhooks.POST("/delivery", h.DeliveryStatus)
	}
}

// StripeEvent verifies and applies a billing event. The raw body is needed
// for signature verification, so the payload is read before any decoding.
func (h *Handler) StripeEvent(c *gin.Context) {
	payload, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		handler.Fail(c, apperrors.Validation("unreadable payload", err))
		return
	}

	signature := c.GetHeader("Stripe-Signature")
	if err := h.billingSvc.HandleWebhook(c.Request.Context(), payload, signature); err != nil {
		handler.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}

// DeliveryStatus is the delivery provider's callback. Only the listened
// transition is modeled; other statuses are acknowledged and dropped.
func (h *Handler) DeliveryStatus(c *gin.Context) {
	var req model.DeliveryStatusCallback
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.Fail(c, apperrors.Validation("invalid request body", err))
		return
	}

	if req.Status == "listened" {
		if err := h.campaignSvc.MarkListened(c.Request.Context(), req.ProviderRef); err != nil {
			handler.Fail(c, err)
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
