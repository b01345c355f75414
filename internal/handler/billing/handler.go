package billing

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/voicedrop/voicedrop-api/internal/handler"
	"github.com/voicedrop/voicedrop-api/internal/model"
	"github.com/voicedrop/voicedrop-api/internal/service/account"
	"github.com/voicedrop/voicedrop-api/internal/service/billing"
	apperrors "github.com/voicedrop/voicedrop-api/pkg/errors"
)

type Handler struct {
	svc        *billing.Service
	accountSvc *account.Service
}

func NewHandler(svc *billing.Service, accountSvc *account.Service) *Handler {
	return &Handler{svc: svc, accountSvc: accountSvc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/billing/checkout", h.CreateCheckout)
}

func (h *Handler) CreateCheckout(c *gin.Context) {
	claims, ok := handler.SessionClaims(c)
	if !ok {
		handler.Fail(c, apperrors.Unauthenticated("authentication required"))
		return
	}

	var req model.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.Fail(c, apperrors.Validation("invalid request body", err))
		return
	}

	org, err := h.accountSvc.GetOrganization(c.Request.Context(), claims.OrganizationID)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	checkout, err := h.svc.CreateCheckoutSession(c.Request.Context(), org, claims.Email, req.PriceID)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, checkout)
}
