package customer

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/voicedrop/voicedrop-api/internal/handler"
	"github.com/voicedrop/voicedrop-api/internal/model"
	"github.com/voicedrop/voicedrop-api/internal/service/customer"
	apperrors "github.com/voicedrop/voicedrop-api/pkg/errors"
)

type Handler struct {
	svc *customer.Service
}

func NewHandler(svc *customer.Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	customers := r.Group("/customers")
	{
		customers.POST("", h.Create)
		customers.GET("", h.List)
		customers.GET("/:id", h.Get)
		customers.PUT("/:id", h.Update)
		customers.DELETE("/:id", h.Delete)
	}
}

func (h *Handler) Create(c *gin.Context) {
	orgID, ok := handler.OrganizationID(c)
	if !ok {
		handler.Fail(c, apperrors.Unauthenticated("authentication required"))
		return
	}

	var req model.CreateCustomerRequest
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

	var filter model.CustomerFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		handler.Fail(c, apperrors.Validation("invalid query parameters", err))
		return
	}

	customers, total, err := h.svc.List(c.Request.Context(), orgID, filter)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"customers": customers,
		"total":     total,
	})
}

func (h *Handler) Get(c *gin.Context) {
	orgID, ok := handler.OrganizationID(c)
	if !ok {
		handler.Fail(c, apperrors.Unauthenticated("authentication required"))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		handler.Fail(c, apperrors.Validation("invalid customer id", err))
		return
	}

	found, err := h.svc.Get(c.Request.Context(), id, orgID)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, found)
}

func (h *Handler) Update(c *gin.Context) {
	orgID, ok := handler.OrganizationID(c)
	if !ok {
		handler.Fail(c, apperrors.Unauthenticated("authentication required"))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		handler.Fail(c, apperrors.Validation("invalid customer id", err))
		return
	}

	var req model.UpdateCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.Fail(c, apperrors.Validation("invalid request body", err))
		return
	}

	updated, err := h.svc.Update(c.Request.Context(), id, orgID, &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, updated)
}

func (h *Handler) Delete(c *gin.Context) {
	orgID, ok := handler.OrganizationID(c)
	if !ok {
		handler.Fail(c, apperrors.Unauthenticated("authentication required"))
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		handler.Fail(c, apperrors.Validation("invalid customer id", err))
		return
	}

	if err := h.svc.Delete(c.Request.Context(), id, orgID); err != nil {
		handler.Fail(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
