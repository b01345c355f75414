package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/voicedrop/voicedrop-api/internal/handler"
	"github.com/voicedrop/voicedrop-api/internal/model"
	"github.com/voicedrop/voicedrop-api/internal/service/account"
	"github.com/voicedrop/voicedrop-api/internal/service/auth"
	apperrors "github.com/voicedrop/voicedrop-api/pkg/errors"
)

type Handler struct {
	authSvc      *auth.Service
	accountSvc   *account.Service
	cookieName   string
	cookieMaxAge int
	secureCookie bool
}

func NewHandler(authSvc *auth.Service, accountSvc *account.Service,
	cookieName string, cookieMaxAge int, secureCookie bool) *Handler {
	return &Handler{
		authSvc:      authSvc,
		accountSvc:   accountSvc,
		cookieName:   cookieName,
		cookieMaxAge: cookieMaxAge,
		secureCookie: secureCookie,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	auth := r.Group("/auth")
	{
		auth.POST("/signup", h.Signup)
		auth.POST("/login", h.Login)
		auth.POST("/logout", h.Logout)
	}
}

func (h *Handler) RegisterProtectedRoutes(r *gin.RouterGroup) {
	r.GET("/auth/me", h.Me)
}

// Signup provisions a new tenant: credential, organization and admin user,
// and opens a session for the admin.
func (h *Handler) Signup(c *gin.Context) {
	var req model.SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.Fail(c, apperrors.Validation("invalid request body", err))
		return
	}

	session, err := h.accountSvc.RegisterTenant(c.Request.Context(), &req)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	h.setSessionCookie(c, session.Token)
	c.JSON(http.StatusCreated, session)
}

func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		handler.Fail(c, apperrors.Validation("invalid request body", err))
		return
	}

	session, err := h.authSvc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	h.setSessionCookie(c, session.Token)
	c.JSON(http.StatusOK, session)
}

func (h *Handler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookieName, "", -1, "/", "", h.secureCookie, true)
	c.JSON(http.StatusOK, gin.H{"message": "logged out"})
}

func (h *Handler) Me(c *gin.Context) {
	claims, ok := handler.SessionClaims(c)
	if !ok {
		handler.Fail(c, apperrors.Unauthenticated("authentication required"))
		return
	}

	user, err := h.authSvc.CurrentUser(c.Request.Context(), claims)
	if err != nil {
		handler.Fail(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

func (h *Handler) setSessionCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookieName, token, h.cookieMaxAge, "/", "", h.secureCookie, true)
}
