package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/voicedrop/voicedrop-api/pkg/auth"
)

// ErrorResponse is the failure body for every endpoint. Details is only
// populated when the server runs with expose_errors enabled.
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

func NewErrorResponse(message string) ErrorResponse {
	return ErrorResponse{Error: message}
}

// Context keys set by the authentication middleware.
const (
	ContextSessionClaims = "session_claims"
)

// SessionClaims returns the claims placed in context by the authentication
// middleware. The bool is false on unauthenticated routes.
func SessionClaims(c *gin.Context) (*auth.SessionClaims, bool) {
	v, ok := c.Get(ContextSessionClaims)
	if !ok {
		return nil, false
	}
	claims, ok := v.(*auth.SessionClaims)
	return claims, ok
}

// OrganizationID returns the tenant of the authenticated session.
func OrganizationID(c *gin.Context) (uuid.UUID, bool) {
	claims, ok := SessionClaims(c)
	if !ok {
		return uuid.Nil, false
	}
	return claims.OrganizationID, true
}

// Fail records err on the context and aborts; the error middleware turns it
// into the wire response after the chain unwinds.
func Fail(c *gin.Context, err error) {
	_ = c.Error(err)
	c.Abort()
}
