package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"github.com/voicedrop/voicedrop-api/internal/handler"
)

// Throttle is a process-wide token bucket in front of the per-caller
// sliding-window limits. It caps aggregate load regardless of how many
// distinct callers are hitting the service.
type Throttle struct {
	limiter *rate.Limiter
}

func NewThrottle(r rate.Limit, burst int) *Throttle {
	return &Throttle{limiter: rate.NewLimiter(r, burst)}
}

func (t *Throttle) Handler() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !t.limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, handler.NewErrorResponse("server overloaded"))
			return
		}
		c.Next()
	}
}
