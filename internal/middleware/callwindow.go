package middleware

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/voicedrop/voicedrop-api/internal/config"
	"github.com/voicedrop/voicedrop-api/internal/handler"
	"github.com/voicedrop/voicedrop-api/pkg/metrics"
)

// CallWindow blocks voicemail sends outside the permitted local calling
// hours. TCPA allows telemarketing contact between 8 AM and 9 PM in the
// recipient's local time; the window is evaluated in a single configured
// timezone for all recipients.
type CallWindow struct {
	location  *time.Location
	startHour int
	endHour   int
	metrics   *metrics.Metrics
	now       func() time.Time
}

func NewCallWindow(cfg config.ComplianceConfig, m *metrics.Metrics) (*CallWindow, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid compliance timezone %q: %w", cfg.Timezone, err)
	}
	return &CallWindow{
		location:  loc,
		startHour: cfg.StartHour,
		endHour:   cfg.EndHour,
		metrics:   m,
		now:       time.Now,
	}, nil
}

// Enforce rejects requests outside the calling window with 403.
func (w *CallWindow) Enforce() gin.HandlerFunc {
	return func(c *gin.Context) {
		hour := w.now().In(w.location).Hour()
		if hour < w.startHour || hour >= w.endHour {
			if w.metrics != nil {
				w.metrics.CallWindowRejects.Inc()
			}
			c.AbortWithStatusJSON(http.StatusForbidden, handler.NewErrorResponse(
				fmt.Sprintf("voicemail drops are only permitted between %d:00 and %d:00 %s",
					w.startHour, w.endHour, w.location.String())))
			return
		}
		c.Next()
	}
}
