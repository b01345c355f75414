package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/voicedrop/voicedrop-api/internal/handler"
	apperrors "github.com/voicedrop/voicedrop-api/pkg/errors"
)

// ErrorHandler translates errors recorded on the context into the wire
// format. Internal details only leave the process when exposeErrors is set,
// which production configs never do.
func ErrorHandler(exposeErrors bool, logger *zerolog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		last := c.Errors.Last().Err
		status := http.StatusInternalServerError
		resp := handler.NewErrorResponse("internal server error")
		var details string

		var appErr *apperrors.AppError
		if errors.As(last, &appErr) {
			status = appErr.StatusCode()
			resp.Error = appErr.Message
			if appErr.Err != nil {
				details = appErr.Err.Error()
			}
		} else {
			details = last.Error()
		}

		event := logger.Warn()
		if status >= http.StatusInternalServerError {
			event = logger.Error()
		}
		event.Err(last).
			Str("request_id", c.GetString(ContextRequestID)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Msg("request failed")

		if exposeErrors {
			resp.Details = details
		}
		if !c.Writer.Written() {
			c.JSON(status, resp)
		}
	}
}
