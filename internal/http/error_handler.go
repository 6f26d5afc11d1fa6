package http

import (
	"errors"
	"fmt"
	"net/http"

	"clientkit/internal/http/handler"
	"clientkit/internal/http/middleware"
	"clientkit/pkg/logger"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

// NewHTTPErrorHandler maps errors returned by handlers and middleware to JSON
// responses, hiding internal details of server errors.
func NewHTTPErrorHandler(log *zap.Logger) echo.HTTPErrorHandler {
	return func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}

		var code int
		var message string

		var httpErr *echo.HTTPError
		if errors.As(err, &httpErr) {
			code = httpErr.Code
			message = fmt.Sprintf("%v", httpErr.Message)
		} else {
			code, message = handler.MapToPublicError(err)
		}

		requestID := middleware.GetRequestID(c)
		if requestID == "" {
			requestID = "unknown"
		}

		fields := []zap.Field{
			zap.String("request_id", requestID),
			zap.Int("status", code),
			zap.String("path", c.Path()),
			logger.Message("error", err.Error()),
		}
		if code >= http.StatusInternalServerError {
			log.Error("internal_server_error", fields...)
		} else {
			log.Warn("client_error", fields...)
		}

		if err := c.JSON(code, map[string]interface{}{
			"error":      message,
			"request_id": requestID,
		}); err != nil {
			log.Error("failed to write error response", zap.Error(err))
		}
	}
}
