package devapi

import (
	"log/slog"

	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/labstack/echo/v4"
)

func requestID(c echo.Context) string {
	return c.Response().Header().Get(echo.HeaderXRequestID)
}

// traceID is empty unless the sentry middleware started a span for the request.
func traceID(c echo.Context) string {
	if span := sentryecho.GetSpanFromContext(c); span != nil {
		return span.TraceID.String()
	}
	return ""
}

func requestLog(c echo.Context) *slog.Logger {
	return slog.With("requestID", requestID(c), "traceID", traceID(c))
}
