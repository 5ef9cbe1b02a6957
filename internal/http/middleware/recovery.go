package middleware

import (
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"inlineai.app/relay/internal/http/dto"
)

const internalErrorMessage = "internal server error"

// Recovery answers a panic with the same {ok:false} envelope the change
// request handler uses, so the widget and CLI never see a bare 500. The panic
// is logged with the request id already in the context and marked on the
// request span.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			ctx := c.Request.Context()

			if span := trace.SpanFromContext(ctx); span.IsRecording() {
				span.RecordError(fmt.Errorf("panic: %v", rec))
				span.SetStatus(codes.Error, "panic")
			}

			slog.ErrorContext(ctx, "panic recovered",
				"panic", fmt.Sprint(rec),
				"route", c.FullPath(),
				"method", c.Request.Method,
				"stack", string(debug.Stack()),
			)

			c.AbortWithStatusJSON(http.StatusInternalServerError, dto.ErrorResponse{
				OK:    false,
				Error: internalErrorMessage,
			})
		}()
		c.Next()
	}
}
