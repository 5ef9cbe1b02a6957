package middleware

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"inlineai.app/relay/common/id"
	"inlineai.app/relay/common/logger"
)

const RequestIDHeader = "X-Request-Id"

// RequestID tags the request context with a snowflake id so every log line of
// one change request can be correlated, and echoes it to the caller. A valid
// id sent by the caller is kept instead of minting a new one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		reqID, ok := id.Parse(c.GetHeader(RequestIDHeader))
		if !ok {
			reqID = id.New()
		}
		ctx := logger.WithLogFields(c.Request.Context(), logger.LogFields{RequestID: logger.Ptr(reqID)})
		c.Request = c.Request.WithContext(ctx)
		c.Header(RequestIDHeader, strconv.FormatInt(reqID, 10))
		c.Next()
	}
}
