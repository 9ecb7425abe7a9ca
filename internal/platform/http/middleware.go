package http

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/weiwei-tsao/gerencial-qoe/apps/api/internal/platform/logging"
	"github.com/weiwei-tsao/gerencial-qoe/apps/api/internal/platform/telemetry"
)

const requestIDHeader = "X-Request-ID"

// requestLogger tags each request with an id, logs it once it completes and
// records its latency.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = logging.NewRequestID()
		}
		c.Header(requestIDHeader, id)
		c.Request = c.Request.WithContext(logging.ContextWithRequestID(c.Request.Context(), id))

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		elapsed := time.Since(start)
		telemetry.RecordRequest(c.Request.Method, route, strconv.Itoa(status), elapsed)

		event := logging.Ctx(c.Request.Context()).Info()
		if status >= 500 {
			event = logging.Ctx(c.Request.Context()).Error()
		}
		event.
			Str("method", c.Request.Method).
			Str("route", route).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Dur("latency", elapsed).
			Msg("request")
	}
}
