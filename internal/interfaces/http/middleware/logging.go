package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/lnpos/voucherd/internal/shared/logger"
)

// Logger emits one access line per request, tagged with the voucher or
// wallet the route addressed. 2xx/3xx lines are debug level.
func Logger(log logger.Interface) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		fields := []any{
			"method", c.Request.Method,
			"route", c.FullPath(),
			"status", status,
			"latency", time.Since(start),
			"client_ip", c.ClientIP(),
			"request_id", c.GetString(ContextKeyRequestID),
		}
		for _, p := range []string{"id", "wallet_id"} {
			if v := c.Param(p); v != "" {
				fields = append(fields, routeParamField(p), v)
			}
		}
		if err := c.Errors.Last(); err != nil {
			fields = append(fields, "error", err.Err)
		}

		logAt(log, status)("request served", fields...)
	}
}

func routeParamField(param string) string {
	if param == "id" {
		return "voucher_id"
	}
	return param
}

func logAt(log logger.Interface, status int) func(string, ...interface{}) {
	switch {
	case status >= 500:
		return log.Errorw
	case status >= 400:
		return log.Warnw
	default:
		return log.Debugw
	}
}
