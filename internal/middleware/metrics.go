package middleware

import (
	"strconv"
	"time"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/sorayamlj/FocusTache/internal/metrics"
)

// Observe counts every request and logs it at debug level.
func Observe(logger *zap.Logger) func(fasthttp.RequestHandler) fasthttp.RequestHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(next fasthttp.RequestHandler) fasthttp.RequestHandler {
		return func(ctx *fasthttp.RequestCtx) {
			started := time.Now()
			next(ctx)

			status := ctx.Response.StatusCode()
			metrics.HTTPRequests.WithLabelValues(string(ctx.Method()), strconv.Itoa(status)).Inc()
			logger.Debug("request served",
				zap.ByteString("method", ctx.Method()),
				zap.ByteString("path", ctx.Path()),
				zap.Int("status", status),
				zap.Duration("duration", time.Since(started)),
				zap.ByteString("request_id", ctx.Response.Header.Peek("X-Request-ID")),
			)
		}
	}
}
