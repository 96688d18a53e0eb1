// Package guard carries the transport-edge middleware that runs before any
// application route: request-id stamping, CORS headers with preflight
// short-circuit, and per-client rate limiting.
package guard

import (
	"net"
	"strings"

	"github.com/google/uuid"

	"aino/pkg/logger"
	"aino/pkg/pipeline"
)

// Config tunes the edge middleware.
type Config struct {
	AllowedOrigins []string
	RPS            float64
	Burst          int
}

// Middleware returns the standard edge chain. Must run after header
// normalization.
func Middleware(cfg Config) pipeline.Chain {
	return pipeline.Chain{
		pipeline.Middleware(RequestID),
		CORS(cfg),
		RateLimit(cfg),
	}
}

// RequestID stamps a fresh request id onto the context bag and echoes it as
// a response header so clients can correlate logs.
func RequestID(ctx *pipeline.Context) *pipeline.Context {
	id := uuid.NewString()
	ctx.Bag["request_id"] = id
	ctx.AddHeader("X-Request-Id", id)
	logger.Debug("incoming_request", "request_id", id, "method", ctx.Method,
		"path", strings.Join(ctx.Path, "/"), "headers", logger.SafeHeaders(ctx.Headers))
	return ctx
}

// CORS mirrors allowed origins back and answers OPTIONS preflight with 204,
// halting the rest of the pipeline.
func CORS(cfg Config) pipeline.Middleware {
	return func(ctx *pipeline.Context) *pipeline.Context {
		origin := headerFirst(ctx, "origin")
		if origin != "" && originAllowed(origin, cfg.AllowedOrigins) {
			ctx.AddHeader("Access-Control-Allow-Origin", origin)
			ctx.AddHeader("Vary", "Origin")
			ctx.AddHeader("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,PATCH,OPTIONS")
			ctx.AddHeader("Access-Control-Allow-Headers", "Content-Type,X-Requested-With")
			ctx.AddHeader("Access-Control-Max-Age", "600")
		}
		if ctx.Method == "options" {
			ctx.Halt = true
			ctx.Status = 204
			if ctx.RespHeaders == nil {
				ctx.RespHeaders = []pipeline.HeaderPair{}
			}
			ctx.RespBody = []byte{}
			return ctx
		}
		return ctx
	}
}

// RateLimit enforces a token bucket per client IP, halting with 429 when
// the bucket is drained. Zero RPS config falls back to pool defaults.
func RateLimit(cfg Config) pipeline.Middleware {
	limiters := &limiterPool{cfg: cfg}
	return func(ctx *pipeline.Context) *pipeline.Context {
		ip := clientIP(ctx)
		if !limiters.Allow(ip) {
			logger.Warn("request_rate_limited", "ip", ip, "path", strings.Join(ctx.Path, "/"))
			ctx.Halt = true
			return ctx.Respond(429, "text/plain", "Too many requests")
		}
		return ctx
	}
}

func headerFirst(ctx *pipeline.Context, name string) string {
	if vs := ctx.Headers[name]; len(vs) > 0 {
		return vs[0]
	}
	return ""
}

func originAllowed(origin string, allowed []string) bool {
	for _, a := range allowed {
		if a == "*" || strings.EqualFold(a, origin) {
			return true
		}
	}
	return false
}

// clientIP prefers X-Forwarded-For (first hop) and falls back to the
// transport remote address.
func clientIP(ctx *pipeline.Context) string {
	if xf := headerFirst(ctx, "x-forwarded-for"); xf != "" {
		first, _, _ := strings.Cut(xf, ",")
		return strings.TrimSpace(first)
	}
	addr := ctx.Request.RemoteAddr
	if host, _, err := net.SplitHostPort(addr); err == nil {
		return host
	}
	return addr
}
