package log

import (
	"context"
	"log/slog"
	"net/http"
)

// RequestStarted logs an incoming request at debug level.
func RequestStarted(ctx context.Context, logger *Logger, r *http.Request, clientIP string) {
	args := requestAttrs(r, clientIP).
		addString(FieldUserAgent, r.UserAgent()).
		addString(FieldReferer, r.Referer())
	logger.DebugContext(ctx, "HTTP request started", args.Args()...)
}

// RequestFinished logs a completed request. Client errors log at warn and
// server errors at error.
func RequestFinished(ctx context.Context, logger *Logger, r *http.Request, status int, durationMs int64, clientIP string) {
	args := requestAttrs(r, clientIP).
		add(FieldStatusCode, status).
		add(FieldDuration, durationMs)
	logger.Log(ctx, statusLevel(status), "HTTP request completed", args.Args()...)
}

func requestAttrs(r *http.Request, clientIP string) Attrs {
	return NewFields().
		add(FieldMethod, r.Method).
		add(FieldPath, r.URL.Path).
		addString(FieldQuery, r.URL.RawQuery).
		addString(FieldClientIP, clientIP)
}

func statusLevel(status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}
