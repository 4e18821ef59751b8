package http

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
)

const serviceName = "agency-service"

func httpLogger() *slog.Logger {
	return slog.Default().With(
		"service", serviceName,
		"module", "http",
		"layer", "adapter",
	)
}

func writeMappedError(ctx context.Context, w http.ResponseWriter, operation string, err error) {
	status, messageKey, detail := mapDomainError(err)
	fields := []any{
		"operation", operation,
		"outcome", "failure",
		"status_code", status,
		"message_key", messageKey,
		"request_id", requestIDFromContext(ctx),
		"error", err.Error(),
	}
	if status >= 500 {
		httpLogger().ErrorContext(ctx, "http operation failed", fields...)
	} else {
		httpLogger().WarnContext(ctx, "http operation failed", fields...)
	}
	writeError(w, status, messageKey, detail)
}

func parseIntDefault(raw string, fallback int) int {
	if strings.TrimSpace(raw) == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return n
}
