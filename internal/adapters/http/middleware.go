package http

import (
	"context"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/moolapay/agency-service/internal/application"
)

type ctxKey string

const (
	ctxKeyRequestID ctxKey = "request_id"
	ctxKeyActor     ctxKey = "actor"
)

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		reqID := r.Header.Get("X-Request-Id")
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set("X-Request-Id", reqID)
		ctx := context.WithValue(r.Context(), ctxKeyRequestID, reqID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				httpLogger().ErrorContext(r.Context(), "panic recovered",
					"operation", "http_panic_recovery",
					"outcome", "failure",
					"request_id", requestIDFromContext(r.Context()),
					"method", r.Method,
					"path", r.URL.Path,
					"panic", rec,
				)
				writeError(w, http.StatusInternalServerError, msgServerError, nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

type statusRecorder struct {
	http.ResponseWriter
	statusCode int
	bytes      int
}

func (r *statusRecorder) WriteHeader(statusCode int) {
	r.statusCode = statusCode
	r.ResponseWriter.WriteHeader(statusCode)
}

func (r *statusRecorder) Write(payload []byte) (int, error) {
	if r.statusCode == 0 {
		r.statusCode = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(payload)
	r.bytes += n
	return n, err
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(recorder, r)

		level := slog.LevelInfo
		if recorder.statusCode >= 500 {
			level = slog.LevelError
		}
		httpLogger().Log(r.Context(), level, "http request completed",
			"operation", "http_request",
			"method", r.Method,
			"path", r.URL.Path,
			"status_code", recorder.statusCode,
			"bytes", recorder.bytes,
			"duration_ms", time.Since(start).Milliseconds(),
			"request_id", requestIDFromContext(r.Context()),
		)
	})
}

// languageMiddleware resolves the caller's locale from Accept-Language,
// defaulting to English. Only the primary subtag is kept.
func languageMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		lang := strings.TrimSpace(r.Header.Get("Accept-Language"))
		if lang == "" {
			lang = "en"
		}
		if idx := strings.IndexAny(lang, ",;-"); idx > 0 {
			lang = lang[:idx]
		}
		ctx := context.WithValue(r.Context(), ctxKey("language"), strings.ToLower(lang))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// authMiddleware verifies the agent bearer token and stashes the actor.
func (h *Handler) authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, ok := bearerToken(r.Header.Get("Authorization"))
		if !ok {
			writeError(w, http.StatusUnauthorized, msgAuthFailed,
				map[string]any{"error": "Missing authorization token. Please log in again."})
			return
		}
		claims, err := h.tokens.Verify(raw)
		if err != nil {
			writeError(w, http.StatusUnauthorized, msgAuthFailed,
				map[string]any{"error": "Invalid or malformed token. Please log in again."})
			return
		}
		actor := application.Actor{
			AgentID:       claims.AgentID,
			AgentName:     claims.AgentName,
			AgentCategory: claims.AgentCategory,
			UserAuth:      claims.UserAuth,
			BearerToken:   raw,
			Language:      languageFromContext(r.Context()),
			RequestID:     requestIDFromContext(r.Context()),
		}
		ctx := context.WithValue(r.Context(), ctxKeyActor, actor)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// optionalAuthMiddleware populates the actor when a valid token is present
// but lets anonymous requests through; the collector decides what an
// unauthenticated catalog request may see.
func (h *Handler) optionalAuthMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor := application.Actor{
			Language:  languageFromContext(r.Context()),
			RequestID: requestIDFromContext(r.Context()),
		}
		if raw, ok := bearerToken(r.Header.Get("Authorization")); ok {
			if claims, err := h.tokens.Verify(raw); err == nil {
				actor.AgentID = claims.AgentID
				actor.AgentName = claims.AgentName
				actor.AgentCategory = claims.AgentCategory
				actor.UserAuth = claims.UserAuth
				actor.BearerToken = raw
			}
		}
		ctx := context.WithValue(r.Context(), ctxKeyActor, actor)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func bearerToken(header string) (string, bool) {
	header = strings.TrimSpace(header)
	if header == "" {
		return "", false
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") || strings.TrimSpace(parts[1]) == "" {
		return "", false
	}
	return strings.TrimSpace(parts[1]), true
}

func actorFromContext(ctx context.Context) application.Actor {
	if v, ok := ctx.Value(ctxKeyActor).(application.Actor); ok {
		return v
	}
	return application.Actor{}
}

func requestIDFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKeyRequestID).(string); ok {
		return v
	}
	return ""
}

func languageFromContext(ctx context.Context) string {
	if v, ok := ctx.Value(ctxKey("language")).(string); ok && v != "" {
		return v
	}
	return "en"
}
