package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/moolapay/agency-service/internal/domain"
	"github.com/moolapay/agency-service/internal/ports"
)

type stubVerifier struct {
	claims ports.AgentClaims
	err    error
}

func (s *stubVerifier) Verify(string) (ports.AgentClaims, error) {
	return s.claims, s.err
}

func TestAuthMiddlewareRejectsMissingToken(t *testing.T) {
	h := &Handler{tokens: &stubVerifier{}}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler must not run without a token")
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/external/forms", nil)
	h.authMiddleware(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	var body envelope
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body.Success {
		t.Fatalf("expected success=false")
	}
	if body.Message != msgAuthFailed {
		t.Fatalf("message = %q, want %q", body.Message, msgAuthFailed)
	}
	if !strings.Contains(rec.Body.String(), "Missing authorization token") {
		t.Fatalf("unexpected error copy: %s", rec.Body.String())
	}
}

func TestAuthMiddlewareRejectsInvalidToken(t *testing.T) {
	h := &Handler{tokens: &stubVerifier{err: errors.New("bad signature")}}
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("next handler must not run with an invalid token")
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/external/forms", nil)
	req.Header.Set("Authorization", "Bearer broken")
	h.authMiddleware(next).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "Invalid or malformed token") {
		t.Fatalf("unexpected error copy: %s", rec.Body.String())
	}
}

func TestAuthMiddlewarePopulatesActor(t *testing.T) {
	h := &Handler{tokens: &stubVerifier{claims: ports.AgentClaims{
		AgentID:   "agent-7",
		AgentName: "Jane Agent",
		UserAuth:  "ua-1",
	}}}

	var gotActorID, gotBearer, gotLanguage string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		actor := actorFromContext(r.Context())
		gotActorID = actor.AgentID
		gotBearer = actor.BearerToken
		gotLanguage = actor.Language
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/external/forms", nil)
	req.Header.Set("Authorization", "Bearer tok-123")
	req = req.WithContext(context.WithValue(req.Context(), ctxKey("language"), "fr"))
	h.authMiddleware(next).ServeHTTP(rec, req)

	if gotActorID != "agent-7" {
		t.Fatalf("actor id = %q", gotActorID)
	}
	if gotBearer != "tok-123" {
		t.Fatalf("bearer = %q", gotBearer)
	}
	if gotLanguage != "fr" {
		t.Fatalf("language = %q", gotLanguage)
	}
}

func TestOptionalAuthMiddlewareAllowsAnonymous(t *testing.T) {
	h := &Handler{tokens: &stubVerifier{err: errors.New("bad token")}}

	var got string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got = actorFromContext(r.Context()).AgentID
		w.WriteHeader(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/external/forms", nil)
	h.optionalAuthMiddleware(next).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("anonymous catalog request blocked: %d", rec.Code)
	}
	if got != "" {
		t.Fatalf("anonymous request should carry no agent id, got %q", got)
	}

	// A bad token degrades to anonymous rather than failing the request.
	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/external/forms", nil)
	req.Header.Set("Authorization", "Bearer broken")
	h.optionalAuthMiddleware(next).ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("invalid token on optional route blocked: %d", rec.Code)
	}
}

func TestBearerToken(t *testing.T) {
	cases := []struct {
		header string
		token  string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer abc", "abc", true},
		{"Bearer   abc  ", "abc", true},
		{"Bearer ", "", false},
		{"Basic abc", "", false},
		{"abc", "", false},
		{"", "", false},
	}
	for _, tc := range cases {
		token, ok := bearerToken(tc.header)
		if ok != tc.ok || token != tc.token {
			t.Errorf("bearerToken(%q) = (%q, %v), want (%q, %v)", tc.header, token, ok, tc.token, tc.ok)
		}
	}
}

func TestLanguageMiddleware(t *testing.T) {
	cases := []struct {
		header string
		want   string
	}{
		{"", "en"},
		{"fr", "fr"},
		{"FR", "fr"},
		{"en-US,en;q=0.9", "en"},
		{"rw-RW", "rw"},
	}
	for _, tc := range cases {
		var got string
		next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			got = languageFromContext(r.Context())
		})
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		if tc.header != "" {
			req.Header.Set("Accept-Language", tc.header)
		}
		languageMiddleware(next).ServeHTTP(rec, req)
		if got != tc.want {
			t.Errorf("Accept-Language %q resolved to %q, want %q", tc.header, got, tc.want)
		}
	}
}

func TestRequestIDMiddleware(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requestIDFromContext(r.Context()) == "" {
			t.Error("expected request id in context")
		}
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	requestIDMiddleware(next).ServeHTTP(rec, req)
	if rec.Header().Get("X-Request-Id") == "" {
		t.Fatal("expected generated request id header")
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-Id", "req-keep")
	requestIDMiddleware(next).ServeHTTP(rec, req)
	if rec.Header().Get("X-Request-Id") != "req-keep" {
		t.Fatalf("caller request id not preserved: %s", rec.Header().Get("X-Request-Id"))
	}
}

func TestDecodeBodyRejectsTrailingContent(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"data":{}}{"more":true}`))
	var dst submitFormRequest
	if err := decodeBody(req, &dst); err == nil {
		t.Fatal("expected error for trailing JSON value")
	}

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"data":{"a":1},"status":"draft"}`))
	if err := decodeBody(req, &dst); err != nil {
		t.Fatalf("decodeBody: %v", err)
	}
	if dst.Status != "draft" {
		t.Fatalf("status = %q", dst.Status)
	}
}

func TestMapDomainError(t *testing.T) {
	cases := []struct {
		err     error
		status  int
		message string
	}{
		{domain.ErrMissingFormID, http.StatusBadRequest, msgMissingFormID},
		{domain.ErrMissingFormData, http.StatusBadRequest, msgMissingFormFields},
		{&domain.GatewayError{Kind: domain.GatewayBadRequest, Status: 400, Message: "bad"}, http.StatusBadRequest, msgInvalidFormData},
		{&domain.GatewayError{Kind: domain.GatewayAuthFailed, Status: 401, Message: "no"}, http.StatusUnauthorized, msgAuthFailed},
		{&domain.GatewayError{Kind: domain.GatewayNotFound, Status: 404, Message: "gone"}, http.StatusNotFound, msgFormsNotFound},
		{&domain.GatewayError{Kind: domain.GatewayUnavailable, Status: 503, Message: "down"}, http.StatusServiceUnavailable, msgServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError, msgServerError},
	}
	for _, tc := range cases {
		status, message, _ := mapDomainError(tc.err)
		if status != tc.status || message != tc.message {
			t.Errorf("mapDomainError(%v) = (%d, %q), want (%d, %q)", tc.err, status, message, tc.status, tc.message)
		}
	}
}
