// components/session/session_test.go

package session

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/pocketrocks/pocketrocks/internal/component"
	"github.com/pocketrocks/pocketrocks/internal/identity"
	"github.com/pocketrocks/pocketrocks/internal/session"
)

type stubVerifier struct {
	mintToken string
	mintErr   error
	verifyErr error
	subject   identity.Subject
}

func (s *stubVerifier) VerifyCredential(context.Context, string) (identity.Subject, error) {
	return s.subject, s.verifyErr
}

func (s *stubVerifier) MintSessionToken(context.Context, string, time.Duration) (string, error) {
	return s.mintToken, s.mintErr
}

func (s *stubVerifier) VerifySessionToken(context.Context, string) (identity.Subject, error) {
	return s.subject, s.verifyErr
}

func newComponent(t *testing.T, v identity.Verifier) *Component {
	t.Helper()
	c := &Component{}
	deps := component.Deps{
		Cookie:   session.Cookie{Name: "pr_session", TTL: 5 * 24 * time.Hour},
		Verifier: v,
	}
	if err := c.Init(deps); err != nil {
		t.Fatalf("Init: %v", err)
	}
	return c
}

func router(c *Component) http.Handler {
	r := chi.NewRouter()
	c.Routes(r)
	return r
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	return body
}

func TestMintSetsCookie(t *testing.T) {
	c := newComponent(t, &stubVerifier{mintToken: "opaque-session-token"})

	req := httptest.NewRequest(http.MethodPost, "/api/session",
		strings.NewReader(`{"idToken":"fresh-credential"}`))
	rec := httptest.NewRecorder()
	router(c).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	cookies := rec.Result().Cookies()
	if len(cookies) != 1 || cookies[0].Name != "pr_session" {
		t.Fatalf("cookies = %v, want one pr_session", cookies)
	}
	if cookies[0].Value != "opaque-session-token" {
		t.Errorf("cookie value = %q", cookies[0].Value)
	}
	if got := rec.Header().Get("Cache-Control"); got != "no-store" {
		t.Errorf("Cache-Control = %q, want no-store", got)
	}
}

func TestMintAcceptsBearerHeader(t *testing.T) {
	c := newComponent(t, &stubVerifier{mintToken: "tok"})

	req := httptest.NewRequest(http.MethodPost, "/api/session", nil)
	req.Header.Set("Authorization", "Bearer fresh-credential")
	rec := httptest.NewRecorder()
	router(c).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestMintMissingCredential(t *testing.T) {
	c := newComponent(t, &stubVerifier{mintToken: "tok"})

	req := httptest.NewRequest(http.MethodPost, "/api/session", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()
	router(c).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if got := len(rec.Result().Cookies()); got != 0 {
		t.Errorf("cookies set on failure: %d", got)
	}
}

func TestMintRejectedCredential(t *testing.T) {
	c := newComponent(t, &stubVerifier{
		mintErr: &identity.RejectionError{Code: "INVALID_PASSWORD"},
	})

	req := httptest.NewRequest(http.MethodPost, "/api/session",
		strings.NewReader(`{"idToken":"bad"}`))
	rec := httptest.NewRecorder()
	router(c).ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["error"] != "Incorrect email or password." {
		t.Errorf("error = %q, want mapped human message", body["error"])
	}
}

func TestMintProviderDown(t *testing.T) {
	c := newComponent(t, &stubVerifier{mintErr: context.DeadlineExceeded})

	req := httptest.NewRequest(http.MethodPost, "/api/session",
		strings.NewReader(`{"idToken":"cred"}`))
	rec := httptest.NewRecorder()
	router(c).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}
	body := decodeBody(t, rec)
	if msg, _ := body["error"].(string); strings.Contains(msg, "deadline") {
		t.Errorf("raw provider error leaked: %q", msg)
	}
}

func TestStatusAbsent(t *testing.T) {
	c := newComponent(t, &stubVerifier{})

	req := httptest.NewRequest(http.MethodGet, "/api/session", nil)
	rec := httptest.NewRecorder()
	router(c).ServeHTTP(rec, req)

	body := decodeBody(t, rec)
	if body["hasSession"] != false || body["verified"] != false {
		t.Errorf("body = %v, want absent projection", body)
	}
	if body["cookieName"] != "pr_session" {
		t.Errorf("cookieName = %v", body["cookieName"])
	}
	if got := rec.Header().Get("Cache-Control"); got != "no-store" {
		t.Errorf("Cache-Control = %q, want no-store", got)
	}
}

func TestStatusVerified(t *testing.T) {
	c := newComponent(t, &stubVerifier{subject: identity.Subject{ID: "user-1"}})

	req := httptest.NewRequest(http.MethodGet, "/api/session", nil)
	req.AddCookie(&http.Cookie{Name: "pr_session", Value: "tok"})
	rec := httptest.NewRecorder()
	router(c).ServeHTTP(rec, req)

	body := decodeBody(t, rec)
	if body["hasSession"] != true || body["verified"] != true {
		t.Fatalf("body = %v, want verified projection", body)
	}
	if body["subjectId"] != "user-1" {
		t.Errorf("subjectId = %v", body["subjectId"])
	}
}

func TestStatusStaleCookieIsNotAnHTTPError(t *testing.T) {
	c := newComponent(t, &stubVerifier{
		verifyErr: &identity.RejectionError{Code: "TOKEN_EXPIRED"},
	})

	req := httptest.NewRequest(http.MethodGet, "/api/session", nil)
	req.AddCookie(&http.Cookie{Name: "pr_session", Value: "stale"})
	rec := httptest.NewRecorder()
	router(c).ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (failure is data)", rec.Code)
	}
	body := decodeBody(t, rec)
	if body["hasSession"] != true || body["verified"] != false {
		t.Errorf("body = %v, want present-unverified projection", body)
	}
}

func TestLogoutIsIdempotent(t *testing.T) {
	c := newComponent(t, &stubVerifier{})

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/session/logout", nil)
		rec := httptest.NewRecorder()
		router(c).ServeHTTP(rec, req)

		if rec.Code != http.StatusOK {
			t.Fatalf("round %d: status = %d, want 200", i, rec.Code)
		}
		cookies := rec.Result().Cookies()
		if len(cookies) != 1 || cookies[0].Value != "" || cookies[0].MaxAge > 0 {
			t.Fatalf("round %d: cookies = %v, want cleared pr_session", i, cookies)
		}
	}
}
