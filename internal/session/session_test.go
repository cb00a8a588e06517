// internal/session/session_test.go

package session

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/pocketrocks/pocketrocks/internal/identity"
)

var testCookie = Cookie{Name: "pr_session", TTL: 5 * 24 * time.Hour}

// stubVerifier accepts exactly one token.
type stubVerifier struct {
	token   string
	subject string
	err     error
}

func (s *stubVerifier) VerifyCredential(context.Context, string) (identity.Subject, error) {
	return identity.Subject{}, errors.New("not used")
}

func (s *stubVerifier) MintSessionToken(context.Context, string, time.Duration) (string, error) {
	return "", errors.New("not used")
}

func (s *stubVerifier) VerifySessionToken(_ context.Context, tok string) (identity.Subject, error) {
	if s.err != nil {
		return identity.Subject{}, s.err
	}
	if tok != s.token {
		return identity.Subject{}, &identity.RejectionError{Code: "INVALID_SESSION"}
	}
	return identity.Subject{ID: s.subject}, nil
}

func TestSetCookieFlags(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "http://localhost/api/session", nil)

	testCookie.Set(rec, req, "opaque-token")

	cks := rec.Result().Cookies()
	if len(cks) != 1 {
		t.Fatalf("want 1 cookie, got %d", len(cks))
	}
	ck := cks[0]
	if ck.Name != "pr_session" || ck.Value != "opaque-token" {
		t.Fatalf("unexpected cookie %v", ck)
	}
	if !ck.HttpOnly || ck.Path != "/" || ck.SameSite != http.SameSiteLaxMode {
		t.Fatalf("wrong flags: %+v", ck)
	}
	if ck.Secure {
		t.Fatal("plain-http request must not set Secure")
	}
	if ck.MaxAge != 5*24*3600 {
		t.Fatalf("MaxAge = %d, want %d", ck.MaxAge, 5*24*3600)
	}
}

func TestSetCookieSecureBehindProxy(t *testing.T) {
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "http://example.com/api/session", nil)
	req.Header.Set("X-Forwarded-Proto", "https")

	testCookie.Set(rec, req, "tok")

	if !rec.Result().Cookies()[0].Secure {
		t.Fatal("forwarded https must set Secure")
	}
}

func TestClearIsIdempotent(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "http://localhost/api/session/logout", nil)

	for i := 0; i < 2; i++ {
		rec := httptest.NewRecorder()
		testCookie.Clear(rec, req)
		ck := rec.Result().Cookies()[0]
		if ck.Value != "" || ck.MaxAge > 0 {
			t.Fatalf("clear %d left value=%q maxage=%d", i, ck.Value, ck.MaxAge)
		}
		if ck.Name != testCookie.Name || ck.Path != "/" {
			t.Fatalf("clear must reuse issuance name and path: %+v", ck)
		}
	}
}

func TestReadMissingCookie(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if _, ok := testCookie.Read(req); ok {
		t.Fatal("ok for missing cookie")
	}
}

func TestProjectStates(t *testing.T) {
	v := &stubVerifier{token: "good", subject: "uid-9"}
	ctx := context.Background()

	if st := Project(ctx, v, "", false); st.State != Absent {
		t.Fatalf("no cookie: %v", st.State)
	}
	if st := Project(ctx, v, "stale", true); st.State != PresentUnverified || st.Diagnostic == "" {
		t.Fatalf("stale cookie: %+v", st)
	}
	st := Project(ctx, v, "good", true)
	if st.State != PresentVerified || st.SubjectID != "uid-9" {
		t.Fatalf("good cookie: %+v", st)
	}
}

func TestProjectProviderDown(t *testing.T) {
	v := &stubVerifier{err: errors.New("dial tcp: connection refused")}
	st := Project(context.Background(), v, "tok", true)
	if st.State != PresentUnverified {
		t.Fatalf("provider outage must project unverified, got %v", st.State)
	}
}

func TestAwaitEventuallyVerified(t *testing.T) {
	calls := 0
	fn := func(context.Context) (Status, error) {
		calls++
		if calls < 3 {
			return Status{State: Absent}, nil
		}
		return Status{State: PresentVerified, SubjectID: "uid-1"}, nil
	}

	st, err := Await(context.Background(), fn, time.Millisecond, time.Second)
	if err != nil {
		t.Fatalf("Await: %v", err)
	}
	if st.SubjectID != "uid-1" {
		t.Fatalf("subject = %q", st.SubjectID)
	}
}

func TestAwaitCeilingTerminates(t *testing.T) {
	fn := func(context.Context) (Status, error) {
		return Status{State: Absent}, nil
	}

	start := time.Now()
	_, err := Await(context.Background(), fn, 5*time.Millisecond, 50*time.Millisecond)
	if !errors.Is(err, ErrAwaitTimeout) {
		t.Fatalf("want ErrAwaitTimeout, got %v", err)
	}
	if time.Since(start) > time.Second {
		t.Fatal("Await ran far past its ceiling")
	}
}
