// internal/identity/http_test.go
//
// Client tests against an httptest stand-in for the managed provider.

package identity

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func newProvider(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient("demo", "test-key", srv.URL, 2*time.Second), srv
}

func TestVerifyCredentialOK(t *testing.T) {
	cli, _ := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.HasSuffix(r.URL.Path, "credentials:verify") {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if r.URL.Query().Get("key") != "test-key" {
			t.Errorf("missing api key")
		}
		json.NewEncoder(w).Encode(map[string]string{"subjectId": "uid-1", "email": "a@b.c"})
	})

	sub, err := cli.VerifyCredential(context.Background(), "cred-token")
	if err != nil {
		t.Fatalf("VerifyCredential: %v", err)
	}
	if sub.ID != "uid-1" || sub.Email != "a@b.c" {
		t.Fatalf("unexpected subject %+v", sub)
	}
}

func TestVerifyCredentialRejected(t *testing.T) {
	cli, _ := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"code": 400, "message": "INVALID_PASSWORD"},
		})
	})

	_, err := cli.VerifyCredential(context.Background(), "bad")
	if !errors.Is(err, ErrRejected) {
		t.Fatalf("want ErrRejected, got %v", err)
	}
	var rej *RejectionError
	if !errors.As(err, &rej) || rej.Code != "INVALID_PASSWORD" {
		t.Fatalf("want INVALID_PASSWORD rejection, got %v", err)
	}
}

func TestProviderDownIsNotRejection(t *testing.T) {
	cli, _ := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := cli.VerifySessionToken(context.Background(), "tok")
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, ErrRejected) {
		t.Fatalf("5xx must not map to rejection: %v", err)
	}
}

func TestMintSessionTokenSendsValidity(t *testing.T) {
	cli, _ := newProvider(t, func(w http.ResponseWriter, r *http.Request) {
		var in map[string]any
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if in["validDuration"].(float64) != 5*24*3600 {
			t.Errorf("validDuration = %v, want 432000", in["validDuration"])
		}
		json.NewEncoder(w).Encode(map[string]string{"sessionToken": "opaque-abc"})
	})

	tok, err := cli.MintSessionToken(context.Background(), "cred", 5*24*time.Hour)
	if err != nil {
		t.Fatalf("MintSessionToken: %v", err)
	}
	if tok != "opaque-abc" {
		t.Fatalf("token = %q", tok)
	}
}

func TestHumanMessageMapping(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{&RejectionError{Code: "INVALID_PASSWORD"}, "Incorrect email or password."},
		{&RejectionError{Code: "EMAIL_EXISTS"}, "That email is already registered."},
		{&RejectionError{Code: "SOMETHING_NEW"}, "We could not verify you.  Please log in again."},
		{errors.New("dial tcp: timeout"), "Something went wrong.  Please try again."},
	}
	for _, tc := range cases {
		if got := HumanMessage(tc.err); got != tc.want {
			t.Errorf("HumanMessage(%v) = %q, want %q", tc.err, got, tc.want)
		}
	}
}
