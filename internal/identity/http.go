// internal/identity/http.go
//
// HTTP implementation of Verifier against the managed provider's REST API.
//
// Context
// -------
// Three endpoints, all POST, all keyed by the project API key:
//
//	{base}/v1/projects/{project}/credentials:verify   {"credential": …}
//	{base}/v1/projects/{project}/sessions:create      {"credential": …, "validDuration": secs}
//	{base}/v1/projects/{project}/sessions:verify      {"sessionToken": …}
//
// A 4xx answer carries {"error":{"code":…,"message":"CODE"}} and becomes a
// RejectionError; anything else is surfaced as a transport error so the
// caller can distinguish "you are not who you say" from "the provider is
// down".  Every call runs under an explicit client timeout—the provider's
// transport defaults are not trusted to terminate.
//
// Concurrent session-token verifications for the same raw token are
// deduplicated with singleflight.  The result is handed to every waiter of
// that one flight and never stored, so status checks stay uncached.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"golang.org/x/sync/singleflight"
)

// DefaultBaseURL is the production endpoint of the managed provider.
const DefaultBaseURL = "https://identity.pocketrocks.dev"

// Client talks to the Identity/Credential Service over HTTPS.
type Client struct {
	base    string
	project string
	apiKey  string
	http    *http.Client

	sfg singleflight.Group // collapses concurrent verifies per token
}

// Compile-time assertion: *Client satisfies Verifier.
var _ Verifier = (*Client)(nil)

// NewClient builds a provider client.  baseURL may be empty for production;
// timeout bounds every call (see §timeout note above).
func NewClient(project, apiKey, baseURL string, timeout time.Duration) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	return &Client{
		base:    baseURL,
		project: project,
		apiKey:  apiKey,
		http:    &http.Client{Timeout: timeout},
	}
}

/*──────────────────────────── Verifier methods ─────────────────────────────*/

func (c *Client) VerifyCredential(ctx context.Context, credential string) (Subject, error) {
	var out struct {
		SubjectID string `json:"subjectId"`
		Email     string `json:"email"`
	}
	err := c.post(ctx, "credentials:verify", map[string]any{
		"credential": credential,
	}, &out)
	if err != nil {
		return Subject{}, err
	}
	return Subject{ID: out.SubjectID, Email: out.Email}, nil
}

func (c *Client) MintSessionToken(ctx context.Context, credential string, ttl time.Duration) (string, error) {
	var out struct {
		SessionToken string `json:"sessionToken"`
	}
	err := c.post(ctx, "sessions:create", map[string]any{
		"credential":    credential,
		"validDuration": int64(ttl.Seconds()),
	}, &out)
	if err != nil {
		return "", err
	}
	if out.SessionToken == "" {
		return "", fmt.Errorf("identity: provider returned empty session token")
	}
	return out.SessionToken, nil
}

func (c *Client) VerifySessionToken(ctx context.Context, token string) (Subject, error) {
	// Singleflight key is the raw token: a burst of status polls for one
	// cookie becomes one provider round-trip.
	v, err, _ := c.sfg.Do(token, func() (any, error) {
		var out struct {
			SubjectID string `json:"subjectId"`
			Email     string `json:"email"`
		}
		if err := c.post(ctx, "sessions:verify", map[string]any{
			"sessionToken": token,
		}, &out); err != nil {
			return Subject{}, err
		}
		return Subject{ID: out.SubjectID, Email: out.Email}, nil
	})
	if err != nil {
		return Subject{}, err
	}
	return v.(Subject), nil
}

/*──────────────────────────── transport helpers ────────────────────────────*/

type providerError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

func (c *Client) post(ctx context.Context, op string, in map[string]any, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return fmt.Errorf("identity: encode %s: %w", op, err)
	}

	url := fmt.Sprintf("%s/v1/projects/%s/%s?key=%s", c.base, c.project, op, c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("identity: build %s: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("identity: %s: %w", op, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("identity: read %s response: %w", op, err)
	}

	if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		var pe providerError
		_ = json.Unmarshal(raw, &pe)
		return &RejectionError{Code: pe.Error.Message}
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("identity: %s: provider status %d", op, resp.StatusCode)
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("identity: decode %s response: %w", op, err)
	}
	return nil
}
