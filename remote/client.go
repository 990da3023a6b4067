package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	sageauth "github.com/sageflow/sageauth"
)

// ErrUnknownRole is returned when a login role has no backend endpoint.
var ErrUnknownRole = errors.New("no login endpoint for role")

// APIError is a non-2xx response from the SageFlow backend.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("sageflow api: status %d", e.Status)
	}
	return fmt.Sprintf("sageflow api: %s (status %d)", e.Message, e.Status)
}

// Config carries the transport settings for a [Client].
//
// Config instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Config struct {
	// BaseURL is the API origin, e.g. "https://api.sageflow.app".
	BaseURL string
	// HTTPClient overrides the default client (30s timeout). Timeout
	// policy lives here, not in the resolver.
	HTTPClient *http.Client
	// UserAgent overrides the default User-Agent header.
	UserAgent string
}

// Client talks to the SageFlow REST API. A successful login stores the
// returned bearer token into the shared token store as a side effect,
// which is the read-back contract [sageauth.Resolver.Login] relies on.
//
// Client instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type Client struct {
	base      *url.URL
	http      *http.Client
	tokens    sageauth.TokenStore
	userAgent string
}

// NewClient validates the configuration and constructs a Client bound to
// the given token store.
func NewClient(cfg Config, tokens sageauth.TokenStore) (*Client, error) {
	if strings.TrimSpace(cfg.BaseURL) == "" {
		return nil, errors.New("base URL required")
	}
	base, err := url.Parse(cfg.BaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, errors.New("invalid base URL")
	}
	if tokens == nil {
		return nil, errors.New("token store required")
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	userAgent := cfg.UserAgent
	if userAgent == "" {
		userAgent = "sageflow-client-go"
	}

	return &Client{
		base:      base,
		http:      httpClient,
		tokens:    tokens,
		userAgent: userAgent,
	}, nil
}

// loginPath maps a role tag to its backend endpoint. Students sign in on
// the unprefixed endpoint; the other roles each have their own.
func loginPath(role string) (string, error) {
	switch role {
	case sageauth.RoleStudent:
		return "/api/auth/login", nil
	case sageauth.RoleParent:
		return "/api/auth/parent/login", nil
	case sageauth.RoleTeacher:
		return "/api/auth/teacher/login", nil
	case sageauth.RolePsychologist:
		return "/api/auth/psychologist/login", nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, role)
	}
}

// Login posts the opaque credentials to the role's endpoint, stores any
// bearer token found in the response body, and returns the decoded body
// raw.
func (c *Client) Login(ctx context.Context, credentials sageauth.Credentials, role string) (sageauth.RawResponse, error) {
	path, err := loginPath(role)
	if err != nil {
		return nil, err
	}

	var raw sageauth.RawResponse
	if err := c.do(ctx, http.MethodPost, path, credentials, &raw, false); err != nil {
		return nil, err
	}
	if raw == nil {
		raw = sageauth.RawResponse{}
	}

	if tok := bearerFromResponse(raw); tok != "" {
		if err := c.tokens.SetToken(ctx, tok); err != nil {
			return nil, err
		}
	}

	return raw, nil
}

// Logout posts to the logout endpoint with the current bearer token. The
// caller treats failures as best-effort; local cleanup happens regardless.
func (c *Client) Logout(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/api/auth/logout", nil, nil, true)
}

// bearerFromResponse scans the known token field names. Different login
// endpoints use different keys; first non-empty string wins.
func bearerFromResponse(raw sageauth.RawResponse) string {
	for _, key := range []string{"token", "accessToken", "jwt"} {
		if s, ok := raw[key].(string); ok && s != "" {
			return s
		}
	}
	return ""
}

func (c *Client) do(ctx context.Context, method, path string, in, out any, authed bool) error {
	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(data)
	}

	target := c.base.JoinPath(path)
	req, err := http.NewRequestWithContext(ctx, method, target.String(), body)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", uuid.NewString())
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if authed {
		tok, err := c.tokens.Token(ctx)
		if err != nil {
			return err
		}
		if tok != "" {
			req.Header.Set("Authorization", "Bearer "+tok)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return apiError(resp.StatusCode, data)
	}

	if out != nil && len(bytes.TrimSpace(data)) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return fmt.Errorf("decode response: %w", err)
		}
	}
	return nil
}

func apiError(status int, body []byte) *APIError {
	var envelope struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	_ = json.Unmarshal(body, &envelope)

	msg := envelope.Message
	if msg == "" {
		msg = envelope.Error
	}
	return &APIError{Status: status, Message: msg}
}
