package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sethvargo/go-retry"

	"github.com/BradenHooton/passguard/internal/models"
)

// Endpoint paths relative to the base URL.
const (
	LoginPath    = "/auth/login"
	TOTPPath     = "/auth/verify_totp"
	RegisterPath = "/auth/register"
)

const (
	maxResponseBytes = 1 << 20
	retryInterval    = 100 * time.Millisecond
	maxRetries       = 2
)

// response is the tagged result every endpoint returns. OK is nil when the
// backend omits the flag.
type response struct {
	OK           *bool  `json:"ok"`
	AccessToken  string `json:"access_token,omitempty"`
	Username     string `json:"username,omitempty"`
	UserID       string `json:"user_id,omitempty"`
	TOTPRequired bool   `json:"totp_required,omitempty"`
	QRCode       string `json:"qr_code,omitempty"`
	Error        string `json:"error,omitempty"`
}

// accepted reports whether the backend accepted the request. An explicit ok
// flag wins; without one a 2xx answer carrying no error counts as accepted.
func (r *response) accepted(status int) bool {
	if r.OK != nil {
		return *r.OK
	}
	return status < http.StatusBadRequest && r.Error == ""
}

// Client talks to a remote identity backend over HTTP. It implements the
// credential check, second factor, registration and token issuing
// collaborators of the login services.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a client for the backend rooted at baseURL.
func NewClient(baseURL string, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CheckCredentials posts the pair to the login endpoint. A rejected pair is
// reported as models.ErrInvalidCredentials.
func (c *Client) CheckCredentials(ctx context.Context, username, password string) (*models.Identity, error) {
	resp, status, err := c.post(ctx, LoginPath, map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return nil, err
	}
	if !resp.accepted(status) {
		return nil, c.rejection(status, resp, models.ErrInvalidCredentials)
	}

	identity := &models.Identity{
		UserID:       resp.UserID,
		Username:     firstNonEmpty(resp.Username, username),
		TOTPEnrolled: resp.TOTPRequired,
	}
	if !resp.TOTPRequired {
		identity.AccessToken = resp.AccessToken
	}
	return identity, nil
}

// VerifySecondFactor posts the code for identity's username.
func (c *Client) VerifySecondFactor(ctx context.Context, identity *models.Identity, code string) (*models.Identity, error) {
	if identity == nil {
		return nil, models.ErrInvalidSecondFactor
	}
	resp, status, err := c.post(ctx, TOTPPath, map[string]string{
		"username": identity.Username,
		"totp":     code,
	})
	if err != nil {
		return nil, err
	}
	if !resp.accepted(status) {
		return nil, c.rejection(status, resp, models.ErrInvalidSecondFactor)
	}

	verified := *identity
	verified.Username = firstNonEmpty(resp.Username, identity.Username)
	verified.AccessToken = resp.AccessToken
	return &verified, nil
}

// CreateAccount posts a registration. The provisioning artifact is whatever
// qr_code the backend returned.
func (c *Client) CreateAccount(ctx context.Context, username, password string) (*models.Enrollment, error) {
	resp, status, err := c.post(ctx, RegisterPath, map[string]string{
		"username": username,
		"password": password,
	})
	if err != nil {
		return nil, err
	}
	if !resp.accepted(status) {
		if status == http.StatusConflict || strings.Contains(strings.ToLower(resp.Error), "exists") {
			return nil, models.ErrConflict
		}
		return nil, c.rejection(status, resp, models.ErrWeakPassword)
	}

	return &models.Enrollment{
		UserID:               resp.UserID,
		Username:             firstNonEmpty(resp.Username, username),
		ProvisioningArtifact: resp.QRCode,
	}, nil
}

// IssueToken returns the token the backend handed out while verifying the
// identity. The remote backend has no separate issuing endpoint.
func (c *Client) IssueToken(ctx context.Context, identity *models.Identity) (string, error) {
	if identity == nil || identity.AccessToken == "" {
		return "", fmt.Errorf("%w: backend returned no access token", models.ErrBackendUnavailable)
	}
	return identity.AccessToken, nil
}

// post sends body as JSON and decodes the tagged result. Transport failures
// and 5xx answers are retried until ctx is done.
func (c *Client) post(ctx context.Context, path string, body any) (*response, int, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to encode request: %w", err)
	}

	var (
		out    response
		status int
	)
	backoff := retry.WithMaxRetries(maxRetries, retry.NewConstant(retryInterval))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(payload))
		if err != nil {
			return fmt.Errorf("failed to build request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Accept", "application/json")

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return retry.RetryableError(fmt.Errorf("%w: %v", models.ErrBackendUnavailable, err))
		}
		defer resp.Body.Close()

		status = resp.StatusCode
		if status >= http.StatusInternalServerError {
			return retry.RetryableError(fmt.Errorf("%w: status %d", models.ErrBackendUnavailable, status))
		}

		out = response{}
		if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&out); err != nil {
			return fmt.Errorf("%w: malformed response: %v", models.ErrBackendUnavailable, err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, status, models.ErrTimeout
		}
		c.logger.Warn("identity backend request failed",
			slog.String("path", path),
			slog.Int("status", status),
			slog.Any("error", err))
		return nil, status, err
	}
	return &out, status, nil
}

// rejection maps a negative answer to an error. 4xx answers are the backend
// refusing the input; anything else means it misbehaved.
func (c *Client) rejection(status int, resp *response, refused error) error {
	switch {
	case status == http.StatusTooManyRequests:
		return fmt.Errorf("%w: rate limited", models.ErrBackendUnavailable)
	case status >= http.StatusBadRequest:
		return refused
	case resp.Error != "", resp.OK != nil:
		return refused
	default:
		return fmt.Errorf("%w: status %d", models.ErrBackendUnavailable, status)
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
