package subsonic

import (
	"context"
	"crypto/md5"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
	"time"

	"github.com/mmcdole/juke/internal/domain"
)

const (
	defaultTimeout    = 30 * time.Second
	defaultClientID   = "juke"
	defaultAPIVersion = "1.16.1"
	maxRetries        = 3
	baseRetryDelay    = 500 * time.Millisecond
	saltLength        = 12
)

// Config holds the connection settings for a Subsonic server
type Config struct {
	URL        string
	Username   string
	Password   string
	ClientID   string
	APIVersion string
	Timeout    time.Duration
	LegacyAuth bool // send p=enc:<hex> instead of token+salt
}

// Client is an authenticated transport for the Subsonic REST API.
// It implements domain.Transport and domain.Claimer.
type Client struct {
	baseURL    string
	username   string
	password   string
	clientID   string
	apiVersion string
	legacyAuth bool
	httpClient *http.Client
	logger     *slog.Logger

	claimed atomic.Bool
	salt    func() string
	sleep   func(ctx context.Context, d time.Duration) error
}

// NewClient creates a new Subsonic API client
func NewClient(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	clientID := cfg.ClientID
	if clientID == "" {
		clientID = defaultClientID
	}
	apiVersion := cfg.APIVersion
	if apiVersion == "" {
		apiVersion = defaultAPIVersion
	}
	return &Client{
		baseURL:    strings.TrimRight(cfg.URL, "/"),
		username:   cfg.Username,
		password:   cfg.Password,
		clientID:   clientID,
		apiVersion: apiVersion,
		legacyAuth: cfg.LegacyAuth,
		httpClient: &http.Client{
			Timeout: timeout,
		},
		logger: logger,
		salt:   randomSalt,
		sleep:  sleepContext,
	}
}

// Claim borrows the client exclusively. The returned release func is idempotent.
func (c *Client) Claim() (func(), error) {
	if !c.claimed.CompareAndSwap(false, true) {
		return nil, domain.ErrTransportBusy
	}
	var once atomic.Bool
	return func() {
		if once.CompareAndSwap(false, true) {
			c.claimed.Store(false)
		}
	}, nil
}

// Ping checks connectivity and credentials
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.Get(ctx, "ping", nil)
	return err
}

// Get performs an authenticated GET against /rest/<endpoint> and returns the
// whole response document once the envelope reports success.
// Includes retry logic with exponential backoff for 5xx server errors.
func (c *Client) Get(ctx context.Context, endpoint string, params url.Values) (json.RawMessage, error) {
	query := c.authParams()
	for k, vs := range params {
		for _, v := range vs {
			query.Add(k, v)
		}
	}
	reqURL := fmt.Sprintf("%s/rest/%s?%s", c.baseURL, endpoint, query.Encode())

	var lastErr error
	for attempt := 0; attempt <= maxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		// Wait before retry (exponential backoff)
		if attempt > 0 {
			delay := baseRetryDelay * time.Duration(1<<(attempt-1)) // 500ms, 1s, 2s
			c.logger.Debug("retrying request", "attempt", attempt, "delay", delay, "endpoint", endpoint)
			if err := c.sleep(ctx, delay); err != nil {
				return nil, err
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		req.Header.Set("Accept", "application/json")

		c.logger.Debug("subsonic request", "endpoint", endpoint, "params", params.Encode(), "attempt", attempt)

		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			c.logger.Error("subsonic request failed", "endpoint", endpoint, "error", err)
			return nil, fmt.Errorf("%w: %v", domain.ErrServerOffline, err)
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("failed to read response: %w", err)
		}

		if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
			return nil, domain.ErrAuthFailed
		}

		// Retry on 5xx server errors
		if resp.StatusCode >= 500 && resp.StatusCode < 600 {
			lastErr = fmt.Errorf("server error: %d - %s", resp.StatusCode, string(body))
			c.logger.Warn("subsonic server error, will retry",
				"status", resp.StatusCode,
				"attempt", attempt,
				"maxRetries", maxRetries,
				"endpoint", endpoint,
			)
			continue
		}

		if resp.StatusCode != http.StatusOK {
			c.logger.Error("subsonic request error", "status", resp.StatusCode, "body", string(body))
			return nil, fmt.Errorf("unexpected status code: %d", resp.StatusCode)
		}

		if err := checkEnvelope(body); err != nil {
			c.logger.Debug("subsonic response rejected", "endpoint", endpoint, "error", err)
			return nil, err
		}
		return json.RawMessage(body), nil
	}

	c.logger.Error("subsonic request failed after retries", "error", lastErr, "endpoint", endpoint)
	return nil, lastErr
}

// checkEnvelope validates the subsonic-response wrapper and surfaces server errors
func checkEnvelope(body []byte) error {
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return toParseError(err)
	}
	switch env.Response.Status {
	case statusOK:
		return nil
	case statusFailed:
		if env.Response.Error == nil {
			return &domain.APIError{Code: domain.APICodeGeneric, Message: "request failed"}
		}
		return &domain.APIError{Code: env.Response.Error.Code, Message: env.Response.Error.Message}
	case "":
		return &domain.ParseError{Field: "subsonic-response", Reason: "missing"}
	default:
		return &domain.ParseError{Field: "status", Reason: fmt.Sprintf("unknown value %q", env.Response.Status)}
	}
}

// authParams builds the per-request authentication query
func (c *Client) authParams() url.Values {
	params := url.Values{}
	params.Set("u", c.username)
	if c.legacyAuth {
		params.Set("p", "enc:"+hex.EncodeToString([]byte(c.password)))
	} else {
		salt := c.salt()
		params.Set("t", authToken(c.password, salt))
		params.Set("s", salt)
	}
	params.Set("v", c.apiVersion)
	params.Set("c", c.clientID)
	params.Set("f", "json")
	return params
}

// authToken returns md5(password + salt) as lowercase hex
func authToken(password, salt string) string {
	sum := md5.Sum([]byte(password + salt))
	return hex.EncodeToString(sum[:])
}

func randomSalt() string {
	b := make([]byte, saltLength/2)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand does not fail on supported platforms
		panic(err)
	}
	return hex.EncodeToString(b)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	select {
	case <-time.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
