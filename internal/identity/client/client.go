package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	identitydomain "github.com/inkwell-hq/inkwell/internal/identity/domain"
	"github.com/inkwell-hq/inkwell/internal/observability/logger"
	"go.uber.org/zap"
)

// Client implements identitydomain.Service against the provider's REST API.
type Client struct {
	baseURL string
	secret  string
	http    *http.Client
}

type Config struct {
	BaseURL string
	Secret  string
	Timeout time.Duration
}

func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		secret:  cfg.Secret,
		http:    &http.Client{Timeout: timeout},
	}
}

type sessionResponse struct {
	UserID       string `json:"user_id"`
	Plan         string `json:"plan"`
	FreeUsage    int    `json:"free_usage"`
	ErrorMessage string `json:"error,omitempty"`
}

// CurrentUser resolves the session token to the caller's identity and quota
// metadata in a single provider call.
func (c *Client) CurrentUser(ctx context.Context, token string) (*identitydomain.User, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, identitydomain.ErrUnauthenticated
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/sessions/me", nil)
	if err != nil {
		return nil, fmt.Errorf("build session request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := c.http.Do(req)
	if err != nil {
		logger.FromContext(ctx).Warn("identity session lookup failed", zap.Error(err))
		return nil, identitydomain.ErrUnavailable
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, identitydomain.ErrUnauthenticated
	case resp.StatusCode != http.StatusOK:
		logger.FromContext(ctx).Warn("identity session lookup degraded", zap.Int("status", resp.StatusCode))
		return nil, identitydomain.ErrUnavailable
	}

	var session sessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return nil, identitydomain.ErrUnavailable
	}
	if strings.TrimSpace(session.UserID) == "" {
		return nil, identitydomain.ErrUnauthenticated
	}

	return &identitydomain.User{
		ID:        session.UserID,
		Plan:      identitydomain.NormalizePlan(session.Plan),
		FreeUsage: session.FreeUsage,
	}, nil
}

// IncrementFreeUsage issues the post-success quota commit. The provider is
// eventually consistent; a read racing this write may observe the old count.
func (c *Client) IncrementFreeUsage(ctx context.Context, userID string) error {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return identitydomain.ErrUnavailable
	}

	body, err := json.Marshal(map[string]int{"free_usage_increment": 1})
	if err != nil {
		return fmt.Errorf("encode increment request: %w", err)
	}

	url := fmt.Sprintf("%s/users/%s/metadata", c.baseURL, userID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build increment request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.secret)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		logger.FromContext(ctx).Warn("quota increment failed", zap.String("user_id", userID), zap.Error(err))
		return identitydomain.ErrUnavailable
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		logger.FromContext(ctx).Warn("quota increment rejected",
			zap.String("user_id", userID),
			zap.Int("status", resp.StatusCode),
		)
		return identitydomain.ErrUnavailable
	}

	return nil
}
