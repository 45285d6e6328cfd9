package shortener

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"
)

// TinyURLBackend 调用 TinyURL 创建接口的后端
type TinyURLBackend struct {
	apiURL string
	apiKey string
	client *http.Client
	logger *zap.Logger
}

func NewTinyURLBackend(apiURL, apiKey string, timeout time.Duration, logger *zap.Logger) *TinyURLBackend {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &TinyURLBackend{
		apiURL: apiURL,
		apiKey: apiKey,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

type tinyURLRequest struct {
	URL string `json:"url"`
}

type tinyURLResponse struct {
	Data struct {
		TinyURL string `json:"tiny_url"`
		Alias   string `json:"alias"`
	} `json:"data"`
	Errors []string `json:"errors"`
}

func (b *TinyURLBackend) Shorten(ctx context.Context, normalizedURL string) (*Result, error) {
	body, err := json.Marshal(tinyURLRequest{URL: normalizedURL})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.apiURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if b.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+b.apiKey)
	}

	resp, err := b.client.Do(req)
	if err != nil {
		if isTimeout(err) {
			return nil, fmt.Errorf("%w: %v", ErrTimeout, err)
		}
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			b.logger.Warn("Failed to close provider response body", zap.Error(closeErr))
		}
	}()

	switch {
	case resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated:
		// fallthrough to decode
	case resp.StatusCode == http.StatusTooManyRequests:
		return nil, fmt.Errorf("%w: status %d", ErrRateLimited, resp.StatusCode)
	case resp.StatusCode == http.StatusBadRequest || resp.StatusCode == http.StatusUnprocessableEntity:
		return nil, fmt.Errorf("%w: status %d", ErrRejected, resp.StatusCode)
	case resp.StatusCode >= http.StatusInternalServerError:
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	default:
		return nil, fmt.Errorf("%w: unexpected status %d", ErrMalformedResponse, resp.StatusCode)
	}

	var parsed tinyURLResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	if len(parsed.Errors) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrRejected, strings.Join(parsed.Errors, "; "))
	}
	if parsed.Data.TinyURL == "" {
		return nil, fmt.Errorf("%w: empty tiny_url", ErrMalformedResponse)
	}

	alias := parsed.Data.Alias
	if alias == "" {
		// 部分响应只带完整短链，从路径中取短码
		alias = aliasFromShortURL(parsed.Data.TinyURL)
	}
	if alias == "" {
		return nil, fmt.Errorf("%w: missing alias", ErrMalformedResponse)
	}

	return &Result{Alias: alias, ShortURL: parsed.Data.TinyURL}, nil
}

func aliasFromShortURL(shortURL string) string {
	u, err := url.Parse(shortURL)
	if err != nil {
		return ""
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	return parts[len(parts)-1]
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
