package providers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/goccy/go-json"
)

// unhealthyAfter is the number of consecutive failures that marks a provider
// unhealthy.
const unhealthyAfter = 3

// HTTPProvider is the shared base of the HTTP adapters: connection pooling,
// retries with exponential backoff, typed errors and health tracking.
type HTTPProvider struct {
	config ProviderConfig
	client *http.Client
	logger *slog.Logger

	health   ProviderHealth
	healthMu sync.RWMutex
}

// NewHTTPProvider creates a base HTTP provider.
func NewHTTPProvider(config ProviderConfig) *HTTPProvider {
	if config.RetryBackoff <= 0 {
		config.RetryBackoff = time.Second
	}

	transport := &http.Transport{
		MaxIdleConns:        config.MaxIdleConns,
		MaxIdleConnsPerHost: config.MaxIdleConnsPerHost,
		IdleConnTimeout:     config.IdleConnTimeout,
		ForceAttemptHTTP2:   true,
	}

	return &HTTPProvider{
		config: config,
		client: &http.Client{Transport: transport, Timeout: config.Timeout},
		logger: slog.Default().With("component", "providers", "provider", config.Name),
		health: ProviderHealth{
			IsHealthy:             true,
			LastCheck:             time.Now(),
			LastSuccessfulRequest: time.Now(),
		},
	}
}

// GetName returns the provider's configured name.
func (p *HTTPProvider) GetName() string {
	return p.config.Name
}

// GetType returns the provider's type.
func (p *HTTPProvider) GetType() string {
	return p.config.Type
}

// GetConfig returns the provider's configuration.
func (p *HTTPProvider) GetConfig() ProviderConfig {
	return p.config
}

// IsHealthy returns the current health status.
func (p *HTTPProvider) IsHealthy() bool {
	p.healthMu.RLock()
	defer p.healthMu.RUnlock()
	return p.health.IsHealthy
}

// GetHealth returns detailed health information.
func (p *HTTPProvider) GetHealth() ProviderHealth {
	p.healthMu.RLock()
	defer p.healthMu.RUnlock()
	return p.health
}

func (p *HTTPProvider) record(success bool, err error) {
	p.healthMu.Lock()
	defer p.healthMu.Unlock()

	p.health.TotalRequests++
	p.health.LastCheck = time.Now()

	if success {
		p.health.IsHealthy = true
		p.health.ConsecutiveFailures = 0
		p.health.LastError = nil
		p.health.LastSuccessfulRequest = time.Now()
		return
	}

	p.health.FailedRequests++
	p.health.ConsecutiveFailures++
	p.health.LastError = err
	if p.health.ConsecutiveFailures >= unhealthyAfter && p.health.IsHealthy {
		p.health.IsHealthy = false
		p.logger.Warn("provider marked unhealthy",
			"consecutive_failures", p.health.ConsecutiveFailures,
			"error", err,
		)
	}
}

// DoRequest performs an HTTP request. Network errors and 5xx responses are
// retried; 4xx responses are returned immediately as typed errors.
func (p *HTTPProvider) DoRequest(ctx context.Context, method, url string, body []byte, headers map[string]string) (*http.Response, error) {
	var lastErr error

	for attempt := 0; attempt <= p.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := p.config.RetryBackoff << (attempt - 1)
			p.logger.Debug("retrying request",
				"attempt", attempt,
				"max_retries", p.config.MaxRetries,
				"backoff", backoff,
			)
			select {
			case <-ctx.Done():
				p.record(false, ctx.Err())
				return nil, &TimeoutError{Provider: p.config.Name, Timeout: p.config.Timeout}
			case <-time.After(backoff):
			}
		}

		var bodyReader io.Reader
		if body != nil {
			bodyReader = bytes.NewReader(body)
		}

		req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
		if err != nil {
			return nil, fmt.Errorf("failed to create request: %w", err)
		}
		for key, value := range headers {
			req.Header.Set(key, value)
		}
		if req.Header.Get("Content-Type") == "" && body != nil {
			req.Header.Set("Content-Type", "application/json")
		}

		resp, err := p.client.Do(req)
		if err != nil {
			lastErr = err
			if ctx.Err() != nil || isTimeout(err) {
				p.record(false, err)
				return nil, &TimeoutError{Provider: p.config.Name, Timeout: p.config.Timeout}
			}
			p.logger.Warn("request failed, will retry", "attempt", attempt+1, "error", err)
			continue
		}

		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			p.record(true, nil)
			return resp, nil
		}

		errorBody, _ := io.ReadAll(resp.Body)
		resp.Body.Close()

		switch resp.StatusCode {
		case http.StatusUnauthorized, http.StatusForbidden:
			err := &AuthError{Provider: p.config.Name, Message: string(errorBody)}
			p.record(false, err)
			return nil, err

		case http.StatusTooManyRequests:
			err := &RateLimitError{
				Provider:   p.config.Name,
				RetryAfter: parseRetryAfter(resp.Header.Get("Retry-After")),
				Message:    string(errorBody),
			}
			p.record(false, err)
			return nil, err

		case http.StatusBadRequest, http.StatusNotFound, http.StatusUnprocessableEntity:
			err := &ProviderError{Provider: p.config.Name, StatusCode: resp.StatusCode, Message: string(errorBody)}
			p.record(false, err)
			return nil, err

		default:
			lastErr = &ProviderError{Provider: p.config.Name, StatusCode: resp.StatusCode, Message: string(errorBody)}
			p.logger.Warn("request returned error status, will retry",
				"status", resp.StatusCode,
				"attempt", attempt+1,
			)
		}
	}

	p.record(false, lastErr)
	var providerErr *ProviderError
	if errors.As(lastErr, &providerErr) {
		return nil, lastErr
	}
	return nil, &ProviderError{Provider: p.config.Name, Message: "request failed", Cause: lastErr}
}

// DoJSONRequest marshals reqBody, performs the request and decodes the
// response into respBody.
func (p *HTTPProvider) DoJSONRequest(ctx context.Context, method, url string, reqBody, respBody any, headers map[string]string) error {
	var bodyBytes []byte
	if reqBody != nil {
		var err error
		bodyBytes, err = json.Marshal(reqBody)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
	}

	resp, err := p.DoRequest(ctx, method, url, bodyBytes, headers)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	responseBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return &ParseError{Provider: p.config.Name, Cause: fmt.Errorf("failed to read response: %w", err)}
	}

	if respBody != nil && len(responseBytes) > 0 {
		if err := json.Unmarshal(responseBytes, respBody); err != nil {
			return &ParseError{
				Provider:    p.config.Name,
				RawResponse: string(responseBytes),
				Cause:       fmt.Errorf("failed to unmarshal response: %w", err),
			}
		}
	}
	return nil
}

// Close closes idle connections.
func (p *HTTPProvider) Close() error {
	p.client.CloseIdleConnections()
	p.logger.Debug("provider closed")
	return nil
}

func isTimeout(err error) bool {
	var netErr interface{ Timeout() bool }
	return errors.As(err, &netErr) && netErr.Timeout()
}

// parseRetryAfter accepts delay-seconds and HTTP-date values.
func parseRetryAfter(header string) time.Duration {
	if header == "" {
		return 0
	}
	if seconds, err := strconv.Atoi(header); err == nil {
		return time.Duration(seconds) * time.Second
	}
	if t, err := http.ParseTime(header); err == nil {
		return time.Until(t)
	}
	return 0
}
