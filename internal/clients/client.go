package clients

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/tm-acme-shop/acme-shop-storefront/internal/apperrors"
	"github.com/tm-acme-shop/acme-shop-storefront/internal/config"
	"github.com/tm-acme-shop/acme-shop-storefront/internal/logging"
	"github.com/tm-acme-shop/acme-shop-storefront/internal/metrics"
	"github.com/tm-acme-shop/acme-shop-storefront/internal/session"
)

const (
	HeaderAuthorization = "Authorization"
	HeaderClientID      = "X-Client-Id"
	HeaderRequestID     = "X-Request-ID"
)

// APIClient is the single HTTP wrapper every resource accessor goes through.
// It never retries and returns failures unchanged.
type APIClient struct {
	baseURL    string
	httpClient *http.Client
	logger     *logging.Logger
}

// NewAPIClient builds the client and its transport chain:
// credentials -> tracing -> metrics -> base transport.
func NewAPIClient(cfg config.ServiceConfig, m *metrics.Metrics) *APIClient {
	var next http.RoundTripper = http.DefaultTransport
	if m != nil {
		next = m.InstrumentTransport(next)
	}
	next = otelhttp.NewTransport(next)

	return NewAPIClientWithTransport(cfg, &credentialTransport{next: next})
}

// NewAPIClientWithTransport uses rt as-is. Tests pass a bare credentialTransport.
func NewAPIClientWithTransport(cfg config.ServiceConfig, rt http.RoundTripper) *APIClient {
	return &APIClient{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: rt,
		},
		logger: logging.New("api-client"),
	}
}

// NewCredentialTransport wraps next with credential injection only.
func NewCredentialTransport(next http.RoundTripper) http.RoundTripper {
	if next == nil {
		next = http.DefaultTransport
	}
	return &credentialTransport{next: next}
}

// credentialTransport attaches exactly one credential per request: the
// bearer token when the session is logged in, the anonymous client id
// otherwise.
type credentialTransport struct {
	next http.RoundTripper
}

func (t *credentialTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	out := req.Clone(req.Context())
	out.Header.Del(HeaderAuthorization)
	out.Header.Del(HeaderClientID)

	if id := session.FromContext(req.Context()); id != nil {
		if id.Authenticated() {
			out.Header.Set(HeaderAuthorization, "Bearer "+id.Token)
		} else if id.ClientID != "" {
			out.Header.Set(HeaderClientID, id.ClientID)
		}
	}

	if requestID := session.RequestID(req.Context()); requestID != "" {
		out.Header.Set(HeaderRequestID, requestID)
	}

	return t.next.RoundTrip(out)
}

// Get issues a GET and decodes the response into out.
func (c *APIClient) Get(ctx context.Context, path string, query url.Values, out interface{}) error {
	return c.Do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *APIClient) Post(ctx context.Context, path string, body, out interface{}) error {
	return c.Do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *APIClient) Patch(ctx context.Context, path string, body, out interface{}) error {
	return c.Do(ctx, http.MethodPatch, path, nil, body, out)
}

func (c *APIClient) Delete(ctx context.Context, path string, out interface{}) error {
	return c.Do(ctx, http.MethodDelete, path, nil, nil, out)
}

// Do sends one request. A nil body sends no payload; a nil out discards the
// response. A *string out receives the text body, or the "message" field
// when the API answers with a {message} object.
func (c *APIClient) Do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("Calling storefront API", logging.Fields{
		"method": method,
		"path":   path,
	})

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("Storefront API request failed", logging.Fields{
			"method": method,
			"path":   path,
			"error":  err.Error(),
		})
		return err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := &apperrors.APIError{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(data),
			Method:     method,
			Path:       path,
		}
		c.logger.Error("Storefront API returned error", logging.Fields{
			"method":      method,
			"path":        path,
			"status_code": resp.StatusCode,
		})
		return apiErr
	}

	return decodeBody(data, out)
}

func decodeBody(data []byte, out interface{}) error {
	if out == nil {
		return nil
	}

	if s, ok := out.(*string); ok {
		*s = textBody(data)
		return nil
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}
	return json.Unmarshal(data, out)
}

// textBody turns a plain, JSON string or {message} body into display text.
func textBody(data []byte) string {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return ""
	}

	switch trimmed[0] {
	case '"':
		var s string
		if json.Unmarshal(trimmed, &s) == nil {
			return s
		}
	case '{':
		var m struct {
			Message string `json:"message"`
		}
		if json.Unmarshal(trimmed, &m) == nil && m.Message != "" {
			return m.Message
		}
	}
	return string(trimmed)
}

func errorMessage(data []byte) string {
	var body struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &body); err != nil {
		return ""
	}
	return body.Message
}
