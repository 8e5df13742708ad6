package requests

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"assetmanager/src/utils"

	"golang.org/x/time/rate"
)

// ExternalAPIService performs rate limited requests against one upstream.
type ExternalAPIService struct {
	client  *http.Client
	limiter *rate.Limiter
	headers map[string]string
}

// NewExternalAPIService builds a service sending at most requestsPerSecond
// requests. A non-positive rate disables limiting.
func NewExternalAPIService(timeout time.Duration, requestsPerSecond float64) *ExternalAPIService {
	limit := rate.Inf
	if requestsPerSecond > 0 {
		limit = rate.Limit(requestsPerSecond)
	}
	return &ExternalAPIService{
		client:  &http.Client{Timeout: timeout},
		limiter: rate.NewLimiter(limit, 1),
		headers: map[string]string{},
	}
}

// WithHTTPClient replaces the underlying client, e.g. with an oauth2 client.
func (s *ExternalAPIService) WithHTTPClient(client *http.Client) *ExternalAPIService {
	s.client = client
	return s
}

// WithHeader sets a header sent with every request.
func (s *ExternalAPIService) WithHeader(key, value string) *ExternalAPIService {
	s.headers[key] = value
	return s
}

func (s *ExternalAPIService) makeRequest(ctx context.Context, method, endpoint, token string, params url.Values, body interface{}) (*http.Response, error) {
	if params != nil {
		endpoint = endpoint + "?" + params.Encode()
	}

	var reader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(jsonBody)
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, err
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for key, value := range s.headers {
		req.Header.Set(key, value)
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		_, _ = io.Copy(io.Discard, resp.Body)
		resp.Body.Close()
		return nil, utils.NewHTTPError(resp.StatusCode, fmt.Sprintf("%s %s: %s", method, endpoint, resp.Status))
	}
	return resp, nil
}

// Get makes a GET request, accepting optional query parameters.
func (s *ExternalAPIService) Get(ctx context.Context, endpoint, token string, params url.Values) (*http.Response, error) {
	return s.makeRequest(ctx, http.MethodGet, endpoint, token, params, nil)
}

// Post makes a POST request with a JSON body.
func (s *ExternalAPIService) Post(ctx context.Context, endpoint, token string, params url.Values, body interface{}) (*http.Response, error) {
	return s.makeRequest(ctx, http.MethodPost, endpoint, token, params, body)
}

// GetJSON makes a GET request and decodes the JSON response into out.
func (s *ExternalAPIService) GetJSON(ctx context.Context, endpoint, token string, params url.Values, out interface{}) error {
	resp, err := s.Get(ctx, endpoint, token, params)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", endpoint, err)
	}
	return nil
}
