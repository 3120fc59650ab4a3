package supabase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"slices"
)

// request describes one call against the REST API.
type request struct {
	method   string
	segments []string
	query    url.Values
	body     any
	prefer   string
}

// do performs the request and returns the raw response body.
// Non-2xx responses are decoded into an *APIError.
func (c *Client) do(ctx context.Context, r request, expectedStatuses ...int) ([]byte, error) {
	var bodyReader io.Reader
	if r.body != nil {
		jsonBody, err := json.Marshal(r.body)
		if err != nil {
			return nil, fmt.Errorf("could not marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, r.method, c.resolveURL(r.query, r.segments...), bodyReader)
	if err != nil {
		return nil, fmt.Errorf("could not create request: %w", err)
	}
	c.setHeaders(req, r.body != nil)
	if r.prefer != "" {
		req.Header.Set("Prefer", r.prefer)
	}

	resp, err := c.httpClient.Do(req) //nolint:gosec // URL built from the validated base URL
	if err != nil {
		return nil, fmt.Errorf("could not send request: %w", err)
	}
	defer resp.Body.Close()

	if !slices.Contains(expectedStatuses, resp.StatusCode) {
		return nil, decodeAPIError(resp.StatusCode, resp.Body)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("could not read response body: %w", err)
	}
	return body, nil
}

// doJSON performs the request and unmarshals a JSON response into T.
// An empty body yields the zero value of T.
func doJSON[T any](ctx context.Context, c *Client, r request, expectedStatuses ...int) (T, error) {
	var result T

	body, err := c.do(ctx, r, expectedStatuses...)
	if err != nil {
		return result, err
	}
	if len(bytes.TrimSpace(body)) == 0 {
		return result, nil
	}

	if err := json.Unmarshal(body, &result); err != nil {
		return result, fmt.Errorf("could not unmarshal response: %w", err)
	}
	return result, nil
}
