// Copyright 2026 Stock Parfait

// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at

//     http://www.apache.org/licenses/LICENSE-2.0

// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package borsdata

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"

	"github.com/stockparfait/borsdata/ratelimit"
	"github.com/stockparfait/errors"
	"github.com/stockparfait/fetch"
	"github.com/stockparfait/logging"
)

// URL is the default base URL of the server. It may be overwritten in tests
// before creating a new client.
var URL = "https://apiservice.borsdata.se/v1"

// Params are the paging and window parameters sent with every request.
type Params struct {
	MaxYearCount int // number of yearly reports
	MaxR12QCount int // number of quarterly and rolling 12 month reports
	MaxCount     int // number of price rows
}

// DefaultParams returns the parameters used unless overridden.
func DefaultParams() Params {
	return Params{MaxYearCount: 20, MaxR12QCount: 40, MaxCount: 20}
}

// Client for the Borsdata API. All requests of a client are serialized and
// spaced by its rate limiter.
type Client struct {
	baseURL    string
	apiKey     string
	params     Params
	httpClient *http.Client

	mu      sync.Mutex // guards limiter and serializes requests
	limiter *ratelimit.Limiter
}

// NewClient creates a client for the given API key with the default base URL,
// parameters and a rate limit of ratelimit.DefaultCallsPerSecond.
func NewClient(apiKey string) *Client {
	return &Client{
		baseURL:    URL,
		apiKey:     apiKey,
		params:     DefaultParams(),
		httpClient: http.DefaultClient,
		limiter:    ratelimit.New(ratelimit.DefaultCallsPerSecond),
	}
}

// WithBaseURL overrides the server URL.
func (c *Client) WithBaseURL(u string) *Client {
	c.baseURL = strings.TrimRight(u, "/")
	return c
}

// WithHTTPClient sets the HTTP client used for requests.
func (c *Client) WithHTTPClient(h *http.Client) *Client {
	c.httpClient = h
	return c
}

// WithLimiter replaces the rate limiter.
func (c *Client) WithLimiter(l *ratelimit.Limiter) *Client {
	c.limiter = l
	return c
}

// WithParams replaces the default paging parameters.
func (c *Client) WithParams(p Params) *Client {
	c.params = p
	return c
}

// APIError is returned when the server responds with a non-2xx status. Body is
// the raw response body, unmodified.
type APIError struct {
	URL        string // without the query, which contains the API key
	StatusCode int
	Status     string
	Body       []byte
}

func (e *APIError) Error() string {
	return fmt.Sprintf("API-Error, status code: %d, GET %s: %s",
		e.StatusCode, e.URL, strings.TrimSpace(string(e.Body)))
}

// values returns the query for a request: the key, the paging parameters and
// the endpoint's own values.
func (c *Client) values(extra url.Values) url.Values {
	v := make(url.Values)
	v.Set("authKey", c.apiKey)
	v.Set("maxYearCount", strconv.Itoa(c.params.MaxYearCount))
	v.Set("maxR12QCount", strconv.Itoa(c.params.MaxR12QCount))
	v.Set("maxCount", strconv.Itoa(c.params.MaxCount))
	for k, vs := range extra {
		v[k] = vs
	}
	return v
}

// get issues a rate-limited GET for the endpoint path and decodes the JSON
// response into v. Non-2xx responses are logged and returned as *APIError.
func (c *Client) get(ctx context.Context, path string, extra url.Values, v interface{}) error {
	uri := c.baseURL + "/" + path
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return errors.Annotate(err, "failed to create request for %s", path)
	}
	req.URL.RawQuery = c.values(extra).Encode()

	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.limiter.Wait(ctx); err != nil {
		return errors.Annotate(err, "rate limiter wait failed for %s", path)
	}
	logging.Debugf(ctx, "Borsdata: GET %s", uri)
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.limiter.Done()
		return errors.Annotate(err, "GET %s failed", path)
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	c.limiter.Done()
	if err != nil {
		return errors.Annotate(err, "failed to read response body of %s", path)
	}
	if !fetch.ResponseOK(resp) {
		logging.Errorf(ctx, "API-Error, status code: %d", resp.StatusCode)
		return &APIError{
			URL:        uri,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       body,
		}
	}
	if err := json.Unmarshal(body, v); err != nil {
		return errors.Annotate(err, "failed to decode response of %s", path)
	}
	return nil
}

// pathf formats an endpoint path, escaping string arguments.
func pathf(format string, args ...interface{}) string {
	escaped := make([]interface{}, len(args))
	for i, a := range args {
		if s, ok := a.(string); ok {
			escaped[i] = url.PathEscape(s)
			continue
		}
		escaped[i] = a
	}
	return fmt.Sprintf(format, escaped...)
}

// annotate adds context to err. *APIError is passed through unchanged so that
// callers can inspect the raw response with a type assertion.
func annotate(err error, format string, args ...interface{}) error {
	if _, ok := err.(*APIError); ok {
		return err
	}
	return errors.Annotate(err, format, args...)
}
