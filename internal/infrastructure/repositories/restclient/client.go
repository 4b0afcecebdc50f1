// Package restclient is a small JSON client for the CI platforms that have
// no SDK in this module (Azure DevOps and Bitbucket).
package restclient

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// DefaultTimeout bounds every request made by a Client.
const DefaultTimeout = 10 * time.Second

// Authorizer sets credentials on an outgoing request.
type Authorizer func(req *http.Request)

// BasicPAT authenticates with a personal access token and an empty user, as Azure DevOps expects.
func BasicPAT(token string) Authorizer {
	return func(req *http.Request) {
		auth := base64.StdEncoding.EncodeToString([]byte(":" + token))
		req.Header.Set("Authorization", "Basic "+auth)
	}
}

// Bearer authenticates with an OAuth or access token.
func Bearer(token string) Authorizer {
	return func(req *http.Request) {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}

// Client represents a JSON API client rooted at a base URL.
type Client struct {
	baseURL    string
	authorize  Authorizer
	httpClient *http.Client
}

// NewClient creates a client. A nil authorizer sends anonymous requests.
func NewClient(baseURL string, authorize Authorizer) *Client {
	return &Client{
		baseURL:   strings.TrimSuffix(baseURL, "/"),
		authorize: authorize,
		httpClient: &http.Client{
			Timeout: DefaultTimeout,
		},
	}
}

// Get decodes the JSON body of a GET request into out.
func (c *Client) Get(ctx context.Context, endpoint string, out any) error {
	_, err := c.GetWithHeaders(ctx, endpoint, out)
	return err
}

// GetWithHeaders decodes the JSON body of a GET request into out and returns
// the response headers, which carry continuation tokens on paged APIs.
func (c *Client) GetWithHeaders(ctx context.Context, endpoint string, out any) (http.Header, error) {
	resp, header, err := c.doRequest(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}
	if err = json.Unmarshal(resp, out); err != nil {
		return nil, fmt.Errorf("failed to parse response of %s: %w", endpoint, err)
	}
	return header, nil
}

// Post sends body as JSON and discards the response.
func (c *Client) Post(ctx context.Context, endpoint string, body any) error {
	_, _, err := c.doRequest(ctx, http.MethodPost, endpoint, body)
	return err
}

func (c *Client) doRequest(ctx context.Context, method, endpoint string, body any) ([]byte, http.Header, error) {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reqBody = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, reqBody)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create request: %w", err)
	}

	if c.authorize != nil {
		c.authorize(req)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return nil, nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	return respBody, resp.Header, nil
}
