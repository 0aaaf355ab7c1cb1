package form

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/heladeria/order-form-api/models"
)

const (
	defaultTimeout = 10 * time.Second

	fetchPath  = "/api/fetchData"
	submitPath = "/api/submit"

	// maxErrorBody bounds how much of an error response is read
	maxErrorBody = 64 * 1024
)

// Option is one selectable flavor
type Option struct {
	Value string
	Label string
}

// Client talks to the flavor source and the append endpoint
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// ClientOption configures a Client
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout sets the per-request timeout. It works on a copy, so a client
// passed to WithHTTPClient is left untouched.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		httpClient := *c.httpClient
		httpClient.Timeout = timeout
		c.httpClient = &httpClient
	}
}

// NewClient creates a client for the API served at baseURL
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type fetchResponse struct {
	Rows [][]string `json:"rows"`
}

// FetchFlavors loads the flavor options. Each row contributes its first cell.
func (c *Client) FetchFlavors(ctx context.Context) ([]Option, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+fetchPath, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch flavors: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp)
	}

	var body fetchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode flavors: %w", err)
	}

	options := make([]Option, 0, len(body.Rows))
	for _, row := range body.Rows {
		if len(row) == 0 {
			continue
		}
		options = append(options, Option{Value: row[0], Label: row[0]})
	}
	return options, nil
}

type apiError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type submitResponse struct {
	Success *bool     `json:"success"`
	Message string    `json:"message"`
	Error   *apiError `json:"error"`
	Data    *struct {
		TableRange string `json:"tableRange"`
	} `json:"data"`
}

// SubmitOrder posts order and returns the table range reported by the spreadsheet
func (c *Client) SubmitOrder(ctx context.Context, order models.OrderSubmission) (string, error) {
	payload, err := json.Marshal(order)
	if err != nil {
		return "", fmt.Errorf("failed to encode order: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+submitPath, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to submit order: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", decodeError(resp)
	}

	var body submitResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", &SubmitError{Status: resp.StatusCode, Message: "malformed response from order API"}
	}

	// A 2xx body can still carry an error indicator
	if (body.Success != nil && !*body.Success) || body.Error != nil {
		return "", newSubmitError(resp.StatusCode, body.Message, body.Error)
	}
	if body.Data == nil {
		return "", &SubmitError{Status: resp.StatusCode, Message: "response has no data"}
	}

	return body.Data.TableRange, nil
}

// decodeError builds a SubmitError from a non-2xx response, tolerating non-JSON bodies
func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))

	var body submitResponse
	if err := json.Unmarshal(raw, &body); err != nil {
		return &SubmitError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}
	return newSubmitError(resp.StatusCode, body.Message, body.Error)
}

func newSubmitError(status int, message string, apiErr *apiError) *SubmitError {
	out := &SubmitError{Status: status, Message: message}
	if apiErr != nil {
		out.Code = apiErr.Code
		if out.Message == "" {
			out.Message = apiErr.Message
		}
	}
	if out.Message == "" {
		out.Message = http.StatusText(status)
	}
	return out
}
