package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"eventease/internal/middleware"
	"eventease/internal/models"
)

// APIError is a non-2xx response. Message is the server's error text, shown to the user as is.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

// IsStatus reports whether err is an APIError with the given status code
func IsStatus(err error, code int) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == code
}

type Config struct {
	BaseURL string
	UserID  string
	Timeout time.Duration
}

// Client calls the EventEase HTTP API as one user
type Client struct {
	baseURL    string
	userID     string
	httpClient *http.Client
}

func New(cfg Config) *Client {
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}

	return &Client{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		userID:  cfg.UserID,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// UserID returns the identity sent with every request
func (c *Client) UserID() string {
	return c.userID
}

// Search fetches events matching the query together with the user's registrations
func (c *Client) Search(ctx context.Context, query string) (*models.SearchResult, error) {
	return c.ListEvents(ctx, models.ListEventsQuery{Query: query})
}

func (c *Client) ListEvents(ctx context.Context, q models.ListEventsQuery) (*models.SearchResult, error) {
	params := url.Values{}
	if q.Query != "" {
		params.Set("query", q.Query)
	}
	if q.Filter != "" {
		params.Set("filter", string(q.Filter))
	}

	path := "/api/events"
	if len(params) > 0 {
		path += "?" + params.Encode()
	}

	var result models.SearchResult
	if err := c.do(ctx, http.MethodGet, path, nil, http.StatusOK, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) Register(ctx context.Context, eventID, ticketTypeID string) (*models.RegisterResult, error) {
	req := models.RegisterRequest{
		EventID:      eventID,
		TicketTypeID: ticketTypeID,
	}

	var result models.RegisterResult
	if err := c.do(ctx, http.MethodPost, "/api/registrations", req, http.StatusCreated, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) Unregister(ctx context.Context, eventID string) (*models.UnregisterResult, error) {
	var result models.UnregisterResult
	if err := c.do(ctx, http.MethodDelete, "/api/registrations/"+url.PathEscape(eventID), nil, http.StatusOK, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) ListRegistrations(ctx context.Context) (*models.RegistrationsResponse, error) {
	var result models.RegistrationsResponse
	if err := c.do(ctx, http.MethodGet, "/api/registrations", nil, http.StatusOK, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) Categories(ctx context.Context) ([]models.Category, error) {
	var result struct {
		Categories []models.Category `json:"categories"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/categories", nil, http.StatusOK, &result); err != nil {
		return nil, err
	}
	return result.Categories, nil
}

func (c *Client) EventStats(ctx context.Context, eventID string) (*models.EventStats, error) {
	var result models.EventStats
	if err := c.do(ctx, http.MethodGet, "/api/events/"+url.PathEscape(eventID)+"/stats", nil, http.StatusOK, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, wantStatus int, out any) error {
	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request: %w", err)
		}
		reqBody = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(middleware.HeaderUserID, c.userID)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != wantStatus {
		return decodeError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var errResp models.ErrorResponse
	if err := json.Unmarshal(data, &errResp); err == nil && errResp.Error != "" {
		return &APIError{StatusCode: resp.StatusCode, Message: errResp.Error}
	}

	message := strings.TrimSpace(string(data))
	if message == "" {
		message = http.StatusText(resp.StatusCode)
	}
	return &APIError{StatusCode: resp.StatusCode, Message: message}
}
