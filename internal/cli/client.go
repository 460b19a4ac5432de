package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"

	"github.com/VXerys/artconnect-crm-sub001/internal/domain"
	apperrors "github.com/VXerys/artconnect-crm-sub001/internal/shared/errors"
)

// Client calls the ArtConnect HTTP API as the configured actor.
type Client struct {
	baseURL    string
	subject    string
	roles      string
	httpClient *http.Client
}

// NewClient creates an API client from cfg.
func NewClient(cfg *Config) *Client {
	return &Client{
		baseURL:    cfg.Endpoint,
		subject:    cfg.Subject,
		roles:      cfg.Roles,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// GenerateRequest is the body of a report generation call. Dates are
// YYYY-MM-DD; both may be empty.
type GenerateRequest struct {
	Type        string `json:"type"`
	PeriodStart string `json:"periodStart,omitempty"`
	PeriodEnd   string `json:"periodEnd,omitempty"`
}

// GenerateReport asks the service to generate and store a report.
func (c *Client) GenerateReport(ctx context.Context, artistID uuid.UUID, req GenerateRequest) (*domain.Report, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	var report domain.Report
	if err := c.do(ctx, http.MethodPost, c.artistURL(artistID, "/reports", nil), bytes.NewReader(body), http.StatusCreated, &report); err != nil {
		return nil, err
	}
	return &report, nil
}

// ListReports lists stored reports, newest first.
func (c *Client) ListReports(ctx context.Context, artistID uuid.UUID, reportType string, limit int) ([]domain.Report, error) {
	query := url.Values{}
	if reportType != "" {
		query.Set("type", reportType)
	}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	var resp struct {
		Items []domain.Report `json:"items"`
	}
	if err := c.do(ctx, http.MethodGet, c.artistURL(artistID, "/reports", query), nil, http.StatusOK, &resp); err != nil {
		return nil, err
	}
	return resp.Items, nil
}

func (c *Client) artistURL(artistID uuid.UUID, path string, query url.Values) string {
	u := fmt.Sprintf("%s/api/v1/artists/%s%s", c.baseURL, artistID, path)
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

func (c *Client) do(ctx context.Context, method, u string, body io.Reader, want int, dest any) error {
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Language", "id")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.subject != "" {
		req.Header.Set("X-Actor-Subject", c.subject)
	}
	if c.roles != "" {
		req.Header.Set("X-Actor-Roles", c.roles)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != want {
		var apiErr apperrors.Error
		if json.Unmarshal(data, &apiErr) == nil && apiErr.Code != "" {
			return fmt.Errorf("api returned %d: %w", resp.StatusCode, &apiErr)
		}
		return fmt.Errorf("api returned %d: %s", resp.StatusCode, bytes.TrimSpace(data))
	}
	if err := json.Unmarshal(data, dest); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
