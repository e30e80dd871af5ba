// Package airtable is a minimal read-only client for the Airtable REST API.
// It scans one table in full and hands back raw records; all interpretation
// of the loosely-typed field map happens downstream in the content package.
package airtable

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// DefaultBaseURL is the public Airtable API endpoint.
const DefaultBaseURL = "https://api.airtable.com/v0"

// Record is one row of the source table. Fields is an opaque map: values
// may be strings, wrapped objects, attachment arrays, or absent entirely.
type Record struct {
	ID     string         `json:"id"`
	Fields map[string]any `json:"fields"`
}

type listResponse struct {
	Records []Record `json:"records"`
	Offset  string   `json:"offset"`
}

// Client fetches records from a single Airtable base and table.
type Client struct {
	BaseURL string
	APIKey  string
	BaseID  string
	Table   string

	httpClient *http.Client
}

// New creates a Client for the given base and table.
func New(apiKey, baseID, table string) *Client {
	return &Client{
		BaseURL: DefaultBaseURL,
		APIKey:  apiKey,
		BaseID:  baseID,
		Table:   table,
		httpClient: &http.Client{
			Timeout: 15 * time.Second,
		},
	}
}

// ListRecords scans the whole table, following the API's offset cursor
// until exhausted. No filtering or sorting is pushed to the source; the
// resolver pipeline owns all of that.
func (c *Client) ListRecords(ctx context.Context) ([]Record, error) {
	var all []Record
	offset := ""
	for {
		page, next, err := c.listPage(ctx, offset)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if next == "" {
			return all, nil
		}
		offset = next
	}
}

func (c *Client) listPage(ctx context.Context, offset string) ([]Record, string, error) {
	u := fmt.Sprintf("%s/%s/%s", c.BaseURL, url.PathEscape(c.BaseID), url.PathEscape(c.Table))
	if offset != "" {
		u += "?offset=" + url.QueryEscape(offset)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, "", fmt.Errorf("airtable: build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("airtable: fetch %s/%s: %w", c.BaseID, c.Table, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, "", fmt.Errorf("airtable: fetch %s/%s: status %d: %s", c.BaseID, c.Table, resp.StatusCode, string(body))
	}

	var lr listResponse
	if err := json.NewDecoder(resp.Body).Decode(&lr); err != nil {
		return nil, "", fmt.Errorf("airtable: decode response: %w", err)
	}
	return lr.Records, lr.Offset, nil
}
