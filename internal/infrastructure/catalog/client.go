package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
)

// Result is one book hit from the external catalog search API.
type Result struct {
	CatalogID string `json:"catalog_id"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	Year      int    `json:"year,omitempty"`
	CoverID   int    `json:"cover_id,omitempty"`
}

// Client queries an Open Library-compatible search endpoint so users can
// prefill book details instead of typing them.
type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: baseURL, http: httpClient}
}

// searchDoc mirrors the subset of the search.json document shape we use.
type searchDoc struct {
	Key              string   `json:"key"`
	Title            string   `json:"title"`
	AuthorName       []string `json:"author_name"`
	FirstPublishYear int      `json:"first_publish_year"`
	CoverI           int      `json:"cover_i"`
}

type searchResponse struct {
	Docs []searchDoc `json:"docs"`
}

// Search runs a free-text query and returns up to limit results.
func (c *Client) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	if limit <= 0 {
		limit = 10
	}
	u := fmt.Sprintf("%s/search.json?q=%s&limit=%d", c.baseURL, url.QueryEscape(query), limit)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build catalog request: %w", err)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog returned status %d", resp.StatusCode)
	}
	var out searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode catalog response: %w", err)
	}
	results := make([]Result, 0, len(out.Docs))
	for _, d := range out.Docs {
		r := Result{
			CatalogID: d.Key,
			Title:     d.Title,
			Year:      d.FirstPublishYear,
			CoverID:   d.CoverI,
		}
		if len(d.AuthorName) > 0 {
			r.Author = d.AuthorName[0]
		}
		results = append(results, r)
	}
	return results, nil
}
