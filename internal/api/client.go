package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// Article is the subset of backend article fields used by the reader.
type Article struct {
	URL       string `json:"url"`
	Title     string `json:"title"`
	Source    string `json:"source"`
	SourceURL string `json:"source_url"`
	Date      string `json:"date"`
	Summary   string `json:"summary"`

	Bookmarked bool `json:"-"`
	Read       bool `json:"-"`
}

// ArticlesResponse is the payload of GET /api/articles.
type ArticlesResponse struct {
	Articles []Article `json:"articles"`
	Count    int       `json:"count"`
}

// HealthRecord describes the last fetch outcome of one feed.
type HealthRecord struct {
	LastSuccess  string `json:"last_success"`
	LastError    string `json:"last_error"`
	ErrorCount   int    `json:"error_count"`
	ArticleCount int    `json:"article_count"`
	ErrorMessage string `json:"error_message"`
}

// DiscoveredFeed is a feed advertised by a web page.
type DiscoveredFeed struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

type Client struct {
	baseURL string
	http    *http.Client
}

func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    httpClient,
	}
}

func (c *Client) FetchArticles(ctx context.Context) (ArticlesResponse, error) {
	var out ArticlesResponse
	if err := c.do(ctx, http.MethodGet, "/api/articles", nil, &out, "fetch articles"); err != nil {
		return ArticlesResponse{}, err
	}
	if out.Count < len(out.Articles) {
		out.Count = len(out.Articles)
	}
	return out, nil
}

func (c *Client) ListFeeds(ctx context.Context) ([]string, error) {
	var out struct {
		Feeds []string `json:"feeds"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/feeds", nil, &out, "list feeds"); err != nil {
		return nil, err
	}
	return out.Feeds, nil
}

func (c *Client) AddFeed(ctx context.Context, url string) error {
	return c.do(ctx, http.MethodPost, "/api/feeds", urlPayload{URL: url}, nil, "add feed")
}

func (c *Client) RemoveFeed(ctx context.Context, url string) error {
	return c.do(ctx, http.MethodPost, "/api/feeds/delete", urlPayload{URL: url}, nil, "remove feed")
}

func (c *Client) DiscoverFeeds(ctx context.Context, url string) ([]DiscoveredFeed, error) {
	var out struct {
		Feeds []DiscoveredFeed `json:"feeds"`
	}
	if err := c.do(ctx, http.MethodPost, "/api/feeds/discover", urlPayload{URL: url}, &out, "discover feeds"); err != nil {
		return nil, err
	}
	return out.Feeds, nil
}

func (c *Client) FeedHealth(ctx context.Context) (map[string]HealthRecord, error) {
	out := make(map[string]HealthRecord)
	if err := c.do(ctx, http.MethodGet, "/api/feeds/health", nil, &out, "feed health"); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) GetSettings(ctx context.Context) (Settings, error) {
	var out Settings
	if err := c.do(ctx, http.MethodGet, "/api/settings", nil, &out, "get settings"); err != nil {
		return Settings{}, err
	}
	return out, nil
}

func (c *Client) UpdateSettings(ctx context.Context, s Settings) (Settings, error) {
	var out Settings
	if err := c.do(ctx, http.MethodPut, "/api/settings", s, &out, "update settings"); err != nil {
		return Settings{}, err
	}
	return out, nil
}

// ImportOPML uploads an OPML document and returns how many feeds the backend added.
func (c *Client) ImportOPML(ctx context.Context, content string) (int, error) {
	var out struct {
		Added int `json:"added"`
	}
	payload := struct {
		Content string `json:"content"`
	}{Content: content}
	if err := c.do(ctx, http.MethodPost, "/api/feeds/opml/import", payload, &out, "import opml"); err != nil {
		return 0, err
	}
	return out.Added, nil
}

func (c *Client) ExportOPML(ctx context.Context) (string, error) {
	var out struct {
		OPML string `json:"opml"`
	}
	if err := c.do(ctx, http.MethodGet, "/api/feeds/opml/export", nil, &out, "export opml"); err != nil {
		return "", err
	}
	return out.OPML, nil
}

type urlPayload struct {
	URL string `json:"url"`
}

func (c *Client) do(ctx context.Context, method, path string, payload, out any, resource string) error {
	var body io.Reader
	if payload != nil {
		raw, err := json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("encode %s payload: %w", resource, err)
		}
		body = bytes.NewReader(raw)
	}

	req, err := c.newRequest(ctx, method, path, body)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("%s request failed: %w", resource, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("%s failed with status %d: %s", resource, resp.StatusCode, errorDetail(text))
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", resource, err)
	}
	return nil
}

// errorDetail prefers the FastAPI style {"detail": "..."} message over the raw body.
func errorDetail(body []byte) string {
	var detail struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &detail); err == nil && detail.Detail != "" {
		return detail.Detail
	}
	return strings.TrimSpace(string(body))
}

func (c *Client) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	fullURL := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, method, fullURL, body)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json; charset=utf-8")
	}
	return req, nil
}
