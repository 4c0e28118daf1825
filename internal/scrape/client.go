// Package scrape acquires raw source documents: it lists recent blog posts
// from the publisher's JSON feed and fetches their content as markdown
// through a reader endpoint.
package scrape

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// ErrAcquisition marks a total acquisition failure (source unreachable,
// feed malformed). The pipeline aborts the run on it.
var ErrAcquisition = errors.New("acquisition failed")

// Document is one fetched source document.
type Document struct {
	URL      string
	Markdown string
}

// Client talks to the blog feed and the markdown reader.
type Client struct {
	feedURL     string
	readerURL   string
	titleFilter string
	maxDocs     int
	httpClient  *http.Client
}

// NewClient creates a Client. titleFilter is matched case-insensitively
// against post titles; maxDocs bounds how many candidates are returned.
func NewClient(feedURL, readerURL, titleFilter string, maxDocs int) *Client {
	if maxDocs <= 0 {
		maxDocs = 2
	}
	return &Client{
		feedURL:     strings.TrimRight(feedURL, "/"),
		readerURL:   strings.TrimRight(readerURL, "/"),
		titleFilter: strings.ToLower(titleFilter),
		maxDocs:     maxDocs,
		httpClient:  &http.Client{Timeout: 30 * time.Second},
	}
}

// feedPost is one entry of the publisher's post feed.
type feedPost struct {
	Title       string `json:"title"`
	URL         string `json:"url"`
	PublishedAt string `json:"published_at"`
}

// ListCandidateDocuments returns the URLs of the most recent posts whose
// title matches the configured filter, newest first, capped at the
// configured bound. An empty result is not an error.
func (c *Client) ListCandidateDocuments(ctx context.Context) ([]string, error) {
	body, err := c.get(ctx, c.feedURL)
	if err != nil {
		return nil, fmt.Errorf("%w: listing posts: %v", ErrAcquisition, err)
	}

	var posts []feedPost
	if err := json.Unmarshal(body, &posts); err != nil {
		return nil, fmt.Errorf("%w: decoding feed: %v", ErrAcquisition, err)
	}

	var urls []string
	for _, p := range posts {
		if c.titleFilter != "" && !strings.Contains(strings.ToLower(p.Title), c.titleFilter) {
			continue
		}
		urls = append(urls, p.URL)
		if len(urls) >= c.maxDocs {
			break
		}
	}
	return urls, nil
}

// FetchDocument retrieves a single post as markdown. When a reader endpoint
// is configured the post URL is passed through it; otherwise the post URL
// is fetched directly.
func (c *Client) FetchDocument(ctx context.Context, postURL string) (*Document, error) {
	target := postURL
	if c.readerURL != "" {
		target = c.readerURL + "/" + url.QueryEscape(postURL)
	}

	body, err := c.get(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("%w: fetching %s: %v", ErrAcquisition, postURL, err)
	}
	return &Document{URL: postURL, Markdown: string(body)}, nil
}

func (c *Client) get(ctx context.Context, u string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json, text/markdown, text/plain")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("GET %s: status %d: %s", u, resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return io.ReadAll(resp.Body)
}
