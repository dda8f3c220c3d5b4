// Package wiki fetches and extracts Wikipedia articles, the source
// documents that seed character creation.
package wiki

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"
)

// Errors surfaced to the creation pipeline. The pipeline maps them onto its
// own error taxonomy.
var (
	ErrInvalidURL     = errors.New("invalid wikipedia URL format")
	ErrNotFound       = errors.New("wikipedia page not found")
	ErrDisambiguation = errors.New("wikipedia page is a disambiguation page")
)

var wikipediaURLPattern = regexp.MustCompile(`^https?://(en\.)?wikipedia\.org/wiki/.+`)

// ValidateURL reports whether ref looks like a Wikipedia article URL.
func ValidateURL(ref string) bool {
	return wikipediaURLPattern.MatchString(ref)
}

// Document is the ephemeral article snapshot consumed by profile synthesis.
// It is produced per creation request and never stored verbatim.
type Document struct {
	Title        string
	Summary      string
	Extract      string
	ThumbnailURL string
	SourceURL    string
}

// Client resolves a Wikipedia article URL into a Document.
type Client interface {
	Fetch(ctx context.Context, articleURL string) (*Document, error)
}

// HTTPClient talks to the Wikipedia REST and action APIs.
type HTTPClient struct {
	httpClient     *http.Client
	apiBase        string
	extractCharCap int
}

// Option configures an HTTPClient.
type Option func(*HTTPClient)

// WithBaseURL overrides the Wikipedia API host, used by tests.
func WithBaseURL(base string) Option {
	return func(c *HTTPClient) { c.apiBase = strings.TrimRight(base, "/") }
}

// WithHTTPClient substitutes the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) { c.httpClient = hc }
}

// NewHTTPClient builds a client. extractCharCap bounds the plain-text
// extract to keep downstream prompts within token budget.
func NewHTTPClient(extractCharCap int, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		httpClient:     &http.Client{Timeout: 15 * time.Second},
		apiBase:        "https://en.wikipedia.org",
		extractCharCap: extractCharCap,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

type summaryResponse struct {
	Type      string `json:"type"`
	Title     string `json:"title"`
	Extract   string `json:"extract"`
	Thumbnail *struct {
		Source string `json:"source"`
	} `json:"thumbnail"`
}

type extractResponse struct {
	Query struct {
		Pages map[string]struct {
			Extract string `json:"extract"`
		} `json:"pages"`
	} `json:"query"`
}

// Fetch resolves the article behind articleURL. It returns ErrInvalidURL for
// malformed references, ErrNotFound for missing pages and ErrDisambiguation
// when the reference resolves to multiple candidate articles.
func (c *HTTPClient) Fetch(ctx context.Context, articleURL string) (*Document, error) {
	title, err := titleFromURL(articleURL)
	if err != nil {
		return nil, err
	}

	summary, err := c.fetchSummary(ctx, title)
	if err != nil {
		return nil, err
	}
	if summary.Type == "disambiguation" {
		return nil, ErrDisambiguation
	}

	fullText, err := c.fetchExtract(ctx, title)
	if err != nil {
		return nil, err
	}
	if len(fullText) > c.extractCharCap {
		fullText = fullText[:c.extractCharCap]
	}

	doc := &Document{
		Title:     summary.Title,
		Summary:   summary.Extract,
		Extract:   fullText,
		SourceURL: articleURL,
	}
	if summary.Thumbnail != nil {
		doc.ThumbnailURL = summary.Thumbnail.Source
	}
	return doc, nil
}

func titleFromURL(articleURL string) (string, error) {
	if !ValidateURL(articleURL) {
		return "", ErrInvalidURL
	}
	idx := strings.Index(articleURL, "/wiki/")
	slug := articleURL[idx+len("/wiki/"):]
	if cut := strings.IndexAny(slug, "#?"); cut != -1 {
		slug = slug[:cut]
	}
	decoded, err := url.PathUnescape(slug)
	if err != nil {
		return "", ErrInvalidURL
	}
	title := strings.ReplaceAll(decoded, "_", " ")
	if strings.TrimSpace(title) == "" {
		return "", ErrInvalidURL
	}
	return title, nil
}

func (c *HTTPClient) fetchSummary(ctx context.Context, title string) (*summaryResponse, error) {
	endpoint := c.apiBase + "/api/rest_v1/page/summary/" + url.PathEscape(title)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("wikipedia summary request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("wikipedia summary request returned status %d", resp.StatusCode)
	}

	var summary summaryResponse
	if err := json.NewDecoder(resp.Body).Decode(&summary); err != nil {
		return nil, fmt.Errorf("failed to decode wikipedia summary: %w", err)
	}
	return &summary, nil
}

func (c *HTTPClient) fetchExtract(ctx context.Context, title string) (string, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("format", "json")
	params.Set("prop", "extracts")
	params.Set("exintro", "false")
	params.Set("explaintext", "true")
	params.Set("titles", title)
	endpoint := c.apiBase + "/w/api.php?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return "", err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("wikipedia extract request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("wikipedia extract request returned status %d", resp.StatusCode)
	}

	var extract extractResponse
	if err := json.NewDecoder(resp.Body).Decode(&extract); err != nil {
		return "", fmt.Errorf("failed to decode wikipedia extract: %w", err)
	}

	for _, page := range extract.Query.Pages {
		return page.Extract, nil
	}
	return "", nil
}
