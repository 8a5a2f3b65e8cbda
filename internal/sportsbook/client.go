package sportsbook

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/cypherlabdev/sportsbook-explorer/internal/models"
)

const (
	defaultBaseURL        = "https://sportsbook-nash.draftkings.com/api/sportscontent/dkusoh/v1"
	defaultUserAgent      = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/110.0.0.0 Safari/537.36"
	defaultAcceptLanguage = "en-US,en;q=0.9"
	defaultTimeout        = 30 * time.Second
	defaultMaxBodyBytes   = 32 << 20
)

// Client fetches category listings from the sportsbook content API
type Client struct {
	baseURL        string
	userAgent      string
	acceptLanguage string
	maxBodyBytes   int64
	client         *http.Client
	logger         zerolog.Logger
}

// ClientConfig holds sportsbook client configuration
type ClientConfig struct {
	BaseURL        string        // e.g., "https://sportsbook-nash.draftkings.com/api/sportscontent/dkusoh/v1"
	Timeout        time.Duration // e.g., 30 * time.Second
	UserAgent      string
	AcceptLanguage string
	MaxBodyBytes   int64 // larger responses fail with a FormatError; default 32 MiB
}

// NewClient creates a new sportsbook client
func NewClient(config ClientConfig, logger zerolog.Logger) *Client {
	baseURL := strings.TrimSuffix(config.BaseURL, "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	userAgent := config.UserAgent
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	acceptLanguage := config.AcceptLanguage
	if acceptLanguage == "" {
		acceptLanguage = defaultAcceptLanguage
	}
	maxBodyBytes := config.MaxBodyBytes
	if maxBodyBytes <= 0 {
		maxBodyBytes = defaultMaxBodyBytes
	}

	return &Client{
		baseURL:        baseURL,
		userAgent:      userAgent,
		acceptLanguage: acceptLanguage,
		maxBodyBytes:   maxBodyBytes,
		client:         &http.Client{Timeout: timeout},
		logger:         logger.With().Str("component", "sportsbook_client").Logger(),
	}
}

// CategoryURL builds the listing URL for a query.
// GET {base}/leagues/{league}/categories/{category}[/subcategories/{sub}]
func (c *Client) CategoryURL(q models.Query) string {
	u := fmt.Sprintf("%s/leagues/%d/categories/%d", c.baseURL, q.LeagueID, q.CategoryID)
	if q.SubcategoryID > 0 {
		u = fmt.Sprintf("%s/subcategories/%d", u, q.SubcategoryID)
	}
	return u
}

// FetchCategory performs a single GET for the query and decodes the feed.
// Failures are *NetworkError or *FormatError.
func (c *Client) FetchCategory(ctx context.Context, q models.Query) (*Document, error) {
	url := c.CategoryURL(q)

	c.logger.Debug().
		Int64("league_id", q.LeagueID).
		Int64("category_id", q.CategoryID).
		Int64("subcategory_id", q.SubcategoryID).
		Str("url", url).
		Msg("fetching category feed")

	body, err := c.get(ctx, url)
	if err != nil {
		return nil, err
	}

	var raw documentJSON
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, &FormatError{URL: url, Reason: "response is not valid JSON", Err: err}
	}
	if raw.Selections == nil {
		return nil, &FormatError{URL: url, Reason: "response has no selections"}
	}

	doc := &Document{
		Markets:    raw.Markets,
		Selections: *raw.Selections,
	}

	c.logger.Info().
		Int("markets", len(doc.Markets)).
		Int("selections", len(doc.Selections)).
		Msg("fetched category feed")

	return doc, nil
}

// FetchSelections fetches the feed and flattens it into labelled selections
func (c *Client) FetchSelections(ctx context.Context, q models.Query) (*models.Batch, error) {
	doc, err := c.FetchCategory(ctx, q)
	if err != nil {
		return nil, err
	}

	batch := Extract(doc, q.SubcategoryID)
	if batch.Skipped > 0 {
		c.logger.Warn().
			Int("skipped", batch.Skipped).
			Msg("skipped selections without readable odds")
	}
	if len(batch.Selections) == 0 {
		c.logger.Info().Msg("no bets found for this combination")
	}

	return batch, nil
}

func (c *Client) get(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, &NetworkError{URL: url, Err: fmt.Errorf("new request: %w", err)}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept-Language", c.acceptLanguage)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &NetworkError{URL: url, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// drain so the connection can be reused
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
		return nil, &NetworkError{
			URL:        url,
			StatusCode: resp.StatusCode,
			Err:        errors.New(http.StatusText(resp.StatusCode)),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodyBytes+1))
	if err != nil {
		return nil, &NetworkError{URL: url, Err: fmt.Errorf("read body: %w", err)}
	}
	if int64(len(body)) > c.maxBodyBytes {
		return nil, &FormatError{URL: url, Reason: fmt.Sprintf("response exceeds %d bytes", c.maxBodyBytes)}
	}
	return body, nil
}
