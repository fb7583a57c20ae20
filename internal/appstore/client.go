package appstore

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
	"golang.org/x/time/rate"

	"github.com/CalixtheMattei/apple-store-500-analytics/internal/language"
	"github.com/CalixtheMattei/apple-store-500-analytics/internal/review"
)

// ErrAppNotFound marks a feed response that carries no self link, which is
// how the feed signals an unknown app/country combination.
var ErrAppNotFound = errors.New("app not found in store feed")

// Feed limits imposed upstream: at most 10 pages of 50 reviews each.
const (
	maxFeedPages   = 10
	maxFeedReviews = 500
)

const defaultBaseURL = "https://itunes.apple.com"

// Options configures the feed client.
type Options struct {
	BaseURL string
	Timeout time.Duration
	// Delay is the injected pause between feed requests; the feed rate
	// limits aggressively.
	Delay  time.Duration
	Logger zerolog.Logger
}

// Client fetches raw reviews from the App Store customer-reviews feed. It
// is a black-box review source: one call yields a cohort's finite batch,
// and a partial failure means re-fetching the whole cohort.
type Client struct {
	httpClient *http.Client
	baseURL    string
	limiter    *rate.Limiter
	logger     zerolog.Logger
}

func NewClient(opts Options) *Client {
	baseURL := strings.TrimRight(strings.TrimSpace(opts.BaseURL), "/")
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	limiter := rate.NewLimiter(rate.Inf, 1)
	if opts.Delay > 0 {
		limiter = rate.NewLimiter(rate.Every(opts.Delay), 1)
	}

	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		limiter:    limiter,
		logger:     opts.Logger,
	}
}

// FetchRequest scopes one cohort fetch.
type FetchRequest struct {
	AppID   string
	AppName string
	Country string
	Source  string
}

// FetchReviews pulls every available review for one (app, country) pair,
// newest first, up to the feed's hard limits.
func (c *Client) FetchReviews(ctx context.Context, req FetchRequest) ([]review.RawReview, error) {
	if c == nil || c.httpClient == nil {
		return nil, fmt.Errorf("appstore client is not initialized")
	}

	appID := strings.TrimSpace(req.AppID)
	if appID == "" {
		return nil, fmt.Errorf("app ID is required")
	}
	req.Country = language.NormalizeCode(req.Country)
	if !language.IsCountryCode(req.Country) {
		return nil, fmt.Errorf("country %q is not a two-letter code", req.Country)
	}
	if strings.TrimSpace(req.Source) == "" {
		req.Source = review.DefaultSource
	}

	var reviews []review.RawReview
	for page := 1; page <= maxFeedPages; page++ {
		doc, err := c.fetchPage(ctx, req.Country, appID, page)
		if err != nil {
			return nil, fmt.Errorf("fetch page %d for app %s (%s): %w", page, appID, req.Country, err)
		}

		if !doc.hasSelfLink() {
			return nil, fmt.Errorf("%w: app %s country %s", ErrAppNotFound, appID, req.Country)
		}
		if len(doc.Feed.Entry) == 0 {
			break
		}

		for _, entry := range doc.Feed.Entry {
			raw, ok := parseEntry(entry, req)
			if !ok {
				continue
			}
			reviews = append(reviews, raw)
			if len(reviews) >= maxFeedReviews {
				return reviews, nil
			}
		}
	}

	c.logger.Debug().
		Str("app_id", appID).
		Str("country", req.Country).
		Int("reviews", len(reviews)).
		Msg("feed fetch finished")
	return reviews, nil
}

func (c *Client) fetchPage(ctx context.Context, country, appID string, page int) (*feedDocument, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	url := fmt.Sprintf("%s/%s/rss/customerreviews/page=%d/id=%s/sortby=mostrecent/json", c.baseURL, country, page, appID)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("request feed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read feed body: %w", err)
	}

	var doc feedDocument
	if err := json.Unmarshal(body, &doc); err != nil {
		return nil, fmt.Errorf("decode feed JSON: %w", err)
	}
	return &doc, nil
}
