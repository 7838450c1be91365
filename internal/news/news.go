// Package news fetches recent headlines for a ticker from an RSS feed.
package news

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/mmcdole/gofeed"
	"github.com/rs/zerolog"

	"github.com/seenimoa/divlens/internal/infra"
	"github.com/seenimoa/divlens/pkg/models"
	"github.com/seenimoa/divlens/pkg/utils"
)

const (
	// CacheTTL is how long a symbol's headlines are served from memory.
	CacheTTL = 15 * time.Minute

	cacheSize    = 256
	defaultLimit = 10
	sourceName   = "Yahoo Finance"
)

// ErrDisabled is returned when headline fetching is switched off.
var ErrDisabled = errors.New("news: disabled")

// Client fetches and caches per-symbol headlines.
type Client struct {
	feedURL string // %s is replaced by the symbol
	limit   int
	http    *infra.Client
	parser  *gofeed.Parser
	cache   *expirable.LRU[string, []models.Headline]
	log     zerolog.Logger
}

// NewClient creates a headline client for a feed URL template. A zero limit
// falls back to 10 headlines.
func NewClient(feedURL string, limit int, httpClient *infra.Client, log zerolog.Logger) *Client {
	if limit <= 0 {
		limit = defaultLimit
	}
	if httpClient == nil {
		httpClient = infra.Default()
	}
	return &Client{
		feedURL: feedURL,
		limit:   limit,
		http:    httpClient,
		parser:  gofeed.NewParser(),
		cache:   expirable.NewLRU[string, []models.Headline](cacheSize, nil, CacheTTL),
		log:     log.With().Str("component", "news").Logger(),
	}
}

// Headlines returns up to limit headlines for symbol, newest first. A
// non-positive limit uses the client default.
func (c *Client) Headlines(ctx context.Context, ticker string, limit int) ([]models.Headline, error) {
	if c == nil || c.feedURL == "" {
		return nil, ErrDisabled
	}
	symbol, err := utils.ValidateTicker(ticker)
	if err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = c.limit
	}

	items, ok := c.cache.Get(symbol)
	if !ok {
		items, err = c.fetch(ctx, symbol)
		if err != nil {
			return nil, err
		}
		c.cache.Add(symbol, items)
	}

	if len(items) > limit {
		items = items[:limit]
	}
	out := make([]models.Headline, len(items))
	copy(out, items)
	return out, nil
}

func (c *Client) fetch(ctx context.Context, symbol string) ([]models.Headline, error) {
	url := c.feedURL
	if strings.Contains(url, "%s") {
		url = fmt.Sprintf(url, symbol)
	}

	body, err := c.http.Get(ctx, url, map[string]string{"Accept": "application/rss+xml, application/xml"})
	if err != nil {
		return nil, fmt.Errorf("fetch headlines for %s: %w", symbol, err)
	}
	feed, err := c.parser.ParseString(string(body))
	if err != nil {
		return nil, fmt.Errorf("parse headlines for %s: %w", symbol, err)
	}

	type dated struct {
		h  models.Headline
		at time.Time
	}
	rows := make([]dated, 0, len(feed.Items))
	for _, item := range feed.Items {
		title := strings.TrimSpace(item.Title)
		if title == "" {
			continue
		}
		h := models.Headline{
			Title:   title,
			URL:     item.Link,
			Source:  sourceName,
			Summary: cleanHTML(item.Description),
			Tickers: []string{symbol},
		}
		h.Tone = ScoreTone(h.Title + " " + h.Summary)
		h.ToneLabel = ToneLabel(h.Tone)
		var at time.Time
		if item.PublishedParsed != nil {
			at = item.PublishedParsed.UTC()
			h.PublishedAt = at.Format(time.RFC3339)
		}
		rows = append(rows, dated{h, at})
	}
	sort.SliceStable(rows, func(i, j int) bool { return rows[i].at.After(rows[j].at) })

	out := make([]models.Headline, len(rows))
	for i, r := range rows {
		out[i] = r.h
	}
	c.log.Debug().Str("symbol", symbol).Int("count", len(out)).Msg("Fetched headlines")
	return out, nil
}

// cleanHTML strips markup from a feed summary.
func cleanHTML(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader("<body>" + s + "</body>"))
	if err != nil {
		return s
	}
	return strings.Join(strings.Fields(doc.Text()), " ")
}
