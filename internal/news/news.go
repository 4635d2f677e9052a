// Package news retrieves and normalizes articles from the configured RSS
// feed. A failed fetch or parse yields an empty item list, never an error:
// "no news" is a valid render state and the dashboard proceeds without the
// panel.
package news

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	appLog "inkdash/internal/log"
	"inkdash/internal/model"
	"inkdash/internal/sanitize"
)

// Known feed identifiers. Unknown identifiers fall back to FeedTagesschau.
const (
	FeedTagesschau = "tagesschau"
	FeedGolem      = "golem"
)

// promoPrefix marks promotional items that are excluded before counting
// toward the requested maximum.
const promoPrefix = "anzeige:"

var feedURLs = map[string]string{
	FeedTagesschau: "https://www.tagesschau.de/xml/rss2/",
	FeedGolem:      "https://rss.golem.de/rss.php?feed=RSS2.0",
}

// Fetcher retrieves RSS feeds with a bounded timeout.
type Fetcher struct {
	parser *gofeed.Parser

	// urlOverride replaces the feed URL lookup in tests.
	urlOverride string
}

// NewFetcher creates a Fetcher with a 10 second HTTP timeout.
func NewFetcher() *Fetcher {
	p := gofeed.NewParser()
	p.Client = &http.Client{Timeout: 10 * time.Second}
	p.UserAgent = "inkdash/1.0"
	return &Fetcher{parser: p}
}

// Fetch returns up to maxItems sanitized items from the identified feed,
// in feed order. Promotional items never appear and never consume a slot.
// Network or parse failures log an error and return an empty slice.
func (f *Fetcher) Fetch(ctx context.Context, feedID string, maxItems int) []model.NewsItem {
	url, ok := feedURLs[feedID]
	if !ok {
		url = feedURLs[FeedTagesschau]
	}
	if f.urlOverride != "" {
		url = f.urlOverride
	}

	feed, err := f.parser.ParseURLWithContext(url, ctx)
	if err != nil {
		appLog.Error("news feed fetch failed", err, "feed", feedID)
		return []model.NewsItem{}
	}

	items := make([]model.NewsItem, 0, maxItems)
	for _, entry := range feed.Items {
		if len(items) >= maxItems {
			break
		}

		title := strings.TrimSpace(entry.Title)
		if title != "" && strings.HasPrefix(strings.ToLower(title), promoPrefix) {
			appLog.Debug("skipping promotional item", "title", title)
			continue
		}

		// gofeed exposes content:encoded as Item.Content. Only golem is
		// known to embed full HTML there; everything else keeps its plain
		// description and at most contributes an image.
		var description string
		if feedID == FeedGolem && entry.Content != "" {
			description = sanitize.CleanRich(entry.Content)
		} else {
			description = sanitize.CleanSimple(entry.Description)
		}

		items = append(items, model.NewsItem{
			Title:       title,
			Description: description,
			Image:       sanitize.ExtractImageURL(entry.Content),
		})
	}

	appLog.Debug("news loaded", "feed", feedID, "count", len(items))
	if len(items) == 0 {
		appLog.Warn("news: no items found", "feed", feedID)
	}
	return items
}
