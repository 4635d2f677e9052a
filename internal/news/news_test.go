package news

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func rssBody(items ...string) string {
	return `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0" xmlns:content="http://purl.org/rss/1.0/modules/content/">
<channel>
<title>Testfeed</title>
<link>http://example.test/</link>
` + strings.Join(items, "\n") + `
</channel>
</rss>`
}

func rssItem(title, description, contentEncoded string) string {
	item := "<item><title>" + title + "</title><description>" + description + "</description>"
	if contentEncoded != "" {
		item += "<content:encoded><![CDATA[" + contentEncoded + "]]></content:encoded>"
	}
	return item + "</item>"
}

func serveRSS(t *testing.T, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchExcludesPromotionalItems(t *testing.T) {
	srv := serveRSS(t, rssBody(
		rssItem("Anzeige: Werbung", "Promo", ""),
		rssItem("Echte Meldung", "Inhalt", ""),
	))

	f := NewFetcher()
	f.urlOverride = srv.URL
	items := f.Fetch(context.Background(), FeedTagesschau, 10)

	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}
	if items[0].Title != "Echte Meldung" {
		t.Errorf("title: got %q, want %q", items[0].Title, "Echte Meldung")
	}
	for _, it := range items {
		if strings.HasPrefix(strings.ToLower(it.Title), "anzeige:") {
			t.Errorf("promotional item leaked: %q", it.Title)
		}
	}
}

func TestFetchPromotionalItemsDoNotConsumeSlots(t *testing.T) {
	srv := serveRSS(t, rssBody(
		rssItem("Anzeige: Werbung", "Promo", ""),
		rssItem("Meldung 1", "a", ""),
		rssItem("Meldung 2", "b", ""),
	))

	f := NewFetcher()
	f.urlOverride = srv.URL
	items := f.Fetch(context.Background(), FeedTagesschau, 2)

	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	if items[0].Title != "Meldung 1" || items[1].Title != "Meldung 2" {
		t.Errorf("unexpected items: %+v", items)
	}
}

func TestFetchTruncatesToMaxInFeedOrder(t *testing.T) {
	srv := serveRSS(t, rssBody(
		rssItem("M1", "d1", ""),
		rssItem("M2", "d2", ""),
		rssItem("M3", "d3", ""),
		rssItem("M4", "d4", ""),
		rssItem("M5", "d5", ""),
	))

	f := NewFetcher()
	f.urlOverride = srv.URL
	items := f.Fetch(context.Background(), FeedTagesschau, 2)

	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}
	if items[0].Title != "M1" || items[1].Title != "M2" {
		t.Errorf("order/truncation wrong: %+v", items)
	}
}

func TestFetchRichPathForGolemContent(t *testing.T) {
	content := `<p>Voller Text</p> (<a href="http://x">Quelle</a>) <img src="http://img/a.jpg?width=50"> Ende`
	srv := serveRSS(t, rssBody(rssItem("Golem Meldung", "Kurzbeschreibung", content)))

	f := NewFetcher()
	f.urlOverride = srv.URL
	items := f.Fetch(context.Background(), FeedGolem, 5)

	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}
	it := items[0]
	if strings.Contains(it.Description, "Quelle") {
		t.Errorf("decorative link parenthetical survived: %q", it.Description)
	}
	if strings.ContainsAny(it.Description, "<>") {
		t.Errorf("markup survived: %q", it.Description)
	}
	if it.Image != "http://img/a.jpg?width=320" {
		t.Errorf("image: got %q, want rewritten width", it.Image)
	}
}

func TestFetchSimplePathKeepsDescription(t *testing.T) {
	content := `<img src="http://img/b.jpg?width=50">`
	srv := serveRSS(t, rssBody(rssItem("Tagesschau Meldung", "Schon sauber", content)))

	f := NewFetcher()
	f.urlOverride = srv.URL
	items := f.Fetch(context.Background(), FeedTagesschau, 5)

	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}
	if items[0].Description != "Schon sauber" {
		t.Errorf("description: got %q, want untouched value", items[0].Description)
	}
	if items[0].Image != "http://img/b.jpg?width=320" {
		t.Errorf("image: got %q, want extracted from content block", items[0].Image)
	}
}

func TestFetchSimplePathWithoutContentHasNoImage(t *testing.T) {
	srv := serveRSS(t, rssBody(rssItem("Ohne Bild", "Nur Text", "")))

	f := NewFetcher()
	f.urlOverride = srv.URL
	items := f.Fetch(context.Background(), FeedTagesschau, 5)

	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}
	if items[0].Image != "" {
		t.Errorf("image: got %q, want empty", items[0].Image)
	}
}

func TestFetchFailureYieldsEmptySlice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	f := NewFetcher()
	f.urlOverride = srv.URL
	items := f.Fetch(context.Background(), FeedTagesschau, 5)

	if items == nil {
		t.Fatal("got nil, want empty slice")
	}
	if len(items) != 0 {
		t.Errorf("got %d items, want 0", len(items))
	}
}
