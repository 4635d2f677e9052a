package calendar

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"inkdash/internal/config"
	"inkdash/internal/model"
)

func testSettings() Settings {
	return Settings{StartHour: 8, EndHour: 18, DayOffset: "0", Timezone: "Europe/Berlin"}
}

func TestWindowNoSourceDegradesToEmpty(t *testing.T) {
	f := NewFetcher(config.Secrets{}, "")
	w := f.Window(context.Background(), time.Now(), testSettings())
	if !w.Empty() {
		t.Errorf("expected empty window, got %+v", w)
	}
}

func TestWindowGraphFailureDegradesToEmpty(t *testing.T) {
	_, g := newGraphTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})
	f := &Fetcher{graph: g}

	w := f.Window(context.Background(), time.Now(), testSettings())
	if !w.Empty() {
		t.Errorf("expected empty window on graph failure, got %+v", w)
	}
}

func TestWindowCarriesDisplayBounds(t *testing.T) {
	_, g := newGraphTestServer(t, func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, `{"value":[]}`)
	})
	f := &Fetcher{graph: g}

	berlin := mustLoc(t, "Europe/Berlin")
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, berlin)
	w := f.Window(context.Background(), now, testSettings())

	if w.Day != model.DayToday {
		t.Errorf("day: got %q, want %q", w.Day, model.DayToday)
	}
	if w.StartHour != 8 || w.EndHour != 18 {
		t.Errorf("bounds: got %d/%d, want 8/18", w.StartHour, w.EndHour)
	}
	if w.StartHour >= w.EndHour {
		t.Error("start_hour must be below end_hour")
	}
	if len(w.Events) != 0 {
		t.Errorf("events: got %d, want 0", len(w.Events))
	}
}

func TestWindowICSFallback(t *testing.T) {
	ics := `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//test//test//EN
BEGIN:VEVENT
UID:single-1
SUMMARY:Zahnarzt
DTSTART:20260310T093000Z
DTEND:20260310T101500Z
END:VEVENT
BEGIN:VEVENT
UID:other-day
SUMMARY:Anderes
DTSTART:20260320T120000Z
DTEND:20260320T130000Z
END:VEVENT
END:VCALENDAR
`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/calendar")
		fmt.Fprint(w, ics)
	}))
	defer srv.Close()

	f := NewFetcher(config.Secrets{}, srv.URL)
	if f.ics == nil {
		t.Fatal("expected ICS fallback source to be wired")
	}

	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	s := testSettings()
	s.Timezone = "UTC"
	w := f.Window(context.Background(), now, s)

	if len(w.Events) != 1 {
		t.Fatalf("got %d events, want 1 (only the in-window event)", len(w.Events))
	}
	ev := w.Events[0]
	if ev.Title != "Zahnarzt" {
		t.Errorf("title: got %q", ev.Title)
	}
	if ev.Start != "09:30" || ev.StartMin != 90 {
		t.Errorf("start: got %q/%d, want 09:30/90", ev.Start, ev.StartMin)
	}
}

func TestWindowICSRecurringEvent(t *testing.T) {
	ics := `BEGIN:VCALENDAR
VERSION:2.0
PRODID:-//test//test//EN
BEGIN:VEVENT
UID:weekly-1
SUMMARY:Teamrunde
DTSTART:20260303T140000Z
DTEND:20260303T150000Z
RRULE:FREQ=WEEKLY;BYDAY=TU
END:VEVENT
END:VCALENDAR
`
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		fmt.Fprint(w, ics)
	}))
	defer srv.Close()

	f := NewFetcher(config.Secrets{}, srv.URL)

	// 2026-03-10 is a Tuesday one week after DTSTART.
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	s := testSettings()
	s.Timezone = "UTC"
	w := f.Window(context.Background(), now, s)

	if len(w.Events) != 1 {
		t.Fatalf("got %d events, want 1 expanded occurrence", len(w.Events))
	}
	if w.Events[0].Start != "14:00" {
		t.Errorf("start: got %q, want 14:00", w.Events[0].Start)
	}
}

func TestNewFetcherPrefersGraphOverICS(t *testing.T) {
	sec := config.Secrets{
		OutlookClientID:     "id",
		OutlookClientSecret: "secret",
		OutlookTenantID:     "tenant",
		OutlookMailbox:      "box@example.org",
	}
	f := NewFetcher(sec, "https://example.org/cal.ics")
	if f.graph == nil {
		t.Error("expected graph source with full credential set")
	}
	if f.ics != nil {
		t.Error("ICS fallback should not be wired when graph is available")
	}
}
