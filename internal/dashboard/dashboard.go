// Package dashboard aggregates the independent data sources into the one
// RenderModel a refresh hands to the renderer.
//
// Each source is invoked exactly once per render. The failure policy is
// asymmetric and deliberately so: weather and location are load-bearing
// for the info header and fail the whole render, while news, devotional
// and calendar degrade to an absent section. The policy lives in one table
// below instead of being scattered through per-call error handling.
package dashboard

import (
	"context"
	"fmt"
	"time"

	"inkdash/internal/calendar"
	"inkdash/internal/config"
	"inkdash/internal/devotional"
	"inkdash/internal/geocode"
	appLog "inkdash/internal/log"
	"inkdash/internal/model"
	"inkdash/internal/news"
	"inkdash/internal/weather"
)

// failurePolicy decides what a source's failure does to the render.
type failurePolicy int

const (
	// policyFail aborts the render request.
	policyFail failurePolicy = iota
	// policyDegrade omits the section and renders the rest.
	policyDegrade
)

// sourcePolicies is the per-source failure policy table.
var sourcePolicies = map[string]failurePolicy{
	"weather":    policyFail,
	"location":   policyFail,
	"news":       policyDegrade,
	"devotional": policyDegrade,
	"calendar":   policyDegrade,
}

// NewsSource yields sanitized news items; failures degrade internally.
type NewsSource interface {
	Fetch(ctx context.Context, feedID string, maxItems int) []model.NewsItem
}

// WeatherSource yields current conditions; failures are returned.
type WeatherSource interface {
	Current(ctx context.Context, apiKey string, lat, lon float64) (model.WeatherSnapshot, error)
}

// LocationSource resolves coordinates to a place name; failures are
// returned.
type LocationSource interface {
	Resolve(ctx context.Context, apiKey string, lat, lon float64) (string, error)
}

// CalendarSource yields one day's event window; failures degrade
// internally to an empty window.
type CalendarSource interface {
	Window(ctx context.Context, now time.Time, s calendar.Settings) model.CalendarWindow
}

// DevotionalSource yields the entry for a date, or nil on a miss.
type DevotionalSource interface {
	ForDate(now time.Time) *model.DevotionalEntry
}

// Aggregator invokes every source once per render and assembles the
// model. It holds no mutable state; concurrent Build calls are
// independent.
type Aggregator struct {
	cfg     *config.Config
	secrets config.Secrets

	news       NewsSource
	weather    WeatherSource
	location   LocationSource
	calendar   CalendarSource
	devotional DevotionalSource

	// now is replaceable in tests; defaults to time.Now.
	now func() time.Time
}

// New wires an Aggregator with the production fetchers. table may be nil
// when no devotional table is configured.
func New(cfg *config.Config, secrets config.Secrets, table *devotional.Table) *Aggregator {
	a := &Aggregator{
		cfg:      cfg,
		secrets:  secrets,
		news:     news.NewFetcher(),
		weather:  weather.NewClient(cfg.AssetsDir),
		location: geocode.NewClient(),
		calendar: calendar.NewFetcher(secrets, cfg.CalendarICSURL),
		now:      time.Now,
	}
	if table != nil {
		a.devotional = table
	}
	return a
}

// Build assembles the render model. It returns an error only for sources
// whose policy is policyFail; everything else degrades to an absent
// section and the model stays valid to render.
func (a *Aggregator) Build(ctx context.Context) (model.RenderModel, error) {
	loc := resolveLocationOrLocal(a.cfg.Timezone)
	now := a.now().In(loc)

	var m model.RenderModel

	if a.devotional != nil {
		m.Devotional = a.devotional.ForDate(now)
		if m.Devotional == nil {
			appLog.Warn("no devotional entry for today", "date", now.Format("02.01.2006"))
		}
	}

	m.News = a.news.Fetch(ctx, a.cfg.NewsFeed, a.cfg.NewsCount)

	m.Calendar = a.calendar.Window(ctx, now, calendar.Settings{
		StartHour: a.cfg.CalendarStartHour,
		EndHour:   a.cfg.CalendarEndHour,
		DayOffset: a.cfg.CalendarDayOffset,
		Timezone:  a.cfg.Timezone,
	})
	if m.Calendar.Empty() {
		appLog.Warn("no calendar events found or fetch failed")
	}

	snap, err := a.weather.Current(ctx, a.secrets.WeatherAPIKey, a.cfg.Latitude, a.cfg.Longitude)
	if err != nil {
		return model.RenderModel{}, a.sourceFailure("weather", err)
	}
	m.Weather = &snap

	place, err := a.location.Resolve(ctx, a.secrets.WeatherAPIKey, a.cfg.Latitude, a.cfg.Longitude)
	if err != nil {
		return model.RenderModel{}, a.sourceFailure("location", err)
	}

	m.Info = buildInfo(place, now, a.cfg.TimeFormat)

	appLog.Info("render model assembled",
		"news", len(m.News),
		"calendar_events", len(m.Calendar.Events),
		"devotional", m.Devotional != nil,
	)
	return m, nil
}

// sourceFailure applies the policy table to a source error. Sources that
// degrade internally never reach this path; a degrade-policy error here
// would indicate a wiring mistake and is logged rather than raised.
func (a *Aggregator) sourceFailure(source string, err error) error {
	if sourcePolicies[source] == policyDegrade {
		appLog.Error("degradable source raised unexpectedly", err, "source", source)
		return nil
	}
	appLog.Error("render-blocking source failed", err, "source", source)
	return fmt.Errorf("dashboard: %s: %w", source, err)
}

func resolveLocationOrLocal(name string) *time.Location {
	if name == "" {
		return time.Local
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		appLog.Error("failed to load timezone, falling back to local", err, "name", name)
		return time.Local
	}
	return loc
}
