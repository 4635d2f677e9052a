// Package calendar produces one day's worth of events positioned for the
// dashboard timeline.
//
// The primary source is a Microsoft Graph mailbox queried with
// client-credential auth; when no Outlook credentials are configured, a
// subscribed ICS feed can stand in. Either way the failure policy is the
// same: auth or fetch problems yield an empty window, logged, never an
// error. Calendar absence is a valid render state.
package calendar

import (
	"context"
	"errors"
	"time"

	"inkdash/internal/config"
	appLog "inkdash/internal/log"
	"inkdash/internal/model"
)

// Settings are the per-render display parameters of the timeline.
type Settings struct {
	// StartHour / EndHour bound the rendered timeline; events outside
	// them still appear in the window with out-of-range minute offsets.
	StartHour int
	EndHour   int

	// DayOffset is the configured selection: "auto", "0" or "1".
	DayOffset string

	// Timezone is the IANA display timezone name, passed to Graph so the
	// provider renders event times locally.
	Timezone string
}

// Fetcher selects and queries the configured event source.
type Fetcher struct {
	graph *graphClient
	ics   *icsClient
}

// NewFetcher wires the available sources: Graph when the full Outlook
// credential set is present, otherwise the ICS URL if one is configured.
func NewFetcher(sec config.Secrets, icsURL string) *Fetcher {
	f := &Fetcher{}
	if sec.HasOutlook() {
		f.graph = newGraphClient(sec.OutlookClientID, sec.OutlookClientSecret, sec.OutlookTenantID, sec.OutlookMailbox)
	} else if icsURL != "" {
		f.ics = newICSClient(icsURL)
	}
	return f
}

// Window assembles the calendar window for the day selected by the
// configured offset. now must already be in the display timezone. All
// failures degrade to an empty window.
func (f *Fetcher) Window(ctx context.Context, now time.Time, s Settings) model.CalendarWindow {
	offset := SelectDayOffset(now, s.DayOffset)
	localStart, localEnd := DayRange(now, offset)

	appLog.Debug("calendar query range",
		"start", localStart.Format(time.RFC3339),
		"end", localEnd.Format(time.RFC3339),
		"day_offset", offset,
	)

	events, err := f.fetchEvents(ctx, localStart, localEnd, s)
	if err != nil {
		appLog.Error("calendar fetch failed, omitting section", err)
		return model.CalendarWindow{}
	}

	appLog.Info("calendar events loaded", "count", len(events), "day_offset", offset)
	return model.CalendarWindow{
		Day:       dayLabel(offset),
		StartHour: s.StartHour,
		EndHour:   s.EndHour,
		Events:    events,
	}
}

func (f *Fetcher) fetchEvents(ctx context.Context, localStart, localEnd time.Time, s Settings) ([]model.CalendarEvent, error) {
	switch {
	case f.graph != nil:
		return f.graph.events(ctx, localStart.UTC(), localEnd.UTC(), s.Timezone, s.StartHour)
	case f.ics != nil:
		return f.ics.events(ctx, localStart, localEnd, s.StartHour)
	default:
		return nil, errors.New("calendar: no source configured")
	}
}
