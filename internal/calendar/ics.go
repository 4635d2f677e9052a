package calendar

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"
	"github.com/teambition/rrule-go"

	appLog "inkdash/internal/log"
	"inkdash/internal/model"
)

// maxOccurrencesPerEvent caps recurrence expansion; a one-day window never
// legitimately needs more.
const maxOccurrencesPerEvent = 100

// icsClient fills the calendar window from a subscribed ICS feed. It is
// the fallback source used when no Outlook client credentials are
// configured.
type icsClient struct {
	http *http.Client
	url  string
}

func newICSClient(url string) *icsClient {
	return &icsClient{
		http: &http.Client{Timeout: 10 * time.Second},
		url:  url,
	}
}

// events fetches the ICS feed and expands it into the [windowStart,
// windowEnd) range, both in the display location.
func (c *icsClient) events(ctx context.Context, windowStart, windowEnd time.Time, startHour int) ([]model.CalendarEvent, error) {
	body, err := c.fetch(ctx)
	if err != nil {
		return nil, err
	}

	cal, err := ical.ParseCalendar(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("calendar: ics parse: %w", err)
	}

	loc := windowStart.Location()
	events := make([]model.CalendarEvent, 0)

	for _, ve := range cal.Events() {
		occ, err := expandVEvent(ve, windowStart, windowEnd, loc, startHour)
		if err != nil {
			// Skip the broken event, keep the rest of the feed.
			appLog.Warn("ics event skipped", "url", redactURL(c.url), "err", err)
			continue
		}
		events = append(events, occ...)
	}

	return events, nil
}

func (c *icsClient) fetch(ctx context.Context) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calendar: ics fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("calendar: ics returned %s", resp.Status)
	}
	return io.ReadAll(resp.Body)
}

// expandVEvent turns one VEVENT into its occurrences inside the window.
// Non-recurring events contribute at most one occurrence; RRULE events are
// expanded with EXDATEs applied.
func expandVEvent(ve *ical.VEvent, windowStart, windowEnd time.Time, loc *time.Location, startHour int) ([]model.CalendarEvent, error) {
	uid := ""
	if p := ve.GetProperty(ical.ComponentPropertyUniqueId); p != nil {
		uid = p.Value
	}
	if uid == "" {
		return nil, errors.New("missing UID")
	}

	summary := ""
	if p := ve.GetProperty(ical.ComponentPropertySummary); p != nil {
		summary = p.Value
	}

	start, err := ve.GetStartAt()
	if err != nil {
		return nil, fmt.Errorf("DTSTART: %w", err)
	}
	end, _ := ve.GetEndAt()
	if end.IsZero() {
		end = start.Add(time.Hour)
	}

	allDay := isAllDay(ve)
	rawRRule := ""
	if p := ve.GetProperty(ical.ComponentPropertyRrule); p != nil {
		rawRRule = p.Value
	}

	if rawRRule == "" {
		if !overlaps(start, end, windowStart, windowEnd) {
			return nil, nil
		}
		return []model.CalendarEvent{buildEvent(uid, summary, start.In(loc), end.In(loc), allDay, startHour)}, nil
	}

	r, err := rrule.StrToRRule(rawRRule)
	if err != nil {
		return nil, fmt.Errorf("RRULE: %w", err)
	}
	r.DTStart(start)

	var set rrule.Set
	set.RRule(r)
	for _, ex := range exDates(ve) {
		set.ExDate(ex.In(start.Location()))
	}

	occTimes := set.Between(windowStart.In(start.Location()), windowEnd.In(start.Location()), true)
	if len(occTimes) > maxOccurrencesPerEvent {
		occTimes = occTimes[:maxOccurrencesPerEvent]
	}

	dur := end.Sub(start)
	out := make([]model.CalendarEvent, 0, len(occTimes))
	for _, occStart := range occTimes {
		occEnd := occStart.Add(dur)
		if allDay {
			day := time.Date(occStart.Year(), occStart.Month(), occStart.Day(), 0, 0, 0, 0, occStart.Location())
			occStart = day
			occEnd = day.Add(24 * time.Hour)
		}
		out = append(out, buildEvent(uid, summary, occStart.In(loc), occEnd.In(loc), allDay, startHour))
	}
	return out, nil
}

// isAllDay detects all-day events by DTSTART's VALUE=DATE parameter or a
// date-only value.
func isAllDay(ve *ical.VEvent) bool {
	p := ve.GetProperty(ical.ComponentPropertyDtStart)
	if p == nil {
		return false
	}
	if params := p.ICalParameters; params != nil {
		if vs, ok := params["VALUE"]; ok && len(vs) > 0 && strings.EqualFold(vs[0], "DATE") {
			return true
		}
	}
	return !strings.Contains(p.Value, "T")
}

// exDates collects EXDATE exception timestamps in their basic
// DATE/DATE-TIME/UTC forms.
func exDates(ve *ical.VEvent) []time.Time {
	var out []time.Time
	for _, p := range ve.GetProperties(ical.ComponentPropertyExdate) {
		for _, part := range strings.Split(p.Value, ",") {
			part = strings.TrimSpace(part)
			if part == "" {
				continue
			}
			if t, err := parseICSTime(part); err == nil {
				out = append(out, t)
			}
		}
	}
	return out
}

// parseICSTime parses a basic ICS date/date-time string.
func parseICSTime(v string) (time.Time, error) {
	switch {
	case strings.HasSuffix(v, "Z"):
		return time.Parse("20060102T150405Z", v)
	case strings.Contains(v, "T"):
		return time.ParseInLocation("20060102T150405", v, time.Local)
	default:
		return time.ParseInLocation("20060102", v, time.Local)
	}
}

func overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return !aEnd.Before(bStart) && !bEnd.Before(aStart)
}

// redactURL hides path and query of a subscription URL for logging.
func redactURL(u string) string {
	i := strings.Index(u, "://")
	if i == -1 {
		return "ics://...(redacted)"
	}
	rest := u[i+3:]
	if j := strings.IndexByte(rest, '/'); j != -1 {
		rest = rest[:j]
	}
	return u[:i+3] + rest + "/...(redacted)"
}
