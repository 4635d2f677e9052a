// Package model defines the render model assembled once per refresh and
// handed to the dashboard renderer. Every entity is built fresh per render
// and never mutated afterwards.
package model

// DayLabel names the day a calendar window covers. The values are the
// display strings used by the German-language dashboard template.
type DayLabel string

const (
	DayToday    DayLabel = "Heute"
	DayTomorrow DayLabel = "Morgen"
)

// RenderModel is the aggregate passed to rendering. Absence of any optional
// section must not prevent rendering: a zero-valued section means the panel
// is omitted, not that the model is invalid.
type RenderModel struct {
	Devotional *DevotionalEntry `json:"devotional,omitempty"`
	News       []NewsItem       `json:"news"`
	Calendar   CalendarWindow   `json:"calendar"`
	Weather    *WeatherSnapshot `json:"weather,omitempty"`
	Info       InfoBlock        `json:"info"`
}

// DevotionalEntry is one date-keyed entry of the precomputed devotional
// table. Field names mirror the table's JSON keys.
type DevotionalEntry struct {
	Datum        string `json:"Datum"`
	Losungstext  string `json:"Losungstext"`
	Losungsvers  string `json:"Losungsvers"`
	Lehrtext     string `json:"Lehrtext"`
	Lehrtextvers string `json:"Lehrtextvers"`
}

// NewsItem is one sanitized feed article. Title never begins with the
// case-insensitive promotional marker "Anzeige:"; such items are excluded
// before they count toward the configured maximum.
type NewsItem struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Image       string `json:"image,omitempty"`
}

// CalendarWindow is one day's worth of events together with the display
// bounds the timeline layout uses. StartHour < EndHour always holds for a
// populated window. A window with no Events and empty Day is the absent
// (degraded) calendar state.
type CalendarWindow struct {
	Day       DayLabel        `json:"day_label"`
	StartHour int             `json:"start_hour"`
	EndHour   int             `json:"end_hour"`
	Events    []CalendarEvent `json:"events"`
}

// Empty reports whether the window carries no calendar data at all.
func (w CalendarWindow) Empty() bool {
	return w.Day == "" && len(w.Events) == 0
}

// CalendarEvent is a single event positioned for timeline layout.
// StartMin/EndMin are minutes elapsed since the window's StartHour and are
// deliberately unclamped: events outside the display bounds yield negative
// or over-range offsets and visual truncation is the renderer's concern.
type CalendarEvent struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	Start    string `json:"start"` // "HH:MM", empty for all-day
	End      string `json:"end"`   // "HH:MM", empty for all-day
	StartMin int    `json:"start_min"`
	EndMin   int    `json:"end_min"`
	AllDay   bool   `json:"is_all_day"`
}

// WeatherSnapshot is the current conditions for the info header.
type WeatherSnapshot struct {
	Icon string `json:"icon"` // local asset path, e.g. assets/icons/04d.svg
	Temp int    `json:"temp"` // rounded degrees Celsius
}

// InfoBlock is the header shared by every render: place name, refresh
// clock, localized date line and time-of-day greeting.
type InfoBlock struct {
	Location        string `json:"location"`
	LastRefreshTime string `json:"last_refresh_time"`
	Date            string `json:"date"`
	Greeting        string `json:"greeting"`
}
