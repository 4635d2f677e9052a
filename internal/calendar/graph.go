package calendar

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/oauth2/clientcredentials"

	"inkdash/internal/model"
)

const (
	graphBaseURL  = "https://graph.microsoft.com/v1.0"
	graphScope    = "https://graph.microsoft.com/.default"
	graphPageSize = 50
)

// graphTimeLayout matches the provider's already-timezone-rendered
// dateTime values ("2026-01-01T09:30:00.0000000"); the fractional part is
// cut before parsing.
const graphTimeLayout = "2006-01-02T15:04:05"

// graphClient queries one mailbox's calendar view via the Microsoft Graph
// API, authenticating with the OAuth2 client-credential flow.
type graphClient struct {
	creds   clientcredentials.Config
	baseURL string
	mailbox string
}

func newGraphClient(clientID, clientSecret, tenantID, mailbox string) *graphClient {
	return &graphClient{
		creds: clientcredentials.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			TokenURL:     fmt.Sprintf("https://login.microsoftonline.com/%s/oauth2/v2.0/token", tenantID),
			Scopes:       []string{graphScope},
		},
		baseURL: graphBaseURL,
		mailbox: mailbox,
	}
}

type graphDateTime struct {
	DateTime string `json:"dateTime"`
	TimeZone string `json:"timeZone"`
}

type graphEvent struct {
	ID       string        `json:"id"`
	Subject  string        `json:"subject"`
	IsAllDay bool          `json:"isAllDay"`
	Start    graphDateTime `json:"start"`
	End      graphDateTime `json:"end"`
}

type graphEventList struct {
	Value []graphEvent `json:"value"`
}

// events fetches all events overlapping [startUTC, endUTC), ordered by
// start time, capped at one page of graphPageSize. The Prefer header asks
// the provider to render event times directly in the display timezone.
func (g *graphClient) events(ctx context.Context, startUTC, endUTC time.Time, timezone string, startHour int) ([]model.CalendarEvent, error) {
	httpClient := g.creds.Client(ctx)
	httpClient.Timeout = 10 * time.Second

	q := url.Values{}
	q.Set("startDateTime", startUTC.Format("2006-01-02T15:04:05Z"))
	q.Set("endDateTime", endUTC.Format("2006-01-02T15:04:05Z"))
	q.Set("$select", "subject,start,end,location,isallday")
	q.Set("$orderby", "start/dateTime")
	q.Set("$top", fmt.Sprint(graphPageSize))

	reqURL := fmt.Sprintf("%s/users/%s/calendarView?%s", g.baseURL, url.PathEscape(g.mailbox), q.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Prefer", fmt.Sprintf("outlook.timezone=%q", timezone))

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calendar: graph fetch: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("calendar: graph returned %s", resp.Status)
	}

	var list graphEventList
	if err := json.NewDecoder(resp.Body).Decode(&list); err != nil {
		return nil, fmt.Errorf("calendar: graph decode: %w", err)
	}

	events := make([]model.CalendarEvent, 0, len(list.Value))
	for _, e := range list.Value {
		start, err := parseGraphTime(e.Start.DateTime)
		if err != nil {
			return nil, fmt.Errorf("calendar: event %q start: %w", e.Subject, err)
		}
		end, err := parseGraphTime(e.End.DateTime)
		if err != nil {
			return nil, fmt.Errorf("calendar: event %q end: %w", e.Subject, err)
		}
		events = append(events, buildEvent(e.ID, e.Subject, start, end, e.IsAllDay, startHour))
	}
	return events, nil
}

// parseGraphTime parses a provider-localized dateTime value, tolerating
// the 7-digit fractional seconds Graph appends.
func parseGraphTime(v string) (time.Time, error) {
	if len(v) > len(graphTimeLayout) {
		v = v[:len(graphTimeLayout)]
	}
	return time.Parse(graphTimeLayout, v)
}
