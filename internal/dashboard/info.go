package dashboard

import (
	"time"

	"inkdash/internal/model"
)

// weekdayNames maps time.Weekday (Sunday = 0) to the German labels the
// dashboard renders.
var weekdayNames = [7]string{
	"Sonntag", "Montag", "Dienstag", "Mittwoch", "Donnerstag", "Freitag", "Samstag",
}

// greeting buckets the hour of day into the fixed greeting set:
// [0,5) and [22,24) night, [5,11) morning, [11,17) day, [17,22) evening.
func greeting(hour int) string {
	switch {
	case hour < 5:
		return "Gute Nacht"
	case hour < 11:
		return "Guten Morgen"
	case hour < 17:
		return "Guten Tag"
	case hour < 22:
		return "Guten Abend"
	default:
		return "Gute Nacht"
	}
}

func formatDate(now time.Time) string {
	return weekdayNames[now.Weekday()] + ", " + now.Format("02.01.2006")
}

func formatClock(now time.Time, timeFormat string) string {
	if timeFormat == "24h" {
		return now.Format("15:04")
	}
	return now.Format("03:04 PM")
}

// buildInfo derives the always-present info header from the resolved place
// name and the current local time.
func buildInfo(location string, now time.Time, timeFormat string) model.InfoBlock {
	return model.InfoBlock{
		Location:        location,
		LastRefreshTime: formatClock(now, timeFormat),
		Date:            formatDate(now),
		Greeting:        greeting(now.Hour()),
	}
}
