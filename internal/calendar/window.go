package calendar

import (
	"strconv"
	"time"

	"inkdash/internal/model"
)

// autoSwitchHour is the local hour at which the "auto" day selection flips
// from today to tomorrow.
const autoSwitchHour = 18

// SelectDayOffset decides which day the timeline shows, as a pure function
// of the current local time and the configured setting.
//
//	"auto"      -> 0 before 18:00 local, 1 from 18:00 on
//	"0" / "1"   -> taken literally
//	anything else -> 0
func SelectDayOffset(now time.Time, setting string) int {
	if setting == "auto" {
		if now.Hour() < autoSwitchHour {
			return 0
		}
		return 1
	}
	n, err := strconv.Atoi(setting)
	if err != nil || (n != 0 && n != 1) {
		return 0
	}
	return n
}

// DayRange returns local midnight of the selected day through local
// midnight of the following day, in now's location. Callers convert the
// bounds to UTC for the remote query.
func DayRange(now time.Time, dayOffset int) (start, end time.Time) {
	start = time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	start = start.AddDate(0, 0, dayOffset)
	return start, start.AddDate(0, 0, 1)
}

// dayLabel maps the selected offset to its display label.
func dayLabel(dayOffset int) model.DayLabel {
	if dayOffset == 0 {
		return model.DayToday
	}
	return model.DayTomorrow
}

// minuteOffset expresses t as minutes elapsed since startHour on the
// displayed day. Deliberately unclamped: an event before startHour yields
// a negative offset and the renderer decides how to truncate it.
func minuteOffset(t time.Time, startHour int) int {
	return t.Hour()*60 + t.Minute() - startHour*60
}

// clock formats t as HH:MM for the event list.
func clock(t time.Time) string {
	return t.Format("15:04")
}

// buildEvent converts provider-localized start/end timestamps into a
// timeline-positioned calendar event.
func buildEvent(id, title string, start, end time.Time, allDay bool, startHour int) model.CalendarEvent {
	ev := model.CalendarEvent{
		ID:       id,
		Title:    title,
		StartMin: minuteOffset(start, startHour),
		EndMin:   minuteOffset(end, startHour),
		AllDay:   allDay,
	}
	if !allDay {
		ev.Start = clock(start)
		ev.End = clock(end)
	}
	return ev
}
