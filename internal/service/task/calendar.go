package task

import (
	"fmt"
	"net/url"
	"time"

	"github.com/seu-repo/imob-crm/internal/domain"
	"github.com/seu-repo/imob-crm/internal/ports"
)

const eventDuration = time.Hour

const (
	googleCalendarURL  = "https://calendar.google.com/calendar/render"
	outlookCalendarURL = "https://outlook.live.com/calendar/0/deeplink/compose"
)

// calendarLink builds an "add event" deep link. Tasks without a time become
// all-day events.
func calendarLink(t domain.Task, provider ports.CalendarProvider, loc *time.Location) (string, error) {
	start, err := t.Start()
	if err != nil {
		return "", err
	}
	allDay := t.Time == ""
	if allDay {
		y, m, d := t.Date.In(loc).Date()
		start = time.Date(y, m, d, 0, 0, 0, 0, loc)
	}

	details := t.Description
	if t.Client != "" {
		if details != "" {
			details += "\n"
		}
		details += "Client : " + t.Client
	}

	switch provider {
	case ports.CalendarGoogle:
		var dates string
		if allDay {
			dates = start.Format("20060102") + "/" + start.AddDate(0, 0, 1).Format("20060102")
		} else {
			const layout = "20060102T150405Z"
			dates = start.UTC().Format(layout) + "/" + start.Add(eventDuration).UTC().Format(layout)
		}
		q := url.Values{}
		q.Set("action", "TEMPLATE")
		q.Set("text", t.Title)
		q.Set("dates", dates)
		if details != "" {
			q.Set("details", details)
		}
		return googleCalendarURL + "?" + q.Encode(), nil

	case ports.CalendarOutlook:
		q := url.Values{}
		q.Set("path", "/calendar/action/compose")
		q.Set("rru", "addevent")
		q.Set("subject", t.Title)
		if allDay {
			q.Set("startdt", start.Format("2006-01-02"))
			q.Set("enddt", start.AddDate(0, 0, 1).Format("2006-01-02"))
			q.Set("allday", "true")
		} else {
			q.Set("startdt", start.Format(time.RFC3339))
			q.Set("enddt", start.Add(eventDuration).Format(time.RFC3339))
		}
		if details != "" {
			q.Set("body", details)
		}
		return outlookCalendarURL + "?" + q.Encode(), nil
	}
	return "", fmt.Errorf("%w: unknown calendar provider %q", domain.ErrValidation, provider)
}
