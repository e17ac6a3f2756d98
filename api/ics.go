package api

import (
	"net/http"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/labstack/echo/v4"

	"resident-portal/domain"
)

// defaultEventDuration pads exported events: the portal only stores start
// instants, but calendar clients want an end.
const defaultEventDuration = time.Hour

// exportSchedule serves the resident's aggregated calendar as an iCalendar
// feed so it can be subscribed to from a phone or desktop client.
func exportSchedule(d Deps) echo.HandlerFunc {
	return func(c echo.Context) error {
		if _, err := identify(c, d); err != nil {
			return c.String(http.StatusUnauthorized, err.Error())
		}

		events := d.Calendars.Get(c.Param("id")).Events()
		cal := ics.NewCalendar()
		cal.SetMethod(ics.MethodPublish)
		cal.SetProductId("-//resident-portal//schedule//EN")

		now := d.Now()
		for _, ev := range events {
			ce := cal.AddEvent(ev.ID)
			ce.SetDtStampTime(now)
			ce.SetStartAt(ev.Datetime)
			ce.SetEndAt(ev.Datetime.Add(defaultEventDuration))
			ce.SetSummary(ev.Description)
			if ev.Category == domain.CategoryAppointment {
				ce.SetDescription("Medical appointment")
			} else {
				ce.SetDescription("Community activity")
			}
		}

		return c.Blob(http.StatusOK, "text/calendar", []byte(cal.Serialize()))
	}
}
