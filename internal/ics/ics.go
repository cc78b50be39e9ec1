// Package ics writes registered events as an iCalendar document so they can be
// imported into any calendar application.
package ics

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"time"

	"campusevents/internal/models"

	"github.com/emersion/go-ical"
	"github.com/google/uuid"
)

const productID = "-//campusevents//EN"

// ErrNothingToExport is returned when no event could be encoded.
var ErrNothingToExport = errors.New("no exportable events")

var uidNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("campusevents:event"))

// EventUID returns a UID that is stable for a given event ID, so re-importing
// the same event updates the existing calendar entry instead of duplicating it.
func EventUID(event models.Event) string {
	return uuid.NewSHA1(uidNamespace, []byte(strconv.Itoa(event.ID))).String()
}

// Component converts an event into a VEVENT with UTC start and end.
func Component(event models.Event, loc *time.Location, stamp time.Time) (*ical.Component, error) {
	start, end, err := event.Schedule(loc)
	if err != nil {
		return nil, fmt.Errorf("event %d: %w", event.ID, err)
	}

	ve := ical.NewComponent(ical.CompEvent)
	ve.Props.SetText(ical.PropUID, EventUID(event))
	ve.Props.SetText(ical.PropSummary, event.Name)
	ve.Props.SetDateTime(ical.PropDateTimeStamp, stamp.UTC())
	ve.Props.SetDateTime(ical.PropDateTimeStart, start)
	ve.Props.SetDateTime(ical.PropDateTimeEnd, end)

	if event.Location != "" {
		ve.Props.SetText(ical.PropLocation, event.Location)
	}
	if event.EventType != "" {
		ve.Props.SetText(ical.PropCategories, event.EventType)
	}
	if event.Organization.Name != "" {
		ve.Props.SetText(ical.PropDescription, "Hosted by "+event.Organization.Name)
	}
	return ve, nil
}

// NewCalendar wraps components in a VCALENDAR.
func NewCalendar(components ...*ical.Component) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, productID)
	cal.Children = append(cal.Children, components...)
	return cal
}

// Encode writes events to w as one calendar. Events whose schedule is invalid
// are skipped; their errors are joined and returned after the rest is written.
func Encode(w io.Writer, events []models.Event, loc *time.Location) error {
	now := time.Now()
	var (
		components []*ical.Component
		errs       []error
	)
	for _, e := range events {
		ve, err := Component(e, loc, now)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		components = append(components, ve)
	}

	if len(components) == 0 {
		return errors.Join(append([]error{ErrNothingToExport}, errs...)...)
	}

	if err := ical.NewEncoder(w).Encode(NewCalendar(components...)); err != nil {
		return fmt.Errorf("failed to encode calendar: %w", err)
	}
	return errors.Join(errs...)
}
