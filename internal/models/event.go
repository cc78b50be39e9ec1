package models

import "fmt"

// Event represents one schedulable campus event as served by the events endpoint.
// Two events with the same ID are the same event everywhere in this module.
type Event struct {
	ID           int          `json:"id"`
	Name         string       `json:"name"`
	StartDate    string       `json:"start_date"` // YYYY-MM-DD
	StartTime    string       `json:"start_time"` // HH:MM:SS, 24-hour
	EndDate      string       `json:"end_date"`
	EndTime      string       `json:"end_time"`
	Location     string       `json:"location"`
	EventType    string       `json:"event_type"`
	Organization Organization `json:"organization"`
	Attendees    []Attendee   `json:"attendees"`
}

// Organization is the club or department that owns an event.
type Organization struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	OrgType string `json:"org_type"`
}

// Attendee is a placeholder; no attendee fields are decoded yet.
type Attendee struct{}

// String renders the event on a single line for terminal output.
func (e Event) String() string {
	return fmt.Sprintf("#%d %s (%s) %s %s-%s @ %s [%s]",
		e.ID, e.Name, e.Organization.Name, e.StartDate, e.StartTime, e.EndTime, e.Location, e.EventType)
}

// Catalog is the ordered list of events returned by a single fetch.
type Catalog []Event

// Find returns the event with the given ID.
func (c Catalog) Find(id int) (Event, bool) {
	for _, e := range c {
		if e.ID == id {
			return e, true
		}
	}
	return Event{}, false
}
