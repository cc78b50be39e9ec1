// Package filter derives the events shown for a selector without touching the
// catalog it is given.
package filter

import (
	"slices"
	"strings"
	"time"

	"campusevents/internal/models"
)

// Selector picks which slice of the catalog is shown.
type Selector int

const (
	All Selector = iota
	MyClubs
	Morning
	Afternoon
	Evening
)

const timeLayout = "15:04:05"

var selectorNames = map[Selector]string{
	All:       "all",
	MyClubs:   "myclubs",
	Morning:   "morning",
	Afternoon: "afternoon",
	Evening:   "evening",
}

// hourRange is a half-open [start, end) range of start hours.
type hourRange struct {
	start, end int
}

var buckets = map[Selector]hourRange{
	Morning:   {7, 12},
	Afternoon: {12, 17},
	Evening:   {17, 22},
}

func (s Selector) String() string {
	if name, ok := selectorNames[s]; ok {
		return name
	}
	return selectorNames[All]
}

// ParseSelector maps a name such as "morning" or "My Clubs" to a Selector.
// Unknown names map to All.
func ParseSelector(name string) Selector {
	key := strings.ToLower(strings.NewReplacer(" ", "", "_", "", "-", "").Replace(name))
	for sel, n := range selectorNames {
		if n == key {
			return sel
		}
	}
	return All
}

// Selectors lists every selector in display order.
func Selectors() []Selector {
	return []Selector{All, MyClubs, Morning, Afternoon, Evening}
}

// Apply returns the events of catalog matching selector, in catalog order.
// clubs is only consulted for MyClubs. Unrecognized selectors behave like All.
func Apply(catalog []models.Event, selector Selector, clubs []string) []models.Event {
	switch selector {
	case MyClubs:
		return keep(catalog, func(e models.Event) bool {
			return slices.Contains(clubs, e.Organization.Name)
		})
	case Morning, Afternoon, Evening:
		r := buckets[selector]
		return keep(catalog, func(e models.Event) bool {
			h, ok := startHour(e)
			return ok && h >= r.start && h < r.end
		})
	default:
		return slices.Clone(catalog)
	}
}

func keep(catalog []models.Event, match func(models.Event) bool) []models.Event {
	out := make([]models.Event, 0, len(catalog))
	for _, e := range catalog {
		if match(e) {
			out = append(out, e)
		}
	}
	return out
}

func startHour(e models.Event) (int, bool) {
	t, err := time.Parse(timeLayout, e.StartTime)
	if err != nil {
		return 0, false
	}
	return t.Hour(), true
}
