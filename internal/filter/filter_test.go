package filter

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"campusevents/internal/models"
)

func ev(id int, start, org string) models.Event {
	return models.Event{
		ID:           id,
		Name:         org + " meetup",
		StartTime:    start,
		Organization: models.Organization{Name: org},
	}
}

func ids(events []models.Event) []int {
	out := []int{}
	for _, e := range events {
		out = append(out, e.ID)
	}
	return out
}

func sampleCatalog() []models.Event {
	return []models.Event{
		ev(1, "09:30:00", "Chess Club"),
		ev(2, "06:59:59", "Robotics Club"),
		ev(3, "not-a-time", "Chess Club"),
		ev(4, "12:00:00", "Robotics Club"),
		ev(5, "16:59:59", "Film Society"),
		ev(6, "17:00:00", "Chess Club"),
		ev(7, "21:59:59", "Film Society"),
		ev(8, "22:00:00", "Film Society"),
		ev(9, "11:59:59", "chess club"),
	}
}

func TestAllIsIdentity(t *testing.T) {
	catalog := sampleCatalog()
	assert.Equal(t, catalog, Apply(catalog, All, nil))
	assert.Equal(t, catalog, Apply(catalog, All, []string{"Chess Club"}))
}

func TestUnknownSelectorBehavesLikeAll(t *testing.T) {
	catalog := sampleCatalog()
	assert.Equal(t, catalog, Apply(catalog, Selector(42), nil))
}

func TestTimeBuckets(t *testing.T) {
	catalog := sampleCatalog()

	tests := []struct {
		name     string
		selector Selector
		want     []int
	}{
		{"morning", Morning, []int{1, 9}},
		{"afternoon", Afternoon, []int{4, 5}},
		{"evening", Evening, []int{6, 7}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ids(Apply(catalog, tt.selector, nil)))
		})
	}
}

func TestMorningBoundaries(t *testing.T) {
	got := Apply([]models.Event{
		ev(1, "09:30:00", "x"),
		ev(2, "06:59:59", "x"),
		ev(3, "not-a-time", "x"),
	}, Morning, nil)
	assert.Equal(t, []int{1}, ids(got))
}

func TestMyClubsIsCaseSensitive(t *testing.T) {
	got := Apply(sampleCatalog(), MyClubs, []string{"Chess Club"})
	assert.Equal(t, []int{1, 3, 6}, ids(got))

	assert.Empty(t, Apply(sampleCatalog(), MyClubs, nil))
}

func TestMyClubsExcludesOtherClubs(t *testing.T) {
	catalog := []models.Event{ev(1, "10:00:00", "Chess Club"), ev(2, "10:00:00", "Robotics Club")}
	assert.Equal(t, []int{1}, ids(Apply(catalog, MyClubs, []string{"Chess Club"})))
}

func TestApplyDoesNotMutateInput(t *testing.T) {
	catalog := sampleCatalog()
	before := sampleCatalog()

	out := Apply(catalog, All, nil)
	out[0].Name = "changed"
	Apply(catalog, Evening, nil)

	assert.Equal(t, before, catalog)
}

func TestParseSelector(t *testing.T) {
	assert.Equal(t, Morning, ParseSelector("Morning"))
	assert.Equal(t, MyClubs, ParseSelector("My Clubs"))
	assert.Equal(t, MyClubs, ParseSelector("my-clubs"))
	assert.Equal(t, Evening, ParseSelector("EVENING"))
	assert.Equal(t, All, ParseSelector("weekend"))
	assert.Equal(t, All, ParseSelector(""))

	for _, s := range Selectors() {
		assert.Equal(t, s, ParseSelector(s.String()))
	}
}
