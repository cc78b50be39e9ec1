package main

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"campusevents/internal/catalog"
	"campusevents/internal/profile"
	"campusevents/internal/session"
	"campusevents/internal/store"
)

const catalogBody = `{"events": [
  {"id": 1, "name": "Chess Night", "start_date": "2024-05-01", "start_time": "19:00:00",
   "end_date": "2024-05-01", "end_time": "21:00:00", "location": "Union", "event_type": "Social",
   "organization": {"id": 1, "name": "Chess Club", "org_type": "Club"}, "attendees": []},
  {"id": 2, "name": "Robot Build", "start_date": "2024-05-02", "start_time": "09:00:00",
   "end_date": "2024-05-02", "end_time": "11:00:00", "location": "Lab", "event_type": "Workshop",
   "organization": {"id": 2, "name": "Robotics Club", "org_type": "Club"}, "attendees": []}
]}`

func runShell(t *testing.T, input string) string {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, catalogBody)
	}))
	t.Cleanup(srv.Close)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s := session.New(logger, store.New(), catalog.NewFetcher(logger, srv.URL), &profile.Profile{}, nil)

	var out bytes.Buffer
	sh := &shell{session: s, logger: logger, in: strings.NewReader(input), out: &out}
	require.NoError(t, sh.run(context.Background()))
	return out.String()
}

func TestShellBrowseAndRegister(t *testing.T) {
	out := runShell(t, strings.Join([]string{
		"refresh",
		"list morning",
		"register 1",
		"register 1",
		"registered",
		"cancel 1",
		"cancel 1",
		"register 42",
		"quit",
	}, "\n"))

	assert.Contains(t, out, "2 events")
	assert.Contains(t, out, "#2 Robot Build")
	assert.Contains(t, out, "1 registered")
	assert.Contains(t, out, "no change")
	assert.Contains(t, out, "#1 Chess Night")
	assert.Contains(t, out, "0 registered")
	assert.Contains(t, out, "event not in catalog")
}

func TestShellClubsDriveMyClubsFilter(t *testing.T) {
	out := runShell(t, strings.Join([]string{
		"refresh",
		"list myclubs",
		"addclub",
		"setclub 0 Robotics Club",
		"clubs",
		"list my clubs",
	}, "\n"))

	assert.Contains(t, out, "no events")
	assert.Contains(t, out, "0: Robotics Club")
	assert.Equal(t, 1, strings.Count(out, "#2 Robot Build"))
	assert.NotContains(t, out, "#1 Chess Night")
}

func TestShellExportWithoutTarget(t *testing.T) {
	out := runShell(t, "refresh\nregister 2\nexport 2\nexport x\nbogus\n")
	assert.Contains(t, out, "no calendar export configured")
	assert.Contains(t, out, `invalid number "x"`)
	assert.Contains(t, out, `unknown command "bogus"`)
}
