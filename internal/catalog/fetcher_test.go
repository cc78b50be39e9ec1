package catalog

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleBody = `{
  "events": [
    {
      "id": 12,
      "name": "Intro to Go",
      "start_date": "2024-09-10",
      "start_time": "18:00:00",
      "end_date": "2024-09-10",
      "end_time": "19:30:00",
      "location": "Hall B",
      "event_type": "Workshop",
      "organization": {"id": 3, "name": "Gophers", "org_type": "Academic"},
      "attendees": [{}, {"anything": "ignored"}]
    }
  ]
}`

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func serve(t *testing.T, status int, body string, hits *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if hits != nil {
			hits.Add(1)
		}
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/events/", r.URL.Path)
		assert.Empty(t, r.URL.RawQuery)
		assert.Empty(t, r.Header.Get("Authorization"))
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestFetchDecodesWireNames(t *testing.T) {
	srv := serve(t, http.StatusOK, sampleBody, nil)
	out := NewFetcher(testLogger(), srv.URL+"/").Fetch(context.Background())

	require.True(t, out.OK(), "unexpected error: %v", out.Err)
	require.Len(t, out.Catalog, 1)
	e := out.Catalog[0]
	assert.Equal(t, 12, e.ID)
	assert.Equal(t, "2024-09-10", e.StartDate)
	assert.Equal(t, "18:00:00", e.StartTime)
	assert.Equal(t, "19:30:00", e.EndTime)
	assert.Equal(t, "Workshop", e.EventType)
	assert.Equal(t, "Gophers", e.Organization.Name)
	assert.Equal(t, "Academic", e.Organization.OrgType)
	assert.Len(t, e.Attendees, 2)
}

func TestFetchEmptyCatalog(t *testing.T) {
	srv := serve(t, http.StatusOK, `{"events": []}`, nil)
	out := NewFetcher(testLogger(), srv.URL).Fetch(context.Background())

	require.NoError(t, out.Err)
	assert.NotNil(t, out.Catalog)
	assert.Empty(t, out.Catalog)
}

func TestFetchDecodeFailures(t *testing.T) {
	bodies := map[string]string{
		"missing key": `{"items": []}`,
		"null events": `{"events": null}`,
		"not json":    `<html>oops</html>`,
		"wrong type":  `{"events": [{"id": "twelve"}]}`,
	}
	for name, body := range bodies {
		t.Run(name, func(t *testing.T) {
			srv := serve(t, http.StatusOK, body, nil)
			out := NewFetcher(testLogger(), srv.URL).Fetch(context.Background())
			assert.ErrorIs(t, out.Err, ErrDecode)
			assert.NotErrorIs(t, out.Err, ErrTransport)
			assert.Nil(t, out.Catalog)
		})
	}
}

func TestFetchTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	out := NewFetcher(testLogger(), url).Fetch(context.Background())
	assert.ErrorIs(t, out.Err, ErrTransport)
}

func TestFetchNon2xxIsTransportFailure(t *testing.T) {
	srv := serve(t, http.StatusBadGateway, `{"events": []}`, nil)
	out := NewFetcher(testLogger(), srv.URL).Fetch(context.Background())
	assert.ErrorIs(t, out.Err, ErrTransport)
}

func TestFetchTimeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(200 * time.Millisecond)
	}))
	t.Cleanup(srv.Close)

	out := NewFetcher(testLogger(), srv.URL, WithTimeout(20*time.Millisecond)).Fetch(context.Background())
	assert.ErrorIs(t, out.Err, ErrTransport)
}

func TestFetchAsyncDeliversOnceWithoutRetry(t *testing.T) {
	var hits atomic.Int32
	srv := serve(t, http.StatusInternalServerError, "", &hits)

	ch := NewFetcher(testLogger(), srv.URL).FetchAsync(context.Background())
	out, ok := <-ch
	require.True(t, ok)
	assert.ErrorIs(t, out.Err, ErrTransport)

	_, ok = <-ch
	assert.False(t, ok, "channel should be closed after one outcome")
	assert.Equal(t, int32(1), hits.Load())
}

func TestDecode(t *testing.T) {
	events, err := Decode([]byte(sampleBody))
	require.NoError(t, err)
	e, ok := events.Find(12)
	require.True(t, ok)
	assert.Equal(t, "Intro to Go", e.Name)

	_, ok = events.Find(99)
	assert.False(t, ok)
}
