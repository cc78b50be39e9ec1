package caldav

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"path"
	"time"

	"campusevents/internal/ics"
	"campusevents/internal/models"

	"github.com/emersion/go-webdav"
	"github.com/emersion/go-webdav/caldav"
)

// DefaultEndpoint is iCloud's CalDAV root.
const DefaultEndpoint = "https://caldav.icloud.com/"

// userAgentTransport tags every request with the client's user agent.
type userAgentTransport struct {
	Transport http.RoundTripper
}

// RoundTrip adds the User-Agent header.
func (t *userAgentTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", "campusevents/1.0")
	return t.Transport.RoundTrip(req)
}

// Client writes registered events into one calendar of a CalDAV server.
type Client struct {
	caldavClient *caldav.Client
	logger       *slog.Logger
	calendarPath string
	location     *time.Location
}

// Dial logs in with basic auth and locates the calendar named calendarName.
func Dial(ctx context.Context, logger *slog.Logger, endpoint, username, password, calendarName string, loc *time.Location) (*Client, error) {
	if endpoint == "" {
		endpoint = DefaultEndpoint
	}
	httpClient := webdav.HTTPClientWithBasicAuth(&http.Client{
		Transport: &userAgentTransport{Transport: http.DefaultTransport},
	}, username, password)

	c, err := New(logger, httpClient, endpoint, "", loc)
	if err != nil {
		return nil, err
	}

	logger.Info("Finding CalDAV calendar", "calendarName", calendarName)
	calendarPath, err := c.findCalendar(ctx, calendarName)
	if err != nil {
		return nil, fmt.Errorf("could not find calendar '%s': %w", calendarName, err)
	}
	c.calendarPath = calendarPath
	logger.Info("Found CalDAV calendar", "path", calendarPath)

	return c, nil
}

// New creates a Client for a calendar whose collection path is already known.
func New(logger *slog.Logger, httpClient webdav.HTTPClient, endpoint, calendarPath string, loc *time.Location) (*Client, error) {
	caldavClient, err := caldav.NewClient(httpClient, endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to create caldav client: %w", err)
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Client{
		caldavClient: caldavClient,
		logger:       logger,
		calendarPath: calendarPath,
		location:     loc,
	}, nil
}

// ObjectPath is where an event is stored inside the calendar collection.
func (c *Client) ObjectPath(event models.Event) string {
	return path.Join(c.calendarPath, ics.EventUID(event)+".ics")
}

// Export stores the event as a calendar object and returns its path. The object
// name is derived from the event ID, so exporting twice overwrites one entry.
func (c *Client) Export(ctx context.Context, event models.Event) (string, error) {
	ve, err := ics.Component(event, c.location, time.Now())
	if err != nil {
		return "", err
	}

	objectPath := c.ObjectPath(event)
	c.logger.Debug("Putting event to CalDAV", "id", event.ID, "path", objectPath)

	obj, err := c.caldavClient.PutCalendarObject(ctx, objectPath, ics.NewCalendar(ve))
	if err != nil {
		return "", fmt.Errorf("failed to put event on CalDAV server: %w", err)
	}

	c.logger.Info("Exported event to CalDAV.", "id", event.ID, "path", obj.Path)
	return obj.Path, nil
}

// findCalendar walks principal, home set and calendar list to the named calendar.
func (c *Client) findCalendar(ctx context.Context, name string) (string, error) {
	principalPath, err := c.caldavClient.FindCurrentUserPrincipal(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to find principal path: %w", err)
	}

	homeSetPath, err := c.caldavClient.FindCalendarHomeSet(ctx, principalPath)
	if err != nil {
		return "", fmt.Errorf("failed to find calendar home set: %w", err)
	}

	calendars, err := c.caldavClient.FindCalendars(ctx, homeSetPath)
	if err != nil {
		return "", fmt.Errorf("failed to find calendars: %w", err)
	}

	for _, cal := range calendars {
		if cal.Name == name {
			return cal.Path, nil
		}
	}
	return "", fmt.Errorf("no calendar found with name '%s'", name)
}
