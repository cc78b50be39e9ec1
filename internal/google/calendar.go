package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"campusevents/internal/auth"
	"campusevents/internal/models"

	"golang.org/x/oauth2"
	"google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
)

const primaryCalendarID = "primary"

var (
	// ErrExportRejected marks a non-2xx answer from the calendar API.
	ErrExportRejected = errors.New("calendar rejected event")
	// ErrExportFailed marks a transport failure talking to the calendar API.
	ErrExportFailed = errors.New("calendar export failed")
)

// ExportError carries the HTTP status of a failed export. StatusCode is 0 when
// the request never got an answer.
type ExportError struct {
	StatusCode int
	Err        error
}

func (e *ExportError) Error() string {
	if e.StatusCode == 0 {
		return e.Err.Error()
	}
	return fmt.Sprintf("%v (status %d)", e.Err, e.StatusCode)
}

func (e *ExportError) Unwrap() error { return e.Err }

// ExportResult is what ExportAsync delivers.
type ExportResult struct {
	CalendarEventID string
	Err             error
}

// Exporter creates events in the user's primary Google Calendar.
type Exporter struct {
	logger     *slog.Logger
	tokens     auth.TokenProvider
	endpoint   string
	location   *time.Location
	httpClient *http.Client
}

// ExporterOption configures an Exporter.
type ExporterOption func(*Exporter)

// WithEndpoint points the exporter at a different calendar API base URL.
func WithEndpoint(url string) ExporterOption {
	return func(e *Exporter) { e.endpoint = url }
}

// WithLocation sets the zone the event's wall-clock fields are read in. Defaults to UTC.
func WithLocation(loc *time.Location) ExporterOption {
	return func(e *Exporter) { e.location = loc }
}

// WithBaseClient sets the HTTP client the bearer transport is layered on.
func WithBaseClient(c *http.Client) ExporterOption {
	return func(e *Exporter) { e.httpClient = c }
}

// NewExporter creates an Exporter that obtains credentials from tokens.
func NewExporter(logger *slog.Logger, tokens auth.TokenProvider, opts ...ExporterOption) *Exporter {
	e := &Exporter{
		logger:   logger,
		tokens:   tokens,
		location: time.UTC,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Export sends one calendar-event creation request and returns the created
// event's ID. It never retries; calling it twice creates two entries.
func (e *Exporter) Export(ctx context.Context, event models.Event) (string, error) {
	start, end, err := event.Schedule(e.location)
	if err != nil {
		return "", err
	}

	token, err := e.tokens.AccessToken(ctx)
	if err != nil {
		return "", err
	}

	opts := []option.ClientOption{option.WithHTTPClient(bearerClient(ctx, e.httpClient, token))}
	if e.endpoint != "" {
		opts = append(opts, option.WithEndpoint(e.endpoint))
	}
	service, err := calendar.NewService(ctx, opts...)
	if err != nil {
		return "", fmt.Errorf("failed to create calendar service: %w", err)
	}

	e.logger.Debug("Exporting event to Google Calendar", "id", event.ID, "title", event.Name)
	created, err := service.Events.Insert(primaryCalendarID, toCalendarEvent(event, start, end)).Context(ctx).Do()
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) {
			e.logger.Error("Google Calendar rejected event", "id", event.ID, "status", apiErr.Code)
			return "", &ExportError{StatusCode: apiErr.Code, Err: fmt.Errorf("%w: %w", ErrExportRejected, err)}
		}
		e.logger.Error("Google Calendar request failed", "id", event.ID, "error", err)
		return "", &ExportError{Err: fmt.Errorf("%w: %w", ErrExportFailed, err)}
	}

	e.logger.Info("Exported event to Google Calendar.", "id", event.ID, "calendarEventID", created.Id)
	return created.Id, nil
}

// ExportAsync runs Export on its own goroutine and delivers one result.
func (e *Exporter) ExportAsync(ctx context.Context, event models.Event) <-chan ExportResult {
	ch := make(chan ExportResult, 1)
	go func() {
		defer close(ch)
		id, err := e.Export(ctx, event)
		ch <- ExportResult{CalendarEventID: id, Err: err}
	}()
	return ch
}

// toCalendarEvent converts an event into the Google Calendar request body.
func toCalendarEvent(event models.Event, start, end time.Time) *calendar.Event {
	return &calendar.Event{
		Summary:  event.Name,
		Location: event.Location,
		Start: &calendar.EventDateTime{
			DateTime: start.Format(time.RFC3339),
			TimeZone: "UTC",
		},
		End: &calendar.EventDateTime{
			DateTime: end.Format(time.RFC3339),
			TimeZone: "UTC",
		},
	}
}

// bearerClient returns an HTTP client that sends token as a bearer credential.
func bearerClient(ctx context.Context, base *http.Client, token string) *http.Client {
	if base != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, base)
	}
	return oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{
		AccessToken: token,
		TokenType:   "Bearer",
	}))
}
