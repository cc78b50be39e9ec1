package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"campusevents/internal/auth"
	"campusevents/internal/caldav"
	"campusevents/internal/catalog"
	"campusevents/internal/config"
	"campusevents/internal/filter"
	"campusevents/internal/google"
	"campusevents/internal/ics"
	"campusevents/internal/models"
	"campusevents/internal/profile"
	"campusevents/internal/session"
	"campusevents/internal/store"

	"github.com/urfave/cli/v2"
	"golang.org/x/oauth2"
)

func main() {
	app := &cli.App{
		Name:  "campusevents",
		Usage: "Browse campus events, sign up, and push them to your calendar.",
		Commands: []*cli.Command{
			authCommand(),
			eventsCommand(),
			exportCommand(),
			clubsCommand(),
			shellCommand(),
		},
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("Application failed", "error", err)
		os.Exit(1)
	}
}

// env bundles what every command needs.
type env struct {
	cfg     *config.Config
	logger  *slog.Logger
	profile *profile.Profile
}

func loadEnv() (*env, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	logger := setupLogger(cfg.LogLevel)

	p, err := profile.Load(cfg.ProfileFile)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}
	return &env{cfg: cfg, logger: logger, profile: p}, nil
}

func (e *env) newSession() *session.Session {
	fetcher := catalog.NewFetcher(e.logger, e.cfg.EventsBaseURL, catalog.WithTimeout(e.cfg.FetchTimeout))
	return session.New(e.logger, store.New(), fetcher, e.profile, nil)
}

func (e *env) tokenProvider() auth.TokenProvider {
	oauthCfg, err := google.OAuthConfig(e.cfg.Google.ClientID, e.cfg.Google.ClientSecret)
	if err != nil {
		e.logger.Debug("No OAuth client config, tokens will not be refreshed.", "error", err)
	}
	return google.NewFileTokenProvider(e.cfg.Google.TokenFile, oauthCfg)
}

func (e *env) googleExporter() *google.Exporter {
	opts := []google.ExporterOption{google.WithLocation(e.cfg.Location)}
	if e.cfg.Google.Endpoint != "" {
		opts = append(opts, google.WithEndpoint(e.cfg.Google.Endpoint))
	}
	return google.NewExporter(e.logger, e.tokenProvider(), opts...)
}

func (e *env) caldavExporter(ctx context.Context) (*caldav.Client, error) {
	c := e.cfg.CalDAV
	if !c.Enabled() {
		return nil, errors.New("CALDAV_USERNAME, CALDAV_PASSWORD and CALDAV_CALENDAR_NAME must be set")
	}
	return caldav.Dial(ctx, e.logger, c.Endpoint, c.Username, c.Password, c.CalendarName, e.cfg.Location)
}

func authCommand() *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Sign in with Google so signed-up events can be exported.",
		Action: func(c *cli.Context) error {
			e, err := loadEnv()
			if err != nil {
				return err
			}
			e.logger.Info("Starting Google authentication flow.")

			oauthCfg, err := google.OAuthConfig(e.cfg.Google.ClientID, e.cfg.Google.ClientSecret)
			if err != nil {
				return fmt.Errorf("failed to get google oauth config: %w", err)
			}

			authURL := oauthCfg.AuthCodeURL("state-token", oauth2.AccessTypeOffline)
			fmt.Printf("Go to the following link in your browser then type the "+
				"authorization code: \n%v\n", authURL)

			fmt.Print("Enter Authorization Code: ")
			reader := bufio.NewReader(os.Stdin)
			authCode, _ := reader.ReadString('\n')
			authCode = strings.TrimSpace(authCode)

			token, err := google.TokenFromWeb(c.Context, oauthCfg, authCode)
			if err != nil {
				return fmt.Errorf("unable to retrieve token from web: %w", err)
			}
			if err := google.SaveToken(e.cfg.Google.TokenFile, token); err != nil {
				return fmt.Errorf("failed to save token: %w", err)
			}
			e.logger.Info("Saved Google token.", "file", e.cfg.Google.TokenFile)

			identity, err := google.FetchIdentity(c.Context, auth.Static(token.AccessToken))
			if err != nil {
				e.logger.Warn("Signed in, but could not read profile", "error", err)
				return nil
			}
			e.profile.DisplayName = identity.DisplayName
			e.profile.Email = identity.Email
			if err := e.profile.Save(e.cfg.ProfileFile); err != nil {
				return fmt.Errorf("failed to save profile: %w", err)
			}
			fmt.Printf("Signed in as %s <%s>\n", identity.DisplayName, identity.Email)
			return nil
		},
	}
}

func eventsCommand() *cli.Command {
	return &cli.Command{
		Name:  "events",
		Usage: "Fetch the event catalog and print it.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "filter", Value: "all", Usage: "all, myclubs, morning, afternoon or evening"},
			&cli.StringSliceFlag{Name: "club", Usage: "Club membership for --filter myclubs (repeatable). Defaults to the profile's clubs."},
		},
		Action: func(c *cli.Context) error {
			e, err := loadEnv()
			if err != nil {
				return err
			}
			if clubs := c.StringSlice("club"); len(clubs) > 0 {
				e.profile.Clubs = clubs
			}

			s := e.newSession()
			if err := s.Refresh(c.Context); err != nil {
				return fmt.Errorf("failed to fetch events: %w", err)
			}
			printEvents(c.App.Writer, s.Visible(filter.ParseSelector(c.String("filter"))))
			return nil
		},
	}
}

func exportCommand() *cli.Command {
	return &cli.Command{
		Name:  "export",
		Usage: "Sign up for events by ID and export them.",
		Flags: []cli.Flag{
			&cli.IntSliceFlag{Name: "id", Required: true, Usage: "Event ID to sign up for and export (repeatable)."},
			&cli.StringFlag{Name: "target", Value: "google", Usage: "google, caldav or ics"},
			&cli.StringFlag{Name: "out", Value: "events.ics", Usage: "Output file for --target ics."},
		},
		Action: func(c *cli.Context) error {
			e, err := loadEnv()
			if err != nil {
				return err
			}

			s := e.newSession()
			if err := s.Refresh(c.Context); err != nil {
				return fmt.Errorf("failed to fetch events: %w", err)
			}
			for _, id := range c.IntSlice("id") {
				if _, err := s.Register(id); err != nil {
					return err
				}
			}

			switch target := c.String("target"); target {
			case "ics":
				return writeICS(c.String("out"), s, e)
			case "caldav":
				exp, err := e.caldavExporter(c.Context)
				if err != nil {
					return fmt.Errorf("failed to create caldav client: %w", err)
				}
				s.SetExporter(exp)
			case "google":
				s.SetExporter(e.googleExporter())
			default:
				return fmt.Errorf("unknown export target %q", target)
			}

			var errs []error
			for _, ev := range s.Registered() {
				remoteID, err := s.Export(c.Context, ev.ID)
				if err != nil {
					errs = append(errs, fmt.Errorf("event %d: %w", ev.ID, err))
					continue
				}
				fmt.Fprintf(c.App.Writer, "exported #%d -> %s\n", ev.ID, remoteID)
			}
			return errors.Join(errs...)
		},
	}
}

func writeICS(path string, s *session.Session, e *env) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	err = ics.Encode(f, s.Registered(), e.cfg.Location)
	if errors.Is(err, ics.ErrNothingToExport) {
		return err
	}
	if err != nil {
		e.logger.Warn("Some events were skipped", "error", err)
	}
	e.logger.Info("Wrote calendar file.", "file", path, "count", s.Store().RegisteredCount())
	return nil
}

func clubsCommand() *cli.Command {
	return &cli.Command{
		Name:  "clubs",
		Usage: "Manage the club memberships used by the myclubs filter.",
		Subcommands: []*cli.Command{
			{
				Name:  "list",
				Usage: "Show clubs.",
				Action: func(c *cli.Context) error {
					e, err := loadEnv()
					if err != nil {
						return err
					}
					printClubs(c.App.Writer, e.profile)
					return nil
				},
			},
			{
				Name:      "add",
				Usage:     "Add a club entry, optionally naming it.",
				ArgsUsage: "[NAME]",
				Action: func(c *cli.Context) error {
					return editProfile(func(p *profile.Profile) error {
						i := p.AddClub()
						if c.NArg() > 0 {
							return p.SetClub(i, strings.Join(c.Args().Slice(), " "))
						}
						return nil
					})
				},
			},
			{
				Name:      "set",
				Usage:     "Rename the club at INDEX.",
				ArgsUsage: "INDEX NAME",
				Action: func(c *cli.Context) error {
					i, err := indexArg(c)
					if err != nil {
						return err
					}
					return editProfile(func(p *profile.Profile) error {
						return p.SetClub(i, strings.Join(c.Args().Tail(), " "))
					})
				},
			},
			{
				Name:      "remove",
				Usage:     "Remove the club at INDEX.",
				ArgsUsage: "INDEX",
				Action: func(c *cli.Context) error {
					i, err := indexArg(c)
					if err != nil {
						return err
					}
					return editProfile(func(p *profile.Profile) error {
						return p.RemoveClub(i)
					})
				},
			},
		},
	}
}

func editProfile(edit func(*profile.Profile) error) error {
	e, err := loadEnv()
	if err != nil {
		return err
	}
	if err := edit(e.profile); err != nil {
		return err
	}
	return e.profile.Save(e.cfg.ProfileFile)
}

func indexArg(c *cli.Context) (int, error) {
	var i int
	if _, err := fmt.Sscan(c.Args().First(), &i); err != nil {
		return 0, fmt.Errorf("invalid club index %q", c.Args().First())
	}
	return i, nil
}

func shellCommand() *cli.Command {
	return &cli.Command{
		Name:  "shell",
		Usage: "Interactive session: browse, sign up and export.",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "target", Value: "google", Usage: "Export target for the export command: google or caldav"},
		},
		Action: func(c *cli.Context) error {
			e, err := loadEnv()
			if err != nil {
				return err
			}
			s := e.newSession()
			switch c.String("target") {
			case "caldav":
				exp, err := e.caldavExporter(c.Context)
				if err != nil {
					return fmt.Errorf("failed to create caldav client: %w", err)
				}
				s.SetExporter(exp)
			default:
				s.SetExporter(e.googleExporter())
			}

			if err := s.Refresh(c.Context); err != nil {
				e.logger.Warn("Initial fetch failed, use 'refresh' to retry", "error", err)
			}
			sh := &shell{session: s, logger: e.logger, in: os.Stdin, out: c.App.Writer}
			return sh.run(c.Context)
		},
	}
}

func printEvents(w io.Writer, events []models.Event) {
	if len(events) == 0 {
		fmt.Fprintln(w, "no events")
		return
	}
	for _, e := range events {
		fmt.Fprintln(w, e.String())
	}
}

func printClubs(w io.Writer, p *profile.Profile) {
	if len(p.Clubs) == 0 {
		fmt.Fprintln(w, "no clubs")
		return
	}
	for i, c := range p.Clubs {
		if c == "" {
			c = "(empty)"
		}
		fmt.Fprintf(w, "%d: %s\n", i, c)
	}
}

func setupLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))
}
