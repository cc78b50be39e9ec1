package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"

	"campusevents/internal/filter"
	"campusevents/internal/session"
)

const shellHelp = `commands:
  refresh              fetch the catalog again
  list [selector]      show events (all, myclubs, morning, afternoon, evening)
  register ID          sign up for an event
  cancel ID            withdraw from an event
  registered           show signed-up events
  export ID            push a signed-up event to your calendar
  clubs                show club memberships
  addclub [NAME]       add a club entry
  setclub INDEX NAME   rename a club entry
  rmclub INDEX         remove a club entry
  quit`

// shell is a line-oriented front end over a Session.
type shell struct {
	session *session.Session
	logger  *slog.Logger
	in      io.Reader
	out     io.Writer
}

func (sh *shell) run(ctx context.Context) error {
	scanner := bufio.NewScanner(sh.in)
	fmt.Fprintln(sh.out, `type "help" for commands`)
	for {
		fmt.Fprint(sh.out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(sh.out)
			return scanner.Err()
		}
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}
		if fields[0] == "quit" || fields[0] == "exit" {
			return nil
		}
		if err := sh.exec(ctx, fields[0], fields[1:]); err != nil {
			sh.logger.Debug("Shell command failed", "command", fields[0], "error", err)
			fmt.Fprintf(sh.out, "error: %v\n", err)
		}
	}
}

func (sh *shell) exec(ctx context.Context, cmd string, args []string) error {
	s := sh.session
	switch cmd {
	case "help":
		fmt.Fprintln(sh.out, shellHelp)
	case "refresh":
		if err := s.Refresh(ctx); err != nil {
			return err
		}
		fmt.Fprintf(sh.out, "%d events\n", len(s.Store().Catalog()))
	case "list":
		sel := filter.All
		if len(args) > 0 {
			sel = filter.ParseSelector(strings.Join(args, ""))
		}
		printEvents(sh.out, s.Visible(sel))
	case "register", "cancel":
		id, err := idArg(args)
		if err != nil {
			return err
		}
		var changed bool
		if cmd == "register" {
			changed, err = s.Register(id)
		} else {
			changed, err = s.Cancel(id)
		}
		if err != nil {
			return err
		}
		if !changed {
			fmt.Fprintln(sh.out, "no change")
		}
		fmt.Fprintf(sh.out, "%d registered\n", s.Store().RegisteredCount())
	case "registered":
		printEvents(sh.out, s.Registered())
	case "export":
		id, err := idArg(args)
		if err != nil {
			return err
		}
		remoteID, err := s.Export(ctx, id)
		if err != nil {
			return err
		}
		fmt.Fprintf(sh.out, "exported #%d -> %s\n", id, remoteID)
	case "clubs":
		printClubs(sh.out, s.Profile())
	case "addclub":
		p := s.Profile()
		i := p.AddClub()
		if len(args) > 0 {
			return p.SetClub(i, strings.Join(args, " "))
		}
	case "setclub":
		i, err := idArg(args)
		if err != nil {
			return err
		}
		return s.Profile().SetClub(i, strings.Join(args[1:], " "))
	case "rmclub":
		i, err := idArg(args)
		if err != nil {
			return err
		}
		return s.Profile().RemoveClub(i)
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
	return nil
}

func idArg(args []string) (int, error) {
	if len(args) == 0 {
		return 0, fmt.Errorf("missing number")
	}
	n, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("invalid number %q", args[0])
	}
	return n, nil
}
