// Command calendarctl shows and edits the calendar from a terminal.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/lomoval/personal-calendar/internal/app"
	"github.com/lomoval/personal-calendar/internal/calendar"
	"github.com/lomoval/personal-calendar/internal/client"
	"github.com/lomoval/personal-calendar/internal/logger"
	log "github.com/sirupsen/logrus"
)

const usage = `usage: calendarctl [-api URL] <command> [flags]

commands:
  month [YYYY-MM]   show the month grid (current month by default)
  list [YYYY-MM]    list events of the month
  create            create an event
  update -id ID     replace an event
  delete -id ID     delete an event
`

const monthLayout = "2006-01"

var apiURL string

func init() {
	flag.StringVar(&apiURL, "api", "http://127.0.0.1:3001", "Calendar API base URL")
	flag.Usage = func() { fmt.Fprint(flag.CommandLine.Output(), usage) }
}

func main() {
	flag.Parse()
	_ = logger.PrepareLogger(logger.Config{Level: "ERROR"})

	if err := run(context.Background(), flag.Args()); err != nil {
		printError(err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		flag.Usage()
		return errors.New("command is not provided")
	}

	view := calendar.NewView(client.New(apiURL), time.Sunday, time.Now)
	cmd, rest := args[0], args[1:]
	switch cmd {
	case "month", "list":
		if err := goTo(ctx, view, rest); err != nil {
			return err
		}
		if cmd == "month" {
			fmt.Println(renderMonth(view.Month(), time.Now()))
		} else {
			fmt.Println(renderEvents(view.Events()))
		}
		return nil
	case "create", "update", "delete":
		return edit(ctx, view, cmd, rest)
	default:
		flag.Usage()
		return fmt.Errorf("unknown command %q", cmd)
	}
}

func goTo(ctx context.Context, view *calendar.View, args []string) error {
	if len(args) == 0 {
		return view.Refresh(ctx)
	}
	date, err := time.ParseInLocation(monthLayout, args[0], time.Local)
	if err != nil {
		return fmt.Errorf("incorrect month %q, expected YYYY-MM", args[0])
	}
	return view.GoTo(ctx, date)
}

func edit(ctx context.Context, view *calendar.View, cmd string, args []string) error {
	fs := flag.NewFlagSet(cmd, flag.ContinueOnError)
	id := fs.Int64("id", 0, "event id")
	title := fs.String("title", "", "event title")
	description := fs.String("description", "", "event description")
	start := fs.String("start", "", "start date, YYYY-MM-DDTHH:MM:SS")
	end := fs.String("end", "", "end date, YYYY-MM-DDTHH:MM:SS")
	color := fs.String("color", "", "color, #RRGGBB")
	if err := fs.Parse(args); err != nil {
		return err
	}

	in := app.EventInput{Title: *title, StartDate: *start, EndDate: *end}
	if *description != "" {
		in.Description = description
	}
	if *color != "" {
		in.Color = color
	}

	if cmd == "create" {
		date, _ := time.ParseInLocation("2006-01-02", firstN(*start, len("2006-01-02")), time.Local)
		if err := view.OpenCreate(date); err != nil {
			return err
		}
		e, err := view.Save(ctx, in)
		if err != nil {
			return err
		}
		fmt.Printf("created %s\n", e)
		return nil
	}

	e, err := client.New(apiURL).GetEvent(ctx, *id)
	if err != nil {
		return err
	}
	if err := view.OpenEdit(e); err != nil {
		return err
	}
	if cmd == "delete" {
		if err := view.Delete(ctx); err != nil {
			return err
		}
		fmt.Printf("deleted %s\n", e)
		return nil
	}
	updated, err := view.Save(ctx, in)
	if err != nil {
		return err
	}
	fmt.Printf("updated %s\n", updated)
	return nil
}

func firstN(s string, n int) string {
	if len(s) < n {
		return s
	}
	return s[:n]
}

func printError(err error) {
	var vErr *app.ValidationError
	if errors.As(err, &vErr) {
		fmt.Fprintln(os.Stderr, "validation error:")
		for _, d := range vErr.Details {
			fmt.Fprintf(os.Stderr, "  %s: %s\n", d.Field, d.Message)
		}
		return
	}
	log.Debugf("command failed: %+v", err)
	fmt.Fprintln(os.Stderr, err)
}
