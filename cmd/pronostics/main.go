package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/riskibarqy/pronostic-tracker/internal/app"
	"github.com/riskibarqy/pronostic-tracker/internal/config"
	"github.com/riskibarqy/pronostic-tracker/internal/observability"
	"github.com/riskibarqy/pronostic-tracker/internal/platform/logging"
	"github.com/riskibarqy/pronostic-tracker/internal/usecase"
)

const (
	exitOK    = 0
	exitError = 1
	exitUsage = 2
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	os.Exit(code)
}

type command struct {
	name      string
	daysAhead int
	eventID   int64
	userID    string
}

func parseCommand(args []string, defaultDays int) (command, error) {
	cmd := command{name: "run", daysAhead: defaultDays}
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		cmd.name = strings.ToLower(strings.TrimSpace(args[0]))
		args = args[1:]
	}

	fs := flag.NewFlagSet(cmd.name, flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	switch cmd.name {
	case "ingest", "run":
		fs.IntVar(&cmd.daysAhead, "days", defaultDays, "days ahead to ingest")
	case "settle":
	case "lookup":
		fs.Int64Var(&cmd.eventID, "event", 0, "provider fixture id")
	case "stats":
		fs.StringVar(&cmd.userID, "user", "", "user id")
	default:
		return command{}, fmt.Errorf("unknown command %q", cmd.name)
	}
	if err := fs.Parse(args); err != nil {
		return command{}, fmt.Errorf("%s: %w", cmd.name, err)
	}
	if fs.NArg() > 0 {
		return command{}, fmt.Errorf("%s: unexpected arguments %v", cmd.name, fs.Args())
	}

	switch {
	case cmd.daysAhead < 0:
		return command{}, fmt.Errorf("%s: -days must be >= 0", cmd.name)
	case cmd.name == "lookup" && cmd.eventID <= 0:
		return command{}, fmt.Errorf("lookup: -event is required")
	case cmd.name == "stats" && strings.TrimSpace(cmd.userID) == "":
		return command{}, fmt.Errorf("stats: -user is required")
	}
	return cmd, nil
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(stderr, "load config: %v\n", err)
		return exitError
	}

	cmd, err := parseCommand(args, cfg.IngestDaysAhead)
	if err != nil {
		fmt.Fprintln(stderr, err)
		printUsage(stderr)
		return exitUsage
	}

	logger := logging.NewJSONWriter(cfg.LogLevel, stderr)
	logging.SetDefault(logger)
	defer func() { _ = logger.Sync() }()

	shutdownTracing, err := observability.InitUptrace(cfg, logger)
	if err != nil {
		logger.Error("init uptrace", "error", err)
		return exitError
	}
	defer func() { _ = shutdownTracing(context.Background()) }()

	container, err := app.Build(ctx, cfg, logger)
	if err != nil {
		logger.Error("build app", "error", err)
		return exitError
	}
	defer func() { _ = container.Close() }()

	if err := execute(ctx, container, cmd, stdout); err != nil {
		if errors.Is(err, usecase.ErrCredentialMissing) {
			fmt.Fprintln(stderr, "SPORTMONKS_TOKEN is not set; aborting")
		}
		logger.ErrorContext(ctx, "command failed", "command", cmd.name, "error", err)
		return exitError
	}
	return exitOK
}

func execute(ctx context.Context, c *app.Container, cmd command, stdout io.Writer) error {
	switch cmd.name {
	case "ingest":
		return ingest(ctx, c, cmd.daysAhead, stdout)
	case "settle":
		return settle(ctx, c, stdout)
	case "lookup":
		item, created, err := c.Lookup.FetchAndStore(ctx, cmd.eventID)
		if err != nil {
			return err
		}
		verb := "updated"
		if created {
			verb = "added"
		}
		fmt.Fprintf(stdout, "match %s: #%d %s vs %s at %s (%s, %s) status=%q\n",
			verb, item.EventID, item.HomeTeam, item.AwayTeamLabel(),
			item.KickoffAt.Format("2006-01-02 15:04 MST"), item.LeagueLabel(), item.VenueLabel(), item.Status)
		return nil
	case "stats":
		stats, err := c.Stats.UserStats(ctx, cmd.userID)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "stats %s: total=%d won=%d lost=%d void=%d pending=%d win_rate=%.2f%% profit=%.2f\n",
			stats.UserID, stats.Total, stats.Won, stats.Lost, stats.Void, stats.Pending, stats.WinRate, stats.Profit)
		return nil
	default:
		if err := ingest(ctx, c, cmd.daysAhead, stdout); err != nil {
			return err
		}
		return settle(ctx, c, stdout)
	}
}

func ingest(ctx context.Context, c *app.Container, daysAhead int, stdout io.Writer) error {
	result, err := c.Ingestion.IngestUpcoming(ctx, daysAhead)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "ingest %s..%s: pages=%d added=%d updated=%d skipped=%d errored=%d\n",
		result.From.Format("2006-01-02"), result.To.Format("2006-01-02"),
		result.Pages, result.Added, result.Updated, result.Skipped, result.Errored)
	return nil
}

func settle(ctx context.Context, c *app.Container, stdout io.Writer) error {
	result, err := c.Settlement.SettlePending(ctx)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "settle before %s: pending=%d settled=%d skipped=%d errored=%d\n",
		result.Cutoff.UTC().Format("2006-01-02 15:04Z"), result.Pending, result.Settled, result.Skipped, result.Errored)
	return nil
}

func printUsage(w io.Writer) {
	name := filepath.Base(os.Args[0])
	fmt.Fprintf(w, "usage: %s <run|ingest|settle|lookup|stats> [flags]\n", name)
	fmt.Fprintln(w, "examples:")
	fmt.Fprintf(w, "  %s run\n", name)
	fmt.Fprintf(w, "  %s ingest -days 3\n", name)
	fmt.Fprintf(w, "  %s settle\n", name)
	fmt.Fprintf(w, "  %s lookup -event 19134567\n", name)
	fmt.Fprintf(w, "  %s stats -user 123456789\n", name)
}
