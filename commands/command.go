package commands

import (
	"context"
	"flag"
	"fmt"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"

	"github.com/schedsync/schedule-sheets/config"
	"github.com/schedsync/schedule-sheets/feishu"
	"github.com/schedsync/schedule-sheets/fetch"
	"github.com/schedsync/schedule-sheets/gsheets"
	"github.com/schedsync/schedule-sheets/pipeline"
	"github.com/schedsync/schedule-sheets/publish"
	"github.com/schedsync/schedule-sheets/schedule"
)

const APP = "schedule-sheets"

type Options struct {
	Config string
	Debug  bool
}

// command holds the options shared by the commands that talk to the remote
// spreadsheet.
type command struct {
	spreadsheet string
	sheet       string
	create      bool
	clear       bool
	debug       bool
}

func (cmd *command) flagset(name string) *flag.FlagSet {
	flagset := flag.NewFlagSet(name, flag.ExitOnError)

	flagset.StringVar(&cmd.spreadsheet, "spreadsheet", cmd.spreadsheet, "Spreadsheet token/ID. Defaults to the configured spreadsheet")
	flagset.StringVar(&cmd.sheet, "sheet", cmd.sheet, "Sheet ID or title. Defaults to the first sheet")

	return flagset
}

// target resolves the publish target from the command line and configuration. --new
// ignores any configured spreadsheet.
func (cmd *command) target(cfg *config.Config, date civil.Date) publish.Target {
	target := publish.Target{
		Spreadsheet: cfg.Publish.Spreadsheet,
		Sheet:       cfg.Publish.Sheet,
		Title:       cfg.Publish.Title,
	}

	if cmd.spreadsheet != "" {
		target.Spreadsheet = cmd.spreadsheet
	}

	if cmd.sheet != "" {
		target.Sheet = cmd.sheet
	}

	if cmd.create {
		target.Spreadsheet = ""
		if !date.IsZero() {
			target.Title = fmt.Sprintf("%v_%v", cfg.Publish.Title, date)
		}
	}

	return target
}

func load(options *Options) (*config.Config, error) {
	if options.Debug {
		logrus.SetLevel(logrus.DebugLevel)
	}

	cfg, err := config.Load(options.Config, options.Config != DEFAULT_CONFIG)
	if err != nil {
		return nil, fmt.Errorf("error loading configuration (%v)", err)
	}

	debugf("loaded configuration from %v", options.Config)

	return cfg, nil
}

// targetDate parses a YYYY-MM-DD date, defaulting to tomorrow in the configured zone.
func targetDate(s string, cfg *config.Config) (civil.Date, error) {
	if strings.TrimSpace(s) != "" {
		date, err := civil.ParseDate(strings.TrimSpace(s))
		if err != nil {
			return civil.Date{}, fmt.Errorf("invalid --date '%v' - expected YYYY-MM-DD", s)
		}

		return date, nil
	}

	location, err := cfg.Location()
	if err != nil {
		return civil.Date{}, err
	}

	return civil.DateOf(time.Now().In(location)).AddDays(1), nil
}

// aggregate fetches the full schedule of every configured discipline and returns the
// aggregated primary locale table.
func aggregate(ctx context.Context, cfg *config.Config) (schedule.Table, error) {
	log := logrus.StandardLogger()

	p := pipeline.Pipeline{
		Fetcher:     fetch.NewClient(cfg.API, nil, log),
		Normalizer:  schedule.NewNormalizer(cfg.Schedule.Venue, log),
		Projector:   schedule.NewProjector(cfg.Schedule.PrimaryPrefix, cfg.Schedule.SecondaryPrefix, nil),
		Disciplines: cfg.Schedule.Disciplines,
		Log:         log,
	}

	table, outcomes, err := p.Run(ctx, civil.Date{})

	for _, o := range outcomes {
		switch {
		case o.Err != nil:
			warnf("%-8v %-4v %v", o.Discipline.Name, o.Discipline.Code, o.Err)
		default:
			infof("%-8v %-4v %-7v %v rows", o.Discipline.Name, o.Discipline.Code, o.Status, o.Rows)
		}
	}

	if errors.Is(err, pipeline.ErrNoData) {
		return table, fmt.Errorf("no schedule data retrieved for any discipline")
	} else if err != nil {
		return table, err
	}

	return table, nil
}

func backend(ctx context.Context, cfg *config.Config) (publish.Backend, error) {
	log := logrus.StandardLogger()

	switch cfg.Publish.Backend {
	case config.BackendGoogle:
		b, err := gsheets.NewBackend(ctx, cfg.Google, nil, log)
		if err != nil {
			return nil, fmt.Errorf("authentication/authorization error (%v)", err)
		}

		return b, nil

	default:
		b, err := feishu.NewBackend(ctx, cfg.Feishu, nil, log)
		if err != nil {
			return nil, fmt.Errorf("authentication/authorization error (%v)", err)
		}

		return b, nil
	}
}

// published logs the outcome of a publish and, for Google Sheets, the new revision.
func published(ctx context.Context, b publish.Backend, result publish.Result) {
	infof("published %v rows to spreadsheet %v, sheet %v (%v chunks)", result.Rows, result.Spreadsheet, result.Sheet.ID, result.Chunks)

	if g, ok := b.(*gsheets.Backend); ok {
		if revision, err := g.Revision(ctx, result.Spreadsheet); err != nil {
			warnf("unable to retrieve spreadsheet revision (%v)", err)
		} else {
			debugf("spreadsheet revision %v modified %v", revision.ID, revision.Modified.Format(time.RFC3339))
		}
	}
}

func helpOptions(flagset *flag.FlagSet) {
	count := 0
	flag.VisitAll(func(f *flag.Flag) {
		count++
	})

	flagset.VisitAll(func(f *flag.Flag) {
		fmt.Printf("    --%-13s %s\n", f.Name, f.Usage)
	})

	if count > 0 {
		fmt.Println()
		fmt.Println("  Options:")
		flag.VisitAll(func(f *flag.Flag) {
			fmt.Printf("    --%-13s %s\n", f.Name, f.Usage)
		})
	}
}

func debugf(format string, args ...any) {
	logrus.Debugf(format, args...)
}

func infof(format string, args ...any) {
	logrus.Infof(format, args...)
}

func warnf(format string, args ...any) {
	logrus.Warnf(format, args...)
}
