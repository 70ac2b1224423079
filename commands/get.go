package commands

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/schedsync/schedule-sheets/schedule"
)

var GetCmd = Get{
	command: command{
		debug: false,
	},

	date: "",
	file: time.Now().Format("2006-01-02T150405.tsv"),
}

type Get struct {
	command
	date string
	file string
}

func (cmd *Get) Name() string {
	return "get"
}

func (cmd *Get) Description() string {
	return "Retrieves the aggregated schedule and stores it to a local TSV file"
}

func (cmd *Get) Usage() string {
	return "[--date <yyyy-mm-dd>] --file <file>"
}

func (cmd *Get) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s [--debug] get [options] --file <file>\n", APP)
	fmt.Println()
	fmt.Println("  Downloads the schedule for every configured discipline to a TSV file")
	fmt.Println()

	helpOptions(cmd.FlagSet())

	fmt.Println()
	fmt.Println("  Examples:")
	fmt.Printf(`    %s --debug get --date 2025-11-12 --file "schedule.tsv"`+"\n", APP)
	fmt.Println()
}

func (cmd *Get) FlagSet() *flag.FlagSet {
	flagset := flag.NewFlagSet("get", flag.ExitOnError)

	flagset.StringVar(&cmd.date, "date", cmd.date, "Restricts the schedule to a single day (yyyy-mm-dd). Defaults to the full schedule")
	flagset.StringVar(&cmd.file, "file", cmd.file, "TSV file name. Defaults to '<yyyy-mm-ddTHHmmss>.tsv'")

	return flagset
}

func (cmd *Get) Execute(args ...any) error {
	options := args[0].(*Options)

	cmd.debug = options.Debug

	if strings.TrimSpace(cmd.file) == "" {
		return fmt.Errorf("--file is a required option")
	}

	cfg, err := load(options)
	if err != nil {
		return err
	}

	table, err := aggregate(context.Background(), cfg)
	if err != nil {
		return err
	}

	if strings.TrimSpace(cmd.date) != "" {
		date, err := targetDate(cmd.date, cfg)
		if err != nil {
			return err
		}

		table = schedule.FilterByDate(table, schedule.LabelDate, date)
	}

	table = schedule.WithSequence(schedule.FormatDates(table, schedule.LabelDate), schedule.LabelSequence)

	tmp, err := os.CreateTemp(os.TempDir(), "schedule")
	if err != nil {
		return err
	}

	defer func() {
		tmp.Close()
		os.Remove(tmp.Name())
	}()

	if err := tableToTSV(tmp, table); err != nil {
		return fmt.Errorf("error creating TSV file (%v)", err)
	}

	tmp.Close()

	dir := filepath.Dir(cmd.file)
	if err := os.MkdirAll(dir, 0770); err != nil {
		return err
	}

	if err := os.Rename(tmp.Name(), cmd.file); err != nil {
		return err
	}

	infof("retrieved %v schedule rows to file %s", table.Len(), cmd.file)

	return nil
}
