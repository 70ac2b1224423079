package commands

import (
	"context"
	"flag"
	"fmt"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/sirupsen/logrus"

	"github.com/schedsync/schedule-sheets/publish"
)

var ClearCmd = Clear{
	command: command{
		debug: false,
	},
}

// Clear blanks every cell of a published sheet.
type Clear struct {
	command
}

func (cmd *Clear) Name() string {
	return "clear"
}

func (cmd *Clear) Description() string {
	return "Clears a sheet of the remote spreadsheet"
}

func (cmd *Clear) Usage() string {
	return "[--spreadsheet <token>] [--sheet <sheet>]"
}

func (cmd *Clear) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s [--debug] clear [--spreadsheet <token>] [--sheet <sheet>]\n", APP)
	fmt.Println()
	fmt.Println("  Clears the contents of a sheet, leaving the sheet and its formatting in place")
	fmt.Println()

	helpOptions(cmd.FlagSet())

	fmt.Println()
}

func (cmd *Clear) FlagSet() *flag.FlagSet {
	return cmd.flagset("clear")
}

func (cmd *Clear) Execute(args ...any) error {
	options := args[0].(*Options)

	cmd.debug = options.Debug

	cfg, err := load(options)
	if err != nil {
		return err
	}

	target := cmd.target(cfg, civil.Date{})
	if strings.TrimSpace(target.Spreadsheet) == "" {
		return fmt.Errorf("--spreadsheet is a required option")
	}

	ctx := context.Background()

	b, err := backend(ctx, cfg)
	if err != nil {
		return err
	}

	client := publish.NewClient(b, cfg.Publish.Options, logrus.StandardLogger())
	result, err := client.Clear(ctx, target)
	if err != nil {
		return fmt.Errorf("error clearing sheet (%v)", err)
	}

	infof("cleared spreadsheet %v, sheet %v", result.Spreadsheet, result.Sheet.Title)

	return nil
}
