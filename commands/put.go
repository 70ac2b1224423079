package commands

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/sirupsen/logrus"

	"github.com/schedsync/schedule-sheets/publish"
)

var PutCmd = Put{
	command: command{
		debug: false,
	},

	file: "",
}

type Put struct {
	command
	file string
}

func (cmd *Put) FlagSet() *flag.FlagSet {
	flagset := cmd.flagset("put")

	flagset.StringVar(&cmd.file, "file", cmd.file, "TSV file")
	flagset.BoolVar(&cmd.create, "new", cmd.create, "Uploads to a newly created spreadsheet")
	flagset.BoolVar(&cmd.clear, "clear", cmd.clear, "Clears the sheet before uploading")

	return flagset
}

func (cmd *Put) Execute(args ...any) error {
	options := args[0].(*Options)

	cmd.debug = options.Debug

	if strings.TrimSpace(cmd.file) == "" {
		return fmt.Errorf("--file is a required option")
	}

	cfg, err := load(options)
	if err != nil {
		return err
	}

	if cmd.clear {
		cfg.Publish.Clear = true
	}

	f, err := os.Open(cmd.file)
	if err != nil {
		return err
	}

	defer f.Close()

	table, err := tsvToTable(f)
	if err != nil {
		return fmt.Errorf("invalid TSV file (%v)", err)
	}

	ctx := context.Background()

	b, err := backend(ctx, cfg)
	if err != nil {
		return err
	}

	client := publish.NewClient(b, cfg.Publish.Options, logrus.StandardLogger())
	result, err := client.Publish(ctx, cmd.target(cfg, civil.Date{}), *table)
	if err != nil {
		return err
	}

	published(ctx, b, result)
	infof("uploaded TSV file %v", cmd.file)

	return nil
}

func (cmd *Put) Name() string {
	return "put"
}

func (cmd *Put) Description() string {
	return "Uploads a TSV file to the remote spreadsheet"
}

func (cmd *Put) Usage() string {
	return "[--spreadsheet <token>] [--sheet <sheet>] --file <file>"
}

func (cmd *Put) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s [options] put [--spreadsheet <token>] [--sheet <sheet>] --file <file>\n", APP)
	fmt.Println()
	fmt.Println("  Uploads a TSV file to the configured Feishu or Google Sheets spreadsheet")
	fmt.Println()

	helpOptions(cmd.FlagSet())

	fmt.Println()
	fmt.Println("  Examples:")
	fmt.Println()
	fmt.Printf(`    %s --debug put --spreadsheet "shtcnmBA7ntYZ3g3sQvGzZaabcd" --file "schedule.tsv"`+"\n", APP)
	fmt.Println()
}
