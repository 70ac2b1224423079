package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	lib "github.com/uhppoted/uhppoted-lib/command"

	"github.com/schedsync/schedule-sheets/commands"
)

var cli = []lib.Command{
	&commands.VersionCmd,
	&commands.SyncCmd,
	&commands.GetCmd,
	&commands.PutCmd,
	&commands.ClearCmd,
}

var options = commands.Options{
	Config: commands.DEFAULT_CONFIG,
	Debug:  false,
}

var help = lib.NewHelp(commands.APP, cli, nil)

func main() {
	flag.StringVar(&options.Config, "config", options.Config, "Configuration file path")
	flag.BoolVar(&options.Debug, "debug", options.Debug, "Enable debugging information")
	flag.Parse()

	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cmd, err := lib.Parse(cli, nil, help)
	if err != nil {
		fmt.Printf("\nError parsing command line: %v\n\n", err)
		os.Exit(1)
	}

	if cmd == nil {
		help.Execute()
		os.Exit(1)
	}

	if err = cmd.Execute(&options); err != nil {
		logrus.Fatalf("ERROR: %v", err)
	}
}
