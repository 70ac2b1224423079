package commands

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/schedsync/schedule-sheets/export"
	"github.com/schedsync/schedule-sheets/mail"
	"github.com/schedsync/schedule-sheets/publish"
	"github.com/schedsync/schedule-sheets/schedule"
)

var SyncCmd = Sync{
	command: command{
		debug: false,
	},

	date:      "",
	publish:   false,
	mail:      false,
	receivers: "",
	dir:       "",
}

// Sync runs the full pipeline. The target date's rows are exported to xlsx and
// optionally mailed, the whole aggregated schedule is optionally published to the
// remote spreadsheet.
type Sync struct {
	command
	date      string
	publish   bool
	mail      bool
	receivers string
	dir       string
	appID     string
	appSecret string
}

func (cmd *Sync) Name() string {
	return "sync"
}

func (cmd *Sync) Description() string {
	return "Fetches the daily schedule, exports it to an xlsx file and optionally publishes and mails it"
}

func (cmd *Sync) Usage() string {
	return "[--date <yyyy-mm-dd>] [--publish] [--mail]"
}

func (cmd *Sync) Help() {
	fmt.Println()
	fmt.Printf("  Usage: %s [--debug] [--config <file>] sync [options]\n", APP)
	fmt.Println()
	fmt.Println("  Fetches the schedule for every configured discipline, filters it to the target date")
	fmt.Println("  (defaults to tomorrow) and writes it to an xlsx file.")
	fmt.Println()

	helpOptions(cmd.FlagSet())

	fmt.Println()
	fmt.Println("  Examples:")
	fmt.Printf(`    %s --debug sync --date 2025-11-12 --publish --spreadsheet "shtcnmBA7ntYZ3g3sQvGzZaabcd"`+"\n", APP)
	fmt.Printf(`    %s sync --new --mail --receivers "ops@example.com,desk@example.com"`+"\n", APP)
	fmt.Println()
}

func (cmd *Sync) FlagSet() *flag.FlagSet {
	flagset := cmd.flagset("sync")

	flagset.StringVar(&cmd.date, "date", cmd.date, "Schedule date (yyyy-mm-dd). Defaults to tomorrow")
	flagset.BoolVar(&cmd.publish, "publish", cmd.publish, "Publishes the schedule to the remote spreadsheet")
	flagset.BoolVar(&cmd.create, "new", cmd.create, "Publishes to a newly created spreadsheet")
	flagset.BoolVar(&cmd.clear, "clear", cmd.clear, "Clears the sheet before publishing")
	flagset.BoolVar(&cmd.mail, "mail", cmd.mail, "Mails the exported xlsx file")
	flagset.StringVar(&cmd.receivers, "receivers", cmd.receivers, "Comma separated list of mail receivers. Defaults to the configured receivers")
	flagset.StringVar(&cmd.dir, "dir", cmd.dir, "Export directory. Defaults to the configured directory")
	flagset.StringVar(&cmd.appID, "app-id", cmd.appID, "Feishu app ID. Defaults to the configured app ID")
	flagset.StringVar(&cmd.appSecret, "app-secret", cmd.appSecret, "Feishu app secret. Defaults to the configured app secret")

	return flagset
}

func (cmd *Sync) Execute(args ...any) error {
	options := args[0].(*Options)

	cmd.debug = options.Debug

	cfg, err := load(options)
	if err != nil {
		return err
	}

	if cmd.appID != "" {
		cfg.Feishu.AppID = cmd.appID
	}

	if cmd.appSecret != "" {
		cfg.Feishu.AppSecret = cmd.appSecret
	}

	if cmd.dir != "" {
		cfg.Export.Dir = cmd.dir
	}

	if cmd.receivers != "" {
		cfg.Mail.Receivers = cmd.receivers
	}

	if cmd.clear {
		cfg.Publish.Clear = true
	}

	date, err := targetDate(cmd.date, cfg)
	if err != nil {
		return err
	}

	ctx := context.Background()

	infof("syncing schedule for %v", date)

	table, err := aggregate(ctx, cfg)
	if err != nil {
		return err
	}

	daily := schedule.FormatDates(schedule.FilterByDate(table, schedule.LabelDate, date), schedule.LabelDate)
	if daily.Len() == 0 {
		warnf("no schedule rows for %v", date)
	}

	infof("%v of %v rows scheduled for %v", daily.Len(), table.Len(), date)

	if err := os.MkdirAll(cfg.Export.Dir, 0770); err != nil {
		return fmt.Errorf("unable to create export directory (%v)", err)
	}

	file := export.Filename(cfg.Export.Dir, cfg.Export.Prefix, date)
	if err := export.Write(daily, file, cfg.Export.Options); err != nil {
		return fmt.Errorf("error exporting schedule (%v)", err)
	}

	infof("exported schedule to %v", file)

	if cmd.publish || cmd.create {
		b, err := backend(ctx, cfg)
		if err != nil {
			return err
		}

		client := publish.NewClient(b, cfg.Publish.Options, logrus.StandardLogger())
		all := schedule.WithSequence(schedule.FormatDates(table, schedule.LabelDate), schedule.LabelSequence)

		result, err := client.Publish(ctx, cmd.target(cfg, date), all)
		if err != nil {
			return fmt.Errorf("error publishing schedule (%v)", err)
		}

		published(ctx, b, result)
	}

	if cmd.mail {
		sender := mail.NewSender(cfg.Mail, logrus.StandardLogger())
		if err := sender.SendSchedule(date, file); err != nil {
			return fmt.Errorf("error mailing schedule (%v)", err)
		}

		infof("mailed %v to %v", file, strings.Join(mail.Receivers(cfg.Mail.Receivers), ", "))
	}

	return nil
}
