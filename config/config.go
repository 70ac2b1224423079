package config

import (
	"os"
	"slices"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/cockroachdb/errors"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/schedsync/schedule-sheets/export"
	"github.com/schedsync/schedule-sheets/feishu"
	"github.com/schedsync/schedule-sheets/fetch"
	"github.com/schedsync/schedule-sheets/gsheets"
	"github.com/schedsync/schedule-sheets/mail"
	"github.com/schedsync/schedule-sheets/publish"
	"github.com/schedsync/schedule-sheets/schedule"
)

const EnvPrefix = "SCHEDULE"

const (
	BackendFeishu = "feishu"
	BackendGoogle = "google"
)

type Config struct {
	API      fetch.Config   `mapstructure:"api"`
	Schedule Schedule       `mapstructure:"schedule"`
	Export   Export         `mapstructure:"export"`
	Publish  Publish        `mapstructure:"publish"`
	Feishu   feishu.Config  `mapstructure:"feishu"`
	Google   gsheets.Config `mapstructure:"google"`
	Mail     mail.Config    `mapstructure:"mail"`
}

type Schedule struct {
	Venue           string                `mapstructure:"venue"`
	Zone            string                `mapstructure:"zone"`
	PrimaryPrefix   string                `mapstructure:"primary-prefix"`
	SecondaryPrefix string                `mapstructure:"secondary-prefix"`
	Disciplines     []schedule.Discipline `mapstructure:"disciplines"`
}

type Export struct {
	export.Options `mapstructure:",squash"`
	Dir            string `mapstructure:"dir"`
}

type Publish struct {
	publish.Options `mapstructure:",squash"`
	Backend         string `mapstructure:"backend"`
	Spreadsheet     string `mapstructure:"spreadsheet"`
	Sheet           string `mapstructure:"sheet"`
	Title           string `mapstructure:"title"`
}

// Load reads the YAML configuration file, after loading any .env file in the working
// directory, and applies SCHEDULE_ prefixed environment overrides e.g.
// SCHEDULE_FEISHU_APP_SECRET. A missing file is only an error if required is set.
func Load(path string, required bool) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "load .env")
	}

	v := viper.New()
	defaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("yaml")

		if _, err := os.Stat(path); err != nil {
			if required || !os.IsNotExist(err) {
				return nil, errors.Wrapf(err, "config file %v", path)
			}
		} else if err := v.ReadInConfig(); err != nil {
			return nil, errors.Wrapf(err, "read config file %v", path)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "decode configuration")
	}

	if len(cfg.Schedule.Disciplines) == 0 {
		cfg.Schedule.Disciplines = schedule.Disciplines()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func defaults(v *viper.Viper) {
	v.SetDefault("api.base-url", fetch.DefaultBaseURL)
	v.SetDefault("api.timeout", fetch.DefaultTimeout)
	v.SetDefault("api.user-agent", fetch.DefaultUserAgent)
	v.SetDefault("api.referer", fetch.DefaultReferer)
	v.SetDefault("api.origin", fetch.DefaultOrigin)
	v.SetDefault("api.proxy", "")

	v.SetDefault("schedule.venue", schedule.DefaultVenue)
	v.SetDefault("schedule.zone", "Asia/Shanghai")
	v.SetDefault("schedule.primary-prefix", schedule.PrimaryPrefix)
	v.SetDefault("schedule.secondary-prefix", schedule.SecondaryPrefix)

	e := export.DefaultOptions()
	v.SetDefault("export.dir", ".")
	v.SetDefault("export.sheet", e.Sheet)
	v.SetDefault("export.date-column", e.DateColumn)
	v.SetDefault("export.header-fill", e.HeaderFill)
	v.SetDefault("export.prefix", e.Prefix)

	p := publish.DefaultOptions()
	v.SetDefault("publish.backend", BackendFeishu)
	v.SetDefault("publish.spreadsheet", "")
	v.SetDefault("publish.sheet", "")
	v.SetDefault("publish.title", "深圳赛程数据汇总")
	v.SetDefault("publish.chunk-threshold", p.ChunkThreshold)
	v.SetDefault("publish.chunk-size", p.ChunkSize)
	v.SetDefault("publish.chunk-delay", p.ChunkDelay)
	v.SetDefault("publish.compensate", p.Compensate)
	v.SetDefault("publish.clear", p.Clear)
	v.SetDefault("publish.wide-columns", p.WideColumns)
	v.SetDefault("publish.wide-width", p.WideWidth)
	v.SetDefault("publish.default-width", p.DefaultWidth)
	v.SetDefault("publish.text-column", p.TextColumn)

	v.SetDefault("feishu.base-url", feishu.DefaultBaseURL)
	v.SetDefault("feishu.app-id", "")
	v.SetDefault("feishu.app-secret", "")
	v.SetDefault("feishu.folder", "")

	v.SetDefault("google.credentials", "")
	v.SetDefault("google.folder", "")
	v.SetDefault("google.endpoint", "")
	v.SetDefault("google.drive-endpoint", "")

	v.SetDefault("mail.host", "")
	v.SetDefault("mail.port", mail.DefaultPort)
	v.SetDefault("mail.username", "")
	v.SetDefault("mail.password", "")
	v.SetDefault("mail.from", "")
	v.SetDefault("mail.receivers", "")
}

func (c *Config) Validate() error {
	if c.API.Timeout <= 0 {
		return errors.Newf("invalid api.timeout (%v)", c.API.Timeout)
	}

	for i, d := range c.Schedule.Disciplines {
		if strings.TrimSpace(d.Code) == "" {
			return errors.Newf("schedule.disciplines[%d]: missing code", i)
		}
	}

	if _, err := c.Location(); err != nil {
		return err
	}

	if !slices.Contains([]string{BackendFeishu, BackendGoogle}, c.Publish.Backend) {
		return errors.Newf("invalid publish.backend '%v' (expected '%v' or '%v')", c.Publish.Backend, BackendFeishu, BackendGoogle)
	}

	if c.Publish.ChunkSize <= 0 || c.Publish.ChunkThreshold <= 0 {
		return errors.New("publish.chunk-size and publish.chunk-threshold must be positive")
	}

	if c.Publish.ChunkDelay < 0 {
		return errors.Newf("invalid publish.chunk-delay (%v)", c.Publish.ChunkDelay)
	}

	if c.Mail.Port <= 0 || c.Mail.Port > 65535 {
		return errors.Newf("invalid mail.port (%v)", c.Mail.Port)
	}

	return nil
}

// Location is the time zone used to select the default target date.
func (c *Config) Location() (*time.Location, error) {
	location, err := time.LoadLocation(c.Schedule.Zone)
	if err != nil {
		return nil, errors.Wrapf(err, "invalid schedule.zone '%v'", c.Schedule.Zone)
	}

	return location, nil
}
