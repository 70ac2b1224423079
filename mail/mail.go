package mail

import (
	"fmt"
	"os"
	"strings"

	"cloud.google.com/go/civil"
	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

const (
	DefaultPort    = 587
	DefaultSubject = "深圳赛区赛程数据汇总 - %v"
	DefaultBody    = "请查收附件中的深圳赛区赛程数据汇总。"
)

var ErrNoReceivers = errors.New("no mail receivers")

type Config struct {
	Host      string `mapstructure:"host"`
	Port      int    `mapstructure:"port"`
	Username  string `mapstructure:"username"`
	Password  string `mapstructure:"password"`
	From      string `mapstructure:"from"`
	Receivers string `mapstructure:"receivers"`
}

// Sender delivers the exported workbook over SMTP. The dialer upgrades the connection
// with STARTTLS when the server offers it.
type Sender struct {
	config Config
	sender gomail.Sender
	log    logrus.FieldLogger
}

func NewSender(config Config, log logrus.FieldLogger) *Sender {
	if config.Port == 0 {
		config.Port = DefaultPort
	}

	if config.From == "" {
		config.From = config.Username
	}

	if log == nil {
		log = logrus.StandardLogger()
	}

	return &Sender{
		config: config,
		log:    log,
	}
}

// Receivers splits a comma separated receiver list, ignoring blank entries.
func Receivers(list string) []string {
	receivers := []string{}
	for _, r := range strings.Split(list, ",") {
		if r = strings.TrimSpace(r); r != "" {
			receivers = append(receivers, r)
		}
	}

	return receivers
}

// SendSchedule mails the workbook for a date to every configured receiver.
func (s *Sender) SendSchedule(date civil.Date, attachment string) error {
	subject := fmt.Sprintf(DefaultSubject, date)

	return s.Send(Receivers(s.config.Receivers), subject, DefaultBody, attachment)
}

// Send mails the attachment to each receiver in a separate message. A missing
// attachment fails before connecting to the server.
func (s *Sender) Send(receivers []string, subject, body, attachment string) error {
	if len(receivers) == 0 {
		return ErrNoReceivers
	}

	if _, err := os.Stat(attachment); err != nil {
		return errors.Wrapf(err, "attachment %v", attachment)
	}

	sender := s.sender
	if sender == nil {
		dialer := gomail.NewDialer(s.config.Host, s.config.Port, s.config.Username, s.config.Password)
		closer, err := dialer.Dial()
		if err != nil {
			return errors.Wrapf(err, "connect to %v:%v", s.config.Host, s.config.Port)
		}

		defer closer.Close()

		sender = closer
	}

	var errs error
	for _, to := range receivers {
		m := gomail.NewMessage()
		m.SetHeader("From", s.config.From)
		m.SetHeader("To", to)
		m.SetHeader("Subject", subject)
		m.SetBody("text/plain", body)
		m.Attach(attachment)

		if err := gomail.Send(sender, m); err != nil {
			s.log.WithError(err).WithField("to", to).Warn("failed to send mail")
			errs = errors.CombineErrors(errs, errors.Wrapf(err, "send to %v", to))
			continue
		}

		s.log.WithField("to", to).Info("sent mail")
	}

	return errs
}
