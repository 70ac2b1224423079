package pipeline

import (
	"context"

	"cloud.google.com/go/civil"
	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"

	"github.com/schedsync/schedule-sheets/fetch"
	"github.com/schedsync/schedule-sheets/schedule"
)

// ErrNoData is returned when no discipline contributed any rows.
var ErrNoData = errors.New("no schedule data")

type Fetcher interface {
	Fetch(ctx context.Context, code string, date civil.Date) fetch.Result
}

// Outcome is the per-discipline report for a run.
type Outcome struct {
	Discipline schedule.Discipline
	Status     fetch.Status
	Rows       int
	Err        error
}

func (o Outcome) OK() bool {
	return o.Err == nil && o.Status != fetch.Failed
}

type Pipeline struct {
	Fetcher     Fetcher
	Normalizer  *schedule.Normalizer
	Projector   *schedule.Projector
	Disciplines []schedule.Discipline
	Log         logrus.FieldLogger
}

// Run fetches, normalizes and projects each discipline in order and aggregates the
// primary locale views. Failed and malformed disciplines are reported and skipped.
func (p Pipeline) Run(ctx context.Context, date civil.Date) (schedule.Table, []Outcome, error) {
	log := p.Log
	if log == nil {
		log = logrus.StandardLogger()
	}

	normalizer := p.Normalizer
	if normalizer == nil {
		normalizer = schedule.NewNormalizer("", log)
	}

	projector := p.Projector
	if projector == nil {
		projector = schedule.NewProjector("", "", nil)
	}

	disciplines := p.Disciplines
	if disciplines == nil {
		disciplines = schedule.Disciplines()
	}

	aggregate := schedule.Aggregate{}
	outcomes := make([]Outcome, 0, len(disciplines))

	for _, d := range disciplines {
		if err := ctx.Err(); err != nil {
			return schedule.Table{}, outcomes, err
		}

		l := log.WithFields(logrus.Fields{"discipline": d.Code, "name": d.Name})
		outcome := Outcome{Discipline: d}

		result := p.Fetcher.Fetch(ctx, d.Code, date)
		outcome.Status = result.Status

		switch result.Status {
		case fetch.Failed:
			outcome.Err = result.Err
			l.WithError(result.Err).Warn("skipping discipline")

		case fetch.Empty:
			l.Info("no schedule data")

		case fetch.Found:
			primary, err := p.process(normalizer, projector, result.Document)
			if err != nil {
				outcome.Err = err
				l.WithError(err).Warn("skipping discipline")
			} else {
				aggregate.Append(primary)
				outcome.Rows = primary.Len()
				l.WithField("rows", primary.Len()).Info("processed discipline")
			}
		}

		outcomes = append(outcomes, outcome)
	}

	table := aggregate.Table()
	if table.Len() == 0 {
		return table, outcomes, ErrNoData
	}

	log.WithFields(logrus.Fields{"rows": table.Len(), "columns": len(table.Columns)}).Info("aggregated schedule")

	return table, outcomes, nil
}

func (p Pipeline) process(normalizer *schedule.Normalizer, projector *schedule.Projector, doc []byte) (schedule.Table, error) {
	units, err := schedule.Parse(doc)
	if err != nil {
		return schedule.Table{}, err
	}

	table, err := normalizer.Normalize(units)
	if err != nil {
		return schedule.Table{}, err
	}

	primary, _ := projector.Project(table)

	return primary, nil
}
