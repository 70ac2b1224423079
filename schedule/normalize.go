package schedule

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"cloud.google.com/go/civil"
	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
)

const (
	DisciplineName      = "CHI_DisciplineName"
	DisciplineNameENG   = "ENG_DisciplineName"
	VenueName           = "CHI_VenueName"
	LocationName        = "CHI_LocationName"
	StartDate           = "StartDate"
	EndDate             = "EndDate"
	Medal               = "Medal"
	Date                = "Date"
	StartTime           = "StartTime"
	EndTime             = "EndTime"
	Matchup             = "Matchup"
	MatchupOrganisation = "MatchupOrganisation"
	MatchupResult       = "MatchupResult"
)

// DefaultVenue is the city name a unit's venue must contain to be retained.
const DefaultVenue = "深圳"

var timestamps = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04",
}

// Normalizer flattens a discipline's schedule units into a table.
type Normalizer struct {
	venue string
	log   logrus.FieldLogger
}

func NewNormalizer(venue string, log logrus.FieldLogger) *Normalizer {
	if venue == "" {
		venue = DefaultVenue
	}

	if log == nil {
		log = logrus.StandardLogger()
	}

	return &Normalizer{
		venue: venue,
		log:   log,
	}
}

// Normalize filters the units by venue, splits the start/end timestamps, derives the
// matchup fields and moves the discipline name and date/time columns to the front.
// A malformed timestamp fails the whole batch.
func (n *Normalizer) Normalize(units []Unit) (Table, error) {
	rows := []Row{}
	derived := map[string]bool{}

	for i, u := range units {
		if u.CHIVenueName == nil || !strings.Contains(*u.CHIVenueName, n.venue) {
			continue
		}

		row := Row{}
		for _, f := range u.fields() {
			row[f.name] = f.value
		}

		start, err := parseTimestamp(u.StartDate)
		if err != nil {
			return Table{}, errors.Mark(errors.Wrapf(err, "unit %d: invalid StartDate", i), ErrSchema)
		}

		end, err := parseTimestamp(u.EndDate)
		if err != nil {
			return Table{}, errors.Mark(errors.Wrapf(err, "unit %d: invalid EndDate", i), ErrSchema)
		}

		row[StartTime] = civil.TimeOf(start)
		row[EndTime] = civil.TimeOf(end)
		row[Date] = civil.DateOf(start)

		for k, v := range matchup(u.headToHead()) {
			row[k] = v
			derived[k] = true
		}

		rows = append(rows, row)
	}

	columns := []string{}
	for _, f := range (Unit{}).fields() {
		columns = append(columns, f.name)
	}

	columns = append(columns, StartTime, EndTime, Date)

	for _, k := range []string{Matchup, MatchupOrganisation, MatchupResult} {
		if derived[k] {
			columns = append(columns, k)
		}
	}

	table := Table{
		Columns: columns,
		Rows:    rows,
	}

	if sameColumn(table, VenueName, LocationName) {
		n.log.Debugf("%v and %v are identical, dropping %v", VenueName, LocationName, LocationName)
		table = table.Drop(LocationName)
	}

	return reorder(table), nil
}

// matchup derives Matchup, MatchupOrganisation and MatchupResult from the first two
// head-to-head entries. Entries beyond the second are ignored.
func matchup(h2h []HeadToHead) map[string]string {
	fields := map[string]string{}

	if len(h2h) < 2 {
		return fields
	}

	p, q := h2h[0], h2h[1]

	if p.ParticipantName != nil && q.ParticipantName != nil {
		fields[Matchup] = fmt.Sprintf("%v vs %v", *p.ParticipantName, *q.ParticipantName)
	}

	if p.Organisation != nil && q.Organisation != nil {
		fields[MatchupOrganisation] = fmt.Sprintf("%v vs %v", *p.Organisation, *q.Organisation)
	}

	if p.Result != nil && q.Result != nil {
		fields[MatchupResult] = fmt.Sprintf("%v : %v", Format(p.Result), Format(q.Result))
	}

	return fields
}

// sameColumn compares two columns over the whole table, not row by row.
func sameColumn(t Table, a, b string) bool {
	if !t.Has(a) || !t.Has(b) {
		return false
	}

	for _, row := range t.Rows {
		if row[a] != row[b] {
			return false
		}
	}

	return true
}

func reorder(t Table) Table {
	front := []string{DisciplineName, DisciplineNameENG, Date, StartTime, EndTime}
	columns := append([]string{}, front...)

	for _, c := range t.Columns {
		if !slices.Contains(front, c) {
			columns = append(columns, c)
		}
	}

	return t.Select(columns...)
}

func parseTimestamp(s *string) (time.Time, error) {
	if s == nil || strings.TrimSpace(*s) == "" {
		return time.Time{}, fmt.Errorf("missing timestamp")
	}

	value := strings.TrimSpace(*s)
	for _, layout := range timestamps {
		if t, err := time.Parse(layout, value); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognised timestamp '%v'", value)
}
