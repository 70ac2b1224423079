package schedule

import (
	"github.com/bytedance/sonic"
	"github.com/cockroachdb/errors"
)

// ErrSchema is returned when a discipline payload does not have the expected shape.
var ErrSchema = errors.New("unexpected schedule payload")

// Unit is a single schedule unit as returned by the schedule API.
type Unit struct {
	CHIDisciplineName     *string `json:"CHI_DisciplineName"`
	ENGDisciplineName     *string `json:"ENG_DisciplineName"`
	CHIEventName          *string `json:"CHI_EventName"`
	ENGEventName          *string `json:"ENG_EventName"`
	CHIItemName           *string `json:"CHI_ItemName"`
	ENGItemName           *string `json:"ENG_ItemName"`
	CHIScheduleUnitName   *string `json:"CHI_ScheduleUnitName"`
	ENGScheduleUnitName   *string `json:"ENG_ScheduleUnitName"`
	CHIVenueName          *string `json:"CHI_VenueName"`
	ENGVenueName          *string `json:"ENG_VenueName"`
	CHILocationName       *string `json:"CHI_LocationName"`
	ENGLocationName       *string `json:"ENG_LocationName"`
	CHIScheduleStatusName *string `json:"CHI_ScheduleStatusName"`
	ENGScheduleStatusName *string `json:"ENG_ScheduleStatusName"`
	StartDate             *string `json:"StartDate"`
	EndDate               *string `json:"EndDate"`
	Medal                 any     `json:"Medal"`
	Attach                *Attach `json:"Attach"`
}

type Attach struct {
	Details *Details `json:"Details"`
}

type Details struct {
	HeadToHead []HeadToHead `json:"HeadToHead"`
}

// HeadToHead is one side of a head-to-head match. Result and WLT are left untyped
// because the API reports them as either strings or numbers.
type HeadToHead struct {
	ParticipantCode *string `json:"ParticipantCode"`
	ParticipantName *string `json:"ParticipantName"`
	Organisation    *string `json:"Organisation"`
	Result          any     `json:"Result"`
	WLT             any     `json:"Wlt"`
}

type document struct {
	Result *struct {
		Disciplines []struct {
			Units []Unit `json:"Units"`
		} `json:"Disciplines"`
	} `json:"Result"`
}

// Parse extracts the schedule units from a discipline document. A document without
// a Result.Disciplines[0] entry is a schema error.
func Parse(doc []byte) ([]Unit, error) {
	var d document

	if err := sonic.Unmarshal(doc, &d); err != nil {
		return nil, errors.Mark(errors.Wrap(err, "decode schedule document"), ErrSchema)
	}

	if d.Result == nil {
		return nil, errors.Wrap(ErrSchema, "missing 'Result'")
	}

	if len(d.Result.Disciplines) == 0 {
		return nil, errors.Wrap(ErrSchema, "missing 'Result.Disciplines'")
	}

	return d.Result.Disciplines[0].Units, nil
}

func (u Unit) headToHead() []HeadToHead {
	if u.Attach == nil || u.Attach.Details == nil {
		return nil
	}

	return u.Attach.Details.HeadToHead
}

// fields lists the unit's raw columns in API order, excluding Attach.
func (u Unit) fields() []field {
	return []field{
		{"CHI_DisciplineName", str(u.CHIDisciplineName)},
		{"ENG_DisciplineName", str(u.ENGDisciplineName)},
		{"CHI_EventName", str(u.CHIEventName)},
		{"ENG_EventName", str(u.ENGEventName)},
		{"CHI_ItemName", str(u.CHIItemName)},
		{"ENG_ItemName", str(u.ENGItemName)},
		{"CHI_ScheduleUnitName", str(u.CHIScheduleUnitName)},
		{"ENG_ScheduleUnitName", str(u.ENGScheduleUnitName)},
		{"CHI_VenueName", str(u.CHIVenueName)},
		{"ENG_VenueName", str(u.ENGVenueName)},
		{"CHI_LocationName", str(u.CHILocationName)},
		{"ENG_LocationName", str(u.ENGLocationName)},
		{"CHI_ScheduleStatusName", str(u.CHIScheduleStatusName)},
		{"ENG_ScheduleStatusName", str(u.ENGScheduleStatusName)},
		{"StartDate", str(u.StartDate)},
		{"EndDate", str(u.EndDate)},
		{"Medal", u.Medal},
	}
}

type field struct {
	name  string
	value any
}

func str(s *string) any {
	if s == nil {
		return nil
	}

	return *s
}
