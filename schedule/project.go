package schedule

import (
	"maps"
	"slices"
	"strings"
)

const (
	PrimaryPrefix   = "CHI_"
	SecondaryPrefix = "ENG_"
)

// Display labels for the primary locale view.
const (
	LabelLocation            = "比赛地点"
	LabelVenue               = "场馆名称"
	LabelEvent               = "赛事名称"
	LabelItem                = "比赛名称"
	LabelDiscipline          = "项目名称"
	LabelUnit                = "赛程单元名称"
	LabelStatus              = "当前赛程状态"
	LabelDate                = "比赛日期"
	LabelStartTime           = "开始时间"
	LabelEndTime             = "结束时间"
	LabelMedal               = "产生奖牌数"
	LabelMatchup             = "对阵双方"
	LabelMatchupOrganisation = "对阵双方组织"
	LabelMatchupResult       = "对阵双方结果"
	LabelSequence            = "序号"
)

// Labels returns a copy of the default column name to display label mapping.
func Labels() map[string]string {
	return map[string]string{
		"CHI_LocationName":       LabelLocation,
		"CHI_VenueName":          LabelVenue,
		"CHI_EventName":          LabelEvent,
		"CHI_ItemName":           LabelItem,
		"CHI_DisciplineName":     LabelDiscipline,
		"CHI_ScheduleUnitName":   LabelUnit,
		"CHI_ScheduleStatusName": LabelStatus,
		Date:                     LabelDate,
		StartTime:                LabelStartTime,
		EndTime:                  LabelEndTime,
		Medal:                    LabelMedal,
		Matchup:                  LabelMatchup,
		MatchupOrganisation:      LabelMatchupOrganisation,
		MatchupResult:            LabelMatchupResult,
	}
}

// Projector partitions a normalized table into the primary and secondary locale views.
type Projector struct {
	primary   string
	secondary string
	labels    map[string]string
}

// NewProjector creates a Projector for the locale prefixes. A nil labels map uses the
// default labels; the map is copied so later changes by the caller have no effect.
func NewProjector(primary, secondary string, labels map[string]string) *Projector {
	if primary == "" {
		primary = PrimaryPrefix
	}

	if secondary == "" {
		secondary = SecondaryPrefix
	}

	if labels == nil {
		labels = Labels()
	}

	return &Projector{
		primary:   primary,
		secondary: secondary,
		labels:    maps.Clone(labels),
	}
}

// Project returns the primary locale view, with display labels, and the secondary
// locale view with the original column names.
func (p *Projector) Project(t Table) (Table, Table) {
	shared := []string{Medal, Matchup, MatchupOrganisation, MatchupResult}

	primary := p.columns(t, p.primary, append([]string{Date, StartTime, EndTime}, shared...))
	secondary := p.columns(t, p.secondary, append([]string{StartDate, EndDate}, shared...))

	return t.Select(primary...).Rename(p.labels), t.Select(secondary...)
}

func (p *Projector) columns(t Table, prefix string, shared []string) []string {
	columns := []string{}
	for _, c := range t.Columns {
		if strings.HasPrefix(c, prefix) || slices.Contains(shared, c) {
			columns = append(columns, c)
		}
	}

	return columns
}
