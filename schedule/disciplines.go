package schedule

// Discipline maps a human readable discipline name to the code used by the schedule API.
type Discipline struct {
	Name string `mapstructure:"name"`
	Code string `mapstructure:"code"`
}

// Disciplines returns the default discipline table, in the order the disciplines are
// fetched and aggregated.
func Disciplines() []Discipline {
	return []Discipline{
		{"游泳", "SWM"},
		{"射箭", "ARC"},
		{"田径（马拉松）", "ATM"},
		{"羽毛球", "BDM"},
		{"篮球", "BKB"},
		{"拳击", "BOX"},
		{"竞速小轮车", "BMX"},
		{"马术", "EQU"},
		{"足球", "FBL"},
		{"艺术体操", "GRY"},
		{"排球", "VVO"},
	}
}
