package feature

import (
	"time"

	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/us"

	"bikecast/dataset"
)

// taxDay is the federal income tax filing deadline. The source data flags it
// like a holiday, but rental behavior matches an ordinary working day.
var taxDay = &cal.Holiday{
	Name:  "Tax Day",
	Month: time.April,
	Day:   15,
	Observed: []cal.AltDay{
		{Day: time.Saturday, Offset: 2},
		{Day: time.Sunday, Offset: 1},
	},
	Func: cal.CalcDayOfMonth,
}

// AdjustSpecialDays corrects the holiday and working-day flags on days where
// the raw calendar flags disagree with observed rental behavior. Tax Day
// behaves like a working day, while the day after Thanksgiving behaves like a
// holiday even though it is not a federal one.
func AdjustSpecialDays(rows []dataset.Observation) {
	if len(rows) == 0 {
		return
	}

	startYear := rows[0].Timestamp.Year()
	endYear := rows[len(rows)-1].Timestamp.Year()

	type override struct {
		day        time.Time
		holiday    bool
		workingDay bool
	}
	var overrides []override
	for year := startYear; year <= endYear; year++ {
		_, taxObserved := taxDay.Calc(year)
		_, thanksObserved := us.ThanksgivingDay.Calc(year)
		overrides = append(overrides,
			override{day: taxObserved, holiday: false, workingDay: true},
			override{day: thanksObserved.Add(24 * time.Hour), holiday: true, workingDay: false},
		)
	}

	for i := range rows {
		for _, ov := range overrides {
			if sameDay(rows[i].Timestamp, ov.day) {
				rows[i].Holiday = ov.holiday
				rows[i].WorkingDay = ov.workingDay
			}
		}
	}
}

func sameDay(t, day time.Time) bool {
	return t.Year() == day.Year() && t.YearDay() == day.YearDay()
}
