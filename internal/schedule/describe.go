package schedule

import (
	"fmt"
	"slices"
	"strings"

	"golang.org/x/text/language"

	"JetScheduler/internal/models"
)

type phrases struct {
	disabled      string
	notConfigured string
	at            string
	dates         string
	days          string
	everyDay      string
	dayNames      map[models.DayOfWeek]string
}

var catalogs = []phrases{
	{
		disabled:      "not enabled",
		notConfigured: "not configured",
		at:            "at %s",
		dates:         "on dates %s of the month",
		days:          "on days: %s",
		everyDay:      "every day",
		dayNames: map[models.DayOfWeek]string{
			models.Sunday:    "Sunday",
			models.Monday:    "Monday",
			models.Tuesday:   "Tuesday",
			models.Wednesday: "Wednesday",
			models.Thursday:  "Thursday",
			models.Friday:    "Friday",
			models.Saturday:  "Saturday",
		},
	},
	{
		disabled:      "לא מופעל",
		notConfigured: "לא מוגדר",
		at:            "בשעה %s",
		dates:         "בתאריכים %s בחודש",
		days:          "בימים: %s",
		everyDay:      "כל יום",
		dayNames: map[models.DayOfWeek]string{
			models.Sunday:    "ראשון",
			models.Monday:    "שני",
			models.Tuesday:   "שלישי",
			models.Wednesday: "רביעי",
			models.Thursday:  "חמישי",
			models.Friday:    "שישי",
			models.Saturday:  "שבת",
		},
	},
}

// Order matches catalogs.
var matcher = language.NewMatcher([]language.Tag{language.English, language.Hebrew})

func catalogFor(locale string) phrases {
	tag, err := language.Parse(locale)
	if err != nil {
		return catalogs[0]
	}
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return catalogs[0]
	}
	return catalogs[idx]
}

// Describe renders s as a sentence in locale ("en" or "he"; anything else
// falls back to English). Days keep their stored order, dates are sorted.
func Describe(s models.ScheduleConfig, locale string) string {
	p := catalogFor(locale)
	if !s.Enabled {
		return p.disabled
	}

	parts := []string{fmt.Sprintf(p.at, s.Time)}

	switch {
	case len(s.DatesOfMonth) > 0:
		dates := slices.Clone(s.DatesOfMonth)
		slices.Sort(dates)
		parts = append(parts, fmt.Sprintf(p.dates, joinInts(dates, ", ")))
	case len(s.DaysOfWeek) > 0:
		names := make([]string, len(s.DaysOfWeek))
		for i, d := range s.DaysOfWeek {
			if n, ok := p.dayNames[d]; ok {
				names[i] = n
			} else {
				names[i] = string(d)
			}
		}
		parts = append(parts, fmt.Sprintf(p.days, strings.Join(names, ", ")))
	default:
		parts = append(parts, p.everyDay)
	}

	return strings.Join(parts, " ")
}

// NotConfigured is the description shown when a configuration has no
// schedule yet.
func NotConfigured(locale string) string {
	return catalogFor(locale).notConfigured
}
