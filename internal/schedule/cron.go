package schedule

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/robfig/cron/v3"

	"JetScheduler/internal/models"
)

// ToCron returns the five-field cron expression for s, or "" when the
// schedule is disabled. Dates of month win over days of week; with
// neither set the schedule runs daily.
func ToCron(s models.ScheduleConfig) string {
	if !s.Enabled {
		return ""
	}

	hour, minute, _ := strings.Cut(s.Time, ":")
	hour, minute = cronField(hour), cronField(minute)

	if len(s.DatesOfMonth) > 0 {
		dates := slices.Clone(s.DatesOfMonth)
		slices.Sort(dates)
		return fmt.Sprintf("%s %s %s * *", minute, hour, joinInts(dates, ","))
	}

	if len(s.DaysOfWeek) > 0 {
		days := make([]int, 0, len(s.DaysOfWeek))
		for _, d := range s.DaysOfWeek {
			if wd, ok := d.Weekday(); ok {
				days = append(days, int(wd))
			}
		}
		slices.Sort(days)
		return fmt.Sprintf("%s %s * * %s", minute, hour, joinInts(days, ","))
	}

	return fmt.Sprintf("%s %s * * *", minute, hour)
}

// NextRuns lists the next n activation times after from, in the schedule's
// timezone. A disabled schedule has none.
func NextRuns(s models.ScheduleConfig, from time.Time, n int) ([]time.Time, error) {
	expr := ToCron(s)
	if expr == "" || n <= 0 {
		return []time.Time{}, nil
	}

	tz := s.Timezone
	if tz == "" {
		tz = DefaultTimezone
	}

	sched, err := cron.ParseStandard("CRON_TZ=" + tz + " " + expr)
	if err != nil {
		return nil, fmt.Errorf("parse cron %q: %w", expr, err)
	}

	runs := make([]time.Time, 0, n)
	next := from
	for range n {
		next = sched.Next(next)
		if next.IsZero() {
			break
		}
		runs = append(runs, next)
	}
	return runs, nil
}

func cronField(s string) string {
	if v, err := strconv.Atoi(s); err == nil {
		return strconv.Itoa(v)
	}
	return s
}

func joinInts(vals []int, sep string) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, sep)
}
