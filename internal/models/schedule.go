package models

import "time"

type DayOfWeek string

const (
	Sunday    DayOfWeek = "sunday"
	Monday    DayOfWeek = "monday"
	Tuesday   DayOfWeek = "tuesday"
	Wednesday DayOfWeek = "wednesday"
	Thursday  DayOfWeek = "thursday"
	Friday    DayOfWeek = "friday"
	Saturday  DayOfWeek = "saturday"
)

// Weekday maps the name to time.Weekday, which also matches the cron
// day-of-week numbering (sunday=0).
func (d DayOfWeek) Weekday() (time.Weekday, bool) {
	switch d {
	case Sunday:
		return time.Sunday, true
	case Monday:
		return time.Monday, true
	case Tuesday:
		return time.Tuesday, true
	case Wednesday:
		return time.Wednesday, true
	case Thursday:
		return time.Thursday, true
	case Friday:
		return time.Friday, true
	case Saturday:
		return time.Saturday, true
	}
	return 0, false
}

type ScheduleConfig struct {
	ID           string      `json:"id"`
	ConfigID     string      `json:"configId"`
	Enabled      bool        `json:"enabled"`
	DaysOfWeek   []DayOfWeek `json:"daysOfWeek"`
	Time         string      `json:"time"`
	DatesOfMonth []int       `json:"datesOfMonth"`
	Timezone     string      `json:"timezone"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// SchedulePatch carries a partial update; nil fields are left unchanged.
type SchedulePatch struct {
	Enabled      *bool        `json:"enabled,omitempty"`
	DaysOfWeek   *[]DayOfWeek `json:"daysOfWeek,omitempty"`
	Time         *string      `json:"time,omitempty"`
	DatesOfMonth *[]int       `json:"datesOfMonth,omitempty"`
	Timezone     *string      `json:"timezone,omitempty"`
}
