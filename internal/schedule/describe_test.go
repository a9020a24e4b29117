package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"JetScheduler/internal/models"
)

func TestDescribe(t *testing.T) {
	weekly := models.ScheduleConfig{Enabled: true, Time: "09:30",
		DaysOfWeek: []models.DayOfWeek{models.Friday, models.Monday}}
	monthly := models.ScheduleConfig{Enabled: true, Time: "08:00",
		DatesOfMonth: []int{15, 1}, DaysOfWeek: []models.DayOfWeek{models.Monday}}
	daily := models.ScheduleConfig{Enabled: true, Time: "07:00"}
	off := models.ScheduleConfig{Enabled: false, Time: "07:00"}

	tests := []struct {
		name   string
		s      models.ScheduleConfig
		locale string
		want   string
	}{
		{"en weekly keeps stored order", weekly, "en", "at 09:30 on days: Friday, Monday"},
		{"en monthly sorted", monthly, "en", "at 08:00 on dates 1, 15 of the month"},
		{"en daily", daily, "en", "at 07:00 every day"},
		{"en disabled", off, "en", "not enabled"},
		{"he weekly", weekly, "he", "בשעה 09:30 בימים: שישי, שני"},
		{"he monthly", monthly, "he", "בשעה 08:00 בתאריכים 1, 15 בחודש"},
		{"he daily", daily, "he-IL", "בשעה 07:00 כל יום"},
		{"he disabled", off, "he", "לא מופעל"},
		{"unknown locale falls back", daily, "xx-invalid-", "at 07:00 every day"},
		{"empty locale", daily, "", "at 07:00 every day"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Describe(tt.s, tt.locale))
		})
	}
}

func TestNotConfigured(t *testing.T) {
	assert.Equal(t, "not configured", NotConfigured("en"))
	assert.Equal(t, "לא מוגדר", NotConfigured("he"))
}
