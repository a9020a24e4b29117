package schedule

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"JetScheduler/internal/models"
)

func TestToCron(t *testing.T) {
	tests := []struct {
		name string
		s    models.ScheduleConfig
		want string
	}{
		{
			name: "disabled",
			s:    models.ScheduleConfig{Enabled: false, Time: "09:30", DaysOfWeek: []models.DayOfWeek{models.Monday}},
			want: "",
		},
		{
			name: "days of week",
			s:    models.ScheduleConfig{Enabled: true, Time: "09:30", DaysOfWeek: []models.DayOfWeek{models.Monday, models.Friday}},
			want: "30 9 * * 1,5",
		},
		{
			name: "days sorted",
			s:    models.ScheduleConfig{Enabled: true, Time: "18:05", DaysOfWeek: []models.DayOfWeek{models.Saturday, models.Sunday, models.Wednesday}},
			want: "5 18 * * 0,3,6",
		},
		{
			name: "dates sorted",
			s:    models.ScheduleConfig{Enabled: true, Time: "09:00", DatesOfMonth: []int{15, 1}},
			want: "0 9 1,15 * *",
		},
		{
			name: "dates win over days",
			s: models.ScheduleConfig{Enabled: true, Time: "07:45",
				DatesOfMonth: []int{10}, DaysOfWeek: []models.DayOfWeek{models.Monday}},
			want: "45 7 10 * *",
		},
		{
			name: "daily",
			s:    models.ScheduleConfig{Enabled: true, Time: "00:00"},
			want: "0 0 * * *",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ToCron(tt.s))
		})
	}
}

func TestToCron_DoesNotReorderStoredDates(t *testing.T) {
	s := models.ScheduleConfig{Enabled: true, Time: "09:00", DatesOfMonth: []int{20, 5, 12}}

	ToCron(s)
	Describe(s, "en")

	assert.Equal(t, []int{20, 5, 12}, s.DatesOfMonth)
}

func TestNextRuns(t *testing.T) {
	from := time.Date(2024, time.January, 1, 10, 0, 0, 0, time.UTC) // a Monday

	t.Run("weekly", func(t *testing.T) {
		s := models.ScheduleConfig{Enabled: true, Time: "09:30", Timezone: "UTC",
			DaysOfWeek: []models.DayOfWeek{models.Monday, models.Friday}}

		runs, err := NextRuns(s, from, 3)
		require.NoError(t, err)
		require.Len(t, runs, 3)

		assert.True(t, runs[0].Equal(time.Date(2024, time.January, 5, 9, 30, 0, 0, time.UTC)))
		assert.True(t, runs[1].Equal(time.Date(2024, time.January, 8, 9, 30, 0, 0, time.UTC)))
		assert.True(t, runs[2].Equal(time.Date(2024, time.January, 12, 9, 30, 0, 0, time.UTC)))
	})

	t.Run("monthly dates", func(t *testing.T) {
		s := models.ScheduleConfig{Enabled: true, Time: "08:00", Timezone: "UTC", DatesOfMonth: []int{15, 1}}

		runs, err := NextRuns(s, from, 2)
		require.NoError(t, err)
		require.Len(t, runs, 2)

		assert.True(t, runs[0].Equal(time.Date(2024, time.January, 15, 8, 0, 0, 0, time.UTC)))
		assert.True(t, runs[1].Equal(time.Date(2024, time.February, 1, 8, 0, 0, 0, time.UTC)))
	})

	t.Run("timezone", func(t *testing.T) {
		loc, err := time.LoadLocation("Asia/Tokyo")
		require.NoError(t, err)

		s := models.ScheduleConfig{Enabled: true, Time: "09:00", Timezone: "Asia/Tokyo"}

		runs, err := NextRuns(s, from, 1)
		require.NoError(t, err)
		require.Len(t, runs, 1)

		// 10:00 UTC is 19:00 in Tokyo, so the next 09:00 there is the following day.
		assert.True(t, runs[0].Equal(time.Date(2024, time.January, 2, 9, 0, 0, 0, loc)))
	})

	t.Run("disabled", func(t *testing.T) {
		runs, err := NextRuns(models.ScheduleConfig{Time: "09:00"}, from, 5)
		require.NoError(t, err)
		assert.Empty(t, runs)
		assert.NotNil(t, runs)
	})
}
