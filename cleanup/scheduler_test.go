package cleanup

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"markestedt/clippath/loop"
)

type countingCleaner struct {
	runs    int
	removed int
}

func (c *countingCleaner) CleanAll() int {
	c.runs++
	return c.removed
}

func TestScheduleValid(t *testing.T) {
	for _, s := range Schedules() {
		assert.True(t, s.Valid(), s)
		assert.NotEmpty(t, s.Label())
	}
	assert.False(t, Schedule("").Valid())
	assert.False(t, Schedule("2h").Valid())
}

func TestNextDaily(t *testing.T) {
	loc := time.UTC
	tests := []struct {
		name string
		now  time.Time
		hour int
		want time.Time
	}{
		{"later today", time.Date(2026, 3, 1, 1, 30, 0, 0, loc), 3, time.Date(2026, 3, 1, 3, 0, 0, 0, loc)},
		{"already passed", time.Date(2026, 3, 1, 4, 0, 0, 0, loc), 3, time.Date(2026, 3, 2, 3, 0, 0, 0, loc)},
		{"exactly on the hour", time.Date(2026, 3, 1, 3, 0, 0, 0, loc), 3, time.Date(2026, 3, 2, 3, 0, 0, 0, loc)},
		{"month end", time.Date(2026, 1, 31, 23, 0, 0, 0, loc), 0, time.Date(2026, 2, 1, 0, 0, 0, 0, loc)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NextDaily(tt.now, tt.hour))
		})
	}
}

func TestSchedulerInterval(t *testing.T) {
	sched := loop.NewManual(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	c := &countingCleaner{removed: 2}
	s := NewScheduler(sched, c, sched.Now)

	var reported []int
	s.OnClean(func(n int) { reported = append(reported, n) })

	require.NoError(t, s.Reschedule(Every30m, DefaultHour))
	assert.Equal(t, Every30m, s.Schedule())

	sched.Advance(29 * time.Minute)
	assert.Equal(t, 0, c.runs)
	sched.Advance(time.Minute)
	assert.Equal(t, 1, c.runs)
	sched.Advance(time.Hour)
	assert.Equal(t, 3, c.runs)
	assert.Equal(t, []int{2, 2, 2}, reported)
}

func TestSchedulerRescheduleReplacesTimer(t *testing.T) {
	sched := loop.NewManual(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))
	c := &countingCleaner{}
	s := NewScheduler(sched, c, sched.Now)

	require.NoError(t, s.Reschedule(Every30m, DefaultHour))
	require.NoError(t, s.Reschedule(EveryHour, DefaultHour))
	require.NoError(t, s.Reschedule(Every6h, DefaultHour))
	assert.Equal(t, 1, sched.Pending())

	sched.Advance(6 * time.Hour)
	assert.Equal(t, 1, c.runs)

	require.NoError(t, s.Reschedule(Off, DefaultHour))
	assert.Equal(t, 0, sched.Pending())
	sched.Advance(48 * time.Hour)
	assert.Equal(t, 1, c.runs)
}

func TestSchedulerDaily(t *testing.T) {
	sched := loop.NewManual(time.Date(2026, 3, 1, 22, 0, 0, 0, time.UTC))
	c := &countingCleaner{}
	s := NewScheduler(sched, c, sched.Now)

	require.NoError(t, s.Reschedule(Daily, 3))

	sched.Advance(4*time.Hour + 59*time.Minute)
	assert.Equal(t, 0, c.runs)
	sched.Advance(time.Minute)
	assert.Equal(t, 1, c.runs)

	sched.Advance(24 * time.Hour)
	assert.Equal(t, 2, c.runs)
	assert.Equal(t, 1, sched.Pending())

	s.Stop()
	sched.Advance(72 * time.Hour)
	assert.Equal(t, 2, c.runs)
	assert.Equal(t, Daily, s.Schedule())
}

func TestSchedulerRejectsInvalid(t *testing.T) {
	sched := loop.NewManual(time.Now())
	s := NewScheduler(sched, &countingCleaner{}, sched.Now)
	require.NoError(t, s.Reschedule(EveryHour, DefaultHour))

	assert.Error(t, s.Reschedule("weekly", DefaultHour))
	assert.Error(t, s.Reschedule(Daily, 24))
	assert.Equal(t, EveryHour, s.Schedule())
	assert.Equal(t, 1, sched.Pending())
}
