package analytics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NCUHOME-Y/TimiFocus/internal/models"
)

func TestSummarize_Week(t *testing.T) {
	ivs := []models.Interval{
		done(models.KindWork, 0, 9, 25),
		done(models.KindCustomWork, 0, 11, 35),
		done(models.KindShortBreak, 0, 10, 5),
		done(models.KindWork, 3, 9, 25),
		cancelled(models.KindWork, 1, 9, 25),
		done(models.KindWork, 12, 9, 25),
	}
	tasks := []models.Task{task(0, ptr(0)), task(2, nil), task(3, ptr(3))}

	s := Summarize(Period7Days, ivs, tasks, now, shanghai)
	assert.Equal(t, 4, s.TotalIntervals)
	assert.Equal(t, 3, s.FocusCount)
	assert.Equal(t, 85, s.FocusMinutes)
	assert.Equal(t, 90, s.TotalMinutes)
	assert.Equal(t, 60, s.TodayMinutes)
	assert.Equal(t, 2, s.TodayCount)
	assert.Equal(t, 3, s.TasksTotal)
	assert.Equal(t, 2, s.TasksCompleted)
	assert.Equal(t, 1.5, s.AvgFocusPerTask)
	assert.Equal(t, 28.3, s.AvgMinutesPerInterval)
	assert.False(t, s.Inactive48h)

	require.Len(t, s.Daily, 7)
	assert.Equal(t, "2025-03-04", s.Daily[0].Date)
	assert.Equal(t, "2025-03-10", s.Daily[6].Date)
	assert.Equal(t, 60, s.Daily[6].FocusMinutes)
	assert.Equal(t, 1, s.Daily[6].TasksCompleted)
	assert.Equal(t, 25, s.Daily[3].FocusMinutes)
	assert.Equal(t, 1, s.Daily[3].TasksCompleted)
	assert.Zero(t, s.Daily[5].FocusMinutes)
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(PeriodToday, nil, nil, now, shanghai)
	assert.Zero(t, s.FocusCount)
	assert.Zero(t, s.AvgMinutesPerInterval)
	assert.True(t, s.Inactive48h)
	require.Len(t, s.Daily, 1)
	assert.Equal(t, "2025-03-10", s.Daily[0].Date)
}

func TestSummarize_Inactive(t *testing.T) {
	s := Summarize(PeriodAll, workOn(3), nil, now, shanghai)
	assert.True(t, s.Inactive48h)
	assert.Len(t, s.Daily, 30)

	recent := Summarize(PeriodAll, workOn(1), nil, now.Add(-time.Hour), shanghai)
	assert.False(t, recent.Inactive48h)
}
