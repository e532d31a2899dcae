package main

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/NCUHOME-Y/TimiFocus/internal/analytics"
	"github.com/NCUHOME-Y/TimiFocus/internal/models"
	"github.com/NCUHOME-Y/TimiFocus/internal/timer"
)

func TestFormatClock(t *testing.T) {
	assert.Equal(t, "25:00", formatClock(25*time.Minute))
	assert.Equal(t, "00:59", formatClock(59*time.Second+200*time.Millisecond))
	assert.Equal(t, "1:05:09", formatClock(time.Hour+5*time.Minute+9*time.Second))
	assert.Equal(t, "00:00", formatClock(-time.Second))
}

func TestProgressBar(t *testing.T) {
	assert.Equal(t, "░░░░", progressBar(time.Minute, time.Minute, 4))
	assert.Equal(t, "██░░", progressBar(time.Minute, 30*time.Second, 4))
	assert.Equal(t, "████", progressBar(time.Minute, -time.Second, 4))
	assert.Equal(t, "░░░░", progressBar(0, 0, 4))
	assert.Equal(t, "", ratioBar(0.5, 0))
}

func TestRenderTick(t *testing.T) {
	s := timer.Snapshot{
		State:        timer.StatePaused,
		Kind:         models.KindShortBreak,
		Total:        5 * time.Minute,
		Remaining:    2 * time.Minute,
		SubjectTitle: "essay",
	}
	line := renderTick(s)
	assert.Contains(t, line, "02:00")
	assert.Contains(t, line, "short break")
	assert.Contains(t, line, "essay")
	assert.Contains(t, line, "paused")
}

func TestRenderSetProgress(t *testing.T) {
	assert.Equal(t, "set ●●○○ 2/4", renderSetProgress(2, 4))
	assert.Equal(t, "set ●●● 3/2", renderSetProgress(3, 2))
}

func TestRenderStats(t *testing.T) {
	next := 300
	out := renderStats(
		analytics.Streak{Current: 3, Longest: 5},
		analytics.Level{Level: 2, Title: "Apprentice", TotalMinutes: 120, NextThreshold: &next, Progress: 0.25},
		analytics.Score{Total: 42},
		analytics.Summary{Period: analytics.Period7Days, FocusCount: 4, FocusMinutes: 100,
			Daily: []analytics.DayItem{{Date: "2025-03-10", FocusMinutes: 60}}},
	)
	for _, want := range []string{"3 days", "Apprentice", "42", "2025-03-10", "300 min"} {
		assert.Contains(t, out, want)
	}
}

func TestRenderAchievements(t *testing.T) {
	now := time.Now()
	out := renderAchievements([]models.Achievement{
		{Name: "First Step", UnlockedAt: &now},
		{Name: "Diligent"},
	})
	lines := strings.Split(out, "\n")
	assert.Len(t, lines, 2)
	assert.Contains(t, lines[0], "★")
	assert.Contains(t, lines[1], "○")
}

func TestRenderInterval(t *testing.T) {
	assert.Contains(t, renderInterval(nil, time.Now()), "no open interval")
	start := time.Now().Add(-5 * time.Minute)
	iv := &models.Interval{ID: 4, Kind: models.KindWork, DurationMinutes: 25, StartedAt: start}
	assert.Contains(t, renderInterval(iv, start.Add(5*time.Minute)), "20:00 left")
}
