package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/NCUHOME-Y/TimiFocus/internal/analytics"
	"github.com/NCUHOME-Y/TimiFocus/internal/models"
	"github.com/NCUHOME-Y/TimiFocus/internal/timer"
)

var (
	colorFocus = lipgloss.Color("#E4572E")
	colorBreak = lipgloss.Color("#2CD7C7")
	colorMuted = lipgloss.Color("#6C7A89")
	colorGold  = lipgloss.Color("#F4D03F")

	titleStyle = lipgloss.NewStyle().Bold(true)
	mutedStyle = lipgloss.NewStyle().Foreground(colorMuted)
	goldStyle  = lipgloss.NewStyle().Foreground(colorGold).Bold(true)
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#E74C3C"))
	boxStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(colorMuted).
			Padding(0, 1)
)

const barWidth = 24

func kindColor(k models.Kind) lipgloss.Color {
	if k.Qualifying() {
		return colorFocus
	}
	return colorBreak
}

// formatClock 25:00 / 1:05:09
func formatClock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Second)
	h := int(d / time.Hour)
	m := int(d%time.Hour) / int(time.Minute)
	s := int(d%time.Minute) / int(time.Second)
	if h > 0 {
		return fmt.Sprintf("%d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

// progressBar 已用部分实心
func progressBar(total, remaining time.Duration, width int) string {
	if total <= 0 {
		return ratioBar(0, width)
	}
	return ratioBar(float64(total-remaining)/float64(total), width)
}

func ratioBar(r float64, width int) string {
	if width <= 0 {
		return ""
	}
	filled := int(float64(width) * min(max(r, 0), 1))
	return strings.Repeat("█", filled) + strings.Repeat("░", width-filled)
}

func kindLabel(k models.Kind) string {
	return strings.ReplaceAll(string(k), "_", " ")
}

// renderTick 单行状态，用 \r 覆盖刷新
func renderTick(s timer.Snapshot) string {
	style := lipgloss.NewStyle().Foreground(kindColor(s.Kind)).Bold(true)
	line := fmt.Sprintf("%s %s %s",
		style.Render(formatClock(s.Remaining)),
		style.Render(progressBar(s.Total, s.Remaining, barWidth)),
		kindLabel(s.Kind))
	if s.SubjectTitle != "" {
		line += mutedStyle.Render(" · " + s.SubjectTitle)
	}
	if s.State == timer.StatePaused {
		line += mutedStyle.Render(" (paused)")
	}
	return line
}

func renderInterval(iv *models.Interval, now time.Time) string {
	if iv == nil {
		return mutedStyle.Render("no open interval")
	}
	remaining := iv.StartedAt.Add(time.Duration(iv.DurationMinutes) * time.Minute).Sub(now)
	return fmt.Sprintf("#%d %s, %d min, started %s, %s left",
		iv.ID, kindLabel(iv.Kind), iv.DurationMinutes,
		iv.StartedAt.Local().Format("15:04"), formatClock(remaining))
}

func renderSetProgress(count, size int) string {
	dots := strings.Repeat("●", count) + strings.Repeat("○", max(size-count, 0))
	return fmt.Sprintf("set %s %d/%d", dots, count, size)
}

func renderStats(st analytics.Streak, lv analytics.Level, sc analytics.Score, sum analytics.Summary) string {
	var b strings.Builder
	fmt.Fprintln(&b, titleStyle.Render(fmt.Sprintf("Progress (%s)", sum.Period)))
	fmt.Fprintf(&b, "streak     %d days (best %d)\n", st.Current, st.Longest)
	next := "max"
	if lv.NextThreshold != nil {
		next = fmt.Sprintf("%d min", *lv.NextThreshold)
	}
	fmt.Fprintf(&b, "level      %d %s  %s %d/%s\n", lv.Level, goldStyle.Render(lv.Title),
		ratioBar(lv.Progress, 10), lv.TotalMinutes, next)
	fmt.Fprintf(&b, "score      %d  (streak %d, focus %d, tasks %d)\n", sc.Total, sc.Streak, sc.Focus, sc.Tasks)
	fmt.Fprintf(&b, "focus      %d intervals, %d min\n", sum.FocusCount, sum.FocusMinutes)
	fmt.Fprintf(&b, "tasks      %d/%d done\n", sum.TasksCompleted, sum.TasksTotal)
	fmt.Fprintf(&b, "today      %d min in %d intervals", sum.TodayMinutes, sum.TodayCount)
	for _, d := range sum.Daily {
		fmt.Fprintf(&b, "\n  %s %s %d", d.Date, ratioBar(float64(d.FocusMinutes)/120, 12), d.FocusMinutes)
	}
	if sum.Inactive48h {
		fmt.Fprintf(&b, "\n%s", mutedStyle.Render("no focus in the last 48 hours"))
	}
	return boxStyle.Render(b.String())
}

func renderAchievements(list []models.Achievement) string {
	lines := make([]string, 0, len(list))
	for _, a := range list {
		mark := mutedStyle.Render("○")
		name := mutedStyle.Render(a.Name)
		if a.Unlocked() {
			mark = goldStyle.Render("★")
			name = titleStyle.Render(a.Name)
		}
		lines = append(lines, fmt.Sprintf("%s %s  %s", mark, name, mutedStyle.Render(a.Description)))
	}
	return strings.Join(lines, "\n")
}
