package analytics

import (
	"math"
	"time"

	"github.com/NCUHOME-Y/TimiFocus/internal/models"
)

const inactiveAfter = 48 * time.Hour

type DayItem struct {
	Date           string `json:"date"`
	FocusMinutes   int    `json:"focus_minutes"`
	TasksCompleted int    `json:"tasks_completed"`
}

type Summary struct {
	Period                Period    `json:"period"`
	TasksTotal            int       `json:"tasks_total"`
	TasksCompleted        int       `json:"tasks_completed"`
	TotalIntervals        int       `json:"total_intervals"`
	FocusCount            int       `json:"focus_count"`
	FocusMinutes          int       `json:"focus_minutes"`
	TotalMinutes          int       `json:"total_minutes"`
	TodayMinutes          int       `json:"today_minutes"`
	TodayCount            int       `json:"today_count"`
	AvgFocusPerTask       float64   `json:"avg_focus_per_task"`
	AvgMinutesPerInterval float64   `json:"avg_minutes_per_interval"`
	Daily                 []DayItem `json:"daily"`
	Inactive48h           bool      `json:"inactive_48h"`
}

// Summarize 区间统计 + 每日明细（没有数据的日期补 0）
func Summarize(p Period, intervals []models.Interval, tasks []models.Task, now time.Time, loc *time.Location) Summary {
	loc = orUTC(loc)
	res := Summary{Period: p}
	res.TasksTotal, res.TasksCompleted = countTasks(p, tasks, now, loc)

	today := civilDay(now, loc)
	var lastEnd time.Time
	for _, iv := range intervals {
		if !iv.Completed() {
			continue
		}
		if focusDone(iv) && iv.EndedAt.After(lastEnd) {
			lastEnd = *iv.EndedAt
		}
		if focusDone(iv) && civilDay(iv.StartedAt, loc).Equal(today) {
			res.TodayMinutes += iv.DurationMinutes
			res.TodayCount++
		}
		if !p.Contains(iv.StartedAt, now, loc) {
			continue
		}
		res.TotalIntervals++
		res.TotalMinutes += iv.DurationMinutes
		if iv.Kind.Qualifying() {
			res.FocusCount++
			res.FocusMinutes += iv.DurationMinutes
		}
	}
	if res.TasksCompleted > 0 {
		res.AvgFocusPerTask = round1(float64(res.FocusCount) / float64(res.TasksCompleted))
	}
	if res.FocusCount > 0 {
		res.AvgMinutesPerInterval = round1(float64(res.FocusMinutes) / float64(res.FocusCount))
	}
	res.Inactive48h = lastEnd.IsZero() || now.Sub(lastEnd) > inactiveAfter
	res.Daily = dailyBreakdown(p.Days(), intervals, tasks, now, loc)
	return res
}

func dailyBreakdown(days int, intervals []models.Interval, tasks []models.Task, now time.Time, loc *time.Location) []DayItem {
	first := civilDay(now, loc).AddDate(0, 0, -(days - 1))
	idx := make(map[time.Time]int, days)
	out := make([]DayItem, days)
	for i := 0; i < days; i++ {
		d := first.AddDate(0, 0, i)
		idx[d] = i
		out[i].Date = d.Format("2006-01-02")
	}
	for _, iv := range intervals {
		if !focusDone(iv) {
			continue
		}
		if i, ok := idx[civilDay(iv.StartedAt, loc)]; ok {
			out[i].FocusMinutes += iv.DurationMinutes
		}
	}
	for _, t := range tasks {
		if t.CompletedAt == nil || !t.IsCompleted {
			continue
		}
		if i, ok := idx[civilDay(*t.CompletedAt, loc)]; ok {
			out[i].TasksCompleted++
		}
	}
	return out
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
