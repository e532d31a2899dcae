package analytics

import "github.com/NCUHOME-Y/TimiFocus/internal/models"

type levelStep struct {
	level     int
	title     string
	threshold int
}

// levels 累计专注分钟 → 等级，阈值严格递增
var levels = []levelStep{
	{1, "Beginner", 0},
	{2, "Apprentice", 60},
	{3, "Focus Adept", 300},
	{4, "Pomodoro Connoisseur", 900},
	{5, "Productivity Hero", 1800},
	{6, "Focus Master", 3600},
	{7, "Zen Master", 6000},
	{8, "Legend", 12000},
}

type Level struct {
	Level            int     `json:"level"`
	Title            string  `json:"title"`
	TotalMinutes     int     `json:"total_minutes"`
	CurrentThreshold int     `json:"current_threshold"`
	NextThreshold    *int    `json:"next_threshold"`
	Progress         float64 `json:"progress"`
}

// TotalFocusMinutes 全部已完成专注区间的计划时长之和
func TotalFocusMinutes(intervals []models.Interval) int {
	total := 0
	for _, iv := range intervals {
		if focusDone(iv) {
			total += iv.DurationMinutes
		}
	}
	return total
}

// LevelFor 阈值 <= total 的最高档
func LevelFor(totalMinutes int) Level {
	idx := 0
	for i, s := range levels {
		if totalMinutes >= s.threshold {
			idx = i
		}
	}
	cur := levels[idx]
	res := Level{
		Level:            cur.level,
		Title:            cur.title,
		TotalMinutes:     totalMinutes,
		CurrentThreshold: cur.threshold,
		Progress:         1,
	}
	if idx+1 < len(levels) {
		next := levels[idx+1].threshold
		res.NextThreshold = &next
		if totalMinutes > cur.threshold {
			res.Progress = float64(totalMinutes-cur.threshold) / float64(next-cur.threshold)
		} else {
			res.Progress = 0
		}
	}
	return res
}

// MaxLevel 最高等级
func MaxLevel() int { return levels[len(levels)-1].level }
