package analytics

import (
	"time"

	"github.com/NCUHOME-Y/TimiFocus/internal/models"
)

// 每日目标 4 个番茄
const dailyFocusTarget = 4

type ScoreInput struct {
	CurrentStreak  int
	CompletedFocus int // 区间内完成的专注个数
	Days           int
	TasksCreated   int
	TasksCompleted int
}

// Score 三部分各自取整后相加，总分封顶 100
type Score struct {
	Total  int `json:"score"`
	Streak int `json:"streak_points"`
	Focus  int `json:"focus_points"`
	Tasks  int `json:"task_points"`
}

func ProductivityScore(in ScoreInput) Score {
	var s Score
	s.Streak = clamp(in.CurrentStreak*5, 0, 30)

	if in.Days > 0 && in.CompletedFocus > 0 {
		avg := float64(in.CompletedFocus) / float64(in.Days)
		s.Focus = clamp(int(avg/dailyFocusTarget*40), 0, 40)
	}
	if in.TasksCreated > 0 && in.TasksCompleted > 0 {
		ratio := float64(in.TasksCompleted) / float64(in.TasksCreated)
		s.Tasks = clamp(int(ratio*30), 0, 30)
	}
	s.Total = clamp(s.Streak+s.Focus+s.Tasks, 0, 100)
	return s
}

// ScoreFor 按统计区间从历史记录计算效率分
func ScoreFor(p Period, intervals []models.Interval, tasks []models.Task, now time.Time, loc *time.Location) Score {
	loc = orUTC(loc)
	in := ScoreInput{
		CurrentStreak: ComputeStreak(intervals, now, loc).Current,
		Days:          p.Days(),
	}
	for _, iv := range intervals {
		if focusDone(iv) && p.Contains(iv.StartedAt, now, loc) {
			in.CompletedFocus++
		}
	}
	in.TasksCreated, in.TasksCompleted = countTasks(p, tasks, now, loc)
	return ProductivityScore(in)
}

// countTasks 创建数按 created_at，完成数按 completed_at 落在区间内
func countTasks(p Period, tasks []models.Task, now time.Time, loc *time.Location) (created, completed int) {
	for _, t := range tasks {
		if p.Contains(t.CreatedAt, now, loc) {
			created++
		}
		if t.IsCompleted && (p == PeriodAll || (t.CompletedAt != nil && p.Contains(*t.CompletedAt, now, loc))) {
			completed++
		}
	}
	return created, completed
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
