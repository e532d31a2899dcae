package analytics

import (
	"strings"
	"time"

	"github.com/NCUHOME-Y/TimiFocus/internal/models"
)

// Family 成就规则族，由 key 决定
type Family string

const (
	FamilyFocusCount Family = "focus_count"
	FamilyStreak     Family = "streak"
	FamilyTasks      Family = "tasks"
	FamilyFocusHour  Family = "focus_hour"
	FamilyEarlyBird  Family = "early_bird"
	FamilyNightOwl   Family = "night_owl"
	FamilyUnknown    Family = ""
)

const (
	earlyBirdHour = 7
	nightOwlHour  = 22
)

// FamilyOf 精确 key 优先于前缀（focus_hour 也以 focus_ 开头）
func FamilyOf(key string) Family {
	switch key {
	case "focus_hour":
		return FamilyFocusHour
	case "early_bird":
		return FamilyEarlyBird
	case "night_owl":
		return FamilyNightOwl
	case "first_focus":
		return FamilyFocusCount
	}
	switch {
	case strings.HasPrefix(key, "focus_"):
		return FamilyFocusCount
	case strings.HasPrefix(key, "streak_"):
		return FamilyStreak
	case strings.HasPrefix(key, "tasks_"):
		return FamilyTasks
	}
	return FamilyUnknown
}

// Aggregates 成就判定所需的全部聚合值
type Aggregates struct {
	CompletedFocus    int    `json:"completed_focus"`
	Streak            Streak `json:"streak"`
	CompletedTasks    int    `json:"completed_tasks"`
	TodayFocusMinutes int    `json:"today_focus_minutes"`
	EarlyBird         bool   `json:"early_bird"`
	NightOwl          bool   `json:"night_owl"`
}

// Aggregate 从全量历史计算聚合值
func Aggregate(intervals []models.Interval, tasks []models.Task, now time.Time, loc *time.Location) Aggregates {
	loc = orUTC(loc)
	agg := Aggregates{Streak: ComputeStreak(intervals, now, loc)}
	today := civilDay(now, loc)
	for _, iv := range intervals {
		if !focusDone(iv) {
			continue
		}
		agg.CompletedFocus++
		if civilDay(iv.StartedAt, loc).Equal(today) {
			agg.TodayFocusMinutes += iv.DurationMinutes
		}
		h := iv.StartedAt.In(loc).Hour()
		if h < earlyBirdHour {
			agg.EarlyBird = true
		}
		if h >= nightOwlHour {
			agg.NightOwl = true
		}
	}
	for _, t := range tasks {
		if t.IsCompleted {
			agg.CompletedTasks++
		}
	}
	return agg
}

// Satisfied 规则是否满足；未知规则族永不解锁
func Satisfied(def models.Achievement, agg Aggregates) bool {
	switch FamilyOf(def.Key) {
	case FamilyFocusCount:
		return agg.CompletedFocus >= def.Threshold
	case FamilyStreak:
		return max(agg.Streak.Current, agg.Streak.Longest) >= def.Threshold
	case FamilyTasks:
		return agg.CompletedTasks >= def.Threshold
	case FamilyFocusHour:
		return agg.TodayFocusMinutes >= def.Threshold
	case FamilyEarlyBird:
		return agg.EarlyBird
	case FamilyNightOwl:
		return agg.NightOwl
	}
	return false
}

// EvaluateAchievements 只看未解锁的定义，返回本次新满足的（UnlockedAt = now 的副本）。
// 入参不会被修改；持久化由调用方负责。
func EvaluateAchievements(defs []models.Achievement, agg Aggregates, now time.Time) []models.Achievement {
	var unlocked []models.Achievement
	for _, def := range defs {
		if def.Unlocked() || !Satisfied(def, agg) {
			continue
		}
		at := now
		def.UnlockedAt = &at
		unlocked = append(unlocked, def)
	}
	return unlocked
}
