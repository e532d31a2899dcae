package analytics

import (
	"time"

	"github.com/NCUHOME-Y/TimiFocus/internal/models"
)

var (
	shanghai = time.FixedZone("CST", 8*3600)
	// 本地时间 2025-03-10 14:00
	now = time.Date(2025, 3, 10, 14, 0, 0, 0, shanghai)
)

// done 在 now 往前 daysAgo 天的本地 hour 点开始的已完成区间
func done(kind models.Kind, daysAgo, hour, minutes int) models.Interval {
	start := time.Date(2025, 3, 10-daysAgo, hour, 0, 0, 0, shanghai).UTC()
	end := start.Add(time.Duration(minutes) * time.Minute)
	out := models.OutcomeCompleted
	return models.Interval{Kind: kind, DurationMinutes: minutes, StartedAt: start, EndedAt: &end, Outcome: &out}
}

func cancelled(kind models.Kind, daysAgo, hour, minutes int) models.Interval {
	iv := done(kind, daysAgo, hour, minutes)
	out := models.OutcomeCancelled
	iv.Outcome = &out
	return iv
}

func workOn(daysAgo ...int) []models.Interval {
	var ivs []models.Interval
	for _, d := range daysAgo {
		ivs = append(ivs, done(models.KindWork, d, 10, 25))
	}
	return ivs
}

func task(createdDaysAgo int, completedDaysAgo *int) models.Task {
	t := models.Task{CreatedAt: time.Date(2025, 3, 10-createdDaysAgo, 9, 0, 0, 0, shanghai)}
	if completedDaysAgo != nil {
		at := time.Date(2025, 3, 10-*completedDaysAgo, 12, 0, 0, 0, shanghai)
		t.IsCompleted = true
		t.CompletedAt = &at
	}
	return t
}

func ptr(v int) *int { return &v }
