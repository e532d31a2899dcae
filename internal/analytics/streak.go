package analytics

import (
	"sort"
	"time"

	"github.com/NCUHOME-Y/TimiFocus/internal/models"
)

type Streak struct {
	Current        int  `json:"current_streak"`
	Longest        int  `json:"longest_streak"`
	TodayCompleted bool `json:"today_completed"`
}

// ComputeStreak 按 started_at 的本地日期统计连续天数
func ComputeStreak(intervals []models.Interval, now time.Time, loc *time.Location) Streak {
	loc = orUTC(loc)
	set := map[time.Time]struct{}{}
	for _, iv := range intervals {
		if focusDone(iv) {
			set[civilDay(iv.StartedAt, loc)] = struct{}{}
		}
	}
	if len(set) == 0 {
		return Streak{}
	}

	today := civilDay(now, loc)
	_, todayDone := set[today]
	res := Streak{TodayCompleted: todayDone}

	// 今天还没完成时从昨天开始往前数，今天不算断
	cursor := today
	if !todayDone {
		cursor = today.AddDate(0, 0, -1)
	}
	for {
		if _, ok := set[cursor]; !ok {
			break
		}
		res.Current++
		cursor = cursor.AddDate(0, 0, -1)
	}

	days := make([]time.Time, 0, len(set))
	for d := range set {
		days = append(days, d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Before(days[j]) })
	run := 0
	for i, d := range days {
		if i > 0 && days[i-1].AddDate(0, 0, 1).Equal(d) {
			run++
		} else {
			run = 1
		}
		if run > res.Longest {
			res.Longest = run
		}
	}
	return res
}
