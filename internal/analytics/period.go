// Package analytics 进度统计：连续天数、等级、成就、效率分。
// 全部是纯函数，输入历史记录，输出聚合结果，不报错也不持有状态。
package analytics

import (
	"time"

	"github.com/NCUHOME-Y/TimiFocus/internal/models"
)

// Period 统计区间
type Period string

const (
	PeriodToday  Period = "today"
	Period7Days  Period = "7days"
	Period30Days Period = "30days"
	PeriodAll    Period = "all"
)

// DefaultPeriod 未指定时按近 7 天统计
const DefaultPeriod = Period7Days

// ParsePeriod 空串回落到默认值；未知取值返回 false
func ParsePeriod(s string) (Period, bool) {
	switch p := Period(s); p {
	case "":
		return DefaultPeriod, true
	case PeriodToday, Period7Days, Period30Days, PeriodAll:
		return p, true
	}
	return "", false
}

// Days 计算日均时的分母；all 也按 30 天算
func (p Period) Days() int {
	switch p {
	case PeriodToday:
		return 1
	case Period7Days:
		return 7
	default:
		return 30
	}
}

// Since 区间起点（本地时区）；all 返回零值
func (p Period) Since(now time.Time, loc *time.Location) time.Time {
	switch p {
	case PeriodToday:
		return startOfDay(now, loc)
	case Period7Days:
		return now.AddDate(0, 0, -7)
	case Period30Days:
		return now.AddDate(0, 0, -30)
	}
	return time.Time{}
}

// Contains t 是否落在区间内
func (p Period) Contains(t, now time.Time, loc *time.Location) bool {
	since := p.Since(now, loc)
	return since.IsZero() || !t.Before(since)
}

func startOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// civilDay 把本地日期映射到 UTC 零点，做日期加减时不受夏令时影响
func civilDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// focusDone 已完成的专注类区间
func focusDone(iv models.Interval) bool {
	return iv.Kind.Qualifying() && iv.Completed()
}

func orUTC(loc *time.Location) *time.Location {
	if loc == nil {
		return time.UTC
	}
	return loc
}
