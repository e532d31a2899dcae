package service

import (
	"context"
	"time"

	"github.com/NCUHOME-Y/TimiFocus/internal/analytics"
	"github.com/NCUHOME-Y/TimiFocus/internal/models"
	"github.com/NCUHOME-Y/TimiFocus/internal/pkg/logger"
	"github.com/NCUHOME-Y/TimiFocus/internal/pkg/metrics"
)

// IntervalLister 历史区间
type IntervalLister interface {
	List(ctx context.Context, since time.Time) ([]models.Interval, error)
}

type TaskLister interface {
	List(ctx context.Context) ([]models.Task, error)
}

type AchievementStore interface {
	All(ctx context.Context) ([]models.Achievement, error)
	Unlock(ctx context.Context, key string, at time.Time) (bool, error)
}

// ProgressService 读出全量历史，交给 analytics 计算
type ProgressService struct {
	intervals    IntervalLister
	tasks        TaskLister
	achievements AchievementStore
	loc          *time.Location
	now          func() time.Time
	log          *logger.Logger
}

func NewProgressService(iv IntervalLister, tasks TaskLister, ach AchievementStore, loc *time.Location, log *logger.Logger) *ProgressService {
	if loc == nil {
		loc = time.UTC
	}
	if log == nil {
		log = logger.Discard()
	}
	return &ProgressService{intervals: iv, tasks: tasks, achievements: ach, loc: loc, now: time.Now, log: log}
}

// WithClock 替换时间源（测试用）
func (s *ProgressService) WithClock(now func() time.Time) *ProgressService {
	s.now = now
	return s
}

func (s *ProgressService) history(ctx context.Context) ([]models.Interval, []models.Task, error) {
	ivs, err := s.intervals.List(ctx, time.Time{})
	if err != nil {
		return nil, nil, err
	}
	tasks, err := s.tasks.List(ctx)
	if err != nil {
		return nil, nil, err
	}
	return ivs, tasks, nil
}

func (s *ProgressService) Streak(ctx context.Context) (analytics.Streak, error) {
	ivs, err := s.intervals.List(ctx, time.Time{})
	if err != nil {
		return analytics.Streak{}, err
	}
	return analytics.ComputeStreak(ivs, s.now(), s.loc), nil
}

func (s *ProgressService) Level(ctx context.Context) (analytics.Level, error) {
	ivs, err := s.intervals.List(ctx, time.Time{})
	if err != nil {
		return analytics.Level{}, err
	}
	return analytics.LevelFor(analytics.TotalFocusMinutes(ivs)), nil
}

func (s *ProgressService) Score(ctx context.Context, p analytics.Period) (analytics.Score, error) {
	ivs, tasks, err := s.history(ctx)
	if err != nil {
		return analytics.Score{}, err
	}
	return analytics.ScoreFor(p, ivs, tasks, s.now(), s.loc), nil
}

func (s *ProgressService) Summary(ctx context.Context, p analytics.Period) (analytics.Summary, error) {
	ivs, tasks, err := s.history(ctx)
	if err != nil {
		return analytics.Summary{}, err
	}
	return analytics.Summarize(p, ivs, tasks, s.now(), s.loc), nil
}

func (s *ProgressService) Achievements(ctx context.Context) ([]models.Achievement, error) {
	return s.achievements.All(ctx)
}

// CheckAchievements 评估未解锁的成就并写库；并发调用时只有抢到写入的一方会返回该成就
func (s *ProgressService) CheckAchievements(ctx context.Context) ([]models.Achievement, error) {
	ivs, tasks, err := s.history(ctx)
	if err != nil {
		return nil, err
	}
	defs, err := s.achievements.All(ctx)
	if err != nil {
		return nil, err
	}
	now := s.now()
	agg := analytics.Aggregate(ivs, tasks, now, s.loc)
	out := []models.Achievement{}
	for _, a := range analytics.EvaluateAchievements(defs, agg, now) {
		ok, err := s.achievements.Unlock(ctx, a.Key, *a.UnlockedAt)
		if err != nil {
			return out, err
		}
		if !ok {
			continue
		}
		metrics.RecordAchievementUnlocked(a.Key)
		s.log.Info("achievement unlocked", "key", a.Key)
		out = append(out, a)
	}
	return out, nil
}
