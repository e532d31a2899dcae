package service

import (
	"context"
	"time"

	"github.com/NCUHOME-Y/TimiFocus/internal/analytics"
	"github.com/NCUHOME-Y/TimiFocus/internal/ledger"
	"github.com/NCUHOME-Y/TimiFocus/internal/models"
	"github.com/NCUHOME-Y/TimiFocus/internal/pkg/logger"
)

// StartResult 开始区间的返回，附带激励文案
type StartResult struct {
	Interval   models.Interval `json:"interval"`
	Motivation *Motivation     `json:"motivation,omitempty"`
	Bedtime    string          `json:"bedtime,omitempty"`
}

// CompleteResult 完成区间的返回，附带本次新解锁的成就
type CompleteResult struct {
	Interval        models.Interval      `json:"interval"`
	NewAchievements []models.Achievement `json:"new_achievements"`
}

// SessionService 区间的开始/完成/取消
type SessionService struct {
	ledger   *ledger.Ledger
	progress *ProgressService
	loc      *time.Location
	log      *logger.Logger
}

func NewSessionService(l *ledger.Ledger, progress *ProgressService, loc *time.Location, log *logger.Logger) *SessionService {
	if loc == nil {
		loc = time.UTC
	}
	if log == nil {
		log = logger.Discard()
	}
	return &SessionService{ledger: l, progress: progress, loc: loc, log: log}
}

func (s *SessionService) Start(ctx context.Context, in ledger.StartInput) (StartResult, error) {
	iv, err := s.ledger.Start(ctx, in)
	if err != nil {
		return StartResult{}, err
	}
	res := StartResult{Interval: iv}
	if !iv.Kind.Qualifying() {
		return res, nil
	}

	local := iv.StartedAt.In(s.loc)
	y, m, d := local.Date()
	dayStart := time.Date(y, m, d, 0, 0, 0, 0, s.loc)
	today, err := s.ledger.List(ctx, dayStart)
	if err != nil {
		// 文案失败不影响开始
		s.log.Warn("load today intervals failed", "err", err)
		return res, nil
	}
	first := true
	for _, o := range today {
		if o.ID != iv.ID && o.Kind.Qualifying() {
			first = false
			break
		}
	}
	res.Motivation, res.Bedtime = Motivate(iv.Kind, iv.ID, local, first)
	return res, nil
}

// Complete 幂等；新解锁的成就只在第一次完成时出现
func (s *SessionService) Complete(ctx context.Context, id uint) (CompleteResult, error) {
	iv, err := s.ledger.Complete(ctx, id)
	if err != nil {
		return CompleteResult{}, err
	}
	res := CompleteResult{Interval: iv, NewAchievements: []models.Achievement{}}
	if !iv.Completed() || !iv.Kind.Qualifying() {
		return res, nil
	}
	// 中途失败时，已经解锁的那部分也要告诉用户，之后的检查不会再返回它们
	unlocked, err := s.progress.CheckAchievements(ctx)
	if err != nil {
		s.log.Error("check achievements failed", "interval_id", id, "unlocked", len(unlocked), "err", err)
	}
	if len(unlocked) > 0 {
		res.NewAchievements = unlocked
	}
	return res, nil
}

func (s *SessionService) Cancel(ctx context.Context, id uint) (models.Interval, error) {
	return s.ledger.Cancel(ctx, id)
}

func (s *SessionService) Open(ctx context.Context) (*models.Interval, error) {
	return s.ledger.Open(ctx)
}

func (s *SessionService) Get(ctx context.Context, id uint) (models.Interval, error) {
	return s.ledger.Get(ctx, id)
}

// History 区间内的区间记录
func (s *SessionService) History(ctx context.Context, p analytics.Period, now time.Time) ([]models.Interval, error) {
	return s.ledger.List(ctx, p.Since(now, s.loc))
}

func (s *SessionService) PullGrowth(ctx context.Context, limit int) ([]models.GrowthEvent, error) {
	return s.ledger.PullGrowth(ctx, limit)
}

func (s *SessionService) AckGrowth(ctx context.Context, lastID uint) error {
	return s.ledger.AckGrowth(ctx, lastID)
}
