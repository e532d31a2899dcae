// Package engine 会话引擎门面：展示层把意图交给它，拿回计时快照
package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/NCUHOME-Y/TimiFocus/internal/ledger"
	"github.com/NCUHOME-Y/TimiFocus/internal/models"
	"github.com/NCUHOME-Y/TimiFocus/internal/notifier"
	"github.com/NCUHOME-Y/TimiFocus/internal/pkg/logger"
	"github.com/NCUHOME-Y/TimiFocus/internal/sets"
	"github.com/NCUHOME-Y/TimiFocus/internal/timer"
)

// Ledger 本地账本或 HTTP 客户端
type Ledger interface {
	timer.Ledger
	notifier.Closer
}

// Settings 只读的计时默认值
type Settings interface {
	All(ctx context.Context) (map[string]int, error)
}

// TaskStore 任务协作方：引擎只读 id/标题，完成时单向推送实际时长
type TaskStore interface {
	Title(ctx context.Context, id uint) (string, error)
	ToggleCompletion(ctx context.Context, taskID uint, elapsedMinutes, manualMinutes *int) (models.Task, error)
}

// StartRequest Minutes 为空时取设置里的默认时长
type StartRequest struct {
	Kind      models.Kind
	SubjectID *uint
	Minutes   *int
}

type Engine struct {
	ledger   Ledger
	settings Settings
	tasks    TaskStore
	log      *logger.Logger

	clock    *timer.Clock
	sets     *sets.Scheduler
	notifier *notifier.Notifier
}

type Option func(*config)

type config struct {
	log       *logger.Logger
	now       func() time.Time
	tick      time.Duration
	onSettled notifier.SettledFunc
	timeout   time.Duration
}

func WithLogger(l *logger.Logger) Option { return func(c *config) { c.log = l } }

// WithNow 替换时间源
func WithNow(now func() time.Time) Option { return func(c *config) { c.now = now } }

func WithTick(d time.Duration) Option { return func(c *config) { c.tick = d } }

// WithOnSettled 区间关闭请求结束后回调，用于刷新统计
func WithOnSettled(fn notifier.SettledFunc) Option { return func(c *config) { c.onSettled = fn } }

// WithNotifyTimeout 单次关闭请求的超时
func WithNotifyTimeout(d time.Duration) Option { return func(c *config) { c.timeout = d } }

func New(l Ledger, settings Settings, tasks TaskStore, opts ...Option) *Engine {
	cfg := config{log: logger.Discard(), now: time.Now, tick: timer.DefaultTick}
	for _, o := range opts {
		o(&cfg)
	}

	e := &Engine{
		ledger:   l,
		settings: settings,
		tasks:    tasks,
		log:      cfg.log,
		sets:     sets.New(sets.DefaultSize),
	}
	e.notifier = notifier.New(l,
		notifier.WithLogger(cfg.log),
		notifier.WithTimeout(cfg.timeout),
		notifier.WithOnSettled(cfg.onSettled),
	)
	e.clock = timer.New(l, e.notifier,
		timer.WithNow(cfg.now),
		timer.WithTick(cfg.tick),
		timer.WithTitleLookup(e.title),
		timer.WithOnComplete(func(iv models.Interval) { e.sets.Completed(iv.Kind) }),
	)
	return e
}

func (e *Engine) title(ctx context.Context, id uint) string {
	if e.tasks == nil {
		return ""
	}
	t, err := e.tasks.Title(ctx, id)
	if err != nil {
		e.log.Debug("task title lookup failed", "task_id", id, "err", err)
		return ""
	}
	return t
}

// defaults 读设置失败时用内置默认值，计时不因此受阻
func (e *Engine) defaults(ctx context.Context) map[string]int {
	out := make(map[string]int, len(models.DefaultSettings))
	for k, v := range models.DefaultSettings {
		out[k] = v
	}
	if e.settings == nil {
		return out
	}
	got, err := e.settings.All(ctx)
	if err != nil {
		e.log.Warn("load settings failed, using defaults", "err", err)
		return out
	}
	for k, v := range got {
		if v > 0 {
			out[k] = v
		}
	}
	return out
}

// Start 开始一个区间；上一个区间完成后未确认的，开始新区间视为确认。
// 先等引擎自己发出的关闭请求落地，否则账本会把刚关掉的区间当成未结束
func (e *Engine) Start(ctx context.Context, req StartRequest) (timer.Snapshot, error) {
	if err := e.notifier.Flush(ctx); err != nil {
		return e.clock.Snapshot(), err
	}
	if e.clock.Snapshot().State == timer.StateCompleted {
		_ = e.clock.Acknowledge()
	}

	cfg := e.defaults(ctx)
	e.sets.Resize(cfg[models.SettingSetSize])
	minutes := cfg[req.Kind.DurationKey()]
	if req.Minutes != nil {
		minutes = *req.Minutes
	}

	title := ""
	if req.SubjectID != nil {
		title = e.title(ctx, *req.SubjectID)
	}
	_, err := e.clock.Start(ctx, ledger.StartInput{Kind: req.Kind, SubjectID: req.SubjectID, DurationMinutes: minutes}, title)
	if err != nil {
		return e.clock.Snapshot(), err
	}
	e.sets.Started(req.Kind)
	return e.clock.Snapshot(), nil
}

func (e *Engine) Pause() error  { return e.clock.Pause() }
func (e *Engine) Resume() error { return e.clock.Resume() }

// Cancel 放弃当前区间，账本取消请求由 notifier 在后台发出
func (e *Engine) Cancel(ctx context.Context) error {
	return e.clock.Cancel(ctx)
}

// Acknowledge 确认完成，回到 idle
func (e *Engine) Acknowledge(ctx context.Context) error {
	e.notifier.Retry(ctx)
	return e.clock.Acknowledge()
}

// Attach 以账本为准恢复计时；组计数不持久化，新进程从 0 开始
func (e *Engine) Attach(ctx context.Context) (timer.Snapshot, error) {
	e.notifier.Retry(ctx)
	e.sets.Resize(e.defaults(ctx)[models.SettingSetSize])
	return e.clock.Attach(ctx)
}

// CompleteTask 完成任务；如果当前区间正关联该任务，推送实际耗时（不超过计划时长）
func (e *Engine) CompleteTask(ctx context.Context, taskID uint) (models.Task, error) {
	s := e.clock.Snapshot()
	var elapsed *int
	active := s.SubjectID != nil && *s.SubjectID == taskID &&
		(s.State == timer.StateRunning || s.State == timer.StatePaused)
	if active {
		m := ElapsedMinutes(s.Total, s.Remaining)
		elapsed = &m
	}

	task, err := e.tasks.ToggleCompletion(ctx, taskID, elapsed, nil)
	if err != nil {
		return task, fmt.Errorf("toggle task %d: %w", taskID, err)
	}
	if active && task.IsCompleted {
		// 任务方已关闭区间，这里只做一次对账
		e.sets.Completed(s.Kind)
		if _, err := e.clock.Attach(ctx); err != nil && !errors.Is(err, context.Canceled) {
			e.log.Warn("reconcile after task completion failed", "task_id", taskID, "err", err)
		}
	}
	return task, nil
}

// ElapsedMinutes 已用分钟数，截断到 [0, total]
func ElapsedMinutes(total, remaining time.Duration) int {
	used := total - remaining
	if used < 0 {
		used = 0
	}
	if used > total {
		used = total
	}
	return int(used / time.Minute)
}

// RecommendBreak 建议的休息类型
func (e *Engine) RecommendBreak() models.Kind { return e.sets.RecommendBreak() }

// SetProgress 当前组内已完成个数和组大小
func (e *Engine) SetProgress() (count, size int) { return e.sets.Count(), e.sets.Size() }

func (e *Engine) Snapshot() timer.Snapshot { return e.clock.Snapshot() }

func (e *Engine) Subscribe(fn func(timer.Snapshot)) func() { return e.clock.Subscribe(fn) }

// Run 驱动计时循环
func (e *Engine) Run(ctx context.Context) error { return e.clock.Run(ctx) }

// Close 停止计时循环并等待后台请求结束
func (e *Engine) Close() {
	e.clock.Stop()
	e.notifier.Wait()
}

// PendingNotifications 待重试的关闭请求数
func (e *Engine) PendingNotifications() int { return e.notifier.Pending() }
