// Package timer 本地倒计时：以账本记录的 started_at 为锚点，每个 tick 重新计算剩余时间
package timer

import (
	"context"
	"sync"
	"time"

	"github.com/NCUHOME-Y/TimiFocus/internal/ledger"
	"github.com/NCUHOME-Y/TimiFocus/internal/models"
)

type State string

const (
	StateIdle      State = "idle"
	StateRunning   State = "running"
	StatePaused    State = "paused"
	StateCompleted State = "completed"
)

// DefaultTick 刷新间隔
const DefaultTick = 250 * time.Millisecond

// Ledger 时钟只需要开始和查询未结束区间
type Ledger interface {
	Start(ctx context.Context, in ledger.StartInput) (models.Interval, error)
	Open(ctx context.Context) (*models.Interval, error)
}

// Notifier 关闭区间的请求都经过它，保证只发一次且不被调用方取消
type Notifier interface {
	Complete(ctx context.Context, id uint) bool
	Cancel(ctx context.Context, id uint) bool
}

// Snapshot 每个 tick 推给展示层的状态
type Snapshot struct {
	State        State         `json:"state"`
	Remaining    time.Duration `json:"remaining"`
	Total        time.Duration `json:"total"`
	Kind         models.Kind   `json:"kind,omitempty"`
	SubjectID    *uint         `json:"subject_id,omitempty"`
	SubjectTitle string        `json:"subject_title,omitempty"`
	IntervalID   uint          `json:"interval_id,omitempty"`
	StartedAt    time.Time     `json:"started_at"`
}

type Clock struct {
	ledger   Ledger
	notifier Notifier
	now      func() time.Time
	tick     time.Duration
	titleOf  func(ctx context.Context, id uint) string
	onDone   func(models.Interval)

	mu        sync.Mutex
	state     State
	iv        models.Interval
	title     string
	anchor    time.Time
	budget    time.Duration
	remaining time.Duration

	subMu  sync.Mutex
	subs   map[int]func(Snapshot)
	nextID int

	stopOnce sync.Once
	done     chan struct{}
}

type Option func(*Clock)

// WithNow 替换时间源
func WithNow(now func() time.Time) Option {
	return func(c *Clock) { c.now = now }
}

func WithTick(d time.Duration) Option {
	return func(c *Clock) {
		if d > 0 {
			c.tick = d
		}
	}
}

// WithTitleLookup 恢复时按 subject_id 查任务标题
func WithTitleLookup(fn func(ctx context.Context, id uint) string) Option {
	return func(c *Clock) { c.titleOf = fn }
}

// WithOnComplete 倒计时结束时回调（组计数等）
func WithOnComplete(fn func(models.Interval)) Option {
	return func(c *Clock) { c.onDone = fn }
}

func New(l Ledger, n Notifier, opts ...Option) *Clock {
	c := &Clock{
		ledger:   l,
		notifier: n,
		now:      time.Now,
		tick:     DefaultTick,
		state:    StateIdle,
		subs:     map[int]func(Snapshot){},
		done:     make(chan struct{}),
	}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Start 账本创建成功后才进入 running；本地忙时直接拒绝，不去碰账本
func (c *Clock) Start(ctx context.Context, in ledger.StartInput, title string) (models.Interval, error) {
	c.mu.Lock()
	if c.state == StateRunning || c.state == StatePaused {
		c.mu.Unlock()
		return models.Interval{}, ErrBusy
	}
	c.mu.Unlock()

	iv, err := c.ledger.Start(ctx, in)
	if err != nil {
		return models.Interval{}, err
	}

	c.mu.Lock()
	c.adopt(iv, title)
	c.mu.Unlock()
	c.publish()
	return iv, nil
}

// adopt 以 started_at 为锚点进入 running，调用方持锁
func (c *Clock) adopt(iv models.Interval, title string) {
	c.iv = iv
	c.title = title
	c.anchor = iv.StartedAt
	c.budget = iv.Duration()
	c.state = StateRunning
	c.remaining = c.left()
}

// left budget - 自锚点以来的耗时，不小于 0
func (c *Clock) left() time.Duration {
	r := c.budget - c.now().Sub(c.anchor)
	if r < 0 {
		return 0
	}
	return r
}

// Pause 冻结剩余时间，不调用账本
func (c *Clock) Pause() error {
	c.mu.Lock()
	if c.state != StateRunning {
		c.mu.Unlock()
		return ErrInvalidTransition
	}
	c.remaining = c.left()
	c.state = StatePaused
	c.mu.Unlock()
	c.publish()
	return nil
}

// Resume 以当前时间重新锚定，从冻结的剩余时间继续倒数，暂停期间不计入
func (c *Clock) Resume() error {
	c.mu.Lock()
	if c.state != StatePaused {
		c.mu.Unlock()
		return ErrInvalidTransition
	}
	c.anchor = c.now()
	c.budget = c.remaining
	c.state = StateRunning
	c.mu.Unlock()
	c.publish()
	return nil
}

// Tick 每次重新计算剩余时间；到 0 时交给 notifier 完成
func (c *Clock) Tick(ctx context.Context) {
	c.mu.Lock()
	if c.state != StateRunning {
		c.mu.Unlock()
		return
	}
	c.remaining = c.left()
	finished := c.remaining <= 0
	iv := c.iv
	if finished {
		c.state = StateCompleted
	}
	c.mu.Unlock()

	if finished {
		c.finish(ctx, iv)
	}
	c.publish()
}

func (c *Clock) finish(ctx context.Context, iv models.Interval) {
	// 本地先进入 completed，请求失败由 notifier 负责重试
	if c.notifier.Complete(ctx, iv.ID) && c.onDone != nil {
		c.onDone(iv)
	}
}

// Cancel 放弃当前区间并清空本地状态
func (c *Clock) Cancel(ctx context.Context) error {
	c.mu.Lock()
	state, id := c.state, c.iv.ID
	if state == StateIdle {
		c.mu.Unlock()
		return ErrInvalidTransition
	}
	c.reset()
	c.mu.Unlock()

	if state == StateRunning || state == StatePaused {
		c.notifier.Cancel(ctx, id)
	}
	c.publish()
	return nil
}

// Acknowledge 用户确认完成后回到 idle
func (c *Clock) Acknowledge() error {
	c.mu.Lock()
	if c.state != StateCompleted {
		c.mu.Unlock()
		return ErrInvalidTransition
	}
	c.reset()
	c.mu.Unlock()
	c.publish()
	return nil
}

func (c *Clock) reset() {
	c.state = StateIdle
	c.iv = models.Interval{}
	c.title = ""
	c.anchor = time.Time{}
	c.budget = 0
	c.remaining = 0
}

// Attach 以账本为准恢复状态（刷新页面、进程重启后）。
// 账本里没有未结束区间就回到 idle；已经超时的直接进入 completed 并补发完成。
func (c *Clock) Attach(ctx context.Context) (Snapshot, error) {
	open, err := c.ledger.Open(ctx)
	if err != nil {
		return c.Snapshot(), err
	}

	title := ""
	if open != nil && open.SubjectID != nil && c.titleOf != nil {
		title = c.titleOf(ctx, *open.SubjectID)
	}

	c.mu.Lock()
	var expired *models.Interval
	switch {
	case open == nil:
		if c.state != StateCompleted {
			c.reset()
		}
	case c.iv.ID == open.ID && (c.state == StateRunning || c.state == StatePaused):
		// 同一区间，本地暂停状态保留
		if title != "" {
			c.title = title
		}
	default:
		c.adopt(*open, title)
		if c.remaining <= 0 {
			c.state = StateCompleted
			iv := *open
			expired = &iv
		}
	}
	c.mu.Unlock()

	if expired != nil {
		c.finish(ctx, *expired)
	}
	c.publish()
	return c.Snapshot(), nil
}

// Snapshot 当前状态；running 时实时计算剩余时间
func (c *Clock) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	s := Snapshot{State: c.state, Remaining: c.remaining}
	if c.state == StateIdle {
		return s
	}
	if c.state == StateRunning {
		s.Remaining = c.left()
	}
	s.Total = c.iv.Duration()
	s.Kind = c.iv.Kind
	s.SubjectID = c.iv.SubjectID
	s.SubjectTitle = c.title
	s.IntervalID = c.iv.ID
	s.StartedAt = c.iv.StartedAt
	return s
}

// Subscribe 订阅状态变化，返回取消函数
func (c *Clock) Subscribe(fn func(Snapshot)) func() {
	c.subMu.Lock()
	id := c.nextID
	c.nextID++
	c.subs[id] = fn
	c.subMu.Unlock()
	return func() {
		c.subMu.Lock()
		delete(c.subs, id)
		c.subMu.Unlock()
	}
}

func (c *Clock) publish() {
	s := c.Snapshot()
	c.subMu.Lock()
	fns := make([]func(Snapshot), 0, len(c.subs))
	for _, fn := range c.subs {
		fns = append(fns, fn)
	}
	c.subMu.Unlock()
	for _, fn := range fns {
		fn(s)
	}
}

// Run 单一 ticker 驱动，直到 ctx 结束或 Stop
func (c *Clock) Run(ctx context.Context) error {
	t := time.NewTicker(c.tick)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-c.done:
			return nil
		case <-t.C:
			c.Tick(ctx)
		}
	}
}

// Stop 结束 Run，可重复调用
func (c *Clock) Stop() {
	c.stopOnce.Do(func() { close(c.done) })
}
