// Package notifier 计时结束后通知账本关闭区间。
// 每个区间只发一次；请求跑在脱离调用方的 context 上，调用方退出不会打断它；
// 临时失败留在 pending 里，等下一次引擎活动时 Retry。
package notifier

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/NCUHOME-Y/TimiFocus/internal/ledger"
	"github.com/NCUHOME-Y/TimiFocus/internal/models"
	"github.com/NCUHOME-Y/TimiFocus/internal/pkg/logger"
	"github.com/NCUHOME-Y/TimiFocus/internal/pkg/metrics"
)

// Closer 账本的关闭操作，本地 Ledger 和 HTTP 客户端都满足
type Closer interface {
	Complete(ctx context.Context, id uint) (models.Interval, error)
	Cancel(ctx context.Context, id uint) (models.Interval, error)
}

type Op string

const (
	OpComplete Op = "complete"
	OpCancel   Op = "cancel"
)

// DefaultTimeout 单次请求超时
const DefaultTimeout = 10 * time.Second

// SettledFunc 每次请求结束（成功或失败）后回调，用来刷新统计缓存
type SettledFunc func(op Op, iv models.Interval, err error)

type Notifier struct {
	closer    Closer
	timeout   time.Duration
	onSettled SettledFunc
	log       *logger.Logger

	group singleflight.Group
	wg    sync.WaitGroup

	mu       sync.Mutex
	notified map[uint]Op            // 已发出过（含进行中）
	pending  map[uint]Op            // 临时失败待重试
	inflight map[uint]chan struct{} // 进行中，结束时关闭
}

type Option func(*Notifier)

func WithTimeout(d time.Duration) Option {
	return func(n *Notifier) {
		if d > 0 {
			n.timeout = d
		}
	}
}

func WithOnSettled(fn SettledFunc) Option {
	return func(n *Notifier) { n.onSettled = fn }
}

func WithLogger(l *logger.Logger) Option {
	return func(n *Notifier) { n.log = l }
}

func New(c Closer, opts ...Option) *Notifier {
	n := &Notifier{
		closer:   c,
		timeout:  DefaultTimeout,
		log:      logger.Discard(),
		notified: map[uint]Op{},
		pending:  map[uint]Op{},
		inflight: map[uint]chan struct{}{},
	}
	for _, o := range opts {
		o(n)
	}
	return n
}

// Complete 通知账本完成区间；同一 id 只会发出一次，返回是否本次发出
func (n *Notifier) Complete(ctx context.Context, id uint) bool {
	return n.dispatch(ctx, OpComplete, id)
}

// Cancel 取消走同一条路径
func (n *Notifier) Cancel(ctx context.Context, id uint) bool {
	return n.dispatch(ctx, OpCancel, id)
}

func (n *Notifier) dispatch(ctx context.Context, op Op, id uint) bool {
	n.mu.Lock()
	if _, ok := n.notified[id]; ok {
		n.mu.Unlock()
		return false
	}
	n.notified[id] = op
	n.mu.Unlock()

	n.run(ctx, op, id)
	return true
}

// run 不继承调用方的取消，只保留 context 里的值（trace 等）
func (n *Notifier) run(ctx context.Context, op Op, id uint) {
	n.mu.Lock()
	if _, ok := n.inflight[id]; ok {
		n.mu.Unlock()
		return
	}
	done := make(chan struct{})
	n.inflight[id] = done
	n.wg.Add(1)
	n.mu.Unlock()

	detached := context.WithoutCancel(ctx)
	go func() {
		defer n.wg.Done()
		defer close(done)
		v, err, _ := n.group.Do(fmt.Sprintf("%s:%d", op, id), func() (any, error) {
			cctx, cancel := context.WithTimeout(detached, n.timeout)
			defer cancel()
			if op == OpCancel {
				return n.closer.Cancel(cctx, id)
			}
			return n.closer.Complete(cctx, id)
		})
		iv, _ := v.(models.Interval)
		n.settle(op, id, iv, err)
	}()
}

func (n *Notifier) settle(op Op, id uint, iv models.Interval, err error) {
	n.mu.Lock()
	delete(n.inflight, id)
	switch {
	case err == nil:
		delete(n.pending, id)
		metrics.RecordNotifierCall(string(op), "ok")
	case errors.Is(err, ledger.ErrNotFound):
		// 账本里没有这条记录，重试也没有意义
		delete(n.pending, id)
		metrics.RecordNotifierCall(string(op), "dropped")
		n.log.Warn("notifier drop unknown interval", "op", op, "id", id)
	default:
		n.pending[id] = op
		metrics.RecordNotifierCall(string(op), "retry")
		n.log.Warn("notifier call failed, will retry", "op", op, "id", id, "err", err)
	}
	n.mu.Unlock()

	if n.onSettled != nil {
		n.onSettled(op, iv, err)
	}
}

// Retry 重发所有待重试的请求，在下一次引擎活动时调用
func (n *Notifier) Retry(ctx context.Context) int {
	n.mu.Lock()
	ops := make(map[uint]Op, len(n.pending))
	for id, op := range n.pending {
		ops[id] = op
	}
	n.pending = map[uint]Op{}
	n.mu.Unlock()

	for id, op := range ops {
		n.run(ctx, op, id)
	}
	return len(ops)
}

// Flush 等进行中的请求结束，再把待重试的重发一次并等它们结束。
// 开始新区间前调用：上一个区间的关闭请求落地之前，账本里它仍是未结束的
func (n *Notifier) Flush(ctx context.Context) error {
	if err := n.waitInflight(ctx); err != nil {
		return err
	}
	if n.Retry(ctx) == 0 {
		return nil
	}
	return n.waitInflight(ctx)
}

func (n *Notifier) waitInflight(ctx context.Context) error {
	n.mu.Lock()
	chans := make([]chan struct{}, 0, len(n.inflight))
	for _, ch := range n.inflight {
		chans = append(chans, ch)
	}
	n.mu.Unlock()

	for _, ch := range chans {
		select {
		case <-ch:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// Pending 待重试数量
func (n *Notifier) Pending() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.pending)
}

// Notified 该 id 是否已经发出过
func (n *Notifier) Notified(id uint) bool {
	n.mu.Lock()
	defer n.mu.Unlock()
	_, ok := n.notified[id]
	return ok
}

// Wait 等待所有进行中的请求结束（优雅退出、测试）
func (n *Notifier) Wait() {
	n.wg.Wait()
}
