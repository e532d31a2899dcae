// Package sets 番茄组计数：连续完成若干个专注后建议长休息
package sets

import (
	"sync"

	"github.com/NCUHOME-Y/TimiFocus/internal/models"
)

// DefaultSize 默认一组 4 个专注
const DefaultSize = 4

// Scheduler 计数只保存在内存里，重新 attach 后从 0 开始
type Scheduler struct {
	mu      sync.Mutex
	size    int
	counter int
}

func New(size int) *Scheduler {
	if size <= 0 {
		size = DefaultSize
	}
	return &Scheduler{size: size}
}

// Completed 专注类区间完成后计数 +1，休息不计
func (s *Scheduler) Completed(kind models.Kind) {
	if !kind.Qualifying() {
		return
	}
	s.mu.Lock()
	s.counter++
	s.mu.Unlock()
}

// Started 开始长休息时清零
func (s *Scheduler) Started(kind models.Kind) {
	if kind != models.KindLongBreak {
		return
	}
	s.mu.Lock()
	s.counter = 0
	s.mu.Unlock()
}

// IsSetComplete counter+1 >= size
func (s *Scheduler) IsSetComplete() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counter+1 >= s.size
}

// RecommendBreak 只是建议，用户可以自由选择
func (s *Scheduler) RecommendBreak() models.Kind {
	if s.IsSetComplete() {
		return models.KindLongBreak
	}
	return models.KindShortBreak
}

func (s *Scheduler) Count() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counter
}

func (s *Scheduler) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.size
}

// Resize 设置变更后调整组大小，不影响已有计数
func (s *Scheduler) Resize(size int) {
	if size <= 0 {
		size = DefaultSize
	}
	s.mu.Lock()
	s.size = size
	s.mu.Unlock()
}
