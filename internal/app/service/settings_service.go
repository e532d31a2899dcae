package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/dgraph-io/ristretto/v2"
	"github.com/go-playground/validator/v10"

	"github.com/NCUHOME-Y/TimiFocus/internal/models"
)

var ErrInvalidSettings = errors.New("invalid settings")

const (
	settingsCacheKey = "settings"
	settingsTTL      = 60 * time.Second
)

// SettingStore 设置持久层
type SettingStore interface {
	All(ctx context.Context) (map[string]int, error)
	Save(ctx context.Context, values map[string]int) error
}

// SettingsUpdate 只写传入的字段
type SettingsUpdate struct {
	WorkDuration       *int `json:"work_duration" validate:"omitempty,min=1,max=120"`
	ShortBreakDuration *int `json:"short_break_duration" validate:"omitempty,min=1,max=120"`
	LongBreakDuration  *int `json:"long_break_duration" validate:"omitempty,min=1,max=120"`
	SetSize            *int `json:"set_size" validate:"omitempty,min=1,max=12"`
}

func (u SettingsUpdate) values() map[string]int {
	out := map[string]int{}
	put := func(k string, v *int) {
		if v != nil {
			out[k] = *v
		}
	}
	put(models.SettingWorkDuration, u.WorkDuration)
	put(models.SettingShortBreakDuration, u.ShortBreakDuration)
	put(models.SettingLongBreakDuration, u.LongBreakDuration)
	put(models.SettingSetSize, u.SetSize)
	return out
}

// SettingsService 读走缓存（60s TTL），写入后失效
type SettingsService struct {
	store    SettingStore
	cache    *ristretto.Cache[string, map[string]int]
	validate *validator.Validate

	// 每次写入加一；读库期间版本变了，读到的结果不回填缓存
	mu      sync.Mutex
	version uint64
}

func NewSettingsService(store SettingStore) (*SettingsService, error) {
	cache, err := ristretto.NewCache(&ristretto.Config[string, map[string]int]{
		NumCounters:        100,
		MaxCost:            1 << 10,
		BufferItems:        64,
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("settings cache: %w", err)
	}
	return &SettingsService{store: store, cache: cache, validate: validator.New()}, nil
}

func (s *SettingsService) All(ctx context.Context) (map[string]int, error) {
	if v, ok := s.cache.Get(settingsCacheKey); ok {
		return copyMap(v), nil
	}
	s.mu.Lock()
	ver := s.version
	s.mu.Unlock()

	v, err := s.store.All(ctx)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	if s.version == ver {
		s.cache.SetWithTTL(settingsCacheKey, v, 1, settingsTTL)
		s.cache.Wait()
	}
	s.mu.Unlock()
	return copyMap(v), nil
}

func (s *SettingsService) Update(ctx context.Context, u SettingsUpdate) (map[string]int, error) {
	if err := s.validate.Struct(u); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSettings, err)
	}
	if err := s.store.Save(ctx, u.values()); err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.version++
	s.cache.Del(settingsCacheKey)
	s.mu.Unlock()
	return s.All(ctx)
}

func (s *SettingsService) Close() { s.cache.Close() }

func copyMap(m map[string]int) map[string]int {
	out := make(map[string]int, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
