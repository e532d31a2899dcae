package service

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NCUHOME-Y/TimiFocus/internal/models"
)

type memSettings struct {
	mu     sync.Mutex
	values map[string]int
	reads  int
	err    error

	// hold 非空时，下一次读取先拿到快照，再等 hold 关闭才返回
	hold    chan struct{}
	reading chan struct{}
}

func newMemSettings() *memSettings {
	return &memSettings{values: copyMap(models.DefaultSettings)}
}

func (m *memSettings) All(context.Context) (map[string]int, error) {
	m.mu.Lock()
	m.reads++
	if m.err != nil {
		m.mu.Unlock()
		return nil, m.err
	}
	snap := copyMap(m.values)
	hold, reading := m.hold, m.reading
	m.hold = nil
	m.mu.Unlock()

	if hold != nil {
		close(reading)
		<-hold
	}
	return snap, nil
}

func (m *memSettings) Save(_ context.Context, v map[string]int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for k, x := range v {
		m.values[k] = x
	}
	return nil
}

func ptr(v int) *int { return &v }

func TestSettings_CachedRead(t *testing.T) {
	store := newMemSettings()
	svc, err := NewSettingsService(store)
	require.NoError(t, err)
	t.Cleanup(svc.Close)
	ctx := context.Background()

	first, err := svc.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, 25, first[models.SettingWorkDuration])

	// 返回的是副本
	first[models.SettingWorkDuration] = 99
	second, err := svc.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, 25, second[models.SettingWorkDuration])
	assert.Equal(t, 1, store.reads)
}

func TestSettings_UpdateInvalidates(t *testing.T) {
	store := newMemSettings()
	svc, err := NewSettingsService(store)
	require.NoError(t, err)
	t.Cleanup(svc.Close)
	ctx := context.Background()

	_, err = svc.All(ctx)
	require.NoError(t, err)

	got, err := svc.Update(ctx, SettingsUpdate{WorkDuration: ptr(50), SetSize: ptr(3)})
	require.NoError(t, err)
	assert.Equal(t, 50, got[models.SettingWorkDuration])
	assert.Equal(t, 3, got[models.SettingSetSize])
	assert.Equal(t, 5, got[models.SettingShortBreakDuration])
}

func TestSettings_UpdateValidation(t *testing.T) {
	store := newMemSettings()
	svc, err := NewSettingsService(store)
	require.NoError(t, err)
	t.Cleanup(svc.Close)

	for _, u := range []SettingsUpdate{
		{WorkDuration: ptr(0)},
		{LongBreakDuration: ptr(121)},
		{SetSize: ptr(13)},
	} {
		_, err := svc.Update(context.Background(), u)
		assert.ErrorIs(t, err, ErrInvalidSettings)
	}
	assert.Equal(t, 25, store.values[models.SettingWorkDuration])
}

func TestSettings_StoreError(t *testing.T) {
	store := newMemSettings()
	store.err = errors.New("db down")
	svc, err := NewSettingsService(store)
	require.NoError(t, err)
	t.Cleanup(svc.Close)

	_, err = svc.All(context.Background())
	assert.Error(t, err)
}

func TestSettings_SlowReadDoesNotRefillStale(t *testing.T) {
	store := newMemSettings()
	store.hold = make(chan struct{})
	store.reading = make(chan struct{})
	hold, reading := store.hold, store.reading
	svc, err := NewSettingsService(store)
	require.NoError(t, err)
	t.Cleanup(svc.Close)
	ctx := context.Background()

	stale := make(chan map[string]int, 1)
	go func() {
		v, _ := svc.All(ctx)
		stale <- v
	}()
	<-reading

	updated, err := svc.Update(ctx, SettingsUpdate{WorkDuration: ptr(45)})
	require.NoError(t, err)
	assert.Equal(t, 45, updated[models.SettingWorkDuration])

	close(hold)
	assert.Equal(t, 25, (<-stale)[models.SettingWorkDuration])

	got, err := svc.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, 45, got[models.SettingWorkDuration])
}
