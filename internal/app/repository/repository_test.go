package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NCUHOME-Y/TimiFocus/internal/ledger"
	"github.com/NCUHOME-Y/TimiFocus/internal/models"
	"github.com/NCUHOME-Y/TimiFocus/internal/testutil"
)

var t0 = time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)

type clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

func setup(t *testing.T) (*TaskRepository, *ledger.Ledger, *clock) {
	db := testutil.NewDB(t)
	clk := &clock{t: t0}
	l := ledger.New(db).WithClock(clk.Now)
	return NewTaskRepository(db, l).WithClock(clk.Now), l, clk
}

func TestToggle_CompletesOpenIntervalWithClientElapsed(t *testing.T) {
	repo, l, clk := setup(t)
	ctx := context.Background()

	task, err := repo.Create(ctx, "essay")
	require.NoError(t, err)
	iv, err := l.Start(ctx, ledger.StartInput{Kind: models.KindWork, SubjectID: &task.ID, DurationMinutes: 25})
	require.NoError(t, err)
	clk.Advance(20 * time.Minute)

	elapsed := 12
	got, err := repo.ToggleCompletion(ctx, task.ID, &elapsed, nil)
	require.NoError(t, err)
	assert.True(t, got.IsCompleted)
	require.NotNil(t, got.CompletedAt)
	assert.Equal(t, 12, got.LoggedMinutes)

	closed, err := l.Get(ctx, iv.ID)
	require.NoError(t, err)
	assert.True(t, closed.Completed())
	assert.Equal(t, 25, closed.DurationMinutes, "planned duration stays untouched")

	stored, err := repo.Get(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, 12, stored.LoggedMinutes)
}

func TestToggle_ElapsedClampedToPlanned(t *testing.T) {
	repo, l, clk := setup(t)
	ctx := context.Background()

	task, err := repo.Create(ctx, "slides")
	require.NoError(t, err)
	_, err = l.Start(ctx, ledger.StartInput{Kind: models.KindWork, SubjectID: &task.ID, DurationMinutes: 25})
	require.NoError(t, err)
	clk.Advance(3 * time.Hour)

	got, err := repo.ToggleCompletion(ctx, task.ID, nil, nil)
	require.NoError(t, err)
	assert.Equal(t, 25, got.LoggedMinutes)
}

func TestToggle_ManualMinutes(t *testing.T) {
	repo, l, _ := setup(t)
	ctx := context.Background()

	task, err := repo.Create(ctx, "reading")
	require.NoError(t, err)
	manual := 40
	got, err := repo.ToggleCompletion(ctx, task.ID, nil, &manual)
	require.NoError(t, err)
	assert.Equal(t, 40, got.LoggedMinutes)

	all, err := l.List(ctx, time.Time{})
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, models.KindCustomWork, all[0].Kind)
	require.NotNil(t, all[0].SubjectID)
	assert.Equal(t, task.ID, *all[0].SubjectID)
}

func TestToggle_FailureRollsBackEverything(t *testing.T) {
	repo, l, clk := setup(t)
	ctx := context.Background()

	task, err := repo.Create(ctx, "thesis")
	require.NoError(t, err)
	iv, err := l.Start(ctx, ledger.StartInput{Kind: models.KindWork, SubjectID: &task.ID, DurationMinutes: 25})
	require.NoError(t, err)
	clk.Advance(10 * time.Minute)

	// 补录时长超出上限，在关闭区间之后才失败
	tooLong := 500
	_, err = repo.ToggleCompletion(ctx, task.ID, nil, &tooLong)
	require.ErrorIs(t, err, ledger.ErrInvalidInput)

	stored, err := repo.Get(ctx, task.ID)
	require.NoError(t, err)
	assert.False(t, stored.IsCompleted)
	assert.Nil(t, stored.CompletedAt)
	assert.Zero(t, stored.LoggedMinutes)

	open, err := l.Open(ctx)
	require.NoError(t, err)
	require.NotNil(t, open)
	assert.Equal(t, iv.ID, open.ID)

	events, err := l.PullGrowth(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, events)

	// 重试不会把任务翻回未完成
	got, err := repo.ToggleCompletion(ctx, task.ID, nil, nil)
	require.NoError(t, err)
	assert.True(t, got.IsCompleted)
	assert.Equal(t, 10, got.LoggedMinutes)
}

func TestToggle_Uncomplete(t *testing.T) {
	repo, _, _ := setup(t)
	ctx := context.Background()

	task, err := repo.Create(ctx, "laundry")
	require.NoError(t, err)
	_, err = repo.ToggleCompletion(ctx, task.ID, nil, nil)
	require.NoError(t, err)
	got, err := repo.ToggleCompletion(ctx, task.ID, nil, nil)
	require.NoError(t, err)
	assert.False(t, got.IsCompleted)
	assert.Nil(t, got.CompletedAt)

	_, err = repo.ToggleCompletion(ctx, 404, nil, nil)
	assert.ErrorIs(t, err, ErrTaskNotFound)
	_, err = repo.Title(ctx, 404)
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestClampElapsed(t *testing.T) {
	two, zero := 2, 0
	assert.Equal(t, 2, clampElapsed(&two, t0, t0, 25))
	assert.Equal(t, 1, clampElapsed(&zero, t0, t0, 25))
	assert.Equal(t, 7, clampElapsed(nil, t0, t0.Add(7*time.Minute+10*time.Second), 25))
	assert.Equal(t, 5, clampElapsed(nil, t0, t0.Add(time.Hour), 5))
}

func TestSettings_DefaultsAndSave(t *testing.T) {
	repo := NewSettingRepository(testutil.NewDB(t))
	ctx := context.Background()

	all, err := repo.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, models.DefaultSettings, all)

	require.NoError(t, repo.Save(ctx, map[string]int{models.SettingWorkDuration: 50, models.SettingSetSize: 3}))
	all, err = repo.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, 50, all[models.SettingWorkDuration])
	assert.Equal(t, 3, all[models.SettingSetSize])
	assert.Equal(t, 5, all[models.SettingShortBreakDuration])
}

func TestAchievements_UnlockOnce(t *testing.T) {
	repo := NewAchievementRepository(testutil.NewDB(t))
	ctx := context.Background()

	defs, err := repo.All(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, defs)

	ok, err := repo.Unlock(ctx, "first_focus", t0)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.Unlock(ctx, "first_focus", t0.Add(time.Hour))
	require.NoError(t, err)
	assert.False(t, ok)

	defs, err = repo.All(ctx)
	require.NoError(t, err)
	for _, d := range defs {
		if d.Key == "first_focus" {
			require.NotNil(t, d.UnlockedAt)
			assert.True(t, d.UnlockedAt.Equal(t0))
		} else {
			assert.Nil(t, d.UnlockedAt, d.Key)
		}
	}
}
