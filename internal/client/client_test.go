package client

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/NCUHOME-Y/TimiFocus/internal/analytics"
	"github.com/NCUHOME-Y/TimiFocus/internal/app/repository"
	"github.com/NCUHOME-Y/TimiFocus/internal/app/service"
	"github.com/NCUHOME-Y/TimiFocus/internal/engine"
	"github.com/NCUHOME-Y/TimiFocus/internal/handlers"
	"github.com/NCUHOME-Y/TimiFocus/internal/ledger"
	"github.com/NCUHOME-Y/TimiFocus/internal/models"
	pkgerr "github.com/NCUHOME-Y/TimiFocus/internal/pkg/err"
	"github.com/NCUHOME-Y/TimiFocus/internal/pkg/logger"
	"github.com/NCUHOME-Y/TimiFocus/internal/testutil"
	"github.com/NCUHOME-Y/TimiFocus/internal/timer"
)

// 编译期检查：客户端可以直接交给引擎
var (
	_ engine.Ledger    = (*Client)(nil)
	_ engine.TaskStore = (*Client)(nil)
	_ engine.Settings  = (*Client)(nil)
)

func newServer(t *testing.T) *httptest.Server {
	gin.SetMode(gin.TestMode)
	db := testutil.NewDB(t)
	l := ledger.New(db)
	tasks := repository.NewTaskRepository(db, l)
	settings, err := service.NewSettingsService(repository.NewSettingRepository(db))
	require.NoError(t, err)
	t.Cleanup(settings.Close)
	progress := service.NewProgressService(l, tasks, repository.NewAchievementRepository(db), time.UTC, nil)
	h := &handlers.Handler{
		Sessions:  service.NewSessionService(l, progress, time.UTC, nil),
		Progress:  progress,
		Settings:  settings,
		Tasks:     tasks,
		Health:    service.NewHealthService(db),
		JWTSecret: "k",
		Log:       logger.Discard(),
	}
	srv := httptest.NewServer(handlers.NewRouter(h, handlers.RouterOptions{RateRPS: 1000, RateBurst: 1000}))
	t.Cleanup(srv.Close)
	return srv
}

func loggedIn(t *testing.T, base string) *Client {
	c := New(base, "")
	tok, err := c.Login(context.Background())
	require.NoError(t, err)
	require.NotEmpty(t, tok)
	return c
}

func TestMapErr(t *testing.T) {
	cases := []struct {
		status, code int
		want         error
	}{
		{http.StatusConflict, pkgerr.CodeConflict, ledger.ErrConflict},
		{http.StatusNotFound, pkgerr.CodeNotFound, ledger.ErrNotFound},
		{http.StatusBadRequest, pkgerr.CodeBadParam, ledger.ErrInvalidInput},
		{http.StatusUnauthorized, pkgerr.CodeUnauthorized, ErrUnauthorized},
		{http.StatusTooManyRequests, pkgerr.CodeTooManyRequests, ledger.ErrTransientIO},
		{http.StatusInternalServerError, pkgerr.CodeInternal, ledger.ErrTransientIO},
	}
	for _, c := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(c.status)
			_ = json.NewEncoder(w).Encode(pkgerr.Response{Code: c.code, Message: pkgerr.Message(c.code)})
		}))
		_, err := New(srv.URL, "t").Complete(context.Background(), 1)
		assert.ErrorIs(t, err, c.want, "code %d", c.code)
		srv.Close()
	}
}

func TestTransportFailureIsTransient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	base := srv.URL
	srv.Close()

	_, err := New(base, "t").Cancel(context.Background(), 1)
	assert.ErrorIs(t, err, ledger.ErrTransientIO)
	assert.False(t, errors.Is(err, ledger.ErrNotFound))
}

func TestUnauthorizedWithoutLogin(t *testing.T) {
	srv := newServer(t)
	_, err := New(srv.URL, "").Open(context.Background())
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestRoundTrip(t *testing.T) {
	srv := newServer(t)
	c := loggedIn(t, srv.URL)
	ctx := context.Background()

	open, err := c.Open(ctx)
	require.NoError(t, err)
	assert.Nil(t, open)

	task, err := c.CreateTask(ctx, "draft slides")
	require.NoError(t, err)
	title, err := c.Title(ctx, task.ID)
	require.NoError(t, err)
	assert.Equal(t, "draft slides", title)

	res, err := c.StartWithMotivation(ctx, ledger.StartInput{Kind: models.KindWork, SubjectID: &task.ID, DurationMinutes: 25})
	require.NoError(t, err)
	_, err = c.Start(ctx, ledger.StartInput{Kind: models.KindWork, DurationMinutes: 25})
	assert.ErrorIs(t, err, ledger.ErrConflict)

	open, err = c.Open(ctx)
	require.NoError(t, err)
	require.NotNil(t, open)
	assert.Equal(t, res.Interval.ID, open.ID)

	done, err := c.CompleteWithAchievements(ctx, res.Interval.ID)
	require.NoError(t, err)
	assert.True(t, done.Interval.Completed())

	settings, err := c.UpdateSettings(ctx, map[string]int{models.SettingSetSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 2, settings[models.SettingSetSize])
	all, err := c.All(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, all[models.SettingSetSize])

	streak, err := c.Streak(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, streak.Current)
	level, err := c.Level(ctx)
	require.NoError(t, err)
	assert.Equal(t, 25, level.TotalMinutes)
	sum, err := c.Summary(ctx, analytics.PeriodToday)
	require.NoError(t, err)
	assert.Equal(t, 1, sum.FocusCount)
	_, err = c.Score(ctx, analytics.Period7Days)
	require.NoError(t, err)
	hist, err := c.History(ctx, analytics.PeriodAll)
	require.NoError(t, err)
	assert.Len(t, hist, 1)
	achs, err := c.Achievements(ctx)
	require.NoError(t, err)
	assert.NotEmpty(t, achs)

	toggled, err := c.ToggleCompletion(ctx, task.ID, nil, nil)
	require.NoError(t, err)
	assert.True(t, toggled.IsCompleted)
}

// 引擎跑在客户端上：重启后能接回服务端的未结束区间
func TestEngineOverClient_RestoreAndCancel(t *testing.T) {
	srv := newServer(t)
	c := loggedIn(t, srv.URL)
	ctx := context.Background()

	first := engine.New(c, c, c)
	snap, err := first.Start(ctx, engine.StartRequest{Kind: models.KindWork})
	require.NoError(t, err)
	assert.Equal(t, timer.StateRunning, snap.State)
	assert.Equal(t, 25*time.Minute, snap.Total)
	first.Close()

	second := engine.New(New(srv.URL, c.Token()), c, c)
	t.Cleanup(second.Close)
	restored, err := second.Attach(ctx)
	require.NoError(t, err)
	assert.Equal(t, timer.StateRunning, restored.State)
	assert.Equal(t, snap.IntervalID, restored.IntervalID)

	require.NoError(t, second.Cancel(ctx))
	require.Eventually(t, func() bool {
		open, err := c.Open(ctx)
		return err == nil && open == nil
	}, 5*time.Second, 20*time.Millisecond)
}
