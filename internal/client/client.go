// Package client 通过 HTTP 访问 TimiFocus 服务，实现引擎需要的账本、任务、设置接口
package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/NCUHOME-Y/TimiFocus/internal/analytics"
	"github.com/NCUHOME-Y/TimiFocus/internal/ledger"
	"github.com/NCUHOME-Y/TimiFocus/internal/models"
	pkgerr "github.com/NCUHOME-Y/TimiFocus/internal/pkg/err"
	"github.com/NCUHOME-Y/TimiFocus/internal/pkg/httpx"
)

// ErrUnauthorized token 缺失或过期，需要重新 guest-login
var ErrUnauthorized = errors.New("unauthorized")

const DefaultTimeout = 10 * time.Second

type Client struct {
	api *httpx.Client
}

func New(base, token string) *Client {
	return &Client{api: &httpx.Client{
		Base:  strings.TrimRight(base, "/"),
		Token: token,
		HTTP:  &http.Client{Timeout: DefaultTimeout},
	}}
}

func (c *Client) Token() string { return c.api.Token }

// mapErr 传输失败 -> ErrTransientIO，业务码 -> 对应 sentinel
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, httpx.ErrTransport) {
		return fmt.Errorf("%w: %v", ledger.ErrTransientIO, err)
	}
	var apiErr *httpx.APIError
	if !errors.As(err, &apiErr) {
		return err
	}
	switch apiErr.Code {
	case pkgerr.CodeConflict:
		return fmt.Errorf("%w: %v", ledger.ErrConflict, err)
	case pkgerr.CodeNotFound:
		return fmt.Errorf("%w: %v", ledger.ErrNotFound, err)
	case pkgerr.CodeBadParam:
		return fmt.Errorf("%w: %v", ledger.ErrInvalidInput, err)
	case pkgerr.CodeUnauthorized:
		return fmt.Errorf("%w: %v", ErrUnauthorized, err)
	case pkgerr.CodeTooManyRequests:
		return fmt.Errorf("%w: %v", ledger.ErrTransientIO, err)
	}
	if apiErr.Status >= http.StatusInternalServerError {
		return fmt.Errorf("%w: %v", ledger.ErrTransientIO, err)
	}
	return err
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	return mapErr(c.api.Do(ctx, method, path, body, out))
}

// Login 用游客身份换 token，之后的请求都带上
func (c *Client) Login(ctx context.Context) (string, error) {
	var resp struct {
		Token string `json:"token"`
	}
	if err := c.do(ctx, http.MethodPost, "/guest-login", nil, &resp); err != nil {
		return "", err
	}
	c.api.Token = resp.Token
	return resp.Token, nil
}

// StartResult 开始区间时服务端附带的激励文案
type StartResult struct {
	Interval   models.Interval `json:"interval"`
	Motivation *struct {
		Type    string `json:"type"`
		Message string `json:"message"`
	} `json:"motivation,omitempty"`
	Bedtime string `json:"bedtime,omitempty"`
}

// StartWithMotivation 和 Start 一样，但保留文案
func (c *Client) StartWithMotivation(ctx context.Context, in ledger.StartInput) (StartResult, error) {
	var res StartResult
	err := c.do(ctx, http.MethodPost, "/api/v1/intervals", in, &res)
	return res, err
}

func (c *Client) Start(ctx context.Context, in ledger.StartInput) (models.Interval, error) {
	res, err := c.StartWithMotivation(ctx, in)
	return res.Interval, err
}

func (c *Client) Open(ctx context.Context) (*models.Interval, error) {
	var iv *models.Interval
	if err := c.do(ctx, http.MethodGet, "/api/v1/intervals/open", nil, &iv); err != nil {
		return nil, err
	}
	return iv, nil
}

type CompleteResult struct {
	Interval        models.Interval      `json:"interval"`
	NewAchievements []models.Achievement `json:"new_achievements"`
}

func (c *Client) CompleteWithAchievements(ctx context.Context, id uint) (CompleteResult, error) {
	var res CompleteResult
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/v1/intervals/%d/complete", id), nil, &res)
	return res, err
}

func (c *Client) Complete(ctx context.Context, id uint) (models.Interval, error) {
	res, err := c.CompleteWithAchievements(ctx, id)
	return res.Interval, err
}

func (c *Client) Cancel(ctx context.Context, id uint) (models.Interval, error) {
	var iv models.Interval
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/v1/intervals/%d/cancel", id), nil, &iv)
	return iv, err
}

func (c *Client) History(ctx context.Context, p analytics.Period) ([]models.Interval, error) {
	var out []models.Interval
	err := c.do(ctx, http.MethodGet, "/api/v1/intervals?period="+url.QueryEscape(string(p)), nil, &out)
	return out, err
}

// 任务

func (c *Client) CreateTask(ctx context.Context, title string) (models.Task, error) {
	var t models.Task
	err := c.do(ctx, http.MethodPost, "/api/v1/tasks", map[string]string{"title": title}, &t)
	return t, err
}

func (c *Client) Title(ctx context.Context, id uint) (string, error) {
	var t models.Task
	if err := c.do(ctx, http.MethodGet, fmt.Sprintf("/api/v1/tasks/%d", id), nil, &t); err != nil {
		return "", err
	}
	return t.Title, nil
}

func (c *Client) ToggleCompletion(ctx context.Context, taskID uint, elapsedMinutes, manualMinutes *int) (models.Task, error) {
	body := map[string]*int{"elapsed_minutes": elapsedMinutes, "manual_minutes": manualMinutes}
	var t models.Task
	err := c.do(ctx, http.MethodPost, fmt.Sprintf("/api/v1/tasks/%d/toggle", taskID), body, &t)
	return t, err
}

// 设置

func (c *Client) All(ctx context.Context) (map[string]int, error) {
	out := map[string]int{}
	err := c.do(ctx, http.MethodGet, "/api/v1/settings", nil, &out)
	return out, err
}

func (c *Client) UpdateSettings(ctx context.Context, values map[string]int) (map[string]int, error) {
	out := map[string]int{}
	err := c.do(ctx, http.MethodPut, "/api/v1/settings", values, &out)
	return out, err
}

// 统计

func (c *Client) Streak(ctx context.Context) (analytics.Streak, error) {
	var s analytics.Streak
	err := c.do(ctx, http.MethodGet, "/api/v1/progress/streak", nil, &s)
	return s, err
}

func (c *Client) Level(ctx context.Context) (analytics.Level, error) {
	var l analytics.Level
	err := c.do(ctx, http.MethodGet, "/api/v1/progress/level", nil, &l)
	return l, err
}

func (c *Client) Score(ctx context.Context, p analytics.Period) (analytics.Score, error) {
	var s analytics.Score
	err := c.do(ctx, http.MethodGet, "/api/v1/progress/score?period="+url.QueryEscape(string(p)), nil, &s)
	return s, err
}

func (c *Client) Summary(ctx context.Context, p analytics.Period) (analytics.Summary, error) {
	var s analytics.Summary
	err := c.do(ctx, http.MethodGet, "/api/v1/progress/summary?period="+url.QueryEscape(string(p)), nil, &s)
	return s, err
}

func (c *Client) Achievements(ctx context.Context) ([]models.Achievement, error) {
	var out []models.Achievement
	err := c.do(ctx, http.MethodGet, "/api/v1/achievements", nil, &out)
	return out, err
}
