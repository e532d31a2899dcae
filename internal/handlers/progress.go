package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/NCUHOME-Y/TimiFocus/internal/analytics"
	pkgerr "github.com/NCUHOME-Y/TimiFocus/internal/pkg/err"
)

func (h *Handler) Streak(c *gin.Context) {
	s, err := h.Progress.Streak(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	pkgerr.OK(c, s)
}

func (h *Handler) Level(c *gin.Context) {
	l, err := h.Progress.Level(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	pkgerr.OK(c, l)
}

// Score GET /api/v1/progress/score?period=today|7days|30days|all
func (h *Handler) Score(c *gin.Context) {
	p, ok := analytics.ParsePeriod(c.Query("period"))
	if !ok {
		badParam(c)
		return
	}
	s, err := h.Progress.Score(c.Request.Context(), p)
	if err != nil {
		h.fail(c, err)
		return
	}
	pkgerr.OK(c, s)
}

func (h *Handler) Summary(c *gin.Context) {
	p, ok := analytics.ParsePeriod(c.Query("period"))
	if !ok {
		badParam(c)
		return
	}
	s, err := h.Progress.Summary(c.Request.Context(), p)
	if err != nil {
		h.fail(c, err)
		return
	}
	pkgerr.OK(c, s)
}

func (h *Handler) Achievements(c *gin.Context) {
	all, err := h.Progress.Achievements(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	pkgerr.OK(c, all)
}

// CheckAchievements POST /api/v1/achievements/check，只返回本次新解锁的
func (h *Handler) CheckAchievements(c *gin.Context) {
	got, err := h.Progress.CheckAchievements(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	pkgerr.OK(c, got)
}
