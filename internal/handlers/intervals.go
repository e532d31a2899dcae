package handlers

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/NCUHOME-Y/TimiFocus/internal/analytics"
	"github.com/NCUHOME-Y/TimiFocus/internal/ledger"
	pkgerr "github.com/NCUHOME-Y/TimiFocus/internal/pkg/err"
)

// StartInterval POST /api/v1/intervals
// body: {"kind":"work","subject_id":1,"duration_minutes":25}
func (h *Handler) StartInterval(c *gin.Context) {
	var req ledger.StartInput
	if err := c.ShouldBindJSON(&req); err != nil {
		badParam(c)
		return
	}
	res, err := h.Sessions.Start(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	pkgerr.OK(c, res)
}

// OpenInterval GET /api/v1/intervals/open，没有时 data 为空
func (h *Handler) OpenInterval(c *gin.Context) {
	iv, err := h.Sessions.Open(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	if iv == nil {
		pkgerr.OK(c, nil)
		return
	}
	pkgerr.OK(c, iv)
}

// ListIntervals GET /api/v1/intervals?period=7days
func (h *Handler) ListIntervals(c *gin.Context) {
	p, ok := analytics.ParsePeriod(c.Query("period"))
	if !ok {
		badParam(c)
		return
	}
	ivs, err := h.Sessions.History(c.Request.Context(), p, time.Now())
	if err != nil {
		h.fail(c, err)
		return
	}
	pkgerr.OK(c, ivs)
}

func (h *Handler) GetInterval(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	iv, err := h.Sessions.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	pkgerr.OK(c, iv)
}

// CompleteInterval POST /api/v1/intervals/:id/complete，重复调用返回同样的区间
func (h *Handler) CompleteInterval(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	res, err := h.Sessions.Complete(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	pkgerr.OK(c, res)
}

func (h *Handler) CancelInterval(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	iv, err := h.Sessions.Cancel(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	pkgerr.OK(c, iv)
}

// GrowthPull GET /api/v1/events/growth/pull?limit=50（默认 50，上限 200）
func (h *Handler) GrowthPull(c *gin.Context) {
	limit := 0
	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			badParam(c)
			return
		}
		limit = n
	}
	evs, err := h.Sessions.PullGrowth(c.Request.Context(), limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	pkgerr.OK(c, evs)
}

type ackReq struct {
	LastID uint `json:"last_id" binding:"required"`
}

// GrowthAck POST /api/v1/events/growth/ack，body: {"last_id":123}
func (h *Handler) GrowthAck(c *gin.Context) {
	var req ackReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badParam(c)
		return
	}
	if err := h.Sessions.AckGrowth(c.Request.Context(), req.LastID); err != nil {
		h.fail(c, err)
		return
	}
	pkgerr.OK(c, gin.H{"last_id": req.LastID})
}
