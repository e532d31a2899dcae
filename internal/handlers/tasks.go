package handlers

import (
	"github.com/gin-gonic/gin"

	pkgerr "github.com/NCUHOME-Y/TimiFocus/internal/pkg/err"
)

type createTaskReq struct {
	Title string `json:"title" binding:"required,max=200"`
}

// CreateTask POST /api/v1/tasks
func (h *Handler) CreateTask(c *gin.Context) {
	var req createTaskReq
	if err := c.ShouldBindJSON(&req); err != nil {
		badParam(c)
		return
	}
	t, err := h.Tasks.Create(c.Request.Context(), req.Title)
	if err != nil {
		h.fail(c, err)
		return
	}
	pkgerr.OK(c, t)
}

func (h *Handler) GetTask(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	t, err := h.Tasks.Get(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	pkgerr.OK(c, t)
}

// toggleReq 都可省略；elapsed_minutes 由计时端给出（扣掉了暂停）
type toggleReq struct {
	ElapsedMinutes *int `json:"elapsed_minutes" binding:"omitempty,min=0"`
	ManualMinutes  *int `json:"manual_minutes" binding:"omitempty,min=0,max=120"`
}

// ToggleTask POST /api/v1/tasks/:id/toggle
func (h *Handler) ToggleTask(c *gin.Context) {
	id, ok := paramID(c)
	if !ok {
		return
	}
	var req toggleReq
	if !bindOptionalJSON(c, &req) {
		return
	}
	t, err := h.Tasks.ToggleCompletion(c.Request.Context(), id, req.ElapsedMinutes, req.ManualMinutes)
	if err != nil {
		h.fail(c, err)
		return
	}
	pkgerr.OK(c, t)
}
