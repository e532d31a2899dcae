package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/NCUHOME-Y/TimiFocus/internal/app/service"
	pkgerr "github.com/NCUHOME-Y/TimiFocus/internal/pkg/err"
)

func (h *Handler) GetSettings(c *gin.Context) {
	v, err := h.Settings.All(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	pkgerr.OK(c, v)
}

// UpdateSettings PUT /api/v1/settings，只改传入的字段
func (h *Handler) UpdateSettings(c *gin.Context) {
	var req service.SettingsUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		badParam(c)
		return
	}
	v, err := h.Settings.Update(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	pkgerr.OK(c, v)
}
