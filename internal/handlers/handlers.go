// Package handlers HTTP 接口：把请求交给 service，把 sentinel 错误翻译成信封业务码
package handlers

import (
	"errors"
	"io"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/NCUHOME-Y/TimiFocus/internal/app/repository"
	"github.com/NCUHOME-Y/TimiFocus/internal/app/service"
	"github.com/NCUHOME-Y/TimiFocus/internal/ledger"
	pkgerr "github.com/NCUHOME-Y/TimiFocus/internal/pkg/err"
	"github.com/NCUHOME-Y/TimiFocus/internal/pkg/logger"
)

type Handler struct {
	Sessions  *service.SessionService
	Progress  *service.ProgressService
	Settings  *service.SettingsService
	Tasks     *repository.TaskRepository
	Health    *service.HealthService
	JWTSecret string
	Log       *logger.Logger
}

// codeFor 错误 -> 业务码
func codeFor(err error) int {
	switch {
	case errors.Is(err, ledger.ErrConflict):
		return pkgerr.CodeConflict
	case errors.Is(err, ledger.ErrNotFound), errors.Is(err, repository.ErrTaskNotFound):
		return pkgerr.CodeNotFound
	case errors.Is(err, ledger.ErrInvalidInput), errors.Is(err, service.ErrInvalidSettings):
		return pkgerr.CodeBadParam
	}
	return pkgerr.CodeInternal
}

func (h *Handler) fail(c *gin.Context, err error) {
	code := codeFor(err)
	if code == pkgerr.CodeInternal {
		h.Log.Error("request failed",
			"path", c.FullPath(),
			"request_id", pkgerr.RequestID(c.Request.Context()),
			"err", err)
	}
	pkgerr.JSON(c, code, nil)
}

func badParam(c *gin.Context) { pkgerr.JSON(c, pkgerr.CodeBadParam, nil) }

func paramID(c *gin.Context) (uint, bool) {
	n, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || n == 0 {
		badParam(c)
		return 0, false
	}
	return uint(n), true
}

// bindOptionalJSON 请求体可以为空
func bindOptionalJSON(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil && !errors.Is(err, io.EOF) {
		badParam(c)
		return false
	}
	return true
}
