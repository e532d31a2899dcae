package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	pkgerr "github.com/NCUHOME-Y/TimiFocus/internal/pkg/err"
	"github.com/NCUHOME-Y/TimiFocus/internal/pkg/middleware"
	"github.com/NCUHOME-Y/TimiFocus/pkg/mypubliclib/util"
)

type GuestLoginResp struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

// GuestLogin POST /guest-login
// 用 Visitor 中间件分配的 tcid 签发 token，同一浏览器重复登录拿到同一个身份
func (h *Handler) GuestLogin(c *gin.Context) {
	vid := c.GetString(middleware.VisitorKey)
	if vid == "" {
		pkgerr.JSON(c, pkgerr.CodeUnauthorized, nil)
		return
	}
	token, err := util.GenerateToken(h.JWTSecret, vid, util.GuestTokenTTL)
	if err != nil {
		h.fail(c, err)
		return
	}
	// 取 uuid 前缀做展示用户名
	short := vid
	if i := strings.IndexByte(vid, '-'); i > 0 {
		short = vid[:i]
	}
	pkgerr.OK(c, GuestLoginResp{Token: token, Username: "guest-" + short})
}

func (h *Handler) Healthz(c *gin.Context) {
	data, err := h.Health.Check(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	pkgerr.OK(c, data)
}
