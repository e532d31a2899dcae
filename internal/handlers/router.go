package handlers

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/NCUHOME-Y/TimiFocus/internal/pkg/middleware"
	"github.com/NCUHOME-Y/TimiFocus/internal/pkg/tracing"
	"github.com/NCUHOME-Y/TimiFocus/pkg/mypubliclib/util"
)

type RouterOptions struct {
	AllowOrigins string
	RateRPS      float64
	RateBurst    int
}

// NewRouter 注册全部路由
func NewRouter(h *Handler, opt RouterOptions) *gin.Engine {
	r := gin.New()
	r.Use(
		middleware.RequestID(),
		middleware.Recovery(h.Log), // 捕获 panic 并返回 1000
		otelgin.Middleware(tracing.ServiceName),
		middleware.Metrics(),
		middleware.AccessLog(h.Log),
		util.Cors(opt.AllowOrigins),
		middleware.Visitor(), // 为游客分配/识别 ID
	)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	r.GET("/api/v1/healthz", h.Healthz)
	r.POST("/guest-login", middleware.RateLimit(opt.RateRPS, opt.RateBurst), h.GuestLogin)

	api := r.Group("/api/v1", middleware.JWTAuth(h.JWTSecret), middleware.RateLimit(opt.RateRPS, opt.RateBurst))

	// 区间
	api.POST("/intervals", h.StartInterval)
	api.GET("/intervals", h.ListIntervals)
	api.GET("/intervals/open", h.OpenInterval)
	api.GET("/intervals/:id", h.GetInterval)
	api.POST("/intervals/:id/complete", h.CompleteInterval)
	api.POST("/intervals/:id/cancel", h.CancelInterval)

	// 任务
	api.POST("/tasks", h.CreateTask)
	api.GET("/tasks/:id", h.GetTask)
	api.POST("/tasks/:id/toggle", h.ToggleTask)

	api.GET("/settings", h.GetSettings)
	api.PUT("/settings", h.UpdateSettings)

	// 统计
	api.GET("/progress/streak", h.Streak)
	api.GET("/progress/level", h.Level)
	api.GET("/progress/score", h.Score)
	api.GET("/progress/summary", h.Summary)
	api.GET("/achievements", h.Achievements)
	api.POST("/achievements/check", h.CheckAchievements)

	// 成长事件
	api.GET("/events/growth/pull", h.GrowthPull) // ?limit=50
	api.POST("/events/growth/ack", h.GrowthAck)  // body: {"last_id":123}

	return r
}
