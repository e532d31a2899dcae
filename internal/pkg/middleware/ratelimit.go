package middleware

import (
	"sync"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	pkgerr "github.com/NCUHOME-Y/TimiFocus/internal/pkg/err"
)

// RateLimit 每个访客（没有则按 IP）一个令牌桶
func RateLimit(rps float64, burst int) gin.HandlerFunc {
	if rps <= 0 {
		rps = 5
	}
	if burst <= 0 {
		burst = 10
	}
	var mu sync.Mutex
	limiters := map[string]*rate.Limiter{}

	get := func(k string) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()
		if l, ok := limiters[k]; ok {
			return l
		}
		l := rate.NewLimiter(rate.Limit(rps), burst)
		limiters[k] = l
		return l
	}

	return func(c *gin.Context) {
		k := c.GetString(VisitorKey)
		if k == "" {
			k = c.ClientIP()
		}
		if !get(k).Allow() {
			c.Header("Retry-After", "1")
			pkgerr.Abort(c, pkgerr.CodeTooManyRequests)
			return
		}
		c.Next()
	}
}
