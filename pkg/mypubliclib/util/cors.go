package util

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// DefaultAllowOrigins 常见本地开发地址（localhost/127.0.0.1 的 3000 与 5173 端口）
const DefaultAllowOrigins = "http://localhost:3000,http://127.0.0.1:3000,http://localhost:5173,http://127.0.0.1:5173"

// Cors CORS 中间件：只有在允许列表内的来源才会获得 CORS 头
func Cors(allow string) gin.HandlerFunc {
	if allow == "" {
		allow = DefaultAllowOrigins
	}
	allowed := map[string]struct{}{}
	for _, a := range SplitCSV(allow) {
		allowed[a] = struct{}{}
	}
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if _, ok := allowed[origin]; ok {
			c.Header("Access-Control-Allow-Origin", origin)
			c.Header("Vary", "Origin")
			c.Header("Access-Control-Allow-Credentials", "true")
			c.Header("Access-Control-Allow-Headers", "Content-Type, Authorization")
			c.Header("Access-Control-Allow-Methods", "GET, POST, PUT, OPTIONS")
		}
		// 对 OPTIONS 预检请求直接返回 204 No Content（浏览器跨域需要）
		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}

// SplitCSV "a, b,,c" -> [a b c]
func SplitCSV(s string) []string {
	out := []string{}
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
