package middleware

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	VisitorCookie = "tcid"
	VisitorKey    = "visitor_id"
)

// Visitor 没有 tcid cookie 时签发一个，有效期一年
func Visitor() gin.HandlerFunc {
	return func(c *gin.Context) {
		vid, err := c.Cookie(VisitorCookie)
		if err != nil || vid == "" {
			vid = uuid.NewString()
			// 开发环境：HttpOnly，Secure=false；上线走 HTTPS 后改为 true
			c.SetCookie(VisitorCookie, vid, 3600*24*365, "/", "", false, true)
		}
		c.Set(VisitorKey, vid)
		c.Next()
	}
}
