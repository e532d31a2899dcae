package middleware

import (
	"github.com/gin-gonic/gin"

	pkgerr "github.com/NCUHOME-Y/TimiFocus/internal/pkg/err"
	"github.com/NCUHOME-Y/TimiFocus/pkg/mypubliclib/util"
)

// JWTAuth JWT鉴权；通过后 visitor_id 以 token 中的为准
func JWTAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenStr := util.ExactToken(c.GetHeader("Authorization"))
		if tokenStr == "" {
			pkgerr.Abort(c, pkgerr.CodeUnauthorized)
			return
		}
		claims, err := util.ParseToken(secret, tokenStr)
		if err != nil {
			pkgerr.Abort(c, pkgerr.CodeUnauthorized)
			return
		}
		c.Set(VisitorKey, claims.VisitorID)
		c.Next()
	}
}
