package util

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// GuestTokenTTL 游客 token 有效期
const GuestTokenTTL = 7 * 24 * time.Hour

type Claims struct {
	VisitorID string `json:"vid"`
	Role      string `json:"role"`
	jwt.RegisteredClaims
}

// GenerateToken 生成Token（HS256，对称加密）
func GenerateToken(secret, visitorID string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &Claims{
		VisitorID: visitorID,
		Role:      "guest",
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)), // Token过期时间
			IssuedAt:  jwt.NewNumericDate(now),          // Token签发时间
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ParseToken 验证 Token 的签名并提取自定义声明
func ParseToken(secret, tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(token *jwt.Token) (any, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.VisitorID == "" {
		return nil, errors.New("无效的token")
	}
	return claims, nil
}

// ExactToken 从请求头中提取token字符串
func ExactToken(authHeader string) string {
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) == 2 && parts[0] == "Bearer" {
		return strings.TrimSpace(parts[1])
	}
	return ""
}
