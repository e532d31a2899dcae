package err

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

type Response struct {
	Code      int    `json:"code"`
	Message   string `json:"message"`
	Data      any    `json:"data,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

const (
	CodeOK              = 0
	CodeInternal        = 1000
	CodeNotFound        = 1001
	CodeBadParam        = 1002
	CodeConflict        = 1003
	CodeUnauthorized    = 1004
	CodeTooManyRequests = 1005
)

var codeMessage = map[int]string{
	CodeOK:              "ok",
	CodeInternal:        "internal_error",
	CodeNotFound:        "not_found",
	CodeBadParam:        "bad_parameter",
	CodeConflict:        "conflict",
	CodeUnauthorized:    "unauthorized",
	CodeTooManyRequests: "too_many_requests",
}

// Message 业务码对应的固定文案
func Message(code int) string {
	if m, ok := codeMessage[code]; ok {
		return m
	}
	return codeMessage[CodeInternal]
}

// JSON 写入统一的响应格式
func JSON(c *gin.Context, code int, data any) {
	c.JSON(HTTPStatus(code), Response{
		Code:      code,
		Message:   Message(code),
		Data:      data,
		RequestID: RequestID(c.Request.Context()),
	})
}

// OK 成功响应
func OK(c *gin.Context, data any) { JSON(c, CodeOK, data) }

// Abort 中间件里用：写错误并终止后续 handler
func Abort(c *gin.Context, code int) {
	JSON(c, code, nil)
	c.Abort()
}

func HTTPStatus(code int) int {
	switch code {
	case CodeOK:
		return http.StatusOK
	case CodeBadParam:
		return http.StatusBadRequest
	case CodeNotFound:
		return http.StatusNotFound
	case CodeConflict:
		return http.StatusConflict
	case CodeUnauthorized:
		return http.StatusUnauthorized
	case CodeTooManyRequests:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// 用于请求 ID
type ctxKey string

const requestIDKey ctxKey = "request_id"

func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v := ctx.Value(requestIDKey); v != nil {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey, id)
}
