package ledger

import "errors"

var (
	// ErrConflict 已有未结束区间时再次 start；调用方需要提示用户，不能排队或自动取消
	ErrConflict = errors.New("an interval is already open")
	// ErrNotFound 操作未知区间
	ErrNotFound = errors.New("interval not found")
	// ErrTransientIO 网络等临时故障，调用方应稍后重试
	ErrTransientIO = errors.New("transient io failure")
	// ErrInvalidInput 类型或时长不合法
	ErrInvalidInput = errors.New("invalid interval input")
)
