package timer

import "errors"

var (
	// ErrBusy 本地已有运行中或暂停中的计时
	ErrBusy = errors.New("timer is busy")
	// ErrInvalidTransition 当前状态不允许该操作
	ErrInvalidTransition = errors.New("invalid timer transition")
)
