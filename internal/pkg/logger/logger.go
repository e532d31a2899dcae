package logger

import (
	"io"
	"log/slog"
	"os"
)

// 一个很薄的日志包装，底层是 slog；prod 输出 JSON，其它环境输出文本
type Logger struct {
	s *slog.Logger
}

// Init 按环境创建日志器，写到 stdout
func Init(env string) *Logger {
	return New(os.Stdout, env)
}

func New(w io.Writer, env string) *Logger {
	var h slog.Handler
	if env == "prod" {
		h = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo})
	} else {
		h = slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	return &Logger{s: slog.New(h)}
}

// Discard 测试用，丢弃全部输出
func Discard() *Logger {
	return &Logger{s: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

// With 附带固定字段
func (l *Logger) With(kvs ...any) *Logger {
	return &Logger{s: l.s.With(kvs...)}
}

func (l *Logger) Slog() *slog.Logger { return l.s }

func (l *Logger) Info(msg string, kvs ...any) {
	l.s.Info(msg, kvs...)
}

func (l *Logger) Debug(msg string, kvs ...any) {
	l.s.Debug(msg, kvs...)
}

func (l *Logger) Warn(msg string, kvs ...any) {
	l.s.Warn(msg, kvs...)
}

func (l *Logger) Error(msg string, kvs ...any) {
	l.s.Error(msg, kvs...)
}

func (l *Logger) Fatal(msg string, kvs ...any) {
	l.s.Error(msg, kvs...)
	os.Exit(1)
}

func (l *Logger) Sync() error { return nil }
