package logger

import (
	"log"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Log 全局日志实例
var Log *zap.Logger

// Init 初始化全局日志
// mode 为 "release" 时使用 JSON 生产配置，否则使用开发配置
func Init(mode string) {
	var (
		l   *zap.Logger
		err error
	)

	if mode == "release" {
		cfg := zap.NewProductionConfig()
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
		l, err = cfg.Build()
	} else {
		l, err = zap.NewDevelopment()
	}
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}

	Log = l
}

// Sync 刷新缓冲的日志条目，应在进程退出前调用
func Sync() {
	if Log != nil {
		_ = Log.Sync()
	}
}

// L 返回全局日志实例，未初始化时返回 no-op 实例，避免空指针
func L() *zap.Logger {
	if Log == nil {
		return zap.NewNop()
	}
	return Log
}
