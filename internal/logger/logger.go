package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger 结构化日志接口，附加字段以键值对方式传入
type Logger interface {
	Debug(msg string, kv ...any)
	Info(msg string, kv ...any)
	Warn(msg string, kv ...any)
	Error(msg string, kv ...any)
	Err(err error, msg string, kv ...any)
}

// Options 日志输出配置
type Options struct {
	Level   string   // debug/info/warn/error
	Writers []string // console、file 的任意组合
	File    string   // file writer 的输出路径
}

type zeroLogger struct {
	l zerolog.Logger
}

// New 根据配置创建 zerolog 实现
func New(opts Options) Logger {
	level, err := zerolog.ParseLevel(opts.Level)
	if err != nil || opts.Level == "" {
		level = zerolog.InfoLevel
	}

	var writers []io.Writer
	for _, w := range opts.Writers {
		switch w {
		case "console":
			writers = append(writers, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
		case "file":
			file := opts.File
			if file == "" {
				file = "tmp/urlsnap.log"
			}
			writers = append(writers, &lumberjack.Logger{
				Filename:   file,
				MaxSize:    50,
				MaxBackups: 5,
				MaxAge:     30,
				Compress:   true,
			})
		}
	}
	if len(writers) == 0 {
		writers = append(writers, zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	zl := zerolog.New(zerolog.MultiLevelWriter(writers...)).Level(level).With().Timestamp().Logger()
	return &zeroLogger{l: zl}
}

func (z *zeroLogger) Debug(msg string, kv ...any) { emit(z.l.Debug(), msg, kv) }
func (z *zeroLogger) Info(msg string, kv ...any)  { emit(z.l.Info(), msg, kv) }
func (z *zeroLogger) Warn(msg string, kv ...any)  { emit(z.l.Warn(), msg, kv) }
func (z *zeroLogger) Error(msg string, kv ...any) { emit(z.l.Error(), msg, kv) }

func (z *zeroLogger) Err(err error, msg string, kv ...any) {
	emit(z.l.Error().Err(err), msg, kv)
}

func emit(ev *zerolog.Event, msg string, kv []any) {
	for i := 0; i+1 < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			continue
		}
		ev = ev.Interface(key, kv[i+1])
	}
	ev.Msg(msg)
}

type nopLogger struct{}

// NewNop 创建丢弃所有输出的 Logger，供测试与缺省注入使用
func NewNop() Logger { return nopLogger{} }

func (nopLogger) Debug(string, ...any)      {}
func (nopLogger) Info(string, ...any)       {}
func (nopLogger) Warn(string, ...any)       {}
func (nopLogger) Error(string, ...any)      {}
func (nopLogger) Err(error, string, ...any) {}
