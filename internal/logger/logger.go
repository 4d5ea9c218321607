package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
)

// 中文说明：
// 进程内唯一的日志出口。level 可热切换；format 为 text（默认，便于本地看）或 json（交给采集）。
// 每条记录都带 svc=vectora，方便和浏览器扩展侧日志区分。

const serviceName = "vectora"

const (
	FormatText = "text"
	FormatJSON = "json"
)

var (
	levelVar slog.LevelVar

	mu     sync.RWMutex
	out    io.Writer = os.Stdout
	format           = FormatText
	base   *slog.Logger
)

func init() {
	levelVar.Set(slog.LevelInfo)
	base = build(out, format)
}

func build(w io.Writer, f string) *slog.Logger {
	if w == nil {
		w = os.Stdout
	}
	opts := &slog.HandlerOptions{Level: &levelVar}
	var h slog.Handler
	if f == FormatJSON {
		h = slog.NewJSONHandler(w, opts)
	} else {
		h = slog.NewTextHandler(w, opts)
	}
	return slog.New(h).With(slog.String("svc", serviceName))
}

// ParseLevel maps a config string to a slog level. Empty means info.
func ParseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "", "info":
		return slog.LevelInfo, nil
	case "debug":
		return slog.LevelDebug, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return slog.LevelInfo, fmt.Errorf("unknown log level %q", level)
}

// ParseFormat accepts text or json; empty means text.
func ParseFormat(f string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(f)) {
	case "", FormatText:
		return FormatText, nil
	case FormatJSON:
		return FormatJSON, nil
	}
	return "", fmt.Errorf("unknown log format %q", f)
}

// SetLevel 未知级别回落到 info；配置层已经用 ParseLevel 校验过。
func SetLevel(level string) {
	lv, _ := ParseLevel(level)
	levelVar.Set(lv)
}

func SetOutput(w io.Writer) {
	mu.Lock()
	out = w
	base = build(out, format)
	mu.Unlock()
}

func SetFormat(f string) {
	parsed, err := ParseFormat(f)
	if err != nil {
		parsed = FormatText
	}
	mu.Lock()
	format = parsed
	base = build(out, format)
	mu.Unlock()
}

func current() (*slog.Logger, string) {
	mu.RLock()
	defer mu.RUnlock()
	return base, format
}

// With returns a logger carrying attrs such as trace_id or provider.
func With(args ...any) *slog.Logger {
	l, _ := current()
	return l.With(args...)
}

func Debugf(format string, v ...any) {
	l, _ := current()
	l.Debug(fmt.Sprintf(format, v...))
}

func Infof(format string, v ...any) {
	l, _ := current()
	l.Info(fmt.Sprintf(format, v...))
}

func Warnf(format string, v ...any) {
	l, _ := current()
	l.Warn(fmt.Sprintf(format, v...))
}

func Errorf(format string, v ...any) {
	l, _ := current()
	l.Error(fmt.Sprintf(format, v...))
}

// InfoBlock logs a multi-line block under title. Text output keeps one
// record per line so banners stay readable; json output emits a single
// record with the lines as an array.
func InfoBlock(title, block string) {
	block = strings.TrimSpace(block)
	if block == "" {
		return
	}
	lines := strings.Split(block, "\n")
	l, f := current()
	if f == FormatJSON {
		l.Info(title, slog.Any("lines", lines))
		return
	}
	for _, line := range lines {
		l.Info(line, slog.String("block", title))
	}
}
