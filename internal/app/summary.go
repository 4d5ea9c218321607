package app

import (
	"fmt"
	"strings"

	vcfg "vectora/internal/config"
	"vectora/internal/gateway/provider"
	"vectora/internal/logger"
	"vectora/internal/types"
)

type StartupSummary struct {
	HTTPAddr     string
	SettingsPath string
	Watch        bool
	Provider     types.Provider
	Model        string
	KeySet       bool
	Capabilities []string
	HistoryPath  string
	HistoryLimit int
	CallLogPath  string
	Telegram     bool
	Browser      bool
}

func newStartupSummary(cfg *vcfg.Config, s types.Settings) *StartupSummary {
	p, key, model := s.Active()
	sum := &StartupSummary{
		HTTPAddr:     cfg.App.HTTPAddr,
		SettingsPath: cfg.Settings.Path,
		Watch:        cfg.Settings.Watch,
		Provider:     p,
		Model:        model,
		KeySet:       key != "",
		Capabilities: provider.ResolveCapabilities(p, model).List(),
		HistoryPath:  cfg.Store.HistoryPath,
		HistoryLimit: cfg.Store.HistoryLimit,
		Telegram:     cfg.Notify.Telegram.Enabled,
		Browser:      cfg.Capture.BrowserEnabled,
	}
	if cfg.Store.CallLogEnabled {
		sum.CallLogPath = cfg.Store.CallLogPath
	}
	return sum
}

func (s *StartupSummary) Print() {
	logger.InfoBlock("startup summary", s.String())
}

func (s *StartupSummary) String() string {
	var b strings.Builder
	line := strings.Repeat("=", 60)
	fmt.Fprintln(&b, line)
	fmt.Fprintln(&b, "启动配置摘要 (STARTUP SUMMARY)")
	fmt.Fprintln(&b, line)
	fmt.Fprintf(&b, "  HTTP:        %s\n", s.HTTPAddr)
	fmt.Fprintf(&b, "  设置文件:    %s (watch=%t)\n", s.SettingsPath, s.Watch)
	fmt.Fprintf(&b, "  Provider:    %s\n", s.Provider)
	fmt.Fprintf(&b, "  Model:       %s\n", orDash(s.Model))
	fmt.Fprintf(&b, "  API Key:     %s\n", yesNo(s.KeySet))
	fmt.Fprintf(&b, "  能力:        %s\n", strings.Join(s.Capabilities, ", "))
	fmt.Fprintf(&b, "  历史记录:    %s (上限 %d)\n", s.HistoryPath, s.HistoryLimit)
	fmt.Fprintf(&b, "  调用日志:    %s\n", orDash(s.CallLogPath))
	fmt.Fprintf(&b, "  Telegram:    %s\n", yesNo(s.Telegram))
	fmt.Fprintf(&b, "  浏览器截图:  %s\n", yesNo(s.Browser))
	fmt.Fprintln(&b, line)
	return b.String()
}

func orDash(v string) string {
	if strings.TrimSpace(v) == "" {
		return "-"
	}
	return v
}

func yesNo(v bool) string {
	if v {
		return "已启用"
	}
	return "未启用"
}
