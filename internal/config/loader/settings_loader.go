package loader

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"sync"
	"time"

	"vectora/internal/logger"
	"vectora/internal/types"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// DefaultProvider 是首次启动（设置文件不存在）时的 provider。
const DefaultProvider = types.ProviderGemini

// SettingsSnapshot 是某一时刻的设置副本。
type SettingsSnapshot struct {
	Version  int64
	LoadedAt time.Time
	Settings types.Settings
}

// ChangeListener 在设置重新加载后被调用。
type ChangeListener func(SettingsSnapshot)

// SettingsLoader 从 YAML 文件加载用户设置，监听文件变化并热更新。
// 分析请求只读取快照，从不回写。
type SettingsLoader struct {
	path string
	v    *viper.Viper

	reloadMu sync.Mutex

	mu        sync.RWMutex
	snapshot  SettingsSnapshot
	listeners []ChangeListener
}

// NewSettingsLoader 读取 path；文件不存在时先写入一份空设置。
// watch 为 true 时文件变更会自动触发 Reload。
func NewSettingsLoader(path string, watch bool) (*SettingsLoader, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return nil, fmt.Errorf("settings loader requires path")
	}
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		if err := writeSettingsFile(path, types.Settings{Provider: DefaultProvider}); err != nil {
			return nil, fmt.Errorf("init settings file failed: %w", err)
		}
	} else if err != nil {
		return nil, err
	}
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	l := &SettingsLoader{path: path, v: v}
	if err := l.Reload(); err != nil {
		return nil, err
	}
	if watch {
		v.OnConfigChange(func(evt fsnotify.Event) {
			if err := l.Reload(); err != nil {
				logger.Errorf("settings reload failed (%s): %v", evt.Name, err)
			}
		})
		v.WatchConfig()
	}
	return l, nil
}

func (l *SettingsLoader) Path() string { return l.path }

// Snapshot returns a copy of the current settings.
func (l *SettingsLoader) Snapshot() types.Settings {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.snapshot.Settings
}

func (l *SettingsLoader) Current() SettingsSnapshot {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.snapshot
}

// Reload re-reads the settings file and notifies listeners.
func (l *SettingsLoader) Reload() error {
	l.reloadMu.Lock()
	defer l.reloadMu.Unlock()
	if err := l.v.ReadInConfig(); err != nil {
		return fmt.Errorf("read settings failed: %w", err)
	}
	var s types.Settings
	if err := l.v.Unmarshal(&s); err != nil {
		return fmt.Errorf("parse settings failed: %w", err)
	}
	if strings.TrimSpace(string(s.Provider)) == "" {
		s.Provider = DefaultProvider
	}
	p, ok := types.ParseProvider(string(s.Provider))
	if !ok {
		return fmt.Errorf("settings: unknown provider %q", s.Provider)
	}
	s.Provider = p

	l.mu.Lock()
	l.snapshot = SettingsSnapshot{
		Version:  l.snapshot.Version + 1,
		LoadedAt: time.Now(),
		Settings: s,
	}
	l.mu.Unlock()
	logger.Debugf("settings reloaded (provider=%s)", p)
	l.notify()
	return nil
}

// Save 校验后原子写入设置文件并立即重新加载。
// 当前 provider 必须同时具备 API key 与 model。
func (l *SettingsLoader) Save(s types.Settings) error {
	if p, ok := types.ParseProvider(string(s.Provider)); ok {
		s.Provider = p
	}
	if err := s.Validate(); err != nil {
		return err
	}
	if err := validateSettingsSchema(s); err != nil {
		return err
	}
	if err := writeSettingsFile(l.path, s); err != nil {
		return fmt.Errorf("write settings failed: %w", err)
	}
	return l.Reload()
}

// Subscribe 注册监听器，并立即收到一次完整快照。
func (l *SettingsLoader) Subscribe(fn ChangeListener) {
	if fn == nil {
		return
	}
	l.mu.Lock()
	l.listeners = append(l.listeners, fn)
	snap := l.snapshot
	l.mu.Unlock()
	go safeCall(fn, snap)
}

func (l *SettingsLoader) notify() {
	l.mu.RLock()
	snap := l.snapshot
	listeners := append([]ChangeListener(nil), l.listeners...)
	l.mu.RUnlock()
	for _, fn := range listeners {
		go safeCall(fn, snap)
	}
}

func safeCall(fn ChangeListener, snap SettingsSnapshot) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorf("settings listener panic: %v", r)
		}
	}()
	fn(snap)
}

func writeSettingsFile(path string, s types.Settings) error {
	raw, err := yaml.Marshal(s)
	if err != nil {
		return err
	}
	return writeFileAtomic(path, raw, 0o600)
}
