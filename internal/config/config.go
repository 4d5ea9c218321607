package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

const (
	// EnvConfigPath 覆盖默认配置文件路径。
	EnvConfigPath     = "VECTORA_CONFIG"
	DefaultConfigPath = "configs/config.yaml"
	envPrefix         = "VECTORA"
)

// envKeys 可以用 VECTORA_<SECTION>_<KEY> 环境变量覆盖，主要用于不落盘的密钥。
var envKeys = []string{
	"app.http_addr",
	"app.log_level",
	"app.log_format",
	"notify.telegram.bot_token",
	"notify.telegram.chat_id",
}

// PathFromEnv returns $VECTORA_CONFIG or the default config path.
func PathFromEnv() string {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p
	}
	return DefaultConfigPath
}

// Load 读取 path 及其 include 链（被 include 的文件先合并，当前文件覆盖它们），
// 叠加环境变量后补默认值并校验。
func Load(path string) (*Config, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("config path cannot be empty")
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	v := viper.New()
	v.SetConfigType("yaml")
	w := &includeWalker{merged: v, done: map[string]bool{}, active: map[string]bool{}}
	if err := w.walk(abs); err != nil {
		return nil, err
	}
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	for _, key := range envKeys {
		_ = v.BindEnv(key)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "toml"
		dc.WeaklyTypedInput = true
	}); err != nil {
		return nil, fmt.Errorf("parsing config failed: %w", err)
	}
	setKeys := make(keySet)
	markKeys("", v.AllSettings(), setKeys)
	cfg.applyDefaults(setKeys)
	if err := validate(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// includeWalker 深度优先合并 include 链，检测循环引用；同一文件只合并一次。
type includeWalker struct {
	merged *viper.Viper
	done   map[string]bool
	active map[string]bool
}

func (w *includeWalker) walk(path string) error {
	path = filepath.Clean(path)
	if w.active[path] {
		return fmt.Errorf("include cycle detected: %s", path)
	}
	if w.done[path] {
		return nil
	}
	w.active[path] = true
	defer delete(w.active, path)

	file := viper.New()
	file.SetConfigFile(path)
	if err := file.ReadInConfig(); err != nil {
		return fmt.Errorf("reading config file failed (%s): %w", path, err)
	}
	includes, err := includeList(file.Get("include"))
	if err != nil {
		return fmt.Errorf("parsing include failed (%s): %w", path, err)
	}
	for _, inc := range includes {
		if !filepath.IsAbs(inc) {
			inc = filepath.Join(filepath.Dir(path), inc)
		}
		if err := w.walk(inc); err != nil {
			return err
		}
	}
	settings := file.AllSettings()
	delete(settings, "include")
	if err := w.merged.MergeConfigMap(settings); err != nil {
		return fmt.Errorf("merging config file failed (%s): %w", path, err)
	}
	w.done[path] = true
	return nil
}

func includeList(raw any) ([]string, error) {
	var items []any
	switch val := raw.(type) {
	case nil:
		return nil, nil
	case []any:
		items = val
	case []string:
		for _, s := range val {
			items = append(items, s)
		}
	default:
		return nil, fmt.Errorf("include must be a string array")
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		str, ok := item.(string)
		if !ok {
			return nil, fmt.Errorf("include only supports strings")
		}
		if str = strings.TrimSpace(str); str != "" {
			out = append(out, str)
		}
	}
	return out, nil
}

// markKeys 把嵌套配置展开成 a.b.c 形式记入 dest。
func markKeys(prefix string, node any, dest keySet) {
	join := func(k string) string {
		k = strings.ToLower(strings.TrimSpace(k))
		if k == "" || prefix == "" {
			return k
		}
		return prefix + "." + k
	}
	switch val := node.(type) {
	case map[string]any:
		for k, child := range val {
			if next := join(k); next != "" {
				markKeys(next, child, dest)
			}
		}
	case map[any]any:
		for k, child := range val {
			ks, ok := k.(string)
			if !ok {
				continue
			}
			if next := join(ks); next != "" {
				markKeys(next, child, dest)
			}
		}
	default:
		dest.mark(prefix)
	}
}
