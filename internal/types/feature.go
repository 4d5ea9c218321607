package types

import "strings"

// Feature 表示一次检测请求的输入来源。
type Feature string

const (
	FeatureText   Feature = "text"
	FeatureImage  Feature = "image"
	FeatureScreen Feature = "screen"
)

func (f Feature) Valid() bool {
	switch f {
	case FeatureText, FeatureImage, FeatureScreen:
		return true
	default:
		return false
	}
}

// ParseFeature 大小写不敏感地解析 feature 名称。
func ParseFeature(s string) (Feature, bool) {
	f := Feature(strings.ToLower(strings.TrimSpace(s)))
	return f, f.Valid()
}
