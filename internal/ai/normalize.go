package ai

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"vectora/internal/pkg/jsonutil"
	"vectora/internal/pkg/text"
	"vectora/internal/types"

	"github.com/tidwall/gjson"
)

const (
	defaultMessage = "Analysis complete"
	snippetLen     = 200
)

var (
	percentPattern = regexp.MustCompile(`(\d{1,3}) ?%`)
	leadingInt     = regexp.MustCompile(`^\s*[-+]?\d+`)
)

// Normalize 将模型的自由文本回复解析为 AnalysisResult。
// 顺序：去掉代码围栏 → 第一个 {...} 按 JSON 解析 → 退化为扫描 "N%"。
// 任何一步都不会凭空生成分数。
func Normalize(raw string) (types.AnalysisResult, error) {
	cleaned := jsonutil.StripCodeFences(raw)
	if obj, ok := jsonutil.FirstObject(cleaned); ok {
		return fromObject(obj)
	}
	m := percentPattern.FindStringSubmatch(raw)
	if m == nil {
		return types.AnalysisResult{}, &UnparsableResponseError{Snippet: text.Head(raw, snippetLen)}
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return types.AnalysisResult{}, &ScoreParseError{Value: m[1]}
	}
	return types.AnalysisResult{
		AIPercent: ClampPercent(n),
		Message:   text.Head(raw, snippetLen),
	}, nil
}

func fromObject(obj string) (types.AnalysisResult, error) {
	if !gjson.Valid(obj) {
		return types.AnalysisResult{}, &JSONParseError{Fragment: text.Head(obj, snippetLen)}
	}
	parsed := gjson.Parse(obj)
	if !parsed.IsObject() {
		return types.AnalysisResult{}, &JSONParseError{Fragment: text.Head(obj, snippetLen)}
	}
	score := parsed.Get("ai_percent")
	if !score.Exists() || score.Type == gjson.Null {
		return types.AnalysisResult{}, MissingScoreError{}
	}
	n, err := scoreToInt(score)
	if err != nil {
		return types.AnalysisResult{}, err
	}
	msg := defaultMessage
	if reason := parsed.Get("reason"); reason.Exists() && reason.Type != gjson.Null {
		if s := reason.String(); s != "" {
			msg = s
		}
	}
	return types.AnalysisResult{AIPercent: ClampPercent(n), Message: msg}, nil
}

// scoreToInt follows integer-parse semantics: numbers truncate toward zero,
// strings use their leading integer, everything else is an error.
func scoreToInt(v gjson.Result) (int, error) {
	switch v.Type {
	case gjson.Number:
		f := math.Trunc(v.Num)
		if f > math.MaxInt32 {
			f = math.MaxInt32
		} else if f < math.MinInt32 {
			f = math.MinInt32
		}
		return int(f), nil
	case gjson.String:
		lead := leadingInt.FindString(v.Str)
		if lead == "" {
			return 0, &ScoreParseError{Value: v.Str}
		}
		n, err := strconv.Atoi(strings.TrimSpace(lead))
		if err != nil {
			return 0, &ScoreParseError{Value: v.Str}
		}
		return n, nil
	default:
		return 0, &ScoreParseError{Value: v.Raw}
	}
}

// ClampPercent forces n into [0,100].
func ClampPercent(n int) int {
	if n < 0 {
		return 0
	}
	if n > 100 {
		return 100
	}
	return n
}
