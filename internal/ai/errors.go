package ai

import "fmt"

// MissingScoreError 表示模型返回了 JSON 对象但没有 ai_percent。
type MissingScoreError struct{}

func (MissingScoreError) Error() string {
	return "model response JSON has no ai_percent value"
}

// UnparsableResponseError carries the head of a reply that held neither a
// JSON object nor a percentage.
type UnparsableResponseError struct {
	Snippet string
}

func (e *UnparsableResponseError) Error() string {
	return fmt.Sprintf("could not parse model response: %s", e.Snippet)
}

// ScoreParseError is returned when ai_percent is present but not an integer.
type ScoreParseError struct {
	Value string
}

func (e *ScoreParseError) Error() string {
	return fmt.Sprintf("ai_percent is not an integer: %s", e.Value)
}

// JSONParseError wraps a {...} span that was found but is not valid JSON.
type JSONParseError struct {
	Fragment string
}

func (e *JSONParseError) Error() string {
	return fmt.Sprintf("invalid JSON in model response: %s", e.Fragment)
}
