package types

// AnalysisResult 是归一化后的检测结论，ai_percent 恒在 [0,100]。
type AnalysisResult struct {
	AIPercent int    `json:"ai_percent"`
	Message   string `json:"message"`
}

// HistoryEntry 是一条历史记录，按新到旧排列。
type HistoryEntry struct {
	URL       string  `json:"url"`
	Feature   Feature `json:"feature"`
	AIPercent int     `json:"ai_percent"`
	Message   string  `json:"message"`
	Timestamp int64   `json:"timestamp"`
	Provider  string  `json:"provider"`
	Model     string  `json:"model"`
}

// DefaultHistoryLimit caps the persisted history list.
const DefaultHistoryLimit = 50
