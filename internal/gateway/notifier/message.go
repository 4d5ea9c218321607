package notifier

import (
	"fmt"
	"strings"
	"time"

	"vectora/internal/pkg/text"
)

const maxStructuredMessageLen = 3800

// MessageSection 表示通知中的一个段落。
type MessageSection struct {
	Title string
	Lines []string
}

// StructuredMessage 描述统一格式的 Markdown 推送。
type StructuredMessage struct {
	Icon      string
	Title     string
	Sections  []MessageSection
	Footer    string
	Timestamp time.Time
}

// FromNotification renders a detection outcome the way the in-page overlay
// shows it: score, message, "Powered by Vectora".
func FromNotification(n Notification) StructuredMessage {
	msg := StructuredMessage{
		Icon:   "🔎",
		Title:  fmt.Sprintf("AI Involvement: %d%%", n.AIPercent),
		Footer: "Powered by Vectora",
	}
	if n.Error {
		msg.Icon = "⚠️"
		msg.Title = "AI check failed"
	}
	details := []string{n.Message}
	if n.URL != "" {
		details = append(details, "Page: "+n.URL)
	}
	msg.Sections = append(msg.Sections, MessageSection{Title: "Result", Lines: details})
	if n.Provider != "" {
		msg.Sections = append(msg.Sections, MessageSection{
			Title: "Model",
			Lines: []string{strings.TrimSpace(n.Provider + " " + n.Model), "Feature: " + string(n.Feature)},
		})
	}
	if n.Timestamp > 0 {
		msg.Timestamp = time.UnixMilli(n.Timestamp)
	}
	return msg
}

// RenderMarkdown 生成 Markdown 文本，自动裁剪长度。
func (m StructuredMessage) RenderMarkdown() string {
	var b strings.Builder
	header := strings.TrimSpace(m.Icon + " " + m.Title)
	if header != "" {
		b.WriteString(header + "\n\n")
	}
	if block := renderSections(m.Sections); block != "" {
		b.WriteString(block)
	}
	if footer := strings.TrimSpace(m.Footer); footer != "" {
		b.WriteString(sanitize(footer))
		b.WriteString("\n")
	}
	if !m.Timestamp.IsZero() {
		b.WriteString("Time: " + m.Timestamp.Format("2006-01-02 15:04:05 MST"))
	}
	return text.Truncate(strings.TrimSpace(b.String()), maxStructuredMessageLen)
}

func renderSections(secs []MessageSection) string {
	var blocks []string
	for _, sec := range secs {
		lines := sanitizeLines(sec.Lines)
		if len(lines) == 0 {
			continue
		}
		var b strings.Builder
		if title := strings.TrimSpace(sec.Title); title != "" {
			b.WriteString(sanitize(title))
			b.WriteString("\n")
		}
		for _, line := range lines {
			b.WriteString("- ")
			b.WriteString(sanitize(line))
			b.WriteString("\n")
		}
		blocks = append(blocks, b.String())
	}
	if len(blocks) == 0 {
		return ""
	}
	return "```\n" + strings.Join(blocks, "\n") + "```\n\n"
}

func sanitizeLines(lines []string) []string {
	out := make([]string, 0, len(lines))
	for _, line := range lines {
		if trimmed := strings.TrimSpace(line); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}

func sanitize(s string) string {
	return strings.ReplaceAll(s, "```", "'''")
}
