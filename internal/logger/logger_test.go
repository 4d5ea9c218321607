package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelsAndWith(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() {
		SetOutput(os.Stdout)
		SetLevel("info")
	})

	SetLevel("warn")
	Infof("hidden %d", 1)
	Warnf("shown %d", 2)
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown 2")

	SetLevel("debug")
	With("trace_id", "abc").Debug("state")
	assert.Contains(t, buf.String(), "trace_id=abc")
	assert.Contains(t, buf.String(), "svc=vectora")

	SetLevel("loud")
	Debugf("after unknown level")
	assert.NotContains(t, buf.String(), "after unknown level")
}

func TestParseLevelAndFormat(t *testing.T) {
	lv, err := ParseLevel(" WARNING ")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelWarn, lv)
	lv, err = ParseLevel("")
	require.NoError(t, err)
	assert.Equal(t, slog.LevelInfo, lv)
	_, err = ParseLevel("trace")
	assert.Error(t, err)

	f, err := ParseFormat("JSON")
	require.NoError(t, err)
	assert.Equal(t, FormatJSON, f)
	_, err = ParseFormat("logfmt")
	assert.Error(t, err)
}

func TestInfoBlockFormats(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	t.Cleanup(func() {
		SetFormat(FormatText)
		SetOutput(os.Stdout)
	})

	InfoBlock("startup", "a: 1\nb: 2\n")
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "block=startup")

	buf.Reset()
	SetFormat(FormatJSON)
	InfoBlock("startup", "a: 1\nb: 2")
	var rec map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &rec))
	assert.Equal(t, "startup", rec["msg"])
	assert.Equal(t, "vectora", rec["svc"])
	assert.Equal(t, []any{"a: 1", "b: 2"}, rec["lines"])
}

func TestLLMLog(t *testing.T) {
	var buf bytes.Buffer
	SetLLMWriter(&buf)
	t.Cleanup(func() {
		SetLLMWriter(nil)
		EnableLLMPayloadDump(false)
	})

	LogLLMRequest("groq", "llama", "t1", "prompt text", "image/png", 128, `{"big":"payload"}`)
	out := buf.String()
	assert.Contains(t, out, "[request][groq][t1]")
	assert.Contains(t, out, "image/png (128 bytes base64)")
	assert.NotContains(t, out, "big")

	EnableLLMPayloadDump(true)
	LogLLMRequest("groq", "llama", "t2", "p", "", 0, `{"big":"payload"}`)
	assert.Contains(t, buf.String(), `{"big":"payload"}`)

	LogLLMResponse("groq", "t2", `{"ai_percent":1}`)
	assert.Contains(t, buf.String(), "--- RAW ---")
}
