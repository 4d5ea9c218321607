package jsonutil

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripCodeFences(t *testing.T) {
	in := "```json\n{\"ai_percent\": 87}\n```"
	assert.Equal(t, "\n{\"ai_percent\": 87}\n", StripCodeFences(in))
	assert.Equal(t, "plain", StripCodeFences("plain"))
}

func TestFirstObject(t *testing.T) {
	t.Run("multiline", func(t *testing.T) {
		obj, ok := FirstObject("result:\n{\n  \"ai_percent\": 40\n}\ntrailing {\"x\":1}")
		assert.True(t, ok)
		assert.Equal(t, "{\n  \"ai_percent\": 40\n}", obj)
	})
	t.Run("lazy stops at first close", func(t *testing.T) {
		obj, ok := FirstObject(`{"a":{"b":1}}`)
		assert.True(t, ok)
		assert.Equal(t, `{"a":{"b":1}`, obj)
	})
	t.Run("none", func(t *testing.T) {
		_, ok := FirstObject("about 73% AI")
		assert.False(t, ok)
	})
}

func TestIndent(t *testing.T) {
	assert.Equal(t, "{\n  \"a\": 1\n}", Indent([]byte(` {"a":1} `)))
	assert.Equal(t, "not json", Indent([]byte("not json")))
	assert.Equal(t, "", Indent(nil))
}
