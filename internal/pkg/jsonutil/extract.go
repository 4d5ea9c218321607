package jsonutil

import (
	"bytes"
	"encoding/json"
	"regexp"
	"strings"
)

const codeFence = "```"

// lazyObject matches the shortest {...} span, newlines included. Nested
// objects are cut at the first closing brace; replies we care about are flat.
var lazyObject = regexp.MustCompile(`(?s)\{.*?\}`)

// StripCodeFences removes ```json and ``` markers, leaving the fenced text in place.
func StripCodeFences(raw string) string {
	raw = strings.ReplaceAll(raw, codeFence+"json", "")
	return strings.ReplaceAll(raw, codeFence, "")
}

// FirstObject returns the first lazily matched {...} substring of raw.
func FirstObject(raw string) (string, bool) {
	loc := lazyObject.FindStringIndex(raw)
	if loc == nil {
		return "", false
	}
	return raw[loc[0]:loc[1]], true
}

// Indent pretty-prints a JSON document for logs; invalid input is returned as-is.
func Indent(raw []byte) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return ""
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, trimmed, "", "  "); err != nil {
		return string(trimmed)
	}
	return buf.String()
}
