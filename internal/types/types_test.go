package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseProvider(t *testing.T) {
	p, ok := ParseProvider(" Groq ")
	assert.True(t, ok)
	assert.Equal(t, ProviderGroq, p)
	_, ok = ParseProvider("openai")
	assert.False(t, ok)
}

func TestSettingsActiveAndValidate(t *testing.T) {
	s := Settings{Provider: ProviderGemini, GeminiAPIKey: " key ", GeminiModel: "gemini-2.0-flash", GroqAPIKey: "other"}
	p, key, model := s.Active()
	assert.Equal(t, ProviderGemini, p)
	assert.Equal(t, "key", key)
	assert.Equal(t, "gemini-2.0-flash", model)
	assert.NoError(t, s.Validate())

	s.GeminiAPIKey = ""
	assert.EqualError(t, s.Validate(), "please enter an API key for gemini")
	s.GeminiAPIKey = "k"
	s.GeminiModel = " "
	assert.EqualError(t, s.Validate(), "please select a model for gemini")
	assert.Error(t, Settings{Provider: "x"}.Validate())
}

func TestSettingsMasked(t *testing.T) {
	s := Settings{Provider: ProviderGroq, GroqAPIKey: "gsk_abcdef", CerebrasAPIKey: "abc"}
	m := s.Masked()
	assert.Equal(t, "****cdef", m.GroqAPIKey)
	assert.Equal(t, "****", m.CerebrasAPIKey)
	assert.Equal(t, "", m.GeminiAPIKey)
	assert.Equal(t, "gsk_abcdef", s.GroqAPIKey)
}

func TestCapabilitySetList(t *testing.T) {
	set := NewCapabilitySet(CapabilityWebSearch, CapabilityText)
	set.Add(CapabilityImage)
	assert.Equal(t, []string{"text", "image", "web_search"}, set.List())
	assert.True(t, set.Has(CapabilityImage))
}

func TestParseFeature(t *testing.T) {
	f, ok := ParseFeature("IMAGE")
	assert.True(t, ok)
	assert.Equal(t, FeatureImage, f)
	_, ok = ParseFeature("video")
	assert.False(t, ok)
}
