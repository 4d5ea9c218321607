package provider

import (
	"strings"

	"vectora/internal/types"
)

// VisionModels are the Groq model ids advertised for image input.
var VisionModels = []string{
	"meta-llama/llama-4-scout-17b-16e-instruct",
	"meta-llama/llama-4-maverick-17b-128e-instruct",
	"meta-llama/llama-guard-4-12b",
}

var (
	groqVisionMarkers    = []string{"vision", "llama-guard", "llama-4-maverick", "llama-4-scout"}
	groqWebSearchMarkers = []string{"compound", "gpt-oss"}
)

// capabilityRule adds caps to every model of provider whose id contains one
// of markers. A rule without markers matches all models. Rules for the same
// provider are tried in order and the first match wins, which is what keeps
// image and web_search exclusive on groq.
type capabilityRule struct {
	provider types.Provider
	markers  []string
	caps     []types.Capability
}

var capabilityRules = []capabilityRule{
	{provider: types.ProviderGemini, caps: []types.Capability{types.CapabilityImage, types.CapabilityWebSearch}},
	{provider: types.ProviderGroq, markers: groqVisionMarkers, caps: []types.Capability{types.CapabilityImage}},
	{provider: types.ProviderGroq, markers: groqWebSearchMarkers, caps: []types.Capability{types.CapabilityWebSearch}},
	{provider: types.ProviderCerebras},
}

// ResolveCapabilities returns the capability set for (provider, model).
// text is always present. Both the advertised path (/api/capabilities,
// model listing) and image enforcement go through here.
func ResolveCapabilities(p types.Provider, model string) types.CapabilitySet {
	set := types.NewCapabilitySet(types.CapabilityText)
	id := strings.ToLower(strings.TrimSpace(model))
	for _, rule := range capabilityRules {
		if rule.provider != p || !matchesAny(id, rule.markers) {
			continue
		}
		for _, c := range rule.caps {
			set.Add(c)
		}
		break
	}
	return set
}

func matchesAny(id string, markers []string) bool {
	if len(markers) == 0 {
		return true
	}
	for _, m := range markers {
		if strings.Contains(id, m) {
			return true
		}
	}
	return false
}

// CheckImageSupport fails with UnsupportedCapabilityError when the model
// cannot take image input.
func CheckImageSupport(p types.Provider, model string) error {
	if SupportsImage(p, model) {
		return nil
	}
	err := &UnsupportedCapabilityError{Provider: p, Model: model, Capability: types.CapabilityImage}
	if p == types.ProviderGroq {
		err.Supported = append([]string(nil), VisionModels...)
	}
	return err
}

// SupportsImage reports whether the model accepts image input.
func SupportsImage(p types.Provider, model string) bool {
	return ResolveCapabilities(p, model).Has(types.CapabilityImage)
}
