package types

import "sort"

type Capability string

const (
	CapabilityText      Capability = "text"
	CapabilityImage     Capability = "image"
	CapabilityWebSearch Capability = "web_search"
)

// CapabilitySet is an unordered set of model capabilities.
type CapabilitySet map[Capability]struct{}

func NewCapabilitySet(caps ...Capability) CapabilitySet {
	set := make(CapabilitySet, len(caps))
	for _, c := range caps {
		set[c] = struct{}{}
	}
	return set
}

func (s CapabilitySet) Has(c Capability) bool {
	_, ok := s[c]
	return ok
}

func (s CapabilitySet) Add(c Capability) {
	s[c] = struct{}{}
}

// List returns the capabilities in a stable order (text, image, web_search).
func (s CapabilitySet) List() []string {
	out := make([]string, 0, len(s))
	for c := range s {
		out = append(out, string(c))
	}
	sort.Slice(out, func(i, j int) bool { return capabilityRank(out[i]) < capabilityRank(out[j]) })
	return out
}

func capabilityRank(c string) int {
	switch Capability(c) {
	case CapabilityText:
		return 0
	case CapabilityImage:
		return 1
	case CapabilityWebSearch:
		return 2
	default:
		return 3
	}
}
