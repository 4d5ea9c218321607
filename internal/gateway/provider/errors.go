package provider

import (
	"fmt"
	"strings"

	"vectora/internal/types"
)

// MissingAPIKeyError 表示当前 provider 没有配置 API key。
type MissingAPIKeyError struct {
	Provider types.Provider
}

func (e *MissingAPIKeyError) Error() string {
	return fmt.Sprintf("no API key configured for %s; open the extension options and add one", e.Provider)
}

// UnsupportedCapabilityError is returned before any network call when the
// selected provider/model cannot take the requested input.
type UnsupportedCapabilityError struct {
	Provider   types.Provider
	Model      string
	Capability types.Capability
	Supported  []string
}

func (e *UnsupportedCapabilityError) Error() string {
	if len(e.Supported) == 0 {
		return fmt.Sprintf("%s does not support %s analysis; switch to a provider that does", e.Provider, e.Capability)
	}
	return fmt.Sprintf("%s model %q does not support %s analysis; use one of: %s",
		e.Provider, e.Model, e.Capability, strings.Join(e.Supported, ", "))
}

// ProviderHTTPError wraps a non-2xx reply from an upstream API.
type ProviderHTTPError struct {
	Provider   types.Provider
	StatusCode int
	Message    string
}

func (e *ProviderHTTPError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("%s API error: HTTP %d", e.Provider, e.StatusCode)
	}
	return fmt.Sprintf("%s API error: HTTP %d: %s", e.Provider, e.StatusCode, e.Message)
}
