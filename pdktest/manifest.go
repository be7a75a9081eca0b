package pdktest

import (
	"net/http"
	"time"
)

// Manifest describes the environment a plugin runs in. Field names follow
// the Extism manifest so existing manifest files can be reused.
type Manifest struct {
	Config       map[string]string `json:"config,omitempty" mapstructure:"config"`
	Vars         map[string]string `json:"vars,omitempty" mapstructure:"vars"`
	AllowedHosts []string          `json:"allowed_hosts,omitempty" mapstructure:"allowed_hosts"`
	Memory       *ManifestMemory   `json:"memory,omitempty" mapstructure:"memory"`
	// Timeout bounds each outbound HTTP request, in milliseconds.
	Timeout uint `json:"timeout_ms,omitempty" mapstructure:"timeout_ms"`
}

// ManifestMemory holds the host's memory limits. Zero keeps the default.
type ManifestMemory struct {
	MaxVarBytes          int64 `json:"max_var_bytes,omitempty" mapstructure:"max_var_bytes"`
	MaxHTTPResponseBytes int64 `json:"max_http_response_bytes,omitempty" mapstructure:"max_http_response_bytes"`
}

// WithManifest applies every setting in m.
func WithManifest(m Manifest) Option {
	return func(h *Host) {
		WithConfig(m.Config)(h)
		for k, v := range m.Vars {
			WithVar(k, []byte(v))(h)
		}
		WithAllowedHosts(m.AllowedHosts...)(h)

		if m.Memory != nil {
			if m.Memory.MaxVarBytes > 0 {
				h.MaxVarBytes = m.Memory.MaxVarBytes
			}
			if m.Memory.MaxHTTPResponseBytes > 0 {
				h.MaxHTTPResponseBytes = m.Memory.MaxHTTPResponseBytes
			}
		}

		if m.Timeout > 0 {
			h.client = &http.Client{Timeout: time.Duration(m.Timeout) * time.Millisecond}
		}
	}
}
