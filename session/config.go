package session

const (
	defaultUsername = "kernel"
)

// Config holds session initialization parameters, typically decoded from the
// connection descriptor handed to the kernel at startup.
type Config struct {
	ID              string `json:"id,omitempty"`
	Key             string `json:"key,omitempty"`
	Username        string `json:"username,omitempty"`
	SignatureScheme string `json:"signature_scheme,omitempty"`
}

// DefaultConfig returns the default session configuration: a generated id,
// no signing key, and the hmac-sha256 scheme.
func DefaultConfig() Config {
	return Config{
		Username:        defaultUsername,
		SignatureScheme: SchemeHMACSHA256,
	}
}

// Merge applies non-zero values from source into c.
func (c *Config) Merge(source *Config) {
	if source == nil {
		return
	}
	if source.ID != "" {
		c.ID = source.ID
	}
	if source.Key != "" {
		c.Key = source.Key
	}
	if source.Username != "" {
		c.Username = source.Username
	}
	if source.SignatureScheme != "" {
		c.SignatureScheme = source.SignatureScheme
	}
}
