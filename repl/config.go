package repl

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/repl-bridge/kernel/relay"
	"github.com/repl-bridge/kernel/session"
)

// Duration is a time.Duration that marshals as a human-readable string
// ("30s", "250ms") in JSON config files.
type Duration time.Duration

// Std returns the value as a time.Duration.
func (d Duration) Std() time.Duration {
	return time.Duration(d)
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(time.Duration(d).String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// EvalConfig controls evaluation timing. A zero Timeout means unlimited, so
// users can run arbitrarily long computations; InterruptWait bounds how long
// a cancelled evaluation may take to unwind before the session is declared
// crashed.
//
// The controller enforces Timeout itself. InterruptWait is a target-side
// bound: the embedder must pass it to the target it constructs (see
// target.WithInterruptWait), as cmd/kernel does. A target wired without it
// falls back to the target's own default.
type EvalConfig struct {
	Timeout       Duration `json:"timeout,omitempty"`
	InterruptWait Duration `json:"interrupt_wait,omitempty"`
}

// Merge applies non-zero values from source into c.
func (c *EvalConfig) Merge(source *EvalConfig) {
	if source == nil {
		return
	}
	if source.Timeout > 0 {
		c.Timeout = source.Timeout
	}
	if source.InterruptWait > 0 {
		c.InterruptWait = source.InterruptWait
	}
}

// Config holds initialization parameters for the controller and its
// subsystems. Each section delegates to that subsystem's constructor.
type Config struct {
	Session session.Config `json:"session"`
	Eval    EvalConfig     `json:"eval"`
	Relay   relay.Config   `json:"relay"`
}

// DefaultConfig returns a Config with sensible defaults for all subsystems.
func DefaultConfig() Config {
	return Config{
		Session: session.DefaultConfig(),
		Eval:    EvalConfig{InterruptWait: Duration(2 * time.Second)},
		Relay:   relay.DefaultConfig(),
	}
}

// Merge applies non-zero values from source into c, delegating to each
// subsystem's Merge method.
func (c *Config) Merge(source *Config) {
	if source == nil {
		return
	}
	c.Session.Merge(&source.Session)
	c.Eval.Merge(&source.Eval)
	c.Relay.Merge(&source.Relay)
}

// LoadConfig reads a JSON config file, merges it with defaults, and returns
// the resulting Config.
func LoadConfig(filename string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var loaded Config
	if err := json.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.Merge(&loaded)
	return &cfg, nil
}
