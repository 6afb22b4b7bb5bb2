// Copyright 2026 Unicity Network

// Package clientconfig implements YAML-configurable tunables for the
// state-transition client and its polling utility, following the teacher's
// own anchor-config loader pattern (pkg/config's yaml.v3 Config type and
// its Duration string-form wrapper) generalized down to this engine's much
// smaller, purely client-side tunable set.
package clientconfig

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Duration is a time.Duration that reads and writes as a Go duration
// string ("250ms", "5s", ...) in YAML, matching the teacher's convention.
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(node *yaml.Node) error {
	var s string
	if err := node.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("clientconfig: invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the underlying time.Duration value.
func (d Duration) Duration() time.Duration { return time.Duration(d) }

// Config holds the client's tunable knobs: none of it affects protocol
// semantics (hash/verify behavior is fixed by §4), only I/O pacing and
// defaults a caller would otherwise have to hardcode at every call site.
type Config struct {
	Polling PollingSettings `yaml:"polling"`
	Hash    HashSettings    `yaml:"hash"`
}

// PollingSettings governs the inclusion-proof polling utility (§5).
type PollingSettings struct {
	Interval Duration `yaml:"interval"`
	Deadline Duration `yaml:"deadline"`
}

// HashSettings names default hash/signature algorithm labels. They are
// loaded and carried for callers; no engine code reads them, and predicate
// constructors always take their algorithm labels as explicit arguments.
type HashSettings struct {
	DefaultHashAlgorithm string `yaml:"default_hash_algorithm"`
	DefaultSigAlgorithm  string `yaml:"default_sig_algorithm"`
}

// Default returns the engine's built-in tunables: a 500ms poll interval,
// a 30s deadline, and SHA256/secp256k1 as the default algorithm labels.
func Default() *Config {
	return &Config{
		Polling: PollingSettings{
			Interval: Duration(500 * time.Millisecond),
			Deadline: Duration(30 * time.Second),
		},
		Hash: HashSettings{
			DefaultHashAlgorithm: "SHA256",
			DefaultSigAlgorithm:  "secp256k1",
		},
	}
}

// Load reads and parses a YAML config file at path, starting from Default()
// so a config file only needs to override what it cares about.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("clientconfig: read %s: %w", path, err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("clientconfig: parse %s: %w", path, err)
	}
	return cfg, nil
}
