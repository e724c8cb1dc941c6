package policy

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/ppiankov/taintgate/internal/model"
	"github.com/ppiankov/taintgate/internal/roles"
)

// RoleDecl declares one parameter's role. Declared as a YAML list so
// the file's order is the scan order.
type RoleDecl struct {
	Param string `yaml:"param"`
	Role  string `yaml:"role"`
}

// ActionConfig holds the per-action role declarations.
type ActionConfig struct {
	Roles []RoleDecl `yaml:"roles"`
}

// Config holds all configurable enforcement parameters.
type Config struct {
	Mode     string                  `yaml:"mode"`
	AuditLog string                  `yaml:"audit_log"`
	Actions  map[string]ActionConfig `yaml:"actions"`
}

// DefaultConfig returns the built-in configuration: permissive mode,
// no audit log, no declared actions.
func DefaultConfig() *Config {
	return &Config{
		Mode:    string(model.ModePermissive),
		Actions: map[string]ActionConfig{},
	}
}

// DefaultMode returns the configured default enforcement mode.
// Unspecified falls back to permissive; unknown values fail closed to
// strict via ParseMode.
func (c *Config) DefaultMode() model.PolicyMode {
	if c == nil {
		return model.ModePermissive
	}
	return model.ParseMode(c.Mode, model.ModePermissive)
}

// BuildRegistry constructs a role registry from the declared actions.
func (c *Config) BuildRegistry() *roles.Registry {
	reg := roles.NewRegistry()
	if c == nil {
		return reg
	}
	for action, ac := range c.Actions {
		rm := roles.NewRoleMap()
		for _, d := range ac.Roles {
			rm.Declare(d.Param, model.ParseRole(d.Role))
		}
		reg.Register(action, rm)
	}
	return reg
}

// LoadConfig loads configuration from a YAML file.
// Empty path falls back to ~/.taintgate/policy.yaml.
// Missing file returns defaults. Invalid YAML returns an error.
func LoadConfig(path string) (*Config, error) {
	cfg, _, err := LoadConfigWithHash(path)
	return cfg, err
}

// LoadConfigWithHash loads configuration and returns its SHA-256 hash.
// The hash is computed over the raw YAML bytes on disk; when no file
// exists (defaults used) it is the SHA-256 of empty input.
func LoadConfigWithHash(path string) (*Config, string, error) {
	if path == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return DefaultConfig(), emptyHash(), nil
		}
		path = filepath.Join(home, ".taintgate", "policy.yaml")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), emptyHash(), nil
		}
		return nil, "", fmt.Errorf("failed to read policy config: %w", err)
	}

	h := sha256.Sum256(data)
	hash := "sha256:" + hex.EncodeToString(h[:])

	// Start with defaults, YAML overwrites only specified fields
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, "", fmt.Errorf("failed to parse policy config: %w", err)
	}

	return cfg, hash, nil
}

func emptyHash() string {
	h := sha256.Sum256(nil)
	return "sha256:" + hex.EncodeToString(h[:])
}

// DefaultConfigYAML returns a commented YAML string for init-policy.
func DefaultConfigYAML() string {
	return `# taintgate policy configuration
# Generated by: taintgate init-policy
#
# Decision order (cannot be changed):
#   1. No taint in the execution context -> allow, no enforcement
#   2. Mode resolution: context taint_policy -> mode below -> permissive
#   3. Mode dispatch:
#      strict     - any non-trusted level on a control parameter blocks
#      permissive - untrusted/hostile on control blocks;
#                   derived on control is allowed but audited
#      audit_only - never blocks; would-be blocks are audited

# Default enforcement mode when the execution context names none.
# One of: permissive | audit_only | strict
mode: permissive

# Hash-chained JSONL audit log. Empty disables the log; events are
# still delivered to any in-process emitter.
audit_log: ""

# Per-action parameter roles. List order is scan order: the first
# control parameter in a blocked call names the violation. Parameters
# not declared here are treated as data.
actions:
  browser.navigate:
    roles:
      - param: url
        role: control
      - param: body
        role: data
`
}
