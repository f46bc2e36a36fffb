// Package fixed implements the dependency-light, YAML-driven adapter
// family for small/standalone deployments and tests: fixed discovery,
// filter, strategy, status and a disabled/fixed authentication pair.
package fixed

import (
	"fmt"

	"gopkg.in/yaml.v2"

	"github.com/scrayosnet/passage/pkg/adapters"
)

// TargetConfig is one YAML-configured candidate gameserver.
type TargetConfig struct {
	Identifier string            `yaml:"identifier"`
	Address    string            `yaml:"address"`
	Metadata   map[string]string `yaml:"metadata"`
}

// RuleConfig is one YAML-configured filter rule, matching
// adapters.FilterRule's grammar.
type RuleConfig struct {
	Key      string   `yaml:"key"`
	Operator string   `yaml:"operator"`
	Values   []string `yaml:"values"`
}

// ToFilterRule converts the YAML operator name into an adapters.FilterRule.
func (c RuleConfig) ToFilterRule() (adapters.FilterRule, error) {
	op, err := parseOperator(c.Operator)
	if err != nil {
		return adapters.FilterRule{}, err
	}
	return adapters.FilterRule{Key: c.Key, Operator: op, Values: c.Values}, nil
}

func parseOperator(name string) (adapters.Operator, error) {
	switch name {
	case "equals":
		return adapters.Equals, nil
	case "not_equals":
		return adapters.NotEquals, nil
	case "exists":
		return adapters.Exists, nil
	case "not_exists":
		return adapters.NotExists, nil
	case "in":
		return adapters.In, nil
	case "not_in":
		return adapters.NotIn, nil
	default:
		return 0, fmt.Errorf("fixed: unknown filter operator %q", name)
	}
}

// Config is the root YAML document the fixed adapter family loads from.
type Config struct {
	Targets        []TargetConfig     `yaml:"targets"`
	Rules          []RuleConfig       `yaml:"rules"`
	AllowedPlayers []string           `yaml:"allowed_players"`
	BlockedPlayers []string           `yaml:"blocked_players"`
	Strategy       string             `yaml:"strategy"`
	Status         ServerStatusConfig `yaml:"status"`
}

// ServerStatusConfig is the YAML-configured Server List Ping response.
type ServerStatusConfig struct {
	VersionName    string `yaml:"version_name"`
	ProtocolNumber int32  `yaml:"protocol_number"`
	MaxPlayers     int    `yaml:"max_players"`
	Description    string `yaml:"description"`
	FaviconPath    string `yaml:"favicon_path"`
	EnforcesSecure bool   `yaml:"enforces_secure_chat"`
}

// ParseConfig parses the fixed adapter family's YAML configuration.
func ParseConfig(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("fixed: parse config: %w", err)
	}
	return cfg, nil
}
