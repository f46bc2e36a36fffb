package fixed

import (
	"context"

	"github.com/scrayosnet/passage/pkg/adapters"
)

// MetaFilter applies a configured list of generic FilterRules to each
// target's metadata map, keeping only targets every rule matches.
type MetaFilter struct {
	rules []adapters.FilterRule
}

// NewMetaFilter builds a MetaFilter from parsed YAML rule configs.
func NewMetaFilter(configs []RuleConfig) (*MetaFilter, error) {
	rules := make([]adapters.FilterRule, 0, len(configs))
	for _, c := range configs {
		rule, err := c.ToFilterRule()
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return &MetaFilter{rules: rules}, nil
}

// Filter keeps targets whose metadata satisfies every configured rule.
func (f *MetaFilter) Filter(_ context.Context, _ adapters.Endpoint, _ adapters.Identity, targets []adapters.Target) ([]adapters.Target, error) {
	out := make([]adapters.Target, 0, len(targets))
	for _, t := range targets {
		if f.matchesAll(t) {
			out = append(out, t)
		}
	}
	return out, nil
}

func (f *MetaFilter) matchesAll(t adapters.Target) bool {
	for _, rule := range f.rules {
		value, present := t.Metadata[rule.Key]
		if !rule.Matches(value, present) {
			return false
		}
	}
	return true
}

// PlayerAllowFilter keeps every target unless the connecting user's name
// is absent from a configured allow-list, in which case the target list
// collapses to empty.
type PlayerAllowFilter struct {
	allowed map[string]struct{}
}

// NewPlayerAllowFilter builds an allow-list filter. An empty list allows
// everyone (the filter becomes a no-op).
func NewPlayerAllowFilter(names []string) *PlayerAllowFilter {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return &PlayerAllowFilter{allowed: set}
}

func (f *PlayerAllowFilter) Filter(_ context.Context, _ adapters.Endpoint, user adapters.Identity, targets []adapters.Target) ([]adapters.Target, error) {
	if len(f.allowed) == 0 {
		return targets, nil
	}
	if _, ok := f.allowed[user.Name]; ok {
		return targets, nil
	}
	return nil, nil
}

// PlayerBlockFilter empties the target list if the connecting user's name
// is present in a configured block-list.
type PlayerBlockFilter struct {
	blocked map[string]struct{}
}

// NewPlayerBlockFilter builds a block-list filter.
func NewPlayerBlockFilter(names []string) *PlayerBlockFilter {
	set := make(map[string]struct{}, len(names))
	for _, n := range names {
		set[n] = struct{}{}
	}
	return &PlayerBlockFilter{blocked: set}
}

func (f *PlayerBlockFilter) Filter(_ context.Context, _ adapters.Endpoint, user adapters.Identity, targets []adapters.Target) ([]adapters.Target, error) {
	if _, ok := f.blocked[user.Name]; ok {
		return nil, nil
	}
	return targets, nil
}

var (
	_ adapters.FilterAdapter = (*MetaFilter)(nil)
	_ adapters.FilterAdapter = (*PlayerAllowFilter)(nil)
	_ adapters.FilterAdapter = (*PlayerBlockFilter)(nil)
)
