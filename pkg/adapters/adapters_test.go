package adapters_test

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrayosnet/passage/pkg/adapters"
)

func TestFilterRuleMatches(t *testing.T) {
	cases := []struct {
		name    string
		rule    adapters.FilterRule
		value   string
		present bool
		want    bool
	}{
		{"equals-match", adapters.FilterRule{Operator: adapters.Equals, Values: []string{"lobby"}}, "lobby", true, true},
		{"equals-mismatch", adapters.FilterRule{Operator: adapters.Equals, Values: []string{"lobby"}}, "survival", true, false},
		{"not-equals-absent", adapters.FilterRule{Operator: adapters.NotEquals, Values: []string{"lobby"}}, "", false, true},
		{"exists-present", adapters.FilterRule{Operator: adapters.Exists}, "x", true, true},
		{"exists-absent", adapters.FilterRule{Operator: adapters.Exists}, "", false, false},
		{"not-exists-absent", adapters.FilterRule{Operator: adapters.NotExists}, "", false, true},
		{"in-match", adapters.FilterRule{Operator: adapters.In, Values: []string{"a", "b"}}, "b", true, true},
		{"in-no-match", adapters.FilterRule{Operator: adapters.In, Values: []string{"a", "b"}}, "c", true, false},
		{"not-in-absent", adapters.FilterRule{Operator: adapters.NotIn, Values: []string{"a", "b"}}, "", false, true},
		{"not-in-present-no-match", adapters.FilterRule{Operator: adapters.NotIn, Values: []string{"a", "b"}}, "c", true, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, c.rule.Matches(c.value, c.present))
		})
	}
}

type stubDiscovery struct{ targets []adapters.Target }

func (s stubDiscovery) Discover(context.Context) ([]adapters.Target, error) { return s.targets, nil }

type stubFilter struct{ keep string }

func (s stubFilter) Filter(_ context.Context, _ adapters.Endpoint, _ adapters.Identity, targets []adapters.Target) ([]adapters.Target, error) {
	var out []adapters.Target
	for _, t := range targets {
		if t.Identifier == s.keep {
			out = append(out, t)
		}
	}
	return out, nil
}

type stubStrategy struct{}

func (stubStrategy) Strategize(_ context.Context, _ adapters.Endpoint, _ adapters.Identity, targets []adapters.Target) (*adapters.Target, error) {
	if len(targets) == 0 {
		return nil, nil
	}
	return &targets[0], nil
}

func TestFacadeSelectComposesPipeline(t *testing.T) {
	f := &adapters.Facade{
		Discovery: stubDiscovery{targets: []adapters.Target{
			{Identifier: "a", Address: net.TCPAddr{IP: net.ParseIP("10.0.0.1"), Port: 25565}},
			{Identifier: "b", Address: net.TCPAddr{IP: net.ParseIP("10.0.0.2"), Port: 25565}},
		}},
		Filters:  []adapters.FilterAdapter{stubFilter{keep: "b"}},
		Strategy: stubStrategy{},
	}

	target, err := f.Select(context.Background(), adapters.Endpoint{}, adapters.Identity{})
	require.NoError(t, err)
	require.NotNil(t, target)
	assert.Equal(t, "b", target.Identifier)
}

func TestFacadeSelectReturnsNilOnEmptyAfterFilter(t *testing.T) {
	f := &adapters.Facade{
		Discovery: stubDiscovery{targets: []adapters.Target{{Identifier: "a"}}},
		Filters:   []adapters.FilterAdapter{stubFilter{keep: "does-not-exist"}},
		Strategy:  stubStrategy{},
	}

	target, err := f.Select(context.Background(), adapters.Endpoint{}, adapters.Identity{})
	require.NoError(t, err)
	assert.Nil(t, target)
}

func TestFacadeStringSummary(t *testing.T) {
	f := &adapters.Facade{Discovery: stubDiscovery{}, Strategy: stubStrategy{}}
	assert.Contains(t, f.String(), "discovery=")
	assert.Contains(t, f.String(), "strategy=")
}

