package fixed

import (
	"context"
	"math/rand"

	"github.com/scrayosnet/passage/pkg/adapters"
)

// Mode selects how Strategy picks among an already-filtered target list.
type Mode string

const (
	// First always picks the first target in the filtered list.
	First Mode = "first"
	// Random picks uniformly among the filtered list.
	Random Mode = "random"
)

// Strategy is a fixed StrategyAdapter choosing among an already-filtered
// list by a configured Mode.
type Strategy struct {
	mode Mode
	rng  *rand.Rand
}

// NewStrategy builds a Strategy for mode, defaulting to First for an
// unrecognized or empty mode string.
func NewStrategy(mode string, rng *rand.Rand) *Strategy {
	m := Mode(mode)
	if m != Random {
		m = First
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(1))
	}
	return &Strategy{mode: m, rng: rng}
}

// Strategize returns nil when targets is empty, otherwise the element
// chosen by the configured mode.
func (s *Strategy) Strategize(_ context.Context, _ adapters.Endpoint, _ adapters.Identity, targets []adapters.Target) (*adapters.Target, error) {
	if len(targets) == 0 {
		return nil, nil
	}
	if s.mode == Random {
		idx := s.rng.Intn(len(targets))
		return &targets[idx], nil
	}
	return &targets[0], nil
}

var _ adapters.StrategyAdapter = (*Strategy)(nil)
