package adapters

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Facade aggregates the six capability adapters behind one handle and
// exposes Select, the discover/filter/strategize convenience the
// connection state machine drives.
type Facade struct {
	Status         StatusAdapter
	Discovery      DiscoveryAdapter
	Filters        []FilterAdapter
	Strategy       StrategyAdapter
	Authentication AuthenticationAdapter
	Localization   LocalizationAdapter
}

// Select runs the discover → filter chain → strategize pipeline. The
// filter chain is short-circuit-free on content: an empty list is still
// passed through every filter, and only the strategy step may turn an
// empty (or non-empty) list into "no target" by returning nil.
func (f *Facade) Select(ctx context.Context, ep Endpoint, user Identity) (*Target, error) {
	targets, err := f.Discovery.Discover(ctx)
	if err != nil {
		return nil, fmt.Errorf("adapters: discover: %w", err)
	}
	for _, filter := range f.Filters {
		targets, err = filter.Filter(ctx, ep, user, targets)
		if err != nil {
			return nil, fmt.Errorf("adapters: filter: %w", err)
		}
	}
	target, err := f.Strategy.Strategize(ctx, ep, user, targets)
	if err != nil {
		return nil, fmt.Errorf("adapters: strategize: %w", err)
	}
	return target, nil
}

// String renders a short human-readable summary of the configured
// adapters.
func (f *Facade) String() string {
	return fmt.Sprintf(
		"adapters{status=%T discovery=%T filters=%d strategy=%T authentication=%T localization=%T}",
		f.Status, f.Discovery, len(f.Filters), f.Strategy, f.Authentication, f.Localization,
	)
}

// LogFields renders the same summary as zap structured fields, for
// attaching to a startup log line.
func (f *Facade) LogFields() []zapcore.Field {
	return []zapcore.Field{
		zap.String("status", fmt.Sprintf("%T", f.Status)),
		zap.String("discovery", fmt.Sprintf("%T", f.Discovery)),
		zap.Int("filters", len(f.Filters)),
		zap.String("strategy", fmt.Sprintf("%T", f.Strategy)),
		zap.String("authentication", fmt.Sprintf("%T", f.Authentication)),
		zap.String("localization", fmt.Sprintf("%T", f.Localization)),
	}
}
