package fixed

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/scrayosnet/passage/pkg/adapters"
	"github.com/scrayosnet/passage/pkg/profile"
)

// DisabledAuthentication trusts the client's self-reported identity
// outright, for deployments that skip Mojang verification in a trusted
// network. It is consulted whenever the router announces
// `should_authenticate=true`.
type DisabledAuthentication struct{}

// Authenticate returns tentative's name/uuid unchanged, with no
// properties.
func (DisabledAuthentication) Authenticate(_ context.Context, _ adapters.Endpoint, tentative adapters.Identity, _, _ []byte) (profile.Profile, error) {
	id, err := uuid.Parse(tentative.UUID)
	if err != nil {
		return profile.Profile{}, fmt.Errorf("fixed: parse tentative uuid: %w", err)
	}
	return profile.Profile{ID: id, Name: tentative.Name}, nil
}

// FixedAuthentication returns the same pre-configured profile for every
// connection, useful for tests and single-account deployments.
type FixedAuthentication struct {
	Profile profile.Profile
}

// Authenticate always returns the configured profile.
func (a FixedAuthentication) Authenticate(context.Context, adapters.Endpoint, adapters.Identity, []byte, []byte) (profile.Profile, error) {
	return a.Profile, nil
}

var (
	_ adapters.AuthenticationAdapter = DisabledAuthentication{}
	_ adapters.AuthenticationAdapter = FixedAuthentication{}
)
