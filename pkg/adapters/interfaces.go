// Package adapters defines the six capability interfaces the connection
// state machine and listener consume, the facade that aggregates them,
// and the shared Target/ServerStatus/FilterRule data types. Concrete
// adapters (fixed in-memory, gRPC, Mojang HTTP) live in sibling packages;
// DNS and Kubernetes/Agones backends plug in through the same interfaces
// from outside this repository.
package adapters

import (
	"context"
	"net"

	"github.com/scrayosnet/passage/pkg/profile"
)

// Target is one candidate gameserver endpoint produced by discovery,
// narrowed by filters, and chosen by strategy.
type Target struct {
	// Identifier is unique within one discovery batch; never empty.
	Identifier string
	// Address is reachable by the client post-transfer.
	Address net.TCPAddr
	// Metadata carries free-form operator data: state, player count,
	// labels, region, and whatever a given deployment's filters key on.
	Metadata map[string]string
}

// Operator is a FilterRule's comparison against a Target's metadata value.
type Operator int

const (
	Equals Operator = iota
	NotEquals
	Exists
	NotExists
	In
	NotIn
)

// FilterRule is one configured condition: Key compared against Target
// metadata using Operator, with Values populated only for In/NotIn.
type FilterRule struct {
	Key      string
	Operator Operator
	Values   []string
}

// Matches reports whether value (the Target metadata entry for Key, and
// whether it was present) satisfies the rule.
func (r FilterRule) Matches(value string, present bool) bool {
	switch r.Operator {
	case Equals:
		return present && value == singleValue(r.Values)
	case NotEquals:
		return !present || value != singleValue(r.Values)
	case Exists:
		return present
	case NotExists:
		return !present
	case In:
		if !present {
			return false
		}
		for _, v := range r.Values {
			if v == value {
				return true
			}
		}
		return false
	case NotIn:
		if !present {
			return true
		}
		for _, v := range r.Values {
			if v == value {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func singleValue(values []string) string {
	if len(values) == 0 {
		return ""
	}
	return values[0]
}

// PlayerSample is one entry in a ServerStatus's player sample list.
type PlayerSample struct {
	Name string `json:"name"`
	ID   string `json:"id"`
}

// ServerStatus is the structured Server List Ping response body.
type ServerStatus struct {
	VersionName    string
	ProtocolNumber int32
	PlayersOnline  *int
	PlayersMax     *int
	PlayerSample   []PlayerSample
	Description    []byte // raw JSON, passed through as-is
	FaviconBase64  string
	EnforcesSecure *bool
}

// Endpoint bundles the three coordinates every adapter call is given: the
// client's address, the server address the client connected to, and the
// negotiated protocol version.
type Endpoint struct {
	ClientAddr net.Addr
	ServerHost string
	ServerPort uint16
	Protocol   int32
}

// Identity is a player's tentative or resolved name/uuid pair.
type Identity struct {
	Name string
	UUID string
}

// StatusAdapter answers Server List Ping requests. Returning (nil, nil)
// suppresses the response (encoded as JSON null by the core).
type StatusAdapter interface {
	Status(ctx context.Context, ep Endpoint) (*ServerStatus, error)
}

// DiscoveryAdapter enumerates every currently known candidate target.
// Idempotent; may return an empty list.
type DiscoveryAdapter interface {
	Discover(ctx context.Context) ([]Target, error)
}

// FilterAdapter narrows a target list. A configured chain of these is
// applied in order; an empty input list is still passed through each
// filter.
type FilterAdapter interface {
	Filter(ctx context.Context, ep Endpoint, user Identity, targets []Target) ([]Target, error)
}

// StrategyAdapter picks the final target from a (possibly already
// filtered) list, or reports that none is acceptable.
type StrategyAdapter interface {
	Strategize(ctx context.Context, ep Endpoint, user Identity, targets []Target) (*Target, error)
}

// AuthenticationAdapter resolves a tentative identity against an external
// authority (Mojang, or a no-op stand-in), failing on invalid credentials.
type AuthenticationAdapter interface {
	Authenticate(ctx context.Context, ep Endpoint, tentative Identity, sharedSecret, publicKeyDER []byte) (profile.Profile, error)
}

// LocalizationAdapter resolves a message key, with literal parameter
// substitution, falling back locale → 2-letter prefix → default →
// 2-letter prefix of default. A missing key returns the key verbatim.
type LocalizationAdapter interface {
	Localize(locale *string, key string, params map[string]string) string
}
