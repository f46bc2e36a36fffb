// Package cookie mints and verifies the two client-resident cookies the
// login and configuration phases exchange: the signed Auth cookie and
// the unsigned Session cookie.
package cookie

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/scrayosnet/passage/pkg/crypto"
	"github.com/scrayosnet/passage/pkg/profile"
)

// Well-known cookie keys exchanged via CookieRequest/CookieResponse.
const (
	AuthKey    = "passage:authentication"
	SessionKey = "passage:session"

	// MaxAuthCookieSize bounds the signed authentication cookie payload.
	MaxAuthCookieSize = 5 * 1024
)

// Auth is the mint/verify-only, never-stored authentication cookie.
type Auth struct {
	Timestamp         int64              `json:"timestamp"`
	ClientAddr        string             `json:"client_addr"`
	UserName          string             `json:"user_name"`
	UserID            uuid.UUID          `json:"user_id"`
	Target            *string            `json:"target,omitempty"`
	ProfileProperties []profile.Property `json:"profile_properties"`
	Extra             map[string]string  `json:"extra"`
}

// Sign JSON-encodes a and returns it signed with secret, ready to be sent
// as a StoreCookie payload.
func (a Auth) Sign(secret []byte) ([]byte, error) {
	body, err := json.Marshal(a)
	if err != nil {
		return nil, fmt.Errorf("cookie: marshal auth cookie: %w", err)
	}
	return crypto.Sign(body, secret), nil
}

// VerifyAuth checks signed's HMAC framing against secret and, if valid,
// JSON-decodes the inner Auth cookie.
func VerifyAuth(signed, secret []byte) (Auth, bool) {
	ok, body := crypto.Verify(signed, secret)
	if !ok {
		return Auth{}, false
	}
	var a Auth
	if err := json.Unmarshal(body, &a); err != nil {
		return Auth{}, false
	}
	return a, true
}

// Expired reports whether the cookie's timestamp plus expiry has already
// elapsed as of now.
func (a Auth) Expired(expiry time.Duration, now time.Time) bool {
	return time.Unix(a.Timestamp, 0).Add(expiry).Before(now)
}

// Session is the unsigned, client-resident session cookie used to detect
// whether a client has previously passed through this router.
type Session struct {
	ID            uuid.UUID `json:"id"`
	ServerAddress string    `json:"server_address"`
	ServerPort    uint16    `json:"server_port"`
	TraceID       *string   `json:"trace_id,omitempty"`
}

// Encode JSON-encodes the session cookie for a StoreCookie payload.
func (s Session) Encode() ([]byte, error) {
	body, err := json.Marshal(s)
	if err != nil {
		return nil, fmt.Errorf("cookie: marshal session cookie: %w", err)
	}
	return body, nil
}

// DecodeSession parses a CookieResponse payload into a Session cookie.
func DecodeSession(payload []byte) (Session, error) {
	var s Session
	if err := json.Unmarshal(payload, &s); err != nil {
		return Session{}, fmt.Errorf("cookie: unmarshal session cookie: %w", err)
	}
	return s, nil
}
