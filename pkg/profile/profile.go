// Package profile holds the player identity types shared by the
// authentication adapter, the cookie mint/verify path, and the login
// packet catalog.
package profile

import "github.com/google/uuid"

// Property is a single signed Mojang profile property, most commonly the
// "textures" property carrying the player's skin and cape.
type Property struct {
	Name      string `json:"name"`
	Value     string `json:"value"`
	Signature string `json:"signature,omitempty"`
}

// Profile is a resolved player identity: a UUID, a display name, optional
// signed properties and any profile actions (e.g. forced name change)
// Mojang's session service reported.
type Profile struct {
	ID             uuid.UUID  `json:"id"`
	Name           string     `json:"name"`
	Properties     []Property `json:"properties"`
	ProfileActions []string   `json:"profileActions,omitempty"`
}
