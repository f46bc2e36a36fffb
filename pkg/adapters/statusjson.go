package adapters

import "encoding/json"

type statusVersionJSON struct {
	Name     string `json:"name"`
	Protocol int32  `json:"protocol"`
}

type statusPlayersJSON struct {
	Online int            `json:"online"`
	Max    int            `json:"max"`
	Sample []PlayerSample `json:"sample,omitempty"`
}

type statusJSON struct {
	Version        statusVersionJSON  `json:"version"`
	Players        *statusPlayersJSON `json:"players,omitempty"`
	Description    json.RawMessage    `json:"description,omitempty"`
	Favicon        string             `json:"favicon,omitempty"`
	EnforcesSecure *bool              `json:"enforcesSecureChat,omitempty"`
}

// MarshalStatusJSON renders s in the Server List Ping response shape the
// vanilla client expects. A nil s marshals to the JSON literal "null",
// which suppresses the response client-side.
func MarshalStatusJSON(s *ServerStatus) ([]byte, error) {
	if s == nil {
		return []byte("null"), nil
	}
	doc := statusJSON{
		Version: statusVersionJSON{Name: s.VersionName, Protocol: s.ProtocolNumber},
		Favicon: s.FaviconBase64,
	}
	if s.PlayersOnline != nil || s.PlayersMax != nil {
		players := statusPlayersJSON{Sample: s.PlayerSample}
		if s.PlayersOnline != nil {
			players.Online = *s.PlayersOnline
		}
		if s.PlayersMax != nil {
			players.Max = *s.PlayersMax
		}
		doc.Players = &players
	}
	if len(s.Description) > 0 {
		doc.Description = json.RawMessage(s.Description)
	}
	doc.EnforcesSecure = s.EnforcesSecure
	return json.Marshal(doc)
}
