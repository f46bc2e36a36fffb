package adapters_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrayosnet/passage/pkg/adapters"
)

func TestMarshalStatusJSONNilIsNullLiteral(t *testing.T) {
	body, err := adapters.MarshalStatusJSON(nil)
	require.NoError(t, err)
	assert.Equal(t, "null", string(body))
}

func TestMarshalStatusJSONIncludesPlayersAndFavicon(t *testing.T) {
	online, max := 4, 20
	status := &adapters.ServerStatus{
		VersionName:    "1.21",
		ProtocolNumber: 767,
		PlayersOnline:  &online,
		PlayersMax:     &max,
		PlayerSample:   []adapters.PlayerSample{{Name: "Steve", ID: "00000000-0000-0000-0000-000000000000"}},
		Description:    []byte(`{"text":"lobby"}`),
		FaviconBase64:  "data:image/png;base64,AAAA",
	}
	body, err := adapters.MarshalStatusJSON(status)
	require.NoError(t, err)
	assert.Contains(t, string(body), `"protocol":767`)
	assert.Contains(t, string(body), `"online":4`)
	assert.Contains(t, string(body), `"max":20`)
	assert.Contains(t, string(body), `"Steve"`)
	assert.Contains(t, string(body), `"favicon":"data:image/png;base64,AAAA"`)
	assert.Contains(t, string(body), `"description":{"text":"lobby"}`)
}

func TestMarshalStatusJSONOmitsPlayersWhenAbsent(t *testing.T) {
	status := &adapters.ServerStatus{VersionName: "1.21", ProtocolNumber: 767}
	body, err := adapters.MarshalStatusJSON(status)
	require.NoError(t, err)
	assert.NotContains(t, string(body), `"players"`)
}
