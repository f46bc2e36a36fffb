package cookie_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrayosnet/passage/pkg/cookie"
	"github.com/scrayosnet/passage/pkg/profile"
)

func TestAuthCookieSignVerifyRoundTrip(t *testing.T) {
	secret := []byte("secret")
	target := "lobby-1"
	a := cookie.Auth{
		Timestamp:         time.Now().Unix(),
		ClientAddr:        "127.0.0.1:25564",
		UserName:          "Hydrofin",
		UserID:            uuid.MustParse("09879557-e479-45a9-b434-a56377674627"),
		Target:            &target,
		ProfileProperties: []profile.Property{},
		Extra:             map[string]string{},
	}

	signed, err := a.Sign(secret)
	require.NoError(t, err)
	assert.LessOrEqual(t, len(signed), cookie.MaxAuthCookieSize)

	got, ok := cookie.VerifyAuth(signed, secret)
	require.True(t, ok)
	assert.Equal(t, a.UserName, got.UserName)
	assert.Equal(t, a.UserID, got.UserID)
	assert.Equal(t, *a.Target, *got.Target)
}

func TestAuthCookieVerifyRejectsWrongSecret(t *testing.T) {
	a := cookie.Auth{UserName: "Hydrofin", Extra: map[string]string{}}
	signed, err := a.Sign([]byte("secret-one"))
	require.NoError(t, err)

	_, ok := cookie.VerifyAuth(signed, []byte("secret-two"))
	assert.False(t, ok)
}

func TestAuthCookieExpired(t *testing.T) {
	now := time.Now()
	a := cookie.Auth{Timestamp: now.Add(-2 * time.Minute).Unix()}

	assert.True(t, a.Expired(1*time.Minute, now))
	assert.False(t, a.Expired(5*time.Minute, now))
}

func TestSessionCookieRoundTrip(t *testing.T) {
	trace := "trace-abc"
	s := cookie.Session{
		ID:            uuid.New(),
		ServerAddress: "play.example.com",
		ServerPort:    25565,
		TraceID:       &trace,
	}

	encoded, err := s.Encode()
	require.NoError(t, err)

	got, err := cookie.DecodeSession(encoded)
	require.NoError(t, err)
	assert.Equal(t, s.ID, got.ID)
	assert.Equal(t, s.ServerAddress, got.ServerAddress)
	assert.Equal(t, s.ServerPort, got.ServerPort)
	require.NotNil(t, got.TraceID)
	assert.Equal(t, trace, *got.TraceID)
}
