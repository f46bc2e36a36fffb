package localize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/scrayosnet/passage/pkg/localize"
)

func catalog() localize.Catalog {
	return localize.Catalog{
		"de_DE": {"disconnect_no_target": "Kein Ziel verfügbar"},
		"de":    {"disconnect_timeout": "Zeitüberschreitung (allgemein)"},
		"en_US": {
			"disconnect_no_target": "No target available",
			"disconnect_timeout":   "Timed out, {{reason}}",
		},
	}
}

func TestLocalizeExactLocaleMatch(t *testing.T) {
	l := localize.New(catalog(), "en_US")
	de := "de_DE"
	got := l.Localize(&de, "disconnect_no_target", nil)
	assert.Equal(t, "Kein Ziel verfügbar", got)
}

func TestLocalizeFallsBackToLanguagePrefix(t *testing.T) {
	l := localize.New(catalog(), "en_US")
	deAT := "de_AT"
	got := l.Localize(&deAT, "disconnect_timeout", nil)
	assert.Equal(t, "Zeitüberschreitung (allgemein)", got)
}

func TestLocalizeFallsBackToDefault(t *testing.T) {
	l := localize.New(catalog(), "en_US")
	fr := "fr_FR"
	got := l.Localize(&fr, "disconnect_no_target", nil)
	assert.Equal(t, "No target available", got)
}

func TestLocalizeMissingKeyReturnsKeyVerbatim(t *testing.T) {
	l := localize.New(catalog(), "en_US")
	got := l.Localize(nil, "does_not_exist", nil)
	assert.Equal(t, "does_not_exist", got)
}

func TestLocalizeSubstitutesParams(t *testing.T) {
	l := localize.New(catalog(), "en_US")
	got := l.Localize(nil, "disconnect_timeout", map[string]string{"reason": "no keep-alive"})
	assert.Equal(t, "Timed out, no keep-alive", got)
}

func TestLoadParsesYAML(t *testing.T) {
	data := []byte("en_US:\n  greeting: hello\n")
	l, err := localize.Load(data, "en_US")
	require.NoError(t, err)
	assert.Equal(t, "hello", l.Localize(nil, "greeting", nil))
}
