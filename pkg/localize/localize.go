// Package localize implements the LocalizationAdapter capability with a
// YAML-backed catalog and a BCP-47 aware fallback chain.
package localize

import (
	"fmt"
	"strings"

	"golang.org/x/text/language"
	"gopkg.in/yaml.v2"
)

// Catalog maps a locale (as it appears in ClientInformation, e.g. "de_DE")
// to a flat key → message template map.
type Catalog map[string]map[string]string

// Localizer is the fixed, YAML-backed LocalizationAdapter implementation.
// It resolves locale → 2-letter prefix → defaultLocale → 2-letter prefix
// of defaultLocale, returning the key verbatim if nothing matches.
type Localizer struct {
	catalog       Catalog
	defaultLocale string
}

// New returns a Localizer serving catalog, falling back to defaultLocale
// when a requested locale (or its prefix) has no entries.
func New(catalog Catalog, defaultLocale string) *Localizer {
	return &Localizer{catalog: catalog, defaultLocale: defaultLocale}
}

// Load parses a YAML document of the form `locale: {key: template}` into a
// Localizer, matching how the fixed discovery/filter adapters load their
// own YAML-encoded configuration.
func Load(data []byte, defaultLocale string) (*Localizer, error) {
	var catalog Catalog
	if err := yaml.Unmarshal(data, &catalog); err != nil {
		return nil, fmt.Errorf("localize: parse catalog: %w", err)
	}
	return New(catalog, defaultLocale), nil
}

// Localize resolves key for locale, substituting params literally into any
// "{{name}}" placeholder. A nil locale is treated as the default locale
// outright. A missing key returns the key unchanged.
func (l *Localizer) Localize(locale *string, key string, params map[string]string) string {
	template, ok := l.lookup(locale, key)
	if !ok {
		return key
	}
	return substitute(template, params)
}

func (l *Localizer) lookup(locale *string, key string) (string, bool) {
	candidates := l.candidateLocales(locale)
	for _, candidate := range candidates {
		if messages, ok := l.catalog[candidate]; ok {
			if msg, ok := messages[key]; ok {
				return msg, true
			}
		}
	}
	return "", false
}

// candidateLocales builds the fallback chain: locale, its 2-letter
// prefix, defaultLocale, and defaultLocale's 2-letter prefix, in order,
// with duplicates removed.
func (l *Localizer) candidateLocales(locale *string) []string {
	var ordered []string
	add := func(v string) {
		if v == "" {
			return
		}
		for _, existing := range ordered {
			if existing == v {
				return
			}
		}
		ordered = append(ordered, v)
	}

	if locale != nil {
		add(*locale)
		add(languagePrefix(*locale))
	}
	add(l.defaultLocale)
	add(languagePrefix(l.defaultLocale))
	return ordered
}

// languagePrefix parses a locale tag (accepting both "de_DE" and "de-DE"
// forms) and returns its base language subtag, e.g. "de".
func languagePrefix(locale string) string {
	normalized := strings.ReplaceAll(locale, "_", "-")
	tag, err := language.Parse(normalized)
	if err != nil {
		if idx := strings.IndexAny(locale, "-_"); idx > 0 {
			return locale[:idx]
		}
		return ""
	}
	base, _ := tag.Base()
	return base.String()
}

func substitute(template string, params map[string]string) string {
	if len(params) == 0 {
		return template
	}
	out := template
	for k, v := range params {
		out = strings.ReplaceAll(out, "{{"+k+"}}", v)
	}
	return out
}
