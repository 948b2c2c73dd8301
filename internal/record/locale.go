package record

import "fmt"

// Locale is a supported content language.
type Locale string

const (
	LocaleAr Locale = "ar"
	LocaleEn Locale = "en"
	LocaleFr Locale = "fr"
)

// DefaultLocale is used when a request names no locale.
const DefaultLocale = LocaleAr

// Locales lists the supported locales, default first.
var Locales = []Locale{LocaleAr, LocaleEn, LocaleFr}

// ParseLocale validates s. The empty string yields DefaultLocale.
func ParseLocale(s string) (Locale, error) {
	if s == "" {
		return DefaultLocale, nil
	}
	for _, l := range Locales {
		if string(l) == s {
			return l, nil
		}
	}
	return "", fmt.Errorf("unsupported locale %q", s)
}

// Localized is a trilingual text value.
type Localized struct {
	Ar string `json:"ar"`
	En string `json:"en"`
	Fr string `json:"fr"`
}

// Get returns the text for locale. Missing translations fall back to
// English, then Arabic.
func (l Localized) Get(locale Locale) string {
	var v string
	switch locale {
	case LocaleAr:
		v = l.Ar
	case LocaleEn:
		v = l.En
	case LocaleFr:
		v = l.Fr
	}
	if v != "" {
		return v
	}
	if l.En != "" {
		return l.En
	}
	return l.Ar
}
