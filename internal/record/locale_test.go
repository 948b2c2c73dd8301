package record

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalized_Get(t *testing.T) {
	full := Localized{Ar: "بيروت", En: "Beirut", Fr: "Beyrouth"}
	assert.Equal(t, "بيروت", full.Get(LocaleAr))
	assert.Equal(t, "Beirut", full.Get(LocaleEn))
	assert.Equal(t, "Beyrouth", full.Get(LocaleFr))

	noFrench := Localized{Ar: "صيدا", En: "Saida"}
	assert.Equal(t, "Saida", noFrench.Get(LocaleFr))

	arabicOnly := Localized{Ar: "صور"}
	assert.Equal(t, "صور", arabicOnly.Get(LocaleFr))
	assert.Equal(t, "صور", arabicOnly.Get(LocaleEn))
}

func TestParseLocale(t *testing.T) {
	l, err := ParseLocale("")
	require.NoError(t, err)
	assert.Equal(t, LocaleAr, l)

	l, err = ParseLocale("fr")
	require.NoError(t, err)
	assert.Equal(t, LocaleFr, l)

	_, err = ParseLocale("de")
	assert.Error(t, err)
}
