package domain

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Zone keywords, accent-folded and lowercase. Checked East, Central, West.
var zoneKeywords = []struct {
	zone     Zone
	keywords []string
}{
	{ZoneEast, []string{
		"praia do futuro", "futuro", "caca e pesca", "sabiaguaba",
		"abreulandia", "serviluz", "titanzinho", "cais do porto",
	}},
	{ZoneCentral, []string{
		"mucuripe", "meireles", "volta da jurema", "iracema", "beira mar",
		"poco da draga", "estressados", "centro",
	}},
	{ZoneWest, []string{
		"barra do ceara", "pirambu", "cristo redentor", "leste oeste",
		"formosa", "jacarecanga", "vila do mar", "goiabeiras", "colonia",
	}},
}

// ClassifyZone assigns a beach name to a shoreline zone by keyword.
func ClassifyZone(name string) Zone {
	folded := foldAccents(strings.ToLower(name))
	for _, group := range zoneKeywords {
		for _, kw := range group.keywords {
			if strings.Contains(folded, kw) {
				return group.zone
			}
		}
	}
	return ZoneUnknown
}

// foldAccents strips combining marks after canonical decomposition, so
// "Ceará" and "Ceara" compare equal.
func foldAccents(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		return s
	}
	return out
}
