package domain

import (
	"strings"
	"unicode/utf8"
)

// Header labels in document order.
const (
	markerNumber     = "Boletim nº"
	markerPeriod     = "Período:"
	markerSampleType = "Tipos de Amostragem:"
)

var headerMarkers = []string{markerNumber, markerPeriod, markerSampleType}

// ParseHeader reads the bulletin number, period and sample type from the text
// of the first page. When the labels are missing or out of order the returned
// metadata has empty fields and the error is ErrHeaderDegraded; ExtractedOn is
// always set.
func ParseHeader(firstPage string) (BulletinMetadata, error) {
	meta := BulletinMetadata{ExtractedOn: Today()}

	fields, ok := newMarkerScanner(headerMarkers).scan(collapseWhitespace(firstPage))
	if !ok {
		return meta, ErrHeaderDegraded
	}

	meta.Number = fields[0]
	meta.Period = fields[1]
	meta.SampleType = untilSentenceEnd(fields[2])
	return meta, nil
}

// markerScanner splits text into the values that follow each of a fixed
// sequence of labels.
type markerScanner struct {
	markers []string
}

func newMarkerScanner(markers []string) markerScanner {
	return markerScanner{markers: markers}
}

// scan locates the first occurrence of every marker, ignoring case. All
// markers must be present and strictly ordered; each value is the trimmed text
// between its marker and the next one, the last value running to the end of
// text.
func (s markerScanner) scan(text string) ([]string, bool) {
	starts := make([]int, len(s.markers))
	ends := make([]int, len(s.markers))
	for i, m := range s.markers {
		start, end := indexFold(text, m)
		if start < 0 {
			return nil, false
		}
		if i > 0 && start < ends[i-1] {
			return nil, false
		}
		starts[i], ends[i] = start, end
	}

	values := make([]string, len(s.markers))
	for i := range s.markers {
		to := len(text)
		if i+1 < len(starts) {
			to = starts[i+1]
		}
		values[i] = strings.TrimSpace(text[ends[i]:to])
	}
	return values, true
}

// indexFold returns the byte span of the first case-insensitive match of
// marker in text, or -1, -1. The span is measured in text, whose encoding of
// the match may be longer or shorter than marker.
func indexFold(text, marker string) (int, int) {
	for i := range text {
		if n, ok := prefixFold(text[i:], marker); ok {
			return i, i + n
		}
	}
	return -1, -1
}

func prefixFold(text, prefix string) (int, bool) {
	n := 0
	for _, want := range prefix {
		if n >= len(text) {
			return 0, false
		}
		got, size := utf8.DecodeRuneInString(text[n:])
		if got != want && !strings.EqualFold(string(got), string(want)) {
			return 0, false
		}
		n += size
	}
	return n, true
}

func untilSentenceEnd(s string) string {
	if i := strings.Index(s, "."); i >= 0 {
		s = s[:i]
	}
	return strings.TrimSpace(s)
}

func collapseWhitespace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

