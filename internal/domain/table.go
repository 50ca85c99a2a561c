package domain

import (
	"strings"
	"unicode/utf8"
)

// noiseKeywords are lowercase fragments of header rows, section titles and
// captions that leak into table cells.
var noiseKeywords = []string{"nome", "status", "trecho", "ponto", "boletim", "semace"}

const minPairLength = 3

// NormalizeReport summarizes one normalization pass.
type NormalizeReport struct {
	Tables    int // tables received
	Discarded int // tables with fewer than two columns
	Noise     int // pairs dropped by the noise filter
	Truncated int // surplus names or statuses dropped when both cells had entries
	// Exhausted is set when no row survived.
	Exhausted bool
}

// NormalizeTables turns detected tables into (name, status) rows in
// document order.
func NormalizeTables(tables []RawTable) ([]BeachRow, NormalizeReport) {
	report := NormalizeReport{Tables: len(tables)}
	var rows []BeachRow

	for _, t := range tables {
		if len(t.Rows) == 0 || len(t.Rows[0]) < 2 {
			report.Discarded++
			continue
		}
		for _, cells := range t.Rows {
			raw := RawTableRow{}
			if len(cells) > 0 {
				raw.Name = cells[0]
			}
			if len(cells) > 1 {
				raw.Status = cells[1]
			}
			rows = append(rows, normalizeRow(raw, &report)...)
		}
	}

	report.Exhausted = len(rows) == 0
	return rows, report
}

func normalizeRow(raw RawTableRow, report *NormalizeReport) []BeachRow {
	names := splitEntries(raw.Name)
	statuses := statusTokens(raw.Status)

	var pairs []BeachRow
	switch {
	case len(statuses) == 1 && len(names) > 1:
		for _, n := range names {
			pairs = append(pairs, BeachRow{Name: n, StatusCode: statuses[0]})
		}
	default:
		n := min(len(names), len(statuses))
		if n > 0 {
			report.Truncated += len(names) + len(statuses) - 2*n
		}
		for i := range n {
			pairs = append(pairs, BeachRow{Name: names[i], StatusCode: statuses[i]})
		}
	}

	out := pairs[:0]
	for _, p := range pairs {
		if isNoise(p) {
			report.Noise++
			continue
		}
		p.Name = collapseBlanks(p.Name)
		out = append(out, p)
	}
	return out
}

// splitEntries splits a cell on newlines, trimming entries and dropping empties.
func splitEntries(cell string) []string {
	var out []string
	for _, line := range strings.Split(cell, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			out = append(out, line)
		}
	}
	return out
}

func statusTokens(cell string) []string {
	var out []string
	for _, e := range splitEntries(cell) {
		if tok := strings.ToUpper(e); tok == "P" || tok == "I" {
			out = append(out, tok)
		}
	}
	return out
}

func isNoise(p BeachRow) bool {
	combined := strings.ToLower(p.Name + p.StatusCode)
	if utf8.RuneCountInString(combined) < minPairLength {
		return true
	}
	for _, kw := range noiseKeywords {
		if strings.Contains(combined, kw) {
			return true
		}
	}
	return false
}

// collapseBlanks replaces runs of spaces and tabs with a single space.
func collapseBlanks(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	blank := false
	for _, r := range s {
		if r == ' ' || r == '\t' {
			if !blank {
				b.WriteByte(' ')
			}
			blank = true
			continue
		}
		blank = false
		b.WriteRune(r)
	}
	return b.String()
}
