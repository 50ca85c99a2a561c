package pdf

import (
	"cmp"
	"math"
	"slices"
	"strings"

	"github.com/couchcryptid/beach-bulletin-etl/internal/domain"
)

// Layout tuning, in multiples of the glyph font size.
const (
	defaultFontSize = 10.0
	lineTolerance   = 0.4 // same baseline
	wordGap         = 0.2 // inserts a space
	cellGap         = 1.5 // starts a new cell
	columnTolerance = 2.0 // cell start left of the first column still aligns
	maxRowGap       = 3.0 // vertical gap that ends a table
)

// glyph is one positioned text run. Y grows upwards, as in PDF user space.
type glyph struct {
	x, y, w, size float64
	s             string
}

type cell struct {
	x0, x1 float64
	text   string
}

type line struct {
	y     float64
	size  float64
	cells []cell
}

func fontSize(s float64) float64 {
	if s <= 0 {
		return defaultFontSize
	}
	return s
}

// buildLines clusters glyphs into lines, top to bottom, and each line into
// cells separated by wide horizontal gaps.
func buildLines(glyphs []glyph) []line {
	if len(glyphs) == 0 {
		return nil
	}
	sorted := slices.Clone(glyphs)
	slices.SortStableFunc(sorted, func(a, b glyph) int {
		return cmp.Compare(b.y, a.y)
	})

	var groups [][]glyph
	for _, g := range sorted {
		n := len(groups)
		if n > 0 {
			ref := groups[n-1][0]
			if math.Abs(ref.y-g.y) <= lineTolerance*fontSize(ref.size) {
				groups[n-1] = append(groups[n-1], g)
				continue
			}
		}
		groups = append(groups, []glyph{g})
	}

	lines := make([]line, 0, len(groups))
	for _, gs := range groups {
		if ln, ok := buildLine(gs); ok {
			lines = append(lines, ln)
		}
	}
	return lines
}

func buildLine(gs []glyph) (line, bool) {
	slices.SortStableFunc(gs, func(a, b glyph) int { return cmp.Compare(a.x, b.x) })

	ln := line{y: gs[0].y}
	var b strings.Builder
	var cur cell
	started := false

	flush := func() {
		if text := strings.TrimSpace(b.String()); text != "" {
			cur.text = text
			ln.cells = append(ln.cells, cur)
		}
		b.Reset()
		started = false
	}

	prevEnd := 0.0
	for _, g := range gs {
		size := fontSize(g.size)
		ln.size = max(ln.size, size)
		if started {
			gap := g.x - prevEnd
			switch {
			case gap > cellGap*size:
				flush()
			case gap > wordGap*size && g.s != " " && !strings.HasSuffix(b.String(), " "):
				b.WriteByte(' ')
			}
		}
		if !started {
			cur = cell{x0: g.x}
			started = true
		}
		b.WriteString(g.s)
		prevEnd = g.x + g.w
		cur.x1 = prevEnd
	}
	flush()

	return ln, len(ln.cells) > 0
}

// detectTables finds table regions in the lines of one page.
//
// A region starts at a line with at least two cells; the x positions of that
// line's cells become the column anchors. Following lines belong to the region
// while they stay vertically close and start at or right of the first column.
// Status cells often sit vertically centred beside several names, so each name
// line is attached to the nearest status line rather than to its own line.
func detectTables(page int, lines []line) []domain.RawTable {
	var tables []domain.RawTable
	var region *tableRegion

	for _, ln := range lines {
		if region != nil && !region.accepts(ln) {
			tables = append(tables, region.table(page))
			region = nil
		}
		if region == nil {
			if len(ln.cells) >= 2 {
				region = newTableRegion(ln)
			}
			continue
		}
		region.add(ln)
	}
	if region != nil {
		tables = append(tables, region.table(page))
	}
	return tables
}

type tableRegion struct {
	anchors []float64
	lastY   float64
	size    float64
	lines   []placedLine
}

// placedLine is a line whose cells were assigned to columns.
type placedLine struct {
	y    float64
	cols []string
}

func newTableRegion(first line) *tableRegion {
	r := &tableRegion{size: first.size}
	for _, c := range first.cells {
		r.anchors = append(r.anchors, c.x0)
	}
	r.add(first)
	return r
}

func (r *tableRegion) accepts(ln line) bool {
	if r.lastY-ln.y > maxRowGap*max(r.size, ln.size) {
		return false
	}
	return ln.cells[0].x0 >= r.anchors[0]-columnTolerance*r.size
}

func (r *tableRegion) add(ln line) {
	cols := make([]string, len(r.anchors))
	for _, c := range ln.cells {
		i := r.column(c.x0)
		if cols[i] != "" {
			cols[i] += " "
		}
		cols[i] += c.text
	}
	r.lines = append(r.lines, placedLine{y: ln.y, cols: cols})
	r.lastY = ln.y
}

// column returns the rightmost anchor the cell start reaches, with tolerance.
func (r *tableRegion) column(x float64) int {
	tol := columnTolerance * r.size
	col := 0
	for i, a := range r.anchors {
		if x+tol >= a {
			col = i
		}
	}
	return col
}

func isStatusToken(s string) bool {
	s = strings.ToUpper(strings.TrimSpace(s))
	return s == "P" || s == "I"
}

// table pairs each name line with the nearest status line and emits rows in
// top-to-bottom order. Lines whose status column holds other text (header
// rows, notes) are emitted as they are.
func (r *tableRegion) table(page int) domain.RawTable {
	type row struct {
		y     float64
		cols  []string
		names []string
	}

	var rows []*row
	var statusRows []*row
	for _, pl := range r.lines {
		switch {
		case isStatusToken(pl.cols[1]):
			sr := &row{y: pl.y, cols: pl.cols}
			rows = append(rows, sr)
			statusRows = append(statusRows, sr)
		case pl.cols[1] != "":
			rows = append(rows, &row{y: pl.y, cols: pl.cols, names: []string{pl.cols[0]}})
		}
	}

	for _, pl := range r.lines {
		if pl.cols[0] == "" || (pl.cols[1] != "" && !isStatusToken(pl.cols[1])) {
			continue
		}
		var nearest *row
		best := math.Inf(1)
		for _, sr := range statusRows {
			// Strict comparison keeps the upper status on ties.
			if d := math.Abs(sr.y - pl.y); d < best {
				best, nearest = d, sr
			}
		}
		if nearest == nil {
			rows = append(rows, &row{y: pl.y, cols: pl.cols, names: []string{pl.cols[0]}})
			continue
		}
		nearest.names = append(nearest.names, pl.cols[0])
	}

	slices.SortStableFunc(rows, func(a, b *row) int { return cmp.Compare(b.y, a.y) })

	out := domain.RawTable{Page: page}
	for _, rw := range rows {
		cols := slices.Clone(rw.cols)
		cols[0] = strings.Join(rw.names, "\n")
		out.Rows = append(out.Rows, cols)
	}
	return out
}
