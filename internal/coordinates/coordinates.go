// Package coordinates maps bulletin beach codes to sampling-point coordinates.
package coordinates

import (
	_ "embed"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
	"github.com/couchcryptid/beach-bulletin-etl/internal/domain"
	"gopkg.in/yaml.v3"
)

//go:embed beaches.yaml
var beachesYAML []byte

// Table resolves beach codes to coordinates.
type Table struct {
	points map[string]domain.Coordinates
}

// Default returns the embedded Fortaleza table. It panics if the embedded
// file is invalid.
func Default() *Table {
	t, err := Parse(beachesYAML)
	if err != nil {
		panic(err)
	}
	return t
}

// Parse reads a table grouped by zone: zone -> code -> "lat, lon".
func Parse(data []byte) (*Table, error) {
	var groups map[string]map[string]string
	if err := yaml.Unmarshal(data, &groups); err != nil {
		return nil, errors.Wrap(err, "decode coordinate table")
	}

	t := &Table{points: make(map[string]domain.Coordinates)}
	for zone, codes := range groups {
		for code, value := range codes {
			c, err := ParsePoint(value)
			if err != nil {
				return nil, errors.Wrapf(err, "%s/%s", zone, code)
			}
			key := strings.ToUpper(code)
			if _, dup := t.points[key]; dup {
				return nil, errors.Newf("duplicate beach code %s", key)
			}
			t.points[key] = c
		}
	}
	return t, nil
}

// ParsePoint parses "lat, lon".
func ParsePoint(s string) (domain.Coordinates, error) {
	lat, lon, ok := strings.Cut(s, ",")
	if !ok {
		return domain.Coordinates{}, errors.Newf("point %q: expected \"lat, lon\"", s)
	}
	la, err := strconv.ParseFloat(strings.TrimSpace(lat), 64)
	if err != nil {
		return domain.Coordinates{}, errors.Wrapf(err, "point %q: latitude", s)
	}
	lo, err := strconv.ParseFloat(strings.TrimSpace(lon), 64)
	if err != nil {
		return domain.Coordinates{}, errors.Wrapf(err, "point %q: longitude", s)
	}
	if la < -90 || la > 90 || lo < -180 || lo > 180 {
		return domain.Coordinates{}, errors.Newf("point %q: out of range", s)
	}
	return domain.Coordinates{Lat: la, Lon: lo}, nil
}

// BeachCode returns the code that opens a bulletin beach name: its first
// three characters, trimmed and uppercased.
func BeachCode(name string) string {
	r := []rune(name)
	if len(r) > 3 {
		r = r[:3]
	}
	return strings.ToUpper(strings.TrimSpace(string(r)))
}

// Lookup returns the coordinates for a beach name.
func (t *Table) Lookup(name string) (domain.Coordinates, error) {
	code := BeachCode(name)
	if code == "" {
		return domain.Coordinates{}, errors.Wrap(domain.ErrCoordinatesUnavailable, "empty beach code")
	}
	c, ok := t.points[code]
	if !ok {
		return domain.Coordinates{}, errors.Wrapf(domain.ErrCoordinatesUnavailable, "beach code %s", code)
	}
	return c, nil
}

// Has reports whether the beach name resolves to coordinates.
func (t *Table) Has(name string) bool {
	_, ok := t.points[BeachCode(name)]
	return ok
}

// Len returns the number of known beach codes.
func (t *Table) Len() int {
	return len(t.points)
}
