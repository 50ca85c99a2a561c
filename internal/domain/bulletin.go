package domain

import (
	"encoding/json"
	"slices"
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

// DateLayout is the ISO calendar date format used for day lists and extraction dates.
const DateLayout = "2006-01-02"

// BulletinMetadata is the header information of one bulletin edition.
type BulletinMetadata struct {
	Number      string
	Period      string
	SampleType  string
	ExtractedOn time.Time
}

// PeriodRange is an inclusive range of calendar days. Start is never after End.
type PeriodRange struct {
	Start time.Time
	End   time.Time
}

// DayList is an ordered list of ISO dates, each exactly one day after the previous.
type DayList []string

// Contains reports whether date (YYYY-MM-DD) is one of the listed days.
func (d DayList) Contains(date string) bool {
	return slices.Contains(d, date)
}

// String joins the days with ", ", the snapshot column encoding.
func (d DayList) String() string {
	return strings.Join(d, ", ")
}

// ParseDayList splits the snapshot column encoding back into a DayList.
func ParseDayList(s string) DayList {
	if strings.TrimSpace(s) == "" {
		return DayList{}
	}
	parts := strings.Split(s, ",")
	days := make(DayList, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			days = append(days, p)
		}
	}
	return days
}

// RawTable is one table detected in the document. Cells may hold several
// newline-separated entries.
type RawTable struct {
	Page int
	Rows [][]string
}

// RawTableRow holds the name and status cells of one raw table row.
type RawTableRow struct {
	Name   string
	Status string
}

// BeachRow is a cleaned (name, status token) pair. StatusCode is "P" or "I".
type BeachRow struct {
	Name       string
	StatusCode string
}

// Status is the bathing suitability of a beach.
type Status int

const (
	StatusProper Status = iota
	StatusImproper
)

const (
	labelProper   = "Própria para banho"
	labelImproper = "Imprópria para banho"
)

// ErrUnknownStatus is returned when a status token or label is not recognized.
var ErrUnknownStatus = errors.New("unknown status")

// StatusFromCode maps a bulletin status token to a Status.
func StatusFromCode(code string) (Status, error) {
	switch strings.ToUpper(strings.TrimSpace(code)) {
	case "P":
		return StatusProper, nil
	case "I":
		return StatusImproper, nil
	}
	return 0, errors.Wrapf(ErrUnknownStatus, "code %q", code)
}

// ParseStatusLabel maps a display label back to a Status.
func ParseStatusLabel(label string) (Status, error) {
	switch label {
	case labelProper:
		return StatusProper, nil
	case labelImproper:
		return StatusImproper, nil
	}
	return 0, errors.Wrapf(ErrUnknownStatus, "label %q", label)
}

// Label returns the user-facing Portuguese label.
func (s Status) Label() string {
	if s == StatusImproper {
		return labelImproper
	}
	return labelProper
}

func (s Status) String() string { return s.Label() }

func (s Status) MarshalText() ([]byte, error) { return []byte(s.Label()), nil }

func (s *Status) UnmarshalText(b []byte) error {
	v, err := ParseStatusLabel(string(b))
	if err != nil {
		return err
	}
	*s = v
	return nil
}

// Zone is a coarse region of the Fortaleza shoreline.
type Zone int

const (
	ZoneUnknown Zone = iota
	ZoneEast
	ZoneCentral
	ZoneWest
)

// ErrUnknownZone is returned when a zone label is not recognized.
var ErrUnknownZone = errors.New("unknown zone")

var zoneLabels = map[Zone]string{
	ZoneUnknown: "Desconhecida",
	ZoneEast:    "Leste",
	ZoneCentral: "Centro",
	ZoneWest:    "Oeste",
}

// Label returns the Portuguese zone name used in snapshots and the API.
func (z Zone) Label() string {
	if l, ok := zoneLabels[z]; ok {
		return l
	}
	return zoneLabels[ZoneUnknown]
}

func (z Zone) String() string { return z.Label() }

// ParseZoneLabel maps a label back to a Zone. Unrecognized labels yield ZoneUnknown and false.
func ParseZoneLabel(label string) (Zone, bool) {
	for z, l := range zoneLabels {
		if l == label {
			return z, true
		}
	}
	return ZoneUnknown, false
}

func (z Zone) MarshalText() ([]byte, error) { return []byte(z.Label()), nil }

func (z *Zone) UnmarshalText(b []byte) error {
	v, ok := ParseZoneLabel(string(b))
	if !ok {
		return errors.Wrapf(ErrUnknownZone, "label %q", b)
	}
	*z = v
	return nil
}

// BeachRecord is one row of the published snapshot.
type BeachRecord struct {
	ID             int
	Name           string
	Status         Status
	Zone           Zone
	Period         string
	DaysInPeriod   DayList
	BulletinNumber string
	SampleType     string
	ExtractedOn    time.Time
}

// beachRecordJSON carries the snapshot column names onto the wire.
type beachRecordJSON struct {
	ID             int     `json:"id"`
	Name           string  `json:"Nome"`
	Status         Status  `json:"Status"`
	Zone           Zone    `json:"Zona"`
	Period         string  `json:"Periodo"`
	DaysInPeriod   DayList `json:"Dias_Periodo"`
	BulletinNumber string  `json:"Numero_Boletim"`
	SampleType     string  `json:"Tipos_Amostragem"`
	ExtractedOn    string  `json:"Data_Extracao"`
}

func (r BeachRecord) MarshalJSON() ([]byte, error) {
	days := r.DaysInPeriod
	if days == nil {
		days = DayList{}
	}
	return json.Marshal(beachRecordJSON{
		ID:             r.ID,
		Name:           r.Name,
		Status:         r.Status,
		Zone:           r.Zone,
		Period:         r.Period,
		DaysInPeriod:   days,
		BulletinNumber: r.BulletinNumber,
		SampleType:     r.SampleType,
		ExtractedOn:    r.ExtractedOn.Format(DateLayout),
	})
}

func (r *BeachRecord) UnmarshalJSON(b []byte) error {
	var w beachRecordJSON
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	extracted, err := time.Parse(DateLayout, w.ExtractedOn)
	if err != nil {
		return errors.Wrap(err, "parse Data_Extracao")
	}
	*r = BeachRecord{
		ID:             w.ID,
		Name:           w.Name,
		Status:         w.Status,
		Zone:           w.Zone,
		Period:         w.Period,
		DaysInPeriod:   w.DaysInPeriod,
		BulletinNumber: w.BulletinNumber,
		SampleType:     w.SampleType,
		ExtractedOn:    extracted,
	}
	return nil
}

// Coordinates is a WGS84 point.
type Coordinates struct {
	Lat float64
	Lon float64
}
