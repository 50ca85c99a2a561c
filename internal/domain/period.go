package domain

import (
	"strings"
	"time"

	"github.com/cockroachdb/errors"
)

const (
	bulletinDateLayout = "02/01/2006"
	periodSeparator    = " a "
)

// ParsePeriod parses "DD/MM/YYYY a DD/MM/YYYY" into an inclusive range.
func ParsePeriod(s string) (PeriodRange, error) {
	parts := strings.Split(s, periodSeparator)
	if len(parts) != 2 {
		return PeriodRange{}, errors.Wrapf(ErrPeriodMalformed, "%q: expected two dates", s)
	}

	start, err := time.Parse(bulletinDateLayout, strings.TrimSpace(parts[0]))
	if err != nil {
		return PeriodRange{}, errors.Wrapf(ErrPeriodMalformed, "%q: start date: %v", s, err)
	}
	end, err := time.Parse(bulletinDateLayout, strings.TrimSpace(parts[1]))
	if err != nil {
		return PeriodRange{}, errors.Wrapf(ErrPeriodMalformed, "%q: end date: %v", s, err)
	}
	if end.Before(start) {
		return PeriodRange{}, errors.Wrapf(ErrPeriodMalformed, "%q: end before start", s)
	}
	return PeriodRange{Start: start, End: end}, nil
}

// Days lists every date of the range, both ends included.
func (r PeriodRange) Days() DayList {
	var days DayList
	for d := r.Start; !d.After(r.End); d = d.AddDate(0, 0, 1) {
		days = append(days, d.Format(DateLayout))
	}
	return days
}

// ExpandPeriod returns the ISO dates covered by a bulletin period. Any parse
// failure yields an empty list.
func ExpandPeriod(s string) DayList {
	r, err := ParsePeriod(s)
	if err != nil {
		return DayList{}
	}
	return r.Days()
}
