package term

import (
	"errors"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// Date is a civil calendar date with no time-of-day component. It is backed
// by a midnight-UTC time.Time so values are directly comparable with == and
// usable as map keys.
type Date struct {
	time.Time
}

// NewDate builds a Date for the given year/month/day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates a timestamp to its civil date.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// ParseDate parses an ISO "2006-01-02" scalar.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q: %w", s, err)
	}
	return DateOf(t), nil
}

// AddDays returns the date n days later (earlier for negative n).
func (d Date) AddDays(n int) Date {
	return Date{d.Time.AddDate(0, 0, n)}
}

// Weekday returns the canonical Monday=0 weekday of the date.
func (d Date) Weekday() Weekday {
	return WeekdayOf(d.Time.Weekday())
}

// At returns the timestamp at the given minutes-from-midnight offset on this
// date. Timestamps stay timezone-naive (UTC wall clock); the term's timezone
// is applied only by the ICS encoder.
func (d Date) At(minutes int) time.Time {
	return d.Time.Add(time.Duration(minutes) * time.Minute)
}

func (d Date) String() string {
	return d.Format("2006-01-02")
}

// IsZero reports whether the date is the zero value.
func (d Date) IsZero() bool {
	return d.Time.IsZero()
}

func (d *Date) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a date scalar", value.Line)
	}
	parsed, err := ParseDate(value.Value)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

func (d Date) MarshalYAML() (any, error) {
	return d.String(), nil
}

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.String() + `"`), nil
}

// DateTime is a timezone-naive local timestamp, minute precision in the
// declaration ("2006-01-02 15:04"). Stored as UTC wall clock; see Date.At.
type DateTime struct {
	time.Time
}

var dateTimeLayouts = []string{
	"2006-01-02 15:04",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseDateTime parses any of the accepted declaration timestamp layouts.
func ParseDateTime(s string) (DateTime, error) {
	for _, layout := range dateTimeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return DateTime{t.UTC()}, nil
		}
	}
	return DateTime{}, fmt.Errorf("invalid timestamp %q", s)
}

// Date truncates the timestamp to its civil date.
func (dt DateTime) Date() Date {
	return DateOf(dt.Time)
}

func (dt *DateTime) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: expected a timestamp scalar", value.Line)
	}
	parsed, err := ParseDateTime(value.Value)
	if err != nil {
		return err
	}
	*dt = parsed
	return nil
}

func (dt DateTime) MarshalYAML() (any, error) {
	return dt.Format("2006-01-02 15:04"), nil
}

func (dt DateTime) MarshalJSON() ([]byte, error) {
	return []byte(`"` + dt.Format("2006-01-02 15:04") + `"`), nil
}

// DateSpec is a special-date matching predicate: exactly one of a single
// date, an inclusive date range, or an explicit date set. The YAML node kind
// selects the variant (scalar / mapping / sequence).
type DateSpec struct {
	Date  *Date
	Start *Date
	End   *Date
	Dates []Date
}

func (s *DateSpec) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		var d Date
		if err := value.Decode(&d); err != nil {
			return err
		}
		s.Date = &d
		return nil

	case yaml.MappingNode:
		var r struct {
			Start Date `yaml:"start"`
			End   Date `yaml:"end"`
		}
		if err := value.Decode(&r); err != nil {
			return err
		}
		if r.Start.IsZero() || r.End.IsZero() {
			return fmt.Errorf("line %d: date range needs both start and end", value.Line)
		}
		s.Start, s.End = &r.Start, &r.End
		return nil

	case yaml.SequenceNode:
		return value.Decode(&s.Dates)
	}
	return fmt.Errorf("line %d: unsupported date spec", value.Line)
}

// Matches reports whether the spec covers the given date. Ranges are
// inclusive on both ends.
func (s DateSpec) Matches(d Date) bool {
	switch {
	case s.Start != nil && s.End != nil:
		return !s.Start.After(d.Time) && !s.End.Before(d.Time)
	case len(s.Dates) > 0:
		for _, sd := range s.Dates {
			if sd == d {
				return true
			}
		}
		return false
	case s.Date != nil:
		return *s.Date == d
	}
	return false
}

// errNotASingleDate marks a DateSpec used where a plain date is required.
var errNotASingleDate = errors.New("not a single date")

// Single returns the spec's date when it is the single-date variant.
func (s DateSpec) Single() (Date, error) {
	if s.Date == nil {
		return Date{}, errNotASingleDate
	}
	return *s.Date, nil
}
