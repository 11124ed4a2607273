package model

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"coursecal/internal/term"
)

// Kind is the closed set of event kinds the encoders dispatch on.
type Kind int

const (
	KindLecture Kind = iota
	KindLab
	KindExam
	KindSpecial
	KindOfficeHours
	KindAssignment
)

func (k Kind) String() string {
	switch k {
	case KindLecture:
		return "lecture"
	case KindLab:
		return "lab"
	case KindExam:
		return "exam"
	case KindSpecial:
		return "special"
	case KindOfficeHours:
		return "oh"
	case KindAssignment:
		return "assignment"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// KindForSectionType maps a section's type tag to an event kind. Lectures
// keep their own kind; every other meeting type renders as a lab.
func KindForSectionType(t string) Kind {
	if t == "lecture" {
		return KindLecture
	}
	return KindLab
}

// ErrMissingEventTime is returned when synthesis produces an event with
// neither an all-day date nor a start/end window. It indicates a declaration
// bug and aborts the run; no partial calendar is returned.
var ErrMissingEventTime = errors.New("event without a date or time window")

// Event is one synthesized calendar entry. Exactly one of Day (all-day) or
// From/To (timed window) is set; Validate enforces that.
type Event struct {
	Kind Kind

	// Titles holds one or more simultaneous titles. An empty single title is
	// a deliberately blank (held) content slot.
	Titles []string

	// Day is set for all-day events (special dates).
	Day term.Date

	// From/To bound timed events.
	From time.Time
	To   time.Time

	Where string

	// Section and Group tag the event for styling and filtering; Slug is
	// the assignment key the event was generated from.
	Section string
	Group   string
	Slug    string

	Hide  bool
	Link  string
	Video string
	Audio string

	Reading []term.Reading
}

// AllDay reports whether the event is an all-day entry.
func (e *Event) AllDay() bool {
	return !e.Day.IsZero()
}

// Title joins simultaneous titles with the given separator.
func (e *Event) Title(sep string) string {
	return strings.Join(e.Titles, sep)
}

// Validate checks the one timing invariant every event must satisfy.
func (e *Event) Validate() error {
	if e.AllDay() {
		return nil
	}
	if e.From.IsZero() || e.To.IsZero() {
		return fmt.Errorf("%w: %q", ErrMissingEventTime, e.Title(" and "))
	}
	return nil
}

// Day is one calendar date together with its synthesized events, in
// synthesis order.
type Day struct {
	Date   term.Date
	Events []Event
}

// OnlyOfficeHours reports whether every event on the day is an office-hours
// block; the HTML grid treats such days as empty.
func (d *Day) OnlyOfficeHours() bool {
	for _, e := range d.Events {
		if e.Kind != KindOfficeHours {
			return false
		}
	}
	return true
}

// Week is a Sunday-through-Saturday row of the calendar grid. A nil slot is
// a date outside the term or one with no events.
type Week [7]*Day

// Calendar is the synthesized term calendar: week rows in order, each with
// exactly seven slots.
type Calendar struct {
	Weeks []Week
}

// Days yields the populated days of the calendar in date order.
func (c *Calendar) Days() []*Day {
	var out []*Day
	for _, week := range c.Weeks {
		for _, day := range week {
			if day != nil {
				out = append(out, day)
			}
		}
	}
	return out
}
