package export

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"coursecal/internal/model"
)

// ICSOptions controls the iCalendar rendering of a term calendar.
type ICSOptions struct {
	// Course names the calendar and namespaces event UIDs.
	Course string

	// Home is the site base URL; relative links in event details are
	// rewritten against it.
	Home string

	// Timezone is the IANA zone emitted as TZID on timed events.
	Timezone string

	// Sections, when non-nil, is an allow-list: section-tagged events for
	// other sections are dropped.
	Sections []string
}

const defaultTimezone = "America/New_York"

// ICS renders the calendar as an iCalendar document. Hidden events and
// events filtered out by the section allow-list are skipped.
func ICS(cal *model.Calendar, opts ICSOptions) string {
	tz := opts.Timezone
	if tz == "" {
		tz = defaultTimezone
	}

	out := ical.NewCalendar()
	out.SetProductId(fmt.Sprintf("-//coursecal//%s//EN", opts.Course))
	out.SetCalscale("GREGORIAN")
	out.SetName(opts.Course)

	stamp := time.Now().UTC()
	for _, day := range cal.Days() {
		for i := range day.Events {
			e := &day.Events[i]
			if e.Hide {
				continue
			}
			if e.Section != "" && opts.Sections != nil && !contains(opts.Sections, e.Section) {
				continue
			}
			addVEvent(out, e, opts, tz, stamp)
		}
	}
	return out.Serialize()
}

func addVEvent(out *ical.Calendar, e *model.Event, opts ICSOptions, tz string, stamp time.Time) {
	title := e.Title(" and ")
	if e.Section != "" {
		title = e.Section + " -- " + title
	} else if e.Group != "" && !strings.Contains(title, e.Group) {
		title = e.Group + " " + title
	}

	var dtsValue string
	ve := &ical.VEvent{}
	if e.AllDay() {
		dtsValue = e.Day.Format("20060102")
		dateValue := &ical.KeyValues{Key: "VALUE", Value: []string{"DATE"}}
		ve.SetProperty(ical.ComponentPropertyDtStart, dtsValue, dateValue)
		ve.SetProperty(ical.ComponentPropertyDtEnd, e.Day.AddDays(1).Format("20060102"), dateValue)
	} else {
		dtsValue = e.From.Format("20060102T150405")
		tzid := &ical.KeyValues{Key: "TZID", Value: []string{tz}}
		ve.SetProperty(ical.ComponentPropertyDtStart, dtsValue, tzid)
		ve.SetProperty(ical.ComponentPropertyDtEnd, e.To.Format("20060102T150405"), tzid)
	}

	ve.SetProperty(ical.ComponentPropertyUniqueId,
		fmt.Sprintf("%s-%s@%s", dtsValue, title, opts.Course))
	ve.SetProperty(ical.ComponentPropertyDtstamp, stamp.Format("20060102T150405Z"))
	ve.SetProperty(ical.ComponentPropertySummary, title)
	if e.Where != "" {
		ve.SetProperty(ical.ComponentPropertyLocation, e.Where)
	}
	if notes := eventDetails(e, opts.Home); notes != "" {
		ve.SetProperty(ical.ComponentPropertyDescription, notes)
	}

	out.AddVEvent(ve)
}

// eventDetails assembles the free-text description: link, readings, and
// recording URLs, one per line, with relative links made absolute.
func eventDetails(e *model.Event, home string) string {
	var details []string
	if e.Link != "" {
		details = append(details, "see <"+e.Link+">")
	}
	for _, r := range e.Reading {
		if r.Link != "" {
			details = append(details, fmt.Sprintf("%s <%s>", r.Text, r.Link))
		} else {
			details = append(details, r.Text)
		}
	}
	if e.Video != "" {
		details = append(details, "video: <"+e.Video+">")
	}
	if e.Audio != "" {
		details = append(details, "audio: <"+e.Audio+">")
	}
	for i := range details {
		details[i] = absolutizeLinks(details[i], home)
	}
	return strings.Join(details, "\n")
}

var relativeLink = regexp.MustCompile(`<([^><:]*)>`)

// absolutizeLinks rewrites scheme-relative ("<//host/...>") and relative
// ("<path>") angle-bracket links against the site home.
func absolutizeLinks(s, home string) string {
	s = strings.ReplaceAll(s, "<//", "<https://")
	return relativeLink.ReplaceAllString(s, "<"+home+"$1>")
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
