package export

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"coursecal/internal/model"
	"coursecal/internal/term"
)

func ts(day, hour, min int) time.Time {
	return time.Date(2024, time.January, day, hour, min, 0, 0, time.UTC)
}

// sampleCalendar is one hand-built week: a lecture with a reading, an
// all-day special, an office-hours block, a hidden assignment, and a
// visible assignment due event.
func sampleCalendar() *model.Calendar {
	wednesday := &model.Day{
		Date: term.NewDate(2024, time.January, 17),
		Events: []model.Event{
			{
				Kind:   model.KindSpecial,
				Titles: []string{"Courses begin"},
				Day:    term.NewDate(2024, time.January, 17),
			},
			{
				Kind:    model.KindLecture,
				Titles:  []string{"Intro"},
				Section: "cs1110-001",
				From:    ts(17, 10, 0),
				To:      ts(17, 11, 15),
				Where:   "Rice 130",
				Reading: []term.Reading{{Text: "Ch. 1"}, {Text: "slides.pdf", Link: "slides/01.pdf"}},
			},
		},
	}
	monday := &model.Day{
		Date: term.NewDate(2024, time.January, 22),
		Events: []model.Event{
			{
				Kind:    model.KindLecture,
				Titles:  []string{"Variables"},
				Section: "cs1110-001",
				From:    ts(22, 10, 0),
				To:      ts(22, 11, 15),
				Where:   "Rice 130",
			},
			{
				Kind:   model.KindOfficeHours,
				Titles: []string{"TA OH"},
				From:   ts(22, 9, 0),
				To:     ts(22, 11, 0),
				Where:  "OLS 001",
			},
			{
				Kind:   model.KindAssignment,
				Titles: []string{"hw1"},
				Group:  "hw",
				Slug:   "hw1",
				From:   ts(22, 23, 44),
				To:     ts(22, 23, 59),
				Link:   "https://example.edu/hw",
			},
			{
				Kind:   model.KindAssignment,
				Titles: []string{"secret"},
				Group:  "hw",
				Slug:   "hw0",
				From:   ts(22, 23, 44),
				To:     ts(22, 23, 59),
				Hide:   true,
			},
		},
	}
	ohOnly := &model.Day{
		Date: term.NewDate(2024, time.January, 23),
		Events: []model.Event{
			{
				Kind:   model.KindOfficeHours,
				Titles: []string{"TA OH"},
				From:   ts(23, 9, 0),
				To:     ts(23, 10, 0),
				Where:  "OLS 001",
			},
		},
	}

	return &model.Calendar{Weeks: []model.Week{
		{nil, nil, nil, wednesday, nil, nil, nil},
		{nil, monday, ohOnly, nil, nil, nil, nil},
	}}
}

func TestHTML(t *testing.T) {
	out := HTML(sampleCalendar())

	assert.True(t, strings.HasPrefix(out, `<table id="schedule" class="calendar">`))
	assert.Equal(t, 2, strings.Count(out, `<tr class="week">`))

	// Day cells carry the date; the weekday class uses Sunday=0 numbering.
	assert.Contains(t, out, `<td class="day" date="2024-01-17">`)
	assert.Contains(t, out, `<span class="date w3">17 Jan</span>`)

	// An event with readings renders as a disclosure.
	assert.Contains(t, out, `<details class="cs1110-001 lecture">`)
	assert.Contains(t, out, `<summary>Intro</summary>`)
	assert.Contains(t, out, `<a target="_blank" href="slides/01.pdf">slides.pdf</a>`)

	// A plain event renders as a div with its style classes.
	assert.Contains(t, out, `<div class="special">Courses begin</div>`)
	assert.Contains(t, out, `<div class="cs1110-001 lecture">Variables</div>`)

	// Assignment titles link out and carry the group class.
	assert.Contains(t, out, `<div class="assignment hw"><a target="_blank" href="https://example.edu/hw">hw1</a></div>`)

	// Hidden events and office hours never render; a day with only office
	// hours collapses to an empty cell.
	assert.NotContains(t, out, "secret")
	assert.NotContains(t, out, "TA OH")
	assert.Contains(t, out, `<td class="day" />`)
}

func TestICS(t *testing.T) {
	out := ICS(sampleCalendar(), ICSOptions{
		Course:   "cs1110",
		Home:     "https://example.edu/cs1110/",
		Timezone: "America/New_York",
	})

	assert.Contains(t, out, "BEGIN:VCALENDAR")
	assert.Contains(t, out, "END:VCALENDAR")

	// Timed events carry the term timezone.
	assert.Contains(t, out, "DTSTART;TZID=America/New_York:20240117T100000")
	assert.Contains(t, out, "DTEND;TZID=America/New_York:20240117T111500")
	assert.Contains(t, out, "SUMMARY:cs1110-001 -- Intro")
	assert.Contains(t, out, "LOCATION:Rice 130")

	// All-day events use date values spanning one day.
	assert.Contains(t, out, "DTSTART;VALUE=DATE:20240117")
	assert.Contains(t, out, "DTEND;VALUE=DATE:20240118")

	// Group-tagged events get the group prefix; hidden events are dropped.
	assert.Contains(t, out, "SUMMARY:hw1")
	assert.NotContains(t, out, "secret")

	// Relative reading links are made absolute against the site home.
	assert.Contains(t, out, "https://example.edu/cs1110/slides/01.pdf")
}

func TestICSSectionFilter(t *testing.T) {
	out := ICS(sampleCalendar(), ICSOptions{
		Course:   "cs1110",
		Timezone: "America/New_York",
		Sections: []string{"cs1110-002"},
	})

	// Section-tagged events for other sections are dropped; untagged
	// events (specials, office hours, assignments) stay.
	assert.NotContains(t, out, "cs1110-001")
	assert.Contains(t, out, "SUMMARY:Courses begin")
	assert.Contains(t, out, "SUMMARY:TA OH")
}

func TestEventFeed(t *testing.T) {
	feed := EventFeed(sampleCalendar(), nil)

	// Hidden and all-day events are excluded; the rest sort by start.
	require.Len(t, feed, 5)
	for i := 1; i < len(feed); i++ {
		assert.LessOrEqual(t, feed[i-1].Start, feed[i].Start)
	}
	assert.Equal(t, "evt0", feed[0].ID)
	assert.Equal(t, "Intro", feed[0].Title)
	assert.Equal(t, "2024-01-17T10:00:00", feed[0].Start)
	assert.Equal(t, []string{"cal-lecture"}, feed[0].ClassNames)

	enc, err := EncodeFeed(feed)
	require.NoError(t, err)
	var decoded []FeedEvent
	require.NoError(t, json.Unmarshal(enc, &decoded))
	assert.Equal(t, feed, decoded)
}

func TestEventFeedOfficeHoursOnly(t *testing.T) {
	feed := EventFeed(sampleCalendar(), OfficeHoursOnly)

	require.Len(t, feed, 2)
	for _, fe := range feed {
		assert.Equal(t, "TA OH", fe.Title)
		assert.Equal(t, []string{"cal-oh"}, fe.ClassNames)
		assert.Equal(t, "OLS 001", fe.Location)
	}
}

func TestEffectiveAssignments(t *testing.T) {
	due := term.DateTime{Time: ts(22, 23, 59)}
	decl := &term.Term{
		Assignments: term.Assignments{
			Groups: map[string]term.Assignment{
				"hw": {Link: "https://example.edu/hw"},
			},
			Tasks: map[string]term.Assignment{
				"hw1": {Due: &due},
				"hw0": {Due: &due, Title: "secret"},
			},
		},
	}

	out := EffectiveAssignments(sampleCalendar(), decl)
	require.Len(t, out, 2)
	assert.Equal(t, "https://example.edu/hw", out["hw1"].Link)
	assert.Equal(t, "hw", out["hw1"].Group)
	assert.Equal(t, "secret", out["hw0"].Title)

	enc, err := EncodeAssignments(out)
	require.NoError(t, err)
	assert.Contains(t, string(enc), `"2024-01-22 23:59"`)
}

func TestAbsolutizeLinks(t *testing.T) {
	home := "https://example.edu/cs1110/"
	assert.Equal(t, "see <https://example.edu/cs1110/hw1>", absolutizeLinks("see <hw1>", home))
	assert.Equal(t, "see <https://host/x>", absolutizeLinks("see <//host/x>", home))
	// Absolute links (containing a colon) are untouched.
	assert.Equal(t, "see <https://other/x>", absolutizeLinks("see <https://other/x>", home))
}
