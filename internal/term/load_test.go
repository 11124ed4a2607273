package term

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleDeclaration = `
Special Dates:
  Courses begin: 2024-01-17
  Courses end: 2024-02-16
  Spring recess: {start: 2024-02-05, end: 2024-02-09}
  Holidays: [2024-01-15, 2024-02-19]
  Exam 1: 2024-01-31

meta:
  name: cs1110
  home: https://example.edu/cs1110/
  timezone: America/New_York
  lecture exam: true
  final:
    start: 2024-02-20 09:00
    duration: 180
    room: Hall A

sections:
  cs1110-001:
    days: [mo, we]
    start: 600
    duration: 75
    room: Rice 130
    type: lecture
  lab-101:
    days: [th]
    start: 840
    duration: 110
    room: Thornton
    type: lab

lectures:
  - Intro
  - Variables
  - [Loops, Arrays]
  -
  - Recursion

labs:
  - Setup

reading:
  Intro: Ch. 1
  Loops: [Ch. 3]
  Arrays: {txt: Ch. 4, lnk: https://example.edu/ch4}

office hours:
  .begin: 2024-01-22
  TA:
    where: OLS 001
    Alice:
      when:
        - {dow: mo, start: 540, end: 600}
        - {dow: mo, start: 570, end: 660}
    Bob:
      where: Rice 442
      when:
        - {dow: we, start: 600, end: 660, except: [2024-01-31]}

assignments:
  .groups:
    hw:
      link: https://example.edu/hw
    quiz:
      title: Quiz
  .hidden-directive: ignored
  hw1:
    due: 2024-01-26 23:59
  hw2:
    due: 2024-02-16 23:59
    hide: true
  quiz2:
    due: 2024-02-07 12:00
    group: quiz
`

func TestParseDeclaration(t *testing.T) {
	decl, err := Parse([]byte(sampleDeclaration))
	require.NoError(t, err)

	begin, end, err := decl.Bounds()
	require.NoError(t, err)
	assert.Equal(t, NewDate(2024, time.January, 17), begin)
	assert.Equal(t, NewDate(2024, time.February, 16), end)

	// Date spec variants.
	recess := decl.SpecialDates["Spring recess"]
	assert.True(t, recess.Matches(NewDate(2024, time.February, 5)))
	assert.True(t, recess.Matches(NewDate(2024, time.February, 9)))
	assert.False(t, recess.Matches(NewDate(2024, time.February, 10)))

	holidays := decl.SpecialDates["Holidays"]
	assert.True(t, holidays.Matches(NewDate(2024, time.January, 15)))
	assert.False(t, holidays.Matches(NewDate(2024, time.January, 16)))

	exam := decl.SpecialDates["Exam 1"]
	assert.True(t, exam.Matches(NewDate(2024, time.January, 31)))

	// Meta.
	require.NotNil(t, decl.Meta.LectureExam)
	assert.True(t, *decl.Meta.LectureExam)
	assert.Equal(t, NewDate(2024, time.February, 20), decl.Meta.Final.Start.Date())
	assert.Equal(t, 180, decl.Meta.Final.Duration)

	// Sections.
	require.Len(t, decl.Sections, 2)
	lecture := decl.Sections["cs1110-001"]
	assert.Equal(t, []string{"mo", "we"}, lecture.Days)
	assert.Equal(t, "lecture", lecture.Type)

	// Content lists are re-keyed from pluralized document keys to types.
	require.Contains(t, decl.Content, "lecture")
	require.Contains(t, decl.Content, "lab")
	lectures := decl.Content["lecture"]
	require.Len(t, lectures, 5)
	assert.Equal(t, []string{"Intro"}, lectures[0].Titles)
	assert.Equal(t, []string{"Loops", "Arrays"}, lectures[2].Titles)
	assert.Empty(t, lectures[3].Titles) // held slot

	// Reading variants.
	assert.Equal(t, Readings{{Text: "Ch. 1"}}, decl.Reading["Intro"])
	assert.Equal(t, Readings{{Text: "Ch. 3"}}, decl.Reading["Loops"])
	assert.Equal(t, Readings{{Text: "Ch. 4", Link: "https://example.edu/ch4"}}, decl.Reading["Arrays"])

	// Office hours.
	require.NotNil(t, decl.OfficeHours.Begin)
	assert.Equal(t, NewDate(2024, time.January, 22), *decl.OfficeHours.Begin)
	ta := decl.OfficeHours.Groups["TA"]
	assert.Equal(t, "OLS 001", ta.Where)
	require.Contains(t, ta.Staff, "Alice")
	require.Contains(t, ta.Staff, "Bob")
	assert.Equal(t, "Rice 442", ta.Staff["Bob"].Where)
	require.Len(t, ta.Staff["Bob"].When, 1)
	assert.Equal(t, []Date{NewDate(2024, time.January, 31)}, ta.Staff["Bob"].When[0].Except)

	// Assignments: dotted keys split out, tasks kept.
	assert.Len(t, decl.Assignments.Tasks, 3)
	assert.NotContains(t, decl.Assignments.Tasks, ".groups")
	assert.NotContains(t, decl.Assignments.Tasks, ".hidden-directive")
	assert.Equal(t, "https://example.edu/hw", decl.Assignments.Groups["hw"].Link)
	require.NotNil(t, decl.Assignments.Tasks["hw2"].Hide)
	assert.True(t, *decl.Assignments.Tasks["hw2"].Hide)
}

func TestAssignmentsEffective(t *testing.T) {
	decl, err := Parse([]byte(sampleDeclaration))
	require.NoError(t, err)

	// Group inferred from the letter prefix; defaults overlaid.
	eff, group, ok := decl.Assignments.Effective("hw1")
	require.True(t, ok)
	assert.Equal(t, "hw", group)
	assert.Equal(t, "https://example.edu/hw", eff.Link)
	assert.Empty(t, eff.Title)

	// Explicit group wins; group title applies when the entry has none.
	eff, group, ok = decl.Assignments.Effective("quiz2")
	require.True(t, ok)
	assert.Equal(t, "quiz", group)
	assert.Equal(t, "Quiz", eff.Title)

	_, _, ok = decl.Assignments.Effective("nope")
	assert.False(t, ok)
}

func TestValidateRejectsBadWeekday(t *testing.T) {
	decl, err := Parse([]byte(sampleDeclaration))
	require.NoError(t, err)

	sec := decl.Sections["cs1110-001"]
	sec.Days = []string{"xx"}
	decl.Sections["cs1110-001"] = sec
	assert.ErrorIs(t, decl.Validate(), ErrUnrecognizedWeekday)
}

func TestValidateRequiresFinal(t *testing.T) {
	decl, err := Parse([]byte(sampleDeclaration))
	require.NoError(t, err)

	decl.Meta.Final.Start = DateTime{}
	assert.Error(t, decl.Validate())
}

func TestParseDateTimeLayouts(t *testing.T) {
	for _, s := range []string{"2024-03-01 23:59", "2024-03-01T23:59", "2024-03-01 23:59:00"} {
		dt, err := ParseDateTime(s)
		require.NoError(t, err, s)
		assert.Equal(t, NewDate(2024, time.March, 1), dt.Date())
		assert.Equal(t, 23, dt.Hour())
	}

	dateOnly, err := ParseDateTime("2024-03-01")
	require.NoError(t, err)
	assert.Equal(t, 0, dateOnly.Hour())

	_, err = ParseDateTime("bogus")
	assert.Error(t, err)
}
