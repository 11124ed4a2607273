package schedule

import (
	"path"
	"strings"
	"time"

	"coursecal/internal/model"
	"coursecal/internal/term"
)

// lectureType is the section type that receives per-date attachments.
const lectureType = "lecture"

// synthesizeDay classifies one calendar date and produces its events, in a
// strict order that later steps depend on:
//
//  1. the final exam, emitted before anything can suppress it
//  2. special dates: a recess/break/reading day ends the date right here;
//     an exam window raises the exam flag; anything else becomes an
//     all-day entry
//  3. section meetings and office hours, only inside the term bounds
//  4. assignment due events, regardless of the bounds
//
// Section content cursors advance in here and nowhere else, which is why
// the builder must call this for dates in increasing order.
func (s *synthesizer) synthesizeDay(d term.Date) ([]model.Event, error) {
	var events []model.Event
	add := func(e model.Event) error {
		if err := e.Validate(); err != nil {
			return err
		}
		events = append(events, e)
		return nil
	}

	// Final exam.
	final := s.term.Meta.Final
	if final.Start.Date() == d {
		err := add(model.Event{
			Kind:   model.KindExam,
			Titles: []string{"Final Exam"},
			From:   final.Start.Time,
			To:     final.Start.Add(time.Duration(final.Duration) * time.Minute),
			Where:  final.Room,
		})
		if err != nil {
			return nil, err
		}
	}

	// A matching break suppresses everything below, including any special
	// entries that would otherwise appear today, so it is checked across
	// the whole table before any special event is emitted.
	isExam := false
	for _, name := range sortedKeys(s.term.SpecialDates) {
		if s.term.SpecialDates[name].Matches(d) && isBreakName(name) {
			return events, nil
		}
	}
	for _, name := range sortedKeys(s.term.SpecialDates) {
		if !s.term.SpecialDates[name].Matches(d) {
			continue
		}
		if isExamName(name) {
			isExam = true
			continue
		}
		if err := add(model.Event{Kind: model.KindSpecial, Titles: []string{name}, Day: d}); err != nil {
			return nil, err
		}
	}

	if !d.Before(s.begin.Time) && !d.After(s.end.Time) {
		if err := s.expandSections(d, isExam, add); err != nil {
			return nil, err
		}
		if err := s.appendOfficeHours(d, add); err != nil {
			return nil, err
		}
	}

	if err := s.appendAssignments(d, add); err != nil {
		return nil, err
	}
	return events, nil
}

// expandSections emits one event per section meeting on this date: an exam
// sitting when the exam flag applies to the section, otherwise a content
// meeting that advances the section's cursor while the content list lasts.
func (s *synthesizer) expandSections(d term.Date, isExam bool, add func(model.Event) error) error {
	for _, name := range sortedKeys(s.term.Sections) {
		sec := s.term.Sections[name]
		if !s.meetsOn(name, d) {
			continue
		}

		from := d.At(sec.Start)
		to := d.At(sec.Start + sec.Duration)

		if isExam && (s.lectureExamApplies(sec) || sec.Exams) {
			err := add(model.Event{
				Kind:    model.KindExam,
				Titles:  []string{"Exam"},
				Section: name,
				From:    from,
				To:      to,
				Where:   sec.Room,
			})
			if err != nil {
				return err
			}
			continue
		}

		ev := model.Event{
			Kind:    model.KindForSectionType(sec.Type),
			Section: name,
			From:    from,
			To:      to,
			Where:   sec.Room,
		}

		content := s.term.Content[sec.Type]
		cursor := s.cursors[name]
		if cursor >= len(content) {
			// Out of scheduled content; the meeting still happens, titled by
			// its type, and the cursor stays put.
			ev.Titles = []string{sec.Type}
		} else {
			entry := content[cursor]
			ev.Titles = entry.Titles
			if len(ev.Titles) == 0 {
				ev.Titles = []string{""}
			}
			for _, title := range ev.Titles {
				ev.Reading = append(ev.Reading, s.term.Reading[title]...)
			}
			s.cursors[name] = cursor + 1
		}

		if att, ok := s.attachments[d.String()]; ok && sec.Type == lectureType {
			for _, f := range att.Files {
				ev.Reading = append(ev.Reading, term.Reading{Text: attachmentText(f), Link: f})
			}
			if att.Video != "" {
				ev.Video = att.Video
			}
			if att.Audio != "" {
				ev.Audio = att.Audio
			}
		}

		if err := add(ev); err != nil {
			return err
		}
	}
	return nil
}

// appendOfficeHours emits one event per merged office-hours block, once the
// date has reached the declared boundary. A missing boundary means office
// hours run for the whole term.
func (s *synthesizer) appendOfficeHours(d term.Date, add func(model.Event) error) error {
	if begin := s.term.OfficeHours.Begin; begin != nil && d.Before(begin.Time) {
		return nil
	}

	blocks, err := officeHoursOn(s.term.OfficeHours, d)
	if err != nil {
		return err
	}
	for _, block := range blocks {
		for _, span := range block.Spans {
			err := add(model.Event{
				Kind:   model.KindOfficeHours,
				Titles: []string{block.DisplayTitle()},
				From:   d.At(span.Start),
				To:     d.At(span.End),
				Where:  block.Where,
			})
			if err != nil {
				return err
			}
		}
	}
	return nil
}

// appendAssignments emits a due event for every assignment whose entry
// carries a due timestamp on this date, with group defaults applied. Due
// events run independently of the term bounds.
func (s *synthesizer) appendAssignments(d term.Date, add func(model.Event) error) error {
	for _, task := range sortedKeys(s.term.Assignments.Tasks) {
		entry := s.term.Assignments.Tasks[task]
		if entry.Due == nil || entry.Due.Date() != d {
			continue
		}

		eff, group, _ := s.term.Assignments.Effective(task)
		title := eff.Title
		if title == "" {
			title = task
		}

		ev := model.Event{
			Kind:   model.KindAssignment,
			Titles: []string{title},
			Group:  group,
			Slug:   task,
			From:   eff.Due.Add(-dueLeadTime),
			To:     eff.Due.Time,
			Link:   eff.Link,
		}
		if eff.Hide != nil {
			ev.Hide = *eff.Hide
		}
		if err := add(ev); err != nil {
			return err
		}
	}
	return nil
}

// dueLeadTime is how far before its deadline an assignment event starts.
const dueLeadTime = 15 * time.Minute

func (s *synthesizer) meetsOn(section string, d term.Date) bool {
	for _, dow := range s.sectionDays[section] {
		if dow == d.Weekday() {
			return true
		}
	}
	return false
}

// lectureExamApplies evaluates the lecture-exam policy for a section: the
// declared flag must equal the section's "is a lecture" predicate. An
// absent policy matches nothing.
func (s *synthesizer) lectureExamApplies(sec term.Section) bool {
	policy := s.term.Meta.LectureExam
	return policy != nil && *policy == (sec.Type == lectureType)
}

func isBreakName(name string) bool {
	n := strings.ToLower(name)
	return strings.Contains(n, "recess") ||
		strings.Contains(n, "break") ||
		strings.Contains(n, "reading")
}

func isExamName(name string) bool {
	n := strings.ToLower(name)
	return strings.Contains(n, "exam") ||
		strings.Contains(n, "test") ||
		strings.Contains(n, "midterm")
}

// attachmentText derives display text for an attached file: the basename
// with everything up to its first hyphen trimmed ("05-slides.pdf" ->
// "slides.pdf"). Without a hyphen the basename stands as-is.
func attachmentText(file string) string {
	name := path.Base(file)
	if i := strings.Index(name, "-"); i >= 0 {
		return name[i+1:]
	}
	return name
}
