package schedule

import (
	"fmt"

	appLog "coursecal/internal/log"
	"coursecal/internal/model"
	"coursecal/internal/term"
)

// synthesizer is the per-run state of one synthesis pass. The term
// declaration itself stays read-only; the run owns the content cursors, so
// two passes over the same declaration cannot see each other.
type synthesizer struct {
	term        *term.Term
	attachments term.Attachments

	begin term.Date // declared courses-begin
	end   term.Date // max(courses-end, final-exam date)

	// cursors index each section into its type's content list. They advance
	// only inside synthesizeDay, which makes date order load-bearing.
	cursors map[string]int

	// sectionDays holds each section's weekday set, normalized once.
	sectionDays map[string][]term.Weekday
}

// Build walks every date of the term, from the Sunday on/before courses
// begin through the later of courses end and the final exam, classifying
// each date exactly once in increasing order. It returns the full calendar
// model, or the first fatal error with no partial calendar.
func Build(t *term.Term, attachments term.Attachments) (*model.Calendar, error) {
	begin, coursesEnd, err := t.Bounds()
	if err != nil {
		return nil, err
	}
	end := coursesEnd
	if finalDate := t.Meta.Final.Start.Date(); finalDate.After(end.Time) {
		end = finalDate
	}

	s := &synthesizer{
		term:        t,
		attachments: attachments,
		begin:       begin,
		end:         end,
		cursors:     make(map[string]int, len(t.Sections)),
		sectionDays: make(map[string][]term.Weekday, len(t.Sections)),
	}
	for name, sec := range t.Sections {
		days := make([]term.Weekday, 0, len(sec.Days))
		for _, tok := range sec.Days {
			dow, err := term.ParseWeekday(tok)
			if err != nil {
				return nil, fmt.Errorf("section %q: %w", name, err)
			}
			days = append(days, dow)
		}
		s.sectionDays[name] = days
	}

	gridStart := begin
	for gridStart.Weekday() != term.Sunday {
		gridStart = gridStart.AddDays(-1)
	}

	appLog.Debug("building term calendar",
		"grid_start", gridStart,
		"begin", begin,
		"end", end,
	)

	var cal model.Calendar
	for d := gridStart; !d.After(end.Time); d = d.AddDays(1) {
		if d.Weekday() == term.Sunday {
			cal.Weeks = append(cal.Weeks, model.Week{})
		}

		events, err := s.synthesizeDay(d)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", d, err)
		}
		if len(events) == 0 {
			continue
		}

		week := &cal.Weeks[len(cal.Weeks)-1]
		slot := (int(d.Weekday()) + 1) % 7 // Sunday-first slot index
		week[slot] = &model.Day{Date: d, Events: events}
	}

	appLog.Info("term calendar built",
		"weeks", len(cal.Weeks),
		"days", len(cal.Days()),
	)
	return &cal, nil
}
