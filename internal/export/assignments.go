package export

import (
	"encoding/json"

	"coursecal/internal/model"
	"coursecal/internal/term"
)

// EffectiveAssignments collects, for every assignment that produced a due
// event, its effective record: group defaults with the entry's own fields
// applied on top, plus the resolved group.
func EffectiveAssignments(cal *model.Calendar, t *term.Term) map[string]term.Assignment {
	out := make(map[string]term.Assignment)
	for _, day := range cal.Days() {
		for i := range day.Events {
			e := &day.Events[i]
			if e.Kind != model.KindAssignment {
				continue
			}
			eff, group, ok := t.Assignments.Effective(e.Slug)
			if !ok {
				continue
			}
			eff.Group = group
			out[e.Slug] = eff
		}
	}
	return out
}

// EncodeAssignments marshals the effective-assignment map as indented JSON.
func EncodeAssignments(assignments map[string]term.Assignment) ([]byte, error) {
	return json.MarshalIndent(assignments, "", "  ")
}
