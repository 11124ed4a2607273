package term

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Term is the declarative description of one academic term, as loaded from
// the course's calendar document. It is read-only during synthesis; the
// schedule builder keeps its own per-run cursor state.
type Term struct {
	SpecialDates map[string]DateSpec `yaml:"Special Dates"`
	Meta         Meta                `yaml:"meta"`
	Sections     map[string]Section  `yaml:"sections"`
	OfficeHours  OfficeHours         `yaml:"office hours"`
	Assignments  Assignments         `yaml:"assignments"`
	Reading      map[string]Readings `yaml:"reading"`

	// Content holds the ordered content-title lists, keyed by section type.
	// In the document they live under the pluralized type name ("lectures",
	// "labs"); the loader re-keys them here.
	Content map[string][]ContentEntry `yaml:"-"`
}

// Meta carries term-wide settings and the final-exam descriptor.
type Meta struct {
	Name     string `yaml:"name"`
	Home     string `yaml:"home"`
	Timezone string `yaml:"timezone"`

	// LectureExam is the lecture-exam policy: when set, sections whose
	// "is a lecture" predicate equals the flag sit declared exams. Absent
	// means no section matches via the policy (individually-marked
	// sections still do).
	LectureExam *bool `yaml:"lecture exam"`

	Final Final `yaml:"final"`
}

// Final describes the final exam sitting.
type Final struct {
	Start    DateTime `yaml:"start"`
	Duration int      `yaml:"duration"` // minutes
	Room     string   `yaml:"room"`
}

// Section is one recurring meeting series (a lecture or lab section).
type Section struct {
	Days     []string `yaml:"days"`     // weekday tokens, normalized per run
	Start    int      `yaml:"start"`    // minutes from midnight
	Duration int      `yaml:"duration"` // minutes
	Room     string   `yaml:"room"`
	Type     string   `yaml:"type"`
	Exams    bool     `yaml:"exams"` // this section sits declared exams
}

// ContentEntry is one slot of a section-type content list: nothing (a held
// slot), a single title, or several simultaneous titles.
type ContentEntry struct {
	Titles []string
}

func (c *ContentEntry) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Tag == "!!null" {
			return nil
		}
		var s string
		if err := value.Decode(&s); err != nil {
			return err
		}
		c.Titles = []string{s}
		return nil
	case yaml.SequenceNode:
		return value.Decode(&c.Titles)
	}
	return fmt.Errorf("line %d: content entry must be a title or list of titles", value.Line)
}

// Reading is one reading reference: either plain display text or a
// text-plus-link pair.
type Reading struct {
	Text string `yaml:"txt" json:"txt"`
	Link string `yaml:"lnk,omitempty" json:"lnk,omitempty"`
}

func (r *Reading) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.ScalarNode {
		return value.Decode(&r.Text)
	}
	type plain Reading
	return value.Decode((*plain)(r))
}

// Readings is a one-or-many list of reading references.
type Readings []Reading

func (rs *Readings) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind == yaml.SequenceNode {
		return value.Decode((*[]Reading)(rs))
	}
	var one Reading
	if err := value.Decode(&one); err != nil {
		return err
	}
	*rs = Readings{one}
	return nil
}

// OfficeHours is the office-hours block of the declaration: an optional
// start boundary (".begin") plus named groups of staff schedules.
type OfficeHours struct {
	Begin  *Date
	Groups map[string]OHGroup
}

func (o *OfficeHours) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: office hours must be a mapping", value.Line)
	}
	o.Groups = make(map[string]OHGroup)
	for i := 0; i+1 < len(value.Content); i += 2 {
		key, val := value.Content[i], value.Content[i+1]
		if key.Value == ".begin" {
			var d Date
			if err := val.Decode(&d); err != nil {
				return err
			}
			o.Begin = &d
			continue
		}
		// Other dotted keys are directives, not schedule groups.
		if strings.HasPrefix(key.Value, ".") {
			continue
		}
		var g OHGroup
		if err := val.Decode(&g); err != nil {
			return err
		}
		o.Groups[key.Value] = g
	}
	return nil
}

// OHGroup is one office-hours group (e.g. "TA", "Professor"): a shared
// location plus per-staff schedules.
type OHGroup struct {
	Where string
	Staff map[string]StaffHours
}

func (g *OHGroup) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: office-hours group must be a mapping", value.Line)
	}
	g.Staff = make(map[string]StaffHours)
	for i := 0; i+1 < len(value.Content); i += 2 {
		key, val := value.Content[i], value.Content[i+1]
		if key.Value == "where" {
			if err := val.Decode(&g.Where); err != nil {
				return err
			}
			continue
		}
		var s StaffHours
		if err := val.Decode(&s); err != nil {
			return err
		}
		g.Staff[key.Value] = s
	}
	return nil
}

// StaffHours is one staff member's schedule. Where, when set, overrides the
// group location and gives the member their own merge label.
type StaffHours struct {
	Where string   `yaml:"where"`
	When  []OHSlot `yaml:"when"`
}

// OHSlot is a single recurring or one-off office-hours declaration.
type OHSlot struct {
	Dow    string `yaml:"dow"`  // weekday token; empty when Date is set
	Date   *Date  `yaml:"date"` // exact date; overrides Dow
	Start  int    `yaml:"start"` // minutes from midnight
	End    int    `yaml:"end"`   // minutes from midnight
	Except []Date `yaml:"except"`
}

// Assignment is one assignment entry, or a group-defaults record under
// ".groups". Optional fields use pointers where "absent" must stay
// distinguishable from the zero value for the overlay.
type Assignment struct {
	Title string    `yaml:"title" json:"title,omitempty"`
	Due   *DateTime `yaml:"due" json:"due,omitempty"`
	Group string    `yaml:"group" json:"group,omitempty"`
	Link  string    `yaml:"link" json:"link,omitempty"`
	Hide  *bool     `yaml:"hide" json:"hide,omitempty"`
}

// Overlay returns the base record with this entry's declared fields applied
// on top, mirroring a dict-update of group defaults with the entry.
func (a Assignment) Overlay(base Assignment) Assignment {
	out := base
	if a.Title != "" {
		out.Title = a.Title
	}
	if a.Due != nil {
		out.Due = a.Due
	}
	if a.Group != "" {
		out.Group = a.Group
	}
	if a.Link != "" {
		out.Link = a.Link
	}
	if a.Hide != nil {
		out.Hide = a.Hide
	}
	return out
}

// Assignments splits the declaration's assignment mapping into task entries
// and the ".groups" defaults table. Other dotted keys are dropped.
type Assignments struct {
	Groups map[string]Assignment
	Tasks  map[string]Assignment
}

func (a *Assignments) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: assignments must be a mapping", value.Line)
	}
	a.Groups = make(map[string]Assignment)
	a.Tasks = make(map[string]Assignment)
	for i := 0; i+1 < len(value.Content); i += 2 {
		key, val := value.Content[i], value.Content[i+1]
		if key.Value == ".groups" {
			if err := val.Decode(&a.Groups); err != nil {
				return err
			}
			continue
		}
		if strings.HasPrefix(key.Value, ".") {
			continue
		}
		var entry Assignment
		if err := val.Decode(&entry); err != nil {
			return err
		}
		a.Tasks[key.Value] = entry
	}
	return nil
}

// GroupFor resolves a task's effective group: its explicit group if declared,
// otherwise the leading letters of the task key ("hw3" -> "hw").
func (a Assignments) GroupFor(task string, entry Assignment) string {
	if entry.Group != "" {
		return entry.Group
	}
	i := 0
	for i < len(task) && isLetter(task[i]) {
		i++
	}
	return task[:i]
}

// Effective returns the task's record with group defaults applied.
func (a Assignments) Effective(task string) (Assignment, string, bool) {
	entry, ok := a.Tasks[task]
	if !ok {
		return Assignment{}, "", false
	}
	group := a.GroupFor(task, entry)
	return entry.Overlay(a.Groups[group]), group, true
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

// Bounds returns the courses-begin and courses-end dates from the special
// dates table.
func (t *Term) Bounds() (begin, end Date, err error) {
	begin, err = t.specialSingle("Courses begin")
	if err != nil {
		return Date{}, Date{}, err
	}
	end, err = t.specialSingle("Courses end")
	if err != nil {
		return Date{}, Date{}, err
	}
	return begin, end, nil
}

func (t *Term) specialSingle(name string) (Date, error) {
	spec, ok := t.SpecialDates[name]
	if !ok {
		return Date{}, fmt.Errorf("special date %q is missing", name)
	}
	d, err := spec.Single()
	if err != nil {
		return Date{}, fmt.Errorf("special date %q: %w", name, err)
	}
	return d, nil
}
