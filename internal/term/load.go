package term

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	appLog "coursecal/internal/log"
)

// Load reads and validates a term declaration from a YAML document.
//
// Beyond plain decoding it:
//   - re-keys the content-title lists from their pluralized document keys
//     ("lectures", "labs") into Term.Content keyed by section type
//   - validates the declaration shape once, so the synthesis engine can
//     assume well-typed input and restrict itself to its two fatal errors
func Load(path string) (*Term, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	t, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	appLog.Info("term declaration loaded",
		"path", path,
		"sections", len(t.Sections),
		"special_dates", len(t.SpecialDates),
		"assignments", len(t.Assignments.Tasks),
	)
	return t, nil
}

// Parse decodes and validates a term declaration from raw YAML.
func Parse(data []byte) (*Term, error) {
	var t Term
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, err
	}

	// Content lists live at the document's top level under the pluralized
	// section type; a struct decode cannot capture them, so take a second
	// pass over the raw mapping.
	var raw map[string]yaml.Node
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, err
	}
	t.Content = make(map[string][]ContentEntry)
	for _, sec := range t.Sections {
		key := sec.Type + "s"
		node, ok := raw[key]
		if !ok {
			continue
		}
		var entries []ContentEntry
		if err := node.Decode(&entries); err != nil {
			return nil, fmt.Errorf("content list %q: %w", key, err)
		}
		t.Content[sec.Type] = entries
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}
	return &t, nil
}

// Validate checks the declaration invariants the synthesis engine relies on.
func (t *Term) Validate() error {
	if _, _, err := t.Bounds(); err != nil {
		return err
	}
	if t.Meta.Final.Start.IsZero() {
		return fmt.Errorf("meta.final.start is missing")
	}

	for name, sec := range t.Sections {
		if sec.Type == "" {
			return fmt.Errorf("section %q: type is missing", name)
		}
		if len(sec.Days) == 0 {
			return fmt.Errorf("section %q: no meeting days", name)
		}
		for _, tok := range sec.Days {
			if _, err := ParseWeekday(tok); err != nil {
				return fmt.Errorf("section %q: %w", name, err)
			}
		}
		if sec.Duration <= 0 {
			return fmt.Errorf("section %q: duration must be positive", name)
		}
	}

	for kind, group := range t.OfficeHours.Groups {
		for staff, hours := range group.Staff {
			for _, slot := range hours.When {
				if slot.Date == nil {
					if _, err := ParseWeekday(slot.Dow); err != nil {
						return fmt.Errorf("office hours %s/%s: %w", kind, staff, err)
					}
				}
				if slot.End < slot.Start {
					return fmt.Errorf("office hours %s/%s: end before start", kind, staff)
				}
			}
		}
	}

	return nil
}

// Attachment is the per-date supplementary material record from the
// attachments document: file links plus optional recordings.
type Attachment struct {
	Files []string `yaml:"files"`
	Video string   `yaml:"video"`
	Audio string   `yaml:"audio"`
}

// Attachments maps ISO dates ("2006-01-02") to their supplementary material.
type Attachments map[string]Attachment

// LoadAttachments reads the optional per-date attachment map. A missing file
// is not an error; synthesis simply runs without attachments.
func LoadAttachments(path string) (Attachments, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			appLog.Debug("no attachments document", "path", path)
			return Attachments{}, nil
		}
		return nil, err
	}

	var att Attachments
	if err := yaml.Unmarshal(data, &att); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	for date := range att {
		if _, err := ParseDate(date); err != nil {
			return nil, fmt.Errorf("%s: attachment key: %w", path, err)
		}
	}
	appLog.Info("attachments loaded", "path", path, "dates", len(att))
	return att, nil
}
