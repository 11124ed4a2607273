package schedule

import (
	"fmt"
	"sort"
	"strings"

	"coursecal/internal/term"
)

// Interval is a [Start, End) span in minutes from midnight.
type Interval struct {
	Start int
	End   int
}

// MergeIntervals coalesces a set of intervals into the minimal ordered set
// of non-overlapping spans. Intervals are sorted by start and swept left to
// right; a span folds into the running one when its start does not exceed
// the running end, so spans that exactly touch merge too. The operation is
// idempotent.
func MergeIntervals(in []Interval) []Interval {
	if len(in) == 0 {
		return nil
	}

	sorted := make([]Interval, len(in))
	copy(sorted, in)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Start != sorted[j].Start {
			return sorted[i].Start < sorted[j].Start
		}
		return sorted[i].End < sorted[j].End
	})

	out := []Interval{sorted[0]}
	for _, iv := range sorted[1:] {
		last := &out[len(out)-1]
		if iv.Start <= last.End {
			if iv.End > last.End {
				last.End = iv.End
			}
		} else {
			out = append(out, iv)
		}
	}
	return out
}

// ohBlock is the merged office-hours schedule for one label on one date.
// Label carries the parenthesized location so that distinct locations never
// merge; the display title strips it.
type ohBlock struct {
	Label string
	Where string
	Spans []Interval
}

// DisplayTitle is the block label without its parenthetical location.
func (b ohBlock) DisplayTitle() string {
	if i := strings.Index(b.Label, " ("); i >= 0 {
		return b.Label[:i]
	}
	return b.Label
}

// officeHoursOn collects every office-hours declaration applying to the
// given date, groups it under its staff/location label, and merges each
// label's spans. Blocks come back in label order.
//
// A slot applies when it names the date's weekday or that exact date, and
// the date is not in its exception list. The ".begin" boundary is the
// caller's concern.
func officeHoursOn(oh term.OfficeHours, d term.Date) ([]ohBlock, error) {
	raw := make(map[string]*ohBlock)

	for _, kind := range sortedKeys(oh.Groups) {
		group := oh.Groups[kind]
		for _, staff := range sortedKeys(group.Staff) {
			hours := group.Staff[staff]
			for _, slot := range hours.When {
				applies, err := slotApplies(slot, d)
				if err != nil {
					return nil, fmt.Errorf("office hours %s/%s: %w", kind, staff, err)
				}
				if !applies {
					continue
				}

				label, where := kind+" OH ("+group.Where+")", group.Where
				if hours.Where != "" {
					label, where = staff+" OH ("+hours.Where+")", hours.Where
				}
				block, ok := raw[label]
				if !ok {
					block = &ohBlock{Label: label, Where: where}
					raw[label] = block
				}
				block.Spans = append(block.Spans, Interval{Start: slot.Start, End: slot.End})
			}
		}
	}

	blocks := make([]ohBlock, 0, len(raw))
	for _, label := range sortedKeys(raw) {
		block := raw[label]
		block.Spans = MergeIntervals(block.Spans)
		blocks = append(blocks, *block)
	}
	return blocks, nil
}

func slotApplies(slot term.OHSlot, d term.Date) (bool, error) {
	for _, ex := range slot.Except {
		if ex == d {
			return false, nil
		}
	}
	if slot.Date != nil {
		return *slot.Date == d, nil
	}
	dow, err := term.ParseWeekday(slot.Dow)
	if err != nil {
		return false, err
	}
	return dow == d.Weekday(), nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
