package export

import (
	"encoding/json"
	"fmt"
	"sort"

	"coursecal/internal/model"
)

// FeedEvent is the JSON event-feed shape, compatible with fullcalendar's
// event objects.
type FeedEvent struct {
	ID         string   `json:"id"`
	Start      string   `json:"start"`
	End        string   `json:"end"`
	Title      string   `json:"title"`
	ClassNames []string `json:"classNames"`
	Editable   bool     `json:"editable"`
	Location   string   `json:"location"`
	URL        string   `json:"url,omitempty"`
}

const feedTimeLayout = "2006-01-02T15:04:05"

// EventFeed flattens the calendar into feed events, keeping only timed,
// non-hidden events the caller's predicate accepts, sorted by start time.
// A nil predicate keeps everything.
func EventFeed(cal *model.Calendar, keep func(*model.Event) bool) []FeedEvent {
	out := []FeedEvent{}
	for _, day := range cal.Days() {
		for i := range day.Events {
			e := &day.Events[i]
			if e.Hide || e.AllDay() {
				continue
			}
			if keep != nil && !keep(e) {
				continue
			}
			fe := FeedEvent{
				ID:         fmt.Sprintf("evt%d", len(out)),
				Start:      e.From.Format(feedTimeLayout),
				End:        e.To.Format(feedTimeLayout),
				Title:      e.Title(" and "),
				ClassNames: []string{"cal-" + e.Kind.String()},
				Editable:   false,
				Location:   e.Where,
				URL:        e.Link,
			}
			out = append(out, fe)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	// Re-number after sorting so IDs follow feed order.
	for i := range out {
		out[i].ID = fmt.Sprintf("evt%d", i)
	}
	return out
}

// EncodeFeed marshals feed events as indented JSON.
func EncodeFeed(events []FeedEvent) ([]byte, error) {
	return json.MarshalIndent(events, "", "  ")
}

// OfficeHoursOnly is the predicate for the office-hours feed.
func OfficeHoursOnly(e *model.Event) bool {
	return e.Kind == model.KindOfficeHours
}
