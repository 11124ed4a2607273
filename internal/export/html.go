package export

import (
	"fmt"
	"html"
	"strings"

	"coursecal/internal/model"
)

// HTML renders the calendar as the schedule table: one tr per week, one td
// per day. Office-hours events and hidden events do not appear; a day whose
// only events are office hours renders as an empty cell. Events with extra
// material (links, readings, recordings) render as a details/summary
// disclosure, plain events as a single div.
func HTML(cal *model.Calendar) string {
	var b strings.Builder
	b.WriteString(`<table id="schedule" class="calendar">`)
	for _, week := range cal.Weeks {
		b.WriteString(`<tr class="week">`)
		for _, day := range week {
			writeDayCell(&b, day)
		}
		b.WriteString(`</tr>`)
	}
	b.WriteString(`</table>`)
	return b.String()
}

func writeDayCell(b *strings.Builder, day *model.Day) {
	if day == nil || day.OnlyOfficeHours() {
		b.WriteString(`<td class="day" />`)
		return
	}

	fmt.Fprintf(b, `<td class="day" date="%s">`, day.Date)
	b.WriteString(`<div class="wrapper">`)
	fmt.Fprintf(b, `<span class="date w%d">%s</span>`,
		int(day.Date.Time.Weekday()), day.Date.Format("2 Jan"))
	b.WriteString(`<div class="events">`)
	for i := range day.Events {
		writeEvent(b, &day.Events[i])
	}
	b.WriteString(`</div>`)
	b.WriteString(`</div>`)
	b.WriteString(`</td>`)
}

func writeEvent(b *strings.Builder, e *model.Event) {
	if e.Kind == model.KindOfficeHours || e.Hide {
		return
	}

	classes := styleClasses(e)
	title := eventTitleHTML(e)

	var more []string
	for _, media := range []struct{ name, url string }{{"video", e.Video}, {"audio", e.Audio}} {
		if media.url == "" {
			continue
		}
		ext := media.url
		if i := strings.LastIndex(media.url, "."); i >= 0 {
			ext = media.url[i:]
		}
		more = append(more, fmt.Sprintf(`<a target="_blank" href="%s">%s%s</a>`,
			html.EscapeString(media.url), media.name, html.EscapeString(ext)))
	}
	for _, r := range e.Reading {
		if r.Link == "" {
			more = append(more, html.EscapeString(r.Text))
		} else {
			more = append(more, fmt.Sprintf(`<a target="_blank" href="%s">%s</a>`,
				html.EscapeString(r.Link), html.EscapeString(r.Text)))
		}
	}

	if len(more) > 0 {
		fmt.Fprintf(b, `<details class="%s">`, classes)
		fmt.Fprintf(b, `<summary>%s</summary>`, title)
		b.WriteString(strings.Join(more, ` <small>and</small> `))
		b.WriteString(`</details>`)
	} else {
		fmt.Fprintf(b, `<div class="%s">%s</div>`, classes, title)
	}
}

// styleClasses builds the cell's CSS class list from the event's section,
// kind and group tags.
func styleClasses(e *model.Event) string {
	var classes []string
	if e.Section != "" {
		classes = append(classes, e.Section)
	}
	classes = append(classes, e.Kind.String())
	if e.Group != "" {
		classes = append(classes, e.Group)
	}
	return strings.Join(classes, " ")
}

func eventTitleHTML(e *model.Event) string {
	if len(e.Titles) == 0 {
		return "TBA"
	}
	escaped := make([]string, len(e.Titles))
	for i, t := range e.Titles {
		escaped[i] = html.EscapeString(t)
	}
	title := strings.Join(escaped, ` <small>and</small> `)
	if e.Link != "" {
		title = fmt.Sprintf(`<a target="_blank" href="%s">%s</a>`, html.EscapeString(e.Link), title)
	}
	return title
}
