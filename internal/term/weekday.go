package term

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrUnrecognizedWeekday is returned for a weekday token that cannot be
// mapped to a canonical index. It is fatal to a synthesis run: a bad token
// would silently change which dates a section or office-hours entry covers.
var ErrUnrecognizedWeekday = errors.New("unrecognized weekday")

// Weekday is a canonical weekday index with Monday=0 through Sunday=6.
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

// ParseWeekday normalizes a human weekday token to a Weekday.
//
// Accepted forms (case-insensitive):
//   - an already-canonical index "0".."6"
//   - the first two letters of the English name ("mo", "tue", "Thursday", ...)
//   - single-letter mnemonics m t w h f s u, where Thursday is "h" and
//     Sunday is "u" to keep the letters unambiguous.
func ParseWeekday(token string) (Weekday, error) {
	n := strings.ToLower(strings.TrimSpace(token))

	if i, err := strconv.Atoi(n); err == nil {
		if i < 0 || i > 6 {
			return 0, fmt.Errorf("%w: %q", ErrUnrecognizedWeekday, token)
		}
		return Weekday(i), nil
	}

	switch {
	case strings.HasPrefix(n, "mo") || n == "m":
		return Monday, nil
	case strings.HasPrefix(n, "tu") || n == "t":
		return Tuesday, nil
	case strings.HasPrefix(n, "we") || n == "w":
		return Wednesday, nil
	case strings.HasPrefix(n, "th") || n == "h":
		return Thursday, nil
	case strings.HasPrefix(n, "fr") || n == "f":
		return Friday, nil
	case strings.HasPrefix(n, "sa") || n == "s":
		return Saturday, nil
	case strings.HasPrefix(n, "su") || n == "u":
		return Sunday, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnrecognizedWeekday, token)
}

// WeekdayOf converts a time.Weekday (Sunday=0) to the canonical Monday=0 index.
func WeekdayOf(w time.Weekday) Weekday {
	return Weekday((int(w) + 6) % 7)
}

func (w Weekday) String() string {
	names := [...]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}
	if w < 0 || int(w) >= len(names) {
		return fmt.Sprintf("Weekday(%d)", int(w))
	}
	return names[w]
}
