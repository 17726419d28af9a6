// Package typing describes expansion output as the typing backend sees it:
// literal text interleaved with key tokens such as <left> or <enter>.
package typing

import (
	"strings"
)

// Key is a special key the backend can press.
type Key string

// Keys understood by the backend. In phrase text each is written as <name>.
const (
	KeyLeft      Key = "left"
	KeyRight     Key = "right"
	KeyUp        Key = "up"
	KeyDown      Key = "down"
	KeyHome      Key = "home"
	KeyEnd       Key = "end"
	KeyEnter     Key = "enter"
	KeyTab       Key = "tab"
	KeyBackspace Key = "backspace"
	KeyDelete    Key = "delete"
	KeyEscape    Key = "escape"
)

// TokenLeft is the token for one cursor-left move.
const TokenLeft = "<left>"

var knownKeys = map[Key]struct{}{
	KeyLeft: {}, KeyRight: {}, KeyUp: {}, KeyDown: {}, KeyHome: {}, KeyEnd: {},
	KeyEnter: {}, KeyTab: {}, KeyBackspace: {}, KeyDelete: {}, KeyEscape: {},
}

// Token returns the phrase-text form of k.
func (k Key) Token() string {
	return "<" + string(k) + ">"
}

// IsKnown reports whether the backend understands k.
func (k Key) IsKnown() bool {
	_, ok := knownKeys[k]
	return ok
}

// EventKind identifies the type of a typing event.
type EventKind int

// EventKind constants.
const (
	EventText EventKind = iota // Literal text to type
	EventKey                   // A single key press
)

func (k EventKind) String() string {
	switch k {
	case EventText:
		return "text"
	case EventKey:
		return "key"
	default:
		return "unknown"
	}
}

// Event is one unit of typing work.
type Event struct {
	Kind EventKind
	Text string // EventText only
	Key  Key    // EventKey only
}

// Tokenize splits expanded text into literal text and key events.
// Angle-bracket text that is not a known key token stays literal.
func Tokenize(text string) []Event {
	var events []Event
	var lit strings.Builder

	flush := func() {
		if lit.Len() > 0 {
			events = append(events, Event{Kind: EventText, Text: lit.String()})
			lit.Reset()
		}
	}

	for i := 0; i < len(text); {
		if text[i] == '<' {
			if end := strings.IndexByte(text[i+1:], '>'); end >= 0 {
				k := Key(text[i+1 : i+1+end])
				if k.IsKnown() {
					flush()
					events = append(events, Event{Kind: EventKey, Key: k})
					i += end + 2
					continue
				}
			}
		}
		lit.WriteByte(text[i])
		i++
	}
	flush()

	return events
}

// CountKeys returns how many times k is pressed in events.
func CountKeys(events []Event, k Key) int {
	n := 0
	for _, e := range events {
		if e.Kind == EventKey && e.Key == k {
			n++
		}
	}
	return n
}
