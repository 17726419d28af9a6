package macro

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/wohanley/autokey/internal/typing"
)

// cursorMarker stands in for <cursor> until the whole phrase is expanded.
// It uses private-use runes so it cannot collide with typed text.
const cursorMarker = "\ue000cursor\ue000"

var cursorDefinition = Definition{
	Name:        "cursor",
	Description: "Leaves the cursor at this position after the phrase is typed",
	Source:      "builtin",
	New: func(_ *Engine, _ Args) (Macro, error) {
		return CursorMacro{}, nil
	},
}

// CursorMacro marks where the cursor should end up.
type CursorMacro struct{}

// Expand returns the cursor marker.
func (CursorMacro) Expand(_ context.Context) (string, error) {
	return cursorMarker, nil
}

// resolveCursor replaces the first cursor marker with one left-move per rune
// typed after it. Later markers are dropped.
func resolveCursor(text string) string {
	before, after, found := strings.Cut(text, cursorMarker)
	if !found {
		return text
	}
	after = strings.ReplaceAll(after, cursorMarker, "")
	n := utf8.RuneCountInString(after)
	return before + after + strings.Repeat(typing.TokenLeft, n)
}
