package macro

import (
	"context"

	"github.com/ncruces/go-strftime"
)

var dateRequired = []string{"format"}

var dateDefinition = Definition{
	Name:        "date",
	Description: "Current date/time formatted with a strftime pattern",
	Required:    dateRequired,
	Source:      "builtin",
	New:         newDateMacro,
}

// DateMacro formats the engine clock's current time.
type DateMacro struct {
	Format string `arg:"format"`

	clock Clock
}

func newDateMacro(eng *Engine, args Args) (Macro, error) {
	m := &DateMacro{clock: eng.Clock}
	if err := decodeArgs("date", args, dateRequired, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Expand returns the formatted time.
func (m *DateMacro) Expand(_ context.Context) (string, error) {
	return strftime.Format(m.Format, m.clock.Now()), nil
}
