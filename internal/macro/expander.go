package macro

import (
	"context"
	"fmt"
	"strings"
)

// Expander expands every macro tag in a phrase.
// It holds no per-call state and may be shared between goroutines.
type Expander struct {
	registry *Registry
	engine   *Engine
}

// NewExpander creates an expander dispatching through reg with eng's resources.
// A nil registry means the built-in macros. Unset engine fields fall back to
// the NewEngine defaults; eng itself is not modified.
func NewExpander(reg *Registry, eng *Engine) *Expander {
	if reg == nil {
		reg = DefaultRegistry()
	}
	return &Expander{registry: reg, engine: eng.withDefaults()}
}

// Registry returns the registry used for dispatch.
func (x *Expander) Registry() *Registry {
	return x.registry
}

// Process expands the macro tags in text from left to right. Each expansion
// replaces its tag and is never rescanned. Text outside tags is kept as is.
// The first failure aborts the whole phrase and no partial text is returned.
// A <cursor> in the result becomes trailing <left> key tokens.
func (x *Expander) Process(ctx context.Context, text string) (string, error) {
	logger := x.engine.Logger
	sc := NewScanner(text, x.registry.Has)

	var out strings.Builder
	pos := 0
	count := 0

	for {
		if err := ctx.Err(); err != nil {
			return "", err
		}

		tag, err := sc.Next(pos)
		if err != nil {
			return "", fmt.Errorf("parse macros: %w", err)
		}
		if tag == nil {
			break
		}

		logger.Debug("expanding macro", "name", tag.Name, "offset", tag.Start)

		expansion, err := x.registry.Dispatch(ctx, x.engine, tag)
		if err != nil {
			logger.Debug("macro failed", "name", tag.Name, "offset", tag.Start, "err", err)
			return "", fmt.Errorf("expand <%s> at offset %d: %w", tag.Name, tag.Start, err)
		}

		out.WriteString(text[pos:tag.Start])
		out.WriteString(expansion)
		pos = tag.End
		count++
	}
	out.WriteString(text[pos:])

	if count > 0 {
		logger.Debug("phrase expanded", "macros", count)
	}

	return resolveCursor(out.String()), nil
}
