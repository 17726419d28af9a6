package macro

import (
	"fmt"
	"path/filepath"
)

// ParseError reports malformed tag or argument syntax.
// Offset is the byte offset into the text being parsed.
type ParseError struct {
	Offset int
	Msg    string

	// noEquals marks a word without '=' where an argument was expected.
	noEquals bool
}

// NewParseError creates a new parse error.
func NewParseError(offset int, msg string) *ParseError {
	return &ParseError{Offset: offset, Msg: msg}
}

// NewParseErrorf creates a new parse error with formatting.
func NewParseErrorf(offset int, format string, args ...any) *ParseError {
	return &ParseError{Offset: offset, Msg: fmt.Sprintf(format, args...)}
}

func missingEquals(offset int, word string) *ParseError {
	return &ParseError{
		Offset:   offset,
		Msg:      fmt.Sprintf("missing '=' after argument %q", word),
		noEquals: true,
	}
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("offset %d: %s", e.Offset, e.Msg)
}

// MissingArgumentError indicates a macro was used without one of its required arguments.
type MissingArgumentError struct {
	Macro string
	Arg   string
}

func (e *MissingArgumentError) Error() string {
	return fmt.Sprintf("macro <%s> requires argument %q", e.Macro, e.Arg)
}

// ResourceError wraps a failure of an external resource (file, script, command)
// used while expanding a macro.
type ResourceError struct {
	Macro    string
	Resource string
	Cause    error
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("macro <%s>: %s: %v", e.Macro, e.Resource, e.Cause)
}

func (e *ResourceError) Unwrap() error {
	return e.Cause
}

// RegistryError represents an error registering a macro definition.
type RegistryError struct {
	Name    string
	Message string
}

func (e *RegistryError) Error() string {
	return fmt.Sprintf("macro %q: %s", e.Name, e.Message)
}

// LoadError represents an error loading a user macro file.
type LoadError struct {
	File    string
	Message string
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("macros/%s: %s", filepath.Base(e.File), e.Message)
}
