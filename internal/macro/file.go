package macro

import "context"

var fileRequired = []string{"name"}

var fileDefinition = Definition{
	Name:        "file",
	Description: "Inserts the full contents of a file",
	Required:    fileRequired,
	Source:      "builtin",
	New:         newFileMacro,
}

// FileMacro inserts a file's contents verbatim.
type FileMacro struct {
	Name string `arg:"name"`

	files FileReader
}

func newFileMacro(eng *Engine, args Args) (Macro, error) {
	m := &FileMacro{files: eng.Files}
	if err := decodeArgs("file", args, fileRequired, m); err != nil {
		return nil, err
	}
	return m, nil
}

// Expand reads the file.
func (m *FileMacro) Expand(_ context.Context) (string, error) {
	data, err := m.files.ReadFile(m.Name)
	if err != nil {
		return "", &ResourceError{Macro: "file", Resource: m.Name, Cause: err}
	}
	return string(data), nil
}
