package phrase

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bundle.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`folder: email
phrases:
  - name: sig
    content: |
      Regards,
      <cursor>
  - name: today
    folder: misc
    content: "<date format=%Y-%m-%d>"
`), 0o600))

	phrases, err := LoadFile(path)
	require.NoError(t, err)
	require.Len(t, phrases, 2)

	assert.Equal(t, "sig", phrases[0].Name)
	assert.Equal(t, "email", phrases[0].Folder)
	assert.Equal(t, "Regards,\n<cursor>\n", phrases[0].Content)

	assert.Equal(t, "misc", phrases[1].Folder)
	assert.Equal(t, "<date format=%Y-%m-%d>", phrases[1].Content)
}

func TestDecode_Errors(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		contains string
	}{
		{"unknown field", "phrases:\n  - name: a\n    body: x\n", "body"},
		{"missing name", "phrases:\n  - content: x\n", "phrase 1"},
		{"duplicate", "phrases:\n  - name: a\n  - name: a\n", `duplicate name "a"`},
		{"not yaml", "phrases: [", "invalid phrase bundle"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(strings.NewReader(tt.input))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.contains)
		})
	}
}

func TestDecode_Empty(t *testing.T) {
	phrases, err := Decode(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, phrases)
}

func TestEncode(t *testing.T) {
	in := []*Phrase{
		{Name: "sig", Folder: "email", Content: "Regards,\n<cursor>\n"},
		{Name: "hi", Content: "hello"},
	}

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, in))

	out, err := Decode(&buf)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, in[0].Content, out[0].Content)
	assert.Equal(t, "email", out[0].Folder)
	assert.Equal(t, "", out[1].Folder)
}

func TestLoadFile_Missing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
