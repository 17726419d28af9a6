package macro

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Args
	}{
		{
			name:  "equals inside quoted value",
			input: `name='test name' args='long arg with spaces and ='`,
			want:  Args{"name": "test name", "args": "long arg with spaces and ="},
		},
		{
			name:  "opposite quote inside value",
			input: `name='test name' args='long arg with spaces and "'`,
			want:  Args{"name": "test name", "args": `long arg with spaces and "`},
		},
		{
			name:  "escaped delimiter quote",
			input: `name="test name" args="long arg with spaces and \""`,
			want:  Args{"name": "test name", "args": `long arg with spaces and "`},
		},
		{
			name:  "greater-than inside quoted value",
			input: `name="test name" args="long arg with spaces and >"`,
			want:  Args{"name": "test name", "args": "long arg with spaces and >"},
		},
		{
			name:  "apostrophe in double quotes",
			input: `name="n" args="it's"`,
			want:  Args{"name": "n", "args": "it's"},
		},
		{
			name:  "escaped quote in the middle",
			input: `name="n" args="a \" b"`,
			want:  Args{"name": "n", "args": `a " b`},
		},
		{
			name:  "short equals value",
			input: `name='x' args='a=b'`,
			want:  Args{"name": "x", "args": "a=b"},
		},
		{
			name:  "bare values",
			input: `format=%d/%m/%y`,
			want:  Args{"format": "%d/%m/%y"},
		},
		{
			name:  "escaped backslash",
			input: `name='C:\\dir\\'`,
			want:  Args{"name": `C:\dir\`},
		},
		{
			name:  "other backslashes kept",
			input: `name='a\nb'`,
			want:  Args{"name": `a\nb`},
		},
		{
			name:  "quoted and bare segments join",
			input: `args='arg 1',arg2`,
			want:  Args{"args": "arg 1,arg2"},
		},
		{
			name:  "empty quoted value",
			input: `name=''`,
			want:  Args{"name": ""},
		},
		{
			name:  "extra whitespace",
			input: "  name=a \t args=b  ",
			want:  Args{"name": "a", "args": "b"},
		},
		{
			name:  "empty input",
			input: "",
			want:  Args{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseArgs(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseArgs_Errors(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantMsg string
	}{
		{"unterminated single quote", `name='abc`, "unterminated '-quoted value"},
		{"unterminated double quote", `name="abc\"`, `unterminated "-quoted value`},
		{"missing equals", `name`, "missing '='"},
		{"missing equals before space", `name value=1`, "missing '='"},
		{"empty key", `=value`, "empty argument name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseArgs(tt.input)
			require.Error(t, err)

			var perr *ParseError
			require.True(t, errors.As(err, &perr), "expected *ParseError, got %T", err)
			assert.Contains(t, perr.Msg, tt.wantMsg)
		})
	}
}

func TestParseArgs_ErrorOffset(t *testing.T) {
	_, err := ParseArgs(`a=1 b='open`)

	var perr *ParseError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, 6, perr.Offset)
}

func TestSplitScriptArgs(t *testing.T) {
	tests := []struct {
		input string
		want  []string
	}{
		{"", nil},
		{"   ", nil},
		{"one", []string{"one"}},
		{"arg 1,arg2", []string{"arg 1", "arg2"}},
		{" a , b ,c", []string{"a", "b", "c"}},
		{"a,,b", []string{"a", "", "b"}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.want, SplitScriptArgs(tt.input))
		})
	}
}
