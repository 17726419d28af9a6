package macro

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func knownNames(names ...string) func(string) bool {
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return func(name string) bool { return set[name] }
}

func TestScanner_Next(t *testing.T) {
	known := knownNames("date", "file", "cursor", "greet.hello")

	tests := []struct {
		name      string
		input     string
		start     int
		wantName  string
		wantArgs  Args
		wantStart int
		wantEnd   int
	}{
		{
			name:     "quoted greater-than",
			input:    `<file name="a>b">`,
			wantName: "file", wantArgs: Args{"name": "a>b"},
			wantStart: 0, wantEnd: 17,
		},
		{
			name:     "tag without args",
			input:    "x <cursor> y",
			wantName: "cursor", wantArgs: Args{},
			wantStart: 2, wantEnd: 10,
		},
		{
			name:     "start offset skips earlier tags",
			input:    "<cursor><cursor>",
			start:    1,
			wantName: "cursor", wantArgs: Args{},
			wantStart: 8, wantEnd: 16,
		},
		{
			name:     "bare value containing greater-than",
			input:    "<date format=%m>%y>",
			wantName: "date", wantArgs: Args{"format": "%m>%y"},
			wantStart: 0, wantEnd: 19,
		},
		{
			name:     "bare value containing less-than",
			input:    "<date format=%m<%y>",
			wantName: "date", wantArgs: Args{"format": "%m<%y"},
			wantStart: 0, wantEnd: 19,
		},
		{
			name:     "bare value wrapped in brackets",
			input:    "<date format=<%m%y>>",
			wantName: "date", wantArgs: Args{"format": "<%m%y>"},
			wantStart: 0, wantEnd: 20,
		},
		{
			name:     "adjacent tag ends bare value",
			input:    "<file name=F><cursor>",
			wantName: "file", wantArgs: Args{"name": "F"},
			wantStart: 0, wantEnd: 13,
		},
		{
			name:     "bare value ends at whitespace",
			input:    "<file name=/tmp/x.txt> more > text",
			wantName: "file", wantArgs: Args{"name": "/tmp/x.txt"},
			wantStart: 0, wantEnd: 22,
		},
		{
			name:     "dotted user macro name",
			input:    "hi <greet.hello name='Bob'>!",
			wantName: "greet.hello", wantArgs: Args{"name": "Bob"},
			wantStart: 3, wantEnd: 27,
		},
		{
			name:     "quote then bracket closes the tag",
			input:    "<date format='%Y'><b>bold</b>",
			wantName: "date", wantArgs: Args{"format": "%Y"},
			wantStart: 0, wantEnd: 18,
		},
		{
			name:     "quoted value followed by arrow text",
			input:    `<date format="%Y">-->`,
			wantName: "date", wantArgs: Args{"format": "%Y"},
			wantStart: 0, wantEnd: 18,
		},
		{
			name:     "html after bare value",
			input:    "<date format=%Y><b>bold</b>",
			wantName: "date", wantArgs: Args{"format": "%Y"},
			wantStart: 0, wantEnd: 16,
		},
		{
			name:     "closing tag after bare value",
			input:    "<date format=%Y></p>",
			wantName: "date", wantArgs: Args{"format": "%Y"},
			wantStart: 0, wantEnd: 16,
		},
		{
			name:     "prose before a real tag",
			input:    "<date with sugar> <cursor>",
			wantName: "cursor", wantArgs: Args{},
			wantStart: 18, wantEnd: 26,
		},
		{
			name:     "unknown tag is skipped",
			input:    "<b>bold</b> <cursor>",
			wantName: "cursor", wantArgs: Args{},
			wantStart: 12, wantEnd: 20,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tag, err := NewScanner(tt.input, known).Next(tt.start)
			require.NoError(t, err)
			require.NotNil(t, tag, "expected a tag")

			assert.Equal(t, tt.wantName, tag.Name)
			assert.Equal(t, tt.wantArgs, tag.Args)
			assert.Equal(t, tt.wantStart, tag.Start, "start")
			assert.Equal(t, tt.wantEnd, tag.End, "end")
			assert.Equal(t, tt.input[tag.Start:tag.End], tag.Raw)
		})
	}
}

func TestScanner_NoTag(t *testing.T) {
	known := knownNames("date", "file", "cursor")

	inputs := []string{
		"",
		"no tags here",
		"1 < 2 > 0",
		"<notamacro x=1>",
		"<Date format=%y>",
		"<date:x>",
		"<date",
		"trailing <",
		"<>",
		"<file name>",
		"I like a <date with sugar>",
		"<cursor here please>",
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			tag, err := NewScanner(input, known).Next(0)
			require.NoError(t, err)
			assert.Nil(t, tag)
		})
	}
}

func TestScanner_Errors(t *testing.T) {
	known := knownNames("date", "file", "cursor")

	tests := []struct {
		name    string
		input   string
		wantMsg string
	}{
		{"nested macro", "<date format=<cursor>>", "nested macro tag"},
		{"unterminated quote", "<file name='x>", "unterminated"},
		{"empty argument name", "<file =x>", "empty argument name"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewScanner(tt.input, known).Next(0)

			var perr *ParseError
			require.ErrorAs(t, err, &perr)
			assert.Contains(t, perr.Msg, tt.wantMsg)
		})
	}
}
