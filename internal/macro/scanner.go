package macro

import (
	"errors"
	"strings"
)

// Tag is a macro tag found in phrase text.
// The tag occupies input[Start:End]; Raw is that source text.
type Tag struct {
	Name  string
	Args  Args
	Start int
	End   int
	Raw   string
}

// Scanner finds macro tags in phrase text.
type Scanner struct {
	input string
	known func(name string) bool
}

// NewScanner creates a scanner over input. known reports whether a tag name is
// a registered macro; tags with other names are left as literal text.
func NewScanner(input string, known func(name string) bool) *Scanner {
	return &Scanner{input: input, known: known}
}

// Next returns the first macro tag starting at or after offset start, or nil
// when no further tag exists. A '<' that does not open a registered, closed
// tag is literal text, and so is prose such as "<date with sugar>" whose
// words are not key=value pairs. Other malformed arguments inside a
// registered tag are reported as a *ParseError.
func (s *Scanner) Next(start int) (*Tag, error) {
	i := start
	for i < len(s.input) {
		j := strings.IndexByte(s.input[i:], '<')
		if j < 0 {
			return nil, nil
		}
		at := i + j

		name, nameEnd := s.tagName(at)
		if name == "" || !s.known(name) {
			i = at + 1
			continue
		}

		as := &argScanner{
			input:  s.input,
			pos:    nameEnd,
			inTag:  true,
			nested: s.isTagStart,
		}
		args, closed, err := as.scan()
		var perr *ParseError
		if errors.As(err, &perr) && perr.noEquals {
			i = at + 1
			continue
		}
		if err != nil {
			return nil, err
		}
		if !closed {
			// Stray bracket such as "<date" at the end of the text
			i = at + 1
			continue
		}

		return &Tag{
			Name:  name,
			Args:  args,
			Start: at,
			End:   as.pos,
			Raw:   s.input[at:as.pos],
		}, nil
	}

	return nil, nil
}

// tagName reads the identifier following the '<' at offset at.
// Returns "" when the '<' is not followed by a well-formed tag name.
func (s *Scanner) tagName(at int) (string, int) {
	k := at + 1
	for k < len(s.input) && isNameChar(s.input[k]) {
		k++
	}
	if k == at+1 {
		return "", at
	}
	if k < len(s.input) && !isSpace(s.input[k]) && s.input[k] != '>' {
		return "", at
	}
	return s.input[at+1 : k], k
}

// isTagStart reports whether a registered macro tag starts at offset i of text.
func (s *Scanner) isTagStart(text string, i int) bool {
	if text[i] != '<' {
		return false
	}
	name, _ := s.tagName(i)
	return name != "" && s.known(name)
}

func isNameChar(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') ||
		c == '_' || c == '-' || c == '.'
}
