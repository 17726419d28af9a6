package macro

import (
	"strings"
)

// Args maps macro argument names to their unescaped values.
type Args map[string]string

// ParseArgs parses a macro attribute list such as
//
//	name='test name' args="it's a \"quote\""
//
// into an argument map. Values may be single quoted, double quoted or bare.
// Inside a quoted value only an unescaped instance of the same quote ends the
// value; the other quote character, '=', '<' and '>' are ordinary content.
func ParseArgs(raw string) (Args, error) {
	s := &argScanner{input: raw}
	args, _, err := s.scan()
	if err != nil {
		return nil, err
	}
	return args, nil
}

// argScanner walks an attribute list. In tag mode a top-level '>' closes the
// tag and nested reports the start of another registered tag.
type argScanner struct {
	input  string
	pos    int
	inTag  bool
	nested func(s string, i int) bool
}

// scan consumes key=value pairs. closed reports whether a tag-closing '>' was consumed.
func (s *argScanner) scan() (args Args, closed bool, err error) {
	args = make(Args)

	for {
		s.skipSpace()
		if s.eof() {
			return args, false, nil
		}
		if s.inTag && s.input[s.pos] == '>' {
			s.pos++
			return args, true, nil
		}

		key, err := s.scanKey()
		if err != nil {
			return nil, false, err
		}

		value, closed, err := s.scanValue()
		if err != nil {
			return nil, false, err
		}
		args[key] = value

		if closed {
			return args, true, nil
		}
	}
}

// scanKey reads an argument name and the '=' that follows it.
func (s *argScanner) scanKey() (string, error) {
	start := s.pos

	for !s.eof() {
		c := s.input[s.pos]
		switch {
		case c == '=':
			if s.pos == start {
				return "", NewParseError(start, "empty argument name")
			}
			key := s.input[start:s.pos]
			s.pos++
			return key, nil
		case isSpace(c), isQuote(c), s.inTag && c == '>':
			return "", missingEquals(start, s.input[start:s.pos])
		}
		s.pos++
	}

	return "", missingEquals(start, s.input[start:])
}

// scanValue reads one value made of quoted and bare segments.
func (s *argScanner) scanValue() (string, bool, error) {
	var b strings.Builder

	for !s.eof() {
		c := s.input[s.pos]
		switch {
		case isQuote(c):
			if err := s.scanQuoted(&b, c); err != nil {
				return "", false, err
			}
			if s.inTag && !s.eof() && s.input[s.pos] == '>' {
				s.pos++
				return b.String(), true, nil
			}
		case isSpace(c):
			return b.String(), false, nil
		default:
			if s.nested != nil && s.nested(s.input, s.pos) {
				return "", false, NewParseError(s.pos, "nested macro tag")
			}
			if s.scanBare(&b) {
				return b.String(), true, nil
			}
		}
	}

	return b.String(), false, nil
}

// scanQuoted reads a value delimited by quote, unescaping \quote and \\.
func (s *argScanner) scanQuoted(b *strings.Builder, quote byte) error {
	start := s.pos
	s.pos++

	for !s.eof() {
		c := s.input[s.pos]
		if c == '\\' && s.pos+1 < len(s.input) {
			next := s.input[s.pos+1]
			if next == quote || next == '\\' {
				b.WriteByte(next)
				s.pos += 2
				continue
			}
		}
		if c == quote {
			s.pos++
			return nil
		}
		b.WriteByte(c)
		s.pos++
	}

	return NewParseErrorf(start, "unterminated %c-quoted value", quote)
}

// scanBare reads an unquoted run. In tag mode the run may contain '<' and '>';
// the tag closes at the last '>' of the run. The run stops before anything
// that looks like the start of another tag, such as <b or </b.
// Reports whether the tag closed.
func (s *argScanner) scanBare(b *strings.Builder) bool {
	start := s.pos
	end := start
	for end < len(s.input) {
		c := s.input[end]
		if isSpace(c) || isQuote(c) {
			break
		}
		if end > start && s.nested != nil && s.nested(s.input, end) {
			break
		}
		if end > start && s.inTag && isTagLike(s.input, end) {
			break
		}
		end++
	}

	run := s.input[start:end]
	if s.inTag {
		if k := strings.LastIndexByte(run, '>'); k >= 0 {
			b.WriteString(run[:k])
			s.pos = start + k + 1
			return true
		}
	}

	b.WriteString(run)
	s.pos = end
	return false
}

func (s *argScanner) skipSpace() {
	for !s.eof() && isSpace(s.input[s.pos]) {
		s.pos++
	}
}

func (s *argScanner) eof() bool {
	return s.pos >= len(s.input)
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}

// isTagLike reports whether text[i] is a '<' opening a tag-shaped construct:
// a letter, '/' or '!' must follow it.
func isTagLike(text string, i int) bool {
	if text[i] != '<' || i+1 >= len(text) {
		return false
	}
	c := text[i+1]
	return isLetter(rune(c)) || c == '/' || c == '!'
}

func isQuote(c byte) bool {
	return c == '\'' || c == '"'
}
