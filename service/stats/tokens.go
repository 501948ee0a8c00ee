package stats

import (
	"github.com/viant/parsly"
	"github.com/viant/parsly/matcher"
)

const (
	whitespaceCode = iota
	quotedCode
	termCode
	colonCode
	valuesCode
)

var (
	whitespaceToken = parsly.NewToken(whitespaceCode, "Whitespace", matcher.NewWhiteSpace())
	quotedToken     = parsly.NewToken(quotedCode, "Quoted", &quotedMatcher{})
	termToken       = parsly.NewToken(termCode, "Term", &termMatcher{})
	colonToken      = parsly.NewToken(colonCode, ":", matcher.NewByte(':'))
	valuesToken     = parsly.NewToken(valuesCode, "Values", &valuesMatcher{})
)

// quotedMatcher matches a double quoted phrase; a backslash escapes the
// next byte.
type quotedMatcher struct{}

func (m *quotedMatcher) Match(cursor *parsly.Cursor) int {
	input := cursor.Input
	pos := cursor.Pos
	if pos >= cursor.InputSize || input[pos] != '"' {
		return 0
	}
	for i := pos + 1; i < cursor.InputSize; i++ {
		switch input[i] {
		case '\\':
			i++
		case '"':
			return i - pos + 1
		}
	}
	return 0
}

// termMatcher matches a bare word up to whitespace, a quote or a colon.
type termMatcher struct{}

func (m *termMatcher) Match(cursor *parsly.Cursor) int {
	matched := 0
	for i := cursor.Pos; i < cursor.InputSize; i++ {
		c := cursor.Input[i]
		if isSpace(c) || c == '"' || c == ':' {
			break
		}
		matched++
	}
	return matched
}

// valuesMatcher matches a comma separated value list up to whitespace.
type valuesMatcher struct{}

func (m *valuesMatcher) Match(cursor *parsly.Cursor) int {
	matched := 0
	for i := cursor.Pos; i < cursor.InputSize; i++ {
		if isSpace(cursor.Input[i]) {
			break
		}
		matched++
	}
	return matched
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
