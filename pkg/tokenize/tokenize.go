// Package tokenize splits the text of a .pd file into chunks and tokens.
//
// A chunk starts at '#' and ends at the next ';' that is not escaped with a
// backslash and is followed by a line break or the end of the file. Pd vanilla
// may append directives to a chunk after an unescaped comma, e.g.
// "#X obj 10 10 osc~, f 12;" which sets the object box width to 12.
package tokenize

import "strings"

// Line is one tokenized chunk
type Line struct {
	// LineIndex is the 0-based physical line where the chunk starts
	LineIndex int
	Tokens    []string
	// AfterComma holds the directive tokens saved after an unescaped comma,
	// nil if there are none
	AfterComma []string
}

// Clone returns a copy of the line that shares no slices with l
func (l Line) Clone() Line {
	c := Line{LineIndex: l.LineIndex, Tokens: append([]string(nil), l.Tokens...)}
	if l.AfterComma != nil {
		c.AfterComma = append([]string{}, l.AfterComma...)
	}
	return c
}

// Tokenize splits the complete text of a .pd file into tokenized lines
func Tokenize(text string) []Line {
	var lines []Line
	pos := 0
	for {
		start, end, next, ok := nextChunk(text, pos)
		if !ok {
			return lines
		}
		lines = append(lines, tokenizeChunk(text[start:end], strings.Count(text[:start], "\n")))
		pos = next
	}
}

// nextChunk finds the chunk starting at the first '#' at or after pos.
// It returns the chunk body bounds (the '#' included, the ';' and the line
// break before it excluded) and the position to resume scanning from.
func nextChunk(text string, pos int) (start, end, next int, ok bool) {
	rel := strings.IndexByte(text[pos:], '#')
	if rel < 0 {
		return 0, 0, 0, false
	}
	start = pos + rel

	for i := start + 1; i < len(text); i++ {
		if text[i] != ';' {
			continue
		}

		// the terminator must be followed by an optional \r and then \n or EOF
		after := i + 1
		if after < len(text) && text[after] == '\r' {
			after++
		}
		if after < len(text) {
			if text[after] != '\n' {
				continue
			}
			after++
		}

		end = i
		if end > start+1 && text[end-1] == '\n' {
			end--
		}
		if end > start+1 && text[end-1] == '\r' {
			end--
		}
		// a body needs at least one char after '#', and it can't end with an escape
		if end <= start+1 || text[end-1] == '\\' {
			continue
		}
		return start, end, after, true
	}
	return 0, 0, 0, false
}

func tokenizeChunk(chunk string, lineIndex int) Line {
	parts := splitUnescaped(chunk, ',')
	line := Line{LineIndex: lineIndex, Tokens: TokenizeLine(parts[0])}
	if len(parts) > 1 {
		line.AfterComma = []string{}
		for _, part := range parts[1:] {
			line.AfterComma = append(line.AfterComma, TokenizeLine(part)...)
		}
	}
	return line
}

// splitUnescaped splits s on every sep that is not preceded by a backslash
func splitUnescaped(s string, sep byte) []string {
	var parts []string
	last := 0
	for i := 0; i < len(s); i++ {
		if s[i] == sep && (i == 0 || s[i-1] != '\\') {
			parts = append(parts, s[last:i])
			last = i + 1
		}
	}
	return append(parts, s[last:])
}

// TokenizeLine splits a chunk body into tokens.
//
// Runs of unescaped whitespace separate tokens, and \r or \n always do.
// An escaped comma or semicolon ("\," or "\;"), along with the unescaped
// whitespace around it, becomes a standalone "," or ";" token: that is how
// message boxes separate their sub-messages. An escaped space stays inside
// its token.
func TokenizeLine(s string) []string {
	tokens := []string{}
	tokenStart := 0

	flush := func(end int) {
		if end > tokenStart {
			tokens = append(tokens, s[tokenStart:end])
		}
	}

	i := 0
	for i < len(s) {
		c := s[i]
		escaped := i > 0 && s[i-1] == '\\'

		switch {
		case isSpace(c) && !escaped:
			j := skipSpaces(s, i)
			if sep, ok := escapedSeparator(s, j); ok {
				flush(i)
				tokens = append(tokens, sep)
				i = skipSpaces(s, j+2)
			} else {
				flush(i)
				i = j
			}
			tokenStart = i

		case c == '\\' && !escaped && i+1 < len(s) && (s[i+1] == ',' || s[i+1] == ';'):
			flush(i)
			tokens = append(tokens, string(s[i+1]))
			i = skipSpaces(s, i+2)
			tokenStart = i

		case c == '\n' || c == '\r':
			// escaped line breaks still separate tokens
			flush(i)
			i++
			if c == '\r' && i < len(s) && s[i] == '\n' {
				i++
			}
			tokenStart = i

		default:
			i++
		}
	}
	flush(len(s))
	return tokens
}

// escapedSeparator reports whether s has "\," or "\;" at i, with the
// backslash itself not escaped
func escapedSeparator(s string, i int) (string, bool) {
	if i+1 >= len(s) || s[i] != '\\' || (s[i+1] != ',' && s[i+1] != ';') {
		return "", false
	}
	if i >= 2 && s[i-2] == '\\' && s[i-1] == '\\' {
		return "", false
	}
	return string(s[i+1]), true
}

// skipSpaces returns the index of the first char at or after i that is not
// unescaped whitespace
func skipSpaces(s string, i int) int {
	for i < len(s) && isSpace(s[i]) && (i == 0 || s[i-1] != '\\') {
		i++
	}
	return i
}

func isSpace(c byte) bool {
	switch c {
	case ' ', '\t', '\n', '\r', '\v', '\f':
		return true
	}
	return false
}
