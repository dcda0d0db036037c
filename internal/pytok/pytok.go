// Package pytok performs lightweight lexical analysis of Python
// source text.
//
// It is not a parser. It answers exactly the questions the transform
// passes need answered safely: where string literals and comments
// begin and end, what bracket depth each line starts at, and which
// physical lines belong to a longer logical line. Nested same-quote
// f-strings (PEP 701) are not modelled.
package pytok

import "strings"

// StringToken describes one string literal in source text.
type StringToken struct {
	// Start indexes the first prefix byte, or the opening quote when
	// the literal has no prefix.
	Start int
	// BodyStart and BodyEnd delimit the content between the quotes.
	BodyStart int
	BodyEnd   int
	// End indexes one past the closing quote. An unterminated literal
	// ends at the line break or at len(text).
	End int
	// Prefix holds the literal's prefix letters as written.
	Prefix string
	// Quote is the quote run: ', ", ''' or """.
	Quote string
	// Terminated is false when the literal never closes.
	Terminated bool
}

// Span is a half-open byte range.
type Span struct {
	Start int
	End   int
}

// LineFacts summarises lexical state at the start of a physical line.
type LineFacts struct {
	// InString is true when the line begins inside a string literal.
	InString bool
	// Depth is the open bracket depth at the start of the line.
	Depth int
	// Continued is true when the previous line ended with a
	// continuation backslash outside any string or comment.
	Continued bool
}

// Index scans text and returns every string literal and comment span,
// each list in text order.
func Index(text string) (strs []StringToken, comments []Span) {
	i := 0
	for i < len(text) {
		switch text[i] {
		case '#':
			end := i
			for end < len(text) && text[end] != '\n' {
				end++
			}
			comments = append(comments, Span{Start: i, End: end})
			i = end
		case '\'', '"':
			tok := scanString(text, i)
			strs = append(strs, tok)
			i = tok.End
		default:
			i++
		}
	}
	return strs, comments
}

// scanString consumes one string literal whose opening quote sits at
// position i. A valid prefix directly before i is folded into the
// returned token.
func scanString(text string, i int) StringToken {
	tok := StringToken{Start: i}

	j := i
	for j > 0 && isPrefixLetter(text[j-1]) {
		j--
	}
	if p := text[j:i]; ValidPrefix(p) && (j == 0 || !IsIdentByte(text[j-1])) {
		tok.Start = j
		tok.Prefix = p
	}

	quote := text[i]
	qlen := 1
	if i+2 < len(text) && text[i+1] == quote && text[i+2] == quote {
		qlen = 3
	}
	tok.Quote = text[i : i+qlen]
	tok.BodyStart = i + qlen

	k := i + qlen
	for k < len(text) {
		c := text[k]
		if c == '\\' {
			// Backslash shields the next byte even in raw strings.
			k += 2
			continue
		}
		if qlen == 1 && (c == '\n' || c == '\r') {
			// Python stops an unterminated short string at the line
			// break; the next line is lexed fresh.
			tok.BodyEnd = k
			tok.End = k
			return tok
		}
		if c == quote {
			if qlen == 1 {
				tok.BodyEnd = k
				tok.End = k + 1
				tok.Terminated = true
				return tok
			}
			if k+2 < len(text) && text[k+1] == quote && text[k+2] == quote {
				tok.BodyEnd = k
				tok.End = k + 3
				tok.Terminated = true
				return tok
			}
		}
		k++
	}
	tok.BodyEnd = len(text)
	tok.End = len(text)
	return tok
}

// Facts computes per-line lexical state. The result has one entry per
// physical line plus a final entry describing the state at EOF, so it
// is always one longer than strings.Split(text, "\n").
func Facts(text string) []LineFacts {
	strs, comments := Index(text)
	spans := mergeSpans(strs, comments)

	facts := make([]LineFacts, 0, strings.Count(text, "\n")+2)
	facts = append(facts, LineFacts{})

	depth := 0
	backslashEOL := false
	next := 0 // index into spans

	for i := 0; i < len(text); i++ {
		if text[i] == '\n' {
			facts = append(facts, LineFacts{
				InString:  insideString(strs, i+1),
				Depth:     depth,
				Continued: backslashEOL,
			})
			backslashEOL = false
			continue
		}
		for next < len(spans) && spans[next].End <= i {
			next++
		}
		if next < len(spans) && i >= spans[next].Start {
			continue
		}
		switch text[i] {
		case '(', '[', '{':
			depth++
		case ')', ']', '}':
			if depth > 0 {
				depth--
			}
		case '\\':
			if i+1 < len(text) && text[i+1] == '\n' {
				backslashEOL = true
			}
		}
	}

	facts = append(facts, LineFacts{
		InString:  insideString(strs, len(text)),
		Depth:     depth,
		Continued: backslashEOL,
	})
	return facts
}

// insideString reports whether pos falls within a string literal's
// content, including the EOF position of an unterminated literal.
func insideString(strs []StringToken, pos int) bool {
	for _, s := range strs {
		if pos <= s.Start {
			return false
		}
		if pos < s.End || (!s.Terminated && pos == s.End) {
			return true
		}
	}
	return false
}

// mergeSpans interleaves string and comment spans into one sorted,
// non-overlapping list.
func mergeSpans(strs []StringToken, comments []Span) []Span {
	spans := make([]Span, 0, len(strs)+len(comments))
	si, ci := 0, 0
	for si < len(strs) || ci < len(comments) {
		if ci >= len(comments) || (si < len(strs) && strs[si].Start < comments[ci].Start) {
			spans = append(spans, Span{Start: strs[si].Start, End: strs[si].End})
			si++
		} else {
			spans = append(spans, comments[ci])
			ci++
		}
	}
	return spans
}

// IsIdentByte reports whether b can appear in a Python identifier.
func IsIdentByte(b byte) bool {
	return b == '_' ||
		(b >= 'a' && b <= 'z') ||
		(b >= 'A' && b <= 'Z') ||
		(b >= '0' && b <= '9')
}

func isPrefixLetter(b byte) bool {
	switch b {
	case 'r', 'R', 'b', 'B', 'u', 'U', 'f', 'F':
		return true
	}
	return false
}

// ValidPrefix reports whether p is a legal string-literal prefix. The
// empty prefix is legal.
func ValidPrefix(p string) bool {
	switch strings.ToLower(p) {
	case "", "r", "b", "u", "f", "rb", "br", "rf", "fr":
		return true
	}
	return false
}
