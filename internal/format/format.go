package format

import (
	"errors"
	"sort"
	"strings"

	"github.com/cosinequanon/ufmt/internal/pytok"
)

// ErrNothingChanged reports that the passes left the text as it was.
// Callers treat it as a clean no-op, not a failure.
var ErrNothingChanged = errors.New("nothing changed")

// Format applies the style passes to LF-normalized source text and
// returns the result. Blank input and byte-identical output both
// yield ErrNothingChanged.
func Format(text string, mode Mode) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrNothingChanged
	}

	out := text
	if mode.StringNormalization {
		out = normalizeStringQuotes(out)
	}
	if !mode.MagicTrailingComma {
		out = dropTrailingCommas(out)
	}
	out = normalizeWhitespace(out)

	if out == text {
		return "", ErrNothingChanged
	}
	return out, nil
}

// edit is a byte-range replacement, applied back to front so earlier
// offsets stay valid.
type edit struct {
	start int
	end   int
	data  string
}

func applyEdits(text string, edits []edit) string {
	if len(edits) == 0 {
		return text
	}
	sort.SliceStable(edits, func(i, j int) bool {
		return edits[i].start > edits[j].start
	})
	b := []byte(text)
	for _, e := range edits {
		if e.start < 0 || e.start > e.end || e.end > len(b) {
			continue
		}
		b = append(b[:e.start], append([]byte(e.data), b[e.end:]...)...)
	}
	return string(b)
}

// normalizeStringQuotes rewrites single-quoted literals to double
// quotes when that provably leaves the value intact: short strings
// only, no f-strings, and bodies free of double quotes and escapes.
func normalizeStringQuotes(text string) string {
	strs, _ := pytok.Index(text)
	var edits []edit
	for _, s := range strs {
		if !s.Terminated || s.Quote != "'" {
			continue
		}
		if strings.ContainsAny(s.Prefix, "fF") {
			continue
		}
		body := text[s.BodyStart:s.BodyEnd]
		if strings.ContainsAny(body, "\"\\") {
			continue
		}
		edits = append(edits,
			edit{start: s.BodyStart - 1, end: s.BodyStart, data: `"`},
			edit{start: s.BodyEnd, end: s.BodyEnd + 1, data: `"`},
		)
	}
	return applyEdits(text, edits)
}

// dropTrailingCommas removes a trailing comma directly before a
// closing bracket. Parenthesized single-element tuples keep theirs;
// there the comma is the tuple.
func dropTrailingCommas(text string) string {
	strs, comments := pytok.Index(text)
	spans := mergeSpans(strs, comments)

	type level struct {
		open      byte
		subscript bool
		commas    int
		lastComma int
	}
	var stack []level
	var edits []edit

	next := 0
	for i := 0; i < len(text); i++ {
		for next < len(spans) && spans[next].End <= i {
			next++
		}
		if next < len(spans) && i >= spans[next].Start {
			continue
		}
		switch c := text[i]; c {
		case '(', '[', '{':
			lv := level{open: c, lastComma: -1}
			if c == '[' {
				lv.subscript = subscriptBefore(text, i)
			}
			stack = append(stack, lv)
		case ',':
			if len(stack) > 0 {
				top := &stack[len(stack)-1]
				top.commas++
				top.lastComma = i
			}
		case ')', ']', '}':
			if len(stack) == 0 {
				continue
			}
			top := stack[len(stack)-1]
			stack = stack[:len(stack)-1]
			if top.lastComma < 0 {
				continue
			}
			k := i - 1
			for k >= 0 && isSpace(text[k]) {
				k--
			}
			if k != top.lastComma {
				continue
			}
			if (top.open == '(' || top.subscript) && top.commas < 2 {
				// (x,) builds a tuple and d[x,] indexes with one;
				// removing the comma would change the value.
				continue
			}
			edits = append(edits, edit{start: k, end: k + 1})
		}
	}
	return applyEdits(text, edits)
}

// subscriptBefore reports whether the bracket at i indexes the value
// ending just before it. A bracket after an identifier, a call or
// subscript result, or a string literal subscripts; after a keyword or
// at the start of an expression it opens a list display.
func subscriptBefore(text string, i int) bool {
	j := i - 1
	for j >= 0 && (text[j] == ' ' || text[j] == '\t') {
		j--
	}
	if j < 0 {
		return false
	}
	switch text[j] {
	case ')', ']', '\'', '"':
		return true
	}
	if !pytok.IsIdentByte(text[j]) {
		return false
	}
	end := j + 1
	for j >= 0 && pytok.IsIdentByte(text[j]) {
		j--
	}
	return !displayKeywords[text[j+1:end]]
}

// displayKeywords can directly precede a list display; a bracket after
// one of them is not a subscript.
var displayKeywords = map[string]bool{
	"and": true, "assert": true, "await": true, "del": true,
	"elif": true, "else": true, "for": true, "if": true, "in": true,
	"is": true, "not": true, "or": true, "raise": true, "return": true,
	"while": true, "with": true, "yield": true,
}

func isSpace(b byte) bool {
	return b == ' ' || b == '\t' || b == '\n' || b == '\r'
}

// normalizeWhitespace strips trailing spaces, caps blank runs at two
// lines, removes blank lines at the file edges, and guarantees one
// trailing newline. Lines touching a multi-line string are untouched.
func normalizeWhitespace(text string) string {
	lines := strings.Split(text, "\n")
	facts := pytok.Facts(text)

	type outLine struct {
		s     string
		blank bool
	}
	out := make([]outLine, 0, len(lines))
	blanks := 0
	for i, line := range lines {
		if !facts[i+1].InString {
			line = strings.TrimRight(line, " \t")
		}
		protected := facts[i].InString || facts[i+1].InString
		if line == "" && !protected {
			blanks++
			if blanks > 2 {
				continue
			}
			out = append(out, outLine{blank: true})
			continue
		}
		blanks = 0
		out = append(out, outLine{s: line})
	}

	for len(out) > 0 && out[0].blank {
		out = out[1:]
	}
	for len(out) > 0 && out[len(out)-1].blank {
		out = out[:len(out)-1]
	}

	parts := make([]string, len(out), len(out)+1)
	for i, l := range out {
		parts[i] = l.s
	}
	if !facts[len(lines)].InString {
		parts = append(parts, "")
	}
	return strings.Join(parts, "\n")
}

// mergeSpans interleaves string and comment spans into one sorted
// list for skip checks.
func mergeSpans(strs []pytok.StringToken, comments []pytok.Span) []pytok.Span {
	spans := make([]pytok.Span, 0, len(strs)+len(comments))
	si, ci := 0, 0
	for si < len(strs) || ci < len(comments) {
		if ci >= len(comments) || (si < len(strs) && strs[si].Start < comments[ci].Start) {
			spans = append(spans, pytok.Span{Start: strs[si].Start, End: strs[si].End})
			si++
		} else {
			spans = append(spans, comments[ci])
			ci++
		}
	}
	return spans
}
