package usort

import (
	"fmt"
	"regexp"
	"slices"
	"sort"
	"strings"

	"github.com/cosinequanon/ufmt/internal/pytok"
)

// statement is one top-level import plus its attached comments.
type statement struct {
	comments []string
	lines    []string
	module   string
	relDots  int
	plain    bool // "import x" rather than "from x import y"
	pinned   bool
	rank     int
	key      string
	index    int
}

// block is a contiguous run of import statements. Blank lines, code,
// and floating comments end a block; blocks sort independently.
type block struct {
	start int
	end   int
	stmts []statement
}

var skipDirective = regexp.MustCompile(`#.*usort:\s*skip`)

// Sort reorders the import blocks of text and returns the result.
// Unchanged input is returned as-is. The path appears in error
// messages only; it does not affect sorting.
func Sort(text string, cfg Config, path string) (string, error) {
	if text == "" {
		return text, nil
	}

	lines := strings.Split(text, "\n")
	facts := pytok.Facts(text)

	blocks, err := parseBlocks(lines, facts, cfg, path)
	if err != nil {
		return "", err
	}
	if len(blocks) == 0 {
		return text, nil
	}

	out := make([]string, 0, len(lines)+4)
	prev := 0
	changed := false
	for _, b := range blocks {
		out = append(out, lines[prev:b.start]...)
		rendered := renderBlock(b)
		if !slices.Equal(rendered, lines[b.start:b.end]) {
			changed = true
		}
		out = append(out, rendered...)
		prev = b.end
	}
	out = append(out, lines[prev:]...)

	if !changed {
		return text, nil
	}
	return strings.Join(out, "\n"), nil
}

// startable reports whether line idx begins fresh top-level code.
func startable(facts []pytok.LineFacts, idx int) bool {
	f := facts[idx]
	return !f.InString && f.Depth == 0 && !f.Continued
}

func commentLine(line string) bool {
	return strings.HasPrefix(strings.TrimLeft(line, " \t"), "#")
}

// importLine matches column-zero import and from statements only.
// Indented imports sit inside some suite and are left alone.
func importLine(line string) bool {
	rest, ok := strings.CutPrefix(line, "import")
	if !ok {
		rest, ok = strings.CutPrefix(line, "from")
	}
	if !ok || rest == "" {
		return false
	}
	return rest[0] == ' ' || rest[0] == '\t'
}

func parseBlocks(lines []string, facts []pytok.LineFacts, cfg Config, path string) ([]block, error) {
	var blocks []block
	i := 0
	for i < len(lines) {
		if !startable(facts, i) {
			i++
			continue
		}
		j := i
		for j < len(lines) && startable(facts, j) && commentLine(lines[j]) {
			j++
		}
		if j >= len(lines) || !startable(facts, j) || !importLine(lines[j]) {
			if j == i {
				i++
			} else {
				i = j
			}
			continue
		}
		if i == 0 && j > 0 {
			// Comments opening the file (shebang, license, coding
			// cookie) are a preamble, not part of the first import.
			i = j
		}

		blk := block{start: i}
		k := i
		for k < len(lines) {
			c := k
			for c < len(lines) && startable(facts, c) && commentLine(lines[c]) {
				c++
			}
			if c >= len(lines) || !startable(facts, c) || !importLine(lines[c]) {
				break
			}
			st, next, err := parseStatement(lines, facts, c, cfg)
			if err != nil {
				return nil, fmt.Errorf("%s: %w", path, err)
			}
			st.comments = slices.Clone(lines[k:c])
			st.index = len(blk.stmts)
			blk.stmts = append(blk.stmts, st)
			k = next
		}
		blk.end = k
		blocks = append(blocks, blk)
		i = k
	}
	return blocks, nil
}

// parseStatement consumes one import statement starting at line c and
// returns it along with the index of the first line after it.
func parseStatement(lines []string, facts []pytok.LineFacts, c int, cfg Config) (statement, int, error) {
	end := c + 1
	for end < len(lines) && (facts[end].Depth > 0 || facts[end].Continued || facts[end].InString) {
		end++
	}

	st := statement{lines: slices.Clone(lines[c:end])}
	frag := strings.Join(st.lines, "\n")

	logical := stripComments(frag)
	logical = strings.ReplaceAll(logical, "\\", " ")
	logical = strings.Map(func(r rune) rune {
		switch r {
		case '(', ')', ',', '\n':
			return ' '
		}
		return r
	}, logical)

	fields := strings.Fields(logical)
	if len(fields) < 2 {
		return statement{}, 0, fmt.Errorf("line %d: unparseable import statement", c+1)
	}
	switch fields[0] {
	case "import":
		st.plain = true
		st.module = fields[1]
	case "from":
		target := fields[1]
		for st.relDots < len(target) && target[st.relDots] == '.' {
			st.relDots++
		}
		st.module = target[st.relDots:]
	}

	st.pinned = skipDirective.MatchString(frag) || cfg.sideEffect(st.module)
	st.rank = cfg.rank(cfg.category(st.module, st.relDots))
	st.key = strings.ToLower(st.module)
	return st, end, nil
}

// stripComments blanks out comment spans so they cannot confuse
// module extraction.
func stripComments(frag string) string {
	_, comments := pytok.Index(frag)
	if len(comments) == 0 {
		return frag
	}
	b := []byte(frag)
	for _, span := range comments {
		for i := span.Start; i < span.End; i++ {
			b[i] = ' '
		}
	}
	return string(b)
}

// renderBlock emits a block's statements in sorted order. Pinned
// statements act as barriers: they keep their position and the runs
// around them sort independently.
func renderBlock(b block) []string {
	var out []string
	prevRank := -1
	prevPinned := false
	emit := func(st statement) {
		// Category groups are separated by one blank line. Pinned
		// statements never grow new separators around themselves.
		if prevRank >= 0 && st.rank != prevRank && !st.pinned && !prevPinned {
			out = append(out, "")
		}
		prevRank = st.rank
		prevPinned = st.pinned
		out = append(out, st.comments...)
		out = append(out, st.lines...)
	}

	var run []statement
	flush := func() {
		sort.SliceStable(run, func(a, b int) bool {
			x, y := run[a], run[b]
			if x.rank != y.rank {
				return x.rank < y.rank
			}
			// Shallower relative imports sort first: . before ..
			if x.relDots != y.relDots {
				return x.relDots < y.relDots
			}
			if x.key != y.key {
				return x.key < y.key
			}
			if x.plain != y.plain {
				return x.plain
			}
			return false
		})
		for _, st := range run {
			emit(st)
		}
		run = run[:0]
	}

	for _, st := range b.stmts {
		if st.pinned {
			flush()
			emit(st)
			continue
		}
		run = append(run, st)
	}
	flush()
	return out
}
