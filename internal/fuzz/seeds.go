package fuzztests

import (
	"os"
	"path/filepath"
	"testing"
)

// maxSeedBytes ограничивает размер записи корпуса (64 KiB).
const maxSeedBytes = 64 << 10

// inlineSeeds keeps the corpus useful even without testdata: import
// blocks, string quoting corners, an unterminated triple quote, and a
// magic trailing comma.
var inlineSeeds = []string{
	"",
	"import os\n",
	"import sys\nimport os\n\nprint('hi')\n",
	"from a import (b,\n    c)\n",
	"x = 'it\\'s'\ny = \"\"\n",
	"s = '''\nopen\n",
	"# comment\nif True:\n    pass  # trailing\n",
	"t = (1,\n     2,)\n",
}

func addCorpusSeeds(f *testing.F) {
	for _, seed := range inlineSeeds {
		f.Add([]byte(seed))
	}
	matches, err := filepath.Glob(filepath.Join("..", "..", "testdata", "*.py"))
	if err != nil {
		return
	}
	for _, path := range matches {
		// #nosec G304 -- paths come from the repository testdata glob
		src, err := os.ReadFile(path)
		if err != nil {
			continue
		}
		if len(src) > maxSeedBytes {
			src = src[:maxSeedBytes]
		}
		f.Add(append([]byte(nil), src...))
	}
}
