package walk

import "testing"

func TestMatcherPatterns(t *testing.T) {
	cases := []struct {
		name     string
		patterns []string
		rel      string
		isDir    bool
		want     bool
	}{
		{"basename glob", []string{"*.pyc"}, "pkg/mod.pyc", false, true},
		{"basename glob miss", []string{"*.pyc"}, "pkg/mod.py", false, false},
		{"bare name any depth", []string{"build"}, "a/b/build", true, true},
		{"anchored", []string{"/scratch.py"}, "scratch.py", false, true},
		{"anchored deep miss", []string{"/scratch.py"}, "pkg/scratch.py", false, false},
		{"path pattern is anchored", []string{"pkg/gen/*.py"}, "pkg/gen/x.py", false, true},
		{"path pattern not floating", []string{"pkg/gen/*.py"}, "other/pkg/gen/x.py", false, false},
		{"dir only on file itself", []string{"fixtures/"}, "fixtures", false, false},
		{"dir only on dir", []string{"fixtures/"}, "fixtures", true, true},
		{"file under excluded dir", []string{"fixtures/"}, "fixtures/a/b.py", false, true},
		{"negation last wins", []string{"*_gen.py", "!keep_gen.py"}, "pkg/keep_gen.py", false, false},
		{"negation order matters", []string{"!keep_gen.py", "*_gen.py"}, "pkg/keep_gen.py", false, true},
		{"doublestar", []string{"**/snapshots/**"}, "tests/snapshots/case1/out.py", false, true},
		{"comment ignored", []string{"# note", "app.py"}, "app.py", false, true},
		{"blank ignored", []string{"", "app.py"}, "app.py", false, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			m := NewMatcher(tc.patterns)
			if got := m.Match(tc.rel, tc.isDir); got != tc.want {
				t.Errorf("Match(%q, %v) = %v, want %v", tc.rel, tc.isDir, got, tc.want)
			}
		})
	}
}
