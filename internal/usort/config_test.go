package usort

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func writeConfig(t *testing.T, root, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(root, "pyproject.toml"), []byte(content), 0o644); err != nil {
		t.Fatalf("write pyproject.toml: %v", err)
	}
}

func TestFindConfigDefaults(t *testing.T) {
	cfg, err := FindConfig(t.TempDir())
	if err != nil {
		t.Fatalf("FindConfig: %v", err)
	}
	want := []string{CategoryFuture, CategoryStdlib, CategoryThirdParty, CategoryFirstParty}
	if strings.Join(cfg.Categories, ",") != strings.Join(want, ",") {
		t.Errorf("Categories = %v, want %v", cfg.Categories, want)
	}
	if cfg.DefaultCategory != CategoryThirdParty {
		t.Errorf("DefaultCategory = %q", cfg.DefaultCategory)
	}
}

func TestFindConfigReadsTable(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, strings.Join([]string{
		"[tool.usort]",
		`categories = ["future", "standard_library", "numpy", "third_party", "first_party"]`,
		`default_category = "third_party"`,
		`side_effects = ["kivy.*"]`,
		"",
		"[tool.usort.known]",
		`numpy = ["numpy", "pandas"]`,
	}, "\n"))

	cfg, err := FindConfig(filepath.Join(root, "pkg", "mod.py"))
	if err != nil {
		t.Fatalf("FindConfig: %v", err)
	}
	if len(cfg.Categories) != 5 || cfg.Categories[2] != "numpy" {
		t.Errorf("Categories = %v", cfg.Categories)
	}
	if cfg.Known["pandas"] != "numpy" {
		t.Errorf("Known = %v", cfg.Known)
	}
	if len(cfg.SideEffects) != 1 || cfg.SideEffects[0] != "kivy.*" {
		t.Errorf("SideEffects = %v", cfg.SideEffects)
	}
}

func TestFindConfigRejectsUnlistedDefault(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "[tool.usort]\ndefault_category = \"nonsense\"\n")

	if _, err := FindConfig(root); err == nil {
		t.Fatal("expected error for unlisted default_category")
	}
}

func TestFindConfigRejectsUnlistedKnownCategory(t *testing.T) {
	root := t.TempDir()
	writeConfig(t, root, "[tool.usort.known]\nmystery = [\"pkg\"]\n")

	if _, err := FindConfig(root); err == nil {
		t.Fatal("expected error for unlisted known category")
	}
}

func TestFindConfigWrongShapes(t *testing.T) {
	cases := []struct {
		name    string
		content string
	}{
		{"categories not strings", "[tool.usort]\ncategories = [1, 2]\n"},
		{"default not string", "[tool.usort]\ndefault_category = 3\n"},
		{"side_effects not strings", "[tool.usort]\nside_effects = \"kivy\"\n"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			root := t.TempDir()
			writeConfig(t, root, tc.content)
			if _, err := FindConfig(root); err == nil {
				t.Fatal("expected configuration error")
			}
		})
	}
}

func TestCategoryAssignment(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Known = map[string]string{"corelib": CategoryFirstParty}
	cases := []struct {
		module  string
		relDots int
		want    string
	}{
		{"__future__", 0, CategoryFuture},
		{"os", 0, CategoryStdlib},
		{"os.path", 0, CategoryStdlib},
		{"requests", 0, CategoryThirdParty},
		{"corelib", 0, CategoryFirstParty},
		{"corelib.db.models", 0, CategoryFirstParty},
		{"", 1, CategoryFirstParty},
		{"mod", 2, CategoryFirstParty},
	}
	for _, tc := range cases {
		if got := cfg.category(tc.module, tc.relDots); got != tc.want {
			t.Errorf("category(%q, %d) = %q, want %q", tc.module, tc.relDots, got, tc.want)
		}
	}
}

func TestSideEffectPatterns(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SideEffects = []string{"kivy.*", "readline"}
	cases := []struct {
		module string
		want   bool
	}{
		{"kivy.lang", true},
		{"kivy", true},
		{"readline", true},
		{"readline.extra", true},
		{"os", false},
	}
	for _, tc := range cases {
		if got := cfg.sideEffect(tc.module); got != tc.want {
			t.Errorf("sideEffect(%q) = %v, want %v", tc.module, got, tc.want)
		}
	}
}
