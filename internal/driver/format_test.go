package driver_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/cosinequanon/ufmt/internal/config"
	"github.com/cosinequanon/ufmt/internal/driver"
	"github.com/cosinequanon/ufmt/internal/format"
	"github.com/cosinequanon/ufmt/internal/observ"
	"github.com/cosinequanon/ufmt/internal/source"
	"github.com/cosinequanon/ufmt/internal/usort"
)

func writeFile(t *testing.T, path string, data []byte) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func readFile(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return data
}

func TestFormatString(t *testing.T) {
	in := "import sys\nimport os\n\nprint('hi')\n"
	out, err := driver.FormatString("demo.py", in, usort.DefaultConfig(), format.DefaultMode())
	if err != nil {
		t.Fatalf("FormatString: %v", err)
	}
	want := "import os\nimport sys\n\nprint(\"hi\")\n"
	if out != want {
		t.Errorf("FormatString = %q, want %q", out, want)
	}
}

func TestFormatStringBadImport(t *testing.T) {
	_, err := driver.FormatString("demo.py", "import \nx = 1\n", usort.DefaultConfig(), format.DefaultMode())
	if err == nil {
		t.Fatal("expected parse error")
	}
	if !strings.Contains(err.Error(), "demo.py") {
		t.Errorf("err = %v, want the path in the message", err)
	}
}

func TestFormatFileUnchanged(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ok.py")
	content := []byte("import os\n\nprint(\"hi\")\n")
	writeFile(t, path, content)

	res := driver.FormatFile(path, driver.Options{})
	if res.Err != nil {
		t.Fatalf("FormatFile: %v", res.Err)
	}
	if res.Changed || res.Written || res.Diff != "" {
		t.Errorf("Result = %+v, want untouched", res)
	}
	if got := readFile(t, path); string(got) != string(content) {
		t.Errorf("file rewritten to %q", got)
	}
}

func TestFormatFileWritesChange(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.py")
	writeFile(t, path, []byte("import sys\nimport os\nx = 'a'\n"))

	res := driver.FormatFile(path, driver.Options{})
	if res.Err != nil {
		t.Fatalf("FormatFile: %v", res.Err)
	}
	if !res.Changed || !res.Written {
		t.Errorf("Result = %+v, want changed and written", res)
	}
	want := "import os\nimport sys\nx = \"a\"\n"
	if got := readFile(t, path); string(got) != want {
		t.Errorf("file = %q, want %q", got, want)
	}
}

func TestFormatFileDryRun(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.py")
	content := []byte("x = 'a'\n")
	writeFile(t, path, content)

	res := driver.FormatFile(path, driver.Options{DryRun: true})
	if res.Err != nil {
		t.Fatalf("FormatFile: %v", res.Err)
	}
	if !res.Changed || res.Written {
		t.Errorf("Result = %+v, want changed but not written", res)
	}
	if got := readFile(t, path); string(got) != string(content) {
		t.Errorf("dry run rewrote the file to %q", got)
	}
}

func TestFormatFileDiff(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.py")
	writeFile(t, path, []byte("x = 'a'\n"))

	res := driver.FormatFile(path, driver.Options{DryRun: true, Diff: true})
	if res.Err != nil {
		t.Fatalf("FormatFile: %v", res.Err)
	}
	label := filepath.ToSlash(path)
	for _, want := range []string{"--- a/" + label, "+++ b/" + label, "-x = 'a'", "+x = \"a\""} {
		if !strings.Contains(res.Diff, want) {
			t.Errorf("diff missing %q:\n%s", want, res.Diff)
		}
	}

	quiet := driver.FormatFile(path, driver.Options{DryRun: true})
	if quiet.Diff != "" {
		t.Errorf("diff without the option = %q, want empty", quiet.Diff)
	}
}

func TestFormatFileIdempotent(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "app.py")
	writeFile(t, path, []byte("import sys\nimport asyncio\n\n\n\nx = 'a'\n"))

	first := driver.FormatFile(path, driver.Options{})
	if first.Err != nil || !first.Written {
		t.Fatalf("first run = %+v", first)
	}
	second := driver.FormatFile(path, driver.Options{})
	if second.Err != nil {
		t.Fatalf("second run: %v", second.Err)
	}
	if second.Changed {
		t.Errorf("second run still changes the file: %q", readFile(t, path))
	}
}

func TestFormatFileKeepsMode(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tool.py")
	writeFile(t, path, []byte("x = 'a'\n"))
	if err := os.Chmod(path, 0o755); err != nil {
		t.Fatalf("chmod: %v", err)
	}

	res := driver.FormatFile(path, driver.Options{})
	if res.Err != nil || !res.Written {
		t.Fatalf("Result = %+v", res)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o755 {
		t.Errorf("mode = %o, want 755", perm)
	}
}

func TestFormatFileRoundTripsEncoding(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "legacy.py")
	writeFile(t, path, []byte("# coding: latin-1\r\nx = 'caf\xe9'\r\n"))

	res := driver.FormatFile(path, driver.Options{})
	if res.Err != nil {
		t.Fatalf("FormatFile: %v", res.Err)
	}
	if !res.Written {
		t.Fatalf("Result = %+v, want written", res)
	}
	want := "# coding: latin-1\r\nx = \"caf\xe9\"\r\n"
	if got := readFile(t, path); string(got) != want {
		t.Errorf("file = %q, want %q", got, want)
	}
}

func TestFormatFileLeavesCleanCRLFAlone(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "win.py")
	content := []byte("import os\r\n\r\nprint(\"hi\")\r\n")
	writeFile(t, path, content)

	res := driver.FormatFile(path, driver.Options{})
	if res.Err != nil {
		t.Fatalf("FormatFile: %v", res.Err)
	}
	// The decoded text is already clean; the newline convention alone
	// must not count as a change.
	if res.Changed {
		t.Errorf("Result = %+v, want unchanged", res)
	}
	if got := readFile(t, path); string(got) != string(content) {
		t.Errorf("file = %q, want untouched", got)
	}
}

func TestFormatFileEmpty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.py")
	writeFile(t, path, nil)

	res := driver.FormatFile(path, driver.Options{})
	if res.Err != nil {
		t.Fatalf("FormatFile: %v", res.Err)
	}
	if res.Changed {
		t.Errorf("Result = %+v, want unchanged", res)
	}
}

func TestFormatFileMissing(t *testing.T) {
	res := driver.FormatFile(filepath.Join(t.TempDir(), "gone.py"), driver.Options{})
	if res.Err == nil {
		t.Fatal("expected an error for a missing file")
	}
	if res.Changed || res.Written {
		t.Errorf("Result = %+v, want error only", res)
	}
}

func TestFormatFilesIsolatesErrors(t *testing.T) {
	dir := t.TempDir()
	bad := filepath.Join(dir, "bad.py")
	good := filepath.Join(dir, "good.py")
	writeFile(t, bad, []byte{0xff, 0xfe, 0x00})
	writeFile(t, good, []byte("x = 'a'\n"))

	results, err := driver.FormatFiles(context.Background(), []string{bad, good}, driver.Options{})
	if err != nil {
		t.Fatalf("FormatFiles: %v", err)
	}
	if len(results) != 2 {
		t.Fatalf("got %d results, want 2", len(results))
	}
	if !errors.Is(results[0].Err, source.ErrInvalidUTF8) {
		t.Errorf("bad.py err = %v, want ErrInvalidUTF8", results[0].Err)
	}
	if results[1].Err != nil || !results[1].Written {
		t.Errorf("good.py result = %+v", results[1])
	}
	if got := readFile(t, good); string(got) != "x = \"a\"\n" {
		t.Errorf("good.py = %q", got)
	}
}

func TestFormatFilesCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := driver.FormatFiles(ctx, []string{"a.py", "b.py"}, driver.Options{})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

type recordSink struct {
	mu     sync.Mutex
	events []driver.Event
}

func (s *recordSink) OnEvent(evt driver.Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, evt)
}

func TestFormatFilesEmitsEvents(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "a.py")
	writeFile(t, path, []byte("x = 'a'\n"))

	sink := &recordSink{}
	_, err := driver.FormatFiles(context.Background(), []string{path}, driver.Options{Jobs: 1, Progress: sink})
	if err != nil {
		t.Fatalf("FormatFiles: %v", err)
	}

	if len(sink.events) == 0 || sink.events[0].Status != driver.StatusQueued {
		t.Fatalf("events = %+v, want queued first", sink.events)
	}
	var stages []driver.Stage
	for _, evt := range sink.events {
		if evt.Status == driver.StatusWorking {
			stages = append(stages, evt.Stage)
		}
	}
	want := []driver.Stage{driver.StageConfig, driver.StageSort, driver.StageStyle, driver.StageWrite}
	if len(stages) != len(want) {
		t.Fatalf("working stages = %v, want %v", stages, want)
	}
	for i, stage := range want {
		if stages[i] != stage {
			t.Errorf("stage %d = %q, want %q", i, stages[i], stage)
		}
	}
	last := sink.events[len(sink.events)-1]
	if last.Status != driver.StatusDone || last.File != path {
		t.Errorf("final event = %+v", last)
	}
	if last.Elapsed <= 0 {
		t.Errorf("final event carries no elapsed time: %+v", last)
	}
}

func TestChannelSink(t *testing.T) {
	ch := make(chan driver.Event, 1)
	driver.ChannelSink{Ch: ch}.OnEvent(driver.Event{File: "a.py"})
	if evt := <-ch; evt.File != "a.py" {
		t.Errorf("event = %+v", evt)
	}
	// A zero sink must swallow events, not panic.
	driver.ChannelSink{}.OnEvent(driver.Event{File: "b.py"})
}

func TestCollectPathsDedupes(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "a.py")
	writeFile(t, path, []byte("x = 1\n"))

	files, err := driver.CollectPaths([]string{root, path})
	if err != nil {
		t.Fatalf("CollectPaths: %v", err)
	}
	if len(files) != 1 || files[0] != path {
		t.Errorf("files = %v, want [%s]", files, path)
	}
}

func TestCollectPathsConfigError(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "pyproject.toml"), []byte("[tool.ufmt]\nexcludes = \"skip\"\n"))
	writeFile(t, filepath.Join(root, "a.py"), []byte("x = 1\n"))

	if _, err := driver.CollectPaths([]string{root}); !errors.Is(err, config.ErrExcludesType) {
		t.Fatalf("err = %v, want ErrExcludesType", err)
	}
}

func TestFormatPathsHonorsExcludes(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "pyproject.toml"), []byte("[tool.ufmt]\nexcludes = [\"skip/\"]\n"))
	writeFile(t, filepath.Join(root, "app.py"), []byte("x = 'a'\n"))
	writeFile(t, filepath.Join(root, "skip", "gen.py"), []byte("y = 'b'\n"))

	results, err := driver.FormatPaths(context.Background(), []string{root}, driver.Options{DryRun: true})
	if err != nil {
		t.Fatalf("FormatPaths: %v", err)
	}
	if len(results) != 1 {
		t.Fatalf("results = %+v, want one", results)
	}
	if want := filepath.Join(root, "app.py"); results[0].Path != want {
		t.Errorf("path = %q, want %q", results[0].Path, want)
	}
}

func TestFormatPathsRecordsTimings(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "a.py"), []byte("x = 1\n"))

	timer := observ.NewTimer()
	if _, err := driver.FormatPaths(context.Background(), []string{root}, driver.Options{DryRun: true, Timer: timer}); err != nil {
		t.Fatalf("FormatPaths: %v", err)
	}
	phases := timer.Phases()
	if len(phases) != 2 || phases[0].Name != "walk" || phases[1].Name != "format" {
		t.Errorf("phases = %+v, want walk then format", phases)
	}
	if phases[0].Note != "1 files" {
		t.Errorf("walk note = %q", phases[0].Note)
	}
}
