package cmd

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/ziadkadry99/sitefix/internal/config"
	"github.com/ziadkadry99/sitefix/internal/db"
	"github.com/ziadkadry99/sitefix/internal/journal"
)

const homepage = `<html>
<!-- Start Most Sold Product Area -->
<div>products</div>
<!-- End Most Sold Product Area -->
<hr>
<!-- Start Testimonila Area -->
<div>testimonials</div>
<!-- End Testimonila Area -->
</html>
`

const reordered = `<html>
<!-- Start Testimonila Area -->
<div>testimonials</div>
<!-- End Testimonila Area -->
<hr>
<!-- Start Most Sold Product Area -->
<div>products</div>
<!-- End Most Sold Product Area -->
</html>
`

// mirror writes files under a temp root together with a default config
// pointing at it, and returns the root and config path.
func mirror(t *testing.T, files map[string]string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(dir, filepath.FromSlash(rel))
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			t.Fatalf("MkdirAll: %v", err)
		}
		if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
			t.Fatalf("WriteFile: %v", err)
		}
	}

	c := config.DefaultConfig()
	c.Root = dir
	c.Log.Level = "error"
	path := filepath.Join(dir, config.DefaultFile)
	if err := c.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}
	return dir, path
}

func resetFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	c.PersistentFlags().VisitAll(reset)
	c.Flags().VisitAll(reset)
	for _, sub := range c.Commands() {
		resetFlags(sub)
	}
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

func readFile(t *testing.T, dir, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(rel)))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	return string(data)
}

func TestRelocateCommand(t *testing.T) {
	dir, cfgPath := mirror(t, map[string]string{"index.html": homepage})

	out, err := execute(t, "--config", cfgPath, "relocate")
	if err != nil {
		t.Fatalf("relocate: %v\n%s", err, out)
	}
	if !strings.Contains(out, "reordered: b-before-a") {
		t.Errorf("output missing reorder line:\n%s", out)
	}
	if !strings.Contains(out, "A: lines 2-4, B: lines 6-8") {
		t.Errorf("output missing positions:\n%s", out)
	}
	if got := readFile(t, dir, "index.html"); got != reordered {
		t.Errorf("index.html =\n%s", got)
	}

	out, err = execute(t, "--config", cfgPath, "relocate")
	if err != nil {
		t.Fatalf("second relocate: %v", err)
	}
	if !strings.Contains(out, "already in order") {
		t.Errorf("second run should be a no-op:\n%s", out)
	}

	out, err = execute(t, "--config", cfgPath, "history", "--command", "relocate")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(out, "changed") || !strings.Contains(out, "noop") {
		t.Errorf("history should list both runs:\n%s", out)
	}
}

func TestHistoryCommand_ShowRun(t *testing.T) {
	dir, cfgPath := mirror(t, map[string]string{"index.html": homepage})
	if out, err := execute(t, "--config", cfgPath, "relocate"); err != nil {
		t.Fatalf("relocate: %v\n%s", err, out)
	}

	database, err := db.Open(filepath.Join(dir, config.DefaultJournalPath))
	if err != nil {
		t.Fatalf("db.Open: %v", err)
	}
	store := journal.NewStore(database)
	runs, err := store.List(context.Background(), journal.Filter{Command: "relocate"})
	store.Close()
	if err != nil || len(runs) != 1 {
		t.Fatalf("List = %v, %v; want one run", runs, err)
	}

	out, err := execute(t, "--config", cfgPath, "history", "--id", runs[0].ID)
	if err != nil {
		t.Fatalf("history --id: %v", err)
	}
	for _, want := range []string{"Status:  changed", "Changed files:", "  index.html"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	_, err = execute(t, "--config", cfgPath, "history", "--id", "nope")
	if err == nil || !strings.Contains(err.Error(), `no run with id "nope"`) {
		t.Errorf("err = %v", err)
	}
}

func TestRelocateCommand_MissingMarker(t *testing.T) {
	page := strings.Replace(homepage, "<!-- End Testimonila Area -->\n", "", 1)
	dir, cfgPath := mirror(t, map[string]string{"index.html": page})

	out, err := execute(t, "--config", cfgPath, "relocate")
	if err == nil {
		t.Fatal("expected an error for an unresolved marker")
	}
	if !strings.Contains(out, "unresolved markers") || !strings.Contains(out, "End Testimonila Area") {
		t.Errorf("output should name the missing marker:\n%s", out)
	}
	if got := readFile(t, dir, "index.html"); got != page {
		t.Error("file modified despite unresolved marker")
	}
}

func TestRelocateCommand_ExplicitMarkersDryRun(t *testing.T) {
	dir, cfgPath := mirror(t, map[string]string{"about.html": homepage})

	out, err := execute(t, "--config", cfgPath, "--dry-run", "relocate", "about.html",
		"--a-start", "Start Most Sold", "--a-end", "End Most Sold",
		"--b-start", "Start Testimonila", "--b-end", "End Testimonila")
	if err != nil {
		t.Fatalf("relocate: %v\n%s", err, out)
	}
	if !strings.Contains(out, "would reorder") {
		t.Errorf("output = %s", out)
	}
	if got := readFile(t, dir, "about.html"); got != homepage {
		t.Error("dry run modified the file")
	}
	if _, err := os.Stat(filepath.Join(dir, config.DefaultJournalPath)); err == nil {
		t.Error("dry run should not create the journal")
	}
}

func TestRelocateCommand_RuleConflict(t *testing.T) {
	_, cfgPath := mirror(t, map[string]string{"index.html": homepage})

	_, err := execute(t, "--config", cfgPath, "relocate", "index.html",
		"--rule", "testimonials-first", "--a-start", "x")
	if err == nil || !strings.Contains(err.Error(), "--rule cannot be combined") {
		t.Errorf("err = %v", err)
	}

	_, err = execute(t, "--config", cfgPath, "relocate", "--rule", "nope")
	if err == nil || !strings.Contains(err.Error(), `no relocation rule named "nope"`) {
		t.Errorf("err = %v", err)
	}
}

func TestPromoteCommand(t *testing.T) {
	dir, cfgPath := mirror(t, map[string]string{
		"index.html":   `<h1>old</h1>`,
		"index-1.html": `<h1>new</h1><a href="index-1.html">Home</a>`,
		"shop.html":    `<a href="index-1.html">Home</a>`,
	})

	out, err := execute(t, "--config", cfgPath, "promote")
	if err != nil {
		t.Fatalf("promote: %v\n%s", err, out)
	}
	if got := readFile(t, dir, "index.html"); got != `<h1>new</h1><a href="index.html">Home</a>` {
		t.Errorf("index.html = %q", got)
	}
	if got := readFile(t, dir, "shop.html"); got != `<a href="index.html">Home</a>` {
		t.Errorf("shop.html = %q", got)
	}
	if !strings.Contains(out, "Finished. Modified") {
		t.Errorf("output = %s", out)
	}
}

func TestPromoteCommand_MissingSource(t *testing.T) {
	dir, cfgPath := mirror(t, map[string]string{"index.html": `<h1>old</h1>`})

	out, err := execute(t, "--config", cfgPath, "promote")
	if err != nil {
		t.Fatalf("missing source should not fail: %v", err)
	}
	if !strings.Contains(out, "Skipped") {
		t.Errorf("output = %s", out)
	}
	if got := readFile(t, dir, "index.html"); got != `<h1>old</h1>` {
		t.Errorf("index.html = %q", got)
	}
}

func TestRestoreCommand(t *testing.T) {
	dir, cfgPath := mirror(t, map[string]string{
		"index.html":   `<h1>old</h1>`,
		"backup.html":  `<h1>backup</h1>`,
		"index-1.html": `<a href="index-1.html">x</a>`,
	})

	out, err := execute(t, "--config", cfgPath, "restore", "--from", "backup.html")
	if err != nil {
		t.Fatalf("restore: %v\n%s", err, out)
	}
	if got := readFile(t, dir, "index.html"); got != `<h1>backup</h1>` {
		t.Errorf("index.html = %q", got)
	}
	if got := readFile(t, dir, "index-1.html"); got != `<a href="index-1.html">x</a>` {
		t.Error("restore should not rewrite links")
	}
}

func TestRevertCommand(t *testing.T) {
	dir, cfgPath := mirror(t, map[string]string{
		"templates/index.html":        `<link href="/static/assets/css/style.css">`,
		"static/assets/css/style.css": "body{}",
		"app.py":                      "flask",
	})

	out, err := execute(t, "--config", cfgPath, "revert", "--yes")
	if err != nil {
		t.Fatalf("revert: %v\n%s", err, out)
	}
	if got := readFile(t, dir, "index.html"); got != `<link href="assets/css/style.css">` {
		t.Errorf("index.html = %q", got)
	}
	for _, gone := range []string{"templates", "static", "app.py"} {
		if _, err := os.Stat(filepath.Join(dir, gone)); err == nil {
			t.Errorf("%s should have been removed", gone)
		}
	}
	if !strings.Contains(out, "Reversion to static structure complete.") {
		t.Errorf("output = %s", out)
	}
}

func TestInitCommand(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, config.DefaultFile)

	if _, err := execute(t, "--config", path, "--root", dir, "init"); err != nil {
		t.Fatalf("init: %v", err)
	}
	c, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if c.Root != dir {
		t.Errorf("Root = %q, want %q", c.Root, dir)
	}
	if len(c.Relocations) != 1 {
		t.Errorf("Relocations = %d, want 1", len(c.Relocations))
	}

	if _, err := execute(t, "--config", path, "init"); err == nil {
		t.Error("init over an existing file should fail without --force")
	}
	if _, err := execute(t, "--config", path, "init", "--force"); err != nil {
		t.Errorf("init --force: %v", err)
	}
}

func TestHistoryCommand_Empty(t *testing.T) {
	_, cfgPath := mirror(t, nil)

	out, err := execute(t, "--config", cfgPath, "history")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if !strings.Contains(out, "No runs recorded.") {
		t.Errorf("output = %s", out)
	}
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version")
	if err != nil {
		t.Fatalf("version: %v", err)
	}
	if out != "sitefix dev\n" {
		t.Errorf("output = %q", out)
	}
}
