package revert

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"syscall"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/ziadkadry99/sitefix/internal/fileops"
)

func layout(t *testing.T, files map[string]string) string {
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
	return dir
}

func exists(dir, rel string) bool {
	_, err := os.Stat(filepath.Join(dir, filepath.FromSlash(rel)))
	return err == nil
}

func read(t *testing.T, dir, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(rel)))
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	return string(data)
}

func fullstack() map[string]string {
	return map[string]string{
		"templates/index.html":        `<link href="/static/assets/css/style.css"><script src="/static/assets/js/main.js"></script>`,
		"templates/shop.html":         `<img src="/static/assets/images/p.png">`,
		"templates/admin/login.html":  `<form></form>`,
		"static/assets/css/style.css": "body{}",
		"static/assets/js/main.js":    "1",
		"static/uploads/x.txt":        "upload",
		"assets/stale.css":            "old",
		"app.py":                      "flask",
		"models.py":                   "orm",
		"etrade.db":                   "db",
		"__pycache__/app.cpython.pyc": "pyc",
		"migrations/env.py":           "alembic",
		"README.md":                   "keep",
	}
}

func options(dir string) Options {
	return Options{
		Root:             dir,
		TemplatesDir:     "templates",
		SkipTemplateDirs: []string{"admin"},
		StaticAssetsDir:  "static/assets",
		AssetsDir:        "assets",
		StaticDir:        "static",
		Rewrites: []fileops.Rewrite{
			{Old: `src="/static/assets/`, New: `src="assets/`},
			{Old: `href="/static/assets/`, New: `href="assets/`},
		},
		BackendFiles: []string{"app.py", "models.py", "init_db.py", "etrade.db"},
		BackendDirs:  []string{"__pycache__", "migrations"},
	}
}

func TestRevert_FullStack(t *testing.T) {
	dir := layout(t, fullstack())
	opts := options(dir)
	opts.ForceRemoveStatic = true

	rep, err := Revert(context.Background(), opts)
	if err != nil {
		t.Fatalf("Revert: %v", err)
	}

	if got := read(t, dir, "index.html"); got != `<link href="assets/css/style.css"><script src="assets/js/main.js"></script>` {
		t.Errorf("index.html = %q", got)
	}
	if got := read(t, dir, "shop.html"); got != `<img src="assets/images/p.png">` {
		t.Errorf("shop.html = %q", got)
	}
	if exists(dir, "login.html") {
		t.Error("admin template should not be moved to root")
	}
	for _, gone := range []string{"templates", "static", "assets/stale.css", "app.py", "models.py", "etrade.db", "__pycache__", "migrations"} {
		if exists(dir, gone) {
			t.Errorf("%s should have been removed", gone)
		}
	}
	if got := read(t, dir, "assets/css/style.css"); got != "body{}" {
		t.Errorf("assets/css/style.css = %q", got)
	}
	if !exists(dir, "README.md") {
		t.Error("README.md should be kept")
	}

	if rep.Count(ActionMove) != 3 {
		t.Errorf("moves = %d, want 3", rep.Count(ActionMove))
	}
	if rep.Count(ActionRewrite) != 2 {
		t.Errorf("rewrites = %d, want 2", rep.Count(ActionRewrite))
	}
}

func TestRevert_KeepsNonEmptyStatic(t *testing.T) {
	dir := layout(t, fullstack())

	rep, err := Revert(context.Background(), options(dir))
	if err != nil {
		t.Fatalf("Revert: %v", err)
	}
	if !exists(dir, "static/uploads/x.txt") {
		t.Error("non-empty static dir should be kept without ForceRemoveStatic")
	}
	found := false
	for _, s := range rep.Steps {
		if s.Action == ActionSkip && s.Path == "static" && s.Detail == "not empty" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected a skip step for static, got %+v", rep.Steps)
	}
}

func TestRevert_RemovesEmptyStatic(t *testing.T) {
	files := fullstack()
	delete(files, "static/uploads/x.txt")
	dir := layout(t, files)

	if _, err := Revert(context.Background(), options(dir)); err != nil {
		t.Fatalf("Revert: %v", err)
	}
	if exists(dir, "static") {
		t.Error("empty static dir should be removed")
	}
}

func TestRevert_AlreadyStatic(t *testing.T) {
	dir := layout(t, map[string]string{
		"index.html":   `<link href="assets/css/style.css">`,
		"assets/a.css": "a",
	})

	rep, err := Revert(context.Background(), options(dir))
	if err != nil {
		t.Fatalf("Revert: %v", err)
	}
	if len(rep.ChangedFiles()) != 0 {
		t.Errorf("nothing should change, got %v", rep.ChangedFiles())
	}
	if rep.Count(ActionSkip) != 3 {
		t.Errorf("skips = %d, want 3 (templates, static/assets, static)", rep.Count(ActionSkip))
	}
	if got := read(t, dir, "assets/a.css"); got != "a" {
		t.Errorf("assets/a.css = %q", got)
	}
}

func TestRevert_DryRun(t *testing.T) {
	files := fullstack()
	dir := layout(t, files)
	opts := options(dir)
	opts.DryRun = true
	opts.ForceRemoveStatic = true

	rep, err := Revert(context.Background(), opts)
	if err != nil {
		t.Fatalf("Revert: %v", err)
	}
	if len(rep.Steps) == 0 {
		t.Fatal("dry run should report planned steps")
	}
	for rel, content := range files {
		if got := read(t, dir, rel); got != content {
			t.Errorf("dry run modified %s", rel)
		}
	}
}

func TestRevert_MovesNonUTF8Templates(t *testing.T) {
	utf16 := "\xff\xfe<\x00h\x00t\x00m\x00l\x00>\x00"
	dir := layout(t, map[string]string{
		"templates/index.html": "<html>",
		"templates/about.html": utf16,
	})

	rep, err := Revert(context.Background(), Options{Root: dir, TemplatesDir: "templates"})
	if err != nil {
		t.Fatalf("Revert: %v", err)
	}
	if got := read(t, dir, "about.html"); got != utf16 {
		t.Errorf("about.html = %q", got)
	}
	if got := read(t, dir, "index.html"); got != "<html>" {
		t.Errorf("index.html = %q", got)
	}
	if rep.Count(ActionMove) != 2 {
		t.Errorf("moves = %d, want 2: %+v", rep.Count(ActionMove), rep.Steps)
	}
	if exists(dir, "templates") {
		t.Error("templates should be removed once every page is moved")
	}
}

func TestRevert_KeepsTemplatesOnNameClash(t *testing.T) {
	dir := layout(t, map[string]string{
		"templates/a/page.html": "first",
		"templates/b/page.html": "second",
	})

	rep, err := Revert(context.Background(), Options{Root: dir, TemplatesDir: "templates"})
	if err != nil {
		t.Fatalf("Revert: %v", err)
	}
	if got := read(t, dir, "page.html"); got != "first" {
		t.Errorf("page.html = %q", got)
	}
	if got := read(t, dir, "templates/b/page.html"); got != "second" {
		t.Errorf("clashing template should stay in place, got %q", got)
	}

	var details []string
	for _, s := range rep.Steps {
		if s.Action == ActionSkip {
			details = append(details, s.Path+": "+s.Detail)
		}
	}
	want := []string{
		"templates/b/page.html: same name as templates/a/page.html",
		"templates: kept, 1 page not moved",
	}
	if diff := cmp.Diff(want, details); diff != "" {
		t.Errorf("skip steps (-want +got):\n%s", diff)
	}
	for _, s := range rep.Steps {
		if s.Action == ActionRemove {
			t.Errorf("nothing should be removed, got %+v", s)
		}
	}
}

func TestRevert_ReportsReplacedRootPages(t *testing.T) {
	dir := layout(t, map[string]string{
		"index.html":           "same",
		"shop.html":            "old shop",
		"templates/index.html": "same",
		"templates/shop.html":  "new shop",
	})

	rep, err := Revert(context.Background(), Options{Root: dir, TemplatesDir: "templates"})
	if err != nil {
		t.Fatalf("Revert: %v", err)
	}
	got := map[string]string{}
	for _, s := range rep.Steps {
		if s.Action == ActionMove {
			got[s.Target] = s.Detail
		}
	}
	want := map[string]string{
		"index.html": "identical to existing page",
		"shop.html":  "replaced existing page",
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("move details (-want +got):\n%s", diff)
	}
	if got := read(t, dir, "shop.html"); got != "new shop" {
		t.Errorf("shop.html = %q", got)
	}
}

func TestDirNotEmpty(t *testing.T) {
	tests := []struct {
		err  error
		want bool
	}{
		{&fs.PathError{Op: "remove", Path: "static", Err: syscall.ENOTEMPTY}, true},
		{fmt.Errorf("removing static: %w", &fs.PathError{Op: "remove", Path: "static", Err: syscall.EEXIST}), true},
		{&fs.PathError{Op: "remove", Path: "static", Err: syscall.EACCES}, false},
		{errors.New("boom"), false},
	}
	for _, tc := range tests {
		if got := dirNotEmpty(tc.err); got != tc.want {
			t.Errorf("dirNotEmpty(%v) = %v, want %v", tc.err, got, tc.want)
		}
	}
}

func TestReport_ChangedFiles(t *testing.T) {
	rep := &Report{Steps: []Step{
		{Action: ActionMove, Path: "templates/a.html", Target: "a.html"},
		{Action: ActionSkip, Path: "static"},
		{Action: ActionRewrite, Path: "a.html"},
		{Action: ActionRemove, Path: "app.py"},
	}}
	got := rep.ChangedFiles()
	want := []string{"a.html", "a.html", "app.py"}
	if len(got) != len(want) {
		t.Fatalf("ChangedFiles = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("ChangedFiles[%d] = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestPluralize(t *testing.T) {
	if got := pluralize(1, "link"); got != "1 link" {
		t.Errorf("pluralize(1) = %q", got)
	}
	if got := pluralize(3, "link"); got != "3 links" {
		t.Errorf("pluralize(3) = %q", got)
	}
}
