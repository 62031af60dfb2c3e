package progress

import (
	"bytes"
	"strings"
	"testing"
)

func TestCIReporter(t *testing.T) {
	var buf bytes.Buffer
	r := &CIReporter{Description: "Rewriting links", Out: &buf}
	r.Start(2)
	r.Update(1, "index.html")
	r.Update(2, "shop.html")
	r.Finish()

	want := "Rewriting links: 2 files\n[1/2] index.html\n[2/2] shop.html\nRewriting links: done\n"
	if got := buf.String(); got != want {
		t.Errorf("output = %q, want %q", got, want)
	}
}

func TestNewReporter_CI(t *testing.T) {
	t.Setenv("CI", "true")
	if _, ok := NewReporter("x").(*CIReporter); !ok {
		t.Error("expected CIReporter when CI is set")
	}
}

func TestNewReporter_Terminal(t *testing.T) {
	t.Setenv("CI", "")
	t.Setenv("GITHUB_ACTIONS", "")
	r, ok := NewReporter("Rewriting").(*TerminalReporter)
	if !ok {
		t.Fatal("expected TerminalReporter outside CI")
	}
	if !strings.EqualFold(r.Description, "rewriting") {
		t.Errorf("description = %q", r.Description)
	}
}
