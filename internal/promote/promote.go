// Package promote replaces one page of a static mirror with another and
// rewrites the links that pointed at the promoted page.
package promote

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/ziadkadry99/sitefix/internal/fileops"
	"github.com/ziadkadry99/sitefix/internal/progress"
)

// ErrSourceMissing is returned when the page to promote does not exist.
var ErrSourceMissing = errors.New("source page not found")

// Options controls Promote and Restore. Paths are relative to Root.
type Options struct {
	Root     string
	From     string
	To       string
	LinkGlob string
	Rewrites []fileops.Rewrite
	DryRun   bool
	Logger   *zap.Logger
	Progress progress.Reporter
}

func (o *Options) defaults() {
	if o.Root == "" {
		o.Root = "."
	}
	if o.LinkGlob == "" {
		o.LinkGlob = "*.html"
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.Progress == nil {
		o.Progress = progress.Nop{}
	}
}

// FileChange records the replacements made in one file.
type FileChange struct {
	Path         string
	Replacements int
}

// Result summarizes a promotion.
type Result struct {
	Copied   bool
	Scanned  int
	Modified []FileChange
}

// ChangedFiles lists every path written, the promoted page first.
func (r *Result) ChangedFiles(to string) []string {
	var out []string
	if r.Copied {
		out = append(out, to)
	}
	for _, m := range r.Modified {
		if m.Path != to {
			out = append(out, m.Path)
		}
	}
	return out
}

// Promote overwrites To with the content of From, then applies the link
// rewrites to every file matching LinkGlob.
func Promote(ctx context.Context, opts Options) (*Result, error) {
	opts.defaults()
	res := &Result{}

	if err := copyPage(opts); err != nil {
		return res, err
	}
	res.Copied = true

	files, err := fileops.Glob(opts.Root, opts.LinkGlob)
	if err != nil {
		return res, err
	}
	res.Scanned = len(files)
	opts.Logger.Info("updating links", zap.Int("files", len(files)), zap.String("glob", opts.LinkGlob))

	opts.Progress.Start(len(files))
	defer opts.Progress.Finish()

	for i, path := range files {
		if err := ctx.Err(); err != nil {
			return res, err
		}
		rel := relTo(opts.Root, path)
		opts.Progress.Update(i+1, rel)

		n, err := fileops.ReplaceInFile(path, opts.Rewrites, opts.DryRun)
		if err != nil {
			return res, err
		}
		if n == 0 {
			continue
		}
		res.Modified = append(res.Modified, FileChange{Path: rel, Replacements: n})
		opts.Logger.Debug("updated links", zap.String("file", rel), zap.Int("replacements", n))
	}

	opts.Logger.Info("promotion finished",
		zap.String("page", opts.To),
		zap.Int("modified", len(res.Modified)),
		zap.Bool("dry_run", opts.DryRun),
	)
	return res, nil
}

// Restore overwrites To with the content of From without touching links.
func Restore(ctx context.Context, opts Options) (*Result, error) {
	opts.defaults()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	res := &Result{}
	if err := copyPage(opts); err != nil {
		return res, err
	}
	res.Copied = true
	return res, nil
}

func copyPage(opts Options) error {
	src := filepath.Join(opts.Root, opts.From)
	dst := filepath.Join(opts.Root, opts.To)

	if !fileops.Exists(src) {
		opts.Logger.Warn("source page not found", zap.String("from", opts.From))
		return fmt.Errorf("%s: %w", opts.From, ErrSourceMissing)
	}
	opts.Logger.Info("copying page", zap.String("from", opts.From), zap.String("to", opts.To))
	if opts.DryRun {
		return nil
	}
	return fileops.CopyFile(src, dst)
}

func relTo(root, path string) string {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return path
	}
	return filepath.ToSlash(rel)
}
