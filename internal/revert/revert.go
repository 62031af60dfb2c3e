// Package revert turns a dynamic-app layout (templates/ and static/ next to
// backend sources) back into a flat static mirror.
package revert

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"syscall"

	"go.uber.org/zap"

	"github.com/ziadkadry99/sitefix/internal/fileops"
	"github.com/ziadkadry99/sitefix/internal/progress"
	"github.com/ziadkadry99/sitefix/internal/walker"
)

// Options controls Revert. Paths are relative to Root.
type Options struct {
	Root              string
	TemplatesDir      string
	SkipTemplateDirs  []string
	StaticAssetsDir   string
	AssetsDir         string
	StaticDir         string
	ForceRemoveStatic bool
	LinkGlob          string
	Rewrites          []fileops.Rewrite
	BackendFiles      []string
	BackendDirs       []string
	DryRun            bool
	Logger            *zap.Logger
	Progress          progress.Reporter
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

func (o *Options) path(rel string) string {
	return filepath.Join(o.Root, filepath.FromSlash(rel))
}

// Action is the kind of change a step made.
type Action string

const (
	ActionMove    Action = "move"
	ActionRemove  Action = "remove"
	ActionRewrite Action = "rewrite"
	ActionSkip    Action = "skip"
)

// Step is one entry of a revert report.
type Step struct {
	Action Action
	Path   string
	Target string
	Detail string
}

// Report lists every step Revert performed or skipped, in order.
type Report struct {
	Steps []Step
}

func (r *Report) add(s Step) { r.Steps = append(r.Steps, s) }

// Count returns the number of steps with the given action.
func (r *Report) Count(a Action) int {
	n := 0
	for _, s := range r.Steps {
		if s.Action == a {
			n++
		}
	}
	return n
}

// ChangedFiles lists the root-relative paths that were created, rewritten
// or removed.
func (r *Report) ChangedFiles() []string {
	var out []string
	for _, s := range r.Steps {
		switch s.Action {
		case ActionMove:
			out = append(out, s.Target)
		case ActionRemove, ActionRewrite:
			out = append(out, s.Path)
		}
	}
	return out
}

// Revert runs the reversion steps in order. A missing input for a step is
// recorded as a skip; only filesystem failures abort the run.
func Revert(ctx context.Context, opts Options) (*Report, error) {
	opts.defaults()
	rep := &Report{}

	steps := []func(context.Context, *Options, *Report) error{
		moveTemplates,
		moveAssets,
		removeStatic,
		rewriteLinks,
		removeBackend,
	}
	for _, step := range steps {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		if err := step(ctx, &opts, rep); err != nil {
			return rep, err
		}
	}

	opts.Logger.Info("reversion to static structure complete",
		zap.Int("moved", rep.Count(ActionMove)),
		zap.Int("removed", rep.Count(ActionRemove)),
		zap.Int("rewritten", rep.Count(ActionRewrite)),
		zap.Int("skipped", rep.Count(ActionSkip)),
		zap.Bool("dry_run", opts.DryRun),
	)
	return rep, nil
}

func skip(opts *Options, rep *Report, path, detail string) {
	opts.Logger.Info("skipping", zap.String("path", path), zap.String("reason", detail))
	rep.add(Step{Action: ActionSkip, Path: path, Detail: detail})
}

func moveTemplates(_ context.Context, opts *Options, rep *Report) error {
	if opts.TemplatesDir == "" {
		return nil
	}
	dir := opts.path(opts.TemplatesDir)
	if !fileops.Exists(dir) {
		skip(opts, rep, opts.TemplatesDir, "not found")
		return nil
	}

	walk := walker.Config{
		RootDir:  dir,
		Include:  []string{"**/*.html"},
		SkipDirs: opts.SkipTemplateDirs,
	}
	files, err := walker.Walk(walk)
	if err != nil {
		return err
	}
	opts.Logger.Info("moving HTML files back to root", zap.Int("files", len(files)))

	moved := make(map[string]string, len(files))
	kept := 0
	for _, f := range files {
		name := filepath.Base(f.Path)
		src := filepath.ToSlash(filepath.Join(opts.TemplatesDir, f.RelPath))
		if prev, ok := moved[name]; ok {
			skip(opts, rep, src, "same name as "+prev)
			kept++
			continue
		}

		step := Step{Action: ActionMove, Path: src, Target: name}
		if dst := opts.path(name); fileops.Exists(dst) {
			same, err := walker.SameContent(f.Path, dst)
			if err != nil {
				return fmt.Errorf("comparing %s with %s: %w", src, name, err)
			}
			if same {
				step.Detail = "identical to existing page"
			} else {
				step.Detail = "replaced existing page"
				opts.Logger.Warn("overwriting existing page", zap.String("file", name), zap.String("from", src))
			}
		}
		if !opts.DryRun {
			if err := fileops.Move(f.Path, opts.path(name)); err != nil {
				return err
			}
		}
		moved[name] = src
		rep.add(step)
	}

	if !opts.DryRun && kept == 0 {
		left, err := walker.Walk(walk)
		if err != nil {
			return err
		}
		kept = len(left)
	}
	if kept > 0 {
		skip(opts, rep, opts.TemplatesDir, fmt.Sprintf("kept, %s not moved", pluralize(kept, "page")))
		return nil
	}
	return removeTree(opts, rep, opts.TemplatesDir)
}

func moveAssets(_ context.Context, opts *Options, rep *Report) error {
	if opts.StaticAssetsDir == "" || opts.AssetsDir == "" {
		return nil
	}
	if !fileops.Exists(opts.path(opts.StaticAssetsDir)) {
		skip(opts, rep, opts.StaticAssetsDir, "not found")
		return nil
	}
	opts.Logger.Info("moving assets back to root",
		zap.String("from", opts.StaticAssetsDir), zap.String("to", opts.AssetsDir))

	if fileops.Exists(opts.path(opts.AssetsDir)) {
		if err := removeTree(opts, rep, opts.AssetsDir); err != nil {
			return err
		}
	}
	if !opts.DryRun {
		if err := fileops.Move(opts.path(opts.StaticAssetsDir), opts.path(opts.AssetsDir)); err != nil {
			return err
		}
	}
	rep.add(Step{Action: ActionMove, Path: opts.StaticAssetsDir, Target: opts.AssetsDir})
	return nil
}

func removeStatic(_ context.Context, opts *Options, rep *Report) error {
	if opts.StaticDir == "" {
		return nil
	}
	if !fileops.Exists(opts.path(opts.StaticDir)) {
		skip(opts, rep, opts.StaticDir, "not found")
		return nil
	}
	if opts.ForceRemoveStatic {
		return removeTree(opts, rep, opts.StaticDir)
	}
	if opts.DryRun {
		rep.add(Step{Action: ActionRemove, Path: opts.StaticDir, Detail: "if empty"})
		return nil
	}
	if err := fileops.Remove(opts.path(opts.StaticDir)); err != nil {
		if !dirNotEmpty(err) {
			return err
		}
		skip(opts, rep, opts.StaticDir, "not empty")
		return nil
	}
	rep.add(Step{Action: ActionRemove, Path: opts.StaticDir})
	return nil
}

func rewriteLinks(ctx context.Context, opts *Options, rep *Report) error {
	if len(opts.Rewrites) == 0 {
		return nil
	}
	files, err := fileops.Glob(opts.Root, opts.LinkGlob)
	if err != nil {
		return err
	}
	opts.Logger.Info("restoring resource links", zap.Int("files", len(files)))

	opts.Progress.Start(len(files))
	defer opts.Progress.Finish()

	for i, path := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		rel, err := filepath.Rel(opts.Root, path)
		if err != nil {
			rel = path
		}
		rel = filepath.ToSlash(rel)
		opts.Progress.Update(i+1, rel)

		n, err := fileops.ReplaceInFile(path, opts.Rewrites, opts.DryRun)
		if err != nil {
			return err
		}
		if n > 0 {
			rep.add(Step{Action: ActionRewrite, Path: rel, Detail: pluralize(n, "link")})
		}
	}
	return nil
}

func removeBackend(_ context.Context, opts *Options, rep *Report) error {
	for _, f := range opts.BackendFiles {
		if !fileops.Exists(opts.path(f)) {
			continue
		}
		if !opts.DryRun {
			if err := fileops.Remove(opts.path(f)); err != nil && !errors.Is(err, fileops.ErrMissing) {
				return err
			}
		}
		opts.Logger.Debug("removed backend file", zap.String("file", f))
		rep.add(Step{Action: ActionRemove, Path: f})
	}
	for _, d := range opts.BackendDirs {
		if !fileops.Exists(opts.path(d)) {
			continue
		}
		if err := removeTree(opts, rep, d); err != nil {
			return err
		}
	}
	return nil
}

func removeTree(opts *Options, rep *Report, rel string) error {
	if !opts.DryRun {
		if err := fileops.RemoveTree(opts.path(rel)); err != nil && !errors.Is(err, fileops.ErrMissing) {
			return err
		}
	}
	rep.add(Step{Action: ActionRemove, Path: rel})
	return nil
}

func dirNotEmpty(err error) bool {
	return errors.Is(err, syscall.ENOTEMPTY) || errors.Is(err, syscall.EEXIST)
}

func pluralize(n int, noun string) string {
	if n == 1 {
		return fmt.Sprintf("1 %s", noun)
	}
	return fmt.Sprintf("%d %ss", n, noun)
}
