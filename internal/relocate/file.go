package relocate

import (
	"go.uber.org/zap"

	"github.com/ziadkadry99/sitefix/internal/fileops"
)

// FileOptions controls RelocateFile.
type FileOptions struct {
	DryRun bool
	Logger *zap.Logger
}

// RelocateFile applies Relocate to the file at path. The file is rewritten
// in full only when the blocks were swapped; on any error or when the
// blocks are already in order it is left untouched.
func RelocateFile(path string, a, b Block, order Order, opts FileOptions) (Result, error) {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	lines, err := fileops.ReadLines(path)
	if err != nil {
		return Result{}, err
	}

	res, err := Relocate(lines, a, b, order)
	log.Info("resolved markers",
		zap.String("file", path),
		zap.Stringer("positions", res.Positions),
	)
	if err != nil {
		return res, err
	}
	if !res.Changed {
		log.Info("blocks already in order", zap.String("file", path), zap.String("order", string(order)))
		return res, nil
	}
	if opts.DryRun {
		log.Info("dry run, not writing", zap.String("file", path))
		return res, nil
	}
	if err := fileops.WriteLines(path, res.Lines); err != nil {
		return res, err
	}
	log.Info("blocks reordered", zap.String("file", path), zap.String("order", string(order)))
	return res, nil
}
