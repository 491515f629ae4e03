package processor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
)

// ExistsFunc reports whether a path is taken. An error means the answer is
// unknown, not that the path is free.
type ExistsFunc func(ctx context.Context, path string) (bool, error)

// EnsureUnique returns basePath if it is free, otherwise the first free
// dir/stem-N.ext for N = 2, 3, ... An error from exists is returned rather
// than guessed around, so a failed check never turns into an overwrite.
//
// The check and the later write are not atomic; concurrent callers racing
// for the same name can both receive it.
func EnsureUnique(ctx context.Context, basePath string, exists ExistsFunc) (string, error) {
	dir := filepath.Dir(basePath)
	ext := filepath.Ext(basePath)
	stem := strings.TrimSuffix(filepath.Base(basePath), ext)

	candidate := basePath
	for counter := 1; ; {
		if err := ctx.Err(); err != nil {
			return "", errors.WithStack(err)
		}

		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", errors.Wrapf(err, "failed to check whether %s exists", candidate)
		}
		if !taken {
			return candidate, nil
		}

		counter++
		candidate = filepath.Join(dir, fmt.Sprintf("%s-%d%s", stem, counter, ext))
	}
}

// OSExists checks the local filesystem. A missing path is free; any other
// stat failure is reported.
func OSExists(_ context.Context, path string) (bool, error) {
	_, err := os.Stat(path)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, os.ErrNotExist):
		return false, nil
	default:
		return false, errors.WithStack(err)
	}
}
