package entity

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/suredesigns/alier-node/apierror"
)

// FileTarget serves files confined to Root. The resolved file path
// must be Root itself or lie strictly under Root plus a path
// separator; anything else is a 403, never leaking whether the escape
// attempt happened to land on a real file (spec.md §4.5).
type FileTarget struct {
	Root string
}

// Get implements Target.
func (f *FileTarget) Get(_ context.Context, requestedPath string, _ GetOptions) (any, error) {
	rootAbs, err := filepath.Abs(f.Root)
	if err != nil {
		return nil, apierror.BadRequest("invalid resource root: " + err.Error())
	}
	joined := filepath.Join(rootAbs, filepath.FromSlash(requestedPath))

	if joined != rootAbs && !strings.HasPrefix(joined, rootAbs+string(filepath.Separator)) {
		return nil, apierror.Forbidden("requested path escapes the configured root")
	}

	info, err := os.Stat(joined)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, apierror.NotFound("no such resource")
		}
		if isTooManyOpenFiles(err) {
			return nil, apierror.ServiceUnavailable("too many open files", 120*time.Second)
		}
		return nil, apierror.BadRequest(err.Error())
	}
	// A directory is never served (and never reported as forbidden, to
	// avoid leaking hierarchy information beyond "not found").
	if info.IsDir() {
		return nil, apierror.NotFound("no such resource")
	}

	data, err := os.ReadFile(joined)
	if err != nil {
		if isTooManyOpenFiles(err) {
			return nil, apierror.ServiceUnavailable("too many open files", 120*time.Second)
		}
		return nil, apierror.BadRequest(err.Error())
	}
	return data, nil
}

func isTooManyOpenFiles(err error) bool {
	return errors.Is(err, syscall.EMFILE) || errors.Is(err, syscall.ENFILE)
}

// ObjectTargetFunc adapts a plain function to Target, for resources
// backed by something other than a filesystem (a database BLOB column,
// an in-memory map, a generated document).
type ObjectTargetFunc func(ctx context.Context, requestedPath string, opts GetOptions) (any, error)

func (f ObjectTargetFunc) Get(ctx context.Context, requestedPath string, opts GetOptions) (any, error) {
	return f(ctx, requestedPath, opts)
}
