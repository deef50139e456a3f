package stencil

import (
	"context"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Loader is an interface for fetching the source of a template. The path
// passed to Load has already been resolved by the Registry: the configured
// directory has been joined to it and the extension appended.
//
// Load should return an error that matches fs.ErrNotExist when the template
// doesn't exist.
type Loader interface {
	Load(ctx context.Context, path string) (string, error)
}

// LoaderFunc adapts a function to the Loader interface.
type LoaderFunc func(ctx context.Context, path string) (string, error)

// Load calls f.
func (f LoaderFunc) Load(ctx context.Context, path string) (string, error) {
	return f(ctx, path)
}

var (
	_ Loader = FileLoader{}
	_ Loader = FSLoader{}
	_ Loader = LoaderFunc(nil)
)

// FileLoader reads templates from the local filesystem. It is the Loader a
// Registry uses if none is configured.
type FileLoader struct{}

// Load reads the file at name, which uses forward slashes regardless of the
// operating system.
func (FileLoader) Load(ctx context.Context, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	contents, err := os.ReadFile(filepath.FromSlash(name))
	if err != nil {
		return "", err
	}
	return string(contents), nil
}

// FSLoader reads templates from an fs.FS, like an embed.FS or os.DirFS.
// Paths are cleaned and any leading slash is dropped, so absolute template
// paths resolve from the root of the fs.FS.
type FSLoader struct {
	FS fs.FS
}

// Load reads name from the fs.FS.
func (l FSLoader) Load(ctx context.Context, name string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	contents, err := fs.ReadFile(l.FS, strings.TrimPrefix(path.Clean(name), "/"))
	if err != nil {
		return "", err
	}
	return string(contents), nil
}
