package stencil_test

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"impractical.co/stencil"
)

func TestRenderFile(t *testing.T) {
	t.Parallel()

	ctx := testContext()
	reg, _ := newTestRegistry(map[string]string{
		"page.jst":   "Hello, {{ .name }}!",
		"broken.jst": "{{ .missing }}",
	}, false)
	dst := filepath.Join(t.TempDir(), "hello.txt")

	if err := reg.RenderFile(ctx, "page", stencil.Model{"name": "World"}, dst); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	contents, err := os.ReadFile(dst)
	if err != nil {
		t.Fatalf("error reading output: %v", err)
	}
	if string(contents) != "Hello, World!" {
		t.Errorf("expected %q, got %q", "Hello, World!", string(contents))
	}

	if err := reg.RenderFile(ctx, "broken", stencil.Model{}, dst); err == nil {
		t.Fatalf("expected an error rendering a broken template")
	}
	contents, err = os.ReadFile(dst)
	if err != nil {
		t.Fatalf("error reading output: %v", err)
	}
	if string(contents) != "Hello, World!" {
		t.Errorf("expected a failed render to leave the file alone, got %q", string(contents))
	}
}

func TestRenderFileFailedRenderCreatesNothing(t *testing.T) {
	t.Parallel()

	ctx := testContext()
	reg, _ := newTestRegistry(map[string]string{}, false)
	dst := filepath.Join(t.TempDir(), "out.txt")

	if err := reg.RenderFile(ctx, "missing", stencil.Model{}, dst); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected an fs.ErrNotExist error, got %v", err)
	}
	if _, err := os.Stat(dst); !errors.Is(err, fs.ErrNotExist) {
		t.Errorf("expected %s not to exist, got %v", dst, err)
	}
}
