package stencil

import (
	"context"
	"fmt"
	"strings"

	"github.com/natefinch/atomic"
)

// RenderFile renders the template at name with model and writes the output
// to the file at dst. The file is replaced atomically, so readers see either
// the old contents or the complete new output; nothing is written if
// rendering fails.
func (r *Registry) RenderFile(ctx context.Context, name string, model Model, dst string) error {
	out, err := r.Render(ctx, name, model)
	if err != nil {
		return err
	}
	if err := atomic.WriteFile(dst, strings.NewReader(out)); err != nil {
		logger(ctx).ErrorContext(ctx, "error writing rendered template", "path", name, "dst", dst, "error", err)
		return fmt.Errorf("error writing %q: %w", dst, err)
	}
	return nil
}
