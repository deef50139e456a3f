package stencil

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrNilContext is returned when a Renderer is invoked without a Context.
// Registries always supply one; seeing this error means a Renderer was
// called directly with a nil Context.
var ErrNilContext = errors.New("renderer invoked without a context")

// Renderer is a compiled template. Render executes it against model, with
// helpers supplying the functions the template can call.
//
// Renderers returned by a Flavor are safe for concurrent use.
type Renderer interface {
	Render(ctx context.Context, helpers Context, model Model) (string, error)
}

// RendererFunc adapts a function to the Renderer interface, so Go code can
// hand Context.Each a renderer that isn't backed by a template.
type RendererFunc func(ctx context.Context, helpers Context, model Model) (string, error)

// Render calls f.
func (f RendererFunc) Render(ctx context.Context, helpers Context, model Model) (string, error) {
	return f(ctx, helpers, model)
}

// executable is the part of text/template and html/template templates that
// compiled needs after binding functions.
type executable interface {
	Execute(w io.Writer, data any) error
}

// compiled is a parsed template. The parsed template is never executed
// itself; every render binds the Context's functions to a private clone.
type compiled struct {
	name     string
	instance func(funcs map[string]any) (executable, error)
}

func (c *compiled) Render(ctx context.Context, helpers Context, model Model) (string, error) {
	if helpers == nil {
		return "", fmt.Errorf("error rendering %q: %w", c.name, ErrNilContext)
	}
	tmpl, err := c.instance(helpers.FuncMap(ctx))
	if err != nil {
		return "", fmt.Errorf("error preparing template %q: %w", c.name, err)
	}
	var out strings.Builder
	if err := tmpl.Execute(&out, model); err != nil {
		return "", fmt.Errorf("error executing template %q: %w", c.name, err)
	}
	return out.String(), nil
}

// placeholderFuncs returns a function map with a stub for every name in
// names. Templates are parsed before any Context exists, and parsing fails
// on unknown function names.
func placeholderFuncs(names []string) map[string]any {
	res := make(map[string]any, len(names))
	for _, name := range names {
		res[name] = func(...any) (any, error) { return nil, ErrNilContext }
	}
	return res
}

// mergeFuncs flattens function maps into one, later maps overriding earlier
// ones when they share keys.
func mergeFuncs(maps ...map[string]any) map[string]any {
	res := map[string]any{}
	for _, m := range maps {
		for k, v := range m {
			res[k] = v
		}
	}
	return res
}
