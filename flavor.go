package stencil

import (
	"context"
	"errors"
	"fmt"
	"strings"
	texttemplate "text/template"
)

// ErrUnknownFlavor is returned by FlavorByName for names it doesn't know.
var ErrUnknownFlavor = errors.New("unknown flavor")

// Flavor specializes a Registry: it decides how template source is compiled,
// which Context templates receive, and the default template extension.
type Flavor interface {
	// Name identifies the Flavor in configuration files.
	Name() string

	// Extension is appended to template paths when the Registry's
	// configuration doesn't set one. It should start with a dot.
	Extension() string

	// Compile parses source into a Renderer. funcs holds every function
	// name templates may call; their implementations are replaced at
	// render time by the Context's.
	Compile(name, source string, funcs map[string]any) (Renderer, error)

	// NewContext returns the Context for a single render, scoped to
	// scope.
	NewContext(reg *Registry, scope Scope) Context
}

// RenderHook is an optional interface for Flavors that post-process the
// output of every Registry render, to annotate it for debugging, for
// example.
type RenderHook interface {
	AfterRender(ctx context.Context, path string, model Model, output string) (string, error)
}

// Trusting is an optional interface for Flavors that escape interpolated
// values. Trust marks a fragment rendered by the engine itself so it is
// inserted as-is.
type Trusting interface {
	Trust(fragment string) any
}

var _ Flavor = TextFlavor{}

// TextFlavor renders plain text with text/template. It is the default
// Flavor of a Registry.
type TextFlavor struct{}

// Name returns "text".
func (TextFlavor) Name() string {
	return "text"
}

// Extension returns ".jst".
func (TextFlavor) Extension() string {
	return ".jst"
}

// Compile parses source as a text/template. Referencing a key missing from
// the model is an error at render time.
func (TextFlavor) Compile(name, source string, funcs map[string]any) (Renderer, error) {
	tmpl, err := texttemplate.New(name).Option("missingkey=error").Funcs(funcs).Parse(source)
	if err != nil {
		return nil, fmt.Errorf("error parsing template %q: %w", name, err)
	}
	return &compiled{
		name: name,
		instance: func(funcs map[string]any) (executable, error) {
			clone, err := tmpl.Clone()
			if err != nil {
				return nil, err
			}
			// options aren't carried over by Clone
			return clone.Option("missingkey=error").Funcs(funcs), nil
		},
	}, nil
}

// NewContext returns a *BaseContext.
func (TextFlavor) NewContext(reg *Registry, scope Scope) Context {
	return NewBaseContext(reg, scope)
}

// FlavorByName returns the built-in Flavor called name: "text" (or an empty
// string) or "html".
func FlavorByName(name string) (Flavor, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "text":
		return TextFlavor{}, nil
	case "html":
		return HTMLFlavor{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFlavor, name)
	}
}
