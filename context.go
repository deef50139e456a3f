package stencil

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrInvalidTemplate is returned when Each or Loop is passed something
	// that is neither a template path nor a Renderer.
	ErrInvalidTemplate = errors.New("template must be a path or a Renderer")

	// ErrInvalidFunc is returned when filter or map is called from a
	// template with a value that isn't a supported function.
	ErrInvalidFunc = errors.New("unsupported function type")
)

// Scope is what a Context is scoped to.
type Scope struct {
	// Path is the logical path of the template being rendered, before
	// the Registry's directory and extension are applied. Relative paths
	// passed to Render are resolved against it.
	Path string

	// Model is the model of the render.
	Model Model

	// Parent is the model of the enclosing render, if there is one.
	Parent Model
}

// Context is the set of helpers available to a template during a single
// render. A new Context is created for every render and for every item an
// iteration renders, and is passed to the Renderer next to the model rather
// than inside it.
//
// Templates reach the helpers through the functions returned by FuncMap.
type Context interface {
	// Path returns the logical path the Context is scoped to.
	Path() string

	// Model returns the model the Context was created with.
	Model() Model

	// Parent returns the model of the enclosing render, or nil.
	Parent() Model

	// Assume returns x, or an empty string if x is nil.
	Assume(x any) any

	// Exists reports whether x is non-nil. Zero values exist.
	Exists(x any) bool

	// Filter is the package-level Filter.
	Filter(iterable any, pred Predicate) (any, error)

	// Map is the package-level Map.
	Map(iterable any, fn Mapper) (any, error)

	// Each renders tmpl, a template path or a Renderer, once per entry
	// of iterable, with the model {item: value, index: key}. Each
	// rendered entry is wrapped in the optional left and right wrap
	// strings and the results are joined by newlines.
	Each(ctx context.Context, iterable, tmpl any, wrap ...string) (string, error)

	// Loop is an alias of Each.
	Loop(ctx context.Context, iterable, tmpl any, wrap ...string) (string, error)

	// Render renders the template at path with the model
	// {parent: this Context's model, item: model}. Paths starting with
	// "./" or "../" are relative to this Context's path.
	Render(ctx context.Context, path string, model Model) (string, error)

	// FuncMap returns the functions templates can call, bound to this
	// Context.
	FuncMap(ctx context.Context) map[string]any
}

var _ Context = &BaseContext{}

// BaseContext is the Context used by TextFlavor, and the building block
// other Flavors embed in their own Contexts.
type BaseContext struct {
	registry *Registry
	scope    Scope
}

// NewBaseContext returns a BaseContext that renders nested templates
// through reg. The scope's model is copied, so later changes by the caller
// aren't visible to nested renders.
func NewBaseContext(reg *Registry, scope Scope) *BaseContext {
	scope.Model = scope.Model.Clone()
	return &BaseContext{
		registry: reg,
		scope:    scope,
	}
}

// Registry returns the Registry nested renders go through.
func (c *BaseContext) Registry() *Registry {
	return c.registry
}

// Path returns the logical path the Context is scoped to.
func (c *BaseContext) Path() string {
	return c.scope.Path
}

// Model returns the model the Context was created with.
func (c *BaseContext) Model() Model {
	return c.scope.Model
}

// Parent returns the model of the enclosing render, or nil.
func (c *BaseContext) Parent() Model {
	return c.scope.Parent
}

// Assume returns x, or an empty string if x is nil or a nil pointer.
//
// Templates fail on keys missing from a map, so optional fields are read
// with index, which yields nil for a missing key:
//
//	{{ assume (index .item "subtitle") }}
func (*BaseContext) Assume(x any) any {
	if absent(x) {
		return ""
	}
	return x
}

// Exists reports whether x is neither nil nor a nil pointer.
func (*BaseContext) Exists(x any) bool {
	return !absent(x)
}

// Filter returns the entries of iterable pred keeps, preserving its shape.
func (*BaseContext) Filter(iterable any, pred Predicate) (any, error) {
	return Filter(iterable, pred)
}

// Map replaces every value of iterable with the output of fn, preserving
// its shape.
func (*BaseContext) Map(iterable any, fn Mapper) (any, error) {
	return Map(iterable, fn)
}

// Each renders tmpl once per entry of iterable. Entries are rendered one
// after the other, in enumeration order, and the first error aborts the
// whole iteration. An empty iterable renders to an empty string without
// tmpl ever being loaded.
func (c *BaseContext) Each(ctx context.Context, iterable, tmpl any, wrap ...string) (out string, err error) {
	ctx, span := startSpan(ctx, "stencil.Each", attrPath.String(c.scope.Path))
	defer func() { endSpan(span, err) }()

	items, err := enumerate(iterable)
	if err != nil {
		return "", err
	}
	span.SetAttributes(attrItems.Int(len(items)))
	if len(items) < 1 {
		return "", nil
	}

	renderer, itemPath, err := c.renderer(ctx, tmpl)
	if err != nil {
		return "", err
	}

	var left, right string
	if len(wrap) > 0 {
		left = wrap[0]
	}
	if len(wrap) > 1 {
		right = wrap[1]
	}

	lines := make([]string, 0, len(items))
	for _, item := range items {
		model := Model{"item": item.Value, "index": item.Key}
		helpers := c.registry.NewContext(Scope{
			Path:   itemPath,
			Model:  model,
			Parent: c.scope.Model,
		})
		rendered, err := renderer.Render(ctx, helpers, model)
		if err != nil {
			return "", fmt.Errorf("error rendering entry %v: %w", item.Key, err)
		}
		lines = append(lines, left+rendered+right)
	}
	return strings.Join(lines, "\n"), nil
}

// Loop is an alias of Each.
func (c *BaseContext) Loop(ctx context.Context, iterable, tmpl any, wrap ...string) (string, error) {
	return c.Each(ctx, iterable, tmpl, wrap...)
}

// renderer returns the Renderer for an Each template argument, along with
// the path the item Contexts should be scoped to.
func (c *BaseContext) renderer(ctx context.Context, tmpl any) (Renderer, string, error) {
	switch t := tmpl.(type) {
	case string:
		target := c.Resolve(t)
		renderer, err := c.registry.Open(ctx, target)
		if err != nil {
			return nil, "", err
		}
		return renderer, target, nil
	case Renderer:
		return t, c.scope.Path, nil
	case func(context.Context, Context, Model) (string, error):
		return RendererFunc(t), c.scope.Path, nil
	default:
		return nil, "", fmt.Errorf("%w: got %T", ErrInvalidTemplate, tmpl)
	}
}

// Render renders the template at path with {parent: c.Model(), item: model}.
func (c *BaseContext) Render(ctx context.Context, path string, model Model) (string, error) {
	if model == nil {
		model = Model{}
	}
	target := c.Resolve(path)
	nested := Model{
		"parent": c.scope.Model,
		"item":   model,
	}
	helpers := c.registry.NewContext(Scope{
		Path:   target,
		Model:  nested,
		Parent: c.scope.Model,
	})
	return c.registry.RenderWith(ctx, target, nested, helpers)
}

// Resolve returns path resolved against the Context's own path if it starts
// with "./" or "../", or unchanged otherwise.
func (c *BaseContext) Resolve(path string) string {
	return resolveRelative(c.scope.Path, path)
}

// FuncMap returns the functions templates can call: assume, exists, filter,
// map, each, loop, render, dict, parent, and path.
func (c *BaseContext) FuncMap(ctx context.Context) map[string]any {
	return map[string]any{
		"assume": c.Assume,
		"exists": c.Exists,
		"filter": func(iterable, fn any) (any, error) {
			pred, err := asPredicate(fn)
			if err != nil {
				return nil, err
			}
			return c.Filter(iterable, pred)
		},
		"map": func(iterable, fn any) (any, error) {
			mapper, err := asMapper(fn)
			if err != nil {
				return nil, err
			}
			return c.Map(iterable, mapper)
		},
		"each": func(iterable, tmpl any, wrap ...string) (string, error) {
			return c.Each(ctx, iterable, tmpl, wrap...)
		},
		"loop": func(iterable, tmpl any, wrap ...string) (string, error) {
			return c.Loop(ctx, iterable, tmpl, wrap...)
		},
		"render": func(path string, model ...any) (string, error) {
			m, err := toModel(model...)
			if err != nil {
				return "", err
			}
			return c.Render(ctx, path, m)
		},
		"dict":   dict,
		"parent": c.Parent,
		"path":   c.Path,
	}
}

func asPredicate(fn any) (Predicate, error) {
	switch f := fn.(type) {
	case Predicate:
		return f, nil
	case func(value, key, iterable any) bool:
		return f, nil
	case func(value any) bool:
		return func(value, _, _ any) bool { return f(value) }, nil
	default:
		return nil, fmt.Errorf("%w: filter needs a predicate, got %T", ErrInvalidFunc, fn)
	}
}

func asMapper(fn any) (Mapper, error) {
	switch f := fn.(type) {
	case Mapper:
		return f, nil
	case func(value, key, iterable any) any:
		return f, nil
	case func(value any) any:
		return func(value, _, _ any) any { return f(value) }, nil
	default:
		return nil, fmt.Errorf("%w: map needs a mapper, got %T", ErrInvalidFunc, fn)
	}
}
