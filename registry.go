package stencil

import (
	"context"
	"fmt"
	"net/url"
	"path"
	"strings"
	"sync"
)

// Config holds the settings of a Registry. The zero value is usable: it
// loads text templates ending in ".jst" from the working directory, without
// caching.
type Config struct {
	// Directory is joined to relative template paths. It may be a URL
	// when paired with an HTTPLoader. Defaults to ".".
	Directory string

	// Extension is appended to every template path. A leading dot is
	// added if missing. Defaults to the Flavor's extension.
	Extension string

	// Cache enables caching of compiled templates for the lifetime of the
	// Registry, or until ClearCache is called.
	Cache bool

	// Flavor selects the template language and the Context templates
	// receive. Defaults to TextFlavor.
	Flavor Flavor

	// Loader fetches template sources. Defaults to FileLoader.
	Loader Loader

	// Funcs are extra functions available to every template. The
	// Context's own helpers take precedence over them.
	Funcs map[string]any
}

// Registry resolves template paths to compiled Renderers and renders them.
// A Registry must be created with NewRegistry. It can safely be used by
// multiple goroutines.
type Registry struct {
	directory string
	extension string
	caching   bool
	flavor    Flavor
	loader    Loader

	// parseFuncs holds a stub for every function a template may call,
	// plus the configured extra funcs.
	parseFuncs map[string]any

	cache   map[string]Renderer
	cacheMu sync.RWMutex
}

// NewRegistry returns a Registry configured by cfg, with defaults applied
// for unset fields.
func NewRegistry(cfg Config) *Registry {
	reg := &Registry{
		directory: cfg.Directory,
		extension: strings.TrimSpace(cfg.Extension),
		caching:   cfg.Cache,
		flavor:    cfg.Flavor,
		loader:    cfg.Loader,
		cache:     map[string]Renderer{},
	}
	if reg.directory == "" {
		reg.directory = "."
	}
	if reg.flavor == nil {
		reg.flavor = TextFlavor{}
	}
	if reg.extension == "" {
		reg.extension = reg.flavor.Extension()
	}
	if reg.extension != "" && !strings.HasPrefix(reg.extension, ".") {
		reg.extension = "." + reg.extension
	}
	if reg.loader == nil {
		reg.loader = FileLoader{}
	}

	// a throwaway Context tells us which helper names the Flavor exposes
	helpers := reg.flavor.NewContext(reg, Scope{}).FuncMap(context.Background())
	names := make([]string, 0, len(helpers))
	for name := range helpers {
		names = append(names, name)
	}
	reg.parseFuncs = mergeFuncs(cfg.Funcs, placeholderFuncs(names))
	return reg
}

// Flavor returns the Registry's Flavor.
func (r *Registry) Flavor() Flavor {
	return r.flavor
}

// NewContext returns a Context of the Registry's Flavor, scoped to scope.
func (r *Registry) NewContext(scope Scope) Context {
	return r.flavor.NewContext(r, scope)
}

// Resolve turns a logical template path into the identifier passed to the
// Loader. Absolute paths and URLs are kept as they are, relative paths are
// joined to the configured directory, and the extension is appended.
func (r *Registry) Resolve(name string) string {
	var resolved string
	switch {
	case isURL(name), strings.HasPrefix(name, "/"):
		resolved = name
	case isURL(r.directory):
		base, err := url.Parse(r.directory)
		if err != nil {
			resolved = strings.TrimSuffix(r.directory, "/") + "/" + name
			break
		}
		resolved = base.JoinPath(name).String()
	default:
		resolved = path.Join(r.directory, name)
	}
	return resolved + r.extension
}

// Open returns the Renderer for the template at name. When caching is
// enabled, the template is loaded and compiled only the first time it is
// opened; failures are never cached.
func (r *Registry) Open(ctx context.Context, name string) (renderer Renderer, err error) {
	resolved := r.Resolve(name)
	ctx, span := startSpan(ctx, "stencil.Open", attrPath.String(name), attrResolved.String(resolved))
	defer func() { endSpan(span, err) }()

	if r.caching {
		if cached := r.getCached(resolved); cached != nil {
			span.SetAttributes(attrCached.Bool(true))
			logger(ctx).DebugContext(ctx, "template cache hit", "path", name, "resolved", resolved)
			return cached, nil
		}
	}

	logger(ctx).DebugContext(ctx, "loading template", "path", name, "resolved", resolved)
	source, err := r.loader.Load(ctx, resolved)
	if err != nil {
		logger(ctx).DebugContext(ctx, "error loading template", "path", name, "resolved", resolved, "error", err)
		return nil, fmt.Errorf("error loading template %q: %w", name, err)
	}
	renderer, err = r.flavor.Compile(resolved, source, r.parseFuncs)
	if err != nil {
		return nil, err
	}

	if r.caching {
		r.setCached(resolved, renderer)
	}
	return renderer, nil
}

// Compile compiles source directly, without loading or caching it.
func (r *Registry) Compile(source string) (Renderer, error) {
	return r.flavor.Compile("source", source, r.parseFuncs)
}

// Render renders the template at name with model, passing the template a
// new Context of the Registry's Flavor scoped to name and model.
func (r *Registry) Render(ctx context.Context, name string, model Model) (string, error) {
	return r.RenderWith(ctx, name, model, nil)
}

// RenderWith renders the template at name with model and helpers. If
// helpers is nil, a new Context is created as Render does.
func (r *Registry) RenderWith(ctx context.Context, name string, model Model, helpers Context) (out string, err error) {
	ctx, span := startSpan(ctx, "stencil.Render", attrPath.String(name))
	defer func() { endSpan(span, err) }()

	renderer, err := r.Open(ctx, name)
	if err != nil {
		return "", err
	}
	if helpers == nil {
		helpers = r.NewContext(Scope{Path: name, Model: model})
	}
	out, err = renderer.Render(ctx, helpers, model)
	if err != nil {
		return "", err
	}
	return r.afterRender(ctx, name, model, out)
}

// RenderSource compiles source and renders it with model. Relative paths
// the template renders are resolved against the Registry's directory.
func (r *Registry) RenderSource(ctx context.Context, source string, model Model) (string, error) {
	renderer, err := r.Compile(source)
	if err != nil {
		return "", err
	}
	return renderer.Render(ctx, r.NewContext(Scope{Model: model}), model)
}

// ClearCache drops every cached Renderer, so templates are loaded and
// compiled again the next time they're opened.
func (r *Registry) ClearCache() {
	r.cacheMu.Lock()
	defer r.cacheMu.Unlock()
	r.cache = map[string]Renderer{}
}

func (r *Registry) afterRender(ctx context.Context, name string, model Model, out string) (string, error) {
	hook, ok := r.flavor.(RenderHook)
	if !ok {
		return out, nil
	}
	res, err := hook.AfterRender(ctx, name, model, out)
	if err != nil {
		return "", fmt.Errorf("error post-processing template %q: %w", name, err)
	}
	return res, nil
}

// trust marks a fragment the engine rendered so Flavors that escape values
// insert it verbatim.
func (r *Registry) trust(fragment string) any {
	if t, ok := r.flavor.(Trusting); ok {
		return t.Trust(fragment)
	}
	return fragment
}

func (r *Registry) getCached(key string) Renderer {
	r.cacheMu.RLock()
	defer r.cacheMu.RUnlock()
	return r.cache[key]
}

// setCached stores renderer under key. Two goroutines opening the same
// uncached template may both compile it; the last one to finish wins.
func (r *Registry) setCached(key string, renderer Renderer) {
	r.cacheMu.Lock()
	defer r.cacheMu.Unlock()
	r.cache[key] = renderer
}

func isURL(name string) bool {
	return strings.Contains(name, "://")
}

// resolveRelative resolves name against the location of base if name starts
// with "./" or "../". Other names are returned unchanged.
func resolveRelative(base, name string) string {
	if !strings.HasPrefix(name, "./") && !strings.HasPrefix(name, "../") {
		return name
	}
	if isURL(base) {
		baseURL, err := url.Parse(base)
		if err == nil {
			ref, err := url.Parse(name)
			if err == nil {
				return baseURL.ResolveReference(ref).String()
			}
		}
	}
	return path.Join(path.Dir(base), name)
}
