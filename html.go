package stencil

import (
	"context"
	"errors"
	"fmt"
	htmltemplate "html/template"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

// ErrUnknownListOption is returned when the list template function is
// passed an option it doesn't recognize.
var ErrUnknownListOption = errors.New("unknown list option")

var (
	_ Flavor   = HTMLFlavor{}
	_ Trusting = HTMLFlavor{}
	_ Context  = &HTMLContext{}
)

var (
	ugcPolicyOnce sync.Once
	ugcPolicy     *bluemonday.Policy
)

func defaultPolicy() *bluemonday.Policy {
	ugcPolicyOnce.Do(func() {
		ugcPolicy = bluemonday.UGCPolicy()
	})
	return ugcPolicy
}

// HTMLFlavor renders HTML with html/template, so values interpolated into
// templates are escaped for the context they appear in. Templates get an
// *HTMLContext, which adds encode, list, and sanitize to the base helpers.
type HTMLFlavor struct {
	// Policy is used by Sanitize. Defaults to bluemonday's UGCPolicy.
	Policy *bluemonday.Policy
}

// Name returns "html".
func (HTMLFlavor) Name() string {
	return "html"
}

// Extension returns ".html".
func (HTMLFlavor) Extension() string {
	return ".html"
}

// Compile parses source as an html/template.
func (HTMLFlavor) Compile(name, source string, funcs map[string]any) (Renderer, error) {
	tmpl, err := htmltemplate.New(name).Option("missingkey=error").Funcs(funcs).Parse(source)
	if err != nil {
		return nil, fmt.Errorf("error parsing template %q: %w", name, err)
	}
	return &compiled{
		name: name,
		instance: func(funcs map[string]any) (executable, error) {
			// tmpl itself is never executed, so it can always be
			// cloned
			clone, err := tmpl.Clone()
			if err != nil {
				return nil, err
			}
			// options aren't carried over by Clone
			return clone.Option("missingkey=error").Funcs(funcs), nil
		},
	}, nil
}

// NewContext returns an *HTMLContext.
func (f HTMLFlavor) NewContext(reg *Registry, scope Scope) Context {
	policy := f.Policy
	if policy == nil {
		policy = defaultPolicy()
	}
	return &HTMLContext{
		BaseContext: NewBaseContext(reg, scope),
		policy:      policy,
	}
}

// Trust marks fragment as safe HTML.
func (HTMLFlavor) Trust(fragment string) any {
	return htmltemplate.HTML(fragment) // #nosec G203
}

// HTMLContext is the Context used by HTMLFlavor. Helpers that return
// rendered templates return them as template.HTML, so they aren't escaped a
// second time.
type HTMLContext struct {
	*BaseContext

	policy *bluemonday.Policy
}

var htmlEncoder = strings.NewReplacer(
	"<", "&lt;",
	">", "&gt;",
	`"`, "&quot;",
	"'", "&apos;",
	"&", "&amp;",
	"\r", "&#13;",
	"\n", "&#10;",
)

// Encode converts x to a string and replaces the characters that are
// significant in HTML, line breaks included, with character references.
func (*HTMLContext) Encode(x any) string {
	return htmlEncoder.Replace(fmt.Sprint(x))
}

// Sanitize converts x to a string and strips any markup the Context's
// policy doesn't allow.
func (c *HTMLContext) Sanitize(x any) string {
	return c.policy.Sanitize(fmt.Sprint(x))
}

// ListOptions configures HTMLContext.List.
type ListOptions struct {
	// Iterable is the data to list.
	Iterable any

	// Template renders each entry. It's a template path or a Renderer.
	Template any

	// Tag wraps the whole list. It may include attributes, like
	// `ol class="steps"`. Defaults to "ul".
	Tag string

	// ItemTag wraps each entry. It may include attributes. Defaults to
	// "li".
	ItemTag string

	// EmptyText is returned when Iterable is empty and EmptyFile isn't
	// set.
	EmptyText string

	// EmptyFile is rendered with EmptyModel when Iterable is empty.
	EmptyFile string

	// EmptyModel is the model EmptyFile is rendered with.
	EmptyModel Model
}

// List renders every entry of opts.Iterable inside an opts.ItemTag element
// and wraps them all in an opts.Tag element. An empty iterable renders
// opts.EmptyFile if set, or returns opts.EmptyText.
func (c *HTMLContext) List(ctx context.Context, opts ListOptions) (string, error) {
	items, err := enumerate(opts.Iterable)
	if err != nil {
		return "", err
	}
	if len(items) < 1 {
		if opts.EmptyFile != "" {
			return c.Registry().Render(ctx, c.Resolve(opts.EmptyFile), opts.EmptyModel)
		}
		return opts.EmptyText, nil
	}

	tag, itemTag := opts.Tag, opts.ItemTag
	if tag == "" {
		tag = "ul"
	}
	if itemTag == "" {
		itemTag = "li"
	}
	inner, err := c.Loop(ctx, opts.Iterable, opts.Template,
		"<"+itemTag+">\n",
		"\n</"+closingTag(itemTag)+">",
	)
	if err != nil {
		return "", err
	}
	return "<" + tag + ">\n" + inner + "\n</" + closingTag(tag) + ">", nil
}

// closingTag returns the element name of an opening tag that may carry
// attributes.
func closingTag(tag string) string {
	name, _, _ := strings.Cut(tag, " ")
	return name
}

// listOptions parses the options the list template function accepts:
// key=value strings, and a Model to render empty_file with.
func listOptions(iterable, tmpl any, options []any) (ListOptions, error) {
	opts := ListOptions{Iterable: iterable, Template: tmpl}
	for _, raw := range options {
		switch model := raw.(type) {
		case Model:
			opts.EmptyModel = model
			continue
		case map[string]any:
			opts.EmptyModel = model
			continue
		}
		option, ok := raw.(string)
		if !ok {
			return opts, fmt.Errorf("%w: %v (%T)", ErrUnknownListOption, raw, raw)
		}
		key, val, _ := strings.Cut(option, "=")
		switch strings.TrimSpace(key) {
		case "tag":
			opts.Tag = val
		case "item_tag":
			opts.ItemTag = val
		case "empty_text":
			opts.EmptyText = val
		case "empty_file":
			opts.EmptyFile = val
		default:
			return opts, fmt.Errorf("%w: %q", ErrUnknownListOption, option)
		}
	}
	return opts, nil
}

// FuncMap returns the base helpers, with each, loop, and render returning
// template.HTML, plus encode, sanitize, and list.
//
// list takes the iterable, the template, and any number of key=value
// options: tag, item_tag, empty_text, and empty_file. A Model among the
// options, usually built with dict, is the model empty_file is rendered
// with.
func (c *HTMLContext) FuncMap(ctx context.Context) map[string]any {
	funcs := c.BaseContext.FuncMap(ctx)
	funcs["each"] = func(iterable, tmpl any, wrap ...string) (htmltemplate.HTML, error) {
		out, err := c.Each(ctx, iterable, tmpl, wrap...)
		return htmltemplate.HTML(out), err // #nosec G203
	}
	funcs["loop"] = func(iterable, tmpl any, wrap ...string) (htmltemplate.HTML, error) {
		out, err := c.Loop(ctx, iterable, tmpl, wrap...)
		return htmltemplate.HTML(out), err // #nosec G203
	}
	funcs["render"] = func(path string, model ...any) (htmltemplate.HTML, error) {
		m, err := toModel(model...)
		if err != nil {
			return "", err
		}
		out, err := c.Render(ctx, path, m)
		return htmltemplate.HTML(out), err // #nosec G203
	}
	funcs["encode"] = func(x any) htmltemplate.HTML {
		return htmltemplate.HTML(c.Encode(x)) // #nosec G203
	}
	funcs["sanitize"] = func(x any) htmltemplate.HTML {
		return htmltemplate.HTML(c.Sanitize(x)) // #nosec G203
	}
	funcs["list"] = func(iterable, tmpl any, options ...any) (htmltemplate.HTML, error) {
		opts, err := listOptions(iterable, tmpl, options)
		if err != nil {
			return "", err
		}
		out, err := c.List(ctx, opts)
		return htmltemplate.HTML(out), err // #nosec G203
	}
	return funcs
}
