package stencil

import (
	"context"
)

// MasterFunc renders the template at path as the content of a master
// template. It is returned by Registry.Master.
type MasterFunc func(ctx context.Context, path string, model Model) (string, error)

// Master returns a MasterFunc that wraps templates in the master template at
// masterPath.
//
// Each call renders the inner template first, through a Context scoped to
// masterPath and the master model, which is a copy of globals with the
// caller's model under "item". The inner template therefore sees
// {parent: master model, item: model}, just as if the master had called
// render itself. The master template is then rendered with the master model
// plus the inner output under "content", using that same Context.
//
// Masters don't nest; to wrap a master in another one, render it through a
// second MasterFunc.
func (r *Registry) Master(masterPath string, globals Model) MasterFunc {
	return func(ctx context.Context, path string, model Model) (out string, err error) {
		ctx, span := startSpan(ctx, "stencil.Master", attrMaster.String(masterPath), attrPath.String(path))
		defer func() { endSpan(span, err) }()

		if model == nil {
			model = Model{}
		}
		masterModel := globals.Clone()
		masterModel["item"] = model
		helpers := r.NewContext(Scope{Path: masterPath, Model: masterModel})

		content, err := helpers.Render(ctx, path, model)
		if err != nil {
			return "", err
		}

		outer := masterModel.Clone()
		outer["content"] = r.trust(content)
		return r.RenderWith(ctx, masterPath, outer, helpers)
	}
}
