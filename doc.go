// Package stencil provides a small text-templating engine built on top of
// the text/template and html/template packages.
//
// stencil is organized around a Registry. A Registry turns logical template
// paths, like "pages/index", into compiled Renderers: it joins the path to a
// configured directory, appends an extension, fetches the source through a
// Loader (the filesystem, an fs.FS, HTTP, or a database table), and compiles
// it with its Flavor. Compiled Renderers can be cached for the lifetime of
// the Registry.
//
// Every render receives a Context next to its model. The Context holds the
// helpers a template can call: assume and exists for optional values (read
// optional keys with index, as in {{ assume (index .item "subtitle") }},
// since referencing a missing key directly is an error),
// filter and map for reshaping lists and maps, each (or loop) for rendering
// a template once per entry of a list or map, and render for rendering
// another template. A template rendered through render sees its caller's
// model as .parent and its own model as .item, so data is passed down
// without the two namespaces being merged. Relative paths ("./row",
// "../partials/nav") are resolved against the path of the calling template.
//
// Layouts are built with Registry.Master. A MasterFunc renders a content
// template first, then renders the master template with the content
// available as .content, next to a set of global values and the content's
// own model as .item.
//
// The default Flavor renders plain text. HTMLFlavor uses html/template's
// contextual escaping instead, and adds encode, sanitize, and list helpers.
// Flavors can implement RenderHook to post-process everything a Registry
// renders.
//
// Templates are trusted code: there is no sandboxing beyond what the
// template packages themselves provide. Any error, whether a missing
// template, a model key a template references but the model lacks, or an
// iteration over something that isn't a list or map, aborts the whole
// render.
package stencil
