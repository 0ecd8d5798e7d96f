// Package catalog lists the base templates a document can be rendered into
// and resolves a document's template id to HTML.
//
// Built-in entries point at template files. They are read from a
// file.Storage, or fetched over HTTP when the entry's file is an absolute
// http(s) URL. User templates from the template store appear in the listing
// with ids of the form "user:<id>".
//
//	r := catalog.NewResolver(catalog.Default(), store, storage)
//	html, err := r.Resolve(ctx, doc.TemplateID)
//	out := render.Render(html, doc)
//
// Fetched files are cached. Watch drops cached entries when files below a
// local directory change.
package catalog
