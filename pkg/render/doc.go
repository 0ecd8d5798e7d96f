// Package render turns a document and an HTML template into the final e-mail
// markup.
//
// Templates are opaque HTML strings with literal markers. Render performs,
// in order and each at most once:
//
//  1. TITLE_PLACEHOLDER is replaced with the document title.
//  2. The pre-header <span> marker is replaced with a hidden <div> that holds
//     the pre-header text.
//  3. PREHEADER_PLACEHOLDER is replaced with the pre-header text.
//  4. The <tr id="block-placeholder"></tr> row is replaced with the rendered
//     blocks, in document order.
//
// Only the first occurrence of each marker is replaced. Missing markers are
// skipped. Text and URLs are inserted verbatim, without escaping.
//
// Component wraps the result as a templ.Component so handlers can stream it
// like any other view.
package render
