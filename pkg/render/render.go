package render

import (
	"context"
	"html"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/mailcanvas/pkg/document"
)

// Template markers.
const (
	TitleMarker         = "TITLE_PLACEHOLDER"
	PreheaderMarker     = "PREHEADER_PLACEHOLDER"
	PreheaderSpanMarker = `<span id="preheader-placeholder" style="color:#f3f3f3;font-size:0;line-height:0;"></span>`
	BlocksMarker        = `<tr id="block-placeholder"></tr>`
)

// ImageWidth is the width attribute of every rendered block image.
const ImageWidth = "750"

const hiddenPreheaderOpen = `<div style="display:none; mso-hide:all; font-size:1px; color:#ffffff; line-height:1px; max-height:0px; max-width:0px; opacity:0; overflow:hidden;">`

var rowTag = regexp.MustCompile(`(?i)<tr[\s>]`)

// Render returns templateHTML with the document substituted into its markers.
func Render(templateHTML string, doc document.Document) string {
	out := strings.Replace(templateHTML, TitleMarker, doc.TitleText, 1)
	out = strings.Replace(out, PreheaderSpanMarker, HiddenPreheader(doc.PreheaderText), 1)
	out = strings.Replace(out, PreheaderMarker, doc.PreheaderText, 1)
	out = strings.Replace(out, BlocksMarker, Blocks(doc.Blocks), 1)
	return out
}

// HiddenPreheader returns the invisible pre-header element for text.
func HiddenPreheader(text string) string {
	return hiddenPreheaderOpen + text + "</div>"
}

// Blocks returns the concatenated fragments of blocks.
func Blocks(blocks []document.Block) string {
	var sb strings.Builder
	for _, b := range blocks {
		sb.WriteString(Block(b))
	}
	return sb.String()
}

// Block returns the table-row fragment for a single block.
// Blocks of unknown kinds render as an empty string.
func Block(b document.Block) string {
	switch v := b.(type) {
	case document.ImageBlock:
		return `<tr><td align="center">` + img(v.Src, v.Alt) + `</td></tr>`
	case document.ButtonBlock:
		href := v.Href
		if href == "" {
			href = "#"
		}
		return `<tr><td align="center"><a href="` + href + `">` + img(v.Src, v.Alt) + `</a></td></tr>`
	case document.CustomBlock:
		frag := strings.TrimSpace(v.HTML)
		if IsRow(frag) {
			return frag
		}
		return `<tr><td align="center">` + frag + `</td></tr>`
	default:
		return ""
	}
}

// IsRow reports whether html contains a <tr> start tag anywhere.
func IsRow(html string) bool {
	return rowTag.MatchString(html)
}

func img(src, alt string) string {
	return `<img src="` + src + `" alt="` + alt + `" width="` + ImageWidth + `" />`
}

// Component returns the rendered e-mail as a templ component.
func Component(templateHTML string, doc document.Document) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, Render(templateHTML, doc))
		return err
	})
}

// Frame returns an iframe element with the given id whose srcdoc is the
// rendered e-mail, sized to the document's canvas width. It is the unit
// patched into the editor page by live preview streams.
func Frame(id, templateHTML string, doc document.Document) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := io.WriteString(w, `<iframe id="`+html.EscapeString(id)+`" title="preview" width="`+
			strconv.Itoa(doc.CanvasWidth)+`" srcdoc="`+html.EscapeString(Render(templateHTML, doc))+`"></iframe>`)
		return err
	})
}
