// Package document defines the e-mail document edited by the composer.
//
// A Document carries the e-mail title, the pre-header text, the canvas width,
// the selected template and an ordered list of blocks. Block is a closed sum
// type with one case per block kind:
//
//   - ImageBlock: an image with src and alt.
//   - ButtonBlock: an image wrapped in a link.
//   - CustomBlock: a raw HTML fragment, inserted as-is.
//   - RawBlock: a block of a kind this package does not know (for example the
//     legacy "text" kind). It is kept byte-for-byte so that documents written
//     by older editors survive a load and save cycle.
//
// Documents are values. Every mutation helper returns a new Document and
// leaves its receiver untouched, which makes them safe to keep as undo
// snapshots.
//
// Editor binds a Document to a history.History. Each editing operation
// computes the next document and records it with exactly one History.Set.
//
//	ed := document.NewEditor(document.New())
//	img, _ := ed.AddBlock(document.TypeImage)
//	ed.UpdateBlock(img.BlockID(), document.BlockPatch{Src: ptr("hero.png")})
//	ed.Undo()
//
// Decode and Encode convert documents to the JSON file format used by export
// and import.
package document
