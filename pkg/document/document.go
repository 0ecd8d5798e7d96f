package document

import (
	"encoding/json"
	"slices"
)

// Defaults for a freshly created document.
const (
	DefaultTitle       = "メールタイトル"
	DefaultPreheader   = "プリヘッダーのテキスト"
	DefaultCanvasWidth = 600
	MinCanvasWidth     = 300
)

// Document is the complete editable state of one e-mail composition.
type Document struct {
	TitleText     string
	PreheaderText string
	MirrorPageURL string
	CanvasWidth   int
	TemplateID    *string
	Blocks        []Block
}

// New returns a document with default title, pre-header and width.
func New() Document {
	return Document{
		TitleText:     DefaultTitle,
		PreheaderText: DefaultPreheader,
		CanvasWidth:   DefaultCanvasWidth,
		Blocks:        []Block{},
	}
}

// Block returns the block with the given id.
func (d Document) Block(id string) (Block, bool) {
	i := d.indexOf(id)
	if i < 0 {
		return nil, false
	}
	return d.Blocks[i], true
}

func (d Document) indexOf(id string) int {
	return slices.IndexFunc(d.Blocks, func(b Block) bool { return b.BlockID() == id })
}

// withBlocks returns a shallow copy of d that owns blocks.
func (d Document) withBlocks(blocks []Block) Document {
	d.Blocks = blocks
	return d
}

// AppendBlock returns a copy of d with b appended.
func (d Document) AppendBlock(b Block) Document {
	blocks := make([]Block, 0, len(d.Blocks)+1)
	blocks = append(blocks, d.Blocks...)
	return d.withBlocks(append(blocks, b))
}

// UpdateBlock returns a copy of d with the patch applied to the block with the
// given id. An unmatched id leaves the blocks as they are.
func (d Document) UpdateBlock(id string, patch BlockPatch) Document {
	blocks := slices.Clone(d.Blocks)
	if i := d.indexOf(id); i >= 0 {
		blocks[i] = patch.Apply(blocks[i])
	}
	return d.withBlocks(blocks)
}

// ReplaceBlock returns a copy of d with the block sharing b's id replaced by b.
func (d Document) ReplaceBlock(b Block) Document {
	blocks := slices.Clone(d.Blocks)
	if i := d.indexOf(b.BlockID()); i >= 0 {
		blocks[i] = b
	}
	return d.withBlocks(blocks)
}

// DeleteBlock returns a copy of d without the block with the given id.
func (d Document) DeleteBlock(id string) Document {
	blocks := slices.DeleteFunc(slices.Clone(d.Blocks), func(b Block) bool {
		return b.BlockID() == id
	})
	return d.withBlocks(blocks)
}

// MoveBlock returns a copy of d with the block at index from moved to index to.
// The relative order of all other blocks is kept. Out of range indexes leave
// the order unchanged.
func (d Document) MoveBlock(from, to int) Document {
	blocks := slices.Clone(d.Blocks)
	n := len(blocks)
	if from < 0 || from >= n || to < 0 || to >= n || from == to {
		return d.withBlocks(blocks)
	}
	b := blocks[from]
	blocks = slices.Delete(blocks, from, from+1)
	blocks = slices.Insert(blocks, to, b)
	return d.withBlocks(blocks)
}

// WithBlocks returns a copy of d with the block list replaced.
func (d Document) WithBlocks(blocks []Block) Document {
	if blocks == nil {
		blocks = []Block{}
	}
	return d.withBlocks(slices.Clone(blocks))
}

// WithTitle returns a copy of d with a new title.
func (d Document) WithTitle(title string) Document {
	d.TitleText = title
	return d.withBlocks(slices.Clone(d.Blocks))
}

// WithPreheader returns a copy of d with a new pre-header text.
func (d Document) WithPreheader(text string) Document {
	d.PreheaderText = text
	return d.withBlocks(slices.Clone(d.Blocks))
}

// WithMirrorPageURL returns a copy of d with a new mirror page URL.
func (d Document) WithMirrorPageURL(url string) Document {
	d.MirrorPageURL = url
	return d.withBlocks(slices.Clone(d.Blocks))
}

// WithCanvasWidth returns a copy of d with a new canvas width, raised to
// MinCanvasWidth when smaller.
func (d Document) WithCanvasWidth(width int) Document {
	d.CanvasWidth = max(width, MinCanvasWidth)
	return d.withBlocks(slices.Clone(d.Blocks))
}

// WithTemplateID returns a copy of d with a new template id. Nil clears it.
func (d Document) WithTemplateID(id *string) Document {
	if id != nil {
		v := *id
		id = &v
	}
	d.TemplateID = id
	return d.withBlocks(slices.Clone(d.Blocks))
}

// BlockIDs returns the ids of all blocks in order.
func (d Document) BlockIDs() []string {
	ids := make([]string, len(d.Blocks))
	for i, b := range d.Blocks {
		ids[i] = b.BlockID()
	}
	return ids
}

type wireDocument struct {
	TitleText     string            `json:"titleText"`
	PreheaderText string            `json:"preheaderText"`
	MirrorPageURL string            `json:"mirrorPageUrl,omitempty"`
	CanvasWidth   int               `json:"canvasWidth"`
	TemplateID    *string           `json:"templateId"`
	Blocks        []json.RawMessage `json:"blocks"`
}

// MarshalJSON encodes the document in the file format.
func (d Document) MarshalJSON() ([]byte, error) {
	blocks := d.Blocks
	if blocks == nil {
		blocks = []Block{}
	}
	return json.Marshal(struct {
		TitleText     string  `json:"titleText"`
		PreheaderText string  `json:"preheaderText"`
		MirrorPageURL string  `json:"mirrorPageUrl,omitempty"`
		CanvasWidth   int     `json:"canvasWidth"`
		TemplateID    *string `json:"templateId"`
		Blocks        []Block `json:"blocks"`
	}{d.TitleText, d.PreheaderText, d.MirrorPageURL, d.CanvasWidth, d.TemplateID, blocks})
}

// UnmarshalJSON decodes the document file format. Fields absent from data
// keep their current values.
func (d *Document) UnmarshalJSON(data []byte) error {
	w := wireDocument{
		TitleText:     d.TitleText,
		PreheaderText: d.PreheaderText,
		MirrorPageURL: d.MirrorPageURL,
		CanvasWidth:   d.CanvasWidth,
		TemplateID:    d.TemplateID,
	}
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}

	blocks := make([]Block, 0, len(w.Blocks))
	for _, raw := range w.Blocks {
		b, err := DecodeBlock(raw)
		if err != nil {
			return err
		}
		blocks = append(blocks, b)
	}

	*d = Document{
		TitleText:     w.TitleText,
		PreheaderText: w.PreheaderText,
		MirrorPageURL: w.MirrorPageURL,
		CanvasWidth:   w.CanvasWidth,
		TemplateID:    w.TemplateID,
		Blocks:        blocks,
	}
	return nil
}
