package document

import (
	"encoding/json"
	"fmt"
)

// BlockType is the discriminator stored in the "type" field of a block.
type BlockType string

const (
	TypeImage  BlockType = "image"
	TypeButton BlockType = "button"
	TypeCustom BlockType = "custom"
)

// Defaults for newly added blocks.
const (
	DefaultImageSrc   = "画像URLを入力"
	DefaultImageAlt   = "altテキストを入力"
	DefaultButtonAlt  = "ボタン画像のalt"
	DefaultButtonURL  = "リンクを入力"
	DefaultCustomHTML = "<!-- カスタムHTMLをここに -->"
)

// Block is one renderable unit of the e-mail body.
// The set of implementations is closed.
type Block interface {
	BlockID() string
	Type() BlockType
	block()
}

// ImageBlock renders a centered image.
type ImageBlock struct {
	ID  string
	Src string
	Alt string
}

func (b ImageBlock) BlockID() string { return b.ID }
func (b ImageBlock) Type() BlockType { return TypeImage }
func (ImageBlock) block() {}

func (b ImageBlock) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID   string    `json:"id"`
		Type BlockType `json:"type"`
		Src  string    `json:"src"`
		Alt  string    `json:"alt"`
	}{b.ID, TypeImage, b.Src, b.Alt})
}

// ButtonBlock renders a centered image wrapped in a link.
type ButtonBlock struct {
	ID   string
	Src  string
	Alt  string
	Href string
}

func (b ButtonBlock) BlockID() string { return b.ID }
func (b ButtonBlock) Type() BlockType { return TypeButton }
func (ButtonBlock) block() {}

func (b ButtonBlock) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID   string    `json:"id"`
		Type BlockType `json:"type"`
		Src  string    `json:"src"`
		Alt  string    `json:"alt"`
		Href string    `json:"href"`
	}{b.ID, TypeButton, b.Src, b.Alt, b.Href})
}

// CustomBlock holds a user supplied HTML fragment. The markup is trusted.
type CustomBlock struct {
	ID   string
	HTML string
}

func (b CustomBlock) BlockID() string { return b.ID }
func (b CustomBlock) Type() BlockType { return TypeCustom }
func (CustomBlock) block() {}

func (b CustomBlock) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		ID   string    `json:"id"`
		Type BlockType `json:"type"`
		HTML string    `json:"html"`
	}{b.ID, TypeCustom, b.HTML})
}

// RawBlock preserves a block whose type is not one of the known kinds.
type RawBlock struct {
	ID   string
	Kind BlockType
	Raw  json.RawMessage
}

func (b RawBlock) BlockID() string { return b.ID }
func (b RawBlock) Type() BlockType { return b.Kind }
func (RawBlock) block() {}

func (b RawBlock) MarshalJSON() ([]byte, error) {
	if len(b.Raw) == 0 {
		return json.Marshal(struct {
			ID   string    `json:"id"`
			Type BlockType `json:"type"`
		}{b.ID, b.Kind})
	}
	return b.Raw, nil
}

// NewBlock returns a block of type t with default field values.
func NewBlock(t BlockType, id string) (Block, error) {
	switch t {
	case TypeImage:
		return ImageBlock{ID: id, Src: DefaultImageSrc, Alt: DefaultImageAlt}, nil
	case TypeButton:
		return ButtonBlock{ID: id, Src: DefaultImageSrc, Alt: DefaultButtonAlt, Href: DefaultButtonURL}, nil
	case TypeCustom:
		return CustomBlock{ID: id, HTML: DefaultCustomHTML}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBlockType, t)
	}
}

// BlockPatch carries a partial block update. Nil fields are left unchanged,
// and fields that do not belong to the target block kind are ignored.
type BlockPatch struct {
	Src  *string `json:"src,omitempty"`
	Alt  *string `json:"alt,omitempty"`
	Href *string `json:"href,omitempty"`
	HTML *string `json:"html,omitempty"`
}

// Apply returns a copy of b with the patch applied.
func (p BlockPatch) Apply(b Block) Block {
	switch v := b.(type) {
	case ImageBlock:
		setIf(&v.Src, p.Src)
		setIf(&v.Alt, p.Alt)
		return v
	case ButtonBlock:
		setIf(&v.Src, p.Src)
		setIf(&v.Alt, p.Alt)
		setIf(&v.Href, p.Href)
		return v
	case CustomBlock:
		setIf(&v.HTML, p.HTML)
		return v
	default:
		return b
	}
}

func setIf(dst *string, src *string) {
	if src != nil {
		*dst = *src
	}
}

// wireBlock is the superset of fields used by all known block kinds.
type wireBlock struct {
	ID   string    `json:"id"`
	Type BlockType `json:"type"`
	Src  string    `json:"src"`
	Alt  string    `json:"alt"`
	Href string    `json:"href"`
	HTML string    `json:"html"`
}

// DecodeBlock decodes a single JSON block. Unknown kinds become a RawBlock.
func DecodeBlock(data []byte) (Block, error) {
	var w wireBlock
	if err := json.Unmarshal(data, &w); err != nil {
		return nil, err
	}
	switch w.Type {
	case TypeImage:
		return ImageBlock{ID: w.ID, Src: w.Src, Alt: w.Alt}, nil
	case TypeButton:
		return ButtonBlock{ID: w.ID, Src: w.Src, Alt: w.Alt, Href: w.Href}, nil
	case TypeCustom:
		return CustomBlock{ID: w.ID, HTML: w.HTML}, nil
	default:
		raw := make(json.RawMessage, len(data))
		copy(raw, data)
		return RawBlock{ID: w.ID, Kind: w.Type, Raw: raw}, nil
	}
}
