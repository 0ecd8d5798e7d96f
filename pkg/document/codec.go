package document

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// FileName is the suggested name for exported documents.
const FileName = "document.json"

// Encode returns the indented JSON form of d.
func Encode(d Document) ([]byte, error) {
	return json.MarshalIndent(d, "", "  ")
}

// Decode parses a document file. The payload must be a JSON object with a
// "blocks" array. Other fields fall back to the defaults of New when absent,
// and the canvas width is raised to MinCanvasWidth.
func Decode(data []byte) (Document, error) {
	var probe map[string]json.RawMessage
	if err := json.Unmarshal(data, &probe); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	raw, ok := probe["blocks"]
	if !ok {
		return Document{}, fmt.Errorf("%w: missing blocks", ErrInvalidDocument)
	}
	if trimmed := bytes.TrimSpace(raw); len(trimmed) == 0 || trimmed[0] != '[' && !bytes.Equal(trimmed, []byte("null")) {
		return Document{}, fmt.Errorf("%w: blocks must be an array", ErrInvalidDocument)
	}

	d := New()
	if err := json.Unmarshal(data, &d); err != nil {
		return Document{}, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}

	seen := make(map[string]struct{}, len(d.Blocks))
	for _, b := range d.Blocks {
		if _, dup := seen[b.BlockID()]; dup {
			return Document{}, fmt.Errorf("%w: duplicate block id %q", ErrInvalidDocument, b.BlockID())
		}
		seen[b.BlockID()] = struct{}{}
	}

	d.CanvasWidth = max(d.CanvasWidth, MinCanvasWidth)
	return d, nil
}
