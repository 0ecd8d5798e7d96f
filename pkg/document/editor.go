package document

import (
	"sync"

	"github.com/google/uuid"

	"github.com/dmitrymomot/mailcanvas/pkg/history"
)

// IDGenerator returns a new unique block id.
type IDGenerator func() string

// EditorOption configures an Editor.
type EditorOption func(*editorConfig)

type editorConfig struct {
	newID        IDGenerator
	historyLimit int
}

// WithIDGenerator replaces the default UUID block id generator.
func WithIDGenerator(gen IDGenerator) EditorOption {
	return func(c *editorConfig) {
		if gen != nil {
			c.newID = gen
		}
	}
}

// WithHistoryLimit caps the number of undo steps kept by the editor.
func WithHistoryLimit(n int) EditorOption {
	return func(c *editorConfig) {
		c.historyLimit = n
	}
}

// Editor applies editing operations to a document and records every change
// in an undo history.
type Editor struct {
	mu    sync.Mutex
	hist  *history.History[Document]
	newID IDGenerator
}

// NewEditor returns an editor whose history starts at doc.
func NewEditor(doc Document, opts ...EditorOption) *Editor {
	cfg := &editorConfig{newID: uuid.NewString}
	for _, opt := range opts {
		opt(cfg)
	}
	return &Editor{
		hist:  history.New(doc, history.WithLimit(cfg.historyLimit)),
		newID: cfg.newID,
	}
}

// apply computes the next document from the present one and records it.
func (e *Editor) apply(fn func(Document) Document) Document {
	e.mu.Lock()
	defer e.mu.Unlock()

	next := fn(e.hist.Present())
	e.hist.Set(next)
	return next
}

// Present returns the current document.
func (e *Editor) Present() Document { return e.hist.Present() }

// History returns a copy of the undo history.
func (e *Editor) History() history.Snapshot[Document] { return e.hist.Snapshot() }

func (e *Editor) CanUndo() bool { return e.hist.CanUndo() }
func (e *Editor) CanRedo() bool { return e.hist.CanRedo() }

// Undo steps back one edit. It reports whether anything changed.
func (e *Editor) Undo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.hist.Undo()
}

// Redo re-applies the last undone edit. It reports whether anything changed.
func (e *Editor) Redo() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.hist.Redo()
}

// AddBlock appends a new block of type t with default values.
// No history entry is recorded when t is unknown.
func (e *Editor) AddBlock(t BlockType) (Block, error) {
	b, err := NewBlock(t, e.newID())
	if err != nil {
		return nil, err
	}
	e.apply(func(d Document) Document { return d.AppendBlock(b) })
	return b, nil
}

// UpdateBlock patches the block with the given id.
func (e *Editor) UpdateBlock(id string, patch BlockPatch) Document {
	return e.apply(func(d Document) Document { return d.UpdateBlock(id, patch) })
}

// ReplaceBlock replaces the block sharing b's id.
func (e *Editor) ReplaceBlock(b Block) Document {
	return e.apply(func(d Document) Document { return d.ReplaceBlock(b) })
}

// DeleteBlock removes the block with the given id.
func (e *Editor) DeleteBlock(id string) Document {
	return e.apply(func(d Document) Document { return d.DeleteBlock(id) })
}

// MoveBlock moves the block at index from to index to.
func (e *Editor) MoveBlock(from, to int) Document {
	return e.apply(func(d Document) Document { return d.MoveBlock(from, to) })
}

// SetBlocks replaces the whole block list, as produced by a drag reorder.
func (e *Editor) SetBlocks(blocks []Block) Document {
	return e.apply(func(d Document) Document { return d.WithBlocks(blocks) })
}

func (e *Editor) SetTitle(title string) Document {
	return e.apply(func(d Document) Document { return d.WithTitle(title) })
}

func (e *Editor) SetPreheader(text string) Document {
	return e.apply(func(d Document) Document { return d.WithPreheader(text) })
}

func (e *Editor) SetMirrorPageURL(url string) Document {
	return e.apply(func(d Document) Document { return d.WithMirrorPageURL(url) })
}

// SetCanvasWidth sets the canvas width, clamped to MinCanvasWidth.
func (e *Editor) SetCanvasWidth(width int) Document {
	return e.apply(func(d Document) Document { return d.WithCanvasWidth(width) })
}

func (e *Editor) SetTemplateID(id *string) Document {
	return e.apply(func(d Document) Document { return d.WithTemplateID(id) })
}

// Settings is a multi-field settings change applied as a single edit.
type Settings struct {
	TitleText     *string
	PreheaderText *string
	MirrorPageURL *string
	CanvasWidth   *int
	TemplateID    *string
	ClearTemplate bool
}

// ApplySettings applies all non-nil fields of s in one history entry.
func (e *Editor) ApplySettings(s Settings) Document {
	return e.apply(func(d Document) Document {
		if s.TitleText != nil {
			d = d.WithTitle(*s.TitleText)
		}
		if s.PreheaderText != nil {
			d = d.WithPreheader(*s.PreheaderText)
		}
		if s.MirrorPageURL != nil {
			d = d.WithMirrorPageURL(*s.MirrorPageURL)
		}
		if s.CanvasWidth != nil {
			d = d.WithCanvasWidth(*s.CanvasWidth)
		}
		switch {
		case s.ClearTemplate:
			d = d.WithTemplateID(nil)
		case s.TemplateID != nil:
			d = d.WithTemplateID(s.TemplateID)
		}
		return d
	})
}

// Replace records doc as the new present document, as done by an import.
func (e *Editor) Replace(doc Document) Document {
	return e.apply(func(Document) Document { return doc.WithBlocks(doc.Blocks) })
}
