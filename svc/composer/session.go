package composer

import (
	"sync"
	"time"

	"github.com/dmitrymomot/mailcanvas/pkg/document"
)

// State is a snapshot of one session.
type State struct {
	ID              string            `json:"id"`
	Document        document.Document `json:"document"`
	CanUndo         bool              `json:"canUndo"`
	CanRedo         bool              `json:"canRedo"`
	SelectedBlockID *string           `json:"selectedBlockId"`
}

type session struct {
	id string

	mu       sync.Mutex
	editor   *document.Editor
	selected string
	touched  time.Time
}

// state must be called with s.mu held.
func (s *session) state() State {
	st := State{
		ID:       s.id,
		Document: s.editor.Present(),
		CanUndo:  s.editor.CanUndo(),
		CanRedo:  s.editor.CanRedo(),
	}
	if s.selected != "" {
		sel := s.selected
		st.SelectedBlockID = &sel
	}
	return st
}

// dropStaleSelection clears the selection when the block is gone.
// It must be called with s.mu held.
func (s *session) dropStaleSelection() {
	if s.selected == "" {
		return
	}
	if _, ok := s.editor.Present().Block(s.selected); !ok {
		s.selected = ""
	}
}

func (s *session) change(op Op, blockID string) Change {
	return Change{
		SessionID: s.id,
		Op:        op,
		BlockID:   blockID,
		CanUndo:   s.editor.CanUndo(),
		CanRedo:   s.editor.CanRedo(),
	}
}
