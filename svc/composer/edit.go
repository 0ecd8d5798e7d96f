package composer

import (
	"context"

	"github.com/dmitrymomot/mailcanvas/pkg/document"
)

// AddBlock appends a new block of type t and selects it.
func (s *Service) AddBlock(ctx context.Context, id string, t document.BlockType) (document.Block, State, error) {
	var added document.Block
	st, err := s.edit(ctx, id, OpAddBlock, func(sess *session) (string, error) {
		b, err := sess.editor.AddBlock(t)
		if err != nil {
			return "", err
		}
		added = b
		sess.selected = b.BlockID()
		return b.BlockID(), nil
	})
	if err != nil {
		return nil, State{}, err
	}
	return added, st, nil
}

// UpdateBlock patches one block. An unknown block id leaves the blocks as
// they are.
func (s *Service) UpdateBlock(ctx context.Context, id, blockID string, patch document.BlockPatch) (State, error) {
	return s.edit(ctx, id, OpUpdateBlock, func(sess *session) (string, error) {
		sess.editor.UpdateBlock(blockID, patch)
		return blockID, nil
	})
}

// DeleteBlock removes one block and clears the selection if it pointed at it.
func (s *Service) DeleteBlock(ctx context.Context, id, blockID string) (State, error) {
	return s.edit(ctx, id, OpDeleteBlock, func(sess *session) (string, error) {
		sess.editor.DeleteBlock(blockID)
		return blockID, nil
	})
}

func (s *Service) MoveBlock(ctx context.Context, id string, from, to int) (State, error) {
	return s.edit(ctx, id, OpMoveBlock, func(sess *session) (string, error) {
		sess.editor.MoveBlock(from, to)
		return "", nil
	})
}

// SetBlocks replaces the ordered block list.
func (s *Service) SetBlocks(ctx context.Context, id string, blocks []document.Block) (State, error) {
	return s.edit(ctx, id, OpSetBlocks, func(sess *session) (string, error) {
		sess.editor.SetBlocks(blocks)
		return "", nil
	})
}

// Select marks a block as selected. A nil id clears the selection.
// Selection is not recorded in the undo history.
func (s *Service) Select(ctx context.Context, id string, blockID *string) (State, error) {
	return s.edit(ctx, id, OpSelect, func(sess *session) (string, error) {
		if blockID == nil {
			sess.selected = ""
			return "", nil
		}
		if _, ok := sess.editor.Present().Block(*blockID); !ok {
			return "", ErrBlockNotFound
		}
		sess.selected = *blockID
		return *blockID, nil
	})
}

// ApplySettings changes document level fields in one undo step.
func (s *Service) ApplySettings(ctx context.Context, id string, settings document.Settings) (State, error) {
	return s.edit(ctx, id, OpSettings, func(sess *session) (string, error) {
		sess.editor.ApplySettings(settings)
		return "", nil
	})
}

// Undo steps back one edit. Nothing is published when there is nothing to undo.
func (s *Service) Undo(ctx context.Context, id string) (State, error) {
	return s.step(ctx, id, OpUndo, (*document.Editor).Undo)
}

// Redo re-applies the last undone edit.
func (s *Service) Redo(ctx context.Context, id string) (State, error) {
	return s.step(ctx, id, OpRedo, (*document.Editor).Redo)
}

func (s *Service) step(ctx context.Context, id string, op Op, fn func(*document.Editor) bool) (State, error) {
	return s.edit(ctx, id, op, func(sess *session) (string, error) {
		if !fn(sess.editor) {
			return "", errUnchanged
		}
		return "", nil
	})
}
