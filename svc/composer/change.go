package composer

// Op names the edit that produced a Change.
type Op string

const (
	OpCreate      Op = "session.create"
	OpClose       Op = "session.close"
	OpAddBlock    Op = "block.add"
	OpUpdateBlock Op = "block.update"
	OpDeleteBlock Op = "block.delete"
	OpMoveBlock   Op = "block.move"
	OpSetBlocks   Op = "block.reorder"
	OpSelect      Op = "block.select"
	OpSettings    Op = "settings"
	OpUndo        Op = "history.undo"
	OpRedo        Op = "history.redo"
	OpImport      Op = "document.import"
	OpLoad        Op = "document.load"
	OpTemplate    Op = "template.change"
)

// Change is published on the session topic after every edit.
type Change struct {
	SessionID string `json:"sessionId"`
	Op        Op     `json:"op"`
	BlockID   string `json:"blockId,omitempty"`
	CanUndo   bool   `json:"canUndo"`
	CanRedo   bool   `json:"canRedo"`
}

// Closed reports whether the change ends the session.
func (c Change) Closed() bool { return c.Op == OpClose }
