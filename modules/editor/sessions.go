package editor

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dmitrymomot/mailcanvas/handler"
	"github.com/dmitrymomot/mailcanvas/pkg/document"
	"github.com/dmitrymomot/mailcanvas/pkg/validator"
	"github.com/dmitrymomot/mailcanvas/svc/composer"
)

type sessionRequest struct {
	SessionID string `path:"id"`
}

type createSessionRequest struct {
	Document json.RawMessage `json:"document"`
}

func (m *Module) createSession(ctx handler.Context, req createSessionRequest) handler.Response {
	var doc *document.Document
	if len(req.Document) > 0 {
		d, err := document.Decode(req.Document)
		if err != nil {
			return fail(errors.Join(composer.ErrInvalidDocument, err))
		}
		doc = &d
	}
	st := m.svc.Create(ctx, doc)
	return handler.JSON(st, handler.WithJSONStatus(http.StatusCreated))
}

func (m *Module) getSession(ctx handler.Context, req sessionRequest) handler.Response {
	return state(m.svc.Get(ctx, req.SessionID))
}

func (m *Module) closeSession(ctx handler.Context, req sessionRequest) handler.Response {
	if err := m.svc.Close(ctx, req.SessionID); err != nil {
		return fail(err)
	}
	return handler.Empty()
}

type addBlockRequest struct {
	SessionID string             `path:"id" json:"-"`
	Type      document.BlockType `json:"type"`
}

type addBlockResponse struct {
	Block document.Block `json:"block"`
	State composer.State `json:"state"`
}

func (m *Module) addBlock(ctx handler.Context, req addBlockRequest) handler.Response {
	if err := handler.Validate(
		validator.OneOf("type", req.Type, []document.BlockType{document.TypeImage, document.TypeButton, document.TypeCustom}),
	); err != nil {
		return handler.Error(err)
	}
	b, st, err := m.svc.AddBlock(ctx, req.SessionID, req.Type)
	if err != nil {
		return fail(err)
	}
	return handler.JSON(addBlockResponse{Block: b, State: st}, handler.WithJSONStatus(http.StatusCreated))
}

type updateBlockRequest struct {
	SessionID string `path:"id" json:"-"`
	BlockID   string `path:"blockID" json:"-"`
	document.BlockPatch
}

func (m *Module) updateBlock(ctx handler.Context, req updateBlockRequest) handler.Response {
	return state(m.svc.UpdateBlock(ctx, req.SessionID, req.BlockID, req.BlockPatch))
}

type blockRequest struct {
	SessionID string `path:"id"`
	BlockID   string `path:"blockID"`
}

func (m *Module) deleteBlock(ctx handler.Context, req blockRequest) handler.Response {
	return state(m.svc.DeleteBlock(ctx, req.SessionID, req.BlockID))
}

type moveBlockRequest struct {
	SessionID string `path:"id" json:"-"`
	From      int    `json:"from"`
	To        int    `json:"to"`
}

func (m *Module) moveBlock(ctx handler.Context, req moveBlockRequest) handler.Response {
	return state(m.svc.MoveBlock(ctx, req.SessionID, req.From, req.To))
}

type setBlocksRequest struct {
	SessionID string            `path:"id" json:"-"`
	Blocks    []json.RawMessage `json:"blocks"`
}

func (m *Module) setBlocks(ctx handler.Context, req setBlocksRequest) handler.Response {
	verr := handler.ValidationError{}
	blocks := make([]document.Block, 0, len(req.Blocks))
	seen := make(map[string]struct{}, len(req.Blocks))
	for _, raw := range req.Blocks {
		b, err := document.DecodeBlock(raw)
		if err != nil {
			verr.Add("blocks", "each block must be a JSON object")
			break
		}
		if b.BlockID() == "" {
			verr.Add("blocks", "every block needs an id")
			break
		}
		if _, dup := seen[b.BlockID()]; dup {
			verr.Add("blocks", "block ids must be unique")
			break
		}
		seen[b.BlockID()] = struct{}{}
		blocks = append(blocks, b)
	}
	if len(verr) > 0 {
		return handler.Error(verr)
	}
	return state(m.svc.SetBlocks(ctx, req.SessionID, blocks))
}

type selectRequest struct {
	SessionID string  `path:"id" json:"-"`
	BlockID   *string `json:"blockId"`
}

func (m *Module) selectBlock(ctx handler.Context, req selectRequest) handler.Response {
	return state(m.svc.Select(ctx, req.SessionID, req.BlockID))
}

// settingsRequest carries a partial settings change. A null templateId
// clears the template, an absent one keeps it.
type settingsRequest struct {
	SessionID     string          `path:"id" json:"-"`
	TitleText     *string         `json:"titleText"`
	PreheaderText *string         `json:"preheaderText"`
	MirrorPageURL *string         `json:"mirrorPageUrl"`
	CanvasWidth   *int            `json:"canvasWidth"`
	TemplateID    json.RawMessage `json:"templateId"`
}

func (m *Module) applySettings(ctx handler.Context, req settingsRequest) handler.Response {
	settings := document.Settings{
		TitleText:     req.TitleText,
		PreheaderText: req.PreheaderText,
		MirrorPageURL: req.MirrorPageURL,
		CanvasWidth:   req.CanvasWidth,
	}
	if len(req.TemplateID) > 0 {
		var id *string
		if err := json.Unmarshal(req.TemplateID, &id); err != nil {
			return handler.Error(handler.ValidationError{"templateId": {"must be a string or null"}})
		}
		settings.TemplateID = id
		settings.ClearTemplate = id == nil
	}

	var rules []validator.Rule
	if req.MirrorPageURL != nil && *req.MirrorPageURL != "" {
		rules = append(rules, validator.ValidURL("mirrorPageUrl", *req.MirrorPageURL))
	}
	if req.TitleText != nil {
		rules = append(rules, validator.MaxLenString("titleText", *req.TitleText, 500))
	}
	if err := handler.Validate(rules...); err != nil {
		return handler.Error(err)
	}
	return state(m.svc.ApplySettings(ctx, req.SessionID, settings))
}

func (m *Module) undo(ctx handler.Context, req sessionRequest) handler.Response {
	return state(m.svc.Undo(ctx, req.SessionID))
}

func (m *Module) redo(ctx handler.Context, req sessionRequest) handler.Response {
	return state(m.svc.Redo(ctx, req.SessionID))
}

func state(st composer.State, err error) handler.Response {
	if err != nil {
		return fail(err)
	}
	return handler.JSON(st)
}
