package composer

import (
	"context"
	"errors"
	"log/slog"
	"path"
	"slices"
	"strings"

	"github.com/dmitrymomot/mailcanvas/pkg/document"
	"github.com/dmitrymomot/mailcanvas/pkg/file"
	"github.com/dmitrymomot/mailcanvas/pkg/logger"
)

const documentExt = ".json"

// Export returns the present document in the file format.
func (s *Service) Export(ctx context.Context, id string) ([]byte, error) {
	st, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	return document.Encode(st.Document)
}

// Import replaces the session document with data as one undo step.
// On a decode failure the session is left untouched.
func (s *Service) Import(ctx context.Context, id string, data []byte) (State, error) {
	doc, err := document.Decode(data)
	if err != nil {
		s.log.WarnContext(ctx, "document import rejected",
			logger.Event(string(OpImport)),
			logger.SessionID(id),
			logger.Error(err),
		)
		return State{}, errors.Join(ErrInvalidDocument, err)
	}
	return s.edit(ctx, id, OpImport, func(sess *session) (string, error) {
		sess.editor.Replace(doc)
		return "", nil
	})
}

// SaveDocument stores the session document under name.
func (s *Service) SaveDocument(ctx context.Context, id, name string) (string, error) {
	key, err := s.documentKey(name)
	if err != nil {
		return "", err
	}
	data, err := s.Export(ctx, id)
	if err != nil {
		return "", err
	}
	if s.storage == nil {
		return "", ErrStorageFailed
	}
	if err := s.storage.Put(ctx, key, data, "application/json"); err != nil {
		return "", errors.Join(ErrStorageFailed, err)
	}
	s.log.InfoContext(ctx, "document saved",
		logger.Event("document.save"),
		logger.SessionID(id),
		slog.String("path", key),
	)
	return key, nil
}

// LoadDocument replaces the session document with the one stored under name.
func (s *Service) LoadDocument(ctx context.Context, id, name string) (State, error) {
	key, err := s.documentKey(name)
	if err != nil {
		return State{}, err
	}
	if _, err := s.session(id); err != nil {
		return State{}, err
	}
	if s.storage == nil {
		return State{}, ErrStorageFailed
	}

	data, err := s.storage.Get(ctx, key)
	if errors.Is(err, file.ErrFileNotFound) {
		return State{}, ErrDocumentNotFound
	}
	if err != nil {
		return State{}, errors.Join(ErrStorageFailed, err)
	}
	doc, err := document.Decode(data)
	if err != nil {
		return State{}, errors.Join(ErrInvalidDocument, err)
	}
	return s.edit(ctx, id, OpLoad, func(sess *session) (string, error) {
		sess.editor.Replace(doc)
		return "", nil
	})
}

// Documents returns the names of the stored documents, sorted.
func (s *Service) Documents(ctx context.Context) ([]string, error) {
	if s.storage == nil {
		return []string{}, nil
	}
	objects, err := s.storage.List(ctx, s.cfg.DocumentsDir)
	if err != nil {
		return nil, errors.Join(ErrStorageFailed, err)
	}
	names := make([]string, 0, len(objects))
	for _, o := range objects {
		if o.IsDir || !strings.HasSuffix(o.Name, documentExt) {
			continue
		}
		names = append(names, strings.TrimSuffix(o.Name, documentExt))
	}
	slices.Sort(names)
	return names, nil
}

// documentKey maps a document name to its storage path.
// Names must be a single safe path segment.
func (s *Service) documentKey(name string) (string, error) {
	name = strings.TrimSuffix(strings.TrimSpace(name), documentExt)
	if name == "" || file.SanitizeFilename(name) != name || strings.HasPrefix(name, ".") {
		return "", ErrInvalidDocumentName
	}
	return path.Join(s.cfg.DocumentsDir, name+documentExt), nil
}
