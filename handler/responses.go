package handler

import (
	"fmt"
	"mime"
	"net/http"
)

type emptyResponse struct {
	status int
}

func (e emptyResponse) Render(w http.ResponseWriter, _ *http.Request) error {
	w.WriteHeader(e.status)
	return nil
}

// Empty responds 204 No Content.
func Empty() Response { return emptyResponse{status: http.StatusNoContent} }

// EmptyWithStatus responds with status and no body.
func EmptyWithStatus(status int) Response { return emptyResponse{status: status} }

type blobResponse struct {
	status      int
	contentType string
	filename    string
	body        []byte
}

func (b blobResponse) Render(w http.ResponseWriter, _ *http.Request) error {
	w.Header().Set("Content-Type", b.contentType)
	if b.filename != "" {
		w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": b.filename}))
	}
	w.Header().Set("Content-Length", fmt.Sprint(len(b.body)))
	w.WriteHeader(b.status)
	_, err := w.Write(b.body)
	return err
}

// HTML writes a complete HTML document.
func HTML(html string) Response {
	return blobResponse{
		status:      http.StatusOK,
		contentType: "text/html; charset=utf-8",
		body:        []byte(html),
	}
}

// Attachment sends data as a download named filename.
func Attachment(filename, contentType string, data []byte) Response {
	return blobResponse{
		status:      http.StatusOK,
		contentType: contentType,
		filename:    filename,
		body:        data,
	}
}

type errorResponse struct {
	err error
}

func (e errorResponse) Render(http.ResponseWriter, *http.Request) error { return e.err }

// Error hands err to the error handler configured for the route.
func Error(err error) Response { return errorResponse{err: err} }
