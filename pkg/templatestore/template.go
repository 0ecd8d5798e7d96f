package templatestore

import "github.com/google/uuid"

// Defaults for a template created without a name or body.
const (
	DefaultName = "新規テンプレート"
	DefaultHTML = "<!-- HTML -->"
)

// UserTemplate is a user-authored HTML template.
type UserTemplate struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	HTML string `json:"html"`
}

// NewTemplate returns a template with a fresh id. Empty name or html fall
// back to the defaults.
func NewTemplate(name, html string) UserTemplate {
	if name == "" {
		name = DefaultName
	}
	if html == "" {
		html = DefaultHTML
	}
	return UserTemplate{
		ID:   uuid.NewString(),
		Name: name,
		HTML: html,
	}
}
