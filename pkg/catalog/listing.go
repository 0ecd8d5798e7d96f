package catalog

import (
	"context"
	"strings"

	"github.com/dmitrymomot/mailcanvas/pkg/templatestore"
)

const (
	// UserPrefix marks listing ids that refer to user templates.
	UserPrefix = "user:"
	// UserNamePrefix is prepended to user template names in the listing.
	UserNamePrefix = "ユーザー: "
)

// UserTemplates is the read side of the template store.
type UserTemplates interface {
	List(ctx context.Context) []templatestore.UserTemplate
	Get(ctx context.Context, id string) (templatestore.UserTemplate, bool)
}

// UserID returns the listing id of a user template.
func UserID(templateID string) string { return UserPrefix + templateID }

// IsUserID reports whether id refers to a user template.
func IsUserID(id string) bool { return strings.HasPrefix(id, UserPrefix) }

// Listing returns the built-in entries followed by the user templates.
// users may be nil.
func Listing(ctx context.Context, c *Catalog, users UserTemplates) []Entry {
	out := c.Entries()
	if users == nil {
		return out
	}
	for _, t := range users.List(ctx) {
		out = append(out, Entry{
			ID:   UserID(t.ID),
			Name: UserNamePrefix + t.Name,
		})
	}
	return out
}
