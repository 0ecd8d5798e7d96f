package email

import (
	"context"
	"encoding/json"
	"fmt"
	"path"
	"time"

	"github.com/dmitrymomot/mailcanvas/pkg/file"
	"github.com/dmitrymomot/mailcanvas/pkg/slug"
)

// DevSender stores messages instead of sending them.
type DevSender struct {
	storage file.Storage
	dir     string
	now     func() time.Time
}

// NewDevSender writes messages below dir in storage.
func NewDevSender(storage file.Storage, dir string) *DevSender {
	return &DevSender{storage: storage, dir: dir, now: time.Now}
}

type devMetadata struct {
	Timestamp string `json:"timestamp"`
	To        string `json:"to"`
	Subject   string `json:"subject"`
	Tag       string `json:"tag,omitempty"`
	HTMLFile  string `json:"html_file"`
}

// SendEmail writes <timestamp>_<subject>.html and a matching .json file.
func (d *DevSender) SendEmail(ctx context.Context, msg Message) error {
	if err := msg.Validate(); err != nil {
		return err
	}

	now := d.now()
	ident := msg.Tag
	if ident == "" {
		ident = msg.Subject
	}
	base := path.Join(d.dir, now.Format("2006_01_02_150405")+"_"+slug.Make(ident, slug.Separator("_"), slug.MaxLength(100), slug.Fallback("email")))

	if err := d.storage.Put(ctx, base+".html", []byte(msg.HTML), "text/html; charset=utf-8"); err != nil {
		return fmt.Errorf("%w: %w", ErrFailedToSendEmail, err)
	}

	meta, err := json.MarshalIndent(devMetadata{
		Timestamp: now.Format(time.RFC3339),
		To:        msg.To,
		Subject:   msg.Subject,
		Tag:       msg.Tag,
		HTMLFile:  path.Base(base) + ".html",
	}, "", "  ")
	if err != nil {
		return fmt.Errorf("%w: %w", ErrFailedToSendEmail, err)
	}
	if err := d.storage.Put(ctx, base+".json", meta, "application/json"); err != nil {
		return fmt.Errorf("%w: %w", ErrFailedToSendEmail, err)
	}
	return nil
}
