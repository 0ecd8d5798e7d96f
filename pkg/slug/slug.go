// Package slug turns free text such as e-mail subjects into file name safe
// tokens.
package slug

import (
	"strings"
	"unicode"
)

// Option configures Make.
type Option func(*config)

type config struct {
	maxLength int
	separator string
	fallback  string
}

// MaxLength caps the slug length in runes. Zero means no limit.
func MaxLength(n int) Option {
	return func(c *config) { c.maxLength = n }
}

// Separator replaces runs of characters that are not letters or digits.
// The default is "-".
func Separator(s string) Option {
	return func(c *config) { c.separator = s }
}

// Fallback is returned when nothing of the input survives.
func Fallback(s string) Option {
	return func(c *config) { c.fallback = s }
}

// Make lowercases s and keeps letters and digits of any script. Every other
// run of characters becomes a single separator. Leading and trailing
// separators are dropped.
func Make(s string, opts ...Option) string {
	cfg := &config{separator: "-"}
	for _, opt := range opts {
		opt(cfg)
	}

	var b strings.Builder
	b.Grow(len(s))
	pendingSep := false
	runes := 0
	for _, r := range strings.ToLower(s) {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			pendingSep = runes > 0
			continue
		}
		if pendingSep {
			if cfg.maxLength > 0 && runes+len([]rune(cfg.separator))+1 > cfg.maxLength {
				break
			}
			b.WriteString(cfg.separator)
			runes += len([]rune(cfg.separator))
			pendingSep = false
		}
		if cfg.maxLength > 0 && runes >= cfg.maxLength {
			break
		}
		b.WriteRune(r)
		runes++
	}

	if b.Len() == 0 {
		return cfg.fallback
	}
	return b.String()
}
