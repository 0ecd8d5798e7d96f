package catalog

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrymomot/mailcanvas/pkg/cache"
	"github.com/dmitrymomot/mailcanvas/pkg/file"
	"github.com/dmitrymomot/mailcanvas/pkg/logger"
)

const (
	defaultCacheSize = 32
	defaultCacheTTL  = 10 * time.Minute
	maxTemplateSize  = 4 << 20
)

// Resolver maps template ids to base template HTML.
type Resolver struct {
	catalog *Catalog
	users   UserTemplates
	storage file.Storage
	client  *http.Client
	cache   *cache.Cache[string, string]
	log     *slog.Logger
}

// ResolverOption configures a Resolver.
type ResolverOption func(*resolverOptions)

type resolverOptions struct {
	client    *http.Client
	cacheSize int
	cacheTTL  time.Duration
	log       *slog.Logger
}

// WithHTTPClient sets the client used for http(s) template files.
func WithHTTPClient(c *http.Client) ResolverOption {
	return func(o *resolverOptions) { o.client = c }
}

// WithCache sizes the template cache. A zero ttl keeps entries until evicted.
func WithCache(size int, ttl time.Duration) ResolverOption {
	return func(o *resolverOptions) {
		o.cacheSize = size
		o.cacheTTL = ttl
	}
}

// WithLogger sets the resolver logger.
func WithLogger(l *slog.Logger) ResolverOption {
	return func(o *resolverOptions) { o.log = l }
}

// NewResolver returns a resolver over c. users and storage may be nil; a nil
// storage serves files from the embedded built-ins only.
func NewResolver(c *Catalog, users UserTemplates, storage file.Storage, opts ...ResolverOption) *Resolver {
	o := resolverOptions{
		client:    &http.Client{Timeout: 10 * time.Second},
		cacheSize: defaultCacheSize,
		cacheTTL:  defaultCacheTTL,
		log:       slog.Default(),
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Resolver{
		catalog: c,
		users:   users,
		storage: storage,
		client:  o.client,
		cache:   cache.New(o.cacheSize, cache.WithTTL[string, string](o.cacheTTL)),
		log:     o.log.With(logger.Component("catalog")),
	}
}

// Catalog returns the built-in catalog.
func (r *Resolver) Catalog() *Catalog { return r.catalog }

// Listing is Listing over the resolver's catalog and user templates.
func (r *Resolver) Listing(ctx context.Context) []Entry {
	return Listing(ctx, r.catalog, r.users)
}

// Resolve returns the HTML for templateID. A nil or unknown id resolves to
// the empty string.
func (r *Resolver) Resolve(ctx context.Context, templateID *string) (string, error) {
	if templateID == nil {
		return "", nil
	}
	id := *templateID

	if IsUserID(id) {
		if r.users == nil {
			return "", nil
		}
		t, ok := r.users.Get(ctx, strings.TrimPrefix(id, UserPrefix))
		if !ok {
			return "", nil
		}
		return t.HTML, nil
	}

	entry, ok := r.catalog.Lookup(id)
	if !ok {
		return "", nil
	}
	if html, ok := r.cache.Get(entry.File); ok {
		return html, nil
	}

	html, err := r.fetch(ctx, entry.File)
	if err != nil {
		r.log.WarnContext(ctx, "template fetch failed",
			logger.Event("resolve"),
			logger.TemplateID(templateID),
			logger.Error(err),
		)
		return "", err
	}
	r.cache.Set(entry.File, html)
	return html, nil
}

// Invalidate drops the cached copy of a template file. An empty name drops
// every cached file.
func (r *Resolver) Invalidate(name string) {
	if name == "" {
		r.cache.Purge()
		return
	}
	name = strings.TrimPrefix(name, "/")
	r.cache.DeleteFunc(func(k string) bool {
		return strings.TrimPrefix(k, "/") == name
	})
}

func (r *Resolver) fetch(ctx context.Context, name string) (string, error) {
	if isRemote(name) {
		return r.fetchRemote(ctx, name)
	}
	if r.storage != nil {
		data, err := r.storage.Get(ctx, name)
		if err == nil {
			return string(data), nil
		}
		if !errors.Is(err, file.ErrFileNotFound) {
			return "", errors.Join(ErrFetchTemplate, err)
		}
	}
	if data, ok := Builtin(name); ok {
		return string(data), nil
	}
	return "", fmt.Errorf("%w: %s: %w", ErrFetchTemplate, name, file.ErrFileNotFound)
}

func (r *Resolver) fetchRemote(ctx context.Context, url string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", errors.Join(ErrFetchTemplate, err)
	}
	resp, err := r.client.Do(req)
	if err != nil {
		return "", errors.Join(ErrFetchTemplate, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: %s: status %d", ErrFetchTemplate, url, resp.StatusCode)
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxTemplateSize))
	if err != nil {
		return "", errors.Join(ErrFetchTemplate, err)
	}
	return string(data), nil
}

func isRemote(name string) bool {
	return strings.HasPrefix(name, "http://") || strings.HasPrefix(name, "https://")
}
