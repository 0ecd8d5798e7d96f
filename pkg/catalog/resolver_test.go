package catalog_test

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mailcanvas/pkg/catalog"
	"github.com/dmitrymomot/mailcanvas/pkg/file"
	"github.com/dmitrymomot/mailcanvas/pkg/templatestore"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ptr[T any](v T) *T { return &v }

func newUsers(t *testing.T) *templatestore.Store {
	t.Helper()
	return templatestore.New(templatestore.NewMemoryBackend(), templatestore.WithLogger(quietLogger()))
}

func TestListing(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	users := newUsers(t)
	users.Add(ctx, templatestore.UserTemplate{ID: "t1", Name: "Sale", HTML: "<b/>"})

	got := catalog.Listing(ctx, catalog.Default(), users)
	assert.Equal(t, []catalog.Entry{
		{ID: "ad", Name: "AD", File: "templates/ad.html"},
		{ID: "user:t1", Name: "ユーザー: Sale"},
	}, got)

	assert.Len(t, catalog.Listing(ctx, catalog.Default(), nil), 1)
}

func TestResolver_NilAndUnknown(t *testing.T) {
	t.Parallel()

	r := catalog.NewResolver(catalog.Default(), newUsers(t), nil, catalog.WithLogger(quietLogger()))
	ctx := context.Background()

	for _, id := range []*string{nil, ptr("missing"), ptr("user:missing")} {
		html, err := r.Resolve(ctx, id)
		require.NoError(t, err)
		assert.Empty(t, html)
	}
}

func TestResolver_UserTemplate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	users := newUsers(t)
	users.Add(ctx, templatestore.UserTemplate{ID: "t1", Name: "A", HTML: "<p>TITLE_PLACEHOLDER</p>"})
	r := catalog.NewResolver(catalog.Default(), users, nil, catalog.WithLogger(quietLogger()))

	html, err := r.Resolve(ctx, ptr("user:t1"))
	require.NoError(t, err)
	assert.Equal(t, "<p>TITLE_PLACEHOLDER</p>", html)

	users.Update(ctx, templatestore.UserTemplate{ID: "t1", Name: "A", HTML: "<p>v2</p>"})
	html, err = r.Resolve(ctx, ptr("user:t1"))
	require.NoError(t, err)
	assert.Equal(t, "<p>v2</p>", html)
}

func TestResolver_BuiltinFallback(t *testing.T) {
	t.Parallel()

	r := catalog.NewResolver(catalog.Default(), nil, nil, catalog.WithLogger(quietLogger()))
	html, err := r.Resolve(context.Background(), ptr("ad"))
	require.NoError(t, err)
	assert.Contains(t, html, "TITLE_PLACEHOLDER")
}

func TestResolver_StorageAndInvalidate(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	storage, err := file.NewLocalStorage(t.TempDir(), "")
	require.NoError(t, err)
	require.NoError(t, storage.Put(ctx, "templates/ad.html", []byte("v1"), "text/html"))

	r := catalog.NewResolver(catalog.Default(), nil, storage, catalog.WithLogger(quietLogger()))
	html, err := r.Resolve(ctx, ptr("ad"))
	require.NoError(t, err)
	assert.Equal(t, "v1", html)

	require.NoError(t, storage.Put(ctx, "templates/ad.html", []byte("v2"), "text/html"))
	html, _ = r.Resolve(ctx, ptr("ad"))
	assert.Equal(t, "v1", html, "served from cache")

	r.Invalidate("templates/ad.html")
	html, _ = r.Resolve(ctx, ptr("ad"))
	assert.Equal(t, "v2", html)
}

func TestResolver_Remote(t *testing.T) {
	t.Parallel()

	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		if r.URL.Path == "/broken.html" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = io.WriteString(w, "<html>remote</html>")
	}))
	t.Cleanup(srv.Close)

	c, err := catalog.New(
		catalog.Entry{ID: "remote", Name: "Remote", File: srv.URL + "/ad.html"},
		catalog.Entry{ID: "broken", Name: "Broken", File: srv.URL + "/broken.html"},
	)
	require.NoError(t, err)
	r := catalog.NewResolver(c, nil, nil,
		catalog.WithHTTPClient(srv.Client()),
		catalog.WithLogger(quietLogger()),
	)

	ctx := context.Background()
	for range 3 {
		html, err := r.Resolve(ctx, ptr("remote"))
		require.NoError(t, err)
		assert.Equal(t, "<html>remote</html>", html)
	}
	assert.EqualValues(t, 1, hits.Load())

	_, err = r.Resolve(ctx, ptr("broken"))
	assert.ErrorIs(t, err, catalog.ErrFetchTemplate)
}

func TestResolver_Watch(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	dir := t.TempDir()
	storage, err := file.NewLocalStorage(dir, "")
	require.NoError(t, err)
	require.NoError(t, storage.Put(ctx, "templates/ad.html", []byte("v1"), ""))

	r := catalog.NewResolver(catalog.Default(), nil, storage, catalog.WithLogger(quietLogger()))
	html, err := r.Resolve(ctx, ptr("ad"))
	require.NoError(t, err)
	require.Equal(t, "v1", html)

	done := make(chan error, 1)
	go func() { done <- r.Watch(ctx, dir) }()

	assert.Eventually(t, func() bool {
		_ = os.WriteFile(filepath.Join(dir, "templates", "ad.html"), []byte("v2"), 0o644)
		html, _ := r.Resolve(ctx, ptr("ad"))
		return html == "v2"
	}, 5*time.Second, 50*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("watch did not stop")
	}
}
