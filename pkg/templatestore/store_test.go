package templatestore_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mailcanvas/pkg/templatestore"
)

type MockBackend struct {
	mock.Mock
}

func (m *MockBackend) Load(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

func (m *MockBackend) Store(ctx context.Context, key string, value []byte) error {
	args := m.Called(ctx, key, value)
	return args.Error(0)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newStore(t *testing.T) (*templatestore.Store, *templatestore.MemoryBackend) {
	t.Helper()
	backend := templatestore.NewMemoryBackend()
	return templatestore.New(backend, templatestore.WithLogger(quietLogger())), backend
}

func TestStore_ListEmpty(t *testing.T) {
	t.Parallel()

	s, _ := newStore(t)
	list := s.List(context.Background())
	assert.NotNil(t, list)
	assert.Empty(t, list)
}

func TestStore_AddUpdateDelete(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, _ := newStore(t)

	a := templatestore.UserTemplate{ID: "a", Name: "A", HTML: "<p>a</p>"}
	b := templatestore.UserTemplate{ID: "b", Name: "B", HTML: "<p>b</p>"}
	s.Add(ctx, a)
	s.Add(ctx, b)
	assert.Equal(t, []templatestore.UserTemplate{a, b}, s.List(ctx))

	a2 := templatestore.UserTemplate{ID: "a", Name: "A2", HTML: "<p>a2</p>"}
	assert.True(t, s.Update(ctx, a2))
	assert.Equal(t, []templatestore.UserTemplate{a2, b}, s.List(ctx))

	got, ok := s.Get(ctx, "a")
	require.True(t, ok)
	assert.Equal(t, a2, got)

	s.Delete(ctx, "a")
	assert.Equal(t, []templatestore.UserTemplate{b}, s.List(ctx))

	_, ok = s.Get(ctx, "a")
	assert.False(t, ok)
}

func TestStore_UnknownIDIsNoOp(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, _ := newStore(t)
	s.Add(ctx, templatestore.UserTemplate{ID: "a", Name: "A", HTML: "x"})
	before := s.List(ctx)

	s.Delete(ctx, "missing")
	assert.Equal(t, before, s.List(ctx))

	assert.False(t, s.Update(ctx, templatestore.UserTemplate{ID: "missing", Name: "M"}))
	assert.Equal(t, before, s.List(ctx))
}

func TestStore_Save(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, _ := newStore(t)

	tpl := templatestore.NewTemplate("", "")
	s.Save(ctx, tpl)
	require.Len(t, s.List(ctx), 1)

	tpl.Name = "renamed"
	s.Save(ctx, tpl)
	list := s.List(ctx)
	require.Len(t, list, 1)
	assert.Equal(t, "renamed", list[0].Name)
}

func TestStore_PersistsUnderKey(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	s, backend := newStore(t)
	s.Add(ctx, templatestore.UserTemplate{ID: "a", Name: "A", HTML: "x"})

	raw, err := backend.Load(ctx, templatestore.Key)
	require.NoError(t, err)
	assert.JSONEq(t, `[{"id":"a","name":"A","html":"x"}]`, string(raw))
}

func TestStore_CorruptPayload(t *testing.T) {
	t.Parallel()

	payloads := map[string]string{
		"not json":     `{{{`,
		"object":       `{"id":"a"}`,
		"null":         `null`,
		"string":       `"hello"`,
		"wrong fields": `[{"id": 1}]`,
	}
	for name, payload := range payloads {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			ctx := context.Background()
			s, backend := newStore(t)
			require.NoError(t, backend.Store(ctx, templatestore.Key, []byte(payload)))

			assert.Empty(t, s.List(ctx))

			s.Add(ctx, templatestore.UserTemplate{ID: "a"})
			assert.Len(t, s.List(ctx), 1, "a write replaces the corrupt payload")
		})
	}
}

func TestStore_BackendFailuresAreSwallowed(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	backend := new(MockBackend)
	backend.On("Load", mock.Anything, templatestore.Key).Return(nil, errors.New("unavailable"))
	backend.On("Store", mock.Anything, templatestore.Key, mock.Anything).Return(errors.New("read-only"))

	s := templatestore.New(backend, templatestore.WithLogger(quietLogger()))

	assert.NotPanics(t, func() {
		s.Add(ctx, templatestore.UserTemplate{ID: "a"})
		s.Delete(ctx, "a")
	})
	assert.Empty(t, s.List(ctx))
	backend.AssertNumberOfCalls(t, "Store", 2)
}

func TestStore_WithKey(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	backend := templatestore.NewMemoryBackend()
	s := templatestore.New(backend, templatestore.WithKey("custom"), templatestore.WithLogger(quietLogger()))
	s.Add(ctx, templatestore.UserTemplate{ID: "a"})

	raw, _ := backend.Load(ctx, templatestore.Key)
	assert.Empty(t, raw)
	raw, _ = backend.Load(ctx, "custom")
	assert.NotEmpty(t, raw)
}

func TestNewTemplate(t *testing.T) {
	t.Parallel()

	a := templatestore.NewTemplate("", "")
	b := templatestore.NewTemplate("Promo", "<table></table>")

	assert.NotEmpty(t, a.ID)
	assert.NotEqual(t, a.ID, b.ID)
	assert.Equal(t, templatestore.DefaultName, a.Name)
	assert.Equal(t, templatestore.DefaultHTML, a.HTML)
	assert.Equal(t, "Promo", b.Name)
}
