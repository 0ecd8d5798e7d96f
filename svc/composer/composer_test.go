package composer_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mailcanvas/pkg/catalog"
	"github.com/dmitrymomot/mailcanvas/pkg/document"
	"github.com/dmitrymomot/mailcanvas/pkg/email"
	"github.com/dmitrymomot/mailcanvas/pkg/file"
	"github.com/dmitrymomot/mailcanvas/pkg/templatestore"
	"github.com/dmitrymomot/mailcanvas/svc/composer"
)

type MockSender struct {
	mock.Mock
}

func (m *MockSender) SendEmail(ctx context.Context, msg email.Message) error {
	return m.Called(ctx, msg).Error(0)
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func ptr[T any](v T) *T { return &v }

func sequence() func() string {
	var n atomic.Int64
	return func() string { return fmt.Sprintf("id-%d", n.Add(1)) }
}

type fixture struct {
	svc       *composer.Service
	templates *templatestore.Store
	storage   *file.LocalStorage
}

func newFixture(t *testing.T, opts ...composer.Option) fixture {
	t.Helper()

	templates := templatestore.New(templatestore.NewMemoryBackend(), templatestore.WithLogger(quietLogger()))
	storage, err := file.NewLocalStorage(t.TempDir(), "/files")
	require.NoError(t, err)
	resolver := catalog.NewResolver(catalog.Default(), templates, nil, catalog.WithLogger(quietLogger()))

	opts = append([]composer.Option{
		composer.WithLogger(quietLogger()),
		composer.WithIDGenerator(sequence()),
	}, opts...)
	return fixture{
		svc:       composer.New(resolver, templates, storage, opts...),
		templates: templates,
		storage:   storage,
	}
}

func receive(t *testing.T, ch <-chan composer.Change) composer.Change {
	t.Helper()
	select {
	case c := <-ch:
		return c
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for change")
		return composer.Change{}
	}
}

func changes(t *testing.T, svc *composer.Service, id string) <-chan composer.Change {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	sub, err := svc.Subscribe(ctx, id)
	require.NoError(t, err)

	out := make(chan composer.Change, 32)
	go func() {
		for msg := range sub.Receive() {
			out <- msg.Data
		}
	}()
	return out
}

func TestService_CreateGetClose(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	st := f.svc.Create(ctx, nil)
	assert.Equal(t, "id-1", st.ID)
	assert.Equal(t, document.New(), st.Document)
	assert.False(t, st.CanUndo)
	assert.False(t, st.CanRedo)
	assert.Nil(t, st.SelectedBlockID)
	assert.Equal(t, 1, f.svc.Len())

	got, err := f.svc.Get(ctx, st.ID)
	require.NoError(t, err)
	assert.Equal(t, st, got)

	events := changes(t, f.svc, st.ID)
	require.NoError(t, f.svc.Close(ctx, st.ID))
	assert.True(t, receive(t, events).Closed())

	_, err = f.svc.Get(ctx, st.ID)
	assert.ErrorIs(t, err, composer.ErrSessionNotFound)
	assert.ErrorIs(t, f.svc.Close(ctx, st.ID), composer.ErrSessionNotFound)
	assert.Equal(t, 0, f.svc.Len())
}

func TestService_CreateFromDocument(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	doc := document.New().WithTitle("Sale").AppendBlock(document.CustomBlock{ID: "c", HTML: "<tr></tr>"})

	st := f.svc.Create(context.Background(), &doc)
	assert.Equal(t, "Sale", st.Document.TitleText)
	assert.Equal(t, []string{"c"}, st.Document.BlockIDs())
	assert.False(t, st.CanUndo)
}

func TestService_BlockEditing(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	st := f.svc.Create(ctx, nil)
	events := changes(t, f.svc, st.ID)

	img, st, err := f.svc.AddBlock(ctx, st.ID, document.TypeImage)
	require.NoError(t, err)
	assert.Equal(t, document.ImageBlock{ID: "id-2", Src: document.DefaultImageSrc, Alt: document.DefaultImageAlt}, img)
	assert.Equal(t, ptr("id-2"), st.SelectedBlockID)
	assert.True(t, st.CanUndo)
	c := receive(t, events)
	assert.Equal(t, composer.Change{SessionID: st.ID, Op: composer.OpAddBlock, BlockID: "id-2", CanUndo: true}, c)

	btn, _, err := f.svc.AddBlock(ctx, st.ID, document.TypeButton)
	require.NoError(t, err)
	receive(t, events)

	st, err = f.svc.UpdateBlock(ctx, st.ID, img.BlockID(), document.BlockPatch{Src: ptr("a.png")})
	require.NoError(t, err)
	b, ok := st.Document.Block(img.BlockID())
	require.True(t, ok)
	assert.Equal(t, "a.png", b.(document.ImageBlock).Src)
	assert.Equal(t, composer.OpUpdateBlock, receive(t, events).Op)

	st, err = f.svc.MoveBlock(ctx, st.ID, 1, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{btn.BlockID(), img.BlockID()}, st.Document.BlockIDs())
	receive(t, events)

	st, err = f.svc.SetBlocks(ctx, st.ID, []document.Block{img, btn})
	require.NoError(t, err)
	assert.Equal(t, []string{img.BlockID(), btn.BlockID()}, st.Document.BlockIDs())
	assert.Equal(t, composer.OpSetBlocks, receive(t, events).Op)
}

func TestService_AddBlockUnknownType(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	st := f.svc.Create(ctx, nil)

	_, _, err := f.svc.AddBlock(ctx, st.ID, "video")
	assert.ErrorIs(t, err, document.ErrUnknownBlockType)

	got, err := f.svc.Get(ctx, st.ID)
	require.NoError(t, err)
	assert.False(t, got.CanUndo)
}

func TestService_UnknownBlockEditsArePublished(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	st := f.svc.Create(ctx, nil)
	events := changes(t, f.svc, st.ID)

	st, err := f.svc.UpdateBlock(ctx, st.ID, "missing", document.BlockPatch{Alt: ptr("x")})
	require.NoError(t, err)
	assert.Empty(t, st.Document.Blocks)
	assert.True(t, st.CanUndo, "the no-op still lands in history")

	ch := receive(t, events)
	assert.Equal(t, composer.OpUpdateBlock, ch.Op)
	assert.Equal(t, "missing", ch.BlockID)
	assert.True(t, ch.CanUndo)

	st, err = f.svc.DeleteBlock(ctx, st.ID, "missing")
	require.NoError(t, err)
	assert.Empty(t, st.Document.Blocks)
	assert.Equal(t, composer.OpDeleteBlock, receive(t, events).Op)

	st, err = f.svc.Undo(ctx, st.ID)
	require.NoError(t, err)
	assert.True(t, st.CanUndo)
	assert.Empty(t, st.Document.Blocks)
}

func TestService_Selection(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	st := f.svc.Create(ctx, nil)

	a, _, err := f.svc.AddBlock(ctx, st.ID, document.TypeCustom)
	require.NoError(t, err)
	b, _, err := f.svc.AddBlock(ctx, st.ID, document.TypeCustom)
	require.NoError(t, err)

	st, err = f.svc.Select(ctx, st.ID, ptr(a.BlockID()))
	require.NoError(t, err)
	assert.Equal(t, ptr(a.BlockID()), st.SelectedBlockID)

	_, err = f.svc.Select(ctx, st.ID, ptr("missing"))
	assert.ErrorIs(t, err, composer.ErrBlockNotFound)

	st, err = f.svc.DeleteBlock(ctx, st.ID, b.BlockID())
	require.NoError(t, err)
	assert.Equal(t, ptr(a.BlockID()), st.SelectedBlockID, "deleting another block keeps the selection")

	st, err = f.svc.DeleteBlock(ctx, st.ID, a.BlockID())
	require.NoError(t, err)
	assert.Nil(t, st.SelectedBlockID)
	assert.Empty(t, st.Document.Blocks)

	st, err = f.svc.DeleteBlock(ctx, st.ID, "missing")
	require.NoError(t, err)
	assert.Empty(t, st.Document.Blocks)

	st, err = f.svc.Select(ctx, st.ID, nil)
	require.NoError(t, err)
	assert.Nil(t, st.SelectedBlockID)
}

func TestService_UndoRedo(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	st := f.svc.Create(ctx, nil)
	events := changes(t, f.svc, st.ID)

	st, err := f.svc.Undo(ctx, st.ID)
	require.NoError(t, err)
	assert.False(t, st.CanUndo)

	_, err = f.svc.ApplySettings(ctx, st.ID, document.Settings{
		TitleText:   ptr("Hello"),
		CanvasWidth: ptr(100),
		TemplateID:  ptr("ad"),
	})
	require.NoError(t, err)
	assert.Equal(t, composer.OpSettings, receive(t, events).Op)

	st, err = f.svc.Undo(ctx, st.ID)
	require.NoError(t, err)
	assert.Equal(t, document.New(), st.Document)
	assert.True(t, st.CanRedo)
	assert.Equal(t, composer.Change{SessionID: st.ID, Op: composer.OpUndo, CanRedo: true}, receive(t, events))

	st, err = f.svc.Redo(ctx, st.ID)
	require.NoError(t, err)
	assert.Equal(t, "Hello", st.Document.TitleText)
	assert.Equal(t, document.MinCanvasWidth, st.Document.CanvasWidth)
	assert.Equal(t, ptr("ad"), st.Document.TemplateID)
	assert.Equal(t, composer.OpRedo, receive(t, events).Op)

	select {
	case c := <-events:
		t.Fatalf("unexpected change %v", c)
	default:
	}
}

func TestService_UndoDropsSelectionOfRemovedBlock(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	st := f.svc.Create(ctx, nil)

	_, st, err := f.svc.AddBlock(ctx, st.ID, document.TypeImage)
	require.NoError(t, err)
	require.NotNil(t, st.SelectedBlockID)

	st, err = f.svc.Undo(ctx, st.ID)
	require.NoError(t, err)
	assert.Nil(t, st.SelectedBlockID)
}

func TestService_UnknownSession(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	_, _, err := f.svc.AddBlock(ctx, "nope", document.TypeImage)
	assert.ErrorIs(t, err, composer.ErrSessionNotFound)
	_, err = f.svc.Undo(ctx, "nope")
	assert.ErrorIs(t, err, composer.ErrSessionNotFound)
	_, err = f.svc.Preview(ctx, "nope")
	assert.ErrorIs(t, err, composer.ErrSessionNotFound)
	_, err = f.svc.Subscribe(ctx, "nope")
	assert.ErrorIs(t, err, composer.ErrSessionNotFound)
}

func TestService_Preview(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	st := f.svc.Create(ctx, nil)

	html, err := f.svc.Preview(ctx, st.ID)
	require.NoError(t, err)
	assert.Empty(t, html, "no template renders nothing")

	_, err = f.svc.ApplySettings(ctx, st.ID, document.Settings{TitleText: ptr("Autumn sale"), TemplateID: ptr("ad")})
	require.NoError(t, err)
	img, _, err := f.svc.AddBlock(ctx, st.ID, document.TypeImage)
	require.NoError(t, err)
	_, err = f.svc.UpdateBlock(ctx, st.ID, img.BlockID(), document.BlockPatch{Src: ptr("hero.png")})
	require.NoError(t, err)

	html, err = f.svc.Preview(ctx, st.ID)
	require.NoError(t, err)
	assert.Contains(t, html, "<title>Autumn sale</title>")
	assert.Contains(t, html, `src="hero.png"`)
	assert.NotContains(t, html, "block-placeholder")
}

func TestService_PreviewUserTemplate(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	st := f.svc.Create(ctx, nil)
	events := changes(t, f.svc, st.ID)

	tpl, err := f.svc.AddTemplate(ctx, "Mine", "<h1>TITLE_PLACEHOLDER</h1>")
	require.NoError(t, err)
	_, err = f.svc.ApplySettings(ctx, st.ID, document.Settings{TitleText: ptr("Hi"), TemplateID: ptr(catalog.UserID(tpl.ID))})
	require.NoError(t, err)
	receive(t, events)

	html, err := f.svc.Preview(ctx, st.ID)
	require.NoError(t, err)
	assert.Equal(t, "<h1>Hi</h1>", html)

	_, err = f.svc.UpdateTemplate(ctx, tpl.ID, "Mine", "<h2>TITLE_PLACEHOLDER</h2>")
	require.NoError(t, err)
	assert.Equal(t, composer.OpTemplate, receive(t, events).Op)

	html, err = f.svc.Preview(ctx, st.ID)
	require.NoError(t, err)
	assert.Equal(t, "<h2>Hi</h2>", html)

	_, err = f.svc.UpdateTemplate(ctx, "missing", "x", "y")
	assert.ErrorIs(t, err, composer.ErrTemplateNotFound)

	f.svc.DeleteTemplate(ctx, tpl.ID)
	assert.Equal(t, composer.OpTemplate, receive(t, events).Op)
	assert.Empty(t, f.svc.UserTemplates(ctx))

	html, err = f.svc.Preview(ctx, st.ID)
	require.NoError(t, err)
	assert.Empty(t, html)
}

// vanishingTemplates deletes a template right before updating it, as a
// concurrent delete would.
type vanishingTemplates struct {
	*templatestore.Store
}

func (v vanishingTemplates) Update(ctx context.Context, t templatestore.UserTemplate) bool {
	v.Delete(ctx, t.ID)
	return v.Store.Update(ctx, t)
}

func TestService_UpdateTemplateDeletedMeanwhile(t *testing.T) {
	t.Parallel()

	store := templatestore.New(templatestore.NewMemoryBackend(), templatestore.WithLogger(quietLogger()))
	svc := composer.New(nil, vanishingTemplates{store}, nil, composer.WithLogger(quietLogger()))
	ctx := context.Background()

	tpl, err := svc.AddTemplate(ctx, "Mine", "<p/>")
	require.NoError(t, err)

	_, err = svc.UpdateTemplate(ctx, tpl.ID, "Mine 2", "<p/>")
	assert.ErrorIs(t, err, composer.ErrTemplateNotFound)
	assert.Empty(t, svc.UserTemplates(ctx))
}

func TestService_Templates(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()

	tpl, err := f.svc.AddTemplate(ctx, "", "")
	require.NoError(t, err)
	assert.Equal(t, templatestore.DefaultName, tpl.Name)
	assert.Equal(t, templatestore.DefaultHTML, tpl.HTML)

	assert.Equal(t, []catalog.Entry{
		{ID: "ad", Name: "AD", File: "templates/ad.html"},
		{ID: "user:" + tpl.ID, Name: catalog.UserNamePrefix + templatestore.DefaultName},
	}, f.svc.Templates(ctx))
}

func TestService_ExportImport(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	st := f.svc.Create(ctx, nil)
	_, _, err := f.svc.AddBlock(ctx, st.ID, document.TypeButton)
	require.NoError(t, err)

	data, err := f.svc.Export(ctx, st.ID)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  \"titleText\"")

	other := f.svc.Create(ctx, nil)
	got, err := f.svc.Import(ctx, other.ID, data)
	require.NoError(t, err)
	assert.Len(t, got.Document.Blocks, 1)
	assert.True(t, got.CanUndo)

	got, err = f.svc.Undo(ctx, other.ID)
	require.NoError(t, err)
	assert.Empty(t, got.Document.Blocks, "an import is one undo step")
}

func TestService_ImportRejectsInvalid(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	st := f.svc.Create(ctx, nil)
	_, st, err := f.svc.AddBlock(ctx, st.ID, document.TypeImage)
	require.NoError(t, err)

	for _, payload := range []string{`not json`, `{"titleText":"x"}`, `{"blocks":{}}`, `[]`} {
		_, err := f.svc.Import(ctx, st.ID, []byte(payload))
		assert.ErrorIs(t, err, composer.ErrInvalidDocument, payload)
		assert.ErrorIs(t, err, document.ErrInvalidDocument, payload)
	}

	got, err := f.svc.Get(ctx, st.ID)
	require.NoError(t, err)
	assert.Equal(t, st, got)
}

func TestService_SaveLoadDocuments(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	st := f.svc.Create(ctx, nil)
	_, err := f.svc.ApplySettings(ctx, st.ID, document.Settings{TitleText: ptr("Saved")})
	require.NoError(t, err)

	key, err := f.svc.SaveDocument(ctx, st.ID, "newsletter.json")
	require.NoError(t, err)
	assert.Equal(t, "documents/newsletter.json", key)
	assert.True(t, f.storage.Exists(ctx, key))

	names, err := f.svc.Documents(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"newsletter"}, names)

	other := f.svc.Create(ctx, nil)
	got, err := f.svc.LoadDocument(ctx, other.ID, "newsletter")
	require.NoError(t, err)
	assert.Equal(t, "Saved", got.Document.TitleText)
	assert.True(t, got.CanUndo)

	_, err = f.svc.LoadDocument(ctx, other.ID, "missing")
	assert.ErrorIs(t, err, composer.ErrDocumentNotFound)

	for _, name := range []string{"", "   ", "../etc/passwd", "a/b", ".hidden", "x:y"} {
		_, err := f.svc.SaveDocument(ctx, st.ID, name)
		assert.ErrorIs(t, err, composer.ErrInvalidDocumentName, name)
	}
}

func TestService_LoadCorruptDocument(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	ctx := context.Background()
	st := f.svc.Create(ctx, nil)
	require.NoError(t, f.storage.Put(ctx, "documents/broken.json", []byte(`{"title":1}`), "application/json"))

	_, err := f.svc.LoadDocument(ctx, st.ID, "broken")
	assert.ErrorIs(t, err, composer.ErrInvalidDocument)
}

func TestService_SendTest(t *testing.T) {
	t.Parallel()

	sender := new(MockSender)
	f := newFixture(t, composer.WithSender(sender))
	ctx := context.Background()
	st := f.svc.Create(ctx, nil)
	_, err := f.svc.ApplySettings(ctx, st.ID, document.Settings{TitleText: ptr("Weekly"), TemplateID: ptr("ad")})
	require.NoError(t, err)

	sender.On("SendEmail", mock.Anything, mock.MatchedBy(func(m email.Message) bool {
		return m.To == "qa@example.com" && m.Subject == "Weekly" && len(m.HTML) > 0
	})).Return(nil).Once()
	require.NoError(t, f.svc.SendTest(ctx, st.ID, "qa@example.com"))

	sender.On("SendEmail", mock.Anything, mock.Anything).Return(errors.New("boom")).Once()
	err = f.svc.SendTest(ctx, st.ID, "qa@example.com")
	assert.ErrorIs(t, err, composer.ErrSendFailed)

	sender.AssertExpectations(t)
}

func TestService_SendTestWithoutSender(t *testing.T) {
	t.Parallel()

	f := newFixture(t)
	st := f.svc.Create(context.Background(), nil)
	err := f.svc.SendTest(context.Background(), st.ID, "qa@example.com")
	assert.ErrorIs(t, err, composer.ErrSenderNotConfigured)
}

func TestService_Sweep(t *testing.T) {
	t.Parallel()

	var now atomic.Int64
	now.Store(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).Unix())
	clock := func() time.Time { return time.Unix(now.Load(), 0) }

	f := newFixture(t,
		composer.WithConfig(composer.Config{SessionTTL: time.Hour}),
		composer.WithClock(clock),
	)
	ctx := context.Background()
	idle := f.svc.Create(ctx, nil)
	active := f.svc.Create(ctx, nil)

	now.Add(int64(50 * time.Minute / time.Second))
	_, err := f.svc.ApplySettings(ctx, active.ID, document.Settings{TitleText: ptr("x")})
	require.NoError(t, err)

	now.Add(int64(20 * time.Minute / time.Second))
	assert.Equal(t, 1, f.svc.Sweep(ctx))

	_, err = f.svc.Get(ctx, idle.ID)
	assert.ErrorIs(t, err, composer.ErrSessionNotFound)
	_, err = f.svc.Get(ctx, active.ID)
	assert.NoError(t, err)
}

func TestService_SweepKeepsViewedSessions(t *testing.T) {
	t.Parallel()

	var now atomic.Int64
	now.Store(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC).Unix())
	clock := func() time.Time { return time.Unix(now.Load(), 0) }

	f := newFixture(t,
		composer.WithConfig(composer.Config{SessionTTL: time.Hour}),
		composer.WithClock(clock),
	)
	ctx := context.Background()
	viewed := f.svc.Create(ctx, nil)
	previewed := f.svc.Create(ctx, nil)
	idle := f.svc.Create(ctx, nil)

	now.Add(int64(50 * time.Minute / time.Second))
	_, err := f.svc.Get(ctx, viewed.ID)
	require.NoError(t, err)
	_, err = f.svc.Preview(ctx, previewed.ID)
	require.NoError(t, err)

	now.Add(int64(20 * time.Minute / time.Second))
	assert.Equal(t, 1, f.svc.Sweep(ctx))

	_, err = f.svc.Get(ctx, idle.ID)
	assert.ErrorIs(t, err, composer.ErrSessionNotFound)
	assert.Equal(t, 2, f.svc.Len())

	now.Add(int64(2 * time.Hour / time.Second))
	assert.Equal(t, 2, f.svc.Sweep(ctx))
	assert.Zero(t, f.svc.Len())
}
