package pg_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/mailcanvas/pkg/pg"
)

type MockQuerier struct {
	mock.Mock
}

func (m *MockQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return m.Called(append([]any{sql}, args...)...).Get(0).(pgx.Row)
}

func (m *MockQuerier) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	callArgs := m.Called(append([]any{sql}, args...)...)
	return pgconn.NewCommandTag("INSERT 0 1"), callArgs.Error(0)
}

type row struct {
	value []byte
	err   error
}

func (r row) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*(dest[0].(*[]byte)) = r.value
	return nil
}

func TestKVStore_Load(t *testing.T) {
	t.Parallel()

	t.Run("found", func(t *testing.T) {
		t.Parallel()
		q := new(MockQuerier)
		q.On("QueryRow", mock.Anything, "k").Return(row{value: []byte(`[]`)})

		data, err := pg.NewKVStore(q).Load(context.Background(), "k")
		require.NoError(t, err)
		assert.Equal(t, []byte(`[]`), data)
	})

	t.Run("missing", func(t *testing.T) {
		t.Parallel()
		q := new(MockQuerier)
		q.On("QueryRow", mock.Anything, "k").Return(row{err: pgx.ErrNoRows})

		data, err := pg.NewKVStore(q).Load(context.Background(), "k")
		require.NoError(t, err)
		assert.Nil(t, data)
	})

	t.Run("failure", func(t *testing.T) {
		t.Parallel()
		q := new(MockQuerier)
		q.On("QueryRow", mock.Anything, "k").Return(row{err: errors.New("boom")})

		_, err := pg.NewKVStore(q).Load(context.Background(), "k")
		assert.EqualError(t, err, "boom")
	})
}

func TestKVStore_Store(t *testing.T) {
	t.Parallel()

	q := new(MockQuerier)
	q.On("Exec", mock.MatchedBy(func(sql string) bool { return strings.Contains(sql, "ON CONFLICT") }), "k", []byte("v")).Return(nil).Once()

	s := pg.NewKVStore(q)
	require.NoError(t, s.Store(context.Background(), "k", []byte("v")))
	q.AssertExpectations(t)
}

func TestIsNotFoundError(t *testing.T) {
	t.Parallel()

	assert.True(t, pg.IsNotFoundError(pgx.ErrNoRows))
	assert.True(t, pg.IsNotFoundError(errors.Join(errors.New("ctx"), pgx.ErrNoRows)))
	assert.False(t, pg.IsNotFoundError(nil))
	assert.False(t, pg.IsNotFoundError(errors.New("other")))
}
