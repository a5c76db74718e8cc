package store

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, func()) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	return gormDB, mock, func() { sqlDB.Close() }
}

func recv(t *testing.T, ch <-chan Change) Change {
	t.Helper()
	select {
	case c, ok := <-ch:
		require.True(t, ok, "通道已关闭")
		return c
	case <-time.After(time.Second):
		t.Fatal("等待变更超时")
	}
	return Change{}
}

func TestMemoryStore_GetSetDelete(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	_, err := s.Get(ctx, "events_meta/a")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, s.Set(ctx, "events_meta/a", []byte(`{"id":"a"}`)))
	require.NoError(t, s.Set(ctx, "events_data/a/budget", []byte(`[]`)))
	require.NoError(t, s.Set(ctx, "events_data/ab/budget", []byte(`[1]`)))

	v, err := s.Get(ctx, "events_meta/a")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"a"}`, string(v))

	docs, err := s.List(ctx, "events_data/a/")
	require.NoError(t, err)
	assert.Len(t, docs, 1)
	assert.Contains(t, docs, "events_data/a/budget")

	require.NoError(t, s.Delete(ctx, "events_meta/a"))
	_, err = s.Get(ctx, "events_meta/a")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStore_ValuesAreCopied(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	buf := []byte("abc")
	require.NoError(t, s.Set(ctx, "k", buf))
	buf[0] = 'x'

	v, err := s.Get(ctx, "k")
	require.NoError(t, err)
	assert.Equal(t, "abc", string(v))
}

func TestMemoryStore_Subscribe(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	s := NewMemoryStore()

	ch, err := s.Subscribe(ctx, "events_data/a/")
	require.NoError(t, err)

	require.NoError(t, s.Set(ctx, "events_data/b/budget", []byte(`[]`)))
	require.NoError(t, s.Set(ctx, "events_data/a/budget", []byte(`[]`)))
	c := recv(t, ch)
	assert.Equal(t, "events_data/a/budget", c.Path)
	assert.False(t, c.Deleted())

	require.NoError(t, s.Delete(ctx, "events_data/a/budget"))
	c = recv(t, ch)
	assert.True(t, c.Deleted())

	cancel()
	assert.Eventually(t, func() bool { return s.hub.Len() == 0 }, time.Second, 10*time.Millisecond)
	_, ok := <-ch
	assert.False(t, ok)
}

func TestHub_SlowSubscriberKeepsNewest(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	h := NewHub()
	ch := h.Subscribe(ctx, "")

	for i := 0; i < subscriberBuffer+5; i++ {
		h.Publish(Change{Path: "p", Value: []byte{byte(i)}})
	}

	var last Change
	for i := 0; i < subscriberBuffer; i++ {
		last = recv(t, ch)
	}
	assert.Equal(t, []byte{byte(subscriberBuffer + 4)}, last.Value)
}

func TestGormStore_Get(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()
	s := NewGormStore(db)

	mock.ExpectQuery("SELECT .* FROM `documents`").
		WillReturnRows(sqlmock.NewRows([]string{"path", "value", "updated_at"}).
			AddRow("events_meta/a", `{"id":"a"}`, time.Now()))
	v, err := s.Get(context.Background(), "events_meta/a")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"a"}`, string(v))

	mock.ExpectQuery("SELECT .* FROM `documents`").
		WillReturnRows(sqlmock.NewRows([]string{"path", "value", "updated_at"}))
	_, err = s.Get(context.Background(), "events_meta/missing")
	assert.ErrorIs(t, err, ErrNotFound)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_List(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()
	s := NewGormStore(db)

	mock.ExpectQuery("SELECT .* FROM `documents` WHERE path LIKE").
		WithArgs(`events\_data/a/%`).
		WillReturnRows(sqlmock.NewRows([]string{"path", "value", "updated_at"}).
			AddRow("events_data/a/budget", `[]`, time.Now()).
			AddRow("events_data/a/budgetYear", `2026`, time.Now()))

	docs, err := s.List(context.Background(), "events_data/a/")
	require.NoError(t, err)
	assert.Len(t, docs, 2)
	assert.Equal(t, "2026", string(docs["events_data/a/budgetYear"]))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_SetPublishes(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()
	s := NewGormStore(db)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch, err := s.Subscribe(ctx, "events_data/a/")
	require.NoError(t, err)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `documents`").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	require.NoError(t, s.Set(ctx, "events_data/a/budgetYear", []byte(`2026`)))
	c := recv(t, ch)
	assert.Equal(t, "2026", string(c.Value))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormStore_SetErrorDoesNotPublish(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()
	s := NewGormStore(db)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ch, _ := s.Subscribe(ctx, "")

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO `documents`").WillReturnError(assert.AnError)
	mock.ExpectRollback()

	err := s.Set(ctx, "k", []byte(`1`))
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)

	select {
	case c := <-ch:
		t.Fatalf("不应收到变更: %v", c)
	case <-time.After(50 * time.Millisecond):
	}
}

func TestGormStore_Delete(t *testing.T) {
	db, mock, cleanup := setupMockDB(t)
	defer cleanup()
	s := NewGormStore(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `documents`").
		WithArgs("events_meta/a").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	require.NoError(t, s.Delete(context.Background(), "events_meta/a"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestEscapeLikeValue(t *testing.T) {
	assert.Equal(t, `a\_b\%c\\d`, escapeLikeValue(`a_b%c\d`))
}

func TestJoinBase(t *testing.T) {
	assert.Equal(t, "events_data/x/budget", Join("events_data", "x", "budget"))
	assert.Equal(t, "budget", Base("events_data/x/budget"))
	assert.Equal(t, "x", Base("x"))
}
