package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"eventledger/models"
	"eventledger/store"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepo(t *testing.T) (*Repository, *store.MemoryStore) {
	t.Helper()
	s := store.NewMemoryStore()
	r := New(s)
	r.now = func() time.Time { return time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC) }
	return r, s
}

func TestCreateAndLoadEdition(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRepo(t)

	meta, err := r.CreateEdition(ctx, "Festival 2026")
	require.NoError(t, err)
	assert.NotEmpty(t, meta.ID)
	assert.Equal(t, time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC).UnixMilli(), meta.CreatedAt)

	data, err := r.Load(ctx, meta.ID)
	require.NoError(t, err)
	assert.Equal(t, 2026, data.BudgetYear)
	assert.Len(t, data.Budget, 13)
	assert.Empty(t, data.Transactions)

	got, err := r.GetEdition(ctx, meta.ID)
	require.NoError(t, err)
	assert.Equal(t, "Festival 2026", got.Name)
}

func TestLoad_UnknownEdition(t *testing.T) {
	r, _ := newTestRepo(t)
	_, err := r.Load(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrEditionNotFound)

	_, err = r.GetEdition(context.Background(), "a/b")
	assert.ErrorIs(t, err, ErrEditionNotFound)
}

func TestListEditions_NewestFirst(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRepo(t)

	first, err := r.CreateEdition(ctx, "2025")
	require.NoError(t, err)
	r.now = func() time.Time { return time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC) }
	second, err := r.CreateEdition(ctx, "2026")
	require.NoError(t, err)

	list, err := r.ListEditions(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
}

func TestSaveWritesOnlyOneKey(t *testing.T) {
	ctx := context.Background()
	r, s := newTestRepo(t)
	meta, err := r.CreateEdition(ctx, "x")
	require.NoError(t, err)

	sub, cancel := context.WithCancel(ctx)
	defer cancel()
	changes, err := s.Subscribe(sub, dataPrefix(meta.ID))
	require.NoError(t, err)

	txs := []models.Transaction{{
		ID: "t1", Date: "2026-01-02", Amount: decimal.RequireFromString("10"),
		Type: models.TransactionIncome, Status: models.StatusPending,
	}}
	require.NoError(t, r.SaveTransactions(ctx, meta.ID, txs))

	c := <-changes
	assert.Equal(t, dataPath(meta.ID, models.KeyTransactions), c.Path)
	select {
	case extra := <-changes:
		t.Fatalf("多写了字段 %s", extra.Path)
	case <-time.After(20 * time.Millisecond):
	}

	data, err := r.Load(ctx, meta.ID)
	require.NoError(t, err)
	require.Len(t, data.Transactions, 1)
	assert.True(t, data.Transactions[0].Amount.Equal(decimal.NewFromInt(10)))
}

func TestSaveCategories(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRepo(t)
	meta, err := r.CreateEdition(ctx, "x")
	require.NoError(t, err)

	require.NoError(t, r.SaveCategories(ctx, meta.ID, models.TransactionExpense, []string{"Son"}))
	assert.Error(t, r.SaveCategories(ctx, meta.ID, "other", nil))

	data, err := r.Load(ctx, meta.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Son"}, data.CategoriesExpense)
	assert.Equal(t, models.DefaultIncomeCategories(), data.CategoriesIncome)
}

func TestLoad_CorruptFieldIsTypedError(t *testing.T) {
	ctx := context.Background()
	r, s := newTestRepo(t)
	meta, err := r.CreateEdition(ctx, "x")
	require.NoError(t, err)

	require.NoError(t, s.Set(ctx, dataPath(meta.ID, models.KeyBankLines), []byte(`{"a":1}`)))

	_, err = r.Load(ctx, meta.ID)
	var decErr *models.DecodeError
	require.True(t, errors.As(err, &decErr))
	assert.Equal(t, models.KeyBankLines, decErr.Key)
}

func TestRestore(t *testing.T) {
	ctx := context.Background()
	r, _ := newTestRepo(t)
	meta, err := r.CreateEdition(ctx, "x")
	require.NoError(t, err)

	backup := models.NewEditionData(2024)
	backup.LastReconciledDate = "2024-12-31"
	backup.Contacts = []models.Contact{{ID: "c1", Name: "Mairie", Role: "Partenaire"}}
	require.NoError(t, r.Restore(ctx, meta.ID, backup))

	data, err := r.Load(ctx, meta.ID)
	require.NoError(t, err)
	assert.Equal(t, 2024, data.BudgetYear)
	assert.Equal(t, "2024-12-31", data.LastReconciledDate)
	assert.Len(t, data.Contacts, 1)

	assert.ErrorIs(t, r.Restore(ctx, "missing", backup), ErrEditionNotFound)
}

func TestWatch_PushesWholeSnapshots(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	r, _ := newTestRepo(t)
	meta, err := r.CreateEdition(ctx, "x")
	require.NoError(t, err)

	snaps, err := r.Watch(ctx, meta.ID)
	require.NoError(t, err)

	first := <-snaps
	require.NoError(t, first.Err)
	assert.Equal(t, 2026, first.Data.BudgetYear)

	require.NoError(t, r.SaveBudgetYear(ctx, meta.ID, 2027))
	assert.Eventually(t, func() bool {
		select {
		case s := <-snaps:
			return s.Err == nil && s.Data.BudgetYear == 2027
		default:
			return false
		}
	}, time.Second, 10*time.Millisecond)

	cancel()
	assert.Eventually(t, func() bool {
		_, ok := <-snaps
		return !ok
	}, time.Second, 10*time.Millisecond)
}

func TestWatch_UnknownEdition(t *testing.T) {
	r, _ := newTestRepo(t)
	_, err := r.Watch(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrEditionNotFound)
}
