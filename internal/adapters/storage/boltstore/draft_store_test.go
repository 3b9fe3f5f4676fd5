package boltstore_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/asientoflow/asientoflow/internal/adapters/storage/boltstore"
	"github.com/asientoflow/asientoflow/internal/apperrors"
	"github.com/asientoflow/asientoflow/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openStore(t *testing.T) *boltstore.DraftStore {
	t.Helper()
	store, err := boltstore.New(filepath.Join(t.TempDir(), "drafts.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func sampleDraft(companyID string) domain.Draft {
	return domain.Draft{
		CompanyID: companyID,
		EntryDate: time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC),
		Memo:      "compra de mercadería",
		Amount:    decimal.RequireFromString("118.00"),
		Lines: []domain.EntryLine{
			{LineID: "l1", AccountCode: "601", Debit: decimal.RequireFromString("118.00"), Credit: decimal.Zero},
			{LineID: "l2", AccountCode: "42", Debit: decimal.Zero, Credit: decimal.RequireFromString("118.00")},
		},
		SavedAt: time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC),
	}
}

func TestSaveAndLoadDraft(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveDraft(ctx, "c1", sampleDraft("c1")))

	loaded, err := store.LoadDraft(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "compra de mercadería", loaded.Memo)
	assert.Equal(t, "118.00", loaded.Amount.StringFixed(2))
	require.Len(t, loaded.Lines, 2)
	assert.Equal(t, "601", loaded.Lines[0].AccountCode)
	assert.True(t, loaded.SavedAt.Equal(time.Date(2026, 1, 15, 10, 30, 0, 0, time.UTC)))
}

func TestLoadDraft_AbsentReturnsNotFound(t *testing.T) {
	store := openStore(t)
	_, err := store.LoadDraft(context.Background(), "missing")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestSaveDraft_OverwritesPrevious(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	first := sampleDraft("c1")
	require.NoError(t, store.SaveDraft(ctx, "c1", first))

	second := sampleDraft("c1")
	second.Memo = "versión más nueva"
	require.NoError(t, store.SaveDraft(ctx, "c1", second))

	loaded, err := store.LoadDraft(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "versión más nueva", loaded.Memo)
}

func TestDrafts_KeyedPerCompany(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	a := sampleDraft("c1")
	b := sampleDraft("c2")
	b.Memo = "otro asiento"
	require.NoError(t, store.SaveDraft(ctx, "c1", a))
	require.NoError(t, store.SaveDraft(ctx, "c2", b))

	la, err := store.LoadDraft(ctx, "c1")
	require.NoError(t, err)
	lb, err := store.LoadDraft(ctx, "c2")
	require.NoError(t, err)
	assert.NotEqual(t, la.Memo, lb.Memo)
}

func TestClearDraft(t *testing.T) {
	store := openStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveDraft(ctx, "c1", sampleDraft("c1")))
	require.NoError(t, store.ClearDraft(ctx, "c1"))

	_, err := store.LoadDraft(ctx, "c1")
	assert.ErrorIs(t, err, apperrors.ErrNotFound)

	// Clearing again is not an error.
	assert.NoError(t, store.ClearDraft(ctx, "c1"))
}
