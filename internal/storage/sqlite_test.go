package storage

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/ledgerlens/ledgerlens/internal/common"
	"github.com/ledgerlens/ledgerlens/internal/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	store, err := NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestNewSQLiteStore_RequiresPath(t *testing.T) {
	_, err := NewSQLiteStore("")
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrInvalidConfig)
}

func TestSaveAndActiveConnection(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	conn := &model.Connection{
		Platform:    model.PlatformQuickBooks,
		TenantID:    "realm123",
		AccessToken: "tok-1",
		Active:      true,
	}
	require.NoError(t, store.SaveConnection(ctx, conn))
	assert.NotZero(t, conn.ID)

	got, err := store.ActiveConnection(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.PlatformQuickBooks, got.Platform)
	assert.Equal(t, "realm123", got.TenantID)
	assert.Equal(t, "tok-1", got.AccessToken)
	assert.True(t, got.Active)
}

func TestActiveConnection_NoneStored(t *testing.T) {
	store := newTestStore(t)

	_, err := store.ActiveConnection(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSaveConnection_ActiveDeactivatesOthers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveConnection(ctx, &model.Connection{
		Platform:    model.PlatformQuickBooks,
		TenantID:    "realm123",
		AccessToken: "tok-1",
		Active:      true,
	}))
	require.NoError(t, store.SaveConnection(ctx, &model.Connection{
		Platform:    model.PlatformXero,
		TenantID:    "tenant-1",
		AccessToken: "tok-2",
		Active:      true,
	}))

	got, err := store.ActiveConnection(ctx)
	require.NoError(t, err)
	assert.Equal(t, model.PlatformXero, got.Platform)

	conns, err := store.ListConnections(ctx)
	require.NoError(t, err)
	require.Len(t, conns, 2)

	var activeCount int
	for _, c := range conns {
		if c.Active {
			activeCount++
		}
	}
	assert.Equal(t, 1, activeCount)
}

func TestSaveConnection_UpsertsOnPlatformTenant(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, store.SaveConnection(ctx, &model.Connection{
		Platform:    model.PlatformXero,
		TenantID:    "tenant-1",
		AccessToken: "stale",
		Active:      true,
	}))
	require.NoError(t, store.SaveConnection(ctx, &model.Connection{
		Platform:    model.PlatformXero,
		TenantID:    "tenant-1",
		AccessToken: "fresh",
		Active:      true,
	}))

	conns, err := store.ListConnections(ctx)
	require.NoError(t, err)
	require.Len(t, conns, 1)
	assert.Equal(t, "fresh", conns[0].AccessToken)
}

func TestSaveConnection_Validation(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	assert.Error(t, store.SaveConnection(ctx, nil))
	assert.ErrorIs(t, store.SaveConnection(ctx, &model.Connection{Platform: model.PlatformXero}), common.ErrInvalidConfig)
	assert.ErrorIs(t, store.SaveConnection(ctx, &model.Connection{TenantID: "t"}), common.ErrInvalidConfig)
}

func TestSetActiveConnection(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	first := &model.Connection{Platform: model.PlatformQuickBooks, TenantID: "realm123", AccessToken: "tok-1", Active: true}
	second := &model.Connection{Platform: model.PlatformXero, TenantID: "tenant-1", AccessToken: "tok-2"}
	require.NoError(t, store.SaveConnection(ctx, first))
	require.NoError(t, store.SaveConnection(ctx, second))

	require.NoError(t, store.SetActiveConnection(ctx, second.ID))

	got, err := store.ActiveConnection(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.ID, got.ID)

	err = store.SetActiveConnection(ctx, 9999)
	require.Error(t, err)
	assert.ErrorIs(t, err, common.ErrNotFound)
}
