package settings

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	pkgerrors "github.com/fosbar/barpos-backend/pkg/errors"
)

func setupSettingsTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS settings (
  key TEXT PRIMARY KEY,
  value TEXT NOT NULL,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	require.NoError(t, db.Exec(`DELETE FROM settings`).Error)
	return db
}

func TestSetAndGet(t *testing.T) {
	db := setupSettingsTestDB(t)
	svc, err := NewService(db)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, svc.Set(ctx, KeyVenueName, "Fosbar"))

	value, err := svc.Get(ctx, KeyVenueName)
	require.NoError(t, err)
	assert.Equal(t, "Fosbar", value)

	// upsert overwrites
	require.NoError(t, svc.Set(ctx, KeyVenueName, "Fosbar Kellerbar"))
	value, err = svc.Get(ctx, KeyVenueName)
	require.NoError(t, err)
	assert.Equal(t, "Fosbar Kellerbar", value)
}

func TestGetMissingKey(t *testing.T) {
	db := setupSettingsTestDB(t)
	svc, err := NewService(db)
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), "nonexistent")
	var appErr *pkgerrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, pkgerrors.CodeNotFound, appErr.Code())
}

func TestGetAll(t *testing.T) {
	db := setupSettingsTestDB(t)
	svc, err := NewService(db)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, svc.Set(ctx, KeyVenueName, "Fosbar"))
	require.NoError(t, svc.Set(ctx, KeyCurrencySymbol, "€"))

	all, err := svc.GetAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, "€", all[KeyCurrencySymbol])
}

func TestDelete(t *testing.T) {
	db := setupSettingsTestDB(t)
	svc, err := NewService(db)
	require.NoError(t, err)

	ctx := context.Background()
	require.NoError(t, svc.Set(ctx, KeyReceiptFooter, "Danke!"))
	require.NoError(t, svc.Delete(ctx, KeyReceiptFooter))

	_, err = svc.Get(ctx, KeyReceiptFooter)
	assert.Error(t, err)
}
