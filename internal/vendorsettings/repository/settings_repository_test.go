package repository

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "vendordesk/internal/errors"
	"vendordesk/internal/testutil"
)

// Unit Tests

func TestNewMySQLSettingsRepository(t *testing.T) {
	db := &sql.DB{}
	repo := NewMySQLSettingsRepository(db)

	assert.NotNil(t, repo)
	assert.Equal(t, db, repo.db)
}

// Integration Tests

func TestSettingsRepository_Get_Success(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLSettingsRepository(db)

	_, err := db.Exec(`INSERT INTO VendorSettings (settingKey, settingValue) VALUES ('vendorId', 'v-77')`)
	require.NoError(t, err)

	value, err := repo.Get(context.Background(), "vendorId")
	require.NoError(t, err)
	assert.Equal(t, "v-77", value)
}

func TestSettingsRepository_Get_NotFound(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLSettingsRepository(db)

	value, err := repo.Get(context.Background(), "vendorId")
	assert.Error(t, err)
	assert.Empty(t, value)

	nfe, ok := apperrors.IsNotFoundError(err)
	assert.True(t, ok)
	assert.NotNil(t, nfe)
}

func TestSettingsRepository_Set_Overwrites(t *testing.T) {
	db := testutil.SetupTestDB(t)
	testutil.SetupTestTables(t, db)
	defer testutil.CleanupTestDB(t, db)

	repo := NewMySQLSettingsRepository(db)
	ctx := context.Background()

	require.NoError(t, repo.Set(ctx, "vendorId", "first"))
	require.NoError(t, repo.Set(ctx, "vendorId", "second"))

	value, err := repo.Get(ctx, "vendorId")
	require.NoError(t, err)
	assert.Equal(t, "second", value)
}
