package catalog

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/balcaohq/balcao-backend/pkg/db/models"
	"github.com/balcaohq/balcao-backend/pkg/enums"
)

func setupCatalogTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	for _, ddl := range []string{
		`CREATE TABLE item_groups (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL UNIQUE,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE items (
  id TEXT PRIMARY KEY,
  group_id TEXT,
  internal_code TEXT NOT NULL,
  barcode TEXT,
  name TEXT NOT NULL,
  unit_price TEXT NOT NULL,
  cost_price TEXT NOT NULL DEFAULT '0',
  unit TEXT NOT NULL DEFAULT 'UN',
  kind TEXT NOT NULL DEFAULT 'principal',
  is_active INTEGER NOT NULL DEFAULT 1,
  image_url TEXT,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE complement_quotas (
  id TEXT PRIMARY KEY,
  item_id TEXT NOT NULL UNIQUE,
  free_limit INTEGER NOT NULL DEFAULT 0,
  created_at DATETIME,
  updated_at DATETIME
);`,
		`CREATE TABLE complement_quota_items (
  id TEXT PRIMARY KEY,
  quota_id TEXT NOT NULL,
  complement_id TEXT NOT NULL,
  created_at DATETIME
);`,
	} {
		require.NoError(t, db.Exec(ddl).Error)
	}
	return db
}

func seedItem(t *testing.T, repo Repository, name string, kind enums.ItemKind, price string) *models.Item {
	t.Helper()
	item, err := repo.CreateItem(context.Background(), &models.Item{
		InternalCode: "C-" + name,
		Name:         name,
		UnitPrice:    decimal.RequireFromString(price),
		Unit:         "UN",
		Kind:         kind,
		IsActive:     true,
	})
	require.NoError(t, err)
	return item
}

func TestSellableItemSnapshot(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)
	svc, err := NewService(repo)
	require.NoError(t, err)
	ctx := context.Background()

	item := seedItem(t, repo, "burger", enums.ItemKindPrincipal, "15.00")

	snap, err := svc.GetSellableItem(ctx, item.ID)
	require.NoError(t, err)
	assert.Equal(t, item.ID, snap.ItemID)
	assert.Equal(t, "burger", snap.Name)
	assert.True(t, snap.UnitPrice.Equal(decimal.RequireFromString("15.00")))
}

func TestSellableItemRejectsInactiveAndMissing(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)
	svc, err := NewService(repo)
	require.NoError(t, err)
	ctx := context.Background()

	item := seedItem(t, repo, "retired", enums.ItemKindPrincipal, "9.00")
	require.NoError(t, svc.DeactivateItem(ctx, item.ID))

	_, err = svc.GetSellableItem(ctx, item.ID)
	assert.Error(t, err)

	_, err = svc.GetSellableItem(ctx, uuid.New())
	assert.Error(t, err)
}

func TestSetQuotaAndSnapshot(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)
	svc, err := NewService(repo)
	require.NoError(t, err)
	ctx := context.Background()

	principal := seedItem(t, repo, "acai", enums.ItemKindPrincipal, "22.00")
	granola := seedItem(t, repo, "granola", enums.ItemKindComplement, "3.00")
	honey := seedItem(t, repo, "honey", enums.ItemKindComplement, "2.00")

	quota, err := svc.SetQuota(ctx, principal.ID, 5, []uuid.UUID{granola.ID, honey.ID})
	require.NoError(t, err)
	assert.Equal(t, 5, quota.FreeLimit)
	assert.Len(t, quota.Eligible, 2)

	snap, err := svc.GetQuotaForPrincipal(ctx, principal.ID)
	require.NoError(t, err)
	require.NotNil(t, snap)
	assert.Equal(t, 5, snap.FreeLimit)
	assert.True(t, snap.Allows(granola.ID))
	assert.True(t, snap.Allows(honey.ID))
	assert.False(t, snap.Allows(uuid.New()))

	// replacing shrinks the eligibility list
	quota, err = svc.SetQuota(ctx, principal.ID, 2, []uuid.UUID{honey.ID})
	require.NoError(t, err)
	assert.Equal(t, 2, quota.FreeLimit)
	require.Len(t, quota.Eligible, 1)
	assert.Equal(t, honey.ID, quota.Eligible[0].ComplementID)
}

func TestSetQuotaValidation(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)
	svc, err := NewService(repo)
	require.NoError(t, err)
	ctx := context.Background()

	principal := seedItem(t, repo, "combo", enums.ItemKindPrincipal, "20.00")
	other := seedItem(t, repo, "soda", enums.ItemKindPrincipal, "5.00")
	complement := seedItem(t, repo, "fries", enums.ItemKindComplement, "6.00")

	_, err = svc.SetQuota(ctx, complement.ID, 1, nil)
	assert.Error(t, err, "complements cannot own a quota")

	_, err = svc.SetQuota(ctx, principal.ID, 1, []uuid.UUID{other.ID})
	assert.Error(t, err, "principals are not eligible complements")

	_, err = svc.SetQuota(ctx, principal.ID, -1, nil)
	assert.Error(t, err)
}

func TestQuotaForPrincipalAbsent(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)
	svc, err := NewService(repo)
	require.NoError(t, err)

	item := seedItem(t, repo, "plain", enums.ItemKindPrincipal, "4.00")

	snap, err := svc.GetQuotaForPrincipal(context.Background(), item.ID)
	require.NoError(t, err)
	assert.Nil(t, snap)
}

// The quota models must resolve to the table names the migration creates;
// gorm's default pluralization gets "quota" wrong without the override.
func TestQuotaModelsResolveMigratedTableNames(t *testing.T) {
	db := setupCatalogTestDB(t)

	var count int64
	require.NoError(t, db.Model(&models.ComplementQuota{}).Count(&count).Error)
	require.NoError(t, db.Model(&models.ComplementQuotaItem{}).Count(&count).Error)
}

func TestListItemsFilters(t *testing.T) {
	db := setupCatalogTestDB(t)
	repo := NewRepository(db)
	svc, err := NewService(repo)
	require.NoError(t, err)
	ctx := context.Background()

	group, err := svc.CreateGroup(ctx, "drinks")
	require.NoError(t, err)

	soda := seedItem(t, repo, "soda", enums.ItemKindPrincipal, "5.00")
	_, err = svc.UpdateItem(ctx, soda.ID, UpdateItemInput{
		GroupID:      &group.ID,
		InternalCode: soda.InternalCode,
		Name:         soda.Name,
		UnitPrice:    soda.UnitPrice,
		Unit:         soda.Unit,
		Kind:         soda.Kind,
		IsActive:     true,
	})
	require.NoError(t, err)

	retired := seedItem(t, repo, "old juice", enums.ItemKindPrincipal, "3.00")
	require.NoError(t, svc.DeactivateItem(ctx, retired.ID))

	active, err := svc.ListItems(ctx, ItemFilters{OnlyActive: true})
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, "soda", active[0].Name)

	grouped, err := svc.ListItems(ctx, ItemFilters{GroupID: &group.ID})
	require.NoError(t, err)
	require.Len(t, grouped, 1)
	assert.Equal(t, soda.ID, grouped[0].ID)

	searched, err := svc.ListItems(ctx, ItemFilters{Search: "juice"})
	require.NoError(t, err)
	assert.Len(t, searched, 1)
}
