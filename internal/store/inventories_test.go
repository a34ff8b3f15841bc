package store

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/zaloga/internal/db"
	"github.com/erazemk/zaloga/internal/model"
)

func mustCreateInventory(t *testing.T, database *sqlx.DB, name, description string, createdBy model.Creator) *model.Inventory {
	t.Helper()
	inv, err := CreateInventory(context.Background(), database, name, description, createdBy, time.Now())
	require.NoError(t, err)
	require.NotNil(t, inv)
	return inv
}

func mustCreateItem(t *testing.T, database *sqlx.DB, inventoryID int64, in model.ItemInput) *model.Item {
	t.Helper()
	item, err := CreateItem(context.Background(), database, NewItem{
		InventoryID: inventoryID,
		Input:       in,
		CreatedAt:   time.Now(),
	})
	require.NoError(t, err)
	require.NotNil(t, item)
	return item
}

func TestCreateAndGetInventory(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	u := mustCreateUser(t, database, "Ana", "Novak", "ana@example.com", false)

	inv := mustCreateInventory(t, database, "Office Supplies", "Pens and paper", model.CreatedBy(u.ID))
	assert.Equal(t, "Office Supplies", inv.Name)
	assert.True(t, inv.CreatedBy.Is(u.ID))
	assert.Zero(t, inv.ItemCount)

	got, err := GetInventory(ctx, database, inv.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "Pens and paper", got.Description)

	missing, err := GetInventory(ctx, database, 9999)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestInventoryTotals(t *testing.T) {
	database := db.NewTestDB(t)
	inv := mustCreateInventory(t, database, "Office", "", model.NoCreator)
	mustCreateItem(t, database, inv.ID, model.ItemInput{Name: "Pens", Quantity: 10, Price: 150})
	mustCreateItem(t, database, inv.ID, model.ItemInput{Name: "Paper", Quantity: 2, Price: 899})

	got, err := GetInventory(context.Background(), database, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, 2, got.ItemCount)
	assert.Equal(t, 12, got.TotalQuantity)
	assert.Equal(t, model.Cents(10*150+2*899), got.TotalValue)
}

func TestListInventoriesSearch(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	mustCreateInventory(t, database, "Office Supplies", "", model.NoCreator)
	mustCreateInventory(t, database, "Garage", "Tools and 100% cotton rags", model.NoCreator)

	all, err := ListInventories(ctx, database, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.Equal(t, "Garage", all[0].Name)

	byName, err := ListInventories(ctx, database, "office")
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, "Office Supplies", byName[0].Name)

	byDescription, err := ListInventories(ctx, database, "TOOLS")
	require.NoError(t, err)
	require.Len(t, byDescription, 1)
	assert.Equal(t, "Garage", byDescription[0].Name)

	literal, err := ListInventories(ctx, database, "100%")
	require.NoError(t, err)
	assert.Len(t, literal, 1)

	none, err := ListInventories(ctx, database, "zzz")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestListInventoriesSearchNonASCII(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	mustCreateInventory(t, database, "ÉCOLE supplies", "", model.NoCreator)
	mustCreateInventory(t, database, "Shed", "Ključi in ŽEBLJI", model.NoCreator)

	byName, err := ListInventories(ctx, database, "école")
	require.NoError(t, err)
	require.Len(t, byName, 1)
	assert.Equal(t, "ÉCOLE supplies", byName[0].Name)

	byDescription, err := ListInventories(ctx, database, "žeblji")
	require.NoError(t, err)
	require.Len(t, byDescription, 1)
	assert.Equal(t, "Shed", byDescription[0].Name)

	upper, err := ListInventories(ctx, database, "KLJUČI")
	require.NoError(t, err)
	assert.Len(t, upper, 1)
}

func TestUpdateInventoryKeepsCreator(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	u := mustCreateUser(t, database, "Ana", "Novak", "ana@example.com", false)
	inv := mustCreateInventory(t, database, "Office", "", model.CreatedBy(u.ID))

	n, err := UpdateInventory(ctx, database, inv.ID, "Office 2", "moved")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := GetInventory(ctx, database, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, "Office 2", got.Name)
	assert.True(t, got.CreatedBy.Is(u.ID))
	assert.True(t, got.CreatedAt.Equal(inv.CreatedAt))

	n, err = UpdateInventory(ctx, database, 9999, "x", "")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestDeleteInventoryCascades(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	inv := mustCreateInventory(t, database, "Office", "", model.NoCreator)
	other := mustCreateInventory(t, database, "Garage", "", model.NoCreator)
	for _, name := range []string{"A", "B", "C"} {
		mustCreateItem(t, database, inv.ID, model.ItemInput{Name: name, Quantity: 1})
	}
	mustCreateItem(t, database, other.ID, model.ItemInput{Name: "Hammer", Quantity: 1})

	ok, err := DeleteInventory(ctx, database, inv.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	items, total, err := ListItems(ctx, database, ItemQuery{})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	assert.Equal(t, "Hammer", items[0].Name)

	ok, err = DeleteInventory(ctx, database, inv.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDeletedCreatorBecomesNoCreator(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	u := mustCreateUser(t, database, "Ana", "Novak", "ana@example.com", false)
	inv := mustCreateInventory(t, database, "Office", "", model.CreatedBy(u.ID))

	_, err := database.ExecContext(ctx, `DELETE FROM users WHERE id = ?`, u.ID)
	require.NoError(t, err)

	got, err := GetInventory(ctx, database, inv.ID)
	require.NoError(t, err)
	assert.Equal(t, model.NoCreator, got.CreatedBy)
}
