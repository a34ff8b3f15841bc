package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/zaloga/internal/db"
	"github.com/erazemk/zaloga/internal/model"
)

func TestCreateItemAssignsCodes(t *testing.T) {
	database := db.NewTestDB(t)
	inv := mustCreateInventory(t, database, "Office", "", model.NoCreator)

	a := mustCreateItem(t, database, inv.ID, model.ItemInput{Name: "A"})
	b := mustCreateItem(t, database, inv.ID, model.ItemInput{Name: "B"})
	c := mustCreateItem(t, database, inv.ID, model.ItemInput{Name: "C"})
	assert.Equal(t, "ITEM001", a.Code)
	assert.Equal(t, "ITEM002", b.Code)
	assert.Equal(t, "ITEM003", c.Code)
	assert.Equal(t, "Office", c.InventoryName)

	// Codes are per inventory.
	other := mustCreateInventory(t, database, "Garage", "", model.NoCreator)
	first := mustCreateItem(t, database, other.ID, model.ItemInput{Name: "Hammer"})
	assert.Equal(t, "ITEM001", first.Code)
}

func TestCreateItemSkipsTakenCode(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	inv := mustCreateInventory(t, database, "Office", "", model.NoCreator)

	a := mustCreateItem(t, database, inv.ID, model.ItemInput{Name: "A"})
	mustCreateItem(t, database, inv.ID, model.ItemInput{Name: "B"})

	ok, err := DeleteItem(ctx, database, a.ID)
	require.NoError(t, err)
	require.True(t, ok)

	// One item left, so count+1 gives ITEM002, which B still holds.
	c := mustCreateItem(t, database, inv.ID, model.ItemInput{Name: "C"})
	assert.Equal(t, "ITEM003", c.Code)
}

func TestCreateItemMissingInventory(t *testing.T) {
	database := db.NewTestDB(t)

	item, err := CreateItem(context.Background(), database, NewItem{
		InventoryID: 42,
		Input:       model.ItemInput{Name: "Ghost"},
		CreatedAt:   time.Now(),
	})
	require.NoError(t, err)
	assert.Nil(t, item)
}

func TestListItemsFilters(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	office := mustCreateInventory(t, database, "Office", "", model.NoCreator)
	garage := mustCreateInventory(t, database, "Garage", "", model.NoCreator)
	mustCreateItem(t, database, office.ID, model.ItemInput{Name: "Pen", Quantity: 12, Price: 150, Category: "Writing", SKU: "PN-1"})
	mustCreateItem(t, database, office.ID, model.ItemInput{Name: "Pencil", Quantity: 0, Price: 50, Category: "Writing"})
	mustCreateItem(t, database, office.ID, model.ItemInput{Name: "Stapler", Quantity: 3, Price: 1299, Category: "Desk"})
	mustCreateItem(t, database, garage.ID, model.ItemInput{Name: "Hammer", Quantity: 9, Price: 2500, Description: "claw"})

	tests := []struct {
		name  string
		query ItemQuery
		want  []string
	}{
		{"all by name", ItemQuery{}, []string{"Hammer", "Pen", "Pencil", "Stapler"}},
		{"search pen", ItemQuery{Search: "pen"}, []string{"Pen", "Pencil"}},
		{"search zzz", ItemQuery{Search: "zzz"}, nil},
		{"search description", ItemQuery{Search: "CLAW"}, []string{"Hammer"}},
		{"search sku", ItemQuery{Search: "pn-"}, []string{"Pen"}},
		{"search inventory name unscoped", ItemQuery{Search: "garage"}, []string{"Hammer"}},
		{"search inventory name scoped", ItemQuery{InventoryID: garage.ID, Search: "garage"}, nil},
		{"category", ItemQuery{Category: "Writing"}, []string{"Pen", "Pencil"}},
		{"stock out", ItemQuery{Stock: model.StockOut}, []string{"Pencil"}},
		{"stock low", ItemQuery{Stock: model.StockLow}, []string{"Hammer", "Stapler"}},
		{"stock good", ItemQuery{Stock: model.StockGood}, []string{"Pen"}},
		{"scoped", ItemQuery{InventoryID: office.ID}, []string{"Pen", "Pencil", "Stapler"}},
		{"sort price", ItemQuery{Sort: model.SortPrice}, []string{"Pencil", "Pen", "Stapler", "Hammer"}},
		{"sort quantity", ItemQuery{Sort: model.SortQuantity}, []string{"Pencil", "Stapler", "Hammer", "Pen"}},
		{"sort date", ItemQuery{Sort: model.SortDate}, []string{"Hammer", "Stapler", "Pencil", "Pen"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, total, err := ListItems(ctx, database, tt.query)
			require.NoError(t, err)
			var names []string
			for _, it := range items {
				names = append(names, it.Name)
			}
			assert.Equal(t, tt.want, names)
			assert.Equal(t, len(tt.want), total)
		})
	}
}

func TestListItemsSearchNonASCII(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()

	kitchen := mustCreateInventory(t, database, "KUHINJA", "", model.NoCreator)
	mustCreateItem(t, database, kitchen.ID, model.ItemInput{Name: "ČAJ Green", Quantity: 4})
	mustCreateItem(t, database, kitchen.ID, model.ItemInput{Name: "Kava", Quantity: 2, Description: "Ground, ÜBER strong"})

	tests := []struct {
		name   string
		search string
		want   []string
	}{
		{"lower finds upper", "čaj", []string{"ČAJ Green"}},
		{"upper finds upper", "ČAJ", []string{"ČAJ Green"}},
		{"description", "über", []string{"Kava"}},
		{"inventory name", "kuhinja", []string{"Kava", "ČAJ Green"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, total, err := ListItems(ctx, database, ItemQuery{Search: tt.search})
			require.NoError(t, err)
			var names []string
			for _, it := range items {
				names = append(names, it.Name)
			}
			assert.Equal(t, tt.want, names)
			assert.Equal(t, len(tt.want), total)
		})
	}
}

func TestListItemsPaging(t *testing.T) {
	database := db.NewTestDB(t)
	inv := mustCreateInventory(t, database, "Office", "", model.NoCreator)
	for _, name := range []string{"A", "B", "C", "D", "E"} {
		mustCreateItem(t, database, inv.ID, model.ItemInput{Name: name})
	}

	items, total, err := ListItems(context.Background(), database, ItemQuery{Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, items, 2)
	assert.Equal(t, "C", items[0].Name)
	assert.Equal(t, "D", items[1].Name)
}

func TestListCategories(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	office := mustCreateInventory(t, database, "Office", "", model.NoCreator)
	garage := mustCreateInventory(t, database, "Garage", "", model.NoCreator)
	mustCreateItem(t, database, office.ID, model.ItemInput{Name: "Pen", Category: "Writing"})
	mustCreateItem(t, database, office.ID, model.ItemInput{Name: "Pencil", Category: "Writing"})
	mustCreateItem(t, database, office.ID, model.ItemInput{Name: "Clip"})
	mustCreateItem(t, database, garage.ID, model.ItemInput{Name: "Hammer", Category: "Tools"})

	all, err := ListCategories(ctx, database, 0)
	require.NoError(t, err)
	assert.Equal(t, []string{"Tools", "Writing"}, all)

	scoped, err := ListCategories(ctx, database, office.ID)
	require.NoError(t, err)
	assert.Equal(t, []string{"Writing"}, scoped)
}

func TestUpdateItemKeepsIdentity(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	inv := mustCreateInventory(t, database, "Office", "", model.NoCreator)
	item := mustCreateItem(t, database, inv.ID, model.ItemInput{Name: "Pen", Quantity: 1, Price: 100})

	n, err := UpdateItem(ctx, database, item.ID, model.ItemInput{Name: "Blue pen", Quantity: 7, Price: 120, SKU: "BP"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	got, err := GetItem(ctx, database, item.ID)
	require.NoError(t, err)
	assert.Equal(t, "Blue pen", got.Name)
	assert.Equal(t, 7, got.Quantity)
	assert.Equal(t, model.Cents(120), got.Price)
	assert.Equal(t, item.Code, got.Code)
	assert.Equal(t, item.InventoryID, got.InventoryID)
	assert.True(t, got.CreatedAt.Equal(item.CreatedAt))
}

func TestItemPhoto(t *testing.T) {
	database := db.NewTestDB(t)
	ctx := context.Background()
	inv := mustCreateInventory(t, database, "Office", "", model.NoCreator)
	item := mustCreateItem(t, database, inv.ID, model.ItemInput{Name: "Pen"})
	assert.False(t, item.HasPhoto)

	data, _, err := GetItemPhoto(ctx, database, item.ID)
	require.NoError(t, err)
	assert.Nil(t, data)

	require.NoError(t, SetItemPhoto(ctx, database, item.ID, []byte{1, 2, 3}, "image/jpeg"))
	require.NoError(t, SetItemPhoto(ctx, database, item.ID, []byte{4, 5}, "image/jpeg"))

	data, mime, err := GetItemPhoto(ctx, database, item.ID)
	require.NoError(t, err)
	assert.Equal(t, []byte{4, 5}, data)
	assert.Equal(t, "image/jpeg", mime)

	got, err := GetItem(ctx, database, item.ID)
	require.NoError(t, err)
	assert.True(t, got.HasPhoto)
}
