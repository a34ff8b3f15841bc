package model

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestItemCode(t *testing.T) {
	assert.Equal(t, "ITEM001", ItemCode(1))
	assert.Equal(t, "ITEM003", ItemCode(3))
	assert.Equal(t, "ITEM042", ItemCode(42))
	assert.Equal(t, "ITEM1000", ItemCode(1000))
}

func TestItemStockFlags(t *testing.T) {
	tests := []struct {
		quantity   int
		lowStock   bool
		outOfStock bool
	}{
		{0, true, true},
		{5, true, false},
		{6, false, false},
		{9, false, false},
		{12, false, false},
	}
	for _, tt := range tests {
		item := Item{Quantity: tt.quantity}
		assert.Equal(t, tt.lowStock, item.IsLowStock(), "IsLowStock(%d)", tt.quantity)
		assert.Equal(t, tt.outOfStock, item.IsOutOfStock(), "IsOutOfStock(%d)", tt.quantity)
	}
}

func TestItemTotalValue(t *testing.T) {
	item := Item{Quantity: 3, Price: 2999}
	assert.Equal(t, Cents(8997), item.TotalValue())
	assert.Equal(t, "89.97", item.TotalValue().String())
}

func TestParseCents(t *testing.T) {
	tests := []struct {
		in      string
		want    Cents
		wantErr bool
	}{
		{"29.99", 2999, false},
		{"8", 800, false},
		{"0.5", 50, false},
		{".75", 75, false},
		{" 149.99 ", 14999, false},
		{"-1.25", -125, false},
		{"", 0, true},
		{"abc", 0, true},
		{"1.999", 0, true},
		{"1.a", 0, true},
		{"1.+5", 0, true},
		{"1.-5", 0, true},
		{"+1.05", 0, true},
		{"--1", 0, true},
		{"1 .5", 0, true},
		{".", 0, true},
		{"-", 0, true},
		{"3.", 300, false},
	}
	for _, tt := range tests {
		got, err := ParseCents(tt.in)
		if tt.wantErr {
			assert.Error(t, err, "ParseCents(%q)", tt.in)
			continue
		}
		require.NoError(t, err, "ParseCents(%q)", tt.in)
		assert.Equal(t, tt.want, got, "ParseCents(%q)", tt.in)
	}
}

func TestCentsJSON(t *testing.T) {
	data, err := json.Marshal(Item{Price: 899})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"price":8.99`)

	var in ItemInput
	require.NoError(t, json.Unmarshal([]byte(`{"name":"Pens","price":"12.50","quantity":3}`), &in))
	assert.Equal(t, Cents(1250), in.Price)

	require.NoError(t, json.Unmarshal([]byte(`{"price":7.1}`), &in))
	assert.Equal(t, Cents(710), in.Price)
}

func TestItemInputValidate(t *testing.T) {
	ok := ItemInput{Name: "Stapler", Quantity: 0, Price: 0}
	assert.NoError(t, ok.Validate())

	bad := ItemInput{Name: "", Quantity: -1, Price: -5, SKU: strings.Repeat("x", 51)}
	err := bad.Validate()
	var errs ValidationErrors
	require.ErrorAs(t, err, &errs)
	assert.Equal(t, "Item name is required", errs["Name"])
	assert.Equal(t, "Quantity must be zero or greater", errs["Quantity"])
	assert.Equal(t, "Price must be zero or greater", errs["Price"])
	assert.Equal(t, "SKU cannot exceed 50 characters", errs["SKU"])
}

func TestInventoryInputValidate(t *testing.T) {
	in := InventoryInput{Name: "  Office Supplies  ", Description: " pens "}
	in.Normalize()
	assert.Equal(t, "Office Supplies", in.Name)
	assert.NoError(t, in.Validate())

	long := InventoryInput{Name: strings.Repeat("n", 101), Description: strings.Repeat("d", 501)}
	var errs ValidationErrors
	require.ErrorAs(t, long.Validate(), &errs)
	assert.Equal(t, "Inventory name cannot exceed 100 characters", errs["Name"])
	assert.Equal(t, "Description cannot exceed 500 characters", errs["Description"])
}

func TestParseItemFilterEnums(t *testing.T) {
	assert.Equal(t, StockLow, ParseStockLevel("low"))
	assert.Equal(t, StockOut, ParseStockLevel(" OUT "))
	assert.Equal(t, StockGood, ParseStockLevel("good"))
	assert.Equal(t, StockAny, ParseStockLevel("plenty"))
	assert.Equal(t, StockAny, ParseStockLevel(""))

	assert.Equal(t, SortQuantity, ParseItemSort("quantity"))
	assert.Equal(t, SortPrice, ParseItemSort("Price"))
	assert.Equal(t, SortDate, ParseItemSort("date"))
	assert.Equal(t, SortName, ParseItemSort(""))
	assert.Equal(t, SortName, ParseItemSort("color"))
}
