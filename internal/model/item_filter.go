package model

import "strings"

// StockLevel narrows item listings by quantity.
type StockLevel string

const (
	StockAny  StockLevel = ""
	StockLow  StockLevel = "low"  // 0 < quantity < ListLowStockBelow
	StockOut  StockLevel = "out"  // quantity == 0
	StockGood StockLevel = "good" // quantity >= ListLowStockBelow
)

// ParseStockLevel maps a query value to a StockLevel. Unknown values mean
// no stock filter.
func ParseStockLevel(s string) StockLevel {
	switch l := StockLevel(strings.ToLower(strings.TrimSpace(s))); l {
	case StockLow, StockOut, StockGood:
		return l
	default:
		return StockAny
	}
}

// ItemSort is the ordering of an item listing.
type ItemSort string

const (
	SortName     ItemSort = "name"
	SortQuantity ItemSort = "quantity"
	SortPrice    ItemSort = "price"
	SortDate     ItemSort = "date"
)

// ParseItemSort maps a query value to an ItemSort, defaulting to SortName.
func ParseItemSort(s string) ItemSort {
	switch k := ItemSort(strings.ToLower(strings.TrimSpace(s))); k {
	case SortQuantity, SortPrice, SortDate:
		return k
	default:
		return SortName
	}
}
