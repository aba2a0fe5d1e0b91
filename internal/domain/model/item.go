package model

import "github.com/shopspring/decimal"

// Item is a catalog entry customers can order. Orders snapshot the catalog
// price at creation time, so later catalog changes never reprice them.
type Item struct {
	ID    int64
	Name  string
	Price decimal.Decimal
}
