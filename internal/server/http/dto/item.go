package dto

import "github.com/shopspring/decimal"

// ItemResponse is a catalog entry as returned by the items endpoints.
type ItemResponse struct {
	ID    int64           `json:"id"`
	Name  string          `json:"name"`
	Price decimal.Decimal `json:"price"`
}
