package models

import "github.com/shopspring/decimal"

// Product товар каталога. Цена приходит строкой, чтобы не терять точность в JSON.
type Product struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}
