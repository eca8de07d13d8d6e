package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceObservation is a single recorded price for one product/market pair.
// Observations are immutable; the analytics engine only reads them.
type PriceObservation struct {
	Date  time.Time `json:"date"`
	Price float64   `json:"price"`
}

// PriceRecord is the persisted form of an observation as stored in the
// price_records table. Prices are stored as numeric and scanned into
// decimal to avoid float drift at the storage boundary.
type PriceRecord struct {
	ID         int64           `json:"id"`
	ProductID  int64           `json:"product_id"`
	MarketID   int64           `json:"market_id"`
	Price      decimal.Decimal `json:"price"`
	RecordedAt time.Time       `json:"recorded_at"`
	CreatedAt  time.Time       `json:"created_at"`
}

// Observation converts a stored record into the engine's value type.
func (r *PriceRecord) Observation() PriceObservation {
	price, _ := r.Price.Float64()
	return PriceObservation{
		Date:  r.RecordedAt,
		Price: price,
	}
}
