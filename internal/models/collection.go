package models

import "github.com/shopspring/decimal"

// CollectionResponse is the body of GET /api/v1/collection/{slug}.
type CollectionResponse struct {
	Collection *Collection `json:"collection"`
}

// Collection is the subset of a marketplace collection consumed by the dashboard.
// Unknown fields in the response are ignored by the decoder.
type Collection struct {
	Name     string          `json:"name"`
	Slug     string          `json:"slug,omitempty"`
	ImageURL string          `json:"image_url"`
	Stats    CollectionStats `json:"stats"`
}

// CollectionStats holds the statistics block of a collection.
// The marketplace sends null for metrics it has no data for; those decode to zero.
type CollectionStats struct {
	Count       decimal.Decimal `json:"count"`
	TotalSupply decimal.Decimal `json:"total_supply"`
	FloorPrice  decimal.Decimal `json:"floor_price"`
	MarketCap   decimal.Decimal `json:"market_cap"`
	NumOwners   decimal.Decimal `json:"num_owners"`

	OneDayAveragePrice decimal.Decimal `json:"one_day_average_price"`
	OneDayChange       decimal.Decimal `json:"one_day_change"`
	OneDaySales        decimal.Decimal `json:"one_day_sales"`
	OneDayVolume       decimal.Decimal `json:"one_day_volume"`

	SevenDayAveragePrice decimal.Decimal `json:"seven_day_average_price"`
	SevenDayChange       decimal.Decimal `json:"seven_day_change"`
	SevenDaySales        decimal.Decimal `json:"seven_day_sales"`
	SevenDayVolume       decimal.Decimal `json:"seven_day_volume"`

	ThirtyDayAveragePrice decimal.Decimal `json:"thirty_day_average_price"`
	ThirtyDayChange       decimal.Decimal `json:"thirty_day_change"`
	ThirtyDaySales        decimal.Decimal `json:"thirty_day_sales"`
	ThirtyDayVolume       decimal.Decimal `json:"thirty_day_volume"`
}
