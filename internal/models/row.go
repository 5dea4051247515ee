package models

import "github.com/shopspring/decimal"

// WindowStats are the metrics the marketplace reports per trailing window.
type WindowStats struct {
	AveragePrice decimal.Decimal `json:"averagePrice"`
	Change       decimal.Decimal `json:"change"`
	Sales        decimal.Decimal `json:"sales"`
	Volume       decimal.Decimal `json:"volume"`
}

// Row is one tracked collection's statistics snapshot as shown in the table.
//
// Name is the row identifier: it keys selection and must be unique within a
// row collection. AveragePrice, Change, Sales and Volume are display fields
// copied from one of OneDay, SevenDay or ThirtyDay by the window remap.
type Row struct {
	Name     string `json:"name"`
	ImageURL string `json:"imageUrl,omitempty"`

	TotalSupply decimal.Decimal `json:"totalSupply"`
	FloorPrice  decimal.Decimal `json:"floorPrice"`
	MarketCap   decimal.Decimal `json:"marketCap"`
	NumOwners   decimal.Decimal `json:"numOwners"`

	AveragePrice decimal.Decimal `json:"averagePrice"`
	Change       decimal.Decimal `json:"change"`
	Sales        decimal.Decimal `json:"sales"`
	Volume       decimal.Decimal `json:"volume"`

	OneDay    WindowStats `json:"oneDay"`
	SevenDay  WindowStats `json:"sevenDay"`
	ThirtyDay WindowStats `json:"thirtyDay"`
}

// WindowStats returns the row's metrics for w. Unknown windows fall back to
// the thirty-day values.
func (r Row) WindowStats(w Window) WindowStats {
	switch w {
	case WindowOneDay:
		return r.OneDay
	case WindowSevenDay:
		return r.SevenDay
	default:
		return r.ThirtyDay
	}
}

// NewRow builds a Row from a decoded collection. Display fields start out
// populated from the one-day window.
func NewRow(c *Collection) Row {
	s := c.Stats

	supply := s.TotalSupply
	if supply.IsZero() {
		supply = s.Count
	}

	row := Row{
		Name:        c.Name,
		ImageURL:    c.ImageURL,
		TotalSupply: supply,
		FloorPrice:  s.FloorPrice,
		MarketCap:   s.MarketCap,
		NumOwners:   s.NumOwners,
		OneDay: WindowStats{
			AveragePrice: s.OneDayAveragePrice,
			Change:       s.OneDayChange,
			Sales:        s.OneDaySales,
			Volume:       s.OneDayVolume,
		},
		SevenDay: WindowStats{
			AveragePrice: s.SevenDayAveragePrice,
			Change:       s.SevenDayChange,
			Sales:        s.SevenDaySales,
			Volume:       s.SevenDayVolume,
		},
		ThirtyDay: WindowStats{
			AveragePrice: s.ThirtyDayAveragePrice,
			Change:       s.ThirtyDayChange,
			Sales:        s.ThirtyDaySales,
			Volume:       s.ThirtyDayVolume,
		},
	}
	row.AveragePrice = row.OneDay.AveragePrice
	row.Change = row.OneDay.Change
	row.Sales = row.OneDay.Sales
	row.Volume = row.OneDay.Volume
	return row
}
