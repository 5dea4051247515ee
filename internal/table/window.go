package table

import "github.com/cryptogamefiverse/nftdash/internal/models"

// RemapWindow returns copies of rows whose AveragePrice, Change, Sales and
// Volume are taken from window w. Any window other than one_day or seven_day
// uses the thirty-day values.
func RemapWindow(rows []models.Row, w models.Window) []models.Row {
	remapped := make([]models.Row, len(rows))
	for i, r := range rows {
		stats := r.WindowStats(w)
		r.AveragePrice = stats.AveragePrice
		r.Change = stats.Change
		r.Sales = stats.Sales
		r.Volume = stats.Volume
		remapped[i] = r
	}
	return remapped
}
