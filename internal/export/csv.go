// Package export writes the sorted row collection as CSV to a local file,
// an S3 object, or an Azure blob.
package export

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"

	"github.com/cryptogamefiverse/nftdash/internal/models"
)

// Header returns the CSV column names; windowed columns carry the window label.
func Header(w models.Window) []string {
	label := w.Label()
	return []string{
		"name",
		"image_url",
		"total_supply",
		"floor_price",
		"market_cap",
		"num_owners",
		"average_price_" + label,
		"change_" + label,
		"sales_" + label,
		"volume_" + label,
	}
}

// WriteCSV writes rows with their display fields, which the caller has
// already remapped to window w.
func WriteCSV(out io.Writer, rows []models.Row, w models.Window) error {
	cw := csv.NewWriter(out)
	if err := cw.Write(Header(w)); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}
	for _, r := range rows {
		record := []string{
			r.Name,
			r.ImageURL,
			r.TotalSupply.String(),
			r.FloorPrice.String(),
			r.MarketCap.String(),
			r.NumOwners.String(),
			r.AveragePrice.String(),
			r.Change.String(),
			r.Sales.String(),
			r.Volume.String(),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write row %s: %w", r.Name, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// EncodeCSV renders rows to a byte slice for upload sinks.
func EncodeCSV(rows []models.Row, w models.Window) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteCSV(&buf, rows, w); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
