// Package table holds the tabular view controller for collection stats:
// sorting, selection, pagination and time-window remapping over a row
// collection that fills in as fetches complete.
//
// Every transition is a pure function of its inputs. Nothing in this package
// mutates a slice it was handed.
package table

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/cryptogamefiverse/nftdash/internal/models"
)

// SortKey names a sortable row field.
type SortKey string

const (
	KeyName         SortKey = "name"
	KeyTotalSupply  SortKey = "totalSupply"
	KeyFloorPrice   SortKey = "floorPrice"
	KeyMarketCap    SortKey = "marketCap"
	KeyNumOwners    SortKey = "numOwners"
	KeyAveragePrice SortKey = "averagePrice"
	KeyChange       SortKey = "change"
	KeySales        SortKey = "sales"
	KeyVolume       SortKey = "volume"
)

// SortKeys lists the sortable keys in column order.
var SortKeys = []SortKey{
	KeyName,
	KeyTotalSupply,
	KeyFloorPrice,
	KeyMarketCap,
	KeyNumOwners,
	KeyAveragePrice,
	KeyChange,
	KeySales,
	KeyVolume,
}

// ErrUnknownSortKey is returned when a sort is requested on a field the table doesn't have.
var ErrUnknownSortKey = errors.New("unknown sort key")

// ParseSortKey validates a sort key name.
func ParseSortKey(s string) (SortKey, error) {
	key := SortKey(s)
	if !slices.Contains(SortKeys, key) {
		return "", fmt.Errorf("%w: %q", ErrUnknownSortKey, s)
	}
	return key, nil
}

// Direction is the sort direction.
type Direction string

const (
	Ascending  Direction = "asc"
	Descending Direction = "desc"
)

// ParseDirection accepts "asc"/"ascending" and "desc"/"descending".
func ParseDirection(s string) (Direction, error) {
	switch strings.ToLower(s) {
	case "asc", "ascending":
		return Ascending, nil
	case "desc", "descending":
		return Descending, nil
	}
	return "", fmt.Errorf("unknown sort direction %q (want asc or desc)", s)
}

// SortSpec is the single active sort.
type SortSpec struct {
	Key       SortKey   `json:"key"`
	Direction Direction `json:"direction"`
}

// DefaultSort orders by volume, ascending.
var DefaultSort = SortSpec{Key: KeyVolume, Direction: Ascending}

// Next returns the sort spec after a header click on key: a second click on
// the active ascending key flips it to descending, anything else sorts key
// ascending.
func (s SortSpec) Next(key SortKey) SortSpec {
	if s.Key == key && s.Direction == Ascending {
		return SortSpec{Key: key, Direction: Descending}
	}
	return SortSpec{Key: key, Direction: Ascending}
}

// Comparator is a three-way row comparison: negative, zero or positive.
type Comparator func(a, b models.Row) int

// Compare orders a and b ascending by key. Numeric fields compare by value,
// name compares lexicographically. Unknown keys compare equal.
func Compare(a, b models.Row, key SortKey) int {
	if key == KeyName {
		return strings.Compare(a.Name, b.Name)
	}
	av, aok := metric(a, key)
	bv, bok := metric(b, key)
	if !aok || !bok {
		return 0
	}
	return av.Cmp(bv)
}

func metric(r models.Row, key SortKey) (decimal.Decimal, bool) {
	switch key {
	case KeyTotalSupply:
		return r.TotalSupply, true
	case KeyFloorPrice:
		return r.FloorPrice, true
	case KeyMarketCap:
		return r.MarketCap, true
	case KeyNumOwners:
		return r.NumOwners, true
	case KeyAveragePrice:
		return r.AveragePrice, true
	case KeyChange:
		return r.Change, true
	case KeySales:
		return r.Sales, true
	case KeyVolume:
		return r.Volume, true
	}
	return decimal.Decimal{}, false
}

// ComparatorFor builds the comparator for spec. Descending is the ascending
// comparator with its sign inverted, so ties are the same set either way.
func ComparatorFor(spec SortSpec) Comparator {
	key := spec.Key
	asc := func(a, b models.Row) int { return Compare(a, b, key) }
	if spec.Direction == Descending {
		return func(a, b models.Row) int { return -asc(a, b) }
	}
	return asc
}

// StableSort returns a sorted copy of rows. Rows that compare equal keep their
// input order: each row is paired with its original index and the index breaks
// ties, so the result does not depend on the stability of the underlying sort.
func StableSort(rows []models.Row, cmp Comparator) []models.Row {
	type indexed struct {
		row   models.Row
		index int
	}

	decorated := make([]indexed, len(rows))
	for i, r := range rows {
		decorated[i] = indexed{row: r, index: i}
	}

	slices.SortFunc(decorated, func(a, b indexed) int {
		if order := cmp(a.row, b.row); order != 0 {
			return order
		}
		return a.index - b.index
	})

	sorted := make([]models.Row, len(decorated))
	for i, d := range decorated {
		sorted[i] = d.row
	}
	return sorted
}

// Sort is StableSort with the comparator for spec.
func Sort(rows []models.Row, spec SortSpec) []models.Row {
	return StableSort(rows, ComparatorFor(spec))
}
