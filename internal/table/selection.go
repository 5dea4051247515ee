package table

import (
	"slices"

	"github.com/cryptogamefiverse/nftdash/internal/models"
)

// Selection is the ordered list of selected row names. Order is insertion
// order; it carries no meaning beyond being stable across toggles.
type Selection []string

// Contains reports whether id is selected.
func (s Selection) Contains(id string) bool {
	return slices.Contains(s, id)
}

// Toggle returns a new selection with id appended if absent, or with that one
// occurrence removed if present. The receiver is not modified.
func (s Selection) Toggle(id string) Selection {
	i := slices.Index(s, id)
	if i < 0 {
		next := make(Selection, len(s), len(s)+1)
		copy(next, s)
		return append(next, id)
	}

	next := make(Selection, 0, len(s)-1)
	next = append(next, s[:i]...)
	return append(next, s[i+1:]...)
}

// SelectAll selects every loaded row, in row collection order.
func SelectAll(rows []models.Row) Selection {
	all := make(Selection, len(rows))
	for i, r := range rows {
		all[i] = r.Name
	}
	return all
}

// Rows returns the rows whose names are selected, in row order.
func (s Selection) Rows(rows []models.Row) []models.Row {
	picked := make([]models.Row, 0, len(s))
	for _, r := range rows {
		if s.Contains(r.Name) {
			picked = append(picked, r)
		}
	}
	return picked
}
