package table

import "github.com/cryptogamefiverse/nftdash/internal/models"

// VisibleRow is a row on the current page together with its checkbox state.
type VisibleRow struct {
	models.Row
	Selected bool `json:"selected"`
}

// Snapshot is everything a presentation layer needs to render the table.
type Snapshot struct {
	Rows     []VisibleRow  `json:"rows"`
	Total    int           `json:"total"`
	Sort     SortSpec      `json:"sort"`
	Page     Pagination    `json:"page"`
	Pages    int           `json:"pages"`
	Selected Selection     `json:"selected"`
	Dense    bool          `json:"dense"`
	Window   models.Window `json:"window"`

	// Header checkbox: checked when every loaded row is selected,
	// indeterminate when only some are.
	AllSelected   bool `json:"allSelected"`
	Indeterminate bool `json:"indeterminate"`

	Placeholders      int `json:"placeholders"`
	PlaceholderHeight int `json:"placeholderHeight"`
}

// Sorted returns the whole row collection in the active sort order.
func (v View) Sorted() []models.Row {
	return Sort(v.Rows, v.Sort)
}

// Snapshot derives the visible page from the current state.
func (v View) Snapshot() Snapshot {
	total := len(v.Rows)
	page := PageSlice(v.Sorted(), v.Page)

	visible := make([]VisibleRow, len(page))
	for i, r := range page {
		visible[i] = VisibleRow{Row: r, Selected: v.Selected.Contains(r.Name)}
	}

	selected := make(Selection, len(v.Selected))
	copy(selected, v.Selected)

	// ids that are not loaded rows do not count toward the header state
	n := 0
	for _, r := range v.Rows {
		if v.Selected.Contains(r.Name) {
			n++
		}
	}
	placeholders := Placeholders(total, v.Page)

	return Snapshot{
		Rows:              visible,
		Total:             total,
		Sort:              v.Sort,
		Page:              v.Page,
		Pages:             PageCount(total, v.Page.PageSize),
		Selected:          selected,
		Dense:             v.Dense,
		Window:            v.Window,
		AllSelected:       total > 0 && n == total,
		Indeterminate:     n > 0 && n < total,
		Placeholders:      placeholders,
		PlaceholderHeight: placeholders * RowHeight(v.Dense),
	}
}
