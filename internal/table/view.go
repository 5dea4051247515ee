package table

import (
	"errors"
	"fmt"

	"github.com/cryptogamefiverse/nftdash/internal/models"
)

// View is the controller state for one table. It is a value type: every
// intent method returns the next View and leaves the receiver untouched.
//
// Rows holds the row collection in arrival order with display fields already
// remapped to Window. Sorting and paging happen when a Snapshot is derived.
type View struct {
	Rows     []models.Row
	Sort     SortSpec
	Page     Pagination
	Selected Selection
	Dense    bool
	Window   models.Window
}

// Option adjusts the initial View.
type Option func(*View)

// WithSort sets the initial sort.
func WithSort(spec SortSpec) Option {
	return func(v *View) { v.Sort = spec }
}

// WithPageSize sets the initial page size. Invalid sizes are ignored.
func WithPageSize(size int) Option {
	return func(v *View) {
		if ValidatePageSize(size) == nil {
			v.Page.PageSize = size
		}
	}
}

// WithDense sets the initial density.
func WithDense(dense bool) Option {
	return func(v *View) { v.Dense = dense }
}

// WithWindow sets the initial time window.
func WithWindow(w models.Window) Option {
	return func(v *View) { v.Window = w }
}

// NewView returns an empty table: volume ascending, page 0 of 10 rows,
// nothing selected, normal density, one-day window.
func NewView(opts ...Option) View {
	v := View{
		Sort:     DefaultSort,
		Page:     Pagination{PageIndex: 0, PageSize: DefaultPageSize},
		Selected: Selection{},
		Window:   models.WindowOneDay,
	}
	for _, opt := range opts {
		opt(&v)
	}
	return v
}

// SetRows replaces the row collection with a freshly published batch.
// The batch is remapped to the active window and the page index is reset
// if the new collection no longer reaches it. Selection is kept as is.
func (v View) SetRows(rows []models.Row) View {
	v.Rows = RemapWindow(rows, v.Window)
	v.Page = v.Page.clamp(len(v.Rows))
	return v
}

// RequestSort handles a header click on key.
func (v View) RequestSort(key SortKey) (View, error) {
	if _, err := ParseSortKey(string(key)); err != nil {
		return v, err
	}
	v.Sort = v.Sort.Next(key)
	return v, nil
}

// ToggleSelectAll selects every loaded row when checked, otherwise clears
// the selection.
func (v View) ToggleSelectAll(checked bool) View {
	if checked {
		v.Selected = SelectAll(v.Rows)
	} else {
		v.Selected = Selection{}
	}
	return v
}

// ToggleSelectOne flips the selection of one row.
func (v View) ToggleSelectOne(id string) View {
	v.Selected = v.Selected.Toggle(id)
	return v
}

// ChangePage moves to page index, clamped to the existing pages.
func (v View) ChangePage(index int) View {
	last := PageCount(len(v.Rows), v.Page.PageSize) - 1
	v.Page.PageIndex = min(max(index, 0), last)
	return v
}

// ChangePageSize switches rows per page and returns to the first page.
func (v View) ChangePageSize(size int) (View, error) {
	if err := ValidatePageSize(size); err != nil {
		return v, err
	}
	v.Page = Pagination{PageIndex: 0, PageSize: size}
	return v, nil
}

// ChangeDensity sets the compact-rows flag.
func (v View) ChangeDensity(dense bool) View {
	v.Dense = dense
	return v
}

// ChangeTimeWindow switches the window and rewrites the display fields of
// every row from it.
func (v View) ChangeTimeWindow(w models.Window) View {
	v.Window = w
	v.Rows = RemapWindow(v.Rows, w)
	return v
}

// Intent is a serialisable user intent, used by shells that receive intents
// over a wire rather than as direct calls.
type Intent struct {
	Kind    IntentKind    `json:"kind"`
	Key     SortKey       `json:"key,omitempty"`
	Checked bool          `json:"checked,omitempty"`
	ID      string        `json:"id,omitempty"`
	Index   int           `json:"index,omitempty"`
	Size    int           `json:"size,omitempty"`
	Dense   bool          `json:"dense,omitempty"`
	Window  models.Window `json:"window,omitempty"`
}

// IntentKind names one of the table intents.
type IntentKind string

const (
	IntentSort       IntentKind = "sort"
	IntentSelectAll  IntentKind = "select-all"
	IntentSelectOne  IntentKind = "select"
	IntentPage       IntentKind = "page"
	IntentPageSize   IntentKind = "page-size"
	IntentDensity    IntentKind = "density"
	IntentTimeWindow IntentKind = "window"
)

// Apply dispatches an intent to its transition. Invalid intents return the
// receiver unchanged with an error.
func (v View) Apply(in Intent) (View, error) {
	switch in.Kind {
	case IntentSort:
		return v.RequestSort(in.Key)
	case IntentSelectAll:
		return v.ToggleSelectAll(in.Checked), nil
	case IntentSelectOne:
		if in.ID == "" {
			return v, errors.New("select: missing id")
		}
		return v.ToggleSelectOne(in.ID), nil
	case IntentPage:
		return v.ChangePage(in.Index), nil
	case IntentPageSize:
		return v.ChangePageSize(in.Size)
	case IntentDensity:
		return v.ChangeDensity(in.Dense), nil
	case IntentTimeWindow:
		w, err := models.ParseWindow(string(in.Window))
		if err != nil {
			return v, err
		}
		return v.ChangeTimeWindow(w), nil
	}
	return v, fmt.Errorf("unknown intent %q", in.Kind)
}
