package datatable

import "strings"

// MaxPageSize bounds page sizes accepted from requests.
const MaxPageSize = 100

// Page is a snapshot of the view: the visible rows plus everything a client
// needs to draw the pager, the sort indicator and the selection state.
type Page[T any] struct {
	Rows               []T      `json:"items"`
	Cells              [][]any  `json:"-"`
	PageIndex          int      `json:"pageIndex"`
	Page               int      `json:"page"`
	PageCount          int      `json:"pageCount"`
	PageSize           int      `json:"pageSize"`
	PageSizeOptions    []int    `json:"pageSizeOptions"`
	Total              int      `json:"total"`
	Filtered           int      `json:"filtered"`
	Sort               *Sort    `json:"sort,omitempty"`
	Query              string   `json:"query,omitempty"`
	AllVisibleSelected bool     `json:"allVisibleSelected"`
	SelectedIDs        []string `json:"selectedIds,omitempty"`
}

// Page computes the current snapshot.
func (v *View[T]) Page() Page[T] {
	sorted := v.Sorted()
	visible := v.Visible()

	cells := make([][]any, len(visible))
	for i, row := range visible {
		cells[i] = v.Render(row)
	}

	index := v.PageIndex()
	return Page[T]{
		Rows:               visible,
		Cells:              cells,
		PageIndex:          index,
		Page:               index + 1,
		PageCount:          pageCount(len(sorted), v.pageSize),
		PageSize:           v.pageSize,
		PageSizeOptions:    v.opts.PageSizeOptions,
		Total:              len(v.rows),
		Filtered:           len(sorted),
		Sort:               v.CurrentSort(),
		Query:              strings.TrimSpace(v.query),
		AllVisibleSelected: v.AllVisibleSelected(),
		SelectedIDs:        v.SelectedIDs(),
	}
}

// State is the table state carried by a list request. Page is 1-based on
// the wire.
type State struct {
	Query      string   `form:"q"`
	SortColumn string   `form:"sort"`
	SortDir    string   `form:"dir"`
	Page       int      `form:"page"`
	PageSize   int      `form:"pageSize"`
	Selected   []string `form:"selected"`
}

// PageIndex converts the 1-based wire page into a zero-based index.
func (s State) PageIndex() int {
	return max(0, s.Page-1)
}

// Apply builds a selection-enabled view from a request state and returns its page.
// Page sizes above MaxPageSize are capped.
func Apply[T any](rows []T, columns []Column[T], rowID func(T) string, state State) Page[T] {
	v := New(rows, columns, rowID, Options{Selection: true})
	v.SetQuery(state.Query)
	if state.SortColumn != "" {
		v.SetSortDirection(state.SortColumn, ParseSortDir(state.SortDir))
	}
	if state.PageSize > 0 {
		v.SetPageSize(min(state.PageSize, MaxPageSize))
	}
	v.SetPageIndex(state.PageIndex())
	v.SetSelected(state.Selected)
	return v.Page()
}
