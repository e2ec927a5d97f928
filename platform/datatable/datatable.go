// Package datatable implements a generic, headless data grid over an
// in-memory row set: free-text search, single-column sort, pagination and
// id-based multi-row selection.
//
// A View never mutates the rows it was given. Every derived slice (filtered,
// sorted, visible) is recomputed from the current inputs, so the same inputs
// always produce the same page. All operations are total: empty inputs,
// unknown columns and out-of-range page indexes degrade to clamped or empty
// results instead of errors.
//
// A View holds per-request state and is not safe for concurrent use.
package datatable

import (
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SortDir is the direction of the active sort.
type SortDir string

const (
	Asc  SortDir = "asc"
	Desc SortDir = "desc"
)

// ParseSortDir maps "desc" (any case) to Desc and everything else to Asc.
func ParseSortDir(s string) SortDir {
	if strings.EqualFold(strings.TrimSpace(s), string(Desc)) {
		return Desc
	}
	return Asc
}

// Column describes one column of the grid. Render is required. A column
// without SortValue is not sortable; one without SearchValue is ignored by
// the free-text filter.
type Column[T any] struct {
	ID          string
	Header      string
	Render      func(T) any
	SortValue   func(T) SortKey
	SearchValue func(T) string
}

// Sortable reports whether the column can be sorted.
func (c Column[T]) Sortable() bool { return c.SortValue != nil }

// Searchable reports whether the column takes part in search.
func (c Column[T]) Searchable() bool { return c.SearchValue != nil }

// Sort is the active sort column and direction.
type Sort struct {
	ColumnID string  `json:"column"`
	Dir      SortDir `json:"dir"`
}

// Options configures a View.
type Options struct {
	// InitialPageSize defaults to 10.
	InitialPageSize int
	// PageSizeOptions defaults to 10, 25 and 50.
	PageSizeOptions []int
	// Selection enables id-based row selection.
	Selection bool
	// Locale drives string collation. Defaults to English.
	Locale language.Tag
}

const defaultPageSize = 10

var defaultPageSizeOptions = []int{10, 25, 50}

// View is an interactive view over rows of type T.
type View[T any] struct {
	rows    []T
	columns []Column[T]
	rowID   func(T) string
	opts    Options

	query     string
	sort      *Sort
	pageSize  int
	pageIndex int

	selected    []string
	selectedSet map[string]struct{}

	collator *collate.Collator
}

// New creates a View. rows is read, never written.
func New[T any](rows []T, columns []Column[T], rowID func(T) string, opts Options) *View[T] {
	if opts.InitialPageSize <= 0 {
		opts.InitialPageSize = defaultPageSize
	}
	if len(opts.PageSizeOptions) == 0 {
		opts.PageSizeOptions = defaultPageSizeOptions
	}
	if opts.Locale == language.Und {
		opts.Locale = language.English
	}

	return &View[T]{
		rows:        rows,
		columns:     columns,
		rowID:       rowID,
		opts:        opts,
		pageSize:    opts.InitialPageSize,
		selectedSet: make(map[string]struct{}),
	}
}

// SetRows replaces the row set. Query, sort, page index and selection are
// kept; the page index is re-clamped against the new result size.
func (v *View[T]) SetRows(rows []T) {
	v.rows = rows
}

// Query returns the current search query.
func (v *View[T]) Query() string { return v.query }

// SetQuery sets the free-text filter and resets the page index.
func (v *View[T]) SetQuery(q string) {
	v.query = q
	v.pageIndex = 0
}

// CurrentSort returns the active sort or nil.
func (v *View[T]) CurrentSort() *Sort {
	if v.sort == nil {
		return nil
	}
	s := *v.sort
	return &s
}

// SetSort sorts ascending by colID, or flips the direction when colID is
// already the active sort column. Non-sortable and unknown columns are ignored.
func (v *View[T]) SetSort(colID string) {
	if _, ok := v.sortableColumn(colID); !ok {
		return
	}
	if v.sort == nil || v.sort.ColumnID != colID {
		v.sort = &Sort{ColumnID: colID, Dir: Asc}
		return
	}
	if v.sort.Dir == Asc {
		v.sort.Dir = Desc
	} else {
		v.sort.Dir = Asc
	}
}

// SetSortDirection sets the sort column and direction explicitly.
// Non-sortable and unknown columns clear the sort.
func (v *View[T]) SetSortDirection(colID string, dir SortDir) {
	if _, ok := v.sortableColumn(colID); !ok {
		v.sort = nil
		return
	}
	if dir != Desc {
		dir = Asc
	}
	v.sort = &Sort{ColumnID: colID, Dir: dir}
}

// ClearSort restores input order.
func (v *View[T]) ClearSort() {
	v.sort = nil
}

// PageSize returns the current page size.
func (v *View[T]) PageSize() int { return v.pageSize }

// SetPageSize changes the page size and resets the page index.
// Non-positive sizes are ignored.
func (v *View[T]) SetPageSize(n int) {
	if n <= 0 {
		return
	}
	v.pageSize = n
	v.pageIndex = 0
}

// SetPageIndex moves to page i (zero-based). The stored index is clamped on read.
func (v *View[T]) SetPageIndex(i int) {
	v.pageIndex = max(0, i)
}

// NextPage advances one page if there is one.
func (v *View[T]) NextPage() {
	v.pageIndex = min(v.PageIndex()+1, v.PageCount()-1)
}

// PrevPage goes back one page if there is one.
func (v *View[T]) PrevPage() {
	v.pageIndex = max(v.PageIndex()-1, 0)
}

// Filtered returns the rows matching the current query, in input order.
func (v *View[T]) Filtered() []T {
	q := strings.ToLower(strings.TrimSpace(v.query))
	if q == "" {
		return v.rows
	}

	searchable := make([]Column[T], 0, len(v.columns))
	for _, c := range v.columns {
		if c.Searchable() {
			searchable = append(searchable, c)
		}
	}
	if len(searchable) == 0 {
		return v.rows
	}

	out := make([]T, 0, len(v.rows))
	for _, row := range v.rows {
		for _, c := range searchable {
			if strings.Contains(strings.ToLower(c.SearchValue(row)), q) {
				out = append(out, row)
				break
			}
		}
	}
	return out
}

// Sorted returns the filtered rows ordered by the active sort.
func (v *View[T]) Sorted() []T {
	filtered := v.Filtered()
	if v.sort == nil {
		return filtered
	}
	col, ok := v.sortableColumn(v.sort.ColumnID)
	if !ok {
		return filtered
	}

	out := slices.Clone(filtered)
	cmp := compareFunc(v.collatorFor())
	desc := v.sort.Dir == Desc
	slices.SortStableFunc(out, func(a, b T) int {
		return cmp(col.SortValue(a), col.SortValue(b), desc)
	})
	return out
}

// PageCount is max(1, ceil(filtered / pageSize)).
func (v *View[T]) PageCount() int {
	return pageCount(len(v.Filtered()), v.pageSize)
}

// PageIndex is the effective zero-based page index, clamped into [0, PageCount-1].
func (v *View[T]) PageIndex() int {
	return min(v.pageIndex, v.PageCount()-1)
}

// Visible returns the rows on the current page.
func (v *View[T]) Visible() []T {
	sorted := v.Sorted()
	count := pageCount(len(sorted), v.pageSize)
	index := min(v.pageIndex, count-1)
	start := index * v.pageSize
	end := min(start+v.pageSize, len(sorted))
	if start >= end {
		return []T{}
	}
	return sorted[start:end]
}

// Headers returns the column headers in order.
func (v *View[T]) Headers() []string {
	out := make([]string, len(v.columns))
	for i, c := range v.columns {
		out[i] = c.Header
	}
	return out
}

// Render applies every column's Render to row.
func (v *View[T]) Render(row T) []any {
	out := make([]any, len(v.columns))
	for i, c := range v.columns {
		if c.Render != nil {
			out[i] = c.Render(row)
		}
	}
	return out
}

func (v *View[T]) sortableColumn(id string) (Column[T], bool) {
	for _, c := range v.columns {
		if c.ID == id && c.Sortable() {
			return c, true
		}
	}
	return Column[T]{}, false
}

func (v *View[T]) collatorFor() *collate.Collator {
	if v.collator == nil {
		v.collator = collate.New(v.opts.Locale)
	}
	return v.collator
}

func pageCount(total, pageSize int) int {
	if pageSize <= 0 {
		return 1
	}
	return max(1, (total+pageSize-1)/pageSize)
}
