package datatable

import "slices"

// SelectionEnabled reports whether the view tracks selected rows.
func (v *View[T]) SelectionEnabled() bool { return v.opts.Selection }

// IsSelected reports whether the row id is selected.
func (v *View[T]) IsSelected(id string) bool {
	_, ok := v.selectedSet[id]
	return ok
}

// SelectedIDs returns the selected ids in the order they were selected.
func (v *View[T]) SelectedIDs() []string {
	return slices.Clone(v.selected)
}

// SetSelected replaces the selection. Duplicates are dropped.
func (v *View[T]) SetSelected(ids []string) {
	if !v.opts.Selection {
		return
	}
	v.selected = v.selected[:0]
	clear(v.selectedSet)
	for _, id := range ids {
		v.add(id)
	}
}

// ClearSelection deselects everything.
func (v *View[T]) ClearSelection() {
	v.selected = nil
	clear(v.selectedSet)
}

// ToggleRow flips the selection of one id.
func (v *View[T]) ToggleRow(id string) {
	if !v.opts.Selection {
		return
	}
	if v.IsSelected(id) {
		v.remove(map[string]struct{}{id: {}})
		return
	}
	v.add(id)
}

// AllVisibleSelected reports whether the current page is non-empty and every
// row on it is selected.
func (v *View[T]) AllVisibleSelected() bool {
	if !v.opts.Selection {
		return false
	}
	return v.allSelected(v.Visible())
}

// ToggleAllVisible deselects the rows on the current page when all of them
// are selected, and otherwise adds them to the selection. Rows on other
// pages are never touched.
func (v *View[T]) ToggleAllVisible() {
	if !v.opts.Selection {
		return
	}
	visible := v.Visible()
	if len(visible) == 0 {
		return
	}

	if v.allSelected(visible) {
		drop := make(map[string]struct{}, len(visible))
		for _, row := range visible {
			drop[v.rowID(row)] = struct{}{}
		}
		v.remove(drop)
		return
	}
	for _, row := range visible {
		v.add(v.rowID(row))
	}
}

func (v *View[T]) allSelected(rows []T) bool {
	if len(rows) == 0 {
		return false
	}
	for _, row := range rows {
		if !v.IsSelected(v.rowID(row)) {
			return false
		}
	}
	return true
}

func (v *View[T]) add(id string) {
	if v.IsSelected(id) {
		return
	}
	v.selectedSet[id] = struct{}{}
	v.selected = append(v.selected, id)
}

func (v *View[T]) remove(ids map[string]struct{}) {
	v.selected = slices.DeleteFunc(v.selected, func(id string) bool {
		_, ok := ids[id]
		return ok
	})
	for id := range ids {
		delete(v.selectedSet, id)
	}
}
