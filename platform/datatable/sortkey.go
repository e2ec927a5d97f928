package datatable

import (
	"cmp"
	"strconv"
	"time"

	"golang.org/x/text/collate"
)

type keyKind uint8

const (
	kindNull keyKind = iota
	kindNumber
	kindString
)

// SortKey is the value a column sorts by: null, a number or a string.
// The zero value is null.
type SortKey struct {
	kind keyKind
	num  float64
	str  string
}

// Null is a key that sorts after every non-null key in both directions.
func Null() SortKey { return SortKey{} }

// Number is a key compared numerically.
func Number(f float64) SortKey { return SortKey{kind: kindNumber, num: f} }

// String is a key compared by locale-aware collation.
func String(s string) SortKey { return SortKey{kind: kindString, str: s} }

// Time sorts by Unix milliseconds. The zero time is null.
func Time(t time.Time) SortKey {
	if t.IsZero() {
		return Null()
	}
	return Number(float64(t.UnixMilli()))
}

// TimePtr is Time for optional timestamps.
func TimePtr(t *time.Time) SortKey {
	if t == nil {
		return Null()
	}
	return Time(*t)
}

// StringPtr is String for optional text. nil is null.
func StringPtr(s *string) SortKey {
	if s == nil {
		return Null()
	}
	return String(*s)
}

// IsNull reports whether the key is null.
func (k SortKey) IsNull() bool { return k.kind == kindNull }

func (k SortKey) text() string {
	if k.kind == kindNumber {
		return strconv.FormatFloat(k.num, 'f', -1, 64)
	}
	return k.str
}

// compareFunc orders keys for one sort pass. Nulls go last whatever the
// direction; only the non-null comparison is reversed for desc.
func compareFunc(col *collate.Collator) func(a, b SortKey, desc bool) int {
	return func(a, b SortKey, desc bool) int {
		switch {
		case a.IsNull() && b.IsNull():
			return 0
		case a.IsNull():
			return 1
		case b.IsNull():
			return -1
		}

		var c int
		if a.kind == kindNumber && b.kind == kindNumber {
			c = cmp.Compare(a.num, b.num)
		} else {
			c = col.CompareString(a.text(), b.text())
		}
		if desc {
			return -c
		}
		return c
	}
}
