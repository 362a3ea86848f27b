package dataframe

import (
	"github.com/paveg/colframe/internal/series"
)

// ISeries provides a type-erased interface for Series of any supported element type
type ISeries = series.Column

// sameKinds reports whether two column lists have matching names and kinds
func sameKinds(a, b []ISeries) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i].Name() != b[i].Name() || a[i].Kind() != b[i].Kind() {
			return false
		}
	}
	return true
}
