// Package encode implements the streaming row readers (CSV, ARFF, Parquet)
// and row-level filter stages (Drop, Default, Encode, Structure, Reservoir)
// that sit between a raw byte Source and a typed Interaction stream.
package encode

import "github.com/arrowbench/banditbench/types"

// Row is one parsed record: an ordered set of column values, with optional
// column names (present when the source has a header/schema). Readers that
// have no header still produce a Row; its Columns slice is simply empty and
// downstream stages must address fields positionally.
type Row struct {
	Columns []string
	Values  []types.Value
}

// Get returns the value of the named column and whether it was found.
func (r Row) Get(name string) (types.Value, bool) {
	for i, c := range r.Columns {
		if c == name {
			return r.Values[i], true
		}
	}
	return types.Value{}, false
}

// Set assigns the named column, appending it if absent.
func (r Row) Set(name string, v types.Value) Row {
	for i, c := range r.Columns {
		if c == name {
			r.Values[i] = v
			return r
		}
	}
	r.Columns = append(append([]string(nil), r.Columns...), name)
	r.Values = append(append([]types.Value(nil), r.Values...), v)
	return r
}

// Without returns a copy of r with the named columns removed.
func (r Row) Without(names ...string) Row {
	drop := make(map[string]bool, len(names))
	for _, n := range names {
		drop[n] = true
	}
	out := Row{}
	for i, c := range r.Columns {
		if drop[c] {
			continue
		}
		out.Columns = append(out.Columns, c)
		out.Values = append(out.Values, r.Values[i])
	}
	return out
}

// HasMissing reports whether any value in r is the sentinel "?" or empty
// string, the convention Drop's default missing-value predicate uses.
func (r Row) HasMissing() bool {
	for _, v := range r.Values {
		if v.Kind() == types.KindString && (v.Str() == "?" || v.Str() == "") {
			return true
		}
	}
	return false
}
