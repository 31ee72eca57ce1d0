package encode

import "github.com/arrowbench/banditbench/pipe"

// Drop removes named columns and optionally filters whole rows by
// predicate (e.g. a row containing "?" or an empty string is discarded as
// missing).
type Drop struct {
	Columns []string
	// RowPredicate, when non-nil, drops a row when it returns true. A nil
	// predicate keeps every row.
	RowPredicate func(Row) bool
}

var _ pipe.Filter[Row, Row] = Drop{}

func (d Drop) Apply(in pipe.Iter[Row]) pipe.Iter[Row] {
	return pipe.Map(func(r Row) (Row, bool, error) {
		if d.RowPredicate != nil && d.RowPredicate(r) {
			return Row{}, false, nil
		}
		if len(d.Columns) > 0 {
			r = r.Without(d.Columns...)
		}
		return r, true, nil
	}).Apply(in)
}
