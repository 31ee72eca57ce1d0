package encode

import (
	"github.com/arrowbench/banditbench/pipe"
	"github.com/arrowbench/banditbench/types"
)

// Default assigns a default value for listed columns when they're missing
// from a row (column absent, or present but empty/"?").
type Default struct {
	Values map[string]types.Value
}

var _ pipe.Filter[Row, Row] = Default{}

func (d Default) Apply(in pipe.Iter[Row]) pipe.Iter[Row] {
	return pipe.Map(func(r Row) (Row, bool, error) {
		for col, def := range d.Values {
			v, ok := r.Get(col)
			missing := !ok || (v.Kind() == types.KindString && (v.Str() == "" || v.Str() == "?"))
			if missing {
				r = r.Set(col, def)
			}
		}
		return r, true, nil
	}).Apply(in)
}
