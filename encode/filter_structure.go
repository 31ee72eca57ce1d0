package encode

import (
	"github.com/arrowbench/banditbench/pipe"
	"github.com/arrowbench/banditbench/types"
)

// Structured is the [features, label] shape Structure reshapes each row
// into.
type Structured struct {
	Features Row
	Label    Row
}

// Structure reshapes each row into [features, label] by extracting the
// named target column. If Target is empty, Label is the zero Row (used
// when a simulation has no label column, e.g. a pure feature stream).
type Structure struct {
	Target string
}

var _ pipe.Filter[Row, Structured] = Structure{}

func (s Structure) Apply(in pipe.Iter[Row]) pipe.Iter[Structured] {
	return &structureIter{in: in, target: s.Target}
}

type structureIter struct {
	in     pipe.Iter[Row]
	target string
}

func (it *structureIter) Next() (Structured, bool, error) {
	r, ok, err := it.in.Next()
	if err != nil || !ok {
		return Structured{}, false, err
	}
	if it.target == "" {
		return Structured{Features: r}, true, nil
	}
	label := Row{}
	if v, found := r.Get(it.target); found {
		label = Row{Columns: []string{it.target}, Values: []types.Value{v}}
	}
	return Structured{Features: r.Without(it.target), Label: label}, true, nil
}
