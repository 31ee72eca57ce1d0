package encode

import (
	"strconv"

	"github.com/arrowbench/banditbench/pipe"
	"github.com/arrowbench/banditbench/types"
)

// EncoderKind selects how Encode transforms one column's values.
type EncoderKind int

const (
	// EncodeNumeric parses the column as a float64.
	EncodeNumeric EncoderKind = iota
	// EncodeString passes the column through unchanged.
	EncodeString
	// EncodeNominalString treats the column as a categorical value kept
	// as its string form (cat_as_str).
	EncodeNominalString
	// EncodeOneHot treats the column as categorical and replaces it with
	// a one-hot tuple over alphabet.
	EncodeOneHot
)

// ColumnEncoder is one column's encoding rule.
type ColumnEncoder struct {
	Column   string
	Kind     EncoderKind
	Alphabet []string // required for EncodeOneHot
}

// Encode applies a per-column encoder to every row.
type Encode struct {
	Encoders []ColumnEncoder
}

var _ pipe.Filter[Row, Row] = Encode{}

func (e Encode) Apply(in pipe.Iter[Row]) pipe.Iter[Row] {
	return pipe.Map(func(r Row) (Row, bool, error) {
		for _, enc := range e.Encoders {
			v, ok := r.Get(enc.Column)
			if !ok {
				continue
			}
			encoded, err := encodeValue(enc, v)
			if err != nil {
				return Row{}, false, err
			}
			r = r.Set(enc.Column, encoded)
		}
		return r, true, nil
	}).Apply(in)
}

func encodeValue(enc ColumnEncoder, v types.Value) (types.Value, error) {
	raw := valueAsString(v)
	switch enc.Kind {
	case EncodeNumeric:
		f, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return types.Value{}, &types.EnvironmentError{
				Kind: types.EnvironmentErrorParse,
				Msg:  "column " + enc.Column + " is not numeric",
				Err:  err,
			}
		}
		return types.Number(f), nil
	case EncodeNominalString, EncodeString:
		return types.String(raw), nil
	case EncodeOneHot:
		return OneHot(raw, enc.Alphabet), nil
	default:
		return v, nil
	}
}

func valueAsString(v types.Value) string {
	switch v.Kind() {
	case types.KindString:
		return v.Str()
	case types.KindNumber:
		return strconv.FormatFloat(v.Number(), 'g', -1, 64)
	default:
		return v.String()
	}
}

// AutoEncode parses every string-valued column whose value looks numeric
// into a types.Number, leaving the rest as nominal strings. It's the
// Encode stage sources without per-column type metadata (e.g. a bare CSV
// from S3, with no declared attribute types) fall back to, rather than
// leaving every column KindString.
type AutoEncode struct{}

var _ pipe.Filter[Row, Row] = AutoEncode{}

func (AutoEncode) Apply(in pipe.Iter[Row]) pipe.Iter[Row] {
	return pipe.Map(func(r Row) (Row, bool, error) {
		for i, v := range r.Values {
			if v.Kind() != types.KindString {
				continue
			}
			if f, err := strconv.ParseFloat(v.Str(), 64); err == nil {
				r.Values[i] = types.Number(f)
			}
		}
		return r, true, nil
	}).Apply(in)
}

// OneHot returns the one-hot tuple representation of value over alphabet.
// A value outside alphabet produces an all-zero vector, the way unseen
// nominal data is tolerated by the ARFF/CSV readers.
func OneHot(value string, alphabet []string) types.Value {
	vec := make([]types.Value, len(alphabet))
	for i, a := range alphabet {
		if a == value {
			vec[i] = types.Number(1)
		} else {
			vec[i] = types.Number(0)
		}
	}
	return types.Tuple(vec...)
}
