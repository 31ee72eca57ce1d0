package encode

import (
	"io"
	"strings"
	"testing"

	"github.com/arrowbench/banditbench/pipe"
	"github.com/arrowbench/banditbench/types"
)

func newCloser(s string) func() (io.ReadCloser, error) {
	return func() (io.ReadCloser, error) {
		return io.NopCloser(strings.NewReader(s)), nil
	}
}

func TestCSVReaderWithHeader(t *testing.T) {
	src := NewCSVReader(newCloser("a,b,c\n1,2,3\n4,5,6\n"), CSVConfig{HasHeader: true})
	rows, err := pipe.ToSlice(src.Read())
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	v, ok := rows[0].Get("b")
	if !ok || v.Str() != "2" {
		t.Fatalf("expected column b = 2, got %v ok=%v", v, ok)
	}
}

func TestCSVReaderRereadIsEquivalent(t *testing.T) {
	src := NewCSVReader(newCloser("a,b\n1,2\n"), CSVConfig{HasHeader: true})
	first, _ := pipe.ToSlice(src.Read())
	second, _ := pipe.ToSlice(src.Read())
	if len(first) != len(second) {
		t.Fatalf("re-read produced different length")
	}
}

func TestCSVReaderHandlesQuotedEmbeddedDelimiter(t *testing.T) {
	src := NewCSVReader(newCloser("a,b\n\"hello, world\",2\n"), CSVConfig{HasHeader: true})
	rows, err := pipe.ToSlice(src.Read())
	if err != nil {
		t.Fatal(err)
	}
	v, _ := rows[0].Get("a")
	if v.Str() != "hello, world" {
		t.Fatalf("expected embedded delimiter preserved, got %q", v.Str())
	}
}

func TestARFFReaderParsesAttributesAndData(t *testing.T) {
	doc := "@relation test\n" +
		"@attribute x numeric\n" +
		"@attribute y {red,blue}\n" +
		"@data\n" +
		"1.5,red\n" +
		"2.5,green\n" // "green" not in declared alphabet, must still be accepted

	src := NewARFFReader(newCloser(doc), ARFFConfig{})
	rows, err := pipe.ToSlice(src.Read())
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	x, _ := rows[0].Get("x")
	if x.Number() != 1.5 {
		t.Fatalf("expected numeric 1.5, got %v", x)
	}
	y, _ := rows[1].Get("y")
	if y.Str() != "green" {
		t.Fatalf("expected unseen nominal value tolerated, got %v", y)
	}
}

func TestDropRemovesColumnsAndMissingRows(t *testing.T) {
	src := NewCSVReader(newCloser("a,b\n1,?\n2,3\n"), CSVConfig{HasHeader: true})
	d := Drop{RowPredicate: func(r Row) bool { return r.HasMissing() }}
	out, err := pipe.ToSlice(d.Apply(src.Read()))
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 1 {
		t.Fatalf("expected missing row dropped, got %d rows", len(out))
	}
}

func TestDefaultFillsMissingValues(t *testing.T) {
	rows := pipe.FromSlice([]Row{
		{Columns: []string{"a"}, Values: []types.Value{types.String("")}},
		{Columns: []string{"a"}, Values: []types.Value{types.String("present")}},
	})
	def := Default{Values: map[string]types.Value{"a": types.String("fallback")}}
	out, err := pipe.ToSlice(def.Apply(rows.Read()))
	if err != nil {
		t.Fatal(err)
	}
	v0, _ := out[0].Get("a")
	v1, _ := out[1].Get("a")
	if v0.Str() != "fallback" {
		t.Fatalf("expected default applied, got %q", v0.Str())
	}
	if v1.Str() != "present" {
		t.Fatalf("expected present value kept, got %q", v1.Str())
	}
}

func TestEncodeNumericAndOneHot(t *testing.T) {
	rows := pipe.FromSlice([]Row{
		{Columns: []string{"n", "c"}, Values: []types.Value{types.String("3.5"), types.String("red")}},
	})
	enc := Encode{Encoders: []ColumnEncoder{
		{Column: "n", Kind: EncodeNumeric},
		{Column: "c", Kind: EncodeOneHot, Alphabet: []string{"red", "blue"}},
	}}
	out, err := pipe.ToSlice(enc.Apply(rows.Read()))
	if err != nil {
		t.Fatal(err)
	}
	n, _ := out[0].Get("n")
	if n.Number() != 3.5 {
		t.Fatalf("expected numeric 3.5, got %v", n)
	}
	c, _ := out[0].Get("c")
	tuple := c.Tuple()
	if tuple[0].Number() != 1 || tuple[1].Number() != 0 {
		t.Fatalf("expected one-hot [1,0], got %v", tuple)
	}
}

func TestAutoEncodeConvertsNumericLookingStrings(t *testing.T) {
	rows := pipe.FromSlice([]Row{
		{Columns: []string{"y", "label"}, Values: []types.Value{types.String("0.5"), types.String("cat")}},
	})
	out, err := pipe.ToSlice(AutoEncode{}.Apply(rows.Read()))
	if err != nil {
		t.Fatal(err)
	}
	y, _ := out[0].Get("y")
	if y.Kind() != types.KindNumber || y.Number() != 0.5 {
		t.Fatalf("expected numeric 0.5, got %v", y)
	}
	label, _ := out[0].Get("label")
	if label.Kind() != types.KindString || label.Str() != "cat" {
		t.Fatalf("expected label to stay a string, got %v", label)
	}
}

func TestAutoEncodeLeavesAlreadyNumericValuesUntouched(t *testing.T) {
	rows := pipe.FromSlice([]Row{
		{Columns: []string{"y"}, Values: []types.Value{types.Number(1.25)}},
	})
	out, err := pipe.ToSlice(AutoEncode{}.Apply(rows.Read()))
	if err != nil {
		t.Fatal(err)
	}
	y, _ := out[0].Get("y")
	if y.Number() != 1.25 {
		t.Fatalf("expected 1.25 preserved, got %v", y)
	}
}

func TestStructureSeparatesLabel(t *testing.T) {
	rows := pipe.FromSlice([]Row{
		{Columns: []string{"x", "y", "label"}, Values: []types.Value{types.Number(1), types.Number(2), types.String("a")}},
	})
	s := Structure{Target: "label"}
	out, err := pipe.ToSlice(s.Apply(rows.Read()))
	if err != nil {
		t.Fatal(err)
	}
	if len(out[0].Features.Columns) != 2 {
		t.Fatalf("expected label column dropped from features, got %v", out[0].Features.Columns)
	}
	lv, _ := out[0].Label.Get("label")
	if lv.Str() != "a" {
		t.Fatalf("expected label value a, got %v", lv)
	}
}

func TestReservoirProducesAtMostK(t *testing.T) {
	rows := make([]Row, 100)
	for i := range rows {
		rows[i] = Row{Columns: []string{"i"}, Values: []types.Value{types.Number(float64(i))}}
	}
	src := pipe.FromSlice(rows)
	res := Reservoir{K: 10, Seed: 1}
	out, err := pipe.ToSlice(res.Apply(src.Read()))
	if err != nil {
		t.Fatal(err)
	}
	if len(out) != 10 {
		t.Fatalf("expected 10 sampled rows, got %d", len(out))
	}
}

func TestReservoirDeterministic(t *testing.T) {
	rows := make([]Row, 50)
	for i := range rows {
		rows[i] = Row{Columns: []string{"i"}, Values: []types.Value{types.Number(float64(i))}}
	}
	src := pipe.FromSlice(rows)
	res := Reservoir{K: 5, Seed: 42}

	a, _ := pipe.ToSlice(res.Apply(src.Read()))
	b, _ := pipe.ToSlice(res.Apply(src.Read()))

	for i := range a {
		av, _ := a[i].Get("i")
		bv, _ := b[i].Get("i")
		if av.Number() != bv.Number() {
			t.Fatalf("reservoir not deterministic at %d: %v vs %v", i, av, bv)
		}
	}
}

func TestReservoirKeepFirst(t *testing.T) {
	rows := make([]Row, 20)
	for i := range rows {
		rows[i] = Row{Columns: []string{"i"}, Values: []types.Value{types.Number(float64(i))}}
	}
	src := pipe.FromSlice(rows)
	res := Reservoir{K: 5, Seed: 3, KeepFirst: true}
	out, err := pipe.ToSlice(res.Apply(src.Read()))
	if err != nil {
		t.Fatal(err)
	}
	first, _ := out[0].Get("i")
	if first.Number() != 0 {
		t.Fatalf("expected first element forced into slot 0, got %v", first)
	}
}
