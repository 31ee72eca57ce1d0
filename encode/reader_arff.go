package encode

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/arrowbench/banditbench/pipe"
	"github.com/arrowbench/banditbench/types"
)

// AttrType is the declared type of an ARFF @attribute.
type AttrType int

const (
	AttrNumeric AttrType = iota
	AttrNominal
	AttrString
)

// Attribute is one parsed @attribute declaration.
type Attribute struct {
	Name string
	Type AttrType
	// Values lists the declared nominal alphabet. Observed data may
	// legitimately contain values outside this list; readers must accept
	// them rather than reject the row.
	Values []string
}

// ARFFConfig configures the ARFF dialect and skip-encoding behavior.
type ARFFConfig struct {
	Quotechar  rune
	Escapechar rune
	// SkipEncoding, when true, returns every value as a raw string
	// regardless of the declared attribute type; a downstream Encode
	// stage is then responsible for applying the semantic type.
	SkipEncoding bool
}

// ARFFReader parses @attribute declarations and @data rows.
type ARFFReader struct {
	newReader func() (io.ReadCloser, error)
	cfg       ARFFConfig
}

var _ pipe.Source[Row] = (*ARFFReader)(nil)

// NewARFFReader builds an ARFFReader.
func NewARFFReader(newReader func() (io.ReadCloser, error), cfg ARFFConfig) *ARFFReader {
	if cfg.Quotechar == 0 {
		cfg.Quotechar = '\''
	}
	if cfg.Escapechar == 0 {
		cfg.Escapechar = '\\'
	}
	return &ARFFReader{newReader: newReader, cfg: cfg}
}

func (r *ARFFReader) Read() pipe.Iter[Row] {
	rc, err := r.newReader()
	if err != nil {
		return &errRowIter{err: fmt.Errorf("arff: open source: %w", err)}
	}

	scanner := bufio.NewScanner(rc)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	var attrs []Attribute
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "%") {
			continue
		}
		lower := strings.ToLower(line)
		if strings.HasPrefix(lower, "@attribute") {
			attr, err := parseAttribute(line)
			if err != nil {
				rc.Close()
				return &errRowIter{err: &types.EnvironmentError{Kind: types.EnvironmentErrorParse, Msg: "malformed arff attribute", Err: err}}
			}
			attrs = append(attrs, attr)
			continue
		}
		if strings.HasPrefix(lower, "@data") {
			break
		}
		// @relation and any other header directive: ignored.
	}
	if err := scanner.Err(); err != nil {
		rc.Close()
		return &errRowIter{err: fmt.Errorf("arff: read header: %w", err)}
	}

	columns := make([]string, len(attrs))
	for i, a := range attrs {
		columns[i] = a.Name
	}

	return &arffRowIter{scanner: scanner, closer: rc, attrs: attrs, columns: columns, cfg: r.cfg}
}

func parseAttribute(line string) (Attribute, error) {
	rest := strings.TrimSpace(line[len("@attribute"):])
	sp := strings.IndexAny(rest, " \t")
	if sp < 0 {
		return Attribute{}, fmt.Errorf("missing type in %q", line)
	}
	name := strings.Trim(rest[:sp], "'\"")
	typeSpec := strings.TrimSpace(rest[sp+1:])

	lowerType := strings.ToLower(typeSpec)
	switch {
	case lowerType == "numeric" || lowerType == "real" || lowerType == "integer":
		return Attribute{Name: name, Type: AttrNumeric}, nil
	case lowerType == "string":
		return Attribute{Name: name, Type: AttrString}, nil
	case strings.HasPrefix(typeSpec, "{") && strings.HasSuffix(typeSpec, "}"):
		inner := typeSpec[1 : len(typeSpec)-1]
		var values []string
		for _, v := range strings.Split(inner, ",") {
			values = append(values, strings.Trim(strings.TrimSpace(v), "'\""))
		}
		return Attribute{Name: name, Type: AttrNominal, Values: values}, nil
	default:
		// Unknown/unsupported declared type: treat as string rather than
		// fail the whole read.
		return Attribute{Name: name, Type: AttrString}, nil
	}
}

type arffRowIter struct {
	scanner *bufio.Scanner
	closer  io.Closer
	attrs   []Attribute
	columns []string
	cfg     ARFFConfig
	done    bool
}

func (it *arffRowIter) Next() (Row, bool, error) {
	if it.done {
		return Row{}, false, nil
	}
	for it.scanner.Scan() {
		line := strings.TrimSpace(it.scanner.Text())
		if line == "" || strings.HasPrefix(line, "%") {
			continue
		}
		fields := splitARFFLine(line, it.cfg.Quotechar, it.cfg.Escapechar)
		if len(fields) != len(it.attrs) {
			it.done = true
			it.closer.Close()
			return Row{}, false, &types.EnvironmentError{
				Kind: types.EnvironmentErrorParse,
				Msg:  fmt.Sprintf("arff data row has %d fields, want %d", len(fields), len(it.attrs)),
			}
		}
		values := make([]types.Value, len(fields))
		for i, f := range fields {
			if it.cfg.SkipEncoding {
				values[i] = types.String(f)
				continue
			}
			switch it.attrs[i].Type {
			case AttrNumeric:
				n, err := strconv.ParseFloat(f, 64)
				if err != nil {
					values[i] = types.String(f) // "?" and malformed numerics pass through as strings
				} else {
					values[i] = types.Number(n)
				}
			default:
				values[i] = types.String(f)
			}
		}
		return Row{Columns: it.columns, Values: values}, true, nil
	}
	it.done = true
	it.closer.Close()
	if err := it.scanner.Err(); err != nil {
		return Row{}, false, fmt.Errorf("arff: read data: %w", err)
	}
	return Row{}, false, nil
}

// splitARFFLine splits a comma-separated ARFF data line, honoring a quote
// character and a preceding escape character, rather than stdlib encoding/csv
// whose quoting rules don't match ARFF's.
func splitARFFLine(line string, quote, escape rune) []string {
	var fields []string
	var cur strings.Builder
	inQuote := false
	runes := []rune(line)
	for i := 0; i < len(runes); i++ {
		c := runes[i]
		switch {
		case c == escape && i+1 < len(runes):
			i++
			cur.WriteRune(runes[i])
		case c == quote:
			inQuote = !inQuote
		case c == ',' && !inQuote:
			fields = append(fields, strings.TrimSpace(cur.String()))
			cur.Reset()
		default:
			cur.WriteRune(c)
		}
	}
	fields = append(fields, strings.TrimSpace(cur.String()))
	return fields
}
