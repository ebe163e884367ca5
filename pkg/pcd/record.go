package pcd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// RecordField is one decoded scalar keyed by its field name. Fields
// with count > 1 get an indexed suffix, name_0, name_1, ...
type RecordField struct {
	Name  string
	Value Value
}

// Record is the ordered name to value mapping handed to a DecodeFunc
// constructor, one per point.
type Record []RecordField

// Get returns the value of the named field.
func (r Record) Get(name string) (Value, bool) {
	for i := range r {
		if r[i].Name == name {
			return r[i].Value, true
		}
	}
	return Value{}, false
}

// DecodeFunc decodes a PCD stream through a per-record constructor
// instead of a static shape. Every header field appears in the
// record, which makes this the escape hatch for shapes that cannot be
// expressed as a member table.
func DecodeFunc[T any](r io.Reader, build func(Record) T, opts ...Option) ([]T, *Header, error) {
	var o decodeOptions
	for _, opt := range opts {
		opt(&o)
	}

	br := bufio.NewReader(r)
	h, err := parseHeader(br)
	if err != nil {
		return nil, nil, err
	}
	maps, err := resolveDecode(h, nil)
	if err != nil {
		return nil, nil, err
	}
	names := recordNames(maps)

	var out []T
	switch h.Data {
	case ASCII:
		err = decodeFuncASCII(br, maps, names, build, &out, o)
	case Binary:
		err = decodeFuncBinary(br, maps, names, build, &out, o)
	case BinaryCompressed:
		n := pointCountOf(h)
		recSize := recordSizeOf(maps)
		var flat []byte
		flat, err = readCompressedPayload(br, n*recSize)
		if err == nil {
			rows := interleaveRecords(flat, maps, n, recSize)
			for pi := 0; pi < n; pi++ {
				rec := buildRecord(rows[pi*recSize:(pi+1)*recSize], maps, names, o)
				out = append(out, build(rec))
			}
		}
	default:
		err = fmt.Errorf("%w: DATA %d", ErrUnsupportedEncoding, h.Data)
	}
	if err != nil {
		return nil, nil, err
	}
	return out, h, nil
}

// recordNames precomputes the record key per (field, element).
func recordNames(maps []fieldMapping) [][]string {
	names := make([][]string, len(maps))
	for i, m := range maps {
		names[i] = make([]string, m.count)
		if m.count == 1 {
			names[i][0] = m.name
			continue
		}
		for e := 0; e < m.count; e++ {
			names[i][e] = m.name + "_" + strconv.Itoa(e)
		}
	}
	return names
}

func decodeFuncASCII[T any](br *bufio.Reader, maps []fieldMapping, names [][]string, build func(Record) T, out *[]T, o decodeOptions) error {
	var total int
	for _, m := range maps {
		total += m.count
	}

	sc := bufio.NewScanner(br)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	row := 0
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		tokens := strings.Fields(line)
		if len(tokens) < total {
			if o.strict {
				return fmt.Errorf("ascii record %d has %d of %d values", row, len(tokens), total)
			}
			row++
			continue
		}

		rec := make(Record, 0, total)
		tok := 0
		for i, m := range maps {
			for e := 0; e < m.count; e++ {
				v, err := parseValue(tokens[tok], m.typ, m.size)
				tok++
				if err != nil {
					if o.strict {
						return fmt.Errorf("ascii record %d field %s: %w", row, names[i][e], err)
					}
					v = Value{}
				} else if o.hasTransform {
					v = o.transform.apply(m.name, v)
				}
				rec = append(rec, RecordField{Name: names[i][e], Value: v})
			}
		}
		*out = append(*out, build(rec))
		row++
	}
	return sc.Err()
}

func decodeFuncBinary[T any](r io.Reader, maps []fieldMapping, names [][]string, build func(Record) T, out *[]T, o decodeOptions) error {
	buf := make([]byte, recordSizeOf(maps))
	for {
		if _, err := io.ReadFull(r, buf); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil
			}
			return err
		}
		*out = append(*out, build(buildRecord(buf, maps, names, o)))
	}
}

func buildRecord(buf []byte, maps []fieldMapping, names [][]string, o decodeOptions) Record {
	var total int
	for _, m := range maps {
		total += m.count
	}
	rec := make(Record, 0, total)
	for i, m := range maps {
		for e := 0; e < m.count; e++ {
			v := readScalar(buf[m.offset+e*m.size:], m.typ, m.size)
			if o.hasTransform {
				v = o.transform.apply(m.name, v)
			}
			rec = append(rec, RecordField{Name: names[i][e], Value: v})
		}
	}
	return rec
}
