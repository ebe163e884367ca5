package pcd

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"pcdio/pkg/lzf"
)

type decodeOptions struct {
	transform    TransformOptions
	hasTransform bool
	strict       bool
}

// Option tweaks a Decode or DecodeFunc call.
type Option func(*decodeOptions)

// WithTransform applies a coordinate transform to decoded positions
// and normals.
func WithTransform(t TransformOptions) Option {
	return func(o *decodeOptions) {
		o.transform = t
		o.hasTransform = t.NeedsTransformation()
	}
}

// WithStrictASCII turns the lenient ascii policy (bad tokens default,
// short rows skipped) into row-level errors.
func WithStrictASCII() Option {
	return func(o *decodeOptions) {
		o.strict = true
	}
}

// Decode reads a full PCD stream into a cloud of shape P.
func Decode[P Point[P]](r io.Reader, opts ...Option) (*Cloud[P], error) {
	var o decodeOptions
	for _, opt := range opts {
		opt(&o)
	}

	br := bufio.NewReader(r)
	h, err := parseHeader(br)
	if err != nil {
		return nil, err
	}

	var zero P
	fields := zero.PCDFields()
	maps, err := resolveDecode(h, memberNames(fields))
	if err != nil {
		return nil, err
	}

	cloud := &Cloud[P]{Header: *h}
	switch h.Data {
	case ASCII:
		err = decodeASCII(br, maps, fields, cloud, o)
	case Binary:
		err = decodeBinary(br, maps, fields, cloud, o)
	case BinaryCompressed:
		err = decodeBinaryCompressed(br, h, maps, fields, cloud, o)
	default:
		err = fmt.Errorf("%w: DATA %d", ErrUnsupportedEncoding, h.Data)
	}
	if err != nil {
		return nil, err
	}
	return cloud, nil
}

func decodeASCII[P Point[P]](br *bufio.Reader, maps []fieldMapping, fields []Field[P], cloud *Cloud[P], o decodeOptions) error {
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

		var p P
		tok := 0
		for _, m := range maps {
			for e := 0; e < m.count; e++ {
				t := tokens[tok]
				tok++
				if m.member < 0 || e > 0 {
					continue
				}
				v, err := parseValue(t, m.typ, m.size)
				if err != nil {
					if o.strict {
						return fmt.Errorf("ascii record %d field %s: %w", row, m.name, err)
					}
					continue // leave the member at its default
				}
				if o.hasTransform {
					v = o.transform.apply(m.name, v)
				}
				fields[m.member].Set(&p, v)
			}
		}
		cloud.Points = append(cloud.Points, p)
		row++
	}
	return sc.Err()
}

func decodeBinary[P Point[P]](r io.Reader, maps []fieldMapping, fields []Field[P], cloud *Cloud[P], o decodeOptions) error {
	rec := make([]byte, recordSizeOf(maps))
	for {
		if _, err := io.ReadFull(r, rec); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				// a short final record just ends the usable payload
				return nil
			}
			return err
		}
		cloud.Points = append(cloud.Points, decodeRecord(rec, maps, fields, o))
	}
}

func decodeBinaryCompressed[P Point[P]](r io.Reader, h *Header, maps []fieldMapping, fields []Field[P], cloud *Cloud[P], o decodeOptions) error {
	n := pointCountOf(h)
	recSize := recordSizeOf(maps)
	flat, err := readCompressedPayload(r, n*recSize)
	if err != nil {
		return err
	}
	rows := interleaveRecords(flat, maps, n, recSize)
	for pi := 0; pi < n; pi++ {
		rec := rows[pi*recSize : (pi+1)*recSize]
		cloud.Points = append(cloud.Points, decodeRecord(rec, maps, fields, o))
	}
	return nil
}

func pointCountOf(h *Header) int {
	if h.Points > 0 {
		return int(h.Points)
	}
	return h.Width * h.Height
}

// readCompressedPayload reads the compressed_size/decompressed_size
// prefix and the LZF data behind it, and expands it to exactly want
// bytes.
func readCompressedPayload(r io.Reader, want int) ([]byte, error) {
	var prefix [8]byte
	if _, err := io.ReadFull(r, prefix[:]); err != nil {
		return nil, fmt.Errorf("%w: missing size prefix: %v", ErrDecompressionFailure, err)
	}
	compressedSize := binary.LittleEndian.Uint32(prefix[:4])
	decompressedSize := binary.LittleEndian.Uint32(prefix[4:])

	if int(decompressedSize) != want {
		return nil, fmt.Errorf("%w: payload declares %d bytes, records need %d", ErrDecompressionFailure, decompressedSize, want)
	}
	compressed := make([]byte, compressedSize)
	if _, err := io.ReadFull(r, compressed); err != nil {
		return nil, fmt.Errorf("%w: short compressed data: %v", ErrDecompressionFailure, err)
	}

	out := make([]byte, decompressedSize)
	n, err := lzf.Decompress(compressed, out)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecompressionFailure, err)
	}
	if n != int(decompressedSize) {
		return nil, fmt.Errorf("%w: expanded to %d of %d bytes", ErrDecompressionFailure, n, decompressedSize)
	}
	return out, nil
}

// interleaveRecords turns the column-major (field-major) layout of a
// decompressed binary_compressed payload back into row-major records.
func interleaveRecords(flat []byte, maps []fieldMapping, n, recSize int) []byte {
	out := make([]byte, n*recSize)
	src := 0
	for _, m := range maps {
		for e := 0; e < m.count; e++ {
			base := m.offset + e*m.size
			for pi := 0; pi < n; pi++ {
				copy(out[pi*recSize+base:pi*recSize+base+m.size], flat[src:src+m.size])
				src += m.size
			}
		}
	}
	return out
}

func decodeRecord[P Point[P]](rec []byte, maps []fieldMapping, fields []Field[P], o decodeOptions) P {
	var p P
	for _, m := range maps {
		if m.member < 0 {
			continue // bytes counted toward the record, value discarded
		}
		v := readScalar(rec[m.offset:], m.typ, m.size)
		if o.hasTransform {
			v = o.transform.apply(m.name, v)
		}
		fields[m.member].Set(&p, v)
	}
	return p
}

func readScalar(b []byte, typ FieldType, size int) Value {
	switch typ {
	case Float:
		switch size {
		case 4:
			return FloatValue(float64(math.Float32frombits(binary.LittleEndian.Uint32(b))))
		case 8:
			return FloatValue(math.Float64frombits(binary.LittleEndian.Uint64(b)))
		}
	case Signed:
		switch size {
		case 1:
			return SignedValue(int64(int8(b[0])))
		case 2:
			return SignedValue(int64(int16(binary.LittleEndian.Uint16(b))))
		case 4:
			return SignedValue(int64(int32(binary.LittleEndian.Uint32(b))))
		case 8:
			return SignedValue(int64(binary.LittleEndian.Uint64(b)))
		}
	case Unsigned:
		switch size {
		case 1:
			return UnsignedValue(uint64(b[0]))
		case 2:
			return UnsignedValue(uint64(binary.LittleEndian.Uint16(b)))
		case 4:
			return UnsignedValue(uint64(binary.LittleEndian.Uint32(b)))
		case 8:
			return UnsignedValue(binary.LittleEndian.Uint64(b))
		}
	}
	return Value{}
}

func parseValue(tok string, typ FieldType, size int) (Value, error) {
	switch typ {
	case Signed:
		v, err := strconv.ParseInt(tok, 10, size*8)
		if err != nil {
			return Value{}, err
		}
		return SignedValue(v), nil
	case Unsigned:
		v, err := strconv.ParseUint(tok, 10, size*8)
		if err != nil {
			return Value{}, err
		}
		return UnsignedValue(v), nil
	default:
		v, err := strconv.ParseFloat(tok, 64)
		if err != nil {
			return Value{}, err
		}
		return FloatValue(v), nil
	}
}
