package pcd

import (
	"bufio"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"strconv"
)

// Encode writes the cloud as a PCD file in the chosen encoding. The
// header is derived from the shape's own field table and the cloud's
// dimensions, never from a previously parsed header's field list.
// BinaryCompressed output is not supported.
func Encode[P Point[P]](w io.Writer, c *Cloud[P], enc Encoding) error {
	if enc != ASCII && enc != Binary {
		return fmt.Errorf("%w: cannot write %s", ErrUnsupportedEncoding, enc)
	}

	var zero P
	fields := zero.PCDFields()
	names := make([]string, len(fields))
	types := make([]FieldType, len(fields))
	sizes := make([]int, len(fields))
	for i := range fields {
		names[i] = fields[i].Name
		types[i] = fields[i].Type
		sizes[i] = fields[i].Size
	}
	efs := resolveEncode(names, types, sizes)
	h := deriveHeader(c.Header, efs, len(c.Points), enc)

	bw := bufio.NewWriter(w)
	if _, err := h.WriteTo(bw); err != nil {
		return err
	}
	var err error
	if enc == ASCII {
		err = encodeASCII(bw, c, fields, efs)
	} else {
		err = encodeBinary(bw, c, fields, efs)
	}
	if err != nil {
		return err
	}
	return bw.Flush()
}

func deriveHeader(prev Header, efs []encodeField, n int, enc Encoding) Header {
	h := Header{
		Version: "0.7",
		Fields:  make([]string, len(efs)),
		Sizes:   make([]int, len(efs)),
		Types:   make([]FieldType, len(efs)),
		Counts:  make([]int, len(efs)),
		Width:   n,
		Height:  1,
		Points:  int64(n),
		Data:    enc,
		IsDense: prev.IsDense,
	}
	for i, ef := range efs {
		h.Fields[i] = ef.name
		h.Sizes[i] = ef.size
		h.Types[i] = ef.typ
		h.Counts[i] = 1
	}
	if prev.Height > 1 && prev.Width*prev.Height == n {
		h.Width = prev.Width
		h.Height = prev.Height
	}
	if len(prev.Viewpoint) >= 7 {
		h.Viewpoint = prev.Viewpoint[:7]
	} else {
		h.Viewpoint = []float64{0, 0, 0, 1, 0, 0, 0}
	}
	return h
}

func encodeASCII[P Point[P]](bw *bufio.Writer, c *Cloud[P], fields []Field[P], efs []encodeField) error {
	for i := range c.Points {
		for k, ef := range efs {
			if k > 0 {
				if err := bw.WriteByte(' '); err != nil {
					return err
				}
			}
			v := fields[ef.member].Get(&c.Points[i])
			if _, err := bw.WriteString(formatValue(v, ef.typ, ef.size)); err != nil {
				return err
			}
		}
		if err := bw.WriteByte('\n'); err != nil {
			return err
		}
	}
	return nil
}

func formatValue(v Value, typ FieldType, size int) string {
	switch typ {
	case Signed:
		return strconv.FormatInt(v.Int64(), 10)
	case Unsigned:
		return strconv.FormatUint(v.Uint64(), 10)
	default:
		bits := 64
		if size == 4 {
			bits = 32
		}
		return strconv.FormatFloat(v.Float64(), 'g', -1, bits)
	}
}

func encodeBinary[P Point[P]](bw *bufio.Writer, c *Cloud[P], fields []Field[P], efs []encodeField) error {
	var recSize int
	for _, ef := range efs {
		recSize += ef.size
	}
	rec := make([]byte, recSize)
	for i := range c.Points {
		off := 0
		for _, ef := range efs {
			putScalar(rec[off:], fields[ef.member].Get(&c.Points[i]), ef.typ, ef.size)
			off += ef.size
		}
		if _, err := bw.Write(rec); err != nil {
			return err
		}
	}
	return nil
}

func putScalar(b []byte, v Value, typ FieldType, size int) {
	var bits uint64
	switch typ {
	case Float:
		if size == 4 {
			bits = uint64(math.Float32bits(float32(v.Float64())))
		} else {
			bits = math.Float64bits(v.Float64())
		}
	case Signed:
		bits = uint64(v.Int64())
	case Unsigned:
		bits = v.Uint64()
	}
	switch size {
	case 1:
		b[0] = byte(bits)
	case 2:
		binary.LittleEndian.PutUint16(b, uint16(bits))
	case 4:
		binary.LittleEndian.PutUint32(b, uint32(bits))
	case 8:
		binary.LittleEndian.PutUint64(b, bits)
	}
}
