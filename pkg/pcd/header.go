package pcd

import (
	"bufio"
	"bytes"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Header is the in-memory form of the textual PCD header.
type Header struct {
	Version string
	Fields  []string
	Sizes   []int       // bytes per scalar element
	Types   []FieldType // scalar class per field
	Counts  []int       // element multiplicity, 1 when absent
	Width   int
	Height  int // >1 means an organized (grid) cloud

	// Viewpoint is the translation xyz plus quaternion wxyz, nil when
	// the header carries none.
	Viewpoint []float64
	Points    int64
	Data      Encoding
	IsDense   bool
}

// RecordSize is the byte length of one point in the binary encodings.
func (h *Header) RecordSize() int {
	var n int
	for i := range h.Sizes {
		n += h.Sizes[i] * h.count(i)
	}
	return n
}

func (h *Header) count(i int) int {
	if i < len(h.Counts) && h.Counts[i] > 0 {
		return h.Counts[i]
	}
	return 1
}

func (h *Header) validate() error {
	if len(h.Fields) != len(h.Sizes) || len(h.Fields) != len(h.Types) ||
		(len(h.Counts) != 0 && len(h.Fields) != len(h.Counts)) {
		return fmt.Errorf("%w: FIELDS/SIZE/TYPE/COUNT lengths differ", ErrMalformedHeaderField)
	}
	return nil
}

// ParseHeader reads header lines from r up to and including the DATA
// line. Callers that decode the payload too should use Decode or
// DecodeFunc, which share one buffered reader between header and body.
func ParseHeader(r io.Reader) (*Header, error) {
	return parseHeader(bufio.NewReader(r))
}

func parseHeader(br *bufio.Reader) (*Header, error) {
	h := &Header{IsDense: true}
	for {
		line, err := br.ReadString('\n')
		if line == "" && err != nil {
			if err == io.EOF {
				return nil, ErrMissingDataField
			}
			return nil, err
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		tokens := strings.Fields(line)
		args := tokens[1:]
		var perr error
		switch strings.ToUpper(tokens[0]) {
		case "VERSION":
			if len(args) > 0 {
				h.Version = args[0]
			}
		case "FIELDS":
			h.Fields = args
		case "SIZE":
			h.Sizes, perr = parseInts("SIZE", args)
		case "TYPE":
			h.Types, perr = parseTypes(args)
		case "COUNT":
			h.Counts, perr = parseInts("COUNT", args)
		case "WIDTH":
			h.Width, perr = parseInt("WIDTH", args)
		case "HEIGHT":
			h.Height, perr = parseInt("HEIGHT", args)
		case "VIEWPOINT":
			h.Viewpoint, perr = parseViewpoint(args)
		case "POINTS":
			var n int
			n, perr = parseInt("POINTS", args)
			h.Points = int64(n)
		case "DATA":
			// the DATA line terminates the header, the rest is payload
			if len(args) > 0 {
				h.Data = parseEncoding(strings.ToLower(args[0]))
			}
			if h.Points == 0 {
				h.Points = int64(h.Width) * int64(h.Height)
			}
			if err := h.validate(); err != nil {
				return nil, err
			}
			return h, nil
		}
		if perr != nil {
			return nil, perr
		}
	}
}

func parseInts(keyword string, args []string) ([]int, error) {
	vals := make([]int, 0, len(args))
	for _, a := range args {
		v, err := strconv.Atoi(a)
		if err != nil {
			return nil, fmt.Errorf("%w: %s %q", ErrMalformedHeaderField, keyword, a)
		}
		vals = append(vals, v)
	}
	return vals, nil
}

func parseInt(keyword string, args []string) (int, error) {
	if len(args) != 1 {
		return 0, fmt.Errorf("%w: %s wants one value", ErrMalformedHeaderField, keyword)
	}
	v, err := strconv.Atoi(args[0])
	if err != nil {
		return 0, fmt.Errorf("%w: %s %q", ErrMalformedHeaderField, keyword, args[0])
	}
	return v, nil
}

func parseTypes(args []string) ([]FieldType, error) {
	types := make([]FieldType, 0, len(args))
	for _, a := range args {
		switch strings.ToUpper(a) {
		case "I":
			types = append(types, Signed)
		case "U":
			types = append(types, Unsigned)
		case "F":
			types = append(types, Float)
		default:
			return nil, fmt.Errorf("%w: TYPE %q", ErrMalformedHeaderField, a)
		}
	}
	return types, nil
}

func parseViewpoint(args []string) ([]float64, error) {
	if len(args) != 7 {
		return nil, fmt.Errorf("%w: VIEWPOINT wants 7 values, got %d", ErrMalformedHeaderField, len(args))
	}
	vp := make([]float64, 7)
	for i, a := range args {
		v, err := strconv.ParseFloat(a, 64)
		if err != nil {
			return nil, fmt.Errorf("%w: VIEWPOINT %q", ErrMalformedHeaderField, a)
		}
		vp[i] = v
	}
	return vp, nil
}

// WriteTo serializes the header in the fixed PCD line order.
func (h *Header) WriteTo(w io.Writer) (int64, error) {
	var buf bytes.Buffer
	buf.WriteString("# .PCD v0.7 - Point Cloud Data file format\n")

	version := h.Version
	if version == "" {
		version = "0.7"
	}
	buf.WriteString("VERSION " + version + "\n")
	buf.WriteString("FIELDS " + strings.Join(h.Fields, " ") + "\n")
	buf.WriteString("SIZE " + joinInts(h.Sizes) + "\n")

	types := make([]string, len(h.Types))
	for i, t := range h.Types {
		types[i] = string(t)
	}
	buf.WriteString("TYPE " + strings.Join(types, " ") + "\n")

	counts := h.Counts
	if len(counts) == 0 {
		counts = make([]int, len(h.Fields))
		for i := range counts {
			counts[i] = 1
		}
	}
	buf.WriteString("COUNT " + joinInts(counts) + "\n")
	fmt.Fprintf(&buf, "WIDTH %d\n", h.Width)
	fmt.Fprintf(&buf, "HEIGHT %d\n", h.Height)
	if len(h.Viewpoint) >= 7 {
		buf.WriteString("VIEWPOINT " + joinFloats(h.Viewpoint[:7]) + "\n")
	}
	fmt.Fprintf(&buf, "POINTS %d\n", h.Points)
	buf.WriteString("DATA " + h.Data.String() + "\n")

	n, err := w.Write(buf.Bytes())
	return int64(n), err
}

func joinInts(vals []int) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, " ")
}

func joinFloats(vals []float64) string {
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = strconv.FormatFloat(v, 'g', -1, 64)
	}
	return strings.Join(parts, " ")
}
