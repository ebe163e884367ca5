// Package pcd reads and writes Point Cloud Data (PCD) v0.7 files in
// the ascii, binary and binary_compressed encodings. Points of any
// caller-defined shape are bound to header fields through a static
// field table the shape declares, see Point and Field.
package pcd

import "errors"

var (
	ErrMissingDataField     = errors.New("pcd header has no DATA field")
	ErrMalformedHeaderField = errors.New("malformed pcd header field")
	ErrUnsupportedEncoding  = errors.New("unsupported pcd encoding")
	ErrDecompressionFailure = errors.New("pcd payload decompression failed")
	ErrIndexOutOfRange      = errors.New("index out of range")
)

// Encoding selects the payload format named by the DATA header line.
type Encoding int

const (
	ASCII Encoding = iota
	Binary
	BinaryCompressed
)

func (e Encoding) String() string {
	switch e {
	case ASCII:
		return "ascii"
	case Binary:
		return "binary"
	case BinaryCompressed:
		return "binary_compressed"
	}
	return "unknown"
}

func parseEncoding(s string) Encoding {
	switch s {
	case "binary":
		return Binary
	case "binary_compressed":
		return BinaryCompressed
	}
	// unknown DATA values fall back to ascii
	return ASCII
}

// FieldType is the scalar class of a field, using the letters of the
// TYPE header line.
type FieldType byte

const (
	Signed   FieldType = 'I'
	Unsigned FieldType = 'U'
	Float    FieldType = 'F'
)
