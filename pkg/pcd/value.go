package pcd

// Value is a closed tagged variant holding one decoded scalar. Field
// accessors and the DecodeFunc record path exchange scalars as Values
// so shapes never deal with the wire representation.
type Value struct {
	typ FieldType
	i   int64
	u   uint64
	f   float64
}

func SignedValue(v int64) Value    { return Value{typ: Signed, i: v} }
func UnsignedValue(v uint64) Value { return Value{typ: Unsigned, u: v} }
func FloatValue(v float64) Value   { return Value{typ: Float, f: v} }

// Type reports the variant tag. The zero Value has type 0.
func (v Value) Type() FieldType { return v.typ }

func (v Value) Int64() int64 {
	switch v.typ {
	case Signed:
		return v.i
	case Unsigned:
		return int64(v.u)
	case Float:
		return int64(v.f)
	}
	return 0
}

func (v Value) Uint64() uint64 {
	switch v.typ {
	case Signed:
		return uint64(v.i)
	case Unsigned:
		return v.u
	case Float:
		return uint64(v.f)
	}
	return 0
}

func (v Value) Float64() float64 {
	switch v.typ {
	case Signed:
		return float64(v.i)
	case Unsigned:
		return float64(v.u)
	case Float:
		return v.f
	}
	return 0
}
