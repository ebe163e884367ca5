package pcd

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/seqsense/pcgol/pc"
)

func sampleCloud() *Cloud[PointXYZI] {
	return &Cloud[PointXYZI]{
		Points: []PointXYZI{
			{X: 1, Y: 0, Z: 0, Intensity: 0.25},
			{X: -2.5, Y: 3.75, Z: 0.125, Intensity: 100},
			{X: 0.1, Y: -0.2, Z: 0.3, Intensity: 0},
		},
	}
}

func TestEncodeASCIIRoundTrip(t *testing.T) {
	orig := sampleCloud()
	var buf bytes.Buffer
	if err := Encode(&buf, orig, ASCII); err != nil {
		t.Fatal(err)
	}
	got, err := Decode[PointXYZI](&buf)
	if err != nil {
		t.Fatal(err)
	}
	if got.Len() != orig.Len() {
		t.Fatalf("len = %d, want %d", got.Len(), orig.Len())
	}
	for i := range orig.Points {
		if got.Points[i] != orig.Points[i] {
			t.Errorf("point %d = %+v, want %+v", i, got.Points[i], orig.Points[i])
		}
	}
	if got.Header.Width != 3 || got.Header.Height != 1 || got.Header.Points != 3 {
		t.Errorf("derived dims = %+v", got.Header)
	}
}

func TestEncodeASCIIFormat(t *testing.T) {
	// whole floats must serialize without a decimal point
	c := &Cloud[PointXYZ]{Points: []PointXYZ{{1, 0, -2}}}
	var buf bytes.Buffer
	if err := Encode(&buf, c, ASCII); err != nil {
		t.Fatal(err)
	}
	body := buf.String()
	i := strings.Index(body, "DATA ascii\n")
	if i < 0 {
		t.Fatalf("no DATA line:\n%s", body)
	}
	if got := strings.TrimSpace(body[i+len("DATA ascii\n"):]); got != "1 0 -2" {
		t.Fatalf("row = %q, want %q", got, "1 0 -2")
	}
}

func TestEncodeBinaryRoundTrip(t *testing.T) {
	orig := sampleCloud()
	var buf bytes.Buffer
	if err := Encode(&buf, orig, Binary); err != nil {
		t.Fatal(err)
	}
	got, err := Decode[PointXYZI](&buf)
	if err != nil {
		t.Fatal(err)
	}
	for i := range orig.Points {
		if got.Points[i] != orig.Points[i] {
			t.Errorf("point %d = %+v, want %+v (binary must be bit exact)", i, got.Points[i], orig.Points[i])
		}
	}
}

func TestEncodeBinaryCompressedUnsupported(t *testing.T) {
	var buf bytes.Buffer
	err := Encode(&buf, sampleCloud(), BinaryCompressed)
	if !errors.Is(err, ErrUnsupportedEncoding) {
		t.Fatalf("got %v, want ErrUnsupportedEncoding", err)
	}
	if buf.Len() != 0 {
		t.Errorf("%d bytes written before the failure", buf.Len())
	}
}

// ringPoint declares its members out of canonical order on purpose.
type ringPoint struct {
	Ring uint16
	X    float32
}

func (ringPoint) PCDFields() []Field[ringPoint] {
	return []Field[ringPoint]{
		{Name: "ring", Type: Unsigned, Size: 2,
			Get: func(p *ringPoint) Value { return UnsignedValue(uint64(p.Ring)) },
			Set: func(p *ringPoint, v Value) { p.Ring = uint16(v.Uint64()) }},
		{Name: "x", Type: Float, Size: 4,
			Get: func(p *ringPoint) Value { return FloatValue(float64(p.X)) },
			Set: func(p *ringPoint, v Value) { p.X = float32(v.Float64()) }},
	}
}

func TestEncodeHeaderDerivation(t *testing.T) {
	c := &Cloud[ringPoint]{Points: []ringPoint{{Ring: 7, X: 1.5}}}
	var buf bytes.Buffer
	if err := Encode(&buf, c, ASCII); err != nil {
		t.Fatal(err)
	}
	h, err := ParseHeader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatal(err)
	}
	// x outranks ring regardless of declaration order
	if h.Fields[0] != "x" || h.Fields[1] != "ring" {
		t.Errorf("fields = %v", h.Fields)
	}
	if h.Sizes[0] != 4 || h.Sizes[1] != 2 {
		t.Errorf("sizes = %v", h.Sizes)
	}
	if h.Types[0] != Float || h.Types[1] != Unsigned {
		t.Errorf("types = %v", h.Types)
	}

	got, err := Decode[ringPoint](&buf)
	if err != nil {
		t.Fatal(err)
	}
	if got.Points[0] != (ringPoint{Ring: 7, X: 1.5}) {
		t.Errorf("round trip = %+v", got.Points[0])
	}
}

func TestEncodeOrganizedKeepsGrid(t *testing.T) {
	c := &Cloud[PointXYZ]{
		Header: Header{Width: 2, Height: 2},
		Points: []PointXYZ{{1, 0, 0}, {2, 0, 0}, {3, 0, 0}, {4, 0, 0}},
	}
	var buf bytes.Buffer
	if err := Encode(&buf, c, Binary); err != nil {
		t.Fatal(err)
	}
	got, err := Decode[PointXYZ](&buf)
	if err != nil {
		t.Fatal(err)
	}
	if got.Header.Width != 2 || got.Header.Height != 2 {
		t.Fatalf("dims = %dx%d, want 2x2", got.Header.Width, got.Header.Height)
	}
	if !got.IsOrganized() {
		t.Error("2x2 cloud not organized")
	}
	p, err := got.At(1, 1)
	if err != nil {
		t.Fatal(err)
	}
	if p.X != 4 {
		t.Errorf("At(1,1).X = %v, want 4", p.X)
	}
}

func TestEncodeCrossPcgol(t *testing.T) {
	// a second PCD implementation must agree with our binary output:
	// encode, push through pcgol's unmarshal/marshal, decode again
	orig := sampleCloud()
	var buf bytes.Buffer
	if err := Encode(&buf, orig, Binary); err != nil {
		t.Fatal(err)
	}

	pp, err := pc.Unmarshal(&buf)
	if err != nil {
		t.Fatal(err)
	}
	var back bytes.Buffer
	if err := pc.Marshal(pp, &back); err != nil {
		t.Fatal(err)
	}

	got, err := Decode[PointXYZI](&back)
	if err != nil {
		t.Fatal(err)
	}
	if got.Len() != orig.Len() {
		t.Fatalf("len = %d, want %d", got.Len(), orig.Len())
	}
	for i := range orig.Points {
		if got.Points[i] != orig.Points[i] {
			t.Errorf("point %d = %+v, want %+v", i, got.Points[i], orig.Points[i])
		}
	}
}
