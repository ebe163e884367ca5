package pcd

// CoordinateSystem tags the handedness of a coordinate convention.
type CoordinateSystem int

const (
	RightHanded CoordinateSystem = iota
	LeftHanded
)

// TransformOptions is a stateless axis scaling applied while
// decoding. Positions are multiplied by the scale factors; normals
// only pick up the sign, a reflection must not change their length.
type TransformOptions struct {
	Source CoordinateSystem
	Target CoordinateSystem
	ScaleX float64
	ScaleY float64
	ScaleZ float64
}

// NewTransformOptions returns the identity transform.
func NewTransformOptions() TransformOptions {
	return TransformOptions{ScaleX: 1, ScaleY: 1, ScaleZ: 1}
}

// FlipYTransform converts between left- and right-handed conventions
// by mirroring the Y axis.
func FlipYTransform(source, target CoordinateSystem) TransformOptions {
	return TransformOptions{Source: source, Target: target, ScaleX: 1, ScaleY: -1, ScaleZ: 1}
}

func (t TransformOptions) NeedsTransformation() bool {
	return t.Source != t.Target || t.ScaleX != 1 || t.ScaleY != 1 || t.ScaleZ != 1
}

// apply transforms one decoded scalar. Only float positions and
// normals are touched, everything else passes through.
func (t TransformOptions) apply(name string, v Value) Value {
	if v.typ != Float {
		return v
	}
	switch name {
	case "x":
		return FloatValue(v.f * t.ScaleX)
	case "y":
		return FloatValue(v.f * t.ScaleY)
	case "z":
		return FloatValue(v.f * t.ScaleZ)
	case "normal_x":
		return FloatValue(v.f * sign(t.ScaleX))
	case "normal_y":
		return FloatValue(v.f * sign(t.ScaleY))
	case "normal_z":
		return FloatValue(v.f * sign(t.ScaleZ))
	}
	return v
}

func sign(s float64) float64 {
	if s < 0 {
		return -1
	}
	return 1
}
