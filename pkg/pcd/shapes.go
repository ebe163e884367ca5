package pcd

// Built-in point shapes covering the common PCD field sets. Shapes
// are plain structs; anything with a PCDFields table works the same
// way, these just save callers the boilerplate.

// PointXYZ is a plain cartesian point.
type PointXYZ struct {
	X, Y, Z float32
}

func (PointXYZ) PCDFields() []Field[PointXYZ] {
	return []Field[PointXYZ]{
		{Name: "x", Type: Float, Size: 4,
			Get: func(p *PointXYZ) Value { return FloatValue(float64(p.X)) },
			Set: func(p *PointXYZ, v Value) { p.X = float32(v.Float64()) }},
		{Name: "y", Type: Float, Size: 4,
			Get: func(p *PointXYZ) Value { return FloatValue(float64(p.Y)) },
			Set: func(p *PointXYZ, v Value) { p.Y = float32(v.Float64()) }},
		{Name: "z", Type: Float, Size: 4,
			Get: func(p *PointXYZ) Value { return FloatValue(float64(p.Z)) },
			Set: func(p *PointXYZ, v Value) { p.Z = float32(v.Float64()) }},
	}
}

// PointXYZI adds an intensity channel, the shape lidar captures
// usually come in.
type PointXYZI struct {
	X, Y, Z   float32
	Intensity float32
}

func (PointXYZI) PCDFields() []Field[PointXYZI] {
	return []Field[PointXYZI]{
		{Name: "x", Type: Float, Size: 4,
			Get: func(p *PointXYZI) Value { return FloatValue(float64(p.X)) },
			Set: func(p *PointXYZI, v Value) { p.X = float32(v.Float64()) }},
		{Name: "y", Type: Float, Size: 4,
			Get: func(p *PointXYZI) Value { return FloatValue(float64(p.Y)) },
			Set: func(p *PointXYZI, v Value) { p.Y = float32(v.Float64()) }},
		{Name: "z", Type: Float, Size: 4,
			Get: func(p *PointXYZI) Value { return FloatValue(float64(p.Z)) },
			Set: func(p *PointXYZI, v Value) { p.Z = float32(v.Float64()) }},
		{Name: "intensity", Type: Float, Size: 4,
			Get: func(p *PointXYZI) Value { return FloatValue(float64(p.Intensity)) },
			Set: func(p *PointXYZI, v Value) { p.Intensity = float32(v.Float64()) }},
	}
}

// PointXYZRGB carries a packed color channel. RGB holds the
// 0x00RRGGBB pattern in the float's bits, the way PCL writes it.
type PointXYZRGB struct {
	X, Y, Z float32
	RGB     float32
}

func (PointXYZRGB) PCDFields() []Field[PointXYZRGB] {
	return []Field[PointXYZRGB]{
		{Name: "x", Type: Float, Size: 4,
			Get: func(p *PointXYZRGB) Value { return FloatValue(float64(p.X)) },
			Set: func(p *PointXYZRGB, v Value) { p.X = float32(v.Float64()) }},
		{Name: "y", Type: Float, Size: 4,
			Get: func(p *PointXYZRGB) Value { return FloatValue(float64(p.Y)) },
			Set: func(p *PointXYZRGB, v Value) { p.Y = float32(v.Float64()) }},
		{Name: "z", Type: Float, Size: 4,
			Get: func(p *PointXYZRGB) Value { return FloatValue(float64(p.Z)) },
			Set: func(p *PointXYZRGB, v Value) { p.Z = float32(v.Float64()) }},
		{Name: "rgb", Type: Float, Size: 4,
			Get: func(p *PointXYZRGB) Value { return FloatValue(float64(p.RGB)) },
			Set: func(p *PointXYZRGB, v Value) { p.RGB = float32(v.Float64()) }},
	}
}

// PointNormal is a point with its surface normal and curvature.
type PointNormal struct {
	X, Y, Z                   float32
	NormalX, NormalY, NormalZ float32
	Curvature                 float32
}

func (PointNormal) PCDFields() []Field[PointNormal] {
	return []Field[PointNormal]{
		{Name: "x", Type: Float, Size: 4,
			Get: func(p *PointNormal) Value { return FloatValue(float64(p.X)) },
			Set: func(p *PointNormal, v Value) { p.X = float32(v.Float64()) }},
		{Name: "y", Type: Float, Size: 4,
			Get: func(p *PointNormal) Value { return FloatValue(float64(p.Y)) },
			Set: func(p *PointNormal, v Value) { p.Y = float32(v.Float64()) }},
		{Name: "z", Type: Float, Size: 4,
			Get: func(p *PointNormal) Value { return FloatValue(float64(p.Z)) },
			Set: func(p *PointNormal, v Value) { p.Z = float32(v.Float64()) }},
		{Name: "normal_x", Type: Float, Size: 4,
			Get: func(p *PointNormal) Value { return FloatValue(float64(p.NormalX)) },
			Set: func(p *PointNormal, v Value) { p.NormalX = float32(v.Float64()) }},
		{Name: "normal_y", Type: Float, Size: 4,
			Get: func(p *PointNormal) Value { return FloatValue(float64(p.NormalY)) },
			Set: func(p *PointNormal, v Value) { p.NormalY = float32(v.Float64()) }},
		{Name: "normal_z", Type: Float, Size: 4,
			Get: func(p *PointNormal) Value { return FloatValue(float64(p.NormalZ)) },
			Set: func(p *PointNormal, v Value) { p.NormalZ = float32(v.Float64()) }},
		{Name: "curvature", Type: Float, Size: 4,
			Get: func(p *PointNormal) Value { return FloatValue(float64(p.Curvature)) },
			Set: func(p *PointNormal, v Value) { p.Curvature = float32(v.Float64()) }},
	}
}
