package pcd

import "testing"

func TestNeedsTransformation(t *testing.T) {
	if NewTransformOptions().NeedsTransformation() {
		t.Error("identity transform reports needed")
	}

	tr := NewTransformOptions()
	tr.ScaleZ = 2
	if !tr.NeedsTransformation() {
		t.Error("scale != 1 not detected")
	}

	tr = NewTransformOptions()
	tr.Target = LeftHanded
	if !tr.NeedsTransformation() {
		t.Error("handedness change not detected")
	}
}

func TestTransformApply(t *testing.T) {
	tr := FlipYTransform(RightHanded, LeftHanded)
	if !tr.NeedsTransformation() {
		t.Fatal("flip transform reports identity")
	}

	if got := tr.apply("y", FloatValue(2)).Float64(); got != -2 {
		t.Errorf("y = %v, want -2", got)
	}
	if got := tr.apply("normal_y", FloatValue(0.5)).Float64(); got != -0.5 {
		t.Errorf("normal_y = %v, want -0.5", got)
	}
	if got := tr.apply("x", FloatValue(3)).Float64(); got != 3 {
		t.Errorf("x = %v, want 3", got)
	}
	if got := tr.apply("intensity", FloatValue(7)).Float64(); got != 7 {
		t.Errorf("intensity = %v, want 7", got)
	}
	// integer fields pass through even under a position name
	if got := tr.apply("y", SignedValue(4)).Int64(); got != 4 {
		t.Errorf("integer y = %v, want 4", got)
	}
}

func TestTransformScaleMagnitudeVsSign(t *testing.T) {
	tr := NewTransformOptions()
	tr.ScaleY = -3
	if got := tr.apply("y", FloatValue(2)).Float64(); got != -6 {
		t.Errorf("y = %v, want -6", got)
	}
	// normals only take the sign of the scale
	if got := tr.apply("normal_y", FloatValue(0.5)).Float64(); got != -0.5 {
		t.Errorf("normal_y = %v, want -0.5", got)
	}
}
