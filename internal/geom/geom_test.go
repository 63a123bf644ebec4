package geom

import (
	"math"
	"testing"
)

const eps = 1e-9

func near(a, b float64) bool { return math.Abs(a-b) < eps }

func TestVec3_Arithmetic(t *testing.T) {
	a := V(1, 2, 3)
	b := V(4, 5, 6)

	if got := a.Add(b); got != V(5, 7, 9) {
		t.Errorf("Add failed: got %v", got)
	}
	if got := b.Sub(a); got != V(3, 3, 3) {
		t.Errorf("Sub failed: got %v", got)
	}
	if got := a.Scale(2); got != V(2, 4, 6) {
		t.Errorf("Scale failed: got %v", got)
	}
	if got := b.Div(2); got != V(2, 2.5, 3) {
		t.Errorf("Div failed: got %v", got)
	}
	if got := a.Dot(b); got != 32 {
		t.Errorf("Dot failed: got %v", got)
	}
}

func TestVec3_Length(t *testing.T) {
	tests := []struct {
		v        Vec3
		expected float64
	}{
		{V(3, 4, 0), 5},
		{V(0, 0, 0), 0},
		{V(1, 2, 2), 3},
		{V(-2, 0, 0), 2},
	}

	for _, tt := range tests {
		if got := tt.v.Length(); !near(got, tt.expected) {
			t.Errorf("Length(%v) = %v, want %v", tt.v, got, tt.expected)
		}
	}
}

func TestVec3_DivByZero(t *testing.T) {
	v := V(1, -1, 0).Div(0)
	if !math.IsInf(v.X, 1) || !math.IsInf(v.Y, -1) || !math.IsNaN(v.Z) {
		t.Errorf("expected +Inf, -Inf, NaN, got %v", v)
	}
	if v.IsValid() {
		t.Error("vector with Inf/NaN reported valid")
	}
}

func TestVec3_Indexing(t *testing.T) {
	v := V(7, 8, 9)
	for i, want := range []float64{7, 8, 9} {
		if got := v.At(i); got != want {
			t.Errorf("At(%d) = %v, want %v", i, got, want)
		}
	}
	if v.At(3) != 0 || v.At(-1) != 0 {
		t.Error("out of range index should read 0")
	}

	w := v.Set(1, 42)
	if w.Y != 42 || v.Y != 8 {
		t.Errorf("Set should return a modified copy, got %v from %v", w, v)
	}
	if v.Set(5, 1) != v {
		t.Error("out of range Set should not modify")
	}
}

func TestVec3_ArrayRoundTrip(t *testing.T) {
	tests := []Vec3{
		V(0, 0, 0),
		V(1.5, -2.25, 1e-12),
		V(-210, 205.125, 130),
		V(math.MaxFloat64, -math.SmallestNonzeroFloat64, 3),
	}

	for _, v := range tests {
		if got := FromSlice(v.Slice()); got != v {
			t.Errorf("slice round trip: got %v, want %v", got, v)
		}
		if got := FromArray(v.Array()); got != v {
			t.Errorf("array round trip: got %v, want %v", got, v)
		}
		buf := make([]float64, 3)
		v.CopyTo(buf)
		if got := FromSlice(buf); got != v {
			t.Errorf("CopyTo round trip: got %v, want %v", got, v)
		}
	}
}

func TestMatrix_Layout(t *testing.T) {
	raw := make([]float64, 16)
	for i := range raw {
		raw[i] = float64(i)
	}
	m := MatrixFromSlice(raw)

	if m.At(1, 0) != 1 || m.At(0, 1) != 4 || m.At(2, 3) != 14 {
		t.Errorf("column-major access broken: %v", m)
	}
	if m.Translation() != V(12, 13, 14) {
		t.Errorf("Translation = %v", m.Translation())
	}
	for i := range raw {
		if m.Index(i) != raw[i] || m.Slice()[i] != raw[i] {
			t.Fatalf("raw access mismatch at %d", i)
		}
	}
}

func TestMatrix_Rotate(t *testing.T) {
	m := RotationZ(math.Pi / 2)
	got := m.Rotate(V(1, 0, 0))
	if !near(got.X, 0) || !near(got.Y, 1) || !near(got.Z, 0) {
		t.Errorf("Rz(90°)·x = %v, want 0,1,0", got)
	}

	m = RotationX(math.Pi / 2).Mul(RotationY(math.Pi / 2))
	got = m.Rotate(V(0, 0, 1))
	// Ry maps z to x, Rx leaves x alone.
	if !near(got.X, 1) || !near(got.Y, 0) || !near(got.Z, 0) {
		t.Errorf("Rx·Ry·z = %v, want 1,0,0", got)
	}
}

// rotateByQuaternion applies q to v as q·v·q*.
func rotateByQuaternion(q Quaternion, v Vec3) Vec3 {
	u := V(q.X, q.Y, q.Z)
	s := q.W
	cross := func(a, b Vec3) Vec3 {
		return V(a.Y*b.Z-a.Z*b.Y, a.Z*b.X-a.X*b.Z, a.X*b.Y-a.Y*b.X)
	}
	return u.Scale(2 * u.Dot(v)).
		Add(v.Scale(s*s - u.Dot(u))).
		Add(cross(u, v).Scale(2 * s))
}

func TestQuaternionFromMatrix_Branches(t *testing.T) {
	tests := []struct {
		name   string
		m      Matrix
		branch extraction
		want   Quaternion
	}{
		{"identity", Identity(), fromTrace, Quaternion{0, 0, 0, 1}},
		{"90 about z", RotationZ(math.Pi / 2), fromTrace, Quaternion{0, 0, math.Sqrt2 / 2, math.Sqrt2 / 2}},
		{"180 about x", RotationX(math.Pi), fromXX, Quaternion{1, 0, 0, 0}},
		{"180 about y", RotationY(math.Pi), fromYY, Quaternion{0, 1, 0, 0}},
		{"180 about z", RotationZ(math.Pi), fromZZ, Quaternion{0, 0, 1, 0}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, branch := extract(tt.m)
			if branch != tt.branch {
				t.Errorf("branch = %v, want %v", branch, tt.branch)
			}
			if !near(math.Abs(q.Norm()), 1) {
				t.Errorf("|q| = %v, want 1", q.Norm())
			}
			if !near(q.X, tt.want.X) || !near(q.Y, tt.want.Y) || !near(q.Z, tt.want.Z) || !near(q.W, tt.want.W) {
				t.Errorf("q = %v, want %v", q, tt.want)
			}
		})
	}
}

func TestQuaternionFromMatrix_MatchesRotation(t *testing.T) {
	// Angles past 120° push the trace negative and exercise every branch.
	angles := []float64{0.1, 1.0, 2.2, 2.9, math.Pi - 1e-6}
	axes := []func(float64) Matrix{RotationX, RotationY, RotationZ}
	v := V(0.3, -0.7, 0.65)

	for _, a := range angles {
		for i, rot := range axes {
			m := rot(a).Mul(RotationY(0.2))
			q := QuaternionFromMatrix(m)
			if math.Abs(q.Norm()-1) > 1e-9 {
				t.Errorf("axis %d angle %.3f: |q| = %v", i, a, q.Norm())
			}
			want := m.Rotate(v)
			got := rotateByQuaternion(q, v)
			if want.Sub(got).Length() > 1e-9 {
				t.Errorf("axis %d angle %.3f: q rotates to %v, matrix to %v", i, a, got, want)
			}
		}
	}
}
