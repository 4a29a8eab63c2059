package scene

import (
	"github.com/chewxy/math32"
)

// Mat4 is a column-major 4x4 transform matrix.
type Mat4 [16]float32

// Identity4 returns the identity matrix.
func Identity4() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Mul returns m * n.
func (m Mat4) Mul(n Mat4) Mat4 {
	var out Mat4
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += m[k*4+row] * n[col*4+k]
			}
			out[col*4+row] = sum
		}
	}
	return out
}

// ApplyPoint transforms v as a point (w = 1).
func (m Mat4) ApplyPoint(v Vec3) Vec3 {
	return Vec3{
		m[0]*v.X + m[4]*v.Y + m[8]*v.Z + m[12],
		m[1]*v.X + m[5]*v.Y + m[9]*v.Z + m[13],
		m[2]*v.X + m[6]*v.Y + m[10]*v.Z + m[14],
	}
}

// ApplyDir transforms v as a direction (w = 0, translation ignored).
func (m Mat4) ApplyDir(v Vec3) Vec3 {
	return Vec3{
		m[0]*v.X + m[4]*v.Y + m[8]*v.Z,
		m[1]*v.X + m[5]*v.Y + m[9]*v.Z,
		m[2]*v.X + m[6]*v.Y + m[10]*v.Z,
	}
}

// ComposeTRS builds a transform from translation, XYZ Euler rotation
// (radians) and scale, applied in scale-rotate-translate order.
func ComposeTRS(t, r, s Vec3) Mat4 {
	cx, sx := math32.Cos(r.X), math32.Sin(r.X)
	cy, sy := math32.Cos(r.Y), math32.Sin(r.Y)
	cz, sz := math32.Cos(r.Z), math32.Sin(r.Z)

	// Rotation matrix for intrinsic XYZ order (Rz * Ry * Rx).
	r00 := cy * cz
	r01 := sx*sy*cz - cx*sz
	r02 := cx*sy*cz + sx*sz
	r10 := cy * sz
	r11 := sx*sy*sz + cx*cz
	r12 := cx*sy*sz - sx*cz
	r20 := -sy
	r21 := sx * cy
	r22 := cx * cy

	return Mat4{
		r00 * s.X, r10 * s.X, r20 * s.X, 0,
		r01 * s.Y, r11 * s.Y, r21 * s.Y, 0,
		r02 * s.Z, r12 * s.Z, r22 * s.Z, 0,
		t.X, t.Y, t.Z, 1,
	}
}
