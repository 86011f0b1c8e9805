package orientation

import "math"

// Mat4 is a column-major 4x4 matrix, the layout GL view transforms use.
type Mat4 [16]float32

// Identity returns the identity matrix.
func Identity() Mat4 {
	return Mat4{
		1, 0, 0, 0,
		0, 1, 0, 0,
		0, 0, 1, 0,
		0, 0, 0, 1,
	}
}

// Mul returns m * n.
func (m Mat4) Mul(n Mat4) Mat4 {
	var r Mat4
	for col := 0; col < 4; col++ {
		for row := 0; row < 4; row++ {
			var sum float32
			for k := 0; k < 4; k++ {
				sum += m[row+4*k] * n[k+4*col]
			}
			r[row+4*col] = sum
		}
	}
	return r
}

// Rotation builds a rotation of angle degrees about the axis (x, y, z). The axis need not be normalized.
func Rotation(angle, x, y, z float32) Mat4 {
	r := Identity()

	length := float32(math.Sqrt(float64(x*x + y*y + z*z)))
	if length == 0 {
		return r
	}
	if length != 1 {
		x, y, z = x/length, y/length, z/length
	}

	rad := float64(angle) * math.Pi / 180
	s := float32(math.Sin(rad))
	c := float32(math.Cos(rad))
	nc := 1 - c

	r[0] = x*x*nc + c
	r[4] = x*y*nc - z*s
	r[8] = z*x*nc + y*s

	r[1] = x*y*nc + z*s
	r[5] = y*y*nc + c
	r[9] = y*z*nc - x*s

	r[2] = z*x*nc - y*s
	r[6] = y*z*nc + x*s
	r[10] = z*z*nc + c

	return r
}

// Rotate returns m post-multiplied by a rotation of angle degrees about (x, y, z).
func (m Mat4) Rotate(angle, x, y, z float32) Mat4 {
	return m.Mul(Rotation(angle, x, y, z))
}

// Apply rotates a view transform by the orientation offset o: the pitch component about X,
// then the roll component about Y, then the negated yaw about Z.
func Apply(view Mat4, o Vec3) Mat4 {
	return view.
		Rotate(o[Pitch], 1, 0, 0).
		Rotate(o[Roll], 0, 1, 0).
		Rotate(-o[Yaw], 0, 0, 1)
}
