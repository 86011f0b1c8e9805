// Package orientation turns bursty orientation targets into a continuous per-frame camera offset.
//
// Angles are degrees. A Vec3 is ordered yaw, pitch, roll, the same order the wire protocol uses.
package orientation

import (
	"fmt"

	"github.com/vrsync/vrsync/constant"
)

// Axis indexes into a Vec3.
const (
	Yaw = iota
	Pitch
	Roll
)

// DefaultFactor is the fraction of the remaining distance covered per tick.
const DefaultFactor float32 = constant.SmoothingFactor

// Vec3 is a yaw, pitch, roll triple.
type Vec3 [3]float32

func (v Vec3) String() string {
	return fmt.Sprintf("yaw=%.2f pitch=%.2f roll=%.2f", v[Yaw], v[Pitch], v[Roll])
}

// Residual returns the largest per-axis absolute difference between v and w.
func (v Vec3) Residual(w Vec3) float32 {
	var worst float32
	for i := range v {
		d := v[i] - w[i]
		if d < 0 {
			d = -d
		}
		if d > worst {
			worst = d
		}
	}
	return worst
}

// Tick moves current toward target by factor, independently per axis.
// With a constant target the error shrinks by (1-factor) per call and never reaches zero for factor < 1.
func Tick(current, target Vec3, factor float32) Vec3 {
	var r Vec3
	for i := range r {
		r[i] = current[i]*(1-factor) + target[i]*factor
	}
	return r
}
