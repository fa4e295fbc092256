package math

// Up is the normal of flat ground.
var Up = Vec3{0, 0, 1}

// SurfaceNormal returns the unit normal of a height field with the given
// slopes along X and Y.
func SurfaceNormal(dzdx, dzdy float32) Vec3 {
	tx := Vec3{1, 0, dzdx}
	ty := Vec3{0, 1, dzdy}
	return tx.Cross(ty).Normalize()
}

// Lambert returns the diffuse intensity of a surface with normal n lit
// from direction light, clamped to [0, 1].
func Lambert(n, light Vec3) float32 {
	d := n.Dot(light.Normalize())
	if d < 0 {
		return 0
	}
	if d > 1 {
		return 1
	}
	return d
}
