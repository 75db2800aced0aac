package math3d

// Triangle is a triangle given by its three corner positions.
type Triangle [3]Vec3

// Tri creates a Triangle.
func Tri(a, b, c Vec3) Triangle {
	return Triangle{a, b, c}
}

// Centroid returns the average of the three corners.
func (t Triangle) Centroid() Vec3 {
	return t[0].Add(t[1]).Add(t[2]).Scale(1.0 / 3.0)
}

// Bounds returns the bounding box of the triangle.
func (t Triangle) Bounds() AABB {
	return AABB{
		Min: t[0].Min(t[1]).Min(t[2]),
		Max: t[0].Max(t[1]).Max(t[2]),
	}
}

// Normal returns the unit normal following counter-clockwise winding.
func (t Triangle) Normal() Vec3 {
	return TriangleNormal(t[0], t[1], t[2]).Normalize()
}

// Area returns the triangle area.
func (t Triangle) Area() float64 {
	return TriangleNormal(t[0], t[1], t[2]).Len() * 0.5
}
