package entity

// Geometry is a mesh expressed in the shared Vertex format with 16-bit
// indices.
type Geometry struct {
	Vertices []Vertex
	Indices  []uint16
}

// IndexCount returns the number of indices in the geometry.
func (g Geometry) IndexCount() uint32 {
	return uint32(len(g.Indices))
}

// CubeGeometry builds a unit cube of half-extent 1 centered on the origin,
// 24 vertices (4 per face, flat normals) and 36 indices.
//
// Returns:
//   - Geometry: the cube mesh
func CubeGeometry() Geometry {
	vertices := []Vertex{
		// top (+z)
		vert(-1, -1, 1, 0, 0, 1),
		vert(1, -1, 1, 0, 0, 1),
		vert(1, 1, 1, 0, 0, 1),
		vert(-1, 1, 1, 0, 0, 1),
		// bottom (-z)
		vert(-1, 1, -1, 0, 0, -1),
		vert(1, 1, -1, 0, 0, -1),
		vert(1, -1, -1, 0, 0, -1),
		vert(-1, -1, -1, 0, 0, -1),
		// right (+x)
		vert(1, -1, -1, 1, 0, 0),
		vert(1, 1, -1, 1, 0, 0),
		vert(1, 1, 1, 1, 0, 0),
		vert(1, -1, 1, 1, 0, 0),
		// left (-x)
		vert(-1, -1, 1, -1, 0, 0),
		vert(-1, 1, 1, -1, 0, 0),
		vert(-1, 1, -1, -1, 0, 0),
		vert(-1, -1, -1, -1, 0, 0),
		// front (+y)
		vert(1, 1, -1, 0, 1, 0),
		vert(-1, 1, -1, 0, 1, 0),
		vert(-1, 1, 1, 0, 1, 0),
		vert(1, 1, 1, 0, 1, 0),
		// back (-y)
		vert(1, -1, 1, 0, -1, 0),
		vert(-1, -1, 1, 0, -1, 0),
		vert(-1, -1, -1, 0, -1, 0),
		vert(1, -1, -1, 0, -1, 0),
	}

	indices := make([]uint16, 0, 36)
	for face := uint16(0); face < 6; face++ {
		base := face * 4
		indices = append(indices,
			base, base+1, base+2,
			base+2, base+3, base,
		)
	}

	return Geometry{Vertices: vertices, Indices: indices}
}

// PlaneGeometry builds a flat square in the XY plane facing +z with the given
// half-extent, 4 vertices and 6 indices.
//
// Parameters:
//   - size: half-extent of the plane along x and y
//
// Returns:
//   - Geometry: the plane mesh
func PlaneGeometry(size int8) Geometry {
	return Geometry{
		Vertices: []Vertex{
			vert(size, -size, 0, 0, 0, 1),
			vert(size, size, 0, 0, 0, 1),
			vert(-size, -size, 0, 0, 0, 1),
			vert(-size, size, 0, 0, 0, 1),
		},
		Indices: []uint16{0, 1, 2, 2, 1, 3},
	}
}
