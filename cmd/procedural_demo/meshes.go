package main

import (
	"github.com/Carmen-Shannon/oxy-procedural/common"
	"github.com/Carmen-Shannon/oxy-procedural/engine/procedural/accumulator"
	"github.com/chewxy/math32"
)

// cubeMesh builds a unit cube centered at the origin with flat per-face normals (24 vertices, 36 indices).
func cubeMesh() *accumulator.MeshData {
	faces := []struct {
		normal  common.Vec3
		corners [4]common.Vec3
	}{
		{common.Vec3{0, 0, 1}, [4]common.Vec3{{-0.5, -0.5, 0.5}, {0.5, -0.5, 0.5}, {0.5, 0.5, 0.5}, {-0.5, 0.5, 0.5}}},
		{common.Vec3{0, 0, -1}, [4]common.Vec3{{0.5, -0.5, -0.5}, {-0.5, -0.5, -0.5}, {-0.5, 0.5, -0.5}, {0.5, 0.5, -0.5}}},
		{common.Vec3{1, 0, 0}, [4]common.Vec3{{0.5, -0.5, 0.5}, {0.5, -0.5, -0.5}, {0.5, 0.5, -0.5}, {0.5, 0.5, 0.5}}},
		{common.Vec3{-1, 0, 0}, [4]common.Vec3{{-0.5, -0.5, -0.5}, {-0.5, -0.5, 0.5}, {-0.5, 0.5, 0.5}, {-0.5, 0.5, -0.5}}},
		{common.Vec3{0, 1, 0}, [4]common.Vec3{{-0.5, 0.5, 0.5}, {0.5, 0.5, 0.5}, {0.5, 0.5, -0.5}, {-0.5, 0.5, -0.5}}},
		{common.Vec3{0, -1, 0}, [4]common.Vec3{{-0.5, -0.5, -0.5}, {0.5, -0.5, -0.5}, {0.5, -0.5, 0.5}, {-0.5, -0.5, 0.5}}},
	}

	m := &accumulator.MeshData{}
	for _, f := range faces {
		base := uint32(len(m.Vertices))
		for _, c := range f.corners {
			m.Vertices = append(m.Vertices, c)
			m.Normal = append(m.Normal, f.normal)
		}
		m.Indices = append(m.Indices, base, base+1, base+2, base, base+2, base+3)
	}
	return m
}

// tetrahedronMesh builds a regular tetrahedron with flat normals (12 vertices, 12 indices).
func tetrahedronMesh() *accumulator.MeshData {
	s := 1 / math32.Sqrt(3)
	p := [4]common.Vec3{{s, s, s}, {-s, -s, s}, {-s, s, -s}, {s, -s, -s}}
	tris := [4][3]int{{0, 1, 3}, {0, 2, 1}, {0, 3, 2}, {1, 2, 3}}

	m := &accumulator.MeshData{}
	for _, t := range tris {
		a, b, c := p[t[0]], p[t[1]], p[t[2]]
		n := faceNormal(a, b, c)
		base := uint32(len(m.Vertices))
		m.Vertices = append(m.Vertices, a, b, c)
		m.Normal = append(m.Normal, n, n, n)
		m.Indices = append(m.Indices, base, base+1, base+2)
	}
	return m
}

// quadMesh builds a unit quad in the XY plane facing +Z (4 vertices, 6 indices).
func quadMesh() *accumulator.MeshData {
	n := common.Vec3{0, 0, 1}
	return &accumulator.MeshData{
		Vertices: []common.Vec3{{-0.5, -0.5, 0}, {0.5, -0.5, 0}, {0.5, 0.5, 0}, {-0.5, 0.5, 0}},
		Normal:   []common.Vec3{n, n, n, n},
		Indices:  []uint32{0, 1, 2, 0, 2, 3},
	}
}

// faceNormal returns the unit normal of a counter-clockwise triangle.
func faceNormal(a, b, c common.Vec3) common.Vec3 {
	u := common.Vec3{b[0] - a[0], b[1] - a[1], b[2] - a[2]}
	v := common.Vec3{c[0] - a[0], c[1] - a[1], c[2] - a[2]}
	n := common.Vec3{
		u[1]*v[2] - u[2]*v[1],
		u[2]*v[0] - u[0]*v[2],
		u[0]*v[1] - u[1]*v[0],
	}
	l := math32.Sqrt(n[0]*n[0] + n[1]*n[1] + n[2]*n[2])
	return common.Vec3{n[0] / l, n[1] / l, n[2] / l}
}
