package main

import (
	"math/rand/v2"

	"github.com/Carmen-Shannon/oxy-procedural/common"
	"github.com/Carmen-Shannon/oxy-procedural/engine/procedural"
	"github.com/Carmen-Shannon/oxy-procedural/engine/procedural/accumulator"
	"github.com/chewxy/math32"
)

// spawner submits randomly chosen meshes at random transforms inside a cube of half extent volume.
type spawner struct {
	rng    *rand.Rand
	meshes []accumulator.Mesh
	volume float32
}

func newSpawner(rng *rand.Rand, volume float32) *spawner {
	return &spawner{
		rng:    rng,
		meshes: []accumulator.Mesh{cubeMesh(), tetrahedronMesh(), quadMesh()},
		volume: volume,
	}
}

// transform returns a random TRS matrix: position within the volume, any rotation, uniform scale in [0.5, 1.5).
func (s *spawner) transform() common.Mat4 {
	pos := common.Vec3{s.coord(), s.coord(), s.coord()}
	rot := common.Vec3{s.angle(), s.angle(), s.angle()}
	k := 0.5 + s.rng.Float32()
	return common.BuildModelMatrix(pos, rot, common.Vec3{k, k, k})
}

func (s *spawner) coord() float32 {
	return (s.rng.Float32()*2 - 1) * s.volume
}

func (s *spawner) angle() float32 {
	return s.rng.Float32() * 2 * math32.Pi
}

// spawn submits n random meshes to the pass and returns how many were accepted.
func (s *spawner) spawn(p procedural.Pass, n int) int {
	accepted := 0
	for range n {
		mesh := s.meshes[s.rng.IntN(len(s.meshes))]
		if err := p.Submit(mesh, s.transform()); err == nil {
			accepted++
		}
	}
	return accepted
}
