package connectors

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// AABBComponent is the world-space bounding box of a collider, refreshed
// every frame after physics.
type AABBComponent struct {
	Min mgl32.Vec3
	Max mgl32.Vec3
}

func (aabb AABBComponent) Center() mgl32.Vec3 {
	return aabb.Min.Add(aabb.Max).Mul(0.5)
}

// SpatialHashGrid buckets entity ids by the cells their boxes overlap. It
// only stores ids, so queries return broad-phase candidates.
type SpatialHashGrid struct {
	cellSize float32
	cells    map[uint64][]EntityId
}

func NewSpatialHashGrid(cellSize float32) *SpatialHashGrid {
	if cellSize <= 0 {
		cellSize = 2
	}
	return &SpatialHashGrid{
		cellSize: cellSize,
		cells:    make(map[uint64][]EntityId),
	}
}

func (grid *SpatialHashGrid) Clear() {
	clear(grid.cells)
}

func (grid *SpatialHashGrid) Insert(id EntityId, aabb AABBComponent) {
	grid.forCells(aabb, func(key uint64) {
		grid.cells[key] = append(grid.cells[key], id)
	})
}

func (grid *SpatialHashGrid) QueryAABB(aabb AABBComponent) []EntityId {
	unique := make(map[EntityId]struct{})
	var results []EntityId

	grid.forCells(aabb, func(key uint64) {
		for _, id := range grid.cells[key] {
			if _, ok := unique[id]; !ok {
				unique[id] = struct{}{}
				results = append(results, id)
			}
		}
	})
	return results
}

// QueryRadius returns the candidates whose cells overlap the sphere's box.
func (grid *SpatialHashGrid) QueryRadius(center mgl32.Vec3, radius float32) []EntityId {
	return grid.QueryAABB(sphereAABB(center, radius))
}

func (grid *SpatialHashGrid) forCells(aabb AABBComponent, fn func(key uint64)) {
	minX, maxX := grid.getCellIndex(aabb.Min.X()), grid.getCellIndex(aabb.Max.X())
	minY, maxY := grid.getCellIndex(aabb.Min.Y()), grid.getCellIndex(aabb.Max.Y())
	minZ, maxZ := grid.getCellIndex(aabb.Min.Z()), grid.getCellIndex(aabb.Max.Z())

	for x := minX; x <= maxX; x++ {
		for y := minY; y <= maxY; y++ {
			for z := minZ; z <= maxZ; z++ {
				fn(grid.hashKey(x, y, z))
			}
		}
	}
}

func (grid *SpatialHashGrid) getCellIndex(pos float32) int {
	return int(math.Floor(float64(pos / grid.cellSize)))
}

func (grid *SpatialHashGrid) hashKey(x, y, z int) uint64 {
	// large primes for mixing
	const p1 = 73856093
	const p2 = 19349663
	const p3 = 83492791
	return uint64(x*p1 ^ y*p2 ^ z*p3)
}

type SpatialGridModule struct {
	CellSize float32
}

func (m SpatialGridModule) Install(app *App, cmd *Commands) {
	cmd.AddResources(NewSpatialHashGrid(m.CellSize))

	app.UseSystem(
		System(UpdateAABBsSystem).InStage(PostUpdate),
	)
}

// UpdateAABBsSystem refreshes the boxes of entities that already carry an
// AABBComponent.
func UpdateAABBsSystem(cmd *Commands) {
	MakeQuery3[TransformComponent, ColliderComponent, AABBComponent](cmd).Map(func(id EntityId, tr *TransformComponent, col *ColliderComponent, aabb *AABBComponent) bool {
		*aabb = sphereAABB(tr.Position, col.Radius)
		return true
	})
}
