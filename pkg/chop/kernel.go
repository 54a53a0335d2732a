package chop

import "github.com/StoreStation/TimberCraft/pkg/world"

// Kernel lists the neighbours inspected around each log. It is built top
// first and then reversed, so the block straight above is pushed last and
// explored first.
var Kernel = reversed([]world.BlockPos{
	// top
	{Y: 1},

	// above, touching
	{X: 1, Y: 1},
	{X: -1, Y: 1},
	{Y: 1, Z: 1},
	{Y: 1, Z: -1},

	// above, diagonal
	{X: 1, Y: 1, Z: 1},
	{X: 1, Y: 1, Z: -1},
	{X: -1, Y: 1, Z: 1},
	{X: -1, Y: 1, Z: -1},

	// side, touching
	{X: 1},
	{X: -1},
	{Z: 1},
	{Z: -1},

	// side, diagonal
	{X: 1, Z: 1},
	{X: 1, Z: -1},
	{X: -1, Z: 1},
	{X: -1, Z: -1},
})

func reversed(in []world.BlockPos) []world.BlockPos {
	out := make([]world.BlockPos, len(in))
	for i, p := range in {
		out[len(in)-1-i] = p
	}
	return out
}
