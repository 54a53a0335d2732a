package world

import "sync"

// World tracks the state of all blocks: generated terrain and trees, with
// player modifications layered on top.
type World struct {
	Gen *Generator

	mu   sync.RWMutex
	mods map[ChunkPos]map[BlockPos]BlockState

	featMu   sync.Mutex
	features map[ChunkPos]map[BlockPos]BlockState
}

// NewWorld creates a new World generated from seed.
func NewWorld(seed int64) *World {
	return &World{
		Gen:      NewGenerator(seed),
		mods:     make(map[ChunkPos]map[BlockPos]BlockState),
		features: make(map[ChunkPos]map[BlockPos]BlockState),
	}
}

// chunkFeatures returns the generated trees of a chunk, generating them on
// first use. The returned map is never mutated afterwards.
func (w *World) chunkFeatures(cp ChunkPos) map[BlockPos]BlockState {
	w.featMu.Lock()
	defer w.featMu.Unlock()
	f, ok := w.features[cp]
	if !ok {
		f = w.Gen.Features(cp.X, cp.Z)
		w.features[cp] = f
	}
	return f
}

// generated returns the block before any modification.
func (w *World) generated(pos BlockPos) BlockState {
	if pos.Y < 0 || pos.Y >= ChunkHeight {
		return 0
	}
	if pos.Y > SurfaceY {
		if s, ok := w.chunkFeatures(pos.Chunk())[pos]; ok {
			return s
		}
		return 0
	}
	return w.Gen.TerrainAt(pos.X, pos.Y, pos.Z)
}

// GetBlock returns the block state at the given position.
func (w *World) GetBlock(x, y, z int32) BlockState {
	return w.Block(BlockPos{x, y, z})
}

// Block returns the block state at pos.
func (w *World) Block(pos BlockPos) BlockState {
	w.mu.RLock()
	if s, ok := w.mods[pos.Chunk()][pos]; ok {
		w.mu.RUnlock()
		return s
	}
	w.mu.RUnlock()
	return w.generated(pos)
}

// SetBlock sets the block state at the given position.
func (w *World) SetBlock(x, y, z int32, state BlockState) {
	if y < 0 || y >= ChunkHeight {
		return
	}
	pos := BlockPos{x, y, z}
	cp := pos.Chunk()
	w.mu.Lock()
	m, ok := w.mods[cp]
	if !ok {
		m = make(map[BlockPos]BlockState)
		w.mods[cp] = m
	}
	m[pos] = state
	w.mu.Unlock()
}

// Modifications returns a copy of all modified blocks.
func (w *World) Modifications() map[BlockPos]BlockState {
	w.mu.RLock()
	defer w.mu.RUnlock()
	result := make(map[BlockPos]BlockState)
	for _, m := range w.mods {
		for k, v := range m {
			result[k] = v
		}
	}
	return result
}

// HighestBlockY returns the Y of the topmost non-air block in a column.
func (w *World) HighestBlockY(x, z int32) int32 {
	for y := int32(ChunkHeight - 1); y > 0; y-- {
		if w.GetBlock(x, y, z) != 0 {
			return y
		}
	}
	return 0
}

// ChunkData produces the complete 1.8 chunk column data for (chunkX, chunkZ).
func (w *World) ChunkData(chunkX, chunkZ int32) ([]byte, uint16) {
	var sections [SectionsPerChunk][ChunkSectionSize]uint16
	cp := ChunkPos{chunkX, chunkZ}

	for lx := int32(0); lx < 16; lx++ {
		for lz := int32(0); lz < 16; lz++ {
			for y := int32(0); y <= SurfaceY; y++ {
				s := w.Gen.TerrainAt(chunkX*16+lx, y, chunkZ*16+lz)
				sections[y/16][sectionIndex(lx, y, lz)] = uint16(s)
			}
		}
	}
	for pos, s := range w.chunkFeatures(cp) {
		sections[pos.Y/16][sectionIndex(pos.X&15, pos.Y, pos.Z&15)] = uint16(s)
	}

	w.mu.RLock()
	for pos, s := range w.mods[cp] {
		sections[pos.Y/16][sectionIndex(pos.X&15, pos.Y, pos.Z&15)] = uint16(s)
	}
	w.mu.RUnlock()

	return SerializeSections(&sections, w.Gen.Biomes(chunkX, chunkZ))
}
