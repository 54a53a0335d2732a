package world

import (
	"encoding/binary"

	perlin "github.com/aquilax/go-perlin"
)

const (
	ChunkSectionSize = 16 * 16 * 16
	ChunkHeight      = 256
	SectionsPerChunk = ChunkHeight / 16
)

// SurfaceY is the Y level of the top terrain layer.
const SurfaceY = 4

// Generator produces a flat forest world from a seed: bedrock, three layers
// of dirt and a biome-dependent surface, with trees standing on top.
type Generator struct {
	Seed   int64
	biomes *biomeNoise
	forest *perlin.Perlin // forest clusters and clearings
}

// NewGenerator creates a terrain generator from a seed.
func NewGenerator(seed int64) *Generator {
	return &Generator{
		Seed:   seed,
		biomes: newBiomeNoise(seed),
		forest: perlin.NewPerlin(2, 2, 3, seed+4),
	}
}

// BiomeAt returns the biome of a world column.
func (g *Generator) BiomeAt(x, z int32) *Biome {
	return g.biomes.BiomeAt(x, z)
}

// TerrainAt returns the generated block below any trees.
func (g *Generator) TerrainAt(x, y, z int32) BlockState {
	switch {
	case y < 0 || y > SurfaceY:
		return 0
	case y == 0:
		return NewBlockState(BlockBedrock, 0)
	case y < SurfaceY:
		return NewBlockState(BlockDirt, 0)
	default:
		return g.BiomeAt(x, z).SurfaceBlock
	}
}

// columnHash returns a deterministic value in [0, 1] for a world column.
func (g *Generator) columnHash(x, z int32, salt int64) float64 {
	hash := uint32(int64(x)*73856093 ^ int64(z)*191152071 ^ (g.Seed + salt))
	hash ^= hash >> 16
	hash *= 0x85ebca6b
	hash ^= hash >> 13
	hash *= 0xc2b2ae35
	hash ^= hash >> 16
	return float64(hash) / float64(0xFFFFFFFF)
}

// shouldPlaceTree returns true if a tree should be rooted at (x, z).
func (g *Generator) shouldPlaceTree(x, z int32, biome *Biome) bool {
	if biome.TreeDensity <= 0 {
		return false
	}
	const clusterScale = 0.02
	cluster := sample01(g.forest, float64(x)*clusterScale, float64(z)*clusterScale)
	return g.columnHash(x, z, 0) < biome.TreeDensity*cluster*1.5
}

// featureSet collects the tree blocks of one chunk in world coordinates.
type featureSet map[BlockPos]BlockState

// trunk places a log, overwriting foliage but nothing else.
func (f featureSet) trunk(x, y, z int32, state BlockState) {
	pos := BlockPos{x, y, z}
	if cur, ok := f[pos]; ok && !cur.IsLeaf() && !cur.IsNaturalLeaf() {
		return
	}
	f[pos] = state
}

// foliage places leaves into empty cells only.
func (f featureSet) foliage(x, y, z int32, state BlockState) {
	pos := BlockPos{x, y, z}
	if _, ok := f[pos]; ok {
		return
	}
	f[pos] = state
}

// Features generates the trees rooted in chunk (chunkX, chunkZ). Trunks are
// rooted at least three blocks from the chunk edge, so every tree fits inside
// its own chunk and chunks can be generated independently.
func (g *Generator) Features(chunkX, chunkZ int32) map[BlockPos]BlockState {
	f := make(featureSet)
	var roots []BlockPos

	for lx := int32(3); lx < 13; lx++ {
		for lz := int32(3); lz < 13; lz++ {
			wx, wz := chunkX*16+lx, chunkZ*16+lz
			biome := g.BiomeAt(wx, wz)
			if !g.shouldPlaceTree(wx, wz, biome) {
				continue
			}

			// Keep trunks apart so neighbouring trees never share logs.
			crowded := false
			for _, r := range roots {
				dx, dz := r.X-wx, r.Z-wz
				if dx >= -3 && dx <= 3 && dz >= -3 && dz <= 3 {
					crowded = true
					break
				}
			}
			if crowded {
				continue
			}
			roots = append(roots, BlockPos{wx, SurfaceY + 1, wz})

			pick := int(g.columnHash(wx, wz, 17) * float64(len(biome.Trees)))
			if pick >= len(biome.Trees) {
				pick = len(biome.Trees) - 1
			}
			y := int32(SurfaceY + 1)
			switch biome.Trees[pick] {
			case TreeBirch:
				g.buildGenericTree(f, wx, y, wz, 2)
			case TreeSpruce:
				g.buildSpruceTree(f, wx, y, wz)
			case TreeDarkOak:
				g.buildDarkOakTree(f, wx, y, wz)
			case TreeHugeMushroom:
				g.buildHugeMushroom(f, wx, y, wz)
			default:
				g.buildGenericTree(f, wx, y, wz, 0)
			}
		}
	}
	return f
}

// buildGenericTree builds a standard 5x5 rounded canopy tree (Oak or Birch).
func (g *Generator) buildGenericTree(f featureSet, x, y, z int32, wood uint16) {
	trunkTop := y + 3
	if g.columnHash(x, z, 31) < 0.5 {
		trunkTop++
	}
	logState := NewBlockState(BlockLog, wood)
	leafState := NewBlockState(BlockLeaves, wood)

	for ty := y; ty <= trunkTop+1; ty++ {
		f.trunk(x, ty, z, logState)
	}
	for ly := trunkTop - 1; ly <= trunkTop; ly++ {
		for dx := int32(-2); dx <= 2; dx++ {
			for dz := int32(-2); dz <= 2; dz++ {
				if (dx == -2 || dx == 2) && (dz == -2 || dz == 2) {
					continue
				}
				f.foliage(x+dx, ly, z+dz, leafState)
			}
		}
	}
	for dy := int32(1); dy <= 2; dy++ {
		ly := trunkTop + dy
		for dx := int32(-1); dx <= 1; dx++ {
			for dz := int32(-1); dz <= 1; dz++ {
				if dy == 2 && dx != 0 && dz != 0 {
					continue
				}
				f.foliage(x+dx, ly, z+dz, leafState)
			}
		}
	}
}

// buildSpruceTree builds a conical spruce tree.
func (g *Generator) buildSpruceTree(f featureSet, x, y, z int32) {
	height := 5 + int32(g.columnHash(x, z, 43)*3)
	trunkTop := y + height - 1
	logState := NewBlockState(BlockLog, 1)
	leafState := NewBlockState(BlockLeaves, 1)

	for ty := y; ty <= trunkTop; ty++ {
		f.trunk(x, ty, z, logState)
	}
	for dy := int32(2); dy <= height; dy++ {
		ly := y + dy
		radius := int32(2)
		if dy > height-2 {
			radius = 0
		} else if dy > height-4 {
			radius = 1
		}
		for dx := -radius; dx <= radius; dx++ {
			for dz := -radius; dz <= radius; dz++ {
				if radius > 1 && (dx == -radius || dx == radius) && (dz == -radius || dz == radius) {
					continue
				}
				f.foliage(x+dx, ly, z+dz, leafState)
			}
		}
	}
}

// buildDarkOakTree builds a 2x2 trunk tree with a broad canopy.
func (g *Generator) buildDarkOakTree(f featureSet, x, y, z int32) {
	height := 6 + int32(g.columnHash(x, z, 59)*3)
	trunkTop := y + height - 1
	logState := NewBlockState(BlockLog2, 1)
	leafState := NewBlockState(BlockLeaves2, 1)

	for dx := int32(0); dx <= 1; dx++ {
		for dz := int32(0); dz <= 1; dz++ {
			for ty := y; ty <= trunkTop; ty++ {
				f.trunk(x+dx, ty, z+dz, logState)
			}
		}
	}
	for dy := height - 3; dy <= height; dy++ {
		ly := y + dy
		radius := int32(3)
		if dy == height {
			radius = 2
		}
		for dx := -radius + 1; dx <= radius; dx++ {
			for dz := -radius + 1; dz <= radius; dz++ {
				if dx*dx+dz*dz > radius*radius+2 {
					continue
				}
				f.foliage(x+dx, ly, z+dz, leafState)
			}
		}
	}
}

// buildHugeMushroom builds a brown huge mushroom: a stem and a flat cap.
func (g *Generator) buildHugeMushroom(f featureSet, x, y, z int32) {
	height := 4 + int32(g.columnHash(x, z, 71)*3)
	stem := NewBlockState(BlockHugeBrown, 10)
	capState := NewBlockState(BlockHugeBrown, 14)

	for ty := y; ty < y+height; ty++ {
		f.trunk(x, ty, z, stem)
	}
	capY := y + height
	for dx := int32(-3); dx <= 3; dx++ {
		for dz := int32(-3); dz <= 3; dz++ {
			if (dx == -3 || dx == 3) && (dz == -3 || dz == 3) {
				continue
			}
			f.foliage(x+dx, capY, z+dz, capState)
		}
	}
}

// Biomes returns the 256 biome IDs of a chunk column, indexed z*16+x.
func (g *Generator) Biomes(chunkX, chunkZ int32) [256]byte {
	var biomes [256]byte
	for lx := int32(0); lx < 16; lx++ {
		for lz := int32(0); lz < 16; lz++ {
			biomes[lz*16+lx] = g.BiomeAt(chunkX*16+lx, chunkZ*16+lz).ID
		}
	}
	return biomes
}

// sectionIndex returns the index of a block inside its 16x16x16 section.
func sectionIndex(lx, y, lz int32) int {
	return int(((y%16)*16+lz)*16 + lx)
}

// SerializeSections converts populated section arrays into 1.8 chunk wire
// format. All block data comes first, then all block light, then all sky
// light, then the biome array; interleaving them per section corrupts the
// column on the client.
func SerializeSections(sections *[SectionsPerChunk][ChunkSectionSize]uint16, biomes [256]byte) ([]byte, uint16) {
	var primaryBitMask uint16
	active := 0
	for s := 0; s < SectionsPerChunk; s++ {
		for _, b := range sections[s] {
			if b != 0 {
				primaryBitMask |= 1 << uint(s)
				active++
				break
			}
		}
	}

	const lightBytes = ChunkSectionSize / 2
	buf := make([]byte, 0, active*(ChunkSectionSize*2+2*lightBytes)+len(biomes))
	for s := 0; s < SectionsPerChunk; s++ {
		if primaryBitMask&(1<<uint(s)) == 0 {
			continue
		}
		for _, b := range sections[s] {
			buf = binary.LittleEndian.AppendUint16(buf, b)
		}
	}

	// Block light then sky light, full bright everywhere.
	for i := 0; i < 2*active*lightBytes; i++ {
		buf = append(buf, 0xFF)
	}

	buf = append(buf, biomes[:]...)
	return buf, primaryBitMask
}
