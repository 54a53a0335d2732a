package world

import (
	perlin "github.com/aquilax/go-perlin"
)

// TreeKind selects one of the tree builders.
type TreeKind int

const (
	TreeOak TreeKind = iota
	TreeBirch
	TreeSpruce
	TreeDarkOak
	TreeHugeMushroom
)

// Biome describes which trees grow in a region and how densely.
type Biome struct {
	ID           byte // Minecraft biome ID
	Name         string
	SurfaceBlock BlockState
	TreeDensity  float64 // chance per candidate column
	Trees        []TreeKind
}

// Predefined biomes
var (
	BiomePlains = &Biome{
		ID: 1, Name: "Plains",
		SurfaceBlock: NewBlockState(BlockGrass, 0),
		TreeDensity:  0.01,
		Trees:        []TreeKind{TreeOak},
	}
	BiomeForest = &Biome{
		ID: 4, Name: "Forest",
		SurfaceBlock: NewBlockState(BlockGrass, 0),
		TreeDensity:  0.06,
		Trees:        []TreeKind{TreeOak, TreeOak, TreeBirch},
	}
	BiomeTaiga = &Biome{
		ID: 5, Name: "Taiga",
		SurfaceBlock: NewBlockState(BlockGrass, 0),
		TreeDensity:  0.07,
		Trees:        []TreeKind{TreeSpruce},
	}
	BiomeMushroomIsland = &Biome{
		ID: 14, Name: "Mushroom Island",
		SurfaceBlock: NewBlockState(BlockMycelium, 0),
		TreeDensity:  0.02,
		Trees:        []TreeKind{TreeHugeMushroom},
	}
	BiomeBirchForest = &Biome{
		ID: 27, Name: "Birch Forest",
		SurfaceBlock: NewBlockState(BlockGrass, 0),
		TreeDensity:  0.06,
		Trees:        []TreeKind{TreeBirch},
	}
	BiomeRoofedForest = &Biome{
		ID: 29, Name: "Roofed Forest",
		SurfaceBlock: NewBlockState(BlockGrass, 0),
		TreeDensity:  0.05,
		Trees:        []TreeKind{TreeDarkOak, TreeOak},
	}
)

// AllBiomes lists every biome the generator can pick.
var AllBiomes = []*Biome{
	BiomePlains,
	BiomeForest,
	BiomeTaiga,
	BiomeMushroomIsland,
	BiomeBirchForest,
	BiomeRoofedForest,
}

// biomeNoise wraps the two low-frequency fields used to classify regions.
type biomeNoise struct {
	temp *perlin.Perlin
	rain *perlin.Perlin
}

func newBiomeNoise(seed int64) *biomeNoise {
	return &biomeNoise{
		temp: perlin.NewPerlin(2, 2, 3, seed+1),
		rain: perlin.NewPerlin(2, 2, 3, seed+2),
	}
}

// sample01 maps a noise value from roughly [-1, 1] into [0, 1].
func sample01(p *perlin.Perlin, x, z float64) float64 {
	v := (p.Noise2D(x, z) + 1) / 2
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// BiomeAt selects the biome for a world column.
func (n *biomeNoise) BiomeAt(worldX, worldZ int32) *Biome {
	const scale = 0.004
	bx := float64(worldX) * scale
	bz := float64(worldZ) * scale

	temp := sample01(n.temp, bx, bz)
	rain := sample01(n.rain, bx+500, bz+500)

	switch {
	case temp < 0.35:
		return BiomeTaiga
	case temp < 0.65:
		if rain > 0.68 {
			return BiomeRoofedForest
		}
		if rain > 0.45 {
			return BiomeForest
		}
		return BiomePlains
	default:
		if rain > 0.8 {
			return BiomeMushroomIsland
		}
		if rain > 0.4 {
			return BiomeBirchForest
		}
		return BiomePlains
	}
}
