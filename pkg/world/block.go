package world

// Block IDs used by the generator, the item mapping and the tree chopper.
const (
	BlockAir           uint16 = 0
	BlockStone         uint16 = 1
	BlockGrass         uint16 = 2
	BlockDirt          uint16 = 3
	BlockCobblestone   uint16 = 4
	BlockPlanks        uint16 = 5
	BlockSapling       uint16 = 6
	BlockBedrock       uint16 = 7
	BlockSand          uint16 = 12
	BlockLog           uint16 = 17
	BlockLeaves        uint16 = 18
	BlockTallGrass     uint16 = 31
	BlockWool          uint16 = 35
	BlockDandelion     uint16 = 37
	BlockPoppy         uint16 = 38
	BlockBrownMushroom uint16 = 39
	BlockRedMushroom   uint16 = 40
	BlockMycelium      uint16 = 110
	BlockHugeBrown     uint16 = 99
	BlockHugeRed       uint16 = 100
	BlockLeaves2       uint16 = 161
	BlockLog2          uint16 = 162
)

// Leaf metadata bits. The low two bits carry the wood variant.
const (
	LeafNoDecay    uint16 = 0x4 // placed by a player, never decays
	LeafCheckDecay uint16 = 0x8
)

// LogAxis is the orientation stored in bits 2-3 of a log's metadata.
type LogAxis uint16

const (
	LogAxisY    LogAxis = 0x0
	LogAxisX    LogAxis = 0x4
	LogAxisZ    LogAxis = 0x8
	LogAxisNone LogAxis = 0xC // bark on all six sides
)

// BlockPos represents a block position in the world.
type BlockPos struct {
	X, Y, Z int32
}

// Add returns p shifted by the offset d.
func (p BlockPos) Add(d BlockPos) BlockPos {
	return BlockPos{p.X + d.X, p.Y + d.Y, p.Z + d.Z}
}

// Chunk returns the chunk column containing p.
func (p BlockPos) Chunk() ChunkPos {
	return ChunkPos{p.X >> 4, p.Z >> 4}
}

// ChunkPos identifies a 16x16 chunk column.
type ChunkPos struct {
	X, Z int32
}

// BlockState is a 1.8 block state: blockID << 4 | metadata.
type BlockState uint16

// NewBlockState packs a block ID and its metadata.
func NewBlockState(id, meta uint16) BlockState {
	return BlockState(id<<4 | meta&0x0F)
}

// ID returns the block ID.
func (s BlockState) ID() uint16 { return uint16(s) >> 4 }

// Meta returns the 4-bit metadata.
func (s BlockState) Meta() uint16 { return uint16(s) & 0x0F }

// BlockType identifies a kind of block for connectivity checks. Two logs are
// the same kind when both their ID and wood variant match; orientation is not
// part of the type.
type BlockType struct {
	ID      uint16
	Variant uint16
}

// Type returns the block's kind.
func (s BlockState) Type() BlockType {
	switch s.ID() {
	case BlockLog, BlockLog2, BlockLeaves, BlockLeaves2:
		return BlockType{ID: s.ID(), Variant: s.Meta() & 0x3}
	case BlockHugeBrown, BlockHugeRed:
		return BlockType{ID: s.ID()}
	default:
		return BlockType{ID: s.ID(), Variant: s.Meta()}
	}
}

// IsLog reports whether the block is a log of either log block.
func (s BlockState) IsLog() bool {
	id := s.ID()
	return id == BlockLog || id == BlockLog2
}

// IsLeaf reports whether the block is a leaves block, natural or placed.
func (s BlockState) IsLeaf() bool {
	id := s.ID()
	return id == BlockLeaves || id == BlockLeaves2
}

// IsChoppable reports whether breaking this block may fell a tree. Only
// pillar-shaped wood qualifies, which in 1.8 means the two log blocks.
func (s BlockState) IsChoppable() bool {
	return s.IsLog()
}

// IsNaturalLeaf reports whether the block is foliage grown by the world
// rather than placed by a player: leaves without the no-decay bit, or the
// cap of a huge mushroom.
func (s BlockState) IsNaturalLeaf() bool {
	if s.IsLeaf() {
		return s.Meta()&LeafNoDecay == 0
	}
	id := s.ID()
	return id == BlockHugeBrown || id == BlockHugeRed
}

// Axis returns a log's orientation.
func (s BlockState) Axis() LogAxis {
	return LogAxis(s.Meta() & 0xC)
}

// WithAxis returns the log turned onto the given axis, keeping its wood.
func (s BlockState) WithAxis(axis LogAxis) BlockState {
	if !s.IsLog() {
		return s
	}
	return NewBlockState(s.ID(), s.Meta()&0x3|uint16(axis))
}

// IsSolid reports whether entities collide with the block.
func (s BlockState) IsSolid() bool {
	switch s.ID() {
	case BlockAir, BlockSapling, BlockTallGrass, BlockDandelion, BlockPoppy,
		BlockBrownMushroom, BlockRedMushroom:
		return false
	}
	return true
}

// IsReplaceable reports whether a placed block or a landing falling block
// may take this cell.
func (s BlockState) IsReplaceable() bool {
	id := s.ID()
	return id == BlockAir || id == BlockTallGrass
}

// BlockToItemID returns the item that should be dropped when a block is broken.
// Returns -1 if the block should not drop anything.
func BlockToItemID(state BlockState) (itemID int16, damage int16, count byte) {
	id := state.ID()
	switch id {
	case BlockAir, BlockBedrock, BlockTallGrass:
		return -1, 0, 0
	case BlockLeaves, BlockLeaves2:
		// Leaves only drop saplings, rolled by the caller.
		return -1, 0, 0
	case BlockGrass, BlockMycelium:
		return int16(BlockDirt), 0, 1
	case BlockStone:
		if state.Meta() == 0 {
			return int16(BlockCobblestone), 0, 1
		}
		return int16(BlockStone), int16(state.Meta()), 1
	case BlockLog, BlockLog2:
		return int16(id), int16(state.Meta() & 0x3), 1
	case BlockSapling:
		return int16(id), int16(state.Meta() & 0x7), 1
	case BlockHugeBrown:
		return int16(BlockBrownMushroom), 0, 1
	case BlockHugeRed:
		return int16(BlockRedMushroom), 0, 1
	case BlockPlanks, BlockWool, BlockSand:
		return int16(id), int16(state.Meta()), 1
	default:
		return int16(id), 0, 1
	}
}

// SaplingFor returns the sapling item matching a leaves block.
func SaplingFor(state BlockState) (itemID int16, damage int16, ok bool) {
	switch state.ID() {
	case BlockLeaves:
		return int16(BlockSapling), int16(state.Meta() & 0x3), true
	case BlockLeaves2:
		return int16(BlockSapling), int16(state.Meta()&0x3) + 4, true
	}
	return -1, 0, false
}

// ItemToBlock returns the block state a held item places, oriented by the
// clicked face for logs. Placed leaves carry the no-decay bit.
// Face values: 0=bottom, 1=top, 2=north(-Z), 3=south(+Z), 4=west(-X), 5=east(+X)
func ItemToBlock(itemID int16, damage int16, face byte) (BlockState, bool) {
	if itemID <= 0 || itemID > 255 {
		return 0, false
	}
	id := uint16(itemID)
	meta := uint16(damage) & 0x0F
	switch id {
	case BlockLog, BlockLog2:
		axis := LogAxisY
		switch face {
		case 2, 3:
			axis = LogAxisZ
		case 4, 5:
			axis = LogAxisX
		}
		return NewBlockState(id, meta&0x3|uint16(axis)), true
	case BlockLeaves, BlockLeaves2:
		return NewBlockState(id, meta&0x3|LeafNoDecay), true
	case BlockSapling:
		return NewBlockState(id, meta&0x7), true
	case BlockHugeBrown, BlockHugeRed:
		// Caps have no persistent bit, so placed ones would count as natural.
		return 0, false
	}
	return NewBlockState(id, meta), true
}
