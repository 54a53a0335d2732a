package chop

import "github.com/StoreStation/TimberCraft/pkg/world"

var (
	oakLog    = world.NewBlockState(world.BlockLog, 0)
	birchLog  = world.NewBlockState(world.BlockLog, 2)
	oakLeaves = world.NewBlockState(world.BlockLeaves, 0)
	placed    = world.NewBlockState(world.BlockLeaves, world.LeafNoDecay)
)

type breakCall struct {
	Pos   world.BlockPos
	Drops bool
}

type fakeWorld struct {
	blocks   map[world.BlockPos]world.BlockState
	breaks   []breakCall
	sets     map[world.BlockPos]world.BlockState
	entities []Entity
}

func newFakeWorld() *fakeWorld {
	return &fakeWorld{
		blocks: make(map[world.BlockPos]world.BlockState),
		sets:   make(map[world.BlockPos]world.BlockState),
	}
}

func (w *fakeWorld) Block(pos world.BlockPos) world.BlockState { return w.blocks[pos] }

func (w *fakeWorld) SetBlock(pos world.BlockPos, state world.BlockState) {
	w.blocks[pos] = state
	w.sets[pos] = state
}

func (w *fakeWorld) BreakBlock(pos world.BlockPos, dropItems bool) {
	delete(w.blocks, pos)
	w.breaks = append(w.breaks, breakCall{pos, dropItems})
}

func (w *fakeWorld) SpawnEntity(e Entity) { w.entities = append(w.entities, e) }

func (w *fakeWorld) column(x, y0, y1, z int32, s world.BlockState) {
	for y := y0; y <= y1; y++ {
		w.blocks[world.BlockPos{X: x, Y: y, Z: z}] = s
	}
}

type fakeTool struct {
	remaining int
	damaged   int
	broke     bool
}

func (t *fakeTool) Remaining() int { return t.remaining }

func (t *fakeTool) Damage(amount int, actor Actor, onBreak func(Actor)) {
	t.damaged += amount
	if t.remaining == 0 {
		return
	}
	t.remaining -= amount
	if t.remaining <= 0 {
		t.remaining = 0
		t.broke = true
		onBreak(actor)
	}
}

type fakeActor struct {
	x, y, z  float64
	sneaking bool
}

func (a fakeActor) Position() (float64, float64, float64) { return a.x, a.y, a.z }
func (a fakeActor) Sneaking() bool                       { return a.sneaking }
