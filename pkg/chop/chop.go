// Package chop fells trees: it finds the logs connected to a broken log and
// removes them under one of several chop modes.
//
// The package owns no world state. Everything it reads or changes goes
// through the World, Tool and Actor interfaces, and callers must not mutate
// the world concurrently with a chop.
package chop

import (
	"fmt"
	"strings"

	"github.com/StoreStation/TimberCraft/pkg/world"
)

// Mode selects what happens to the rest of a tree when one log breaks.
type Mode int

const (
	FullChop Mode = iota
	SingleChop
	GravityChop
	VanillaChop
)

var modeNames = [...]string{"FULL_CHOP", "SINGLE_CHOP", "GRAVITY_CHOP", "VANILLA_CHOP"}

func (m Mode) String() string {
	if m < 0 || int(m) >= len(modeNames) {
		return fmt.Sprintf("Mode(%d)", int(m))
	}
	return modeNames[m]
}

// ParseMode accepts FULL_CHOP, full_chop or full in any case.
func ParseMode(s string) (Mode, error) {
	name := normalize(s)
	for i, n := range modeNames {
		if name == n || name+"_CHOP" == n {
			return Mode(i), nil
		}
	}
	return 0, fmt.Errorf("unknown chop mode %q", s)
}

// DurabilityMode controls tool wear during a full chop.
type DurabilityMode int

const (
	NoDurabilityLoss DurabilityMode = iota
	BreakAfterChop
	BreakMidChop
)

var durabilityNames = [...]string{"NO_DURABILITY_LOSS", "BREAK_AFTER_CHOP", "BREAK_MID_CHOP"}

func (d DurabilityMode) String() string {
	if d < 0 || int(d) >= len(durabilityNames) {
		return fmt.Sprintf("DurabilityMode(%d)", int(d))
	}
	return durabilityNames[d]
}

// ParseDurabilityMode accepts the constant names in any case.
func ParseDurabilityMode(s string) (DurabilityMode, error) {
	name := normalize(s)
	for i, n := range durabilityNames {
		if name == n {
			return DurabilityMode(i), nil
		}
	}
	return 0, fmt.Errorf("unknown durability mode %q", s)
}

func normalize(s string) string {
	s = strings.ToUpper(strings.TrimSpace(s))
	return strings.NewReplacer("-", "_", " ", "_").Replace(s)
}

// Config holds the chop settings. It is read, never written, during a chop.
type Config struct {
	FastLeafDecay       bool // handled by the server after a chop
	Mode                Mode
	Durability          DurabilityMode
	SneakToDisable      bool
	RequireLeavesToChop bool
	MaxLogs             int // 0 means unbounded
}

// DefaultConfig returns the stock settings.
func DefaultConfig() Config {
	return Config{
		FastLeafDecay:       true,
		Mode:                GravityChop,
		Durability:          BreakMidChop,
		RequireLeavesToChop: true,
	}
}

// BlockReader gives read access to block states.
type BlockReader interface {
	Block(pos world.BlockPos) world.BlockState
}

// World is the block store a chop mutates.
type World interface {
	BlockReader
	SetBlock(pos world.BlockPos, state world.BlockState)
	BreakBlock(pos world.BlockPos, dropItems bool)
	SpawnEntity(e Entity)
}

// Tool is the item used to break the origin log.
type Tool interface {
	// Remaining returns how many more uses the tool has. A broken or
	// empty stack reports 0.
	Remaining() int
	// Damage wears the tool. onBreak is called if the tool breaks.
	Damage(amount int, actor Actor, onBreak func(Actor))
}

// Actor is whoever broke the origin log.
type Actor interface {
	Position() (x, y, z float64)
	Sneaking() bool
}

// Entity is something a chop asks the world to spawn: an *ItemDrop or a
// *FallingBlock.
type Entity interface {
	isEntity()
}

// ItemDrop is a dropped item stack. Count may be zero.
type ItemDrop struct {
	X, Y, Z float64
	ItemID  int16
	Damage  int16
	Count   int
}

// FallingBlock is a block entity that falls and settles under gravity.
type FallingBlock struct {
	X, Y, Z float64
	State   world.BlockState
}

func (*ItemDrop) isEntity()     {}
func (*FallingBlock) isEntity() {}

// Result summarises one chop.
type Result struct {
	Mode       Mode
	Skipped    bool // not a log, sneaking, or vanilla mode
	Suppressed bool // no natural leaves touched the tree
	Removed    int
	Durability int
	ToolBroken bool
	Spawned    int
}
