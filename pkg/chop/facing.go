package chop

import (
	"math"

	"github.com/StoreStation/TimberCraft/pkg/world"
)

// Sign is the direction along an axis.
type Sign int

const (
	Positive Sign = iota
	Negative
)

// Axis is a horizontal axis.
type Axis int

const (
	AxisX Axis = iota
	AxisZ
)

func (a Axis) String() string {
	if a == AxisZ {
		return "Z"
	}
	return "X"
}

// LogAxis returns the log orientation lying along a.
func (a Axis) LogAxis() world.LogAxis {
	if a == AxisZ {
		return world.LogAxisZ
	}
	return world.LogAxisX
}

// Facing picks the direction a tree topples. The axis is Z when the actor
// is further off along X than along Z, otherwise X; the sign then compares
// origin and actor on the chosen axis.
func Facing(actorX, actorZ float64, origin world.BlockPos) (Sign, Axis) {
	dx := float64(origin.X) + 0.5 - actorX
	dz := float64(origin.Z) + 0.5 - actorZ
	if math.Abs(dx) > math.Abs(dz) {
		if float64(origin.Z) > actorZ {
			return Positive, AxisZ
		}
		return Negative, AxisZ
	}
	if float64(origin.X) > actorX {
		return Positive, AxisX
	}
	return Negative, AxisX
}

// FallTarget returns where a log lands when the tree topples: its height
// above base becomes a horizontal distance along axis, one block above base.
func FallTarget(base, log world.BlockPos, sign Sign, axis Axis) world.BlockPos {
	dy := log.Y - base.Y
	if sign == Negative {
		dy = -dy
	}
	if axis == AxisZ {
		return world.BlockPos{X: log.X, Y: base.Y + 1, Z: base.Z + dy}
	}
	return world.BlockPos{X: base.X + dy, Y: base.Y + 1, Z: log.Z}
}
