package chop

import "github.com/StoreStation/TimberCraft/pkg/world"

// TryChop runs the configured chop for a log at origin that actor just broke
// with tool. state is the origin block as it was before breaking.
func TryChop(w World, cfg Config, tool Tool, actor Actor, origin world.BlockPos, state world.BlockState) Result {
	res := Result{Mode: cfg.Mode}
	if !state.IsChoppable() || (cfg.SneakToDisable && actor.Sneaking()) {
		res.Skipped = true
		return res
	}

	switch cfg.Mode {
	case FullChop:
		fullChop(w, cfg, tool, actor, origin, state, &res)
	case SingleChop:
		singleChop(w, cfg, origin, state, &res)
	case GravityChop:
		gravityChop(w, cfg, actor, origin, state, &res)
	default:
		res.Skipped = true
	}
	return res
}

// singleChop pulls the furthest log down into the gap at origin.
func singleChop(w World, cfg Config, origin world.BlockPos, state world.BlockState, res *Result) {
	logs, suppressed := collect(w, cfg, origin, state)
	res.Suppressed = suppressed
	if len(logs) == 0 {
		return
	}
	w.BreakBlock(logs[len(logs)-1], false)
	w.SetBlock(origin, state)
	res.Removed = 1
}

// fullChop removes every log and drops them as one stack at origin.
func fullChop(w World, cfg Config, tool Tool, actor Actor, origin world.BlockPos, state world.BlockState, res *Result) {
	logs, suppressed := collect(w, cfg, origin, state)
	res.Suppressed = suppressed

	wear := cfg.Durability == BreakAfterChop || cfg.Durability == BreakMidChop
	for _, p := range logs {
		if cfg.Durability == BreakMidChop && tool.Remaining() == 0 {
			break
		}
		w.BreakBlock(p, false)
		res.Removed++
		if wear {
			tool.Damage(1, actor, func(Actor) { res.ToolBroken = true })
			res.Durability++
		}
	}

	itemID, damage, _ := world.BlockToItemID(state)
	w.SpawnEntity(&ItemDrop{
		X:      float64(origin.X) + 0.5,
		Y:      float64(origin.Y) + 0.5,
		Z:      float64(origin.Z) + 0.5,
		ItemID: itemID,
		Damage: damage,
		Count:  res.Removed,
	})
	res.Spawned++
}

// gravityChop topples the tree: each log is replaced by a falling block
// lying along the fall axis, away from the actor.
func gravityChop(w World, cfg Config, actor Actor, origin world.BlockPos, state world.BlockState, res *Result) {
	logs, suppressed := collect(w, cfg, origin, state)
	res.Suppressed = suppressed
	if len(logs) == 0 {
		return
	}

	ax, _, az := actor.Position()
	sign, axis := Facing(ax, az, origin)
	for _, p := range logs {
		s := w.Block(p)
		w.BreakBlock(p, false)
		res.Removed++

		target := FallTarget(origin, p, sign, axis)
		w.SpawnEntity(&FallingBlock{
			X:     float64(target.X) + 0.5,
			Y:     float64(target.Y),
			Z:     float64(target.Z) + 0.5,
			State: s.WithAxis(axis.LogAxis()),
		})
		res.Spawned++
	}
}
