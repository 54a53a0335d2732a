package server

import (
	"log"

	"github.com/StoreStation/TimberCraft/pkg/chop"
	"github.com/StoreStation/TimberCraft/pkg/world"
)

// chopWorld lets the chopper act on the server's world. Every method runs
// with s.blockMu held by the caller.
type chopWorld struct {
	s      *Server
	broken []world.BlockPos
}

func (w *chopWorld) Block(pos world.BlockPos) world.BlockState {
	return w.s.world.Block(pos)
}

func (w *chopWorld) SetBlock(pos world.BlockPos, state world.BlockState) {
	w.s.world.SetBlock(pos.X, pos.Y, pos.Z, state)
	w.s.broadcastBlockChange(pos, state)
}

// BreakBlock turns a block to air with the break effect, dropping its item
// when dropItems is set.
func (w *chopWorld) BreakBlock(pos world.BlockPos, dropItems bool) {
	state := w.s.world.Block(pos)
	if state == 0 {
		return
	}
	w.s.broadcastBlockBreakEffect(pos, state, 0)
	w.s.world.SetBlock(pos.X, pos.Y, pos.Z, 0)
	w.s.broadcastBlockChange(pos, 0)
	w.broken = append(w.broken, pos)

	if !dropItems {
		return
	}
	if itemID, damage, count := world.BlockToItemID(state); itemID >= 0 {
		w.s.SpawnItem(float64(pos.X)+0.5, float64(pos.Y)+0.5, float64(pos.Z)+0.5, 0, 0.2, 0, itemID, damage, count)
	}
}

// SpawnEntity adds an item drop or a falling block to the world. Empty drops
// are discarded and large ones split into full stacks.
func (w *chopWorld) SpawnEntity(e chop.Entity) {
	switch e := e.(type) {
	case *chop.ItemDrop:
		if e.Count <= 0 || e.ItemID < 0 {
			log.Printf("Discarded empty drop of item %d at (%.1f, %.1f, %.1f)", e.ItemID, e.X, e.Y, e.Z)
			return
		}
		for left := e.Count; left > 0; left -= maxStack {
			n := min(left, maxStack)
			w.s.SpawnItem(e.X, e.Y, e.Z, 0, 0.2, 0, e.ItemID, e.Damage, byte(n))
		}
	case *chop.FallingBlock:
		w.s.SpawnFallingBlock(e.X, e.Y, e.Z, e.State)
	}
}

// chopTree runs the tree chopper for a log the player just broke at origin.
// state is the log as it was before breaking. Must be called with
// s.blockMu held.
func (s *Server) chopTree(player *Player, origin world.BlockPos, state world.BlockState) chop.Result {
	cfg := s.ChopConfig()
	cw := &chopWorld{s: s}
	res := chop.TryChop(cw, cfg, s.heldTool(player), player, origin, state)
	s.metrics.ObserveChop(res)
	if res.Skipped {
		return res
	}

	log.Printf("Player %s chopped a tree at (%d, %d, %d): mode %s, %d logs, %d durability used",
		player.Username, origin.X, origin.Y, origin.Z, res.Mode, res.Removed, res.Durability)
	if res.Suppressed {
		log.Printf("Chop at (%d, %d, %d) suppressed: no natural leaves found", origin.X, origin.Y, origin.Z)
	}

	if cfg.FastLeafDecay {
		s.scheduleLeafDecay(append(cw.broken, origin))
	}
	return res
}
