package server

import (
	"bytes"
	"log"
	"math/rand"

	"github.com/StoreStation/TimberCraft/pkg/protocol"
	"github.com/StoreStation/TimberCraft/pkg/world"
)

// handleBlockBreak breaks the block at pos for player, drops its item in
// survival, then gives the tree chopper a go at it before wearing the held
// tool.
func (s *Server) handleBlockBreak(player *Player, pos world.BlockPos) {
	player.mu.Lock()
	mode := player.GameMode
	player.mu.Unlock()

	s.blockMu.Lock()
	defer s.blockMu.Unlock()

	state := s.world.Block(pos)
	if state.ID() == world.BlockAir || state.ID() == world.BlockBedrock {
		return
	}

	// The effect goes out before the block turns to air so other clients
	// still know which block to render particles for.
	s.broadcastBlockBreakEffect(pos, state, player.EntityID)
	s.world.SetBlock(pos.X, pos.Y, pos.Z, 0)
	s.broadcastBlockChange(pos, 0)
	s.metrics.BlockBroken()

	if mode == GameModeCreative {
		log.Printf("Player %s broke block %d at (%d, %d, %d) (creative)", player.Username, state.ID(), pos.X, pos.Y, pos.Z)
	} else if itemID, damage, count := world.BlockToItemID(state); itemID >= 0 {
		vx := rand.Float64()*0.2 - 0.1
		vz := rand.Float64()*0.2 - 0.1
		s.SpawnItem(float64(pos.X)+0.5, float64(pos.Y)+0.5, float64(pos.Z)+0.5, vx, 0.2, vz, itemID, damage, count)
		log.Printf("Player %s broke block %d at (%d, %d, %d), spawned item %d:%d (count: %d)",
			player.Username, state.ID(), pos.X, pos.Y, pos.Z, itemID, damage, count)
	} else if state.IsLeaf() && rand.Float64() < saplingChance {
		if sapling, damage, ok := world.SaplingFor(state); ok {
			s.SpawnItem(float64(pos.X)+0.5, float64(pos.Y)+0.5, float64(pos.Z)+0.5, 0, 0.2, 0, sapling, damage, 1)
		}
	}

	if state.IsChoppable() {
		s.chopTree(player, pos, state)
	}
	// The broken block itself costs one use, after the chop has drawn on
	// the tool.
	if mode == GameModeSurvival {
		s.heldTool(player).Damage(1, player, nil)
	}
}

// handleBlockPlacement processes a Block Placement packet (0x08).
func (s *Server) handleBlockPlacement(player *Player, r *bytes.Reader) {
	x, y, z, err := protocol.ReadPosition(r)
	if err != nil {
		return
	}
	face, _ := protocol.ReadByte(r)
	itemID, _, damage, err := protocol.ReadSlotData(r)
	if err != nil {
		return
	}

	player.mu.Lock()
	mode := player.GameMode
	index := slotHotbar + int(player.ActiveSlot)
	held, _ := player.heldSlot()
	player.mu.Unlock()

	// (-1, 255, -1) means "use item" rather than placement.
	if x == -1 && y == 255 && z == -1 {
		return
	}

	clicked := world.BlockPos{X: x, Y: y, Z: z}
	resync := func() {
		s.syncSlot(player, index)
		player.send(blockChangePacket(clicked, s.world.Block(clicked)))
	}

	if !canModifyWorld(mode) || held.ItemID != itemID {
		resync()
		return
	}

	state, ok := world.ItemToBlock(itemID, damage, face)
	if !ok {
		resync()
		return
	}

	target := clicked.Add(faceOffset(face))
	if target.Y < 0 || target.Y >= world.ChunkHeight {
		resync()
		return
	}

	s.blockMu.Lock()
	existing := s.world.Block(target)
	below := s.world.Block(target.Add(world.BlockPos{Y: -1}))
	valid := existing.IsReplaceable()
	if state.ID() == world.BlockSapling {
		id := below.ID()
		valid = valid && (id == world.BlockGrass || id == world.BlockDirt)
	}
	if valid {
		s.world.SetBlock(target.X, target.Y, target.Z, state)
	}
	s.blockMu.Unlock()

	if !valid {
		resync()
		return
	}
	s.broadcastBlockChange(target, state)

	if mode == GameModeSurvival {
		player.mu.Lock()
		if player.Inventory[index].ItemID == itemID && player.Inventory[index].Count > 0 {
			player.Inventory[index].Count--
			if player.Inventory[index].Count == 0 {
				player.Inventory[index] = emptySlot
			}
		}
		slot := player.Inventory[index]
		player.mu.Unlock()
		player.send(setSlotPacket(index, slot))
		s.broadcastHeldItem(player)
	}

	log.Printf("Player %s placed block %d at (%d, %d, %d)", player.Username, state.ID(), target.X, target.Y, target.Z)
}

// faceOffset returns the offset from a clicked block to the cell placed against
// the given face.
// Face values: 0=bottom, 1=top, 2=north(-Z), 3=south(+Z), 4=west(-X), 5=east(+X)
func faceOffset(face byte) world.BlockPos {
	switch face {
	case 0:
		return world.BlockPos{Y: -1}
	case 2:
		return world.BlockPos{Z: -1}
	case 3:
		return world.BlockPos{Z: 1}
	case 4:
		return world.BlockPos{X: -1}
	case 5:
		return world.BlockPos{X: 1}
	default:
		return world.BlockPos{Y: 1}
	}
}
