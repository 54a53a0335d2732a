package server

import (
	"bytes"
	"log"
	"math"
	"time"

	"github.com/StoreStation/TimberCraft/pkg/protocol"
	"github.com/StoreStation/TimberCraft/pkg/world"
)

// Entity physics constants, per tick.
const (
	gravity    = 0.04
	drag       = 0.98
	groundDrag = 0.58 // 0.98 * 0.6 (slipperiness) approx 0.58
)

const (
	pickupDelay      = time.Second
	itemLifetime     = 5 * time.Minute
	fallingMaxTicks  = 600
	objectItemStack  = 2
	objectFallingBlk = 70
)

// ItemEntity represents an item dropped on the ground.
type ItemEntity struct {
	EntityID   int32
	ItemID     int16
	Damage     int16
	Count      byte
	X, Y, Z    float64
	VX, VY, VZ float64
	SpawnTime  time.Time
}

// FallingBlockEntity is a block falling under gravity. It becomes a block
// again where it lands.
type FallingBlockEntity struct {
	EntityID int32
	State    world.BlockState
	X, Y, Z  float64
	VY       float64
	Ticks    int
}

// landing is a falling block that stopped during a tick.
type landing struct {
	entity *FallingBlockEntity
	cell   world.BlockPos
	ok     bool // false when it fell out of the world or timed out
}

func (s *Server) entityPhysicsLoop() {
	ticker := time.NewTicker(50 * time.Millisecond) // 20 ticks per second
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.tickEntityPhysics()
		}
	}
}

// checkEntityCollision checks if the given AABB intersects with any solid blocks
func (s *Server) checkEntityCollision(x, y, z, width, height float64) bool {
	minX := int32(math.Floor(x - width/2))
	maxX := int32(math.Floor(x + width/2))
	minY := int32(math.Floor(y))
	maxY := int32(math.Floor(y + height))
	minZ := int32(math.Floor(z - width/2))
	maxZ := int32(math.Floor(z + width/2))

	for bx := minX; bx <= maxX; bx++ {
		for by := minY; by <= maxY; by++ {
			for bz := minZ; bz <= maxZ; bz++ {
				if s.world.GetBlock(bx, by, bz).IsSolid() {
					return true
				}
			}
		}
	}
	return false
}

func (s *Server) tickEntityPhysics() {
	type moved struct {
		entityID int32
		x, y, z  float64
	}
	var movedEntities []moved
	var expired []int32
	var landed []landing

	s.mu.Lock()
	for id, item := range s.entities {
		if time.Since(item.SpawnTime) > itemLifetime {
			delete(s.entities, id)
			expired = append(expired, id)
			continue
		}
		if s.stepItem(item) {
			movedEntities = append(movedEntities, moved{item.EntityID, item.X, item.Y, item.Z})
		}
	}
	for id, fb := range s.fallingBlocks {
		if l, done := s.stepFallingBlock(fb); done {
			delete(s.fallingBlocks, id)
			landed = append(landed, l)
			continue
		}
		movedEntities = append(movedEntities, moved{fb.EntityID, fb.X, fb.Y, fb.Z})
	}
	s.mu.Unlock()

	for _, m := range movedEntities {
		s.broadcastEntityTeleportByID(m.entityID, m.x, m.y, m.z, 0, 0, true)
	}
	for _, id := range expired {
		s.broadcastDestroyEntity(id)
	}
	for _, l := range landed {
		s.landFallingBlock(l)
	}
}

// stepItem advances an item by one tick and reports whether it moved.
// Must be called with s.mu held.
func (s *Server) stepItem(item *ItemEntity) bool {
	const itemWidth = 0.25
	const itemHeight = 0.25

	if item.VX == 0 && item.VZ == 0 && item.VY == 0 &&
		s.checkEntityCollision(item.X, item.Y-gravity, item.Z, itemWidth, itemHeight) {
		return false
	}

	item.VY -= gravity

	if !s.checkEntityCollision(item.X+item.VX, item.Y, item.Z, itemWidth, itemHeight) {
		item.X += item.VX
	} else {
		item.VX = 0
	}

	onGround := false
	if !s.checkEntityCollision(item.X, item.Y+item.VY, item.Z, itemWidth, itemHeight) {
		item.Y += item.VY
	} else {
		if item.VY < 0 {
			onGround = true
		}
		item.VY *= -0.5 // Bounce
		if math.Abs(item.VY) < 0.1 {
			item.VY = 0
			// Snap to the block boundary to prevent hovering
			if onGround {
				item.Y = math.Floor(item.Y)
			}
		}
	}

	if !s.checkEntityCollision(item.X, item.Y, item.Z+item.VZ, itemWidth, itemHeight) {
		item.Z += item.VZ
	} else {
		item.VZ = 0
	}

	f := drag
	if onGround {
		f = groundDrag
	}
	item.VX *= f
	item.VY *= drag
	item.VZ *= f

	if math.Abs(item.VX) < 0.001 {
		item.VX = 0
	}
	if math.Abs(item.VY) < 0.001 {
		item.VY = 0
	}
	if math.Abs(item.VZ) < 0.001 {
		item.VZ = 0
	}
	if item.Y < -64 {
		item.Y = -64
		item.VY = 0
	}
	return true
}

// stepFallingBlock drops a falling block by one tick. When it reaches a
// block that is not replaceable it settles in the cell above it.
// Must be called with s.mu held.
func (s *Server) stepFallingBlock(fb *FallingBlockEntity) (landing, bool) {
	fb.Ticks++
	fb.VY = (fb.VY - gravity) * drag
	nextY := fb.Y + fb.VY

	bx := int32(math.Floor(fb.X))
	bz := int32(math.Floor(fb.Z))
	cur := int32(math.Floor(fb.Y))
	next := int32(math.Floor(nextY))

	for y := cur - 1; y >= next; y-- {
		if y < 0 {
			return landing{entity: fb}, true
		}
		if !s.world.GetBlock(bx, y, bz).IsReplaceable() {
			return landing{entity: fb, cell: world.BlockPos{X: bx, Y: y + 1, Z: bz}, ok: true}, true
		}
	}
	if fb.Ticks >= fallingMaxTicks {
		return landing{entity: fb}, true
	}
	fb.Y = nextY
	return landing{}, false
}

// landFallingBlock places a stopped falling block, or drops it as an item
// when its cell is taken.
func (s *Server) landFallingBlock(l landing) {
	fb := l.entity
	s.broadcastDestroyEntity(fb.EntityID)

	s.blockMu.Lock()
	placed := l.ok && s.world.Block(l.cell).IsReplaceable()
	if placed {
		s.world.SetBlock(l.cell.X, l.cell.Y, l.cell.Z, fb.State)
	}
	s.blockMu.Unlock()

	if placed {
		s.broadcastBlockChange(l.cell, fb.State)
		return
	}
	if itemID, damage, count := world.BlockToItemID(fb.State); itemID >= 0 {
		s.SpawnItem(fb.X, fb.Y+0.5, fb.Z, 0, 0.1, 0, itemID, damage, count)
	}
}

// SpawnItem creates an item entity at the given position and broadcasts it.
func (s *Server) SpawnItem(x, y, z float64, vx, vy, vz float64, itemID int16, damage int16, count byte) {
	s.mu.Lock()
	eid := s.nextEID
	s.nextEID++

	item := &ItemEntity{
		EntityID:  eid,
		ItemID:    itemID,
		Damage:    damage,
		Count:     count,
		X:         x,
		Y:         y,
		Z:         z,
		VX:        vx,
		VY:        vy,
		VZ:        vz,
		SpawnTime: time.Now(),
	}
	s.entities[eid] = item
	s.mu.Unlock()

	for _, pkt := range itemSpawnPackets(item, true) {
		s.broadcast(pkt, 0)
	}
}

// SpawnFallingBlock creates a falling block entity with its bottom centre at
// (x, y, z) and broadcasts it.
func (s *Server) SpawnFallingBlock(x, y, z float64, state world.BlockState) {
	s.mu.Lock()
	eid := s.nextEID
	s.nextEID++
	fb := &FallingBlockEntity{EntityID: eid, State: state, X: x, Y: y, Z: z}
	s.fallingBlocks[eid] = fb
	s.mu.Unlock()

	s.broadcast(fallingBlockSpawnPacket(fb), 0)
	s.metrics.FallingBlockSpawned()
}

// itemSpawnPackets builds Spawn Object, optionally Entity Velocity, and the
// Entity Metadata carrying the stack.
func itemSpawnPackets(item *ItemEntity, withVelocity bool) []*protocol.Packet {
	spawnObj := protocol.MarshalPacket(0x0E, func(w *bytes.Buffer) {
		protocol.WriteVarInt(w, item.EntityID)
		protocol.WriteByte(w, objectItemStack)
		protocol.WriteInt32(w, int32(item.X*32))
		protocol.WriteInt32(w, int32(item.Y*32))
		protocol.WriteInt32(w, int32(item.Z*32))
		protocol.WriteByte(w, 0)  // Pitch
		protocol.WriteByte(w, 0)  // Yaw
		protocol.WriteInt32(w, 0) // Data: 0 means no velocity follows
	})
	metadata := protocol.MarshalPacket(0x1C, func(w *bytes.Buffer) {
		protocol.WriteVarInt(w, item.EntityID)
		// Index 10, type 5 (slot): header (type << 5) | index
		protocol.WriteByte(w, (5<<5)|10)
		protocol.WriteSlotData(w, item.ItemID, item.Count, item.Damage)
		protocol.WriteByte(w, 0x7F) // Terminator
	})
	if !withVelocity {
		return []*protocol.Packet{spawnObj, metadata}
	}
	velocity := protocol.MarshalPacket(0x12, func(w *bytes.Buffer) {
		protocol.WriteVarInt(w, item.EntityID)
		protocol.WriteInt16(w, int16(item.VX*8000))
		protocol.WriteInt16(w, int16(item.VY*8000))
		protocol.WriteInt16(w, int16(item.VZ*8000))
	})
	return []*protocol.Packet{spawnObj, velocity, metadata}
}

// fallingBlockSpawnPacket builds Spawn Object for a falling block. The data
// field carries the block as id | meta << 12, and since it is non-zero the
// velocity follows.
func fallingBlockSpawnPacket(fb *FallingBlockEntity) *protocol.Packet {
	return protocol.MarshalPacket(0x0E, func(w *bytes.Buffer) {
		protocol.WriteVarInt(w, fb.EntityID)
		protocol.WriteByte(w, objectFallingBlk)
		protocol.WriteInt32(w, int32(fb.X*32))
		protocol.WriteInt32(w, int32(fb.Y*32))
		protocol.WriteInt32(w, int32(fb.Z*32))
		protocol.WriteByte(w, 0) // Pitch
		protocol.WriteByte(w, 0) // Yaw
		protocol.WriteInt32(w, int32(fb.State.ID())|int32(fb.State.Meta())<<12)
		protocol.WriteInt16(w, 0)
		protocol.WriteInt16(w, int16(fb.VY*8000))
		protocol.WriteInt16(w, 0)
	})
}

// spawnEntitiesForPlayer shows a joining player every live entity.
func (s *Server) spawnEntitiesForPlayer(player *Player) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, item := range s.entities {
		for _, pkt := range itemSpawnPackets(item, false) {
			player.send(pkt)
		}
	}
	for _, fb := range s.fallingBlocks {
		player.send(fallingBlockSpawnPacket(fb))
	}
}

func (s *Server) broadcastCollectItem(collectedID, collectorID int32) {
	pkt := protocol.MarshalPacket(0x0D, func(w *bytes.Buffer) {
		protocol.WriteVarInt(w, collectedID)
		protocol.WriteVarInt(w, collectorID)
	})
	s.broadcast(pkt, 0)
}

func (s *Server) itemPickupLoop(player *Player, stop chan struct{}) {
	ticker := time.NewTicker(500 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			s.pickupItems(player)
		}
	}
}

// pickupItems moves nearby items into the player's inventory.
func (s *Server) pickupItems(player *Player) {
	player.mu.Lock()
	px, py, pz := player.X, player.Y, player.Z
	spectating := player.GameMode == GameModeSpectator
	player.mu.Unlock()
	if spectating {
		return
	}

	s.mu.RLock()
	var nearby []*ItemEntity
	for _, e := range s.entities {
		if time.Since(e.SpawnTime) < pickupDelay {
			continue
		}
		dx, dy, dz := e.X-px, e.Y-py, e.Z-pz
		if dx*dx+dy*dy+dz*dz < 4.0 { // 2 blocks
			nearby = append(nearby, e)
		}
	}
	s.mu.RUnlock()

	for _, e := range nearby {
		// Claim the entity first so two players cannot both collect it.
		s.mu.Lock()
		_, exists := s.entities[e.EntityID]
		delete(s.entities, e.EntityID)
		s.mu.Unlock()
		if !exists {
			continue
		}

		player.mu.Lock()
		slotIndex, ok := addItemToInventory(player, e.ItemID, e.Damage, e.Count)
		var slot Slot
		if ok {
			slot = player.Inventory[slotIndex]
		}
		player.mu.Unlock()

		if !ok {
			s.mu.Lock()
			s.entities[e.EntityID] = e
			s.mu.Unlock()
			return
		}

		player.send(setSlotPacket(slotIndex, slot))
		s.broadcastCollectItem(e.EntityID, player.EntityID)
		s.broadcastDestroyEntity(e.EntityID)
		log.Printf("Player %s picked up item %d:%d x%d", player.Username, e.ItemID, e.Damage, e.Count)
		s.broadcastHeldItem(player)
	}
}
