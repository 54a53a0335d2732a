package server

import (
	"bytes"
	"testing"
	"time"

	"github.com/StoreStation/TimberCraft/pkg/protocol"
	"github.com/StoreStation/TimberCraft/pkg/world"
)

func TestSpawnItemBroadcasts(t *testing.T) {
	s := New(DefaultConfig())
	_, pkts := pipePlayer(t, s, 1, "Tester", GameModeSurvival)

	s.SpawnItem(10.5, 201, 10.5, 0, 0.2, 0, 17, 1, 3)

	spawn := waitPacket(t, pkts, 0x0E)
	r := bytes.NewReader(spawn.Data)
	protocol.ReadVarInt(r)
	objType, _ := protocol.ReadByte(r)
	if objType != objectItemStack {
		t.Errorf("object type = %d, want %d", objType, objectItemStack)
	}
	waitPacket(t, pkts, 0x1C)

	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.entities) != 1 {
		t.Fatalf("item entities = %d, want 1", len(s.entities))
	}
	for _, e := range s.entities {
		if e.ItemID != 17 || e.Damage != 1 || e.Count != 3 {
			t.Errorf("item = %d:%d x%d, want 17:1 x3", e.ItemID, e.Damage, e.Count)
		}
	}
}

func TestItemEntityFallsAndRests(t *testing.T) {
	s := New(DefaultConfig())
	s.world.SetBlock(10, 199, 10, stone)
	s.SpawnItem(10.5, 203, 10.5, 0, 0, 0, 17, 0, 1)

	for i := 0; i < 100; i++ {
		s.tickEntityPhysics()
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, e := range s.entities {
		if e.Y < 200 || e.Y > 200.5 {
			t.Errorf("item rests at y=%.2f, want on top of the stone at 200", e.Y)
		}
	}
}

func TestFallingBlockLands(t *testing.T) {
	s := New(DefaultConfig())
	s.world.SetBlock(10, 200, 10, stone)
	log := oakLog.WithAxis(world.LogAxisX)
	s.SpawnFallingBlock(10.5, 206, 10.5, log)

	for i := 0; i < 100; i++ {
		s.tickEntityPhysics()
	}

	s.mu.RLock()
	left := len(s.fallingBlocks)
	s.mu.RUnlock()
	if left != 0 {
		t.Fatalf("%d falling blocks still in the air", left)
	}
	if got := s.world.GetBlock(10, 201, 10); got != log {
		t.Errorf("landed block = %v, want %v", got, log)
	}
}

func TestFallingBlockSpawnPacket(t *testing.T) {
	fb := &FallingBlockEntity{EntityID: 9, State: world.NewBlockState(world.BlockLog2, 9), X: 1.5, Y: 64, Z: 2.5}
	pkt := fallingBlockSpawnPacket(fb)
	r := bytes.NewReader(pkt.Data)

	eid, _, _ := protocol.ReadVarInt(r)
	objType, _ := protocol.ReadByte(r)
	protocol.ReadInt32(r)
	protocol.ReadInt32(r)
	protocol.ReadInt32(r)
	protocol.ReadByte(r)
	protocol.ReadByte(r)
	data, _ := protocol.ReadInt32(r)

	if eid != 9 || objType != objectFallingBlk {
		t.Errorf("entity %d type %d, want 9 type %d", eid, objType, objectFallingBlk)
	}
	if want := int32(world.BlockLog2) | 9<<12; data != want {
		t.Errorf("data = %#x, want %#x", data, want)
	}
	if r.Len() != 6 {
		t.Errorf("%d bytes after data, want 6 for velocity", r.Len())
	}
}

func TestLandOnOccupiedCellDropsItem(t *testing.T) {
	s := New(DefaultConfig())
	cell := world.BlockPos{X: 10, Y: 201, Z: 10}
	s.world.SetBlock(cell.X, cell.Y, cell.Z, stone)
	fb := &FallingBlockEntity{EntityID: 5, State: world.NewBlockState(world.BlockLog, 2), X: 10.5, Y: 201, Z: 10.5}

	s.landFallingBlock(landing{entity: fb, cell: cell, ok: true})

	if got := s.world.Block(cell); got != stone {
		t.Errorf("cell = %v, want the stone kept", got)
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.entities) != 1 {
		t.Fatalf("item entities = %d, want 1", len(s.entities))
	}
	for _, e := range s.entities {
		if e.ItemID != int16(world.BlockLog) || e.Damage != 2 || e.Count != 1 {
			t.Errorf("dropped %d:%d x%d, want birch log", e.ItemID, e.Damage, e.Count)
		}
	}
}

func TestFallingBlockOutOfWorld(t *testing.T) {
	s := New(DefaultConfig())
	fb := &FallingBlockEntity{EntityID: 5, State: oakLog, X: 0.5, Y: 0.5, Z: 0.5, VY: -2}

	l, done := s.stepFallingBlock(fb)
	if !done {
		t.Fatal("falling block below the world should stop")
	}
	if l.ok {
		t.Error("falling block below the world should not land")
	}
}

func TestPickupItems(t *testing.T) {
	s := New(DefaultConfig())
	player := newPlayer(1, "Tester", nil, GameModeSurvival)
	player.X, player.Y, player.Z = 0.5, 200, 0.5

	s.SpawnItem(0.5, 200.2, 0.5, 0, 0, 0, 17, 0, 4)
	s.mu.Lock()
	for _, e := range s.entities {
		e.SpawnTime = time.Now().Add(-2 * pickupDelay)
	}
	s.mu.Unlock()

	s.pickupItems(player)

	if got := player.Inventory[slotHotbar]; got.ItemID != 17 || got.Count != 4 {
		t.Errorf("hotbar slot = %+v, want 4 oak logs", got)
	}
	if entities, _ := itemTotals(s); entities != 0 {
		t.Errorf("%d item entities left after pickup", entities)
	}
}

func TestSpectatorCannotPickUp(t *testing.T) {
	s := New(DefaultConfig())
	player := newPlayer(1, "Tester", nil, GameModeSpectator)
	player.X, player.Y, player.Z = 0.5, 200, 0.5

	s.SpawnItem(0.5, 200.2, 0.5, 0, 0, 0, 17, 0, 1)
	s.mu.Lock()
	for _, e := range s.entities {
		e.SpawnTime = time.Now().Add(-2 * pickupDelay)
	}
	s.mu.Unlock()

	s.pickupItems(player)

	if entities, _ := itemTotals(s); entities != 1 {
		t.Errorf("item entities = %d, want 1", entities)
	}
}
