package server

import (
	"bytes"
	"log"
	"math"

	"github.com/StoreStation/TimberCraft/pkg/protocol"
)

const maxStack = 64

// Player inventory window slots.
const (
	slotCraftFirst = 1
	slotCraftLast  = 4
	slotMainFirst  = 9
	slotMainLast   = 35
	slotHotbar     = 36
	slotHotbarLast = 44
)

// heldSlot returns the stack in the selected hotbar slot. Must be called
// with p.mu held.
func (p *Player) heldSlot() (Slot, bool) {
	i := slotHotbar + int(p.ActiveSlot)
	if p.ActiveSlot < 0 || i > slotHotbarLast {
		return emptySlot, false
	}
	return p.Inventory[i], true
}

// setSlotPacket builds Set Slot (0x2F) for a player inventory slot.
func setSlotPacket(index int, slot Slot) *protocol.Packet {
	return protocol.MarshalPacket(0x2F, func(w *bytes.Buffer) {
		protocol.WriteByte(w, 0) // Window ID 0 = player inventory
		protocol.WriteInt16(w, int16(index))
		protocol.WriteSlotData(w, slot.ItemID, slot.Count, slot.Damage)
	})
}

// syncSlot resends one inventory slot to the player's client.
func (s *Server) syncSlot(player *Player, index int) {
	player.mu.Lock()
	slot := player.Inventory[index]
	player.mu.Unlock()
	player.send(setSlotPacket(index, slot))
}

// addItemToInventory finds a suitable slot and adds the item to the player's inventory.
// Returns the slot index and true if successful, or -1 and false if inventory is full.
// Must be called with player.mu held.
func addItemToInventory(player *Player, itemID int16, damage int16, count byte) (int, bool) {
	ranges := [2][2]int{{slotHotbar, slotHotbarLast}, {slotMainFirst, slotMainLast}}
	for _, rg := range ranges {
		for i := rg[0]; i <= rg[1]; i++ {
			sl := &player.Inventory[i]
			if sl.ItemID == itemID && sl.Damage == damage && int(sl.Count)+int(count) <= maxStack {
				sl.Count += count
				return i, true
			}
		}
	}
	for _, rg := range ranges {
		for i := rg[0]; i <= rg[1]; i++ {
			if player.Inventory[i].ItemID == -1 {
				player.Inventory[i] = Slot{ItemID: itemID, Damage: damage, Count: count}
				return i, true
			}
		}
	}
	return -1, false
}

// throwVelocity returns the velocity of an item thrown in the direction the
// player is looking. Must be called with player.mu held.
func throwVelocity(player *Player) (vx, vy, vz float64) {
	f1 := math.Sin(float64(player.Yaw) * math.Pi / 180.0)
	f2 := math.Cos(float64(player.Yaw) * math.Pi / 180.0)
	f3 := math.Sin(float64(player.Pitch) * math.Pi / 180.0)
	f4 := math.Cos(float64(player.Pitch) * math.Pi / 180.0)
	return -f1 * f4 * 0.3, -f3*0.3 + 0.1, f2 * f4 * 0.3
}

// dropHeldItem handles Q (one item) and Ctrl+Q (whole stack).
func (s *Server) dropHeldItem(player *Player, wholeStack bool) {
	player.mu.Lock()
	index := slotHotbar + int(player.ActiveSlot)
	held, ok := player.heldSlot()
	if !ok || held.ItemID == -1 {
		player.mu.Unlock()
		return
	}
	dropCount := byte(1)
	if wholeStack {
		dropCount = held.Count
	}
	player.Inventory[index].Count -= dropCount
	if player.Inventory[index].Count == 0 {
		player.Inventory[index] = emptySlot
	}
	slot := player.Inventory[index]
	px, py, pz := player.X, player.Y, player.Z
	vx, vy, vz := throwVelocity(player)
	player.mu.Unlock()

	player.send(setSlotPacket(index, slot))
	s.SpawnItem(px, py+1.5, pz, vx, vy, vz, held.ItemID, held.Damage, dropCount)
	s.broadcastHeldItem(player)
}

// handleCreativeInventory processes Creative Inventory Action (0x10).
func (s *Server) handleCreativeInventory(player *Player, r *bytes.Reader) {
	slotNum, err := protocol.ReadInt16(r)
	if err != nil {
		return
	}
	itemID, count, damage, err := protocol.ReadSlotData(r)
	if err != nil {
		return
	}

	player.mu.Lock()
	if player.GameMode != GameModeCreative {
		player.mu.Unlock()
		return
	}

	if slotNum == -1 {
		// Dropped out of the creative inventory
		px, py, pz := player.X, player.Y, player.Z
		vx, vy, vz := throwVelocity(player)
		player.mu.Unlock()
		if itemID != -1 {
			s.SpawnItem(px, py+1.5, pz, vx, vy, vz, itemID, damage, count)
			log.Printf("Player %s dropped item %d:%d (creative)", player.Username, itemID, damage)
		}
		return
	}
	if slotNum < 0 || slotNum > slotHotbarLast {
		player.mu.Unlock()
		return
	}

	if itemID == -1 {
		player.Inventory[slotNum] = emptySlot
	} else {
		player.Inventory[slotNum] = Slot{ItemID: itemID, Count: count, Damage: damage}
	}
	player.mu.Unlock()

	s.broadcastHeldItem(player)
}

// handleCloseWindow processes Close Window (0x0D). Items left in the
// crafting grid or on the cursor go back to the inventory, or are dropped
// when it is full.
func (s *Server) handleCloseWindow(player *Player, r *bytes.Reader) {
	if _, err := protocol.ReadByte(r); err != nil {
		return
	}

	player.mu.Lock()
	var leftovers []Slot
	stash := func(sl Slot) {
		if sl.ItemID == -1 {
			return
		}
		if _, ok := addItemToInventory(player, sl.ItemID, sl.Damage, sl.Count); !ok {
			leftovers = append(leftovers, sl)
		}
	}
	for i := slotCraftFirst; i <= slotCraftLast; i++ {
		stash(player.Inventory[i])
		player.Inventory[i] = emptySlot
	}
	stash(player.Cursor)
	player.Cursor = emptySlot
	px, py, pz := player.X, player.Y, player.Z
	player.mu.Unlock()

	for _, item := range leftovers {
		s.SpawnItem(px, py+1.5, pz, 0, 0.2, 0, item.ItemID, item.Damage, item.Count)
	}
}

// handleInventoryClick processes Click Window (0x0E) for the player's own
// inventory. Normal left and right clicks move stacks between the cursor
// and a slot; any other click mode is refused and the client resynced.
func (s *Server) handleInventoryClick(player *Player, r *bytes.Reader) {
	windowID, _ := protocol.ReadByte(r)
	slotNum, _ := protocol.ReadInt16(r)
	button, _ := protocol.ReadByte(r)
	actionNum, _ := protocol.ReadInt16(r)
	mode, err := protocol.ReadByte(r)
	if err != nil || windowID != 0 {
		return
	}

	player.mu.Lock()
	accepted := mode == 0 && (button == 0 || button == 1)
	var drop Slot
	switch {
	case !accepted:
	case slotNum == -999:
		drop = player.Cursor
		if button == 1 && drop.ItemID != -1 {
			drop.Count = 1
		}
		if drop.ItemID != -1 {
			player.Cursor.Count -= drop.Count
			if player.Cursor.Count == 0 {
				player.Cursor = emptySlot
			}
		}
	case slotNum >= slotCraftFirst && slotNum <= slotHotbarLast:
		clickSlot(&player.Inventory[slotNum], &player.Cursor, button == 1)
	default:
		accepted = false
	}
	px, py, pz := player.X, player.Y, player.Z
	vx, vy, vz := throwVelocity(player)

	confirm := protocol.MarshalPacket(0x32, func(w *bytes.Buffer) {
		protocol.WriteByte(w, 0) // Window ID
		protocol.WriteInt16(w, actionNum)
		protocol.WriteBool(w, accepted)
	})
	items := protocol.MarshalPacket(0x30, func(w *bytes.Buffer) {
		protocol.WriteByte(w, 0) // Window ID
		protocol.WriteInt16(w, int16(len(player.Inventory)))
		for _, sl := range player.Inventory {
			protocol.WriteSlotData(w, sl.ItemID, sl.Count, sl.Damage)
		}
	})
	cursor := protocol.MarshalPacket(0x2F, func(w *bytes.Buffer) {
		protocol.WriteByte(w, 0xFF) // Cursor
		protocol.WriteInt16(w, -1)
		protocol.WriteSlotData(w, player.Cursor.ItemID, player.Cursor.Count, player.Cursor.Damage)
	})
	player.mu.Unlock()

	player.send(confirm)
	player.send(items)
	player.send(cursor)

	if drop.ItemID != -1 && drop.Count > 0 {
		s.SpawnItem(px, py+1.5, pz, vx, vy, vz, drop.ItemID, drop.Damage, drop.Count)
	}
	s.broadcastHeldItem(player)
}

// clickSlot applies a normal click to slot with the cursor stack.
func clickSlot(slot, cursor *Slot, right bool) {
	same := cursor.ItemID != -1 && cursor.ItemID == slot.ItemID && cursor.Damage == slot.Damage
	switch {
	case !right && same:
		space := maxStack - slot.Count
		if cursor.Count <= space {
			slot.Count += cursor.Count
			*cursor = emptySlot
		} else {
			slot.Count = maxStack
			cursor.Count -= space
		}
	case right && cursor.ItemID == -1 && slot.ItemID != -1:
		half := (slot.Count + 1) / 2
		*cursor = *slot
		cursor.Count = half
		slot.Count -= half
		if slot.Count == 0 {
			*slot = emptySlot
		}
	case right && cursor.ItemID != -1 && slot.ItemID == -1:
		*slot = *cursor
		slot.Count = 1
		cursor.Count--
		if cursor.Count == 0 {
			*cursor = emptySlot
		}
	case right && same:
		if slot.Count < maxStack {
			slot.Count++
			cursor.Count--
			if cursor.Count == 0 {
				*cursor = emptySlot
			}
		}
	default:
		*slot, *cursor = *cursor, *slot
	}
}
