package server

import (
	"testing"
)

func TestAddItemToInventory(t *testing.T) {
	player := newPlayer(1, "Tester", nil, GameModeSurvival)

	// First item goes to hotbar slot 36
	slot, ok := addItemToInventory(player, 17, 0, 1)
	if !ok {
		t.Fatal("addItemToInventory failed for first item")
	}
	if slot != 36 {
		t.Errorf("first item slot = %d, want 36", slot)
	}

	// Same item stacks
	slot, ok = addItemToInventory(player, 17, 0, 1)
	if !ok || slot != 36 {
		t.Fatalf("stacked item slot = %d, %v, want 36, true", slot, ok)
	}
	if player.Inventory[36].Count != 2 {
		t.Errorf("slot 36 count = %d, want 2", player.Inventory[36].Count)
	}

	// A different variant is a different item
	slot, ok = addItemToInventory(player, 17, 2, 1)
	if !ok || slot != 37 {
		t.Errorf("birch log slot = %d, %v, want 37, true", slot, ok)
	}
}

func TestAddItemToInventoryFull(t *testing.T) {
	player := newPlayer(1, "Tester", nil, GameModeSurvival)
	for i := slotMainFirst; i <= slotHotbarLast; i++ {
		player.Inventory[i] = Slot{ItemID: 1, Count: maxStack}
	}

	slot, ok := addItemToInventory(player, 17, 0, 1)
	if ok {
		t.Errorf("addItemToInventory into a full inventory = %d, true, want failure", slot)
	}
}

func TestAddItemStackOverflow(t *testing.T) {
	player := newPlayer(1, "Tester", nil, GameModeSurvival)
	player.Inventory[36] = Slot{ItemID: 17, Count: 63}

	slot, ok := addItemToInventory(player, 17, 0, 2)
	if !ok {
		t.Fatal("addItemToInventory failed")
	}
	if slot == 36 {
		t.Error("item overflowed a full stack")
	}
	if player.Inventory[36].Count != 63 {
		t.Errorf("slot 36 count = %d, want 63", player.Inventory[36].Count)
	}
}

func TestClickSlot(t *testing.T) {
	tests := []struct {
		name       string
		slot       Slot
		cursor     Slot
		right      bool
		wantSlot   Slot
		wantCursor Slot
	}{
		{
			name:       "pick up stack",
			slot:       Slot{ItemID: 17, Count: 10},
			cursor:     emptySlot,
			wantSlot:   emptySlot,
			wantCursor: Slot{ItemID: 17, Count: 10},
		},
		{
			name:       "merge into stack",
			slot:       Slot{ItemID: 17, Count: 60},
			cursor:     Slot{ItemID: 17, Count: 10},
			wantSlot:   Slot{ItemID: 17, Count: 64},
			wantCursor: Slot{ItemID: 17, Count: 6},
		},
		{
			name:       "split stack",
			slot:       Slot{ItemID: 17, Count: 5},
			cursor:     emptySlot,
			right:      true,
			wantSlot:   Slot{ItemID: 17, Count: 2},
			wantCursor: Slot{ItemID: 17, Count: 3},
		},
		{
			name:       "place one",
			slot:       emptySlot,
			cursor:     Slot{ItemID: 6, Count: 2},
			right:      true,
			wantSlot:   Slot{ItemID: 6, Count: 1},
			wantCursor: Slot{ItemID: 6, Count: 1},
		},
		{
			name:       "swap different items",
			slot:       Slot{ItemID: 17, Count: 1},
			cursor:     Slot{ItemID: 258, Count: 1, Damage: 3},
			wantSlot:   Slot{ItemID: 258, Count: 1, Damage: 3},
			wantCursor: Slot{ItemID: 17, Count: 1},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slot, cursor := tt.slot, tt.cursor
			clickSlot(&slot, &cursor, tt.right)
			if slot != tt.wantSlot {
				t.Errorf("slot = %+v, want %+v", slot, tt.wantSlot)
			}
			if cursor != tt.wantCursor {
				t.Errorf("cursor = %+v, want %+v", cursor, tt.wantCursor)
			}
		})
	}
}

func TestDropHeldItem(t *testing.T) {
	s := New(DefaultConfig())
	player := newPlayer(1, "Tester", nil, GameModeSurvival)
	player.Inventory[36] = Slot{ItemID: 17, Count: 5}

	s.dropHeldItem(player, false)
	if player.Inventory[36].Count != 4 {
		t.Errorf("count after Q = %d, want 4", player.Inventory[36].Count)
	}

	s.dropHeldItem(player, true)
	if player.Inventory[36] != emptySlot {
		t.Errorf("slot after Ctrl+Q = %+v, want empty", player.Inventory[36])
	}

	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.entities) != 2 {
		t.Fatalf("item entities = %d, want 2", len(s.entities))
	}
	total := 0
	for _, e := range s.entities {
		total += int(e.Count)
	}
	if total != 5 {
		t.Errorf("dropped %d items, want 5", total)
	}
}
