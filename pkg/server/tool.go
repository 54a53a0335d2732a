package server

import (
	"log"

	"github.com/StoreStation/TimberCraft/pkg/chop"
)

// maxDurability lists the 1.8 durability of tools, by item ID.
var maxDurability = map[int16]int{
	// Wood
	268: 59, 269: 59, 270: 59, 271: 59, 290: 59,
	// Stone
	272: 131, 273: 131, 274: 131, 275: 131, 291: 131,
	// Iron
	256: 250, 257: 250, 258: 250, 267: 250, 292: 250,
	// Gold
	283: 32, 284: 32, 285: 32, 286: 32, 294: 32,
	// Diamond
	276: 1561, 277: 1561, 278: 1561, 279: 1561, 293: 1561,
}

// Axe item IDs.
const (
	ItemWoodenAxe  int16 = 271
	ItemStoneAxe   int16 = 275
	ItemIronAxe    int16 = 258
	ItemGoldenAxe  int16 = 286
	ItemDiamondAxe int16 = 279
)

// heldTool is the stack in a player's selected hotbar slot, seen as a
// chop.Tool.
type heldTool struct {
	s      *Server
	player *Player
}

func (s *Server) heldTool(player *Player) *heldTool {
	return &heldTool{s: s, player: player}
}

// Remaining returns the uses left before the tool breaks. Items without
// durability report their stack size, and an empty hand reports 0.
func (t *heldTool) Remaining() int {
	t.player.mu.Lock()
	defer t.player.mu.Unlock()
	held, ok := t.player.heldSlot()
	if !ok || held.ItemID == -1 {
		return 0
	}
	limit, isTool := maxDurability[held.ItemID]
	if !isTool {
		return int(held.Count)
	}
	if left := limit - int(held.Damage) + 1; left > 0 {
		return left
	}
	return 0
}

// Damage wears the held tool. Creative players and items without durability
// are unaffected.
func (t *heldTool) Damage(amount int, actor chop.Actor, onBreak func(chop.Actor)) {
	p := t.player
	p.mu.Lock()
	index := slotHotbar + int(p.ActiveSlot)
	held, ok := p.heldSlot()
	limit, isTool := maxDurability[held.ItemID]
	if !ok || !isTool || p.GameMode == GameModeCreative {
		p.mu.Unlock()
		return
	}
	damage := int(held.Damage) + amount
	broken := damage > limit
	if broken {
		p.Inventory[index] = emptySlot
	} else {
		p.Inventory[index].Damage = int16(damage)
	}
	slot := p.Inventory[index]
	x, y, z := p.X, p.Y, p.Z
	p.mu.Unlock()

	p.send(setSlotPacket(index, slot))
	if !broken {
		return
	}
	log.Printf("Player %s broke their tool %d", p.Username, held.ItemID)
	t.s.broadcastSound("random.break", x, y, z)
	t.s.broadcastHeldItem(p)
	if onBreak != nil {
		onBreak(actor)
	}
}
