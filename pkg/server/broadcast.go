package server

import (
	"bytes"

	"github.com/google/uuid"

	"github.com/StoreStation/TimberCraft/pkg/chat"
	"github.com/StoreStation/TimberCraft/pkg/protocol"
	"github.com/StoreStation/TimberCraft/pkg/world"
)

// broadcast sends pkt to every player except the one with entity ID except.
// Pass 0 to reach everyone.
func (s *Server) broadcast(pkt *protocol.Packet, except int32) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.players {
		if p.EntityID == except {
			continue
		}
		p.send(pkt)
	}
}

func chatPacket(msg chat.Message) *protocol.Packet {
	jsonMsg := msg.String()
	return protocol.MarshalPacket(0x02, func(w *bytes.Buffer) {
		protocol.WriteString(w, jsonMsg)
		protocol.WriteByte(w, 0) // Position: chat
	})
}

func (s *Server) broadcastChat(msg chat.Message) {
	s.broadcast(chatPacket(msg), 0)
}

// sendChatToPlayer sends a chat message to a single player.
func (s *Server) sendChatToPlayer(player *Player, msg chat.Message) {
	player.send(chatPacket(msg))
}

func blockChangePacket(pos world.BlockPos, state world.BlockState) *protocol.Packet {
	return protocol.MarshalPacket(0x23, func(w *bytes.Buffer) {
		protocol.WritePosition(w, pos.X, pos.Y, pos.Z)
		protocol.WriteVarInt(w, int32(state))
	})
}

func (s *Server) broadcastBlockChange(pos world.BlockPos, state world.BlockState) {
	s.broadcast(blockChangePacket(pos, state), 0)
}

// broadcastBlockBreakEffect plays the break particles and sound of state at
// pos. The breaker's own client already shows them, so pass its entity ID
// as except.
func (s *Server) broadcastBlockBreakEffect(pos world.BlockPos, state world.BlockState, except int32) {
	effectData := int32(state.ID()) | int32(state.Meta())<<12
	pkt := protocol.MarshalPacket(0x28, func(w *bytes.Buffer) {
		protocol.WriteInt32(w, 2001) // Effect ID: block break
		protocol.WritePosition(w, pos.X, pos.Y, pos.Z)
		protocol.WriteInt32(w, effectData)
		protocol.WriteBool(w, false) // Disable relative volume
	})
	s.broadcast(pkt, except)
}

func (s *Server) broadcastEntityTeleportByID(entityID int32, x, y, z float64, yaw, pitch float32, onGround bool) {
	pkt := protocol.MarshalPacket(0x18, func(w *bytes.Buffer) {
		protocol.WriteVarInt(w, entityID)
		protocol.WriteInt32(w, int32(x*32))
		protocol.WriteInt32(w, int32(y*32))
		protocol.WriteInt32(w, int32(z*32))
		protocol.WriteByte(w, byte(yaw*256/360))
		protocol.WriteByte(w, byte(pitch*256/360))
		protocol.WriteBool(w, onGround)
	})
	s.broadcast(pkt, 0)
}

func (s *Server) broadcastEntityTeleport(player *Player) {
	player.mu.Lock()
	x, y, z := player.X, player.Y, player.Z
	yaw, pitch := player.Yaw, player.Pitch
	onGround := player.OnGround
	player.mu.Unlock()

	pkt := protocol.MarshalPacket(0x18, func(w *bytes.Buffer) {
		protocol.WriteVarInt(w, player.EntityID)
		protocol.WriteInt32(w, int32(x*32))
		protocol.WriteInt32(w, int32(y*32))
		protocol.WriteInt32(w, int32(z*32))
		protocol.WriteByte(w, byte(yaw*256/360))
		protocol.WriteByte(w, byte(pitch*256/360))
		protocol.WriteBool(w, onGround)
	})
	s.broadcast(pkt, player.EntityID)
}

func (s *Server) broadcastEntityLook(player *Player) {
	player.mu.Lock()
	yaw, pitch := player.Yaw, player.Pitch
	onGround := player.OnGround
	player.mu.Unlock()

	look := protocol.MarshalPacket(0x16, func(w *bytes.Buffer) {
		protocol.WriteVarInt(w, player.EntityID)
		protocol.WriteByte(w, byte(yaw*256/360))
		protocol.WriteByte(w, byte(pitch*256/360))
		protocol.WriteBool(w, onGround)
	})
	headRotation := protocol.MarshalPacket(0x19, func(w *bytes.Buffer) {
		protocol.WriteVarInt(w, player.EntityID)
		protocol.WriteByte(w, byte(yaw*256/360))
	})
	s.broadcast(look, player.EntityID)
	s.broadcast(headRotation, player.EntityID)
}

func (s *Server) broadcastAnimation(player *Player, animationID byte) {
	pkt := protocol.MarshalPacket(0x0B, func(w *bytes.Buffer) {
		protocol.WriteVarInt(w, player.EntityID)
		protocol.WriteByte(w, animationID)
	})
	s.broadcast(pkt, player.EntityID)
}

func (s *Server) broadcastDestroyEntity(entityID int32) {
	pkt := protocol.MarshalPacket(0x13, func(w *bytes.Buffer) {
		protocol.WriteVarInt(w, 1) // Count
		protocol.WriteVarInt(w, entityID)
	})
	s.broadcast(pkt, 0)
}

// broadcastSound plays a named sound at a position for everyone.
func (s *Server) broadcastSound(name string, x, y, z float64) {
	pkt := protocol.MarshalPacket(0x29, func(w *bytes.Buffer) {
		protocol.WriteString(w, name)
		protocol.WriteInt32(w, int32(x*8))
		protocol.WriteInt32(w, int32(y*8))
		protocol.WriteInt32(w, int32(z*8))
		protocol.WriteFloat32(w, 1.0) // Volume
		protocol.WriteByte(w, 63)     // Pitch: normal
	})
	s.broadcast(pkt, 0)
}

// broadcastHeldItem sends an Entity Equipment packet (0x04) to all other
// players so they see the correct item in the given player's hand.
func (s *Server) broadcastHeldItem(player *Player) {
	player.mu.Lock()
	slot, ok := player.heldSlot()
	player.mu.Unlock()
	if !ok {
		return
	}

	pkt := protocol.MarshalPacket(0x04, func(w *bytes.Buffer) {
		protocol.WriteVarInt(w, player.EntityID)
		protocol.WriteInt16(w, 0) // Slot 0: held item
		protocol.WriteSlotData(w, slot.ItemID, slot.Count, slot.Damage)
	})
	s.broadcast(pkt, player.EntityID)
}

// broadcastPlayerListRemove sends a Player List Item (action=4, Remove Player)
// to all connected players, removing the target player from the tab list.
func (s *Server) broadcastPlayerListRemove(id uuid.UUID) {
	pkt := protocol.MarshalPacket(0x38, func(w *bytes.Buffer) {
		protocol.WriteVarInt(w, 4) // Action: Remove Player
		protocol.WriteVarInt(w, 1) // Number of players
		protocol.WriteUUID(w, id)
	})
	s.broadcast(pkt, 0)
}

// playerListAdd builds a Player List Item (action=0, Add Player) for target.
func playerListAdd(target *Player) *protocol.Packet {
	target.mu.Lock()
	mode := target.GameMode
	target.mu.Unlock()
	return protocol.MarshalPacket(0x38, func(w *bytes.Buffer) {
		protocol.WriteVarInt(w, 0) // Action: Add Player
		protocol.WriteVarInt(w, 1) // Number of players
		protocol.WriteUUID(w, target.UUID)
		protocol.WriteString(w, target.Username)
		protocol.WriteVarInt(w, 0)           // Number of properties
		protocol.WriteVarInt(w, int32(mode)) // Gamemode
		protocol.WriteVarInt(w, 0)           // Ping
		protocol.WriteBool(w, false)         // Has display name
	})
}

func (s *Server) spawnPlayerForOthers(player *Player) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, other := range s.players {
		if other.EntityID == player.EntityID {
			continue
		}
		s.sendSpawnPlayer(other, player)
	}
}

func (s *Server) spawnOthersForPlayer(player *Player) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, other := range s.players {
		if other.EntityID == player.EntityID {
			continue
		}
		s.sendSpawnPlayer(player, other)
	}
}

func (s *Server) sendSpawnPlayer(viewer *Player, target *Player) {
	target.mu.Lock()
	x, y, z := target.X, target.Y, target.Z
	yaw, pitch := target.Yaw, target.Pitch
	flags := target.entityFlags()
	var currentItemID int16
	if held, ok := target.heldSlot(); ok && held.ItemID > 0 {
		currentItemID = held.ItemID
	}
	target.mu.Unlock()

	viewer.send(playerListAdd(target))

	spawnPlayer := protocol.MarshalPacket(0x0C, func(w *bytes.Buffer) {
		protocol.WriteVarInt(w, target.EntityID)
		protocol.WriteUUID(w, target.UUID)
		protocol.WriteInt32(w, int32(x*32))
		protocol.WriteInt32(w, int32(y*32))
		protocol.WriteInt32(w, int32(z*32))
		protocol.WriteByte(w, byte(yaw*256/360))
		protocol.WriteByte(w, byte(pitch*256/360))
		protocol.WriteInt16(w, currentItemID)
		protocol.WriteByte(w, 0x00) // header: (type 0 << 5) | index 0
		protocol.WriteByte(w, flags)
		protocol.WriteByte(w, 0x7F) // Metadata terminator
	})
	viewer.send(spawnPlayer)
}
