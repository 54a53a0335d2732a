package server

import (
	"bytes"
	"log"
	"strings"

	"github.com/StoreStation/TimberCraft/pkg/chat"
	"github.com/StoreStation/TimberCraft/pkg/protocol"
	"github.com/StoreStation/TimberCraft/pkg/world"
)

// Entity Action (0x0B) action IDs.
const (
	actionStartSneaking = 0
	actionStopSneaking  = 1
)

func (s *Server) handlePlayPacket(player *Player, pkt *protocol.Packet) {
	r := bytes.NewReader(pkt.Data)

	switch pkt.ID {
	case 0x00: // Keep Alive
	// Client responding to keep alive, ignore

	case 0x01: // Chat Message
		message, err := protocol.ReadString(r)
		if err != nil {
			return
		}
		if len(message) > 256 {
			message = message[:256]
		}
		if strings.HasPrefix(message, "/") {
			s.handleCommand(player, message)
			return
		}
		log.Printf("<%s> %s", player.Username, message)
		s.broadcastChat(chat.Join(
			chat.Colored("<"+player.Username+"> ", "white"),
			chat.Text(message),
		))

	case 0x03: // Player (on ground)
		onGround, _ := protocol.ReadBool(r)
		player.mu.Lock()
		player.OnGround = onGround
		player.mu.Unlock()

	case 0x04: // Player Position
		x, _ := protocol.ReadFloat64(r)
		y, _ := protocol.ReadFloat64(r)
		z, _ := protocol.ReadFloat64(r)
		onGround, err := protocol.ReadBool(r)
		if err != nil {
			return
		}
		player.mu.Lock()
		player.X, player.Y, player.Z = x, y, z
		player.OnGround = onGround
		player.mu.Unlock()
		s.broadcastEntityTeleport(player)
		s.sendChunkUpdates(player)

	case 0x05: // Player Look
		yaw, _ := protocol.ReadFloat32(r)
		pitch, _ := protocol.ReadFloat32(r)
		onGround, err := protocol.ReadBool(r)
		if err != nil {
			return
		}
		player.mu.Lock()
		player.Yaw, player.Pitch = yaw, pitch
		player.OnGround = onGround
		player.mu.Unlock()
		s.broadcastEntityLook(player)

	case 0x06: // Player Position And Look
		x, _ := protocol.ReadFloat64(r)
		y, _ := protocol.ReadFloat64(r)
		z, _ := protocol.ReadFloat64(r)
		yaw, _ := protocol.ReadFloat32(r)
		pitch, _ := protocol.ReadFloat32(r)
		onGround, err := protocol.ReadBool(r)
		if err != nil {
			return
		}
		player.mu.Lock()
		player.X, player.Y, player.Z = x, y, z
		player.Yaw, player.Pitch = yaw, pitch
		player.OnGround = onGround
		player.mu.Unlock()
		s.broadcastEntityTeleport(player)
		s.broadcastEntityLook(player)
		s.sendChunkUpdates(player)

	case 0x07: // Player Digging
		s.handlePlayerDigging(player, r)

	case 0x08: // Block Placement
		s.handleBlockPlacement(player, r)

	case 0x09: // Held Item Change
		slot, err := protocol.ReadInt16(r)
		if err != nil || slot < 0 || slot > 8 {
			return
		}
		player.mu.Lock()
		player.ActiveSlot = slot
		player.mu.Unlock()
		s.broadcastHeldItem(player)

	case 0x0A: // Animation
		s.broadcastAnimation(player, 0)

	case 0x0B: // Entity Action
		if _, _, err := protocol.ReadVarInt(r); err != nil {
			return
		}
		action, _, err := protocol.ReadVarInt(r)
		if err != nil {
			return
		}
		switch action {
		case actionStartSneaking:
			s.setSneaking(player, true)
		case actionStopSneaking:
			s.setSneaking(player, false)
		}

	case 0x0D: // Close Window
		s.handleCloseWindow(player, r)

	case 0x0E: // Click Window
		s.handleInventoryClick(player, r)

	case 0x10: // Creative Inventory Action
		s.handleCreativeInventory(player, r)

	case 0x13: // Player Abilities (serverbound)
		// F3+N toggles between creative and spectator; the client reports
		// it through the Instant Break flag (0x08).
		clientFlags, err := protocol.ReadByte(r)
		if err != nil {
			return
		}
		player.mu.Lock()
		currentMode := player.GameMode
		player.mu.Unlock()
		if currentMode == GameModeCreative && clientFlags&0x08 == 0 {
			s.switchGameMode(player, GameModeSpectator)
		} else if currentMode == GameModeSpectator && clientFlags&0x08 != 0 {
			s.switchGameMode(player, GameModeCreative)
		}

	case 0x14: // Tab-Complete
		text, err := protocol.ReadString(r)
		if err != nil {
			return
		}
		if strings.HasPrefix(text, "/") {
			s.handleTabComplete(player, text)
		}

	case 0x02, 0x15, 0x16, 0x17:
		// Use Entity, Client Settings, Client Status, Plugin Message: ignored
	}
}

// Player Digging (0x07) statuses.
const (
	digStarted   = 0
	digFinished  = 2
	digDropStack = 3
	digDropItem  = 4
)

// handlePlayerDigging processes Player Digging (0x07).
func (s *Server) handlePlayerDigging(player *Player, r *bytes.Reader) {
	status, _ := protocol.ReadByte(r)
	x, y, z, err := protocol.ReadPosition(r)
	if err != nil {
		return
	}
	_, _ = protocol.ReadByte(r) // face

	player.mu.Lock()
	mode := player.GameMode
	player.mu.Unlock()

	pos := world.BlockPos{X: x, Y: y, Z: z}
	switch status {
	case digStarted:
		if mode == GameModeCreative {
			s.handleBlockBreak(player, pos)
		}
	case digFinished:
		if mode == GameModeSurvival {
			s.handleBlockBreak(player, pos)
		}
	case digDropStack, digDropItem:
		if mode != GameModeSpectator {
			s.dropHeldItem(player, status == digDropStack)
		}
	}
}
