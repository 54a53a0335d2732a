package server

import (
	"bytes"
	"fmt"
	"log"
	"strings"

	"github.com/StoreStation/TimberCraft/pkg/protocol"
)

// Gamemode constants matching Minecraft protocol values.
const (
	GameModeSurvival  byte = 0
	GameModeCreative  byte = 1
	GameModeAdventure byte = 2
	GameModeSpectator byte = 3
)

// Entity metadata flags (index 0, type byte).
const (
	EntityFlagCrouched  byte = 0x02
	EntityFlagInvisible byte = 0x20
)

// ParseGameMode parses a gamemode string into its byte value.
// Returns the mode and true on success, or 0 and false on failure.
func ParseGameMode(s string) (byte, bool) {
	switch strings.ToLower(s) {
	case "survival", "s", "0":
		return GameModeSurvival, true
	case "creative", "c", "1":
		return GameModeCreative, true
	case "adventure", "a", "2":
		return GameModeAdventure, true
	case "spectator", "sp", "3":
		return GameModeSpectator, true
	default:
		return 0, false
	}
}

// GameModeName returns the display name for a gamemode.
func GameModeName(mode byte) string {
	switch mode {
	case GameModeSurvival:
		return "Survival"
	case GameModeCreative:
		return "Creative"
	case GameModeAdventure:
		return "Adventure"
	case GameModeSpectator:
		return "Spectator"
	default:
		return fmt.Sprintf("Unknown(%d)", mode)
	}
}

// canModifyWorld reports whether a game mode may break and place blocks.
func canModifyWorld(mode byte) bool {
	return mode == GameModeSurvival || mode == GameModeCreative
}

// entityFlags returns the metadata flags other clients render the player
// with. Must be called with p.mu held.
func (p *Player) entityFlags() byte {
	var flags byte
	if p.sneaking {
		flags |= EntityFlagCrouched
	}
	if p.GameMode == GameModeSpectator {
		flags |= EntityFlagInvisible
	}
	return flags
}

// switchGameMode changes a player's gamemode, sending all necessary packets
// to the player and broadcasting updates to other players.
func (s *Server) switchGameMode(player *Player, mode byte) {
	player.mu.Lock()
	player.GameMode = mode
	player.mu.Unlock()

	changeGameState := protocol.MarshalPacket(0x2B, func(w *bytes.Buffer) {
		protocol.WriteByte(w, 3)                // Reason: change game mode
		protocol.WriteFloat32(w, float32(mode)) // Value: new game mode
	})
	player.send(changeGameState)

	s.sendPlayerAbilities(player)
	s.broadcastPlayerListGamemode(player)
	s.broadcastEntityFlags(player)

	log.Printf("Player %s game mode changed to %s", player.Username, GameModeName(mode))
}

// sendPlayerAbilities sends the Player Abilities packet (0x39) based on the player's current gamemode.
func (s *Server) sendPlayerAbilities(player *Player) {
	player.mu.Lock()
	mode := player.GameMode
	player.mu.Unlock()

	var flags byte
	switch mode {
	case GameModeCreative:
		flags = 0x0D // Invulnerable (0x01) | Allow Flying (0x04) | Instant Break (0x08)
	case GameModeSpectator:
		flags = 0x07 // Invulnerable (0x01) | Flying (0x02) | Allow Flying (0x04)
	}
	abilities := protocol.MarshalPacket(0x39, func(w *bytes.Buffer) {
		protocol.WriteByte(w, flags)
		protocol.WriteFloat32(w, 0.05) // Flying speed
		protocol.WriteFloat32(w, 0.1)  // Walking speed (FOV modifier)
	})
	player.send(abilities)
}

// broadcastPlayerListGamemode sends a Player List Item (action=1, Update Gamemode)
// to all players, updating the target player's gamemode in the tab list.
func (s *Server) broadcastPlayerListGamemode(player *Player) {
	player.mu.Lock()
	gameMode := player.GameMode
	player.mu.Unlock()

	pkt := protocol.MarshalPacket(0x38, func(w *bytes.Buffer) {
		protocol.WriteVarInt(w, 1) // Action: Update Gamemode
		protocol.WriteVarInt(w, 1) // Number of players
		protocol.WriteUUID(w, player.UUID)
		protocol.WriteVarInt(w, int32(gameMode))
	})
	s.broadcast(pkt, 0)
}

// broadcastEntityFlags sends an Entity Metadata packet (0x1C) with the
// player's crouch and invisibility flags to everyone else.
func (s *Server) broadcastEntityFlags(player *Player) {
	player.mu.Lock()
	flags := player.entityFlags()
	player.mu.Unlock()

	pkt := protocol.MarshalPacket(0x1C, func(w *bytes.Buffer) {
		protocol.WriteVarInt(w, player.EntityID)
		protocol.WriteByte(w, 0x00) // header: (type 0 << 5) | index 0 = entity flags
		protocol.WriteByte(w, flags)
		protocol.WriteByte(w, 0x7F) // Metadata terminator
	})
	s.broadcast(pkt, player.EntityID)
}

// setSneaking records a crouch toggle from Entity Action (0x0B).
func (s *Server) setSneaking(player *Player, sneaking bool) {
	player.mu.Lock()
	changed := player.sneaking != sneaking
	player.sneaking = sneaking
	player.mu.Unlock()
	if changed {
		s.broadcastEntityFlags(player)
	}
}
