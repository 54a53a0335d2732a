package server

import (
	"bytes"
	"fmt"
	"log"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/StoreStation/TimberCraft/pkg/chat"
	"github.com/StoreStation/TimberCraft/pkg/chop"
	"github.com/StoreStation/TimberCraft/pkg/protocol"
)

type commandFunc func(s *Server, player *Player, args []string)

var commands = map[string]commandFunc{
	"/gamemode": (*Server).handleGamemodeCommand,
	"/gm":       (*Server).handleGamemodeCommand,
	"/tp":       (*Server).handleTpCommand,
	"/teleport": (*Server).handleTpCommand,
	"/stop":     (*Server).handleStopCommand,
	"/save":     (*Server).handleSaveCommand,
	"/chop":     (*Server).handleChopCommand,
	"/give":     (*Server).handleGiveCommand,
}

// handleCommand dispatches a /-prefixed command from a player.
func (s *Server) handleCommand(player *Player, message string) {
	parts := strings.Fields(message)
	if len(parts) == 0 {
		return
	}
	cmd := strings.ToLower(parts[0])
	log.Printf("Player %s issued command: %s", player.Username, message)

	fn, ok := commands[cmd]
	if !ok {
		s.sendChatToPlayer(player, chat.Errorf("Unknown command: %s", cmd))
		return
	}
	fn(s, player, parts[1:])
}

// handleTabComplete answers Tab-Complete (0x14) with matching command names.
func (s *Server) handleTabComplete(player *Player, text string) {
	if strings.Contains(text, " ") {
		return
	}
	prefix := strings.ToLower(text)
	var matches []string
	for name := range commands {
		if strings.HasPrefix(name, prefix) {
			matches = append(matches, name)
		}
	}
	sort.Strings(matches)

	pkt := protocol.MarshalPacket(0x3A, func(w *bytes.Buffer) {
		protocol.WriteVarInt(w, int32(len(matches)))
		for _, m := range matches {
			protocol.WriteString(w, m)
		}
	})
	player.send(pkt)
}

// handleGamemodeCommand handles the /gamemode command.
// Usage: /gamemode <survival|creative|adventure|spectator|0|1|2|3>
func (s *Server) handleGamemodeCommand(player *Player, args []string) {
	if len(args) < 1 {
		s.sendChatToPlayer(player, chat.Errorf("Usage: /gamemode <survival|creative|adventure|spectator|0|1|2|3>"))
		return
	}
	mode, ok := ParseGameMode(args[0])
	if !ok {
		s.sendChatToPlayer(player, chat.Errorf("Unknown gamemode: %s", args[0]))
		return
	}
	s.switchGameMode(player, mode)
	s.sendChatToPlayer(player, chat.Infof("Game mode set to %s", GameModeName(mode)))
}

// handleTpCommand handles the /tp command.
// Usage: /tp <x> <y> <z> or /tp <player>
func (s *Server) handleTpCommand(player *Player, args []string) {
	switch len(args) {
	case 3:
		x, err1 := strconv.ParseFloat(args[0], 64)
		y, err2 := strconv.ParseFloat(args[1], 64)
		z, err3 := strconv.ParseFloat(args[2], 64)
		if err1 != nil || err2 != nil || err3 != nil {
			s.sendChatToPlayer(player, chat.Errorf("Invalid coordinates. Usage: /tp <x> <y> <z>"))
			return
		}
		s.teleportPlayer(player, x, y, z)
		s.sendChatToPlayer(player, chat.Infof("Teleported to %.1f, %.1f, %.1f", x, y, z))
		log.Printf("Player %s teleported to %.1f, %.1f, %.1f", player.Username, x, y, z)
	case 1:
		target := s.findPlayer(args[0])
		if target == nil {
			s.sendChatToPlayer(player, chat.Errorf("Player not found: %s", args[0]))
			return
		}
		tx, ty, tz := target.Position()
		s.teleportPlayer(player, tx, ty, tz)
		s.sendChatToPlayer(player, chat.Infof("Teleported to %s", target.Username))
		log.Printf("Player %s teleported to %s (%.1f, %.1f, %.1f)", player.Username, target.Username, tx, ty, tz)
	default:
		s.sendChatToPlayer(player, chat.Errorf("Usage: /tp <x> <y> <z> or /tp <player>"))
	}
}

func (s *Server) findPlayer(name string) *Player {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, p := range s.players {
		if strings.EqualFold(p.Username, name) {
			return p
		}
	}
	return nil
}

// teleportPlayer moves a player to the given coordinates and syncs the change.
func (s *Server) teleportPlayer(player *Player, x, y, z float64) {
	player.mu.Lock()
	player.X, player.Y, player.Z = x, y, z
	yaw, pitch := player.Yaw, player.Pitch
	player.mu.Unlock()

	posLook := protocol.MarshalPacket(0x08, func(w *bytes.Buffer) {
		protocol.WriteFloat64(w, x)
		protocol.WriteFloat64(w, y)
		protocol.WriteFloat64(w, z)
		protocol.WriteFloat32(w, yaw)
		protocol.WriteFloat32(w, pitch)
		protocol.WriteByte(w, 0) // Flags (all absolute)
	})
	player.send(posLook)

	s.broadcastEntityTeleport(player)
	s.sendChunkUpdates(player)
}

// handleStopCommand handles the /stop command.
func (s *Server) handleStopCommand(player *Player, _ []string) {
	log.Printf("Player %s issued /stop command, shutting down server...", player.Username)
	s.broadcastChat(chat.Colored("Server is stopping...", "red"))

	go func() {
		time.Sleep(500 * time.Millisecond)
		s.Stop()
	}()
}

// handleSaveCommand handles /save.
func (s *Server) handleSaveCommand(player *Player, _ []string) {
	if s.config.SnapshotPath == "" {
		s.sendChatToPlayer(player, chat.Errorf("No snapshot path configured"))
		return
	}
	if err := s.SaveWorld(); err != nil {
		log.Printf("Failed to save world: %v", err)
		s.sendChatToPlayer(player, chat.Errorf("Save failed: %v", err))
		return
	}
	s.sendChatToPlayer(player, chat.Infof("World saved"))
}

// handleChopCommand handles /chop [mode]: without an argument it shows the
// tree chopper settings, with one it switches the chop mode.
func (s *Server) handleChopCommand(player *Player, args []string) {
	if len(args) == 0 {
		cfg := s.ChopConfig()
		s.sendChatToPlayer(player, chat.Infof("Chop mode %s, durability %s, sneak to disable %t, leaves required %t, fast leaf decay %t",
			cfg.Mode, cfg.Durability, cfg.SneakToDisable, cfg.RequireLeavesToChop, cfg.FastLeafDecay))
		return
	}
	mode, err := chop.ParseMode(args[0])
	if err != nil {
		s.sendChatToPlayer(player, chat.Errorf("Unknown chop mode: %s (full, single, gravity, vanilla)", args[0]))
		return
	}
	s.SetChopMode(mode)
	s.broadcastChat(chat.Infof("%s set the chop mode to %s", player.Username, mode))
}

// handleGiveCommand handles /give <item[:damage]> [count].
func (s *Server) handleGiveCommand(player *Player, args []string) {
	if len(args) < 1 || len(args) > 2 {
		s.sendChatToPlayer(player, chat.Errorf("Usage: /give <item[:damage]> [count]"))
		return
	}
	itemID, damage, err := parseItem(args[0])
	if err != nil {
		s.sendChatToPlayer(player, chat.Errorf("%v", err))
		return
	}
	count := 1
	if len(args) == 2 {
		count, err = strconv.Atoi(args[1])
		if err != nil || count < 1 || count > maxStack {
			s.sendChatToPlayer(player, chat.Errorf("Count must be between 1 and %d", maxStack))
			return
		}
	}

	player.mu.Lock()
	index, ok := addItemToInventory(player, itemID, damage, byte(count))
	var slot Slot
	if ok {
		slot = player.Inventory[index]
	}
	player.mu.Unlock()

	if !ok {
		s.sendChatToPlayer(player, chat.Errorf("Inventory is full"))
		return
	}
	player.send(setSlotPacket(index, slot))
	s.broadcastHeldItem(player)
	s.sendChatToPlayer(player, chat.Infof("Gave %d x %d:%d", count, itemID, damage))
	log.Printf("Player %s was given %d x %d:%d", player.Username, count, itemID, damage)
}

// parseItem parses "id" or "id:damage".
func parseItem(s string) (int16, int16, error) {
	idPart, damagePart, hasDamage := strings.Cut(s, ":")
	id, err := strconv.ParseInt(idPart, 10, 16)
	if err != nil || id <= 0 {
		return 0, 0, fmt.Errorf("invalid item id %q", idPart)
	}
	var damage int64
	if hasDamage {
		damage, err = strconv.ParseInt(damagePart, 10, 16)
		if err != nil || damage < 0 {
			return 0, 0, fmt.Errorf("invalid damage %q", damagePart)
		}
	}
	return int16(id), int16(damage), nil
}
