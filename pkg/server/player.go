package server

import (
	"bytes"
	"crypto/md5"
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/StoreStation/TimberCraft/pkg/chat"
	"github.com/StoreStation/TimberCraft/pkg/protocol"
	"github.com/StoreStation/TimberCraft/pkg/world"
)

// Slot represents an inventory slot. An empty slot has ItemID -1.
type Slot struct {
	ItemID int16
	Count  byte
	Damage int16
}

var emptySlot = Slot{ItemID: -1}

// Player represents a connected player.
type Player struct {
	EntityID   int32
	Username   string
	UUID       uuid.UUID
	Conn       *protocol.Conn
	GameMode   byte
	X, Y, Z    float64
	Yaw        float32
	Pitch      float32
	OnGround   bool
	sneaking   bool
	Inventory  [45]Slot
	Cursor     Slot
	ActiveSlot int16

	loadedChunks map[world.ChunkPos]bool
	lastChunkX   int32
	lastChunkZ   int32
	ChunkQueue   chan world.ChunkPos

	mu sync.Mutex
}

// newPlayer returns a player with an empty inventory.
func newPlayer(eid int32, username string, conn *protocol.Conn, mode byte) *Player {
	p := &Player{
		EntityID:   eid,
		Username:   username,
		UUID:       offlineUUID(username),
		Conn:       conn,
		GameMode:   mode,
		OnGround:   true,
		Cursor:     emptySlot,
		ChunkQueue: make(chan world.ChunkPos, 1024),
	}
	for i := range p.Inventory {
		p.Inventory[i] = emptySlot
	}
	return p
}

// Position returns the player's feet position.
func (p *Player) Position() (x, y, z float64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.X, p.Y, p.Z
}

// Sneaking reports whether the player is crouching.
func (p *Player) Sneaking() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.sneaking
}

// send writes a packet to the player's connection.
func (p *Player) send(pkt *protocol.Packet) error {
	if p.Conn == nil {
		return nil
	}
	return p.Conn.WritePacket(pkt)
}

func (s *Server) handleLoginStart(conn *protocol.Conn, pkt *protocol.Packet) (*Player, error) {
	r := bytes.NewReader(pkt.Data)
	username, err := protocol.ReadString(r)
	if err != nil {
		return nil, err
	}

	log.Printf("Player %s is logging in", username)

	if limit := s.config.MaxPlayers; limit > 0 && s.playerCount() >= limit {
		disconnect := protocol.MarshalPacket(0x00, func(w *bytes.Buffer) {
			protocol.WriteString(w, chat.Text("The server is full").String())
		})
		conn.WritePacket(disconnect)
		return nil, fmt.Errorf("server full, rejected %s", username)
	}

	player := newPlayer(s.allocEntityID(), username, conn, s.config.DefaultGameMode)
	player.X = 8.5
	player.Y = float64(s.world.HighestBlockY(8, 8)) + 1
	player.Z = 8.5

	if t := s.config.CompressionThreshold; t >= 0 {
		setCompression := protocol.MarshalPacket(0x03, func(w *bytes.Buffer) {
			protocol.WriteVarInt(w, int32(t))
		})
		if err := conn.WritePacket(setCompression); err != nil {
			return nil, err
		}
		conn.SetCompression(t)
	}

	loginSuccess := protocol.MarshalPacket(0x02, func(w *bytes.Buffer) {
		protocol.WriteString(w, player.UUID.String())
		protocol.WriteString(w, username)
	})
	if err := conn.WritePacket(loginSuccess); err != nil {
		return nil, err
	}

	return player, nil
}

func (s *Server) handlePlay(player *Player) {
	conn := player.Conn

	joinGame := protocol.MarshalPacket(0x01, func(w *bytes.Buffer) {
		protocol.WriteInt32(w, player.EntityID)          // Entity ID
		protocol.WriteByte(w, player.GameMode)           // Gamemode
		protocol.WriteByte(w, 0)                         // Dimension: overworld
		protocol.WriteByte(w, 0)                         // Difficulty: peaceful
		protocol.WriteByte(w, byte(s.config.MaxPlayers)) // Max players
		protocol.WriteString(w, "flat")                  // Level type
		protocol.WriteBool(w, false)                     // Reduced debug info
	})
	player.send(joinGame)

	spawnPos := protocol.MarshalPacket(0x05, func(w *bytes.Buffer) {
		protocol.WritePosition(w, 8, int32(player.Y), 8)
	})
	player.send(spawnPos)

	s.sendPlayerAbilities(player)

	posLook := protocol.MarshalPacket(0x08, func(w *bytes.Buffer) {
		protocol.WriteFloat64(w, player.X)
		protocol.WriteFloat64(w, player.Y)
		protocol.WriteFloat64(w, player.Z)
		protocol.WriteFloat32(w, player.Yaw)
		protocol.WriteFloat32(w, player.Pitch)
		protocol.WriteByte(w, 0) // Flags (all absolute)
	})
	player.send(posLook)

	stop := make(chan struct{})
	go s.chunkWorker(player, stop)
	s.sendSpawnChunks(player)

	s.mu.Lock()
	s.players[player.EntityID] = player
	online := len(s.players)
	s.mu.Unlock()
	s.metrics.SetPlayersOnline(online)

	s.broadcastChat(chat.Colored(player.Username+" joined the game", "yellow"))
	log.Printf("Player %s (EID: %d) joined the game", player.Username, player.EntityID)

	go s.keepAliveLoop(player, stop)
	go s.itemPickupLoop(player, stop)

	defer func() {
		close(stop)
		s.broadcastPlayerListRemove(player.UUID)
		s.mu.Lock()
		delete(s.players, player.EntityID)
		online := len(s.players)
		s.mu.Unlock()
		s.metrics.SetPlayersOnline(online)
		s.broadcastChat(chat.Colored(player.Username+" left the game", "yellow"))
		s.broadcastDestroyEntity(player.EntityID)
		log.Printf("Player %s disconnected", player.Username)
	}()

	s.spawnPlayerForOthers(player)
	s.spawnOthersForPlayer(player)

	// Add self to own tab list so the player can see themselves
	player.send(playerListAdd(player))
	s.spawnEntitiesForPlayer(player)

	for {
		conn.SetReadDeadline(time.Now().Add(30 * time.Second))
		pkt, err := conn.ReadPacket()
		if err != nil {
			return
		}
		s.handlePlayPacket(player, pkt)
	}
}

func (s *Server) keepAliveLoop(player *Player, stop chan struct{}) {
	ticker := time.NewTicker(10 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			keepAliveID := rand.Int31()
			pkt := protocol.MarshalPacket(0x00, func(w *bytes.Buffer) {
				protocol.WriteVarInt(w, keepAliveID)
			})
			if err := player.send(pkt); err != nil {
				return
			}
		}
	}
}

// offlineUUID derives the version 3 UUID offline-mode servers assign to
// "OfflinePlayer:<name>".
func offlineUUID(username string) uuid.UUID {
	sum := md5.Sum([]byte("OfflinePlayer:" + username))
	sum[6] = sum[6]&0x0F | 0x30
	sum[8] = sum[8]&0x3F | 0x80
	return uuid.UUID(sum)
}
