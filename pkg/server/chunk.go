package server

import (
	"bytes"
	"math"
	"sort"

	"github.com/StoreStation/TimberCraft/pkg/protocol"
	"github.com/StoreStation/TimberCraft/pkg/world"
)

// chunkOf returns the chunk column a player coordinate falls in.
func chunkOf(x, z float64) (int32, int32) {
	return int32(math.Floor(x)) >> 4, int32(math.Floor(z)) >> 4
}

// sortByDistance orders chunks nearest first so the ground under the player
// arrives before the horizon.
func sortByDistance(chunks []world.ChunkPos, cx, cz int32) {
	sort.Slice(chunks, func(i, j int) bool {
		dx1, dz1 := chunks[i].X-cx, chunks[i].Z-cz
		dx2, dz2 := chunks[j].X-cx, chunks[j].Z-cz
		return dx1*dx1+dz1*dz1 < dx2*dx2+dz2*dz2
	})
}

func (s *Server) enqueueChunks(player *Player, chunks []world.ChunkPos) {
	for _, pos := range chunks {
		select {
		case player.ChunkQueue <- pos:
		default:
		}
	}
}

func (s *Server) sendSpawnChunks(player *Player) {
	view := s.config.ViewDistance

	player.mu.Lock()
	playerChunkX, playerChunkZ := chunkOf(player.X, player.Z)
	player.loadedChunks = make(map[world.ChunkPos]bool)
	player.lastChunkX = playerChunkX
	player.lastChunkZ = playerChunkZ

	var toQueue []world.ChunkPos
	for cx := playerChunkX - view; cx <= playerChunkX+view; cx++ {
		for cz := playerChunkZ - view; cz <= playerChunkZ+view; cz++ {
			pos := world.ChunkPos{X: cx, Z: cz}
			player.loadedChunks[pos] = true
			toQueue = append(toQueue, pos)
		}
	}
	player.mu.Unlock()

	sortByDistance(toQueue, playerChunkX, playerChunkZ)
	s.enqueueChunks(player, toQueue)
}

// chunkWorker streams queued chunk columns to the player until stop closes.
func (s *Server) chunkWorker(player *Player, stop chan struct{}) {
	for {
		select {
		case <-stop:
			return
		case pos := <-player.ChunkQueue:
			s.sendChunkColumn(player, pos)
		}
	}
}

// sendChunkColumn encodes and sends a single chunk column to a player.
// Returns false if the player moved away before the chunk was sent.
func (s *Server) sendChunkColumn(player *Player, pos world.ChunkPos) bool {
	player.mu.Lock()
	loaded := player.loadedChunks[pos]
	player.mu.Unlock()
	if !loaded {
		return false
	}

	chunkData, primaryBitMask := s.world.ChunkData(pos.X, pos.Z)
	pkt := protocol.MarshalPacket(0x21, func(w *bytes.Buffer) {
		protocol.WriteInt32(w, pos.X)
		protocol.WriteInt32(w, pos.Z)
		protocol.WriteBool(w, true) // Ground-up continuous
		protocol.WriteUint16(w, primaryBitMask)
		protocol.WriteVarInt(w, int32(len(chunkData)))
		w.Write(chunkData)
	})
	player.send(pkt)
	return true
}

// sendChunkUpdates streams new chunks to the player when they cross chunk boundaries
// and unloads chunks that are too far away.
func (s *Server) sendChunkUpdates(player *Player) {
	view := s.config.ViewDistance

	player.mu.Lock()
	currentChunkX, currentChunkZ := chunkOf(player.X, player.Z)
	if player.loadedChunks == nil || (currentChunkX == player.lastChunkX && currentChunkZ == player.lastChunkZ) {
		player.mu.Unlock()
		return
	}
	player.lastChunkX = currentChunkX
	player.lastChunkZ = currentChunkZ

	var toQueue []world.ChunkPos
	for cx := currentChunkX - view; cx <= currentChunkX+view; cx++ {
		for cz := currentChunkZ - view; cz <= currentChunkZ+view; cz++ {
			pos := world.ChunkPos{X: cx, Z: cz}
			if !player.loadedChunks[pos] {
				player.loadedChunks[pos] = true
				toQueue = append(toQueue, pos)
			}
		}
	}

	var toUnload []world.ChunkPos
	for pos := range player.loadedChunks {
		dx := pos.X - currentChunkX
		dz := pos.Z - currentChunkZ
		if dx < -view || dx > view || dz < -view || dz > view {
			toUnload = append(toUnload, pos)
		}
	}
	for _, pos := range toUnload {
		delete(player.loadedChunks, pos)
	}
	player.mu.Unlock()

	sortByDistance(toQueue, currentChunkX, currentChunkZ)
	s.enqueueChunks(player, toQueue)

	// An empty ground-up chunk unloads the column.
	for _, pos := range toUnload {
		pkt := protocol.MarshalPacket(0x21, func(w *bytes.Buffer) {
			protocol.WriteInt32(w, pos.X)
			protocol.WriteInt32(w, pos.Z)
			protocol.WriteBool(w, true)
			protocol.WriteUint16(w, 0)
			protocol.WriteVarInt(w, 0)
		})
		player.send(pkt)
	}
}
