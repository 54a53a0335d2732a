package server

import (
	"math/rand"
	"time"

	"github.com/StoreStation/TimberCraft/pkg/world"
)

const (
	decayInterval  = 100 * time.Millisecond
	decayPerTick   = 6
	saplingChance  = 0.05
	decayQueueSize = 4096
)

// scheduleLeafDecay queues the area around broken logs for a leaf decay
// check on the next tick.
func (s *Server) scheduleLeafDecay(around []world.BlockPos) {
	s.decayMu.Lock()
	s.decayAround = append(s.decayAround, around...)
	s.decayMu.Unlock()
}

func (s *Server) leafDecayLoop() {
	ticker := time.NewTicker(decayInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCh:
			return
		case <-ticker.C:
			s.tickLeafDecay()
		}
	}
}

// tickLeafDecay queues leaves orphaned since the last tick and removes up
// to decayPerTick of them. It returns how many were removed.
func (s *Server) tickLeafDecay() int {
	s.decayMu.Lock()
	around := s.decayAround
	s.decayAround = nil
	s.decayMu.Unlock()

	s.blockMu.Lock()
	defer s.blockMu.Unlock()

	if len(around) > 0 {
		found := s.world.DecayableLeaves(around)
		rand.Shuffle(len(found), func(i, j int) { found[i], found[j] = found[j], found[i] })
		s.decayQueue = append(s.decayQueue, found...)
		if len(s.decayQueue) > decayQueueSize {
			s.decayQueue = s.decayQueue[len(s.decayQueue)-decayQueueSize:]
		}
	}

	removed := 0
	for len(s.decayQueue) > 0 && removed < decayPerTick {
		pos := s.decayQueue[0]
		s.decayQueue = s.decayQueue[1:]
		// A log may have been placed since the leaf was queued.
		if !s.world.ShouldDecay(pos) {
			continue
		}
		s.decayLeaf(pos)
		removed++
	}
	s.metrics.LeavesDecayed(removed)
	return removed
}

// decayLeaf removes one leaf, sometimes dropping its sapling. Must be
// called with s.blockMu held.
func (s *Server) decayLeaf(pos world.BlockPos) {
	state := s.world.Block(pos)
	s.broadcastBlockBreakEffect(pos, state, 0)
	s.world.SetBlock(pos.X, pos.Y, pos.Z, 0)
	s.broadcastBlockChange(pos, 0)

	if rand.Float64() >= saplingChance {
		return
	}
	if itemID, damage, ok := world.SaplingFor(state); ok {
		s.SpawnItem(float64(pos.X)+0.5, float64(pos.Y)+0.5, float64(pos.Z)+0.5, 0, 0.1, 0, itemID, damage, 1)
	}
}
