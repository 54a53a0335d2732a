package world

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/klauspost/compress/zstd"
)

func TestWorldGetSetBlock(t *testing.T) {
	w := NewWorld(42)

	if got := w.GetBlock(0, 0, 0); got != NewBlockState(BlockBedrock, 0) {
		t.Errorf("GetBlock(0,0,0) = %d, want bedrock", got)
	}
	if got := w.GetBlock(5, 80, 5); got != 0 {
		t.Errorf("GetBlock(5,80,5) = %d, want air", got)
	}

	w.SetBlock(5, 2, 5, 0)
	if got := w.GetBlock(5, 2, 5); got != 0 {
		t.Errorf("after SetBlock, GetBlock(5,2,5) = %d, want air", got)
	}
	if got := w.GetBlock(6, 2, 5); got != NewBlockState(BlockDirt, 0) {
		t.Errorf("GetBlock(6,2,5) = %d, want dirt", got)
	}

	// Out of range writes are ignored.
	w.SetBlock(0, 300, 0, NewBlockState(BlockStone, 0))
	if got := w.GetBlock(0, 300, 0); got != 0 {
		t.Errorf("GetBlock(0,300,0) = %d, want air", got)
	}
}

func TestWorldModifications(t *testing.T) {
	w := NewWorld(42)

	if mods := w.Modifications(); len(mods) != 0 {
		t.Errorf("expected 0 modifications, got %d", len(mods))
	}

	w.SetBlock(1, 2, 3, 0)
	w.SetBlock(-40, 5, 66, NewBlockState(BlockDirt, 0))

	mods := w.Modifications()
	if len(mods) != 2 {
		t.Fatalf("expected 2 modifications, got %d", len(mods))
	}
	if mods[BlockPos{1, 2, 3}] != 0 {
		t.Errorf("modification at (1,2,3) = %d, want 0", mods[BlockPos{1, 2, 3}])
	}
	if mods[BlockPos{-40, 5, 66}] != NewBlockState(BlockDirt, 0) {
		t.Errorf("modification at (-40,5,66) = %d, want dirt", mods[BlockPos{-40, 5, 66}])
	}

	// The copy is detached from the world.
	delete(mods, BlockPos{1, 2, 3})
	if len(w.Modifications()) != 2 {
		t.Error("deleting from the returned map changed the world")
	}
}

func TestHighestBlockY(t *testing.T) {
	w := NewWorld(7)
	w.SetBlock(1000, 40, 1000, NewBlockState(BlockStone, 0))
	if got := w.HighestBlockY(1000, 1000); got != 40 {
		t.Errorf("HighestBlockY = %d, want 40", got)
	}
}

func TestChunkDataIncludesModifications(t *testing.T) {
	w := NewWorld(3)
	before, mask := w.ChunkData(0, 0)
	if mask&1 == 0 {
		t.Fatal("section 0 should always be present")
	}

	w.SetBlock(3, 200, 3, NewBlockState(BlockStone, 0))
	after, mask := w.ChunkData(0, 0)
	if mask&(1<<12) == 0 {
		t.Errorf("mask 0x%04x missing section 12", mask)
	}
	if len(after) <= len(before) {
		t.Errorf("chunk data did not grow: %d -> %d", len(before), len(after))
	}
}

func TestDecayableLeaves(t *testing.T) {
	w := NewWorld(1)
	log := NewBlockState(BlockLog, 0)
	leaf := NewBlockState(BlockLeaves, 0)
	placed := NewBlockState(BlockLeaves, LeafNoDecay)

	w.SetBlock(0, 60, 0, log)
	w.SetBlock(1, 60, 0, leaf)
	w.SetBlock(2, 60, 0, leaf)
	w.SetBlock(3, 60, 0, placed)

	around := []BlockPos{{0, 60, 0}}
	if got := w.DecayableLeaves(around); len(got) != 0 {
		t.Fatalf("supported leaves reported as decayable: %v", got)
	}

	w.SetBlock(0, 60, 0, 0)
	got := w.DecayableLeaves(around)
	if len(got) != 2 {
		t.Fatalf("expected 2 decayable leaves, got %v", got)
	}
	for _, p := range got {
		if p == (BlockPos{3, 60, 0}) {
			t.Error("player placed leaves should never decay")
		}
	}
}

func TestDecayRange(t *testing.T) {
	w := NewWorld(1)
	w.SetBlock(0, 70, 0, NewBlockState(BlockLog, 0))
	for x := int32(1); x <= 5; x++ {
		w.SetBlock(x, 70, 0, NewBlockState(BlockLeaves, 1))
	}

	got := w.DecayableLeaves([]BlockPos{{2, 70, 0}})
	if len(got) != 1 || got[0] != (BlockPos{5, 70, 0}) {
		t.Errorf("DecayableLeaves = %v, want only (5,70,0)", got)
	}
}

func TestShouldDecay(t *testing.T) {
	w := NewWorld(1)
	w.SetBlock(0, 90, 0, NewBlockState(BlockLog, 0))
	w.SetBlock(0, 91, 0, NewBlockState(BlockLeaves, 0))

	if w.ShouldDecay(BlockPos{0, 91, 0}) {
		t.Error("leaf touching a log should not decay")
	}
	if w.ShouldDecay(BlockPos{0, 90, 0}) {
		t.Error("a log is not a leaf")
	}
	w.SetBlock(0, 90, 0, 0)
	if !w.ShouldDecay(BlockPos{0, 91, 0}) {
		t.Error("orphaned leaf should decay")
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	w := NewWorld(1234)
	w.SetBlock(10, 64, -3, NewBlockState(BlockLog2, 1))
	w.SetBlock(0, 4, 0, 0)

	var buf bytes.Buffer
	if err := w.SaveSnapshot(&buf); err != nil {
		t.Fatalf("SaveSnapshot: %v", err)
	}

	loaded, err := LoadSnapshot(&buf)
	if err != nil {
		t.Fatalf("LoadSnapshot: %v", err)
	}
	if loaded.Gen.Seed != 1234 {
		t.Errorf("seed = %d, want 1234", loaded.Gen.Seed)
	}
	if got := loaded.GetBlock(10, 64, -3); got != NewBlockState(BlockLog2, 1) {
		t.Errorf("block (10,64,-3) = %d, want dark oak log", got)
	}
	if got := loaded.GetBlock(0, 4, 0); got != 0 {
		t.Errorf("block (0,4,0) = %d, want air", got)
	}
	if len(loaded.Modifications()) != 2 {
		t.Errorf("expected 2 modifications, got %d", len(loaded.Modifications()))
	}
}

func TestSnapshotRejectsUnknownVersion(t *testing.T) {
	var buf bytes.Buffer
	enc, err := zstd.NewWriter(&buf)
	if err != nil {
		t.Fatal(err)
	}
	enc.Write([]byte(`{"version":99,"seed":1,"blocks":0}` + "\n"))
	enc.Close()

	if _, err := LoadSnapshot(&buf); err == nil {
		t.Error("expected an error for an unknown snapshot version")
	}
}

func TestSnapshotFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "world", "snapshot.zst")
	w := NewWorld(9)
	w.SetBlock(1, 1, 1, NewBlockState(BlockPlanks, 2))

	if err := w.WriteSnapshotFile(path); err != nil {
		t.Fatalf("WriteSnapshotFile: %v", err)
	}
	loaded, err := ReadSnapshotFile(path)
	if err != nil {
		t.Fatalf("ReadSnapshotFile: %v", err)
	}
	if got := loaded.GetBlock(1, 1, 1); got != NewBlockState(BlockPlanks, 2) {
		t.Errorf("block (1,1,1) = %d, want birch planks", got)
	}
}
