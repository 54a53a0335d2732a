package world

import "testing"

func TestBlockToItemID(t *testing.T) {
	tests := []struct {
		state      BlockState
		wantID     int16
		wantDamage int16
	}{
		{0, -1, 0},
		{NewBlockState(BlockBedrock, 0), -1, 0},
		{NewBlockState(BlockGrass, 0), int16(BlockDirt), 0},
		{NewBlockState(BlockStone, 0), int16(BlockCobblestone), 0},
		{NewBlockState(BlockStone, 3), int16(BlockStone), 3},
		{NewBlockState(BlockLog, 2|uint16(LogAxisX)), int16(BlockLog), 2},
		{NewBlockState(BlockLog2, 1|uint16(LogAxisZ)), int16(BlockLog2), 1},
		{NewBlockState(BlockLeaves, 0), -1, 0},
		{NewBlockState(BlockHugeBrown, 14), int16(BlockBrownMushroom), 0},
		{NewBlockState(BlockWool, 14), int16(BlockWool), 14},
	}

	for _, tt := range tests {
		id, dmg, _ := BlockToItemID(tt.state)
		if id != tt.wantID || dmg != tt.wantDamage {
			t.Errorf("BlockToItemID(%d:%d) = %d:%d, want %d:%d",
				tt.state.ID(), tt.state.Meta(), id, dmg, tt.wantID, tt.wantDamage)
		}
	}
}

func TestItemToBlockOrientsLogs(t *testing.T) {
	tests := []struct {
		face byte
		want LogAxis
	}{
		{0, LogAxisY},
		{1, LogAxisY},
		{2, LogAxisZ},
		{3, LogAxisZ},
		{4, LogAxisX},
		{5, LogAxisX},
	}
	for _, tt := range tests {
		s, ok := ItemToBlock(int16(BlockLog), 1, tt.face)
		if !ok {
			t.Fatalf("ItemToBlock(log, face %d) not placeable", tt.face)
		}
		if s.Axis() != tt.want || s.Type() != NewBlockState(BlockLog, 1).Type() {
			t.Errorf("face %d: got axis 0x%x type %v", tt.face, s.Axis(), s.Type())
		}
	}
}

func TestPlacedLeavesAreNotNatural(t *testing.T) {
	s, ok := ItemToBlock(int16(BlockLeaves2), 1, 1)
	if !ok {
		t.Fatal("leaves should be placeable")
	}
	if s.IsNaturalLeaf() {
		t.Error("placed leaves reported as natural")
	}
	if !NewBlockState(BlockLeaves2, 1).IsNaturalLeaf() {
		t.Error("generated leaves reported as placed")
	}
	if !NewBlockState(BlockHugeRed, 5).IsNaturalLeaf() {
		t.Error("mushroom cap should count as natural foliage")
	}
	if _, ok := ItemToBlock(int16(BlockHugeBrown), 0, 1); ok {
		t.Error("huge mushroom blocks should not be placeable")
	}
}

func TestTypeIgnoresOrientation(t *testing.T) {
	upright := NewBlockState(BlockLog, 2)
	sideways := upright.WithAxis(LogAxisX)
	if upright == sideways {
		t.Fatal("WithAxis did not change the state")
	}
	if upright.Type() != sideways.Type() {
		t.Error("orientation changed the block type")
	}
	if NewBlockState(BlockLog, 0).Type() == NewBlockState(BlockLog, 2).Type() {
		t.Error("oak and birch logs share a type")
	}
	if NewBlockState(BlockLog, 0).Type() == NewBlockState(BlockLog2, 0).Type() {
		t.Error("oak and acacia logs share a type")
	}
}

func TestSaplingFor(t *testing.T) {
	if id, dmg, ok := SaplingFor(NewBlockState(BlockLeaves2, 1)); !ok || id != int16(BlockSapling) || dmg != 5 {
		t.Errorf("SaplingFor(dark oak leaves) = %d:%d %v, want 6:5", id, dmg, ok)
	}
	if _, _, ok := SaplingFor(NewBlockState(BlockDirt, 0)); ok {
		t.Error("dirt has no sapling")
	}
}
