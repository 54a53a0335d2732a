package server

import (
	"bytes"
	"path/filepath"
	"strings"
	"testing"

	"github.com/StoreStation/TimberCraft/pkg/chop"
	"github.com/StoreStation/TimberCraft/pkg/protocol"
	"github.com/StoreStation/TimberCraft/pkg/world"
)

func readChat(t *testing.T, pkts <-chan *protocol.Packet) string {
	t.Helper()
	pkt := waitPacket(t, pkts, 0x02)
	msg, err := protocol.ReadString(bytes.NewReader(pkt.Data))
	if err != nil {
		t.Fatalf("decode chat: %v", err)
	}
	return msg
}

func TestChopCommand(t *testing.T) {
	s := New(DefaultConfig())
	player, pkts := pipePlayer(t, s, 1, "Admin", GameModeCreative)

	s.handleCommand(player, "/chop")
	if msg := readChat(t, pkts); !strings.Contains(msg, "GRAVITY_CHOP") {
		t.Errorf("/chop reply %s does not show the mode", msg)
	}

	s.handleCommand(player, "/chop full")
	if got := s.ChopConfig().Mode; got != chop.FullChop {
		t.Errorf("mode = %s, want FULL_CHOP", got)
	}
	readChat(t, pkts)

	s.handleCommand(player, "/chop sideways")
	if got := s.ChopConfig().Mode; got != chop.FullChop {
		t.Errorf("mode after bad /chop = %s, want FULL_CHOP", got)
	}
	if msg := readChat(t, pkts); !strings.Contains(msg, "Unknown chop mode") {
		t.Errorf("bad /chop reply = %s", msg)
	}
}

func TestGiveCommand(t *testing.T) {
	s := New(DefaultConfig())
	player, pkts := pipePlayer(t, s, 1, "Admin", GameModeSurvival)

	s.handleCommand(player, "/give 258")
	waitPacket(t, pkts, 0x2F)
	s.handleCommand(player, "/give 17:2 16")
	waitPacket(t, pkts, 0x2F)

	player.mu.Lock()
	axe := player.Inventory[slotHotbar]
	logs := player.Inventory[slotHotbar+1]
	player.mu.Unlock()
	if axe != (Slot{ItemID: ItemIronAxe, Count: 1}) {
		t.Errorf("first slot = %+v, want an iron axe", axe)
	}
	if logs != (Slot{ItemID: 17, Count: 16, Damage: 2}) {
		t.Errorf("second slot = %+v, want 16 birch logs", logs)
	}
}

func TestGiveCommandRejectsBadInput(t *testing.T) {
	s := New(DefaultConfig())
	player, pkts := pipePlayer(t, s, 1, "Admin", GameModeSurvival)

	for _, cmd := range []string{"/give", "/give axe", "/give 17 65", "/give 17:-1"} {
		s.handleCommand(player, cmd)
		readChat(t, pkts)
	}
	player.mu.Lock()
	defer player.mu.Unlock()
	if player.Inventory[slotHotbar] != emptySlot {
		t.Errorf("bad /give filled slot: %+v", player.Inventory[slotHotbar])
	}
}

func TestParseItem(t *testing.T) {
	id, damage, err := parseItem("162:1")
	if err != nil || id != 162 || damage != 1 {
		t.Errorf("parseItem(162:1) = %d, %d, %v", id, damage, err)
	}
	if _, _, err := parseItem("0"); err == nil {
		t.Error("parseItem(0) should fail")
	}
}

func TestGamemodeCommand(t *testing.T) {
	s := New(DefaultConfig())
	player, pkts := pipePlayer(t, s, 1, "Admin", GameModeSurvival)

	s.handleCommand(player, "/gm creative")
	readGameState(t, pkts)
	if msg := readChat(t, pkts); !strings.Contains(msg, "Creative") {
		t.Errorf("/gm reply = %s", msg)
	}
	player.mu.Lock()
	defer player.mu.Unlock()
	if player.GameMode != GameModeCreative {
		t.Errorf("GameMode = %d, want creative", player.GameMode)
	}
}

func TestTpCommand(t *testing.T) {
	s := New(DefaultConfig())
	player, pkts := pipePlayer(t, s, 1, "Admin", GameModeCreative)
	other := newPlayer(2, "Steve", nil, GameModeSurvival)
	other.X, other.Y, other.Z = 100, 70, -40
	s.players[other.EntityID] = other

	s.handleCommand(player, "/tp 1 2 3")
	waitPacket(t, pkts, 0x08)
	if x, y, z := player.Position(); x != 1 || y != 2 || z != 3 {
		t.Errorf("position = (%v, %v, %v), want (1, 2, 3)", x, y, z)
	}

	s.handleCommand(player, "/tp steve")
	waitPacket(t, pkts, 0x08)
	if x, y, z := player.Position(); x != 100 || y != 70 || z != -40 {
		t.Errorf("position = (%v, %v, %v), want Steve's", x, y, z)
	}
}

func TestSaveCommand(t *testing.T) {
	cfg := DefaultConfig()
	cfg.SnapshotPath = filepath.Join(t.TempDir(), "world.snap")
	s := New(cfg)
	s.world.SetBlock(3, 200, 3, oakLog)
	player, pkts := pipePlayer(t, s, 1, "Admin", GameModeCreative)

	s.handleCommand(player, "/save")
	if msg := readChat(t, pkts); !strings.Contains(msg, "World saved") {
		t.Errorf("/save reply = %s", msg)
	}

	loaded, err := world.ReadSnapshotFile(cfg.SnapshotPath)
	if err != nil {
		t.Fatalf("ReadSnapshotFile: %v", err)
	}
	if got := loaded.GetBlock(3, 200, 3); got != oakLog {
		t.Errorf("saved block = %v, want oak log", got)
	}
}

func TestUnknownCommand(t *testing.T) {
	s := New(DefaultConfig())
	player, pkts := pipePlayer(t, s, 1, "Admin", GameModeCreative)

	s.handleCommand(player, "/fly")
	if msg := readChat(t, pkts); !strings.Contains(msg, "Unknown command") {
		t.Errorf("reply = %s", msg)
	}
}

func TestTabComplete(t *testing.T) {
	s := New(DefaultConfig())
	player, pkts := pipePlayer(t, s, 1, "Admin", GameModeCreative)

	s.handleTabComplete(player, "/g")

	pkt := waitPacket(t, pkts, 0x3A)
	r := bytes.NewReader(pkt.Data)
	n, _, _ := protocol.ReadVarInt(r)
	var got []string
	for i := int32(0); i < n; i++ {
		m, _ := protocol.ReadString(r)
		got = append(got, m)
	}
	if strings.Join(got, ",") != "/gamemode,/give,/gm" {
		t.Errorf("completions = %v, want [/gamemode /give /gm]", got)
	}
}

func TestChatKeepsNameBrackets(t *testing.T) {
	s := New(DefaultConfig())
	player, pkts := pipePlayer(t, s, 1, "Alex", GameModeSurvival)

	s.handlePlayPacket(player, protocol.MarshalPacket(0x01, func(w *bytes.Buffer) {
		protocol.WriteString(w, "timber & co")
	}))

	msg := readChat(t, pkts)
	if !strings.Contains(msg, `"<Alex> "`) || !strings.Contains(msg, `"timber & co"`) {
		t.Errorf("chat line = %s, want literal <Alex> and &", msg)
	}
}
