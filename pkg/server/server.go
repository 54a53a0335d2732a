package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"sync"
	"time"

	"github.com/StoreStation/TimberCraft/pkg/chop"
	"github.com/StoreStation/TimberCraft/pkg/metrics"
	"github.com/StoreStation/TimberCraft/pkg/protocol"
	"github.com/StoreStation/TimberCraft/pkg/world"
)

// Config holds server configuration.
type Config struct {
	Address              string
	MaxPlayers           int
	MOTD                 string
	Seed                 int64
	DefaultGameMode      byte
	ViewDistance         int32
	CompressionThreshold int // negative disables compression
	SnapshotPath         string
	Chop                 chop.Config
}

// DefaultConfig returns a default server configuration.
func DefaultConfig() Config {
	return Config{
		Address:              ":25565",
		MaxPlayers:           20,
		MOTD:                 "A TimberCraft Server",
		DefaultGameMode:      GameModeSurvival,
		ViewDistance:         6,
		CompressionThreshold: 256,
		Chop:                 chop.DefaultConfig(),
	}
}

// Server represents a Minecraft 1.8 server.
type Server struct {
	config   Config
	listener net.Listener
	players  map[int32]*Player
	mu       sync.RWMutex
	nextEID  int32
	stopCh   chan struct{}
	stopOnce sync.Once

	world *world.World
	// blockMu serialises block mutations so a chop sees a stable world.
	blockMu sync.Mutex

	chopMu  sync.RWMutex
	chopCfg chop.Config

	// Guarded by mu.
	entities      map[int32]*ItemEntity
	fallingBlocks map[int32]*FallingBlockEntity

	decayMu     sync.Mutex
	decayAround []world.BlockPos
	decayQueue  []world.BlockPos // guarded by blockMu

	metrics *metrics.Recorder
}

// New creates a new server with the given configuration and a fresh world
// generated from its seed.
func New(config Config) *Server {
	if config.ViewDistance <= 0 {
		config.ViewDistance = DefaultConfig().ViewDistance
	}
	return &Server{
		config:        config,
		players:       make(map[int32]*Player),
		nextEID:       1,
		stopCh:        make(chan struct{}),
		world:         world.NewWorld(config.Seed),
		chopCfg:       config.Chop,
		entities:      make(map[int32]*ItemEntity),
		fallingBlocks: make(map[int32]*FallingBlockEntity),
	}
}

// SetWorld replaces the world, typically with one loaded from a snapshot.
// It must be called before Start.
func (s *Server) SetWorld(w *world.World) {
	s.world = w
}

// World returns the server's world.
func (s *Server) World() *world.World {
	return s.world
}

// SetMetrics attaches a metrics recorder. A nil recorder disables metrics.
func (s *Server) SetMetrics(m *metrics.Recorder) {
	s.metrics = m
}

// ChopConfig returns the tree chopper settings in effect.
func (s *Server) ChopConfig() chop.Config {
	s.chopMu.RLock()
	defer s.chopMu.RUnlock()
	return s.chopCfg
}

// SetChopMode switches the chop mode for every later chop.
func (s *Server) SetChopMode(mode chop.Mode) {
	s.chopMu.Lock()
	s.chopCfg.Mode = mode
	s.chopMu.Unlock()
	log.Printf("Tree chop mode set to %s", mode)
}

// Start begins listening for connections.
func (s *Server) Start() error {
	var err error
	s.listener, err = net.Listen("tcp", s.config.Address)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", s.config.Address, err)
	}
	log.Printf("Server listening on %s", s.listener.Addr())

	go s.acceptLoop()
	go s.entityPhysicsLoop()
	go s.leafDecayLoop()
	return nil
}

// Addr returns the listening address, or nil before Start.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// Stop gracefully shuts down the server. It is safe to call more than once.
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
		if s.listener != nil {
			s.listener.Close()
		}
		s.mu.RLock()
		for _, p := range s.players {
			if p.Conn != nil {
				p.Conn.Close()
			}
		}
		s.mu.RUnlock()
	})
}

// StopChan is closed once the server stops, including via /stop.
func (s *Server) StopChan() <-chan struct{} {
	return s.stopCh
}

// SaveWorld writes the world snapshot to the configured path. It does
// nothing when no path is configured.
func (s *Server) SaveWorld() error {
	if s.config.SnapshotPath == "" {
		return nil
	}
	s.blockMu.Lock()
	defer s.blockMu.Unlock()
	if err := s.world.WriteSnapshotFile(s.config.SnapshotPath); err != nil {
		return fmt.Errorf("save world: %w", err)
	}
	log.Printf("World saved to %s", s.config.SnapshotPath)
	return nil
}

func (s *Server) acceptLoop() {
	for {
		conn, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.stopCh:
				return
			default:
				log.Printf("Accept error: %v", err)
				continue
			}
		}
		go s.handleConnection(protocol.NewConn(conn))
	}
}

func (s *Server) handleConnection(conn *protocol.Conn) {
	defer conn.Close()

	state := protocol.StateHandshaking

	for {
		conn.SetReadDeadline(time.Now().Add(30 * time.Second))
		pkt, err := conn.ReadPacket()
		if err != nil {
			return
		}

		switch state {
		case protocol.StateHandshaking:
			if pkt.ID == 0x00 {
				newState, err := s.handleHandshake(pkt)
				if err != nil {
					log.Printf("Handshake error: %v", err)
					return
				}
				state = newState
			}
		case protocol.StateStatus:
			switch pkt.ID {
			case 0x00:
				s.handleStatusRequest(conn)
			case 0x01:
				s.handlePing(conn, pkt)
				return
			}
		case protocol.StateLogin:
			if pkt.ID == 0x00 {
				player, err := s.handleLoginStart(conn, pkt)
				if err != nil {
					log.Printf("Login error: %v", err)
					return
				}
				s.handlePlay(player)
				return
			}
		default:
			log.Printf("Unexpected connection state %d", state)
			return
		}
	}
}

func (s *Server) handleHandshake(pkt *protocol.Packet) (int, error) {
	r := bytes.NewReader(pkt.Data)

	protocolVersion, _, err := protocol.ReadVarInt(r)
	if err != nil {
		return 0, err
	}
	if protocolVersion != protocol.ProtocolVersion {
		log.Printf("Client uses protocol %d, expected %d", protocolVersion, protocol.ProtocolVersion)
	}

	// Server address
	if _, err = protocol.ReadString(r); err != nil {
		return 0, err
	}
	// Server port
	if _, err = protocol.ReadUint16(r); err != nil {
		return 0, err
	}

	nextState, _, err := protocol.ReadVarInt(r)
	if err != nil {
		return 0, err
	}
	if nextState != protocol.StateStatus && nextState != protocol.StateLogin {
		return 0, fmt.Errorf("invalid next state %d", nextState)
	}
	return int(nextState), nil
}

type statusResponse struct {
	Version struct {
		Name     string `json:"name"`
		Protocol int    `json:"protocol"`
	} `json:"version"`
	Players struct {
		Max    int   `json:"max"`
		Online int   `json:"online"`
		Sample []any `json:"sample"`
	} `json:"players"`
	Description struct {
		Text string `json:"text"`
	} `json:"description"`
}

func (s *Server) handleStatusRequest(conn *protocol.Conn) {
	var resp statusResponse
	resp.Version.Name = "1.8.9"
	resp.Version.Protocol = protocol.ProtocolVersion
	resp.Players.Max = s.config.MaxPlayers
	resp.Players.Online = s.playerCount()
	resp.Players.Sample = []any{}
	resp.Description.Text = s.config.MOTD

	jsonResp, err := json.Marshal(resp)
	if err != nil {
		log.Printf("Failed to marshal status response: %v", err)
		return
	}
	pkt := protocol.MarshalPacket(0x00, func(w *bytes.Buffer) {
		protocol.WriteString(w, string(jsonResp))
	})
	conn.WritePacket(pkt)
}

func (s *Server) handlePing(conn *protocol.Conn, pkt *protocol.Packet) {
	r := bytes.NewReader(pkt.Data)
	payload, err := protocol.ReadInt64(r)
	if err != nil {
		return
	}

	resp := protocol.MarshalPacket(0x01, func(w *bytes.Buffer) {
		protocol.WriteInt64(w, payload)
	})
	conn.WritePacket(resp)
}

func (s *Server) playerCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.players)
}

func (s *Server) allocEntityID() int32 {
	s.mu.Lock()
	defer s.mu.Unlock()
	eid := s.nextEID
	s.nextEID++
	return eid
}
