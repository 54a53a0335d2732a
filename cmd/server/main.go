package main

import (
	"errors"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/StoreStation/TimberCraft/pkg/chop"
	"github.com/StoreStation/TimberCraft/pkg/config"
	"github.com/StoreStation/TimberCraft/pkg/metrics"
	"github.com/StoreStation/TimberCraft/pkg/server"
	"github.com/StoreStation/TimberCraft/pkg/world"
)

func main() {
	configPath := flag.String("config", "", "Path to the YAML config file (default $"+config.EnvConfigPath+")")
	address := flag.String("address", ":25565", "Server address to listen on")
	maxPlayers := flag.Int("max-players", 20, "Maximum number of players")
	motd := flag.String("motd", "A TimberCraft Server", "Server MOTD")
	seed := flag.Int64("seed", 0, "World seed")
	defaultGameMode := flag.String("default-gamemode", "survival", "Default game mode (survival, creative, adventure, spectator)")
	chopMode := flag.String("chop-mode", "", "Tree chop mode (full, single, gravity, vanilla)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Flags given on the command line win over the file.
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "address":
			cfg.Server.Address = *address
		case "max-players":
			cfg.Server.MaxPlayers = *maxPlayers
		case "motd":
			cfg.Server.MOTD = *motd
		case "seed":
			cfg.Server.Seed = *seed
		case "default-gamemode":
			cfg.Server.DefaultGameMode = *defaultGameMode
		case "chop-mode":
			cfg.TreeChopper.TreeChopMode = *chopMode
		}
	})
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid config: %v", err)
	}

	gameMode, ok := server.ParseGameMode(cfg.Server.DefaultGameMode)
	if !ok {
		log.Fatalf("Invalid default game mode: %s", cfg.Server.DefaultGameMode)
	}
	chopCfg, err := cfg.TreeChopper.Chop()
	if err != nil {
		log.Fatalf("Invalid tree chopper config: %v", err)
	}

	srv := server.New(server.Config{
		Address:              cfg.Server.Address,
		MaxPlayers:           cfg.Server.MaxPlayers,
		MOTD:                 cfg.Server.MOTD,
		Seed:                 cfg.Server.Seed,
		DefaultGameMode:      gameMode,
		ViewDistance:         int32(cfg.Server.ViewDistance),
		CompressionThreshold: cfg.Server.CompressionThreshold,
		SnapshotPath:         cfg.Server.SnapshotPath,
		Chop:                 chopCfg,
	})

	if path := cfg.Server.SnapshotPath; path != "" {
		w, err := world.ReadSnapshotFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
			log.Printf("No world snapshot at %s, generating from seed %d", path, cfg.Server.Seed)
		case err != nil:
			log.Fatalf("Failed to load world snapshot: %v", err)
		default:
			srv.SetWorld(w)
			log.Printf("Loaded world snapshot %s (seed %d, %d modified blocks)", path, w.Gen.Seed, len(w.Modifications()))
		}
	}

	rec := metrics.New()
	srv.SetMetrics(rec)
	if addr := cfg.Metrics.MetricsAddr(); addr != "" {
		metricsSrv := rec.Serve(addr)
		defer metricsSrv.Close()
	}

	if err := srv.Start(); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}

	log.Printf("TimberCraft server started (Minecraft 1.8.9, Protocol 47)")
	log.Printf("Address: %s | Max Players: %d | Chop mode: %s", cfg.Server.Address, cfg.Server.MaxPlayers, chopModeName(chopCfg))

	// Wait for interrupt signal or internal shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("Shutting down server (received signal: %v)...", sig)
	case <-srv.StopChan():
		log.Println("Shutting down server (internal)...")
	}

	srv.Stop()
	if err := srv.SaveWorld(); err != nil {
		log.Printf("Failed to save world: %v", err)
	}
	log.Println("Server stopped.")
}

func chopModeName(c chop.Config) string {
	if c.Mode == chop.VanillaChop {
		return "vanilla (tree chopper off)"
	}
	return c.Mode.String()
}
