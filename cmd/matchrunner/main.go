// matchrunner loads a match config, plays the match, and writes the
// resulting replay to disk.
//
// Grounded on tabular/main.go's flag/config/run shape: flags select a
// config file, runApp does the real work and returns an error instead
// of calling os.Exit directly, and main just reports a failure.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"haliteengine/internal/config"
	"haliteengine/internal/match"
	"haliteengine/internal/spectator"
)

var (
	configPath    *string
	outPath       *string
	demoteTimeout *bool
	debug         *bool
	spectateAddr  *string
)

func init() {
	configPath = flag.String("config", "./match.yaml", "path to the match config file")
	outPath = flag.String("out", "./replay.json", "path to write the match replay")
	demoteTimeout = flag.Bool("demote-timeouts", false, "demote a bot that misses a deadline instead of aborting the match")
	debug = flag.Bool("debug", false, "enable debug logging")
	spectateAddr = flag.String("spectate-addr", "", "if set, serve live spectator websockets at ws://<addr>/ws")
	flag.Parse()
}

func runApp() error {
	level := slog.LevelInfo
	if *debug {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cfg, err := config.FromYaml(*configPath)
	if err != nil {
		return fmt.Errorf("matchrunner: load config: %w", err)
	}

	policy := match.Fatal
	if *demoteTimeout || cfg.TimeoutPolicy == "demote_dead" {
		policy = match.DemoteDead
	}

	driver := match.NewDriver(log, cfg, nil, policy)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if *spectateAddr != "" {
		broadcaster := spectator.NewBroadcaster(ctx)
		defer broadcaster.Close()
		driver = driver.WithSpectators(broadcaster)

		mux := http.NewServeMux()
		mux.Handle("/ws", broadcaster)
		srv := &http.Server{Addr: *spectateAddr, Handler: mux}
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Error("spectator server stopped", "err", err)
			}
		}()
		defer srv.Close()
	}

	result, err := driver.Run(ctx)
	if err != nil {
		return fmt.Errorf("matchrunner: run match: %w", err)
	}

	data, err := result.Replay.Marshal()
	if err != nil {
		return fmt.Errorf("matchrunner: marshal replay: %w", err)
	}

	path := *outPath
	if cfg.ReplayPath != "" {
		path = cfg.ReplayPath
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("matchrunner: write replay: %w", err)
	}

	log.Info("replay written", "path", path, "ranks", result.Ranks)
	return nil
}

func main() {
	if err := runApp(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
