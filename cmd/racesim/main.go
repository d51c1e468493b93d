// Command racesim runs the ASCENT strategic race simulation.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"go.opentelemetry.io/otel/attribute"

	"github.com/talgya/ascent/internal/api"
	"github.com/talgya/ascent/internal/catalog"
	"github.com/talgya/ascent/internal/config"
	"github.com/talgya/ascent/internal/engine"
	"github.com/talgya/ascent/internal/entropy"
	"github.com/talgya/ascent/internal/faction"
	"github.com/talgya/ascent/internal/llm"
	"github.com/talgya/ascent/internal/persistence"
	"github.com/talgya/ascent/internal/strategy"
	"github.com/talgya/ascent/internal/telemetry"
)

// saveEvery is how many turns pass between periodic saves.
const saveEvery = 4

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	slog.Info("ASCENT: Strategic AI Race Simulation")

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// ── Telemetry ─────────────────────────────────────────────────────
	ctx := context.Background()
	tracer := telemetry.NoopTracer()
	if telemetry.Enabled() {
		shutdown, err := telemetry.Setup(ctx)
		if err != nil {
			slog.Error("telemetry setup failed", "error", err)
			os.Exit(1)
		}
		defer shutdown(ctx)
		tracer = telemetry.Tracer("racesim")
		slog.Info("telemetry enabled")
	}

	// ── Database ──────────────────────────────────────────────────────
	db, err := persistence.Open(cfg.DBPath)
	if err != nil {
		slog.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	defer db.Close()
	slog.Info("database opened", "path", cfg.DBPath)

	// ── Entropy ───────────────────────────────────────────────────────
	// A nonzero seed means a reproducible run; seed 0 asks for true
	// randomness (random.org pool when keyed, crypto/rand otherwise).
	var rng entropy.Source
	switch {
	case cfg.Seed != 0:
		rng = entropy.Seeded(cfg.Seed)
		slog.Info("entropy: seeded", "seed", cfg.Seed)
	case cfg.RandomOrgKey != "":
		rng = entropy.NewClient(cfg.RandomOrgKey).Source()
		slog.Info("entropy: random.org pool")
	default:
		rng = entropy.CryptoFloat
		slog.Info("entropy: crypto/rand")
	}

	// ── Game ──────────────────────────────────────────────────────────
	cat := catalog.MustLoad()
	slog.Info("catalogs loaded", "actions", len(cat.Actions), "techs", len(cat.Techs))

	game, err := engine.New(cat, faction.Seed(), cfg.PlayerID, cfg.Seed, rng)
	if err != nil {
		slog.Error("failed to construct game", "error", err)
		os.Exit(1)
	}

	if db.HasSavedGame() {
		slog.Info("found saved game, loading...")
		if err := db.LoadGame(game); err != nil {
			slog.Error("failed to load saved game", "error", err)
			os.Exit(1)
		}
	} else {
		slog.Info("no saved game, starting fresh", "player", cfg.PlayerID)
		if err := db.SaveGame(game); err != nil {
			slog.Error("initial save failed", "error", err)
		}
	}

	// ── Decision layer ───────────────────────────────────────────────
	director, err := strategy.NewDirector(strategy.DefaultAssignments(), rng)
	if err != nil {
		slog.Error("failed to build strategy director", "error", err)
		os.Exit(1)
	}

	llmClient := llm.NewClient(cfg.AnthropicKey)
	if llmClient != nil {
		slog.Info("LLM client enabled (Haiku)")
	} else {
		slog.Warn("ANTHROPIC_API_KEY not set; briefings will use fallback prose")
	}

	// ── HTTP API ──────────────────────────────────────────────────────
	if cfg.AdminKey == "" {
		slog.Warn("ASCENT_ADMIN_KEY not set; admin POST endpoints will be disabled")
	}

	var mu sync.RWMutex
	runner := engine.NewRunner(cfg.TurnInterval)
	runner.SetSpeed(cfg.Speed)

	apiServer := &api.Server{
		Game:     game,
		Runner:   runner,
		LLM:      llmClient,
		DB:       db,
		Mu:       &mu,
		Port:     cfg.Port,
		AdminKey: cfg.AdminKey,
	}
	apiServer.Start()

	// ── Turn loop ─────────────────────────────────────────────────────
	runner.OnTurn = func() {
		_, span := tracer.Start(ctx, "turn")
		defer span.End()

		mu.Lock()
		choices := director.Choices(game)
		if queued := apiServer.DrainChoices(); len(queued) > 0 {
			// Player choices from the API override the autopilot.
			choices[game.PlayerID] = queued
		}
		game.ResolveTurn(choices)
		turn := game.Turn
		over := game.Over
		mu.Unlock()

		span.SetAttributes(
			attribute.Int("turn", turn),
			attribute.Bool("over", over),
		)

		if over || turn%saveEvery == 0 {
			mu.RLock()
			err := db.SaveGame(game)
			mu.RUnlock()
			if err != nil {
				slog.Error("periodic save failed", "error", err)
				span.RecordError(err)
			}
		}
		if over {
			runner.Stop()
		}
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, shutting down", "signal", sig)
		runner.Stop()
	}()

	fmt.Printf("\nThe race begins: %d factions, %s as the protagonist.\n",
		len(game.Factions), cfg.PlayerID)
	fmt.Printf("API: http://localhost:%d/api/v1/status\n", cfg.Port)
	if game.Turn > 0 {
		fmt.Printf("Resuming from turn %d (%s)\n", game.Turn, game.Date())
	}
	fmt.Println("Starting simulation... (Ctrl+C to stop)")

	runner.Run()

	// Final save on shutdown.
	slog.Info("final save...")
	mu.RLock()
	if err := db.SaveGame(game); err != nil {
		slog.Error("final save failed", "error", err)
	}
	printOutcome(game)
	mu.RUnlock()
}

func printOutcome(g *engine.Game) {
	if !g.Over {
		fmt.Printf("Simulation paused at turn %d (%s). State saved.\n", g.Turn, g.Date())
		return
	}
	switch {
	case g.WinnerID != "":
		fmt.Printf("Race concluded in %s: %s wins by %s.\n", g.Date(), g.WinnerID, g.VictoryType)
	case g.LoserID != "":
		fmt.Printf("Race concluded in %s: %s falls to %s.\n", g.Date(), g.LoserID, g.LossType)
	default:
		fmt.Printf("Race concluded in %s: %s.\n", g.Date(), g.VictoryType)
	}
}
