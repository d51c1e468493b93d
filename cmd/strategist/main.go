// Command strategist runs the autonomous advisor for one faction.
// It observes the race via the public API, picks actions via Claude Haiku,
// and submits them through the admin choices endpoint.
package main

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/talgya/ascent/internal/advisor"
	"github.com/talgya/ascent/internal/llm"
)

func main() {
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	// Configuration from environment.
	apiURL := envOrDefault("ASCENT_API_URL", "http://localhost:8080")
	adminKey := os.Getenv("ASCENT_ADMIN_KEY")
	anthropicKey := os.Getenv("ANTHROPIC_API_KEY")
	factionID := envOrDefault("ASCENT_PLAYER", "nexus")
	intervalSec := envIntOrDefault("STRATEGIST_INTERVAL", 30)

	if adminKey == "" {
		slog.Error("ASCENT_ADMIN_KEY is required")
		os.Exit(1)
	}
	if anthropicKey == "" {
		slog.Error("ANTHROPIC_API_KEY is required")
		os.Exit(1)
	}

	interval := time.Duration(intervalSec) * time.Second

	slog.Info("ASCENT strategist starting",
		"api_url", apiURL,
		"faction", factionID,
		"interval", interval,
	)

	observer := advisor.NewObserver(apiURL, factionID)
	actor := advisor.NewActor(apiURL, adminKey)
	llmClient := llm.NewClient(anthropicKey)

	// Wait for the racesim API to be ready before first cycle.
	// systemd After= only ensures process start, not HTTP readiness.
	slog.Info("waiting for racesim API...")
	waitForAPI(apiURL)

	// Run first cycle immediately.
	runCycle(observer, actor, llmClient)

	// Timer loop.
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-ticker.C:
			runCycle(observer, actor, llmClient)
		case sig := <-sigCh:
			slog.Info("received signal, shutting down", "signal", sig)
			fmt.Println("Strategist stopped.")
			return
		}
	}
}

// runCycle executes one observe → decide → act cycle.
func runCycle(observer *advisor.Observer, actor *advisor.Actor, llmClient *llm.Client) {
	slog.Info("strategist cycle starting")

	snap, err := observer.Observe()
	if err != nil {
		slog.Error("observation failed", "error", err)
		return
	}
	if snap.Status.Over {
		slog.Info("race is over", "outcome", snap.Status.VictoryType)
		return
	}
	slog.Info("observation complete",
		"turn", snap.Status.Turn,
		"date", snap.Status.Date,
		"capability", fmt.Sprintf("%.1f", snap.Faction.Capability),
		"safety", fmt.Sprintf("%.1f", snap.Faction.Safety),
		"global_safety", fmt.Sprintf("%.1f", snap.Status.GlobalSafety),
	)

	choices, err := advisor.Decide(llmClient, snap)
	if err != nil {
		slog.Error("decision failed", "error", err)
		return
	}
	if len(choices) == 0 {
		slog.Info("strategist cycle complete, no actions chosen")
		return
	}
	for _, c := range choices {
		slog.Info("action chosen",
			"action", c.ActionID,
			"openness", c.Openness,
			"target", c.TargetID,
			"reasoning", c.Reasoning,
		)
	}

	result, err := actor.Act(choices)
	if err != nil {
		slog.Error("submit failed", "error", err)
		return
	}
	slog.Info("choices submitted", "queued", result.Queued)
}

func envOrDefault(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func envIntOrDefault(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return defaultVal
}

// waitForAPI polls the status endpoint with exponential backoff until it
// responds. Exits after 5 minutes if the API never becomes ready.
func waitForAPI(apiURL string) {
	backoff := 2 * time.Second
	maxBackoff := 30 * time.Second
	deadline := time.Now().Add(5 * time.Minute)

	for {
		resp, err := http.Get(apiURL + "/api/v1/status")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == 200 {
				slog.Info("racesim API is ready")
				return
			}
		}
		if time.Now().After(deadline) {
			slog.Error("racesim API did not become ready within 5 minutes")
			os.Exit(1)
		}
		slog.Info("racesim not ready, retrying...", "backoff", backoff)
		time.Sleep(backoff)
		backoff *= 2
		if backoff > maxBackoff {
			backoff = maxBackoff
		}
	}
}
