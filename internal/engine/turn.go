package engine

import (
	"log/slog"
	"sync"
	"time"
)

// ResolveTurn performs one complete, atomic state transition for the given
// choices map. It never returns an error: configuration problems panic
// (broken static catalog), policy problems degrade to logged no-ops, and
// probabilistic failures are ordinary outcomes. Once the game is over,
// further calls are no-ops.
func (g *Game) ResolveTurn(choices map[string][]ActionChoice) {
	if g.Over {
		return
	}

	g.advanceCalendar()
	g.deployAttempts = g.deployAttempts[:0]

	for _, f := range g.Factions {
		g.rules[f.Kind].income(g, f)
	}
	g.refreshGlobalSafety()

	for _, f := range g.Factions {
		list := choices[f.ID]
		if len(list) > g.Cfg.MaxActionsPerTurn {
			g.logf("policy", "%s submitted %d actions; only the first %d resolve", f.Name, len(list), g.Cfg.MaxActionsPerTurn)
			list = list[:g.Cfg.MaxActionsPerTurn]
		}
		for _, ch := range list {
			g.applyAction(f, ch)
		}
	}
	g.refreshGlobalSafety()

	for _, f := range g.Factions {
		g.rollAmbientDetection(f)
	}
	g.refreshGlobalSafety()

	for _, f := range g.Factions {
		g.resolveUnlocks(f)
	}
	g.driftPublicOpinion()
	g.refreshGlobalSafety()

	g.evaluateDeployments()
	if !g.Over {
		g.evaluateFactions()
	}
	if !g.Over && g.Turn >= g.Cfg.MaxTurns {
		g.evaluateHorizon()
	}

	slog.Info("turn resolved",
		"turn", g.Turn,
		"date", g.Date(),
		"global_safety", g.GlobalSafety,
		"over", g.Over,
	)
}

// advanceCalendar moves one quarter forward.
func (g *Game) advanceCalendar() {
	g.Turn++
	if g.Quarter == 0 {
		g.Year = g.Cfg.StartYear
		g.Quarter = 1
		return
	}
	g.Quarter++
	if g.Quarter > 4 {
		g.Quarter = 1
		g.Year++
	}
}

// Runner drives the game forward in real time, one turn per interval. The
// engine itself is synchronous; the runner is just pacing around it. Speed
// and the running flag are written from other goroutines (HTTP handlers,
// signal handling), so access goes through the mutex.
type Runner struct {
	Interval time.Duration // base turn interval

	// OnTurn resolves one turn. Populated during setup.
	OnTurn func()

	mu      sync.Mutex
	speed   float64 // multiplier: 1.0 = real-time, 0 = paused
	running bool
}

// NewRunner creates a runner with default pacing.
func NewRunner(interval time.Duration) *Runner {
	return &Runner{
		Interval: interval,
		speed:    1.0,
	}
}

// Speed returns the current pacing multiplier.
func (r *Runner) Speed() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.speed
}

// SetSpeed changes the pacing multiplier; 0 pauses the loop.
func (r *Runner) SetSpeed(v float64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.speed = v
}

// Running reports whether the turn loop is active.
func (r *Runner) Running() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

func (r *Runner) setRunning(v bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.running = v
}

// Run starts the turn loop. Blocks until Stop is called.
func (r *Runner) Run() {
	r.setRunning(true)
	slog.Info("turn runner started", "interval", r.Interval, "speed", r.Speed())

	for r.Running() {
		speed := r.Speed()
		if speed <= 0 {
			// Paused; sleep briefly and check again.
			time.Sleep(100 * time.Millisecond)
			continue
		}

		start := time.Now()

		if r.OnTurn != nil {
			r.OnTurn()
		}

		elapsed := time.Since(start)
		target := time.Duration(float64(r.Interval) / speed)
		if elapsed < target {
			time.Sleep(target - elapsed)
		}
	}

	slog.Info("turn runner stopped")
}

// Stop halts the turn loop.
func (r *Runner) Stop() {
	r.setRunning(false)
}
