package engine

import (
	"testing"

	"github.com/talgya/ascent/internal/entropy"
)

func TestDominanceWaitsForVictoryGate(t *testing.T) {
	g := newTestGame(t, entropy.Seeded(1))
	g.Index["nexus"].Capability = 90 // apex at 25 is no credible rival

	g.Turn = g.Cfg.MinVictoryTurn - 1
	g.evaluateFactions()
	if g.Over {
		t.Fatalf("dominance fired before turn %d", g.Cfg.MinVictoryTurn)
	}

	g.Turn = g.Cfg.MinVictoryTurn
	g.evaluateFactions()
	if !g.Over || g.WinnerID != "nexus" || g.VictoryType != "dominance" {
		t.Errorf("over=%v winner=%q type=%q, want nexus dominance", g.Over, g.WinnerID, g.VictoryType)
	}
}

func TestDominanceNeedsClearLead(t *testing.T) {
	g := newTestGame(t, entropy.Seeded(1))
	g.Turn = g.Cfg.MinVictoryTurn
	g.Index["nexus"].Capability = 86
	g.Index["apex"].Capability = 80 // within 30 percent, race still live

	g.evaluateFactions()
	if g.Over {
		t.Errorf("dominance fired with a credible rival: %q", g.VictoryType)
	}
}

func TestPublicTrustVictory(t *testing.T) {
	g := newTestGame(t, entropy.Seeded(1))
	g.Turn = g.Cfg.MinVictoryTurn
	garden := g.Index["garden"]
	garden.Resources.Trust = 85
	garden.Capability = 65

	g.evaluateFactions()
	if !g.Over || g.WinnerID != "garden" || g.VictoryType != "public_trust" {
		t.Errorf("over=%v winner=%q type=%q, want garden public_trust", g.Over, g.WinnerID, g.VictoryType)
	}
}

func TestControlVictory(t *testing.T) {
	g := newTestGame(t, entropy.Seeded(1))
	g.Index["accord"].Resources.Influence = 85
	g.Index["nexus"].Capability = 20
	g.Index["apex"].Capability = 18
	g.Index["garden"].Capability = 15

	g.evaluateFactions()
	if !g.Over || g.WinnerID != "accord" || g.VictoryType != "control" {
		t.Errorf("over=%v winner=%q type=%q, want accord control", g.Over, g.WinnerID, g.VictoryType)
	}
}

func TestControlBlockedByOneStrongLab(t *testing.T) {
	g := newTestGame(t, entropy.Seeded(1))
	g.Index["accord"].Resources.Influence = 85
	g.Index["nexus"].Capability = 20
	g.Index["apex"].Capability = 21 // over the ceiling
	g.Index["garden"].Capability = 15

	g.evaluateFactions()
	if g.Over {
		t.Errorf("control fired with an unsuppressed lab: %q", g.VictoryType)
	}
}

func TestAllianceVictoryCountsTrustedPartners(t *testing.T) {
	g := newTestGame(t, entropy.Seeded(1))
	accord := g.Index["accord"]
	accord.Resources.Influence = 80
	g.Index["garden"].Resources.Trust = 75
	g.Index["meridian"].Resources.Trust = 72

	g.evaluateFactions()
	if !g.Over || g.WinnerID != "accord" || g.VictoryType != "alliance" {
		t.Errorf("over=%v winner=%q type=%q, want accord alliance", g.Over, g.WinnerID, g.VictoryType)
	}
}

func TestSafeDeploymentWins(t *testing.T) {
	g := newTestGame(t, entropy.Seeded(1))
	g.Turn = 10
	g.Index["nexus"].Safety = 60
	g.Index["apex"].Safety = 60
	garden := g.Index["garden"]
	garden.Safety = 75
	g.refreshGlobalSafety()
	g.deployAttempts = []string{"garden"}

	g.evaluateDeployments()
	if !g.Over || g.WinnerID != "garden" || g.VictoryType != "safe_agi" {
		t.Errorf("over=%v winner=%q type=%q, want garden safe_agi", g.Over, g.WinnerID, g.VictoryType)
	}
}

func TestUnsafeDeploymentEndsEverything(t *testing.T) {
	g := newTestGame(t, entropy.Seeded(1))
	g.Turn = 10
	g.deployAttempts = []string{"apex"}

	g.evaluateDeployments()
	if !g.Over || g.LoserID != "apex" || g.LossType != "catastrophe" {
		t.Errorf("over=%v loser=%q type=%q, want apex catastrophe", g.Over, g.LoserID, g.LossType)
	}
	if !hasEvent(g, "endgame", "ends the race for everyone") {
		t.Error("no catastrophe log")
	}
}

func TestEarlyDeploymentStalls(t *testing.T) {
	g := newTestGame(t, entropy.Seeded(1))
	g.Turn = g.Cfg.MinVictoryTurn - 1
	g.Index["garden"].Safety = 90
	g.refreshGlobalSafety()
	g.deployAttempts = []string{"garden"}

	g.evaluateDeployments()
	if g.Over {
		t.Error("deployment resolved before the victory gate")
	}
	if !hasEvent(g, "endgame", "stalls in internal review") {
		t.Error("no stall log")
	}
}

func TestPlayerCollapseIsTerminal(t *testing.T) {
	g := newTestGame(t, entropy.Seeded(1))
	g.Index["nexus"].Resources.Trust = 5

	// Lab collapse honors the same grace period as lab wins.
	g.Turn = g.Cfg.MinVictoryTurn - 1
	g.evaluateFactions()
	if g.Over {
		t.Fatalf("collapse fired before turn %d", g.Cfg.MinVictoryTurn)
	}

	g.Turn = g.Cfg.MinVictoryTurn
	g.evaluateFactions()
	if !g.Over || g.LoserID != "nexus" || g.LossType != "collapse" {
		t.Errorf("over=%v loser=%q type=%q, want nexus collapse", g.Over, g.LoserID, g.LossType)
	}
}

func TestRivalCollapseOnlyWarns(t *testing.T) {
	g := newTestGame(t, entropy.Seeded(1))
	g.Turn = g.Cfg.MinVictoryTurn
	g.Index["apex"].Resources.Trust = 5

	g.evaluateFactions()
	if g.Over {
		t.Error("a rival's collapse ended the run")
	}
	if !hasEvent(g, "endgame", "teeters on the edge of collapse") {
		t.Error("no warning log for rival collapse")
	}
}

func TestObsolescenceLoss(t *testing.T) {
	g := newTestGame(t, entropy.Seeded(1))
	g.Index["apex"].Capability = 80 // nexus at 22 is 58 behind

	g.Turn = g.Cfg.MinVictoryTurn - 1
	g.evaluateFactions()
	if g.Over {
		t.Fatal("obsolescence fired before the victory gate")
	}

	g.Turn = g.Cfg.MinVictoryTurn
	g.evaluateFactions()
	if !g.Over || g.LoserID != "nexus" || g.LossType != "obsolescence" {
		t.Errorf("over=%v loser=%q type=%q, want nexus obsolescence", g.Over, g.LoserID, g.LossType)
	}
}

func TestCoupNeedsBothConditions(t *testing.T) {
	g := newTestGame(t, entropy.Seeded(1))
	g.Turn = 3 // government losses have no grace period
	accord := g.Index["accord"]
	accord.Resources.Influence = 20

	// Weak government alone is not a coup.
	g.evaluateFactions()
	if hasEvent(g, "endgame", "coup") {
		t.Fatal("coup fired without a runaway lab")
	}

	g.Index["apex"].Capability = 75
	g.evaluateFactions()
	if !hasEvent(g, "endgame", "teeters on the edge of coup") {
		t.Error("no coup warning for non-player government")
	}
	if g.Over {
		t.Error("non-player coup ended the run")
	}
}

func TestHorizonRegulatoryVictory(t *testing.T) {
	g := newTestGame(t, entropy.Seeded(1))
	g.Turn = g.Cfg.MaxTurns
	for _, lab := range g.Labs() {
		lab.Safety = 70
	}

	g.evaluateHorizon()
	if !g.Over || g.WinnerID != "accord" || g.VictoryType != "regulatory" {
		t.Errorf("over=%v winner=%q type=%q, want accord regulatory", g.Over, g.WinnerID, g.VictoryType)
	}
}

func TestHorizonTiebreakPrefersTrust(t *testing.T) {
	g := newTestGame(t, entropy.Seeded(1))
	g.Turn = g.Cfg.MaxTurns
	for _, lab := range g.Labs() {
		lab.Safety = 70
	}
	g.Index["accord"].Resources.Influence = 50
	g.Index["meridian"].Resources.Influence = 50 // meridian trust 60 beats accord 55

	g.evaluateHorizon()
	if g.WinnerID != "meridian" {
		t.Errorf("winner = %q, want meridian on the trust tiebreak", g.WinnerID)
	}
}

func TestHorizonStalemate(t *testing.T) {
	g := newTestGame(t, entropy.Seeded(1))
	g.Turn = g.Cfg.MaxTurns

	g.evaluateHorizon()
	if !g.Over || g.VictoryType != "stalemate" {
		t.Errorf("over=%v type=%q, want stalemate", g.Over, g.VictoryType)
	}
	if g.WinnerID != "" {
		t.Errorf("stalemate named a winner: %q", g.WinnerID)
	}
}

func TestRegulatoryVictoryWaitsForHorizon(t *testing.T) {
	g := newTestGame(t, entropy.Seeded(1))
	g.Turn = g.Cfg.RegulatoryHorizon - 1
	for _, lab := range g.Labs() {
		lab.Safety = 70
	}
	g.refreshGlobalSafety()

	g.evaluateFactions()
	if g.Over {
		t.Fatalf("regulatory fired before turn %d: %q", g.Cfg.RegulatoryHorizon, g.VictoryType)
	}

	g.Turn = g.Cfg.RegulatoryHorizon
	g.evaluateFactions()
	if !g.Over || g.VictoryType != "regulatory" {
		t.Errorf("over=%v type=%q, want regulatory", g.Over, g.VictoryType)
	}
}
