package engine

import (
	"math"
	"testing"

	"github.com/talgya/ascent/internal/entropy"
	"github.com/talgya/ascent/internal/faction"
)

func TestEspionageChanceClampedByOpsec(t *testing.T) {
	attacker := faction.New("a", "A", faction.KindLab)
	target := faction.New("b", "B", faction.KindLab)

	attacker.Opsec = 20
	target.Opsec = 80
	if got := espionageChance(attacker, target); math.Abs(got-0.07) > 1e-9 {
		t.Errorf("chance = %v, want 0.07", got)
	}

	// Hopeless matchups floor at the minimum.
	attacker.Opsec = 0
	target.Opsec = 100
	if got := espionageChance(attacker, target); got != espionageMinChance {
		t.Errorf("chance = %v, want %v", got, espionageMinChance)
	}

	attacker.Opsec = 100
	target.Opsec = 0
	if got := espionageChance(attacker, target); math.Abs(got-0.55) > 1e-9 {
		t.Errorf("chance = %v, want 0.55", got)
	}
}

func TestEspionageFailureIsQuiet(t *testing.T) {
	g := newTestGame(t, entropy.Seeded(1))
	attacker := g.Index["apex"]
	target := g.Index["nexus"]
	target.Research[faction.BranchCapabilities] = 40

	// First roll misses every realistic chance, second skips detection.
	g.Rand = entropy.Script(0.99, 0.99)
	g.resolveEspionage(attacker, target)

	if target.Research[faction.BranchCapabilities] != 40 {
		t.Error("failed operation moved research")
	}
	if attacker.Research[faction.BranchCapabilities] != 0 {
		t.Error("failed operation granted research")
	}
	if attacker.Resources.Trust != 45 {
		t.Errorf("undetected failure changed trust: %v", attacker.Resources.Trust)
	}
	if !hasEvent(g, "espionage", "empty-handed") {
		t.Error("no log entry for failed operation")
	}
}

func TestEspionageSuccessDrainsLargestBranch(t *testing.T) {
	g := newTestGame(t, entropy.Seeded(1))
	attacker := g.Index["apex"]
	target := g.Index["nexus"]
	target.Research[faction.BranchSafety] = 30
	target.Research[faction.BranchCapabilities] = 8

	g.Rand = entropy.Script(0.0, 0.99) // success, no detection
	g.resolveEspionage(attacker, target)

	if target.Research[faction.BranchSafety] != 18 {
		t.Errorf("target safety pool = %v, want 18", target.Research[faction.BranchSafety])
	}
	if attacker.Research[faction.BranchSafety] != 12 {
		t.Errorf("attacker safety pool = %v, want 12", attacker.Research[faction.BranchSafety])
	}
	if target.Research[faction.BranchCapabilities] != 8 {
		t.Error("smaller branch was touched")
	}
}

func TestEspionageStealCappedByPool(t *testing.T) {
	g := newTestGame(t, entropy.Seeded(1))
	attacker := g.Index["apex"]
	target := g.Index["garden"]
	target.Research[faction.BranchOps] = 5

	g.Rand = entropy.Script(0.0, 0.99)
	g.resolveEspionage(attacker, target)

	if target.Research[faction.BranchOps] != 0 {
		t.Errorf("target ops pool = %v, want 0", target.Research[faction.BranchOps])
	}
	if attacker.Research[faction.BranchOps] != 5 {
		t.Errorf("attacker ops pool = %v, want 5", attacker.Research[faction.BranchOps])
	}
}

func TestEspionageDetectionIsIndependent(t *testing.T) {
	g := newTestGame(t, entropy.Seeded(1))
	attacker := g.Index["apex"] // trust 45, influence 35
	target := g.Index["nexus"]  // trust 50

	g.Rand = entropy.Script(0.99, 0.1) // fail, but detected anyway
	g.resolveEspionage(attacker, target)

	if attacker.Resources.Trust != 41 {
		t.Errorf("attacker trust = %v, want 41", attacker.Resources.Trust)
	}
	if attacker.Resources.Influence != 32 {
		t.Errorf("attacker influence = %v, want 32", attacker.Resources.Influence)
	}
	if target.Resources.Trust != 52 {
		t.Errorf("target trust = %v, want 52", target.Resources.Trust)
	}
	if !hasEvent(g, "detection", "caught spying") {
		t.Error("no detection log")
	}
}

func TestLargestBranchBreaksTiesInCanonicalOrder(t *testing.T) {
	f := faction.New("x", "X", faction.KindLab)
	f.Research[faction.BranchSafety] = 10
	f.Research[faction.BranchOps] = 10

	if got := largestBranch(f); got != faction.BranchSafety {
		t.Errorf("largest = %q, want safety (earlier in canonical order)", got)
	}
}

func TestAmbientDetectionSkipsCleanFactions(t *testing.T) {
	g := newTestGame(t, entropy.Seeded(1))
	f := g.Index["nexus"]
	f.Exposure = 0
	before := f.Resources.Trust

	g.Rand = entropy.Script(0.0) // would always fire if rolled
	g.rollAmbientDetection(f)

	if f.Resources.Trust != before {
		t.Error("detection fired with zero exposure")
	}
}

func TestAmbientDetectionResetsExposure(t *testing.T) {
	g := newTestGame(t, entropy.Seeded(1))
	f := g.Index["nexus"] // trust 50, influence 30, safety 15
	f.Exposure = 10
	f.Opsec = 0

	// chance = 0.10 + 10*0.02 - 0 = 0.30
	g.Rand = entropy.Script(0.25)
	g.rollAmbientDetection(f)

	if f.Exposure != 0 {
		t.Errorf("exposure = %v, want 0 after detection", f.Exposure)
	}
	if f.Resources.Trust != 44 {
		t.Errorf("trust = %v, want 44", f.Resources.Trust)
	}
	if f.Resources.Influence != 26 {
		t.Errorf("influence = %v, want 26", f.Resources.Influence)
	}
	if f.Safety != 13 {
		t.Errorf("safety = %v, want 13", f.Safety)
	}
}

func TestAmbientDetectionMissLeavesExposure(t *testing.T) {
	g := newTestGame(t, entropy.Seeded(1))
	f := g.Index["nexus"]
	f.Exposure = 10
	f.Opsec = 0

	g.Rand = entropy.Script(0.35) // above the 0.30 chance
	g.rollAmbientDetection(f)

	if f.Exposure != 10 {
		t.Errorf("exposure = %v, want 10 (no passive decay)", f.Exposure)
	}
}
