package engine

import (
	"math"
	"testing"

	"github.com/talgya/ascent/internal/entropy"
	"github.com/talgya/ascent/internal/faction"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestLabIncome(t *testing.T) {
	g := newTestGame(t, entropy.Seeded(1))
	f := g.Index["nexus"] // compute 60, data 55, trust 50, influence 30, cap 22, safety 15

	labRules{}.income(g, f)

	// capital: 4 + 0.04*50 + 0.02*30 = 6.6 on top of 50
	if !almostEqual(f.Resources.Capital, 56.6) {
		t.Errorf("capital = %v, want 56.6", f.Resources.Capital)
	}

	// base: 8 + 0.08*60 + 0.05*55 = 15.55, ratio 22/37
	base := 15.55
	ratio := 22.0 / 37.0
	if got, want := f.Research[faction.BranchCapabilities], 0.6*base*ratio; !almostEqual(got, want) {
		t.Errorf("capabilities pool = %v, want %v", got, want)
	}
	if got, want := f.Research[faction.BranchSafety], (0.4*base+2)*(1-ratio); !almostEqual(got, want) {
		t.Errorf("safety pool = %v, want %v", got, want)
	}
	if got, want := f.Research[faction.BranchOps], 0.25*base; !almostEqual(got, want) {
		t.Errorf("ops pool = %v, want %v", got, want)
	}
	if got := f.Research[faction.BranchPolicy]; got != 0 {
		t.Errorf("policy pool = %v, want 0", got)
	}
}

func TestLabIncomeSplitsEvenlyAtZeroScores(t *testing.T) {
	g := newTestGame(t, entropy.Seeded(1))
	f := faction.New("fresh", "Fresh Lab", faction.KindLab)

	labRules{}.income(g, f)

	// base 8 at zero compute/data, ratio 0.5
	if got, want := f.Research[faction.BranchCapabilities], 0.6*8*0.5; !almostEqual(got, want) {
		t.Errorf("capabilities pool = %v, want %v", got, want)
	}
	if got, want := f.Research[faction.BranchSafety], (0.4*8+2)*0.5; !almostEqual(got, want) {
		t.Errorf("safety pool = %v, want %v", got, want)
	}
}

func TestGovernmentIncome(t *testing.T) {
	g := newTestGame(t, entropy.Seeded(1))
	f := g.Index["accord"] // influence 65, trust 55, capital 60

	governmentRules{}.income(g, f)

	// capital: 5 + 0.03*65 + 0.02*55 = 8.05 on top of 60
	if !almostEqual(f.Resources.Capital, 68.05) {
		t.Errorf("capital = %v, want 68.05", f.Resources.Capital)
	}
	// policy: 5 + 0.05*65 = 8.25
	if got := f.Research[faction.BranchPolicy]; !almostEqual(got, 8.25) {
		t.Errorf("policy pool = %v, want 8.25", got)
	}
	// Governments get no lab branch income.
	for _, b := range []faction.Branch{faction.BranchCapabilities, faction.BranchSafety, faction.BranchOps} {
		if got := f.Research[b]; got != 0 {
			t.Errorf("%s pool = %v, want 0", b, got)
		}
	}
}
