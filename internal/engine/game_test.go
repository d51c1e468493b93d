package engine

import (
	"testing"

	"github.com/talgya/ascent/internal/catalog"
	"github.com/talgya/ascent/internal/entropy"
	"github.com/talgya/ascent/internal/faction"
)

// newTestGame builds a game over the standard roster with the given source.
func newTestGame(t *testing.T, rng entropy.Source) *Game {
	t.Helper()
	g, err := New(catalog.MustLoad(), faction.Seed(), "nexus", 7, rng)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return g
}

func TestNewRejectsBadRosters(t *testing.T) {
	cat := catalog.MustLoad()

	dup := []*faction.Faction{
		faction.New("a", "A", faction.KindLab),
		faction.New("a", "A again", faction.KindLab),
	}
	if _, err := New(cat, dup, "a", 1, entropy.Seeded(1)); err == nil {
		t.Error("duplicate ids accepted")
	}

	roster := []*faction.Faction{faction.New("a", "A", faction.KindLab)}
	if _, err := New(cat, roster, "ghost", 1, entropy.Seeded(1)); err == nil {
		t.Error("unknown player accepted")
	}
}

func TestGlobalSafetyIsCapabilityWeighted(t *testing.T) {
	strong := faction.New("strong", "Strong", faction.KindLab)
	strong.Capability = 80
	strong.Safety = 20
	weak := faction.New("weak", "Weak", faction.KindLab)
	weak.Capability = 20
	weak.Safety = 80
	gov := faction.New("gov", "Gov", faction.KindGovernment)
	gov.Safety = 100 // governments never count

	got := computeGlobalSafety([]*faction.Faction{strong, weak, gov})
	want := (80.0*20 + 20.0*80) / 100.0 // 32: the strong lab dominates
	if got != want {
		t.Errorf("global safety = %v, want %v", got, want)
	}
}

func TestGlobalSafetyDegenerateCases(t *testing.T) {
	gov := faction.New("gov", "Gov", faction.KindGovernment)
	if got := computeGlobalSafety([]*faction.Faction{gov}); got != faction.FieldMax {
		t.Errorf("no labs: global safety = %v, want %v", got, faction.FieldMax)
	}

	a := faction.New("a", "A", faction.KindLab)
	a.Safety = 30
	b := faction.New("b", "B", faction.KindLab)
	b.Safety = 50
	if got := computeGlobalSafety([]*faction.Faction{a, b}); got != 40 {
		t.Errorf("zero capability: global safety = %v, want 40", got)
	}
}

func TestDateAdvancesByQuarters(t *testing.T) {
	g := newTestGame(t, entropy.Seeded(1))

	g.advanceCalendar()
	if g.Date() != "Q1 2026" {
		t.Errorf("first turn date = %q, want Q1 2026", g.Date())
	}

	for i := 0; i < 4; i++ {
		g.advanceCalendar()
	}
	if g.Date() != "Q1 2027" {
		t.Errorf("fifth turn date = %q, want Q1 2027", g.Date())
	}
	if g.Turn != 5 {
		t.Errorf("turn = %d, want 5", g.Turn)
	}
}
