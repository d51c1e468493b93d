package strategy

import (
	"strings"
	"testing"

	"github.com/talgya/ascent/internal/catalog"
	"github.com/talgya/ascent/internal/engine"
	"github.com/talgya/ascent/internal/entropy"
	"github.com/talgya/ascent/internal/faction"
)

func newTestGame(t *testing.T) *engine.Game {
	t.Helper()
	g, err := engine.New(catalog.MustLoad(), faction.Seed(), "nexus", 7, entropy.Seeded(7))
	if err != nil {
		t.Fatalf("engine.New: %v", err)
	}
	return g
}

func TestNewDirectorRejectsUnknownTemplate(t *testing.T) {
	_, err := NewDirector(map[string]string{"nexus": "lab_reckless"}, entropy.Seeded(1))
	if err == nil {
		t.Fatal("unknown template accepted")
	}
	if !strings.Contains(err.Error(), "lab_reckless") {
		t.Errorf("error %q does not name the bad template", err)
	}
}

func TestDefaultAssignmentsCoverTheRoster(t *testing.T) {
	assign := DefaultAssignments()
	d, err := NewDirector(assign, entropy.Seeded(1))
	if err != nil {
		t.Fatalf("NewDirector: %v", err)
	}

	g := newTestGame(t)
	for _, f := range g.Factions {
		if _, ok := assign[f.ID]; !ok {
			t.Errorf("faction %q has no shipped personality", f.ID)
		}
	}

	choices := d.Choices(g)
	if len(choices) != len(g.Factions) {
		t.Errorf("choices for %d factions, want %d", len(choices), len(g.Factions))
	}
}

func TestChoicesAreValidForEachFaction(t *testing.T) {
	d, err := NewDirector(DefaultAssignments(), entropy.Seeded(3))
	if err != nil {
		t.Fatalf("NewDirector: %v", err)
	}
	g := newTestGame(t)

	// Several turns so the random branches all get exercised.
	for turn := 0; turn < 10; turn++ {
		choices := d.Choices(g)
		for id, list := range choices {
			f := g.Index[id]
			if len(list) == 0 || len(list) > g.Cfg.MaxActionsPerTurn {
				t.Fatalf("turn %d: %s submitted %d actions", turn, id, len(list))
			}
			for _, ch := range list {
				if !g.Catalog.HasAction(ch.ActionID) {
					t.Fatalf("turn %d: %s chose unknown action %q", turn, id, ch.ActionID)
				}
				a := g.Catalog.Action(ch.ActionID)
				if !a.Allows(f.Kind) {
					t.Errorf("turn %d: %s (%s) chose %q, not allowed for its kind", turn, id, f.Kind, ch.ActionID)
				}
				if a.FactionSpecific != "" && a.FactionSpecific != id {
					t.Errorf("turn %d: %s chose %q, exclusive to %s", turn, id, ch.ActionID, a.FactionSpecific)
				}
				if ch.Openness != engine.Open && ch.Openness != engine.Secret {
					t.Errorf("turn %d: %s chose openness %q", turn, id, ch.Openness)
				}
			}
		}
		g.ResolveTurn(choices)
	}
}

func TestTemplatesDeployWhenSafe(t *testing.T) {
	g := newTestGame(t)
	f := g.Index["apex"]
	f.CanDeployAGI = true
	f.Safety = 80
	for _, lab := range g.Labs() {
		lab.Safety = 80
	}
	g.ResolveTurn(nil) // refresh derived global safety

	for name, tmpl := range templates {
		if !strings.HasPrefix(name, "lab_") {
			continue
		}
		got := tmpl.Choose(g, f, entropy.Seeded(1))
		if len(got) != 1 || got[0].ActionID != "deploy_agi" {
			t.Errorf("%s: choices = %v, want a single deploy_agi", name, got)
		}
	}
}

func TestChooseRequiresAssignment(t *testing.T) {
	d, err := NewDirector(map[string]string{"nexus": "lab_balanced"}, entropy.Seeded(1))
	if err != nil {
		t.Fatalf("NewDirector: %v", err)
	}
	g := newTestGame(t)

	if _, err := d.Choose(g, g.Index["apex"]); err == nil {
		t.Error("unassigned faction did not error")
	}
	if _, err := d.Choose(g, g.Index["nexus"]); err != nil {
		t.Errorf("assigned faction errored: %v", err)
	}
}
