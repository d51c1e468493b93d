// Package strategy provides the rule-based decision policies that choose
// each faction's actions every turn. The engine treats these choices as
// untrusted input; templates here are just the built-in opponents (and the
// player's autopilot when no external choices arrive).
package strategy

import (
	"fmt"

	"github.com/talgya/ascent/internal/engine"
	"github.com/talgya/ascent/internal/entropy"
	"github.com/talgya/ascent/internal/faction"
)

// Template decides up to two actions for a faction each turn.
type Template interface {
	Choose(g *engine.Game, f *faction.Faction, rng entropy.Source) []engine.ActionChoice
}

// templates is the closed set of built-in policies.
var templates = map[string]Template{
	"lab_aggressive": labAggressive{},
	"lab_balanced":   labBalanced{},
	"lab_cautious":   labCautious{},
	"gov_regulator":  govRegulator{},
	"gov_diplomat":   govDiplomat{},
}

// Director assigns a template to every faction and produces the full
// choices map for a turn.
type Director struct {
	assignments map[string]Template
	rng         entropy.Source
}

// NewDirector binds faction ids to template names. An unknown template name
// is a configuration error and fails construction.
func NewDirector(assign map[string]string, rng entropy.Source) (*Director, error) {
	d := &Director{
		assignments: make(map[string]Template, len(assign)),
		rng:         rng,
	}
	for id, name := range assign {
		tmpl, ok := templates[name]
		if !ok {
			return nil, fmt.Errorf("unknown strategy template %q for faction %q", name, id)
		}
		d.assignments[id] = tmpl
	}
	return d, nil
}

// DefaultAssignments maps the standard roster to its shipped personalities.
func DefaultAssignments() map[string]string {
	return map[string]string{
		"nexus":    "lab_balanced",
		"apex":     "lab_aggressive",
		"garden":   "lab_cautious",
		"accord":   "gov_regulator",
		"meridian": "gov_diplomat",
	}
}

// Choices builds the choices map for the current turn. Factions without an
// assignment sit the turn out.
func (d *Director) Choices(g *engine.Game) map[string][]engine.ActionChoice {
	choices := make(map[string][]engine.ActionChoice, len(g.Factions))
	for _, f := range g.Factions {
		tmpl, ok := d.assignments[f.ID]
		if !ok {
			continue
		}
		choices[f.ID] = tmpl.Choose(g, f, d.rng)
	}
	return choices
}

// Choose runs a single faction's assigned template.
func (d *Director) Choose(g *engine.Game, f *faction.Faction) ([]engine.ActionChoice, error) {
	tmpl, ok := d.assignments[f.ID]
	if !ok {
		return nil, fmt.Errorf("no strategy template assigned to faction %q", f.ID)
	}
	return tmpl.Choose(g, f, d.rng), nil
}

// leadingLab returns the highest-capability lab, excluding self.
func leadingLab(g *engine.Game, exclude *faction.Faction) *faction.Faction {
	var best *faction.Faction
	for _, f := range g.Factions {
		if f == exclude || !f.IsLab() {
			continue
		}
		if best == nil || f.Capability > best.Capability {
			best = f
		}
	}
	return best
}

// laggingLab returns the lowest-capability lab, excluding self.
func laggingLab(g *engine.Game, exclude *faction.Faction) *faction.Faction {
	var worst *faction.Faction
	for _, f := range g.Factions {
		if f == exclude || !f.IsLab() {
			continue
		}
		if worst == nil || f.Capability < worst.Capability {
			worst = f
		}
	}
	return worst
}

type labAggressive struct{}

func (labAggressive) Choose(g *engine.Game, f *faction.Faction, rng entropy.Source) []engine.ActionChoice {
	if f.CanDeployAGI && f.Safety >= g.Cfg.SafeAGISafety && g.GlobalSafety >= g.Cfg.SafeAGIGlobal {
		return []engine.ActionChoice{{ActionID: "deploy_agi", Openness: engine.Open}}
	}

	var out []engine.ActionChoice
	if f.Exposure > 8 {
		out = append(out, engine.ActionChoice{ActionID: "counterintel", Openness: engine.Open})
	} else if rival := leadingLab(g, f); rival != nil && rival.Capability > f.Capability && rng() < 0.3 {
		out = append(out, engine.ActionChoice{ActionID: "espionage", Openness: engine.Secret, TargetID: rival.ID})
	} else {
		out = append(out, engine.ActionChoice{ActionID: "accelerate_timeline", Openness: engine.Secret})
	}

	if f.Resources.Capital < 25 {
		out = append(out, engine.ActionChoice{ActionID: "deploy_products", Openness: engine.Open})
	} else if f.Resources.Compute < 60 {
		out = append(out, engine.ActionChoice{ActionID: "hardware_partnership", Openness: engine.Open})
	} else {
		out = append(out, engine.ActionChoice{ActionID: "hire_talent", Openness: engine.Open})
	}
	return out
}

type labBalanced struct{}

func (labBalanced) Choose(g *engine.Game, f *faction.Faction, rng entropy.Source) []engine.ActionChoice {
	if f.CanDeployAGI && f.Safety >= g.Cfg.SafeAGISafety && g.GlobalSafety >= g.Cfg.SafeAGIGlobal {
		return []engine.ActionChoice{{ActionID: "deploy_agi", Openness: engine.Open}}
	}

	var out []engine.ActionChoice
	if f.Safety < f.Capability*0.6 {
		out = append(out, engine.ActionChoice{ActionID: "safety_pause", Openness: engine.Open})
	} else {
		out = append(out, engine.ActionChoice{ActionID: "accelerate_timeline", Openness: engine.Open})
	}

	switch {
	case f.Resources.Capital < 30:
		out = append(out, engine.ActionChoice{ActionID: "deploy_products", Openness: engine.Open})
	case f.Resources.Trust < 50:
		out = append(out, engine.ActionChoice{ActionID: "publish_research", Openness: engine.Open})
	case g.Catalog.HasAction("frontier_showcase") && f.ID == "nexus" && rng() < 0.25:
		out = append(out, engine.ActionChoice{ActionID: "frontier_showcase", Openness: engine.Open})
	default:
		out = append(out, engine.ActionChoice{ActionID: "hire_talent", Openness: engine.Open})
	}
	return out
}

type labCautious struct{}

func (labCautious) Choose(g *engine.Game, f *faction.Faction, rng entropy.Source) []engine.ActionChoice {
	if f.CanDeployAGI && f.Safety >= g.Cfg.SafeAGISafety && g.GlobalSafety >= g.Cfg.SafeAGIGlobal {
		return []engine.ActionChoice{{ActionID: "deploy_agi", Openness: engine.Open}}
	}

	var out []engine.ActionChoice
	if f.ID == "garden" && g.Catalog.HasAction("alignment_summit") && rng() < 0.4 {
		out = append(out, engine.ActionChoice{ActionID: "alignment_summit", Openness: engine.Open})
	} else {
		out = append(out, engine.ActionChoice{ActionID: "safety_pause", Openness: engine.Open})
	}

	if f.Resources.Capital < 30 {
		out = append(out, engine.ActionChoice{ActionID: "deploy_products", Openness: engine.Open})
	} else {
		out = append(out, engine.ActionChoice{ActionID: "publish_research", Openness: engine.Open})
	}
	return out
}

type govRegulator struct{}

func (govRegulator) Choose(g *engine.Game, f *faction.Faction, rng entropy.Source) []engine.ActionChoice {
	var out []engine.ActionChoice
	if leader := leadingLab(g, f); leader != nil && leader.Capability > 55 {
		action := "regulate"
		if leader.Capability > 70 && rng() < 0.5 {
			action = "executive_order"
		}
		out = append(out, engine.ActionChoice{ActionID: action, Openness: engine.Open, TargetID: leader.ID})
	} else {
		out = append(out, engine.ActionChoice{ActionID: "international_summit", Openness: engine.Open})
	}

	if f.Resources.Trust < 45 {
		out = append(out, engine.ActionChoice{ActionID: "public_messaging", Openness: engine.Open})
	} else {
		out = append(out, engine.ActionChoice{ActionID: "defensive_measures", Openness: engine.Open})
	}
	return out
}

type govDiplomat struct{}

func (govDiplomat) Choose(g *engine.Game, f *faction.Faction, rng entropy.Source) []engine.ActionChoice {
	var out []engine.ActionChoice
	if lagging := laggingLab(g, f); lagging != nil && f.Resources.Capital > 40 {
		action := "subsidize"
		if rng() < 0.35 {
			action = "strategic_initiative"
		}
		out = append(out, engine.ActionChoice{ActionID: action, Openness: engine.Open, TargetID: lagging.ID})
	} else {
		out = append(out, engine.ActionChoice{ActionID: "public_messaging", Openness: engine.Open})
	}

	if safest := safestLab(g); safest != nil && !g.Allied(f.ID, safest.ID) {
		out = append(out, engine.ActionChoice{ActionID: "form_alliance", Openness: engine.Open, TargetID: safest.ID})
	} else {
		out = append(out, engine.ActionChoice{ActionID: "international_summit", Openness: engine.Open})
	}
	return out
}

// safestLab returns the highest-safety lab.
func safestLab(g *engine.Game) *faction.Faction {
	var best *faction.Faction
	for _, f := range g.Factions {
		if !f.IsLab() {
			continue
		}
		if best == nil || f.Safety > best.Safety {
			best = f
		}
	}
	return best
}
