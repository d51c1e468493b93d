package engine

import "github.com/talgya/ascent/internal/faction"

// kindRules collects the per-kind behavior: passive income and the endgame
// checks. Dispatching through the interface keeps each kind's rules in one
// place instead of tag switches scattered through the engine.
type kindRules interface {
	income(g *Game, f *faction.Faction)
	checkVictory(g *Game, f *faction.Faction) (string, bool)
	checkLoss(g *Game, f *faction.Faction) (string, bool)
}

type labRules struct{}

type governmentRules struct{}

// income for a lab: capital from commercial deployment, research split
// between capabilities and safety by the lab's current leaning, plus a flat
// ops trickle. The +2 safety floor keeps pure-capability strategies from
// starving safety research entirely.
func (labRules) income(g *Game, f *faction.Faction) {
	capital := 4 + 0.04*f.Resources.Trust + 0.02*f.Resources.Influence
	faction.ApplyResourceDelta(f, faction.ResourceDelta{faction.ResCapital: capital})

	base := 8 + 0.08*f.Resources.Compute + 0.05*f.Resources.Data
	ratio := 0.5
	if f.Capability+f.Safety > 0 {
		ratio = f.Capability / (f.Capability + f.Safety)
	}

	f.Research[faction.BranchCapabilities] += 0.6 * base * ratio
	f.Research[faction.BranchSafety] += (0.4*base + 2) * (1 - ratio)
	f.Research[faction.BranchOps] += 0.25 * base
}

// income for a government: capital from the tax base, policy research from
// standing influence.
func (governmentRules) income(g *Game, f *faction.Faction) {
	capital := 5 + 0.03*f.Resources.Influence + 0.02*f.Resources.Trust
	faction.ApplyResourceDelta(f, faction.ResourceDelta{faction.ResCapital: capital})

	f.Research[faction.BranchPolicy] += 5 + 0.05*f.Resources.Influence
}
