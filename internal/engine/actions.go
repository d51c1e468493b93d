package engine

import (
	"github.com/talgya/ascent/internal/catalog"
	"github.com/talgya/ascent/internal/faction"
)

// opennessModifier is the fixed openness table. Open is the neutral
// baseline; secret trades a trust and safety-culture hit plus exposure for a
// research multiplier.
type opennessModifier struct {
	Trust         float64
	SafetyCulture float64
	ResearchMult  float64
}

var opennessTable = map[Openness]opennessModifier{
	Open:   {ResearchMult: 1.0},
	Secret: {Trust: -1, SafetyCulture: -1, ResearchMult: 1.35},
}

// branchMultiplier scales an action's research grant by how well-resourced
// the faction is for that branch. Ranges [0.5, 1.5] with 1.0 at a combined
// 150 points across the branch's three driving fields.
func branchMultiplier(f *faction.Faction, b faction.Branch) float64 {
	var sum float64
	switch b {
	case faction.BranchCapabilities:
		sum = f.Resources.Compute + f.Resources.Talent + f.Resources.Data
	case faction.BranchSafety:
		sum = f.Resources.Talent + f.SafetyCulture + f.Resources.Trust
	case faction.BranchOps:
		sum = f.Resources.Capital + f.Resources.Compute + f.Resources.Talent
	case faction.BranchPolicy:
		sum = (f.Resources.Influence + f.Resources.Trust) * 1.5
	}
	mult := 0.5 + sum/300
	if mult > 1.5 {
		mult = 1.5
	}
	return mult
}

// applyAction validates and applies one chosen action. Policy errors
// (unknown action id, disallowed kind, wrong faction-specific owner, bad
// target) log and skip without mutation: choices come from an untrusted
// policy that must not be able to crash a turn.
func (g *Game) applyAction(f *faction.Faction, ch ActionChoice) {
	if !g.Catalog.HasAction(ch.ActionID) {
		g.logf("policy", "%s submits an order for unknown action %q", f.Name, ch.ActionID)
		return
	}
	def := g.Catalog.Action(ch.ActionID)

	if !def.Allows(f.Kind) {
		g.logf("policy", "%s cannot take %s (%s action)", f.Name, def.Name, def.AllowedFor[0])
		return
	}
	if def.FactionSpecific != "" && def.FactionSpecific != f.ID {
		g.logf("policy", "%s is exclusive to %s; %s's order is ignored", def.Name, def.FactionSpecific, f.Name)
		return
	}

	openness := ch.Openness
	if openness != Secret {
		openness = Open
	}

	faction.ApplyResourceDelta(f, def.BaseResources)

	mod := opennessTable[openness]
	if mod.Trust != 0 {
		faction.ApplyResourceDelta(f, faction.ResourceDelta{faction.ResTrust: mod.Trust})
	}
	if mod.SafetyCulture != 0 {
		faction.ApplyStatDelta(f, faction.StatDelta{faction.StatSafetyCulture: mod.SafetyCulture})
	}

	for _, branch := range faction.Branches {
		pts, ok := def.BaseResearch[branch]
		if !ok || pts == 0 {
			continue
		}
		f.Research[branch] += pts * branchMultiplier(f, branch) * mod.ResearchMult
	}

	if def.ScoreEffects != nil {
		faction.ApplyScoreDelta(f, def.ScoreEffects.Capability, def.ScoreEffects.Safety)
	}
	if def.SecurityLevelDelta != 0 {
		faction.AddSecurityLevel(f, def.SecurityLevelDelta)
	}
	if openness == Secret {
		f.Exposure += def.Exposure
	}

	g.dispatchKind(f, def, ch)
	g.logf("action", "%s: %s (%s)", f.Name, def.Name, openness)
}

// dispatchKind applies action-specific effects beyond the base deltas.
// Unlisted kinds are pure base-delta actions.
func (g *Game) dispatchKind(f *faction.Faction, def *catalog.Action, ch ActionChoice) {
	switch def.ID {
	case "deploy_agi":
		if !f.CanDeployAGI {
			g.logf("policy", "%s orders an AGI deployment without a deployable system", f.Name)
			return
		}
		g.deployAttempts = append(g.deployAttempts, f.ID)
		g.logf("endgame", "%s initiates AGI deployment", f.Name)

	case "espionage":
		target := g.target(f, ch)
		if target == nil {
			return
		}
		g.resolveEspionage(f, target)

	case "subsidize":
		target := g.labTarget(f, ch, def)
		if target == nil {
			return
		}
		faction.ApplyResourceDelta(target, faction.ResourceDelta{faction.ResCapital: 10, faction.ResCompute: 5})
		g.logf("action", "%s subsidizes %s", f.Name, target.Name)

	case "strategic_initiative":
		target := g.labTarget(f, ch, def)
		if target == nil {
			return
		}
		faction.ApplyResourceDelta(target, faction.ResourceDelta{faction.ResCompute: 8, faction.ResData: 5, faction.ResTalent: 3})
		g.logf("action", "%s launches a strategic initiative with %s", f.Name, target.Name)

	case "regulate":
		target := g.labTarget(f, ch, def)
		if target == nil {
			return
		}
		faction.ApplyResourceDelta(target, faction.ResourceDelta{faction.ResCompute: -6, faction.ResInfluence: -4})
		faction.ApplyScoreDelta(target, -3, 0)
		g.addTension(f.ID, target.ID, 10)
		g.logf("action", "%s imposes regulations on %s", f.Name, target.Name)

	case "executive_order":
		target := g.labTarget(f, ch, def)
		if target == nil {
			return
		}
		faction.ApplyResourceDelta(target, faction.ResourceDelta{faction.ResCompute: -8, faction.ResInfluence: -5})
		faction.ApplyScoreDelta(target, -4, 0)
		faction.ApplyScoreDelta(f, 0, 3)
		g.addTension(f.ID, target.ID, 15)
		g.logf("action", "%s issues an executive order against %s", f.Name, target.Name)

	case "counterintel":
		faction.ApplyStatDelta(f, faction.StatDelta{faction.StatOpsec: 8})

	case "defensive_measures":
		faction.ApplyStatDelta(f, faction.StatDelta{faction.StatOpsec: 5})

	case "form_alliance":
		target := g.target(f, ch)
		if target == nil {
			return
		}
		g.formAlliance(f, target)

	case "open_source_release":
		// Capability leak: every other lab benefits, targeting irrelevant.
		for _, other := range g.Factions {
			if other != f && other.IsLab() {
				faction.ApplyScoreDelta(other, 2, 0)
			}
		}
		g.logf("action", "%s open-sources frontier weights; rival labs absorb the gains", f.Name)

	case "international_summit":
		g.easeTensions(f.ID, 5)
		g.signTreaty(f)
	}
}

// target resolves a choice's target, logging and returning nil when the
// target is missing, unknown, or the actor itself.
func (g *Game) target(f *faction.Faction, ch ActionChoice) *faction.Faction {
	if ch.TargetID == "" || ch.TargetID == f.ID {
		g.logf("policy", "%s's %s has no valid target", f.Name, ch.ActionID)
		return nil
	}
	target, ok := g.Index[ch.TargetID]
	if !ok {
		g.logf("policy", "%s targets unknown faction %q", f.Name, ch.TargetID)
		return nil
	}
	return target
}

// labTarget is target restricted to lab factions.
func (g *Game) labTarget(f *faction.Faction, ch ActionChoice, def *catalog.Action) *faction.Faction {
	target := g.target(f, ch)
	if target == nil {
		return nil
	}
	if !target.IsLab() {
		g.logf("policy", "%s aims %s at %s, which is not a lab", f.Name, def.Name, target.Name)
		return nil
	}
	return target
}
