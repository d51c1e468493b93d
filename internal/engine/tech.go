package engine

import (
	"log/slog"

	"github.com/talgya/ascent/internal/catalog"
	"github.com/talgya/ascent/internal/faction"
)

// resolveUnlocks spends each branch's research pool on tech nodes until
// nothing affordable remains. The search takes the first affordable node in
// catalog-declaration order, not the cheapest: catalog order is pacing
// order. A single turn's research may cascade through several nodes.
func (g *Game) resolveUnlocks(f *faction.Faction) {
	for _, branch := range faction.Branches {
		for {
			node := g.nextAffordable(f, branch)
			if node == nil {
				break
			}
			f.Research[branch] -= node.Cost
			f.Unlocked[node.ID] = true
			g.applyTechEffects(f, node)
			g.logf("tech", "%s unlocks %s", f.Name, node.Name)
		}
	}
}

// nextAffordable finds the first node in the branch that is not yet
// unlocked, has all prereqs unlocked, and costs no more than the pool.
func (g *Game) nextAffordable(f *faction.Faction, branch faction.Branch) *catalog.Tech {
	pool := f.Research[branch]
	for _, node := range g.Catalog.ByBranch[branch] {
		if f.Unlocked[node.ID] {
			continue
		}
		if !prereqsMet(f, node) {
			continue
		}
		if node.Cost <= pool {
			return node
		}
	}
	return nil
}

func prereqsMet(f *faction.Faction, node *catalog.Tech) bool {
	for _, p := range node.Prereqs {
		if !f.Unlocked[p] {
			return false
		}
	}
	return true
}

func (g *Game) applyTechEffects(f *faction.Faction, node *catalog.Tech) {
	for _, e := range node.Effects {
		switch e.Type {
		case "capability":
			faction.ApplyScoreDelta(f, e.Amount, 0)
		case "safety":
			faction.ApplyScoreDelta(f, 0, e.Amount)
		case "resource":
			faction.ApplyResourceDelta(f, faction.ResourceDelta{e.Resource: e.Amount})
		case "stat":
			faction.ApplyStatDelta(f, faction.StatDelta{e.Stat: e.Amount})
		case "unlock_agi":
			f.CanDeployAGI = true
			g.logf("tech", "%s reaches a deployable AGI architecture", f.Name)
		default:
			// Unreachable: effect types are validated at catalog load.
			slog.Error("unknown tech effect", "tech", node.ID, "type", e.Type)
		}
	}
}
