package engine

import (
	"log/slog"
	"sort"

	"github.com/talgya/ascent/internal/faction"
)

// evaluateDeployments checks this turn's AGI deployment attempts. A
// deployment either wins the game outright or ends it in catastrophe;
// there is no quiet failure once the button is pressed.
func (g *Game) evaluateDeployments() {
	for _, id := range g.deployAttempts {
		f := g.Index[id]
		if f == nil || g.Over {
			return
		}
		if g.Turn < g.Cfg.MinVictoryTurn {
			g.logf("endgame", "%s's deployment stalls in internal review", f.Name)
			continue
		}
		if f.Safety >= g.Cfg.SafeAGISafety && g.GlobalSafety >= g.Cfg.SafeAGIGlobal {
			g.endWithVictory(f, "safe_agi")
			return
		}
		g.endWithLoss(f, "catastrophe")
		g.logf("endgame", "an unaligned deployment by %s ends the race for everyone", f.Name)
		return
	}
}

// evaluateFactions runs the universal endgame checks: every faction's
// victory conditions first (any faction's win ends the run for everyone),
// then losses. Only the player faction's loss is terminal; other losses are
// logged as warnings, since a single-protagonist campaign keeps running when
// a rival collapses.
func (g *Game) evaluateFactions() {
	for _, f := range g.Factions {
		if vtype, ok := g.rules[f.Kind].checkVictory(g, f); ok {
			g.endWithVictory(f, vtype)
			return
		}
	}

	for _, f := range g.Factions {
		ltype, ok := g.rules[f.Kind].checkLoss(g, f)
		if !ok {
			continue
		}
		if f.ID == g.PlayerID {
			g.endWithLoss(f, ltype)
			return
		}
		slog.Warn("faction meets a loss condition", "faction", f.ID, "loss", ltype, "turn", g.Turn)
		g.logf("endgame", "%s teeters on the edge of %s", f.Name, ltype)
	}
}

func (labRules) checkVictory(g *Game, f *faction.Faction) (string, bool) {
	if g.Turn < g.Cfg.MinVictoryTurn {
		return "", false
	}

	// Dominant: overwhelming capability with no credible rival.
	if f.Capability >= g.Cfg.DominantCap {
		rival := g.bestRival(f)
		if rival == nil || f.Capability >= rival.Capability*(1+g.Cfg.DominantLeadPct) {
			return "dominance", true
		}
	}

	// Public trust: beloved and strong.
	if f.Resources.Trust >= g.Cfg.TrustWinTrust && f.Capability >= g.Cfg.TrustWinCap {
		return "public_trust", true
	}

	return "", false
}

func (labRules) checkLoss(g *Game, f *faction.Faction) (string, bool) {
	// Lab losses wait for the same early-game grace period as lab wins.
	if g.Turn < g.Cfg.MinVictoryTurn {
		return "", false
	}
	if f.Resources.Trust < g.Cfg.CollapseTrust {
		return "collapse", true
	}
	if rival := g.bestRival(f); rival != nil && rival.Capability-f.Capability >= g.Cfg.ObsolescenceGap {
		return "obsolescence", true
	}
	return "", false
}

func (governmentRules) checkVictory(g *Game, f *faction.Faction) (string, bool) {
	// Regulatory: a safe ecosystem, but only once the horizon is reached.
	if g.Turn >= g.Cfg.RegulatoryHorizon && g.allLabsSafe() && g.GlobalSafety >= g.Cfg.RegulatoryGlobal {
		return "regulatory", true
	}

	// Alliance: broad influence plus enough trusted partners.
	if f.Resources.Influence >= g.Cfg.AllianceInfluence {
		trusted := 0
		for _, other := range g.Factions {
			if other != f && other.Resources.Trust >= g.Cfg.AllianceTrust {
				trusted++
			}
		}
		if trusted >= g.Cfg.AllianceCount {
			return "alliance", true
		}
	}

	// Control: every lab suppressed below the ceiling.
	if f.Resources.Influence >= g.Cfg.ControlInfluence {
		suppressed := true
		for _, lab := range g.Labs() {
			if lab.Capability > g.Cfg.ControlCapCeiling {
				suppressed = false
				break
			}
		}
		if suppressed {
			return "control", true
		}
	}

	return "", false
}

func (governmentRules) checkLoss(g *Game, f *faction.Faction) (string, bool) {
	if f.Resources.Trust < g.Cfg.CollapseTrust {
		return "collapse", true
	}
	if f.Resources.Influence < g.Cfg.CoupInfluence {
		for _, lab := range g.Labs() {
			if lab.Capability > g.Cfg.CoupLabCap {
				return "coup", true
			}
		}
	}
	return "", false
}

// allLabsSafe reports whether every lab's safety score clears the
// regulatory threshold.
func (g *Game) allLabsSafe() bool {
	for _, lab := range g.Labs() {
		if lab.Safety < g.Cfg.RegulatorySafety {
			return false
		}
	}
	return true
}

// evaluateHorizon resolves the turn-limit endgame: a government
// fixed-horizon victory when the whole lab ecosystem is safe, otherwise an
// explicit stalemate with no winner.
func (g *Game) evaluateHorizon() {
	if g.allLabsSafe() {
		var govs []*faction.Faction
		for _, f := range g.Factions {
			if f.Kind == faction.KindGovernment {
				govs = append(govs, f)
			}
		}
		if len(govs) > 0 {
			sort.SliceStable(govs, func(i, j int) bool {
				if govs[i].Resources.Influence != govs[j].Resources.Influence {
					return govs[i].Resources.Influence > govs[j].Resources.Influence
				}
				return govs[i].Resources.Trust > govs[j].Resources.Trust
			})
			g.endWithVictory(govs[0], "regulatory")
			return
		}
	}

	g.Over = true
	g.VictoryType = "stalemate"
	g.logf("endgame", "the race reaches %s with no resolution: stalemate", g.Date())
	slog.Info("game over", "outcome", "stalemate", "turn", g.Turn)
}
