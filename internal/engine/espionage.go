package engine

import (
	"math"

	"github.com/talgya/ascent/internal/faction"
)

// Espionage constants. Success and detection are independent rolls: an
// operation can succeed and still be traced, or fail quietly.
const (
	espionageBase       = 0.35
	espionageOpsecGain  = 0.002
	espionageOpsecLoss  = 0.004
	espionageMinChance  = 0.05
	espionageMaxChance  = 0.85
	espionageMaxSteal   = 12.0
	espionageDetectOdds = 0.25
)

func clampf(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// espionageChance computes the success probability of attacker against target.
func espionageChance(attacker, target *faction.Faction) float64 {
	return clampf(espionageBase+espionageOpsecGain*attacker.Opsec-espionageOpsecLoss*target.Opsec,
		espionageMinChance, espionageMaxChance)
}

// resolveEspionage rolls the operation. On success the attacker drains the
// target's largest research branch (ties broken by canonical branch order).
func (g *Game) resolveEspionage(attacker, target *faction.Faction) {
	if g.Rand() < espionageChance(attacker, target) {
		branch := largestBranch(target)
		amount := math.Min(espionageMaxSteal, target.Research[branch])
		target.Research[branch] -= amount
		attacker.Research[branch] += amount
		g.logf("espionage", "%s exfiltrates %.1f %s research from %s", attacker.Name, amount, branch, target.Name)
	} else {
		g.logf("espionage", "%s's operation against %s comes back empty-handed", attacker.Name, target.Name)
	}

	if g.Rand() < espionageDetectOdds {
		faction.ApplyResourceDelta(attacker, faction.ResourceDelta{faction.ResTrust: -4, faction.ResInfluence: -3})
		faction.ApplyResourceDelta(target, faction.ResourceDelta{faction.ResTrust: 2})
		g.logf("detection", "%s is caught spying on %s", attacker.Name, target.Name)
	}
}

// largestBranch returns the target's highest-value research branch,
// preferring earlier branches in canonical order on ties.
func largestBranch(f *faction.Faction) faction.Branch {
	best := faction.Branches[0]
	for _, b := range faction.Branches[1:] {
		if f.Research[b] > f.Research[best] {
			best = b
		}
	}
	return best
}

// rollAmbientDetection runs the once-per-turn exposure check. Detection
// resets exposure to exactly zero; a quiet turn leaves it untouched,
// exposure never decays passively.
func (g *Game) rollAmbientDetection(f *faction.Faction) {
	if f.Exposure <= 0 {
		return
	}
	chance := clampf(
		g.Cfg.DetectionBase+f.Exposure*g.Cfg.DetectionPerExposure-f.Opsec*g.Cfg.DetectionOpsecFactor,
		0, g.Cfg.DetectionMaxChance,
	)
	if g.Rand() >= chance {
		return
	}
	faction.ApplyResourceDelta(f, faction.ResourceDelta{faction.ResTrust: -6, faction.ResInfluence: -4})
	faction.ApplyScoreDelta(f, 0, -2)
	f.Exposure = 0
	g.logf("detection", "%s's covert program is exposed to the public", f.Name)
}
