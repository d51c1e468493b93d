package engine

import (
	"fmt"
	"sort"
	"strings"

	"github.com/talgya/ascent/internal/faction"
)

// pairKey builds the unordered key used by the tension map.
func pairKey(a, b string) string {
	if a > b {
		a, b = b, a
	}
	return a + "|" + b
}

// formAlliance adds a symmetric alliance edge. Idempotent: repeated
// alliances between the same pair add nothing.
func (g *Game) formAlliance(a, b *faction.Faction) {
	if allied(g.Alliances[a.ID], b.ID) {
		g.logf("diplomacy", "%s and %s reaffirm their existing alliance", a.Name, b.Name)
		return
	}
	g.Alliances[a.ID] = append(g.Alliances[a.ID], b.ID)
	g.Alliances[b.ID] = append(g.Alliances[b.ID], a.ID)
	g.addTension(a.ID, b.ID, -20)
	g.logf("diplomacy", "%s and %s form an alliance", a.Name, b.Name)
}

func allied(list []string, id string) bool {
	for _, v := range list {
		if v == id {
			return true
		}
	}
	return false
}

// Allied reports whether the two factions share an alliance edge.
func (g *Game) Allied(a, b string) bool {
	return allied(g.Alliances[a], b)
}

// addTension shifts the tension scalar between a pair, floored at zero.
func (g *Game) addTension(a, b string, delta float64) {
	key := pairKey(a, b)
	v := g.Tensions[key] + delta
	if v < 0 {
		v = 0
	}
	g.Tensions[key] = v
}

// easeTensions lowers every tension involving id by delta.
func (g *Game) easeTensions(id string, delta float64) {
	keys := make([]string, 0, len(g.Tensions))
	for key := range g.Tensions {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		a, b, _ := strings.Cut(key, "|")
		if a != id && b != id {
			continue
		}
		v := g.Tensions[key] - delta
		if v < 0 {
			v = 0
		}
		g.Tensions[key] = v
	}
}

// signTreaty records a summit accord for the acting government.
func (g *Game) signTreaty(f *faction.Faction) {
	id := fmt.Sprintf("accord_%s_t%d", f.ID, g.Turn)
	if g.Treaties[id] {
		return
	}
	g.Treaties[id] = true
	g.logf("diplomacy", "%s convenes an international summit; a new accord is signed", f.Name)
}
