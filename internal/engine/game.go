// Package engine implements the quarterly turn-resolution engine: the
// deterministic state machine that turns per-faction action choices into an
// updated world state, cascades tech unlocks, and evaluates the victory/loss
// taxonomy. Everything else in the repository is a producer or consumer
// around this package.
package engine

import (
	"fmt"
	"log/slog"

	"github.com/talgya/ascent/internal/catalog"
	"github.com/talgya/ascent/internal/entropy"
	"github.com/talgya/ascent/internal/faction"
)

// Openness is whether an action is declared publicly or conducted covertly.
type Openness string

const (
	Open   Openness = "open"
	Secret Openness = "secret"
)

// ActionChoice is one faction's chosen action for a turn. Choices come from
// an external decision policy (human or LLM) and are treated as untrusted:
// anything malformed degrades to a logged no-op.
type ActionChoice struct {
	ActionID string   `json:"action_id"`
	Openness Openness `json:"openness"`
	TargetID string   `json:"target_id,omitempty"`
}

// Event is one entry in the append-only turn log.
type Event struct {
	Turn        int    `json:"turn"`
	Description string `json:"description"`
	Category    string `json:"category"` // "action", "policy", "tech", "espionage", "detection", "diplomacy", "endgame"
}

// Config holds the tunable constants of the race. Defaults match the
// shipped campaign; tests override individual fields.
type Config struct {
	StartYear         int
	MaxActionsPerTurn int
	MinVictoryTurn    int // no lab victory/loss before this turn
	RegulatoryHorizon int // earliest turn a regulatory victory can fire
	MaxTurns          int

	// Ambient detection roll.
	DetectionBase        float64
	DetectionPerExposure float64
	DetectionOpsecFactor float64
	DetectionMaxChance   float64

	// Victory/loss thresholds.
	SafeAGISafety     float64
	SafeAGIGlobal     float64
	DominantCap       float64
	DominantLeadPct   float64
	TrustWinTrust     float64
	TrustWinCap       float64
	RegulatorySafety  float64
	RegulatoryGlobal  float64
	AllianceInfluence float64
	AllianceTrust     float64
	AllianceCount     int
	ControlInfluence  float64
	ControlCapCeiling float64
	CollapseTrust     float64
	ObsolescenceGap   float64
	CoupInfluence     float64
	CoupLabCap        float64
}

// DefaultConfig returns the shipped campaign constants.
func DefaultConfig() Config {
	return Config{
		StartYear:         2026,
		MaxActionsPerTurn: 2,
		MinVictoryTurn:    8,
		RegulatoryHorizon: 20,
		MaxTurns:          40,

		DetectionBase:        0.10,
		DetectionPerExposure: 0.02,
		DetectionOpsecFactor: 0.001,
		DetectionMaxChance:   0.75,

		SafeAGISafety:     70,
		SafeAGIGlobal:     60,
		DominantCap:       85,
		DominantLeadPct:   0.30,
		TrustWinTrust:     80,
		TrustWinCap:       60,
		RegulatorySafety:  60,
		RegulatoryGlobal:  65,
		AllianceInfluence: 75,
		AllianceTrust:     70,
		AllianceCount:     2,
		ControlInfluence:  80,
		ControlCapCeiling: 20,
		CollapseTrust:     10,
		ObsolescenceGap:   40,
		CoupInfluence:     25,
		CoupLabCap:        70,
	}
}

// Game is the complete race state. One ResolveTurn call is one atomic state
// transition; callers must not mutate the state concurrently with it.
type Game struct {
	Cfg     Config
	Catalog *catalog.Catalog

	Turn    int `json:"turn"`
	Year    int `json:"year"`
	Quarter int `json:"quarter"`

	Factions []*faction.Faction
	Index    map[string]*faction.Faction

	// Derived after every mutation round; never an authoritative input.
	GlobalSafety float64

	Over        bool
	WinnerID    string
	LoserID     string
	VictoryType string
	LossType    string

	// Relationship state.
	Alliances map[string][]string // faction id → allied ids, symmetric
	Tensions  map[string]float64  // unordered pair key → tension
	Treaties  map[string]bool

	Events []Event

	// Only this faction's loss ends the run early; other losses log a
	// warning. Any faction's victory ends the run for everyone.
	PlayerID string

	Rand entropy.Source

	sentiment      *sentimentField
	deployAttempts []string
	rules          map[faction.Kind]kindRules
}

// New creates a game over the given roster. The seed feeds the sentiment
// field only; the stochastic subsystems draw from rng.
func New(cat *catalog.Catalog, roster []*faction.Faction, playerID string, seed int64, rng entropy.Source) (*Game, error) {
	g := &Game{
		Cfg:       DefaultConfig(),
		Catalog:   cat,
		Year:      0, // set on first advanceCalendar
		Factions:  roster,
		Index:     make(map[string]*faction.Faction, len(roster)),
		Alliances: make(map[string][]string),
		Tensions:  make(map[string]float64),
		Treaties:  make(map[string]bool),
		PlayerID:  playerID,
		Rand:      rng,
		sentiment: newSentimentField(seed),
		rules: map[faction.Kind]kindRules{
			faction.KindLab:        labRules{},
			faction.KindGovernment: governmentRules{},
		},
	}
	for _, f := range roster {
		if _, dup := g.Index[f.ID]; dup {
			return nil, fmt.Errorf("duplicate faction id %q", f.ID)
		}
		g.Index[f.ID] = f
	}
	if _, ok := g.Index[playerID]; !ok {
		return nil, fmt.Errorf("player faction %q not in roster", playerID)
	}
	g.refreshGlobalSafety()
	return g, nil
}

// Faction returns the faction with the given id, or nil.
func (g *Game) Faction(id string) *faction.Faction {
	return g.Index[id]
}

// Date renders the current calendar position, e.g. "Q3 2027".
func (g *Game) Date() string {
	return fmt.Sprintf("Q%d %d", g.Quarter, g.Year)
}

// logf appends a formatted entry to the turn log.
func (g *Game) logf(category, format string, args ...any) {
	g.Events = append(g.Events, Event{
		Turn:        g.Turn,
		Description: fmt.Sprintf(format, args...),
		Category:    category,
	})
}

// refreshGlobalSafety recomputes the derived global safety value: the
// capability-weighted mean of lab safety scores. Called after every phase of
// a turn so the field never drifts from its definition.
func (g *Game) refreshGlobalSafety() {
	g.GlobalSafety = computeGlobalSafety(g.Factions)
}

func computeGlobalSafety(factions []*faction.Faction) float64 {
	var weighted, weight, plain float64
	labs := 0
	for _, f := range factions {
		if !f.IsLab() {
			continue
		}
		labs++
		weighted += f.Capability * f.Safety
		weight += f.Capability
		plain += f.Safety
	}
	if labs == 0 {
		return faction.FieldMax
	}
	if weight == 0 {
		return plain / float64(labs)
	}
	return weighted / weight
}

// Labs returns the lab factions in roster order.
func (g *Game) Labs() []*faction.Faction {
	var labs []*faction.Faction
	for _, f := range g.Factions {
		if f.IsLab() {
			labs = append(labs, f)
		}
	}
	return labs
}

// bestRival returns the highest-capability lab other than f, or nil.
func (g *Game) bestRival(f *faction.Faction) *faction.Faction {
	var best *faction.Faction
	for _, other := range g.Factions {
		if other == f || !other.IsLab() {
			continue
		}
		if best == nil || other.Capability > best.Capability {
			best = other
		}
	}
	return best
}

func (g *Game) endWithVictory(winner *faction.Faction, victoryType string) {
	g.Over = true
	g.WinnerID = winner.ID
	g.VictoryType = victoryType
	g.logf("endgame", "%s achieves a %s victory", winner.Name, victoryType)
	slog.Info("game over", "winner", winner.ID, "victory", victoryType, "turn", g.Turn)
}

func (g *Game) endWithLoss(loser *faction.Faction, lossType string) {
	g.Over = true
	g.LoserID = loser.ID
	g.LossType = lossType
	g.logf("endgame", "%s falls to %s", loser.Name, lossType)
	slog.Info("game over", "loser", loser.ID, "loss", lossType, "turn", g.Turn)
}
