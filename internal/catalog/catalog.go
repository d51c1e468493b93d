// Package catalog provides the static action and tech catalogs. Catalogs are
// loaded once at startup from embedded YAML and validated; any inconsistency
// is a fatal configuration error, never a runtime condition.
package catalog

import (
	"fmt"

	"github.com/talgya/ascent/internal/faction"
)

// ScoreEffects is an optional capability/safety score change on an action.
type ScoreEffects struct {
	Capability float64 `yaml:"capability"`
	Safety     float64 `yaml:"safety"`
}

// Action is one entry in the closed action catalog. The action's id doubles
// as its dispatch kind.
type Action struct {
	ID              string   `yaml:"id"`
	Name            string   `yaml:"name"`
	AllowedFor      []string `yaml:"allowed_for"`
	FactionSpecific string   `yaml:"faction_specific"`

	BaseResearch  map[faction.Branch]float64 `yaml:"base_research"`
	BaseResources faction.ResourceDelta      `yaml:"base_resources"`

	// Added to the actor's exposure accumulator when chosen secretly.
	Exposure float64 `yaml:"exposure"`

	ScoreEffects       *ScoreEffects `yaml:"score_effects"`
	SecurityLevelDelta float64       `yaml:"security_level_delta"`
}

// Allows reports whether a faction of kind k may select this action.
func (a *Action) Allows(k faction.Kind) bool {
	for _, name := range a.AllowedFor {
		if name == k.String() {
			return true
		}
	}
	return false
}

// TechEffect is one typed effect applied when a node unlocks.
type TechEffect struct {
	Type     string           `yaml:"type"` // capability, safety, resource, stat, unlock_agi
	Resource faction.Resource `yaml:"resource"`
	Stat     faction.Stat     `yaml:"stat"`
	Amount   float64          `yaml:"amount"`
}

// Tech is one prerequisite-gated node in a research branch.
type Tech struct {
	ID      string         `yaml:"id"`
	Name    string         `yaml:"name"`
	Branch  faction.Branch `yaml:"branch"`
	Cost    float64        `yaml:"cost"`
	Prereqs []string       `yaml:"prereqs"`
	Effects []TechEffect   `yaml:"effects"`
}

// Catalog holds validated, immutable lookups plus declaration-order slices.
// Unlock resolution walks ByBranch in declaration order on purpose: catalog
// order is pacing order.
type Catalog struct {
	Actions     map[string]*Action
	ActionOrder []string

	Techs     map[string]*Tech
	TechOrder []string
	ByBranch  map[faction.Branch][]*Tech
}

// Action returns the definition for id. Unknown ids panic: the catalog is
// closed and every caller-supplied id is validated before dispatch.
func (c *Catalog) Action(id string) *Action {
	a, ok := c.Actions[id]
	if !ok {
		panic(fmt.Sprintf("catalog: unknown action %q", id))
	}
	return a
}

// HasAction reports whether id names a cataloged action.
func (c *Catalog) HasAction(id string) bool {
	_, ok := c.Actions[id]
	return ok
}

// Build assembles and validates a catalog from parsed definitions.
func Build(actions []*Action, techs []*Tech) (*Catalog, error) {
	c := &Catalog{
		Actions:  make(map[string]*Action, len(actions)),
		Techs:    make(map[string]*Tech, len(techs)),
		ByBranch: make(map[faction.Branch][]*Tech),
	}

	for _, a := range actions {
		if a.ID == "" {
			return nil, fmt.Errorf("action with empty id")
		}
		if _, dup := c.Actions[a.ID]; dup {
			return nil, fmt.Errorf("duplicate action id %q", a.ID)
		}
		if len(a.AllowedFor) == 0 {
			return nil, fmt.Errorf("action %q allows no faction kinds", a.ID)
		}
		for _, kind := range a.AllowedFor {
			if _, ok := faction.ParseKind(kind); !ok {
				return nil, fmt.Errorf("action %q: unknown faction kind %q", a.ID, kind)
			}
		}
		for branch := range a.BaseResearch {
			if !faction.KnownBranch(branch) {
				return nil, fmt.Errorf("action %q: unknown research branch %q", a.ID, branch)
			}
		}
		for res := range a.BaseResources {
			if !knownResource(res) {
				return nil, fmt.Errorf("action %q: unknown resource %q", a.ID, res)
			}
		}
		c.Actions[a.ID] = a
		c.ActionOrder = append(c.ActionOrder, a.ID)
	}

	for _, t := range techs {
		if t.ID == "" {
			return nil, fmt.Errorf("tech with empty id")
		}
		if _, dup := c.Techs[t.ID]; dup {
			return nil, fmt.Errorf("duplicate tech id %q", t.ID)
		}
		if !faction.KnownBranch(t.Branch) {
			return nil, fmt.Errorf("tech %q: unknown branch %q", t.ID, t.Branch)
		}
		if t.Cost <= 0 {
			return nil, fmt.Errorf("tech %q: non-positive cost %v", t.ID, t.Cost)
		}
		for _, e := range t.Effects {
			switch e.Type {
			case "capability", "safety", "unlock_agi":
			case "resource":
				if !knownResource(e.Resource) {
					return nil, fmt.Errorf("tech %q: unknown resource %q", t.ID, e.Resource)
				}
			case "stat":
				if !faction.KnownStat(e.Stat) {
					return nil, fmt.Errorf("tech %q: unknown stat %q", t.ID, e.Stat)
				}
			default:
				return nil, fmt.Errorf("tech %q: unknown effect type %q", t.ID, e.Type)
			}
		}
		c.Techs[t.ID] = t
		c.TechOrder = append(c.TechOrder, t.ID)
		c.ByBranch[t.Branch] = append(c.ByBranch[t.Branch], t)
	}

	for _, t := range c.Techs {
		for _, p := range t.Prereqs {
			if _, ok := c.Techs[p]; !ok {
				return nil, fmt.Errorf("tech %q: unknown prereq %q", t.ID, p)
			}
		}
	}
	if err := c.checkAcyclic(); err != nil {
		return nil, err
	}

	return c, nil
}

func knownResource(res faction.Resource) bool {
	for _, known := range faction.ResourceNames {
		if res == known {
			return true
		}
	}
	return false
}

// checkAcyclic rejects cycles in the prereq graph via DFS coloring.
func (c *Catalog) checkAcyclic() error {
	const (
		white = 0
		gray  = 1
		black = 2
	)
	color := make(map[string]int, len(c.Techs))

	var visit func(id string) error
	visit = func(id string) error {
		switch color[id] {
		case gray:
			return fmt.Errorf("tech prereq cycle through %q", id)
		case black:
			return nil
		}
		color[id] = gray
		for _, p := range c.Techs[id].Prereqs {
			if err := visit(p); err != nil {
				return err
			}
		}
		color[id] = black
		return nil
	}

	for _, id := range c.TechOrder {
		if err := visit(id); err != nil {
			return err
		}
	}
	return nil
}
