package catalog

import (
	"strings"
	"testing"

	"github.com/talgya/ascent/internal/faction"
)

func TestLoadEmbeddedCatalogs(t *testing.T) {
	c, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	for _, id := range []string{"deploy_products", "espionage", "deploy_agi", "regulate", "form_alliance"} {
		if !c.HasAction(id) {
			t.Errorf("missing action %q", id)
		}
	}
	if len(c.ActionOrder) != len(c.Actions) {
		t.Errorf("action order length %d != map size %d", len(c.ActionOrder), len(c.Actions))
	}

	dp := c.Action("deploy_products")
	if got := dp.BaseResources[faction.ResCapital]; got != 12 {
		t.Errorf("deploy_products capital = %v, want 12", got)
	}
	if got := dp.BaseResources[faction.ResTrust]; got != 2 {
		t.Errorf("deploy_products trust = %v, want 2", got)
	}

	agi, ok := c.Techs["agi_architecture"]
	if !ok {
		t.Fatal("missing tech agi_architecture")
	}
	hasUnlock := false
	for _, e := range agi.Effects {
		if e.Type == "unlock_agi" {
			hasUnlock = true
		}
	}
	if !hasUnlock {
		t.Error("agi_architecture has no unlock_agi effect")
	}
	if len(agi.Prereqs) == 0 {
		t.Error("agi_architecture has no prereqs")
	}
}

func TestByBranchPreservesDeclarationOrder(t *testing.T) {
	c, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	caps := c.ByBranch[faction.BranchCapabilities]
	if len(caps) == 0 {
		t.Fatal("no capabilities techs")
	}
	if caps[0].ID != "scaling_laws" {
		t.Errorf("first capabilities tech = %q, want scaling_laws", caps[0].ID)
	}

	// Declaration order must match TechOrder filtered by branch.
	i := 0
	for _, id := range c.TechOrder {
		if c.Techs[id].Branch != faction.BranchCapabilities {
			continue
		}
		if caps[i].ID != id {
			t.Errorf("ByBranch[%d] = %q, want %q", i, caps[i].ID, id)
		}
		i++
	}
}

func validAction() *Action {
	return &Action{ID: "act", Name: "Act", AllowedFor: []string{"lab"}}
}

func validTech(id string, prereqs ...string) *Tech {
	return &Tech{ID: id, Name: id, Branch: faction.BranchOps, Cost: 10, Prereqs: prereqs}
}

func TestBuildRejectsBadDefinitions(t *testing.T) {
	tests := []struct {
		name    string
		actions []*Action
		techs   []*Tech
		wantErr string
	}{
		{
			name:    "duplicate action id",
			actions: []*Action{validAction(), validAction()},
			wantErr: "duplicate action id",
		},
		{
			name:    "unknown faction kind",
			actions: []*Action{{ID: "a", AllowedFor: []string{"megacorp"}}},
			wantErr: "unknown faction kind",
		},
		{
			name:    "no allowed kinds",
			actions: []*Action{{ID: "a"}},
			wantErr: "allows no faction kinds",
		},
		{
			name: "unknown resource",
			actions: []*Action{{
				ID: "a", AllowedFor: []string{"lab"},
				BaseResources: faction.ResourceDelta{faction.Resource("mana"): 1},
			}},
			wantErr: "unknown resource",
		},
		{
			name: "unknown research branch",
			actions: []*Action{{
				ID: "a", AllowedFor: []string{"lab"},
				BaseResearch: map[faction.Branch]float64{faction.Branch("arcana"): 1},
			}},
			wantErr: "unknown research branch",
		},
		{
			name:    "unknown prereq",
			techs:   []*Tech{validTech("t1", "ghost")},
			wantErr: "unknown prereq",
		},
		{
			name:    "non-positive cost",
			techs:   []*Tech{{ID: "t1", Branch: faction.BranchOps, Cost: 0}},
			wantErr: "non-positive cost",
		},
		{
			name:    "unknown effect type",
			techs:   []*Tech{{ID: "t1", Branch: faction.BranchOps, Cost: 5, Effects: []TechEffect{{Type: "teleport"}}}},
			wantErr: "unknown effect type",
		},
		{
			name:    "prereq cycle",
			techs:   []*Tech{validTech("t1", "t2"), validTech("t2", "t1")},
			wantErr: "cycle",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Build(tt.actions, tt.techs)
			if err == nil {
				t.Fatal("Build succeeded, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestActionPanicsOnUnknownID(t *testing.T) {
	c, err := Build([]*Action{validAction()}, nil)
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	defer func() {
		if recover() == nil {
			t.Error("Action(unknown) did not panic")
		}
	}()
	c.Action("nope")
}

func TestAllows(t *testing.T) {
	a := &Action{ID: "a", AllowedFor: []string{"government"}}
	if a.Allows(faction.KindLab) {
		t.Error("lab allowed on government-only action")
	}
	if !a.Allows(faction.KindGovernment) {
		t.Error("government not allowed on its own action")
	}
}
