package advisor

import (
	"fmt"

	"github.com/talgya/ascent/internal/llm"
)

// Choice is one action the advisor will submit.
type Choice struct {
	ActionID  string `json:"action_id"`
	Openness  string `json:"openness"`
	TargetID  string `json:"target_id,omitempty"`
	Reasoning string `json:"-"`
}

// Decide builds an advisor context from the snapshot and asks Haiku for up
// to two actions. Ids the catalog does not offer this faction are dropped.
func Decide(client *llm.Client, snap *RaceSnapshot) ([]Choice, error) {
	ctx := buildContext(snap)

	raw, err := llm.GenerateAdvisorChoices(client, ctx)
	if err != nil {
		return nil, err
	}

	allowed := make(map[string]bool, len(snap.Actions))
	for _, a := range snap.Actions {
		if a.FactionSpecific != "" && a.FactionSpecific != snap.Faction.ID {
			continue
		}
		for _, kind := range a.AllowedFor {
			if kind == snap.Faction.Kind {
				allowed[a.ID] = true
			}
		}
	}

	var choices []Choice
	for _, c := range raw {
		if !allowed[c.Action] {
			continue
		}
		choices = append(choices, Choice{
			ActionID:  c.Action,
			Openness:  c.Openness,
			TargetID:  c.Target,
			Reasoning: c.Reasoning,
		})
	}
	return choices, nil
}

func buildContext(snap *RaceSnapshot) *llm.AdvisorContext {
	ctx := &llm.AdvisorContext{
		FactionID:    snap.Faction.ID,
		FactionName:  snap.Faction.Name,
		Kind:         snap.Faction.Kind,
		Date:         snap.Status.Date,
		Turn:         snap.Status.Turn,
		Capability:   snap.Faction.Capability,
		Safety:       snap.Faction.Safety,
		GlobalSafety: snap.Status.GlobalSafety,
		Exposure:     snap.Faction.Exposure,
		Resources:    snap.Faction.Resources,
		Unlocked:     snap.Faction.Unlocked,
	}

	for _, f := range snap.Standings.Standings {
		if f.ID == snap.Faction.ID {
			continue
		}
		ctx.Standings = append(ctx.Standings, fmt.Sprintf(
			"%s [%s] (%s): capability %.0f, safety %.0f, trust %.0f, influence %.0f",
			f.Name, f.ID, f.Kind, f.Capability, f.Safety, f.Trust, f.Influence))
	}

	for _, e := range snap.Events {
		ctx.Events = append(ctx.Events, e.Description)
	}

	for _, a := range snap.Actions {
		if a.FactionSpecific != "" && a.FactionSpecific != snap.Faction.ID {
			continue
		}
		for _, kind := range a.AllowedFor {
			if kind == snap.Faction.Kind {
				ctx.Actions = append(ctx.Actions, fmt.Sprintf("%s: %s", a.ID, a.Name))
				break
			}
		}
	}

	return ctx
}
