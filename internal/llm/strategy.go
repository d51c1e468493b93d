// Advisor cognition: the LLM plays one faction's chief strategist, turning
// a situation report into at most two concrete actions per quarter.
package llm

import (
	"encoding/json"
	"fmt"
	"strings"
)

// AdvisorChoice is a single action proposed by the LLM advisor.
type AdvisorChoice struct {
	Action    string `json:"action"`
	Openness  string `json:"openness"`
	Target    string `json:"target"`
	Reasoning string `json:"reasoning"`
}

// AdvisorContext provides the situational data the advisor needs.
type AdvisorContext struct {
	FactionID   string
	FactionName string
	Kind        string // "lab" or "government"
	Date        string // e.g. "Q3 2027"
	Turn        int

	Capability   float64
	Safety       float64
	GlobalSafety float64
	Exposure     float64
	Resources    map[string]float64

	Standings []string // "Apex Intelligence: capability 44, safety 20"
	Events    []string // Recent public log lines
	Actions   []string // "espionage: steal research from a rival lab (needs target)"
	Unlocked  []string
}

// GenerateAdvisorChoices calls Haiku to produce up to two actions for the
// faction this quarter. The caller validates ids against the live catalog;
// this layer only enforces shape.
func GenerateAdvisorChoices(client *Client, ctx *AdvisorContext) ([]AdvisorChoice, error) {
	if !client.Enabled() {
		return nil, fmt.Errorf("LLM client not configured")
	}

	system := buildAdvisorSystemPrompt(ctx)
	user := buildAdvisorUserPrompt(ctx)

	response, err := client.Complete(system, user, 500)
	if err != nil {
		return nil, fmt.Errorf("advisor decision: %w", err)
	}

	return parseAdvisorResponse(response)
}

func buildAdvisorSystemPrompt(ctx *AdvisorContext) string {
	return fmt.Sprintf(
		`You are the chief strategist of %s, a %s in a global race toward
transformative AI. It is %s. Capability without safety ends in catastrophe;
safety without capability ends in irrelevance. Every quarter you commit to at
most two actions.

Respond ONLY with a JSON array of 1-2 actions. Each action has:
- "action": an id from the available actions list
- "openness": "open" or "secret" — secret work is faster but erodes trust
  and risks exposure
- "target": a faction id when the action needs one, otherwise ""
- "reasoning": one sentence explaining why`,
		ctx.FactionName, ctx.Kind, ctx.Date,
	)
}

func buildAdvisorUserPrompt(ctx *AdvisorContext) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Your position in %s (turn %d):\n", ctx.Date, ctx.Turn)
	fmt.Fprintf(&b, "- capability %.0f, safety %.0f, exposure %.0f\n",
		ctx.Capability, ctx.Safety, ctx.Exposure)
	fmt.Fprintf(&b, "- global safety index: %.0f\n", ctx.GlobalSafety)
	for _, name := range []string{"compute", "talent", "capital", "data", "influence", "trust"} {
		if v, ok := ctx.Resources[name]; ok {
			fmt.Fprintf(&b, "- %s: %.0f\n", name, v)
		}
	}
	b.WriteString("\n")

	if len(ctx.Unlocked) > 0 {
		fmt.Fprintf(&b, "Technologies unlocked: %s\n\n", strings.Join(ctx.Unlocked, ", "))
	}

	if len(ctx.Standings) > 0 {
		b.WriteString("The field:\n")
		for _, s := range ctx.Standings {
			fmt.Fprintf(&b, "- %s\n", s)
		}
		b.WriteString("\n")
	}

	if len(ctx.Events) > 0 {
		b.WriteString("Recent developments:\n")
		for _, e := range ctx.Events {
			fmt.Fprintf(&b, "- %s\n", e)
		}
		b.WriteString("\n")
	}

	b.WriteString("Available actions:\n")
	for _, a := range ctx.Actions {
		fmt.Fprintf(&b, "- %s\n", a)
	}

	b.WriteString("\nWhat do you do this quarter? Respond with a JSON array of 1-2 actions.")
	return b.String()
}

func parseAdvisorResponse(response string) ([]AdvisorChoice, error) {
	// Find JSON array in response (the LLM might include explanation text).
	start := strings.Index(response, "[")
	end := strings.LastIndex(response, "]")
	if start == -1 || end == -1 || end <= start {
		return nil, fmt.Errorf("no JSON array found in response")
	}

	jsonStr := response[start : end+1]
	var choices []AdvisorChoice
	if err := json.Unmarshal([]byte(jsonStr), &choices); err != nil {
		return nil, fmt.Errorf("parse choices: %w", err)
	}

	if len(choices) > 2 {
		choices = choices[:2]
	}

	var valid []AdvisorChoice
	for _, c := range choices {
		if c.Action == "" {
			continue
		}
		switch c.Openness {
		case "open", "secret":
		case "":
			c.Openness = "open"
		default:
			continue
		}
		valid = append(valid, c)
	}

	return valid, nil
}
