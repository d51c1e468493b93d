// Briefing generation: converts the quarter's events into an intelligence
// digest for the player.
package llm

import (
	"fmt"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
)

// BriefingData holds the raw data needed to generate a quarterly briefing.
type BriefingData struct {
	Date         string
	Turn         int
	GlobalSafety float64

	// Recent events by category.
	Research  []string
	Diplomacy []string
	Incidents []string
	Policy    []string

	Standings []FactionSummary
}

// FactionSummary is a brief description of a faction for the briefing.
type FactionSummary struct {
	Name       string
	Kind       string
	Capability float64
	Safety     float64
	Trust      float64
	Influence  float64
}

// Briefing holds a generated quarterly digest.
type Briefing struct {
	GeneratedAt time.Time `json:"generated_at"`
	Date        string    `json:"date"`
	Content     string    `json:"content"`
}

// GenerateBriefing creates a quarterly intelligence briefing using Haiku,
// falling back to plain prose when the client is disabled or the call fails.
func GenerateBriefing(client *Client, data *BriefingData) (*Briefing, error) {
	if !client.Enabled() {
		return &Briefing{
			GeneratedAt: time.Now(),
			Date:        data.Date,
			Content:     fallbackBriefing(data),
		}, nil
	}

	system := `You are the senior analyst preparing a quarterly intelligence
briefing on the global race toward transformative AI. Your readers are
decision-makers: be concrete, cite the factions by name, and weigh capability
gains against safety postures. Note who is pulling ahead, who is exposed, and
where the diplomatic ground is shifting. Keep it under 500 words. Do not
break character or reference a simulation.`

	content, err := client.Complete(system, buildBriefingPrompt(data), 900)
	if err != nil {
		return &Briefing{
			GeneratedAt: time.Now(),
			Date:        data.Date,
			Content:     fallbackBriefing(data),
		}, nil
	}

	return &Briefing{
		GeneratedAt: time.Now(),
		Date:        data.Date,
		Content:     content,
	}, nil
}

func buildBriefingPrompt(data *BriefingData) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s — the %s quarter of the race. Global safety index: %.0f/100.\n\n",
		data.Date, humanize.Ordinal(data.Turn), data.GlobalSafety)

	b.WriteString("Standings:\n")
	for _, f := range data.Standings {
		fmt.Fprintf(&b, "- %s (%s): capability %.0f, safety %.0f, trust %.0f, influence %.0f\n",
			f.Name, f.Kind, f.Capability, f.Safety, f.Trust, f.Influence)
	}
	b.WriteString("\n")

	section := func(title string, lines []string) {
		if len(lines) == 0 {
			return
		}
		fmt.Fprintf(&b, "%s:\n", title)
		for _, l := range lines {
			fmt.Fprintf(&b, "- %s\n", l)
		}
		b.WriteString("\n")
	}
	section("Research developments", data.Research)
	section("Diplomatic moves", data.Diplomacy)
	section("Incidents and exposures", data.Incidents)
	section("Policy actions", data.Policy)

	b.WriteString("Write the briefing.")
	return b.String()
}

// fallbackBriefing produces a serviceable digest without the LLM.
func fallbackBriefing(data *BriefingData) string {
	var b strings.Builder

	fmt.Fprintf(&b, "INTELLIGENCE BRIEFING — %s\n", data.Date)
	fmt.Fprintf(&b, "The %s quarter of the race. Global safety index: %.0f/100.\n\n",
		humanize.Ordinal(data.Turn), data.GlobalSafety)

	var leader *FactionSummary
	for i := range data.Standings {
		f := &data.Standings[i]
		if f.Kind != "lab" {
			continue
		}
		if leader == nil || f.Capability > leader.Capability {
			leader = f
		}
	}
	if leader != nil {
		fmt.Fprintf(&b, "%s leads the field at capability %.0f (safety %.0f).\n\n",
			leader.Name, leader.Capability, leader.Safety)
	}

	b.WriteString("STANDINGS\n")
	for _, f := range data.Standings {
		fmt.Fprintf(&b, "  %-24s cap %5.1f  safety %5.1f  trust %5.1f\n",
			f.Name, f.Capability, f.Safety, f.Trust)
	}
	b.WriteString("\n")

	section := func(title string, lines []string) {
		if len(lines) == 0 {
			return
		}
		fmt.Fprintf(&b, "%s\n", title)
		for _, l := range lines {
			fmt.Fprintf(&b, "  - %s\n", l)
		}
		b.WriteString("\n")
	}
	section("RESEARCH", data.Research)
	section("DIPLOMACY", data.Diplomacy)
	section("INCIDENTS", data.Incidents)
	section("POLICY", data.Policy)

	return b.String()
}
