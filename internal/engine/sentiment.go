package engine

import (
	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/talgya/ascent/internal/faction"
)

// sentimentField drives the slow drift of public opinion: smooth,
// deterministic-from-seed noise rather than RNG draws, so opinion swings are
// replayable and never perturb the engine's random call count.
type sentimentField struct {
	noise opensimplex.Noise
}

func newSentimentField(seed int64) *sentimentField {
	return &sentimentField{noise: opensimplex.NewNormalized(seed)}
}

// drift returns a per-turn opinion delta in roughly [-2, 2].
func (s *sentimentField) drift(turn, lane int) float64 {
	v := s.noise.Eval2(float64(turn)*0.15, float64(lane)*7.3)
	return (v - 0.5) * 4
}

// driftPublicOpinion applies the sentiment field to every faction, nudged by
// how the faction's trust compares to the midpoint.
func (g *Game) driftPublicOpinion() {
	for i, f := range g.Factions {
		delta := g.sentiment.drift(g.Turn, i)
		delta += (f.Resources.Trust - 50) * 0.02
		faction.ApplyStatDelta(f, faction.StatDelta{faction.StatPublicOpinion: delta})
	}
}
