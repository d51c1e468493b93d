package faction

// Bounds for clamped fields.
const (
	FieldMin    = 0.0
	FieldMax    = 100.0
	SecurityMax = 10.0
)

// ResourceDelta is a partial set of resource changes. Absent keys are no-ops.
type ResourceDelta map[Resource]float64

// StatDelta is a partial set of culture/auxiliary stat changes.
type StatDelta map[Stat]float64

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// ApplyResourceDelta adds each present delta to the matching resource and
// clamps to [0,100]. Unknown resource names are ignored. This is the only
// sanctioned write path for resource fields.
func ApplyResourceDelta(f *Faction, d ResourceDelta) {
	for _, res := range ResourceNames {
		delta, ok := d[res]
		if !ok {
			continue
		}
		p := f.Resources.field(res)
		*p = clamp(*p+delta, FieldMin, FieldMax)
	}
}

// ApplyStatDelta adds each present delta to the matching stat and clamps.
func ApplyStatDelta(f *Faction, d StatDelta) {
	if delta, ok := d[StatSafetyCulture]; ok {
		f.SafetyCulture = clamp(f.SafetyCulture+delta, FieldMin, FieldMax)
	}
	if delta, ok := d[StatOpsec]; ok {
		f.Opsec = clamp(f.Opsec+delta, FieldMin, FieldMax)
	}
	if delta, ok := d[StatPublicOpinion]; ok {
		f.PublicOpinion = clamp(f.PublicOpinion+delta, FieldMin, FieldMax)
	}
}

// ApplyScoreDelta adds to the capability and safety scores and clamps.
func ApplyScoreDelta(f *Faction, capability, safety float64) {
	f.Capability = clamp(f.Capability+capability, FieldMin, FieldMax)
	f.Safety = clamp(f.Safety+safety, FieldMin, FieldMax)
}

// AddSecurityLevel adjusts the security level within [0,10].
func AddSecurityLevel(f *Faction, delta float64) {
	f.SecurityLevel = clamp(f.SecurityLevel+delta, FieldMin, SecurityMax)
}
