// Package faction provides the faction data model and the clamped mutation
// paths for resources, culture stats, and scores. The engine owns all writes
// to these fields; every other subsystem reads only.
package faction

// Kind determines which rules govern a faction's income and endgame checks.
type Kind uint8

const (
	KindLab Kind = iota
	KindGovernment
)

func (k Kind) String() string {
	switch k {
	case KindLab:
		return "lab"
	case KindGovernment:
		return "government"
	default:
		return "unknown"
	}
}

// ParseKind maps a catalog string to a Kind.
func ParseKind(s string) (Kind, bool) {
	switch s {
	case "lab":
		return KindLab, true
	case "government":
		return KindGovernment, true
	default:
		return 0, false
	}
}

// Branch is one of the four independent research point pools.
type Branch string

const (
	BranchCapabilities Branch = "capabilities"
	BranchSafety       Branch = "safety"
	BranchOps          Branch = "ops"
	BranchPolicy       Branch = "policy"
)

// Branches lists every branch in canonical order. Iteration over research
// pools must use this slice, never the map, so results are reproducible.
var Branches = []Branch{BranchCapabilities, BranchSafety, BranchOps, BranchPolicy}

// KnownBranch reports whether b names a real research branch.
func KnownBranch(b Branch) bool {
	for _, known := range Branches {
		if b == known {
			return true
		}
	}
	return false
}

// Resource names one of the six bounded resource fields.
type Resource string

const (
	ResCompute   Resource = "compute"
	ResTalent    Resource = "talent"
	ResCapital   Resource = "capital"
	ResData      Resource = "data"
	ResInfluence Resource = "influence"
	ResTrust     Resource = "trust"
)

// ResourceNames lists every resource in canonical order.
var ResourceNames = []Resource{ResCompute, ResTalent, ResCapital, ResData, ResInfluence, ResTrust}

// Stat names one of the auxiliary bounded stat fields.
type Stat string

const (
	StatSafetyCulture Stat = "safety_culture"
	StatOpsec         Stat = "opsec"
	StatPublicOpinion Stat = "public_opinion"
)

// KnownStat reports whether s names a real stat.
func KnownStat(s Stat) bool {
	return s == StatSafetyCulture || s == StatOpsec || s == StatPublicOpinion
}

// Resources is the bounded resource record. All fields stay in [0,100];
// mutate only through ApplyResourceDelta.
type Resources struct {
	Compute   float64 `json:"compute"`
	Talent    float64 `json:"talent"`
	Capital   float64 `json:"capital"`
	Data      float64 `json:"data"`
	Influence float64 `json:"influence"`
	Trust     float64 `json:"trust"`
}

func (r *Resources) field(res Resource) *float64 {
	switch res {
	case ResCompute:
		return &r.Compute
	case ResTalent:
		return &r.Talent
	case ResCapital:
		return &r.Capital
	case ResData:
		return &r.Data
	case ResInfluence:
		return &r.Influence
	case ResTrust:
		return &r.Trust
	default:
		return nil
	}
}

// Get returns the named resource value, or 0 for an unknown name.
func (r *Resources) Get(res Resource) float64 {
	if p := r.field(res); p != nil {
		return *p
	}
	return 0
}

// Faction is one competing agent in the race: an AI lab or a government.
type Faction struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Kind Kind   `json:"kind"`

	Resources Resources `json:"resources"`

	// Culture stats, [0,100].
	SafetyCulture float64 `json:"safety_culture"`
	Opsec         float64 `json:"opsec"`

	// Scores, [0,100].
	Capability float64 `json:"capability"`
	Safety     float64 `json:"safety"`

	// Exposure accumulates from secret actions and resets to zero on
	// detection. It is never decayed passively.
	Exposure float64 `json:"exposure"`

	PublicOpinion float64 `json:"public_opinion"` // [0,100]
	SecurityLevel float64 `json:"security_level"` // [0,10]

	// Research point pools, spent down by tech unlocks. Never negative.
	Research map[Branch]float64 `json:"research"`

	// Unlocked tech ids. Append-only.
	Unlocked map[string]bool `json:"unlocked"`

	// Set exactly once by a tech effect, never unset.
	CanDeployAGI bool `json:"can_deploy_agi"`
}

// New creates a faction with initialized research pools and an empty unlock set.
func New(id, name string, kind Kind) *Faction {
	f := &Faction{
		ID:       id,
		Name:     name,
		Kind:     kind,
		Research: make(map[Branch]float64, len(Branches)),
		Unlocked: make(map[string]bool),
	}
	for _, b := range Branches {
		f.Research[b] = 0
	}
	return f
}

// IsLab reports whether the faction is an AI lab.
func (f *Faction) IsLab() bool { return f.Kind == KindLab }
