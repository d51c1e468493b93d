package faction

// Seed returns the standard five-faction roster: three frontier labs and two
// government blocs. Values are starting positions, not balance-neutral; the
// asymmetry is the game.
func Seed() []*Faction {
	nexus := New("nexus", "Nexus Dynamics", KindLab)
	nexus.Resources = Resources{Compute: 60, Talent: 55, Capital: 50, Data: 55, Influence: 30, Trust: 50}
	nexus.SafetyCulture = 40
	nexus.Opsec = 35
	nexus.Capability = 22
	nexus.Safety = 15
	nexus.PublicOpinion = 50
	nexus.SecurityLevel = 2

	apex := New("apex", "Apex Intelligence", KindLab)
	apex.Resources = Resources{Compute: 55, Talent: 60, Capital: 55, Data: 45, Influence: 35, Trust: 45}
	apex.SafetyCulture = 30
	apex.Opsec = 45
	apex.Capability = 25
	apex.Safety = 10
	apex.PublicOpinion = 45
	apex.SecurityLevel = 3

	garden := New("garden", "Garden Labs", KindLab)
	garden.Resources = Resources{Compute: 45, Talent: 50, Capital: 40, Data: 40, Influence: 25, Trust: 60}
	garden.SafetyCulture = 65
	garden.Opsec = 30
	garden.Capability = 15
	garden.Safety = 30
	garden.PublicOpinion = 60
	garden.SecurityLevel = 2

	accord := New("accord", "Atlantic Accord", KindGovernment)
	accord.Resources = Resources{Compute: 20, Talent: 30, Capital: 60, Data: 25, Influence: 65, Trust: 55}
	accord.SafetyCulture = 50
	accord.Opsec = 40
	accord.Capability = 5
	accord.Safety = 20
	accord.PublicOpinion = 50
	accord.SecurityLevel = 4

	meridian := New("meridian", "Meridian Compact", KindGovernment)
	meridian.Resources = Resources{Compute: 15, Talent: 25, Capital: 55, Data: 20, Influence: 55, Trust: 60}
	meridian.SafetyCulture = 55
	meridian.Opsec = 45
	meridian.Capability = 5
	meridian.Safety = 25
	meridian.PublicOpinion = 55
	meridian.SecurityLevel = 4

	return []*Faction{nexus, apex, garden, accord, meridian}
}
