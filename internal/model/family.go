package model

import "strings"

// Family identifies one of the supported structural archetypes.
type Family int

const (
	StarBox Family = iota + 1
	ThreePointBending
	CrashTube
)

// String returns the canonical family name used in workspace paths and logs.
func (f Family) String() string {
	switch f {
	case StarBox:
		return "StarBox"
	case ThreePointBending:
		return "ThreePointBending"
	case CrashTube:
		return "CrashTube"
	default:
		return "Unknown"
	}
}

// Valid reports whether f is one of the known families.
func (f Family) Valid() bool {
	return f >= StarBox && f <= CrashTube
}

// ParseFamily resolves a family from its name, case-insensitively.
// Returns false if the name matches no known family.
func ParseFamily(name string) (Family, bool) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "starbox":
		return StarBox, true
	case "threepointbending":
		return ThreePointBending, true
	case "crashtube":
		return CrashTube, true
	default:
		return 0, false
	}
}

// MaterialCard distinguishes how the solver records impact force: OpenRadioss
// cards write force directly, LS-Dyna cards write impulse that must be
// differentiated over time.
type MaterialCard int

const (
	CardLSDyna MaterialCard = iota
	CardOpenRadioss
)

// Params is the immutable per-family parameter block: deck artifact names,
// result-table lookup keys, impactor constants and the metric policy. It
// replaces runtime attribute injection with declared defaults.
type Params struct {
	InputFileName   string // solver input deck
	ResultFileName  string // time-series table written by the full run
	StarterFileName string // starter summary written by the partial run

	TrackNodeKey string // substring matching the tracked node displacement column
	ForceKey     string // substring matching the impactor force/impulse column

	MaterialCard MaterialCard

	WallMass       float64 // rigid impactor mass, subtracted from the extracted total
	WallVelocity   float64 // impactor initial velocity
	ImpactorOffset float64 // initial gap between impactor and structure
	MassScale      float64 // unit conversion applied to the extracted mass

	DefaultMetric    string
	ForbiddenMetrics []string
}

// FamilyParams returns the parameter block for the given family. The returned
// value is a copy; callers may not mutate shared state through it.
func FamilyParams(f Family) Params {
	switch f {
	case StarBox:
		return Params{
			InputFileName:    "combine.k",
			ResultFileName:   "combineT01.csv",
			StarterFileName:  "combine_0000.out",
			TrackNodeKey:     "DATABASE_HISTORY_NODE99999",
			ForceKey:         "TH-RWALL1",
			MaterialCard:     CardLSDyna,
			WallMass:         250.0,
			WallVelocity:     7.0,
			ImpactorOffset:   1.0,
			MassScale:        1.0,
			DefaultMetric:    "penalized_sea",
			ForbiddenMetrics: []string{"penalized_mass"},
		}
	case ThreePointBending:
		return Params{
			InputFileName:   "ThreePointBending_0000.rad",
			ResultFileName:  "ThreePointBendingT01.csv",
			StarterFileName: "ThreePointBending_0000.out",
			TrackNodeKey:    "intrusionTrack99999",
			ForceKey:        "TH_RWALL1",
			MaterialCard:    CardOpenRadioss,
			WallMass:        0.086,
			WallVelocity:    5000.0,
			ImpactorOffset:  2.5,
			// Starter reports metric tons, metrics are in kg.
			MassScale:        1000.0,
			DefaultMetric:    "penalized_mass",
			ForbiddenMetrics: []string{"penalized_sea"},
		}
	case CrashTube:
		return Params{
			InputFileName:   "combine.k",
			ResultFileName:  "combineT01.csv",
			StarterFileName: "combine_0000.out",
			TrackNodeKey:    "DATABASE_HISTORY_NODE99999",
			ForceKey:        "TH-RWALL1IMPACTOR",
			MaterialCard:    CardLSDyna,
			WallMass:        300.0,
			WallVelocity:    8.33,
			ImpactorOffset:  2.5,
			MassScale:       1.0,
			DefaultMetric:   "load_uniformity",
			ForbiddenMetrics: []string{
				"penalized_sea", "penalized_mass",
				"absorbed_energy", "specific_energy_absorbed",
			},
		}
	default:
		return Params{}
	}
}

// AbsorbedEnergy returns the impactor's initial kinetic energy, the energy
// budget the structure can absorb. ThreePointBending states mass in tons and
// velocity in mm/s, the others in kg and m/s.
func (p Params) AbsorbedEnergy(f Family) float64 {
	if f == ThreePointBending {
		return (p.WallMass * 1000.0) * (p.WallVelocity / 1000.0) * (p.WallVelocity / 1000.0) / 2.0
	}
	return p.WallMass * p.WallVelocity * p.WallVelocity / 2.0
}

// MetricForbidden reports whether the metric name is excluded for the family.
func (p Params) MetricForbidden(name string) bool {
	name = strings.TrimSpace(strings.ToLower(name))
	for _, forbidden := range p.ForbiddenMetrics {
		if name == forbidden {
			return true
		}
	}
	return false
}
