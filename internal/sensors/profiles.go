package sensors

import (
	"math"
	"sort"
	"strings"

	"github.com/Capstone-E1/aquasmart_treatment/internal/models"
)

// DefaultWindowSize is the number of readings kept per sensor
const DefaultWindowSize = 5

// DefaultEpsilon is the trend dead-band for sensors without a profile
const DefaultEpsilon = 1.0

// Breakpoint maps every value up to and including UpperBound to Status
type Breakpoint struct {
	UpperBound float64             `json:"upper_bound"`
	Status     models.SensorStatus `json:"status"`
}

// Profile is the classification table for one parameter.
// Breakpoints are scanned in ascending order; values above the last one are critical.
type Profile struct {
	ID          string                 `json:"id"`
	Name        string                 `json:"name"`
	Unit        string                 `json:"unit"`
	Epsilon     float64                `json:"epsilon"`
	Breakpoints []Breakpoint           `json:"breakpoints"`
	Bounds      models.ThresholdBounds `json:"bounds"`
	Baseline    float64                `json:"baseline"`
}

// StatusFor returns the band of the first breakpoint v falls under
func (p Profile) StatusFor(v float64) models.SensorStatus {
	for _, bp := range p.Breakpoints {
		if v <= bp.UpperBound {
			return bp.Status
		}
	}
	return models.SensorCritical
}

var profiles = map[string]Profile{
	"turbidity": {
		ID: "turbidity", Name: "Turbidity", Unit: "NTU", Epsilon: 1,
		Breakpoints: []Breakpoint{
			{1, models.SensorOptimal},
			{5, models.SensorGood},
			{50, models.SensorWarning},
		},
		Bounds:   models.ThresholdBounds{Min: 0, Max: 50},
		Baseline: 12,
	},
	"ph": {
		ID: "ph", Name: "pH", Unit: "", Epsilon: 0.02,
		Breakpoints: []Breakpoint{
			{6.0, models.SensorCritical},
			{6.5, models.SensorWarning},
			{7.5, models.SensorOptimal},
			{8.5, models.SensorGood},
			{9.0, models.SensorWarning},
		},
		Bounds:   models.ThresholdBounds{Min: 6.5, Max: 8.5},
		Baseline: 7.2,
	},
	"cod": {
		ID: "cod", Name: "COD", Unit: "mg/L", Epsilon: 1,
		Breakpoints: []Breakpoint{
			{50, models.SensorOptimal},
			{100, models.SensorGood},
			{150, models.SensorWarning},
		},
		Bounds:   models.ThresholdBounds{Min: 0, Max: 150},
		Baseline: 90,
	},
	"bod": {
		ID: "bod", Name: "BOD", Unit: "mg/L", Epsilon: 1,
		Breakpoints: []Breakpoint{
			{10, models.SensorOptimal},
			{20, models.SensorGood},
			{30, models.SensorWarning},
		},
		Bounds:   models.ThresholdBounds{Min: 0, Max: 30},
		Baseline: 18,
	},
	"tss": {
		ID: "tss", Name: "TSS", Unit: "mg/L", Epsilon: 1,
		Breakpoints: []Breakpoint{
			{30, models.SensorOptimal},
			{60, models.SensorGood},
			{100, models.SensorWarning},
		},
		Bounds:   models.ThresholdBounds{Min: 0, Max: 100},
		Baseline: 45,
	},
	"tds": {
		ID: "tds", Name: "TDS", Unit: "ppm", Epsilon: 1,
		Breakpoints: []Breakpoint{
			{300, models.SensorOptimal},
			{500, models.SensorGood},
			{1000, models.SensorWarning},
		},
		Bounds:   models.ThresholdBounds{Min: 0, Max: 1000},
		Baseline: 420,
	},
	"nitrogen": {
		ID: "nitrogen", Name: "Nitrogen", Unit: "mg/L", Epsilon: 0.5,
		Breakpoints: []Breakpoint{
			{5, models.SensorOptimal},
			{8, models.SensorGood},
			{10, models.SensorWarning},
		},
		Bounds:   models.ThresholdBounds{Min: 0, Max: 10},
		Baseline: 6,
	},
	"phosphorus": {
		ID: "phosphorus", Name: "Phosphorus", Unit: "mg/L", Epsilon: 0.02,
		Breakpoints: []Breakpoint{
			{0.5, models.SensorOptimal},
			{0.8, models.SensorGood},
			{1.0, models.SensorWarning},
		},
		Bounds:   models.ThresholdBounds{Min: 0, Max: 1},
		Baseline: 0.6,
	},
	"flow": {
		ID: "flow", Name: "Flow Rate", Unit: "m³/h", Epsilon: 1,
		Breakpoints: []Breakpoint{
			{50, models.SensorCritical},
			{100, models.SensorWarning},
			{400, models.SensorOptimal},
			{500, models.SensorGood},
		},
		Bounds:   models.ThresholdBounds{Min: 100, Max: 500},
		Baseline: 250,
	},
	"efficiency": {
		ID: "efficiency", Name: "Removal Efficiency", Unit: "%", Epsilon: 1,
		Breakpoints: []Breakpoint{
			{60, models.SensorCritical},
			{75, models.SensorWarning},
			{90, models.SensorGood},
			{100, models.SensorOptimal},
		},
		Bounds:   models.ThresholdBounds{Min: 75, Max: 100},
		Baseline: 88,
	},
	"dissolved_oxygen": {
		ID: "dissolved_oxygen", Name: "Dissolved Oxygen", Unit: "mg/L", Epsilon: 0.1,
		Breakpoints: []Breakpoint{
			{1, models.SensorCritical},
			{2, models.SensorWarning},
			{4, models.SensorGood},
			{8, models.SensorOptimal},
			{12, models.SensorGood},
		},
		Bounds:   models.ThresholdBounds{Min: 2, Max: 8},
		Baseline: 5.5,
	},
}

// NormalizeID folds a sensor id to its profile key ("pH" -> "ph", "Dissolved-Oxygen" -> "dissolved_oxygen")
func NormalizeID(id string) string {
	id = strings.ToLower(strings.TrimSpace(id))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(id)
}

// ProfileFor returns the classification profile for a sensor id
func ProfileFor(id string) (Profile, bool) {
	p, ok := profiles[NormalizeID(id)]
	return p, ok
}

// Profiles returns every known profile sorted by id
func Profiles() []Profile {
	out := make([]Profile, 0, len(profiles))
	for _, p := range profiles {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// BoundsProfile builds a profile for a sensor without a table: below Min is a
// warning, inside the bounds is good, above Max is critical.
func BoundsProfile(id, unit string, bounds models.ThresholdBounds) Profile {
	p := Profile{ID: NormalizeID(id), Name: id, Unit: unit, Epsilon: DefaultEpsilon, Bounds: bounds}
	if bounds.Max > bounds.Min {
		p.Breakpoints = []Breakpoint{
			{math.Nextafter(bounds.Min, math.Inf(-1)), models.SensorWarning},
			{bounds.Max, models.SensorGood},
		}
		p.Baseline = (bounds.Min + bounds.Max) / 2
	}
	return p
}
