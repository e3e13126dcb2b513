// Package treatment decides which wastewater treatment stages a sample needs.
// Everything here is a pure function of its arguments and the constants below;
// callers may evaluate samples concurrently without coordination.
package treatment

import "github.com/Capstone-E1/aquasmart_treatment/internal/models"

// Stage names as reported in results
const (
	PrimaryStage   = "Primary Treatment"
	SecondaryStage = "Secondary Treatment"
	TertiaryStage  = "Tertiary Treatment"
)

// Threshold constants. A value exceeds a threshold only when strictly beyond it.
const (
	TurbidityLimit  = 50.0  // NTU
	TSSLimit        = 100.0 // mg/L
	CODLimit        = 150.0 // mg/L
	BODLimit        = 30.0  // mg/L
	NitrogenLimit   = 10.0  // mg/L
	PhosphorusLimit = 1.0   // mg/L
	PhMin           = 6.5
	PhMax           = 8.5
)

// Estimation factors used when TSS or BOD were not measured
const (
	TSSPerTurbidity = 1.5
	BODPerCOD       = 0.5
)

// Evaluate checks a sample against the primary, secondary and tertiary threshold sets.
// Missing TSS and BOD are estimated; explicit values always win.
func Evaluate(params models.WaterQualityParameters) (primary, secondary, tertiary models.TreatmentStage) {
	tss := EstimateTSS(params)
	bod := EstimateBOD(params)

	p := newStage(PrimaryStage)
	p.above("Turbidity", "NTU", params.Turbidity, TurbidityLimit,
		"High turbidity detected - physical screening and sedimentation needed")
	p.above("TSS", "mg/L", tss, TSSLimit,
		"High suspended solids - primary clarification required")

	s := newStage(SecondaryStage)
	s.above("COD", "mg/L", params.COD, CODLimit,
		"High COD levels - biological treatment required to break down organic matter")
	s.above("BOD", "mg/L", bod, BODLimit,
		"High BOD levels - aerobic biological treatment needed")

	t := newStage(TertiaryStage)
	t.above("Nitrogen", "mg/L", params.Nitrogen, NitrogenLimit,
		"High nitrogen levels - nutrient removal through nitrification/denitrification required")
	t.above("Phosphorus", "mg/L", params.Phosphorus, PhosphorusLimit,
		"High phosphorus levels - chemical precipitation needed")
	t.outside("pH", "", params.Ph, PhMin, PhMax,
		"Acidic pH detected - neutralization and pH adjustment required",
		"Alkaline pH detected - neutralization and pH adjustment required")

	return p.build("No primary treatment needed"),
		s.build("No secondary treatment needed"),
		t.build("No tertiary treatment needed")
}

// EstimateTSS returns the measured TSS or, if absent, turbidity * 1.5
func EstimateTSS(params models.WaterQualityParameters) float64 {
	if params.TSS != nil {
		return *params.TSS
	}
	return params.Turbidity * TSSPerTurbidity
}

// EstimateBOD returns the measured BOD or, if absent, COD * 0.5
func EstimateBOD(params models.WaterQualityParameters) float64 {
	if params.BOD != nil {
		return *params.BOD
	}
	return params.COD * BODPerCOD
}

// stageBuilder accumulates checks for one stage
type stageBuilder struct {
	stage models.TreatmentStage
}

func newStage(name string) *stageBuilder {
	return &stageBuilder{stage: models.TreatmentStage{
		Name:       name,
		Reasons:    []string{},
		Parameters: []models.TreatmentStageParameter{},
	}}
}

// above records a one-sided check: value > limit
func (b *stageBuilder) above(name, unit string, value, limit float64, reason string) {
	exceeds := value > limit
	b.record(models.TreatmentStageParameter{
		Name:             name,
		Value:            value,
		Threshold:        limit,
		Unit:             unit,
		ExceedsThreshold: exceeds,
	}, reason)
}

// outside records a two-sided check: value < lo or value > hi.
// Threshold carries the lower bound; UpperThreshold the upper one.
func (b *stageBuilder) outside(name, unit string, value, lo, hi float64, lowReason, highReason string) {
	upper := hi
	param := models.TreatmentStageParameter{
		Name:             name,
		Value:            value,
		Threshold:        lo,
		UpperThreshold:   &upper,
		Unit:             unit,
		ExceedsThreshold: value < lo || value > hi,
	}

	reason := highReason
	if value < lo {
		reason = lowReason
	}
	b.record(param, reason)
}

func (b *stageBuilder) record(param models.TreatmentStageParameter, reason string) {
	b.stage.Parameters = append(b.stage.Parameters, param)
	if param.ExceedsThreshold {
		b.stage.Required = true
		b.stage.Reasons = append(b.stage.Reasons, reason)
	}
}

func (b *stageBuilder) build(placeholder string) models.TreatmentStage {
	if !b.stage.Required {
		b.stage.Reasons = append(b.stage.Reasons, placeholder)
	}
	return b.stage
}
