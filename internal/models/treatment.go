package models

import (
	"fmt"
	"math"
	"time"
)

// WaterQualityParameters represents one raw water-quality sample submitted for evaluation.
// TSS and BOD are optional; when absent the engine estimates them from turbidity and COD.
type WaterQualityParameters struct {
	Turbidity  float64  `json:"turbidity"`
	Ph         float64  `json:"ph"`
	COD        float64  `json:"cod"`
	Nitrogen   float64  `json:"nitrogen"`
	Phosphorus float64  `json:"phosphorus"`
	TSS        *float64 `json:"tss,omitempty"`
	BOD        *float64 `json:"bod,omitempty"`
	TDS        *float64 `json:"tds,omitempty"`
	ReuseType  string   `json:"reuse_type,omitempty"`
}

// Column limits of the evaluations table
const (
	MaxUserIDLength    = 100
	MaxSessionIDLength = 100
	MaxReuseTypeLength = 50
)

// WaterQualityInput is a sample as submitted over the wire. The five core
// measurements are pointers so an absent field can be told apart from zero.
type WaterQualityInput struct {
	Turbidity  *float64 `json:"turbidity"`
	Ph         *float64 `json:"ph"`
	COD        *float64 `json:"cod"`
	Nitrogen   *float64 `json:"nitrogen"`
	Phosphorus *float64 `json:"phosphorus"`
	TSS        *float64 `json:"tss,omitempty"`
	BOD        *float64 `json:"bod,omitempty"`
	TDS        *float64 `json:"tds,omitempty"`
	ReuseType  string   `json:"reuse_type,omitempty"`
}

// Parameters converts the input into a validated sample
func (in WaterQualityInput) Parameters() (WaterQualityParameters, error) {
	required := []struct {
		field string
		value *float64
	}{
		{"turbidity", in.Turbidity},
		{"ph", in.Ph},
		{"cod", in.COD},
		{"nitrogen", in.Nitrogen},
		{"phosphorus", in.Phosphorus},
	}
	for _, r := range required {
		if r.value == nil {
			return WaterQualityParameters{}, &ValidationError{Field: r.field, Message: "is required"}
		}
	}

	params := WaterQualityParameters{
		Turbidity:  *in.Turbidity,
		Ph:         *in.Ph,
		COD:        *in.COD,
		Nitrogen:   *in.Nitrogen,
		Phosphorus: *in.Phosphorus,
		TSS:        in.TSS,
		BOD:        in.BOD,
		TDS:        in.TDS,
		ReuseType:  in.ReuseType,
	}
	if err := params.Validate(); err != nil {
		return WaterQualityParameters{}, err
	}
	return params, nil
}

// TreatmentStageParameter is one audit-trail entry: the measured value, the bound it
// was compared to and whether it exceeded that bound.
// UpperThreshold is only set for two-sided checks (pH).
type TreatmentStageParameter struct {
	Name             string   `json:"name"`
	Value            float64  `json:"value"`
	Threshold        float64  `json:"threshold"`
	UpperThreshold   *float64 `json:"upper_threshold,omitempty"`
	Unit             string   `json:"unit"`
	ExceedsThreshold bool     `json:"exceeds_threshold"`
}

// TreatmentStage is the verdict for one of the three treatment phases
type TreatmentStage struct {
	Name       string                    `json:"name"`
	Required   bool                      `json:"required"`
	Reasons    []string                  `json:"reasons"`
	Parameters []TreatmentStageParameter `json:"parameters"`
}

// OverallStatus summarises how many stages a sample needs
type OverallStatus string

const (
	StatusSafe           OverallStatus = "safe"
	StatusNeedsTreatment OverallStatus = "needs-treatment"
	StatusCritical       OverallStatus = "critical"
)

// Valid reports whether the status is one of the known values
func (s OverallStatus) Valid() bool {
	switch s {
	case StatusSafe, StatusNeedsTreatment, StatusCritical:
		return true
	default:
		return false
	}
}

// TreatmentSimulationResult is the full verdict for one sample
type TreatmentSimulationResult struct {
	PrimaryTreatment       TreatmentStage `json:"primary_treatment"`
	SecondaryTreatment     TreatmentStage `json:"secondary_treatment"`
	TertiaryTreatment      TreatmentStage `json:"tertiary_treatment"`
	OverallStatus          OverallStatus  `json:"overall_status"`
	TotalStagesRequired    int            `json:"total_stages_required"`
	EstimatedTreatmentTime float64        `json:"estimated_treatment_time"`
	EstimatedEfficiency    float64        `json:"estimated_efficiency"`
}

// Stages returns the three stages in treatment order
func (r *TreatmentSimulationResult) Stages() []TreatmentStage {
	return []TreatmentStage{r.PrimaryTreatment, r.SecondaryTreatment, r.TertiaryTreatment}
}

// EvaluationRecord is a persisted evaluation, keyed by user and session
type EvaluationRecord struct {
	ID         string                    `json:"id"`
	UserID     string                    `json:"user_id"`
	SessionID  string                    `json:"session_id,omitempty"`
	CreatedAt  time.Time                 `json:"created_at"`
	Parameters WaterQualityParameters    `json:"parameters"`
	Result     TreatmentSimulationResult `json:"result"`
}

// ValidationError reports an out-of-domain input value
type ValidationError struct {
	Field   string  `json:"field"`
	Value   float64 `json:"value"`
	Message string  `json:"message"`
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s (%v): %s", e.Field, e.Value, e.Message)
}

// Validate checks that every supplied value is finite and within its physical domain.
// It must be called before the sample reaches the decision engine.
func (p WaterQualityParameters) Validate() error {
	required := []struct {
		field string
		value float64
	}{
		{"turbidity", p.Turbidity},
		{"cod", p.COD},
		{"nitrogen", p.Nitrogen},
		{"phosphorus", p.Phosphorus},
	}
	for _, r := range required {
		if err := checkConcentration(r.field, r.value); err != nil {
			return err
		}
	}

	if math.IsNaN(p.Ph) || math.IsInf(p.Ph, 0) {
		return &ValidationError{Field: "ph", Value: p.Ph, Message: "must be a finite number"}
	}
	if p.Ph < 0 || p.Ph > 14 {
		return &ValidationError{Field: "ph", Value: p.Ph, Message: "must be between 0 and 14"}
	}

	optional := []struct {
		field string
		value *float64
	}{
		{"tss", p.TSS},
		{"bod", p.BOD},
		{"tds", p.TDS},
	}
	for _, o := range optional {
		if o.value == nil {
			continue
		}
		if err := checkConcentration(o.field, *o.value); err != nil {
			return err
		}
	}

	if n := len(p.ReuseType); n > MaxReuseTypeLength {
		return &ValidationError{Field: "reuse_type", Value: float64(n), Message: fmt.Sprintf("must be at most %d characters", MaxReuseTypeLength)}
	}

	return nil
}

func checkConcentration(field string, value float64) error {
	if math.IsNaN(value) || math.IsInf(value, 0) {
		return &ValidationError{Field: field, Value: value, Message: "must be a finite number"}
	}
	if value < 0 {
		return &ValidationError{Field: field, Value: value, Message: "must be non-negative"}
	}
	return nil
}

// Float64 returns a pointer to v, for filling optional parameters
func Float64(v float64) *float64 {
	return &v
}
