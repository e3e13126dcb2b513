package treatment

import "github.com/Capstone-E1/aquasmart_treatment/internal/models"

// Per-stage processing time in hours
const (
	PrimaryHours   = 2.0 // sedimentation
	SecondaryHours = 6.0 // biological treatment
	TertiaryHours  = 3.0 // advanced polishing
)

// Per-stage pollutant removal credit in percent
const (
	PrimaryEfficiency   = 30.0
	SecondaryEfficiency = 50.0
	TertiaryEfficiency  = 15.0
	MaxEfficiency       = 95.0
)

// Metrics are the aggregate figures derived from the three required flags
type Metrics struct {
	TotalStagesRequired    int                  `json:"total_stages_required"`
	EstimatedTreatmentTime float64              `json:"estimated_treatment_time"`
	EstimatedEfficiency    float64              `json:"estimated_efficiency"`
	OverallStatus          models.OverallStatus `json:"overall_status"`
}

// Aggregate folds the stage flags into time, efficiency, count and status
func Aggregate(primaryRequired, secondaryRequired, tertiaryRequired bool) Metrics {
	var m Metrics

	if primaryRequired {
		m.TotalStagesRequired++
		m.EstimatedTreatmentTime += PrimaryHours
		m.EstimatedEfficiency += PrimaryEfficiency
	}
	if secondaryRequired {
		m.TotalStagesRequired++
		m.EstimatedTreatmentTime += SecondaryHours
		m.EstimatedEfficiency += SecondaryEfficiency
	}
	if tertiaryRequired {
		m.TotalStagesRequired++
		m.EstimatedTreatmentTime += TertiaryHours
		m.EstimatedEfficiency += TertiaryEfficiency
	}

	if m.EstimatedEfficiency > MaxEfficiency {
		m.EstimatedEfficiency = MaxEfficiency
	}
	m.OverallStatus = StatusForStages(m.TotalStagesRequired)

	return m
}

// StatusForStages maps a required-stage count to an overall status
func StatusForStages(total int) models.OverallStatus {
	switch {
	case total <= 0:
		return models.StatusSafe
	case total >= 3:
		return models.StatusCritical
	default:
		return models.StatusNeedsTreatment
	}
}

// Simulate evaluates a sample and aggregates the verdict into a fresh result
func Simulate(params models.WaterQualityParameters) models.TreatmentSimulationResult {
	primary, secondary, tertiary := Evaluate(params)
	m := Aggregate(primary.Required, secondary.Required, tertiary.Required)

	return models.TreatmentSimulationResult{
		PrimaryTreatment:       primary,
		SecondaryTreatment:     secondary,
		TertiaryTreatment:      tertiary,
		OverallStatus:          m.OverallStatus,
		TotalStagesRequired:    m.TotalStagesRequired,
		EstimatedTreatmentTime: m.EstimatedTreatmentTime,
		EstimatedEfficiency:    m.EstimatedEfficiency,
	}
}
