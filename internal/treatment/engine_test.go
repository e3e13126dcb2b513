package treatment

import (
	"testing"

	"github.com/Capstone-E1/aquasmart_treatment/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func findParameter(t *testing.T, stage models.TreatmentStage, name string) models.TreatmentStageParameter {
	t.Helper()
	for _, p := range stage.Parameters {
		if p.Name == name {
			return p
		}
	}
	t.Fatalf("parameter %s not found in %s", name, stage.Name)
	return models.TreatmentStageParameter{}
}

func TestSimulate_NoTreatmentNeeded(t *testing.T) {
	result := Simulate(models.WaterQualityParameters{
		Turbidity:  30,
		COD:        50,
		Nitrogen:   5,
		Phosphorus: 0.5,
		Ph:         7.0,
	})

	for _, stage := range result.Stages() {
		assert.False(t, stage.Required, "%s should not be required", stage.Name)
		require.Len(t, stage.Reasons, 1)
	}
	assert.Equal(t, []string{"No primary treatment needed"}, result.PrimaryTreatment.Reasons)
	assert.Equal(t, []string{"No secondary treatment needed"}, result.SecondaryTreatment.Reasons)
	assert.Equal(t, []string{"No tertiary treatment needed"}, result.TertiaryTreatment.Reasons)
	assert.Equal(t, 0.0, result.EstimatedEfficiency)
	assert.Equal(t, 0.0, result.EstimatedTreatmentTime)
	assert.Equal(t, 0, result.TotalStagesRequired)
	assert.Equal(t, models.StatusSafe, result.OverallStatus)
}

func TestSimulate_EstimatedBODAloneNeedsSecondary(t *testing.T) {
	// cod 100 is under its limit but the estimated bod of 50 is not
	result := Simulate(models.WaterQualityParameters{
		Turbidity:  30,
		COD:        100,
		Nitrogen:   5,
		Phosphorus: 0.5,
		Ph:         7.0,
	})

	assert.False(t, result.PrimaryTreatment.Required)
	assert.True(t, result.SecondaryTreatment.Required)
	assert.False(t, result.TertiaryTreatment.Required)
	assert.Equal(t, 50.0, result.EstimatedEfficiency)
	assert.Equal(t, 6.0, result.EstimatedTreatmentTime)
	assert.Equal(t, models.StatusNeedsTreatment, result.OverallStatus)

	// with a measured bod the same sample is safe
	measured := Simulate(models.WaterQualityParameters{
		Turbidity:  30,
		COD:        100,
		BOD:        models.Float64(20),
		Nitrogen:   5,
		Phosphorus: 0.5,
		Ph:         7.0,
	})
	assert.Equal(t, models.StatusSafe, measured.OverallStatus)
}

func TestSimulate_AllStagesNeeded(t *testing.T) {
	result := Simulate(models.WaterQualityParameters{
		Turbidity:  80,
		COD:        200,
		Nitrogen:   15,
		Phosphorus: 2,
		Ph:         9.0,
	})

	assert.True(t, result.PrimaryTreatment.Required)
	assert.True(t, result.SecondaryTreatment.Required)
	assert.True(t, result.TertiaryTreatment.Required)
	assert.Equal(t, 95.0, result.EstimatedEfficiency)
	assert.Equal(t, 11.0, result.EstimatedTreatmentTime)
	assert.Equal(t, 3, result.TotalStagesRequired)
	assert.Equal(t, models.StatusCritical, result.OverallStatus)

	// turbidity 80 -> tss 120, cod 200 -> bod 100: both parameters exceed in the first two stages
	assert.Len(t, result.PrimaryTreatment.Reasons, 2)
	assert.Len(t, result.SecondaryTreatment.Reasons, 2)
	assert.Len(t, result.TertiaryTreatment.Reasons, 3)
	assert.Contains(t, result.TertiaryTreatment.Reasons,
		"Alkaline pH detected - neutralization and pH adjustment required")
}

func TestEvaluate_EstimatedTSSDoesNotMaskTurbidity(t *testing.T) {
	primary, _, _ := Evaluate(models.WaterQualityParameters{Turbidity: 60, Ph: 7})

	turbidity := findParameter(t, primary, "Turbidity")
	tss := findParameter(t, primary, "TSS")

	assert.True(t, turbidity.ExceedsThreshold)
	assert.Equal(t, 90.0, tss.Value)
	assert.False(t, tss.ExceedsThreshold)
	assert.True(t, primary.Required)
	assert.Equal(t, []string{"High turbidity detected - physical screening and sedimentation needed"}, primary.Reasons)
}

func TestEvaluate_ExplicitTSSOverridesEstimate(t *testing.T) {
	primary, _, _ := Evaluate(models.WaterQualityParameters{
		Turbidity: 10,
		TSS:       models.Float64(150),
		Ph:        7,
	})

	assert.False(t, findParameter(t, primary, "Turbidity").ExceedsThreshold)
	tss := findParameter(t, primary, "TSS")
	assert.Equal(t, 150.0, tss.Value)
	assert.True(t, tss.ExceedsThreshold)
	assert.True(t, primary.Required)
}

func TestEvaluate_ExplicitLowValuesOverrideHighEstimates(t *testing.T) {
	primary, secondary, _ := Evaluate(models.WaterQualityParameters{
		Turbidity: 40,  // estimate would be 60, explicit 5
		TSS:       models.Float64(5),
		COD:       140, // estimate would be 70, explicit 10
		BOD:       models.Float64(10),
		Ph:        7,
	})

	assert.Equal(t, 5.0, findParameter(t, primary, "TSS").Value)
	assert.Equal(t, 10.0, findParameter(t, secondary, "BOD").Value)
	assert.False(t, primary.Required)
	assert.False(t, secondary.Required)
}

func TestEvaluate_BODEstimateTriggersSecondary(t *testing.T) {
	_, secondary, _ := Evaluate(models.WaterQualityParameters{COD: 80, Ph: 7})

	assert.False(t, findParameter(t, secondary, "COD").ExceedsThreshold)
	bod := findParameter(t, secondary, "BOD")
	assert.Equal(t, 40.0, bod.Value)
	assert.True(t, bod.ExceedsThreshold)
	assert.Equal(t, []string{"High BOD levels - aerobic biological treatment needed"}, secondary.Reasons)
}

func TestEvaluate_ValuesAtThresholdDoNotExceed(t *testing.T) {
	primary, secondary, tertiary := Evaluate(models.WaterQualityParameters{
		Turbidity:  TurbidityLimit,
		TSS:        models.Float64(TSSLimit),
		COD:        CODLimit,
		BOD:        models.Float64(BODLimit),
		Nitrogen:   NitrogenLimit,
		Phosphorus: PhosphorusLimit,
		Ph:         PhMin,
	})

	assert.False(t, primary.Required)
	assert.False(t, secondary.Required)
	assert.False(t, tertiary.Required)

	_, _, tertiary = Evaluate(models.WaterQualityParameters{Ph: PhMax})
	assert.False(t, tertiary.Required)
}

func TestEvaluate_PhBounds(t *testing.T) {
	tests := []struct {
		name     string
		ph       float64
		required bool
		reason   string
	}{
		{name: "acidic", ph: 6.4, required: true, reason: "Acidic pH detected - neutralization and pH adjustment required"},
		{name: "neutral", ph: 7.2, required: false, reason: "No tertiary treatment needed"},
		{name: "alkaline", ph: 8.6, required: true, reason: "Alkaline pH detected - neutralization and pH adjustment required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, tertiary := Evaluate(models.WaterQualityParameters{Ph: tt.ph})

			assert.Equal(t, tt.required, tertiary.Required)
			assert.Equal(t, []string{tt.reason}, tertiary.Reasons)

			ph := findParameter(t, tertiary, "pH")
			assert.Equal(t, PhMin, ph.Threshold)
			require.NotNil(t, ph.UpperThreshold)
			assert.Equal(t, PhMax, *ph.UpperThreshold)
		})
	}
}

func TestEvaluate_AuditTrailListsEveryParameter(t *testing.T) {
	primary, secondary, tertiary := Evaluate(models.WaterQualityParameters{Ph: 7})

	names := func(stage models.TreatmentStage) []string {
		var out []string
		for _, p := range stage.Parameters {
			out = append(out, p.Name)
		}
		return out
	}

	assert.Equal(t, []string{"Turbidity", "TSS"}, names(primary))
	assert.Equal(t, []string{"COD", "BOD"}, names(secondary))
	assert.Equal(t, []string{"Nitrogen", "Phosphorus", "pH"}, names(tertiary))

	assert.Equal(t, "NTU", findParameter(t, primary, "Turbidity").Unit)
	assert.Equal(t, CODLimit, findParameter(t, secondary, "COD").Threshold)
	assert.Nil(t, findParameter(t, tertiary, "Nitrogen").UpperThreshold)
}

func TestEvaluate_RequiredMatchesReasons(t *testing.T) {
	samples := []models.WaterQualityParameters{
		{Turbidity: 30, COD: 100, Nitrogen: 5, Phosphorus: 0.5, Ph: 7},
		{Turbidity: 80, COD: 200, Nitrogen: 15, Phosphorus: 2, Ph: 9},
		{Turbidity: 0, COD: 0, Nitrogen: 0, Phosphorus: 0, Ph: 0},
		{Turbidity: 51, COD: 151, Nitrogen: 10, Phosphorus: 1, Ph: 14},
		{Turbidity: 1000, TSS: models.Float64(0), COD: 10, BOD: models.Float64(31), Nitrogen: 11, Phosphorus: 0, Ph: 7},
	}

	for _, sample := range samples {
		result := Simulate(sample)
		count := 0
		for _, stage := range result.Stages() {
			exceeded := 0
			for _, p := range stage.Parameters {
				if p.ExceedsThreshold {
					exceeded++
				}
			}
			assert.Equal(t, exceeded > 0, stage.Required, stage.Name)
			if stage.Required {
				count++
				assert.Len(t, stage.Reasons, exceeded, stage.Name)
			} else {
				assert.Len(t, stage.Reasons, 1, stage.Name)
			}
		}
		assert.Equal(t, count, result.TotalStagesRequired)
	}
}

func TestEvaluate_DoesNotMutateInput(t *testing.T) {
	params := models.WaterQualityParameters{Turbidity: 60, COD: 300, Ph: 7}
	Evaluate(params)

	assert.Nil(t, params.TSS)
	assert.Nil(t, params.BOD)
}

func TestThresholds_MatchEngineOrder(t *testing.T) {
	table := Thresholds()
	require.Len(t, table, 7)

	assert.Equal(t, "Turbidity", table[0].Parameter)
	assert.Equal(t, TurbidityLimit, table[0].Max)
	assert.Equal(t, "pH", table[6].Parameter)
	require.NotNil(t, table[6].Min)
	assert.Equal(t, PhMin, *table[6].Min)
	assert.Equal(t, PhMax, table[6].Max)
}
