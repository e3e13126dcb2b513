package treatment

// StageThreshold describes one comparison made by Evaluate.
// Min is set only for lower-bound checks.
type StageThreshold struct {
	Stage     string   `json:"stage"`
	Parameter string   `json:"parameter"`
	Unit      string   `json:"unit"`
	Min       *float64 `json:"min,omitempty"`
	Max       float64  `json:"max"`
	Estimate  string   `json:"estimate,omitempty"`
}

// Thresholds returns the threshold table in evaluation order
func Thresholds() []StageThreshold {
	phMin := PhMin
	return []StageThreshold{
		{Stage: PrimaryStage, Parameter: "Turbidity", Unit: "NTU", Max: TurbidityLimit},
		{Stage: PrimaryStage, Parameter: "TSS", Unit: "mg/L", Max: TSSLimit, Estimate: "turbidity * 1.5"},
		{Stage: SecondaryStage, Parameter: "COD", Unit: "mg/L", Max: CODLimit},
		{Stage: SecondaryStage, Parameter: "BOD", Unit: "mg/L", Max: BODLimit, Estimate: "cod * 0.5"},
		{Stage: TertiaryStage, Parameter: "Nitrogen", Unit: "mg/L", Max: NitrogenLimit},
		{Stage: TertiaryStage, Parameter: "Phosphorus", Unit: "mg/L", Max: PhosphorusLimit},
		{Stage: TertiaryStage, Parameter: "pH", Min: &phMin, Max: PhMax},
	}
}
