package export

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/Capstone-E1/aquasmart_treatment/internal/models"
	"github.com/Capstone-E1/aquasmart_treatment/internal/treatment"
	"github.com/xuri/excelize/v2"
)

// Sheet names of the generated workbook
const (
	SummarySheet     = "Summary"
	EvaluationsSheet = "Evaluations"
	StageSheet       = "Stage Details"
)

// ExportService handles evaluation history export
type ExportService struct{}

// NewExportService creates a new export service instance
func NewExportService() *ExportService {
	return &ExportService{}
}

// ExportData represents data to be exported
type ExportData struct {
	Evaluations    []models.EvaluationRecord
	ExportMetadata ExportMetadata
}

// ExportMetadata contains information about the export
type ExportMetadata struct {
	GeneratedAt time.Time `json:"generated_at"`
	DateRange   string    `json:"date_range"`
	UserID      string    `json:"user_id,omitempty"`
}

var evaluationHeaders = []string{
	"Timestamp", "Evaluation ID", "User", "Turbidity (NTU)", "pH", "COD (mg/L)", "Nitrogen (mg/L)",
	"Phosphorus (mg/L)", "TSS (mg/L)", "BOD (mg/L)", "Primary", "Secondary", "Tertiary",
	"Stages Required", "Overall Status", "Efficiency (%)", "Treatment Time (h)",
}

// GenerateExcel creates an Excel workbook with the evaluation history
func (es *ExportService) GenerateExcel(data ExportData) (*excelize.File, error) {
	f := excelize.NewFile()

	// Set document properties
	if err := f.SetDocProps(&excelize.DocProperties{
		Category:       "AquaSmart Wastewater Treatment",
		Created:        data.ExportMetadata.GeneratedAt.Format(time.RFC3339),
		Creator:        "AquaSmart System",
		Description:    "Treatment stage decisions and water-quality inputs",
		LastModifiedBy: "AquaSmart Backend",
		Modified:       data.ExportMetadata.GeneratedAt.Format(time.RFC3339),
		Subject:        "Treatment Evaluation History",
		Title:          "AquaSmart Treatment Report",
		Version:        "1.0",
	}); err != nil {
		return nil, fmt.Errorf("failed to set document properties: %w", err)
	}

	if err := es.createSummarySheet(f, data); err != nil {
		return nil, err
	}
	if err := es.createEvaluationsSheet(f, data.Evaluations); err != nil {
		return nil, err
	}
	if err := es.createStageSheet(f, data.Evaluations); err != nil {
		return nil, err
	}

	// Set active sheet to Summary
	f.SetActiveSheet(0)

	return f, nil
}

func headerStyle(f *excelize.File, color string, size float64) (int, error) {
	return f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: size, Color: "FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{color}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		Border: []excelize.Border{
			{Type: "left", Color: "000000", Style: 1},
			{Type: "top", Color: "000000", Style: 1},
			{Type: "bottom", Color: "000000", Style: 1},
			{Type: "right", Color: "000000", Style: 1},
		},
	})
}

// createSummarySheet creates the summary overview sheet
func (es *ExportService) createSummarySheet(f *excelize.File, data ExportData) error {
	if err := f.SetSheetName("Sheet1", SummarySheet); err != nil {
		return fmt.Errorf("failed to create summary sheet: %w", err)
	}

	style, err := headerStyle(f, "4472C4", 14)
	if err != nil {
		return fmt.Errorf("failed to create summary style: %w", err)
	}

	counts := map[models.OverallStatus]int{}
	var efficiencySum, hoursSum float64
	for _, record := range data.Evaluations {
		counts[record.Result.OverallStatus]++
		efficiencySum += record.Result.EstimatedEfficiency
		hoursSum += record.Result.EstimatedTreatmentTime
	}

	var avgEfficiency, avgHours float64
	if n := len(data.Evaluations); n > 0 {
		avgEfficiency = efficiencySum / float64(n)
		avgHours = hoursSum / float64(n)
	}

	f.SetCellValue(SummarySheet, "A1", "AquaSmart Treatment Evaluation Report")
	f.MergeCell(SummarySheet, "A1", "D1")
	f.SetCellStyle(SummarySheet, "A1", "D1", style)
	f.SetRowHeight(SummarySheet, 1, 25)

	rows := [][]interface{}{
		{"Generated At:", data.ExportMetadata.GeneratedAt.Format("2006-01-02 15:04:05")},
		{"Date Range:", data.ExportMetadata.DateRange},
		{"User:", data.ExportMetadata.UserID},
		{"Total Evaluations:", len(data.Evaluations)},
		{"Safe:", counts[models.StatusSafe]},
		{"Needs Treatment:", counts[models.StatusNeedsTreatment]},
		{"Critical:", counts[models.StatusCritical]},
		{"Average Efficiency (%):", avgEfficiency},
		{"Average Treatment Time (h):", avgHours},
	}
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+3)
		if err := f.SetSheetRow(SummarySheet, cell, &row); err != nil {
			return fmt.Errorf("failed to write summary row: %w", err)
		}
	}

	f.SetColWidth(SummarySheet, "A", "A", 28)
	f.SetColWidth(SummarySheet, "B", "D", 20)

	return nil
}

// createEvaluationsSheet writes one row per evaluation
func (es *ExportService) createEvaluationsSheet(f *excelize.File, records []models.EvaluationRecord) error {
	if _, err := f.NewSheet(EvaluationsSheet); err != nil {
		return fmt.Errorf("failed to create evaluations sheet: %w", err)
	}

	style, err := headerStyle(f, "70AD47", 11)
	if err != nil {
		return fmt.Errorf("failed to create evaluations style: %w", err)
	}

	header := make([]interface{}, len(evaluationHeaders))
	for i, h := range evaluationHeaders {
		header[i] = h
	}
	if err := f.SetSheetRow(EvaluationsSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write evaluations header: %w", err)
	}
	lastCol, _ := excelize.ColumnNumberToName(len(evaluationHeaders))
	f.SetCellStyle(EvaluationsSheet, "A1", lastCol+"1", style)

	for i, record := range records {
		row := evaluationRow(record)
		values := make([]interface{}, len(row))
		for j, v := range row {
			values[j] = v
		}
		// numeric columns are written as numbers
		for _, j := range []int{3, 4, 5, 6, 7, 8, 9, 13, 15, 16} {
			if n, err := strconv.ParseFloat(row[j], 64); err == nil {
				values[j] = n
			}
		}

		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(EvaluationsSheet, cell, &values); err != nil {
			return fmt.Errorf("failed to write evaluation row: %w", err)
		}
	}

	f.SetColWidth(EvaluationsSheet, "A", "C", 22)
	f.SetColWidth(EvaluationsSheet, "D", lastCol, 15)

	return nil
}

// createStageSheet writes the per-parameter audit trail
func (es *ExportService) createStageSheet(f *excelize.File, records []models.EvaluationRecord) error {
	if _, err := f.NewSheet(StageSheet); err != nil {
		return fmt.Errorf("failed to create stage sheet: %w", err)
	}

	style, err := headerStyle(f, "7030A0", 11)
	if err != nil {
		return fmt.Errorf("failed to create stage style: %w", err)
	}

	header := []interface{}{"Evaluation ID", "Stage", "Required", "Parameter", "Value", "Threshold", "Upper Threshold", "Unit", "Exceeds", "Reasons"}
	if err := f.SetSheetRow(StageSheet, "A1", &header); err != nil {
		return fmt.Errorf("failed to write stage header: %w", err)
	}
	f.SetCellStyle(StageSheet, "A1", "J1", style)

	row := 2
	for _, record := range records {
		for _, stage := range record.Result.Stages() {
			for _, param := range stage.Parameters {
				var upper interface{} = ""
				if param.UpperThreshold != nil {
					upper = *param.UpperThreshold
				}
				values := []interface{}{
					record.ID, stage.Name, stage.Required, param.Name, param.Value,
					param.Threshold, upper, param.Unit, param.ExceedsThreshold, joinReasons(stage.Reasons),
				}
				cell, _ := excelize.CoordinatesToCellName(1, row)
				if err := f.SetSheetRow(StageSheet, cell, &values); err != nil {
					return fmt.Errorf("failed to write stage row: %w", err)
				}
				row++
			}
		}
	}

	f.SetColWidth(StageSheet, "A", "B", 22)
	f.SetColWidth(StageSheet, "C", "I", 12)
	f.SetColWidth(StageSheet, "J", "J", 60)

	return nil
}

func joinReasons(reasons []string) string {
	out := ""
	for i, r := range reasons {
		if i > 0 {
			out += "; "
		}
		out += r
	}
	return out
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// evaluationRow flattens a record in evaluationHeaders order; TSS and BOD are
// the values the engine compared, estimated when not measured.
func evaluationRow(record models.EvaluationRecord) []string {
	p := record.Parameters
	r := record.Result
	return []string{
		record.CreatedAt.Format("2006-01-02 15:04:05"),
		record.ID,
		record.UserID,
		formatFloat(p.Turbidity),
		formatFloat(p.Ph),
		formatFloat(p.COD),
		formatFloat(p.Nitrogen),
		formatFloat(p.Phosphorus),
		formatFloat(treatment.EstimateTSS(p)),
		formatFloat(treatment.EstimateBOD(p)),
		yesNo(r.PrimaryTreatment.Required),
		yesNo(r.SecondaryTreatment.Required),
		yesNo(r.TertiaryTreatment.Required),
		strconv.Itoa(r.TotalStagesRequired),
		string(r.OverallStatus),
		formatFloat(r.EstimatedEfficiency),
		formatFloat(r.EstimatedTreatmentTime),
	}
}

// GenerateCSV creates CSV records for the evaluation history
func (es *ExportService) GenerateCSV(records []models.EvaluationRecord) ([][]string, error) {
	rows := [][]string{evaluationHeaders}
	for _, record := range records {
		rows = append(rows, evaluationRow(record))
	}
	return rows, nil
}

// WriteCSV writes CSV data to a writer
func (es *ExportService) WriteCSV(w *csv.Writer, records [][]string) error {
	if err := w.WriteAll(records); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}
