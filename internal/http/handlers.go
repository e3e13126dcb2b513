package http

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/Capstone-E1/aquasmart_treatment/internal/export"
	"github.com/Capstone-E1/aquasmart_treatment/internal/models"
	"github.com/Capstone-E1/aquasmart_treatment/internal/sensors"
	"github.com/Capstone-E1/aquasmart_treatment/internal/services"
	"github.com/Capstone-E1/aquasmart_treatment/internal/store"
	"github.com/Capstone-E1/aquasmart_treatment/internal/treatment"
	"github.com/Capstone-E1/aquasmart_treatment/internal/ws"
	"github.com/go-chi/chi/v5"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 1000
)

// Handlers contains all HTTP request handlers
type Handlers struct {
	store         store.DataStore
	session       *sensors.Session
	evaluations   *services.EvaluationService
	hub           *ws.Hub
	exportService *export.ExportService
}

// NewHandlers creates a new handlers instance; hub may be nil
func NewHandlers(dataStore store.DataStore, session *sensors.Session, evaluations *services.EvaluationService, hub *ws.Hub) *Handlers {
	return &Handlers{
		store:         dataStore,
		session:       session,
		evaluations:   evaluations,
		hub:           hub,
		exportService: export.NewExportService(),
	}
}

// APIResponse represents a standard API response
type APIResponse struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

// SimulateRequest is the body of POST /treatment/simulate
type SimulateRequest struct {
	UserID     string                        `json:"user_id"`
	SessionID  string                        `json:"session_id"`
	Parameters models.WaterQualityInput `json:"parameters"`
}

// GetSystemStats returns system statistics
func (h *Handlers) GetSystemStats(w http.ResponseWriter, r *http.Request) {
	stats := map[string]interface{}{
		"total_evaluations": h.store.GetEvaluationCount(),
		"status_counts":     h.store.GetStatusCounts(),
		"active_sensors":    h.session.Len(),
		"server_time":       time.Now(),
	}
	if h.hub != nil {
		stats["websocket_clients"] = h.hub.GetConnectedClientsCount()
	}

	h.sendSuccessResponse(w, "", stats, http.StatusOK)
}

// SimulateTreatment handles POST requests that evaluate and record a sample
func (h *Handlers) SimulateTreatment(w http.ResponseWriter, r *http.Request) {
	var request SimulateRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		h.sendErrorResponse(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}

	params, err := request.Parameters.Parameters()
	if err != nil {
		h.sendErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	record, err := h.evaluations.Evaluate(request.UserID, request.SessionID, params)
	if err != nil {
		var validationErr *models.ValidationError
		if errors.As(err, &validationErr) {
			h.sendErrorResponse(w, validationErr.Error(), http.StatusBadRequest)
			return
		}
		if record == nil {
			h.sendErrorResponse(w, "Failed to evaluate sample", http.StatusInternalServerError)
			return
		}
		// The decision is still valid when only persistence failed
		log.Printf("⚠️  Returning unsaved evaluation %s: %v", record.ID, err)
		h.sendSuccessResponse(w, "Evaluation completed but could not be saved", record, http.StatusOK)
		return
	}

	h.sendSuccessResponse(w, "Treatment simulation completed", record, http.StatusCreated)
}

// PreviewTreatment evaluates a sample without recording it
func (h *Handlers) PreviewTreatment(w http.ResponseWriter, r *http.Request) {
	var input models.WaterQualityInput
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		h.sendErrorResponse(w, "Invalid JSON payload", http.StatusBadRequest)
		return
	}

	params, err := input.Parameters()
	if err != nil {
		h.sendErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	result, err := h.evaluations.Preview(params)
	if err != nil {
		h.sendErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	h.sendSuccessResponse(w, "", result, http.StatusOK)
}

// GetThresholds returns the stage threshold table
func (h *Handlers) GetThresholds(w http.ResponseWriter, r *http.Request) {
	h.sendSuccessResponse(w, "", treatment.Thresholds(), http.StatusOK)
}

// GetTreatmentHistory returns recorded evaluations, newest first.
// Supports user_id, status (comma separated) and limit query parameters.
func (h *Handlers) GetTreatmentHistory(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r.URL.Query().Get("limit"))
	if err != nil {
		h.sendErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	userID := r.URL.Query().Get("user_id")
	statuses, err := parseStatuses(r.URL.Query().Get("status"))
	if err != nil {
		h.sendErrorResponse(w, err.Error(), http.StatusBadRequest)
		return
	}

	var records []models.EvaluationRecord
	switch {
	case userID != "" && len(statuses) > 0:
		records = filterByStatus(h.store.GetEvaluationsByUser(userID, 0), statuses, limit)
	case userID != "":
		records = h.store.GetEvaluationsByUser(userID, limit)
	case len(statuses) > 0:
		records = h.store.GetEvaluationsByStatus(statuses, limit)
	default:
		records = h.store.GetRecentEvaluations(limit)
	}

	if records == nil {
		records = []models.EvaluationRecord{}
	}

	h.sendSuccessResponse(w, "", records, http.StatusOK)
}

// GetTreatmentEvaluation returns one evaluation by ID
func (h *Handlers) GetTreatmentEvaluation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	record, err := h.store.GetEvaluation(id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.sendErrorResponse(w, "Evaluation not found", http.StatusNotFound)
			return
		}
		h.sendErrorResponse(w, "Failed to load evaluation", http.StatusInternalServerError)
		return
	}

	h.sendSuccessResponse(w, "", record, http.StatusOK)
}

// ExportHistoryExcel handles GET requests to export evaluation history as Excel
func (h *Handlers) ExportHistoryExcel(w http.ResponseWriter, r *http.Request) {
	start, end, ok := h.parseExportRange(w, r)
	if !ok {
		return
	}

	userID := r.URL.Query().Get("user_id")
	records := filterByUser(h.store.GetEvaluationsInRange(start, end), userID)

	exportData := export.ExportData{
		Evaluations: records,
		ExportMetadata: export.ExportMetadata{
			GeneratedAt: time.Now(),
			DateRange:   fmt.Sprintf("%s to %s", start.Format("2006-01-02"), end.Format("2006-01-02")),
			UserID:      userID,
		},
	}

	excelFile, err := h.exportService.GenerateExcel(exportData)
	if err != nil {
		log.Printf("❌ Failed to generate Excel export: %v", err)
		h.sendErrorResponse(w, "Failed to generate Excel file", http.StatusInternalServerError)
		return
	}
	defer excelFile.Close()

	filename := fmt.Sprintf("aquasmart_treatment_%s_to_%s.xlsx",
		start.Format("2006-01-02"), end.Format("2006-01-02"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))

	if err := excelFile.Write(w); err != nil {
		log.Printf("❌ Failed to write Excel export: %v", err)
	}
}

// ExportHistoryCSV handles GET requests to export evaluation history as CSV
func (h *Handlers) ExportHistoryCSV(w http.ResponseWriter, r *http.Request) {
	start, end, ok := h.parseExportRange(w, r)
	if !ok {
		return
	}

	records := filterByUser(h.store.GetEvaluationsInRange(start, end), r.URL.Query().Get("user_id"))

	csvData, err := h.exportService.GenerateCSV(records)
	if err != nil {
		h.sendErrorResponse(w, "Failed to generate CSV data", http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("aquasmart_treatment_%s_to_%s.csv",
		start.Format("2006-01-02"), end.Format("2006-01-02"))
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))

	csvWriter := csv.NewWriter(w)
	if err := h.exportService.WriteCSV(csvWriter, csvData); err != nil {
		log.Printf("❌ Failed to write CSV export: %v", err)
	}
}

// parseExportRange reads start and end (RFC3339), defaulting to the last 30 days
func (h *Handlers) parseExportRange(w http.ResponseWriter, r *http.Request) (time.Time, time.Time, bool) {
	startStr := r.URL.Query().Get("start")
	endStr := r.URL.Query().Get("end")

	end := time.Now()
	if endStr != "" {
		parsed, err := time.Parse(time.RFC3339, endStr)
		if err != nil {
			h.sendErrorResponse(w, "Invalid end date format. Use RFC3339 format", http.StatusBadRequest)
			return time.Time{}, time.Time{}, false
		}
		end = parsed
	}

	start := end.AddDate(0, 0, -30)
	if startStr != "" {
		parsed, err := time.Parse(time.RFC3339, startStr)
		if err != nil {
			h.sendErrorResponse(w, "Invalid start date format. Use RFC3339 format", http.StatusBadRequest)
			return time.Time{}, time.Time{}, false
		}
		start = parsed
	}

	if start.After(end) {
		h.sendErrorResponse(w, "start must not be after end", http.StatusBadRequest)
		return time.Time{}, time.Time{}, false
	}

	return start, end, true
}

// sendSuccessResponse sends a standardized success response
func (h *Handlers) sendSuccessResponse(w http.ResponseWriter, message string, data interface{}, statusCode int) {
	response := APIResponse{
		Success: true,
		Message: message,
		Data:    data,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(response)
}

// sendErrorResponse sends a standardized error response
func (h *Handlers) sendErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	response := APIResponse{
		Success: false,
		Error:   message,
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(response)
}

func parseLimit(limitStr string) (int, error) {
	if limitStr == "" {
		return defaultHistoryLimit, nil
	}

	limit, err := strconv.Atoi(limitStr)
	if err != nil || limit <= 0 {
		return 0, fmt.Errorf("limit must be a positive integer")
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	return limit, nil
}

func parseStatuses(statusStr string) ([]models.OverallStatus, error) {
	if statusStr == "" {
		return nil, nil
	}

	var statuses []models.OverallStatus
	for _, part := range strings.Split(statusStr, ",") {
		status := models.OverallStatus(strings.TrimSpace(part))
		if !status.Valid() {
			return nil, fmt.Errorf("invalid status %q. Use 'safe', 'needs-treatment' or 'critical'", part)
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

func filterByStatus(records []models.EvaluationRecord, statuses []models.OverallStatus, limit int) []models.EvaluationRecord {
	filtered := []models.EvaluationRecord{}
	for _, record := range records {
		for _, status := range statuses {
			if record.Result.OverallStatus == status {
				filtered = append(filtered, record)
				break
			}
		}
		if len(filtered) == limit {
			break
		}
	}
	return filtered
}

func filterByUser(records []models.EvaluationRecord, userID string) []models.EvaluationRecord {
	if userID == "" {
		return records
	}

	filtered := []models.EvaluationRecord{}
	for _, record := range records {
		if record.UserID == userID {
			filtered = append(filtered, record)
		}
	}
	return filtered
}
