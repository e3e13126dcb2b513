package services

import (
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/Capstone-E1/aquasmart_treatment/internal/models"
	"github.com/Capstone-E1/aquasmart_treatment/internal/store"
	"github.com/Capstone-E1/aquasmart_treatment/internal/treatment"
)

// ResultNotifier receives every persisted evaluation (WebSocket hub, MQTT publisher)
type ResultNotifier interface {
	NotifyResult(record *models.EvaluationRecord)
}

// NotifierFunc adapts a function to ResultNotifier
type NotifierFunc func(record *models.EvaluationRecord)

// NotifyResult calls f(record)
func (f NotifierFunc) NotifyResult(record *models.EvaluationRecord) {
	f(record)
}

// EvaluationService validates samples, runs the decision engine and records the outcome
type EvaluationService struct {
	store     store.DataStore
	notifiers []ResultNotifier
	now       func() time.Time
	newID     func() string
}

// NewEvaluationService creates a new evaluation service
func NewEvaluationService(dataStore store.DataStore, notifiers ...ResultNotifier) *EvaluationService {
	return &EvaluationService{
		store:     dataStore,
		notifiers: notifiers,
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// AddNotifier registers another result notifier
func (s *EvaluationService) AddNotifier(n ResultNotifier) {
	s.notifiers = append(s.notifiers, n)
}

// Preview validates and evaluates a sample without storing it
func (s *EvaluationService) Preview(params models.WaterQualityParameters) (*models.TreatmentSimulationResult, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}

	result := treatment.Simulate(params)
	return &result, nil
}

// Evaluate validates and evaluates a sample, stores the record and notifies listeners.
// When storing fails the record is still returned together with the error.
func (s *EvaluationService) Evaluate(userID, sessionID string, params models.WaterQualityParameters) (*models.EvaluationRecord, error) {
	result, err := s.Preview(params)
	if err != nil {
		return nil, err
	}
	if err := checkLength("user_id", userID, models.MaxUserIDLength); err != nil {
		return nil, err
	}
	if err := checkLength("session_id", sessionID, models.MaxSessionIDLength); err != nil {
		return nil, err
	}

	if userID == "" {
		userID = "anonymous"
	}

	record := &models.EvaluationRecord{
		ID:         s.newID(),
		UserID:     userID,
		SessionID:  sessionID,
		CreatedAt:  s.now(),
		Parameters: params,
		Result:     *result,
	}

	if err := s.store.AddEvaluation(*record); err != nil {
		log.Printf("❌ Failed to store evaluation %s: %v", record.ID, err)
		return record, fmt.Errorf("failed to store evaluation: %w", err)
	}

	log.Printf("🧪 Evaluation %s for %s: %s (%d stages, %.0f%% efficiency, %.0fh)",
		record.ID, userID, result.OverallStatus, result.TotalStagesRequired,
		result.EstimatedEfficiency, result.EstimatedTreatmentTime)

	for _, n := range s.notifiers {
		n.NotifyResult(record)
	}

	return record, nil
}

func checkLength(field, value string, limit int) error {
	if n := len(value); n > limit {
		return &models.ValidationError{Field: field, Value: float64(n), Message: fmt.Sprintf("must be at most %d characters", limit)}
	}
	return nil
}
