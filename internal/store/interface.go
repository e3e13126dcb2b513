package store

import (
	"errors"
	"time"

	"github.com/Capstone-E1/aquasmart_treatment/internal/models"
)

// ErrNotFound is returned when a requested evaluation does not exist
var ErrNotFound = errors.New("evaluation not found")

// DataStore defines the interface for evaluation storage operations
type DataStore interface {
	// Health check
	Ping() error

	AddEvaluation(models.EvaluationRecord) error
	GetEvaluation(id string) (*models.EvaluationRecord, error)
	GetRecentEvaluations(limit int) []models.EvaluationRecord
	GetEvaluationsByUser(userID string, limit int) []models.EvaluationRecord
	GetEvaluationsByStatus(statuses []models.OverallStatus, limit int) []models.EvaluationRecord
	GetEvaluationsInRange(start, end time.Time) []models.EvaluationRecord
	GetEvaluationCount() int
	GetStatusCounts() map[models.OverallStatus]int
}
