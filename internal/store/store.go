package store

import (
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/Capstone-E1/aquasmart_treatment/internal/models"
)

// Store keeps evaluation records in memory, bounded to the most recent maxRecords
type Store struct {
	mu          sync.RWMutex
	evaluations []models.EvaluationRecord
	byID        map[string]int // index into evaluations, rebuilt on eviction
	maxRecords  int
}

// NewStore creates a new in-memory store
func NewStore(maxRecords int) *Store {
	if maxRecords <= 0 {
		maxRecords = 1000 // Default to store last 1000 evaluations
	}

	return &Store{
		evaluations: make([]models.EvaluationRecord, 0, maxRecords),
		byID:        make(map[string]int),
		maxRecords:  maxRecords,
	}
}

// Ping always succeeds for the in-memory store
func (s *Store) Ping() error {
	return nil
}

// AddEvaluation stores a new evaluation record
func (s *Store) AddEvaluation(record models.EvaluationRecord) error {
	if record.ID == "" {
		return fmt.Errorf("evaluation record has no id")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byID[record.ID]; exists {
		return fmt.Errorf("evaluation %s already exists", record.ID)
	}

	s.evaluations = append(s.evaluations, record)

	// Maintain maximum size by removing oldest entries
	if len(s.evaluations) > s.maxRecords {
		s.evaluations = s.evaluations[len(s.evaluations)-s.maxRecords:]
		s.reindex()
		return nil
	}

	s.byID[record.ID] = len(s.evaluations) - 1
	return nil
}

func (s *Store) reindex() {
	s.byID = make(map[string]int, len(s.evaluations))
	for i, record := range s.evaluations {
		s.byID[record.ID] = i
	}
}

// GetEvaluation returns one evaluation by id
func (s *Store) GetEvaluation(id string) (*models.EvaluationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx, exists := s.byID[id]
	if !exists {
		return nil, ErrNotFound
	}

	// Return a copy to avoid race conditions
	record := s.evaluations[idx]
	return &record, nil
}

// GetRecentEvaluations returns the most recent N evaluations, newest first
func (s *Store) GetRecentEvaluations(limit int) []models.EvaluationRecord {
	return s.filterRecent(limit, func(models.EvaluationRecord) bool { return true })
}

// GetEvaluationsByUser returns the most recent N evaluations of one user
func (s *Store) GetEvaluationsByUser(userID string, limit int) []models.EvaluationRecord {
	return s.filterRecent(limit, func(r models.EvaluationRecord) bool { return r.UserID == userID })
}

// GetEvaluationsByStatus returns the most recent N evaluations with any of the given statuses
func (s *Store) GetEvaluationsByStatus(statuses []models.OverallStatus, limit int) []models.EvaluationRecord {
	wanted := make(map[models.OverallStatus]bool, len(statuses))
	for _, status := range statuses {
		wanted[status] = true
	}
	return s.filterRecent(limit, func(r models.EvaluationRecord) bool { return wanted[r.Result.OverallStatus] })
}

func (s *Store) filterRecent(limit int, keep func(models.EvaluationRecord) bool) []models.EvaluationRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []models.EvaluationRecord{}
	for i := len(s.evaluations) - 1; i >= 0; i-- {
		if keep(s.evaluations[i]) {
			result = append(result, s.evaluations[i])
		}
	}

	// Insertion order is not guaranteed to be time order, so sort before cutting
	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.After(result[j].CreatedAt)
	})
	if limit > 0 && len(result) > limit {
		result = result[:limit]
	}

	return result
}

// GetEvaluationsInRange returns evaluations created within [start, end], oldest first
func (s *Store) GetEvaluationsInRange(start, end time.Time) []models.EvaluationRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := []models.EvaluationRecord{}
	for _, record := range s.evaluations {
		if !record.CreatedAt.Before(start) && !record.CreatedAt.After(end) {
			result = append(result, record)
		}
	}

	sort.SliceStable(result, func(i, j int) bool {
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})

	return result
}

// GetEvaluationCount returns the number of stored evaluations
func (s *Store) GetEvaluationCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.evaluations)
}

// GetStatusCounts returns the number of stored evaluations per overall status
func (s *Store) GetStatusCounts() map[models.OverallStatus]int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := map[models.OverallStatus]int{
		models.StatusSafe:           0,
		models.StatusNeedsTreatment: 0,
		models.StatusCritical:       0,
	}
	for _, record := range s.evaluations {
		counts[record.Result.OverallStatus]++
	}
	return counts
}
