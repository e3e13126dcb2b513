package database

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/lib/pq"
	"github.com/Capstone-E1/aquasmart_treatment/internal/models"
	"github.com/Capstone-E1/aquasmart_treatment/internal/store"
)

// DatabaseStore implements persistent evaluation storage using PostgreSQL
type DatabaseStore struct {
	db *sql.DB
}

// NewDatabaseStore creates a new database store
func NewDatabaseStore(db *sql.DB) *DatabaseStore {
	return &DatabaseStore{db: db}
}

// stagesColumn is the JSONB layout of the stages column
type stagesColumn struct {
	Primary   models.TreatmentStage `json:"primary"`
	Secondary models.TreatmentStage `json:"secondary"`
	Tertiary  models.TreatmentStage `json:"tertiary"`
}

const selectEvaluation = `
	SELECT id, user_id, session_id, created_at, turbidity, ph, cod, nitrogen, phosphorus,
		tss, bod, tds, reuse_type, overall_status, total_stages_required,
		estimated_treatment_time, estimated_efficiency, stages
	FROM treatment_evaluations`

// Ping checks the database connection
func (s *DatabaseStore) Ping() error {
	return s.db.Ping()
}

// AddEvaluation stores an evaluation record in the database
func (s *DatabaseStore) AddEvaluation(record models.EvaluationRecord) error {
	stages, err := json.Marshal(stagesColumn{
		Primary:   record.Result.PrimaryTreatment,
		Secondary: record.Result.SecondaryTreatment,
		Tertiary:  record.Result.TertiaryTreatment,
	})
	if err != nil {
		return fmt.Errorf("failed to marshal stages: %w", err)
	}

	userID := record.UserID
	if userID == "" {
		userID = "anonymous"
	}

	p := record.Parameters
	query := `
		INSERT INTO treatment_evaluations (id, user_id, session_id, created_at, turbidity, ph, cod,
			nitrogen, phosphorus, tss, bod, tds, reuse_type, overall_status, total_stages_required,
			estimated_treatment_time, estimated_efficiency, stages)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`

	_, err = s.db.Exec(query, record.ID, userID, record.SessionID, record.CreatedAt,
		p.Turbidity, p.Ph, p.COD, p.Nitrogen, p.Phosphorus,
		nullFloat(p.TSS), nullFloat(p.BOD), nullFloat(p.TDS), p.ReuseType,
		string(record.Result.OverallStatus), record.Result.TotalStagesRequired,
		record.Result.EstimatedTreatmentTime, record.Result.EstimatedEfficiency, stages)
	if err != nil {
		return fmt.Errorf("failed to store evaluation %s: %w", record.ID, err)
	}

	return nil
}

// GetEvaluation returns one evaluation by id
func (s *DatabaseStore) GetEvaluation(id string) (*models.EvaluationRecord, error) {
	row := s.db.QueryRow(selectEvaluation+` WHERE id = $1`, id)

	record, err := scanEvaluation(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get evaluation %s: %w", id, err)
	}

	return record, nil
}

// GetRecentEvaluations returns the most recent N evaluations, newest first
func (s *DatabaseStore) GetRecentEvaluations(limit int) []models.EvaluationRecord {
	return s.queryEvaluations("recent evaluations",
		selectEvaluation+` ORDER BY created_at DESC LIMIT $1`, limitOrAll(limit))
}

// GetEvaluationsByUser returns the most recent N evaluations of one user
func (s *DatabaseStore) GetEvaluationsByUser(userID string, limit int) []models.EvaluationRecord {
	return s.queryEvaluations("evaluations by user",
		selectEvaluation+` WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2`, userID, limitOrAll(limit))
}

// GetEvaluationsByStatus returns the most recent N evaluations with any of the given statuses
func (s *DatabaseStore) GetEvaluationsByStatus(statuses []models.OverallStatus, limit int) []models.EvaluationRecord {
	values := make([]string, len(statuses))
	for i, status := range statuses {
		values[i] = string(status)
	}

	return s.queryEvaluations("evaluations by status",
		selectEvaluation+` WHERE overall_status = ANY($1) ORDER BY created_at DESC LIMIT $2`,
		pq.Array(values), limitOrAll(limit))
}

// GetEvaluationsInRange returns evaluations created within [start, end], oldest first
func (s *DatabaseStore) GetEvaluationsInRange(start, end time.Time) []models.EvaluationRecord {
	return s.queryEvaluations("evaluations in range",
		selectEvaluation+` WHERE created_at >= $1 AND created_at <= $2 ORDER BY created_at ASC`, start, end)
}

// GetEvaluationCount returns the number of stored evaluations
func (s *DatabaseStore) GetEvaluationCount() int {
	var count int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM treatment_evaluations`).Scan(&count); err != nil {
		log.Printf("❌ Error counting evaluations: %v", err)
		return 0
	}
	return count
}

// GetStatusCounts returns the number of stored evaluations per overall status
func (s *DatabaseStore) GetStatusCounts() map[models.OverallStatus]int {
	counts := map[models.OverallStatus]int{
		models.StatusSafe:           0,
		models.StatusNeedsTreatment: 0,
		models.StatusCritical:       0,
	}

	rows, err := s.db.Query(`SELECT overall_status, COUNT(*) FROM treatment_evaluations GROUP BY overall_status`)
	if err != nil {
		log.Printf("❌ Error getting status counts: %v", err)
		return counts
	}
	defer rows.Close()

	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			log.Printf("❌ Error scanning status count: %v", err)
			continue
		}
		counts[models.OverallStatus(status)] = count
	}

	return counts
}

func (s *DatabaseStore) queryEvaluations(what, query string, args ...interface{}) []models.EvaluationRecord {
	result := []models.EvaluationRecord{}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		log.Printf("❌ Error getting %s: %v", what, err)
		return result
	}
	defer rows.Close()

	for rows.Next() {
		record, err := scanEvaluation(rows)
		if err != nil {
			log.Printf("❌ Error scanning %s: %v", what, err)
			continue
		}
		result = append(result, *record)
	}

	if err := rows.Err(); err != nil {
		log.Printf("❌ Error iterating %s: %v", what, err)
	}

	return result
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanEvaluation(row scanner) (*models.EvaluationRecord, error) {
	var (
		record        models.EvaluationRecord
		tss, bod, tds sql.NullFloat64
		status        string
		stagesJSON    []byte
	)

	err := row.Scan(&record.ID, &record.UserID, &record.SessionID, &record.CreatedAt,
		&record.Parameters.Turbidity, &record.Parameters.Ph, &record.Parameters.COD,
		&record.Parameters.Nitrogen, &record.Parameters.Phosphorus,
		&tss, &bod, &tds, &record.Parameters.ReuseType,
		&status, &record.Result.TotalStagesRequired,
		&record.Result.EstimatedTreatmentTime, &record.Result.EstimatedEfficiency, &stagesJSON)
	if err != nil {
		return nil, err
	}

	record.Parameters.TSS = floatPtr(tss)
	record.Parameters.BOD = floatPtr(bod)
	record.Parameters.TDS = floatPtr(tds)
	record.Result.OverallStatus = models.OverallStatus(status)

	var stages stagesColumn
	if err := json.Unmarshal(stagesJSON, &stages); err != nil {
		return nil, fmt.Errorf("failed to decode stages: %w", err)
	}
	record.Result.PrimaryTreatment = stages.Primary
	record.Result.SecondaryTreatment = stages.Secondary
	record.Result.TertiaryTreatment = stages.Tertiary

	return &record, nil
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func floatPtr(v sql.NullFloat64) *float64 {
	if !v.Valid {
		return nil
	}
	f := v.Float64
	return &f
}

// limitOrAll maps a non-positive limit to NULL, which PostgreSQL treats as no limit
func limitOrAll(limit int) interface{} {
	if limit <= 0 {
		return nil
	}
	return limit
}
