package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"underwriting-workers/internal/common/logger"
)

const schema = `
CREATE TABLE IF NOT EXISTS underwriting_assessments (
	id                TEXT PRIMARY KEY,
	application_id    TEXT NOT NULL,
	input_hash        TEXT NOT NULL,
	credit_score      INTEGER NOT NULL,
	risk_category     TEXT NOT NULL,
	decision          TEXT NOT NULL,
	recommended_amount NUMERIC(14,2) NOT NULL,
	interest_rate     NUMERIC(5,4) NOT NULL,
	assessment        JSONB NOT NULL,
	assessed_at       TIMESTAMPTZ NOT NULL,
	UNIQUE (application_id, input_hash)
);
CREATE TABLE IF NOT EXISTS audit_log (
	id            BIGSERIAL PRIMARY KEY,
	event_type    TEXT NOT NULL,
	resource_type TEXT NOT NULL,
	resource_id   TEXT NOT NULL,
	details       JSONB,
	created_at    TIMESTAMPTZ NOT NULL
);`

// PostgresRepository stores assessments and their audit trail.
type PostgresRepository struct {
	db     *sql.DB
	logger logger.Logger
}

func NewPostgresRepository(db *sql.DB, log logger.Logger) *PostgresRepository {
	return &PostgresRepository{db: db, logger: log}
}

// Migrate creates the tables if they do not exist.
func (r *PostgresRepository) Migrate(ctx context.Context) error {
	if _, err := r.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("migrate underwriting schema: %w", err)
	}
	return nil
}

// Save inserts the assessment and returns the stored record. When an
// assessment for the same application and input already exists, that row is
// returned unchanged and no audit entry is written. The audit entry is best
// effort.
func (r *PostgresRepository) Save(ctx context.Context, rec Record) (*Record, error) {
	body, err := json.Marshal(rec.Assessment)
	if err != nil {
		return nil, fmt.Errorf("marshal assessment: %w", err)
	}

	a := rec.Assessment
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO underwriting_assessments (
			id, application_id, input_hash, credit_score, risk_category, decision,
			recommended_amount, interest_rate, assessment, assessed_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (application_id, input_hash) DO NOTHING`,
		rec.AssessmentID,
		rec.ApplicationID,
		rec.InputHash,
		a.CreditScore,
		string(a.RiskCategory),
		string(a.Decision),
		a.RecommendedAmount,
		a.InterestRate,
		body,
		rec.AssessedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert assessment: %w", err)
	}
	inserted, err := res.RowsAffected()
	if err != nil {
		return nil, fmt.Errorf("insert assessment: %w", err)
	}
	if inserted == 0 {
		stored, err := r.FindByInput(ctx, rec.ApplicationID, rec.InputHash)
		if err != nil {
			return nil, fmt.Errorf("load conflicting assessment: %w", err)
		}
		r.logger.Info("assessment already stored", map[string]interface{}{
			"applicationId": rec.ApplicationID,
			"assessmentId":  stored.AssessmentID,
		})
		return stored, nil
	}

	details, _ := json.Marshal(map[string]interface{}{
		"applicationId":    rec.ApplicationID,
		"creditScore":      a.CreditScore,
		"riskCategory":     a.RiskCategory,
		"decision":         a.Decision,
		"predictionSource": a.PredictionSource,
		"narrativeSource":  a.NarrativeSource,
	})
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO audit_log (event_type, resource_type, resource_id, details, created_at)
		VALUES ($1, $2, $3, $4, $5)`,
		"underwriting_assessed",
		"loan_application",
		rec.ApplicationID,
		details,
		rec.AssessedAt,
	)
	if err != nil {
		r.logger.Warn("audit log insert failed", map[string]interface{}{
			"error":         err,
			"applicationId": rec.ApplicationID,
		})
	}
	return &rec, nil
}

// FindByInput returns the stored assessment for an application and input hash.
func (r *PostgresRepository) FindByInput(ctx context.Context, applicationID, inputHash string) (*Record, error) {
	var (
		rec  Record
		body []byte
	)
	err := r.db.QueryRowContext(ctx, `
		SELECT id, application_id, input_hash, assessment, assessed_at
		FROM underwriting_assessments
		WHERE application_id = $1 AND input_hash = $2`,
		applicationID, inputHash,
	).Scan(&rec.AssessmentID, &rec.ApplicationID, &rec.InputHash, &body, &rec.AssessedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query assessment: %w", err)
	}
	if err := json.Unmarshal(body, &rec.Assessment); err != nil {
		return nil, fmt.Errorf("decode stored assessment: %w", err)
	}
	rec.AssessedAt = rec.AssessedAt.UTC()
	return &rec, nil
}
