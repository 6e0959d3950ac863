// Package store persists, caches, indexes and announces finished assessments.
package store

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"underwriting-workers/internal/models"
	"underwriting-workers/internal/underwriting"
)

var ErrNotFound = errors.New("assessment not found")

// Record is one stored assessment.
type Record struct {
	AssessmentID  string                `json:"assessmentId"`
	ApplicationID string                `json:"applicationId"`
	InputHash     string                `json:"inputHash"`
	Assessment    models.RiskAssessment `json:"assessment"`
	AssessedAt    time.Time             `json:"assessedAt"`
}

// InputHash fingerprints a request. The pipeline is deterministic, so equal
// hashes for the same application yield the same assessment.
func InputHash(req underwriting.Request) (string, error) {
	b, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("hash request: %w", err)
	}
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:]), nil
}
