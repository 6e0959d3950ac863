package aiunderwriting

import "underwriting-workers/internal/common/validation"

var inputSchema = validation.MustCompile(`{
	"type": "object",
	"required": ["application", "applicant", "documents"],
	"properties": {
		"applicationId": {"type": "string"},
		"application": {
			"type": "object",
			"required": ["requestedAmount", "duration"],
			"properties": {
				"id": {"type": "string"},
				"requestedAmount": {"type": "number"},
				"purpose": {"type": "string"},
				"duration": {"type": "integer"}
			}
		},
		"applicant": {
			"type": "object",
			"required": ["occupation", "monthlyIncome"],
			"properties": {
				"occupation": {"type": "string"},
				"monthlyIncome": {"type": "number"}
			}
		},
		"documents": {
			"type": "array",
			"items": {
				"type": "object",
				"required": ["type"],
				"properties": {"type": {"type": "string"}}
			}
		},
		"alternativeData": {"type": "object"}
	}
}`)

// ValidateInput checks the raw job variables against the input contract.
func ValidateInput(variables []byte) error {
	return inputSchema.ValidateBytes(variables).Err()
}
