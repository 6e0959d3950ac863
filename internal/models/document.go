// internal/models/document.go
package models

import (
	"fmt"
	"strings"
)

type DocumentType string

const (
	DocumentIdentityProof DocumentType = "identity-proof"
	DocumentTaxID         DocumentType = "tax-id"
	DocumentIncomeProof   DocumentType = "income-proof"
	DocumentAddressProof  DocumentType = "address-proof"
)

var documentTypeAliases = map[string]DocumentType{
	"identity-proof": DocumentIdentityProof,
	"aadhaar":        DocumentIdentityProof,
	"tax-id":         DocumentTaxID,
	"pan":            DocumentTaxID,
	"income-proof":   DocumentIncomeProof,
	"address-proof":  DocumentAddressProof,
}

// ParseDocumentType accepts the canonical names, their underscore forms and the
// regional aliases (aadhaar, pan).
func ParseDocumentType(s string) (DocumentType, error) {
	key := strings.ReplaceAll(strings.ToLower(strings.TrimSpace(s)), "_", "-")
	if t, ok := documentTypeAliases[key]; ok {
		return t, nil
	}
	return "", fmt.Errorf("unknown document type %q", s)
}

type DocumentStatus string

const (
	DocumentPending  DocumentStatus = "pending"
	DocumentVerified DocumentStatus = "verified"
	DocumentRejected DocumentStatus = "rejected"
)

// Document is an uploaded supporting document. ContentRef points at the stored file.
type Document struct {
	ID         string         `json:"id"`
	Type       DocumentType   `json:"type"`
	FileName   string         `json:"fileName,omitempty"`
	ContentRef string         `json:"contentRef,omitempty"`
	Status     DocumentStatus `json:"status,omitempty"`
}
