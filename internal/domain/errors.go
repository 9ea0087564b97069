package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrNotFound                = errors.New("resource not found")
	ErrRuleNotFound            = errors.New("rule not found")
	ErrInvalidRule             = errors.New("invalid rule")
	ErrDuplicateRule           = errors.New("rule already exists")
	ErrDuplicateRulesInRequest = errors.New("duplicate rules in request")
	ErrMappingConfig           = errors.New("invalid field mapping catalog")
	ErrOrganizerUnavailable    = errors.New("organizer unavailable")
	ErrInvalidInput            = errors.New("invalid input")
	ErrArtifactUpload          = errors.New("artifact upload failed")
)

// RuleConflict names a batch entry whose pair is already held by a stored rule.
type RuleConflict struct {
	Index           int    `json:"index"`
	ExistingID      int64  `json:"existing_id"`
	CertificateType string `json:"certificate_type"`
	ProductName     string `json:"product_name"`
}

// DuplicateRuleError reports batch entries whose (certificate_type,
// product_name) pair is already held by a stored rule. The flat fields
// describe the first conflict; Conflicts lists all of them.
type DuplicateRuleError struct {
	Index           int
	ExistingID      int64
	CertificateType string
	ProductName     string
	Conflicts       []RuleConflict
}

// NewDuplicateRuleError builds the error from every conflict found in a batch.
func NewDuplicateRuleError(conflicts []RuleConflict) *DuplicateRuleError {
	first := conflicts[0]
	return &DuplicateRuleError{
		Index:           first.Index,
		ExistingID:      first.ExistingID,
		CertificateType: first.CertificateType,
		ProductName:     first.ProductName,
		Conflicts:       conflicts,
	}
}

// All returns every conflict, falling back to the flat fields.
func (e *DuplicateRuleError) All() []RuleConflict {
	if len(e.Conflicts) > 0 {
		return e.Conflicts
	}
	return []RuleConflict{{
		Index:           e.Index,
		ExistingID:      e.ExistingID,
		CertificateType: e.CertificateType,
		ProductName:     e.ProductName,
	}}
}

func (e *DuplicateRuleError) Error() string {
	msg := fmt.Sprintf("rule already exists for certificate type %q and product name %q (index %d, existing id %d)",
		e.CertificateType, e.ProductName, e.Index, e.ExistingID)
	if n := len(e.Conflicts); n > 1 {
		msg += fmt.Sprintf(" and %d more", n-1)
	}
	return msg
}

func (e *DuplicateRuleError) Is(target error) bool { return target == ErrDuplicateRule }

// IndexPair names two positions in a request batch that conflict.
type IndexPair struct {
	First  int `json:"first"`
	Second int `json:"second"`
}

// DuplicateRulesInRequestError reports pairs of batch entries that normalize
// to the same rule.
type DuplicateRulesInRequestError struct {
	Conflicts []IndexPair
}

func (e *DuplicateRulesInRequestError) Error() string {
	parts := make([]string, len(e.Conflicts))
	for i, c := range e.Conflicts {
		parts[i] = fmt.Sprintf("%d and %d", c.First, c.Second)
	}
	return "duplicate rules in request at indices " + strings.Join(parts, ", ")
}

func (e *DuplicateRulesInRequestError) Is(target error) bool {
	return target == ErrDuplicateRulesInRequest
}

// RuleNotFoundError lists every requested id that does not exist.
type RuleNotFoundError struct {
	IDs []int64
}

func (e *RuleNotFoundError) Error() string {
	parts := make([]string, len(e.IDs))
	for i, id := range e.IDs {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return "rule not found for id(s): [" + strings.Join(parts, ", ") + "]"
}

func (e *RuleNotFoundError) Is(target error) bool {
	return target == ErrRuleNotFound || target == ErrNotFound
}

// InvalidRuleError reports a malformed rule in a request batch.
type InvalidRuleError struct {
	Index  int
	Reason string
}

func (e *InvalidRuleError) Error() string {
	return fmt.Sprintf("invalid rule at index %d: %s", e.Index, e.Reason)
}

func (e *InvalidRuleError) Is(target error) bool { return target == ErrInvalidRule }
