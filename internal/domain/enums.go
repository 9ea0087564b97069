package domain

// Confidence grades how strongly a field set resembles an ACORD form.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// Transform names a deterministic value conversion applied by the mapper.
type Transform string

const (
	TransformIdentity        Transform = "identity"
	TransformCurrency        Transform = "currency"
	TransformBooleanYesNo    Transform = "boolean_yes_no"
	TransformDatePassthrough Transform = "date_passthrough"
)

// Valid reports whether t is a known transform.
func (t Transform) Valid() bool {
	switch t {
	case TransformIdentity, TransformCurrency, TransformBooleanYesNo, TransformDatePassthrough:
		return true
	}
	return false
}

// OrganizeMode selects what the organizer is asked to structure.
type OrganizeMode string

const (
	// OrganizeModeResidual structures fields left over after direct mapping.
	OrganizeModeResidual OrganizeMode = "residual"
	// OrganizeModeDocument structures a whole non-ACORD document.
	OrganizeModeDocument OrganizeMode = "document"
)

// ExtractionMethod records which path produced a FormattedOutput.
type ExtractionMethod string

const (
	ExtractionMethodACORDHybrid ExtractionMethod = "acord_hybrid"
	ExtractionMethodGeneric     ExtractionMethod = "generic"
)

// OrganizerStatus reports how the organizer stage ended for a request.
type OrganizerStatus string

const (
	OrganizerStatusOK       OrganizerStatus = "ok"
	OrganizerStatusSkipped  OrganizerStatus = "skipped"
	OrganizerStatusDegraded OrganizerStatus = "degraded"
)

// MatchOutcome is the three-way result of rule matching.
type MatchOutcome string

const (
	MatchOutcomeApproved      MatchOutcome = "approved"
	MatchOutcomeRejected      MatchOutcome = "rejected"
	MatchOutcomeNotApplicable MatchOutcome = "not_applicable"
)

// CertificateDocumentType is the only document type rules apply to.
const CertificateDocumentType = "certificate"
