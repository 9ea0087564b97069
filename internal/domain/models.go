package domain

import "time"

// DetectionResult is the form detector's verdict on a RawFieldMap.
type DetectionResult struct {
	IsFillable          bool       `json:"is_fillable"`
	IsACORD             bool       `json:"is_acord"`
	Confidence          Confidence `json:"confidence"`
	FieldCount          int        `json:"field_count"`
	MatchedPatternCount int        `json:"matched_pattern_count"`
	MatchedPatterns     []string   `json:"matched_patterns"`
	FormType            *string    `json:"form_type"`
	FormCode            *string    `json:"form_code"`
}

// Ambiguous reports a field set that shows some ACORD markers but too few
// to route it down the ACORD path.
func (d DetectionResult) Ambiguous() bool {
	return !d.IsACORD && d.MatchedPatternCount > 0
}

// MappedField is one catalog path filled by the direct mapper.
type MappedField struct {
	Path        []string  `json:"path"`
	Value       string    `json:"value"`
	SourceField string    `json:"source_field"`
	Transform   Transform `json:"transform"`
}

// DirectMapResult is the mapper's output: filled paths plus every raw field
// no rule consumed.
type DirectMapResult struct {
	Mapped   []MappedField `json:"mapped"`
	Residual RawFieldMap   `json:"residual"`
}

// ConsumedFields returns the raw field names the mapper used.
func (r DirectMapResult) ConsumedFields() []string {
	out := make([]string, len(r.Mapped))
	for i, m := range r.Mapped {
		out[i] = m.SourceField
	}
	return out
}

// Party is a named entity with an address.
type Party struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

// Producer is the agency or broker that issued the certificate.
type Producer struct {
	Name          string `json:"name"`
	Address       string `json:"address"`
	ContactPerson string `json:"contact_person"`
	Phone         string `json:"phone"`
	Fax           string `json:"fax"`
	Email         string `json:"email"`
}

// Insurer is one lettered insurer row on a certificate.
type Insurer struct {
	Letter string `json:"letter"`
	Name   string `json:"name"`
	NAIC   string `json:"naic"`
}

// TokenUsage counts LLM tokens spent on one organizer call.
type TokenUsage struct {
	Prompt     int `json:"prompt_tokens"`
	Completion int `json:"completion_tokens"`
	Total      int `json:"total_tokens"`
}

// Classification is what the organizer reports about a non-ACORD document.
type Classification struct {
	DocumentType    string `json:"document_type"`
	CertificateType string `json:"certificate_type"`
	ProductName     string `json:"product_name"`
}

// OrganizedResult is the organizer's structured view of loose fields.
type OrganizedResult struct {
	Insured           Party             `json:"insured"`
	Producer          Producer          `json:"producer"`
	CertificateHolder Party             `json:"certificate_holder"`
	Insurers          []Insurer         `json:"insurers"`
	AdditionalFields  map[string]string `json:"additional_fields"`
	Classification    *Classification   `json:"classification,omitempty"`
	TokensUsed        TokenUsage        `json:"tokens_used"`
}

// ValidationRule approves a (certificate type, product name) pair.
type ValidationRule struct {
	ID              int64     `db:"id" json:"id"`
	CertificateType string    `db:"certificate_type" json:"certificate_type"`
	ProductName     string    `db:"product_name" json:"product_name"`
	IsActive        bool      `db:"is_active" json:"is_active"`
	CreatedAt       time.Time `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time `db:"updated_at" json:"updated_at"`
}

// MatchInput is the portion of an extraction rule matching looks at.
type MatchInput struct {
	DocumentType    string `json:"document_type"`
	CertificateType string `json:"certificate_type"`
	ProductName     string `json:"product_name"`
}

// MatchResult is the outcome of matching an extraction against the rules.
type MatchResult struct {
	Outcome         MatchOutcome `json:"outcome"`
	DocumentType    string       `json:"document_type"`
	CertificateType string       `json:"certificate_type"`
	ProductName     string       `json:"product_name"`
	MatchedRuleID   *int64       `json:"matched_rule_id"`
	Message         string       `json:"message"`
}

// ExtractionResult is everything one extraction request produced.
type ExtractionResult struct {
	RequestID       string           `json:"request_id"`
	Method          ExtractionMethod `json:"extraction_method"`
	Detection       DetectionResult  `json:"detection"`
	DocumentType    string           `json:"document_type"`
	CertificateType string           `json:"certificate_type"`
	ProductName     string           `json:"product_name"`
	FormattedData   *FormattedOutput `json:"formatted_data"`
	TokensUsed      TokenUsage       `json:"tokens_used"`
	OrganizerStatus OrganizerStatus  `json:"organizer_status"`
	OrganizerError  string           `json:"organizer_error,omitempty"`
	ArtifactKey     string           `json:"artifact_key,omitempty"`
	CreatedAt       time.Time        `json:"created_at"`
}

// MatchInput derives the rule matching input from an extraction.
func (r *ExtractionResult) MatchInput() MatchInput {
	return MatchInput{
		DocumentType:    r.DocumentType,
		CertificateType: r.CertificateType,
		ProductName:     r.ProductName,
	}
}
