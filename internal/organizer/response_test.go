package organizer_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"acordex/internal/domain"
	"acordex/internal/organizer"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name  string
		reply string
		want  string
	}{
		{"bare object", `{"a":"b"}`, `{"a":"b"}`},
		{"json fence", "```json\n{\"a\":\"b\"}\n```", `{"a":"b"}`},
		{"plain fence", "```\n{\"a\":\"b\"}\n```", `{"a":"b"}`},
		{"surrounding chatter", "Here you go: {\"a\":\"b\"} hope that helps", `{"a":"b"}`},
		{"no object", "sorry, I cannot help", ""},
		{"broken object", `{"a":`, ""},
		{"empty", "   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, organizer.ExtractJSON(tt.reply))
		})
	}
}

func TestParseResult_ResidualMode(t *testing.T) {
	reply := "```json\n" + `{
		"insured": {"name": "Widget Co", "address": "12 Main St, Springfield, IL 62701"},
		"producer": {"name": "Acme Agency", "contact": "Jane Roe", "phone": "555-0100"},
		"certificate_holder": "City of Springfield",
		"insurers": [{"letter": "A", "name": "Great Insurer", "naic": 12345}],
		"additional_fields": {"Other Policy Code A": "PROP", "Empty": null, "Count": 3},
		"document_type": "certificate"
	}` + "\n```"

	res, err := organizer.ParseResult(reply, domain.OrganizeModeResidual)
	require.NoError(t, err)

	assert.Equal(t, domain.Party{Name: "Widget Co", Address: "12 Main St, Springfield, IL 62701"}, res.Insured)
	assert.Equal(t, "Jane Roe", res.Producer.ContactPerson)
	assert.Equal(t, "555-0100", res.Producer.Phone)
	assert.Equal(t, domain.Party{Name: "City of Springfield"}, res.CertificateHolder)
	assert.Equal(t, []domain.Insurer{{Letter: "A", Name: "Great Insurer", NAIC: "12345"}}, res.Insurers)
	assert.Equal(t, map[string]string{"Other Policy Code A": "PROP", "Count": "3"}, res.AdditionalFields)
	require.NotNil(t, res.Classification)
	assert.Equal(t, "certificate", res.Classification.DocumentType)

	res, err = organizer.ParseResult(`{"insured":"Widget Co"}`, domain.OrganizeModeResidual)
	require.NoError(t, err)
	assert.Nil(t, res.Classification)
}

func TestParseResult_DocumentModeClassification(t *testing.T) {
	reply := `{"document_type":"certificate","certificate_type":"Certificate of Insurance","product_name":"General Liability","insured":{"name":"Widget Co"}}`

	res, err := organizer.ParseResult(reply, domain.OrganizeModeDocument)
	require.NoError(t, err)
	require.NotNil(t, res.Classification)
	assert.Equal(t, domain.Classification{
		DocumentType:    "certificate",
		CertificateType: "Certificate of Insurance",
		ProductName:     "General Liability",
	}, *res.Classification)
	assert.Equal(t, "Widget Co", res.Insured.Name)
	assert.NotNil(t, res.Insurers)
}

func TestParseResult_Errors(t *testing.T) {
	_, err := organizer.ParseResult("no json here", domain.OrganizeModeResidual)
	assert.Error(t, err)

	_, err = organizer.ParseResult(`["not","an","object"]`, domain.OrganizeModeResidual)
	assert.Error(t, err)

	_, err = organizer.ParseResult(`{"insurers": "A"}`, domain.OrganizeModeResidual)
	assert.Error(t, err)

	_, err = organizer.ParseResult(`{"additional_fields": {"nested": {"x": 1}}}`, domain.OrganizeModeResidual)
	assert.Error(t, err)
}
