package organizer

import (
	"encoding/json"
	"strings"
	"unicode/utf8"

	"acordex/internal/domain"
	"acordex/internal/port"
)

const maxPageTextChars = 60000

// SystemPrompt is sent as the system message on every organizer call.
const SystemPrompt = "You structure contact and party data taken from insurance certificates. Reply with a single JSON object and nothing else."

const residualOutputFormat = `{"product_name":"","insured":{"name":"","address":""},` +
	`"producer":{"name":"","address":"","contact_person":"","phone":"","fax":"","email":""},` +
	`"certificate_holder":{"name":"","address":""},` +
	`"insurers":[{"letter":"A","name":"","naic":""}],` +
	`"additional_fields":{"Readable Label":"value"}}`

const documentOutputFormat = `{"document_type":"","certificate_type":"","product_name":"",` +
	`"insured":{"name":"","address":""},` +
	`"producer":{"name":"","address":"","contact_person":"","phone":"","fax":"","email":""},` +
	`"certificate_holder":{"name":"","address":""},` +
	`"insurers":[{"letter":"A","name":"","naic":""}],` +
	`"additional_fields":{"Readable Label":"value"}}`

// BuildPrompt renders the user message for input.
func BuildPrompt(input port.OrganizeInput) string {
	if input.Mode == domain.OrganizeModeDocument {
		return buildDocumentPrompt(input)
	}
	return buildResidualPrompt(input.Fields)
}

func buildResidualPrompt(fields domain.RawFieldMap) string {
	var b strings.Builder
	b.WriteString("Arrange these ACORD certificate form fields into JSON.\n\n")
	b.WriteString("FIELDS: ")
	b.WriteString(compactFields(fields))
	b.WriteString("\n\nRESPOND WITH:\n")
	b.WriteString(residualOutputFormat)
	b.WriteString("\n\nRULES:\n")
	b.WriteString("1. Join address lines, city, state and postal code into one address string.\n")
	b.WriteString("2. Leave out anything the fields do not contain.\n")
	b.WriteString("3. Put every other field in additional_fields under a Title Case label built from its name, e.g. \"OtherPolicy_Code_A\" becomes \"Other Policy Code A\".\n")
	b.WriteString("4. product_name is the main coverage or product the certificate evidences, or empty if unclear.\n")
	b.WriteString("5. Output JSON only.")
	return b.String()
}

func buildDocumentPrompt(input port.OrganizeInput) string {
	var b strings.Builder
	b.WriteString("Read this document and arrange what it says into JSON.\n\n")
	if text := strings.TrimSpace(input.PageText); text != "" {
		b.WriteString("=== DOCUMENT TEXT ===\n")
		b.WriteString(truncate(text, maxPageTextChars))
		b.WriteString("\n\n")
	}
	if fields := input.Fields.NonEmpty(); fields.Len() > 0 {
		b.WriteString("=== FORM FIELD VALUES ===\n")
		for _, f := range fields {
			b.WriteString(domain.NormalizeFieldName(f.Name))
			b.WriteString(": ")
			b.WriteString(strings.TrimSpace(f.Value))
			b.WriteByte('\n')
		}
		b.WriteByte('\n')
	}
	b.WriteString("RESPOND WITH:\n")
	b.WriteString(documentOutputFormat)
	b.WriteString("\n\nRULES:\n")
	b.WriteString("1. document_type is one lower-case word such as \"certificate\", \"invoice\", \"policy\" or \"letter\".\n")
	b.WriteString("2. For certificates, certificate_type names the kind of certificate and product_name the product or coverage it certifies.\n")
	b.WriteString("3. Leave out anything the document does not contain.\n")
	b.WriteString("4. Output JSON only.")
	return b.String()
}

// compactFields renders non-empty fields as a one-line JSON object.
func compactFields(fields domain.RawFieldMap) string {
	trimmed := make(domain.RawFieldMap, 0, fields.Len())
	for _, f := range fields.NonEmpty() {
		trimmed = append(trimmed, domain.RawField{Name: f.Name, Value: strings.TrimSpace(f.Value)})
	}
	out, err := json.Marshal(trimmed)
	if err != nil {
		return "{}"
	}
	return string(out)
}

// truncate cuts s to at most maxLen bytes without splitting a UTF-8 sequence.
func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}
