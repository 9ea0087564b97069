package organizer

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"acordex/internal/domain"
)

const resultSchemaJSON = `{
  "type": "object",
  "definitions": {
    "text": {"type": ["string", "number", "boolean", "null"]},
    "party": {
      "type": ["object", "string", "null"],
      "additionalProperties": {"$ref": "#/definitions/text"}
    }
  },
  "properties": {
    "insured": {"$ref": "#/definitions/party"},
    "producer": {"$ref": "#/definitions/party"},
    "certificate_holder": {"$ref": "#/definitions/party"},
    "insurers": {
      "type": ["array", "null"],
      "items": {
        "type": "object",
        "additionalProperties": {"$ref": "#/definitions/text"}
      }
    },
    "additional_fields": {
      "type": ["object", "null"],
      "additionalProperties": {"$ref": "#/definitions/text"}
    },
    "document_type": {"$ref": "#/definitions/text"},
    "certificate_type": {"$ref": "#/definitions/text"},
    "product_name": {"$ref": "#/definitions/text"}
  }
}`

var resultSchema = mustCompileSchema()

func mustCompileSchema() *jsonschema.Schema {
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("organizer_result.json", strings.NewReader(resultSchemaJSON)); err != nil {
		panic(fmt.Sprintf("organizer: add schema: %v", err))
	}
	return compiler.MustCompile("organizer_result.json")
}

// ExtractJSON pulls the JSON object out of a model reply, tolerating markdown
// fences and chatter around the object. It returns "" if no object is found.
func ExtractJSON(reply string) string {
	s := strings.TrimSpace(reply)
	if s == "" {
		return ""
	}
	if start := strings.Index(s, "```"); start >= 0 {
		body := s[start+3:]
		body = strings.TrimPrefix(body, "json")
		if end := strings.Index(body, "```"); end > 0 {
			s = strings.TrimSpace(body[:end])
		}
	}
	if json.Valid([]byte(s)) && strings.HasPrefix(s, "{") {
		return s
	}
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return ""
	}
	candidate := s[start : end+1]
	if !json.Valid([]byte(candidate)) {
		return ""
	}
	return candidate
}

// ParseResult decodes a model reply into an OrganizedResult. Replies that
// carry no JSON object or do not match the expected shape are errors.
func ParseResult(reply string, mode domain.OrganizeMode) (*domain.OrganizedResult, error) {
	body := ExtractJSON(reply)
	if body == "" {
		return nil, fmt.Errorf("no JSON object in organizer reply (raw: %s)", truncate(reply, 500))
	}

	var v any
	if err := json.Unmarshal([]byte(body), &v); err != nil {
		return nil, fmt.Errorf("parsing organizer JSON output: %w", err)
	}
	if err := resultSchema.Validate(v); err != nil {
		return nil, fmt.Errorf("organizer output does not match schema: %w", err)
	}
	obj := v.(map[string]any)

	res := EmptyResult()
	res.Insured = toParty(obj["insured"])
	res.CertificateHolder = toParty(obj["certificate_holder"])
	res.Producer = toProducer(obj["producer"])

	if list, ok := obj["insurers"].([]any); ok {
		for _, item := range list {
			m, _ := item.(map[string]any)
			res.Insurers = append(res.Insurers, domain.Insurer{
				Letter: text(m["letter"]),
				Name:   text(m["name"]),
				NAIC:   firstText(m, "naic", "naic_code"),
			})
		}
	}
	if extra, ok := obj["additional_fields"].(map[string]any); ok {
		for k, val := range extra {
			if s := text(val); s != "" {
				res.AdditionalFields[k] = s
			}
		}
	}

	class := domain.Classification{
		DocumentType:    text(obj["document_type"]),
		CertificateType: text(obj["certificate_type"]),
		ProductName:     text(obj["product_name"]),
	}
	if mode == domain.OrganizeModeDocument || class != (domain.Classification{}) {
		res.Classification = &class
	}
	return res, nil
}

func toParty(v any) domain.Party {
	switch t := v.(type) {
	case string:
		return domain.Party{Name: strings.TrimSpace(t)}
	case map[string]any:
		return domain.Party{Name: text(t["name"]), Address: text(t["address"])}
	}
	return domain.Party{}
}

func toProducer(v any) domain.Producer {
	switch t := v.(type) {
	case string:
		return domain.Producer{Name: strings.TrimSpace(t)}
	case map[string]any:
		return domain.Producer{
			Name:          text(t["name"]),
			Address:       text(t["address"]),
			ContactPerson: firstText(t, "contact_person", "contact"),
			Phone:         text(t["phone"]),
			Fax:           text(t["fax"]),
			Email:         text(t["email"]),
		}
	}
	return domain.Producer{}
}

func firstText(m map[string]any, keys ...string) string {
	for _, k := range keys {
		if s := text(m[k]); s != "" {
			return s
		}
	}
	return ""
}

func text(v any) string {
	switch t := v.(type) {
	case string:
		s := strings.TrimSpace(t)
		if strings.EqualFold(s, "null") {
			return ""
		}
		return s
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	}
	return ""
}
