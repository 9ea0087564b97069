// Package detector decides whether a set of PDF form fields looks like an
// ACORD certificate and, if so, which one.
package detector

import (
	"strings"

	"acordex/internal/domain"
)

const (
	// ACORDThreshold is the minimum number of matched patterns for a form to
	// count as ACORD.
	ACORDThreshold = 3
	// HighConfidenceThreshold is the match count at which confidence is high.
	HighConfidenceThreshold = 6
)

type patternGroup int

const (
	groupParty patternGroup = iota
	groupCoverage
)

type pattern struct {
	fragment string
	group    patternGroup
}

// patterns are fragments of ACORD fillable field names. Each is counted at
// most once per document.
var patterns = []pattern{
	{"NamedInsured", groupParty},
	{"Producer_", groupParty},
	{"Policy_GeneralLiability", groupCoverage},
	{"Policy_AutomobileLiability", groupCoverage},
	{"Policy_WorkersCompensation", groupCoverage},
	{"Policy_ExcessLiability", groupCoverage},
	{"Insurer_FullName", groupParty},
	{"Insurer_NAICCode", groupParty},
	{"CertificateHolder", groupParty},
	{"Vehicle_", groupCoverage},
	{"WorkersCompensation", groupCoverage},
	{"GeneralAggregateLimitAmount", groupCoverage},
	{"EachOccurrenceLimitAmount", groupCoverage},
}

type formType struct {
	code  string
	label string
}

var formTypes = map[patternGroup]formType{
	groupCoverage: {code: "ACORD-25", label: "ACORD 25 - Certificate of Liability Insurance"},
	groupParty:    {code: "ACORD", label: "ACORD Form (type undetermined)"},
}

// Patterns returns the field-name fragments the detector looks for.
func Patterns() []string {
	out := make([]string, len(patterns))
	for i, p := range patterns {
		out[i] = p.fragment
	}
	return out
}

// Detect classifies raw. It has no side effects and never fails.
func Detect(raw domain.RawFieldMap) domain.DetectionResult {
	res := domain.DetectionResult{
		IsFillable:      raw.Len() > 0,
		FieldCount:      raw.Len(),
		Confidence:      domain.ConfidenceLow,
		MatchedPatterns: []string{},
	}
	if !res.IsFillable {
		return res
	}

	lowered := make([]string, raw.Len())
	for i, f := range raw {
		lowered[i] = strings.ToLower(f.Name)
	}

	groupCounts := map[patternGroup]int{}
	for _, p := range patterns {
		frag := strings.ToLower(p.fragment)
		for _, name := range lowered {
			if strings.Contains(name, frag) {
				res.MatchedPatterns = append(res.MatchedPatterns, p.fragment)
				groupCounts[p.group]++
				break
			}
		}
	}
	res.MatchedPatternCount = len(res.MatchedPatterns)
	res.IsACORD = res.MatchedPatternCount >= ACORDThreshold

	switch {
	case res.MatchedPatternCount >= HighConfidenceThreshold:
		res.Confidence = domain.ConfidenceHigh
	case res.MatchedPatternCount >= ACORDThreshold:
		res.Confidence = domain.ConfidenceMedium
	}

	if res.IsACORD {
		ft := formTypes[dominantGroup(groupCounts)]
		res.FormType = &ft.label
		res.FormCode = &ft.code
	}
	return res
}

// dominantGroup picks the group with the most matches. Ties go to the party
// group, which names no specific form.
func dominantGroup(counts map[patternGroup]int) patternGroup {
	if counts[groupCoverage] > counts[groupParty] {
		return groupCoverage
	}
	return groupParty
}
