package domain

import (
	"fmt"
	"sort"
)

// Root keys of a FormattedOutput.
const (
	RootInformation         = "information"
	RootGeneralLiability    = "general_liability"
	RootAutomobileLiability = "automobile_liability"
	RootUmbrellaLiability   = "umbrella_liability"
	RootWorkersComp         = "workers_comp"
	RootOtherCoverage       = "other_coverage"
	RootUnformattedData     = "unformatted_data"
)

// DeterministicRoots are the roots only the direct mapper may fill.
var DeterministicRoots = []string{
	RootInformation,
	RootGeneralLiability,
	RootAutomobileLiability,
	RootUmbrellaLiability,
	RootWorkersComp,
	RootOtherCoverage,
}

// IsDeterministicRoot reports whether root is one of DeterministicRoots.
func IsDeterministicRoot(root string) bool {
	for _, r := range DeterministicRoots {
		if r == root {
			return true
		}
	}
	return false
}

// Section is a tree of named string values. Inner nodes are Sections.
type Section map[string]any

// Set stores value at path, creating intermediate sections. It returns false
// without writing if the path is already occupied or runs through a leaf.
func (s Section) Set(path []string, value string) bool {
	if len(path) == 0 {
		return false
	}
	node := s
	for _, key := range path[:len(path)-1] {
		next, ok := node[key]
		if !ok {
			child := Section{}
			node[key] = child
			node = child
			continue
		}
		child, ok := next.(Section)
		if !ok {
			return false
		}
		node = child
	}
	leaf := path[len(path)-1]
	if _, taken := node[leaf]; taken {
		return false
	}
	node[leaf] = value
	return true
}

// Get returns the leaf value at path.
func (s Section) Get(path ...string) (string, bool) {
	if len(path) == 0 {
		return "", false
	}
	node := s
	for _, key := range path[:len(path)-1] {
		child, ok := node[key].(Section)
		if !ok {
			return "", false
		}
		node = child
	}
	v, ok := node[path[len(path)-1]].(string)
	return v, ok
}

// Leaves counts the string values in the tree.
func (s Section) Leaves() int {
	n := 0
	for _, v := range s {
		switch t := v.(type) {
		case string:
			n++
		case Section:
			n += t.Leaves()
		}
	}
	return n
}

// Keys returns the section's own keys, sorted.
func (s Section) Keys() []string {
	keys := make([]string, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// UnformattedData holds whatever the organizer could structure.
type UnformattedData struct {
	Insured           Party             `json:"insured"`
	Producer          Producer          `json:"producer"`
	CertificateHolder Party             `json:"certificate_holder"`
	Insurers          []Insurer         `json:"insurers"`
	AdditionalFields  map[string]string `json:"additional_fields"`
}

// FormattedOutput is the final extraction document. Every root is always
// present; empty sections serialize as {}.
type FormattedOutput struct {
	Information         Section         `json:"information"`
	GeneralLiability    Section         `json:"general_liability"`
	AutomobileLiability Section         `json:"automobile_liability"`
	UmbrellaLiability   Section         `json:"umbrella_liability"`
	WorkersComp         Section         `json:"workers_comp"`
	OtherCoverage       Section         `json:"other_coverage"`
	UnformattedData     UnformattedData `json:"unformatted_data"`
}

// NewFormattedOutput returns an output with every root initialized empty.
func NewFormattedOutput() *FormattedOutput {
	return &FormattedOutput{
		Information:         Section{},
		GeneralLiability:    Section{},
		AutomobileLiability: Section{},
		UmbrellaLiability:   Section{},
		WorkersComp:         Section{},
		OtherCoverage:       Section{},
		UnformattedData: UnformattedData{
			Insurers:         []Insurer{},
			AdditionalFields: map[string]string{},
		},
	}
}

// Root returns the deterministic section named root.
func (o *FormattedOutput) Root(root string) (Section, bool) {
	switch root {
	case RootInformation:
		return o.Information, true
	case RootGeneralLiability:
		return o.GeneralLiability, true
	case RootAutomobileLiability:
		return o.AutomobileLiability, true
	case RootUmbrellaLiability:
		return o.UmbrellaLiability, true
	case RootWorkersComp:
		return o.WorkersComp, true
	case RootOtherCoverage:
		return o.OtherCoverage, true
	}
	return nil, false
}

// Lookup resolves a full output path such as
// ["general_liability", "policy_limits", "each_occurrence"].
func (o *FormattedOutput) Lookup(path []string) (string, bool) {
	if len(path) < 2 {
		return "", false
	}
	sec, ok := o.Root(path[0])
	if !ok {
		return "", false
	}
	return sec.Get(path[1:]...)
}

// Validate checks that every root is present.
func (o *FormattedOutput) Validate() error {
	for _, root := range DeterministicRoots {
		sec, _ := o.Root(root)
		if sec == nil {
			return fmt.Errorf("formatted output: missing root %q", root)
		}
	}
	if o.UnformattedData.Insurers == nil {
		return fmt.Errorf("formatted output: missing %s.insurers", RootUnformattedData)
	}
	if o.UnformattedData.AdditionalFields == nil {
		return fmt.Errorf("formatted output: missing %s.additional_fields", RootUnformattedData)
	}
	return nil
}
