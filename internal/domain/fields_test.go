package domain_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"acordex/internal/domain"
)

func TestRawFieldMap_UnmarshalPreservesOrder(t *testing.T) {
	var m domain.RawFieldMap
	err := json.Unmarshal([]byte(`{"Zeta":"1","Alpha":"two","Mid":null,"Box":true,"Num":1000000}`), &m)
	require.NoError(t, err)

	assert.Equal(t, []string{"Zeta", "Alpha", "Mid", "Box", "Num"}, m.Names())
	v, ok := m.Get("Mid")
	assert.True(t, ok)
	assert.Equal(t, "", v)
	v, _ = m.Get("Box")
	assert.Equal(t, "true", v)
	v, _ = m.Get("Num")
	assert.Equal(t, "1000000", v)
}

func TestRawFieldMap_UnmarshalRejectsNested(t *testing.T) {
	var m domain.RawFieldMap
	err := json.Unmarshal([]byte(`{"A":{"b":1}}`), &m)
	assert.Error(t, err)

	err = json.Unmarshal([]byte(`["A"]`), &m)
	assert.Error(t, err)
}

func TestRawFieldMap_MarshalKeepsOrder(t *testing.T) {
	m := domain.NewRawFieldMap("b", "1", "a", "2")
	out, err := json.Marshal(m)
	require.NoError(t, err)
	assert.Equal(t, `{"b":"1","a":"2"}`, string(out))
}

func TestRawFieldMap_WithoutAndNonEmpty(t *testing.T) {
	m := domain.NewRawFieldMap("a", "1", "b", " ", "c", "3")

	rest := m.Without(map[string]struct{}{"a": {}})
	assert.Equal(t, []string{"b", "c"}, rest.Names())
	assert.Equal(t, []string{"a", "c"}, m.NonEmpty().Names())
	assert.Equal(t, 3, m.Len(), "source map is not modified")
}

func TestNormalizeFieldName(t *testing.T) {
	cases := map[string]string{
		"Form_CompletionDate_A[0]": "Form_CompletionDate_A",
		"Insurer_FullName_B[12]":   "Insurer_FullName_B",
		"NoIndex":                  "NoIndex",
		"Weird[x]":                 "Weird[x]",
		"Empty[]":                  "Empty[]",
		"[0]":                      "[0]",
	}
	for in, want := range cases {
		assert.Equal(t, want, domain.NormalizeFieldName(in), in)
	}
}
