package match

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"a", "b", 1},
		{"ab", "abc", 1},
		{"kitten", "sitting", 3},
		{"saturday", "sunday", 3},
		{"Hello", "hello", 1},
		{"PersonBuilder", "PersonBuidler", 2},
	}

	for _, tt := range tests {
		t.Run(tt.a+"_"+tt.b, func(t *testing.T) {
			assert.Equal(t, tt.want, Levenshtein(tt.a, tt.b))
			assert.Equal(t, tt.want, Levenshtein(tt.b, tt.a), "symmetry")
		})
	}
}

func TestSimilarity(t *testing.T) {
	assert.InDelta(t, 1.0, Similarity("", ""), 1e-9)
	assert.InDelta(t, 1.0, Similarity("abc", "abc"), 1e-9)
	assert.InDelta(t, 0.0, Similarity("abc", "xyz"), 1e-9)
	assert.InDelta(t, 0.5, Similarity("ab", "ax"), 1e-9)
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		in, ident, property string
	}{
		{"OrderID", "orderid", "orderid"},
		{"order_id", "orderid", "orderid"},
		{"GetName", "getname", "name"},
		{"IsActive", "isactive", "active"},
		{"XMLParser", "xmlparser", "xmlparser"},
		{"Get", "get", "get"},
		{"", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.ident, NormalizeIdent(tt.in))
			assert.Equal(t, tt.property, NormalizeProperty(tt.in))
		})
	}

	assert.Equal(t, []string{"get", "http", "response"}, TokenizeIdent("getHTTPResponse"))
}

func TestRankCandidates(t *testing.T) {
	got := RankCandidates("GetNmae", []string{"GetAge", "GetName", "IsName", "GetNmae"})

	assert.Len(t, got, 3, "exact match is not a suggestion")
	assert.Equal(t, "GetName", got[0].Name)
	assert.Equal(t, "name", got[0].Normalized)
	assert.GreaterOrEqual(t, got[0].Score, got[1].Score)
}

func TestSuggest(t *testing.T) {
	assert.Equal(t, []string{"PersonBuilder"}, Suggest("PersonBuidler", []string{"PersonBuilder", "Address", "Order"}))
	assert.Empty(t, Suggest("Zzz", []string{"PersonBuilder"}))
	assert.Equal(t, []string{"GetName", "IsName"}, Suggest("name", []string{"GetName", "IsName", "GetAge"}))
}
