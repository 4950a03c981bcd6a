package engine

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/actuallystonmai/artist-recommender/internal/domain"
)

func TestExtractSingleRecord(t *testing.T) {
	stdout := "loading artifacts...\n" + Marker + "\n" + `[{"artistID":1,"score":0.9}]`

	recs, err := Extract(stdout)
	require.NoError(t, err)
	assert.Equal(t, []domain.RawRecommendation{{ArtistID: 1, Score: 0.9}}, recs)
}

func TestExtractKeepsEngineOrder(t *testing.T) {
	stdout := `Gerando 3 recomendações
Recomendações geradas com sucesso.

--- JSON Output ---
[
  {
    "artistID": 89,
    "score": 1.5
  },
  {
    "artistID": 7,
    "score": 2.25
  },
  {
    "artistID": 300,
    "score": 0.1
  }
]
`
	recs, err := Extract(stdout)
	require.NoError(t, err)
	require.Len(t, recs, 3)
	assert.Equal(t, []int64{89, 7, 300}, []int64{recs[0].ArtistID, recs[1].ArtistID, recs[2].ArtistID})
	assert.Equal(t, 2.25, recs[1].Score)
}

func TestExtractEmptyArray(t *testing.T) {
	recs, err := Extract(Marker + "\n[]\n")
	require.NoError(t, err)
	assert.NotNil(t, recs)
	assert.Empty(t, recs)
}

func TestExtractMissingFieldsAreNotParseErrors(t *testing.T) {
	recs, err := Extract(Marker + `[{"score":0.4},{"artistID":5}]`)
	require.NoError(t, err)
	assert.Equal(t, []domain.RawRecommendation{{Score: 0.4}, {ArtistID: 5}}, recs)
}

func TestExtractFailures(t *testing.T) {
	tests := []struct {
		name   string
		stdout string
		reason string
	}{
		{"no marker", `[{"artistID":1,"score":0.9}]`, "marker not found"},
		{"marker wrong case", "--- json output ---\n[]", "marker not found"},
		{"empty", "", "marker not found"},
		{"object payload", Marker + `{"artistID":1}`, "not a JSON array"},
		{"null payload", Marker + "null", "not a JSON array"},
		{"truncated array", Marker + `[{"artistID":1,"score":0.9}`, "invalid JSON"},
		{"trailing text", Marker + "[]\nTempo total: 0.3s", "invalid JSON"},
		{"bad element syntax", Marker + `[{"artistID":}]`, "invalid JSON"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs, err := Extract(tt.stdout)
			require.Error(t, err)
			assert.Nil(t, recs)
			assert.True(t, IsOutputFormatError(err))
			assert.Contains(t, err.Error(), tt.reason)
		})
	}
}

func TestExcerptKeepsTail(t *testing.T) {
	long := strings.Repeat("x", excerptLimit) + "END"
	got := excerpt(long)
	assert.Len(t, got, excerptLimit)
	assert.True(t, strings.HasSuffix(got, "END"))
}

func TestExtractToleratesLooseElementTypes(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    domain.RawRecommendation
	}{
		{"float id", `[{"artistID":7.0,"score":0.5}]`, domain.RawRecommendation{ArtistID: 7, Score: 0.5}},
		{"quoted id", `[{"artistID":"7","score":0.5}]`, domain.RawRecommendation{ArtistID: 7, Score: 0.5}},
		{"quoted score", `[{"artistID":7,"score":"1.25"}]`, domain.RawRecommendation{ArtistID: 7, Score: 1.25}},
		{"fractional id", `[{"artistID":7.5,"score":0.5}]`, domain.RawRecommendation{Score: 0.5}},
		{"non numeric id", `[{"artistID":"abc","score":0.5}]`, domain.RawRecommendation{Score: 0.5}},
		{"bool score", `[{"artistID":7,"score":true}]`, domain.RawRecommendation{ArtistID: 7}},
		{"string element", `["a"]`, domain.RawRecommendation{}},
		{"null element", `[null]`, domain.RawRecommendation{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recs, err := Extract(Marker + "\n" + tt.payload)
			require.NoError(t, err)
			assert.Equal(t, []domain.RawRecommendation{tt.want}, recs)
		})
	}
}

func TestExcerptStartsOnRuneBoundary(t *testing.T) {
	long := "x" + strings.Repeat("ç", excerptLimit)
	got := excerpt(long)
	assert.True(t, utf8.ValidString(got))
	assert.LessOrEqual(t, len(got), excerptLimit)
	assert.True(t, strings.HasSuffix(got, "çç"))
}
