package searcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	verrors "github.com/Aman-CERP/versio/internal/errors"
	"github.com/Aman-CERP/versio/internal/store"
)

func TestParseQuery(t *testing.T) {
	tests := []struct {
		name         string
		raw          string
		phraseFilter bool
		wantText     string
		wantTerms    []string
		wantPhrases  []string
	}{
		{
			name:      "plain terms are lowercased",
			raw:       "Faith Hope Charity",
			wantText:  "Faith Hope Charity",
			wantTerms: []string{"faith", "hope", "charity"},
		},
		{
			name:      "repeated terms count once",
			raw:       "love one another, love",
			wantText:  "love one another, love",
			wantTerms: []string{"love", "one", "another"},
		},
		{
			name:         "phrase is extracted and unquoted",
			raw:          `"love one another" commandment`,
			phraseFilter: true,
			wantText:     "love one another commandment",
			wantTerms:    []string{"love", "one", "another", "commandment"},
			wantPhrases:  []string{"love one another"},
		},
		{
			name:         "blank phrase is ignored",
			raw:          `"  " grace`,
			phraseFilter: true,
			wantText:     "grace",
			wantTerms:    []string{"grace"},
		},
		{
			name:      "phrase filter off keeps terms only",
			raw:       `"love one another"`,
			wantText:  "love one another",
			wantTerms: []string{"love", "one", "another"},
		},
		{
			name:     "punctuation only has no terms",
			raw:      "?!",
			wantText: "?!",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, err := ParseQuery(tt.raw, tt.phraseFilter)

			require.NoError(t, err)
			assert.Equal(t, tt.wantText, q.Text)
			assert.Equal(t, tt.wantTerms, q.Terms)
			assert.Equal(t, tt.wantPhrases, q.Phrases)
		})
	}
}

func TestParseQuery_Empty(t *testing.T) {
	for _, raw := range []string{"", "   ", `""`, "\t\n"} {
		_, err := ParseQuery(raw, true)

		require.Error(t, err, "query %q", raw)
		assert.Equal(t, verrors.ErrCodeQueryEmpty, verrors.GetCode(err))
	}
}

func TestQuery_Filter(t *testing.T) {
	q, err := ParseQuery(`"never fails"`, true)
	require.NoError(t, err)

	volumes := store.VolumeFilter{ExcludeOldTestament: true}
	f := q.Filter(volumes)

	assert.Equal(t, volumes, f.Volumes)
	assert.Equal(t, []string{"never fails"}, f.Phrases)
}
