package searcher

import (
	"regexp"
	"strings"

	verrors "github.com/Aman-CERP/versio/internal/errors"
	"github.com/Aman-CERP/versio/internal/store"
)

// phrasePattern matches a double-quoted phrase.
var phrasePattern = regexp.MustCompile(`"([^"]*)"`)

// Query is a parsed search query.
type Query struct {
	// Text is the query with quote characters removed and whitespace
	// collapsed. It is what gets tokenized and embedded.
	Text string

	// Terms are the distinct query tokens in first-occurrence order.
	Terms []string

	// Phrases are the non-blank quoted phrases, when phrase filtering is on.
	Phrases []string
}

// ParseQuery splits raw into text, terms and phrases. A query that is blank
// once quotes are removed fails with ERR_404_QUERY_EMPTY.
func ParseQuery(raw string, phraseFilter bool) (Query, error) {
	var q Query

	if phraseFilter {
		for _, m := range phrasePattern.FindAllStringSubmatch(raw, -1) {
			if phrase := strings.TrimSpace(m[1]); phrase != "" {
				q.Phrases = append(q.Phrases, phrase)
			}
		}
	}

	q.Text = strings.Join(strings.Fields(strings.ReplaceAll(raw, `"`, " ")), " ")
	if q.Text == "" {
		return Query{}, verrors.New(verrors.ErrCodeQueryEmpty, "query is empty", nil).
			WithSuggestion(`Provide search text, e.g. versio search "faith hope charity"`)
	}

	seen := make(map[string]bool)
	for _, term := range store.QueryTokens(q.Text) {
		if !seen[term] {
			seen[term] = true
			q.Terms = append(q.Terms, term)
		}
	}

	return q, nil
}

// Filter returns the store filter for this query.
func (q Query) Filter(volumes store.VolumeFilter) store.QueryFilter {
	return store.QueryFilter{Volumes: volumes, Phrases: q.Phrases}
}
