// Package hint proposes "did you mean" corrections for mistyped literals.
package hint

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/NikitaCOEUR/cmdtree/pkg/cmderr"
	"github.com/NikitaCOEUR/cmdtree/pkg/dispatch"
)

// DefaultLimit is the number of hints returned by ForParse
const DefaultLimit = 3

// Rank orders candidates by resemblance to token. Candidates containing the
// token's letters in order come first, closest first; then candidates a few
// edits away. At most limit names are returned.
func Rank(token string, candidates []string, limit int) []string {
	if token == "" || len(candidates) == 0 || limit <= 0 {
		return nil
	}

	ranks := fuzzy.RankFindFold(token, candidates)
	sort.Sort(ranks)

	seen := map[string]bool{}
	var out []string
	for _, r := range ranks {
		if !seen[r.Target] {
			seen[r.Target] = true
			out = append(out, r.Target)
		}
	}

	// Typos that drop or swap letters are not subsequences
	maxEdits := max(1, len(token)/2)
	type edit struct {
		name string
		dist int
	}
	var edits []edit
	for _, c := range candidates {
		if seen[c] {
			continue
		}
		if d := fuzzy.LevenshteinDistance(strings.ToLower(token), strings.ToLower(c)); d <= maxEdits {
			edits = append(edits, edit{c, d})
			seen[c] = true
		}
	}
	sort.SliceStable(edits, func(i, j int) bool { return edits[i].dist < edits[j].dist })
	for _, e := range edits {
		out = append(out, e.name)
	}

	if len(out) > limit {
		out = out[:limit]
	}
	return out
}

// ForParse returns hints for a failed parse: the usable literal children of
// the node where parsing stopped, ranked against the token at the error.
func ForParse[S any](parse *dispatch.ParseResults[S], limit int) []string {
	if parse == nil || parse.Err == nil {
		return nil
	}
	cursor, ok := cmderr.Position(parse.Err)
	if !ok {
		return nil
	}
	input := parse.Input()
	if cursor >= len(input) {
		return nil
	}
	token, _, _ := strings.Cut(input[cursor:], " ")

	last := parse.Context.LastChild()
	node := last.RootNode()
	if nodes := last.Nodes(); len(nodes) > 0 {
		node = nodes[len(nodes)-1].Node
	}
	if r := node.Redirect(); r != nil {
		node = r
	}

	var candidates []string
	for _, child := range node.Children() {
		if child.Kind() == dispatch.KindLiteral && child.CanUse(last.Source()) {
			candidates = append(candidates, child.Name())
		}
	}
	return Rank(token, candidates, limit)
}
