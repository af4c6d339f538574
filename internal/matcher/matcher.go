package matcher

import (
	"sort"

	"github.com/codemate-app/matcher/internal/similarity"
	"github.com/codemate-app/matcher/pkg/types"
)

// DefaultThreshold is the minimum best-skill similarity for a candidate
// to count as a match. Lowering it trades precision for recall: more
// candidates surface, with more noise among them.
const DefaultThreshold = 0.45

// RankMatches scores every candidate against queryVec and returns those
// whose best skill strictly exceeds threshold, ordered by score
// descending. For each candidate the score is the maximum similarity over
// its skills; ties keep the first-seen skill in stored insertion order.
// Candidates with no skills, or only empty/mismatched vectors, never
// appear in the output. The requester must already be excluded from
// candidates by the caller.
func RankMatches(queryVec []float64, candidates []types.User, threshold float64) []types.MatchResult {
	matches := make([]types.MatchResult, 0)

	for i := range candidates {
		user := &candidates[i]

		var bestScore float64
		var bestSkill string
		for _, skill := range user.ValidSkills(len(queryVec)) {
			score := similarity.Cosine(queryVec, skill.Vector)
			if score > bestScore {
				bestScore = score
				bestSkill = skill.Name
			}
		}

		if bestSkill == "" || bestScore <= threshold {
			continue
		}

		matches = append(matches, types.MatchResult{
			User:          user.Public(),
			MatchingSkill: bestSkill,
			Score:         bestScore,
		})
	}

	// Stable: equal scores retain candidate encounter order
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	return matches
}
