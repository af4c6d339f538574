package types

// MatchResult is one ranked partner match for a chat query.
// Score is the maximum cosine similarity between the query vector and any
// single one of the user's skill vectors, not an aggregate.
type MatchResult struct {
	User          PublicUser `json:"user"`
	MatchingSkill string     `json:"matchingSkill"`
	Score         float64    `json:"score"`
}

// ScoredUser is a feed entry that carries a ranking score. Only the
// by-skill feed category is scored; the other categories are filter
// memberships with no ranking.
type ScoredUser struct {
	User  PublicUser `json:"user"`
	Score float64    `json:"score"`
}

// Feed is the categorized discovery feed for one requester. Categories
// are computed independently; a failed category is empty with its error
// recorded, and never fails the feed as a whole.
type Feed struct {
	BySkill        []ScoredUser `json:"bySkill"`
	ByLocation     []PublicUser `json:"byLocation"`
	ByCollege      []PublicUser `json:"byCollege"`
	ByAvailability []PublicUser `json:"byAvailability"`

	// Errors holds per-category failures, keyed by category name.
	// Empty when every category succeeded.
	Errors map[string]string `json:"errors,omitempty"`
}
