package tally

import (
	"sort"
)

// Rank orders the round's projects by score, highest first. Ties keep
// their first appearance order, so repeated tallies of the same
// ballots list projects identically.
func Rank(result Result) []ProjectScore {
	ranked := make([]ProjectScore, 0, len(result.Order))
	for _, projectID := range result.Order {
		ranked = append(ranked, result.Projects[projectID])
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Votes > ranked[j].Votes
	})
	return ranked
}

// Page slices a ranked list for cursor style pagination. An offset
// past the end yields an empty page; limit 0 means no limit.
func Page(ranked []ProjectScore, offset, limit uint64) []ProjectScore {
	if offset >= uint64(len(ranked)) {
		return []ProjectScore{}
	}
	page := ranked[offset:]
	if limit > 0 && limit < uint64(len(page)) {
		page = page[:limit]
	}
	return page
}
