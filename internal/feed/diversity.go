package feed

// Diversity filter thresholds. A post saturated on category or author
// is dropped unless its score clears the high-score bar; every 10th
// accepted post earns a spliced-in underrepresented candidate.
const (
	maxCategoryRepeats = 3
	maxAuthorRepeats   = 2
	highScoreBypass    = 0.8
	spliceInterval     = 10
	spliceCategoryMax  = 2
	spliceAuthorMax    = 1
)

// applyDiversityFilter walks score-ordered candidates and enforces
// category/author variety. Running counts grow only with accepted
// posts; spliced posts bypass the counts so the splice cannot trigger
// its own saturation.
func applyDiversityFilter(candidates []ScoredPost) []ScoredPost {
	result := make([]ScoredPost, 0, len(candidates))
	categoryCount := make(map[string]int)
	authorCount := make(map[string]int)
	included := make(map[string]bool)

	for _, candidate := range candidates {
		if included[candidate.ID] {
			continue
		}

		saturated := categoryCount[candidate.Category] >= maxCategoryRepeats ||
			authorCount[candidate.AuthorID] >= maxAuthorRepeats
		if saturated && candidate.Score < highScoreBypass {
			continue
		}

		result = append(result, candidate)
		included[candidate.ID] = true
		categoryCount[candidate.Category]++
		authorCount[candidate.AuthorID]++

		if len(result)%spliceInterval == 0 {
			if diverse, ok := findDiverseCandidate(candidates, included, categoryCount, authorCount); ok {
				result = append(result, diverse)
				included[diverse.ID] = true
			}
		}
	}

	return result
}

// findDiverseCandidate returns the highest-scored not-yet-included
// candidate whose category and author are still underrepresented.
func findDiverseCandidate(candidates []ScoredPost, included map[string]bool, categoryCount, authorCount map[string]int) (ScoredPost, bool) {
	for _, candidate := range candidates {
		if included[candidate.ID] {
			continue
		}
		if categoryCount[candidate.Category] < spliceCategoryMax && authorCount[candidate.AuthorID] < spliceAuthorMax {
			return candidate, true
		}
	}
	return ScoredPost{}, false
}
