package validate

import (
	"sort"
	"strings"
)

// similarityThreshold is the minimum score for a field to count as similar.
const similarityThreshold = 0.5

// SimilarFields returns up to limit known field names ranked by similarity
// to name, best first. Candidates below the threshold are dropped.
func SimilarFields(name string, available []string, limit int) []string {
	if len(available) == 0 || limit <= 0 {
		return nil
	}

	type scored struct {
		name  string
		score float64
	}
	var candidates []scored
	needle := strings.ToLower(name)
	for _, field := range available {
		if score := similarity(needle, strings.ToLower(field)); score >= similarityThreshold {
			candidates = append(candidates, scored{name: field, score: score})
		}
	}

	sort.Slice(candidates, func(i, j int) bool {
		if candidates[i].score != candidates[j].score {
			return candidates[i].score > candidates[j].score
		}
		return candidates[i].name < candidates[j].name
	})

	if len(candidates) > limit {
		candidates = candidates[:limit]
	}
	names := make([]string, len(candidates))
	for i, c := range candidates {
		names[i] = c.name
	}
	return names
}

// similarity scores two lowercased strings in [0, 1]: exact match, then
// containment weighted by length overlap, then Levenshtein distance ratio.
func similarity(a, b string) float64 {
	if a == b {
		return 1
	}
	if a == "" || b == "" {
		return 0
	}

	if strings.Contains(a, b) || strings.Contains(b, a) {
		longer, shorter := len(a), len(b)
		if shorter > longer {
			longer, shorter = shorter, longer
		}
		return 0.7 + 0.3*float64(shorter)/float64(longer)
	}

	ra, rb := []rune(a), []rune(b)
	longest := len(ra)
	if len(rb) > longest {
		longest = len(rb)
	}
	return 1 - float64(levenshtein(ra, rb))/float64(longest)
}

// levenshtein computes edit distance with a two-row table.
func levenshtein(a, b []rune) int {
	if len(a) == 0 {
		return len(b)
	}
	if len(b) == 0 {
		return len(a)
	}

	prev := make([]int, len(b)+1)
	curr := make([]int, len(b)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(a); i++ {
		curr[0] = i
		for j := 1; j <= len(b); j++ {
			cost := 1
			if a[i-1] == b[j-1] {
				cost = 0
			}
			curr[j] = min3(curr[j-1]+1, prev[j]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}
	return prev[len(b)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
