package listings

import (
	"sort"
	"strings"

	"github.com/aarav-aiphi/Backend/pkg/db/models"
)

const (
	similarCategoryWeight    = 3
	similarTagWeight         = 2
	similarDescriptionWeight = 1

	// SimilarLimit caps how many matches Similar returns.
	SimilarLimit = 5
)

// similarity scores how close other is to base: a shared category, each
// shared tag and each shared description word all count.
func similarity(base, other models.Listing) int {
	score := 0
	if base.Category == other.Category {
		score += similarCategoryWeight
	}

	tags := toSet(other.Tags...)
	for _, tag := range uniq(base.Tags) {
		if _, ok := tags[tag]; ok {
			score += similarTagWeight
		}
	}

	if base.Description != nil && other.Description != nil {
		words := toSet(strings.Fields(*other.Description)...)
		for _, w := range uniq(strings.Fields(*base.Description)) {
			if _, ok := words[w]; ok {
				score += similarDescriptionWeight
			}
		}
	}
	return score
}

// BestMatches returns up to limit candidates ordered by similarity to base.
func BestMatches(base models.Listing, candidates []models.Listing, limit int) []models.Listing {
	ranked := make([]scored, 0, len(candidates))
	for _, c := range candidates {
		if c.ID == base.ID {
			continue
		}
		ranked = append(ranked, scored{listing: c, score: similarity(base, c)})
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})
	if limit > 0 && len(ranked) > limit {
		ranked = ranked[:limit]
	}
	out := make([]models.Listing, 0, len(ranked))
	for _, r := range ranked {
		out = append(out, r.listing)
	}
	return out
}

func uniq(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
