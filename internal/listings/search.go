package listings

import (
	"sort"
	"strings"
	"unicode"

	"github.com/aarav-aiphi/Backend/pkg/db/models"
)

// Field weights applied when a query term matches a listing attribute.
const (
	weightName        = 10
	weightTags        = 10
	weightShort       = 7
	weightCategory    = 5
	weightIndustry    = 5
	weightKeyFeatures = 4
	weightUseCases    = 4
	weightDescription = 2
)

var stopWords = toSet(
	// pronouns
	"i", "me", "my", "myself", "we", "our", "ours", "ourselves", "you", "your", "yours", "yourself",
	"yourselves", "he", "him", "his", "himself", "she", "her", "hers", "herself", "it", "its", "itself",
	"they", "them", "their", "theirs", "themselves", "this", "that", "these", "those",
	// auxiliaries and conjunctions
	"am", "is", "are", "was", "were", "be", "been", "being", "have", "has", "had", "having", "do", "does",
	"did", "doing", "a", "an", "the", "and", "but", "if", "or", "because", "as", "until", "while", "of",
	"at", "by", "for", "with", "about", "against", "between", "into", "through", "during", "before",
	"after", "above", "below", "to", "from", "up", "down", "in", "out", "on", "off", "over", "under",
	"again", "further", "then", "once",
	// question words and adverbs
	"what", "which", "who", "whom", "where", "when", "why", "how", "here", "there", "all", "any", "both",
	"each", "few", "more", "most", "other", "some", "such", "no", "nor", "not", "only", "own", "same",
	"so", "than", "too", "very", "s", "t", "can", "will", "just", "don", "should", "now",
	// negations and modals
	"aren", "couldn", "didn", "doesn", "hadn", "hasn", "haven", "isn", "mightn", "mustn", "needn",
	"shan", "shouldn", "wasn", "weren", "won", "wouldn", "ain", "ma",
	// directory noise
	"agent", "agents", "service", "system", "application", "platform", "feature", "technology",
	"solution", "function", "resources", "company", "companies", "product", "products", "software",
	"app", "apps", "tool", "tools", "thing", "generate", "recommendations", "recommendation", "find",
	"search", "searching", "searched", "searches",
)

func toSet(words ...string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[w] = struct{}{}
	}
	return set
}

// SearchTerms lowercases the query, splits it into words and drops stop words.
func SearchTerms(query string) []string {
	words := tokenize(query)
	terms := make([]string, 0, len(words))
	seen := map[string]struct{}{}
	for _, w := range words {
		if _, stop := stopWords[w]; stop {
			continue
		}
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		terms = append(terms, w)
	}
	return terms
}

func tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

type scored struct {
	listing models.Listing
	score   int
}

// Rank scores listings against terms and returns the matches, best first.
// Ties keep the higher popularity first.
func Rank(rows []models.Listing, terms []string) []models.Listing {
	if len(terms) == 0 {
		return []models.Listing{}
	}
	matches := make([]scored, 0, len(rows))
	for _, l := range rows {
		if s := searchScore(l, terms); s > 0 {
			matches = append(matches, scored{listing: l, score: s})
		}
	}
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].score != matches[j].score {
			return matches[i].score > matches[j].score
		}
		return matches[i].listing.PopularityScore > matches[j].listing.PopularityScore
	})
	out := make([]models.Listing, 0, len(matches))
	for _, m := range matches {
		out = append(out, m.listing)
	}
	return out
}

func searchScore(l models.Listing, terms []string) int {
	fields := []struct {
		words  map[string]struct{}
		weight int
	}{
		{wordSet(l.Name), weightName},
		{wordSet(strings.Join(l.Tags, " ")), weightTags},
		{wordSet(deref(l.ShortDescription)), weightShort},
		{wordSet(l.Category), weightCategory},
		{wordSet(l.Industry), weightIndustry},
		{wordSet(strings.Join(l.KeyFeatures, " ")), weightKeyFeatures},
		{wordSet(strings.Join(l.UseCases, " ")), weightUseCases},
		{wordSet(deref(l.Description)), weightDescription},
	}
	score := 0
	for _, term := range terms {
		for _, f := range fields {
			if _, ok := f.words[term]; ok {
				score += f.weight
			}
		}
	}
	return score
}

func wordSet(text string) map[string]struct{} {
	return toSet(tokenize(text)...)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
