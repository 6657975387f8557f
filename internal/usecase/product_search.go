package usecase

import (
	"regexp"
	"strings"

	"github.com/shopclip/backend/internal/domain"
)

// searchTypoThreshold is the edit distance tolerated between a query
// token and a product token
const searchTypoThreshold = 1

var searchPunctuationRegex = regexp.MustCompile(`[^\p{L}\p{N}\s]+`)

// matchesSearch reports whether a product answers a lowercase search query.
// A plain substring of the name or description matches; otherwise every
// query token must match some product token within searchTypoThreshold.
func matchesSearch(p domain.ScrapedProduct, search string) bool {
	if search == "" {
		return true
	}
	name := strings.ToLower(p.Name)
	description := strings.ToLower(p.Description)
	if strings.Contains(name, search) || strings.Contains(description, search) {
		return true
	}

	queryTokens := tokenize(search)
	if len(queryTokens) == 0 {
		return false
	}
	productTokens := tokenize(name + " " + description)

	for _, qt := range queryTokens {
		found := false
		for _, pt := range productTokens {
			if fuzzyTokenMatch(qt, pt, searchTypoThreshold) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// tokenize splits a string into lowercase word tokens, dropping single
// characters and pure numbers
func tokenize(s string) []string {
	cleaned := searchPunctuationRegex.ReplaceAllString(strings.ToLower(s), " ")

	var tokens []string
	for _, word := range strings.Fields(cleaned) {
		if len([]rune(word)) <= 1 || isNumeric(word) {
			continue
		}
		tokens = append(tokens, word)
	}
	return tokens
}

func isNumeric(s string) bool {
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return len(s) > 0
}

// fuzzyTokenMatch checks if two tokens are within threshold edits.
// Tokens shorter than 4 runes must match exactly.
func fuzzyTokenMatch(token1, token2 string, threshold int) bool {
	if token1 == token2 {
		return true
	}

	r1, r2 := []rune(token1), []rune(token2)
	if len(r1) < 4 || len(r2) < 4 {
		return false
	}

	lenDiff := len(r1) - len(r2)
	if lenDiff < 0 {
		lenDiff = -lenDiff
	}
	if lenDiff > threshold {
		return false
	}

	return levenshteinDistance(r1, r2) <= threshold
}

// levenshteinDistance calculates the edit distance using two rolling rows
func levenshteinDistance(r1, r2 []rune) int {
	if len(r1) == 0 {
		return len(r2)
	}
	if len(r2) == 0 {
		return len(r1)
	}

	m, n := len(r1), len(r2)
	prev := make([]int, n+1)
	curr := make([]int, n+1)
	for j := 0; j <= n; j++ {
		prev[j] = j
	}

	for i := 1; i <= m; i++ {
		curr[0] = i
		for j := 1; j <= n; j++ {
			cost := 0
			if r1[i-1] != r2[j-1] {
				cost = 1
			}
			curr[j] = min(
				prev[j]+1,      // deletion
				curr[j-1]+1,    // insertion
				prev[j-1]+cost, // substitution
			)
		}
		prev, curr = curr, prev
	}

	return prev[n]
}
