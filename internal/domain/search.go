package domain

import (
	"sort"
	"strings"
)

const (
	// Scoring weights
	ScoreExactMatch     = 100.0
	ScorePrefixMatch    = 75.0
	ScoreSubstringMatch = 50.0
	ScoreFuzzyMatch     = 25.0

	// Position bonus (earlier is better)
	ScorePositionBonus = 10.0

	// Field weights: a title hit matters more than a description hit.
	WeightTitle       = 1.0
	WeightSlug        = 0.8
	WeightTag         = 0.6
	WeightDescription = 0.3
)

// PageCandidate is a page with its match score.
type PageCandidate struct {
	Page  Page    `json:"page"`
	Score float64 `json:"score"`
}

// ScorePage scores page against a free-text query. Each query word is scored
// against the title, slug, tags and description; the best weighted field
// score per word is summed. A word that matches nothing zeroes the page.
func ScorePage(query string, page Page) float64 {
	words := strings.Fields(strings.ToLower(strings.TrimSpace(query)))
	if len(words) == 0 {
		return 0.0
	}

	title := strings.ToLower(page.Title)
	slug := strings.ToLower(page.Slug)
	description := strings.ToLower(page.Description)

	// Whole query equals the title: treat as the best possible hit.
	if strings.Join(words, " ") == title {
		return ScoreExactMatch * 2 * float64(len(words))
	}

	var total float64
	for _, w := range words {
		best := WeightTitle * bestWordScore(w, strings.Fields(title))
		best = max(best, WeightSlug*bestWordScore(w, strings.Split(slug, "-")))
		for _, tag := range page.Tags {
			best = max(best, WeightTag*scoreTag(w, strings.ToLower(tag)))
		}
		// Description only takes substring hits; fuzzy matches there are noise.
		if strings.Contains(description, w) {
			best = max(best, WeightDescription*ScoreSubstringMatch)
		}
		if best == 0 {
			return 0.0
		}
		total += best
	}
	return total
}

func bestWordScore(queryWord string, fields []string) float64 {
	var best float64
	for i, f := range fields {
		best = max(best, scoreFragment(queryWord, f, i))
	}
	return best
}

// scoreTag only takes exact and prefix hits: tags are short and fuzzy
// matching them pulls in unrelated pages.
func scoreTag(queryWord, tag string) float64 {
	switch {
	case queryWord == tag:
		return ScoreExactMatch
	case strings.HasPrefix(tag, queryWord):
		return ScorePrefixMatch
	default:
		return 0.0
	}
}

// scoreFragment scores a single query word against a single field word.
func scoreFragment(queryFrag, fieldFrag string, position int) float64 {
	queryFrag = strings.Trim(queryFrag, ".,;:!?()\"'")
	fieldFrag = strings.Trim(fieldFrag, ".,;:!?()\"'")

	if queryFrag == "" || fieldFrag == "" {
		return 0.0
	}

	if queryFrag == fieldFrag {
		return ScoreExactMatch + positionBonus(position)
	}

	if strings.HasPrefix(fieldFrag, queryFrag) {
		return ScorePrefixMatch + positionBonus(position)
	}

	if index := strings.Index(fieldFrag, queryFrag); index >= 0 {
		// Earlier substring matches get higher score
		substringBonus := ScorePositionBonus * (1.0 - float64(index)/float64(len(fieldFrag)))
		return ScoreSubstringMatch + substringBonus
	}

	// Short words are too ambiguous to fuzzy match.
	if len(queryFrag) < 4 {
		return 0.0
	}
	similarity := calculateSimilarity(queryFrag, fieldFrag)
	if similarity > 0.8 {
		return ScoreFuzzyMatch * similarity
	}

	return 0.0
}

// positionBonus rewards hits on the first words of a field.
func positionBonus(position int) float64 {
	return ScorePositionBonus / float64(position+1)
}

// calculateSimilarity is the share of s1's characters that appear in s2.
func calculateSimilarity(s1, s2 string) float64 {
	if s1 == "" || s2 == "" {
		return 0.0
	}

	matches := 0
	total := 0
	for _, c := range s1 {
		total++
		if strings.ContainsRune(s2, c) {
			matches++
		}
	}

	return float64(matches) / float64(total)
}

// RankPages returns the pages matching query, best first. Pages with equal
// scores keep their stored order.
func RankPages(query string, pages []Page) []PageCandidate {
	candidates := make([]PageCandidate, 0, len(pages))
	for _, p := range pages {
		score := ScorePage(query, p)
		if score == 0.0 {
			continue
		}
		candidates = append(candidates, PageCandidate{Page: p, Score: score})
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})
	return candidates
}
