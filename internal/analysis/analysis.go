// Package analysis holds the fixed domain vocabulary and the lexicon
// rules used to tag and rank content. The sentiment rule is a plain
// occurrence count with no negation handling; that simplification is
// part of the contract and callers should not expect more.
package analysis

import (
	"strings"

	"glucofeed/internal/model"
)

// Vocabulary is the fixed domain keyword list. Extraction retains only
// these terms; relevance scoring matches against the same list.
var Vocabulary = []string{
	"diabetes", "type 1", "type 2", "t1d", "t2d",
	"glucose", "blood sugar", "insulin", "a1c", "hba1c",
	"cgm", "continuous glucose", "pump", "pen", "closed loop",
	"dexcom", "libre", "freestyle", "medtronic", "omnipod", "tandem",
	"hypoglycemia", "hyperglycemia", "ketones", "dka",
	"basal", "bolus", "carbs", "carbohydrate",
	"metformin", "ozempic", "glp-1", "semaglutide",
	"prediabetes", "gestational", "retinopathy", "neuropathy",
}

var positiveWords = []string{
	"breakthrough", "improved", "improve", "success", "effective",
	"approved", "benefit", "progress", "hope", "better", "good",
	"great", "helpful", "promising",
}

var negativeWords = []string{
	"risk", "recall", "death", "worse", "complication", "fail",
	"failure", "danger", "warning", "bad", "fear", "struggle",
	"burnout", "shortage",
}

// Keywords returns the vocabulary terms present in text, preserving
// vocabulary order. Matching is case-insensitive substring.
func Keywords(text string) []string {
	lower := strings.ToLower(text)
	var out []string
	for _, kw := range Vocabulary {
		if strings.Contains(lower, kw) {
			out = append(out, kw)
		}
	}
	return out
}

// DetectSentiment counts positive and negative lexicon occurrences in
// text and labels by strict majority; ties are neutral.
func DetectSentiment(text string) model.Sentiment {
	lower := strings.ToLower(text)
	pos, neg := 0, 0
	for _, w := range positiveWords {
		pos += strings.Count(lower, w)
	}
	for _, w := range negativeWords {
		neg += strings.Count(lower, w)
	}
	switch {
	case pos > neg:
		return model.SentimentPositive
	case neg > pos:
		return model.SentimentNegative
	default:
		return model.SentimentNeutral
	}
}

// Relevance weights by match location: title matches count most, then
// tags, then description, then body.
const (
	titleWeight       = 4.0
	tagWeight         = 3.0
	descriptionWeight = 2.0
	bodyWeight        = 1.0
)

// RelevanceScore computes the weighted keyword-match score for an item
// split into its textual zones. Tags are matched exactly against the
// vocabulary; the free-text zones use substring matching.
func RelevanceScore(title, description, body string, tags []string) float64 {
	title = strings.ToLower(title)
	description = strings.ToLower(description)
	body = strings.ToLower(body)

	tagSet := make(map[string]struct{}, len(tags))
	for _, t := range tags {
		tagSet[strings.ToLower(t)] = struct{}{}
	}

	var score float64
	for _, kw := range Vocabulary {
		if strings.Contains(title, kw) {
			score += titleWeight
		}
		if _, ok := tagSet[kw]; ok {
			score += tagWeight
		}
		if strings.Contains(description, kw) {
			score += descriptionWeight
		}
		if strings.Contains(body, kw) {
			score += bodyWeight
		}
	}
	return score
}
