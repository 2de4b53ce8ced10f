package news

import (
	"strings"
)

// Sentiment labels
const (
	LabelBullish = "bullish"
	LabelBearish = "bearish"
	LabelNeutral = "neutral"
)

// Label thresholds on the aggregated score
const (
	bullishThreshold = 0.3
	bearishThreshold = -0.3
)

// Lexicon word lists tuned for crypto headlines
var (
	positiveTerms = []string{
		"surge", "soar", "rally", "bullish", "gain", "gains", "climb",
		"breakout", "record high", "all-time high", "adoption", "approval",
		"approved", "partnership", "upgrade", "listing", "listed", "launch",
		"growth", "outperform", "milestone", "recover", "recovery", "rebound",
		"institutional", "inflow", "accumulate", "buy the dip", "support",
	}
	negativeTerms = []string{
		"crash", "plunge", "plummet", "bearish", "drop", "drops", "fall",
		"falls", "dump", "selloff", "sell-off", "decline", "hack", "hacked",
		"exploit", "scam", "fraud", "lawsuit", "ban", "banned", "crackdown",
		"liquidation", "liquidations", "outflow", "delisting", "delisted",
		"bankruptcy", "insolvency", "warning", "fear", "fud", "collapse",
	}
)

// SentimentResult is the outcome of scoring a batch of headlines
type SentimentResult struct {
	Score    float64 // aggregated score in [-1, 1]
	Label    string  // bullish, bearish or neutral
	Positive int     // count of positive term hits
	Negative int     // count of negative term hits
}

// ScoreArticles scores the aggregated sentiment of a set of articles.
// Each headline contributes its own score; the batch score is the mean.
func ScoreArticles(articles []Article) SentimentResult {
	if len(articles) == 0 {
		return SentimentResult{Label: LabelNeutral}
	}

	var (
		total    float64
		positive int
		negative int
	)

	for _, article := range articles {
		score, pos, neg := scoreText(article.Title + " " + article.Summary)
		total += score
		positive += pos
		negative += neg
	}

	result := SentimentResult{
		Score:    clamp(total/float64(len(articles)), -1, 1),
		Positive: positive,
		Negative: negative,
	}
	result.Label = labelFor(result.Score)

	return result
}

// scoreText scores a single text as (pos-neg)/(pos+neg), zero when no
// lexicon term matches
func scoreText(text string) (score float64, positive, negative int) {
	lowered := strings.ToLower(text)

	for _, term := range positiveTerms {
		positive += strings.Count(lowered, term)
	}
	for _, term := range negativeTerms {
		negative += strings.Count(lowered, term)
	}

	hits := positive + negative
	if hits == 0 {
		return 0, 0, 0
	}

	return float64(positive-negative) / float64(hits), positive, negative
}

func labelFor(score float64) string {
	switch {
	case score >= bullishThreshold:
		return LabelBullish
	case score <= bearishThreshold:
		return LabelBearish
	default:
		return LabelNeutral
	}
}

func clamp(value, low, high float64) float64 {
	if value < low {
		return low
	}
	if value > high {
		return high
	}
	return value
}
