package news

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreArticles_Empty(t *testing.T) {
	result := ScoreArticles(nil)

	assert.Zero(t, result.Score)
	assert.Equal(t, LabelNeutral, result.Label)
}

func TestScoreArticles_Bullish(t *testing.T) {
	articles := []Article{
		{Title: "Bitcoin surge continues as ETF approval fuels rally"},
		{Title: "Altcoins climb after institutional inflow hits record high"},
	}

	result := ScoreArticles(articles)

	assert.Greater(t, result.Score, bullishThreshold)
	assert.Equal(t, LabelBullish, result.Label)
	assert.Greater(t, result.Positive, 0)
	assert.Zero(t, result.Negative)
}

func TestScoreArticles_Bearish(t *testing.T) {
	articles := []Article{
		{Title: "Market crash deepens as liquidations spike"},
		{Title: "Exchange hacked, token plunges amid fraud lawsuit"},
	}

	result := ScoreArticles(articles)

	assert.Less(t, result.Score, bearishThreshold)
	assert.Equal(t, LabelBearish, result.Label)
}

func TestScoreArticles_MixedIsNeutral(t *testing.T) {
	articles := []Article{
		{Title: "Token rally stalls after selloff warning"},
		{Title: "Quiet week for crypto markets"},
	}

	result := ScoreArticles(articles)

	assert.Equal(t, LabelNeutral, result.Label)
	assert.GreaterOrEqual(t, result.Score, -1.0)
	assert.LessOrEqual(t, result.Score, 1.0)
}

func TestScoreArticles_ScoreIsClamped(t *testing.T) {
	articles := []Article{{Title: "surge soar rally bullish gain climb breakout"}}

	result := ScoreArticles(articles)
	assert.LessOrEqual(t, result.Score, 1.0)
}
