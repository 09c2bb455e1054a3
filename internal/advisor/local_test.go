package advisor

import (
	"testing"

	"netscope/internal/catalog"

	"github.com/stretchr/testify/assert"
)

func TestLocalSentiment(t *testing.T) {
	pos, neg := catalog.Default().Lexicon()

	cases := []struct {
		name       string
		text       string
		rating     int
		confidence float64
	}{
		{"all positive", "super excellent", 5, 0.52},
		{"punctuation trimmed", "Super! Excellent.", 5, 0.52},
		{"neutral rounds half to even", "the cat sat", 2, 0.03},
		{"all negative", "terrible horrible", 1, 0.52},
		{"substring is not a match", "superficial", 2, 0.01},
		{"empty text", "", 2, 0.0},
		{"mixed", "bon mais triste", 2, 0.53},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := LocalSentiment(tc.text, pos, neg)
			assert.Equal(t, tc.rating, got.Rating)
			assert.InDelta(t, tc.confidence, got.Confidence, 1e-9)
			assert.Equal(t, OriginLocal, got.Origin)
		})
	}
}

func TestLocalSentimentConfidenceCap(t *testing.T) {
	pos, neg := catalog.Default().Lexicon()
	text := ""
	for i := 0; i < 60; i++ {
		text += "merci "
	}
	got := LocalSentiment(text, pos, neg)
	assert.Equal(t, 5, got.Rating)
	assert.Equal(t, maxLocalConfidence, got.Confidence)
}

func TestLocalSummary(t *testing.T) {
	assert.Equal(t, "One. Two. Three.", LocalSummary("One. Two. Three."))
	assert.Equal(t, "short text", LocalSummary("short text"))
	assert.Equal(t, "One. Two. Three.", LocalSummary("One.  Two. Three. Four. Five."))
	assert.Equal(t, "A. B. C.", LocalSummary(" A .. B . C . D "))
}

func TestParseOrigin(t *testing.T) {
	o, err := ParseOrigin(" OpenAI ")
	assert.NoError(t, err)
	assert.Equal(t, OriginOpenAI, o)

	_, err = ParseOrigin("gemini")
	assert.ErrorIs(t, err, ErrInvalidOrigin)
	assert.Contains(t, err.Error(), "openai, local, auto")

	assert.Len(t, Origins(), 3)
	assert.Equal(t, "Local", OriginLocal.Info().Name)
}
