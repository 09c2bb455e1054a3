package advisor

import (
	"math"
	"strings"
	"unicode"
)

const (
	maxLocalConfidence = 0.8
	summarySentences   = 3
)

// LocalSentiment 用词表做整词匹配：先转小写并去掉首尾标点，再与正负面词表比较。
func LocalSentiment(text string, positive, negative map[string]struct{}) SentimentResult {
	words := strings.Fields(strings.ToLower(text))
	pos, neg := 0, 0
	for _, w := range words {
		token := strings.TrimFunc(w, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsNumber(r)
		})
		if token == "" {
			continue
		}
		if _, ok := positive[token]; ok {
			pos++
		}
		if _, ok := negative[token]; ok {
			neg++
		}
	}

	n := math.Max(float64(len(words)), 1)
	score := float64(pos)/n - float64(neg)/n
	rating := int(math.RoundToEven((score + 1) * 2.5))
	rating = clampInt(rating, 1, 5)

	wordConfidence := math.Min(1, float64(len(words))/50)
	matchConfidence := math.Min(1, float64(pos+neg)/math.Max(n*0.2, 1))
	confidence := math.Min(maxLocalConfidence, (wordConfidence+matchConfidence)/2)

	return SentimentResult{Rating: rating, Confidence: confidence, Origin: OriginLocal}
}

// LocalSummary 取前三句；不超过三句时原样返回。
func LocalSummary(text string) string {
	var sentences []string
	for _, s := range strings.Split(text, ".") {
		if s = strings.TrimSpace(s); s != "" {
			sentences = append(sentences, s)
		}
	}
	if len(sentences) <= summarySentences {
		return text
	}
	return strings.Join(sentences[:summarySentences], ". ") + "."
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampFloat(v, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, v))
}
