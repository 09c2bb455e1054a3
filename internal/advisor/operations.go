package advisor

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"

	"netscope/internal/catalog"
	"netscope/internal/gateway/provider"
	"netscope/internal/network"
	"netscope/internal/pkg/jsonutil"

	"github.com/tidwall/gjson"
	"golang.org/x/sync/errgroup"
)

const (
	KindSentiment       = "sentiment"
	KindSummary         = "summary"
	KindRecommendations = "recommendations"
	KindNetworkAdvice   = "network_advice"
)

var errNoJSON = errors.New("model output contains no JSON object")

type SentimentResult struct {
	Rating     int     `json:"rating"`
	Confidence float64 `json:"confidence"`
	Origin     Origin  `json:"origin"`
}

type SummaryResult struct {
	Summary string `json:"summary"`
	Origin  Origin `json:"origin"`
}

type RecommendationResult struct {
	Recommendations []string `json:"recommendations"`
	Origin          Origin   `json:"origin"`
}

const (
	sentimentSystemPrompt = `You are an expert in sentiment analysis. Analyse the sentiment of the text and give a rating from 1 to 5 stars and a confidence score between 0 and 1. Reply with JSON in this format: {"rating": number, "confidence": number}`
	summaryPrompt         = "Summarise the following text concisely while keeping the key points:\n\n"
	recommendPrompt       = `As a product recommendation expert, produce a list of 5 product recommendations based on this description: %q. Reply with a JSON object that has a single property "recommendations" holding an array of strings.`
	networkSystemPrompt   = "You are an expert in network security and optimisation."
	networkPrompt         = `Analyse in detail the following aspects of this network connection:
1. Potential security risks
2. Optimisation recommendations
3. Specific good practices
4. Points needing particular attention

Connection data: %s`
)

// Sentiment rates text from 1 to 5. requested may be empty to use the
// default origin.
func (a *Advisor) Sentiment(ctx context.Context, text, requested string) (SentimentResult, Meta, error) {
	res, meta, err := execute(ctx, a, call[SentimentResult]{
		kind:      KindSentiment,
		requested: requested,
		input:     text,
		remote: func(ctx context.Context) (SentimentResult, error) {
			raw, err := a.provider.Call(ctx, provider.ChatPayload{
				Purpose:    KindSentiment,
				System:     sentimentSystemPrompt,
				User:       text,
				ExpectJSON: true,
			})
			if err != nil {
				return SentimentResult{}, err
			}
			return parseSentiment(raw)
		},
		local: func() SentimentResult {
			pos, neg := a.catalog.Lexicon()
			return LocalSentiment(text, pos, neg)
		},
	})
	res.Origin = meta.Origin
	return res, meta, err
}

func (a *Advisor) Summarize(ctx context.Context, text, requested string) (SummaryResult, Meta, error) {
	res, meta, err := execute(ctx, a, call[SummaryResult]{
		kind:      KindSummary,
		requested: requested,
		input:     text,
		remote: func(ctx context.Context) (SummaryResult, error) {
			raw, err := a.provider.Call(ctx, provider.ChatPayload{
				Purpose: KindSummary,
				User:    summaryPrompt + text,
			})
			if err != nil {
				return SummaryResult{}, err
			}
			summary := strings.TrimSpace(raw)
			if summary == "" {
				return SummaryResult{}, fmt.Errorf("empty summary")
			}
			return SummaryResult{Summary: summary}, nil
		},
		local: func() SummaryResult {
			return SummaryResult{Summary: LocalSummary(text)}
		},
	})
	res.Origin = meta.Origin
	return res, meta, err
}

func (a *Advisor) Recommend(ctx context.Context, description, requested string) (RecommendationResult, Meta, error) {
	res, meta, err := execute(ctx, a, call[RecommendationResult]{
		kind:      KindRecommendations,
		requested: requested,
		input:     description,
		remote: func(ctx context.Context) (RecommendationResult, error) {
			raw, err := a.provider.Call(ctx, provider.ChatPayload{
				Purpose:    KindRecommendations,
				User:       fmt.Sprintf(recommendPrompt, description),
				ExpectJSON: true,
			})
			if err != nil {
				return RecommendationResult{}, err
			}
			return parseRecommendations(raw)
		},
		local: func() RecommendationResult {
			return RecommendationResult{Recommendations: a.catalog.Recommend(description)}
		},
	})
	res.Origin = meta.Origin
	return res, meta, err
}

// NetworkAdvice 为单条分析结果生成建议文本；模型不可用时使用 catalog 中的默认建议。
func (a *Advisor) NetworkAdvice(ctx context.Context, result network.AnalysisResult, requested string) (network.AnalysisResult, Meta, error) {
	details, err := json.Marshal(result.Details)
	if err != nil {
		return result, Meta{}, fmt.Errorf("encode details: %w", err)
	}
	advice, meta, err := execute(ctx, a, call[string]{
		kind:      KindNetworkAdvice,
		requested: requested,
		input:     string(details),
		remote: func(ctx context.Context) (string, error) {
			raw, err := a.provider.Call(ctx, provider.ChatPayload{
				Purpose: KindNetworkAdvice,
				System:  networkSystemPrompt,
				User:    fmt.Sprintf(networkPrompt, details),
			})
			if err != nil {
				return "", err
			}
			if strings.TrimSpace(raw) == "" {
				return "", fmt.Errorf("empty advice")
			}
			return strings.TrimSpace(raw), nil
		},
		local: func() string {
			return a.catalog.NetworkAdvice(string(result.Type))
		},
	})
	if err != nil {
		return result, meta, err
	}
	return result.WithRecommendation(advice, string(meta.Origin)), meta, nil
}

// AdviseAll enriches every result concurrently, bounded by the configured
// concurrency. Output order matches input order.
func (a *Advisor) AdviseAll(ctx context.Context, results []network.AnalysisResult, requested string) ([]network.AnalysisResult, error) {
	if _, err := a.resolve(requested); err != nil {
		return nil, err
	}
	out := make([]network.AnalysisResult, len(results))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.concurrency)
	for i, res := range results {
		g.Go(func() error {
			enriched, _, err := a.NetworkAdvice(gctx, res, requested)
			if err != nil {
				return err
			}
			out[i] = enriched
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func decodeObject(raw string, kind catalog.ResponseKind) (string, error) {
	obj, ok := jsonutil.ExtractObject(raw)
	if !ok {
		return "", errNoJSON
	}
	var payload map[string]any
	if err := json.Unmarshal([]byte(obj), &payload); err != nil {
		return "", fmt.Errorf("decode %s response: %w", kind, err)
	}
	if err := catalog.ValidateResponse(kind, payload); err != nil {
		return "", fmt.Errorf("invalid %s response: %w", kind, err)
	}
	return obj, nil
}

func parseSentiment(raw string) (SentimentResult, error) {
	obj, err := decodeObject(raw, catalog.KindSentiment)
	if err != nil {
		return SentimentResult{}, err
	}
	rating := gjson.Get(obj, "rating").Float()
	confidence := gjson.Get(obj, "confidence").Float()
	if math.IsNaN(rating) || math.IsNaN(confidence) {
		return SentimentResult{}, fmt.Errorf("invalid sentiment numbers: %s", obj)
	}
	return SentimentResult{
		Rating:     clampInt(int(math.Round(rating)), 1, 5),
		Confidence: clampFloat(confidence, 0, 1),
	}, nil
}

func parseRecommendations(raw string) (RecommendationResult, error) {
	obj, err := decodeObject(raw, catalog.KindRecommendations)
	if err != nil {
		return RecommendationResult{}, err
	}
	var items []string
	for _, item := range gjson.Get(obj, "recommendations").Array() {
		if s := strings.TrimSpace(item.String()); s != "" {
			items = append(items, s)
		}
	}
	if len(items) == 0 {
		return RecommendationResult{}, fmt.Errorf("empty recommendations")
	}
	return RecommendationResult{Recommendations: items}, nil
}
