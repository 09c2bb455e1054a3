package network

import (
	"fmt"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"
)

const (
	reliabilityWithReadings = 0.7
	reliabilityNoReadings   = 0.5
)

// PredictQuality 在没有训练模型时用启发式估计整体质量：对带 signal 的条目按其键名
// 对应的阈值打分后取平均。键名不是已知类型时使用通用阈值。
// signal 无法解析的条目不计入读数，只记入 Fallbacks。
func PredictQuality(byType map[string]Observation) Prediction {
	total := decimal.Zero
	count, fallbacks := 0, 0
	for key, obs := range byType {
		if obs.Signal == nil {
			continue
		}
		t := NetworkType(key)
		sig := ParseSignal(obs.Signal, t)
		if sig.Fallback {
			fallbacks++
			continue
		}
		total = total.Add(decimal.NewFromFloat(Score(sig.DBM, t)))
		count++
	}
	if count == 0 {
		return Prediction{QualityScore: 0, Reliability: reliabilityNoReadings, Fallbacks: fallbacks}
	}
	avg := total.Div(decimal.NewFromInt(int64(count))).Round(4)
	return Prediction{
		QualityScore: avg.InexactFloat64(),
		Reliability:  reliabilityWithReadings,
		Readings:     count,
		Fallbacks:    fallbacks,
	}
}

// ParsePredictionInput decodes {"<type>": {record}, ...}. Values that are not
// objects are skipped.
func ParsePredictionInput(raw []byte) (map[string]Observation, error) {
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("invalid prediction json")
	}
	res := gjson.ParseBytes(raw)
	if !res.IsObject() {
		return nil, ErrNotObject
	}
	out := make(map[string]Observation)
	res.ForEach(func(key, value gjson.Result) bool {
		if value.IsObject() {
			out[key.String()] = fromResult(value)
		}
		return true
	})
	return out, nil
}
