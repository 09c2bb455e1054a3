package network

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

const averagePlaces = 2

// Aggregate 单次遍历输入：分类计数、按类型收集信号读数、统计 Wi-Fi 加密情况，
// 并为每条记录生成一个 AnalysisResult（顺序与输入一致）。
func Aggregate(observations []Observation, now time.Time) AggregateStats {
	stats := AggregateStats{
		TotalNetworks:    len(observations),
		NetworkTypes:     make(map[NetworkType]int, len(AllTypes)),
		AverageSignal:    make(map[NetworkType]float64),
		Timestamp:        now,
		DetailedAnalysis: make([]AnalysisResult, 0, len(observations)),
	}
	for _, t := range AllTypes {
		stats.NetworkTypes[t] = 0
	}

	readings := make(map[NetworkType][]decimal.Decimal)
	for _, obs := range observations {
		result := Analyze(obs)
		stats.DetailedAnalysis = append(stats.DetailedAnalysis, result)
		t := result.Type
		stats.NetworkTypes[t]++

		if obs.Signal != nil {
			if sig := ParseSignal(obs.Signal, t); !sig.Fallback {
				readings[t] = append(readings[t], decimal.NewFromFloat(sig.DBM))
			}
		}
		if result.SignalFallback {
			stats.SignalFallbacks++
		}

		if t == TypeWiFi {
			if encrypted(obs.Encryption) {
				stats.SecurityStats.Encrypted++
			} else {
				stats.SecurityStats.Open++
			}
		}
	}

	for t, values := range readings {
		if len(values) == 0 {
			continue
		}
		avg := decimal.Sum(values[0], values[1:]...).Div(decimal.NewFromInt(int64(len(values))))
		stats.AverageSignal[t] = avg.Round(averagePlaces).InexactFloat64()
	}
	return stats
}

func encrypted(enc *string) bool {
	return enc != nil && *enc != "" && strings.ToLower(*enc) != "none"
}
