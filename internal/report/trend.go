package report

import (
	"time"

	"netscope/internal/network"
	"netscope/internal/store/history"

	talib "github.com/markcheno/go-talib"
	"github.com/shopspring/decimal"
)

// DefaultWindow 是质量趋势移动平均的默认窗口。
const DefaultWindow = 5

// TrendPoint 对应一条历史记录的整体质量。
type TrendPoint struct {
	ID            string    `json:"id"`
	CreatedAt     time.Time `json:"created_at"`
	Total         int       `json:"total"`
	Quality       float64   `json:"quality"`
	MovingAverage *float64  `json:"moving_average"`
}

type Trend struct {
	Window int          `json:"window"`
	Points []TrendPoint `json:"points"`
}

// EntryQuality scores each type's average signal and weights it by how many
// records of that type the batch contained. Batches without any reading
// score 0.
func EntryQuality(s history.Summary) float64 {
	total := decimal.Zero
	weight := int64(0)
	for _, t := range network.AllTypes {
		avg, ok := s.AverageSignal[t]
		if !ok {
			continue
		}
		n := int64(s.NetworkTypes[t])
		if n <= 0 {
			n = 1
		}
		score := decimal.NewFromFloat(network.Score(avg, t))
		total = total.Add(score.Mul(decimal.NewFromInt(n)))
		weight += n
	}
	if weight == 0 {
		return 0
	}
	return total.Div(decimal.NewFromInt(weight)).Round(4).InexactFloat64()
}

// BuildTrend 计算每条历史记录的质量，并在记录数足够时附带简单移动平均。
func BuildTrend(entries []history.Entry, window int) Trend {
	if window < 2 {
		window = DefaultWindow
	}
	trend := Trend{Window: window, Points: make([]TrendPoint, 0, len(entries))}
	qualities := make([]float64, len(entries))
	for i, e := range entries {
		qualities[i] = EntryQuality(e.Stats)
		trend.Points = append(trend.Points, TrendPoint{
			ID:        e.ID,
			CreatedAt: e.CreatedAt,
			Total:     e.Total,
			Quality:   qualities[i],
		})
	}
	if len(qualities) < window {
		return trend
	}
	sma := talib.Sma(qualities, window)
	for i := window - 1; i < len(sma); i++ {
		v := decimal.NewFromFloat(sma[i]).Round(4).InexactFloat64()
		trend.Points[i].MovingAverage = &v
	}
	return trend
}
