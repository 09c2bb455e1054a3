package network

import (
	"math"

	"netscope/internal/pkg/convert"
)

// Thresholds 是某类网络的 dBm 阈值：不低于 Excellent 得 1，不高于 Poor 得 0。
type Thresholds struct {
	Excellent float64 `json:"excellent"`
	Poor      float64 `json:"poor"`
}

var (
	thresholdTable = map[NetworkType]Thresholds{
		TypeWiFi:      {Excellent: -50, Poor: -80},
		TypeBluetooth: {Excellent: -60, Poor: -90},
		TypeLTE:       {Excellent: -70, Poor: -100},
		TypeESIM:      {Excellent: -70, Poor: -100},
	}
	genericThresholds = Thresholds{Excellent: -50, Poor: -100}
)

// ThresholdsFor returns the threshold pair for t, or the generic pair for
// any type without its own entry.
func ThresholdsFor(t NetworkType) Thresholds {
	if th, ok := thresholdTable[t]; ok {
		return th
	}
	return genericThresholds
}

// Score 将信号强度线性映射到 [0,1]。
func Score(dbm float64, t NetworkType) float64 {
	th := ThresholdsFor(t)
	switch {
	case dbm >= th.Excellent:
		return 1.0
	case dbm <= th.Poor:
		return 0.0
	default:
		return (dbm - th.Poor) / (th.Excellent - th.Poor)
	}
}

// DefaultSignal is the reading substituted when a record has no usable signal.
func DefaultSignal(t NetworkType) float64 {
	if t == TypeBluetooth {
		return -90
	}
	return -100
}

// Signal 是解析后的信号读数。Fallback 为 true 表示原始值缺失或无法解析，
// DBM 为替代的默认弱信号。
type Signal struct {
	DBM      float64
	Fallback bool
}

// ParseSignal reads a numeric value or a string with a leading number
// ("-65 dBm"). Absent or unparsable input yields the type default with
// Fallback set.
func ParseSignal(raw *string, t NetworkType) Signal {
	if raw != nil {
		if v, ok := convert.LeadingFloat(*raw); ok && !math.IsNaN(v) {
			return Signal{DBM: v}
		}
	}
	return Signal{DBM: DefaultSignal(t), Fallback: true}
}

// Quality is ParseSignal followed by Score.
func (o Observation) Quality(t NetworkType) (float64, Signal) {
	sig := ParseSignal(o.Signal, t)
	return Score(sig.DBM, t), sig
}
