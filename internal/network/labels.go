package network

import (
	"strconv"
	"strings"
)

// 分桶边界为固定常量，不可配置。
const (
	qualityExcellent = 0.8
	qualityGood      = 0.6
	qualityMedium    = 0.4

	defaultNoise              = -90.0
	defaultChannelUtilization = 0.5
	defaultBluetoothVersion   = "4.0"
)

const (
	SecurityOpen           = "dangerous - open network"
	SecurityWEP            = "weak - deprecated WEP"
	SecurityWPA2Enterprise = "excellent - WPA2 Enterprise"
	SecurityWPA3           = "very good - WPA3"
	SecurityWPA2           = "good - WPA2"
	SecurityBasic          = "medium - basic security"

	StrengthStrong = "strong"
	StrengthMedium = "medium"
	StrengthWeak   = "weak"

	BandFiveGHz = "5GHz"
	BandTwoGHz  = "2.4GHz"

	LevelExcellent = "excellent"
	LevelGood      = "good"
	LevelMedium    = "medium"
	LevelPoor      = "poor"
	LevelWeak      = "weak"
	LevelHigh      = "high"
	LevelLow       = "low"
	LevelUnknown   = "unknown"
	LevelLimited   = "limited"

	ClassAudio    = "audio"
	ClassPhone    = "phone"
	ClassComputer = "computer"
	ClassOther    = "other"

	unknownValue = "Unknown"
)

type bucket struct {
	above float64
	label string
}

// pick returns the label of the first bucket whose bound v strictly exceeds,
// or fallback.
func pick(v float64, buckets []bucket, fallback string) string {
	for _, b := range buckets {
		if v > b.above {
			return b.label
		}
	}
	return fallback
}

func qualityBuckets(excellent, good, medium string) []bucket {
	return []bucket{
		{qualityExcellent, excellent},
		{qualityGood, good},
		{qualityMedium, medium},
	}
}

// WiFiLatency 根据信号质量估计 Wi-Fi 延迟。
func WiFiLatency(quality float64) string {
	return pick(quality, qualityBuckets("excellent (<10ms)", "good (10-30ms)", "medium (30-50ms)"), "high (>50ms)")
}

func WiFiStability(quality float64) string {
	return pick(quality, qualityBuckets(LevelExcellent, LevelGood, LevelMedium), LevelPoor)
}

func Interference(noise float64) string {
	return pick(noise, []bucket{{-70, LevelHigh}, {-80, LevelMedium}}, LevelLow)
}

func EstimatedBandwidth(quality float64) string {
	return pick(quality, qualityBuckets(">100 Mbps", "50-100 Mbps", "20-50 Mbps"), "<20 Mbps")
}

func Congestion(utilization float64) string {
	return pick(utilization, []bucket{{0.8, LevelHigh}, {0.5, LevelMedium}}, LevelLow)
}

// SecurityLevel 根据 encryption 字段评估 Wi-Fi 安全等级；缺失或 none 视为开放网络。
func SecurityLevel(encryption string) string {
	enc := strings.ToLower(encryption)
	switch {
	case enc == "" || enc == "none":
		return SecurityOpen
	case strings.Contains(enc, "wep"):
		return SecurityWEP
	case strings.Contains(enc, "wpa2") && strings.Contains(enc, "enterprise"):
		return SecurityWPA2Enterprise
	case strings.Contains(enc, "wpa3"):
		return SecurityWPA3
	case strings.Contains(enc, "wpa2"):
		return SecurityWPA2
	default:
		return SecurityBasic
	}
}

func EncryptionStrength(encryption string) string {
	enc := strings.ToLower(encryption)
	switch {
	case strings.Contains(enc, "wpa3"):
		return StrengthStrong
	case strings.Contains(enc, "wpa2") && strings.Contains(enc, "enterprise"):
		return StrengthStrong
	case strings.Contains(enc, "wpa2"):
		return StrengthMedium
	default:
		return StrengthWeak
	}
}

func WiFiBand(frequencyMHz float64) string {
	return pick(frequencyMHz, []bucket{{5000, BandFiveGHz}, {2400, BandTwoGHz}}, LevelUnknown)
}

func BluetoothClass(class string) string {
	c := strings.ToLower(class)
	switch {
	case strings.Contains(c, "audio"):
		return ClassAudio
	case strings.Contains(c, "phone"):
		return ClassPhone
	case strings.Contains(c, "computer"):
		return ClassComputer
	default:
		return ClassOther
	}
}

// ouiPrefixes 只覆盖演示用的几个地址前缀，其余厂商一律为 unknown。
var ouiPrefixes = map[string]string{
	"00:11:22": "Apple",
	"AA:BB:CC": "Samsung",
	"12:34:56": "Google",
}

func Manufacturer(address string) string {
	if len(address) < 8 {
		return LevelUnknown
	}
	if name, ok := ouiPrefixes[strings.ToUpper(address[:8])]; ok {
		return name
	}
	return LevelUnknown
}

// BluetoothRange works on the raw dBm reading, not the quality score.
func BluetoothRange(dbm float64) string {
	return pick(dbm, []bucket{
		{-60, "excellent (>10m)"},
		{-70, "good (5-10m)"},
		{-80, "medium (2-5m)"},
	}, "weak (<2m)")
}

func BluetoothStability(quality float64) string {
	return pick(quality, qualityBuckets("very stable", "stable", "variable"), "unstable")
}

func BluetoothInterference(nearby int) string {
	return pick(float64(nearby), []bucket{
		{10, "high interference risk"},
		{5, "moderate interference risk"},
	}, "low interference risk")
}

// BluetoothCompatibility 判断协议版本兼容性。版本号无法解析时不报错，返回 unknown。
func BluetoothCompatibility(version string, profiles []string) Compatibility {
	if strings.TrimSpace(version) == "" {
		version = defaultBluetoothVersion
	}
	if profiles == nil {
		profiles = []string{}
	}
	out := Compatibility{Version: version, Profiles: profiles}
	v, err := strconv.ParseFloat(strings.TrimSpace(version), 64)
	switch {
	case err != nil:
		out.Level = LevelUnknown
	case v >= 4.0:
		out.Level = LevelGood
	default:
		out.Level = LevelLimited
	}
	return out
}

func CellularLatency(technology string) string {
	tech := strings.ToUpper(technology)
	switch {
	case strings.Contains(tech, "LTE") || strings.Contains(tech, "5G"):
		return "low (<30ms)"
	case strings.Contains(tech, "4G"):
		return "medium (30-50ms)"
	default:
		return "high (>50ms)"
	}
}

func CellularStability(quality float64) string {
	return pick(quality, qualityBuckets(LevelExcellent, LevelGood, LevelMedium), LevelWeak)
}

// Coverage works on the raw dBm reading.
func Coverage(dbm float64) string {
	return pick(dbm, []bucket{{-70, LevelExcellent}, {-85, LevelGood}, {-100, LevelMedium}}, LevelWeak)
}
