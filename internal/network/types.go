package network

import "time"

// NetworkType 是观测记录的互斥分类。
type NetworkType string

const (
	TypeWiFi      NetworkType = "wifi"
	TypeBluetooth NetworkType = "bluetooth"
	TypeLTE       NetworkType = "lte"
	TypeESIM      NetworkType = "esim"
	TypeUnknown   NetworkType = "unknown"
)

// AllTypes lists every classification in reporting order.
var AllTypes = []NetworkType{TypeWiFi, TypeBluetooth, TypeLTE, TypeESIM, TypeUnknown}

// Cellular reports whether t is lte or esim.
func (t NetworkType) Cellular() bool {
	return t == TypeLTE || t == TypeESIM
}

// Details 是各类型的描述性分析结果。
type Details interface {
	detailsType() NetworkType
}

// Performance 是各类型的性能分析结果。
type Performance interface {
	performanceType() NetworkType
}

// AnalysisResult 是单条记录的分析输出，每次调用新建，构造后不再修改。
type AnalysisResult struct {
	Type                 NetworkType `json:"type"`
	Details              Details     `json:"details"`
	Performance          Performance `json:"performance"`
	SignalFallback       bool        `json:"signal_fallback"`
	Recommendation       string      `json:"recommendation,omitempty"`
	RecommendationOrigin string      `json:"recommendation_origin,omitempty"`
}

// WithRecommendation returns a copy carrying the free-text advice.
func (r AnalysisResult) WithRecommendation(text, origin string) AnalysisResult {
	r.Recommendation = text
	r.RecommendationOrigin = origin
	return r
}

type EmptyDetails struct{}

func (EmptyDetails) detailsType() NetworkType     { return TypeUnknown }
func (EmptyDetails) performanceType() NetworkType { return TypeUnknown }

type EncryptionDetails struct {
	Type     string `json:"type"`
	Strength string `json:"strength"`
}

type WiFiDetails struct {
	SSID                string             `json:"ssid"`
	SecurityLevel       string             `json:"security_level"`
	SignalQuality       float64            `json:"signal_quality"`
	Band                string             `json:"band"`
	ConnectionStability string             `json:"connection_stability"`
	Encryption          *EncryptionDetails `json:"encryption_details,omitempty"`
}

func (WiFiDetails) detailsType() NetworkType { return TypeWiFi }

type WiFiPerformance struct {
	Latency       string  `json:"latency"`
	Stability     string  `json:"stability"`
	Interference  string  `json:"interference"`
	SignalQuality float64 `json:"signal_quality"`
	Bandwidth     string  `json:"estimated_bandwidth"`
	Congestion    string  `json:"congestion"`
}

func (WiFiPerformance) performanceType() NetworkType { return TypeWiFi }

type BluetoothDetails struct {
	DeviceClass    string   `json:"device_class"`
	Paired         bool     `json:"pairing_status"`
	SignalStrength float64  `json:"signal_strength"`
	Services       []string `json:"services"`
	Manufacturer   string   `json:"manufacturer"`
}

func (BluetoothDetails) detailsType() NetworkType { return TypeBluetooth }

type Compatibility struct {
	Version  string   `json:"version"`
	Level    string   `json:"compatibility"`
	Profiles []string `json:"supported_profiles"`
}

type BluetoothPerformance struct {
	Range         string        `json:"estimated_range"`
	Stability     string        `json:"connection_stability"`
	SignalQuality float64       `json:"signal_quality"`
	Interference  string        `json:"interference"`
	Compatibility Compatibility `json:"compatibility"`
}

func (BluetoothPerformance) performanceType() NetworkType { return TypeBluetooth }

type CellularDetails struct {
	Kind           NetworkType `json:"-"`
	Operator       string      `json:"operator"`
	Technology     string      `json:"technology"`
	SignalStrength float64     `json:"signal_strength"`
	Band           string      `json:"band"`
	Roaming        bool        `json:"roaming"`
}

func (d CellularDetails) detailsType() NetworkType { return d.Kind }

type QoS struct {
	Latency     string `json:"latency"`
	Stability   string `json:"stability"`
	Coverage    string `json:"coverage"`
	NetworkType string `json:"network_type"`
}

type CellularPerformance struct {
	Kind           NetworkType `json:"-"`
	SignalStrength float64     `json:"signal_strength"`
	Latency        string      `json:"network_latency"`
	Stability      string      `json:"stability"`
	QoS            QoS         `json:"quality_of_service"`
	Coverage       string      `json:"coverage"`
}

func (p CellularPerformance) performanceType() NetworkType { return p.Kind }

// SecurityStats 统计 Wi-Fi 记录的加密情况。
type SecurityStats struct {
	Encrypted int `json:"encrypted"`
	Open      int `json:"open"`
}

// AggregateStats 是一批记录的汇总。
type AggregateStats struct {
	TotalNetworks    int                     `json:"total_networks"`
	NetworkTypes     map[NetworkType]int     `json:"network_types"`
	AverageSignal    map[NetworkType]float64 `json:"average_signal"`
	SecurityStats    SecurityStats           `json:"security_stats"`
	SignalFallbacks  int                     `json:"signal_fallbacks"`
	Timestamp        time.Time               `json:"timestamp"`
	DetailedAnalysis []AnalysisResult        `json:"detailed_analysis"`
}

// Prediction 是启发式网络质量预测。
type Prediction struct {
	QualityScore float64 `json:"quality_score"`
	Reliability  float64 `json:"reliability"`
	Readings     int     `json:"readings"`
	Fallbacks    int     `json:"fallbacks"`
}
