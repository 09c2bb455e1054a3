package network

// BestNetwork 是扫描结果中得分最高的网络摘要。
type BestNetwork struct {
	Name         string   `json:"name"`
	RSSI         float64  `json:"rssi"`
	FrequencyMHz *float64 `json:"frequency_mhz,omitempty"`
	Score        float64  `json:"score"`
}

type WiFiStatus struct {
	Active        bool         `json:"active"`
	SignalQuality float64      `json:"signal_quality"`
	BestNetwork   *BestNetwork `json:"best_network"`
	NetworksCount int          `json:"networks_count"`
}

type BluetoothStatus struct {
	Active           bool    `json:"active"`
	SignalQuality    float64 `json:"signal_quality"`
	ConnectedDevices int     `json:"connected_devices"`
	Mode             string  `json:"mode"`
}

type CellularStatus struct {
	Active        bool    `json:"active"`
	SignalQuality float64 `json:"signal_quality,omitempty"`
	Operator      string  `json:"operator,omitempty"`
	Technology    string  `json:"type,omitempty"`
	Message       string  `json:"message,omitempty"`
}

// Status 是 /api/network_status 的载荷。Wi-Fi 来自扫描文件，其余为演示用的静态数据。
type Status struct {
	WiFi      WiFiStatus      `json:"wifi"`
	Bluetooth BluetoothStatus `json:"bluetooth"`
	LTE       CellularStatus  `json:"lte"`
	ESIM      CellularStatus  `json:"esim"`
}

var (
	demoBluetooth = BluetoothStatus{Active: true, SignalQuality: 0.75, ConnectedDevices: 2, Mode: "discoverable"}
	demoLTE       = CellularStatus{Active: true, SignalQuality: 0.85, Operator: "Orange", Technology: "4G+"}
	demoESIM      = CellularStatus{Active: false, Message: "not configured"}
)

// Summarize ranks scan entries and describes the best one.
func Summarize(entries []ScanEntry) WiFiStatus {
	status := WiFiStatus{Active: len(entries) > 0}
	best, ok := BestScan(entries)
	if !ok {
		return status
	}
	status.SignalQuality = ScanQuality(best.RSSI)
	status.BestNetwork = describeBest(best)
	status.NetworksCount = len(entries)
	return status
}

// WiFiReport 是 /api/wifi 的载荷。
type WiFiReport struct {
	Total       int          `json:"total"`
	BestNetwork *BestNetwork `json:"best_network"`
	Networks    []ScanEntry  `json:"networks"`
}

func Report(entries []ScanEntry) WiFiReport {
	report := WiFiReport{Total: len(entries), Networks: entries}
	if report.Networks == nil {
		report.Networks = []ScanEntry{}
	}
	if best, ok := BestScan(entries); ok {
		report.BestNetwork = describeBest(best)
	}
	return report
}

func describeBest(e ScanEntry) *BestNetwork {
	return &BestNetwork{
		Name:         e.SSID,
		RSSI:         e.RSSI,
		FrequencyMHz: e.FrequencyMHz,
		Score:        ScanScore(e),
	}
}

// BuildStatus combines the Wi-Fi summary with the static demo blocks.
func BuildStatus(entries []ScanEntry) Status {
	return Status{
		WiFi:      Summarize(entries),
		Bluetooth: demoBluetooth,
		LTE:       demoLTE,
		ESIM:      demoESIM,
	}
}
