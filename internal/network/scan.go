package network

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/tidwall/gjson"
)

var (
	ErrScanFileMissing = errors.New("no wifi scan results file found")
	ErrScanFileInvalid = errors.New("invalid wifi scan results file")
)

const (
	defaultScanRSSI = -100.0
	wpaBonus        = 20.0
)

// ScanEntry 是扫描结果文件中的单个 Wi-Fi 网络。
type ScanEntry struct {
	SSID         string   `json:"ssid"`
	RSSI         float64  `json:"rssi"`
	FrequencyMHz *float64 `json:"frequency_mhz,omitempty"`
}

// LoadScanFile reads a JSON array of scan entries. Entries without an ssid
// are dropped.
func LoadScanFile(path string) ([]ScanEntry, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, ErrScanFileMissing
		}
		return nil, fmt.Errorf("read scan file: %w", err)
	}
	return ParseScan(raw)
}

func ParseScan(raw []byte) ([]ScanEntry, error) {
	if !gjson.ValidBytes(raw) {
		return nil, ErrScanFileInvalid
	}
	res := gjson.ParseBytes(raw)
	if !res.IsArray() {
		return nil, ErrScanFileInvalid
	}
	var out []ScanEntry
	res.ForEach(func(_, item gjson.Result) bool {
		ssid := strings.TrimSpace(item.Get("ssid").String())
		if ssid == "" {
			return true
		}
		entry := ScanEntry{SSID: ssid, RSSI: defaultScanRSSI}
		if rssi := item.Get("rssi"); rssi.Exists() && rssi.Type != gjson.Null {
			entry.RSSI = rssi.Float()
		}
		if freq := item.Get("frequency_mhz"); freq.Type == gjson.Number {
			f := freq.Float()
			entry.FrequencyMHz = &f
		}
		out = append(out, entry)
		return true
	})
	return out, nil
}

// ScanScore 越高越好：更强的信号得分更高，SSID 含 WPA 额外加分。
func ScanScore(e ScanEntry) float64 {
	score := math.Max(100+e.RSSI, 0)
	if strings.Contains(e.SSID, "WPA") {
		score += wpaBonus
	}
	return score
}

// BestScan returns the highest scoring entry; ties keep the earliest.
func BestScan(entries []ScanEntry) (ScanEntry, bool) {
	if len(entries) == 0 {
		return ScanEntry{}, false
	}
	best := entries[0]
	bestScore := ScanScore(best)
	for _, e := range entries[1:] {
		if s := ScanScore(e); s > bestScore {
			best, bestScore = e, s
		}
	}
	return best, true
}

// ScanQuality maps -100..-50 dBm onto [0,1].
func ScanQuality(rssi float64) float64 {
	return math.Max(0, math.Min(1, (rssi+100)/50))
}
