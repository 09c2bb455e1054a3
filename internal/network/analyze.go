package network

// Analyze 对单条记录分类并推导详情与性能指标。
func Analyze(obs Observation) AnalysisResult {
	t := Classify(obs)
	res := AnalysisResult{Type: t, Details: EmptyDetails{}, Performance: EmptyDetails{}}
	switch {
	case t == TypeWiFi:
		res.Details, res.Performance, res.SignalFallback = analyzeWiFi(obs)
	case t == TypeBluetooth:
		res.Details, res.Performance, res.SignalFallback = analyzeBluetooth(obs)
	case t.Cellular():
		res.Details, res.Performance, res.SignalFallback = analyzeCellular(obs, t)
	default:
		res.SignalFallback = ParseSignal(obs.Signal, t).Fallback
	}
	return res
}

func analyzeWiFi(obs Observation) (WiFiDetails, WiFiPerformance, bool) {
	quality, sig := obs.Quality(TypeWiFi)
	encryption := deref(obs.Encryption, "")
	details := WiFiDetails{
		SSID:                deref(obs.SSID, unknownValue),
		SecurityLevel:       SecurityLevel(encryption),
		SignalQuality:       quality,
		Band:                WiFiBand(derefFloat(obs.Frequency, 0)),
		ConnectionStability: WiFiStability(quality),
	}
	if encryption != "" {
		details.Encryption = &EncryptionDetails{
			Type:     encryption,
			Strength: EncryptionStrength(encryption),
		}
	}
	bandwidth := EstimatedBandwidth(quality)
	if obs.Bandwidth != nil {
		bandwidth = *obs.Bandwidth + " Mbps"
	}
	perf := WiFiPerformance{
		Latency:       WiFiLatency(quality),
		Stability:     WiFiStability(quality),
		Interference:  Interference(derefFloat(obs.Noise, defaultNoise)),
		SignalQuality: quality,
		Bandwidth:     bandwidth,
		Congestion:    Congestion(derefFloat(obs.ChannelUtilization, defaultChannelUtilization)),
	}
	return details, perf, sig.Fallback
}

func analyzeBluetooth(obs Observation) (BluetoothDetails, BluetoothPerformance, bool) {
	quality, sig := obs.Quality(TypeBluetooth)
	details := BluetoothDetails{
		DeviceClass:    BluetoothClass(deref(obs.Class, "")),
		Paired:         obs.Paired,
		SignalStrength: quality,
		Services:       nonNil(obs.Services),
		Manufacturer:   Manufacturer(deref(obs.Address, "")),
	}
	perf := BluetoothPerformance{
		Range:         BluetoothRange(sig.DBM),
		Stability:     BluetoothStability(quality),
		SignalQuality: quality,
		Interference:  BluetoothInterference(obs.NearbyDevices),
		Compatibility: BluetoothCompatibility(deref(obs.Version, defaultBluetoothVersion), obs.Profiles),
	}
	return details, perf, sig.Fallback
}

func analyzeCellular(obs Observation, kind NetworkType) (CellularDetails, CellularPerformance, bool) {
	// 信号强度按 lte/esim 各自阈值计算，稳定性统一沿用 lte 阈值。
	quality, sig := obs.Quality(kind)
	technology := deref(obs.Technology, "")
	stability := CellularStability(Score(sig.DBM, TypeLTE))
	latency := CellularLatency(technology)
	coverage := Coverage(sig.DBM)

	details := CellularDetails{
		Kind:           kind,
		Operator:       deref(obs.Operator, unknownValue),
		Technology:     deref(obs.Technology, unknownValue),
		SignalStrength: quality,
		Band:           deref(obs.Band, unknownValue),
		Roaming:        obs.Roaming,
	}
	perf := CellularPerformance{
		Kind:           kind,
		SignalStrength: quality,
		Latency:        latency,
		Stability:      stability,
		QoS: QoS{
			Latency:     latency,
			Stability:   stability,
			Coverage:    coverage,
			NetworkType: deref(obs.Technology, unknownValue),
		},
		Coverage: coverage,
	}
	return details, perf, sig.Fallback
}

func nonNil(items []string) []string {
	if items == nil {
		return []string{}
	}
	return items
}
