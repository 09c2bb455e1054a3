package network

import "strings"

const bluetoothAddressMarker = "bluetooth_address"

// Classify 按优先级判断记录类型，先命中先返回；无法识别时返回 unknown，从不失败。
func Classify(obs Observation) NetworkType {
	switch {
	case obs.SSID != nil:
		return TypeWiFi
	case obs.DeviceType != nil || strings.Contains(obs.raw, bluetoothAddressMarker):
		return TypeBluetooth
	case obs.Operator != nil && obs.Technology != nil:
		return cellularKind(*obs.Technology)
	default:
		return TypeUnknown
	}
}

// cellularKind is case-sensitive on purpose: "lte" in lower case is esim.
func cellularKind(technology string) NetworkType {
	if strings.Contains(technology, "LTE") {
		return TypeLTE
	}
	return TypeESIM
}
