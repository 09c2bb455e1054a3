package network

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustObs(t *testing.T, raw string) Observation {
	t.Helper()
	obs, err := ParseObservation([]byte(raw))
	require.NoError(t, err)
	return obs
}

func TestClassify(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want NetworkType
	}{
		{"ssid", `{"ssid":"Home"}`, TypeWiFi},
		{"ssid null still wifi", `{"ssid":null}`, TypeWiFi},
		{"ssid wins over device_type", `{"ssid":"x","device_type":"audio"}`, TypeWiFi},
		{"device_type", `{"device_type":"audio"}`, TypeBluetooth},
		{"bluetooth address marker", `{"meta":"bluetooth_address"}`, TypeBluetooth},
		{"lte", `{"operator":"X","technology":"LTE"}`, TypeLTE},
		{"lte advanced", `{"operator":"X","technology":"LTE-A"}`, TypeLTE},
		{"lower case lte is esim", `{"operator":"X","technology":"lte"}`, TypeESIM},
		{"5g", `{"operator":"X","technology":"5G"}`, TypeESIM},
		{"operator only", `{"operator":"X"}`, TypeUnknown},
		{"empty", `{}`, TypeUnknown},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Classify(mustObs(t, tc.raw)))
		})
	}
}

func TestScoreThresholds(t *testing.T) {
	assert.Equal(t, 0.5, Score(-65, TypeWiFi))
	assert.Equal(t, 0.0, Score(-85, TypeWiFi))
	assert.Equal(t, 1.0, Score(-50, TypeWiFi))
	assert.Equal(t, 0.0, Score(-80, TypeWiFi))
	assert.Equal(t, 1.0, Score(-60, TypeBluetooth))
	assert.InDelta(t, 0.5, Score(-75, TypeBluetooth), 1e-9)
	assert.InDelta(t, 0.5, Score(-85, TypeLTE), 1e-9)
	assert.InDelta(t, 0.5, Score(-75, TypeUnknown), 1e-9)
}

func TestScoreMonotonic(t *testing.T) {
	for _, typ := range AllTypes {
		prev := -1.0
		for dbm := -120.0; dbm <= -30; dbm += 0.5 {
			s := Score(dbm, typ)
			assert.GreaterOrEqual(t, s, prev, "type=%s dbm=%v", typ, dbm)
			assert.GreaterOrEqual(t, s, 0.0)
			assert.LessOrEqual(t, s, 1.0)
			prev = s
		}
	}
}

func TestParseSignal(t *testing.T) {
	s := "-65 dBm"
	sig := ParseSignal(&s, TypeWiFi)
	assert.Equal(t, Signal{DBM: -65}, sig)

	bad := "strong"
	sig = ParseSignal(&bad, TypeBluetooth)
	assert.True(t, sig.Fallback)
	assert.Equal(t, -90.0, sig.DBM)

	sig = ParseSignal(nil, TypeLTE)
	assert.True(t, sig.Fallback)
	assert.Equal(t, -100.0, sig.DBM)
}

func TestAnalyzeWiFi(t *testing.T) {
	res := Analyze(mustObs(t, `{"ssid":"Cafe","signal":-65,"frequency":5180,"encryption":"WPA2"}`))
	require.Equal(t, TypeWiFi, res.Type)
	assert.False(t, res.SignalFallback)

	details, ok := res.Details.(WiFiDetails)
	require.True(t, ok)
	assert.Equal(t, "Cafe", details.SSID)
	assert.Equal(t, SecurityWPA2, details.SecurityLevel)
	assert.Equal(t, BandFiveGHz, details.Band)
	assert.Equal(t, 0.5, details.SignalQuality)
	require.NotNil(t, details.Encryption)
	assert.Equal(t, StrengthMedium, details.Encryption.Strength)

	perf, ok := res.Performance.(WiFiPerformance)
	require.True(t, ok)
	assert.Equal(t, "medium (30-50ms)", perf.Latency)
	assert.Equal(t, LevelMedium, perf.Stability)
	assert.Equal(t, LevelLow, perf.Interference)
	assert.Equal(t, "20-50 Mbps", perf.Bandwidth)
	assert.Equal(t, LevelLow, perf.Congestion)
}

func TestAnalyzeOpenNetwork(t *testing.T) {
	for _, raw := range []string{`{"ssid":"Free"}`, `{"ssid":"Free","encryption":"none"}`, `{"ssid":"Free","encryption":"NONE"}`} {
		res := Analyze(mustObs(t, raw))
		details := res.Details.(WiFiDetails)
		assert.Equal(t, SecurityOpen, details.SecurityLevel, raw)
	}
}

func TestAnalyzeWiFiOverrides(t *testing.T) {
	cases := []struct {
		name      string
		raw       string
		bandwidth string
	}{
		{"estimated", `{"ssid":"a","signal":-50}`, ">100 Mbps"},
		{"string bandwidth", `{"ssid":"a","signal":-50,"bandwidth":"150"}`, "150 Mbps"},
		{"numeric bandwidth", `{"ssid":"a","signal":-85,"bandwidth":300}`, "300 Mbps"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			perf := Analyze(mustObs(t, tc.raw)).Performance.(WiFiPerformance)
			assert.Equal(t, tc.bandwidth, perf.Bandwidth)
		})
	}

	res := Analyze(mustObs(t, `{"ssid":"Free","signal":-60,"noise":-65,"channel_utilization":0.9}`))
	details := res.Details.(WiFiDetails)
	assert.Nil(t, details.Encryption)
	perf := res.Performance.(WiFiPerformance)
	assert.Equal(t, LevelHigh, perf.Interference)
	assert.Equal(t, LevelHigh, perf.Congestion)
}

func TestInterferenceBuckets(t *testing.T) {
	cases := []struct {
		noise float64
		want  string
	}{
		{-60, LevelHigh},
		{-69.9, LevelHigh},
		{-70, LevelMedium},
		{-79.9, LevelMedium},
		{-80, LevelLow},
		{-95, LevelLow},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Interference(tc.noise), "noise=%v", tc.noise)
	}
}

func TestCongestionBuckets(t *testing.T) {
	cases := []struct {
		utilization float64
		want        string
	}{
		{1, LevelHigh},
		{0.81, LevelHigh},
		{0.8, LevelMedium},
		{0.51, LevelMedium},
		{0.5, LevelLow},
		{0, LevelLow},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, Congestion(tc.utilization), "utilization=%v", tc.utilization)
	}
}

func TestWiFiQualityBuckets(t *testing.T) {
	cases := []struct {
		quality   float64
		latency   string
		stability string
		bandwidth string
	}{
		{0.9, "excellent (<10ms)", LevelExcellent, ">100 Mbps"},
		{0.8, "good (10-30ms)", LevelGood, "50-100 Mbps"},
		{0.6, "medium (30-50ms)", LevelMedium, "20-50 Mbps"},
		{0.4, "high (>50ms)", LevelPoor, "<20 Mbps"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.latency, WiFiLatency(tc.quality), "q=%v", tc.quality)
		assert.Equal(t, tc.stability, WiFiStability(tc.quality), "q=%v", tc.quality)
		assert.Equal(t, tc.bandwidth, EstimatedBandwidth(tc.quality), "q=%v", tc.quality)
	}
}

func TestAnalyzeMissingSignalFallsBack(t *testing.T) {
	res := Analyze(mustObs(t, `{"ssid":"Dark"}`))
	assert.True(t, res.SignalFallback)
	assert.Equal(t, 0.0, res.Details.(WiFiDetails).SignalQuality)
}

func TestAnalyzeBluetooth(t *testing.T) {
	res := Analyze(mustObs(t, `{"device_type":"headset","signal":"-65","class":"Audio/Video","address":"00:11:22:33:44:55","version":"5.0","nearby_devices":7}`))
	require.Equal(t, TypeBluetooth, res.Type)

	details := res.Details.(BluetoothDetails)
	assert.Equal(t, ClassAudio, details.DeviceClass)
	assert.Equal(t, "Apple", details.Manufacturer)
	assert.Equal(t, []string{}, details.Services)

	perf := res.Performance.(BluetoothPerformance)
	assert.Equal(t, "good (5-10m)", perf.Range)
	assert.Equal(t, "moderate interference risk", perf.Interference)
	assert.Equal(t, LevelGood, perf.Compatibility.Level)
}

func TestBluetoothNearbyDevices(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
	}{
		{"array above ten", `{"device_type":"x","nearby_devices":["a","b","c","d","e","f","g","h","i","j","k"]}`, "high interference risk"},
		{"array of ten", `{"device_type":"x","nearby_devices":["a","b","c","d","e","f","g","h","i","j"]}`, "moderate interference risk"},
		{"array of three", `{"device_type":"x","nearby_devices":["a","b","c"]}`, "low interference risk"},
		{"count of six", `{"device_type":"x","nearby_devices":6}`, "moderate interference risk"},
		{"count of five", `{"device_type":"x","nearby_devices":5}`, "low interference risk"},
		{"absent", `{"device_type":"x"}`, "low interference risk"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			perf := Analyze(mustObs(t, tc.raw)).Performance.(BluetoothPerformance)
			assert.Equal(t, tc.want, perf.Interference)
		})
	}
}

func TestBluetoothCompatibility(t *testing.T) {
	assert.Equal(t, LevelLimited, BluetoothCompatibility("3.0", nil).Level)
	assert.Equal(t, LevelUnknown, BluetoothCompatibility("v5", nil).Level)
	c := BluetoothCompatibility("", nil)
	assert.Equal(t, defaultBluetoothVersion, c.Version)
	assert.Equal(t, LevelGood, c.Level)
}

func TestAnalyzeCellular(t *testing.T) {
	res := Analyze(mustObs(t, `{"operator":"Orange","technology":"5G","signal":-85}`))
	require.Equal(t, TypeESIM, res.Type)
	perf := res.Performance.(CellularPerformance)
	assert.Equal(t, TypeESIM, perf.Kind)
	assert.Equal(t, "low (<30ms)", perf.Latency)
	assert.Equal(t, LevelMedium, perf.Coverage)
	assert.Equal(t, LevelMedium, perf.Stability)
}

func TestAnalyzeLTE(t *testing.T) {
	res := Analyze(mustObs(t, `{"operator":"SFR","technology":"LTE","signal":-80}`))
	require.Equal(t, TypeLTE, res.Type)

	details := res.Details.(CellularDetails)
	assert.Equal(t, "SFR", details.Operator)
	assert.Equal(t, "LTE", details.Technology)
	assert.Equal(t, unknownValue, details.Band)
	assert.False(t, details.Roaming)
	assert.InDelta(t, 2.0/3.0, details.SignalStrength, 1e-9)

	perf := res.Performance.(CellularPerformance)
	assert.Equal(t, TypeLTE, perf.Kind)
	assert.Equal(t, "low (<30ms)", perf.Latency)
	assert.Equal(t, LevelGood, perf.Stability)
	assert.Equal(t, LevelGood, perf.Coverage)
	assert.Equal(t, "LTE", perf.QoS.NetworkType)

	roaming := Analyze(mustObs(t, `{"operator":"Vodafone","technology":"LTE","band":"B20","roaming":true}`)).Details.(CellularDetails)
	assert.Equal(t, "B20", roaming.Band)
	assert.True(t, roaming.Roaming)
}

func TestCellularLatency(t *testing.T) {
	cases := []struct {
		technology string
		want       string
	}{
		{"LTE", "low (<30ms)"},
		{"5G NR", "low (<30ms)"},
		{"4G", "medium (30-50ms)"},
		{"3G", "high (>50ms)"},
		{"", "high (>50ms)"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, CellularLatency(tc.technology), tc.technology)
	}

	perf := Analyze(mustObs(t, `{"operator":"X","technology":"4G","signal":-90}`)).Performance.(CellularPerformance)
	assert.Equal(t, TypeESIM, perf.Kind)
	assert.Equal(t, "medium (30-50ms)", perf.Latency)
}

func TestAnalyzeUnknown(t *testing.T) {
	res := Analyze(mustObs(t, `{"foo":1}`))
	assert.Equal(t, TypeUnknown, res.Type)
	assert.Equal(t, EmptyDetails{}, res.Details)
}

func TestAggregateEmpty(t *testing.T) {
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	stats := Aggregate(nil, now)
	assert.Equal(t, 0, stats.TotalNetworks)
	for _, typ := range AllTypes {
		assert.Equal(t, 0, stats.NetworkTypes[typ])
	}
	assert.Empty(t, stats.AverageSignal)
	assert.Empty(t, stats.DetailedAnalysis)
	assert.Equal(t, now, stats.Timestamp)
}

func TestAggregate(t *testing.T) {
	obs, err := ParseObservations([]byte(`[
		{"ssid":"a","signal":-60,"encryption":"WPA2"},
		{"ssid":"b","signal":-71},
		{"ssid":"c"},
		{"device_type":"audio","signal":"-70 dBm"},
		{"operator":"X","technology":"LTE","signal":-90},
		{}
	]`))
	require.NoError(t, err)

	stats := Aggregate(obs, time.Now())
	assert.Equal(t, 6, stats.TotalNetworks)
	assert.Equal(t, 3, stats.NetworkTypes[TypeWiFi])
	assert.Equal(t, 1, stats.NetworkTypes[TypeBluetooth])
	assert.Equal(t, 1, stats.NetworkTypes[TypeLTE])
	assert.Equal(t, 0, stats.NetworkTypes[TypeESIM])
	assert.Equal(t, 1, stats.NetworkTypes[TypeUnknown])

	assert.Equal(t, -65.5, stats.AverageSignal[TypeWiFi])
	assert.Equal(t, -70.0, stats.AverageSignal[TypeBluetooth])
	assert.Equal(t, -90.0, stats.AverageSignal[TypeLTE])
	_, hasESIM := stats.AverageSignal[TypeESIM]
	assert.False(t, hasESIM)

	assert.Equal(t, 1, stats.SecurityStats.Encrypted)
	assert.Equal(t, 2, stats.SecurityStats.Open)
	assert.Equal(t, 2, stats.SignalFallbacks)
	require.Len(t, stats.DetailedAnalysis, 6)
	assert.Equal(t, TypeBluetooth, stats.DetailedAnalysis[3].Type)
}

func TestParseObservationsRejectsNonObject(t *testing.T) {
	_, err := ParseObservations([]byte(`[{"ssid":"a"}, 3]`))
	require.ErrorIs(t, err, ErrNotObject)
	assert.Contains(t, err.Error(), "#1")

	_, err = ParseObservations([]byte(`{"ssid":"a"}`))
	assert.ErrorIs(t, err, ErrNotArray)
}

func TestPredictQuality(t *testing.T) {
	p := PredictQuality(map[string]Observation{
		"wifi":      mustObs(t, `{"signal":-65}`),
		"bluetooth": mustObs(t, `{"signal":-60}`),
		"lte":       mustObs(t, `{"operator":"X"}`),
	})
	assert.Equal(t, 0.75, p.QualityScore)
	assert.Equal(t, reliabilityWithReadings, p.Reliability)
	assert.Equal(t, 2, p.Readings)

	empty := PredictQuality(nil)
	assert.Equal(t, 0.0, empty.QualityScore)
	assert.Equal(t, reliabilityNoReadings, empty.Reliability)
}

func TestParsePredictionInput(t *testing.T) {
	byType, err := ParsePredictionInput([]byte(`{"wifi":{"signal":"-65 dBm"},"lte":{"signal":-85},"note":"skip"}`))
	require.NoError(t, err)
	assert.Len(t, byType, 2)
	assert.Equal(t, 0.5, PredictQuality(byType).QualityScore)

	_, err = ParsePredictionInput([]byte(`[1,2]`))
	assert.ErrorIs(t, err, ErrNotObject)

	_, err = ParsePredictionInput([]byte(`{"wifi":`))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotObject)
	assert.Contains(t, err.Error(), "invalid prediction json")
}

func TestPredictQualitySkipsUnparsableSignals(t *testing.T) {
	byType, err := ParsePredictionInput([]byte(`{"wifi":{"signal":"garbage"},"bluetooth":{"signal":null}}`))
	require.NoError(t, err)
	p := PredictQuality(byType)
	assert.Equal(t, 0.0, p.QualityScore)
	assert.Equal(t, reliabilityNoReadings, p.Reliability)
	assert.Equal(t, 0, p.Readings)
	assert.Equal(t, 2, p.Fallbacks)

	p = PredictQuality(map[string]Observation{
		"wifi": mustObs(t, `{"signal":-65}`),
		"lte":  mustObs(t, `{"signal":"n/a"}`),
	})
	assert.Equal(t, 0.5, p.QualityScore)
	assert.Equal(t, reliabilityWithReadings, p.Reliability)
	assert.Equal(t, 1, p.Readings)
	assert.Equal(t, 1, p.Fallbacks)
}

func TestObservationFromMap(t *testing.T) {
	obs, err := ObservationFromMap(map[string]any{"ssid": "Home", "signal": -60.0, "noise": -75})
	require.NoError(t, err)
	assert.Equal(t, TypeWiFi, Classify(obs))
	require.NotNil(t, obs.Signal)
	assert.Equal(t, "-60", *obs.Signal)
	require.NotNil(t, obs.Noise)
	assert.Equal(t, -75.0, *obs.Noise)
	assert.JSONEq(t, `{"ssid":"Home","signal":-60,"noise":-75}`, obs.Raw())

	_, err = ObservationFromMap(nil)
	assert.ErrorIs(t, err, ErrNotObject)

	_, err = ObservationFromMap(map[string]any{"bad": make(chan int)})
	assert.ErrorContains(t, err, "encode observation")
}

func TestScanRanking(t *testing.T) {
	entries, err := ParseScan([]byte(`[
		{"ssid":"Weak","rssi":-85},
		{"ssid":"Strong","rssi":-50,"frequency_mhz":5180},
		{"rssi":-30},
		{"ssid":"Office-WPA","rssi":-65}
	]`))
	require.NoError(t, err)
	require.Len(t, entries, 3)

	best, ok := BestScan(entries)
	require.True(t, ok)
	assert.Equal(t, "Office-WPA", best.SSID)
	assert.Equal(t, 55.0, ScanScore(best))
	assert.Equal(t, 50.0, ScanScore(entries[1]))
	assert.Equal(t, 0.0, ScanScore(ScanEntry{SSID: "x", RSSI: -120}))

	status := Summarize(entries)
	assert.True(t, status.Active)
	assert.Equal(t, 3, status.NetworksCount)
	require.NotNil(t, status.BestNetwork)
	assert.Equal(t, "Office-WPA", status.BestNetwork.Name)
	assert.Equal(t, 0.7, status.SignalQuality)

	report := Report(entries)
	assert.Equal(t, 3, report.Total)
	require.NotNil(t, report.BestNetwork)
	assert.Equal(t, 55.0, report.BestNetwork.Score)
	assert.Equal(t, []ScanEntry{}, Report(nil).Networks)
}

func TestScanFileErrors(t *testing.T) {
	_, err := LoadScanFile(t.TempDir() + "/missing.json")
	assert.ErrorIs(t, err, ErrScanFileMissing)

	_, err = ParseScan([]byte(`{"ssid":"x"}`))
	assert.ErrorIs(t, err, ErrScanFileInvalid)

	status := BuildStatus(nil)
	assert.False(t, status.WiFi.Active)
	assert.Nil(t, status.WiFi.BestNetwork)
	assert.Equal(t, "Orange", status.LTE.Operator)
	assert.False(t, status.ESIM.Active)
}
