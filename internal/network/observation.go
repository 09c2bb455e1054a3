package network

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

var (
	ErrNotObject = errors.New("observation must be a JSON object")
	ErrNotArray  = errors.New("observations must be a JSON array")
)

// Observation 是在边界处解析出的观测记录。字段为 nil 表示原始记录中没有该键，
// 分类规则依赖键是否存在而不是值。
type Observation struct {
	SSID       *string
	DeviceType *string
	Operator   *string
	Technology *string
	Signal     *string
	Encryption *string
	Bandwidth  *string
	Class      *string
	Address    *string
	Version    *string
	Band       *string

	Frequency          *float64
	Noise              *float64
	ChannelUtilization *float64

	Paired        bool
	Roaming       bool
	Services      []string
	Profiles      []string
	NearbyDevices int

	raw string
}

// Raw returns the JSON text the observation was decoded from.
func (o Observation) Raw() string { return o.raw }

// ParseObservation decodes one JSON object.
func ParseObservation(raw []byte) (Observation, error) {
	if !gjson.ValidBytes(raw) {
		return Observation{}, fmt.Errorf("invalid observation json")
	}
	res := gjson.ParseBytes(raw)
	if !res.IsObject() {
		return Observation{}, ErrNotObject
	}
	return fromResult(res), nil
}

// ParseObservations decodes a JSON array of objects. Any non-object element
// fails the whole batch with its index.
func ParseObservations(raw []byte) ([]Observation, error) {
	if !gjson.ValidBytes(raw) {
		return nil, fmt.Errorf("invalid observations json")
	}
	res := gjson.ParseBytes(raw)
	if !res.IsArray() {
		return nil, ErrNotArray
	}
	items := res.Array()
	out := make([]Observation, 0, len(items))
	for i, item := range items {
		if !item.IsObject() {
			return nil, fmt.Errorf("observation #%d: %w", i, ErrNotObject)
		}
		out = append(out, fromResult(item))
	}
	return out, nil
}

// ObservationFromMap builds an observation from an already decoded map.
func ObservationFromMap(m map[string]any) (Observation, error) {
	if m == nil {
		return Observation{}, ErrNotObject
	}
	raw, err := json.Marshal(m)
	if err != nil {
		return Observation{}, fmt.Errorf("encode observation: %w", err)
	}
	return ParseObservation(raw)
}

func fromResult(res gjson.Result) Observation {
	obs := Observation{raw: res.Raw}
	obs.SSID = textField(res, "ssid")
	obs.DeviceType = textField(res, "device_type")
	obs.Operator = textField(res, "operator")
	obs.Technology = textField(res, "technology")
	obs.Signal = textField(res, "signal")
	obs.Encryption = textField(res, "encryption")
	obs.Bandwidth = textField(res, "bandwidth")
	obs.Class = textField(res, "class")
	obs.Address = textField(res, "address")
	obs.Version = textField(res, "version")
	obs.Band = textField(res, "band")
	obs.Frequency = numberField(res, "frequency")
	obs.Noise = numberField(res, "noise")
	obs.ChannelUtilization = numberField(res, "channel_utilization")
	obs.Paired = res.Get("paired").Bool()
	obs.Roaming = res.Get("roaming").Bool()
	obs.Services = listField(res, "services")
	obs.Profiles = listField(res, "profiles")
	nearby := res.Get("nearby_devices")
	switch {
	case nearby.IsArray():
		obs.NearbyDevices = len(nearby.Array())
	case nearby.Type == gjson.Number:
		obs.NearbyDevices = int(nearby.Int())
	}
	return obs
}

// textField keeps the textual form: strings verbatim, numbers and other
// scalars as their raw JSON, null as the empty string.
func textField(res gjson.Result, key string) *string {
	v := res.Get(key)
	if !v.Exists() {
		return nil
	}
	var s string
	switch v.Type {
	case gjson.String:
		s = v.String()
	case gjson.Null:
		s = ""
	default:
		s = strings.TrimSpace(v.Raw)
	}
	return &s
}

func numberField(res gjson.Result, key string) *float64 {
	v := res.Get(key)
	switch v.Type {
	case gjson.Number:
		f := v.Float()
		return &f
	case gjson.String:
		f, err := strconv.ParseFloat(strings.TrimSpace(v.String()), 64)
		if err != nil {
			return nil
		}
		return &f
	default:
		return nil
	}
}

func listField(res gjson.Result, key string) []string {
	v := res.Get(key)
	out := []string{}
	if !v.IsArray() {
		return out
	}
	for _, item := range v.Array() {
		if item.Type == gjson.String {
			out = append(out, item.String())
			continue
		}
		out = append(out, strings.TrimSpace(item.Raw))
	}
	return out
}

func deref(s *string, def string) string {
	if s == nil {
		return def
	}
	return *s
}

func derefFloat(f *float64, def float64) float64 {
	if f == nil {
		return def
	}
	return *f
}
