package weather

import (
	"time"

	"github.com/ykhoma/weather-ingest/internal/weather/types"
)

const observedAtLayout = "2006-01-02 15:04:05"

// Normalize flattens a raw provider payload into a WeatherRecord. Each of the
// five fields is extracted on its own: a missing key, a wrong type anywhere on
// the path (leaf included) or an empty weather list degrades only that field
// to its placeholder. A partial record is always preferable to no record, so
// Normalize never fails.
//
// It holds no state; the same payload always yields the same record.
func Normalize(raw types.RawObservation) types.WeatherRecord {
	rec := types.WeatherRecord{
		Condition:   types.NoCondition,
		Description: types.NoDescription,
		Temperature: types.NoTemperature,
		Humidity:    types.NoHumidity,
		ObservedAt:  types.NoObservedAt,
	}

	if entry, ok := firstWeatherEntry(raw); ok {
		if v, ok := stringField(entry, "main"); ok {
			rec.Condition = v
		}
		if v, ok := stringField(entry, "description"); ok {
			rec.Description = v
		}
	}

	if main, ok := objectField(raw, "main"); ok {
		if v, ok := numberField(main, "temp"); ok {
			rec.Temperature = v
		}
		if v, ok := numberField(main, "humidity"); ok {
			rec.Humidity = v
		}
	}

	if ts, ok := observedAt(raw); ok {
		rec.ObservedAt = ts
	}

	return rec
}

// observedAt converts the observation epoch ("dt", seconds) to the provider's
// local time using the "timezone" UTC offset. A missing offset means UTC; an
// offset that is present but not a number poisons the date the same way a
// missing epoch does.
func observedAt(raw types.RawObservation) (string, bool) {
	epoch, ok := raw["dt"].(float64)
	if !ok {
		return "", false
	}
	offset := float64(0)
	if v, present := raw["timezone"]; present {
		if offset, ok = v.(float64); !ok {
			return "", false
		}
	}
	local := time.Unix(int64(epoch), 0).UTC().Add(time.Duration(offset) * time.Second)
	return local.Format(observedAtLayout), true
}

// firstWeatherEntry returns weather[0] when the list exists, is non-empty and
// holds an object there.
func firstWeatherEntry(raw types.RawObservation) (map[string]any, bool) {
	list, ok := raw["weather"].([]any)
	if !ok || len(list) == 0 {
		return nil, false
	}
	entry, ok := list[0].(map[string]any)
	return entry, ok
}

func objectField(raw types.RawObservation, key string) (map[string]any, bool) {
	obj, ok := raw[key].(map[string]any)
	return obj, ok
}

func stringField(obj map[string]any, key string) (string, bool) {
	s, ok := obj[key].(string)
	return s, ok
}

// numberField reads a JSON number; encoding/json decodes every number in an
// untyped document as float64.
func numberField(obj map[string]any, key string) (float64, bool) {
	n, ok := obj[key].(float64)
	return n, ok
}
