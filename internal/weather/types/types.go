package types

// RawObservation is the undecoded current-weather payload as returned by the
// provider. It is never validated against a schema; callers pull individual
// fields out of it with best-effort lookups.
type RawObservation map[string]any

// Placeholder values substituted when a field cannot be extracted from a
// RawObservation. A WeatherRecord always carries five populated fields, so a
// reader can tell a degraded field apart from a real one by these strings.
const (
	NoCondition   = "No weather data available"
	NoDescription = "No description available"
	NoTemperature = "No temperature available"
	NoHumidity    = "No humidity data available"
	NoObservedAt  = "No date available"
)

// WeatherRecord is the flat record written to the sink. Temperature and
// Humidity hold a float64 on successful extraction and the field's
// placeholder string otherwise; ObservedAt is a "2006-01-02 15:04:05"
// timestamp in the provider's local offset, or its placeholder.
type WeatherRecord struct {
	Condition   string
	Description string
	Temperature any
	Humidity    any
	ObservedAt  string
}

// DegradedFields lists the sink column names whose values fell back to a
// placeholder. An empty result means the whole record was extracted.
func (r WeatherRecord) DegradedFields() []string {
	var fields []string
	if r.Condition == NoCondition {
		fields = append(fields, "weather")
	}
	if r.Description == NoDescription {
		fields = append(fields, "description")
	}
	if r.Temperature == NoTemperature {
		fields = append(fields, "temperature")
	}
	if r.Humidity == NoHumidity {
		fields = append(fields, "humidity")
	}
	if r.ObservedAt == NoObservedAt {
		fields = append(fields, "observed_at")
	}
	return fields
}
