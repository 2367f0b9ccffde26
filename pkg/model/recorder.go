package model

// Recorder receives search telemetry. Implementations must be safe for
// concurrent use when a recorder is shared between restarts.
type Recorder interface {
	// Called after each cooling step with the temperature reached and the current cost
	ObserveTemperature(temperature float64, cost int)
	// Called once per finished run
	ObserveResult(result Result)
}

type NopRecorder struct{}

func (NopRecorder) ObserveTemperature(float64, int) {}
func (NopRecorder) ObserveResult(Result)            {}
