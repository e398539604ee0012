package domain

import (
	"errors"
	"fmt"
	"math"
	"slices"
)

// MaxPredictedSeconds is the largest model output accepted as a prediction.
// It fits an int on every platform.
const MaxPredictedSeconds = math.MaxInt32

// ClampSeconds rounds raw half to even, floors the result at zero and
// saturates it at MaxPredictedSeconds. A negative response time means nothing
// physically, so it is reported as 0.
func ClampSeconds(raw float64) int {
	r := math.RoundToEven(raw)
	switch {
	case math.IsNaN(r) || r <= 0:
		return 0
	case r >= MaxPredictedSeconds:
		return MaxPredictedSeconds
	default:
		return int(r)
	}
}

// Predict encodes req and returns the predicted response time. Encoding
// errors are returned unchanged; failures in the scaler or model are wrapped
// in a PredictionError.
func (e *Engine) Predict(req IncidentRequest) (PredictionResult, error) {
	vec, err := e.Encode(req)
	if err != nil {
		return PredictionResult{}, err
	}
	return e.PredictVector(vec)
}

// PredictVector scales an aligned vector and runs the model on it.
func (e *Engine) PredictVector(vec FeatureVector) (PredictionResult, error) {
	if !slices.Equal(vec.Columns, e.artifacts.Metadata.ModelColumns) {
		return PredictionResult{}, &PredictionError{
			Err: fmt.Errorf("feature vector has %d columns, model expects %d in a fixed order",
				len(vec.Columns), len(e.artifacts.Metadata.ModelColumns)),
		}
	}

	scaled, err := e.artifacts.Scaler.Transform([][]float64{vec.Row()})
	if err != nil {
		return PredictionResult{}, &PredictionError{Err: fmt.Errorf("scale features: %w", err)}
	}
	if len(scaled) != 1 {
		return PredictionResult{}, &PredictionError{Err: fmt.Errorf("scaler returned %d rows for 1", len(scaled))}
	}

	out, err := e.artifacts.Model.Predict(scaled)
	if err != nil {
		return PredictionResult{}, &PredictionError{Err: fmt.Errorf("model inference: %w", err)}
	}
	if len(out) != 1 {
		return PredictionResult{}, &PredictionError{Err: fmt.Errorf("model returned %d predictions for 1 row", len(out))}
	}
	if math.IsNaN(out[0]) || math.IsInf(out[0], 0) {
		return PredictionResult{}, &PredictionError{Err: errors.New("model returned a non-finite value")}
	}
	if math.RoundToEven(out[0]) > MaxPredictedSeconds {
		return PredictionResult{}, &PredictionError{Err: fmt.Errorf("model returned %g s, above %d s", out[0], MaxPredictedSeconds)}
	}

	return NewPredictionResult(out[0]), nil
}
