// Package inference applies the fitted scaler and regression model to
// validated feature vectors and produces currency-scaled predictions.
package inference

import (
	"errors"
	"fmt"
	"math"
)

// The model predicts median house value in hundreds of thousands of USD.
const priceScale = 100000

const predictionNote = "Estimated median house value for the supplied census block group"

// Scaler is a fitted standard scaler: per-feature mean and scale from the
// training run. The transform is stateless and deterministic.
type Scaler struct {
	Mean  []float64 `json:"mean"`
	Scale []float64 `json:"scale"`
}

// Transform standardizes a feature row: (x - mean) / scale per column.
func (s *Scaler) Transform(row []float64) ([]float64, error) {
	if len(s.Mean) != len(s.Scale) {
		return nil, fmt.Errorf("scaler is malformed: %d means, %d scales", len(s.Mean), len(s.Scale))
	}
	if len(row) != len(s.Mean) {
		return nil, fmt.Errorf("feature dimension mismatch: got %d, scaler expects %d", len(row), len(s.Mean))
	}
	out := make([]float64, len(row))
	for i, v := range row {
		if s.Scale[i] == 0 {
			return nil, fmt.Errorf("scaler has zero scale for feature %d", i)
		}
		out[i] = (v - s.Mean[i]) / s.Scale[i]
	}
	return out, nil
}

// ModelIdentity labels the loaded model for audit records and responses.
type ModelIdentity struct {
	Type    string `json:"model_type"`
	Version string `json:"model_version"`
}

// Prediction is the result of a successful inference.
type Prediction struct {
	PredictedPrice float64 `json:"predicted_price"`
	Unit           string  `json:"unit"`
	Note           string  `json:"note"`
	ModelType      string  `json:"model_type"`
	ModelVersion   string  `json:"model_version"`
}

// Error reports a failed model or scaler invocation, carrying the original
// message. It maps to HTTP 500 at the API boundary.
type Error struct {
	Reason string
}

func (e *Error) Error() string {
	return "inference failed: " + e.Reason
}

// IsError reports whether err is an inference Error.
func IsError(err error) bool {
	var ie *Error
	return errors.As(err, &ie)
}

// Engine binds the fitted scaler and model loaded at startup. It is
// read-only after construction and safe for concurrent use.
type Engine struct {
	scaler   *Scaler
	model    Model
	identity ModelIdentity
}

// NewEngine constructs an Engine from loaded artifacts.
func NewEngine(scaler *Scaler, model Model, identity ModelIdentity) (*Engine, error) {
	if scaler == nil {
		return nil, fmt.Errorf("scaler is required")
	}
	if model == nil {
		return nil, fmt.Errorf("model is required")
	}
	return &Engine{scaler: scaler, model: model, identity: identity}, nil
}

// Identity returns the model labels bound at startup.
func (e *Engine) Identity() ModelIdentity {
	return e.identity
}

// Predict scales the feature vector, invokes the model, and converts the
// raw output to a USD amount rounded to cents. Each call is a single
// attempt; failures are never retried.
func (e *Engine) Predict(f Features) (*Prediction, error) {
	scaled, err := e.scaler.Transform(f.Vector())
	if err != nil {
		return nil, &Error{Reason: err.Error()}
	}
	raw, err := e.model.Predict(scaled)
	if err != nil {
		return nil, &Error{Reason: err.Error()}
	}
	price := roundCents(raw * priceScale)
	if math.IsNaN(price) || math.IsInf(price, 0) {
		return nil, &Error{Reason: fmt.Sprintf("model produced non-finite output %v", raw)}
	}
	return &Prediction{
		PredictedPrice: price,
		Unit:           "USD",
		Note:           predictionNote,
		ModelType:      e.identity.Type,
		ModelVersion:   e.identity.Version,
	}, nil
}

func roundCents(v float64) float64 {
	return math.Round(v*100) / 100
}
