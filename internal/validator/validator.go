// Package validator enforces the typed schema and range constraints on
// inbound feature payloads before any inference work happens.
package validator

import (
	"encoding/json"
	"fmt"

	"github.com/xeipuuv/gojsonschema"
)

// featureSchema is the wire contract for POST /predict: exactly the eight
// census features, all numeric, each within its physical range.
const featureSchema = `{
	"$schema": "http://json-schema.org/draft-07/schema#",
	"title": "HousingFeatures",
	"type": "object",
	"additionalProperties": false,
	"required": ["MedInc", "HouseAge", "AveRooms", "AveBedrms", "Population", "AveOccup", "Latitude", "Longitude"],
	"properties": {
		"MedInc":     {"type": "number", "exclusiveMinimum": 0},
		"HouseAge":   {"type": "number", "minimum": 0, "maximum": 100},
		"AveRooms":   {"type": "number", "exclusiveMinimum": 0},
		"AveBedrms":  {"type": "number", "minimum": 0},
		"Population": {"type": "number", "exclusiveMinimum": 0},
		"AveOccup":   {"type": "number", "exclusiveMinimum": 0},
		"Latitude":   {"type": "number", "minimum": -90, "maximum": 90},
		"Longitude":  {"type": "number", "minimum": -180, "maximum": 180}
	}
}`

// Result is the outcome of validating one request body.
//
// Malformed means the body was not parseable JSON at all (HTTP 400);
// Valid=false with Malformed=false means the JSON violated the schema
// (HTTP 422). Violations lists every violation found, not just the first.
type Result struct {
	Valid      bool
	Malformed  bool
	Violations []string
}

// Validator checks feature payloads against the embedded schema.
type Validator struct {
	schema *gojsonschema.Schema
}

// New compiles the feature schema.
func New() (*Validator, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(featureSchema))
	if err != nil {
		return nil, fmt.Errorf("failed to compile feature schema: %w", err)
	}
	return &Validator{schema: schema}, nil
}

// Validate classifies a raw request body.
func (v *Validator) Validate(body []byte) Result {
	if !json.Valid(body) {
		return Result{
			Malformed:  true,
			Violations: []string{"request body is not valid JSON"},
		}
	}
	res, err := v.schema.Validate(gojsonschema.NewBytesLoader(body))
	if err != nil {
		return Result{
			Malformed:  true,
			Violations: []string{err.Error()},
		}
	}
	if res.Valid() {
		return Result{Valid: true}
	}
	violations := make([]string, 0, len(res.Errors()))
	for _, verr := range res.Errors() {
		violations = append(violations, verr.String())
	}
	return Result{Violations: violations}
}
