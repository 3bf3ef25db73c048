// Package artifact loads the serialized scaler and model bundle produced
// by the training pipeline. Loading happens once at process start and is
// the only startup gate: a missing or malformed artifact is fatal.
package artifact

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/oremus-labs/ol-housing-predictor/internal/inference"
)

// Sentinel labels used when the bundle omits model metadata. Inference can
// still proceed with an unlabeled model.
const (
	UnknownModelType    = "UnknownModel"
	UnknownModelVersion = "unknown"
)

// Bundle is the loaded model artifact: the model itself plus its identity.
type Bundle struct {
	Model    inference.Model
	Identity inference.ModelIdentity
	SavedAt  string
}

type bundleFile struct {
	ModelType    string          `json:"model_type"`
	ModelVersion string          `json:"model_version"`
	SavedAt      string          `json:"saved_at"`
	Model        json.RawMessage `json:"model"`
}

// LoadScaler reads the fitted standard scaler from path.
func LoadScaler(path string) (*inference.Scaler, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read scaler artifact: %w", err)
	}
	var scaler inference.Scaler
	if err := json.Unmarshal(data, &scaler); err != nil {
		return nil, fmt.Errorf("failed to parse scaler artifact %s: %w", path, err)
	}
	if len(scaler.Mean) != inference.FeatureCount || len(scaler.Scale) != inference.FeatureCount {
		return nil, fmt.Errorf("scaler artifact %s has %d/%d parameters, expected %d",
			path, len(scaler.Mean), len(scaler.Scale), inference.FeatureCount)
	}
	return &scaler, nil
}

// LoadBundle reads the model bundle from path. Absent model_type or
// model_version fall back to sentinel labels rather than failing; an
// absent or undecodable model payload is an error.
func LoadBundle(path string) (*Bundle, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read model artifact: %w", err)
	}
	var file bundleFile
	if err := json.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse model artifact %s: %w", path, err)
	}
	if len(file.Model) == 0 {
		return nil, fmt.Errorf("model artifact %s has no model payload", path)
	}

	identity := inference.ModelIdentity{Type: file.ModelType, Version: file.ModelVersion}
	if identity.Type == "" {
		identity.Type = UnknownModelType
	}
	if identity.Version == "" {
		identity.Version = UnknownModelVersion
	}

	model, err := decodeModel(file.ModelType, file.Model)
	if err != nil {
		return nil, fmt.Errorf("model artifact %s: %w", path, err)
	}

	return &Bundle{Model: model, Identity: identity, SavedAt: file.SavedAt}, nil
}

func decodeModel(modelType string, payload json.RawMessage) (inference.Model, error) {
	switch modelType {
	case "LinearRegression":
		return decodeLinear(payload)
	case "DecisionTree", "DecisionTreeRegressor":
		return decodeTree(payload)
	}

	// Unlabeled bundle: pick the predictor by payload structure.
	if model, err := decodeLinear(payload); err == nil {
		return model, nil
	}
	if model, err := decodeTree(payload); err == nil {
		return model, nil
	}
	return nil, fmt.Errorf("unsupported model payload (type %q)", modelType)
}

func decodeLinear(payload json.RawMessage) (*inference.LinearModel, error) {
	var model inference.LinearModel
	if err := json.Unmarshal(payload, &model); err != nil {
		return nil, fmt.Errorf("failed to decode linear model: %w", err)
	}
	if len(model.Coefficients) != inference.FeatureCount {
		return nil, fmt.Errorf("linear model has %d coefficients, expected %d", len(model.Coefficients), inference.FeatureCount)
	}
	return &model, nil
}

func decodeTree(payload json.RawMessage) (*inference.TreeModel, error) {
	var model inference.TreeModel
	if err := json.Unmarshal(payload, &model); err != nil {
		return nil, fmt.Errorf("failed to decode tree model: %w", err)
	}
	if len(model.Nodes) == 0 {
		return nil, fmt.Errorf("tree model has no nodes")
	}
	return &model, nil
}
