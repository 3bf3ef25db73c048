package artifact

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/oremus-labs/ol-housing-predictor/internal/inference"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write fixture: %v", err)
	}
	return path
}

const validScaler = `{
	"mean":  [3.87, 28.64, 5.43, 1.1, 1425.48, 3.07, 35.63, -119.57],
	"scale": [1.9, 12.59, 2.47, 0.47, 1132.46, 10.39, 2.14, 2.0]
}`

func TestLoadScaler(t *testing.T) {
	t.Parallel()

	scaler, err := LoadScaler(writeFile(t, "scaler.json", validScaler))
	if err != nil {
		t.Fatalf("LoadScaler: %v", err)
	}
	if len(scaler.Mean) != inference.FeatureCount {
		t.Fatalf("expected %d means, got %d", inference.FeatureCount, len(scaler.Mean))
	}
}

func TestLoadScalerMissingFile(t *testing.T) {
	t.Parallel()

	if _, err := LoadScaler(filepath.Join(t.TempDir(), "absent.json")); err == nil {
		t.Fatalf("expected error for missing scaler")
	}
}

func TestLoadScalerWrongDimension(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "scaler.json", `{"mean": [1, 2], "scale": [1, 2]}`)
	if _, err := LoadScaler(path); err == nil {
		t.Fatalf("expected error for truncated scaler")
	}
}

func TestLoadBundleLinear(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "best_model.json", `{
		"model_type": "LinearRegression",
		"model_version": "3",
		"saved_at": "2026-08-12T10:00:00Z",
		"model": {"intercept": 2.07, "coefficients": [0.4, -0.01, 0.1, 0.05, -0.0001, -0.03, -0.4, -0.42]}
	}`)
	bundle, err := LoadBundle(path)
	if err != nil {
		t.Fatalf("LoadBundle: %v", err)
	}
	if bundle.Identity.Type != "LinearRegression" || bundle.Identity.Version != "3" {
		t.Fatalf("unexpected identity: %+v", bundle.Identity)
	}
	if _, ok := bundle.Model.(*inference.LinearModel); !ok {
		t.Fatalf("expected linear model, got %T", bundle.Model)
	}
}

func TestLoadBundleTree(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "best_model.json", `{
		"model_type": "DecisionTree",
		"model_version": "5",
		"model": {"nodes": [
			{"feature": 0, "threshold": 0.5, "left": 1, "right": 2},
			{"feature": -1, "threshold": 0, "left": -1, "right": -1, "value": 1.2},
			{"feature": -1, "threshold": 0, "left": -1, "right": -1, "value": 2.9}
		]}
	}`)
	bundle, err := LoadBundle(path)
	if err != nil {
		t.Fatalf("LoadBundle: %v", err)
	}
	if _, ok := bundle.Model.(*inference.TreeModel); !ok {
		t.Fatalf("expected tree model, got %T", bundle.Model)
	}
}

func TestLoadBundleMissingMetadataUsesSentinels(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "best_model.json", `{
		"model": {"intercept": 1.5, "coefficients": [0, 0, 0, 0, 0, 0, 0, 0]}
	}`)
	bundle, err := LoadBundle(path)
	if err != nil {
		t.Fatalf("LoadBundle: %v", err)
	}
	if bundle.Identity.Type != UnknownModelType {
		t.Fatalf("expected sentinel type, got %q", bundle.Identity.Type)
	}
	if bundle.Identity.Version != UnknownModelVersion {
		t.Fatalf("expected sentinel version, got %q", bundle.Identity.Version)
	}
	if _, ok := bundle.Model.(*inference.LinearModel); !ok {
		t.Fatalf("expected structural detection to pick linear, got %T", bundle.Model)
	}
}

func TestLoadBundleMissingModelPayload(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "best_model.json", `{"model_type": "LinearRegression", "model_version": "1"}`)
	if _, err := LoadBundle(path); err == nil {
		t.Fatalf("expected error for bundle without model payload")
	}
}

func TestLoadBundleMalformed(t *testing.T) {
	t.Parallel()

	path := writeFile(t, "best_model.json", `{not json`)
	if _, err := LoadBundle(path); err == nil {
		t.Fatalf("expected error for malformed bundle")
	}
}
