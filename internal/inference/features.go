package inference

// FeatureCount is the dimensionality of the model input.
const FeatureCount = 8

// Features is the input vector for a single prediction, using the
// California housing census field names the model was trained on.
type Features struct {
	MedInc     float64 `json:"MedInc"`
	HouseAge   float64 `json:"HouseAge"`
	AveRooms   float64 `json:"AveRooms"`
	AveBedrms  float64 `json:"AveBedrms"`
	Population float64 `json:"Population"`
	AveOccup   float64 `json:"AveOccup"`
	Latitude   float64 `json:"Latitude"`
	Longitude  float64 `json:"Longitude"`
}

// Vector returns the features in the canonical column order expected by
// the scaler and the model.
func (f Features) Vector() []float64 {
	return []float64{
		f.MedInc,
		f.HouseAge,
		f.AveRooms,
		f.AveBedrms,
		f.Population,
		f.AveOccup,
		f.Latitude,
		f.Longitude,
	}
}
