package hpcli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/oremus-labs/ol-housing-predictor/internal/inference"
)

var (
	predictFile     string
	predictFeatures inference.Features
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Request a price prediction",
	Long: `Request a price prediction from the service. Features are supplied
either via flags or a JSON file with the eight census fields.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		client := apiClient()

		var prediction inference.Prediction
		if predictFile != "" {
			payload, err := os.ReadFile(predictFile)
			if err != nil {
				return fmt.Errorf("failed to read feature file: %w", err)
			}
			if err := client.PostRawJSON("/predict", payload, &prediction); err != nil {
				return err
			}
		} else {
			if err := client.PostJSON("/predict", predictFeatures, &prediction); err != nil {
				return err
			}
		}

		if handled, err := printStructured(prediction); handled {
			return err
		}

		tw := newTable()
		fmt.Fprintln(tw, "PREDICTED PRICE\tUNIT\tMODEL\tVERSION")
		fmt.Fprintf(tw, "%.2f\t%s\t%s\t%s\n",
			prediction.PredictedPrice, prediction.Unit, prediction.ModelType, prediction.ModelVersion)
		flushTable(tw)
		return nil
	},
}

func init() {
	predictCmd.Flags().StringVarP(&predictFile, "file", "f", "", "JSON file with the feature payload")
	predictCmd.Flags().Float64Var(&predictFeatures.MedInc, "med-inc", 0, "Median income (tens of thousands USD)")
	predictCmd.Flags().Float64Var(&predictFeatures.HouseAge, "house-age", 0, "Median house age in years")
	predictCmd.Flags().Float64Var(&predictFeatures.AveRooms, "ave-rooms", 0, "Average rooms per household")
	predictCmd.Flags().Float64Var(&predictFeatures.AveBedrms, "ave-bedrms", 0, "Average bedrooms per household")
	predictCmd.Flags().Float64Var(&predictFeatures.Population, "population", 0, "Block group population")
	predictCmd.Flags().Float64Var(&predictFeatures.AveOccup, "ave-occup", 0, "Average household occupancy")
	predictCmd.Flags().Float64Var(&predictFeatures.Latitude, "latitude", 0, "Block group latitude")
	predictCmd.Flags().Float64Var(&predictFeatures.Longitude, "longitude", 0, "Block group longitude")
}
