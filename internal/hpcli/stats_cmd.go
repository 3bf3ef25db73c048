package hpcli

import (
	"fmt"
	"net/url"

	"github.com/spf13/cobra"

	"github.com/oremus-labs/ol-housing-predictor/internal/store"
)

var (
	statsStart string
	statsEnd   string
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show windowed prediction statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		query := url.Values{}
		if statsStart != "" {
			query.Set("start", statsStart)
		}
		if statsEnd != "" {
			query.Set("end", statsEnd)
		}
		path := "/prediction-stats"
		if encoded := query.Encode(); encoded != "" {
			path += "?" + encoded
		}

		var stats store.Stats
		if err := apiClient().GetJSON(path, &stats); err != nil {
			return err
		}

		if handled, err := printStructured(stats); handled {
			return err
		}

		tw := newTable()
		fmt.Fprintln(tw, "WINDOW\tTOTAL\t200\t400\t422\t500\tAVG PRICE")
		avg := "-"
		if stats.AvgPredictedPrice != nil {
			avg = fmt.Sprintf("%.2f", *stats.AvgPredictedPrice)
		}
		fmt.Fprintf(tw, "%s .. %s\t%d\t%d\t%d\t%d\t%d\t%s\n",
			stats.Start, stats.End, stats.TotalRequests, stats.Success200,
			stats.BadRequest400, stats.ValidationErrors422, stats.InternalErrors500, avg)
		flushTable(tw)

		if len(stats.ModelVersionUsage) > 0 {
			fmt.Println()
			vt := newTable()
			fmt.Fprintln(vt, "MODEL VERSION\tREQUESTS")
			for version, count := range stats.ModelVersionUsage {
				fmt.Fprintf(vt, "%s\t%d\n", version, count)
			}
			flushTable(vt)
		}
		return nil
	},
}

func init() {
	statsCmd.Flags().StringVar(&statsStart, "start", "", "Window start (ISO-8601 UTC)")
	statsCmd.Flags().StringVar(&statsEnd, "end", "", "Window end (ISO-8601 UTC)")
}
