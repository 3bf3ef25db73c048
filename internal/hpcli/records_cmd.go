package hpcli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/oremus-labs/ol-housing-predictor/internal/store"
)

var recordsLimit int

var recordsCmd = &cobra.Command{
	Use:   "records",
	Short: "List recent audit records",
	RunE: func(cmd *cobra.Command, args []string) error {
		var resp struct {
			Records []store.Record `json:"records"`
		}
		path := fmt.Sprintf("/records?limit=%d", recordsLimit)
		if err := apiClient().GetJSON(path, &resp); err != nil {
			return err
		}

		if handled, err := printStructured(resp.Records); handled {
			return err
		}

		tw := newTable()
		fmt.Fprintln(tw, "ID\tTIMESTAMP\tSTATUS\tMODEL VERSION\tERROR")
		for _, r := range resp.Records {
			errMsg := r.ErrorMessage
			if len(errMsg) > 60 {
				errMsg = errMsg[:57] + "..."
			}
			fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\n", r.ID, r.Timestamp, r.StatusCode, r.ModelVersion, errMsg)
		}
		flushTable(tw)
		return nil
	},
}

func init() {
	recordsCmd.Flags().IntVar(&recordsLimit, "limit", 20, "Maximum number of records to return")
}
