package hpcli

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"sigs.k8s.io/yaml"
)

func printJSON(data interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(data)
}

func printYAML(data interface{}) error {
	out, err := yaml.Marshal(data)
	if err != nil {
		return err
	}
	_, err = os.Stdout.Write(out)
	return err
}

// printStructured renders data for the non-table output formats and
// reports whether it handled the format.
func printStructured(data interface{}) (bool, error) {
	switch outputFormat {
	case "json":
		return true, printJSON(data)
	case "yaml":
		return true, printYAML(data)
	case "table", "":
		return false, nil
	}
	return true, fmt.Errorf("unknown output format: %s", outputFormat)
}

func newTable() *tabwriter.Writer {
	return tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
}

func flushTable(tw *tabwriter.Writer) {
	_ = tw.Flush()
}
