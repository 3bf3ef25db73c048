// Package hpcli implements the hpctl command line client for the housing
// price prediction service.
package hpcli

import (
	"os"
	"time"

	"github.com/spf13/cobra"
)

var (
	serverURL    string
	timeout      time.Duration
	outputFormat string
)

// Execute runs the CLI.
func Execute() error {
	rootCmd.SilenceUsage = true
	return rootCmd.Execute()
}

var rootCmd = &cobra.Command{
	Use:   "hpctl",
	Short: "Interact with the housing price prediction service",
	Long: `hpctl is the operator CLI for the housing price prediction service.
It submits predictions and inspects the audit log over the HTTP API.`,
}

func init() {
	defaultServer := os.Getenv("HPCTL_SERVER")
	if defaultServer == "" {
		defaultServer = "http://localhost:8000"
	}

	rootCmd.PersistentFlags().StringVar(&serverURL, "server", defaultServer, "API server URL (env HPCTL_SERVER)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 15*time.Second, "Request timeout")
	rootCmd.PersistentFlags().StringVarP(&outputFormat, "output", "o", "table", "Output format: table|json|yaml")

	rootCmd.AddCommand(predictCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(recordsCmd)
}

func apiClient() *Client {
	return &Client{BaseURL: serverURL, Timeout: timeout}
}
