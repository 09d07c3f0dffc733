package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const app = "staffanchor-pipeline"

// Actual version can be specified in build command.
var version = "unknown"

var (
	cfgFile  string
	debugLog bool
	jsonLog  bool
)

var rootCmd = &cobra.Command{
	Use:   app,
	Short: "StaffAnchor hiring-pipeline service: matching, phase chains, notifications",
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Printf("%s version: %s\n", app, version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is config.yaml in current directory or ./config)")
	rootCmd.PersistentFlags().BoolVarP(&debugLog, "debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolVarP(&jsonLog, "json", "j", false, "json format for logging")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(seedCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
