package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:           "dlisdump",
	Short:         "Inspect RP66 V1 (DLIS) files: framing, logical records, and object sets.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.SetOut(os.Stdout)
	rootCmd.SetErr(os.Stderr)

	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(recordsCmd)
	rootCmd.AddCommand(objectsCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(updateCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "dlisdump: %s\n", err.Error())
		os.Exit(1)
	}
}
