package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rp66v1/dlis/pkg/dlis"
)

var indexCmd = &cobra.Command{
	Use:   "index <path>",
	Short: "Build and summarize a file's logical-record index",
	Args:  cobra.ExactArgs(1),
	RunE:  runIndex,
}

func runIndex(cmd *cobra.Command, args []string) error {
	res, err := dlis.Open(args[0], dlis.Options{Settings: dlis.DefaultSettings()})
	if err != nil {
		return err
	}
	defer res.Stream.Close()

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "%s: %d logical records\n", args[0], res.Stream.Len())
	for _, w := range res.Warnings {
		fmt.Fprintf(out, "warning: %s: %s\n", w.Kind, w.Message)
	}
	return nil
}
