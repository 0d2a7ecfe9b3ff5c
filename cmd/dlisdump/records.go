package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rp66v1/dlis/pkg/dlis"
)

var recordsCmd = &cobra.Command{
	Use:   "records <path>",
	Short: "List every indexed logical record's type, size, and consistency",
	Args:  cobra.ExactArgs(1),
	RunE:  runRecords,
}

func runRecords(cmd *cobra.Command, args []string) error {
	res, err := dlis.Open(args[0], dlis.Options{Settings: dlis.DefaultSettings()})
	if err != nil {
		return err
	}
	defer res.Stream.Close()

	out := cmd.OutOrStdout()
	for i := 0; i < res.Stream.Len(); i++ {
		rec, err := res.Stream.At(i)
		if err != nil {
			fmt.Fprintf(out, "%6d  error: %v\n", i, err)
			continue
		}
		kind := "implicit"
		if rec.ExplicitFormatting {
			kind = "explicit"
		}
		consistency := "ok"
		if !rec.Consistent {
			consistency = "inconsistent"
		}
		fmt.Fprintf(out, "%6d  type=%-3d %s bytes=%-6d %s\n", i, rec.Type, kind, len(rec.Data), consistency)
	}
	return nil
}
