package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rp66v1/dlis/internal/dlerrors"
	"github.com/rp66v1/dlis/pkg/dlis"
)

var objectsCmd = &cobra.Command{
	Use:   "objects <path>",
	Short: "Parse every explicit-format record's object set and print a summary",
	Args:  cobra.ExactArgs(1),
	RunE:  runObjects,
}

func runObjects(cmd *cobra.Command, args []string) error {
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
		if !rec.ExplicitFormatting {
			continue
		}
		if rec.Encryption {
			fmt.Fprintf(out, "%6d  encrypted, skipped (%d opaque bytes)\n", i, len(rec.Data))
			continue
		}

		set, err := res.Stream.ParseObjectSet(rec.Data)
		if err != nil {
			fmt.Fprintf(out, "%6d  %s: %v\n", i, dlerrors.KindOf(err), err)
			continue
		}

		fmt.Fprintf(out, "%6d  set %s/%s: %d objects, %d template attributes\n",
			i, set.Header.Type, set.Header.Name, len(set.Objects), len(set.Template))
		for _, obj := range set.Objects {
			fmt.Fprintf(out, "          %s(%s, %d, %d): %d attributes\n",
				set.Header.Type, obj.Name.ID, obj.Name.Origin, obj.Name.Copy, len(obj.Attributes))
		}
	}
	return nil
}
