package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/meigma/portrait/internal/pathutil"
	"github.com/meigma/portrait/locator"
	"github.com/meigma/portrait/records"
)

func newGroupCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "group <base>",
		Short: "Show the variants and record of an image group",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := ctx.library(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			set, err := lib.Resolve(args[0])
			if err != nil {
				return err
			}

			rows := make([][]string, 0, set.Len())
			for name, src := range set.All() {
				attrs, _ := locator.Parse(name).Attributes()
				rel, err := filepath.Rel(lib.Root(), src.Path)
				if err != nil {
					rel = src.Path
				}
				rows = append(rows, []string{name, strings.Join(attrs, " "), src.Kind().String(), rel})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable([]string{"Variant", "Attributes", "Source", "Path"}, rows, nil))

			recs, _, err := readRecords(lib.Store())
			if err != nil {
				return err
			}
			base, err := locator.Parse(args[0]).Base()
			if err != nil {
				return err
			}
			for _, rec := range recs {
				if pathutil.Equal(rec.Base, base) {
					fmt.Fprintln(out, renderRecords([]records.Record{rec}))
					return nil
				}
			}
			fmt.Fprintf(out, "No group record for %s\n", base)
			return nil
		},
	}
}
