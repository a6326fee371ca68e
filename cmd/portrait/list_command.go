package main

import (
	"fmt"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/meigma/portrait/archive"
)

func newListCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:     "ls <archive>",
		Aliases: []string{"list"},
		Short:   "List the entries of an archive",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			r, err := archive.Open(args[0], ctx.readerOptions(cmd.ErrOrStderr())...)
			if err != nil {
				return err
			}
			defer r.Close()

			var total int64
			rows := make([][]string, 0, r.Len())
			for _, e := range r.Entries() {
				total += e.Size
				rows = append(rows, []string{
					e.Name,
					strconv.FormatInt(e.Offset, 10),
					humanize.IBytes(uint64(e.Size)), //nolint:gosec // validated non-negative
				})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable([]string{"Entry", "Offset", "Size"}, rows,
				[]columnAlignment{alignLeft, alignRight, alignRight}))
			fmt.Fprintf(out, "%d entries, %s uncompressed, table at %d\n",
				r.Len(), humanize.IBytes(uint64(total)), r.TableOffset()) //nolint:gosec // validated non-negative
			return nil
		},
	}
}

func newCatCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "cat <archive> <entry>",
		Short: "Write one entry to standard output",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := archive.LoadEntry(args[0], args[1], ctx.readerOptions(cmd.ErrOrStderr())...)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}
