package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/meigma/portrait/archive"
)

func newUnpackCommand(ctx *commandContext) *cobra.Command {
	var match string

	cmd := &cobra.Command{
		Use:   "unpack <archive> [dir]",
		Short: "Extract archive entries as image files",
		Long: `Extract archive entries as <name>.jpg files.

The output directory defaults to the archive path without its extension
and must not exist yet.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			stderr := cmd.ErrOrStderr()
			path := args[0]
			dir := archive.DefaultExtractDir(path)
			if len(args) == 2 {
				dir = args[1]
			}

			var stats archive.ExtractStats
			err := ctx.withWriteLock(func() error {
				var err error
				stats, err = archive.Extract(path, dir, match,
					archive.ExtractWithLogger(ctx.log(stderr)),
					archive.ExtractWithReaderOptions(ctx.readerOptions(stderr)...))
				return err
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Extracted %d files (%s) to %s, %d skipped\n",
				stats.FileCount, humanize.IBytes(stats.TotalBytes), dir, stats.Skipped)
			return nil
		},
	}
	cmd.Flags().StringVarP(&match, "match", "m", "", "Only extract entries matching this wildcard pattern")
	return cmd
}
