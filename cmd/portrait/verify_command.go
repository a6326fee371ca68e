package main

import (
	"fmt"
	"path/filepath"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newVerifyCommand(ctx *commandContext) *cobra.Command {
	var workers int

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Read every archive under the image root in full",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			lib, err := ctx.library(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			if workers <= 0 {
				workers = cfg.Archive.VerifyWorkers
			}

			results, err := lib.Verify(cmd.Context(), workers)
			if err != nil {
				return err
			}

			failed := 0
			rows := make([][]string, 0, len(results))
			for _, res := range results {
				status := "ok"
				if res.Err != nil {
					status = res.Err.Error()
					failed++
				}
				rel, err := filepath.Rel(lib.Root(), res.Path)
				if err != nil {
					rel = res.Path
				}
				rows = append(rows, []string{
					rel,
					strconv.Itoa(res.Entries),
					humanize.IBytes(uint64(res.Bytes)), //nolint:gosec // non-negative
					status,
				})
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderTable([]string{"Archive", "Entries", "Size", "Status"}, rows,
				[]columnAlignment{alignLeft, alignRight, alignRight, alignLeft}))
			if failed > 0 {
				return fmt.Errorf("%d of %d archives failed verification", failed, len(results))
			}
			fmt.Fprintf(out, "%d archives verified\n", len(results))
			return nil
		},
	}
	cmd.Flags().IntVarP(&workers, "workers", "j", 0, "Archives verified at once (default from config)")
	return cmd
}
