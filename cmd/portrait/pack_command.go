package main

import (
	"fmt"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/meigma/portrait/archive"
	"github.com/meigma/portrait/internal/pathutil"
	"github.com/meigma/portrait/locator"
)

func newPackCommand(ctx *commandContext) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "pack <group|selector|file>",
		Short: "Pack image files into an archive",
		Long: `Pack image files into an archive.

The argument is one of:
  a group base name   (Actor12b)        packs root/Actor/12b/Actor12b*.jpg into root/Actor/Actor12b.ima
  a selector          (dir/Actor12b*.jpg) packs the matching files next to themselves
  a sample file       (dir/Actor12b.jpg)  same as the selector dir/Actor12b*.jpg

Existing archives are never overwritten.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stderr := cmd.ErrOrStderr()
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			arg := args[0]

			var plan *archive.CreatePlan
			if isGroupName(arg) {
				lib, err := ctx.library(stderr)
				if err != nil {
					return err
				}
				plan, err = lib.PlanPack(arg)
				if err != nil {
					return err
				}
			} else {
				selector := arg
				if !pathutil.IsPattern(selector) {
					selector = archive.SelectorFor(selector)
				}
				plan, err = archive.Plan(selector)
				if err != nil {
					return err
				}
			}

			out := cmd.OutOrStdout()
			if dryRun {
				fmt.Fprintln(out, renderPlan(plan))
				return nil
			}

			return ctx.withWriteLock(func() error {
				opts := []archive.CreateOption{
					archive.CreateWithLogger(ctx.log(stderr)),
					archive.CreateWithCompressionLevel(cfg.Archive.CompressionLevel),
					archive.CreateWithMaxEntries(cfg.Archive.MaxEntries),
				}
				if err := archive.CreateFromPlan(plan, opts...); err != nil {
					return err
				}
				fmt.Fprintf(out, "Packed %d files (%s) into %s\n",
					len(plan.Files), humanize.IBytes(uint64(plan.TotalBytes())), plan.Output) //nolint:gosec // sizes are non-negative
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&dryRun, "dry-run", "n", false, "Show the files and output archive without writing")
	return cmd
}

// isGroupName reports whether arg names a group rather than a path.
func isGroupName(arg string) bool {
	if filepath.Base(arg) != arg || pathutil.IsPattern(arg) || pathutil.Ext(arg) != "" {
		return false
	}
	return locator.Parse(arg).Valid()
}

func renderPlan(plan *archive.CreatePlan) string {
	rows := make([][]string, 0, len(plan.Files))
	for _, f := range plan.Files {
		rows = append(rows, []string{
			filepath.Base(f.Path),
			f.Entry,
			humanize.IBytes(uint64(f.Size)), //nolint:gosec // sizes are non-negative
		})
	}
	table := renderTable([]string{"File", "Entry", "Size"}, rows, []columnAlignment{alignLeft, alignLeft, alignRight})
	return fmt.Sprintf("Files to pack:\n%s\n\nFiles total: %d\nOutput file:\n    %s",
		table, len(plan.Files), plan.Output)
}
