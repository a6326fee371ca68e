package main

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/meigma/portrait/records"
)

func newRecordsCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "records",
		Short: "Inspect and migrate group records",
	}
	cmd.AddCommand(newRecordsShowCommand(ctx))
	cmd.AddCommand(newRecordsMigrateCommand(ctx))
	return cmd
}

func newRecordsShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the group records of the image root",
		Long: `Print the group records of the image root.

When no current record file exists, the legacy file is read and shown
without being migrated.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := ctx.library(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			recs, source, err := readRecords(lib.Store())
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintln(out, renderRecords(recs))
			fmt.Fprintf(out, "%d records from %s\n", len(recs), source)
			return nil
		},
	}
}

func newRecordsMigrateCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Convert the legacy record file to the current format",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			lib, err := ctx.library(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			store := lib.Store()
			return ctx.withWriteLock(func() error {
				recs, migrated, err := store.Migrate()
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				switch {
				case migrated:
					fmt.Fprintf(out, "Migrated %d records to %s\n", len(recs), store.CurrentPath())
				case len(recs) > 0:
					fmt.Fprintf(out, "Already migrated: %s holds %d records\n", store.CurrentPath(), len(recs))
				default:
					fmt.Fprintln(out, "No record files found")
				}
				return nil
			})
		},
	}
}

// readRecords loads the current record file, falling back to the legacy
// file without migrating it. It also returns a description of the source.
func readRecords(store *records.Store) ([]records.Record, string, error) {
	recs, err := store.Load()
	if errors.Is(err, records.ErrNotFound) {
		recs, err = store.LoadLegacy()
		return recs, store.LegacyPath() + " (legacy)", err
	}
	return recs, store.CurrentPath(), err
}

func renderRecords(recs []records.Record) string {
	rows := make([][]string, 0, len(recs))
	for _, rec := range recs {
		rows = append(rows, []string{
			rec.Base,
			strconv.Itoa(rec.Width),
			strconv.Itoa(rec.ShiftX),
			strconv.Itoa(rec.ShiftY),
			strconv.FormatFloat(rec.Rotation, 'f', -1, 64),
			strconv.FormatFloat(rec.ScaleX, 'f', -1, 64),
			strconv.FormatFloat(rec.ScaleY, 'f', -1, 64),
			strconv.FormatBool(rec.IsFlipped()),
		})
	}
	return renderTable(
		[]string{"Base", "Width", "ShiftX", "ShiftY", "Rotation", "ScaleX", "ScaleY", "Flipped"},
		rows,
		[]columnAlignment{alignLeft, alignRight, alignRight, alignRight, alignRight, alignRight, alignRight, alignLeft},
	)
}
