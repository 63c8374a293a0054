package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"

	"github.com/mamadbah2/bizdesk/internal/export"
	"github.com/mamadbah2/bizdesk/internal/query"
)

func newLogsCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Worksheet logs",
	}

	cmd.AddCommand(newLogsExportCmd(app))

	return cmd
}

func newLogsExportCmd(app *App) *cobra.Command {
	var search, startDate, endDate, out string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the filtered logs of every worker to an xlsx file",
		RunE: func(cmd *cobra.Command, args []string) error {
			filter, err := query.ParseFilter(search, startDate, endDate)
			if err != nil {
				return err
			}

			page, err := app.Logs.List(cmd.Context(), operator, filter)
			if err != nil {
				return err
			}

			if out == "-" {
				if f, ok := cmd.OutOrStdout().(*os.File); ok && isatty.IsTerminal(f.Fd()) {
					return errors.New("refusing to write a workbook to a terminal, use -o FILE")
				}
				return export.WriteLogs(cmd.OutOrStdout(), page)
			}
			if out == "" {
				out = export.Filename(page)
			}

			f, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("create %s: %w", out, err)
			}
			if err := export.WriteLogs(f, page); err != nil {
				_ = f.Close()
				return err
			}
			if err := f.Close(); err != nil {
				return fmt.Errorf("close %s: %w", out, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d logs to %s\n", len(page.Logs), out)
			return nil
		},
	}

	cmd.Flags().StringVar(&search, "search", "", "Worker name contains")
	cmd.Flags().StringVar(&startDate, "start", "", "First day, YYYY-MM-DD")
	cmd.Flags().StringVar(&endDate, "end", "", "Last day, YYYY-MM-DD")
	cmd.Flags().StringVarP(&out, "out", "o", "", "Output file, - for stdout")

	return cmd
}
