package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mamadbah2/bizdesk/internal/service/reporting"
)

func newDigestCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "digest",
		Short: "Weekly worksheet digest",
	}

	cmd.AddCommand(
		newDigestShowCmd(app),
		newDigestSendCmd(app),
	)

	return cmd
}

func newDigestShowCmd(app *App) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show",
		Short: "Print the digest for the last seven days",
		RunE: func(cmd *cobra.Command, args []string) error {
			digest, err := app.Digests.GenerateWeeklyDigest(cmd.Context(), app.Now())
			if err != nil {
				return err
			}
			if asJSON {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(digest)
			}
			fmt.Fprintln(cmd.OutOrStdout(), reporting.FormatDigest(digest))
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Print as JSON")

	return cmd
}

func newDigestSendCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "send",
		Short: "Deliver the digest to WhatsApp and Google Sheets now",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Runner.RunWeeklyDigest(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Weekly digest delivered")
			return nil
		},
	}
}
