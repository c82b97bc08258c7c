package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spendmatch/internal/cli"
	"github.com/Veraticus/spendmatch/internal/common"
	"github.com/Veraticus/spendmatch/internal/sheets"
)

func (a *app) sheetsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sheets",
		Short: "Google Sheets export setup",
	}

	var listenAddr string
	auth := &cobra.Command{
		Use:   "auth",
		Short: "Authorize spendmatch to write to Google Sheets",
		Long: `Run the OAuth2 browser flow and save the token to sheets.token_file.

Requires sheets.client_id and sheets.client_secret (or the
GOOGLE_SHEETS_CLIENT_ID and GOOGLE_SHEETS_CLIENT_SECRET variables).
Service accounts need no authorization step.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := a.settings.Sheets
			if cfg.ClientID == "" || cfg.ClientSecret == "" {
				return common.NewUserError("Set sheets.client_id and sheets.client_secret first", common.ErrMissingConfig)
			}

			if _, err := sheets.GetOrCreateToken(cmd.Context(), sheets.OAuth2Config{
				ClientID:     cfg.ClientID,
				ClientSecret: cfg.ClientSecret,
				TokenFile:    cfg.TokenFile,
				ListenAddr:   listenAddr,
			}); err != nil {
				return fmt.Errorf("authorization failed: %w", err)
			}

			_, _ = fmt.Fprintln(a.errOut, cli.FormatSuccess(fmt.Sprintf("Token saved to %s", cfg.TokenFile)))
			return nil
		},
	}
	auth.Flags().StringVar(&listenAddr, "listen", "localhost:8080", "address for the OAuth2 callback")

	cmd.AddCommand(auth)
	return cmd
}
