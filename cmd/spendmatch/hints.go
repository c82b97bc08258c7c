package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spendmatch/internal/cli"
)

func (a *app) hintsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "hints",
		Short: "Show or change categorization hints",
		Long: `Hints are free-text instructions passed to the language model with every
expense, for example "Пятёрочка и Перекрёсток это всегда Продукты".`,
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get",
		Short: "Print the current hints",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			store, err := a.openStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			hints, err := store.GetHints(ctx)
			if err != nil {
				return err
			}
			if hints == "" {
				_, _ = fmt.Fprintln(a.errOut, cli.FormatInfo("No hints set. Use 'spendmatch hints set' to add some."))
				return nil
			}

			_, err = fmt.Fprintln(a.out, hints)
			return err
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "set [text]",
		Short: "Replace the hints",
		Long:  `Replace the hints with the given text, or with stdin when no text is given. Empty input clears them.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			hints := strings.TrimSpace(strings.Join(args, " "))
			if len(args) == 0 {
				text, err := cli.NewLineReader(a.in).ReadAll(ctx)
				if err != nil {
					return err
				}
				hints = text
			}

			store, err := a.openStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.SetHints(ctx, hints); err != nil {
				return err
			}

			msg := "Hints saved"
			if hints == "" {
				msg = "Hints cleared"
			}
			_, _ = fmt.Fprintln(a.errOut, cli.FormatSuccess(msg))
			return nil
		},
	})

	return cmd
}
