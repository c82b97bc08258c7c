package main

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/Veraticus/spendmatch/internal/common"
	"github.com/Veraticus/spendmatch/internal/report"
	"github.com/Veraticus/spendmatch/internal/service"
)

func (a *app) reportCmd() *cobra.Command {
	var (
		from, to string
		outPath  string
		toSheets bool
		english  bool
	)

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Write a CSV report of stored expenses",
		Long: `Write the stored expenses, oldest first, as a CSV report. Limit the
period with --from and --to; a bare date given to --to includes that day.`,
		Example: `  spendmatch report --from 01.01.2024 --to 31.01.2024 --out january.csv`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			start, err := parseDateFlag(from, false)
			if err != nil {
				return err
			}
			end, err := parseDateFlag(to, true)
			if err != nil {
				return err
			}

			store, err := a.openStorage(ctx)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			txns, err := store.GetTransactions(ctx, service.TransactionFilter{
				StartDate:    start,
				EndDate:      end,
				ExpensesOnly: true,
			})
			if err != nil {
				return common.NewUserError("Could not load transactions", err)
			}

			serializer := a.serializer(english)
			data, err := serializer.Serialize(txns)
			if errors.Is(err, report.ErrEmptyReport) {
				return common.NewUserError("No expenses in the selected period", err)
			}
			if err != nil {
				return err
			}

			if err := a.writeReport(outPath, data); err != nil {
				return err
			}

			if toSheets {
				return a.pushToSheets(ctx, serializer.Header(), txns)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&from, "from", "", "first day of the report")
	cmd.Flags().StringVar(&to, "to", "", "last day of the report (inclusive)")
	cmd.Flags().StringVarP(&outPath, "out", "o", "", "write the CSV report to this file instead of stdout")
	cmd.Flags().BoolVar(&toSheets, "sheets", false, "also upload the report to Google Sheets")
	cmd.Flags().BoolVar(&english, "english", false, "use English column names in the report")

	return cmd
}
