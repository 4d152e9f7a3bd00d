package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/tallyhq/tally/internal/balance"
	"github.com/tallyhq/tally/internal/cli"
	"github.com/tallyhq/tally/internal/common"
	"github.com/tallyhq/tally/internal/model"
)

func balancesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "balances",
		Short: "Aggregate the ledger into weekly budgets and a balance summary",
		Long: `Balances reads the ledger's category sheets, buckets the transactions
into 7-day periods, and rewrites the Weekly Budget, Balance Summary, and
Balances report sheets.

Account balances are snapshots of accounts the ledger cannot see (checking,
savings, credit cards). Pass them with --balance or enter them when prompted.

Examples:
  tally balances --balance "Checking=1200.50" --balance "Credit Card=-300"
  tally balances`,
		RunE: runBalances,
	}

	cmd.Flags().StringArray("balance", nil, "account balance as label=amount (repeatable)")

	return cmd
}

func runBalances(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	logger := slog.Default()

	flagValues, _ := cmd.Flags().GetStringArray("balance")
	var balances []model.AccountBalance
	for _, value := range flagValues {
		b, err := cli.ParseBalanceFlag(value)
		if err != nil {
			return err
		}
		balances = append(balances, b)
	}

	if len(balances) == 0 {
		reader := cli.NewNonBlockingReader(os.Stdin)
		entered, err := cli.ReadAccountBalances(ctx, reader, os.Stdout)
		if err != nil {
			return err
		}
		balances = entered
	}

	store, err := openLedger(logger)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	agg := balance.New(store, logger)
	weekly, summary, err := agg.Report(ctx, balances)
	if err != nil {
		if errors.Is(err, common.ErrInsufficientData) {
			return common.NewUserError("ledger needs both income and expense rows before balances can be computed; run ingest first", err)
		}
		return err
	}

	if err := store.WriteReports(ctx, weekly, summary, balances); err != nil {
		return fmt.Errorf("failed to write report sheets: %w", err)
	}
	if err := store.Save(ctx); err != nil {
		return fmt.Errorf("failed to save ledger: %w", err)
	}

	printSummary(summary, len(weekly))
	return nil
}

func printSummary(summary *model.BalanceSummary, weeks int) {
	fmt.Println(cli.TitleStyle.Render("Balance Summary"))
	fmt.Printf("  Total Income:      %s\n", cli.AmountStyle.Render(summary.TotalIncome.StringFixed(2)))
	fmt.Printf("  Total Expenses:    %s\n", cli.AmountStyle.Render(summary.TotalExpenses.StringFixed(2)))
	fmt.Printf("  Net Income:        %s\n", cli.AmountStyle.Render(summary.NetIncome.StringFixed(2)))
	fmt.Printf("  Account Balances:  %s\n", cli.AmountStyle.Render(summary.TotalBalances.StringFixed(2)))
	fmt.Printf("  Available Budget:  %s\n", cli.AmountStyle.Render(summary.AvailableBudget.StringFixed(2)))
	fmt.Printf("  Daily / Weekly:    %s / %s\n",
		summary.DailyBudget.StringFixed(2), summary.WeeklyBudget.StringFixed(2))
	fmt.Println(cli.SubtleStyle.Render(fmt.Sprintf("  %d weekly buckets written", weeks)))
}
