package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os/signal"
	"strings"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"civic-apps/internal/registry"
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search companies and officers by name",
	Long: `Runs the company and officer searches side by side and prints the
first page of each. Officer rows show the ID to pass to "chsearch officer".`,
	Args: cobra.MinimumNArgs(1),
	RunE: runSearch,
}

var companyCmd = &cobra.Command{
	Use:   "company [company-number]",
	Short: "Show a company's profile, officers, PSCs, filings and charges",
	Args:  cobra.ExactArgs(1),
	RunE:  runCompany,
}

var officerCmd = &cobra.Command{
	Use:   "officer [officer-id]",
	Short: "List every appointment held by an officer",
	Args:  cobra.ExactArgs(1),
	RunE:  runOfficer,
}

var balanceSheetCmd = &cobra.Command{
	Use:   "balance-sheet [document-id]",
	Short: "Extract the balance-sheet table from filed accounts",
	Long: `Fetches the XHTML rendition of a filed accounts document and prints the
table that most looks like a balance sheet. Document IDs are listed in the
filings section of "chsearch company".`,
	Args: cobra.ExactArgs(1),
	RunE: runBalanceSheet,
}

func commandContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
}

func runSearch(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	results, err := newRegistryClient().Search(ctx, strings.Join(args, " "))
	if err != nil {
		return describeError(err)
	}
	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), results)
	}
	printSearch(cmd.OutOrStdout(), results)
	return nil
}

func runCompany(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	dossier, err := newRegistryClient().Dossier(ctx, args[0])
	if err != nil {
		return describeError(err)
	}
	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), dossier)
	}
	printDossier(cmd.OutOrStdout(), dossier)
	return nil
}

func runOfficer(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	appointments, err := newRegistryClient().Appointments(ctx, args[0])
	if err != nil {
		return describeError(err)
	}
	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), appointments)
	}
	printAppointments(cmd.OutOrStdout(), appointments)
	return nil
}

func runBalanceSheet(cmd *cobra.Command, args []string) error {
	ctx, cancel := commandContext()
	defer cancel()

	table, found, err := newRegistryClient().BalanceSheet(ctx, args[0])
	if err != nil {
		return describeError(err)
	}
	if !found {
		return fmt.Errorf("no balance sheet found in document %s", args[0])
	}
	if jsonOutput {
		return printJSON(cmd.OutOrStdout(), table)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Selected by %s (%d figures)\n\n", table.Strategy, table.NumericCells)
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	for _, row := range table.Rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}
	return tw.Flush()
}

func printJSON(out io.Writer, v any) error {
	encoder := json.NewEncoder(out)
	encoder.SetIndent("", "  ")
	return encoder.Encode(v)
}

func describeError(err error) error {
	if errors.Is(err, registry.ErrAuthentication) {
		return fmt.Errorf("%w (set COMPANIES_HOUSE_API_KEY or use --proxy)", err)
	}
	return err
}
