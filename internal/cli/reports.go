package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ghgledger/ghgledger/internal/store"
)

// newReportsCmd creates the "reports" command group.
func newReportsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "reports", Short: "Report management commands"}
	cmd.AddCommand(newReportsListCmd(a), newReportsCreateCmd(a))
	return cmd
}

func newReportsListCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List reports",
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := store.Open(a.cfg.Database.DSN)
			if err != nil {
				return fmt.Errorf("opening store: %w", err)
			}
			defer func() { _ = st.Close() }()

			reps, err := st.ListReports(cmd.Context())
			if err != nil {
				return fmt.Errorf("listing reports: %w", err)
			}

			if output == "json" {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(reps)
			}
			for _, rep := range reps {
				fmt.Fprintf(cmd.OutOrStdout(), "%s  %d  %-30s %s\n", rep.ID, rep.Year, rep.Title, rep.Company)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&output, "output", "table", "output format (table, json)")
	return cmd
}

func newReportsCreateCmd(a *app) *cobra.Command {
	var (
		title   string
		company string
		year    int
	)

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a report",
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := store.Open(a.cfg.Database.DSN)
			if err != nil {
				return fmt.Errorf("opening store: %w", err)
			}
			defer func() { _ = st.Close() }()

			rep, err := st.CreateReport(cmd.Context(), title, company, year)
			if err != nil {
				return fmt.Errorf("creating report: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), rep.ID)
			return nil
		},
	}

	cmd.Flags().StringVar(&title, "title", "", "report title")
	cmd.Flags().StringVar(&company, "company", "", "company name")
	cmd.Flags().IntVar(&year, "year", 0, "reporting year")
	_ = cmd.MarkFlagRequired("title")
	return cmd
}
