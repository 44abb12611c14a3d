package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ghgledger/ghgledger/internal/engine"
	"github.com/ghgledger/ghgledger/internal/store"
)

// newRecordsCmd creates the "records" command group for inspecting and
// mutating a report's persisted calculation records.
func newRecordsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{Use: "records", Short: "Calculation record commands"}
	cmd.AddCommand(newRecordsListCmd(a), newRecordsRemoveCmd(a))
	return cmd
}

func newRecordsListCmd(a *app) *cobra.Command {
	var (
		reportID string
		output   string
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List a report's calculation records and totals",
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := store.Open(a.cfg.Database.DSN)
			if err != nil {
				return fmt.Errorf("opening store: %w", err)
			}
			defer func() { _ = st.Close() }()

			sess := engine.NewSession(reportID, st)
			if err := sess.Load(cmd.Context()); err != nil {
				return fmt.Errorf("loading records: %w", err)
			}

			logs := sess.Logs()
			results := sess.Results()

			if output == "json" {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(struct {
					Logs    engine.Logs    `json:"logs"`
					Results engine.Results `json:"results"`
				}{logs, results})
			}

			w := cmd.OutOrStdout()
			for _, group := range []struct {
				scope   engine.Scope
				records []engine.Record
			}{
				{engine.Scope1, logs.Scope1Calculations},
				{engine.Scope2, logs.Scope2Calculations},
				{engine.Scope3, logs.Scope3Calculations},
			} {
				for _, rec := range group.records {
					fmt.Fprintf(w, "%-26s %-8s %-36s %10.2f %-6s %12.4f t CO2e\n",
						rec.ID, group.scope, rec.Description, rec.Quantity, rec.Unit, rec.Emissions)
				}
			}
			fmt.Fprintf(w, "scope1 %.4f  scope2 %.4f  scope3 %.4f  total %.4f t CO2e\n",
				results.Scope1, results.Scope2, results.Scope3, results.Total)
			return nil
		},
	}

	cmd.Flags().StringVar(&reportID, "report", "", "report ID")
	cmd.Flags().StringVar(&output, "output", "table", "output format (table, json)")
	_ = cmd.MarkFlagRequired("report")
	return cmd
}

func newRecordsRemoveCmd(a *app) *cobra.Command {
	var (
		reportID string
		recordID string
	)

	cmd := &cobra.Command{
		Use:   "remove",
		Short: "Remove one calculation record and re-sum the report",
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := store.Open(a.cfg.Database.DSN)
			if err != nil {
				return fmt.Errorf("opening store: %w", err)
			}
			defer func() { _ = st.Close() }()

			sess := engine.NewSession(reportID, st)
			if err := sess.Load(cmd.Context()); err != nil {
				return fmt.Errorf("loading records: %w", err)
			}

			found, err := sess.RemoveRecord(cmd.Context(), recordID)
			if err != nil {
				return fmt.Errorf("removing record: %w", err)
			}
			if !found {
				return fmt.Errorf("record %s not found in report %s", recordID, reportID)
			}

			results := sess.Results()
			fmt.Fprintf(cmd.OutOrStdout(), "removed %s; new total %.4f t CO2e\n", recordID, results.Total)
			return nil
		},
	}

	cmd.Flags().StringVar(&reportID, "report", "", "report ID")
	cmd.Flags().StringVar(&recordID, "record", "", "record ID")
	_ = cmd.MarkFlagRequired("report")
	_ = cmd.MarkFlagRequired("record")
	return cmd
}
