package cli

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ghgledger/ghgledger/internal/engine"
)

// newCalcCmd creates the "calc" subcommand: a one-shot calculation from
// flags, printed as a table or JSON. Nothing is persisted.
func newCalcCmd(a *app) *cobra.Command {
	var (
		in     engine.Input
		scope  string
		output string
	)

	cmd := &cobra.Command{
		Use:   "calc",
		Short: "Run a one-shot emission calculation",
		Long: `Calculate emissions for one scope (or all three) from flag inputs.

Quantities are given as raw strings the way a form would deliver them; a
quantity participates only when it parses to a finite number greater than
zero.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if scope != "" && !engine.Scope(scope).Valid() {
				return fmt.Errorf("unknown scope %q (want scope1, scope2 or scope3)", scope)
			}
			if in.CalculationMethod == "" {
				in.CalculationMethod = a.cfg.Engine.DefaultMethod
			}

			out := engine.Calculate(in, engine.Scope(scope), time.Now().UTC())

			if output == "json" {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(calcOutput{Calculations: out.Calculations, Results: out.Results})
			}

			w := cmd.OutOrStdout()
			for _, sc := range []engine.Scope{engine.Scope1, engine.Scope2, engine.Scope3} {
				calc, ok := out.Calculations[sc]
				if !ok {
					continue
				}
				fmt.Fprintf(w, "%-8s %-40s %10.2f %-6s %12.4f t CO2e  (%s)\n",
					sc, calc.Description, calc.Quantity, calc.Unit, calc.EmissionsTonnes, calc.Source)
			}
			fmt.Fprintf(w, "total: %.4f t CO2e\n", out.Results.Total)
			return nil
		},
	}

	cmd.Flags().StringVar(&scope, "scope", "", "scope to calculate (scope1, scope2, scope3; empty = all)")
	cmd.Flags().StringVar(&output, "output", "table", "output format (table, json)")

	cmd.Flags().StringVar(&in.FuelType, "fuel-type", "", "scope 1 fuel type (diesel, petrol, natural_gas, lpg)")
	cmd.Flags().StringVar(&in.FuelQuantity, "fuel-quantity", "", "scope 1 fuel quantity")
	cmd.Flags().StringVar(&in.FuelUnit, "fuel-unit", "", "scope 1 fuel unit (default L)")

	cmd.Flags().StringVar(&in.EnergyType, "energy-type", "", "scope 2 energy type (electricity, district_heating)")
	cmd.Flags().StringVar(&in.EnergyQuantity, "energy-quantity", "", "scope 2 electricity in kWh")
	cmd.Flags().StringVar(&in.RenewablePercentage, "renewable-percentage", "", "scope 2 renewable share 0-100")
	cmd.Flags().StringVar(&in.EnergyProvider, "energy-provider", "", "scope 2 energy provider for default renewable share")

	cmd.Flags().StringVar((*string)(&in.Scope3Category), "category", "", "scope 3 category (transport, waste, purchases)")
	cmd.Flags().StringVar(&in.TransportType, "transport-type", "", "scope 3 transport type")
	cmd.Flags().StringVar(&in.TransportDistance, "distance", "", "scope 3 transport distance in km")
	cmd.Flags().StringVar(&in.VehicleType, "vehicle-type", "", "scope 3 vehicle type for the vehicle-specific path")
	cmd.Flags().StringVar(&in.VehicleFuelType, "vehicle-fuel", "", "scope 3 vehicle fuel type")
	cmd.Flags().StringVar(&in.VehicleFuelConsumption, "vehicle-consumption", "", "scope 3 vehicle fuel consumption")
	cmd.Flags().StringVar(&in.VehicleFuelConsumptionUnit, "vehicle-consumption-unit", "", "consumption unit (l_100km, km_l)")
	cmd.Flags().StringVar(&in.WasteType, "waste-type", "", "scope 3 waste type")
	cmd.Flags().StringVar(&in.WasteQuantity, "waste-quantity", "", "scope 3 waste quantity in kg")
	cmd.Flags().StringVar(&in.PurchaseType, "purchase-type", "", "scope 3 purchase type")
	cmd.Flags().StringVar(&in.PurchaseQuantity, "purchase-quantity", "", "scope 3 purchase quantity")
	cmd.Flags().StringVar(&in.CalculationMethod, "method", "", "factor source (DEFRA, ISPRA, IPCC)")

	return cmd
}

type calcOutput struct {
	Calculations map[engine.Scope]engine.Calculation `json:"calculations"`
	Results      engine.Results                      `json:"results"`
}
