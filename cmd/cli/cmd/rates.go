// Package cmd - rate table commands
package cmd

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"construction-cost/core/determinism"
	"construction-cost/core/output"
	"construction-cost/core/rates"
	"construction-cost/core/types"
)

var ratesCmd = &cobra.Command{
	Use:   "rates",
	Short: "Inspect rate tables",
}

var ratesShowCmd = &cobra.Command{
	Use:   "show [rate-file]",
	Short: "Print a rate table (the configured one by default)",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := selectTable(args)
		if err != nil {
			return err
		}
		printTable(output.NewWriter(cmd.OutOrStdout(), noColor), table)
		return nil
	},
}

var ratesValidateCmd = &cobra.Command{
	Use:   "validate <rate-file>",
	Short: "Check that a rate file parses and can price any project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		table, err := rates.LoadFile(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d regions, %d trades, %d material categories)\n",
			table.Name, len(table.Regional), len(table.Trades), len(table.MaterialCategories))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(ratesCmd)
	ratesCmd.AddCommand(ratesShowCmd)
	ratesCmd.AddCommand(ratesValidateCmd)

	ratesShowCmd.Flags().BoolVar(&noColor, "no-color", false, "disable colored output")
	ratesShowCmd.Flags().StringVar(&ratesFile, "rates", "", "HCL rate file (overrides config)")
}

func selectTable(args []string) (*rates.Table, error) {
	path := cfg.Rates.Path
	if ratesFile != "" {
		path = ratesFile
	}
	if len(args) > 0 {
		path = args[0]
	}
	if path == "" {
		return rates.Default(), nil
	}
	return rates.LoadFile(path)
}

func printTable(w *output.Writer, t *rates.Table) {
	w.Header("Rate table: " + t.Name)

	w.SubHeader("Regional multipliers")
	regions := w.NewTable("Location", "Multiplier").AlignRight(1)
	for _, key := range sortedKeys(t.Regional) {
		regions.AddRow(key, t.Regional[key].String())
	}
	for _, key := range sortedKeys(t.States) {
		regions.AddRow(key+" (state)", t.States[key].String())
	}
	regions.AddRow("default", t.DefaultRegional.String())
	regions.Render()

	w.SubHeader("Seasonal multipliers")
	seasons := w.NewTable("Season", "Multiplier").AlignRight(1)
	for _, s := range []types.Season{types.SeasonWinter, types.SeasonSpring, types.SeasonSummer, types.SeasonFall} {
		seasons.AddRow(string(s), t.Seasonal[s].String())
	}
	seasons.Render()

	w.SubHeader("Trades")
	trades := w.NewTable("Trade", "Workers", "Hours/sqft", "Rate/hr").AlignRight(1, 2, 3)
	for _, tr := range t.Trades {
		trades.AddRow(tr.Name, fmt.Sprint(tr.Workers), tr.HoursPerSqft.String(), determinism.FormatMoney(tr.HourlyRate))
	}
	trades.Render()

	w.SubHeader("Materials")
	materials := w.NewTable("Category", "Item", "Unit", "Per sqft", "Unit cost").AlignRight(3, 4)
	for _, c := range t.MaterialCategories {
		for _, item := range c.Items {
			materials.AddRow(c.Name, item.Name, item.Unit, item.PerSqft.String(), determinism.FormatMoney(item.UnitCost))
		}
	}
	materials.Render()

	w.SubHeader("Equipment")
	equipment := w.NewTable("Equipment", "Type", "Duration", "Rate").AlignRight(2, 3)
	for _, e := range t.Equipment {
		equipment.AddRow(e.Name, e.Type, fmt.Sprintf("%d %s", e.Duration, e.Unit), determinism.FormatMoney(e.Rate))
	}
	equipment.Render()

	w.SubHeader("Subcontractors")
	subs := w.NewTable("Trade", "Scope", "Per sqft", "Materials").AlignRight(2)
	for _, s := range t.Subcontractors {
		included := "no"
		if s.MaterialsIncluded {
			included = "yes"
		}
		subs.AddRow(s.Trade, s.Scope, determinism.FormatMoney(s.PerSqft), included)
	}
	subs.Render()

	w.SubHeader("Indirect costs")
	indirect := w.NewTable("Item", "Rate").AlignRight(1)
	for _, c := range []types.Category{types.CategoryResidential, types.CategoryCommercial, types.CategoryIndustrial} {
		indirect.AddRow("permits ("+string(c)+") per sqft", determinism.FormatMoney(t.PermitRate(c)))
	}
	indirect.AddRow("insurance per sqft", determinism.FormatMoney(t.InsurancePerSqft))
	indirect.AddRow("overhead per sqft", determinism.FormatMoney(t.OverheadPerSqft))
	indirect.AddRow("bonding rate", t.BondingRate.String())
	indirect.Render()
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
