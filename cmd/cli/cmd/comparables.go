// Package cmd - comparable project commands
package cmd

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"construction-cost/core/comparables"
	"construction-cost/core/determinism"
	"construction-cost/core/output"
	"construction-cost/core/types"
	"construction-cost/internal/errors"
)

var (
	comparablesDriver string
	comparablesDSN    string
	comparablesDryRun bool
)

var comparablesCmd = &cobra.Command{
	Use:   "comparables",
	Short: "Manage historical comparable projects",
	Long: `Manage the store of completed projects used to rank comparables.

Imports write to a SQL store (sqlite or postgres). The memory store is
read from a seed file and cannot be written.`,
}

var comparablesImportCmd = &cobra.Command{
	Use:   "import <seed-file>",
	Short: "Import comparables from a YAML or JSON file into the SQL store",
	Args:  cobra.ExactArgs(1),
	RunE:  runComparablesImport,
}

var comparablesListCmd = &cobra.Command{
	Use:   "list <category>",
	Short: "List stored comparables of a category",
	Args:  cobra.ExactArgs(1),
	RunE:  runComparablesList,
}

func init() {
	rootCmd.AddCommand(comparablesCmd)
	comparablesCmd.AddCommand(comparablesImportCmd)
	comparablesCmd.AddCommand(comparablesListCmd)

	comparablesCmd.PersistentFlags().StringVar(&comparablesDriver, "driver", "", "store driver (sqlite, postgres; defaults to config)")
	comparablesCmd.PersistentFlags().StringVar(&comparablesDSN, "dsn", "", "store DSN (defaults to config)")
	comparablesImportCmd.Flags().BoolVar(&comparablesDryRun, "dry-run", false, "validate only, no database writes")
}

// sqlTarget resolves the driver and DSN from flags, then config
func sqlTarget() (string, string, error) {
	driver, dsn := comparablesDriver, comparablesDSN
	if driver == "" {
		driver = cfg.Comparables.Driver
	}
	if dsn == "" {
		dsn = cfg.Comparables.DSN
	}
	if driver != comparables.DriverSQLite && driver != comparables.DriverPostgres {
		return "", "", errors.Config("comparables import needs a sqlite or postgres store, got "+driver, nil)
	}
	return driver, dsn, nil
}

func runComparablesImport(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	log := logger()

	projects, err := comparables.ReadFile(args[0])
	if err != nil {
		return err
	}
	for i, p := range projects {
		if err := validateComparable(p); err != nil {
			return err.WithContext("entry", i)
		}
	}

	if comparablesDryRun {
		fmt.Fprintf(cmd.OutOrStdout(), "%d comparables valid (dry run, nothing written)\n", len(projects))
		return nil
	}

	driver, dsn, err := sqlTarget()
	if err != nil {
		return err
	}
	store, err := comparables.OpenSQLStore(driver, dsn)
	if err != nil {
		return err
	}
	defer store.Close()

	start := time.Now()
	for _, p := range projects {
		id, err := store.Insert(ctx, p)
		if err != nil {
			return err
		}
		log.Debug("imported comparable", zap.String("id", id), zap.String("category", string(p.Category)))
	}
	log.Info("comparables imported",
		zap.Int("count", len(projects)),
		zap.String("driver", driver),
		zap.Duration("duration", time.Since(start)),
	)
	fmt.Fprintf(cmd.OutOrStdout(), "Imported %d comparables\n", len(projects))
	return nil
}

func runComparablesList(cmd *cobra.Command, args []string) error {
	category := types.Category(args[0])
	if !category.Valid() {
		return errors.Input("unknown category: " + args[0])
	}

	driver, dsn := comparablesDriver, comparablesDSN
	if driver == "" {
		driver = cfg.Comparables.Driver
	}
	if dsn == "" {
		dsn = cfg.Comparables.DSN
	}
	store, err := comparables.Open(driver, dsn, cfg.Comparables.Path)
	if err != nil {
		return err
	}
	if c, ok := store.(*comparables.SQLStore); ok {
		defer c.Close()
	}

	projects, err := store.ByCategory(context.Background(), category)
	if err != nil {
		return err
	}

	w := output.NewWriter(cmd.OutOrStdout(), true)
	table := w.NewTable("ID", "Title", "Location", "Completed", "Size", "Cost", "Per sqft").AlignRight(4, 5, 6)
	for _, p := range projects {
		table.AddRow(p.ID, p.Title, p.Location, p.CompletedAt.Format("2006-01-02"),
			strconv.FormatFloat(p.Size, 'f', 0, 64),
			determinism.FormatMoney(p.ActualCost), determinism.FormatMoney(p.CostPerSqft))
	}
	table.Render()
	w.Println("%d comparables", len(projects))
	return w.Err()
}

func validateComparable(p types.ComparableProject) *errors.Error {
	switch {
	case !p.Category.Valid():
		return errors.Input("unknown category: " + string(p.Category))
	case !(p.Size > 0) || math.IsInf(p.Size, 0):
		return errors.Input("size must be a positive finite number")
	case !p.ActualCost.IsPositive():
		return errors.Input("actual_cost must be positive")
	case p.CompletedAt.IsZero():
		return errors.Input("completed_at is required")
	}
	return nil
}
