// Package cmd - saved estimate commands
package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"construction-cost/adapters/storage"
	"construction-cost/core/determinism"
	"construction-cost/core/estimate"
	"construction-cost/core/output"
	"construction-cost/internal/bootstrap"
)

var (
	listProject string
	listStatus  string
	listLimit   int
)

var estimatesCmd = &cobra.Command{
	Use:   "estimates",
	Short: "Work with saved estimates",
}

var estimatesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List saved estimates",
	Args:  cobra.NoArgs,
	RunE:  runEstimatesList,
}

var estimatesShowCmd = &cobra.Command{
	Use:   "show <estimate-id>",
	Short: "Render a saved estimate",
	Args:  cobra.ExactArgs(1),
	RunE:  runEstimatesShow,
}

var estimatesStatusCmd = &cobra.Command{
	Use:   "status <estimate-id> <draft|sent|accepted|rejected|expired>",
	Short: "Move a saved estimate to a new status",
	Args:  cobra.ExactArgs(2),
	RunE:  runEstimatesStatus,
}

var estimatesReviseCmd = &cobra.Command{
	Use:   "revise <estimate-id> <project-file>",
	Short: "Re-estimate a project as the next version of a saved estimate",
	Args:  cobra.ExactArgs(2),
	RunE:  runEstimatesRevise,
}

var estimatesCompareCmd = &cobra.Command{
	Use:   "compare <old-id> <new-id>",
	Short: "Compare the totals of two saved estimates",
	Args:  cobra.ExactArgs(2),
	RunE:  runEstimatesCompare,
}

func init() {
	rootCmd.AddCommand(estimatesCmd)
	estimatesCmd.AddCommand(estimatesListCmd)
	estimatesCmd.AddCommand(estimatesShowCmd)
	estimatesCmd.AddCommand(estimatesStatusCmd)
	estimatesCmd.AddCommand(estimatesReviseCmd)
	estimatesCmd.AddCommand(estimatesCompareCmd)

	estimatesListCmd.Flags().StringVarP(&listProject, "project", "p", "", "only estimates of this project")
	estimatesListCmd.Flags().StringVar(&listStatus, "status", "", "only estimates with this recorded status")
	estimatesListCmd.Flags().IntVar(&listLimit, "limit", 0, "maximum number of estimates")
	estimatesShowCmd.Flags().StringVarP(&outputFormat, "format", "f", "cli", "output format (cli, json)")
	estimatesShowCmd.Flags().BoolVar(&noColor, "no-color", false, "disable colored output")
	estimatesReviseCmd.Flags().BoolVar(&offline, "offline", false, "skip the requirement-insight service")
}

func openEstimates() (storage.Store, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return storage.Open(storage.Backend(cfg.Storage.Backend), cfg.Storage.Path)
}

func runEstimatesList(cmd *cobra.Command, args []string) error {
	store, err := openEstimates()
	if err != nil {
		return err
	}
	defer store.Close()

	filter := &storage.ListFilter{ProjectID: listProject, Limit: listLimit}
	if listStatus != "" {
		if filter.Status, err = estimate.ParseStatus(listStatus); err != nil {
			return err
		}
	}

	results, err := store.List(context.Background(), filter)
	if err != nil {
		return err
	}

	now := time.Now()
	w := output.NewWriter(cmd.OutOrStdout(), true)
	table := w.NewTable("ID", "Project", "Ver", "Total", "Conf", "Status", "Created").AlignRight(2, 3, 4)
	for _, r := range results {
		status := string(r.Status)
		if effective := estimate.EffectiveStatus(r.Estimate, now); effective != r.Status {
			status += " (" + string(effective) + ")"
		}
		table.AddRow(r.ID, r.ProjectID, fmt.Sprint(r.Version), determinism.FormatMoney(r.Total),
			fmt.Sprintf("%d%%", r.Confidence), status, r.CreatedAt.Format("2006-01-02 15:04"))
	}
	table.Render()
	w.Println("%d estimates", len(results))
	return w.Err()
}

func runEstimatesShow(cmd *cobra.Command, args []string) error {
	formatter, err := output.New(outputFormat, noColor)
	if err != nil {
		return err
	}
	store, err := openEstimates()
	if err != nil {
		return err
	}
	defer store.Close()

	stored, err := store.Get(context.Background(), args[0])
	if err != nil {
		return err
	}
	return formatter.Render(cmd.OutOrStdout(), stored.Estimate)
}

func runEstimatesStatus(cmd *cobra.Command, args []string) error {
	to, err := estimate.ParseStatus(args[1])
	if err != nil {
		return err
	}
	store, err := openEstimates()
	if err != nil {
		return err
	}
	defer store.Close()

	ctx := context.Background()
	stored, err := store.Get(ctx, args[0])
	if err != nil {
		return err
	}
	next, err := estimate.Transition(stored.Estimate, to, time.Now())
	if err != nil {
		return err
	}
	if _, err := store.Save(ctx, next); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "%s: %s -> %s\n", next.ID, stored.Status, next.Status)
	return nil
}

func runEstimatesRevise(cmd *cobra.Command, args []string) error {
	project, err := loadProject(args[1])
	if err != nil {
		return err
	}

	rt, err := openRuntime(bootstrap.Options{Offline: offline, WithStorage: true})
	if err != nil {
		return err
	}
	defer rt.Close()

	ctx := context.Background()
	previous, err := rt.Estimates.Get(ctx, args[0])
	if err != nil {
		return err
	}
	next, err := rt.Engine.Revise(ctx, previous.Estimate, project)
	if err != nil {
		return err
	}
	stored, err := rt.Estimates.Save(ctx, next)
	if err != nil {
		return err
	}

	diff := storage.Diff(previous, stored)
	fmt.Fprintf(cmd.OutOrStdout(), "Saved %s (project %s, v%d): %s -> %s (%s)\n",
		stored.ID, stored.ProjectID, stored.Version,
		determinism.FormatMoney(diff.OldTotal), determinism.FormatMoney(diff.NewTotal),
		determinism.FormatPercent(diff.DeltaPercent))
	return nil
}

func runEstimatesCompare(cmd *cobra.Command, args []string) error {
	store, err := openEstimates()
	if err != nil {
		return err
	}
	defer store.Close()

	res, err := store.Compare(context.Background(), args[0], args[1])
	if err != nil {
		return err
	}

	w := output.NewWriter(cmd.OutOrStdout(), true)
	table := w.NewTable("", "Old", "New", "Change").AlignRight(1, 2, 3)
	table.AddRow("Total", determinism.FormatMoney(res.OldTotal), determinism.FormatMoney(res.NewTotal),
		determinism.FormatMoney(res.Delta)+" ("+determinism.FormatPercent(res.DeltaPercent)+")")
	table.AddRow("Confidence", fmt.Sprintf("%d%%", res.OldConfidence), fmt.Sprintf("%d%%", res.NewConfidence),
		fmt.Sprintf("%+d", res.ConfidenceDelta))
	table.Render()
	return w.Err()
}
