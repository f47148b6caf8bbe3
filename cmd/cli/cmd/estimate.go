// Package cmd - estimate command
package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"construction-cost/core/output"
	"construction-cost/core/types"
	"construction-cost/internal/bootstrap"
	"construction-cost/internal/errors"
)

var (
	outputFormat string
	noColor      bool
	ratesFile    string
	seedFile     string
	saveEstimate bool
	offline      bool
)

// estimateCmd represents the estimate command
var estimateCmd = &cobra.Command{
	Use:   "estimate <project-file>",
	Short: "Estimate the cost of a construction project",
	Long: `Read a project description (YAML or JSON) and produce a cost estimate.

Examples:
  construction-cost estimate project.yaml
  construction-cost estimate --format json project.json
  construction-cost estimate --rates rates.hcl --comparables history.yaml project.yaml
  construction-cost estimate --offline --save project.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: runEstimate,
}

func init() {
	rootCmd.AddCommand(estimateCmd)

	estimateCmd.Flags().StringVarP(&outputFormat, "format", "f", "cli", "output format (cli, json)")
	estimateCmd.Flags().BoolVar(&noColor, "no-color", false, "disable colored output")
	estimateCmd.Flags().StringVar(&ratesFile, "rates", "", "HCL rate file (overrides config)")
	estimateCmd.Flags().StringVar(&seedFile, "comparables", "", "YAML/JSON comparables file (uses the memory store)")
	estimateCmd.Flags().BoolVar(&saveEstimate, "save", false, "save the estimate to the configured store")
	estimateCmd.Flags().BoolVar(&offline, "offline", false, "skip the requirement-insight service")
}

func runEstimate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	log := logger()

	formatter, err := output.New(outputFormat, noColor)
	if err != nil {
		return err
	}

	project, err := loadProject(args[0])
	if err != nil {
		return err
	}

	if ratesFile != "" {
		cfg.Rates.Path = ratesFile
	}
	if seedFile != "" {
		cfg.Comparables.Driver = "memory"
		cfg.Comparables.Path = seedFile
	}

	rt, err := openRuntime(bootstrap.Options{Offline: offline, WithStorage: saveEstimate})
	if err != nil {
		return err
	}
	defer rt.Close()

	start := time.Now()
	est, err := rt.Engine.Generate(ctx, project)
	if err != nil {
		return err
	}
	log.Debug("estimate generated", zap.String("estimate_id", est.ID), zap.Duration("duration", time.Since(start)))

	if err := formatter.Render(cmd.OutOrStdout(), est); err != nil {
		return err
	}

	if saveEstimate {
		stored, err := rt.Estimates.Save(ctx, est)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Saved estimate %s (project %s, v%d)\n", stored.ID, stored.ProjectID, stored.Version)
	}
	return nil
}

// loadProject reads a project file. The format follows the extension; YAML
// is the default.
func loadProject(path string) (*types.Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Input("cannot read project file: " + err.Error())
	}
	return parseProject(path, data)
}

func parseProject(path string, data []byte) (*types.Project, error) {
	var p types.Project
	switch strings.ToLower(filepath.Ext(path)) {
	case ".json":
		err := json.Unmarshal(data, &p)
		if err != nil {
			return nil, errors.Input("invalid project JSON: " + err.Error())
		}
	default:
		err := yaml.Unmarshal(data, &p)
		if err != nil {
			return nil, errors.Input("invalid project YAML: " + err.Error())
		}
	}

	if p.Category == "" {
		return nil, errors.Input("project category is required")
	}
	if !p.Category.Valid() {
		return nil, errors.Input("unknown project category: " + string(p.Category))
	}
	sqft := p.Specifications.SquareFootage
	if math.IsNaN(sqft) || math.IsInf(sqft, 0) {
		return nil, errors.Input("square_footage must be a finite number")
	}
	if sqft < 0 {
		return nil, errors.Input("square_footage cannot be negative")
	}
	if p.Specifications.Stories < 0 {
		return nil, errors.Input("stories cannot be negative")
	}
	return &p, nil
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
