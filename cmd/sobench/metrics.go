package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/sobench/sobench/internal/metric"
	"github.com/sobench/sobench/internal/model"
	"github.com/spf13/cobra"
)

var metricsFamily string

var metricsCmd = &cobra.Command{
	Use:   "metrics",
	Short: "List available metrics",
	Long: `Display the metric registry: each metric's required simulation stage
and, when a family is given, whether that family supports it.`,
	RunE: runMetrics,
}

func init() {
	metricsCmd.Flags().StringVar(&metricsFamily, "family", "", "Restrict to a family to show forbidden metrics")
	rootCmd.AddCommand(metricsCmd)
}

func runMetrics(cmd *cobra.Command, args []string) error {
	var family model.Family
	var params model.Params
	if metricsFamily != "" {
		f, err := parseFamilyFlag(metricsFamily)
		if err != nil {
			return err
		}
		family = f
		params = model.FamilyParams(family)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	if family != 0 {
		fmt.Fprintln(w, "METRIC\tSTAGE\tSTATUS")
	} else {
		fmt.Fprintln(w, "METRIC\tSTAGE")
	}

	for _, name := range metric.Names() {
		stage := metric.RequiredStage(name)
		if family != 0 {
			status := "available"
			if params.MetricForbidden(name) {
				status = "forbidden"
			} else if name == params.DefaultMetric {
				status = "default"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", name, stage, status)
		} else {
			fmt.Fprintf(w, "%s\t%s\n", name, stage)
		}
	}

	return w.Flush()
}
