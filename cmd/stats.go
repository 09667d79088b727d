package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vidyaai/diagramgen/internal/llm"
	"github.com/vidyaai/diagramgen/internal/store"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show model usage, estimated cost, and pipeline outcomes",
	RunE: func(cmd *cobra.Command, args []string) error {
		dbPath, err := resolveDBPath(cmd)
		if err != nil {
			return fmt.Errorf("resolve database path: %w", err)
		}
		s, err := store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open database: %w", err)
		}
		defer func() { _ = s.Close() }()

		ctx := context.Background()
		repo := s.EventRepo()

		modelStats, err := repo.ModelCallStats(ctx)
		if err != nil {
			return fmt.Errorf("query model stats: %w", err)
		}

		if len(modelStats) == 0 {
			fmt.Println("No model usage recorded yet.")
		} else {
			printModelStats(modelStats)
		}

		pipeStats, err := repo.PipelineStats(ctx)
		if err != nil {
			return fmt.Errorf("query pipeline stats: %w", err)
		}
		if len(pipeStats) > 0 {
			fmt.Println()
			fmt.Println("Pipeline Outcomes")
			fmt.Println(strings.Repeat("─", 40))
			for _, st := range pipeStats {
				fmt.Printf("%-24s  %6d\n", st.Status, st.Count)
			}
		}

		degraded, err := repo.ReviewDegradedCount(ctx)
		if err != nil {
			return fmt.Errorf("query degraded reviews: %w", err)
		}
		if degraded > 0 {
			fmt.Printf("\n%d image(s) shipped without review (review service failures) — audit recommended.\n", degraded)
		}

		return nil
	},
}

func printModelStats(stats []store.ModelCallStat) {
	fmt.Println("Model Usage and Estimated Cost (USD)")
	fmt.Println(strings.Repeat("─", 88))
	fmt.Printf("%-32s  %6s  %5s  %10s  %10s  %8s  %9s\n",
		"Model", "Calls", "Fail", "Input", "Output", "Avg Ms", "Cost")
	fmt.Println(strings.Repeat("─", 88))

	var totalCost float64
	var unknownModels []string
	for _, st := range stats {
		cost := llm.LookupCost(st.Model)
		costStr := "?"
		if cost != nil {
			c := cost.Cost(st.InputTokens, st.OutputTokens)
			totalCost += c
			costStr = formatCost(c)
		} else {
			unknownModels = append(unknownModels, st.Model)
		}
		fmt.Printf("%-32s  %6d  %5d  %10d  %10d  %8.0f  %9s\n",
			truncate(st.Model, 32), st.Calls, st.Failures,
			st.InputTokens, st.OutputTokens, st.AvgLatencyMs, costStr)
	}

	fmt.Println(strings.Repeat("─", 88))
	label := "TOTAL"
	if len(unknownModels) > 0 {
		label = "TOTAL (partial)"
	}
	fmt.Printf("%-32s  %6s  %5s  %10s  %10s  %8s  %9s\n",
		label, "", "", "", "", "", formatCost(totalCost))

	if len(unknownModels) > 0 {
		fmt.Printf("\nPricing unavailable for: %s\n", strings.Join(unknownModels, ", "))
	}
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max]
}

func formatCost(usd float64) string {
	if usd < 0.01 {
		return fmt.Sprintf("$%.4f", usd)
	}
	return fmt.Sprintf("$%.2f", usd)
}
