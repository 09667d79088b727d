package cmd

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/vidyaai/diagramgen/internal/diagram"
)

var previewCmd = &cobra.Command{
	Use:   "preview <description>",
	Short: "Generate a single diagram from a description",
	Long: `Run one description through the full pipeline and write the accepted
image to a file. Useful for evaluating prompt and routing quality without
an assignment file.`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		out, _ := cmd.Flags().GetString("out")
		hint, _ := cmd.Flags().GetString("domain")

		e, err := buildEnv(ctx, cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		req := diagram.Request{
			QuestionText: strings.Join(args, " "),
			DomainHint:   hint,
			AssignmentID: "preview",
		}

		spin := spinner.New(spinner.CharSets[11], 100*time.Millisecond)
		spin.Suffix = " Generating diagram..."
		spin.Start()
		outcome, err := e.orch.Run(ctx, req)
		spin.Stop()
		if err != nil {
			return err
		}

		cls := outcome.Classification
		fmt.Printf("Classified: %s / %s (%s)\n", cls.Domain, cls.DiagramType, cls.Complexity)
		for i, v := range outcome.Verdicts {
			mark := color.GreenString("passed")
			if !v.Passed {
				mark = color.RedString("rejected")
			}
			fmt.Printf("Attempt %d: %s — %s\n", i+1, mark, v.Reason)
			for _, issue := range v.Issues {
				fmt.Printf("    - %s\n", issue)
			}
		}

		if !outcome.Accepted() {
			return fmt.Errorf("no acceptable diagram after %d attempt(s): %s",
				len(outcome.Attempts), outcome.Status)
		}

		if err := os.WriteFile(out, outcome.FinalImage, 0o644); err != nil {
			return fmt.Errorf("write image: %w", err)
		}
		fmt.Printf("Wrote %s (%d bytes)\n", out, len(outcome.FinalImage))
		return nil
	},
}

func init() {
	previewCmd.Flags().String("out", "diagram.png", "Output image path")
	previewCmd.Flags().String("domain", "", "Optional subject hint (e.g. physics, electrical)")
}
