package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/vidyaai/diagramgen/internal/diagram"
	"github.com/vidyaai/diagramgen/internal/pipeline"
)

// assignmentFile is the input format produced by the upstream assignment
// generator.
type assignmentFile struct {
	AssignmentID string `json:"assignment_id"`
	Questions    []struct {
		Index       int    `json:"index"`
		Text        string `json:"text"`
		Description string `json:"description"`
		DomainHint  string `json:"domain_hint"`
	} `json:"questions"`
}

var runCmd = &cobra.Command{
	Use:   "run <assignment.json>",
	Short: "Generate diagrams for every question in an assignment",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read assignment: %w", err)
		}
		var assignment assignmentFile
		if err := json.Unmarshal(data, &assignment); err != nil {
			return fmt.Errorf("parse assignment: %w", err)
		}
		if len(assignment.Questions) == 0 {
			return fmt.Errorf("assignment %q has no questions", assignment.AssignmentID)
		}

		reqs := make([]diagram.Request, 0, len(assignment.Questions))
		for _, q := range assignment.Questions {
			reqs = append(reqs, diagram.Request{
				QuestionText:  q.Text,
				Description:   q.Description,
				DomainHint:    q.DomainHint,
				AssignmentID:  assignment.AssignmentID,
				QuestionIndex: q.Index,
			})
		}

		e, err := buildEnv(ctx, cmd)
		if err != nil {
			return err
		}
		defer e.Close()

		spin := spinner.New(spinner.CharSets[11], 100*time.Millisecond)
		spin.Suffix = fmt.Sprintf(" Generating %d diagrams...", len(reqs))
		spin.Start()

		batch, err := e.coord.RunBatch(ctx, reqs)
		spin.Stop()
		if err != nil {
			return err
		}

		printBatchSummary(batch, reqs)
		return nil
	},
}

func printBatchSummary(batch *pipeline.BatchResult, reqs []diagram.Request) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	yellow := color.New(color.FgYellow).SprintFunc()

	for _, req := range reqs {
		res, ok := batch.Results[req.QuestionIndex]
		if !ok || res == nil {
			fmt.Printf("  q%-3d %s\n", req.QuestionIndex, red("missing result"))
			continue
		}

		switch {
		case res.Err != nil:
			fmt.Printf("  q%-3d %s %v\n", req.QuestionIndex, red("failed:"), res.Err)
		case res.Outcome.Accepted():
			loc := "(not uploaded)"
			if res.Uploaded != nil {
				loc = res.Uploaded.URL
			}
			note := ""
			if v := res.Outcome.LastVerdict(); v != nil && v.Degraded {
				note = yellow(" [review skipped]")
			}
			used := res.Outcome.Attempts[len(res.Outcome.Attempts)-1].Backend
			fmt.Printf("  q%-3d %s %s (%s, %d attempt(s))%s\n",
				req.QuestionIndex, green("ok"), loc,
				used, len(res.Outcome.Attempts), note)
		default:
			reason := string(res.Outcome.Status)
			if v := res.Outcome.LastVerdict(); v != nil && v.Reason != "" {
				reason = fmt.Sprintf("%s: %s", res.Outcome.Status, v.Reason)
			}
			fmt.Printf("  q%-3d %s %s\n", req.QuestionIndex, yellow("rejected"), reason)
		}
	}

	accepted := batch.Accepted()
	fmt.Printf("\n%d/%d diagrams accepted\n", accepted, len(reqs))
	if accepted < len(reqs) {
		fmt.Println("Rejected questions keep their attempt history in the events log.")
	}
}
