package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/answer-engine/internal/classify"
	"github.com/pdiddy/answer-engine/pkg/types"
)

var classifyCmd = &cobra.Command{
	Use:   "classify [question...]",
	Short: "Show how a question would be classified",
	Long: `Classify prints the retrieval decision for a question without answering
it: whether search would run, in which mode, which rule matched, and the
search category.`,
	RunE: runClassify,
}

func init() {
	classifyCmd.Flags().Bool("json", false, "output the classification as JSON")

	rootCmd.AddCommand(classifyCmd)
}

func runClassify(cmd *cobra.Command, args []string) error {
	queryText := strings.TrimSpace(strings.Join(args, " "))
	if queryText == "" {
		return fmt.Errorf("provide a question to classify")
	}

	q := types.NewQuery(queryText, false)
	c := classify.Classify(q)

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(c)
	}

	fmt.Printf("Query:           %s\n", q.Normalized)
	fmt.Printf("Needs retrieval: %t\n", c.NeedsRetrieval)
	if c.NeedsRetrieval {
		fmt.Printf("Mode:            %s\n", c.Mode)
		fmt.Printf("Matched rule:    %s\n", c.MatchedRule)
	}
	fmt.Printf("Category:        %s\n", c.Category)
	fmt.Printf("Time-sensitive:  %t\n", classify.TimeSensitive(q))
	fmt.Printf("Static:          %t\n", classify.Static(q))
	return nil
}
