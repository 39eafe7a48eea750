package main

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/answer-engine/internal/classify"
	"github.com/pdiddy/answer-engine/internal/rank"
	"github.com/pdiddy/answer-engine/internal/search"
	"github.com/pdiddy/answer-engine/pkg/types"
)

var sourcesCmd = &cobra.Command{
	Use:   "sources [query...]",
	Short: "Retrieve and rank web evidence without generating an answer",
	Long: `Sources runs the retrieval and ranking stages only: the query is sent to
the configured search backends, results are deduplicated and scored, and the
ranked evidence set is printed. Useful for inspecting what an answer would
be grounded on.`,
	RunE: runSources,
}

func init() {
	sourcesCmd.Flags().Int("max-results", 0, "maximum search results to retrieve (0 = config default)")
	sourcesCmd.Flags().Bool("expanded", false, "use expanded retrieval with reformulated queries")
	sourcesCmd.Flags().Bool("json", false, "output results as JSON")

	rootCmd.AddCommand(sourcesCmd)
}

func runSources(cmd *cobra.Command, args []string) error {
	queryText := strings.TrimSpace(strings.Join(args, " "))
	if queryText == "" {
		return fmt.Errorf("provide a query to search for")
	}

	maxResults, _ := cmd.Flags().GetInt("max-results")
	expanded, _ := cmd.Flags().GetBool("expanded")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg := loadConfig()
	if maxResults > 0 {
		cfg.Search.MaxResults = maxResults
	}

	backends := buildBackends(cfg.Search)
	if len(backends) == 0 {
		return fmt.Errorf("no search backends configured: set search.searxng_url or provide a Brave API key")
	}

	q := types.NewQuery(queryText, true)
	c := classify.Classify(q)
	if expanded {
		c.Mode = types.ModeExpanded
	}

	out, err := search.Retrieve(context.Background(), q, c, backends, cfg.Search, os.Stderr)
	if err != nil {
		return err
	}

	out.Items = rank.RankAndBudget(q, out.Items, cfg.Rank.MaxContextUnits, cfg.Rank)

	if jsonOutput {
		return search.FormatJSON(out, os.Stdout)
	}
	search.FormatTable(out, os.Stdout)
	return nil
}
