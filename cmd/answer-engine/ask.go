package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/pdiddy/answer-engine/internal/answer"
	"github.com/pdiddy/answer-engine/internal/cache"
	"github.com/pdiddy/answer-engine/internal/llm"
)

var askCmd = &cobra.Command{
	Use:   "ask [question...]",
	Short: "Answer a question, searching the web when it helps",
	Long: `Ask classifies the question and answers it. Factual and time-sensitive
questions are answered from web search evidence with a verified source list;
general-knowledge questions go straight to the model. Repeat questions are
served from the local cache.`,
	RunE: runAsk,
}

func init() {
	askCmd.Flags().Bool("force-search", false, "retrieve evidence even when classification would skip it")
	askCmd.Flags().Bool("no-cache", false, "bypass the answer cache for this question")
	askCmd.Flags().Int("max-results", 0, "maximum search results to retrieve (0 = config default)")
	askCmd.Flags().Bool("json", false, "output the answer as JSON")

	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	question := strings.TrimSpace(strings.Join(args, " "))
	if question == "" {
		return fmt.Errorf("provide a question to answer")
	}

	forceSearch, _ := cmd.Flags().GetBool("force-search")
	noCache, _ := cmd.Flags().GetBool("no-cache")
	maxResults, _ := cmd.Flags().GetInt("max-results")
	jsonOutput, _ := cmd.Flags().GetBool("json")

	cfg := loadConfig()
	if maxResults > 0 {
		cfg.Search.MaxResults = maxResults
	}

	var store *cache.Store
	if cfg.Cache.Enabled && !noCache {
		s, err := cache.NewStore(cfg.Cache)
		if err != nil {
			fmt.Fprintf(os.Stderr, "warning: cache unavailable: %v\n", err)
		} else {
			store = s
			defer store.Close()
		}
	}

	engine := answer.NewEngine(cfg, buildBackends(cfg.Search), llm.NewClient(cfg.LLM), store, os.Stderr)

	a, err := engine.Ask(context.Background(), question, answer.Options{
		ForceSearch: forceSearch,
		NoCache:     noCache,
	})
	if err != nil {
		return err
	}

	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(a)
	}

	fmt.Println(a.Text)

	var notes []string
	if a.Cached {
		notes = append(notes, "cached")
	}
	if a.SearchUsed {
		notes = append(notes, "search")
	}
	if len(notes) > 0 {
		fmt.Fprintf(os.Stderr, "\n(%s, %s)\n", strings.Join(notes, "+"), a.Latency.Round(time.Millisecond))
	}
	return nil
}
