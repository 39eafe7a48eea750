// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/answer-engine/internal/cache"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the answer cache (stats, cleanup, clear, export)",
	Long: `Cache manages the local SQLite answer cache. Use subcommands to inspect
cache statistics, remove expired entries, clear everything, or export the
stored entries.`,
}

// --- stats subcommand ---

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show answer cache statistics",
	RunE:  runCacheStats,
}

func runCacheStats(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	st, err := store.Stats(context.Background())
	if err != nil {
		return err
	}

	fmt.Printf("Entries:  %d\n", st.Entries)
	fmt.Printf("Hits:     %d\n", st.Hits)
	fmt.Printf("Misses:   %d\n", st.Misses)
	fmt.Printf("Writes:   %d\n", st.Writes)
	fmt.Printf("Hit rate: %.1f%%\n", st.HitRate()*100)
	return nil
}

// --- cleanup subcommand ---

var cacheCleanupCmd = &cobra.Command{
	Use:   "cleanup",
	Short: "Remove expired entries from the answer cache",
	RunE:  runCacheCleanup,
}

func runCacheCleanup(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	removed, err := store.CleanupExpired(context.Background())
	if err != nil {
		return err
	}
	fmt.Printf("Removed %d expired entries\n", removed)
	return nil
}

// --- clear subcommand ---

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove all entries from the answer cache",
	RunE:  runCacheClear,
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Clear(context.Background()); err != nil {
		return err
	}
	fmt.Println("Cache cleared")
	return nil
}

// --- export subcommand ---

var cacheExportCmd = &cobra.Command{
	Use:   "export [path]",
	Short: "Export the answer cache to YAML or JSON",
	RunE:  runCacheExport,
}

func runCacheExport(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("format")

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	path := ""
	if len(args) > 0 {
		path = args[0]
	}

	switch format {
	case "yaml", "":
		if path == "" {
			path = "cache-export.yaml"
		}
		if err := store.ExportYAML(context.Background(), path); err != nil {
			return err
		}
	case "json":
		if path == "" {
			path = "cache-export.json"
		}
		if err := store.ExportJSON(context.Background(), path); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unsupported format %q: use yaml or json", format)
	}

	fmt.Printf("Exported to %s\n", path)
	return nil
}

// --- shared helpers ---

// openStore opens the cache store without the startup cleanup so inspection
// commands see the database exactly as it is.
func openStore() (*cache.Store, error) {
	cfg := loadConfig().Cache
	cfg.CleanupOnStart = false
	return cache.NewStore(cfg)
}

func init() {
	cacheExportCmd.Flags().String("format", "yaml", "export format: yaml or json")

	cacheCmd.AddCommand(cacheStatsCmd)
	cacheCmd.AddCommand(cacheCleanupCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	cacheCmd.AddCommand(cacheExportCmd)

	rootCmd.AddCommand(cacheCmd)
}
