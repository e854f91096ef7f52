package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/kailas-cloud/moviesearch/internal/domain/search/mode"
	"github.com/kailas-cloud/moviesearch/internal/domain/search/request"
	chiTransport "github.com/kailas-cloud/moviesearch/internal/transport/chi"
)

func newSearchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <query>",
		Short: "Run one search and print the JSON response",
		Example: `  moviesearch search "Back to the Future"
  moviesearch search "time travel" --mode native --alpha 0.8 --limit 10`,
		Args: cobra.ExactArgs(1),
		RunE: runSearch,
	}
	cmd.Flags().Int("limit", request.DefaultLimit, "maximum number of movies")
	cmd.Flags().String("mode", string(mode.Default), "search path: "+mode.Names())
	cmd.Flags().Float64("alpha", 0, "vector weight for native mode; unset uses search.default_alpha")
	return cmd
}

func runSearch(cmd *cobra.Command, args []string) error {
	limit, _ := cmd.Flags().GetInt("limit")
	m, _ := cmd.Flags().GetString("mode")

	var alpha *float64
	if cmd.Flags().Changed("alpha") {
		v, _ := cmd.Flags().GetFloat64("alpha")
		alpha = &v
	}

	req, err := request.New(args[0], mode.Mode(m), limit, alpha)
	if err != nil {
		return err //nolint:wrapcheck // already describes the bad flag
	}

	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.close()

	ranked, err := a.searchService().Search(cmd.Context(), &req)
	if err != nil {
		return fmt.Errorf("search: %w", err)
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(chiTransport.SearchResponse{ //nolint:wrapcheck // stdout write
		ResultType:    ranked.Type().Description(),
		MatchedMovies: ranked.Summaries(),
	})
}
