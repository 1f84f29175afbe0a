package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/scholarsense/opportunity-finder/internal/grants"
	"github.com/scholarsense/opportunity-finder/internal/jobs"
	"github.com/scholarsense/opportunity-finder/internal/suggest"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var searchCmd = &cobra.Command{
	Use:   "search",
	Short: "Search an upstream with an explicit request",
}

var searchGrantsCmd = &cobra.Command{
	Use:   "grants",
	Short: "Search the grants upstream with a request from a JSON file",
	Run: func(cmd *cobra.Command, _ []string) {
		runSearchGrants(cmd)
	},
}

var searchJobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Search the jobs upstream with a request from a JSON file",
	Run: func(cmd *cobra.Command, _ []string) {
		runSearchJobs(cmd)
	},
}

func init() {
	rootCmd.AddCommand(searchCmd)
	searchCmd.AddCommand(searchGrantsCmd, searchJobsCmd)

	searchCmd.PersistentFlags().StringP("request-file", "r", "", "JSON file with the search request")
	searchCmd.MarkPersistentFlagRequired("request-file")
}

func runSearchGrants(cmd *cobra.Command) {
	ctx := context.Background()

	logger := newLogger()

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	var req grants.SearchRequest
	if err := readRequest(cmd, &req); err != nil {
		logger.Fatal("reading the request", zap.Error(err))
	}

	client, err := newGrantsClient(config.Grants, logger)
	if err != nil {
		logger.Fatal("building the grants client", zap.Error(err))
	}

	page, err := suggest.NewGrantSuggester(nil, client, logger).Search(ctx, req)
	if err != nil {
		logger.Fatal("searching grants", zap.Error(err))
	}

	logger.Info("search finished", zap.Int("count", len(page.Items)))
	printJSON(page)
}

func runSearchJobs(cmd *cobra.Command) {
	ctx := context.Background()

	logger := newLogger()

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	var req jobs.SearchRequest
	if err := readRequest(cmd, &req); err != nil {
		logger.Fatal("reading the request", zap.Error(err))
	}

	client, err := newJobsClient(config.Jobs, logger)
	if err != nil {
		logger.Fatal("building the jobs client", zap.Error(err))
	}

	page, err := suggest.NewJobSuggester(nil, client, logger).Search(ctx, req)
	if err != nil {
		logger.Fatal("searching jobs", zap.Error(err))
	}

	logger.Info("search finished", zap.Int("count", len(page.Items)))
	printJSON(page)
}

func readRequest(cmd *cobra.Command, out any) error {
	path, _ := cmd.Flags().GetString("request-file")

	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("parsing request file %q: %w", path, err)
	}

	return nil
}
