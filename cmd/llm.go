package cmd

import (
	"context"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var llmCmd = &cobra.Command{
	Use:   "llm",
	Short: "Inspect the llm upstream",
}

var llmPingCmd = &cobra.Command{
	Use:   "ping",
	Short: "Send a minimal completion to verify llm connectivity",
	Run: func(_ *cobra.Command, _ []string) {
		runLLMPing()
	},
}

func init() {
	rootCmd.AddCommand(llmCmd)
	llmCmd.AddCommand(llmPingCmd)
}

func runLLMPing() {
	ctx := context.Background()

	logger := newLogger()

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	client, err := newLLMClient(config.LLM, logger)
	if err != nil {
		logger.Fatal("building the llm client", zap.Error(err))
	}

	latency, err := client.Ping(ctx)
	if err != nil {
		logger.Fatal("llm is unreachable", zap.Error(err))
	}

	logger.Info("llm is reachable", zap.Duration("latency", latency))
}
