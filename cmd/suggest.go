package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/scholarsense/opportunity-finder/internal/llm"
	"github.com/scholarsense/opportunity-finder/internal/suggest"

	"github.com/manifoldco/promptui"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

const (
	PromptShowResult = "Show the result"
	PromptDumpToFile = "Dump the result to file"
	PromptExit       = "Exit"
)

var errExit = errors.New("exit requested")

var suggestCmd = &cobra.Command{
	Use:   "suggest",
	Short: "Suggest opportunities for a student profile",
}

var suggestGrantsCmd = &cobra.Command{
	Use:   "grants",
	Short: "Suggest grants for a student profile",
	Run: func(cmd *cobra.Command, _ []string) {
		runSuggest(cmd, "grants")
	},
}

var suggestJobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Suggest job openings for a student profile",
	Run: func(cmd *cobra.Command, _ []string) {
		runSuggest(cmd, "jobs")
	},
}

func init() {
	rootCmd.AddCommand(suggestCmd)
	suggestCmd.AddCommand(suggestGrantsCmd, suggestJobsCmd)

	suggestCmd.PersistentFlags().StringP("profile-file", "p", "", "file with the student profile text")
	suggestCmd.PersistentFlags().String("profile-id", "", "profile identifier echoed back in the result")
	suggestCmd.PersistentFlags().IntP("limit", "l", 10, "maximum number of suggestions")
	suggestCmd.PersistentFlags().BoolP("interactive", "i", false, "show an action menu after the suggestions arrive")

	suggestJobsCmd.Flags().String("country", "", "two-letter country code for the jobs upstream")

	suggestCmd.MarkPersistentFlagRequired("profile-file")
}

func runSuggest(cmd *cobra.Command, kind string) {
	ctx := context.Background()

	logger := newLogger()

	config, err := getConfig()
	if err != nil {
		logger.Fatal("getting a config", zap.Error(err))
	}

	profileFile, _ := cmd.Flags().GetString("profile-file")
	profileText, err := readProfile(profileFile)
	if err != nil {
		logger.Fatal("reading the profile", zap.Error(err))
	}

	profileID, _ := cmd.Flags().GetString("profile-id")
	limit, _ := cmd.Flags().GetInt("limit")

	llmClient, err := newLLMClient(config.LLM, logger)
	if err != nil {
		logger.Fatal("building the llm client", zap.Error(err))
	}

	builder := llm.NewQueryBuilder(llmClient, logger)

	var result any

	switch kind {
	case "grants":
		client, err := newGrantsClient(config.Grants, logger)
		if err != nil {
			logger.Fatal("building the grants client", zap.Error(err))
		}

		suggester := suggest.NewGrantSuggester(builder, client, logger)

		result, err = suggester.Suggest(ctx, profileID, profileText, limit)
		if err != nil {
			logger.Fatal("suggesting grants", zap.Error(err))
		}
	case "jobs":
		client, err := newJobsClient(config.Jobs, logger)
		if err != nil {
			logger.Fatal("building the jobs client", zap.Error(err))
		}

		country, _ := cmd.Flags().GetString("country")
		if country == "" && config.Jobs != nil {
			country = config.Jobs.Country
		}

		suggester := suggest.NewJobSuggester(builder, client, logger)

		result, err = suggester.Suggest(ctx, profileID, profileText, limit, country)
		if err != nil {
			logger.Fatal("suggesting jobs", zap.Error(err))
		}
	default:
		logger.Fatal("unknown suggestion kind", zap.String("kind", kind))
	}

	interactive, _ := cmd.Flags().GetBool("interactive")
	if !interactive {
		printJSON(result)
		return
	}

	prompt := promptui.Select{
		Label: "What to do with the result?",
		Items: []string{PromptShowResult, PromptDumpToFile, PromptExit},
	}

	for {
		_, action, err := prompt.Run()
		if err != nil {
			logger.Fatal("exiting", zap.Error(err))
		}

		if err := handleSuggestAction(action, kind, result, logger); err != nil {
			if errors.Is(err, errExit) {
				return
			}
			logger.Fatal("exiting", zap.Error(err))
		}
	}
}

func handleSuggestAction(action, kind string, result any, logger *zap.Logger) error {
	switch action {
	case PromptShowResult:
		printJSON(result)
		return nil
	case PromptDumpToFile:
		filename, err := dumpToTmpFile(kind, result)
		if err != nil {
			return fmt.Errorf("dump result to file: %w", err)
		}
		logger.Info("dumping result to file", zap.String("filename", filename))
		return nil
	case PromptExit:
		logger.Info("exiting", zap.String("reason", "got exit from prompt"))
		return errExit
	default:
		return fmt.Errorf("invalid action: %s", action)
	}
}

func readProfile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}

	text := strings.TrimSpace(string(data))
	if text == "" {
		return "", fmt.Errorf("profile file %q is empty", path)
	}

	return text, nil
}

func printJSON(v any) {
	pretty, _ := json.MarshalIndent(v, "", "  ")
	fmt.Println(string(pretty))
}

func dumpToTmpFile(prefix string, v any) (string, error) {
	f, err := os.CreateTemp("", prefix+"-suggestions-*.json")
	if err != nil {
		return "", err
	}
	defer f.Close()

	pretty, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", err
	}

	if _, err := f.Write(pretty); err != nil {
		return "", err
	}

	return f.Name(), nil
}
